package routers

import (
	"eshop/apperror"
	"eshop/config"
	"eshop/handlers"
	"eshop/jwt"
	"eshop/middleware"
	"eshop/services"
	"github.com/gin-gonic/gin"
	"log/slog"
	"net/http"
)

type Dependencies struct {
	Catalog *services.CatalogService
	Orders  *services.OrderService
	Users   *services.UserService
	Issuer  *jwt.Issuer
	Logger  *slog.Logger
}

func SetupRouters(cfg config.Config, deps Dependencies) *gin.Engine {
	//建立Gin路由器
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger(deps.Logger))
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "Authorization")
		c.Next()
	})
	if err := router.SetTrustedProxies(nil); err != nil {
		deps.Logger.Warn("cannot set trusted proxies", "error", err)
	}

	router.OPTIONS("/*path", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	////除公開路由外都需要admin Token
	router.Use(middleware.AuthMiddleware(deps.Issuer, middleware.PublicRoutes(cfg.Server.APIURL), deps.Logger))

	//設定商品圖片靜態資源路徑
	router.Static("/public/uploads", cfg.Uploads.Dir)

	router.NoRoute(func(c *gin.Context) {
		apperror.Respond(c, deps.Logger, apperror.NotFound("route not found"))
	})

	api := router.Group(cfg.Server.APIURL)
	uploadOpts := handlers.UploadOptions{
		PublicURL:  cfg.Server.PublicURL,
		MaxGallery: cfg.Uploads.MaxGallery,
	}
	catalog, orders, users := deps.Catalog, deps.Orders, deps.Users

	categories := api.Group("/categories")
	{
		categories.GET("", func(c *gin.Context) {
			handlers.GetCategoryListHandler(c, catalog)
		})
		categories.GET("/:id", func(c *gin.Context) {
			handlers.GetCategoryHandler(c, catalog)
		})
		categories.POST("", func(c *gin.Context) {
			handlers.CreateCategoryHandler(c, catalog)
		})
		categories.PATCH("/:id", func(c *gin.Context) {
			handlers.UpdateCategoryHandler(c, catalog)
		})
		categories.PUT("/:id", func(c *gin.Context) {
			handlers.UpdateCategoryHandler(c, catalog)
		})
		categories.DELETE("/:id", func(c *gin.Context) {
			handlers.DeleteCategoryHandler(c, catalog)
		})
	}

	products := api.Group("/products")
	{
		//查詢商品列表
		products.GET("", func(c *gin.Context) {
			handlers.GetProductListHandler(c, catalog)
		})
		//查詢商品詳細資料
		products.GET("/:id", func(c *gin.Context) {
			handlers.GetProductDataHandler(c, catalog)
		})
		products.GET("/get/count", func(c *gin.Context) {
			handlers.GetProductCountHandler(c, catalog)
		})
		products.GET("/get/featured", func(c *gin.Context) {
			handlers.GetFeaturedProductsHandler(c, catalog)
		})
		products.GET("/get/featured/:count", func(c *gin.Context) {
			handlers.GetFeaturedProductsHandler(c, catalog)
		})
		//新增商品
		products.POST("", func(c *gin.Context) {
			handlers.CreateProductHandler(c, catalog, uploadOpts)
		})
		//修改商品
		products.PATCH("/:id", func(c *gin.Context) {
			handlers.UpdateProductHandler(c, catalog, uploadOpts)
		})
		products.PUT("/gallery-images/:id", func(c *gin.Context) {
			handlers.UpdateGalleryImagesHandler(c, catalog, uploadOpts)
		})
		//刪除商品
		products.DELETE("/:id", func(c *gin.Context) {
			handlers.DeleteProductHandler(c, catalog)
		})
	}

	userRoutes := api.Group("/users")
	{
		userRoutes.GET("", func(c *gin.Context) {
			handlers.GetUserListHandler(c, users)
		})
		//註冊帳號
		userRoutes.POST("/register", func(c *gin.Context) {
			handlers.RegisterHandler(c, users)
		})
		//登入帳號
		userRoutes.POST("/login", func(c *gin.Context) {
			handlers.LoginHandler(c, users)
		})
		userRoutes.GET("/:id", func(c *gin.Context) {
			handlers.GetUserProfileHandler(c, users)
		})
		userRoutes.PATCH("/:id", func(c *gin.Context) {
			handlers.UpdateUserProfileHandler(c, users)
		})
		userRoutes.DELETE("/:id", func(c *gin.Context) {
			handlers.DeleteUserHandler(c, users)
		})
		userRoutes.GET("/get/count", func(c *gin.Context) {
			handlers.GetUserCountHandler(c, users)
		})
	}

	orderRoutes := api.Group("/orders")
	{
		//查詢訂單列表
		orderRoutes.GET("", func(c *gin.Context) {
			handlers.GetOrderListHandler(c, orders)
		})
		//查詢訂單詳細資訊
		orderRoutes.GET("/:id", func(c *gin.Context) {
			handlers.GetOrderDataHandler(c, orders)
		})
		//送出訂單
		orderRoutes.POST("", func(c *gin.Context) {
			handlers.SendOrderHandler(c, orders)
		})
		orderRoutes.PATCH("/:id", func(c *gin.Context) {
			handlers.UpdateOrderStatusHandler(c, orders)
		})
		orderRoutes.DELETE("/:id", func(c *gin.Context) {
			handlers.DeleteOrderHandler(c, orders)
		})
		orderRoutes.GET("/get/count", func(c *gin.Context) {
			handlers.GetOrderCountHandler(c, orders)
		})
		orderRoutes.GET("/get/totalsales", func(c *gin.Context) {
			handlers.GetTotalSalesHandler(c, orders)
		})
		orderRoutes.GET("/get/userorders/:userid", func(c *gin.Context) {
			handlers.GetUserOrdersHandler(c, orders)
		})
	}

	return router
}
