package handlers

import (
	"eshop/apperror"
	"eshop/services"
	"github.com/gin-gonic/gin"
	"net/http"
	"strconv"
	"strings"
)

// 查詢商品列表，可用categories=id1,id2篩選分類
func GetProductListHandler(c *gin.Context, catalog *services.CatalogService) {
	var categoryIDs []string
	if categories := c.Query("categories"); categories != "" {
		for _, id := range strings.Split(categories, ",") {
			if id = strings.TrimSpace(id); id != "" {
				categoryIDs = append(categoryIDs, id)
			}
		}
	}

	products, err := catalog.ListProducts(c.Request.Context(), categoryIDs)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

// 查詢商品詳細資料
func GetProductDataHandler(c *gin.Context, catalog *services.CatalogService) {
	product, err := catalog.GetProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

// 查詢商品數量
func GetProductCountHandler(c *gin.Context, catalog *services.CatalogService) {
	count, err := catalog.CountProducts(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"productCount": count,
	})
}

// 查詢精選商品，count為回傳數量上限
func GetFeaturedProductsHandler(c *gin.Context, catalog *services.CatalogService) {
	limit := 0
	if count := c.Param("count"); count != "" {
		limitInt, err := strconv.Atoi(count)
		if err != nil || limitInt < 0 {
			respondError(c, apperror.Validation("invalid count"))
			return
		}
		limit = limitInt
	}

	products, err := catalog.FeaturedProducts(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, products)
}
