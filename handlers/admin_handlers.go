package handlers

import (
	"errors"
	"eshop/services"
	"github.com/gin-gonic/gin"
	"mime/multipart"
	"net/http"
)

// 取出可選的上傳圖片，沒有圖片時回傳nil
func optionalFile(c *gin.Context, field string) (*multipart.FileHeader, error) {
	file, err := c.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, nil
	}
	return file, err
}

// 新增商品，image欄位為必填圖片
func CreateProductHandler(c *gin.Context, catalog *services.CatalogService, opts UploadOptions) {
	var productReq services.ProductInput
	if err := c.ShouldBind(&productReq); err != nil {
		respondError(c, bindError(err))
		return
	}

	image, err := optionalFile(c, "image")
	if err != nil {
		respondError(c, bindError(err))
		return
	}

	product, err := catalog.CreateProduct(c.Request.Context(), productReq, image, baseURL(c, opts.PublicURL))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, product)
}

// 修改商品，可選擇上傳新圖片
func UpdateProductHandler(c *gin.Context, catalog *services.CatalogService, opts UploadOptions) {
	var productReq services.ProductInput
	if err := c.ShouldBind(&productReq); err != nil {
		respondError(c, bindError(err))
		return
	}

	image, err := optionalFile(c, "image")
	if err != nil {
		respondError(c, bindError(err))
		return
	}

	product, err := catalog.UpdateProduct(c.Request.Context(), c.Param("id"), productReq, image, baseURL(c, opts.PublicURL))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

// 上傳商品圖片集
func UpdateGalleryImagesHandler(c *gin.Context, catalog *services.CatalogService, opts UploadOptions) {
	var images []*multipart.FileHeader
	form, err := c.MultipartForm()
	if err == nil {
		images = form.File["images"]
	} else if !errors.Is(err, http.ErrNotMultipart) {
		respondError(c, bindError(err))
		return
	}

	product, err := catalog.UpdateGalleryImages(c.Request.Context(), c.Param("id"), images, baseURL(c, opts.PublicURL), opts.MaxGallery)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

// 刪除商品
func DeleteProductHandler(c *gin.Context, catalog *services.CatalogService) {
	if err := catalog.DeleteProduct(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	respondDeleted(c, "the product is deleted!")
}
