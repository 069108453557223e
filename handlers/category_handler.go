package handlers

import (
	"eshop/services"
	"github.com/gin-gonic/gin"
	"net/http"
)

// 查詢分類列表
func GetCategoryListHandler(c *gin.Context, catalog *services.CatalogService) {
	categories, err := catalog.ListCategories(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, categories)
}

func GetCategoryHandler(c *gin.Context, catalog *services.CatalogService) {
	category, err := catalog.GetCategory(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, category)
}

// 新增分類
func CreateCategoryHandler(c *gin.Context, catalog *services.CatalogService) {
	var categoryReq services.CategoryInput
	if err := c.ShouldBindJSON(&categoryReq); err != nil {
		respondError(c, bindError(err))
		return
	}

	category, err := catalog.CreateCategory(c.Request.Context(), categoryReq)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, category)
}

// 修改分類
func UpdateCategoryHandler(c *gin.Context, catalog *services.CatalogService) {
	var categoryReq services.CategoryInput
	if err := c.ShouldBindJSON(&categoryReq); err != nil {
		respondError(c, bindError(err))
		return
	}

	category, err := catalog.UpdateCategory(c.Request.Context(), c.Param("id"), categoryReq)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, category)
}

// 刪除分類
func DeleteCategoryHandler(c *gin.Context, catalog *services.CatalogService) {
	if err := catalog.DeleteCategory(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	respondDeleted(c, "the category is deleted!")
}
