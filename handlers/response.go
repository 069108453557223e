package handlers

import (
	"eshop/apperror"
	"eshop/middleware"
	"github.com/gin-gonic/gin"
	"net/http"
	"strings"
)

// 圖片網址與圖片集上傳設定
type UploadOptions struct {
	PublicURL  string
	MaxGallery int
}

func respondError(c *gin.Context, err error) {
	apperror.Respond(c, middleware.LoggerFrom(c), err)
}

// 刪除成功的回應
func respondDeleted(c *gin.Context, message string) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": message,
	})
}

func bindError(err error) error {
	return apperror.Validation("invalid request body: " + err.Error())
}

// 圖片網址的scheme://host，有設定PublicURL時優先使用
func baseURL(c *gin.Context, publicURL string) string {
	if publicURL != "" {
		return strings.TrimRight(publicURL, "/")
	}

	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if proto := c.GetHeader("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	return scheme + "://" + c.Request.Host
}
