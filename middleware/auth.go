package middleware

import (
	"eshop/apperror"
	"eshop/jwt"
	"github.com/gin-gonic/gin"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
)

const (
	UserIDKey  = "UserID"
	IsAdminKey = "IsAdmin"
)

// 無須驗證的路由
type PublicRoute struct {
	Pattern *regexp.Regexp
	Methods []string
}

func (r PublicRoute) matches(method, path string) bool {
	if !r.Pattern.MatchString(path) {
		return false
	}
	if len(r.Methods) == 0 {
		return true
	}
	for _, m := range r.Methods {
		if m == method {
			return true
		}
	}
	return false
}

// 商品及分類的查詢、登入、註冊及上傳圖片不需要Token
func PublicRoutes(apiURL string) []PublicRoute {
	api := regexp.QuoteMeta(strings.TrimRight(apiURL, "/"))
	readOnly := []string{http.MethodGet, http.MethodOptions}
	return []PublicRoute{
		{Pattern: regexp.MustCompile(`^/public/uploads(/.*)?$`), Methods: readOnly},
		{Pattern: regexp.MustCompile(`^` + api + `/products(/.*)?$`), Methods: readOnly},
		{Pattern: regexp.MustCompile(`^` + api + `/categories(/.*)?$`), Methods: readOnly},
		{Pattern: regexp.MustCompile(`^` + api + `/users/login/?$`), Methods: []string{http.MethodPost}},
		{Pattern: regexp.MustCompile(`^` + api + `/users/register/?$`), Methods: []string{http.MethodPost}},
	}
}

func isPublic(routes []PublicRoute, method, path string) bool {
	for _, route := range routes {
		if route.matches(method, path) {
			return true
		}
	}
	return false
}

// 驗證Token，通過後將UserID和IsAdmin存入context
func AuthMiddleware(issuer *jwt.Issuer, publicRoutes []PublicRoute, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if isPublic(publicRoutes, c.Request.Method, c.Request.URL.Path) {
			c.Next()
			return
		}

		token, ok := bearerToken(c)
		if !ok {
			apperror.Respond(c, logger, apperror.Unauthorized("no authorization token was found", nil))
			return
		}

		claims, err := issuer.VerifyToken(token)
		if err != nil {
			message := "invalid token"
			if jwt.IsExpired(err) {
				message = "token expired"
			}
			apperror.Respond(c, logger, apperror.Unauthorized(message, err))
			return
		}

		if isRevoked(claims) {
			apperror.Respond(c, logger, apperror.Unauthorized("token revoked", nil))
			return
		}

		c.Set(UserIDKey, claims.UserID)
		c.Set(IsAdminKey, claims.IsAdmin)
		c.Next()
	}
}
