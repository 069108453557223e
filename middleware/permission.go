package middleware

import (
	"eshop/jwt"
)

// 沒有admin權限的Token視為已撤銷
func isRevoked(claims *jwt.Claims) bool {
	return !claims.IsAdmin
}
