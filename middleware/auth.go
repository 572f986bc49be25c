package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tdlabs/dms/utils"
)

// ContextUsernameKey stores the verified token subject inside the Gin context.
const ContextUsernameKey = "username"

// AuthRequired ensures the request carries a valid token, either as an
// Authorization bearer header or, for download-style endpoints, as a token
// query parameter. The verified subject is the sole identity downstream
// handlers may act on.
func AuthRequired() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		tokenString, ok := extractToken(ctx)
		if !ok {
			utils.Error(ctx, http.StatusUnauthorized, 40101, "missing or malformed credentials")
			ctx.Abort()
			return
		}

		username, err := utils.ParseToken(tokenString)
		if err != nil {
			// Tampering and expiry are indistinguishable to the caller.
			utils.Error(ctx, http.StatusUnauthorized, 40102, "invalid token")
			ctx.Abort()
			return
		}

		ctx.Set(ContextUsernameKey, username)
		ctx.Next()
	}
}

func extractToken(ctx *gin.Context) (string, bool) {
	authHeader := ctx.GetHeader("Authorization")
	if authHeader == "" {
		if token := strings.TrimSpace(ctx.Query("token")); token != "" {
			return token, true
		}
		return "", false
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", false
	}
	return token, true
}

// Username returns the identity resolved by AuthRequired.
func Username(ctx *gin.Context) (string, bool) {
	value, exists := ctx.Get(ContextUsernameKey)
	if !exists {
		return "", false
	}
	username, ok := value.(string)
	if !ok || username == "" {
		return "", false
	}
	return username, true
}
