package routes

import (
	"strings"

	"github.com/gin-gonic/gin"

	"task-manager-api/internal/apperror"
	"task-manager-api/internal/models"
)

const (
	ctxUserID   = "user_id"
	ctxUsername = "username"
)

// TokenVerifier はトークンを検証します。
type TokenVerifier interface {
	ValidateToken(tokenString string) (*models.JWTClaims, error)
}

// AuthMiddleware はJWTトークンを検証し、ユーザー情報をコンテキストに設定するミドルウェアです。
// 失敗は c.Error に積み、応答は ErrorHandler が書きます。
func AuthMiddleware(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		tokenString, ok := strings.CutPrefix(header, "Bearer ")
		tokenString = strings.TrimSpace(tokenString)
		if !ok || tokenString == "" {
			c.Error(apperror.ErrTokenMissing)
			c.Abort()
			return
		}

		claims, err := verifier.ValidateToken(tokenString)
		if err != nil {
			c.Error(err)
			c.Abort()
			return
		}

		c.Set(ctxUserID, claims.UserID)
		c.Set(ctxUsername, claims.Username)
		c.Next()
	}
}
