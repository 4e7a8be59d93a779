package handlers

import (
	"errors"
	"io"
	"strconv"

	"github.com/gin-gonic/gin"

	"task-manager-api/internal/apperror"
)

var errNoUser = errors.New("user id not found in context")

// userIDFromContext は AuthMiddleware が設定したユーザーIDを取り出します。
func userIDFromContext(c *gin.Context) (int64, error) {
	v, ok := c.Get("user_id")
	if !ok {
		return 0, errNoUser
	}
	id, ok := v.(int64)
	if !ok {
		return 0, errNoUser
	}
	return id, nil
}

func parseID(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperror.Validation("id", `"id" must be a positive integer`)
	}
	return id, nil
}

// bindJSON は本文を検証付きで読み込みます。本文が空の場合も 400 にします。
func bindJSON(c *gin.Context, obj any) error {
	if err := c.ShouldBindJSON(obj); err != nil {
		if errors.Is(err, io.EOF) {
			return apperror.Validation("", "request body is required")
		}
		return err
	}
	return nil
}
