package routes

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"task-manager-api/internal/apperror"
)

// ErrorHandler はハンドラが積んだエラーを分類し、エンベロープを書き出します。
func ErrorHandler(classifier *apperror.Classifier, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last().Err
		env := classifier.Classify(err)
		logClassified(c, log, env, err)

		if c.Writer.Written() {
			return
		}
		c.AbortWithStatusJSON(env.Status, env)
	}
}

// logClassified のログ出力が panic しても応答は必ず書かれます。
func logClassified(c *gin.Context, log *slog.Logger, env apperror.Envelope, err error) {
	defer func() {
		_ = recover()
	}()

	level := slog.LevelWarn
	if env.Status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	log.Log(c.Request.Context(), level, "request failed",
		"request_id", c.GetString(ctxRequestID),
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"status", env.Status,
		"kind", apperror.KindOf(err).String(),
		"error", err.Error(),
	)
}

// Recovery は panic を 500 のエラーとして ErrorHandler に渡します。
func Recovery(log *slog.Logger) gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(nil, func(c *gin.Context, rec any) {
		log.ErrorContext(c.Request.Context(), "panic recovered",
			"request_id", c.GetString(ctxRequestID),
			"panic", rec,
			"stack", string(debug.Stack()),
		)
		c.Error(fmt.Errorf("panic: %v", rec))
		c.Abort()
	})
}

// NoRoute は未定義のルートを 404 にします。
func NoRoute(c *gin.Context) {
	c.Error(apperror.NotFound(fmt.Sprintf("route %s not found", c.Request.URL.Path)))
}
