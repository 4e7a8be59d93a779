package ratelimit

import (
	"log/slog"
	"math"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"task-manager-api/internal/apperror"
)

// Options はリミッタの設定です。
type Options struct {
	Name   string
	Max    int
	Window time.Duration
	// SkipSuccessful が true の場合、成功したリクエストは数えません。
	SkipSuccessful bool
	Message        string
}

// Limiter は固定ウィンドウのレート制限ミドルウェアです。
type Limiter struct {
	opts    Options
	store   Store
	metrics *Metrics
	log     *slog.Logger
	now     func() time.Time
}

func New(store Store, opts Options, metrics *Metrics, log *slog.Logger) *Limiter {
	if opts.Message == "" {
		opts.Message = "too many requests, please try again later"
	}
	return &Limiter{opts: opts, store: store, metrics: metrics, log: log, now: time.Now}
}

// Middleware は gin のハンドラを返します。
// ストアが失敗した場合はリクエストを通します。
func (l *Limiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		key := l.opts.Name + ":" + c.ClientIP()

		count, resetAt, err := l.store.Increment(ctx, key, l.opts.Window)
		if err != nil {
			l.metrics.storeError(l.opts.Name)
			l.log.WarnContext(ctx, "rate limit store unavailable", "limiter", l.opts.Name, "error", err)
			c.Next()
			return
		}

		resetSeconds := secondsUntil(l.now(), resetAt)
		c.Header("RateLimit-Limit", strconv.Itoa(l.opts.Max))
		c.Header("RateLimit-Remaining", strconv.FormatInt(max(int64(l.opts.Max)-count, 0), 10))
		c.Header("RateLimit-Reset", strconv.Itoa(resetSeconds))

		if count > int64(l.opts.Max) {
			l.metrics.rejected(l.opts.Name)
			c.Header("Retry-After", strconv.Itoa(resetSeconds))
			c.Error(apperror.TooManyRequests(l.opts.Message))
			c.Abort()
			return
		}
		l.metrics.allowed(l.opts.Name)

		c.Next()

		// エラー応答は外側の ErrorHandler が書くため、ここでは c.Errors で判定します。
		if l.opts.SkipSuccessful && len(c.Errors) == 0 && c.Writer.Status() < 400 {
			if err := l.store.Decrement(ctx, key); err != nil {
				l.log.WarnContext(ctx, "rate limit decrement failed", "limiter", l.opts.Name, "error", err)
			}
		}
	}
}

func secondsUntil(now, t time.Time) int {
	d := t.Sub(now).Seconds()
	if d <= 0 {
		return 0
	}
	return int(math.Ceil(d))
}

// WithClock は Retry-After の計算に使う時刻の取得元を差し替えて l 自身を返します。
func (l *Limiter) WithClock(now func() time.Time) *Limiter {
	l.now = now
	return l
}
