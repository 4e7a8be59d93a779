// Package routesはroutingを行います。
package routes

import (
	"log/slog"
	"net/http"
	"slices"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"task-manager-api/internal/apperror"
	"task-manager-api/internal/config"
	"task-manager-api/internal/docs"
	"task-manager-api/internal/handlers"
	"task-manager-api/internal/ratelimit"
	"task-manager-api/internal/services"
	"task-manager-api/internal/validation"
)

// Dependencies はルーターが必要とするサービスです。main で組み立てて渡します。
type Dependencies struct {
	Config         *config.Config
	Log            *slog.Logger
	Registry       *prometheus.Registry
	RateLimitStore ratelimit.Store
	DB             handlers.Pinger
	TaskService    *services.TaskService
	UserService    *services.UserService
	JWTService     *services.JWTService
	Docs           *docs.Docs
}

// SetupRouter はGinルーターをセットアップし、すべてのエンドポイントを登録します。
func SetupRouter(deps Dependencies) *gin.Engine {
	validation.Setup()
	cfg := deps.Config

	r := gin.New()
	r.Use(
		RequestID(),
		RequestLogger(deps.Log),
		NewHTTPMetrics(deps.Registry).Middleware(),
		cors.New(corsConfig(cfg.CORSAllowedOrigins)),
		ErrorHandler(apperror.NewClassifier(cfg.IsProduction()), deps.Log),
		Recovery(deps.Log),
	)
	r.NoRoute(NoRoute)

	// レートリミッタ
	limiterMetrics := ratelimit.NewMetrics(deps.Registry)
	general := ratelimit.New(deps.RateLimitStore, ratelimit.Options{
		Name:   "general",
		Max:    cfg.RateLimitMax,
		Window: cfg.RateLimitWindow,
	}, limiterMetrics, deps.Log)
	authLimiter := ratelimit.New(deps.RateLimitStore, ratelimit.Options{
		Name:           "auth",
		Max:            cfg.AuthRateLimitMax,
		Window:         cfg.AuthRateLimitWindow,
		SkipSuccessful: true,
		Message:        "too many login attempts, please try again later",
	}, limiterMetrics, deps.Log)
	createLimiter := ratelimit.New(deps.RateLimitStore, ratelimit.Options{
		Name:    "create_task",
		Max:     cfg.CreateTaskRateLimitMax,
		Window:  cfg.CreateTaskRateLimitWindow,
		Message: "too many tasks created, slow down",
	}, limiterMetrics, deps.Log)

	// ハンドラー
	taskHandler := handlers.NewTaskHandler(deps.TaskService)
	userHandler := handlers.NewUserHandler(deps.UserService, deps.JWTService)
	healthHandler := handlers.NewHealthHandler(deps.DB)

	// ルーティング
	r.GET("/", deps.Docs.WelcomeHandler)
	r.GET("/api-docs", deps.Docs.UIHandler)
	r.GET("/api-docs/openapi.yaml", deps.Docs.SpecHandler)
	r.GET("/health", healthHandler.HealthCheckHandler)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{})))

	api := r.Group("/api", general.Middleware())

	auth := api.Group("/auth", authLimiter.Middleware())
	{
		auth.POST("/register", userHandler.RegisterHandler)
		auth.POST("/login", userHandler.LoginHandler)
	}

	authorized := api.Group("", AuthMiddleware(deps.JWTService))
	{
		authorized.POST("/tasks", createLimiter.Middleware(), taskHandler.CreateTaskHandler)
		authorized.GET("/tasks", taskHandler.GetTasksHandler)
		authorized.GET("/tasks/:id", taskHandler.GetTaskByIDHandler)
		authorized.PUT("/tasks/:id", taskHandler.UpdateTaskHandler)
		authorized.DELETE("/tasks/:id", taskHandler.DeleteTaskHandler)
		authorized.GET("/stats", taskHandler.StatsHandler)
	}

	for _, op := range UnregisteredOperations(r, deps.Docs) {
		deps.Log.Warn("documented operation has no route", slog.String("operation", op))
	}

	return r
}

// UnregisteredOperations はドキュメントに記載されているのにルートが無い操作を返します。
func UnregisteredOperations(r *gin.Engine, d *docs.Docs) []string {
	registered := make(map[string]bool)
	for _, ri := range r.Routes() {
		registered[ri.Method+" "+ri.Path] = true
	}
	var missing []string
	for _, op := range d.Operations() {
		if !registered[op] {
			missing = append(missing, op)
		}
	}
	return missing
}

func corsConfig(origins []string) cors.Config {
	config := cors.DefaultConfig()
	if len(origins) == 0 || slices.Contains(origins, "*") {
		config.AllowAllOrigins = true
	} else {
		config.AllowOrigins = origins
		config.AllowCredentials = true
	}
	config.AllowMethods = []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", headerRequestID}
	config.ExposeHeaders = []string{headerRequestID, "RateLimit-Limit", "RateLimit-Remaining", "RateLimit-Reset", "Retry-After"}
	return config
}
