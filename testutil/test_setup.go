// Package testutil はハンドラーやリポジトリのテストで使う共通処理を提供します。
package testutil

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"task-manager-api/internal/config"
	"task-manager-api/internal/database"
	"task-manager-api/internal/docs"
	"task-manager-api/internal/logger"
	"task-manager-api/internal/models"
	"task-manager-api/internal/ratelimit"
	"task-manager-api/internal/routes"
	"task-manager-api/internal/services"
)

const TestJWTSecret = "test-secret-at-least-16-bytes"

// PingFunc は handlers.Pinger を関数で実装します。
type PingFunc func(ctx context.Context) error

func (f PingFunc) PingContext(ctx context.Context) error { return f(ctx) }

// TestEnv はメモリ実装で組み立てたルーター一式です。
type TestEnv struct {
	Router   *gin.Engine
	Config   *config.Config
	Clock    *Clock
	Tasks    *MemoryTaskStore
	Users    *MemoryUserStore
	JWT      *services.JWTService
	Registry *prometheus.Registry
	PingErr  error
}

// TestConfig はテスト用の設定を返します。タスク作成の制限はテストの邪魔にならない値です。
func TestConfig() *config.Config {
	return &config.Config{
		AppEnv:                    "test",
		JWTSecret:                 TestJWTSecret,
		JWTExpiresIn:              time.Hour,
		RateLimitWindow:           15 * time.Minute,
		RateLimitMax:              1000,
		AuthRateLimitWindow:       15 * time.Minute,
		AuthRateLimitMax:          5,
		CreateTaskRateLimitWindow: time.Minute,
		CreateTaskRateLimitMax:    1000,
		CORSAllowedOrigins:        []string{"http://localhost:3000"},
	}
}

// SetupTestRouter はデータベースを使わないテスト用ルーターを作成します。
func SetupTestRouter(t *testing.T, opts ...func(*config.Config)) *TestEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := TestConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	clock := NewClock(time.Date(2024, 5, 10, 15, 0, 0, 0, time.UTC))
	env := &TestEnv{
		Config:   cfg,
		Clock:    clock,
		Tasks:    NewMemoryTaskStore(clock.Now),
		Users:    NewMemoryUserStore(clock.Now),
		JWT:      services.NewJWTService(cfg.JWTSecret, cfg.JWTExpiresIn).WithClock(clock.Now),
		Registry: prometheus.NewRegistry(),
	}

	d, err := docs.Load()
	require.NoError(t, err)

	log := logger.Discard()
	env.Router = routes.SetupRouter(routes.Dependencies{
		Config:         cfg,
		Log:            log,
		Registry:       env.Registry,
		RateLimitStore: ratelimit.NewMemoryStore(),
		DB:             PingFunc(func(context.Context) error { return env.PingErr }),
		TaskService:    services.NewTaskService(env.Tasks).WithClock(clock.Now),
		UserService:    services.NewUserService(env.Users, log),
		JWTService:     env.JWT,
		Docs:           d,
	})
	return env
}

// SetupTestDB は TEST_DATABASE_URL のデータベースに接続し、マイグレーション後に全行を削除します。
// 未設定の場合はテストをスキップします。TEST_DB_DRIVER は mysql か postgres です。
func SetupTestDB(t *testing.T) (*sql.DB, database.Dialect) {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set; skipping database test")
	}
	driver := os.Getenv("TEST_DB_DRIVER")
	if driver == "" {
		driver = "mysql"
	}

	cfg := &config.Config{DBDriver: driver, DatabaseURL: url, DBMaxOpenConns: 5}
	db, dialect, err := database.Open(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, database.Migrate(db, dialect, logger.Discard()))

	// 外部キーのため tasks -> users の順で削除
	_, err = db.Exec("DELETE FROM tasks")
	require.NoError(t, err)
	_, err = db.Exec("DELETE FROM users")
	require.NoError(t, err)
	return db, dialect
}

// DoJSON はリクエストを送り、レコーダーを返します。token が空なら Authorization を付けません。
func DoJSON(t *testing.T, router http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// DecodeJSON はレスポンス本文を v に読み込みます。
func DecodeJSON(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), "body: %s", w.Body.String())
}

// RegisterAndGetToken はユーザーを登録してトークンを返します。
func RegisterAndGetToken(t *testing.T, router http.Handler, username string) string {
	t.Helper()
	w := DoJSON(t, router, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": username,
		"email":    username + "@example.com",
		"password": "password123",
	})
	require.Equal(t, http.StatusCreated, w.Code, "register failed: %s", w.Body.String())

	var res struct {
		Token string `json:"token"`
	}
	DecodeJSON(t, w, &res)
	require.NotEmpty(t, res.Token)
	return res.Token
}

// LoginAndGetToken はログインしてトークンを返します。
func LoginAndGetToken(t *testing.T, router http.Handler, email, password string) string {
	t.Helper()
	w := DoJSON(t, router, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    email,
		"password": password,
	})
	require.Equal(t, http.StatusOK, w.Code, "login failed: %s", w.Body.String())

	var res struct {
		Token string `json:"token"`
	}
	DecodeJSON(t, w, &res)
	return res.Token
}

// CreateTestTask はAPI経由でタスクを作成します。
func CreateTestTask(t *testing.T, router http.Handler, token string, payload map[string]any) models.Task {
	t.Helper()
	w := DoJSON(t, router, http.MethodPost, "/api/tasks", token, payload)
	require.Equal(t, http.StatusCreated, w.Code, "create task failed: %s", w.Body.String())

	var res struct {
		Task models.Task `json:"task"`
	}
	DecodeJSON(t, w, &res)
	return res.Task
}
