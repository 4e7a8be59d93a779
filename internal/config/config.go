// Package config は環境変数と .env からアプリケーション設定を読み込みます。
package config

import (
	"fmt"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config はアプリケーション全体の設定です。
type Config struct {
	AppEnv    string `mapstructure:"app_env" validate:"oneof=development production test"`
	Port      int    `mapstructure:"port" validate:"gt=0,lt=65536"`
	LogLevel  string `mapstructure:"log_level" validate:"oneof=debug info warn error"`
	LogFormat string `mapstructure:"log_format" validate:"oneof=json text"`

	JWTSecret    string        `mapstructure:"jwt_secret" validate:"required,min=16"`
	JWTExpiresIn time.Duration `mapstructure:"jwt_expires_in" validate:"gt=0"`

	DBDriver       string `mapstructure:"db_driver" validate:"oneof=mysql postgres"`
	DatabaseURL    string `mapstructure:"database_url" validate:"required_if=DBDriver postgres"`
	DBUser         string `mapstructure:"db_user"`
	DBPass         string `mapstructure:"db_pass"`
	DBHost         string `mapstructure:"db_host"`
	DBPort         string `mapstructure:"db_port"`
	DBName         string `mapstructure:"db_name"`
	DBMaxOpenConns int    `mapstructure:"db_max_open_conns" validate:"gt=0"`

	RedisAddr     string `mapstructure:"redis_addr"`
	RedisPassword string `mapstructure:"redis_password"`
	RedisDB       int    `mapstructure:"redis_db" validate:"gte=0"`

	RateLimitWindow           time.Duration `mapstructure:"rate_limit_window" validate:"gt=0"`
	RateLimitMax              int           `mapstructure:"rate_limit_max" validate:"gt=0"`
	AuthRateLimitWindow       time.Duration `mapstructure:"auth_rate_limit_window" validate:"gt=0"`
	AuthRateLimitMax          int           `mapstructure:"auth_rate_limit_max" validate:"gt=0"`
	CreateTaskRateLimitWindow time.Duration `mapstructure:"create_task_rate_limit_window" validate:"gt=0"`
	CreateTaskRateLimitMax    int           `mapstructure:"create_task_rate_limit_max" validate:"gt=0"`

	CORSAllowedOrigins []string `mapstructure:"cors_allowed_origins"`
}

// IsProduction は本番モードかどうかを返します。
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// Addr は http.Server 用のリッスンアドレスを返します。
func (c *Config) Addr() string {
	return ":" + strconv.Itoa(c.Port)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app_env", "development")
	v.SetDefault("port", 3000)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")

	v.SetDefault("jwt_secret", "")
	v.SetDefault("jwt_expires_in", 24*time.Hour)

	v.SetDefault("db_driver", "mysql")
	v.SetDefault("database_url", "")
	v.SetDefault("db_user", "")
	v.SetDefault("db_pass", "")
	v.SetDefault("db_host", "127.0.0.1")
	v.SetDefault("db_port", "3306")
	v.SetDefault("db_name", "task_manager")
	v.SetDefault("db_max_open_conns", 25)

	v.SetDefault("redis_addr", "")
	v.SetDefault("redis_password", "")
	v.SetDefault("redis_db", 0)

	v.SetDefault("rate_limit_window", 15*time.Minute)
	v.SetDefault("rate_limit_max", 100)
	v.SetDefault("auth_rate_limit_window", 15*time.Minute)
	v.SetDefault("auth_rate_limit_max", 5)
	v.SetDefault("create_task_rate_limit_window", time.Minute)
	v.SetDefault("create_task_rate_limit_max", 10)

	v.SetDefault("cors_allowed_origins", []string{"http://localhost:3000"})
}

// Load は .env を読み込んだ上で環境変数から設定を構築し、検証します。
// 環境変数は .env の値より優先されます。
func Load() (*Config, error) {
	// .env が無くてもエラーにしない
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration: %w", err)
	}
	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}
