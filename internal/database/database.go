// Package database はデータベース接続とマイグレーションを扱います。
package database

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"time"

	"github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib" // "pgx" ドライバを登録

	"task-manager-api/internal/config"
)

// GetDSN は設定から接続文字列 (DSN) を構築します。
// MySQL では parseTime と clientFoundRows を必ず有効にします。
// clientFoundRows が無いと、値が変わらない UPDATE の RowsAffected が 0 になります。
func GetDSN(cfg *config.Config, dialect Dialect) (string, error) {
	if dialect == Postgres {
		return cfg.DatabaseURL, nil
	}

	var mc *mysql.Config
	if cfg.DatabaseURL != "" {
		parsed, err := mysql.ParseDSN(cfg.DatabaseURL)
		if err != nil {
			return "", fmt.Errorf("invalid mysql DSN: %w", err)
		}
		mc = parsed
	} else {
		mc = mysql.NewConfig()
		mc.User = cfg.DBUser
		mc.Passwd = cfg.DBPass
		mc.Net = "tcp"
		mc.Addr = net.JoinHostPort(cfg.DBHost, cfg.DBPort)
		mc.DBName = cfg.DBName
	}
	mc.ParseTime = true
	mc.ClientFoundRows = true
	mc.Loc = time.UTC
	if mc.Params == nil {
		mc.Params = map[string]string{}
	}
	// DATETIME の既定値を Loc と同じ UTC で保存させる
	mc.Params["time_zone"] = "'+00:00'"
	return mc.FormatDSN(), nil
}

// Open はデータベース接続を初期化し、疎通確認まで行います。
func Open(ctx context.Context, cfg *config.Config) (*sql.DB, Dialect, error) {
	dialect, err := ParseDialect(cfg.DBDriver)
	if err != nil {
		return nil, "", err
	}
	dsn, err := GetDSN(cfg, dialect)
	if err != nil {
		return nil, "", err
	}

	db, err := sql.Open(dialect.DriverName(), dsn)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open database connection: %w", err)
	}
	db.SetMaxOpenConns(cfg.DBMaxOpenConns)
	db.SetMaxIdleConns(cfg.DBMaxOpenConns)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, "", fmt.Errorf("failed to ping database: %w", err)
	}
	return db, dialect, nil
}
