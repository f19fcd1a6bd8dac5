// Package mysql opens MySQL/MariaDB database handles for fluentdb using the
// go-sql-driver.
package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/fluentdb/fluentdb/config"
	"github.com/fluentdb/fluentdb/logger"
)

var pingMySQLDB = func(ctx context.Context, db *sql.DB) error {
	return db.PingContext(ctx)
}

// Open opens a MySQL handle for cfg, configures the pool, and verifies
// connectivity with a ping.
func Open(cfg *config.DatabaseConfig, log logger.Logger) (*sql.DB, error) {
	var dsn string
	if cfg.ConnectionString != "" {
		dsn = cfg.ConnectionString
	} else {
		port := cfg.Port
		if port == 0 {
			port = 3306
		}

		mc := mysql.NewConfig()
		mc.Net = "tcp"
		mc.Addr = fmt.Sprintf("%s:%d", cfg.Host, port)
		mc.DBName = cfg.DBName
		mc.User = cfg.Username
		mc.Passwd = cfg.Password
		mc.ParseTime = true
		if cfg.Charset != "" {
			mc.Params = map[string]string{"charset": cfg.Charset}
		}

		dsn = mc.FormatDSN()
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL database: %w", err)
	}

	db.SetMaxOpenConns(cfg.Pool.MaxConns)
	db.SetMaxIdleConns(cfg.Pool.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Pool.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.Pool.ConnMaxIdleTime)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := pingMySQLDB(ctx, db); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			log.Error().Err(closeErr).Msg("Failed to close MySQL database connection after ping failure")
		}
		return nil, fmt.Errorf("failed to ping MySQL database: %w", err)
	}

	log.Info().
		Str("host", cfg.Host).
		Int("port", cfg.Port).
		Str("database", cfg.DBName).
		Msg("Connected to MySQL database")

	return db, nil
}
