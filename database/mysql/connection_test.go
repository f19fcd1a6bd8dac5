package mysql

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fluentdb/fluentdb/config"
	"github.com/fluentdb/fluentdb/logger"
)

func newTestLogger() logger.Logger {
	return logger.New("debug", true)
}

func stubPing(t *testing.T, fn func(ctx context.Context, db *sql.DB) error) {
	t.Helper()
	orig := pingMySQLDB
	t.Cleanup(func() { pingMySQLDB = orig })
	pingMySQLDB = fn
}

func TestOpenConfiguresPool(t *testing.T) {
	stubPing(t, func(context.Context, *sql.DB) error { return nil })

	cfg := &config.DatabaseConfig{
		Driver:   config.MySQL,
		Host:     "db.internal",
		Username: "app",
		Password: "secret",
		DBName:   "orders",
		Charset:  "utf8mb4",
		Pool: config.PoolConfig{
			MaxConns:     10,
			MaxIdleConns: 2,
		},
	}

	db, err := Open(cfg, newTestLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	assert.Equal(t, 10, db.Stats().MaxOpenConnections)
}

func TestOpenHonorsConnectionString(t *testing.T) {
	stubPing(t, func(context.Context, *sql.DB) error { return nil })

	cfg := &config.DatabaseConfig{
		Driver:           config.MySQL,
		ConnectionString: "app:secret@tcp(db.internal:3306)/orders?parseTime=true",
	}

	db, err := Open(cfg, newTestLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	assert.NotNil(t, db)
}

func TestOpenFailsWhenPingFails(t *testing.T) {
	stubPing(t, func(context.Context, *sql.DB) error {
		return errors.New("connection refused")
	})

	cfg := &config.DatabaseConfig{
		Driver: config.MySQL,
		Host:   "db.internal",
		DBName: "orders",
	}

	db, err := Open(cfg, newTestLogger())
	assert.Nil(t, db)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to ping MySQL database")
}
