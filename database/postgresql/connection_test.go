package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fluentdb/fluentdb/config"
	"github.com/fluentdb/fluentdb/logger"
)

func newTestLogger() logger.Logger {
	return logger.New("debug", true)
}

func TestQuoteDSN(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		expected string
	}{
		{"empty value", "", "''"},
		{"plain value", "localhost", "localhost"},
		{"value with dots and dashes", "db-host.internal_1", "db-host.internal_1"},
		{"value with space", "my password", "'my password'"},
		{"value with quote", "it's", `'it\'s'`},
		{"value with backslash", `a\b`, `'a\\b'`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, quoteDSN(tt.value))
		})
	}
}

func TestOpenBuildsDSNFromFields(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	var parsed *pgx.ConnConfig
	origOpen, origPing := openPostgresDB, pingPostgresDB
	t.Cleanup(func() { openPostgresDB, pingPostgresDB = origOpen, origPing })
	openPostgresDB = func(cfg *pgx.ConnConfig) *sql.DB {
		parsed = cfg
		return db
	}
	pingPostgresDB = func(ctx context.Context, db *sql.DB) error {
		return db.PingContext(ctx)
	}

	mock.ExpectPing()

	cfg := &config.DatabaseConfig{
		Driver:   config.PostgreSQL,
		Host:     "db.internal",
		Username: "app",
		Password: "secret word",
		DBName:   "orders",
		SSLMode:  "disable",
	}

	opened, err := Open(cfg, newTestLogger())
	require.NoError(t, err)
	assert.Same(t, db, opened)

	require.NotNil(t, parsed)
	assert.Equal(t, "db.internal", parsed.Host)
	assert.Equal(t, uint16(5432), parsed.Port)
	assert.Equal(t, "app", parsed.User)
	assert.Equal(t, "secret word", parsed.Password)
	assert.Equal(t, "orders", parsed.Database)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOpenClosesHandleOnPingFailure(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)

	origOpen, origPing := openPostgresDB, pingPostgresDB
	t.Cleanup(func() { openPostgresDB, pingPostgresDB = origOpen, origPing })
	openPostgresDB = func(*pgx.ConnConfig) *sql.DB { return db }
	pingPostgresDB = func(context.Context, *sql.DB) error {
		return errors.New("connection refused")
	}

	mock.ExpectClose()

	cfg := &config.DatabaseConfig{
		Driver: config.PostgreSQL,
		Host:   "db.internal",
		DBName: "orders",
	}

	opened, err := Open(cfg, newTestLogger())
	assert.Nil(t, opened)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to ping PostgreSQL database")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOpenRejectsMalformedConnectionString(t *testing.T) {
	cfg := &config.DatabaseConfig{
		Driver:           config.PostgreSQL,
		ConnectionString: "post://%zz",
	}

	opened, err := Open(cfg, newTestLogger())
	assert.Nil(t, opened)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse PostgreSQL config")
}

func TestRebind(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		expected string
	}{
		{
			"no placeholders",
			"select 1",
			"select 1",
		},
		{
			"sequential ordinals",
			"select * from t where a = ? and b = ?",
			"select * from t where a = $1 and b = $2",
		},
		{
			"question mark inside string literal",
			"select * from t where a = '?' and b = ?",
			"select * from t where a = '?' and b = $1",
		},
		{
			"question mark inside quoted identifier",
			`select "odd?col" from t where a = ?`,
			`select "odd?col" from t where a = $1`,
		},
		{
			"double question mark escape",
			"select meta ?? 'key' from t where a = ?",
			"select meta ? 'key' from t where a = $1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Rebind(tt.query))
		})
	}
}
