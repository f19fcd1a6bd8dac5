package database

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/fluentdb/fluentdb/database/grammar"
	"github.com/fluentdb/fluentdb/logger"
)

// newTestLogger creates a logger for database package tests.
func newTestLogger() logger.Logger {
	return logger.New("debug", true)
}

// newMockConnection creates a Connection backed by sqlmock using the given
// grammar. The mock handle is closed automatically at the end of the test.
func newMockConnection(t *testing.T, g *grammar.Grammar, opts ...Option) (*Connection, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return New(db, g, newTestLogger(), opts...), mock
}
