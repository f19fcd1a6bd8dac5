// Package database provides the fluent query builder and the connection-level
// transaction manager that executes compiled statements against a live
// database handle.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/fluentdb/fluentdb/config"
	"github.com/fluentdb/fluentdb/database/grammar"
	"github.com/fluentdb/fluentdb/database/internal/tracking"
	"github.com/fluentdb/fluentdb/logger"
)

// Connection owns one live database handle and manages the transaction
// depth counter that emulates nested transactions through savepoints.
//
// A Connection is bound to a single logical call stack: the transaction
// depth is unsynchronized mutable state, so concurrent use from multiple
// goroutines requires external synchronization. Multiple query builders may
// share one Connection sequentially.
type Connection struct {
	db       *sql.DB
	grammar  *grammar.Grammar
	logger   logger.Logger
	settings tracking.Settings
	rebind   func(string) string
	profiler Profiler

	// tx is the open native transaction while level > 0; all statements
	// route through it so savepoints observe them.
	tx    *sql.Tx
	level int
}

// Option configures a Connection at construction time.
type Option func(*Connection)

// WithProfiler attaches an external profiler collaborator. Every executed
// statement reports a start and an end event to it.
func WithProfiler(p Profiler) Option {
	return func(c *Connection) {
		c.profiler = p
	}
}

// WithRebind installs a placeholder rewriter applied to every statement
// before execution. The postgresql package uses this to convert the
// grammar's "?" placeholders into the $N form the driver expects.
func WithRebind(fn func(string) string) Option {
	return func(c *Connection) {
		c.rebind = fn
	}
}

// WithQuerySettings derives statement tracking settings from cfg.
func WithQuerySettings(cfg *config.DatabaseConfig) Option {
	return func(c *Connection) {
		c.settings = tracking.NewSettings(cfg)
	}
}

// New wraps an open database handle with the given grammar and logger.
func New(db *sql.DB, g *grammar.Grammar, log logger.Logger, opts ...Option) *Connection {
	c := &Connection{
		db:       db,
		grammar:  g,
		logger:   log,
		settings: tracking.NewSettings(nil),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Grammar returns the grammar compiling SQL for this connection's dialect.
func (c *Connection) Grammar() *grammar.Grammar {
	return c.grammar
}

// Driver returns the dialect identifier of the underlying backend.
func (c *Connection) Driver() string {
	return c.grammar.Dialect().Name()
}

// TransactionLevel returns the current nested transaction depth.
// 0 means no transaction is open.
func (c *Connection) TransactionLevel() int {
	return c.level
}

// querier returns the execution target: the open transaction when one
// exists, the pooled handle otherwise. Routing through the transaction is
// what makes savepoints observe the statements issued at deeper levels.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (c *Connection) querier() querier {
	if c.tx != nil {
		return c.tx
	}
	return c.db
}

// Query executes a parameterized read statement and returns all rows as an
// ordered sequence of column-name-to-value mappings.
func (c *Connection) Query(ctx context.Context, query string, bindings ...any) ([]Row, error) {
	query = c.prepare(query)

	id := c.profileStart(query, bindings)
	start := time.Now()

	rows, err := c.querier().QueryContext(ctx, query, bindings...)
	c.track(query, bindings, start, 0, err)
	c.profileEnd(id, 0, err)
	if err != nil {
		return nil, err
	}

	return scanRows(rows)
}

// Exec executes a parameterized write statement and returns the number of
// affected rows.
func (c *Connection) Exec(ctx context.Context, query string, bindings ...any) (int64, error) {
	query = c.prepare(query)

	id := c.profileStart(query, bindings)
	start := time.Now()

	result, err := c.querier().ExecContext(ctx, query, bindings...)
	affected := extractRowsAffected(result, err)
	c.track(query, bindings, start, affected, err)
	c.profileEnd(id, affected, err)
	if err != nil {
		return 0, err
	}

	return affected, nil
}

// BeginTransaction opens a transaction or, when one is already open,
// creates a savepoint one level deeper.
func (c *Connection) BeginTransaction(ctx context.Context) error {
	if c.level == 0 {
		tx, err := c.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("failed to begin transaction: %w", err)
		}
		c.tx = tx
	} else {
		statement := c.grammar.CompileSavepoint(savepointName(c.level))
		if _, err := c.tx.ExecContext(ctx, statement); err != nil {
			return fmt.Errorf("failed to create savepoint: %w", err)
		}
	}

	c.level++
	return nil
}

// Commit closes the innermost transaction scope: a native commit at depth 1,
// a savepoint release at deeper levels. At depth 0 it is a no-op reporting
// false with no error.
func (c *Connection) Commit(ctx context.Context) (bool, error) {
	switch {
	case c.level == 0:
		return false, nil
	case c.level == 1:
		err := c.tx.Commit()
		c.tx = nil
		c.level = 0
		if err != nil {
			return false, fmt.Errorf("failed to commit transaction: %w", err)
		}
		return true, nil
	default:
		statement := c.grammar.CompileSavepointRelease(savepointName(c.level - 1))
		if _, err := c.tx.ExecContext(ctx, statement); err != nil {
			return false, fmt.Errorf("failed to release savepoint: %w", err)
		}
		c.level--
		return true, nil
	}
}

// Rollback undoes the innermost transaction scope: a native rollback at
// depth 1, a rollback to the active savepoint at deeper levels. At depth 0
// it is a no-op reporting false with no error.
func (c *Connection) Rollback(ctx context.Context) (bool, error) {
	switch {
	case c.level == 0:
		return false, nil
	case c.level == 1:
		err := c.tx.Rollback()
		c.tx = nil
		c.level = 0
		if err != nil {
			return false, fmt.Errorf("failed to rollback transaction: %w", err)
		}
		return true, nil
	default:
		statement := c.grammar.CompileSavepointRollback(savepointName(c.level - 1))
		if _, err := c.tx.ExecContext(ctx, statement); err != nil {
			return false, fmt.Errorf("failed to rollback to savepoint: %w", err)
		}
		c.level--
		return true, nil
	}
}

// Transaction begins a scope, invokes fn with the connection, commits on
// normal return, and rolls back and re-raises on any failure. This is the
// only place failures automatically trigger a rollback.
func (c *Connection) Transaction(ctx context.Context, fn func(conn *Connection) error) error {
	if err := c.BeginTransaction(ctx); err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_, _ = c.Rollback(ctx)
			panic(p)
		}
	}()

	if err := fn(c); err != nil {
		if _, rbErr := c.Rollback(ctx); rbErr != nil {
			return fmt.Errorf("transaction error: %v, rollback error: %w", err, rbErr)
		}
		return err
	}

	_, err := c.Commit(ctx)
	return err
}

// Health checks database connectivity.
func (c *Connection) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return c.db.PingContext(ctx)
}

// Stats returns database connection statistics.
func (c *Connection) Stats() map[string]any {
	stats := c.db.Stats()
	return map[string]any{
		"max_open_connections": stats.MaxOpenConnections,
		"open_connections":     stats.OpenConnections,
		"in_use":               stats.InUse,
		"idle":                 stats.Idle,
		"wait_count":           stats.WaitCount,
		"wait_duration":        stats.WaitDuration.String(),
		"transaction_level":    c.level,
	}
}

// Close closes the database connection.
func (c *Connection) Close() error {
	c.logger.Info().Str("driver", c.Driver()).Msg("Closing database connection")
	return c.db.Close()
}

// prepare applies the placeholder rewriter, when one is installed.
func (c *Connection) prepare(query string) string {
	if c.rebind != nil {
		return c.rebind(query)
	}
	return query
}

func (c *Connection) track(query string, args []any, start time.Time, rowsAffected int64, err error) {
	tc := &tracking.Context{
		Logger:   c.logger,
		Vendor:   c.Driver(),
		Settings: c.settings,
	}
	tracking.TrackDBOperation(tc, query, args, start, rowsAffected, err)
}

func (c *Connection) profileStart(query string, bindings []any) string {
	if c.profiler == nil {
		return ""
	}
	id := uuid.NewString()
	c.profiler.QueryStart(id, query, bindings)
	return id
}

func (c *Connection) profileEnd(id string, rowsAffected int64, err error) {
	if c.profiler == nil {
		return
	}
	c.profiler.QueryEnd(id, rowsAffected, err)
}

// savepointName returns the stable name for the savepoint created when
// beginning at the given depth.
func savepointName(level int) string {
	return fmt.Sprintf("sp%d", level)
}

// extractRowsAffected safely reads the affected-row count from a result.
func extractRowsAffected(result sql.Result, err error) int64 {
	if err != nil || result == nil {
		return 0
	}
	affected, raErr := result.RowsAffected()
	if raErr != nil {
		return 0
	}
	return affected
}
