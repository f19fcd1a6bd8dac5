package database

import (
	"fmt"
	"slices"

	"github.com/fluentdb/fluentdb/config"
	"github.com/fluentdb/fluentdb/database/grammar"
	"github.com/fluentdb/fluentdb/database/mysql"
	"github.com/fluentdb/fluentdb/database/postgresql"
	"github.com/fluentdb/fluentdb/database/sqlite"
	"github.com/fluentdb/fluentdb/logger"
)

// NewConnection opens a database connection according to cfg and returns it
// with the matching grammar and query tracking attached. The concrete driver
// is selected by cfg.Driver (supported: "mysql", "pgsql", "postgresql",
// "sqlite"). If cfg.Driver is unsupported an error is returned; if the chosen
// driver fails to initialize, that underlying error is returned.
func NewConnection(cfg *config.DatabaseConfig, log logger.Logger, opts ...Option) (*Connection, error) {
	if err := ValidateDriver(cfg.Driver); err != nil {
		return nil, err
	}

	options := append([]Option{WithQuerySettings(cfg)}, opts...)

	switch cfg.Driver {
	case MySQL:
		db, err := mysql.Open(cfg, log)
		if err != nil {
			return nil, err
		}
		return New(db, grammar.NewMySQL(), log, options...), nil
	case PostgreSQL, PostgreSQLLong:
		db, err := postgresql.Open(cfg, log)
		if err != nil {
			return nil, err
		}
		options = append(options, WithRebind(postgresql.Rebind))
		return New(db, grammar.NewPostgres(), log, options...), nil
	case SQLite:
		db, err := sqlite.Open(cfg, log)
		if err != nil {
			return nil, err
		}
		return New(db, grammar.NewSQLite(), log, options...), nil
	default:
		// Unreachable after ValidateDriver, kept to satisfy the switch.
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}
}

// ValidateDriver returns nil if driver is one of the supported drivers.
// Otherwise it returns an error describing the invalid value and listing the
// supported drivers.
func ValidateDriver(driver string) error {
	supported := SupportedDrivers()
	if !slices.Contains(supported, driver) {
		return fmt.Errorf("unsupported database driver: %s (supported: %v)", driver, supported)
	}
	return nil
}

// SupportedDrivers returns the list of supported driver identifiers.
func SupportedDrivers() []string {
	return []string{MySQL, PostgreSQL, PostgreSQLLong, SQLite}
}
