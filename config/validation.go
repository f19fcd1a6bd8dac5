package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Driver name constants.
const (
	MySQL          = "mysql"
	PostgreSQL     = "pgsql"
	PostgreSQLLong = "postgresql"
	SQLite         = "sqlite"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks cfg against the struct-level validation tags and the
// cross-field rules the tags cannot express. It returns the first failure.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
			e := errs[0]
			return fmt.Errorf("field %s failed %q validation", e.Namespace(), e.Tag())
		}
		return err
	}

	return validateDatabase(&cfg.Database)
}

// validateDatabase enforces the per-driver required fields that depend on
// which driver is selected.
func validateDatabase(cfg *DatabaseConfig) error {
	switch cfg.Driver {
	case MySQL, PostgreSQL, PostgreSQLLong:
		if cfg.ConnectionString != "" {
			return nil
		}
		if cfg.Host == "" {
			return fmt.Errorf("database host is required for driver %s", cfg.Driver)
		}
		if cfg.DBName == "" {
			return fmt.Errorf("database dbname is required for driver %s", cfg.Driver)
		}
	case SQLite:
		// Database path is optional; empty means :memory:.
	}

	return nil
}
