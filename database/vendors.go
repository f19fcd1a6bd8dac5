package database

import "github.com/fluentdb/fluentdb/config"

// Re-export driver identifiers so callers using the database package don't
// need to import config just to name a vendor.
const (
	MySQL          = config.MySQL
	PostgreSQL     = config.PostgreSQL
	PostgreSQLLong = config.PostgreSQLLong
	SQLite         = config.SQLite
)
