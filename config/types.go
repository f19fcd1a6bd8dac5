package config

import "time"

// Config represents the overall library configuration structure.
// It includes the database connection details, logging preferences, and
// query-cache options.
type Config struct {
	Database DatabaseConfig `koanf:"database" json:"database" yaml:"database" mapstructure:"database"`
	Log      LogConfig      `koanf:"log" json:"log" yaml:"log" mapstructure:"log"`
	Cache    CacheConfig    `koanf:"cache" json:"cache" yaml:"cache" mapstructure:"cache"`
}

// DatabaseConfig holds database connection settings.
//
// Driver selects the backend: "mysql", "pgsql"/"postgresql", or "sqlite".
// Network drivers use Host/Port/DBName/Username/Password/Charset; the
// embedded sqlite driver uses Database as a file path and defaults to an
// in-memory instance when it is empty.
type DatabaseConfig struct {
	Driver   string `koanf:"driver" json:"driver" yaml:"driver" mapstructure:"driver" validate:"required,oneof=mysql pgsql postgresql sqlite"`
	Host     string `koanf:"host" json:"host" yaml:"host" mapstructure:"host"`
	Port     int    `koanf:"port" json:"port" yaml:"port" mapstructure:"port" validate:"omitempty,min=1,max=65535"`
	DBName   string `koanf:"dbname" json:"dbname" yaml:"dbname" mapstructure:"dbname"`
	Username string `koanf:"username" json:"username" yaml:"username" mapstructure:"username"`
	Password string `koanf:"password" json:"password" yaml:"password" mapstructure:"password"`
	Charset  string `koanf:"charset" json:"charset" yaml:"charset" mapstructure:"charset"`
	SSLMode  string `koanf:"sslmode" json:"sslmode" yaml:"sslmode" mapstructure:"sslmode"`

	// Database is the sqlite file path, or ":memory:". A directory implied
	// by the path is created if absent.
	Database string `koanf:"database" json:"database" yaml:"database" mapstructure:"database"`

	// ConnectionString overrides the individual fields when set.
	ConnectionString string `koanf:"connectionstring" json:"connectionstring" yaml:"connectionstring" mapstructure:"connectionstring"`

	Pool  PoolConfig  `koanf:"pool" json:"pool" yaml:"pool" mapstructure:"pool"`
	Query QueryConfig `koanf:"query" json:"query" yaml:"query" mapstructure:"query"`
}

// PoolConfig holds connection pool settings.
type PoolConfig struct {
	MaxConns        int           `koanf:"maxconns" json:"maxconns" yaml:"maxconns" mapstructure:"maxconns" validate:"omitempty,min=1"`
	MaxIdleConns    int           `koanf:"maxidleconns" json:"maxidleconns" yaml:"maxidleconns" mapstructure:"maxidleconns" validate:"omitempty,min=0"`
	ConnMaxLifetime time.Duration `koanf:"connmaxlifetime" json:"connmaxlifetime" yaml:"connmaxlifetime" mapstructure:"connmaxlifetime"`
	ConnMaxIdleTime time.Duration `koanf:"connmaxidletime" json:"connmaxidletime" yaml:"connmaxidletime" mapstructure:"connmaxidletime"`
}

// QueryConfig holds statement tracking settings.
type QueryConfig struct {
	Slow SlowQueryConfig `koanf:"slow" json:"slow" yaml:"slow" mapstructure:"slow"`
	Log  QueryLogConfig  `koanf:"log" json:"log" yaml:"log" mapstructure:"log"`
}

// SlowQueryConfig holds slow query detection settings.
type SlowQueryConfig struct {
	Threshold time.Duration `koanf:"threshold" json:"threshold" yaml:"threshold" mapstructure:"threshold"`
}

// QueryLogConfig holds statement logging settings.
type QueryLogConfig struct {
	Parameters bool `koanf:"parameters" json:"parameters" yaml:"parameters" mapstructure:"parameters"`
	MaxLength  int  `koanf:"maxlength" json:"maxlength" yaml:"maxlength" mapstructure:"maxlength" validate:"omitempty,min=1"`
}

// LogConfig holds logging preferences.
type LogConfig struct {
	Level  string `koanf:"level" json:"level" yaml:"level" mapstructure:"level" validate:"omitempty,oneof=trace debug info warn error fatal panic disabled"`
	Pretty bool   `koanf:"pretty" json:"pretty" yaml:"pretty" mapstructure:"pretty"`
}

// CacheConfig holds query-cache settings.
type CacheConfig struct {
	Enabled         bool          `koanf:"enabled" json:"enabled" yaml:"enabled" mapstructure:"enabled"`
	DefaultTTL      time.Duration `koanf:"defaultttl" json:"defaultttl" yaml:"defaultttl" mapstructure:"defaultttl"`
	CleanupInterval time.Duration `koanf:"cleanupinterval" json:"cleanupinterval" yaml:"cleanupinterval" mapstructure:"cleanupinterval"`
}
