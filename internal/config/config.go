package config

import (
	"time"
)

// Config is the root application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Log      LogConfig      `yaml:"log"`
	SRS      SRSConfig      `yaml:"srs"`
	Import   ImportConfig   `yaml:"import"`
	Media    MediaConfig    `yaml:"media"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `yaml:"host"             env:"SERVER_HOST"             env-default:"0.0.0.0"`
	Port            int           `yaml:"port"             env:"SERVER_PORT"             env-default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"SERVER_READ_TIMEOUT"     env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"SERVER_WRITE_TIMEOUT"    env-default:"30s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	DSN             string        `yaml:"dsn"                env:"DATABASE_DSN"                env-required:"true"`
	MaxConns        int32         `yaml:"max_conns"          env:"DATABASE_MAX_CONNS"          env-default:"25"`
	MinConns        int32         `yaml:"min_conns"          env:"DATABASE_MIN_CONNS"          env-default:"5"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"  env:"DATABASE_MAX_CONN_LIFETIME"  env-default:"1h"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env:"DATABASE_MAX_CONN_IDLE_TIME" env-default:"30m"`
	MigrateOnStart  bool          `yaml:"migrate_on_start"   env:"DATABASE_MIGRATE_ON_START"   env-default:"false"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}

// SRSConfig holds spaced-repetition scheduler settings.
type SRSConfig struct {
	DefaultEaseFactor float64 `yaml:"default_ease_factor" env:"SRS_DEFAULT_EASE"    env-default:"2.5"`
	MinEaseFactor     float64 `yaml:"min_ease_factor"     env:"SRS_MIN_EASE"        env-default:"1.3"`
	DailyNewGoal      int     `yaml:"daily_new_goal"      env:"SRS_DAILY_NEW_GOAL"  env-default:"20"`
	QueueLimitMax     int     `yaml:"queue_limit_max"     env:"SRS_QUEUE_LIMIT_MAX" env-default:"200"`
}

// ImportConfig holds legacy-package import settings.
type ImportConfig struct {
	WorkDir         string `yaml:"work_dir"          env:"IMPORT_WORK_DIR"          env-default:"/tmp/tsuyanki-import"`
	MaxArchiveBytes int64  `yaml:"max_archive_bytes" env:"IMPORT_MAX_ARCHIVE_BYTES" env-default:"268435456"`
}

// MediaConfig holds media store settings.
type MediaConfig struct {
	Dir     string `yaml:"dir"      env:"MEDIA_DIR"      env-default:"./storage/media"`
	BaseURL string `yaml:"base_url" env:"MEDIA_BASE_URL" env-default:"/storage/media/"`
}
