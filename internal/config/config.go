package config

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// Config is the full service configuration, loaded from a TOML file.
type Config struct {
	Server       ServerConfig       `toml:"server"`
	Database     DatabaseConfig     `toml:"database"`
	Cache        CacheConfig        `toml:"cache"`
	Booking      BookingConfig      `toml:"booking"`
	CalendarSync CalendarSyncConfig `toml:"calendar_sync"`
	Logs         LogsConfig         `toml:"logs"`
	Metrics      MetricsConfig      `toml:"metrics"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	HTTPPort        int `toml:"http_port"`
	ReadTimeout     int `toml:"read_timeout_seconds"`
	WriteTimeout    int `toml:"write_timeout_seconds"`
	IdleTimeout     int `toml:"idle_timeout_seconds"`
	ShutdownTimeout int `toml:"shutdown_timeout_seconds"`
}

// DatabaseConfig configures the Postgres connection pool.
type DatabaseConfig struct {
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	User            string `toml:"user"`
	Password        string `toml:"password"`
	DBName          string `toml:"dbname"`
	SSLMode         string `toml:"sslmode"`
	MaxOpenConns    int    `toml:"max_open_conns"`
	MaxIdleConns    int    `toml:"max_idle_conns"`
	ConnMaxLifetime int    `toml:"conn_max_lifetime_seconds"`
	// LockTimeoutMS bounds how long a booking transaction waits on row locks
	// before the attempt is reported as a timeout instead of hanging.
	LockTimeoutMS int `toml:"lock_timeout_ms"`
}

// DSN builds the lib/pq connection string.
func (c DatabaseConfig) DSN() string {
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
	if c.LockTimeoutMS > 0 {
		dsn += fmt.Sprintf(" options='-c lock_timeout=%d'", c.LockTimeoutMS)
	}
	return dsn
}

// CacheConfig configures the slot cache in front of the availability
// computation.
type CacheConfig struct {
	Enabled    bool   `toml:"enabled"`
	Addr       string `toml:"addr"`
	Password   string `toml:"password"`
	DB         int    `toml:"db"`
	TTLSeconds int    `toml:"ttl_seconds"`
	// DialTimeoutMS keeps a down cache store from stalling the read path;
	// timed-out operations degrade to a cache miss.
	DialTimeoutMS int `toml:"dial_timeout_ms"`
}

// BookingConfig holds the externally owned scheduling policy: business hours,
// slot duration and minimum lead time. Read at the start of each availability
// computation, never hardcoded in the engine.
type BookingConfig struct {
	BusinessHoursStart  string `toml:"business_hours_start"`
	BusinessHoursEnd    string `toml:"business_hours_end"`
	SlotDurationMinutes int    `toml:"slot_duration_minutes"`
	MinLeadTimeMinutes  int    `toml:"min_lead_time_minutes"`
	Timezone            string `toml:"timezone"`
}

// CalendarSyncConfig configures the optional external-busy collaborator.
type CalendarSyncConfig struct {
	Enabled        bool   `toml:"enabled"`
	URL            string `toml:"url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// LogsConfig configures logging output.
type LogsConfig struct {
	File  string `toml:"file"`
	Level string `toml:"level"`
}

// MetricsConfig configures the prometheus endpoint.
type MetricsConfig struct {
	Enabled     bool   `toml:"enabled"`
	Path        string `toml:"path"`
	ServiceName string `toml:"service_name"`
}

// Load reads and validates the configuration file.
func Load(path string) (*Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("config: decode %q: %w", path, err)
	}

	applyDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.HTTPPort == 0 {
		cfg.Server.HTTPPort = 8080
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 10
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 10
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = 60
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 15
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 25
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 300
	}
	if cfg.Database.LockTimeoutMS == 0 {
		cfg.Database.LockTimeoutMS = 3000
	}
	if cfg.Cache.TTLSeconds == 0 {
		cfg.Cache.TTLSeconds = 300
	}
	if cfg.Cache.DialTimeoutMS == 0 {
		cfg.Cache.DialTimeoutMS = 500
	}
	if cfg.Booking.BusinessHoursStart == "" {
		cfg.Booking.BusinessHoursStart = "09:00"
	}
	if cfg.Booking.BusinessHoursEnd == "" {
		cfg.Booking.BusinessHoursEnd = "17:00"
	}
	if cfg.Booking.SlotDurationMinutes == 0 {
		cfg.Booking.SlotDurationMinutes = 30
	}
	if cfg.Booking.MinLeadTimeMinutes == 0 {
		cfg.Booking.MinLeadTimeMinutes = 60
	}
	if cfg.Booking.Timezone == "" {
		cfg.Booking.Timezone = "UTC"
	}
	if cfg.Logs.Level == "" {
		cfg.Logs.Level = "info"
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}
	if cfg.Metrics.ServiceName == "" {
		cfg.Metrics.ServiceName = "booking-service"
	}
	if cfg.CalendarSync.TimeoutSeconds == 0 {
		cfg.CalendarSync.TimeoutSeconds = 2
	}
}

func validate(cfg *Config) error {
	if cfg.Database.Host == "" {
		return fmt.Errorf("config: database.host is required")
	}
	if cfg.Database.User == "" {
		return fmt.Errorf("config: database.user is required")
	}
	if cfg.Database.DBName == "" {
		return fmt.Errorf("config: database.dbname is required")
	}
	if cfg.Cache.Enabled && cfg.Cache.Addr == "" {
		return fmt.Errorf("config: cache.addr is required when cache is enabled")
	}
	if cfg.CalendarSync.Enabled && cfg.CalendarSync.URL == "" {
		return fmt.Errorf("config: calendar_sync.url is required when calendar sync is enabled")
	}
	return nil
}
