package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"     validate:"required"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Auth      AuthConfig      `mapstructure:"auth"       validate:"required"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	// Env controls verbose error detail: stack traces are included in
	// error responses only in development.
	Env string `mapstructure:"env" validate:"required,oneof=development production"`
	// MaxBodyBytes is the request body ceiling enforced before handlers run.
	MaxBodyBytes int64 `mapstructure:"max_body_bytes" validate:"required,gt=0"`
}

// DatabaseConfig contains all database-related configuration settings.
// An empty URL selects the in-memory user store.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"omitempty,url"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret            string `mapstructure:"jwt_secret"             validate:"required,min=32"`
	TokenLifetimeMinutes int    `mapstructure:"token_lifetime_minutes" validate:"required,gt=0"`
}

// RateLimitConfig contains the request-quota settings for the rate limiter.
type RateLimitConfig struct {
	Max      int `mapstructure:"max"       validate:"required,gt=0"`
	WindowMS int `mapstructure:"window_ms" validate:"required,gt=0"`
	// RedisURL selects the Redis-backed window store when set; empty uses
	// the in-process store.
	RedisURL string `mapstructure:"redis_url" validate:"omitempty"`
}

// IsDevelopment reports whether verbose error detail should be exposed.
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development"
}
