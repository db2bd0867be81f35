package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds the environment driven configuration for the dashboard service.
type Config struct {
	// Service Configuration
	ServiceName     string        `env:"SERVICE_NAME" envDefault:"r2-dashboard"`
	Environment     string        `env:"ENVIRONMENT" envDefault:"development"`
	HTTPPort        int           `env:"HTTP_PORT" envDefault:"8080"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat       string        `env:"LOG_FORMAT" envDefault:"console"`
	EnableTracing   bool          `env:"ENABLE_TRACING" envDefault:"false"`
	OTLPEndpoint    string        `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:""`
	OTLPInsecure    bool          `env:"OTEL_EXPORTER_OTLP_INSECURE" envDefault:"true"`
	TraceSample     float64       `env:"TRACE_SAMPLE_RATIO" envDefault:"1"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	CORSOrigins     []string      `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`

	// Database - Read/Write Split
	DBPostgresqlWriteDSN string `env:"DB_POSTGRESQL_WRITE_DSN,notEmpty"`
	DBPostgresqlRead1DSN string `env:"DB_POSTGRESQL_READ1_DSN"` // Optional read replica

	// Database Connection Pool
	DBMaxIdleConns int           `env:"DB_MAX_IDLE_CONNS" envDefault:"5"`
	DBMaxOpenConns int           `env:"DB_MAX_OPEN_CONNS" envDefault:"15"`
	DBConnLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" envDefault:"30m"`

	// R2 credentials used when setup has not stored them in the database.
	R2AccountID       string `env:"R2_ACCOUNT_ID"`
	R2AccessKeyID     string `env:"R2_ACCESS_KEY_ID"`
	R2SecretAccessKey string `env:"R2_SECRET_ACCESS_KEY"`
	R2Endpoint        string `env:"R2_ENDPOINT"`
	R2Region          string `env:"R2_REGION" envDefault:"auto"`
	CloudflareToken   string `env:"CLOUDFLARE_API_TOKEN"`
	CloudflareBaseURL string `env:"CLOUDFLARE_API_BASE_URL" envDefault:"https://api.cloudflare.com/client/v4"`

	CredentialsCacheTTL time.Duration `env:"CREDENTIALS_CACHE_TTL" envDefault:"5m"`
	ConfigEncryptionKey string        `env:"CONFIG_ENCRYPTION_KEY"`

	// Listing and transfer limits
	ListMaxUpstreamPages int           `env:"LIST_MAX_UPSTREAM_PAGES" envDefault:"5"`
	MaxUploadBytes       int64         `env:"MAX_UPLOAD_BYTES" envDefault:"104857600"`
	PresignTTL           time.Duration `env:"PRESIGN_TTL" envDefault:"15m"`

	// Bucket statistics
	StatsCacheSize       int           `env:"STATS_CACHE_SIZE" envDefault:"256"`
	StatsCacheTTL        time.Duration `env:"STATS_CACHE_TTL" envDefault:"10m"`
	StatsMaxKeys         int           `env:"STATS_MAX_KEYS" envDefault:"100000"`
	StatsRefreshSchedule string        `env:"STATS_REFRESH_SCHEDULE" envDefault:"*/15 * * * *"`

	// Authentication
	AuthEnabled   bool          `env:"AUTH_ENABLED" envDefault:"true"`
	SessionSecret string        `env:"SESSION_SECRET"`
	SessionTTL    time.Duration `env:"SESSION_TTL" envDefault:"24h"`
	SessionCookie string        `env:"SESSION_COOKIE" envDefault:"r2_session"`
	AuthIssuer    string        `env:"AUTH_ISSUER" envDefault:"r2-dashboard"`
	AuthJWKSURL   string        `env:"AUTH_JWKS_URL"`

	// Externally issued tokens verified against AUTH_JWKS_URL
	AuthJWKSIssuer    string `env:"AUTH_JWKS_ISSUER"`
	AuthJWKSAudience  string `env:"AUTH_JWKS_AUDIENCE"`
	AuthJWKSTrustRole bool   `env:"AUTH_JWKS_TRUST_ROLE" envDefault:"false"`
}

// Load parses environment variables into Config.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env config: %w", err)
	}
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) normalize() error {
	c.R2AccountID = strings.TrimSpace(c.R2AccountID)
	c.R2AccessKeyID = strings.TrimSpace(c.R2AccessKeyID)
	c.R2SecretAccessKey = strings.TrimSpace(c.R2SecretAccessKey)
	c.R2Endpoint = strings.TrimRight(strings.TrimSpace(c.R2Endpoint), "/")
	c.CloudflareBaseURL = strings.TrimRight(strings.TrimSpace(c.CloudflareBaseURL), "/")

	if c.MaxUploadBytes <= 0 {
		c.MaxUploadBytes = 100 * 1024 * 1024
	}
	if c.ListMaxUpstreamPages <= 0 {
		c.ListMaxUpstreamPages = 1
	}
	if c.CredentialsCacheTTL < 0 {
		c.CredentialsCacheTTL = 0
	}
	if c.StatsCacheSize <= 0 {
		c.StatsCacheSize = 256
	}
	if c.AuthEnabled && strings.TrimSpace(c.SessionSecret) == "" {
		return fmt.Errorf("SESSION_SECRET is required when AUTH_ENABLED is true")
	}
	if c.AuthEnabled && c.AuthJWKSURL != "" && strings.TrimSpace(c.AuthJWKSIssuer) == "" {
		return fmt.Errorf("AUTH_JWKS_ISSUER is required when AUTH_JWKS_URL is set")
	}
	if key := c.ConfigEncryptionKey; key != "" && len(key) < 16 {
		return fmt.Errorf("CONFIG_ENCRYPTION_KEY must be at least 16 characters")
	}
	return nil
}

// GetDatabaseWriteDSN returns the write database connection string.
func (c *Config) GetDatabaseWriteDSN() string {
	return c.DBPostgresqlWriteDSN
}

// GetDatabaseReadDSN returns the read replica DSN, falling back to the write DSN.
func (c *Config) GetDatabaseReadDSN() string {
	if c.DBPostgresqlRead1DSN != "" {
		return c.DBPostgresqlRead1DSN
	}
	return c.GetDatabaseWriteDSN()
}

// HasReadReplica reports whether a distinct read replica is configured.
func (c *Config) HasReadReplica() bool {
	return c.DBPostgresqlRead1DSN != "" && c.DBPostgresqlRead1DSN != c.DBPostgresqlWriteDSN
}

// Addr returns the HTTP listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

// EnvCredentials returns the R2 settings supplied through the environment, keyed by
// the same names the setup flow persists.
func (c *Config) EnvCredentials() map[string]string {
	values := map[string]string{
		"R2_ACCOUNT_ID":        c.R2AccountID,
		"R2_ACCESS_KEY_ID":     c.R2AccessKeyID,
		"R2_SECRET_ACCESS_KEY": c.R2SecretAccessKey,
		"R2_ENDPOINT":          c.R2Endpoint,
		"CLOUDFLARE_API_TOKEN": c.CloudflareToken,
	}
	for key, value := range values {
		if value == "" {
			delete(values, key)
		}
	}
	return values
}
