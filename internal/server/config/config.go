// Package config handles configuration for the server component:
// defaults, .env and environment variables, a JSON overlay and
// command-line flags, applied in that order.
package config

import (
	"os"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Config holds runtime settings for the GophNotes server.
//
// Fields:
//   - EndpointAddrHTTP / EndpointAddrGRPC: bind addresses. An empty gRPC address disables the API.
//   - DatabaseDriver / DatabaseDSN: "sqlite" (modernc) or "pgx" (PostgreSQL) and its DSN.
//   - DBMaxOpenConns: upper bound on pooled connections.
//   - SessionSecret / SessionMaxAge: signing key and lifetime of the browser session cookie.
//   - SecretKey / AccessTokenValidityDuration: HS256 key and lifetime of API access tokens.
//   - BcryptCost: work factor for password hashes.
//   - RedisURL / CacheTTL: note list cache. An empty URL disables caching.
//   - S3*: note export target. An empty S3BaseEndpoint disables export.
//   - LogLevel / LogFormat: slog level and handler ("json" or "text").
type Config struct {
	EndpointAddrHTTP            string
	EndpointAddrGRPC            string
	DatabaseDriver              string
	DatabaseDSN                 string
	DBMaxOpenConns              int
	SessionSecret               string
	SessionMaxAge               time.Duration
	SecretKey                   string
	AccessTokenValidityDuration time.Duration
	BcryptCost                  int
	RedisURL                    string
	CacheTTL                    time.Duration
	S3RootUser                  string
	S3RootPassword              string
	S3Bucket                    string
	S3Region                    string
	S3BaseEndpoint              string
	LogLevel                    string
	LogFormat                   string
}

// LoadDefaults populates Config with development defaults.
// NOTE: the secrets are insecure and must be overridden in production.
func (c *Config) LoadDefaults() {
	c.EndpointAddrHTTP = ":8080"
	c.EndpointAddrGRPC = ":50051"
	c.DatabaseDriver = "sqlite"
	c.DatabaseDSN = "file:data/gophnotes.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	c.DBMaxOpenConns = 10
	c.SessionSecret = "secretKey"
	c.SessionMaxAge = 24 * time.Hour
	c.SecretKey = "secretKey"
	c.AccessTokenValidityDuration = 15 * time.Minute
	c.BcryptCost = bcrypt.DefaultCost
	c.RedisURL = ""
	c.CacheTTL = 5 * time.Minute
	c.S3RootUser = "admin"
	c.S3RootPassword = "secretpassword"
	c.S3Bucket = "notes"
	c.S3Region = "us-east-1"
	c.S3BaseEndpoint = ""
	c.LogLevel = "info"
	c.LogFormat = "json"
}

// CacheEnabled reports whether a Redis URL was configured.
func (c *Config) CacheEnabled() bool { return c.RedisURL != "" }

// ExportEnabled reports whether an S3 endpoint was configured.
func (c *Config) ExportEnabled() bool { return c.S3BaseEndpoint != "" }

// LoadConfig builds a Config from defaults, then .env and the process
// environment, then the JSON file named by -c/-config, then flags.
func LoadConfig() (*Config, error) {
	return load(os.Args[1:], os.LookupEnv)
}

func load(args []string, lookup func(string) (string, bool)) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := loadDotEnv(); err != nil {
		return nil, err
	}
	if err := parseEnv(cfg, lookup); err != nil {
		return nil, err
	}
	if err := parseJson(cfg, args); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	return cfg, nil
}
