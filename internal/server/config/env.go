package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// dotEnvFile is read into the process environment if it exists. Variables
// already set in the environment take precedence.
var dotEnvFile = ".env"

func loadDotEnv() error {
	if err := godotenv.Load(dotEnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("error loading %s: %w", dotEnvFile, err)
	}
	return nil
}

// parseEnv overlays GOPHNOTES_* variables. Durations accept Go syntax ("15m")
// or a bare number of seconds.
func parseEnv(c *Config, lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *int) error {
		if v, ok := lookup(key); ok && v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			*dst = n
		}
		return nil
	}
	dur := func(key string, dst *time.Duration) error {
		if v, ok := lookup(key); ok && v != "" {
			d, err := parseDuration(v)
			if err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			*dst = d
		}
		return nil
	}

	str("GOPHNOTES_HTTP_ADDR", &c.EndpointAddrHTTP)
	str("GOPHNOTES_GRPC_ADDR", &c.EndpointAddrGRPC)
	str("GOPHNOTES_DB_DRIVER", &c.DatabaseDriver)
	str("GOPHNOTES_DB_DSN", &c.DatabaseDSN)
	str("GOPHNOTES_SESSION_SECRET", &c.SessionSecret)
	str("GOPHNOTES_SECRET_KEY", &c.SecretKey)
	str("GOPHNOTES_REDIS_URL", &c.RedisURL)
	str("GOPHNOTES_S3_USER", &c.S3RootUser)
	str("GOPHNOTES_S3_PASSWORD", &c.S3RootPassword)
	str("GOPHNOTES_S3_BUCKET", &c.S3Bucket)
	str("GOPHNOTES_S3_REGION", &c.S3Region)
	str("GOPHNOTES_S3_ENDPOINT", &c.S3BaseEndpoint)
	str("GOPHNOTES_LOG_LEVEL", &c.LogLevel)
	str("GOPHNOTES_LOG_FORMAT", &c.LogFormat)

	return errors.Join(
		num("GOPHNOTES_DB_MAX_OPEN_CONNS", &c.DBMaxOpenConns),
		num("GOPHNOTES_BCRYPT_COST", &c.BcryptCost),
		dur("GOPHNOTES_SESSION_MAX_AGE", &c.SessionMaxAge),
		dur("GOPHNOTES_ACCESS_TOKEN_TTL", &c.AccessTokenValidityDuration),
		dur("GOPHNOTES_CACHE_TTL", &c.CacheTTL),
	)
}

func parseDuration(s string) (time.Duration, error) {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Duration(n) * time.Second, nil
	}
	return time.ParseDuration(s)
}
