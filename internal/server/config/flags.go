package config

import (
	"flag"
	"io"
	"time"

	"github.com/dmitrijs2005/gophnotes/internal/flagx"
)

// parseFlags overlays command-line flags.
//
//	-a string   HTTP bind address (e.g. ":8080")
//	-g string   gRPC bind address ("" disables the API)
//	-D string   database driver: sqlite or pgx
//	-d string   database DSN
//	-m int      max open DB connections
//	-s string   session cookie secret
//	-t int      session lifetime, minutes
//	-k string   JWT HMAC secret key
//	-v int      access token validity, minutes
//	-b int      bcrypt cost
//	-r string   Redis URL for the note cache
//	-e string   S3 base endpoint for note export
//	-l string   log level
//
// Only the flags above are looked at, so -c/-config and foreign flags pass through.
func parseFlags(config *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-a", "-g", "-D", "-d", "-m", "-s", "-t", "-k", "-v", "-b", "-r", "-e", "-l"})

	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "HTTP address and port")
	fs.StringVar(&config.EndpointAddrGRPC, "g", config.EndpointAddrGRPC, "gRPC address and port")
	fs.StringVar(&config.DatabaseDriver, "D", config.DatabaseDriver, "database driver (sqlite|pgx)")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.IntVar(&config.DBMaxOpenConns, "m", config.DBMaxOpenConns, "max open DB connections")
	fs.StringVar(&config.SessionSecret, "s", config.SessionSecret, "session secret")
	sessionMaxAge := fs.Int("t", int(config.SessionMaxAge.Minutes()), "session lifetime (in minutes)")
	fs.StringVar(&config.SecretKey, "k", config.SecretKey, "JWT secret key")
	accessTokenValidity := fs.Int("v", int(config.AccessTokenValidityDuration.Minutes()), "access token validity (in minutes)")
	fs.IntVar(&config.BcryptCost, "b", config.BcryptCost, "bcrypt cost")
	fs.StringVar(&config.RedisURL, "r", config.RedisURL, "Redis URL")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		return err
	}

	// minute flags only override when given, so sub-minute values from JSON survive
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "t":
			config.SessionMaxAge = time.Duration(*sessionMaxAge) * time.Minute
		case "v":
			config.AccessTokenValidityDuration = time.Duration(*accessTokenValidity) * time.Minute
		}
	})
	return nil
}
