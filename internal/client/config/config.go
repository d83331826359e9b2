// Package config loads runtime configuration for the GophNotes CLI.
//
// Sources, later ones winning: LoadDefaults, the JSON file named by
// -c/-config, then command-line flags.
package config

import (
	"os"
	"time"
)

// Config holds runtime settings for the CLI.
//
//   - ServerEndpointAddr: host:port of the gRPC API.
//   - ExportDir: where downloaded exports are written.
//   - RequestTimeout: deadline for each API call.
type Config struct {
	ServerEndpointAddr string
	ExportDir          string
	RequestTimeout     time.Duration
}

func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:50051"
	c.ExportDir = "exports"
	c.RequestTimeout = 10 * time.Second
}

func LoadConfig() (*Config, error) {
	return load(os.Args[1:])
}

func load(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJson(cfg, args); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	return cfg, nil
}
