package config

import (
	"flag"
	"io"

	"github.com/dmitrijs2005/gophnotes/internal/flagx"
)

// parseFlags overlays command-line flags.
//
//	-a string   address and port of the gRPC API
//	-o string   directory for downloaded exports
func parseFlags(cfg *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-a", "-o"})

	fs := flag.NewFlagSet("gophnotes-cli", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.ServerEndpointAddr, "a", cfg.ServerEndpointAddr, "address and port to access server")
	fs.StringVar(&cfg.ExportDir, "o", cfg.ExportDir, "directory for downloaded exports")

	return fs.Parse(args)
}
