package config

import (
	"flag"
	"os"

	"github.com/dmitrijs2005/groupfeed/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string       bind address for the HTTP endpoint
//	-d string       PostgreSQL DSN
//	-redis string   redis endpoint address
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-redis"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.EndpointAddr, "a", cfg.EndpointAddr, "address and port to bind")
	fs.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "PostgreSQL DSN")
	fs.StringVar(&cfg.RedisAddr, "redis", cfg.RedisAddr, "redis endpoint address")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
