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
//	-a string   base URL of the feed server (default from Config)
//	-r string   room identifier to join
//
// The function filters os.Args to only include the flags it knows about, so
// it does not interfere with flags owned by other components.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-r"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerBaseURL, "a", cfg.ServerBaseURL, "base URL of the feed server")
	fs.StringVar(&cfg.Room, "r", cfg.Room, "room identifier")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
