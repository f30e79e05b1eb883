// Command pustakamd runs the Pustakam generation daemon in the foreground.
package main

import (
	"context"
	"flag"
	"log"
	"os"

	"pustakam/internal/config"
	"pustakam/internal/daemonrun"
)

func main() {
	configPath, opts := parseFlags(os.Args[1:])

	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	if err := daemonrun.Run(context.Background(), cfg, opts); err != nil {
		log.Fatalf("pustakamd: %v", err)
	}
}

func parseFlags(args []string) (string, daemonrun.Options) {
	fs := flag.NewFlagSet("pustakamd", flag.ExitOnError)
	configPath := fs.String("config", "", "configuration file path")
	logLevel := fs.String("log-level", "", "override the configured log level")
	development := fs.Bool("dev", false, "use human-readable log output")
	fs.Parse(args) //nolint:errcheck // ExitOnError

	return *configPath, daemonrun.Options{
		LogLevel:    *logLevel,
		Development: *development,
	}
}
