package main

import (
	"context"
	"io"
	"os"

	"github.com/samcharles93/sc2k/internal/logger"
	"github.com/urfave/cli/v3"
)

var (
	logLevel   string
	logFormat  string
	debug      bool
	configFile string

	// cfg is read once in setupLogging and consulted by subcommands.
	cfg Config
)

func loggingFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "log level (debug, info, warn, error)",
			Value:       "info",
			Destination: &logLevel,
		},
		&cli.StringFlag{
			Name:        "log-format",
			Usage:       "log format (pretty, json, text)",
			Value:       "pretty",
			Destination: &logFormat,
		},
		&cli.BoolFlag{
			Name:        "debug",
			Usage:       "enable debug logging (shorthand for --log-level=debug)",
			Destination: &debug,
		},
		&cli.StringFlag{
			Name:        "config",
			Usage:       "path to config.yaml",
			Value:       configPath(),
			Destination: &configFile,
		},
	}
}

// setupLogging loads the config file and stores the logger in the context
// handed to every subcommand.
func setupLogging(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	cfg = LoadConfig(configFile)
	applyLogConfig(cmd, cfg, &logLevel, &logFormat)
	level := logLevel
	if debug {
		level = "debug"
	}
	log := logger.Setup(errWriter(cmd), level, logFormat)
	return logger.WithContext(ctx, log), nil
}

func outWriter(cmd *cli.Command) io.Writer {
	if w := cmd.Root().Writer; w != nil {
		return w
	}
	return os.Stdout
}

func errWriter(cmd *cli.Command) io.Writer {
	if w := cmd.Root().ErrWriter; w != nil {
		return w
	}
	return os.Stderr
}
