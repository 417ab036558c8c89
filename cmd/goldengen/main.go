package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/snax-hw/goldengen/internal/logger"
)

func main() {
	app := &cli.Command{
		Name:   "goldengen",
		Usage:  "Golden models and test vectors for the SNAX accelerators",
		Flags:  loggingFlags(),
		Before: setupLogging,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return cli.ShowAppHelp(cmd)
		},
		Commands: []*cli.Command{
			genCmd(),
			goldenCmd(),
			wrappergenCmd(),
			serveCmd(),
			versionCmd(),
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setupLogging installs the logger selected by the logging flags and the
// user config into the command context.
func setupLogging(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	applyLogConfig(cmd, LoadConfig())

	level := slog.LevelDebug
	if !debug {
		var err error
		level, err = logger.ParseLevel(logLevel)
		if err != nil {
			return ctx, cli.Exit(fmt.Sprintf("error: %v", err), 1)
		}
	}
	log, err := logger.Open(os.Stderr, logFormat, level)
	if err != nil {
		return ctx, cli.Exit(fmt.Sprintf("error: %v", err), 1)
	}
	return logger.WithContext(ctx, log), nil
}
