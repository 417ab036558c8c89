package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/snax-hw/goldengen/internal/datagen"
	"github.com/snax-hw/goldengen/internal/logger"
)

func genCmd() *cli.Command {
	var (
		vectorConfig string
		format       string
		outDir       string
		seed         uint64
	)

	return &cli.Command{
		Name:  "gen",
		Usage: "Generate test vectors and golden outputs from a vector config",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "vector config (YAML or JSON)",
				Required:    true,
				Destination: &vectorConfig,
			},
			&cli.StringFlag{
				Name:        "format",
				Aliases:     []string{"f"},
				Usage:       "output format (header, json)",
				Value:       formatHeader,
				Destination: &format,
			},
			&cli.StringFlag{
				Name:        "out",
				Aliases:     []string{"o"},
				Usage:       "output directory (default: stdout)",
				Destination: &outDir,
			},
			&cli.Uint64Flag{
				Name:        "seed",
				Usage:       "override the seed of the vector config",
				Destination: &seed,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log := logger.FromContext(ctx)
			seedSet := applyGenConfig(cmd, LoadConfig(), &seed, &format, &outDir)

			cfg, err := datagen.LoadConfig(vectorConfig)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			if seedSet {
				cfg.Seed = seed
			}

			vecs, err := datagen.GenerateAll(ctx, cfg)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: generate: %v", err), 1)
			}
			written, err := writeVectors(vecs, format, outDir, os.Stdout)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: write vectors: %v", err), 1)
			}
			for _, path := range written {
				log.Info("wrote vectors", "path", path)
			}
			log.Debug("generation finished", "sets", len(vecs), "seed", cfg.Seed)
			return nil
		},
	}
}
