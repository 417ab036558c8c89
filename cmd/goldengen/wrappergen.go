package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/snax-hw/goldengen/internal/wrappergen"
)

func wrappergenCmd() *cli.Command {
	var opts wrappergen.Options

	return &cli.Command{
		Name:  "wrappergen",
		Usage: "Render streamer wrappers and parameter files for the cluster accelerators",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "cfg-path",
				Usage:       "cluster configuration (YAML or JSON)",
				Required:    true,
				Destination: &opts.ConfigPath,
			},
			&cli.StringFlag{
				Name:        "tpl-path",
				Usage:       "directory holding the streamer templates",
				Value:       "./",
				Destination: &opts.TemplateDir,
			},
			&cli.StringFlag{
				Name:        "streamer-chisel-path",
				Usage:       "output directory of the Chisel parameter files",
				Value:       "./",
				Destination: &opts.StreamerDir,
			},
			&cli.StringFlag{
				Name:        "gen-path",
				Usage:       "output directory of the generated wrappers",
				Value:       "./",
				Destination: &opts.GenDir,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			applyWrappergenConfig(cmd, LoadConfig(), &opts.TemplateDir)
			if _, err := wrappergen.Generate(ctx, opts); err != nil {
				return cli.Exit(fmt.Sprintf("error: wrappergen: %v", err), 1)
			}
			return nil
		},
	}
}
