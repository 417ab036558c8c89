package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/urfave/cli/v3"

	"github.com/snax-hw/goldengen/internal/api"
)

func goldenCmd() *cli.Command {
	return &cli.Command{
		Name:      "golden",
		Usage:     "Compute a golden output from a JSON request",
		ArgsUsage: "<kernel> [request.json|-]",
		Description: "The request body matches POST /v1/golden/<kernel>. Kernels: " +
			strings.Join(api.Kernels(), ", "),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			kernel := cmd.Args().Get(0)
			if kernel == "" {
				return cli.Exit("error: missing kernel name", 1)
			}
			res, err := evaluateRequest(kernel, cmd.Args().Get(1), os.Stdin)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			return writeIndented(os.Stdout, res)
		},
	}
}

// evaluateRequest runs kernel on the request in path, or on stdin when path
// is empty or "-".
func evaluateRequest(kernel, path string, stdin io.Reader) (api.GoldenResult, error) {
	r := stdin
	if path != "" && path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return api.GoldenResult{}, err
		}
		defer f.Close()
		r = f
	}
	return api.Evaluate(kernel, r)
}

func writeIndented(w io.Writer, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "%s\n", b)
	return err
}
