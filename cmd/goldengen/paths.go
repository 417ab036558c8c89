package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/snax-hw/goldengen/internal/datagen"
)

const (
	formatHeader = "header"
	formatJSON   = "json"
)

// vectorStem names the output file of vector set i.
func vectorStem(v *datagen.Vectors, i int) string {
	name := v.Name
	if name == "" {
		name = fmt.Sprintf("%s_%d", v.Kernel, i)
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			return r
		default:
			return '_'
		}
	}, name)
}

// writeVectors writes vecs in format to outDir, or to stdout when outDir is
// empty, and returns the files it created.
func writeVectors(vecs []*datagen.Vectors, format, outDir string, stdout io.Writer) ([]string, error) {
	switch format {
	case formatJSON:
		if outDir == "" {
			return nil, datagen.WriteJSON(stdout, vecs)
		}
		path := filepath.Join(outDir, "vectors.json")
		return []string{path}, writeFileWith(path, func(w io.Writer) error {
			return datagen.WriteJSON(w, vecs)
		})
	case formatHeader:
		if outDir == "" {
			if len(vecs) != 1 {
				return nil, errors.New("header output for several vector sets needs --out")
			}
			f, err := vecs[0].Header()
			if err != nil {
				return nil, err
			}
			_, err = f.WriteTo(stdout)
			return nil, err
		}
		var written []string
		for i, v := range vecs {
			f, err := v.Header()
			if err != nil {
				return written, err
			}
			path := filepath.Join(outDir, vectorStem(v, i)+".h")
			if err := writeFileWith(path, func(w io.Writer) error {
				_, err := f.WriteTo(w)
				return err
			}); err != nil {
				return written, err
			}
			written = append(written, path)
		}
		return written, nil
	default:
		return nil, fmt.Errorf("unknown output format %q (want %s or %s)", format, formatHeader, formatJSON)
	}
}

func writeFileWith(path string, fn func(io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fn(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
