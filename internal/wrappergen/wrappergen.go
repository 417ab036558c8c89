// Package wrappergen renders the streamer wrapper and parameter sources for
// every accelerator declared in a cluster configuration.
package wrappergen

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"maps"
	"math/bits"
	"os"
	"path/filepath"
	"text/template"

	"github.com/snax-hw/goldengen/internal/logger"
)

// Template file names looked up in Options.TemplateDir.
const (
	StreamParamTemplate = "stream_param_gen.scala.tpl"
	WrapperTemplate     = "snax_streamer_wrapper.sv.tpl"
	CsrManParamTemplate = "csrman_param_gen.scala.tpl"
)

// Accelerator is one core's accelerator configuration.
type Accelerator struct {
	Name string
	// Config is the raw snax_acc_cfg section.
	Config map[string]any
	// Streamer is snax_streamer_cfg augmented with the cluster TCDM
	// parameters; templates see it as .cfg.
	Streamer map[string]any
}

// Accelerators collects the accelerators of the first hive. Cores without a
// snax_acc_cfg section are skipped.
func Accelerators(cfg map[string]any) ([]Accelerator, error) {
	view, err := decodeView(cfg)
	if err != nil {
		return nil, err
	}
	c := view.Cluster
	if len(c.Hives) == 0 {
		return nil, errors.New("cluster config has no hives")
	}
	if c.TCDM.Banks <= 0 {
		return nil, fmt.Errorf("cluster.tcdm.banks must be positive, got %d", c.TCDM.Banks)
	}
	depth := c.TCDM.Size * 1024 / c.TCDM.Banks / 8

	var accs []Accelerator
	for i, core := range lookupCores(cfg) {
		acc, ok := core["snax_acc_cfg"].(map[string]any)
		if !ok {
			continue
		}
		name, ok := acc["snax_acc_name"].(string)
		if !ok || name == "" {
			return nil, fmt.Errorf("cores[%d]: snax_acc_cfg has no snax_acc_name", i)
		}
		sc, ok := acc["snax_streamer_cfg"].(map[string]any)
		if !ok {
			return nil, fmt.Errorf("cores[%d] %s: snax_acc_cfg has no snax_streamer_cfg", i, name)
		}
		streamer := maps.Clone(sc)
		streamer["tcdmDataWidth"] = c.DataWidth
		streamer["tcdmDmaDataWidth"] = c.DMADataWidth
		streamer["tcdmDepth"] = depth
		streamer["numBanks"] = c.TCDM.Banks
		streamer["tagName"] = name
		accs = append(accs, Accelerator{Name: name, Config: acc, Streamer: streamer})
	}
	return accs, nil
}

// lookupCores returns the untyped core maps so $ref-resolved values keep
// their decoded form.
func lookupCores(cfg map[string]any) []map[string]any {
	cluster, _ := cfg["cluster"].(map[string]any)
	hives, _ := cluster["hives"].([]any)
	if len(hives) == 0 {
		return nil
	}
	hive, _ := hives[0].(map[string]any)
	raw, _ := hive["cores"].([]any)
	cores := make([]map[string]any, 0, len(raw))
	for _, c := range raw {
		m, _ := c.(map[string]any)
		cores = append(cores, m)
	}
	return cores
}

// Options locates the inputs and output roots of Generate.
type Options struct {
	ConfigPath  string
	TemplateDir string
	// StreamerDir receives the Scala parameter files.
	StreamerDir string
	// GenDir receives <name>/<name>_streamer_wrapper.sv per accelerator.
	GenDir string
}

func (o Options) validate() error {
	switch {
	case o.ConfigPath == "":
		return errors.New("config path is required")
	case o.TemplateDir == "":
		return errors.New("template dir is required")
	case o.StreamerDir == "":
		return errors.New("streamer dir is required")
	case o.GenDir == "":
		return errors.New("gen dir is required")
	}
	return nil
}

var funcs = template.FuncMap{
	"add":   func(a, b int) int { return a + b },
	"sub":   func(a, b int) int { return a - b },
	"mul":   func(a, b int) int { return a * b },
	"clog2": clog2,
}

// clog2 is ceil(log2(n)), with clog2(n) = 0 for n <= 1.
func clog2(n int) int {
	if n <= 1 {
		return 0
	}
	return bits.Len(uint(n - 1))
}

func loadTemplate(dir, name string) (*template.Template, error) {
	t, err := template.New(name).Funcs(funcs).Option("missingkey=error").ParseFiles(filepath.Join(dir, name))
	if err != nil {
		return nil, fmt.Errorf("load template: %w", err)
	}
	return t, nil
}

// Render executes t with cfg bound to .cfg.
func Render(t *template.Template, cfg map[string]any) ([]byte, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, map[string]any{"cfg": cfg}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Generate renders the three templates for every accelerator and returns the
// written paths in order. The Scala parameter files are shared, so with
// several accelerators the last one wins.
func Generate(ctx context.Context, opts Options) ([]string, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	log := logger.FromContext(ctx)

	cfg, err := LoadConfig(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	accs, err := Accelerators(cfg)
	if err != nil {
		return nil, err
	}
	if len(accs) == 0 {
		log.Warn("cluster config declares no accelerators", "config", opts.ConfigPath)
		return nil, nil
	}

	tpls := make(map[string]*template.Template, 3)
	for _, name := range []string{StreamParamTemplate, WrapperTemplate, CsrManParamTemplate} {
		t, err := loadTemplate(opts.TemplateDir, name)
		if err != nil {
			return nil, err
		}
		tpls[name] = t
	}

	var written []string
	for _, acc := range accs {
		if err := ctx.Err(); err != nil {
			return written, err
		}
		targets := []struct {
			tpl  string
			path string
		}{
			{StreamParamTemplate, filepath.Join(opts.StreamerDir, "StreamParamGen.scala")},
			{WrapperTemplate, filepath.Join(opts.GenDir, acc.Name, acc.Name+"_streamer_wrapper.sv")},
			{CsrManParamTemplate, filepath.Join(opts.StreamerDir, "CsrManParamGen.scala")},
		}
		for _, tg := range targets {
			out, err := Render(tpls[tg.tpl], acc.Streamer)
			if err != nil {
				return written, fmt.Errorf("%s: render %s: %w", acc.Name, tg.tpl, err)
			}
			if err := writeFile(tg.path, out); err != nil {
				return written, fmt.Errorf("%s: %w", acc.Name, err)
			}
			written = append(written, tg.path)
			log.Debug("rendered template", "accelerator", acc.Name, "template", tg.tpl, "path", tg.path)
		}
		log.Info("generated accelerator wrapper", "accelerator", acc.Name, "tcdm_depth", acc.Streamer["tcdmDepth"])
	}
	return written, nil
}
