package main

import (
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

const envGoldengenConfig = "GOLDENGEN_CONFIG"

// Config represents the goldengen configuration file
// (~/.config/goldengen/config.yaml). Pointer fields distinguish "not set"
// from zero values.
type Config struct {
	// Vector generation
	Seed         *uint64 `yaml:"seed"`
	OutputFormat string  `yaml:"output_format"`
	OutputDir    string  `yaml:"output_dir"`

	// Wrapper generation
	TemplateDir string `yaml:"template_dir"`

	// Output
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	// Server
	ServerAddress string `yaml:"server_address"`
	StoreCapacity *int   `yaml:"store_capacity"`
}

func configPath() string {
	if p := os.Getenv(envGoldengenConfig); p != "" {
		return p
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "goldengen", "config.yaml")
}

func applyLogConfig(c *cli.Command, cfg Config) {
	if cfg.LogLevel != "" && !c.IsSet("log-level") {
		logLevel = cfg.LogLevel
	}
	if cfg.LogFormat != "" && !c.IsSet("log-format") {
		logFormat = cfg.LogFormat
	}
}

// applyGenConfig applies config file defaults to gen command variables
// when the corresponding CLI flag was not explicitly set.
func applyGenConfig(c *cli.Command, cfg Config, seed *uint64, format, outDir *string) bool {
	seedSet := c.IsSet("seed")
	if cfg.Seed != nil && !seedSet {
		*seed = *cfg.Seed
		seedSet = true
	}
	if cfg.OutputFormat != "" && !c.IsSet("format") {
		*format = cfg.OutputFormat
	}
	if cfg.OutputDir != "" && !c.IsSet("out") {
		*outDir = cfg.OutputDir
	}
	return seedSet
}

func applyWrappergenConfig(c *cli.Command, cfg Config, tplDir *string) {
	if cfg.TemplateDir != "" && !c.IsSet("tpl-path") {
		*tplDir = cfg.TemplateDir
	}
}

// applyServeConfig applies config file defaults to serve command variables.
func applyServeConfig(c *cli.Command, cfg Config, addr *string, capacity *int) {
	if cfg.ServerAddress != "" && !c.IsSet("addr") {
		*addr = cfg.ServerAddress
	}
	if cfg.StoreCapacity != nil && !c.IsSet("store-capacity") {
		*capacity = *cfg.StoreCapacity
	}
}

// LoadConfig reads the config file. Returns a zero Config if the file doesn't exist.
func LoadConfig() Config {
	return loadConfigFrom(configPath())
}

func loadConfigFrom(path string) Config {
	if path == "" {
		return Config{}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}
	}
	return cfg
}
