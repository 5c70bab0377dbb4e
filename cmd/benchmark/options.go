package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/jessevdk/go-flags"
	"gopkg.in/yaml.v3"
)

// Options are the command line flags, parsed by go-flags.
// Flags that were not given fall back to the config file, then to defaults.
type Options struct {
	Config     string  `short:"f" long:"config" description:"YAML config path"`
	Shards     int     `short:"s" long:"shards" description:"Number of shards"`
	Keys       int     `short:"k" long:"keys" description:"Number of distinct keys to preload"`
	Goroutines int     `short:"g" long:"goroutines" description:"Concurrent workers"`
	Ops        int     `short:"n" long:"ops" description:"Operations per worker"`
	ReadRatio  float64 `short:"r" long:"read-ratio" description:"Fraction of operations that are lookups (0..1)"`
	Selector   string  `long:"selector" choice:"maphash" choice:"xxh3" choice:"fnv1a" description:"Key to shard hash"`
	NoHint     bool    `long:"no-hint" description:"Disable the occupancy hint fast path"`
	Hint       bool    `long:"hint" description:"Enable the occupancy hint fast path, overriding the config file"`
	Verbose    bool    `short:"v" long:"verbose" description:"Debug logging"`
}

// Config is the effective benchmark configuration.
type Config struct {
	Shards     int     `yaml:"shards"`
	Keys       int     `yaml:"keys"`
	Goroutines int     `yaml:"goroutines"`
	Ops        int     `yaml:"ops"`
	ReadRatio  float64 `yaml:"readRatio"`
	Selector   string  `yaml:"selector"`
	NoHint     bool    `yaml:"noHint"`
}

func defaultConfig() Config {
	return Config{
		Shards:     4096,
		Keys:       100000,
		Goroutines: 200,
		Ops:        5000,
		ReadRatio:  0.9,
		Selector:   "maphash",
	}
}

// loadConfig reads path over the defaults. An empty path returns the defaults.
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %q: %w", path, err)
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %q: %w", path, err)
	}
	return cfg, nil
}

var errHintConflict = errors.New("--hint and --no-hint are mutually exclusive")

// apply overrides cfg with every flag that was given on the command line,
// including flags explicitly set to their zero value.
func (o *Options) apply(p *flags.Parser, cfg *Config) error {
	set := func(name string) bool {
		opt := p.FindOptionByLongName(name)
		return opt != nil && opt.IsSet()
	}

	if set("shards") {
		cfg.Shards = o.Shards
	}
	if set("keys") {
		cfg.Keys = o.Keys
	}
	if set("goroutines") {
		cfg.Goroutines = o.Goroutines
	}
	if set("ops") {
		cfg.Ops = o.Ops
	}
	if set("read-ratio") {
		cfg.ReadRatio = o.ReadRatio
	}
	if set("selector") {
		cfg.Selector = o.Selector
	}

	switch {
	case o.Hint && o.NoHint:
		return errHintConflict
	case o.Hint:
		cfg.NoHint = false
	case o.NoHint:
		cfg.NoHint = true
	}
	return nil
}

func (c Config) validate() error {
	switch {
	case c.Shards <= 0:
		return fmt.Errorf("shards must be positive, got %d", c.Shards)
	case c.Keys <= 0:
		return fmt.Errorf("keys must be positive, got %d", c.Keys)
	case c.Goroutines <= 0:
		return fmt.Errorf("goroutines must be positive, got %d", c.Goroutines)
	case c.Ops < 0:
		return fmt.Errorf("ops must not be negative, got %d", c.Ops)
	case c.ReadRatio < 0 || c.ReadRatio > 1:
		return fmt.Errorf("read ratio must be within [0, 1], got %v", c.ReadRatio)
	}
	return nil
}
