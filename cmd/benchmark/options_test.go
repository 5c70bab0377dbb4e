package main

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/jessevdk/go-flags"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := loadConfig("")
	require.NoError(t, err)
	assert.Equal(t, defaultConfig(), cfg)
	assert.NoError(t, cfg.validate())
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bench.yaml")
	require.NoError(t, os.WriteFile(path, []byte("shards: 64\nreadRatio: 0.5\nselector: xxh3\n"), 0o600))

	cfg, err := loadConfig(path)
	require.NoError(t, err)

	want := defaultConfig()
	want.Shards = 64
	want.ReadRatio = 0.5
	want.Selector = "xxh3"
	assert.Equal(t, want, cfg)
}

func TestLoadConfigErrors(t *testing.T) {
	_, err := loadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("shards: [1, 2"), 0o600))
	_, err = loadConfig(path)
	assert.Error(t, err)
}

func parseArgs(t *testing.T, args ...string) (*Options, *flags.Parser) {
	t.Helper()

	var opts Options
	p := flags.NewParser(&opts, flags.None)
	_, err := p.ParseArgs(args)
	require.NoError(t, err)
	return &opts, p
}

func TestFlagsOverrideConfig(t *testing.T) {
	opts, p := parseArgs(t, "-s", "8", "--selector", "fnv1a", "--no-hint")

	cfg := defaultConfig()
	require.NoError(t, opts.apply(p, &cfg))

	assert.Equal(t, 8, cfg.Shards)
	assert.Equal(t, "fnv1a", cfg.Selector)
	assert.True(t, cfg.NoHint)
	assert.Equal(t, defaultConfig().Keys, cfg.Keys)
	assert.Equal(t, defaultConfig().ReadRatio, cfg.ReadRatio)
}

func TestFlagsExplicitZero(t *testing.T) {
	opts, p := parseArgs(t, "--read-ratio", "0", "-n", "0")

	cfg := defaultConfig()
	require.NoError(t, opts.apply(p, &cfg))

	assert.Zero(t, cfg.ReadRatio)
	assert.Zero(t, cfg.Ops)
	assert.NoError(t, cfg.validate())
}

func TestHintFlagOverridesConfig(t *testing.T) {
	opts, p := parseArgs(t, "--hint")

	cfg := defaultConfig()
	cfg.NoHint = true
	require.NoError(t, opts.apply(p, &cfg))
	assert.False(t, cfg.NoHint)

	opts, p = parseArgs(t, "--hint", "--no-hint")
	assert.ErrorIs(t, opts.apply(p, &cfg), errHintConflict)
}

func TestFlagsRejectUnknownSelector(t *testing.T) {
	var opts Options
	_, err := flags.ParseArgs(&opts, []string{"--selector", "md5"})
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	for name, mutate := range map[string]func(*Config){
		"zero shards":    func(c *Config) { c.Shards = 0 },
		"zero keys":      func(c *Config) { c.Keys = 0 },
		"no goroutines":  func(c *Config) { c.Goroutines = 0 },
		"negative ops":   func(c *Config) { c.Ops = -1 },
		"ratio too high": func(c *Config) { c.ReadRatio = 1.5 },
	} {
		t.Run(name, func(t *testing.T) {
			cfg := defaultConfig()
			mutate(&cfg)
			assert.Error(t, cfg.validate())
		})
	}
}

func TestRunSmall(t *testing.T) {
	cfg := Config{
		Shards:     16,
		Keys:       200,
		Goroutines: 4,
		Ops:        2000,
		ReadRatio:  0.5,
		Selector:   "xxh3",
	}
	require.NoError(t, cfg.validate())
	require.NoError(t, run(cfg, slogDiscard()))
}

func slogDiscard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
