package main

import (
	"fmt"
	"io"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/rs/zerolog"

	"github.com/pavanmanishd/gcarena"
	"github.com/pavanmanishd/gcarena/internal/conslist"
)

// Config drives one stress run. It can be loaded from TOML and overridden by
// flags.
type Config struct {
	Ops       int    `toml:"ops"`
	Threshold int    `toml:"threshold"`
	SlotSize  int    `toml:"slot_size"`
	ChunkSize int    `toml:"chunk_size"`
	MaxChunks int    `toml:"max_chunks"`
	Seed      uint64 `toml:"seed"`

	// ConsPercent is the share of operations that create a cell; the rest
	// drop a root.
	ConsPercent int  `toml:"cons_percent"`
	Debug       bool `toml:"debug"`

	Log LogConfig `toml:"log"`
}

// LogConfig selects the zerolog output.
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "console" or "json"
}

func defaultConfig() Config {
	return Config{
		Ops:         10_000,
		Threshold:   256,
		SlotSize:    conslist.CellSize,
		ChunkSize:   gcarena.DefaultChunkSize,
		Seed:        1,
		ConsPercent: 60,
		Log:         LogConfig{Level: "info", Format: "console"},
	}
}

// loadConfig reads path over the defaults. An empty path returns the defaults.
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return cfg, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	return cfg, cfg.validate()
}

func (c Config) validate() error {
	switch {
	case c.Ops < 0:
		return fmt.Errorf("ops must not be negative, got %d", c.Ops)
	case c.ConsPercent < 1 || c.ConsPercent > 100:
		return fmt.Errorf("cons_percent must be within 1-100, got %d", c.ConsPercent)
	case c.SlotSize < conslist.CellSize || c.SlotSize > gcarena.MaxSlotSize:
		return fmt.Errorf("slot_size must be within %d-%d, got %d", conslist.CellSize, gcarena.MaxSlotSize, c.SlotSize)
	case c.MaxChunks < 0:
		return fmt.Errorf("max_chunks must not be negative, got %d", c.MaxChunks)
	}
	return nil
}

// arenaOptions translates the config into gcarena options. They are applied
// after the heap's own slot size, so SlotSize overrides it.
func (c Config) arenaOptions(log zerolog.Logger) []gcarena.Option {
	return []gcarena.Option{
		gcarena.WithSlotSize(c.SlotSize),
		gcarena.WithChunkSize(c.ChunkSize),
		gcarena.WithMaxChunks(c.MaxChunks),
		gcarena.WithDebug(c.Debug),
		gcarena.WithLogger(log),
	}
}

func (c Config) newHeap(log zerolog.Logger) (*conslist.Heap, error) {
	return conslist.NewHeap(c.Threshold, c.arenaOptions(log)...)
}

// newLogger builds the zerolog logger described by c.
func (c LogConfig) newLogger(w io.Writer) (zerolog.Logger, error) {
	level, err := zerolog.ParseLevel(c.Level)
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("bad log level: %w", err)
	}
	if w == nil {
		w = os.Stderr
	}
	switch c.Format {
	case "", "console":
		w = zerolog.ConsoleWriter{Out: w, NoColor: true}
	case "json":
	default:
		return zerolog.Nop(), fmt.Errorf("bad log format %q", c.Format)
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger(), nil
}
