package gcarena

import (
	"fmt"

	"github.com/rs/zerolog"
)

const (
	// DefaultChunkSize is the default chunk size for new arenas (64 KiB).
	DefaultChunkSize = 1 << 16

	// DefaultSlotSize is the slot size used when WithSlotSize is not given.
	DefaultSlotSize = 64

	// MaxSlotSize bounds WithSlotSize so that sizes fit the per-slot bookkeeping.
	MaxSlotSize = 1 << 20
)

type config struct {
	slotSize  int
	chunkSize int
	maxChunks int
	logger    zerolog.Logger
	debug     bool
}

func defaultConfig() config {
	return config{
		slotSize:  DefaultSlotSize,
		chunkSize: DefaultChunkSize,
		logger:    zerolog.Nop(),
	}
}

// Option configures an Arena.
type Option func(*config) error

// WithSlotSize sets the size in bytes of every slot. Allocate accepts any
// size from 1 up to this value.
func WithSlotSize(n int) Option {
	return func(c *config) error {
		if n <= 0 || n > MaxSlotSize {
			return fmt.Errorf("%w: slot size %d", ErrBadOption, n)
		}
		c.slotSize = n
		return nil
	}
}

// WithChunkSize sets the number of bytes requested per chunk. A chunk always
// holds at least one slot. If n <= 0, DefaultChunkSize is used.
func WithChunkSize(n int) Option {
	return func(c *config) error {
		if n <= 0 {
			n = DefaultChunkSize
		}
		c.chunkSize = n
		return nil
	}
}

// WithMaxChunks caps the number of chunks; growing past it fails with
// ErrOutOfMemory. Zero means no limit.
func WithMaxChunks(n int) Option {
	return func(c *config) error {
		if n < 0 {
			return fmt.Errorf("%w: max chunks %d", ErrBadOption, n)
		}
		c.maxChunks = n
		return nil
	}
}

// WithLogger sets the logger used for chunk growth and cycle events.
func WithLogger(l zerolog.Logger) Option {
	return func(c *config) error {
		c.logger = l
		return nil
	}
}

// WithDebug turns marking contract violations into panics carrying a
// *ProtocolError. Without it such marks are ignored.
func WithDebug(on bool) Option {
	return func(c *config) error {
		c.debug = on
		return nil
	}
}
