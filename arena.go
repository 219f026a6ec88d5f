package gcarena

import (
	"fmt"

	"github.com/rs/zerolog"
)

// Arena is a chunked slot allocator whose slots are reclaimed by cooperative
// mark-and-sweep. Not goroutine-safe; use SafeArena for concurrent access.
type Arena struct {
	provider RootProvider
	cfg      config
	log      zerolog.Logger

	stride        int
	slotsPerChunk int
	chunks        []chunk
	free          freeList
	inUse         int
	bytesInUse    int

	trigger  trigger
	phase    Phase
	released bool

	stats counters
}

// counters accumulate over the arena's lifetime.
type counters struct {
	allocations  uint64
	cycles       uint64
	autoCycles   uint64
	failedCycles uint64
	deadNotified uint64
}

// New creates an arena reporting to provider. An automatic cycle runs every
// threshold allocations; threshold <= 0 leaves collection to explicit Collect
// calls. The first chunk is allocated eagerly.
func New(provider RootProvider, threshold int, opts ...Option) (*Arena, error) {
	if provider == nil {
		return nil, ErrNilProvider
	}
	cfg := defaultConfig()
	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}
	a := &Arena{
		provider: provider,
		cfg:      cfg,
		log:      cfg.logger,
		stride:   strideFor(cfg.slotSize),
		trigger:  trigger{threshold: threshold},
	}
	a.slotsPerChunk = slotsFor(cfg.chunkSize, a.stride)
	if err := a.grow(); err != nil {
		return nil, err
	}
	return a, nil
}

// Allocate reserves a slot for size bytes, running a collection cycle first
// if the trigger threshold has been reached. The slot is zeroed.
//
// If an automatic cycle fails, its error is returned and nothing is allocated.
func (a *Arena) Allocate(size int) (Ref, error) {
	if err := a.checkIdle(); err != nil {
		return Nil, err
	}
	if size <= 0 || size > a.cfg.slotSize {
		return Nil, fmt.Errorf("%w: %d (slot size %d)", ErrBadSize, size, a.cfg.slotSize)
	}
	if a.trigger.shouldCollectBeforeAllocating() {
		if err := a.runCycle(true); err != nil {
			return Nil, err
		}
	}

	ref, err := a.takeSlot()
	if err != nil {
		return Nil, err
	}
	ci, si, _ := a.locate(ref)
	clear(a.slot(ci, si))
	a.chunks[ci].sizes[si] = uint32(size)

	a.inUse++
	a.bytesInUse += size
	a.stats.allocations++
	a.trigger.onAllocation()
	return ref, nil
}

// Bytes returns the storage of an allocated slot, exactly as long as the size
// it was allocated with. The slice is valid until the slot is swept.
// Bytes panics if ref is not currently allocated.
func (a *Arena) Bytes(ref Ref) []byte {
	a.panicIfReleased()
	ci, si := a.mustLocate(ref)
	n := int(a.chunks[ci].sizes[si])
	return a.slot(ci, si)[:n:n]
}

// Size returns the size ref was allocated with, or 0 if ref is not allocated.
func (a *Arena) Size(ref Ref) int {
	if a.released {
		return 0
	}
	ci, si, ok := a.locate(ref)
	if !ok {
		return 0
	}
	return int(a.chunks[ci].sizes[si])
}

// Allocated reports whether ref currently refers to a live slot.
func (a *Arena) Allocated(ref Ref) bool {
	return a.Size(ref) != 0
}

// Release drops all chunks without notifying the root provider and makes the
// arena unusable. Release is idempotent but must not be called from inside a
// provider callback.
func (a *Arena) Release() {
	if a.phase != PhaseIdle {
		panic(ErrReentrant)
	}
	a.chunks = nil
	a.free = freeList{}
	a.inUse = 0
	a.bytesInUse = 0
	a.released = true
}

// Threshold returns the automatic collection threshold.
func (a *Arena) Threshold() int {
	return a.trigger.threshold
}

func (a *Arena) checkIdle() error {
	if a.released {
		return ErrReleased
	}
	if a.phase != PhaseIdle {
		return ErrReentrant
	}
	return nil
}

func (a *Arena) mustLocate(ref Ref) (ci, si int) {
	ci, si, ok := a.locate(ref)
	if !ok || a.chunks[ci].sizes[si] == 0 {
		panic(fmt.Sprintf("gcarena: ref %d is not allocated", ref))
	}
	return ci, si
}

// panicIfReleased panics if the arena has been released.
func (a *Arena) panicIfReleased() {
	if a.released {
		panic(ErrReleased.Error())
	}
}
