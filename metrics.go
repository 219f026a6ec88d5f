package gcarena

// SizeInUse returns the number of bytes requested by live allocations.
func (a *Arena) SizeInUse() int {
	return a.bytesInUse
}

// SlotsInUse returns the number of allocated slots.
func (a *Arena) SlotsInUse() int {
	return a.inUse
}

// NumChunks returns the number of chunks currently owned by the arena.
func (a *Arena) NumChunks() int {
	return len(a.chunks)
}

// Capacity returns the total size in bytes of all chunks in the arena.
func (a *Arena) Capacity() int {
	return len(a.chunks) * a.slotsPerChunk * a.stride
}

// Utilization returns the ratio of allocated slots to slot capacity (0.0 to 1.0).
// Returns 0.0 if the arena has no capacity.
func (a *Arena) Utilization() float64 {
	total := len(a.chunks) * a.slotsPerChunk
	if total == 0 {
		return 0
	}
	return float64(a.inUse) / float64(total)
}

// SlotSize returns the largest size Allocate accepts.
func (a *Arena) SlotSize() int {
	return a.cfg.slotSize
}

// Metrics returns a snapshot of arena statistics.
func (a *Arena) Metrics() ArenaMetrics {
	total := len(a.chunks) * a.slotsPerChunk
	return ArenaMetrics{
		SlotSize:           a.cfg.slotSize,
		SlotsPerChunk:      a.slotsPerChunk,
		NumChunks:          a.NumChunks(),
		SlotsInUse:         a.inUse,
		SlotsFree:          total - a.inUse,
		SizeInUse:          a.bytesInUse,
		Capacity:           a.Capacity(),
		Utilization:        a.Utilization(),
		Allocations:        a.stats.allocations,
		Cycles:             a.stats.cycles,
		AutoCycles:         a.stats.autoCycles,
		FailedCycles:       a.stats.failedCycles,
		DeadNotified:       a.stats.deadNotified,
		PendingAllocations: a.trigger.count,
	}
}

// ArenaMetrics contains statistical information about an arena.
type ArenaMetrics struct {
	SlotSize      int     // Largest accepted allocation
	SlotsPerChunk int     // Slots carved from each chunk
	NumChunks     int     // Number of chunks
	SlotsInUse    int     // Allocated slots
	SlotsFree     int     // Slots on the free list or never handed out
	SizeInUse     int     // Bytes requested by live allocations
	Capacity      int     // Total chunk bytes
	Utilization   float64 // Ratio of allocated slots to all slots (0.0-1.0)

	Allocations  uint64 // Successful Allocate calls
	Cycles       uint64 // Completed cycles, automatic and explicit
	AutoCycles   uint64 // Completed cycles started by the trigger
	FailedCycles uint64 // Cycles aborted by a provider error or panic
	DeadNotified uint64 // NotifyDead calls that succeeded

	PendingAllocations int // Allocations since the last completed cycle
}

// Thread-safe metrics for SafeArena

// SizeInUse thread-safely returns the number of bytes requested by live allocations.
func (s *SafeArena) SizeInUse() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a.SizeInUse()
}

// NumChunks thread-safely returns the number of chunks currently allocated.
func (s *SafeArena) NumChunks() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a.NumChunks()
}

// Capacity thread-safely returns the total capacity of all chunks.
func (s *SafeArena) Capacity() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a.Capacity()
}

// Utilization thread-safely returns the ratio of allocated slots to capacity.
func (s *SafeArena) Utilization() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a.Utilization()
}

// Metrics thread-safely returns a snapshot of arena statistics.
func (s *SafeArena) Metrics() ArenaMetrics {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a.Metrics()
}
