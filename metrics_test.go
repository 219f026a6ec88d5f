package gcarena

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsEmptyArena(t *testing.T) {
	a, _ := newTestArena(t, 0, WithSlotSize(16), WithChunkSize(1024))

	m := a.Metrics()
	assert.Equal(t, ArenaMetrics{
		SlotSize:      16,
		SlotsPerChunk: 64,
		NumChunks:     1,
		SlotsFree:     64,
		Capacity:      1024,
	}, m)
	assert.Zero(t, a.Utilization())
}

func TestMetricsTrackAllocationAndSweep(t *testing.T) {
	a, p := newTestArena(t, 0, WithSlotSize(16), WithChunkSize(64))

	var refs []Ref
	for i := 0; i < 6; i++ {
		ref, _ := p.alloc(t, 10)
		refs = append(refs, ref)
	}
	m := a.Metrics()
	assert.Equal(t, 2, m.NumChunks)
	assert.Equal(t, 6, m.SlotsInUse)
	assert.Equal(t, 2, m.SlotsFree)
	assert.Equal(t, 60, m.SizeInUse)
	assert.Equal(t, 128, m.Capacity)
	assert.InDelta(t, 0.75, m.Utilization, 1e-9)
	assert.EqualValues(t, 6, m.Allocations)
	assert.Equal(t, 6, m.PendingAllocations)

	p.drop(refs[0])
	p.drop(refs[5])
	require.NoError(t, a.Collect())

	m = a.Metrics()
	assert.Equal(t, 4, m.SlotsInUse)
	assert.Equal(t, 4, m.SlotsFree)
	assert.Equal(t, 40, m.SizeInUse)
	assert.InDelta(t, 0.5, m.Utilization, 1e-9)
	assert.EqualValues(t, 1, m.Cycles)
	assert.EqualValues(t, 2, m.DeadNotified)
	assert.Zero(t, m.PendingAllocations)
}

func TestMetricsAfterRelease(t *testing.T) {
	a, p := newTestArena(t, 0)
	p.alloc(t, 8)
	a.Release()

	m := a.Metrics()
	assert.Zero(t, m.NumChunks)
	assert.Zero(t, m.SlotsInUse)
	assert.Zero(t, m.Capacity)
	assert.Zero(t, m.Utilization)
	assert.EqualValues(t, 1, m.Allocations, "lifetime counters survive Release")
}
