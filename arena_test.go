package gcarena

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name          string
		opts          []Option
		slotSize      int
		slotsPerChunk int
	}{
		{"defaults", nil, DefaultSlotSize, DefaultChunkSize / DefaultSlotSize},
		{"small slots", []Option{WithSlotSize(16)}, 16, DefaultChunkSize / 16},
		{"unaligned slot rounds stride", []Option{WithSlotSize(12), WithChunkSize(64)}, 12, 4},
		{"chunk smaller than slot", []Option{WithSlotSize(128), WithChunkSize(64)}, 128, 1},
		{"zero chunk size uses default", []Option{WithSlotSize(64), WithChunkSize(0)}, 64, DefaultChunkSize / 64},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, _ := newTestArena(t, 0, tt.opts...)
			assert.Equal(t, tt.slotSize, a.SlotSize())
			assert.Equal(t, tt.slotsPerChunk, a.slotsPerChunk)
			assert.Equal(t, 1, a.NumChunks(), "first chunk is allocated eagerly")
			assert.Equal(t, PhaseIdle, a.Phase())
		})
	}
}

func TestNewErrors(t *testing.T) {
	_, err := New(nil, 0)
	require.ErrorIs(t, err, ErrNilProvider)

	p := newTestProvider()
	for _, opt := range []Option{WithSlotSize(0), WithSlotSize(-4), WithSlotSize(MaxSlotSize + 1), WithMaxChunks(-1)} {
		_, err := New(p, 0, opt)
		require.ErrorIs(t, err, ErrBadOption)
	}
}

func TestArenaAllocate(t *testing.T) {
	a, _ := newTestArena(t, 0, WithSlotSize(32))

	ref, err := a.Allocate(20)
	require.NoError(t, err)
	require.NotEqual(t, Nil, ref)

	b := a.Bytes(ref)
	require.Len(t, b, 20)
	require.Equal(t, 20, cap(b), "storage must not extend past the requested size")
	for i := range b {
		require.Zero(t, b[i])
	}
	assert.Equal(t, 20, a.Size(ref))
	assert.True(t, a.Allocated(ref))
	assert.Equal(t, 1, a.SlotsInUse())
	assert.Equal(t, 20, a.SizeInUse())

	full, err := a.Allocate(32)
	require.NoError(t, err)
	require.NotEqual(t, ref, full)
	require.Len(t, a.Bytes(full), 32)
}

func TestArenaAllocateBadSize(t *testing.T) {
	a, _ := newTestArena(t, 0, WithSlotSize(32))

	for _, size := range []int{0, -1, 33, 1 << 20} {
		ref, err := a.Allocate(size)
		require.ErrorIs(t, err, ErrBadSize, "size %d", size)
		require.Equal(t, Nil, ref)
	}
	assert.Zero(t, a.Metrics().Allocations)
}

func TestArenaGrowsChunks(t *testing.T) {
	// 16-byte slots, 4 per chunk.
	a, _ := newTestArena(t, 0, WithSlotSize(16), WithChunkSize(64))

	seen := make(map[Ref]bool)
	for i := 0; i < 9; i++ {
		ref, err := a.Allocate(16)
		require.NoError(t, err)
		require.False(t, seen[ref], "ref %d handed out twice", ref)
		seen[ref] = true
	}
	assert.Equal(t, 3, a.NumChunks())
	assert.Equal(t, 3*64, a.Capacity())
}

func TestArenaOutOfMemory(t *testing.T) {
	a, _ := newTestArena(t, 0, WithSlotSize(16), WithChunkSize(64), WithMaxChunks(1))

	for i := 0; i < 4; i++ {
		_, err := a.Allocate(16)
		require.NoError(t, err)
	}
	ref, err := a.Allocate(16)
	require.ErrorIs(t, err, ErrOutOfMemory)
	require.Equal(t, Nil, ref)
	assert.Equal(t, 1, a.NumChunks())
	assert.Equal(t, 4, a.SlotsInUse())
}

func TestArenaOutOfMemoryRecoversAfterCollect(t *testing.T) {
	a, p := newTestArena(t, 0, WithSlotSize(16), WithChunkSize(64), WithMaxChunks(1))

	var refs []Ref
	for i := 0; i < 4; i++ {
		ref, _ := p.alloc(t, 16)
		refs = append(refs, ref)
	}
	_, err := a.Allocate(16)
	require.ErrorIs(t, err, ErrOutOfMemory)

	p.drop(refs[2])
	require.NoError(t, a.Collect())

	ref, err := a.Allocate(16)
	require.NoError(t, err)
	assert.Equal(t, refs[2], ref, "the swept slot is reused")
}

func TestArenaFreeListReuse(t *testing.T) {
	a, p := newTestArena(t, 0, WithSlotSize(16), WithChunkSize(64))

	var refs []Ref
	for i := 0; i < 4; i++ {
		ref, _ := p.alloc(t, 16)
		refs = append(refs, ref)
	}
	p.drop(refs[1])
	p.drop(refs[3])
	require.NoError(t, a.Collect())
	require.Equal(t, 2, a.free.len())

	got := map[Ref]bool{}
	for i := 0; i < 2; i++ {
		ref, err := a.Allocate(8)
		require.NoError(t, err)
		got[ref] = true
		for _, c := range a.Bytes(ref) {
			require.Zero(t, c, "reused slot must be zeroed")
		}
	}
	assert.Equal(t, map[Ref]bool{refs[1]: true, refs[3]: true}, got)
	assert.Equal(t, 1, a.NumChunks(), "reuse must not grow the pool")
	assert.Zero(t, a.free.len())
}

func TestArenaRelease(t *testing.T) {
	a, p := newTestArena(t, 4)
	for i := 0; i < 10; i++ {
		p.alloc(t, 8)
	}
	p.live = map[Ref]int{}
	collectsBefore, deadBefore := p.collects, p.attempts

	a.Release()
	a.Release()

	assert.Equal(t, collectsBefore, p.collects, "Release must not run a cycle")
	assert.Equal(t, deadBefore, p.attempts, "Release must not notify the provider")
	assert.Zero(t, a.NumChunks())
	assert.Zero(t, a.SlotsInUse())

	_, err := a.Allocate(8)
	require.ErrorIs(t, err, ErrReleased)
	require.ErrorIs(t, a.Collect(), ErrReleased)
	require.Panics(t, func() { a.Bytes(1) })
	assert.False(t, a.Allocated(1))
}

func TestArenaBytesPanicsOnBadRef(t *testing.T) {
	a, p := newTestArena(t, 0)
	ref, _ := p.alloc(t, 8)

	require.Panics(t, func() { a.Bytes(Nil) })
	require.Panics(t, func() { a.Bytes(ref + 1) })
	require.Panics(t, func() { a.Bytes(Ref(1 << 30)) })

	p.drop(ref)
	require.NoError(t, a.Collect())
	require.Panics(t, func() { a.Bytes(ref) }, "swept refs are no longer readable")
}
