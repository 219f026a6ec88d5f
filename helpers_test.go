package gcarena

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

// testProvider keeps an explicit live set. Every slot it allocates starts
// with a unique object id so that deaths can be attributed even after a Ref
// is reused.
type testProvider struct {
	arena *Arena

	live   map[Ref]int // ref -> allocated size
	nextID uint64

	collects   int
	markTwice  bool
	deadRefs   []Ref
	deadIDs    map[uint64]int
	attempts   int
	phaseSeen  []Phase
	collectErr error
	deadErr    func(ref Ref) error

	// hooks run inside the callbacks
	onCollect func(mc MarkContext)
	onDead    func(ref Ref)
}

func newTestProvider() *testProvider {
	return &testProvider{
		live:    make(map[Ref]int),
		deadIDs: make(map[uint64]int),
	}
}

func (p *testProvider) Collect(mc MarkContext) error {
	p.collects++
	p.phaseSeen = append(p.phaseSeen, p.arena.Phase())
	if p.onCollect != nil {
		p.onCollect(mc)
	}
	if p.collectErr != nil {
		return p.collectErr
	}
	for ref, size := range p.live {
		mc.Mark(ref, size)
		if p.markTwice {
			mc.Mark(ref, size)
		}
	}
	return nil
}

func (p *testProvider) NotifyDead(ref Ref) error {
	p.attempts++
	p.phaseSeen = append(p.phaseSeen, p.arena.Phase())
	if p.onDead != nil {
		p.onDead(ref)
	}
	if p.deadErr != nil {
		if err := p.deadErr(ref); err != nil {
			return err
		}
	}
	p.deadRefs = append(p.deadRefs, ref)
	if b := p.arena.Bytes(ref); len(b) >= 8 {
		p.deadIDs[binary.LittleEndian.Uint64(b)]++
	}
	return nil
}

// alloc allocates an object, stamps its id and adds it to the live set.
func (p *testProvider) alloc(t *testing.T, size int) (Ref, uint64) {
	t.Helper()
	ref, err := p.arena.Allocate(size)
	require.NoError(t, err)
	p.nextID++
	id := p.nextID
	if size >= 8 {
		binary.LittleEndian.PutUint64(p.arena.Bytes(ref), id)
	}
	p.live[ref] = size
	return ref, id
}

// drop removes ref from the live set and returns the id it carried.
func (p *testProvider) drop(ref Ref) uint64 {
	var id uint64
	if b := p.arena.Bytes(ref); len(b) >= 8 {
		id = binary.LittleEndian.Uint64(b)
	}
	delete(p.live, ref)
	return id
}

func newTestArena(t *testing.T, threshold int, opts ...Option) (*Arena, *testProvider) {
	t.Helper()
	p := newTestProvider()
	a, err := New(p, threshold, opts...)
	require.NoError(t, err)
	p.arena = a
	return a, p
}
