package gcarena

import (
	"encoding/binary"
	"fmt"
)

// setProvider keeps the Refs held in a set alive and prints every death.
type setProvider struct {
	arena *Arena
	live  map[Ref]bool
}

func (p *setProvider) Collect(mc MarkContext) error {
	for ref := range p.live {
		mc.Mark(ref, 8)
	}
	return nil
}

func (p *setProvider) NotifyDead(ref Ref) error {
	fmt.Printf("dead: %d\n", binary.LittleEndian.Uint64(p.arena.Bytes(ref)))
	return nil
}

// Example demonstrates basic arena usage
func Example() {
	p := &setProvider{live: map[Ref]bool{}}
	a, err := New(p, 0, WithSlotSize(8))
	if err != nil {
		panic(err)
	}
	p.arena = a
	defer a.Release() // silent, reports nothing dead

	var refs []Ref
	for i := uint64(1); i <= 4; i++ {
		ref, err := a.Allocate(8)
		if err != nil {
			panic(err)
		}
		binary.LittleEndian.PutUint64(a.Bytes(ref), i*100)
		p.live[ref] = true
		refs = append(refs, ref)
	}

	// Drop two objects and run a cycle.
	delete(p.live, refs[1])
	delete(p.live, refs[3])
	if err := a.Collect(); err != nil {
		panic(err)
	}

	m := a.Metrics()
	fmt.Printf("in use: %d, cycles: %d\n", m.SlotsInUse, m.Cycles)

	// Output:
	// dead: 200
	// dead: 400
	// in use: 2, cycles: 1
}

// ExampleSafeArena demonstrates thread-safe arena usage
func ExampleSafeArena() {
	p := &setProvider{live: map[Ref]bool{}}
	s, err := NewSafeArena(p, 0, WithSlotSize(8))
	if err != nil {
		panic(err)
	}
	defer s.Release()

	ref, err := s.Allocate(8)
	if err != nil {
		panic(err)
	}
	s.Update(ref, func(b []byte) { binary.LittleEndian.PutUint64(b, 42) })
	s.View(ref, func(b []byte) { fmt.Println(binary.LittleEndian.Uint64(b)) })

	// Output:
	// 42
}
