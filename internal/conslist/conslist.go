// Package conslist is a persistent cons-cell list heap built on gcarena.
//
// Lists share structure: Cons(v, tail) creates one new cell pointing at an
// existing tail. Cells are never freed explicitly. Every handle returned by
// Cons is a pinned root; Unpin drops it, and the next collection cycle
// reclaims every cell no pinned root can reach.
package conslist

import (
	"fmt"
	"unsafe"

	"github.com/pavanmanishd/gcarena"
)

// Ref is a cell handle. Nil is the empty list.
type Ref = gcarena.Ref

// Nil is the empty list.
const Nil = gcarena.Nil

type cell struct {
	head int64
	tail Ref
	_    uint32
}

// CellSize is the slot size a Heap configures its arena with.
const CellSize = int(unsafe.Sizeof(cell{}))

// Heap owns an arena of cons cells and acts as its root provider.
type Heap struct {
	arena   *gcarena.Arena
	pins    map[Ref]int
	visited map[Ref]struct{}
	dead    int
	closed  bool

	// OnDead, if set, is called for every reclaimed cell while its value is
	// still readable.
	OnDead func(ref Ref, head int64)
}

// NewHeap creates a heap whose arena collects every threshold allocations.
// opts are applied after the heap's own WithSlotSize(CellSize).
func NewHeap(threshold int, opts ...gcarena.Option) (*Heap, error) {
	h := &Heap{
		pins:    make(map[Ref]int),
		visited: make(map[Ref]struct{}),
	}
	all := append([]gcarena.Option{gcarena.WithSlotSize(CellSize)}, opts...)
	a, err := gcarena.New((*roots)(h), threshold, all...)
	if err != nil {
		return nil, err
	}
	h.arena = a
	return h, nil
}

// Cons returns a new pinned list whose first element is head, followed by
// tail. tail stays valid while the cell is created even if it is not pinned
// by the caller.
func (h *Heap) Cons(head int64, tail Ref) (Ref, error) {
	if tail != Nil && !h.arena.Allocated(tail) {
		return Nil, fmt.Errorf("conslist: tail %d is not a live cell", tail)
	}
	// An automatic cycle may run inside Allocate.
	h.Pin(tail)
	defer h.Unpin(tail)

	ref, err := gcarena.AllocValue[cell](h.arena)
	if err != nil {
		return Nil, fmt.Errorf("conslist: cons %d: %w", head, err)
	}
	c := gcarena.Value[cell](h.arena, ref)
	c.head, c.tail = head, tail
	h.Pin(ref)
	return ref, nil
}

// Pin adds a root reference to ref. Pinning Nil is a no-op.
func (h *Heap) Pin(ref Ref) {
	if ref != Nil {
		h.pins[ref]++
	}
}

// Unpin drops one root reference to ref.
func (h *Heap) Unpin(ref Ref) {
	if n, ok := h.pins[ref]; ok {
		if n <= 1 {
			delete(h.pins, ref)
		} else {
			h.pins[ref] = n - 1
		}
	}
}

// Head returns the first element of a non-empty list.
func (h *Heap) Head(ref Ref) int64 {
	return gcarena.Value[cell](h.arena, ref).head
}

// Tail returns the list after its first element.
func (h *Heap) Tail(ref Ref) Ref {
	return gcarena.Value[cell](h.arena, ref).tail
}

// Len returns the number of cells in the list.
func (h *Heap) Len(ref Ref) int {
	n := 0
	for ; ref != Nil; ref = h.Tail(ref) {
		n++
	}
	return n
}

// Values returns the elements of the list, first to last.
func (h *Heap) Values(ref Ref) []int64 {
	var out []int64
	for ; ref != Nil; ref = h.Tail(ref) {
		out = append(out, h.Head(ref))
	}
	return out
}

// Collect runs a collection cycle on the heap's arena.
func (h *Heap) Collect() error {
	return h.arena.Collect()
}

// Dead returns how many cells have been reported dead.
func (h *Heap) Dead() int { return h.dead }

// Roots returns the number of distinct pinned cells.
func (h *Heap) Roots() int { return len(h.pins) }

// Arena exposes the underlying arena for metrics.
func (h *Heap) Arena() *gcarena.Arena { return h.arena }

// Close releases the arena without reporting any cell dead.
func (h *Heap) Close() {
	if h.closed {
		return
	}
	h.closed = true
	h.arena.Release()
}

// roots is the Heap seen as a gcarena.RootProvider.
type roots Heap

func (r *roots) Collect(mc gcarena.MarkContext) error {
	h := (*Heap)(r)
	clear(h.visited)
	for ref := range h.pins {
		// Shared tails are walked once.
		for ref != Nil {
			if _, seen := h.visited[ref]; seen {
				break
			}
			h.visited[ref] = struct{}{}
			mc.Mark(ref, CellSize)
			ref = h.Tail(ref)
		}
	}
	return nil
}

func (r *roots) NotifyDead(ref Ref) error {
	h := (*Heap)(r)
	if h.closed {
		return nil
	}
	h.dead++
	if h.OnDead != nil {
		h.OnDead(ref, h.Head(ref))
	}
	return nil
}
