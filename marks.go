package gcarena

import "fmt"

func (c *chunk) setMark(si int)       { c.marks[si>>6] |= 1 << (si & 63) }
func (c *chunk) clearMark(si int)     { c.marks[si>>6] &^= 1 << (si & 63) }
func (c *chunk) isMarked(si int) bool { return c.marks[si>>6]&(1<<(si&63)) != 0 }

// clearAllMarks resets the mark store ahead of a cycle.
func (a *Arena) clearAllMarks() {
	for i := range a.chunks {
		clear(a.chunks[i].marks)
	}
}

// mark records ref as reachable for the current cycle.
func (a *Arena) mark(ref Ref, size int) {
	if a.phase != PhaseMarking {
		a.violation(ref, "mark outside the marking phase")
		return
	}
	ci, si, ok := a.locate(ref)
	if !ok {
		a.violation(ref, "ref was never issued by this arena")
		return
	}
	c := &a.chunks[ci]
	switch {
	case c.sizes[si] == 0:
		a.violation(ref, "slot is free")
		return
	case a.cfg.debug && int(c.sizes[si]) != size:
		a.violation(ref, fmt.Sprintf("marked with size %d, allocated with %d", size, c.sizes[si]))
		return
	}
	c.setMark(si)
}

// isMarked reports whether ref was marked in the current cycle.
func (a *Arena) isMarked(ref Ref) bool {
	ci, si, ok := a.locate(ref)
	return ok && a.chunks[ci].isMarked(si)
}

// violation panics in debug mode and is otherwise a no-op.
func (a *Arena) violation(ref Ref, reason string) {
	if a.cfg.debug {
		panic(&ProtocolError{Ref: ref, Reason: reason})
	}
}

// marker is the MarkContext handed to the root provider. It exposes Mark and
// nothing else of the arena.
type marker Arena

func (m *marker) Mark(ref Ref, size int) { (*Arena)(m).mark(ref, size) }
