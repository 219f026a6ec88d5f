package gcarena

import "encoding/binary"

// freeList is an intrusive stack threaded through free slots: the first four
// bytes of a free slot hold the Ref of the next one.
type freeList struct {
	head Ref
	n    int
}

// pop removes the head of the list. ok is false when the list is empty.
func (f *freeList) pop(a *Arena) (ref Ref, ok bool) {
	if f.head == Nil {
		return Nil, false
	}
	ref = f.head
	ci, si, _ := a.locate(ref)
	f.head = Ref(binary.LittleEndian.Uint32(a.slot(ci, si)))
	f.n--
	return ref, true
}

// push links a swept slot in as the new head.
func (f *freeList) push(a *Arena, ci, si int) {
	binary.LittleEndian.PutUint32(a.slot(ci, si), uint32(f.head))
	f.head = a.refFor(ci, si)
	f.n++
}

func (f *freeList) len() int { return f.n }
