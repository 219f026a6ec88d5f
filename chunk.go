package gcarena

import "fmt"

// slotAlign is the alignment of every slot within a chunk. It also leaves
// room for the free list link in the smallest slot.
const slotAlign = 8

// chunk is one contiguous block of slots.
type chunk struct {
	buf   []byte   // slotsPerChunk*stride bytes
	sizes []uint32 // requested size per slot, 0 while free
	marks []uint64 // one mark bit per slot
	used  int      // slots handed out at least once; the rest are untouched
}

// strideFor rounds a slot size up to slotAlign.
func strideFor(slotSize int) int {
	return (slotSize + slotAlign - 1) &^ (slotAlign - 1)
}

// slotsFor returns how many slots of the given stride fit in chunkSize bytes,
// never fewer than one.
func slotsFor(chunkSize, stride int) int {
	n := chunkSize / stride
	if n < 1 {
		n = 1
	}
	return n
}

func newChunk(slots, stride int) chunk {
	return chunk{
		buf:   make([]byte, slots*stride),
		sizes: make([]uint32, slots),
		marks: make([]uint64, (slots+63)/64),
	}
}

// refFor encodes a chunk and slot index as a Ref.
func (a *Arena) refFor(ci, si int) Ref {
	return Ref(ci*a.slotsPerChunk + si + 1)
}

// locate decodes ref. ok is false for Nil and for refs past the last chunk.
func (a *Arena) locate(ref Ref) (ci, si int, ok bool) {
	if ref == Nil {
		return 0, 0, false
	}
	i := int(ref - 1)
	ci, si = i/a.slotsPerChunk, i%a.slotsPerChunk
	if ci >= len(a.chunks) || si >= a.chunks[ci].used {
		return 0, 0, false
	}
	return ci, si, true
}

// slot returns the full stride of storage behind ref.
func (a *Arena) slot(ci, si int) []byte {
	off := si * a.stride
	return a.chunks[ci].buf[off : off+a.stride : off+a.stride]
}

// takeSlot returns an unused slot, preferring the free list, then the bump
// cursor of the last chunk, then a new chunk.
func (a *Arena) takeSlot() (Ref, error) {
	if ref, ok := a.free.pop(a); ok {
		return ref, nil
	}
	if n := len(a.chunks); n > 0 {
		c := &a.chunks[n-1]
		if c.used < a.slotsPerChunk {
			c.used++
			return a.refFor(n-1, c.used-1), nil
		}
	}
	if err := a.grow(); err != nil {
		return Nil, err
	}
	ci := len(a.chunks) - 1
	a.chunks[ci].used = 1
	return a.refFor(ci, 0), nil
}

// grow appends a new chunk.
func (a *Arena) grow() error {
	if a.cfg.maxChunks > 0 && len(a.chunks) >= a.cfg.maxChunks {
		return fmt.Errorf("%w: chunk limit %d reached", ErrOutOfMemory, a.cfg.maxChunks)
	}
	// Refs are uint32; refuse chunks that would overflow them.
	if uint64(len(a.chunks)+1)*uint64(a.slotsPerChunk) >= 1<<32 {
		return fmt.Errorf("%w: ref space exhausted", ErrOutOfMemory)
	}
	a.chunks = append(a.chunks, newChunk(a.slotsPerChunk, a.stride))
	a.log.Debug().
		Int("chunks", len(a.chunks)).
		Int("slots_per_chunk", a.slotsPerChunk).
		Int("stride", a.stride).
		Msg("gcarena: grew chunk pool")
	return nil
}
