package gcarena

// Ref is an opaque handle to an allocated slot. The zero value is Nil and is
// never returned by Allocate.
type Ref uint32

// Nil is the Ref that never refers to a slot.
const Nil Ref = 0

// MarkContext is handed to RootProvider.Collect. Mark reports one block as
// still reachable; size must be the size it was allocated with. Marking the
// same block more than once in a cycle has no further effect.
type MarkContext interface {
	Mark(ref Ref, size int)
}

// RootProvider is implemented by the data structure that owns the arena.
//
// Collect is called once per cycle and must call mc.Mark for every block the
// provider still considers live, including blocks reachable only through
// other blocks. The arena never traverses client data itself, so guarding
// against cycles in the client graph is up to the provider.
//
// NotifyDead is called once per unreachable block during the sweep, before the
// block is reused.
//
// Neither method may call Allocate or Collect on the same arena; doing so
// returns ErrReentrant.
type RootProvider interface {
	Collect(mc MarkContext) error
	NotifyDead(ref Ref) error
}
