package gcarena

import "sync"

// SafeArena is a mutex-protected wrapper around Arena for concurrent access.
// Every operation, including whole collection cycles, runs under one lock.
// Provider callbacks run with the lock held and must not call back into the
// same SafeArena.
//
// With a threshold above zero, any Allocate may run a cycle. A Ref returned
// by Allocate is unrooted until the caller registers it, and another
// goroutine's Allocate can reclaim it in that window. Use AllocateFunc to
// register the new Ref while the lock is still held.
type SafeArena struct {
	mu sync.Mutex
	a  *Arena
}

// NewSafeArena creates a new thread-safe arena. See New, and AllocateFunc for
// allocating when threshold is above zero.
func NewSafeArena(provider RootProvider, threshold int, opts ...Option) (*SafeArena, error) {
	a, err := New(provider, threshold, opts...)
	if err != nil {
		return nil, err
	}
	return &SafeArena{a: a}, nil
}

// Allocate thread-safely reserves a slot for size bytes.
func (s *SafeArena) Allocate(size int) (Ref, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a.Allocate(size)
}

// AllocateFunc reserves a slot and calls fn with its Ref and storage before
// the lock is released, so fn can add the Ref to the provider's roots before
// any other goroutine can run a cycle. fn is not called on error and must not
// call back into s.
func (s *SafeArena) AllocateFunc(size int, fn func(ref Ref, b []byte)) (Ref, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ref, err := s.a.Allocate(size)
	if err != nil {
		return Nil, err
	}
	fn(ref, s.a.Bytes(ref))
	return ref, nil
}

// Collect thread-safely runs one collection cycle.
func (s *SafeArena) Collect() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a.Collect()
}

// View calls fn with the storage of ref while holding the lock. The slice must
// not be retained after fn returns.
func (s *SafeArena) View(ref Ref, fn func([]byte)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.a.Bytes(ref))
}

// Update is View for writes.
func (s *SafeArena) Update(ref Ref, fn func([]byte)) {
	s.View(ref, fn)
}

// Allocated thread-safely reports whether ref refers to a live slot.
func (s *SafeArena) Allocated(ref Ref) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a.Allocated(ref)
}

// Release thread-safely drops all chunks and makes the arena unusable.
func (s *SafeArena) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.a.Release()
}
