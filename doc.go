// Package gcarena implements a chunked slot allocator with cooperative
// mark-and-sweep reclamation.
//
// # Overview
//
// An Arena hands out uniformly sized slots carved from large chunks. Slots
// are never freed one by one. Instead, the data structure that owns the arena
// implements RootProvider, and every collection cycle asks it which slots are
// still reachable:
//
//   - Marking: the arena clears every mark bit and calls
//     RootProvider.Collect once, passing a MarkContext. The provider calls
//     Mark for every block it still uses.
//   - Sweeping: the arena walks every chunk. Each allocated slot that was not
//     marked is reported through RootProvider.NotifyDead and put on the free
//     list.
//
// This suits node based persistent structures (cons lists, tries) that create
// many small records and share them between versions, where knowing when a
// record dies is hard but enumerating what is live is easy.
//
// # Basic Usage
//
//	a, err := gcarena.New(provider, 1024, gcarena.WithSlotSize(16))
//	if err != nil {
//	    return err
//	}
//	defer a.Release() // silent: no NotifyDead calls
//
//	ref, err := a.Allocate(16)
//	if err != nil {
//	    return err
//	}
//	buf := a.Bytes(ref) // exactly 16 writable bytes
//
//	// Explicit cycle; one also runs automatically every 1024 allocations.
//	err = a.Collect()
//
// # Handles
//
// Allocate returns a Ref, an index into the arena's own storage, rather than
// a pointer. Refs stay valid until the slot is swept, after which the same
// Ref may be handed out again. Nil is never returned.
//
// # Automatic Collection
//
// The threshold passed to New bounds the number of allocations between
// cycles: the allocation that would bring the count since the last completed
// cycle to the threshold runs a cycle first. A threshold of zero or less
// disables automatic cycles.
//
// # Failures
//
// If RootProvider.Collect fails, nothing is swept. If NotifyDead fails, the
// sweep stops at that slot: slots already reclaimed stay reclaimed and the
// rest are reconsidered by the next cycle. Either way the error is returned
// wrapped in a *CallbackError and the cycle does not count as completed.
//
// # Thread Safety
//
// Arena is not safe for concurrent use, and the provider's callbacks must not
// call Allocate or Collect on the arena that invoked them (they receive
// ErrReentrant). SafeArena serializes all access behind a single mutex. When
// automatic collection is on, use SafeArena.AllocateFunc so the new Ref joins
// the root set before another goroutine can start a cycle:
//
//	ref, err := s.AllocateFunc(n, func(ref gcarena.Ref, b []byte) {
//		roots.Add(ref)
//	})
//
// # Metrics and Monitoring
//
//	m := a.Metrics()
//	fmt.Printf("Slots in use: %d of %d\n", m.SlotsInUse, m.SlotsInUse+m.SlotsFree)
//	fmt.Printf("Cycles: %d (%d automatic)\n", m.Cycles, m.AutoCycles)
//
// NewCollector exports the same numbers to Prometheus.
package gcarena
