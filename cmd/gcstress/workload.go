package main

import (
	"fmt"
	"math/rand/v2"

	"github.com/rs/zerolog"

	"github.com/pavanmanishd/gcarena"
	"github.com/pavanmanishd/gcarena/internal/conslist"
)

// Report summarizes a stress run.
type Report struct {
	Ops         int    `json:"ops"`
	Created     int    `json:"created"`
	Reachable   int    `json:"reachable"`
	Dead        int    `json:"dead"`
	Roots       int    `json:"roots"`
	Cycles      uint64 `json:"cycles"`
	AutoCycles  uint64 `json:"auto_cycles"`
	Chunks      int    `json:"chunks"`
	SlotSize    int    `json:"slot_size"`
	SlotsInUse  int    `json:"slots_in_use"`
	Violations  int    `json:"violations"`
	FirstIssue  string `json:"first_issue,omitempty"`
	Utilization string `json:"utilization"`
}

// run drives cfg.Ops random cons/unpin operations on heap, collects once
// more, and checks that every cell was reported dead exactly when it became
// unreachable.
func run(cfg Config, heap *conslist.Heap, log zerolog.Logger) (Report, error) {
	dead := make(map[int64]int)
	heap.OnDead = func(_ gcarena.Ref, v int64) { dead[v]++ }

	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15))
	var roots []gcarena.Ref
	var next int64
	for op := 0; op < cfg.Ops; op++ {
		if len(roots) == 0 || rng.IntN(100) < cfg.ConsPercent {
			tail := gcarena.Nil
			if len(roots) > 0 && rng.IntN(2) == 0 {
				tail = roots[rng.IntN(len(roots))]
			}
			l, err := heap.Cons(next, tail)
			if err != nil {
				return Report{}, fmt.Errorf("op %d: %w", op, err)
			}
			next++
			roots = append(roots, l)
			continue
		}
		i := rng.IntN(len(roots))
		heap.Unpin(roots[i])
		roots[i] = roots[len(roots)-1]
		roots = roots[:len(roots)-1]
	}
	if err := heap.Collect(); err != nil {
		return Report{}, fmt.Errorf("final collect: %w", err)
	}

	reachable := make(map[int64]bool)
	for _, r := range roots {
		for _, v := range heap.Values(r) {
			reachable[v] = true
		}
	}

	m := heap.Arena().Metrics()
	rep := Report{
		Ops:         cfg.Ops,
		Created:     int(next),
		Reachable:   len(reachable),
		Dead:        heap.Dead(),
		Roots:       heap.Roots(),
		Cycles:      m.Cycles,
		AutoCycles:  m.AutoCycles,
		Chunks:      m.NumChunks,
		SlotSize:    m.SlotSize,
		SlotsInUse:  m.SlotsInUse,
		Utilization: fmt.Sprintf("%.2f%%", m.Utilization*100),
	}
	for v := int64(0); v < next; v++ {
		want := 1
		if reachable[v] {
			want = 0
		}
		if dead[v] != want {
			rep.Violations++
			if rep.FirstIssue == "" {
				rep.FirstIssue = fmt.Sprintf("cell %d reported dead %d times, want %d", v, dead[v], want)
			}
		}
	}
	if rep.SlotsInUse != rep.Reachable {
		rep.Violations++
		if rep.FirstIssue == "" {
			rep.FirstIssue = fmt.Sprintf("%d slots in use, %d cells reachable", rep.SlotsInUse, rep.Reachable)
		}
	}

	log.Info().
		Int("created", rep.Created).
		Int("dead", rep.Dead).
		Uint64("cycles", rep.Cycles).
		Int("violations", rep.Violations).
		Msg("stress run finished")
	return rep, nil
}
