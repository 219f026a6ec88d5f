package gcarena

// Phase is the state of the collector.
type Phase uint8

const (
	PhaseIdle Phase = iota
	PhaseMarking
	PhaseSweeping
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseMarking:
		return "marking"
	case PhaseSweeping:
		return "sweeping"
	default:
		return "unknown"
	}
}

// Phase returns the collector's current state. It is PhaseIdle except while
// a provider callback is running.
func (a *Arena) Phase() Phase {
	return a.phase
}

// Collect runs one full collection cycle synchronously.
func (a *Arena) Collect() error {
	if err := a.checkIdle(); err != nil {
		return err
	}
	return a.runCycle(false)
}

func (a *Arena) runCycle(auto bool) error {
	// Restores Idle and counts the failure even when a callback panics.
	completed := false
	defer func() {
		if !completed {
			a.stats.failedCycles++
		}
		a.phase = PhaseIdle
	}()

	a.phase = PhaseMarking
	a.clearAllMarks()
	if err := a.provider.Collect((*marker)(a)); err != nil {
		a.clearAllMarks()
		a.log.Warn().Err(err).Bool("auto", auto).Msg("gcarena: root collection failed, nothing swept")
		return &CallbackError{Phase: PhaseMarking, Err: err}
	}

	a.phase = PhaseSweeping
	swept, kept, err := a.sweep()
	if err != nil {
		a.clearAllMarks()
		a.log.Warn().Err(err).Bool("auto", auto).Int("swept", swept).Msg("gcarena: sweep aborted")
		return err
	}

	completed = true
	a.trigger.onCycleCompleted()
	a.stats.cycles++
	if auto {
		a.stats.autoCycles++
	}
	a.log.Debug().
		Bool("auto", auto).
		Int("marked", kept).
		Int("swept", swept).
		Int("chunks", len(a.chunks)).
		Msg("gcarena: cycle complete")
	return nil
}

// sweep reclaims every allocated slot that was not marked and clears the
// marks of the rest. It stops at the first NotifyDead failure, leaving that
// slot and every unvisited one allocated.
func (a *Arena) sweep() (swept, kept int, err error) {
	for ci := range a.chunks {
		c := &a.chunks[ci]
		for si := 0; si < c.used; si++ {
			size := int(c.sizes[si])
			if size == 0 {
				continue
			}
			ref := a.refFor(ci, si)
			if a.isMarked(ref) {
				c.clearMark(si)
				kept++
				continue
			}
			if cbErr := a.provider.NotifyDead(ref); cbErr != nil {
				return swept, kept, &CallbackError{Phase: PhaseSweeping, Ref: ref, Err: cbErr}
			}
			c.sizes[si] = 0
			a.free.push(a, ci, si)
			a.inUse--
			a.bytesInUse -= size
			a.stats.deadNotified++
			swept++
		}
	}
	return swept, kept, nil
}
