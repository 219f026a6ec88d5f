package gcarena

// trigger counts allocations since the last completed cycle.
type trigger struct {
	threshold int
	count     int
}

// shouldCollectBeforeAllocating is true when the next allocation would bring
// the count to the threshold.
func (t *trigger) shouldCollectBeforeAllocating() bool {
	return t.threshold > 0 && t.count+1 >= t.threshold
}

func (t *trigger) onAllocation()     { t.count++ }
func (t *trigger) onCycleCompleted() { t.count = 0 }
