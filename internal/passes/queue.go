// Package passes implements the batched transformation-pass queue. Each
// toolchain pass invocation re-parses and re-serializes the whole script, so
// passes are queued and applied in batches: the cost is bounded by the
// number of flushes, not the number of passes.
package passes

import (
	"context"

	"scriptcc/internal/config"
	"scriptcc/internal/toolchain"
)

// Named transformation passes known to the translator's pass driver.
const (
	HoistMultiples      = "hoistMultiples"
	LoopOptimizer       = "loopOptimizer"
	Eliminate           = "eliminate"
	SimplifyExpressions = "simplifyExpressions"
	OptimizeShifts      = "optimizeShifts"
	Compress            = "compress"
)

// Queue is an ordered, append-only list of pass names. Enqueue has no
// immediate effect; Flush hands the whole batch to the toolchain in one
// call and resets the queue. A pass never observes a partially-flushed
// queue.
type Queue struct {
	pending []string
}

func NewQueue() *Queue {
	return &Queue{}
}

// Enqueue appends a pass to the batch.
func (q *Queue) Enqueue(name string) {
	q.pending = append(q.pending, name)
}

// Len reports the number of queued passes.
func (q *Queue) Len() int {
	return len(q.pending)
}

// Pending returns a copy of the queued pass names in insertion order.
func (q *Queue) Pending() []string {
	out := make([]string, len(q.pending))
	copy(out, q.pending)
	return out
}

// Flush applies all queued passes to the script in insertion order via one
// toolchain call, then clears the queue. Flushing an empty queue is a no-op
// and does not touch the toolchain.
func (q *Queue) Flush(ctx context.Context, tc toolchain.Toolchain, settings *config.Settings, script string) error {
	if len(q.pending) == 0 {
		return nil
	}
	batch := q.pending
	q.pending = nil
	return tc.ApplyPasses(ctx, settings, script, batch)
}
