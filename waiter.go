package phaser

import "context"

// WaitFor pops phases from q until target is seen. Other phases are
// discarded. With a context that is never done it blocks until target is
// published; otherwise it returns the context error, or ErrQueueClosed once
// the queue is closed and drained.
func WaitFor(ctx context.Context, q *Queue[Phase], target Phase) error {
	for {
		phase, err := q.PopContext(ctx)
		if err != nil {
			return err
		}
		if phase == target {
			return nil
		}
	}
}
