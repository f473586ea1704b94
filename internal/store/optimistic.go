package store

import "context"

// commitOptimistic finishes the optimistic write pattern for a mutation the
// caller has already applied and announced: it attempts the remote commit
// and, on failure, restores the snapshot and re-notifies so observers see
// the rollback. The commit error is returned either way so callers can
// surface it.
func commitOptimistic[T any](ctx context.Context, snapshot T, restore func(T), notify func(), commit func(context.Context) error) error {
	if err := commit(ctx); err != nil {
		restore(snapshot)
		notify()
		return err
	}
	return nil
}
