package indexer

import "sync/atomic"

// IndexLock serializes indexing runs without blocking: a caller that finds
// the lock held reports the conflict to the client instead of queueing
// behind a potentially long run.
type IndexLock struct {
	state atomic.Int32 // 0 = unlocked, 1 = locked
}

// TryAcquire claims the lock if it is free. It never blocks; a false return
// means another run is in progress.
func (l *IndexLock) TryAcquire() bool {
	return l.state.CompareAndSwap(0, 1)
}

// Release frees the lock. Only the caller whose TryAcquire returned true
// may release.
func (l *IndexLock) Release() {
	l.state.Store(0)
}
