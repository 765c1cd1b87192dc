// internal/keylock/lock.go
package keylock

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"
)

// ErrTimeout is returned when a lock cannot be acquired within the
// registry's wait budget.
var ErrTimeout = errors.New("timed out waiting for lock")

// Registry hands out one mutual-exclusion lock per resource id. Waiting
// is bounded: a caller that cannot get the lock within maxWait gets
// ErrTimeout instead of blocking forever.
type Registry struct {
	mu      sync.Mutex
	locks   map[string]*semaphore.Weighted
	maxWait time.Duration
}

func NewRegistry(maxWait time.Duration) *Registry {
	return &Registry{
		locks:   make(map[string]*semaphore.Weighted),
		maxWait: maxWait,
	}
}

func (r *Registry) lock(id string) *semaphore.Weighted {
	r.mu.Lock()
	defer r.mu.Unlock()
	sem, ok := r.locks[id]
	if !ok {
		sem = semaphore.NewWeighted(1)
		r.locks[id] = sem
	}
	return sem
}

// Acquire takes the lock for one resource. The returned release function
// must be called exactly once.
func (r *Registry) Acquire(ctx context.Context, id string) (func(), error) {
	sem := r.lock(id)
	waitCtx, cancel := context.WithTimeout(ctx, r.maxWait)
	defer cancel()
	if err := sem.Acquire(waitCtx, 1); err != nil {
		return nil, ErrTimeout
	}
	return func() { sem.Release(1) }, nil
}

// AcquireAll takes the locks for every listed resource, always in
// ascending id order so that overlapping multi-resource callers cannot
// deadlock each other. On failure every lock taken so far is released.
func (r *Registry) AcquireAll(ctx context.Context, ids []string) (func(), error) {
	sorted := dedupeSorted(ids)
	released := make([]func(), 0, len(sorted))
	releaseAll := func() {
		for i := len(released) - 1; i >= 0; i-- {
			released[i]()
		}
	}
	for _, id := range sorted {
		release, err := r.Acquire(ctx, id)
		if err != nil {
			releaseAll()
			return nil, err
		}
		released = append(released, release)
	}
	return releaseAll, nil
}

func dedupeSorted(ids []string) []string {
	sorted := make([]string, len(ids))
	copy(sorted, ids)
	sort.Strings(sorted)
	out := sorted[:0]
	for i, id := range sorted {
		if i == 0 || sorted[i-1] != id {
			out = append(out, id)
		}
	}
	return out
}
