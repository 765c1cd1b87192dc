package keylock

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryAcquire(t *testing.T) {
	t.Run("acquire and release", func(t *testing.T) {
		r := NewRegistry(100 * time.Millisecond)
		release, err := r.Acquire(context.Background(), "p1")
		require.NoError(t, err)
		release()

		release, err = r.Acquire(context.Background(), "p1")
		require.NoError(t, err)
		release()
	})

	t.Run("contended acquire times out", func(t *testing.T) {
		r := NewRegistry(50 * time.Millisecond)
		release, err := r.Acquire(context.Background(), "p1")
		require.NoError(t, err)
		defer release()

		_, err = r.Acquire(context.Background(), "p1")
		assert.ErrorIs(t, err, ErrTimeout)
	})

	t.Run("different keys do not contend", func(t *testing.T) {
		r := NewRegistry(50 * time.Millisecond)
		release1, err := r.Acquire(context.Background(), "p1")
		require.NoError(t, err)
		defer release1()

		release2, err := r.Acquire(context.Background(), "p2")
		require.NoError(t, err)
		release2()
	})
}

func TestRegistryAcquireAll(t *testing.T) {
	t.Run("duplicates are deduped", func(t *testing.T) {
		r := NewRegistry(100 * time.Millisecond)
		release, err := r.AcquireAll(context.Background(), []string{"p1", "p1", "p2"})
		require.NoError(t, err)
		release()
	})

	t.Run("failure releases partial acquisitions", func(t *testing.T) {
		r := NewRegistry(50 * time.Millisecond)
		blockB, err := r.Acquire(context.Background(), "b")
		require.NoError(t, err)

		_, err = r.AcquireAll(context.Background(), []string{"a", "b"})
		require.ErrorIs(t, err, ErrTimeout)
		blockB()

		// "a" must have been released by the failed attempt.
		release, err := r.AcquireAll(context.Background(), []string{"a", "b"})
		require.NoError(t, err)
		release()
	})

	t.Run("overlapping sets in opposite order do not deadlock", func(t *testing.T) {
		r := NewRegistry(2 * time.Second)
		var wg sync.WaitGroup
		for i := 0; i < 50; i++ {
			ids := []string{"x", "y"}
			if i%2 == 1 {
				ids = []string{"y", "x"}
			}
			wg.Add(1)
			go func(ids []string) {
				defer wg.Done()
				release, err := r.AcquireAll(context.Background(), ids)
				if assert.NoError(t, err) {
					release()
				}
			}(ids)
		}
		done := make(chan struct{})
		go func() { wg.Wait(); close(done) }()
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Fatal("acquisitions deadlocked")
		}
	})
}
