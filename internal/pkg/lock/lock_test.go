package lock

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLockUnlock(t *testing.T) {
	cl := NewChatLock()

	cl.Lock(1)
	assert.True(t, cl.IsLocked(1))
	assert.False(t, cl.IsLocked(2))
	cl.Unlock(1)
	assert.False(t, cl.IsLocked(1))
}

func TestTryLock(t *testing.T) {
	cl := NewChatLock()

	require.True(t, cl.TryLock(1))
	assert.False(t, cl.TryLock(1))
	// A different chat is unaffected.
	assert.True(t, cl.TryLock(2))
	cl.Unlock(1)
	cl.Unlock(2)
	assert.True(t, cl.TryLock(1))
	cl.Unlock(1)
}

func TestWithLockSerializes(t *testing.T) {
	cl := NewChatLock()
	const workers = 32

	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = cl.WithLock(7, func() error {
				counter++
				return nil
			})
		}()
	}
	wg.Wait()

	assert.Equal(t, workers, counter)
}

func TestWithLockPropagatesError(t *testing.T) {
	cl := NewChatLock()
	wantErr := assert.AnError

	err := cl.WithLock(1, func() error { return wantErr })
	assert.ErrorIs(t, err, wantErr)
	assert.False(t, cl.IsLocked(1))
}
