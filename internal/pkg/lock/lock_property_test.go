package lock

import (
	"sync"
	"testing"

	"pgregory.net/rapid"
)

// TestLockIsolationProperty checks that locks for distinct chats never
// interfere: holding one chat's lock leaves every other chat lockable.
func TestLockIsolationProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		cl := NewChatLock()
		held := rapid.Int64Range(1, 1000).Draw(t, "held")
		other := rapid.Int64Range(1001, 2000).Draw(t, "other")

		cl.Lock(held)
		if !cl.TryLock(other) {
			t.Fatalf("lock for chat %d blocked unrelated chat %d", held, other)
		}
		cl.Unlock(other)
		cl.Unlock(held)

		if cl.IsLocked(held) || cl.IsLocked(other) {
			t.Fatalf("locks leaked after unlock")
		}
	})
}

// TestConcurrentWithLockProperty hammers a random set of chats with
// concurrent critical sections and checks every increment survives.
func TestConcurrentWithLockProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		cl := NewChatLock()
		chats := rapid.SliceOfNDistinct(rapid.Int64Range(1, 50), 1, 8, func(id int64) int64 { return id }).Draw(t, "chats")
		perChat := rapid.IntRange(1, 20).Draw(t, "perChat")

		counters := make(map[int64]*int, len(chats))
		for _, id := range chats {
			n := 0
			counters[id] = &n
		}

		var wg sync.WaitGroup
		for _, id := range chats {
			for i := 0; i < perChat; i++ {
				wg.Add(1)
				go func(id int64) {
					defer wg.Done()
					_ = cl.WithLock(id, func() error {
						*counters[id]++
						return nil
					})
				}(id)
			}
		}
		wg.Wait()

		for _, id := range chats {
			if *counters[id] != perChat {
				t.Fatalf("chat %d: expected %d increments, got %d", id, perChat, *counters[id])
			}
		}
	})
}
