package lock_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gvan1961/frontdivan/internal/lock"
)

func TestKeyed_SerializesSameKey(t *testing.T) {
	// GIVEN: many goroutines incrementing a counter under the same key
	// WHEN: each takes the lock around its critical section
	// THEN: no increment is lost

	k := lock.NewKeyed()
	var wg sync.WaitGroup
	counter := 0

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := k.Lock(42)
			defer unlock()
			counter++
		}()
	}
	wg.Wait()

	assert.Equal(t, 100, counter)
}

func TestKeyed_DifferentKeysDoNotBlock(t *testing.T) {
	// GIVEN: key 1 held by this goroutine
	// WHEN: another goroutine takes key 2
	// THEN: it proceeds without waiting on key 1

	k := lock.NewKeyed()
	unlock1 := k.Lock(1)
	defer unlock1()

	done := make(chan struct{})
	go func() {
		unlock2 := k.Lock(2)
		unlock2()
		close(done)
	}()

	<-done
}

func TestKeyed_ReacquireAfterUnlock(t *testing.T) {
	k := lock.NewKeyed()

	unlock := k.Lock(7)
	unlock()

	unlock = k.Lock(7)
	unlock()
}
