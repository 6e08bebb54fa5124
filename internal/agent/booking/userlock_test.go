package booking

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUserLocks_SerializesSameUser(t *testing.T) {
	locks := newUserLocks()

	var active, maxActive int
	var mu sync.Mutex
	var wg sync.WaitGroup

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := locks.lock("u1")
			defer unlock()

			mu.Lock()
			active++
			if active > maxActive {
				maxActive = active
			}
			mu.Unlock()

			mu.Lock()
			active--
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, maxActive, "one booking at a time per user")
}

func TestUserLocks_DifferentUsersIndependent(t *testing.T) {
	locks := newUserLocks()

	unlockA := locks.lock("a")
	done := make(chan struct{})
	go func() {
		unlockB := locks.lock("b")
		unlockB()
		close(done)
	}()

	<-done // lock for b must not wait on a
	unlockA()
}
