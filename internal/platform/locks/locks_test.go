package locks

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestKeyedSerializesSameKey(t *testing.T) {
	k := NewKeyed()

	var n int
	var wg sync.WaitGroup
	for range 100 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := k.Lock("acct")
			n++
			unlock()
		}()
	}
	wg.Wait()
	require.Equal(t, 100, n)
}

func TestKeyedIndependentKeys(t *testing.T) {
	k := NewKeyed()
	unlock := k.Lock("a")
	defer unlock()

	done := make(chan struct{})
	go func() {
		u := k.Lock("b")
		u()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("lock on a different key blocked")
	}
}
