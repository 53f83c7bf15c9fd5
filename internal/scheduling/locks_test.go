package scheduling

import (
	"sync"
	"testing"
)

func TestKeyedMutexSerializesPerKey(t *testing.T) {
	km := newKeyedMutex()

	var mu sync.Mutex
	counts := map[string]int{}
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := km.Lock("a")
			defer unlock()
			mu.Lock()
			counts["a"]++
			mu.Unlock()
		}()
	}
	wg.Wait()
	if counts["a"] != 50 {
		t.Errorf("count = %d", counts["a"])
	}
	// all entries released
	km.mu.Lock()
	defer km.mu.Unlock()
	if len(km.locks) != 0 {
		t.Errorf("leaked %d lock entries", len(km.locks))
	}
}

func TestKeyedMutexReversedPairsNoDeadlock(t *testing.T) {
	km := newKeyedMutex()

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			unlock := km.Lock("x", "y")
			unlock()
		}()
		go func() {
			defer wg.Done()
			unlock := km.Lock("y", "x")
			unlock()
		}()
	}
	wg.Wait()
}

func TestKeyedMutexIgnoresDuplicatesAndEmpty(t *testing.T) {
	km := newKeyedMutex()
	unlock := km.Lock("a", "", "a")
	unlock()

	km.mu.Lock()
	defer km.mu.Unlock()
	if len(km.locks) != 0 {
		t.Errorf("leaked %d lock entries", len(km.locks))
	}
}
