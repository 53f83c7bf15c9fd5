package scheduling

import (
	"sort"
	"sync"
)

// keyedMutex serializes scheduling per participant so that the
// check-availability-then-persist sequence cannot interleave for the
// same person. Two concurrent requests touching disjoint people do not
// block each other.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*entry
}

type entry struct {
	mu   sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*entry)}
}

// Lock acquires the mutex for every key and returns the matching unlock.
// Keys are deduplicated and locked in sorted order so two requests
// sharing a pair of participants cannot deadlock.
func (k *keyedMutex) Lock(keys ...string) func() {
	uniq := make([]string, 0, len(keys))
	seen := make(map[string]bool, len(keys))
	for _, key := range keys {
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		uniq = append(uniq, key)
	}
	sort.Strings(uniq)

	entries := make([]*entry, len(uniq))
	k.mu.Lock()
	for i, key := range uniq {
		e, ok := k.locks[key]
		if !ok {
			e = &entry{}
			k.locks[key] = e
		}
		e.refs++
		entries[i] = e
	}
	k.mu.Unlock()

	for _, e := range entries {
		e.mu.Lock()
	}

	return func() {
		for i := len(entries) - 1; i >= 0; i-- {
			entries[i].mu.Unlock()
		}
		k.mu.Lock()
		for i, key := range uniq {
			entries[i].refs--
			if entries[i].refs == 0 {
				delete(k.locks, key)
			}
		}
		k.mu.Unlock()
	}
}
