package core

import "sync"

// keyedMutex hands out one mutex per key so operations on independent keys
// never contend. Used to serialize stock batches per merchant and registry
// mutations per rule ID.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*sync.Mutex)}
}

// lock acquires and returns the mutex for key; callers unlock it when done.
func (k *keyedMutex) lock(key string) *sync.Mutex {
	k.mu.Lock()
	m, ok := k.locks[key]
	if !ok {
		m = &sync.Mutex{}
		k.locks[key] = m
	}
	k.mu.Unlock()

	m.Lock()
	return m
}
