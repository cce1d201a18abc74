package builder

import "sync"

// flight serializes work per key. Concurrent builds of the same
// object directory would race on generated files, so only one runs at
// a time; a waiter re-runs its own job after the holder finishes
// (the job's staleness check then usually makes it a no-op).
type flight struct {
	mu     sync.Mutex
	active map[string]chan struct{}
}

func newFlight() *flight {
	return &flight{active: make(map[string]chan struct{})}
}

func (f *flight) do(key string, fn func() error) error {
	for {
		f.mu.Lock()
		if ch, busy := f.active[key]; busy {
			f.mu.Unlock()
			<-ch
			continue
		}
		ch := make(chan struct{})
		f.active[key] = ch
		f.mu.Unlock()

		err := fn()

		f.mu.Lock()
		delete(f.active, key)
		f.mu.Unlock()
		close(ch)
		return err
	}
}
