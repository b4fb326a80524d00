package workers

import (
	"fmt"
	"sync"
)

type Registry struct {
	mu      sync.RWMutex
	workers map[string]Worker
}

func NewRegistry(ws ...Worker) (*Registry, error) {
	r := &Registry{workers: make(map[string]Worker)}
	for _, w := range ws {
		if err := r.Register(w); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *Registry) Register(w Worker) error {
	if w == nil {
		return fmt.Errorf("nil worker")
	}
	name := w.Name()
	if name == "" {
		return fmt.Errorf("worker Name() is empty")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.workers[name]; exists {
		return fmt.Errorf("worker already registered for name=%s", name)
	}
	r.workers[name] = w
	return nil
}

func (r *Registry) Get(name string) (Worker, bool) {
	if r == nil {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	w, ok := r.workers[name]
	return w, ok
}

func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.workers))
	for n := range r.workers {
		out = append(out, n)
	}
	return out
}
