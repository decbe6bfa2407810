package registry

import (
	"context"
	"errors"
	"sort"
	"sync"

	"tskit/internal/ports"
)

// Registry holds named Provider implementations.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]ports.Provider
}

func New() *Registry {
	return &Registry{providers: make(map[string]ports.Provider)}
}

func (r *Registry) Register(name string, p ports.Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[name] = p
}

func (r *Registry) Get(name string) (ports.Provider, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.providers[name]
	return p, ok
}

func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.providers))
	for n := range r.providers {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// HealthCheck tests every provider concurrently.
func (r *Registry) HealthCheck(ctx context.Context) map[string]error {
	r.mu.RLock()
	snapshot := make(map[string]ports.Provider, len(r.providers))
	for name, p := range r.providers {
		snapshot[name] = p
	}
	r.mu.RUnlock()

	var (
		mu  sync.Mutex
		wg  sync.WaitGroup
		out = make(map[string]error, len(snapshot))
	)
	for name, p := range snapshot {
		if p == nil {
			mu.Lock()
			out[name] = errors.New("nil provider")
			mu.Unlock()
			continue
		}
		wg.Add(1)
		go func(name string, p ports.Provider) {
			defer wg.Done()
			err := p.Test(ctx)
			mu.Lock()
			out[name] = err
			mu.Unlock()
		}(name, p)
	}
	wg.Wait()
	return out
}
