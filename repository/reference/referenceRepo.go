// Package refrepo maps client-generated payment references to the gateway's
// authoritative references. The mapping is written exactly once per attempt,
// right after a successful initiation that returned a gateway reference, and
// is consulted by every status check that only knows the client reference.
package refrepo

import (
	"context"
	"sync"
)

type Repo interface {
	Put(ctx context.Context, clientRef, gatewayRef string) error
	// Resolve returns the gateway reference when one is mapped, otherwise
	// the client reference unchanged.
	Resolve(ctx context.Context, clientRef string) (string, error)
}

type memoryRepo struct {
	mu sync.RWMutex
	m  map[string]string
}

// NewMemory is the fallback store used when Redis is not configured. The
// mapping then lives only as long as the process, which covers the polling
// loop but not a restart.
func NewMemory() Repo {
	return &memoryRepo{m: make(map[string]string)}
}

func (r *memoryRepo) Put(ctx context.Context, clientRef, gatewayRef string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.m[clientRef] = gatewayRef
	return nil
}

func (r *memoryRepo) Resolve(ctx context.Context, clientRef string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if g, ok := r.m[clientRef]; ok && g != "" {
		return g, nil
	}
	return clientRef, nil
}
