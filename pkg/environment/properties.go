package environment

import (
	"sync"

	"github.com/animalet/kernelenv/internal/snapshot"
)

// Properties is a concurrency-safe set of process properties, the in-process
// counterpart of environment variables that can be set at runtime.
type Properties struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewProperties returns a property set seeded with a copy of initial.
func NewProperties(initial map[string]string) *Properties {
	return &Properties{values: snapshot.Strings(initial)}
}

// Get returns the value of key and whether it is set.
func (p *Properties) Get(key string) (string, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	value, ok := p.values[key]
	return value, ok
}

// Set stores value under key.
func (p *Properties) Set(key, value string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.values[key] = value
}

// Delete removes key.
func (p *Properties) Delete(key string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.values, key)
}

// Len returns the number of properties.
func (p *Properties) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.values)
}

// Snapshot returns a copy of all properties.
func (p *Properties) Snapshot() map[string]string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return snapshot.Strings(p.values)
}
