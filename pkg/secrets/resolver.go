// Package secrets resolves prefixed placeholder names such as "vault:db_password" or
// "file:api_key" through a registry of pluggable backends.
package secrets

import (
	"sort"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// PropertyResolver is a secret backend. It receives the key without its prefix.
//
// Implementations in this package:
//   - EnvResolver: environment variables
//   - FileResolver: files in a secrets directory
//   - VaultResolver: HashiCorp Vault KV engines
//   - AWSResolver: AWS Secrets Manager
type PropertyResolver interface {
	// Resolve retrieves the value for key or an error if it cannot be found.
	Resolve(key string) (string, error)

	// Name returns a human-readable name for logging.
	Name() string
}

// Registry associates prefixes with their resolvers. It is safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	resolvers map[string]PropertyResolver
}

// Global is the process-wide registry. The "env" prefix is registered by default.
var Global = NewRegistry()

func init() {
	Global.Register("env", NewEnvResolver())
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{resolvers: make(map[string]PropertyResolver)}
}

// Register binds a resolver to prefix. The prefix does not include the colon.
// An existing binding is replaced with a warning.
func (r *Registry) Register(prefix string, resolver PropertyResolver) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.resolvers[prefix]; exists {
		log.Warn().Str("prefix", prefix).Msg("Overriding existing secret resolver")
	}
	r.resolvers[prefix] = resolver
}

// Unregister removes the resolver bound to prefix, if any.
func (r *Registry) Unregister(prefix string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.resolvers, prefix)
}

// Clone returns a new registry holding the same bindings.
func (r *Registry) Clone() *Registry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	clone := NewRegistry()
	for prefix, resolver := range r.resolvers {
		clone.resolvers[prefix] = resolver
	}
	return clone
}

// Resolver returns the resolver bound to prefix, or nil.
func (r *Registry) Resolver(prefix string) PropertyResolver {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.resolvers[prefix]
}

// Prefixes returns the registered prefixes in sorted order.
func (r *Registry) Prefixes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	prefixes := make([]string, 0, len(r.resolvers))
	for prefix := range r.resolvers {
		prefixes = append(prefixes, prefix)
	}
	sort.Strings(prefixes)
	return prefixes
}

// Handles reports whether property carries a registered prefix.
func (r *Registry) Handles(property string) bool {
	prefix, _, found := strings.Cut(property, ":")
	if !found {
		return false
	}
	return r.Resolver(prefix) != nil
}

// Resolve resolves a "prefix:key" property. Only the first colon separates the
// prefix, so "custom:db:password" resolves key "db:password" with "custom".
func (r *Registry) Resolve(property string) (string, error) {
	prefix, key, found := strings.Cut(property, ":")
	if !found {
		return "", errors.Errorf("property %q has no resolver prefix", property)
	}

	resolver := r.Resolver(prefix)
	if resolver == nil {
		return "", errors.Errorf("no resolver registered for prefix %q", prefix)
	}

	value, err := resolver.Resolve(key)
	if err != nil {
		return "", errors.Wrapf(err, "failed to resolve %q using %s resolver", property, resolver.Name())
	}
	return value, nil
}
