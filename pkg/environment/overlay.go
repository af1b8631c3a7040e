package environment

import (
	"github.com/animalet/kernelenv/pkg/secrets"
)

// overlayStore reads properties from props before base and writes only to props.
// Environment variables always come from base.
type overlayStore struct {
	base  Store
	props *Properties
}

func (s *overlayStore) Property(key string) (string, bool) {
	if value, ok := s.props.Get(key); ok {
		return value, true
	}
	return s.base.Property(key)
}

func (s *overlayStore) Env(key string) (string, bool) {
	return s.base.Env(key)
}

func (s *overlayStore) SetProperty(key, value string) {
	s.props.Set(key, value)
}

// Overlay returns a resolver with the same keys and guard whose property writes
// land in props instead of the store. Reads see props first, then the store.
// A nil registry keeps the current secret registry.
//
// It lets a caller stage a batch of properties and commit them to the store only
// once the whole batch has resolved.
func (r *Resolver) Overlay(props *Properties, registry *secrets.Registry) *Resolver {
	staged := *r
	staged.store = &overlayStore{base: r.store, props: props}
	if registry != nil {
		staged.secrets = registry
	}
	return &staged
}
