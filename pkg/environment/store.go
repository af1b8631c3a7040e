package environment

import (
	"os"
)

// Store gives the resolver access to properties and environment variables.
// The boolean results report presence, so a key set to "" is distinguishable
// from an unset one.
type Store interface {
	Property(key string) (string, bool)
	Env(key string) (string, bool)
	SetProperty(key, value string)
}

// ProcessStore reads environment variables from the running process and keeps
// properties in memory.
type ProcessStore struct {
	props *Properties
}

// NewProcessStore returns a store over the process environment with no properties set.
func NewProcessStore() *ProcessStore {
	return &ProcessStore{props: NewProperties(nil)}
}

func (s *ProcessStore) Property(key string) (string, bool) {
	return s.props.Get(key)
}

func (s *ProcessStore) Env(key string) (string, bool) {
	return os.LookupEnv(key)
}

func (s *ProcessStore) SetProperty(key, value string) {
	s.props.Set(key, value)
}

// Properties exposes the underlying property set.
func (s *ProcessStore) Properties() *Properties {
	return s.props
}

// MapStore is a fully in-memory store. Its environment is fixed at construction.
type MapStore struct {
	props *Properties
	env   map[string]string
}

// NewMapStore returns a store seeded with copies of props and env. Either may be nil.
func NewMapStore(props, env map[string]string) *MapStore {
	return &MapStore{
		props: NewProperties(props),
		env:   NewProperties(env).Snapshot(),
	}
}

func (s *MapStore) Property(key string) (string, bool) {
	return s.props.Get(key)
}

func (s *MapStore) Env(key string) (string, bool) {
	value, ok := s.env[key]
	return value, ok
}

func (s *MapStore) SetProperty(key, value string) {
	s.props.Set(key, value)
}

// Properties exposes the underlying property set.
func (s *MapStore) Properties() *Properties {
	return s.props
}
