// Package environment resolves the installation home and configuration
// directories, looks up variables with property-over-environment precedence and
// substitutes ${name} placeholders in configuration strings.
//
// Properties are process-local key/value pairs that take precedence over
// environment variables. They are held by a Store so tests and embedders can
// supply their own. The package-level functions operate on Default.
package environment

import (
	"path/filepath"

	"github.com/animalet/kernelenv/pkg/secrets"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const (
	HomeProperty       = "carbon.home"
	HomeEnv            = "CARBON_HOME"
	RepositoryProperty = "carbon.repository"
	RepositoryEnv      = "CARBON_REPOSITORY"

	RepositoryDir = "repository"
	ConfDir       = "conf"
)

// Resolver answers environment questions against a Store. It holds no state of
// its own besides configuration; all mutable state lives in the Store.
type Resolver struct {
	store        Store
	homeProperty string
	homeEnv      string
	repoProperty string
	repoEnv      string
	guard        Guard
	secrets      *secrets.Registry
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithHomeKeys overrides the property and environment variable naming the home directory.
func WithHomeKeys(property, env string) Option {
	return func(r *Resolver) {
		r.homeProperty = property
		r.homeEnv = env
	}
}

// WithRepositoryKeys overrides the property and environment variable naming the
// repository directory.
func WithRepositoryKeys(property, env string) Option {
	return func(r *Resolver) {
		r.repoProperty = property
		r.repoEnv = env
	}
}

// WithGuard sets the guard consulted by CheckSecurity.
func WithGuard(g Guard) Option {
	return func(r *Resolver) {
		r.guard = g
	}
}

// WithSecrets lets placeholders such as ${vault:key} resolve through registry.
// Names whose prefix is not registered still resolve as plain variables.
func WithSecrets(registry *secrets.Registry) Option {
	return func(r *Resolver) {
		r.secrets = registry
	}
}

// New returns a Resolver over store.
func New(store Store, opts ...Option) *Resolver {
	r := &Resolver{
		store:        store,
		homeProperty: HomeProperty,
		homeEnv:      HomeEnv,
		repoProperty: RepositoryProperty,
		repoEnv:      RepositoryEnv,
		guard:        NoopGuard{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Store returns the store the resolver reads from.
func (r *Resolver) Store() Store {
	return r.store
}

// Secrets returns the secret registry, or nil when none is configured.
func (r *Resolver) Secrets() *secrets.Registry {
	return r.secrets
}

// Property returns the property key and whether it is set.
func (r *Resolver) Property(key string) (string, bool) {
	return r.store.Property(key)
}

// SetProperty sets the property key.
func (r *Resolver) SetProperty(key, value string) {
	r.store.SetProperty(key, value)
}

// Home returns the installation home directory. The home property wins; when it
// is unset the home environment variable is used and copied into the home
// property so later readers of the property see it.
//
// The copy is not atomic with the read. Concurrent first calls may each write,
// which is harmless because they write the same value.
//
// The value is returned verbatim, without existence checks. A home property set
// to "" does not fall back to the environment. An empty or missing home yields
// ErrHomeNotConfigured and leaves the property untouched.
func (r *Resolver) Home() (string, error) {
	if home, ok := r.store.Property(r.homeProperty); ok {
		if home == "" {
			return "", errors.Wrapf(ErrHomeNotConfigured, "property %q is empty", r.homeProperty)
		}
		return home, nil
	}

	home, ok := r.store.Env(r.homeEnv)
	if !ok || home == "" {
		return "", errors.Wrapf(ErrHomeNotConfigured, "neither property %q nor environment variable %q is set",
			r.homeProperty, r.homeEnv)
	}

	r.store.SetProperty(r.homeProperty, home)
	log.Debug().
		Str("property", r.homeProperty).
		Str("env_var", r.homeEnv).
		Str("home", home).
		Msg("Home directory taken from environment")
	return home, nil
}

// ConfigHome returns the configuration directory: <repository>/conf when a
// repository override is set, <home>/repository/conf otherwise.
func (r *Resolver) ConfigHome() (string, error) {
	repo, ok := r.store.Property(r.repoProperty)
	if !ok || repo == "" {
		repo, ok = r.store.Env(r.repoEnv)
	}
	if ok && repo != "" {
		return filepath.Join(repo, ConfDir), nil
	}

	home, err := r.Home()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, RepositoryDir, ConfDir), nil
}

// LookupVariable returns the property name if set, else the environment variable
// name if set. ok is false when neither exists. Presence decides, so a property
// set to "" shadows the environment.
func (r *Resolver) LookupVariable(name string) (value string, ok bool) {
	if value, ok = r.store.Property(name); ok {
		return value, true
	}
	return r.store.Env(name)
}

// SystemVariableValue is LookupVariable with a fallback.
func (r *Resolver) SystemVariableValue(name, def string) string {
	if value, ok := r.LookupVariable(name); ok {
		return value
	}
	return def
}

// CheckSecurity asks the guard for ManagementControl and returns its error unchanged.
func (r *Resolver) CheckSecurity() error {
	return r.guard.CheckPermission(ManagementControl)
}
