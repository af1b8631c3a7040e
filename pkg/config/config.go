// Package config loads the kernel configuration file from the configuration
// directory. Placeholders in the file are substituted through an
// environment.Resolver, declared properties are seeded into the resolver's store
// and configured secret backends are registered before any section is read.
package config

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/animalet/kernelenv/internal/expansion"
	"github.com/animalet/kernelenv/internal/snapshot"
	"github.com/animalet/kernelenv/pkg/environment"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const (
	// DefaultFileName is looked up in the configuration directory by Locate.
	DefaultFileName = "kernel.yaml"
	// TOMLFileName is used by Locate when DefaultFileName does not exist.
	TOMLFileName = "kernel.toml"

	PropertiesKey = "properties"
	SecretsKey    = "secrets"
)

// Validatable is implemented by every section type read through Get.
type Validatable interface {
	Validate() error
}

// ClientFactory is a section that can build a client of type T, such as
// secrets.VaultConfig building an *api.Client.
type ClientFactory[T any] interface {
	Validatable
	CreateClient() (T, error)
}

// Config is a loaded kernel configuration file.
type Config struct {
	file       string
	resolver   *environment.Resolver
	sections   map[string]any
	properties map[string]string
}

// Locate returns the path of the kernel configuration file in the resolver's
// configuration directory. kernel.yaml is preferred; kernel.toml is returned when
// only it exists. The returned path may not exist.
func Locate(r *environment.Resolver) (string, error) {
	dir, err := r.ConfigHome()
	if err != nil {
		return "", errors.Wrap(err, "failed to resolve configuration directory")
	}

	yamlPath := filepath.Join(dir, DefaultFileName)
	if _, err := os.Stat(yamlPath); err == nil {
		return yamlPath, nil
	}
	tomlPath := filepath.Join(dir, TOMLFileName)
	if _, err := os.Stat(tomlPath); err == nil {
		return tomlPath, nil
	}
	return yamlPath, nil
}

// Load locates and reads the kernel configuration file.
func Load(r *environment.Resolver) (*Config, error) {
	file, err := Locate(r)
	if err != nil {
		return nil, err
	}
	return NewConfig(file, r)
}

// NewConfig reads file, seeds its properties section into the resolver's store and
// registers its secret backends. On error neither the store nor the registry is
// changed.
func NewConfig(file string, r *environment.Resolver) (*Config, error) {
	data, err := os.ReadFile(file) // #nosec G304 -- operator supplied path
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read configuration file %q", file)
	}

	sections, err := decode(file, data)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse configuration file %q", file)
	}

	cfg := &Config{
		file:     file,
		resolver: r,
		sections: sections,
	}
	if err = cfg.load(); err != nil {
		return nil, err
	}

	log.Info().
		Str("file", file).
		Int("properties", len(cfg.properties)).
		Strs("sections", cfg.Sections()).
		Msg("Configuration loaded")
	return cfg, nil
}

// File returns the path the configuration was read from.
func (c *Config) File() string {
	return c.file
}

// Sections returns the top-level keys of the file in sorted order.
func (c *Config) Sections() []string {
	keys := make([]string, 0, len(c.sections))
	for key := range c.sections {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Has reports whether the file declares section key.
func (c *Config) Has(key string) bool {
	_, ok := c.sections[key]
	return ok
}

// Properties returns the substituted properties that were seeded from the file.
func (c *Config) Properties() map[string]string {
	return snapshot.Strings(c.properties)
}

// Get decodes section key into T, substitutes placeholders in every string field,
// validates it and returns a private copy. A missing section yields (nil, nil).
func Get[T Validatable](c *Config, key string) (*T, error) {
	raw, ok := c.sections[key]
	if !ok || raw == nil {
		return nil, nil
	}

	var out T
	if err := decodeSection(raw, &out); err != nil {
		return nil, errors.Wrapf(err, "failed to decode section %q", key)
	}
	if err := expansion.Walk(&out, c.resolver.SubstituteVariables); err != nil {
		return nil, errors.Wrapf(err, "failed to expand section %q", key)
	}
	if err := out.Validate(); err != nil {
		return nil, errors.Wrapf(err, "section %q is invalid", key)
	}
	return snapshot.Copy(&out)
}

// GetClient reads section key with Get and builds its client. A missing section
// yields (nil, nil).
func GetClient[T ClientFactory[C], C any](c *Config, key string) (*C, error) {
	section, err := Get[T](c, key)
	if err != nil || section == nil {
		return nil, err
	}

	client, err := (*section).CreateClient()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create client for section %q", key)
	}
	return &client, nil
}
