package config

import (
	"sort"

	"github.com/animalet/kernelenv/internal/expansion"
	"github.com/animalet/kernelenv/pkg/environment"
	"github.com/animalet/kernelenv/pkg/secrets"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// SecretsConfig is the "secrets" section. Each configured backend is registered
// under its prefix: file, vault, aws.
type SecretsConfig struct {
	File  *secrets.FileConfig  `yaml:"file,omitempty"`
	Vault *secrets.VaultConfig `yaml:"vault,omitempty"`
	AWS   *secrets.AWSConfig   `yaml:"aws,omitempty"`
}

type backend struct {
	prefix   string
	resolver secrets.PropertyResolver
}

// load resolves the properties and secrets sections against a staged overlay of
// the resolver. Nothing reaches the resolver's store or registry unless both
// sections load completely.
func (c *Config) load() error {
	props := environment.NewProperties(nil)
	var registry *secrets.Registry
	if base := c.resolver.Secrets(); base != nil {
		registry = base.Clone()
	}
	stage := c.resolver.Overlay(props, registry)

	declared, err := c.applyProperties(stage)
	if err != nil {
		return err
	}
	backends, err := c.registerSecrets(stage)
	if err != nil {
		return err
	}

	staged := props.Snapshot()
	keys := make([]string, 0, len(staged))
	for key := range staged {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		c.resolver.SetProperty(key, staged[key])
	}
	for _, b := range backends {
		c.resolver.Secrets().Register(b.prefix, b.resolver)
	}

	c.properties = declared
	if len(backends) > 0 {
		log.Debug().Strs("prefixes", c.resolver.Secrets().Prefixes()).Msg("Secret resolvers registered")
	}
	return nil
}

// applyProperties substitutes the "properties" section in key order and stages
// each value, so a property may reference any property sorting before it.
func (c *Config) applyProperties(stage *environment.Resolver) (map[string]string, error) {
	properties := map[string]string{}

	raw, ok := c.sections[PropertiesKey]
	if !ok || raw == nil {
		return properties, nil
	}

	var declared map[string]string
	if err := decodeSection(raw, &declared); err != nil {
		return nil, errors.Wrapf(err, "section %q must map names to scalar values", PropertiesKey)
	}

	keys := make([]string, 0, len(declared))
	for key := range declared {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		value, err := stage.SubstituteVariables(declared[key])
		if err != nil {
			return nil, errors.Wrapf(err, "failed to substitute property %q", key)
		}
		stage.SetProperty(key, value)
		properties[key] = value
		log.Debug().Str("property", key).Msg("Property read from configuration")
	}
	return properties, nil
}

// registerSecrets creates backends in the order file, vault, aws and registers
// each in the staged registry before expanding the next, so later backends may
// use earlier ones, e.g. a Vault token read with ${file:vault_token}.
func (c *Config) registerSecrets(stage *environment.Resolver) ([]backend, error) {
	raw, ok := c.sections[SecretsKey]
	if !ok || raw == nil {
		return nil, nil
	}

	var sc SecretsConfig
	if err := decodeSection(raw, &sc); err != nil {
		return nil, errors.Wrapf(err, "failed to decode section %q", SecretsKey)
	}

	registry := stage.Secrets()
	if registry == nil {
		return nil, errors.New("secret backends are configured but the resolver has no secret registry")
	}

	var backends []backend
	add := func(prefix string, resolver secrets.PropertyResolver) {
		registry.Register(prefix, resolver)
		backends = append(backends, backend{prefix: prefix, resolver: resolver})
	}

	if sc.File != nil {
		if err := expand(stage, sc.File); err != nil {
			return nil, err
		}
		resolver, err := sc.File.CreateClient()
		if err != nil {
			return nil, errors.Wrap(err, "failed to create file secret resolver")
		}
		add("file", resolver)
	}

	if sc.Vault != nil {
		if err := expand(stage, sc.Vault); err != nil {
			return nil, err
		}
		client, err := sc.Vault.CreateClient()
		if err != nil {
			return nil, errors.Wrap(err, "failed to create Vault client")
		}
		add("vault", secrets.NewVaultResolver(client, sc.Vault.Path))
	}

	if sc.AWS != nil {
		if err := expand(stage, sc.AWS); err != nil {
			return nil, err
		}
		client, err := sc.AWS.CreateClient()
		if err != nil {
			return nil, errors.Wrap(err, "failed to create AWS Secrets Manager client")
		}
		add("aws", secrets.NewAWSResolver(client, sc.AWS.SecretName))
	}

	return backends, nil
}

func expand(stage *environment.Resolver, target any) error {
	if err := expansion.Walk(target, stage.SubstituteVariables); err != nil {
		return errors.Wrapf(err, "failed to expand section %q", SecretsKey)
	}
	return nil
}
