package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/animalet/kernelenv/pkg/config"
	"github.com/animalet/kernelenv/pkg/environment"
	"github.com/animalet/kernelenv/pkg/secrets"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// newResolver returns a resolver over the process environment with its own
// property set and a registry holding only the env backend.
func newResolver(store environment.Store) *environment.Resolver {
	registry := secrets.NewRegistry()
	registry.Register("env", secrets.NewEnvResolver())
	return environment.New(store, environment.WithSecrets(registry))
}

func run(opts *options, stdout io.Writer) error {
	store := environment.NewProcessStore()
	r := newResolver(store)

	for _, property := range opts.properties {
		key, value, _ := strings.Cut(property, "=")
		r.SetProperty(key, value)
	}

	cfg, err := loadConfig(opts.configPath, r)
	if err != nil {
		return err
	}

	command, args := opts.args[0], opts.args[1:]
	switch command {
	case "home":
		return printResult(stdout, r.Home)
	case "config-home":
		return printResult(stdout, r.ConfigHome)
	case "get":
		return get(stdout, r, args)
	case "substitute":
		return substitute(stdout, r, args)
	case "section":
		return printSection(stdout, cfg, args)
	case "properties":
		return printProperties(stdout, store.Properties().Snapshot())
	case "check":
		if err := r.CheckSecurity(); err != nil {
			return err
		}
		_, err := fmt.Fprintln(stdout, "ok")
		return err
	default:
		return errors.Errorf("unknown command %q", command)
	}
}

// loadConfig reads an explicit configuration file, or the default one when the
// home directory is configured and the file exists. The home directory is
// resolved first so ${carbon.home} is available to the file.
func loadConfig(path string, r *environment.Resolver) (*config.Config, error) {
	if _, err := r.Home(); err != nil {
		log.Debug().Err(err).Msg("Home directory not resolved before loading configuration")
	}

	if path == "" {
		located, err := config.Locate(r)
		if err != nil {
			log.Debug().Err(err).Msg("No configuration directory, skipping configuration file")
			return nil, nil
		}
		if _, err := os.Stat(located); err != nil {
			log.Debug().Str("file", located).Msg("No configuration file found")
			return nil, nil
		}
		path = located
	}

	cfg, err := config.NewConfig(path, r)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load configuration file")
	}
	log.Debug().
		Str("file", cfg.File()).
		Strs("sections", cfg.Sections()).
		Bool("secrets", cfg.Has(config.SecretsKey)).
		Msg("Configuration file applied")
	return cfg, nil
}

// sectionValues is an untyped configuration section.
type sectionValues map[string]any

func (sectionValues) Validate() error {
	return nil
}

func printSection(w io.Writer, cfg *config.Config, args []string) error {
	if len(args) != 1 {
		return errors.New("section expects a section name")
	}
	if cfg == nil {
		return errors.New("no configuration file loaded")
	}

	section, err := config.Get[sectionValues](cfg, args[0])
	if err != nil {
		return err
	}
	if section == nil {
		return errors.Errorf("section %q not found in %s", args[0], cfg.File())
	}

	data, err := yaml.Marshal(*section)
	if err != nil {
		return errors.Wrapf(err, "failed to encode section %q", args[0])
	}
	_, err = w.Write(data)
	return err
}

func printResult(w io.Writer, fn func() (string, error)) error {
	value, err := fn()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, value)
	return err
}

func get(w io.Writer, r *environment.Resolver, args []string) error {
	switch len(args) {
	case 1:
		value, ok := r.LookupVariable(args[0])
		if !ok {
			return errors.Errorf("variable %q is not set", args[0])
		}
		_, err := fmt.Fprintln(w, value)
		return err
	case 2:
		_, err := fmt.Fprintln(w, r.SystemVariableValue(args[0], args[1]))
		return err
	default:
		return errors.New("get expects a name and an optional default")
	}
}

func substitute(w io.Writer, r *environment.Resolver, args []string) error {
	if len(args) == 0 {
		return errors.New("substitute expects at least one argument")
	}

	// resolve everything before printing anything
	results := make([]string, 0, len(args))
	for _, arg := range args {
		value, err := r.SubstituteVariables(arg)
		if err != nil {
			return err
		}
		results = append(results, value)
	}
	for _, value := range results {
		if _, err := fmt.Fprintln(w, value); err != nil {
			return err
		}
	}
	return nil
}

func printProperties(w io.Writer, properties map[string]string) error {
	keys := make([]string, 0, len(properties))
	for key := range properties {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if _, err := fmt.Fprintf(w, "%s=%s\n", key, properties[key]); err != nil {
			return err
		}
	}
	return nil
}
