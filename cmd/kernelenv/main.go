package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Version information set during build
var version = "dev"

const (
	exitSuccess = 0
	exitError   = 1
)

type options struct {
	configPath  string
	debug       bool
	showVersion bool
	showHelp    bool
	properties  propertyFlags
	args        []string
}

// propertyFlags collects repeated -D key=value flags.
type propertyFlags []string

func (p *propertyFlags) String() string {
	return strings.Join(*p, ",")
}

func (p *propertyFlags) Set(value string) error {
	key, _, found := strings.Cut(value, "=")
	if !found || key == "" {
		return errors.Errorf("property %q must have the form key=value", value)
	}
	*p = append(*p, value)
	return nil
}

func main() {
	os.Exit(runWithArgs(os.Args[1:], os.Stdout, os.Stderr))
}

func parseFlags(args []string) (*options, error) {
	opts := &options{}
	fs := flag.NewFlagSet("kernelenv", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&opts.configPath, "config", "", "Path to the kernel configuration file")
	fs.BoolVar(&opts.debug, "debug", false, "Enable debug logging")
	fs.BoolVar(&opts.showVersion, "version", false, "Show version information")
	fs.BoolVar(&opts.showHelp, "help", false, "Show this help message")
	fs.Var(&opts.properties, "D", "Set a property (key=value), may be repeated")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			opts.showHelp = true
			return opts, nil
		}
		return nil, err
	}
	opts.args = fs.Args()
	return opts, nil
}

func printUsage(w io.Writer) {
	_, _ = fmt.Fprintf(w, `Usage: kernelenv [flags] <command> [args]

Commands:
  home                     Print the home directory
  config-home              Print the configuration directory
  get <name> [default]     Print a property or environment variable
  substitute <text>...     Substitute ${...} placeholders in each argument
  properties               Print all properties as key=value
  section <name>           Print a configuration file section with placeholders substituted
  check                    Run the security check

Flags:
  --config <file>          Kernel configuration file (default: <config-home>/kernel.yaml if present)
  -D key=value             Set a property before running the command
  --debug                  Enable debug logging
  --version                Show version information
  --help, -h               Show this help message

Source: github.com/animalet/kernelenv
`)
}

func setupLogging(debug bool) {
	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: "2006-01-02 15:04:05",
	})
}

func runWithArgs(args []string, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		printUsage(stderr)
		return exitError
	}

	if opts.showHelp {
		printUsage(stdout)
		return exitSuccess
	}
	if opts.showVersion {
		_, _ = fmt.Fprintf(stdout, "kernelenv version %s\n", version)
		return exitSuccess
	}
	if len(opts.args) == 0 {
		_, _ = fmt.Fprintln(stderr, "Error: a command is required")
		printUsage(stderr)
		return exitError
	}

	setupLogging(opts.debug)

	if err := run(opts, stdout); err != nil {
		log.Error().Err(err).Str("command", opts.args[0]).Msg("Command failed")
		return exitError
	}
	return exitSuccess
}
