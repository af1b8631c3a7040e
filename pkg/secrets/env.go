package secrets

import (
	"os"

	"github.com/rs/zerolog/log"
)

// EnvResolver reads environment variables.
//
// Example usage in a placeholder:
//
//	path: ${env:PATH}
type EnvResolver struct{}

// NewEnvResolver creates a new environment variable resolver
func NewEnvResolver() *EnvResolver {
	return &EnvResolver{}
}

// Resolve returns the value of the environment variable key. A missing variable
// resolves to the empty string, which placeholder substitution then rejects.
func (e *EnvResolver) Resolve(key string) (string, error) {
	value, ok := os.LookupEnv(key)
	if !ok {
		log.Warn().Str("env_var", key).Msg("Environment variable not set")
		return "", nil
	}

	log.Debug().Str("env_var", key).Msg("Retrieved value from environment variable")
	return value, nil
}

// Name returns the resolver name
func (e *EnvResolver) Name() string {
	return "Environment"
}
