package environment

import (
	"strings"

	"github.com/rs/zerolog/log"
)

const (
	placeholderOpen  = "${"
	placeholderClose = '}'
)

// SubstituteVariables replaces every ${name} in value with the variable's value.
// Placeholders are matched left to right; a name runs to the first '}' and may be
// empty. An unterminated "${" is kept as is. Substituted values are inserted
// verbatim and never rescanned.
//
// Every name is looked up with LookupVariable first. When that yields nothing and
// the name carries a prefix registered in the secret registry ("vault:db_password"),
// the registry resolves it instead.
//
// An absent or empty value fails the whole call with *UnresolvedVariableError.
func (r *Resolver) SubstituteVariables(value string) (string, error) {
	if !strings.Contains(value, placeholderOpen) {
		return value, nil
	}

	var out strings.Builder
	out.Grow(len(value))

	rest := value
	for {
		start := strings.Index(rest, placeholderOpen)
		if start < 0 {
			break
		}
		nameStart := start + len(placeholderOpen)
		length := strings.IndexByte(rest[nameStart:], placeholderClose)
		if length < 0 {
			break
		}
		name := rest[nameStart : nameStart+length]

		resolved, err := r.resolveVariable(name)
		if err != nil {
			return "", err
		}

		out.WriteString(rest[:start])
		out.WriteString(resolved)
		rest = rest[nameStart+length+1:]
	}
	out.WriteString(rest)

	return out.String(), nil
}

func (r *Resolver) resolveVariable(name string) (string, error) {
	if value, ok := r.LookupVariable(name); ok && value != "" {
		return value, nil
	}

	if r.secrets != nil && r.secrets.Handles(name) {
		value, err := r.secrets.Resolve(name)
		if err != nil {
			return "", &UnresolvedVariableError{Name: name, Cause: err}
		}
		if value != "" {
			return value, nil
		}
	}

	log.Debug().Str("variable", name).Msg("Placeholder has no value")
	return "", &UnresolvedVariableError{Name: name}
}
