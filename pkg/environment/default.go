package environment

import (
	"github.com/animalet/kernelenv/pkg/secrets"
)

// Default resolves against the process environment, an in-memory property set and
// the global secret registry.
var Default = New(NewProcessStore(), WithSecrets(secrets.Global))

// Home calls Default.Home.
func Home() (string, error) {
	return Default.Home()
}

// ConfigHome calls Default.ConfigHome.
func ConfigHome() (string, error) {
	return Default.ConfigHome()
}

// SubstituteVariables calls Default.SubstituteVariables.
func SubstituteVariables(value string) (string, error) {
	return Default.SubstituteVariables(value)
}

// LookupVariable calls Default.LookupVariable.
func LookupVariable(name string) (string, bool) {
	return Default.LookupVariable(name)
}

// SystemVariableValue calls Default.SystemVariableValue.
func SystemVariableValue(name, def string) string {
	return Default.SystemVariableValue(name, def)
}

// CheckSecurity calls Default.CheckSecurity.
func CheckSecurity() error {
	return Default.CheckSecurity()
}

// Property returns a property of Default.
func Property(key string) (string, bool) {
	return Default.Property(key)
}

// SetProperty sets a property on Default.
func SetProperty(key, value string) {
	Default.SetProperty(key, value)
}
