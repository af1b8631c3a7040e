package environment

// Permission names a capability a Guard can grant.
type Permission string

// ManagementControl is the permission required by CheckSecurity.
const ManagementControl Permission = "management:control"

// Guard authorizes privileged operations. Hosts wire it to their own
// access-control mechanism.
type Guard interface {
	CheckPermission(p Permission) error
}

// GuardFunc adapts a function to Guard.
type GuardFunc func(p Permission) error

func (f GuardFunc) CheckPermission(p Permission) error {
	return f(p)
}

// NoopGuard grants everything. It is the default guard.
type NoopGuard struct{}

func (NoopGuard) CheckPermission(Permission) error {
	return nil
}
