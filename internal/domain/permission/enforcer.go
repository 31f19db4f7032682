package permission

// PermissionEnforcer decides whether a subject (a role name) may perform an
// action on a resource.
type PermissionEnforcer interface {
	Enforce(subject string, resource string, action string) (bool, error)
	AddPolicy(role string, resource string, action string) error
	RemovePolicy(role string, resource string, action string) error
	LoadPolicy() error
}
