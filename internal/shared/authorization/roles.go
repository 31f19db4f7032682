package authorization

// UserRole is the role claim carried by access tokens. Roles double as casbin
// subjects.
type UserRole string

const (
	RoleAdmin    UserRole = "admin"
	RoleMerchant UserRole = "merchant"
	RoleViewer   UserRole = "viewer"
)

func (r UserRole) String() string {
	return string(r)
}

func (r UserRole) IsAdmin() bool {
	return r == RoleAdmin
}

func (r UserRole) IsValid() bool {
	switch r {
	case RoleAdmin, RoleMerchant, RoleViewer:
		return true
	}
	return false
}

// ParseUserRole falls back to the least privileged role for unknown input.
func ParseUserRole(s string) UserRole {
	role := UserRole(s)
	if role.IsValid() {
		return role
	}
	return RoleViewer
}
