package enums

import "fmt"

// Role represents an account's permission level.
type Role string

const (
	RoleStudent Role = "student"
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleWorker  Role = "worker"
)

var validRoles = []Role{
	RoleStudent,
	RoleAdmin,
	RoleManager,
	RoleWorker,
}

// String implements fmt.Stringer.
func (r Role) String() string {
	return string(r)
}

// IsValid reports whether the value is a known Role.
func (r Role) IsValid() bool {
	for _, candidate := range validRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// IsEmployee reports whether the role is managed through the account
// directory (manager/worker). Admin and student accounts are never
// directory-managed.
func (r Role) IsEmployee() bool {
	return r == RoleManager || r == RoleWorker
}

// RequiresRestaurant reports whether accounts with this role must be
// assigned to a restaurant.
func (r Role) RequiresRestaurant() bool {
	return r.IsEmployee()
}

// ParseRole converts raw input into a Role.
func ParseRole(value string) (Role, error) {
	for _, candidate := range validRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid role %q", value)
}
