package models

// User roles. Checked with exact set membership, never substring matching.
const (
	RoleAdmin       = "admin"
	RoleSuperAdmin  = "super_admin"
	RoleRegularUser = "regular_user"
)

type User struct {
	ID                string   `json:"id"`
	Name              string   `json:"name"`
	Email             string   `json:"email"`
	Password          string   `json:"-"`
	Roles             []string `json:"role"`
	EmailConfirmed    bool     `json:"isEmailConfirmed"`
	ConfirmationToken string   `json:"-"`
}

// HasRole reports whether the user holds the required role.
func (u *User) HasRole(required string) bool {
	for _, r := range u.Roles {
		if r == required {
			return true
		}
	}
	return false
}
