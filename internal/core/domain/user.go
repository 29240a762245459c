package domain

// Role is the authorization role assigned to a console user.
type Role string

const (
	RoleAdmin      Role = "ADMIN"
	RoleTechnician Role = "TECHNICIAN"
	RoleViewer     Role = "VIEWER"
)

// Valid reports whether the role is one the fleet API recognises.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleTechnician, RoleViewer:
		return true
	}
	return false
}

// CanViewUsers reports whether the role may open the user-management screen.
func (r Role) CanViewUsers() bool {
	return r == RoleAdmin || r == RoleTechnician
}

// CanManageUsers reports whether the role may create, edit, or delete users.
func (r Role) CanManageUsers() bool {
	return r == RoleAdmin
}

// User models an account in the printer-fleet monitoring product. The fleet
// API owns the record; the console holds a read-mostly copy resolved from the
// session token.
type User struct {
	ID       int64  `json:"id"`
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Role     Role   `json:"role"`
}
