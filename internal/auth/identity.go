package auth

type Role string

const (
	RoleCustomer   Role = "customer"
	RoleLabTech    Role = "labtech"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "superadmin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RoleLabTech, RoleAdmin, RoleSuperAdmin:
		return true
	}
	return false
}

// IsStaff is true for every administrative tier.
func (r Role) IsStaff() bool {
	return r == RoleLabTech || r == RoleAdmin || r == RoleSuperAdmin
}

// Identity is the verified calling principal.
type Identity struct {
	ID    string
	Email string
	Role  Role
}

func (i Identity) IsStaff() bool {
	return i.Role.IsStaff()
}

func (i Identity) IsZero() bool {
	return i.ID == "" && i.Email == ""
}
