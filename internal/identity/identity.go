// internal/identity/identity.go
package identity

import "errors"

var ErrProfileNotFound = errors.New("profile not found")

// Role is the coarse participant role used by role-specific workflows. The
// lifecycle engine itself never checks roles; enforcement stays with the
// caller.
type Role string

const (
	RoleCitizen      Role = "CITIZEN"
	RoleMunicipality Role = "MUNICIPALITY"
	RoleRecycler     Role = "RECYCLER"
)

func (r Role) Valid() bool {
	switch r {
	case RoleCitizen, RoleMunicipality, RoleRecycler:
		return true
	}
	return false
}

// Profile is the projection of an authenticated user the core consumes: a
// stable opaque id, a display name and a role. Credentials never reach this
// package.
type Profile struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Role      Role   `json:"role"`
	AvatarRef string `json:"avatar_ref,omitempty"`
}
