package entities

import "time"

// Role is one of the fixed marketplace roles. Roles are defined at system
// initialization and never created at runtime.
type Role string

const (
	RoleSuperAdmin Role = "super_admin"
	RoleAdmin      Role = "admin"
	RoleModerator  Role = "moderator"
	RoleAgency     Role = "agency"
	RoleCaregiver  Role = "caregiver"
	RoleGuardian   Role = "guardian"
	RoleShop       Role = "shop"
)

// Identity is the authenticated caller, resolved once per request and
// immutable for that request's lifetime. Linked holds the ids of resources
// the identity is linked to beyond its own id: the patients a guardian
// manages, the agency a caregiver belongs to.
type Identity struct {
	ID     string
	Role   Role
	Linked map[string]struct{}
}

// Owns reports whether ownerID is the identity itself or one of its linked
// resources.
func (i Identity) Owns(ownerID string) bool {
	if ownerID == "" {
		return false
	}
	if ownerID == i.ID {
		return true
	}
	_, ok := i.Linked[ownerID]
	return ok
}

// Decision is the outcome of one authorization check. Reason is recorded in
// the audit log on denial; callers see a uniform forbidden response.
type Decision struct {
	Allowed   bool
	Reason    string
	CheckedAt time.Time
}
