package models

import "time"

type Role string

const (
	RoleProductOwner Role = "PO"
	RoleScrumMaster  Role = "SM"
	RoleDeveloper    Role = "DEV"
)

// Roles lists every membership role.
var Roles = []Role{RoleProductOwner, RoleScrumMaster, RoleDeveloper}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleProductOwner, RoleScrumMaster, RoleDeveloper:
		return true
	}
	return false
}

// DisplayName is the human-readable role name.
func (r Role) DisplayName() string {
	switch r {
	case RoleProductOwner:
		return "Product Owner"
	case RoleScrumMaster:
		return "Scrum Master"
	case RoleDeveloper:
		return "Developer"
	}
	return string(r)
}

// ProjectMembership is keyed by (project, user), so a principal holds at most
// one role per project.
type ProjectMembership struct {
	ProjectID uint64    `gorm:"primarykey" json:"project_id"`
	UserID    uint64    `gorm:"primarykey;index" json:"user_id"`
	Role      Role      `gorm:"type:varchar(3);not null" json:"role"`
	JoinedAt  time.Time `json:"joined_at"`

	// Relations
	Project Project `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE" json:"project,omitempty"`
	User    User    `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
}
