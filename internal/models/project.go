package models

import "time"

type ProjectStatus string

const (
	ProjectStatusActive    ProjectStatus = "ACTIVE"
	ProjectStatusConcluded ProjectStatus = "CONCLUDED"
)

type Project struct {
	ID          uint64        `gorm:"primarykey" json:"id"`
	Name        string        `gorm:"type:varchar(200);not null" json:"name"`
	Description string        `gorm:"type:text" json:"description"`
	OwnerID     uint64        `gorm:"not null;index" json:"owner_id"`
	Status      ProjectStatus `gorm:"type:varchar(20);not null;default:'ACTIVE'" json:"status"`
	ConcludedAt *time.Time    `json:"concluded_at"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`

	// Relations
	Owner   User                `gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE" json:"owner,omitempty"`
	Members []ProjectMembership `gorm:"foreignKey:ProjectID" json:"members,omitempty"`
}

// IsConcluded reports whether the project has been closed.
func (p Project) IsConcluded() bool {
	return p.Status == ProjectStatusConcluded
}
