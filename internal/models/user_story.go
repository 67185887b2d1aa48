package models

import "time"

type UserStory struct {
	ID                 uint64    `gorm:"primarykey" json:"id"`
	ProjectID          uint64    `gorm:"not null;index" json:"project_id"`
	Title              string    `gorm:"type:varchar(200);not null" json:"title"`
	Description        string    `gorm:"type:text;not null" json:"description"`
	AcceptanceCriteria string    `gorm:"type:text" json:"acceptance_criteria"`
	CreatedByID        *uint64   `json:"created_by_id"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`

	// Relations
	Project   Project `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedBy *User   `gorm:"foreignKey:CreatedByID;constraint:OnDelete:SET NULL" json:"created_by,omitempty"`
}
