package models

import "time"

type SprintStatus string

// ACTIVE is never stored; it is derived from the dates at read time.
const (
	SprintStatusPlanned   SprintStatus = "PLANNED"
	SprintStatusActive    SprintStatus = "ACTIVE"
	SprintStatusCompleted SprintStatus = "COMPLETED"
)

type Sprint struct {
	ID        uint64       `gorm:"primarykey" json:"id"`
	ProjectID uint64       `gorm:"not null;uniqueIndex:idx_sprint_project_name" json:"project_id"`
	Name      string       `gorm:"type:varchar(200);not null;uniqueIndex:idx_sprint_project_name" json:"name"`
	StartDate time.Time    `gorm:"type:date;not null" json:"start_date"`
	EndDate   time.Time    `gorm:"type:date;not null" json:"end_date"`
	Status    SprintStatus `gorm:"type:varchar(20);not null;default:'PLANNED'" json:"status"`
	Objective string       `gorm:"type:text" json:"objective"`
	Increment string       `gorm:"type:text" json:"increment"`
	Tech      string       `gorm:"type:text" json:"tech"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`

	// Relations
	Project Project            `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE" json:"-"`
	Team    []SprintTeamMember `gorm:"foreignKey:SprintID" json:"team,omitempty"`
}

// IsCompleted reports whether the sprint has been ended.
func (s Sprint) IsCompleted() bool {
	return s.Status == SprintStatusCompleted
}

// IsActiveOn reports whether the sprint is running on the calendar day of today.
func (s Sprint) IsActiveOn(today time.Time) bool {
	if s.IsCompleted() {
		return false
	}
	return !today.Before(s.StartDate) && !today.After(s.EndDate)
}

// EffectiveStatus is the stored status with ACTIVE derived for today.
func (s Sprint) EffectiveStatus(today time.Time) SprintStatus {
	if s.IsActiveOn(today) {
		return SprintStatusActive
	}
	return s.Status
}

// TeamUserIDs returns the IDs of the sprint's team members.
func (s Sprint) TeamUserIDs() []uint64 {
	ids := make([]uint64, len(s.Team))
	for i, m := range s.Team {
		ids[i] = m.UserID
	}
	return ids
}

// SprintTeamMember restricts ListActive visibility of a sprint. A sprint with
// no team rows is visible to every project member.
type SprintTeamMember struct {
	SprintID uint64 `gorm:"primarykey" json:"sprint_id"`
	UserID   uint64 `gorm:"primarykey;index" json:"user_id"`

	// Relations
	Sprint Sprint `gorm:"foreignKey:SprintID;constraint:OnDelete:CASCADE" json:"-"`
	User   User   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
}
