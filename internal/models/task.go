package models

import "time"

type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "TODO"
	TaskStatusInProgress TaskStatus = "IN_PROGRESS"
	TaskStatusDone       TaskStatus = "DONE"
)

// Valid reports whether s is a known task status.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusTodo, TaskStatusInProgress, TaskStatusDone:
		return true
	}
	return false
}

type Task struct {
	ID            uint64     `gorm:"primarykey" json:"id"`
	SprintID      uint64     `gorm:"not null;index" json:"sprint_id"`
	BacklogItemID uint64     `gorm:"not null;index" json:"backlog_item_id"`
	Description   string     `gorm:"type:text;not null" json:"description"`
	Status        TaskStatus `gorm:"type:varchar(20);not null;default:'TODO'" json:"status"`
	AssignedToID  *uint64    `gorm:"index" json:"assigned_to_id"`
	CreatedByID   *uint64    `json:"created_by_id"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`

	// Relations
	Sprint      Sprint             `gorm:"foreignKey:SprintID;constraint:OnDelete:CASCADE" json:"-"`
	BacklogItem ProductBacklogItem `gorm:"foreignKey:BacklogItemID;constraint:OnDelete:CASCADE" json:"-"`
	AssignedTo  *User              `gorm:"foreignKey:AssignedToID;constraint:OnDelete:SET NULL" json:"assigned_to,omitempty"`
	CreatedBy   *User              `gorm:"foreignKey:CreatedByID;constraint:OnDelete:SET NULL" json:"created_by,omitempty"`
}
