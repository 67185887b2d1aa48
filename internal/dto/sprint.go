package dto

import (
	"time"

	"github.com/ucpm/scrum-api/internal/models"
	"github.com/ucpm/scrum-api/internal/utils"
)

// SprintDTO represents a sprint in API responses. Status is the effective
// status, with ACTIVE derived from the dates.
type SprintDTO struct {
	ID        uint64              `json:"id"`
	ProjectID uint64              `json:"project_id"`
	Name      string              `json:"name"`
	StartDate string              `json:"start_date"`
	EndDate   string              `json:"end_date"`
	Status    models.SprintStatus `json:"status"`
	IsActive  bool                `json:"is_active"`
	Objective string              `json:"objective"`
	Increment string              `json:"increment"`
	Tech      string              `json:"tech"`
	Team      []uint64            `json:"team"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`
}

// ItemsUpdatedResponse reports how many backlog items a bulk call changed
type ItemsUpdatedResponse struct {
	Updated int64 `json:"updated"`
}

// ToSprintDTO converts a Sprint model as seen on today
func ToSprintDTO(sprint models.Sprint, today time.Time) SprintDTO {
	return SprintDTO{
		ID:        sprint.ID,
		ProjectID: sprint.ProjectID,
		Name:      sprint.Name,
		StartDate: utils.FormatDate(sprint.StartDate),
		EndDate:   utils.FormatDate(sprint.EndDate),
		Status:    sprint.EffectiveStatus(today),
		IsActive:  sprint.IsActiveOn(today),
		Objective: sprint.Objective,
		Increment: sprint.Increment,
		Tech:      sprint.Tech,
		Team:      sprint.TeamUserIDs(),
		CreatedAt: sprint.CreatedAt,
		UpdatedAt: sprint.UpdatedAt,
	}
}

// ToSprintDTOs converts a list of sprints
func ToSprintDTOs(sprints []models.Sprint, today time.Time) []SprintDTO {
	out := make([]SprintDTO, len(sprints))
	for i, s := range sprints {
		out[i] = ToSprintDTO(s, today)
	}
	return out
}
