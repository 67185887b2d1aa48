package dto

import (
	"time"

	"github.com/ucpm/scrum-api/internal/models"
	"github.com/ucpm/scrum-api/internal/utils"
)

// TaskDTO represents a task in API responses
type TaskDTO struct {
	ID            uint64            `json:"id"`
	SprintID      uint64            `json:"sprint"`
	BacklogItemID uint64            `json:"backlog_item"`
	Description   string            `json:"description"`
	Status        models.TaskStatus `json:"status"`
	AssignedToID  *uint64           `json:"assigned_to_id"`
	AssignedTo    *UserSummaryDTO   `json:"assigned_to"`
	CreatedBy     *UserSummaryDTO   `json:"created_by"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

// TaskListResponse represents a paginated list of tasks
type TaskListResponse struct {
	Tasks      []TaskDTO                `json:"tasks"`
	Pagination utils.PaginationResponse `json:"pagination"`
}

// ToTaskDTO converts a Task model to TaskDTO
func ToTaskDTO(task models.Task) TaskDTO {
	return TaskDTO{
		ID:            task.ID,
		SprintID:      task.SprintID,
		BacklogItemID: task.BacklogItemID,
		Description:   task.Description,
		Status:        task.Status,
		AssignedToID:  task.AssignedToID,
		AssignedTo:    ToUserSummaryDTO(task.AssignedTo),
		CreatedBy:     ToUserSummaryDTO(task.CreatedBy),
		CreatedAt:     task.CreatedAt,
		UpdatedAt:     task.UpdatedAt,
	}
}

// ToTaskDTOs converts a list of tasks
func ToTaskDTOs(tasks []models.Task) []TaskDTO {
	out := make([]TaskDTO, len(tasks))
	for i, t := range tasks {
		out[i] = ToTaskDTO(t)
	}
	return out
}
