package dto

import (
	"time"

	"github.com/ucpm/scrum-api/internal/models"
)

// UserStoryDTO represents a user story in API responses
type UserStoryDTO struct {
	ID                 uint64          `json:"id"`
	ProjectID          uint64          `json:"project_id"`
	Title              string          `json:"title"`
	Description        string          `json:"description"`
	AcceptanceCriteria string          `json:"acceptance_criteria"`
	CreatedBy          *UserSummaryDTO `json:"created_by"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

// BacklogItemDTO represents a product backlog item in API responses
type BacklogItemDTO struct {
	ID          uint64          `json:"id"`
	ProjectID   uint64          `json:"project_id"`
	UserStoryID uint64          `json:"user_story"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Priority    models.Priority `json:"priority"`
	SprintID    *uint64         `json:"sprint"`
	CreatedBy   *UserSummaryDTO `json:"created_by"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// ToUserStoryDTO converts a UserStory model
func ToUserStoryDTO(story models.UserStory) UserStoryDTO {
	return UserStoryDTO{
		ID:                 story.ID,
		ProjectID:          story.ProjectID,
		Title:              story.Title,
		Description:        story.Description,
		AcceptanceCriteria: story.AcceptanceCriteria,
		CreatedBy:          ToUserSummaryDTO(story.CreatedBy),
		CreatedAt:          story.CreatedAt,
		UpdatedAt:          story.UpdatedAt,
	}
}

// ToUserStoryDTOs converts a list of stories
func ToUserStoryDTOs(stories []models.UserStory) []UserStoryDTO {
	out := make([]UserStoryDTO, len(stories))
	for i, s := range stories {
		out[i] = ToUserStoryDTO(s)
	}
	return out
}

// ToBacklogItemDTO converts a ProductBacklogItem model
func ToBacklogItemDTO(item models.ProductBacklogItem) BacklogItemDTO {
	return BacklogItemDTO{
		ID:          item.ID,
		ProjectID:   item.ProjectID,
		UserStoryID: item.UserStoryID,
		Title:       item.Title,
		Description: item.Description,
		Priority:    item.Priority,
		SprintID:    item.SprintID,
		CreatedBy:   ToUserSummaryDTO(item.CreatedBy),
		CreatedAt:   item.CreatedAt,
		UpdatedAt:   item.UpdatedAt,
	}
}

// ToBacklogItemDTOs converts a list of backlog items
func ToBacklogItemDTOs(items []models.ProductBacklogItem) []BacklogItemDTO {
	out := make([]BacklogItemDTO, len(items))
	for i, item := range items {
		out[i] = ToBacklogItemDTO(item)
	}
	return out
}
