package services

import (
	"fmt"
	"strings"

	"github.com/ucpm/scrum-api/internal/models"
	"github.com/ucpm/scrum-api/internal/policy"
	"github.com/ucpm/scrum-api/internal/repository"
)

var ErrBacklogItemNotFound = notFoundError("backlog item")

// BacklogService handles product backlog items.
type BacklogService struct {
	backlogRepo repository.BacklogRepository
	storyRepo   repository.UserStoryRepository
	sprintRepo  repository.SprintRepository
	authority   *Authority
}

// NewBacklogService creates a new BacklogService
func NewBacklogService(
	backlogRepo repository.BacklogRepository,
	storyRepo repository.UserStoryRepository,
	sprintRepo repository.SprintRepository,
	authority *Authority,
) *BacklogService {
	return &BacklogService{
		backlogRepo: backlogRepo,
		storyRepo:   storyRepo,
		sprintRepo:  sprintRepo,
		authority:   authority,
	}
}

// CreateItemInput represents input for creating a backlog item
type CreateItemInput struct {
	UserStoryID uint64
	Title       string
	Description string
	Priority    models.Priority
	SprintID    *uint64
}

// Create adds an item to the product backlog.
func (s *BacklogService) Create(project *models.Project, actorID uint64, input CreateItemInput) (*models.ProductBacklogItem, error) {
	if _, err := s.authority.Authorize(project.ID, actorID, policy.BacklogCreate); err != nil {
		return nil, err
	}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, validationError("title", "title is required")
	}

	priority := input.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}
	if !priority.Valid() {
		return nil, validationError("priority", fmt.Sprintf("%q is not a valid priority", input.Priority))
	}

	if err := s.checkStory(project.ID, input.UserStoryID); err != nil {
		return nil, err
	}
	if input.SprintID != nil {
		if err := s.checkSprint(project.ID, *input.SprintID); err != nil {
			return nil, err
		}
	}

	item := &models.ProductBacklogItem{
		ProjectID:   project.ID,
		UserStoryID: input.UserStoryID,
		Title:       title,
		Description: strings.TrimSpace(input.Description),
		Priority:    priority,
		SprintID:    input.SprintID,
		CreatedByID: &actorID,
	}
	if err := s.backlogRepo.Create(item); err != nil {
		return nil, fmt.Errorf("failed to create backlog item: %w", err)
	}

	return item, nil
}

func (s *BacklogService) checkStory(projectID, storyID uint64) error {
	story, err := s.storyRepo.FindByID(storyID)
	if err != nil {
		if isRecordNotFound(err) {
			return validationError("user_story", "user story does not exist")
		}
		return fmt.Errorf("failed to find user story: %w", err)
	}
	if story.ProjectID != projectID {
		return validationError("user_story", "user story does not belong to this project")
	}
	return nil
}

// checkSprint verifies a sprint can receive items of the project.
func (s *BacklogService) checkSprint(projectID, sprintID uint64) error {
	sprint, err := s.sprintRepo.FindByID(sprintID)
	if err != nil {
		if isRecordNotFound(err) {
			return validationError("sprint", "sprint does not exist")
		}
		return fmt.Errorf("failed to find sprint: %w", err)
	}
	if sprint.ProjectID != projectID {
		return validationError("sprint", "sprint does not belong to this project")
	}
	if sprint.IsCompleted() {
		return alreadyCompletedError("the sprint is already completed")
	}
	return nil
}

// ListItemsInput filters the backlog listing.
type ListItemsInput struct {
	SprintID   *uint64
	Unassigned bool
}

// List returns the backlog ordered HIGH, MEDIUM, LOW. Non-members get an empty list.
func (s *BacklogService) List(project *models.Project, userID uint64, input ListItemsInput) ([]models.ProductBacklogItem, error) {
	ok, err := s.authority.IsMember(project.ID, userID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []models.ProductBacklogItem{}, nil
	}

	items, err := s.backlogRepo.List(repository.BacklogFilter{
		ProjectID:  project.ID,
		SprintID:   input.SprintID,
		Unassigned: input.Unassigned,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list backlog items: %w", err)
	}
	return items, nil
}

// Get returns one backlog item of the project.
func (s *BacklogService) Get(project *models.Project, userID, itemID uint64) (*models.ProductBacklogItem, error) {
	if err := s.authority.requireVisible(project.ID, userID); err != nil {
		return nil, err
	}
	return s.find(project.ID, itemID)
}

func (s *BacklogService) find(projectID, itemID uint64) (*models.ProductBacklogItem, error) {
	item, err := s.backlogRepo.FindByID(itemID)
	if err != nil {
		if isRecordNotFound(err) {
			return nil, ErrBacklogItemNotFound
		}
		return nil, fmt.Errorf("failed to find backlog item: %w", err)
	}
	if item.ProjectID != projectID {
		return nil, ErrBacklogItemNotFound
	}
	return item, nil
}

// UpdateItemInput holds the fields to change. Nil fields are left alone.
// SprintSet distinguishes an explicit null sprint from an absent one.
type UpdateItemInput struct {
	UserStoryID *uint64
	Title       *string
	Description *string
	Priority    *models.Priority
	SprintSet   bool
	SprintID    *uint64
}

// Update changes a backlog item.
func (s *BacklogService) Update(project *models.Project, actorID, itemID uint64, input UpdateItemInput) (*models.ProductBacklogItem, error) {
	if _, err := s.authority.Authorize(project.ID, actorID, policy.BacklogUpdate); err != nil {
		return nil, err
	}

	item, err := s.find(project.ID, itemID)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, validationError("title", "title cannot be empty")
		}
		item.Title = title
	}
	if input.Description != nil {
		item.Description = strings.TrimSpace(*input.Description)
	}
	if input.Priority != nil {
		if !input.Priority.Valid() {
			return nil, validationError("priority", fmt.Sprintf("%q is not a valid priority", *input.Priority))
		}
		item.Priority = *input.Priority
	}
	if input.UserStoryID != nil {
		if err := s.checkStory(project.ID, *input.UserStoryID); err != nil {
			return nil, err
		}
		item.UserStoryID = *input.UserStoryID
	}
	if input.SprintSet {
		if err := s.checkSprintChange(project.ID, item, input.SprintID); err != nil {
			return nil, err
		}
		item.SprintID = input.SprintID
	}

	if err := s.backlogRepo.Update(item); err != nil {
		return nil, fmt.Errorf("failed to update backlog item: %w", err)
	}

	return item, nil
}

// checkSprintChange validates moving an item to next, or out of its sprint when next is nil.
func (s *BacklogService) checkSprintChange(projectID uint64, item *models.ProductBacklogItem, next *uint64) error {
	if next != nil {
		return s.checkSprint(projectID, *next)
	}
	if item.SprintID == nil {
		return nil
	}

	current, err := s.sprintRepo.FindByID(*item.SprintID)
	if err != nil {
		if isRecordNotFound(err) {
			return nil
		}
		return fmt.Errorf("failed to find sprint: %w", err)
	}
	if current.IsCompleted() {
		return alreadyCompletedError("the sprint is already completed")
	}
	return nil
}

// Delete removes a backlog item and its tasks.
func (s *BacklogService) Delete(project *models.Project, actorID, itemID uint64) error {
	if _, err := s.authority.Authorize(project.ID, actorID, policy.BacklogDelete); err != nil {
		return err
	}

	if _, err := s.find(project.ID, itemID); err != nil {
		return err
	}

	if err := s.backlogRepo.Delete(itemID); err != nil {
		return fmt.Errorf("failed to delete backlog item: %w", err)
	}
	return nil
}
