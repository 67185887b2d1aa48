package services

import (
	"fmt"
	"strings"

	"github.com/ucpm/scrum-api/internal/models"
	"github.com/ucpm/scrum-api/internal/policy"
	"github.com/ucpm/scrum-api/internal/repository"
)

var ErrStoryNotFound = notFoundError("user story")

// StoryService handles user stories.
type StoryService struct {
	storyRepo repository.UserStoryRepository
	authority *Authority
}

// NewStoryService creates a new StoryService
func NewStoryService(storyRepo repository.UserStoryRepository, authority *Authority) *StoryService {
	return &StoryService{
		storyRepo: storyRepo,
		authority: authority,
	}
}

// StoryInput represents input for creating a user story
type StoryInput struct {
	Title              string
	Description        string
	AcceptanceCriteria string
}

// Create adds a user story to the project.
func (s *StoryService) Create(project *models.Project, actorID uint64, input StoryInput) (*models.UserStory, error) {
	if _, err := s.authority.Authorize(project.ID, actorID, policy.StoryCreate); err != nil {
		return nil, err
	}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, validationError("title", "title is required")
	}
	description := strings.TrimSpace(input.Description)
	if description == "" {
		return nil, validationError("description", "description is required")
	}

	story := &models.UserStory{
		ProjectID:          project.ID,
		Title:              title,
		Description:        description,
		AcceptanceCriteria: strings.TrimSpace(input.AcceptanceCriteria),
		CreatedByID:        &actorID,
	}
	if err := s.storyRepo.Create(story); err != nil {
		return nil, fmt.Errorf("failed to create user story: %w", err)
	}

	return story, nil
}

// List returns the project's stories. Non-members get an empty list.
func (s *StoryService) List(project *models.Project, userID uint64) ([]models.UserStory, error) {
	ok, err := s.authority.IsMember(project.ID, userID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []models.UserStory{}, nil
	}

	stories, err := s.storyRepo.ListByProject(project.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list user stories: %w", err)
	}
	return stories, nil
}

// Get returns one story of the project.
func (s *StoryService) Get(project *models.Project, userID, storyID uint64) (*models.UserStory, error) {
	if err := s.authority.requireVisible(project.ID, userID); err != nil {
		return nil, err
	}
	return s.find(project.ID, storyID)
}

func (s *StoryService) find(projectID, storyID uint64) (*models.UserStory, error) {
	story, err := s.storyRepo.FindByID(storyID)
	if err != nil {
		if isRecordNotFound(err) {
			return nil, ErrStoryNotFound
		}
		return nil, fmt.Errorf("failed to find user story: %w", err)
	}
	if story.ProjectID != projectID {
		return nil, ErrStoryNotFound
	}
	return story, nil
}

// UpdateStoryInput holds the fields to change. Nil fields are left alone.
type UpdateStoryInput struct {
	Title              *string
	Description        *string
	AcceptanceCriteria *string
}

// Update changes a story.
func (s *StoryService) Update(project *models.Project, actorID, storyID uint64, input UpdateStoryInput) (*models.UserStory, error) {
	if _, err := s.authority.Authorize(project.ID, actorID, policy.StoryUpdate); err != nil {
		return nil, err
	}

	story, err := s.find(project.ID, storyID)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, validationError("title", "title cannot be empty")
		}
		story.Title = title
	}
	if input.Description != nil {
		description := strings.TrimSpace(*input.Description)
		if description == "" {
			return nil, validationError("description", "description cannot be empty")
		}
		story.Description = description
	}
	if input.AcceptanceCriteria != nil {
		story.AcceptanceCriteria = strings.TrimSpace(*input.AcceptanceCriteria)
	}

	if err := s.storyRepo.Update(story); err != nil {
		return nil, fmt.Errorf("failed to update user story: %w", err)
	}

	return story, nil
}

// Delete removes a story with its backlog items and their tasks.
func (s *StoryService) Delete(project *models.Project, actorID, storyID uint64) error {
	if _, err := s.authority.Authorize(project.ID, actorID, policy.StoryDelete); err != nil {
		return err
	}

	if _, err := s.find(project.ID, storyID); err != nil {
		return err
	}

	if err := s.storyRepo.Delete(storyID); err != nil {
		return fmt.Errorf("failed to delete user story: %w", err)
	}
	return nil
}
