package services

import (
	"fmt"
	"strings"

	"github.com/ucpm/scrum-api/internal/models"
	"github.com/ucpm/scrum-api/internal/policy"
	"github.com/ucpm/scrum-api/internal/repository"
	"github.com/ucpm/scrum-api/internal/utils"
)

var (
	ErrTaskNotFound        = notFoundError("task")
	ErrDescriptionRequired = validationError("description", "description is required")
	ErrAssigneeNotMember   = validationError("assigned_to", "the assignee must be a member of the project")
	ErrItemOutsideProject  = validationError("backlog_item", "the backlog item does not belong to the sprint's project")
	ErrBacklogItemMissing  = validationError("backlog_item", "backlog item does not exist")
	ErrInvalidTaskStatus   = validationError("status", "status must be one of TODO, IN_PROGRESS, DONE")
)

// TaskService handles the tasks of sprint backlog items.
type TaskService struct {
	taskRepo    repository.TaskRepository
	sprintRepo  repository.SprintRepository
	backlogRepo repository.BacklogRepository
	authority   *Authority
}

// NewTaskService creates a new TaskService
func NewTaskService(
	taskRepo repository.TaskRepository,
	sprintRepo repository.SprintRepository,
	backlogRepo repository.BacklogRepository,
	authority *Authority,
) *TaskService {
	return &TaskService{
		taskRepo:    taskRepo,
		sprintRepo:  sprintRepo,
		backlogRepo: backlogRepo,
		authority:   authority,
	}
}

// CreateTaskInput represents input for creating a task
type CreateTaskInput struct {
	BacklogItemID uint64
	Description   string
	Status        models.TaskStatus
	AssignedToID  *uint64
}

// UpdateTaskInput represents input for updating a task. AssigneeSet
// distinguishes an explicit null assignee from an absent one.
type UpdateTaskInput struct {
	Description  *string
	Status       *models.TaskStatus
	AssigneeSet  bool
	AssignedToID *uint64
}

// ListMyTasksInput represents filters for listing the caller's tasks
type ListMyTasksInput struct {
	UserID     uint64
	Status     *models.TaskStatus
	Pagination utils.PaginationParams
}

func (s *TaskService) findSprint(projectID, sprintID uint64) (*models.Sprint, error) {
	sprint, err := s.sprintRepo.FindByID(sprintID)
	if err != nil {
		if isRecordNotFound(err) {
			return nil, ErrSprintNotFound
		}
		return nil, fmt.Errorf("failed to find sprint: %w", err)
	}
	if sprint.ProjectID != projectID {
		return nil, ErrSprintNotFound
	}
	return sprint, nil
}

func (s *TaskService) checkAssignee(projectID uint64, userID *uint64) error {
	if userID == nil {
		return nil
	}
	ok, err := s.authority.IsMember(projectID, *userID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrAssigneeNotMember
	}
	return nil
}

// Create adds a task for a backlog item to the sprint.
func (s *TaskService) Create(project *models.Project, actorID, sprintID uint64, input CreateTaskInput) (*models.Task, error) {
	if _, err := s.authority.Authorize(project.ID, actorID, policy.TaskCreate); err != nil {
		return nil, err
	}

	sprint, err := s.findSprint(project.ID, sprintID)
	if err != nil {
		return nil, err
	}

	description := strings.TrimSpace(input.Description)
	if description == "" {
		return nil, ErrDescriptionRequired
	}

	status := input.Status
	if status == "" {
		status = models.TaskStatusTodo
	}
	if !status.Valid() {
		return nil, ErrInvalidTaskStatus
	}

	item, err := s.backlogRepo.FindByID(input.BacklogItemID)
	if err != nil {
		if isRecordNotFound(err) {
			return nil, ErrBacklogItemMissing
		}
		return nil, fmt.Errorf("failed to find backlog item: %w", err)
	}
	if item.ProjectID != sprint.ProjectID {
		return nil, ErrItemOutsideProject
	}

	if err := s.checkAssignee(project.ID, input.AssignedToID); err != nil {
		return nil, err
	}

	task := &models.Task{
		SprintID:      sprint.ID,
		BacklogItemID: item.ID,
		Description:   description,
		Status:        status,
		AssignedToID:  input.AssignedToID,
		CreatedByID:   &actorID,
	}
	if err := s.taskRepo.Create(task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	return s.taskRepo.FindByID(task.ID, "AssignedTo", "CreatedBy")
}

// ListSprintTasks returns the tasks of a sprint. Non-members get an empty list.
func (s *TaskService) ListSprintTasks(project *models.Project, userID, sprintID uint64) ([]models.Task, error) {
	ok, err := s.authority.IsMember(project.ID, userID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []models.Task{}, nil
	}

	sprint, err := s.findSprint(project.ID, sprintID)
	if err != nil {
		return nil, err
	}

	tasks, _, err := s.taskRepo.List(repository.TaskFilter{SprintID: &sprint.ID})
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

// ListMine returns the tasks assigned to the caller across all projects.
func (s *TaskService) ListMine(input ListMyTasksInput) ([]models.Task, int64, error) {
	if input.Status != nil && !input.Status.Valid() {
		return nil, 0, ErrInvalidTaskStatus
	}

	tasks, total, err := s.taskRepo.List(repository.TaskFilter{
		AssignedToID: &input.UserID,
		Status:       input.Status,
		Pagination:   &input.Pagination,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, total, nil
}

// find loads a task and checks it belongs to the project through its sprint.
func (s *TaskService) find(projectID, taskID uint64) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(taskID, "Sprint")
	if err != nil {
		if isRecordNotFound(err) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	if task.Sprint.ProjectID != projectID {
		return nil, ErrTaskNotFound
	}
	return task, nil
}

// Update changes a task's description, status or assignee.
func (s *TaskService) Update(project *models.Project, actorID, taskID uint64, input UpdateTaskInput) (*models.Task, error) {
	if _, err := s.authority.Authorize(project.ID, actorID, policy.TaskUpdate); err != nil {
		return nil, err
	}

	task, err := s.find(project.ID, taskID)
	if err != nil {
		return nil, err
	}

	if input.Description != nil {
		description := strings.TrimSpace(*input.Description)
		if description == "" {
			return nil, ErrDescriptionRequired
		}
		task.Description = description
	}
	if input.Status != nil {
		if !input.Status.Valid() {
			return nil, ErrInvalidTaskStatus
		}
		task.Status = *input.Status
	}
	if input.AssigneeSet {
		if err := s.checkAssignee(project.ID, input.AssignedToID); err != nil {
			return nil, err
		}
		task.AssignedToID = input.AssignedToID
	}

	if err := s.taskRepo.Update(task); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	return s.taskRepo.FindByID(task.ID, "AssignedTo", "CreatedBy")
}

// Delete removes a task.
func (s *TaskService) Delete(project *models.Project, actorID, taskID uint64) error {
	if _, err := s.authority.Authorize(project.ID, actorID, policy.TaskDelete); err != nil {
		return err
	}

	if _, err := s.find(project.ID, taskID); err != nil {
		return err
	}

	if err := s.taskRepo.Delete(taskID); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return nil
}
