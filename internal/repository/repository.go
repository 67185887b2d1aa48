package repository

import (
	"time"

	"github.com/ucpm/scrum-api/internal/models"
	"github.com/ucpm/scrum-api/internal/utils"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(user *models.User) error

	// FindByID finds a user by ID
	FindByID(id uint64) (*models.User, error)

	// FindByUsername finds a user by username
	FindByUsername(username string) (*models.User, error)

	// FindByEmail finds a user by email
	FindByEmail(email string) (*models.User, error)

	// Update saves profile changes
	Update(user *models.User) error

	// UsernameTaken reports whether another user (not excludeID) holds username
	UsernameTaken(username string, excludeID uint64) (bool, error)

	// EmailTaken reports whether another user (not excludeID) holds email
	EmailTaken(email string, excludeID uint64) (bool, error)
}

// ProjectRepository defines the interface for project and membership data access
type ProjectRepository interface {
	// CreateWithOwner creates a project and the owner's membership atomically
	CreateWithOwner(project *models.Project, owner *models.ProjectMembership) error

	// FindByID finds a project by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.Project, error)

	// ListAll lists every project (superuser view)
	ListAll() ([]models.Project, error)

	// Update updates a project
	Update(project *models.Project) error

	// Delete deletes a project and everything it owns
	Delete(id uint64) error

	// AddMember adds a member to a project
	AddMember(member *models.ProjectMembership) error

	// RemoveMember removes a member, their sprint team rows and task assignments in the project
	RemoveMember(projectID, userID uint64) error

	// FindMember finds a specific project member
	FindMember(projectID, userID uint64) (*models.ProjectMembership, error)

	// ListMembers lists all members of a project with users preloaded
	ListMembers(projectID uint64) ([]models.ProjectMembership, error)

	// ListMembershipsByUserID lists the memberships of a user with projects preloaded
	ListMembershipsByUserID(userID uint64) ([]models.ProjectMembership, error)

	// CountMembersWithRole counts the members of a project holding role
	CountMembersWithRole(projectID uint64, role models.Role) (int64, error)

	// CountMembersByIDs counts how many of userIDs are members of the project
	CountMembersByIDs(projectID uint64, userIDs []uint64) (int64, error)
}

// UserStoryRepository defines the interface for user story data access
type UserStoryRepository interface {
	Create(story *models.UserStory) error
	FindByID(id uint64) (*models.UserStory, error)
	ListByProject(projectID uint64) ([]models.UserStory, error)
	Update(story *models.UserStory) error

	// Delete deletes a story with its backlog items and their tasks
	Delete(id uint64) error
}

// BacklogFilter holds filtering options for listing backlog items
type BacklogFilter struct {
	ProjectID  uint64
	SprintID   *uint64
	Unassigned bool
}

// BacklogRepository defines the interface for product backlog item data access
type BacklogRepository interface {
	Create(item *models.ProductBacklogItem) error
	FindByID(id uint64) (*models.ProductBacklogItem, error)

	// List returns items ordered by priority rank, then newest first
	List(filter BacklogFilter) ([]models.ProductBacklogItem, error)

	Update(item *models.ProductBacklogItem) error

	// Delete deletes an item and its tasks
	Delete(id uint64) error

	// AssignToSprint links every unassigned item of the project among itemIDs
	// to sprintID in a single statement and returns the number linked.
	AssignToSprint(projectID, sprintID uint64, itemIDs []uint64) (int64, error)

	// UnassignFromSprint clears the sprint of the given items currently in sprintID.
	UnassignFromSprint(sprintID uint64, itemIDs []uint64) (int64, error)
}

// SprintRepository defines the interface for sprint data access
type SprintRepository interface {
	// Create creates a sprint together with its team rows
	Create(sprint *models.Sprint) error

	// FindByID finds a sprint with its team preloaded
	FindByID(id uint64) (*models.Sprint, error)

	// NameTaken reports whether another sprint (not excludeID) in the project is named name
	NameTaken(projectID uint64, name string, excludeID uint64) (bool, error)

	// ListByProject lists the sprints of a project, latest start first
	ListByProject(projectID uint64) ([]models.Sprint, error)

	// ListActive lists the sprints running on today that userID can see
	ListActive(projectID, userID uint64, today time.Time) ([]models.Sprint, error)

	// Update saves sprint fields; a non-nil team replaces the team rows
	Update(sprint *models.Sprint, team []uint64) error

	// Delete detaches the sprint's items and deletes its tasks, team and itself
	Delete(id uint64) error

	// Complete detaches every item from the sprint and marks it COMPLETED
	// in one transaction. Returns ErrSprintAlreadyCompleted when the status
	// flip matches no row.
	Complete(id uint64) (int64, error)
}

// TaskFilter holds filtering options for listing tasks
type TaskFilter struct {
	SprintID     *uint64
	AssignedToID *uint64
	Status       *models.TaskStatus
	Pagination   *utils.PaginationParams
}

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	Create(task *models.Task) error

	// FindByID finds a task by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.Task, error)

	// List retrieves tasks with filtering and pagination
	List(filter TaskFilter) ([]models.Task, int64, error)

	Update(task *models.Task) error
	Delete(id uint64) error
}
