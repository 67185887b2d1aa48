package repository

import (
	"errors"
	"fmt"

	"github.com/ucpm/scrum-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	// ErrCreateProject is returned when inserting the project fails inside the create transaction.
	ErrCreateProject = errors.New("project repository: create project failed")
	// ErrCreateOwnerMembership is returned when inserting the owner's membership fails inside the create transaction.
	ErrCreateOwnerMembership = errors.New("project repository: create owner membership failed")
)

// GormProjectRepository is a GORM implementation of ProjectRepository
type GormProjectRepository struct {
	db *gorm.DB
}

// NewProjectRepository creates a new ProjectRepository
func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &GormProjectRepository{db: db}
}

// CreateWithOwner creates a project and the owner's membership atomically.
func (r *GormProjectRepository) CreateWithOwner(project *models.Project, owner *models.ProjectMembership) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(project).Error; err != nil {
			return fmt.Errorf("%w: %v", ErrCreateProject, err)
		}

		owner.ProjectID = project.ID
		owner.UserID = project.OwnerID

		if err := tx.Omit(clause.Associations).Create(owner).Error; err != nil {
			return fmt.Errorf("%w: %v", ErrCreateOwnerMembership, err)
		}

		return nil
	})
}

// FindByID finds a project by ID with optional preloading
func (r *GormProjectRepository) FindByID(id uint64, preload ...string) (*models.Project, error) {
	var project models.Project
	query := r.db

	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.First(&project, id).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

// ListAll lists every project
func (r *GormProjectRepository) ListAll() ([]models.Project, error) {
	var projects []models.Project
	if err := r.db.Preload("Owner").Order("created_at DESC").Find(&projects).Error; err != nil {
		return nil, err
	}
	return projects, nil
}

// Update updates a project
func (r *GormProjectRepository) Update(project *models.Project) error {
	return r.db.Omit(clause.Associations).Save(project).Error
}

// sprintIDs selects the ids of a project's sprints for use as a subquery.
func sprintIDs(db *gorm.DB, projectID uint64) *gorm.DB {
	return db.Model(&models.Sprint{}).Select("id").Where("project_id = ?", projectID)
}

// Delete deletes a project and all related data in a transaction
func (r *GormProjectRepository) Delete(id uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("sprint_id IN (?)", sprintIDs(tx, id)).Delete(&models.Task{}).Error; err != nil {
			return err
		}

		if err := tx.Where("sprint_id IN (?)", sprintIDs(tx, id)).Delete(&models.SprintTeamMember{}).Error; err != nil {
			return err
		}

		if err := tx.Where("project_id = ?", id).Delete(&models.ProductBacklogItem{}).Error; err != nil {
			return err
		}

		if err := tx.Where("project_id = ?", id).Delete(&models.Sprint{}).Error; err != nil {
			return err
		}

		if err := tx.Where("project_id = ?", id).Delete(&models.UserStory{}).Error; err != nil {
			return err
		}

		if err := tx.Where("project_id = ?", id).Delete(&models.ProjectMembership{}).Error; err != nil {
			return err
		}

		return tx.Delete(&models.Project{}, id).Error
	})
}

// AddMember adds a member to a project
func (r *GormProjectRepository) AddMember(member *models.ProjectMembership) error {
	return r.db.Omit(clause.Associations).Create(member).Error
}

// RemoveMember removes a member from a project together with their sprint
// team rows and task assignments in that project.
func (r *GormProjectRepository) RemoveMember(projectID, userID uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ? AND sprint_id IN (?)", userID, sprintIDs(tx, projectID)).
			Delete(&models.SprintTeamMember{}).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.Task{}).
			Where("assigned_to_id = ? AND sprint_id IN (?)", userID, sprintIDs(tx, projectID)).
			Update("assigned_to_id", nil).Error; err != nil {
			return err
		}

		return tx.Where("project_id = ? AND user_id = ?", projectID, userID).
			Delete(&models.ProjectMembership{}).Error
	})
}

// FindMember finds a specific project member
func (r *GormProjectRepository) FindMember(projectID, userID uint64) (*models.ProjectMembership, error) {
	var member models.ProjectMembership
	if err := r.db.Where("project_id = ? AND user_id = ?", projectID, userID).
		First(&member).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

// ListMembers lists all members of a project
func (r *GormProjectRepository) ListMembers(projectID uint64) ([]models.ProjectMembership, error) {
	var members []models.ProjectMembership
	if err := r.db.Preload("User").
		Where("project_id = ?", projectID).
		Order("joined_at ASC").
		Find(&members).Error; err != nil {
		return nil, err
	}
	return members, nil
}

// ListMembershipsByUserID lists all projects a user is a member of
func (r *GormProjectRepository) ListMembershipsByUserID(userID uint64) ([]models.ProjectMembership, error) {
	var memberships []models.ProjectMembership
	if err := r.db.Preload("Project").
		Preload("Project.Owner").
		Where("user_id = ?", userID).
		Order("joined_at DESC").
		Find(&memberships).Error; err != nil {
		return nil, err
	}
	return memberships, nil
}

// CountMembersWithRole counts the members of a project holding role
func (r *GormProjectRepository) CountMembersWithRole(projectID uint64, role models.Role) (int64, error) {
	var count int64
	err := r.db.Model(&models.ProjectMembership{}).
		Where("project_id = ? AND role = ?", projectID, role).
		Count(&count).Error
	return count, err
}

// CountMembersByIDs counts how many of the given user IDs are members of the project
func (r *GormProjectRepository) CountMembersByIDs(projectID uint64, userIDs []uint64) (int64, error) {
	var count int64
	err := r.db.Model(&models.ProjectMembership{}).
		Where("project_id = ? AND user_id IN ?", projectID, userIDs).
		Count(&count).Error
	return count, err
}
