package repository

import (
	"errors"
	"time"

	"github.com/ucpm/scrum-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrSprintAlreadyCompleted is returned by Complete when the sprint was
// already COMPLETED, including when a concurrent request ended it first.
var ErrSprintAlreadyCompleted = errors.New("sprint repository: sprint already completed")

// GormSprintRepository is a GORM implementation of SprintRepository
type GormSprintRepository struct {
	db *gorm.DB
}

// NewSprintRepository creates a new SprintRepository
func NewSprintRepository(db *gorm.DB) SprintRepository {
	return &GormSprintRepository{db: db}
}

// Create creates a sprint together with its team rows
func (r *GormSprintRepository) Create(sprint *models.Sprint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		team := sprint.Team
		if err := tx.Omit(clause.Associations).Create(sprint).Error; err != nil {
			return err
		}

		if len(team) == 0 {
			return nil
		}

		for i := range team {
			team[i].SprintID = sprint.ID
		}
		if err := tx.Omit(clause.Associations).Create(&team).Error; err != nil {
			return err
		}
		sprint.Team = team
		return nil
	})
}

// FindByID finds a sprint with its team preloaded
func (r *GormSprintRepository) FindByID(id uint64) (*models.Sprint, error) {
	var sprint models.Sprint
	if err := r.db.Preload("Team").First(&sprint, id).Error; err != nil {
		return nil, err
	}
	return &sprint, nil
}

// NameTaken reports whether another sprint in the project already uses name
func (r *GormSprintRepository) NameTaken(projectID uint64, name string, excludeID uint64) (bool, error) {
	var count int64
	err := r.db.Model(&models.Sprint{}).
		Where("project_id = ? AND name = ? AND id <> ?", projectID, name, excludeID).
		Count(&count).Error
	return count > 0, err
}

// ListByProject lists the sprints of a project, latest start first
func (r *GormSprintRepository) ListByProject(projectID uint64) ([]models.Sprint, error) {
	var sprints []models.Sprint
	if err := r.db.Preload("Team").
		Where("project_id = ?", projectID).
		Order("start_date DESC").
		Order("id DESC").
		Find(&sprints).Error; err != nil {
		return nil, err
	}
	return sprints, nil
}

// ListActive lists the sprints of a project running on today that are
// visible to userID: sprints without a team, or whose team includes the user.
func (r *GormSprintRepository) ListActive(projectID, userID uint64, today time.Time) ([]models.Sprint, error) {
	var sprints []models.Sprint

	anyTeam := r.db.Model(&models.SprintTeamMember{}).
		Select("1").
		Where("sprint_team_members.sprint_id = sprints.id")
	onTeam := r.db.Model(&models.SprintTeamMember{}).
		Select("1").
		Where("sprint_team_members.sprint_id = sprints.id AND sprint_team_members.user_id = ?", userID)

	if err := r.db.Preload("Team").
		Where("sprints.project_id = ?", projectID).
		Where("sprints.status <> ?", models.SprintStatusCompleted).
		Where("sprints.start_date <= ? AND sprints.end_date >= ?", today, today).
		Where("(NOT EXISTS (?) OR EXISTS (?))", anyTeam, onTeam).
		Order("sprints.start_date DESC").
		Order("sprints.id DESC").
		Find(&sprints).Error; err != nil {
		return nil, err
	}

	return sprints, nil
}

// Update saves sprint fields. A non-nil team replaces the team rows.
func (r *GormSprintRepository) Update(sprint *models.Sprint, team []uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(sprint).Error; err != nil {
			return err
		}

		if team == nil {
			return nil
		}

		if err := tx.Where("sprint_id = ?", sprint.ID).Delete(&models.SprintTeamMember{}).Error; err != nil {
			return err
		}

		rows := make([]models.SprintTeamMember, len(team))
		for i, userID := range team {
			rows[i] = models.SprintTeamMember{SprintID: sprint.ID, UserID: userID}
		}
		if len(rows) > 0 {
			if err := tx.Omit(clause.Associations).Create(&rows).Error; err != nil {
				return err
			}
		}
		sprint.Team = rows
		return nil
	})
}

// Delete detaches the sprint's items and removes its tasks, team and the sprint
func (r *GormSprintRepository) Delete(id uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.ProductBacklogItem{}).
			Where("sprint_id = ?", id).
			Update("sprint_id", nil).Error; err != nil {
			return err
		}

		if err := tx.Where("sprint_id = ?", id).Delete(&models.Task{}).Error; err != nil {
			return err
		}

		if err := tx.Where("sprint_id = ?", id).Delete(&models.SprintTeamMember{}).Error; err != nil {
			return err
		}

		return tx.Delete(&models.Sprint{}, id).Error
	})
}

// Complete detaches every item from the sprint and flips it to COMPLETED in
// one transaction. It returns the number of items returned to the backlog.
func (r *GormSprintRepository) Complete(id uint64) (int64, error) {
	var detached int64

	err := r.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.ProductBacklogItem{}).
			Where("sprint_id = ?", id).
			Update("sprint_id", nil)
		if result.Error != nil {
			return result.Error
		}
		detached = result.RowsAffected

		result = tx.Model(&models.Sprint{}).
			Where("id = ? AND status <> ?", id, models.SprintStatusCompleted).
			Update("status", models.SprintStatusCompleted)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrSprintAlreadyCompleted
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	return detached, nil
}
