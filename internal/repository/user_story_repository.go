package repository

import (
	"github.com/ucpm/scrum-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormUserStoryRepository is a GORM implementation of UserStoryRepository
type GormUserStoryRepository struct {
	db *gorm.DB
}

// NewUserStoryRepository creates a new UserStoryRepository
func NewUserStoryRepository(db *gorm.DB) UserStoryRepository {
	return &GormUserStoryRepository{db: db}
}

func (r *GormUserStoryRepository) Create(story *models.UserStory) error {
	return r.db.Omit(clause.Associations).Create(story).Error
}

func (r *GormUserStoryRepository) FindByID(id uint64) (*models.UserStory, error) {
	var story models.UserStory
	if err := r.db.Preload("CreatedBy").First(&story, id).Error; err != nil {
		return nil, err
	}
	return &story, nil
}

func (r *GormUserStoryRepository) ListByProject(projectID uint64) ([]models.UserStory, error) {
	var stories []models.UserStory
	if err := r.db.Preload("CreatedBy").
		Where("project_id = ?", projectID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&stories).Error; err != nil {
		return nil, err
	}
	return stories, nil
}

func (r *GormUserStoryRepository) Update(story *models.UserStory) error {
	return r.db.Omit(clause.Associations).Save(story).Error
}

// Delete deletes a story together with its backlog items and their tasks
func (r *GormUserStoryRepository) Delete(id uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		items := tx.Model(&models.ProductBacklogItem{}).Select("id").Where("user_story_id = ?", id)
		if err := tx.Where("backlog_item_id IN (?)", items).Delete(&models.Task{}).Error; err != nil {
			return err
		}

		if err := tx.Where("user_story_id = ?", id).Delete(&models.ProductBacklogItem{}).Error; err != nil {
			return err
		}

		return tx.Delete(&models.UserStory{}, id).Error
	})
}
