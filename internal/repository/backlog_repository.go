package repository

import (
	"github.com/ucpm/scrum-api/internal/database"
	"github.com/ucpm/scrum-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormBacklogRepository is a GORM implementation of BacklogRepository
type GormBacklogRepository struct {
	db *gorm.DB
}

// NewBacklogRepository creates a new BacklogRepository
func NewBacklogRepository(db *gorm.DB) BacklogRepository {
	return &GormBacklogRepository{db: db}
}

// Create creates a new backlog item
func (r *GormBacklogRepository) Create(item *models.ProductBacklogItem) error {
	return r.db.Omit(clause.Associations).Create(item).Error
}

// FindByID finds a backlog item by ID
func (r *GormBacklogRepository) FindByID(id uint64) (*models.ProductBacklogItem, error) {
	var item models.ProductBacklogItem
	if err := r.db.Preload("CreatedBy").First(&item, id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// List retrieves backlog items ordered by priority rank
func (r *GormBacklogRepository) List(filter BacklogFilter) ([]models.ProductBacklogItem, error) {
	var items []models.ProductBacklogItem

	query := r.db.Model(&models.ProductBacklogItem{}).
		Where("product_backlog_items.project_id = ?", filter.ProjectID)

	if filter.SprintID != nil {
		query = query.Where("product_backlog_items.sprint_id = ?", *filter.SprintID)
	} else if filter.Unassigned {
		query = query.Where("product_backlog_items.sprint_id IS NULL")
	}

	if err := query.Scopes(database.OrderByPriority).
		Preload("CreatedBy").
		Find(&items).Error; err != nil {
		return nil, err
	}

	return items, nil
}

// Update updates a backlog item
func (r *GormBacklogRepository) Update(item *models.ProductBacklogItem) error {
	return r.db.Omit(clause.Associations).Save(item).Error
}

// Delete deletes a backlog item and its tasks
func (r *GormBacklogRepository) Delete(id uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("backlog_item_id = ?", id).Delete(&models.Task{}).Error; err != nil {
			return err
		}

		return tx.Delete(&models.ProductBacklogItem{}, id).Error
	})
}

// AssignToSprint links the unassigned items of a project to a sprint with a
// single UPDATE. Items of other projects or already in a sprint are skipped.
func (r *GormBacklogRepository) AssignToSprint(projectID, sprintID uint64, itemIDs []uint64) (int64, error) {
	if len(itemIDs) == 0 {
		return 0, nil
	}

	result := r.db.Model(&models.ProductBacklogItem{}).
		Where("project_id = ? AND sprint_id IS NULL AND id IN ?", projectID, itemIDs).
		Update("sprint_id", sprintID)

	return result.RowsAffected, result.Error
}

// UnassignFromSprint returns the given items of a sprint to the backlog
func (r *GormBacklogRepository) UnassignFromSprint(sprintID uint64, itemIDs []uint64) (int64, error) {
	if len(itemIDs) == 0 {
		return 0, nil
	}

	result := r.db.Model(&models.ProductBacklogItem{}).
		Where("sprint_id = ? AND id IN ?", sprintID, itemIDs).
		Update("sprint_id", nil)

	return result.RowsAffected, result.Error
}
