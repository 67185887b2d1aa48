package database

import (
	"gorm.io/gorm"

	"github.com/ucpm/scrum-api/internal/utils"
)

// Paginate applies pagination to a GORM query
func Paginate(params utils.PaginationParams) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset(params.Offset).Limit(params.Limit)
	}
}

// OrderByPriority sorts backlog items HIGH, MEDIUM, LOW, newest first within a rank.
func OrderByPriority(db *gorm.DB) *gorm.DB {
	return db.Order("CASE product_backlog_items.priority WHEN 'HIGH' THEN 0 WHEN 'MEDIUM' THEN 1 ELSE 2 END").
		Order("product_backlog_items.created_at DESC").
		Order("product_backlog_items.id DESC")
}
