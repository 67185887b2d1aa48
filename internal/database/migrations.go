package database

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/ucpm/scrum-api/internal/logging"
)

// AddIndexes adds the composite indexes the list queries rely on.
func AddIndexes(db *gorm.DB) error {
	indexes := []struct {
		table   string
		name    string
		columns string
	}{
		// Backlog listing: project filter, priority rank, newest first
		{"product_backlog_items", "idx_pbi_project_priority_created", "project_id, priority, created_at"},
		// Bulk sprint assignment and detachment
		{"product_backlog_items", "idx_pbi_project_sprint", "project_id, sprint_id"},

		// Active sprint lookup
		{"sprints", "idx_sprints_project_dates", "project_id, start_date, end_date"},

		// Task listing per sprint and per assignee
		{"tasks", "idx_tasks_sprint_created", "sprint_id, created_at"},
		{"tasks", "idx_tasks_assignee_status", "assigned_to_id, status"},
	}

	migrator := db.Migrator()
	for _, idx := range indexes {
		if migrator.HasIndex(idx.table, idx.name) {
			logging.Logger.Debugf("Index %s already exists, skipping", idx.name)
			continue
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, idx.table, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}

		logging.Logger.Infof("Created index %s on %s(%s)", idx.name, idx.table, idx.columns)
	}

	return nil
}
