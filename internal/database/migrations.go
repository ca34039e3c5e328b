package database

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/yukikurage/cse-council-api/internal/models"
	"gorm.io/gorm"
)

type secondaryIndex struct {
	model   interface{}
	name    string
	columns []string
}

// Indexes used by list filters and the quorum count that AutoMigrate does
// not derive from struct tags.
var secondaryIndexes = []secondaryIndex{
	{&models.AgendaItem{}, "idx_agenda_items_meeting_position", []string{"meeting_id", "position"}},
	{&models.Feedback{}, "idx_feedbacks_meeting_submitter", []string{"meeting_id", "submitted_by_id"}},
	{&models.User{}, "idx_users_role_active", []string{"role", "is_active"}},
	{&models.Meeting{}, "idx_meetings_status_date", []string{"status", "date"}},
}

// EnsureIndexes creates any missing secondary index. It is dialect-agnostic
// and safe to run repeatedly.
func EnsureIndexes(db *gorm.DB) error {
	migrator := db.Migrator()

	for _, idx := range secondaryIndexes {
		if migrator.HasIndex(idx.model, idx.name) {
			slog.Debug("index already exists, skipping", "index", idx.name)
			continue
		}

		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(idx.model); err != nil {
			return fmt.Errorf("failed to parse model for index %s: %w", idx.name, err)
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, stmt.Schema.Table, strings.Join(idx.columns, ", "))
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}

		slog.Info("created index", "index", idx.name, "table", stmt.Schema.Table)
	}

	return nil
}
