package testfixtures

import (
	"path/filepath"
	"testing"

	"github.com/yukikurage/cse-council-api/internal/config"
	"github.com/yukikurage/cse-council-api/internal/database"
	"gorm.io/gorm"
)

// NewDB opens a migrated SQLite database in a temporary directory. It is
// closed when the test ends.
func NewDB(tb testing.TB) *gorm.DB {
	tb.Helper()

	cfg := &config.Config{
		Database: config.DatabaseConfig{
			Driver:     "sqlite",
			SQLitePath: filepath.Join(tb.TempDir(), "cse.db"),
		},
		Log: config.LogConfig{Level: "error"},
	}

	db, err := database.Connect(cfg)
	if err != nil {
		tb.Fatalf("failed to open database: %v", err)
	}
	tb.Cleanup(func() {
		_ = database.Close(db)
	})

	if err := database.Migrate(db); err != nil {
		tb.Fatalf("failed to migrate database: %v", err)
	}
	return db
}
