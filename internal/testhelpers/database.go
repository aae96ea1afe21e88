// Package testhelpers provides in-memory databases for unit tests.
package testhelpers

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pageza/recipepdf/config"
	"github.com/pageza/recipepdf/internal/database"
	"github.com/pageza/recipepdf/internal/models"
)

// SetupTestDatabase opens a private in-memory SQLite database with the run
// history schema. It is closed when the test finishes.
func SetupTestDatabase(t *testing.T) *gorm.DB {
	t.Helper()

	// a named shared-cache database keeps every pooled connection on the same data
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := database.Open(config.DatabaseConfig{Driver: "sqlite", DSN: dsn}, nil)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() {
		if err := database.Close(db); err != nil {
			t.Errorf("failed to close test database: %v", err)
		}
	})

	if _, err := database.RunMigrations(db, &models.Run{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}
