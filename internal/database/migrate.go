package database

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"gorm.io/gorm"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// rollbackSuffix marks the file that reverts the migration of the same name
const rollbackSuffix = "_rollback.sql"

// ErrNoMigrations is returned by RollbackLast when nothing has been applied
var ErrNoMigrations = errors.New("no migrations to rollback")

// RunMigrations brings the schema up to date. Postgres runs the embedded SQL
// migrations in name order, recording each one; SQLite uses GORM
// auto-migration of models.
func RunMigrations(db *gorm.DB, models ...any) ([]string, error) {
	if db.Dialector.Name() == "sqlite" {
		if err := db.AutoMigrate(models...); err != nil {
			return nil, fmt.Errorf("failed to auto-migrate: %w", err)
		}
		return nil, nil
	}

	entries, err := fs.ReadDir(migrationFiles, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".sql") && !strings.HasSuffix(e.Name(), rollbackSuffix) {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	if err := ensureMigrationsTable(db); err != nil {
		return nil, err
	}

	var applied []string
	for _, name := range names {
		var count int64
		if err := db.Table("schema_migrations").Where("name = ?", name).Count(&count).Error; err != nil {
			return applied, fmt.Errorf("failed to check migration status: %w", err)
		}
		if count > 0 {
			continue
		}

		content, err := migrationFiles.ReadFile("migrations/" + name)
		if err != nil {
			return applied, fmt.Errorf("failed to read migration file %s: %w", name, err)
		}

		err = db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Exec(string(content)).Error; err != nil {
				return fmt.Errorf("failed to execute migration %s: %w", name, err)
			}
			if err := tx.Exec("INSERT INTO schema_migrations (name) VALUES (?)", name).Error; err != nil {
				return fmt.Errorf("failed to record migration %s: %w", name, err)
			}
			return nil
		})
		if err != nil {
			return applied, err
		}
		applied = append(applied, name)
	}

	return applied, nil
}

// RollbackLast reverts the most recently applied migration using its
// _rollback.sql companion and returns the migration name
func RollbackLast(db *gorm.DB) (string, error) {
	if db.Dialector.Name() == "sqlite" {
		return "", errors.New("rollback is only supported on postgres")
	}
	if err := ensureMigrationsTable(db); err != nil {
		return "", err
	}

	var names []string
	if err := db.Table("schema_migrations").Order("id DESC").Limit(1).Pluck("name", &names).Error; err != nil {
		return "", fmt.Errorf("failed to get last migration: %w", err)
	}
	if len(names) == 0 {
		return "", ErrNoMigrations
	}
	name := names[0]

	rollbackFile := strings.TrimSuffix(name, ".sql") + rollbackSuffix
	content, err := migrationFiles.ReadFile("migrations/" + rollbackFile)
	if err != nil {
		return "", fmt.Errorf("rollback file not found: %s", rollbackFile)
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(string(content)).Error; err != nil {
			return fmt.Errorf("failed to execute rollback %s: %w", rollbackFile, err)
		}
		if err := tx.Exec("DELETE FROM schema_migrations WHERE name = ?", name).Error; err != nil {
			return fmt.Errorf("failed to remove migration record: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return name, nil
}

func ensureMigrationsTable(db *gorm.DB) error {
	if err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			id SERIAL PRIMARY KEY,
			name VARCHAR(255) NOT NULL UNIQUE,
			applied_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT CURRENT_TIMESTAMP
		)
	`).Error; err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}
	return nil
}
