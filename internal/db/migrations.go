package db

import (
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	embeddedmigrations "github.com/terraincognita07/hridaya/migrations"
	"gorm.io/gorm"
)

type migrationFile struct {
	Version string
	Name    string
	SQL     string
}

type schemaMigration struct {
	Version string `gorm:"column:version;primaryKey"`
	Name    string `gorm:"column:name;not null"`
}

func (schemaMigration) TableName() string { return "schema_migrations" }

func applyMigrations(database *gorm.DB) error {
	return applyMigrationsFrom(database, embeddedmigrations.Files)
}

// applyMigrationsFrom runs every NNNN_name.sql file in files that is not yet
// recorded in schema_migrations, each inside its own transaction.
func applyMigrationsFrom(database *gorm.DB, files fs.FS) error {
	if err := database.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (
  version TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
)`).Error; err != nil {
		return fmt.Errorf("create schema_migrations table: %w", err)
	}

	pending, err := readMigrationFiles(files)
	if err != nil {
		return err
	}

	applied := make([]schemaMigration, 0)
	if err := database.Find(&applied).Error; err != nil {
		return fmt.Errorf("load applied migrations: %w", err)
	}
	done := make(map[string]bool, len(applied))
	for _, row := range applied {
		done[row.Version] = true
	}

	for _, migration := range pending {
		if done[migration.Version] {
			continue
		}
		err := database.Transaction(func(tx *gorm.DB) error {
			for _, statement := range splitStatements(migration.SQL) {
				if err := tx.Exec(statement).Error; err != nil {
					return fmt.Errorf("execute %s: %w", migration.Name, err)
				}
			}
			return tx.Create(&schemaMigration{Version: migration.Version, Name: migration.Name}).Error
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func readMigrationFiles(files fs.FS) ([]migrationFile, error) {
	names, err := fs.Glob(files, "*.sql")
	if err != nil {
		return nil, fmt.Errorf("list migrations: %w", err)
	}
	sort.Strings(names)

	result := make([]migrationFile, 0, len(names))
	seen := make(map[string]string, len(names))
	for _, name := range names {
		version, _, ok := strings.Cut(path.Base(name), "_")
		if !ok || version == "" || strings.Trim(version, "0123456789") != "" {
			return nil, fmt.Errorf("migration %s: expected NNNN_name.sql", name)
		}
		if previous, exists := seen[version]; exists {
			return nil, fmt.Errorf("duplicate migration version %s in %s and %s", version, previous, name)
		}
		seen[version] = name

		raw, err := fs.ReadFile(files, name)
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", name, err)
		}
		result = append(result, migrationFile{Version: version, Name: name, SQL: string(raw)})
	}
	return result, nil
}

func splitStatements(sqlText string) []string {
	statements := make([]string, 0)
	for _, part := range strings.Split(sqlText, ";") {
		if statement := strings.TrimSpace(part); statement != "" {
			statements = append(statements, statement)
		}
	}
	return statements
}
