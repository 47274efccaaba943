package storage

import (
	"context"
	"embed"
	"fmt"
	"log"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrations embed.FS

func init() {
	goose.SetBaseFS(migrations)
}

// EnsureSchema applies any pending migrations. Every statement is
// create-if-absent, so running it against an up-to-date database is a no-op.
func (s *Storage) EnsureSchema(ctx context.Context) error {
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}
	if err := goose.UpContext(ctx, s.DB.DB, "migrations"); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	log.Println("[Store] Schema up to date")
	return nil
}

// MigrationStatus logs the applied state of every embedded migration.
func (s *Storage) MigrationStatus(ctx context.Context) error {
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}
	if err := goose.StatusContext(ctx, s.DB.DB, "migrations"); err != nil {
		return fmt.Errorf("migration status: %w", err)
	}
	return nil
}
