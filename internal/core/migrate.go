package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"

	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog/log"
)

//go:embed migrations/postgres/*.sql migrations/sqlite/*.sql
var migrationFS embed.FS

// applyMigrations brings the schema up to date with the embedded goose
// migrations under dir. Applied versions are tracked in goose_db_version.
func applyMigrations(ctx context.Context, db *sql.DB, dialect goose.Dialect, dir string) error {
	fsys, err := fs.Sub(migrationFS, dir)
	if err != nil {
		return fmt.Errorf("open migrations dir %s: %w", dir, err)
	}

	provider, err := goose.NewProvider(dialect, db, fsys)
	if err != nil {
		return fmt.Errorf("create migration provider: %w", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}

	for _, r := range results {
		log.Ctx(ctx).Info().
			Str("dialect", string(dialect)).
			Int64("version", r.Source.Version).
			Str("migration", r.Source.Path).
			Dur("duration", r.Duration).
			Msg("Migration applied")
	}
	return nil
}
