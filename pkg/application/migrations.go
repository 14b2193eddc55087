package application

import (
	"context"
	"database/sql"
	"embed"
	"io/fs"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/pressly/goose/v3/database"
)

// MigrationManager collects schema filesystems registered by modules and
// applies them with goose. Each module embeds its migrations under a
// schema/ directory.
type MigrationManager interface {
	RegisterSchema(fsys *embed.FS)
	Apply(ctx context.Context) error
}

func NewMigrationManager(pool *pgxpool.Pool) MigrationManager {
	return &migrationManager{pool: pool}
}

type migrationManager struct {
	pool    *pgxpool.Pool
	schemas []*embed.FS
}

func (m *migrationManager) RegisterSchema(fsys *embed.FS) {
	m.schemas = append(m.schemas, fsys)
}

func (m *migrationManager) Apply(ctx context.Context) error {
	db := stdlib.OpenDBFromPool(m.pool)
	defer func() { _ = db.Close() }()

	for _, schema := range m.schemas {
		if err := m.applyOne(ctx, db, schema); err != nil {
			return err
		}
	}
	return nil
}

func (m *migrationManager) applyOne(ctx context.Context, db *sql.DB, fsys *embed.FS) error {
	sub, err := fs.Sub(fsys, "infrastructure/persistence/schema")
	if err != nil {
		return err
	}
	provider, err := goose.NewProvider(database.DialectPostgres, db, sub)
	if err != nil {
		return err
	}
	_, err = provider.Up(ctx)
	return err
}
