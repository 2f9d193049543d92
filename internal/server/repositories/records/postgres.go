package records

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/studyvault/internal/common"
	"github.com/dmitrijs2005/studyvault/internal/dbx"
	"github.com/dmitrijs2005/studyvault/internal/server/migrations"
	"github.com/pressly/goose/v3"
)

// PostgresBackend keeps both copies of a record in one row of the records
// table. A commit is a single upsert that shifts body into backup.
type PostgresBackend struct {
	db *sql.DB
}

func NewPostgresBackend(db *sql.DB) *PostgresBackend {
	return &PostgresBackend{db: db}
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations applies the embedded schema migrations.
func (b *PostgresBackend) RunMigrations(ctx context.Context) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	if err := gooseUpContext(ctx, b.db, "."); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

func (b *PostgresBackend) ReadPrimary(ctx context.Context, owner, name string) ([]byte, error) {
	query :=
		`SELECT body FROM records
		 WHERE owner = $1 AND name = $2
		 `
	return b.readColumn(ctx, query, owner, name)
}

func (b *PostgresBackend) ReadBackup(ctx context.Context, owner, name string) ([]byte, error) {
	query :=
		`SELECT backup FROM records
		 WHERE owner = $1 AND name = $2
		 `
	return b.readColumn(ctx, query, owner, name)
}

func (b *PostgresBackend) readColumn(ctx context.Context, query, owner, name string) ([]byte, error) {
	var data []byte
	err := b.db.QueryRowContext(ctx, query, owner, name).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	if data == nil {
		return nil, common.ErrNotFound
	}
	return data, nil
}

func (b *PostgresBackend) Commit(ctx context.Context, owner, name string, data []byte) error {
	query :=
		`INSERT INTO records (owner, name, body, backup, updated_at)
		 VALUES ($1, $2, $3, NULL, now())
		 ON CONFLICT (owner, name) DO UPDATE
		 SET backup = records.body, body = EXCLUDED.body, updated_at = now()
		 `

	return dbx.WithTx(ctx, b.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := tx.ExecContext(ctx, query, owner, name, data); err != nil {
			return fmt.Errorf("db error: %w", err)
		}
		return nil
	})
}
