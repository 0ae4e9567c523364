package store

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/JonMunkholm/ShelfLife/internal/core"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Migrate applies the embedded schema migrations.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	fsys, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		return err
	}

	db := stdlib.OpenDBFromPool(pool)
	defer func() { _ = db.Close() }()

	provider, err := goose.NewProvider(goose.DialectPostgres, db, fsys)
	if err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	return nil
}

// PostgresStore keeps the single snapshot in two tables. Saving replaces
// whatever snapshot exists inside one transaction.
type PostgresStore struct {
	pool *pgxpool.Pool
}

var _ core.Store = (*PostgresStore)(nil)

// NewPostgresStore returns a store on pool. Run Migrate first.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

var rowColumns = []string{
	"snapshot_id",
	"material_code",
	"min_shelf_life_days",
	"max_shelf_life_days",
	"description",
	"client",
}

func (s *PostgresStore) Save(ctx context.Context, table *core.ReferenceTable) error {
	if table == nil {
		return &core.StorageError{Op: "save", Err: errors.New("nil table")}
	}
	if err := s.save(ctx, table); err != nil {
		return &core.StorageError{Op: "save", Err: err}
	}
	return nil
}

func (s *PostgresStore) save(ctx context.Context, table *core.ReferenceTable) error {
	parsed, err := uuid.Parse(table.ID)
	if err != nil {
		return fmt.Errorf("snapshot id: %w", err)
	}
	id := pgtype.UUID{Bytes: parsed, Valid: true}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM reference_snapshot`); err != nil {
		return fmt.Errorf("delete previous snapshot: %w", err)
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO reference_snapshot (id, source_name, imported_at)
		VALUES ($1, $2, $3)
	`, id, table.SourceName, table.ImportedAt); err != nil {
		return fmt.Errorf("insert snapshot: %w", err)
	}

	rows := table.Sorted()
	copied, err := tx.CopyFrom(ctx, pgx.Identifier{"reference_rows"}, rowColumns,
		pgx.CopyFromSlice(len(rows), func(i int) ([]any, error) {
			r := rows[i]
			return []any{id, r.MaterialCode, r.MinShelfLifeDays, r.MaxShelfLifeDays, r.Description, r.Client}, nil
		}),
	)
	if err != nil {
		return fmt.Errorf("copy rows: %w", err)
	}
	if copied != int64(len(rows)) {
		return fmt.Errorf("copied %d of %d rows", copied, len(rows))
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Load returns the stored snapshot, or (nil, nil) when there is none.
func (s *PostgresStore) Load(ctx context.Context) (*core.ReferenceTable, error) {
	var (
		id         pgtype.UUID
		source     string
		importedAt time.Time
	)
	err := s.pool.QueryRow(ctx, `
		SELECT id, source_name, imported_at
		FROM reference_snapshot
		ORDER BY imported_at DESC
		LIMIT 1
	`).Scan(&id, &source, &importedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, &core.StorageError{Op: "load", Err: err}
	}

	rows, err := s.pool.Query(ctx, `
		SELECT material_code, min_shelf_life_days, max_shelf_life_days, description, client
		FROM reference_rows
		WHERE snapshot_id = $1
	`, id)
	if err != nil {
		return nil, &core.StorageError{Op: "load", Err: err}
	}

	stored, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (core.ReferenceRow, error) {
		var r core.ReferenceRow
		err := row.Scan(&r.MaterialCode, &r.MinShelfLifeDays, &r.MaxShelfLifeDays, &r.Description, &r.Client)
		return r, err
	})
	if err != nil {
		return nil, &core.StorageError{Op: "load", Err: err}
	}

	return tableFromRows(uuid.UUID(id.Bytes).String(), source, importedAt, stored)
}

// Clear deletes the snapshot; its rows go with it.
func (s *PostgresStore) Clear(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM reference_snapshot`); err != nil {
		return &core.StorageError{Op: "clear", Err: err}
	}
	return nil
}
