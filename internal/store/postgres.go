package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS scenes (
	id         TEXT PRIMARY KEY,
	owner_id   TEXT NOT NULL,
	name       TEXT NOT NULL DEFAULT '',
	digest     TEXT NOT NULL,
	size       INTEGER NOT NULL,
	layers     INTEGER NOT NULL,
	data       BYTEA NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS scenes_owner_idx ON scenes (owner_id, updated_at DESC);
`

// NewPool connects to Postgres and verifies the connection.
func NewPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}

// Postgres is the Repository backed by a pgx connection pool.
type Postgres struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

// Migrate creates the scenes table if it does not exist.
func (p *Postgres) Migrate(ctx context.Context) error {
	if _, err := p.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

func (p *Postgres) Insert(ctx context.Context, s Scene, data []byte) error {
	_, err := p.pool.Exec(ctx, `
		INSERT INTO scenes (id, owner_id, name, digest, size, layers, data, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		s.ID, s.OwnerID, s.Name, s.Digest, s.Size, s.Layers, data, s.CreatedAt, s.UpdatedAt)
	if isDuplicateKeyError(err) {
		return fmt.Errorf("scene %s: %w", s.ID, ErrConflict)
	}
	return err
}

func (p *Postgres) Get(ctx context.Context, id string) (Scene, []byte, error) {
	var s Scene
	var data []byte
	err := p.pool.QueryRow(ctx, `
		SELECT id, owner_id, name, digest, size, layers, data, created_at, updated_at
		FROM scenes WHERE id = $1`, id).
		Scan(&s.ID, &s.OwnerID, &s.Name, &s.Digest, &s.Size, &s.Layers, &data, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return s, nil, ErrNotFound
		}
		return s, nil, fmt.Errorf("get scene: %w", err)
	}
	return s, data, nil
}

func (p *Postgres) Update(ctx context.Context, s Scene, data []byte) error {
	tag, err := p.pool.Exec(ctx, `
		UPDATE scenes SET name = $2, digest = $3, size = $4, layers = $5, data = $6, updated_at = $7
		WHERE id = $1`,
		s.ID, s.Name, s.Digest, s.Size, s.Layers, data, s.UpdatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) Delete(ctx context.Context, id string) error {
	tag, err := p.pool.Exec(ctx, `DELETE FROM scenes WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) ListByOwner(ctx context.Context, ownerID string) ([]Scene, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT id, owner_id, name, digest, size, layers, created_at, updated_at
		FROM scenes WHERE owner_id = $1 ORDER BY updated_at DESC`, ownerID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (Scene, error) {
		var s Scene
		err := row.Scan(&s.ID, &s.OwnerID, &s.Name, &s.Digest, &s.Size, &s.Layers, &s.CreatedAt, &s.UpdatedAt)
		return s, err
	})
}

func isDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return false
}
