package repository

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver
	"github.com/pressly/goose/v3"

	"github.com/Qwealzy/roots-of-sentient/internal/domain/reconcile"
	"github.com/Qwealzy/roots-of-sentient/internal/domain/ring"
	"github.com/Qwealzy/roots-of-sentient/internal/domain/word"
)

//go:embed migrations/*.sql
var migrations embed.FS

// pgUniqueViolation is the Postgres error code raised when the partial
// unique index on (layer_index, slot_index) rejects a write.
const pgUniqueViolation = "23505"

// PGStore is the Postgres-backed Store. A partial unique index on live
// (layer_index, slot_index) pairs turns the claim-vs-write race between
// concurrent contributions into an ErrSlotTaken the caller can retry.
type PGStore struct {
	db *sql.DB
}

// OpenPGStore connects to Postgres, applies the embedded migrations, and
// returns a ready store.
func OpenPGStore(ctx context.Context, dsn string) (*PGStore, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return nil, fmt.Errorf("set goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &PGStore{db: db}, nil
}

// Close releases the connection pool.
func (s *PGStore) Close() error { return s.db.Close() }

// List returns all entries in the contract order.
func (s *PGStore) List(ctx context.Context) ([]word.Entry, error) {
	const query = `
		SELECT id, term, display_name, COALESCE(avatar_ref, ''), owner_token,
		       created_at, layer_index, slot_index
		FROM words
		ORDER BY layer_index ASC NULLS FIRST,
		         slot_index ASC NULLS FIRST,
		         created_at ASC, id ASC`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list words: %w", err)
	}
	defer rows.Close()

	var out []word.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list words: %w", err)
	}
	return out, nil
}

// Get returns the entry with the given id.
func (s *PGStore) Get(ctx context.Context, id string) (word.Entry, error) {
	const query = `
		SELECT id, term, display_name, COALESCE(avatar_ref, ''), owner_token,
		       created_at, layer_index, slot_index
		FROM words WHERE id = $1`
	e, err := scanEntry(s.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return word.Entry{}, ErrNotFound
	}
	if err != nil {
		return word.Entry{}, fmt.Errorf("get word: %w", err)
	}
	return e, nil
}

// Insert persists a new entry; the database assigns id and creation time.
func (s *PGStore) Insert(ctx context.Context, e word.Entry) (word.Entry, error) {
	const query = `
		INSERT INTO words (term, display_name, avatar_ref, owner_token, layer_index, slot_index)
		VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6)
		RETURNING id, created_at`
	var layer, slot any
	if e.Positioned() {
		layer, slot = e.Position.Layer, e.Position.Slot
	}
	err := s.db.QueryRowContext(ctx, query,
		e.Term, e.DisplayName, e.AvatarRef, e.OwnerToken, layer, slot,
	).Scan(&e.ID, &e.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return word.Entry{}, ErrSlotTaken
		}
		return word.Entry{}, fmt.Errorf("insert word: %w", err)
	}
	return e, nil
}

// UpdatePositions applies reconciled coordinates inside one transaction.
// Unknown ids affect zero rows and are skipped silently.
func (s *PGStore) UpdatePositions(ctx context.Context, assignments []reconcile.Assignment) error {
	if len(assignments) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin writeback: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	const query = `UPDATE words SET layer_index = $2, slot_index = $3 WHERE id = $1`
	for _, a := range assignments {
		if _, err := tx.ExecContext(ctx, query, a.ID, a.Pos.Layer, a.Pos.Slot); err != nil {
			if isUniqueViolation(err) {
				return ErrSlotTaken
			}
			return fmt.Errorf("writeback %s: %w", a.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit writeback: %w", err)
	}
	return nil
}

// Delete removes the entry with the given id.
func (s *PGStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM words WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete word: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete word: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Count returns the number of live entries, 0 on failure.
func (s *PGStore) Count(ctx context.Context) int {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM words`).Scan(&n); err != nil {
		return 0
	}
	return n
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (word.Entry, error) {
	var (
		e     word.Entry
		layer sql.NullInt64
		slot  sql.NullInt64
	)
	if err := row.Scan(&e.ID, &e.Term, &e.DisplayName, &e.AvatarRef, &e.OwnerToken,
		&e.CreatedAt, &layer, &slot); err != nil {
		return word.Entry{}, err
	}
	if layer.Valid && slot.Valid {
		e.Position = &ring.Coordinate{Layer: int(layer.Int64), Slot: int(slot.Int64)}
	}
	return e, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
