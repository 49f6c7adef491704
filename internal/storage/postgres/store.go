package postgres

import (
	"context"
	"fmt"
	"slices"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/charasheet/internal/access"
	"github.com/cory-johannsen/charasheet/internal/sheet"
)

var _ sheet.Store = (*Store)(nil)

// Store implements the sheet store and the content sink on PostgreSQL.
//
// Update methods lock the affected rows with SELECT ... FOR UPDATE inside one
// transaction, so concurrent updates of the same row run one after another.
type Store struct {
	db *pgxpool.Pool
}

// NewStore creates a Store backed by the given pool.
//
// Precondition: db must be a valid, open connection pool with the schema migrated.
func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

// inTx runs fn in a transaction committed when fn returns nil.
func (s *Store) inTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// visible evaluates f against the row id of table.
func (s *Store) visible(ctx context.Context, table string, f access.Filter, id int64) (bool, error) {
	pred, args, err := f.SQL("t.id", 2)
	if err != nil {
		return false, err
	}
	var ok bool
	err = s.db.QueryRow(ctx,
		fmt.Sprintf("SELECT EXISTS (SELECT 1 FROM %s t WHERE t.id = $1 AND %s)", table, pred),
		append([]any{id}, args...)...,
	).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("evaluating %s on %s %d: %w", f, table, id, err)
	}
	return ok, nil
}

// syncLinks queues the inserts and deletes turning the before set of a link
// table into after.
func syncLinks(b *pgx.Batch, table, ownerColumn, linkColumn string, ownerID int64, before, after []int64) {
	for _, id := range before {
		if !slices.Contains(after, id) {
			b.Queue(fmt.Sprintf("DELETE FROM %s WHERE %s = $1 AND %s = $2", table, ownerColumn, linkColumn), ownerID, id)
		}
	}
	for _, id := range after {
		if !slices.Contains(before, id) {
			b.Queue(fmt.Sprintf("INSERT INTO %s (%s, %s) VALUES ($1, $2) ON CONFLICT DO NOTHING", table, ownerColumn, linkColumn), ownerID, id)
		}
	}
}

// sendBatch runs b and reports the first failing statement.
func sendBatch(ctx context.Context, q querier, b *pgx.Batch) error {
	if b.Len() == 0 {
		return nil
	}
	return q.SendBatch(ctx, b).Close()
}

func idsOf[T any](items []T, id func(T) int64) []int64 {
	out := make([]int64, 0, len(items))
	for _, item := range items {
		if v := id(item); !slices.Contains(out, v) {
			out = append(out, v)
		}
	}
	return out
}
