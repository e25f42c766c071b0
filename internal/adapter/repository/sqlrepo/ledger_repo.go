package sqlrepo

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/simaogato/wealthflow-allocator/internal/domain"
)

// createdAtLayout keeps a fixed-width fraction so that MAX(created_at) over
// TEXT matches the newest import.
const createdAtLayout = "2006-01-02T15:04:05.000000000Z07:00"

const ledgerColumns = `id, symbol, group_name, barca, target_percent, current_quantity, last_price, notes, created_at`

// ledgerRepository implements domain.LedgerRepository
type ledgerRepository struct {
	db *DB
}

// NewLedgerRepository creates a new ledger repository
func NewLedgerRepository(db *DB) domain.LedgerRepository {
	return &ledgerRepository{db: db}
}

// InsertBatch appends all entries in one database transaction
func (r *ledgerRepository) InsertBatch(ctx context.Context, entries []*domain.LedgerEntry) error {
	dbTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer dbTx.Rollback()

	query := `
		INSERT INTO wallet_allocations (` + ledgerColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	stmt, err := dbTx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to prepare ledger insert: %w", err)
	}
	defer stmt.Close()

	for _, e := range entries {
		_, err = stmt.ExecContext(ctx,
			e.ID,
			e.Symbol,
			nullString(e.Group),
			nullString(e.Bucket),
			nullFloat(e.TargetPercent),
			nullFloat(e.CurrentQuantity),
			nullFloat(e.LastPrice),
			nullString(e.Notes),
			e.CreatedAt.UTC().Format(createdAtLayout),
		)
		if err != nil {
			return fmt.Errorf("failed to insert wallet allocation %s: %w", e.Symbol, err)
		}
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("failed to commit ledger import: %w", err)
	}

	return nil
}

// Current returns the rows of each symbol's newest import
func (r *ledgerRepository) Current(ctx context.Context) ([]*domain.LedgerEntry, error) {
	query := `
		SELECT ` + ledgerColumns + `
		FROM wallet_allocations w
		WHERE w.created_at = (
			SELECT MAX(created_at) FROM wallet_allocations WHERE symbol = w.symbol
		)
		ORDER BY w.symbol ASC, w.group_name ASC, w.barca ASC
	`
	return r.query(ctx, query)
}

// BySymbol returns every row of a symbol, newest first
func (r *ledgerRepository) BySymbol(ctx context.Context, symbol string) ([]*domain.LedgerEntry, error) {
	query := `
		SELECT ` + ledgerColumns + `
		FROM wallet_allocations
		WHERE symbol = $1
		ORDER BY created_at DESC
	`
	return r.query(ctx, query, symbol)
}

// Count returns the number of ledger rows
func (r *ledgerRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM wallet_allocations`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count wallet allocations: %w", err)
	}
	return n, nil
}

func (r *ledgerRepository) query(ctx context.Context, query string, args ...any) ([]*domain.LedgerEntry, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query wallet allocations: %w", err)
	}
	defer rows.Close()

	entries := make([]*domain.LedgerEntry, 0)
	for rows.Next() {
		var (
			e                       domain.LedgerEntry
			group, bucket, notes    sql.NullString
			target, quantity, price sql.NullFloat64
			createdAt               string
		)
		if err := rows.Scan(&e.ID, &e.Symbol, &group, &bucket, &target, &quantity, &price, &notes, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan wallet allocation: %w", err)
		}

		e.Group = stringPtr(group)
		e.Bucket = stringPtr(bucket)
		e.Notes = stringPtr(notes)
		e.TargetPercent = floatPtr(target)
		e.CurrentQuantity = floatPtr(quantity)
		e.LastPrice = floatPtr(price)

		e.CreatedAt, err = time.Parse(createdAtLayout, createdAt)
		if err != nil {
			return nil, fmt.Errorf("failed to parse created_at: %w", err)
		}

		entries = append(entries, &e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating wallet allocations: %w", err)
	}

	return entries, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

func stringPtr(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	return &s.String
}

func floatPtr(f sql.NullFloat64) *float64 {
	if !f.Valid {
		return nil
	}
	return &f.Float64
}
