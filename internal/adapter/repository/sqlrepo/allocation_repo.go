package sqlrepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/simaogato/wealthflow-allocator/internal/domain"
)

// allocationRepository implements domain.AllocationRecordRepository
type allocationRepository struct {
	db *DB
}

// NewAllocationRepository creates a new allocation record repository
func NewAllocationRepository(db *DB) domain.AllocationRecordRepository {
	return &allocationRepository{db: db}
}

// Create stores an audit record
func (r *allocationRepository) Create(ctx context.Context, rec *domain.AllocationRecord) error {
	query := `
		INSERT INTO allocations (id, computed_at, payload, created_at)
		VALUES ($1, $2, $3, $4)
	`

	_, err := r.db.ExecContext(ctx, query,
		rec.ID,
		rec.ComputedAt,
		string(rec.Payload),
		rec.CreatedAt.UTC().Format(createdAtLayout),
	)
	if err != nil {
		return fmt.Errorf("failed to insert allocation record: %w", err)
	}
	return nil
}

// Latest retrieves the most recent audit record
func (r *allocationRepository) Latest(ctx context.Context) (*domain.AllocationRecord, error) {
	query := `
		SELECT id, computed_at, payload, created_at
		FROM allocations
		ORDER BY computed_at DESC, created_at DESC
		LIMIT 1
	`

	var (
		rec       domain.AllocationRecord
		payload   string
		createdAt string
	)
	err := r.db.QueryRowContext(ctx, query).Scan(&rec.ID, &rec.ComputedAt, &payload, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: no allocation has been recorded", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get latest allocation record: %w", err)
	}

	rec.Payload = []byte(payload)
	rec.CreatedAt, err = time.Parse(createdAtLayout, createdAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse created_at: %w", err)
	}

	return &rec, nil
}
