package sqlrepo

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/simaogato/wealthflow-allocator/internal/domain"
)

// historyRepository implements domain.HistoryRepository
type historyRepository struct {
	db  *DB
	now func() time.Time
}

// NewHistoryRepository creates a new history repository
func NewHistoryRepository(db *DB) domain.HistoryRepository {
	return &historyRepository{db: db, now: time.Now}
}

// InsertAsset records one asset snapshot, ignoring a duplicate key
func (r *historyRepository) InsertAsset(ctx context.Context, snap *domain.AssetSnapshot) error {
	query := `
		INSERT INTO history_assets (
			timestamp, symbol, group_name, barca, price, current_quantity, value,
			target_percent, current_percent, market_cap, fdv, volume_24h,
			percent_change_24h, percent_change_7d, extra, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		ON CONFLICT (timestamp, symbol, group_name, barca) DO NOTHING
	`

	_, err := r.db.ExecContext(ctx, query,
		snap.Timestamp,
		snap.Symbol,
		snap.Group,
		snap.Bucket,
		snap.Price,
		snap.CurrentQuantity,
		snap.Value,
		snap.TargetPercent,
		snap.CurrentPercent,
		snap.MarketCap,
		snap.FDV,
		snap.Volume24h,
		snap.PercentChange24h,
		snap.PercentChange7d,
		nullExtra(snap.Extra),
		r.createdAt(snap.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert asset snapshot: %w", err)
	}
	return nil
}

// InsertGroup records one group snapshot, ignoring a duplicate key
func (r *historyRepository) InsertGroup(ctx context.Context, snap *domain.GroupSnapshot) error {
	query := `
		INSERT INTO history_groups (timestamp, group_name, value, current_percent, target_percent, extra, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (timestamp, group_name) DO NOTHING
	`

	_, err := r.db.ExecContext(ctx, query,
		snap.Timestamp, snap.Group, snap.Value, snap.CurrentPercent, snap.TargetPercent,
		nullExtra(snap.Extra), r.createdAt(snap.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert group snapshot: %w", err)
	}
	return nil
}

// InsertBucket records one bucket snapshot, ignoring a duplicate key
func (r *historyRepository) InsertBucket(ctx context.Context, snap *domain.BucketSnapshot) error {
	query := `
		INSERT INTO history_barca (timestamp, barca, value, current_percent, target_percent, extra, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (timestamp, barca) DO NOTHING
	`

	_, err := r.db.ExecContext(ctx, query,
		snap.Timestamp, snap.Bucket, snap.Value, snap.CurrentPercent, snap.TargetPercent,
		nullExtra(snap.Extra), r.createdAt(snap.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert barca snapshot: %w", err)
	}
	return nil
}

// UpsertTotal records the wallet total, replacing an existing row for the timestamp
func (r *historyRepository) UpsertTotal(ctx context.Context, snap *domain.TotalSnapshot) error {
	query := `
		INSERT INTO history_totals (timestamp, total_value, extra, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (timestamp) DO UPDATE SET
			total_value = excluded.total_value,
			extra = excluded.extra
	`

	_, err := r.db.ExecContext(ctx, query,
		snap.Timestamp, snap.TotalValue, nullExtra(snap.Extra), r.createdAt(snap.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert total snapshot: %w", err)
	}
	return nil
}

// FetchAssets returns asset snapshots joined with their timestamp's total.
// A timestamp without a totals row falls back to the sum of its asset values.
func (r *historyRepository) FetchAssets(ctx context.Context, tr domain.TimeRange) ([]*domain.AssetHistoryRow, error) {
	where, args := rangeClause("a.timestamp", tr)
	query := `
		SELECT a.timestamp, a.symbol, a.group_name, a.barca, a.price, a.current_quantity,
			a.value, a.target_percent, a.current_percent, a.market_cap, a.fdv, a.volume_24h,
			a.percent_change_24h, a.percent_change_7d, a.extra, a.created_at,
			COALESCE(t.total_value, (
				SELECT SUM(s.value) FROM history_assets s WHERE s.timestamp = a.timestamp
			))
		FROM history_assets a
		LEFT JOIN history_totals t ON t.timestamp = a.timestamp` + where + `
		ORDER BY a.timestamp ASC, a.symbol ASC, a.group_name ASC, a.barca ASC
	`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query asset history: %w", err)
	}
	defer rows.Close()

	out := make([]*domain.AssetHistoryRow, 0)
	for rows.Next() {
		var (
			row   domain.AssetHistoryRow
			extra sql.NullString
			total sql.NullFloat64
		)
		err := rows.Scan(
			&row.Timestamp, &row.Symbol, &row.Group, &row.Bucket, &row.Price, &row.CurrentQuantity,
			&row.Value, &row.TargetPercent, &row.CurrentPercent, &row.MarketCap, &row.FDV, &row.Volume24h,
			&row.PercentChange24h, &row.PercentChange7d, &extra, &row.CreatedAt,
			&total,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan asset history: %w", err)
		}
		row.Extra = extra.String
		row.TotalValue = total.Float64
		out = append(out, &row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating asset history: %w", err)
	}
	return out, nil
}

// FetchGroups returns group snapshots ordered by timestamp then group
func (r *historyRepository) FetchGroups(ctx context.Context, tr domain.TimeRange) ([]*domain.GroupSnapshot, error) {
	where, args := rangeClause("timestamp", tr)
	query := `
		SELECT timestamp, group_name, value, current_percent, target_percent, extra, created_at
		FROM history_groups` + where + `
		ORDER BY timestamp ASC, group_name ASC
	`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query group history: %w", err)
	}
	defer rows.Close()

	out := make([]*domain.GroupSnapshot, 0)
	for rows.Next() {
		var (
			row   domain.GroupSnapshot
			extra sql.NullString
		)
		if err := rows.Scan(&row.Timestamp, &row.Group, &row.Value, &row.CurrentPercent, &row.TargetPercent, &extra, &row.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan group history: %w", err)
		}
		row.Extra = extra.String
		out = append(out, &row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating group history: %w", err)
	}
	return out, nil
}

// FetchBuckets returns bucket snapshots ordered by timestamp then bucket
func (r *historyRepository) FetchBuckets(ctx context.Context, tr domain.TimeRange) ([]*domain.BucketSnapshot, error) {
	where, args := rangeClause("timestamp", tr)
	query := `
		SELECT timestamp, barca, value, current_percent, target_percent, extra, created_at
		FROM history_barca` + where + `
		ORDER BY timestamp ASC, barca ASC
	`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query barca history: %w", err)
	}
	defer rows.Close()

	out := make([]*domain.BucketSnapshot, 0)
	for rows.Next() {
		var (
			row   domain.BucketSnapshot
			extra sql.NullString
		)
		if err := rows.Scan(&row.Timestamp, &row.Bucket, &row.Value, &row.CurrentPercent, &row.TargetPercent, &extra, &row.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan barca history: %w", err)
		}
		row.Extra = extra.String
		out = append(out, &row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating barca history: %w", err)
	}
	return out, nil
}

// FetchTotals returns wallet totals ordered by timestamp
func (r *historyRepository) FetchTotals(ctx context.Context, tr domain.TimeRange) ([]*domain.TotalSnapshot, error) {
	where, args := rangeClause("timestamp", tr)
	query := `
		SELECT timestamp, total_value, extra, created_at
		FROM history_totals` + where + `
		ORDER BY timestamp ASC
	`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query total history: %w", err)
	}
	defer rows.Close()

	out := make([]*domain.TotalSnapshot, 0)
	for rows.Next() {
		var (
			row   domain.TotalSnapshot
			extra sql.NullString
		)
		if err := rows.Scan(&row.Timestamp, &row.TotalValue, &extra, &row.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan total history: %w", err)
		}
		row.Extra = extra.String
		out = append(out, &row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating total history: %w", err)
	}
	return out, nil
}

func (r *historyRepository) createdAt(s string) string {
	if s != "" {
		return s
	}
	return domain.FormatTimestamp(r.now())
}

// rangeClause renders inclusive bounds on col as a WHERE clause
func rangeClause(col string, tr domain.TimeRange) (string, []any) {
	var (
		conds []string
		args  []any
	)
	if tr.From != nil {
		args = append(args, *tr.From)
		conds = append(conds, fmt.Sprintf("%s >= $%d", col, len(args)))
	}
	if tr.To != nil {
		args = append(args, *tr.To)
		conds = append(conds, fmt.Sprintf("%s <= $%d", col, len(args)))
	}
	if len(conds) == 0 {
		return "", nil
	}
	return "\n\t\tWHERE " + strings.Join(conds, " AND "), args
}

func nullExtra(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
