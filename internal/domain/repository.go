package domain

import (
	"context"
)

// LedgerRepository defines persistence operations for the wallet allocation ledger
type LedgerRepository interface {
	// InsertBatch appends entries in a single transaction; either all rows
	// are written or none are
	InsertBatch(ctx context.Context, entries []*LedgerEntry) error

	// Current returns, for every symbol, the rows sharing that symbol's
	// latest created_at
	Current(ctx context.Context) ([]*LedgerEntry, error)

	// BySymbol returns every row recorded for a symbol, newest first
	BySymbol(ctx context.Context, symbol string) ([]*LedgerEntry, error)

	// Count returns the total number of ledger rows
	Count(ctx context.Context) (int, error)
}

// HistoryRepository defines persistence operations for snapshot history
type HistoryRepository interface {
	// InsertAsset ignores a row whose (timestamp, symbol, group, bucket) already exists
	InsertAsset(ctx context.Context, snap *AssetSnapshot) error

	// InsertGroup ignores a row whose (timestamp, group) already exists
	InsertGroup(ctx context.Context, snap *GroupSnapshot) error

	// InsertBucket ignores a row whose (timestamp, bucket) already exists
	InsertBucket(ctx context.Context, snap *BucketSnapshot) error

	// UpsertTotal replaces any row already recorded for the timestamp
	UpsertTotal(ctx context.Context, snap *TotalSnapshot) error

	// Time-ranged reads, ordered by timestamp then dimension key
	FetchAssets(ctx context.Context, r TimeRange) ([]*AssetHistoryRow, error)
	FetchGroups(ctx context.Context, r TimeRange) ([]*GroupSnapshot, error)
	FetchBuckets(ctx context.Context, r TimeRange) ([]*BucketSnapshot, error)
	FetchTotals(ctx context.Context, r TimeRange) ([]*TotalSnapshot, error)
}

// AllocationRecordRepository stores audit records of computed reports
type AllocationRecordRepository interface {
	Create(ctx context.Context, rec *AllocationRecord) error

	// Latest returns the most recent record, ErrNotFound when none exists
	Latest(ctx context.Context) (*AllocationRecord, error)
}

// PriceProvider fetches the latest quotes from a market-data source
type PriceProvider interface {
	FetchLatest(ctx context.Context, apiKey string) ([]PriceQuote, error)
}

// TargetLoader loads bucket targets for a market context. An empty result
// for the context is reported as ErrConfiguration.
type TargetLoader interface {
	Load(ctx context.Context, marketContext string) (map[string]float64, error)
}
