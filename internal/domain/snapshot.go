package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TimestampLayout is the persisted timestamp format. Timestamps are stored as
// strings so that lexical order equals chronological order.
const TimestampLayout = time.RFC3339

// FormatTimestamp renders t in UTC using TimestampLayout
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// AssetSnapshot is one history_assets row
type AssetSnapshot struct {
	Timestamp        string  `json:"timestamp"`
	Symbol           string  `json:"symbol"`
	Group            string  `json:"group"`
	Bucket           string  `json:"barca"`
	Price            float64 `json:"price"`
	CurrentQuantity  float64 `json:"current_quantity"`
	Value            float64 `json:"value"`
	TargetPercent    float64 `json:"target_percent"`
	CurrentPercent   float64 `json:"current_percent"`
	MarketCap        float64 `json:"market_cap"`
	FDV              float64 `json:"fdv"`
	Volume24h        float64 `json:"volume_24h"`
	PercentChange24h float64 `json:"percent_change_24h"`
	PercentChange7d  float64 `json:"percent_change_7d"`
	Extra            string  `json:"extra,omitempty"`
	CreatedAt        string  `json:"created_at,omitempty"`
}

// GroupSnapshot is one history_groups row
type GroupSnapshot struct {
	Timestamp      string  `json:"timestamp"`
	Group          string  `json:"group"`
	Value          float64 `json:"value"`
	CurrentPercent float64 `json:"current_percent"`
	TargetPercent  float64 `json:"target_percent"`
	Extra          string  `json:"extra,omitempty"`
	CreatedAt      string  `json:"created_at,omitempty"`
}

// BucketSnapshot is one history_barca row
type BucketSnapshot struct {
	Timestamp      string  `json:"timestamp"`
	Bucket         string  `json:"barca"`
	Value          float64 `json:"value"`
	CurrentPercent float64 `json:"current_percent"`
	TargetPercent  float64 `json:"target_percent"`
	Extra          string  `json:"extra,omitempty"`
	CreatedAt      string  `json:"created_at,omitempty"`
}

// TotalSnapshot is one history_totals row, unique per timestamp
type TotalSnapshot struct {
	Timestamp  string  `json:"timestamp"`
	TotalValue float64 `json:"total_value"`
	Extra      string  `json:"extra,omitempty"`
	CreatedAt  string  `json:"created_at,omitempty"`
}

// AllocationRecord is the write-once audit row of a computed report
type AllocationRecord struct {
	ID         uuid.UUID
	ComputedAt string
	Payload    []byte
	CreatedAt  time.Time
}

// AssetHistoryRow is an asset snapshot joined with its timestamp's wallet total
type AssetHistoryRow struct {
	AssetSnapshot
	TotalValue float64 `json:"-"`
}

// HistoryLevel selects one of the four snapshot kinds
type HistoryLevel string

const (
	LevelAssets HistoryLevel = "assets"
	LevelGroups HistoryLevel = "groups"
	LevelBucket HistoryLevel = "barca"
	LevelTotals HistoryLevel = "totals"
)

// ParseHistoryLevel accepts the four level names plus "bucket" as an alias of "barca"
func ParseHistoryLevel(s string) (HistoryLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "assets", "asset":
		return LevelAssets, nil
	case "groups", "group":
		return LevelGroups, nil
	case "barca", "bucket", "buckets":
		return LevelBucket, nil
	case "totals", "total":
		return LevelTotals, nil
	}
	return "", fmt.Errorf("%w: unknown history level %q", ErrValidation, s)
}

// TimeRange bounds a history query. Nil bounds impose no filter; both bounds
// are inclusive.
type TimeRange struct {
	From *string
	To   *string
}
