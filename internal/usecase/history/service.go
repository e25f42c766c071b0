package history

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/simaogato/wealthflow-allocator/internal/domain"
)

// AssetRow is an asset snapshot with its deviation figures
type AssetRow struct {
	Timestamp        string  `json:"timestamp"`
	Symbol           string  `json:"symbol"`
	Group            string  `json:"group"`
	Bucket           string  `json:"barca"`
	CurrentQuantity  float64 `json:"current_quantity"`
	Price            float64 `json:"price"`
	Value            float64 `json:"value"`
	TargetPercent    float64 `json:"target_percent"`
	CurrentPercent   float64 `json:"current_percent"`
	DeviationPercent float64 `json:"deviation_percent"`
	ValueDeviation   float64 `json:"value_deviation"`
	MarketCap        float64 `json:"market_cap"`
	FDV              float64 `json:"fdv"`
	Volume24h        float64 `json:"volume_24h"`
	PercentChange24h float64 `json:"percent_change_24h"`
	PercentChange7d  float64 `json:"percent_change_7d"`
}

// GroupRow is a group snapshot with its deviation
type GroupRow struct {
	Timestamp        string  `json:"timestamp"`
	Group            string  `json:"group"`
	Value            float64 `json:"value"`
	CurrentPercent   float64 `json:"current_percent"`
	TargetPercent    float64 `json:"target_percent"`
	DeviationPercent float64 `json:"deviation_percent"`
}

// BucketRow is a bucket snapshot with its deviation
type BucketRow struct {
	Timestamp        string  `json:"timestamp"`
	Bucket           string  `json:"barca"`
	Value            float64 `json:"value"`
	CurrentPercent   float64 `json:"current_percent"`
	TargetPercent    float64 `json:"target_percent"`
	DeviationPercent float64 `json:"deviation_percent"`
}

// TotalRow is the wallet total at one timestamp
type TotalRow struct {
	Timestamp  string  `json:"timestamp"`
	TotalValue float64 `json:"total_value"`
}

// Result holds the rows of one level. Exactly one of the slices is set,
// matching Level.
type Result struct {
	Level   domain.HistoryLevel
	Assets  []AssetRow
	Groups  []GroupRow
	Buckets []BucketRow
	Totals  []TotalRow
}

// Rows returns the populated slice, for serialization
func (r *Result) Rows() any {
	switch r.Level {
	case domain.LevelAssets:
		return r.Assets
	case domain.LevelGroups:
		return r.Groups
	case domain.LevelBucket:
		return r.Buckets
	default:
		return r.Totals
	}
}

// Len returns the number of rows
func (r *Result) Len() int {
	return len(r.Assets) + len(r.Groups) + len(r.Buckets) + len(r.Totals)
}

// HistoryService reads back persisted snapshots
type HistoryService struct {
	HistoryRepo domain.HistoryRepository
}

// NewHistoryService creates a new HistoryService instance
func NewHistoryService(historyRepo domain.HistoryRepository) *HistoryService {
	return &HistoryService{
		HistoryRepo: historyRepo,
	}
}

// Fetch returns the rows of a level between from and to, both inclusive.
// Empty bounds impose no filter. Bounds accept RFC3339 or YYYY-MM-DD; a
// date-only upper bound covers the whole day.
func (s *HistoryService) Fetch(ctx context.Context, level, from, to string) (*Result, error) {
	lvl, err := domain.ParseHistoryLevel(level)
	if err != nil {
		return nil, err
	}

	r, err := ParseRange(from, to)
	if err != nil {
		return nil, err
	}

	res := &Result{Level: lvl}

	switch lvl {
	case domain.LevelAssets:
		rows, err := s.HistoryRepo.FetchAssets(ctx, r)
		if err != nil {
			return nil, err
		}
		res.Assets = make([]AssetRow, 0, len(rows))
		for _, row := range rows {
			res.Assets = append(res.Assets, toAssetRow(row))
		}

	case domain.LevelGroups:
		rows, err := s.HistoryRepo.FetchGroups(ctx, r)
		if err != nil {
			return nil, err
		}
		res.Groups = make([]GroupRow, 0, len(rows))
		for _, g := range rows {
			res.Groups = append(res.Groups, GroupRow{
				Timestamp:        g.Timestamp,
				Group:            g.Group,
				Value:            g.Value,
				CurrentPercent:   g.CurrentPercent,
				TargetPercent:    g.TargetPercent,
				DeviationPercent: g.CurrentPercent - g.TargetPercent,
			})
		}

	case domain.LevelBucket:
		rows, err := s.HistoryRepo.FetchBuckets(ctx, r)
		if err != nil {
			return nil, err
		}
		res.Buckets = make([]BucketRow, 0, len(rows))
		for _, b := range rows {
			res.Buckets = append(res.Buckets, BucketRow{
				Timestamp:        b.Timestamp,
				Bucket:           b.Bucket,
				Value:            b.Value,
				CurrentPercent:   b.CurrentPercent,
				TargetPercent:    b.TargetPercent,
				DeviationPercent: b.CurrentPercent - b.TargetPercent,
			})
		}

	case domain.LevelTotals:
		rows, err := s.HistoryRepo.FetchTotals(ctx, r)
		if err != nil {
			return nil, err
		}
		res.Totals = make([]TotalRow, 0, len(rows))
		for _, t := range rows {
			res.Totals = append(res.Totals, TotalRow{Timestamp: t.Timestamp, TotalValue: t.TotalValue})
		}
	}

	return res, nil
}

// toAssetRow derives the deviation figures the same way the engine does:
// deviation = current - target, and value deviation is the value above the
// target share of that timestamp's total.
func toAssetRow(row *domain.AssetHistoryRow) AssetRow {
	return AssetRow{
		Timestamp:        row.Timestamp,
		Symbol:           row.Symbol,
		Group:            row.Group,
		Bucket:           row.Bucket,
		CurrentQuantity:  row.CurrentQuantity,
		Price:            row.Price,
		Value:            row.Value,
		TargetPercent:    row.TargetPercent,
		CurrentPercent:   row.CurrentPercent,
		DeviationPercent: row.CurrentPercent - row.TargetPercent,
		ValueDeviation:   row.Value - row.TargetPercent/100*row.TotalValue,
		MarketCap:        row.MarketCap,
		FDV:              row.FDV,
		Volume24h:        row.Volume24h,
		PercentChange24h: row.PercentChange24h,
		PercentChange7d:  row.PercentChange7d,
	}
}

const dateLayout = "2006-01-02"

// ParseRange validates and normalizes history bounds to the persisted
// timestamp format
func ParseRange(from, to string) (domain.TimeRange, error) {
	var r domain.TimeRange

	if strings.TrimSpace(from) != "" {
		t, err := parseBound(from, false)
		if err != nil {
			return r, fmt.Errorf("%w: invalid from bound %q", domain.ErrValidation, from)
		}
		r.From = &t
	}

	if strings.TrimSpace(to) != "" {
		t, err := parseBound(to, true)
		if err != nil {
			return r, fmt.Errorf("%w: invalid to bound %q", domain.ErrValidation, to)
		}
		r.To = &t
	}

	if r.From != nil && r.To != nil && *r.From > *r.To {
		return r, fmt.Errorf("%w: from bound is after to bound", domain.ErrValidation)
	}

	return r, nil
}

func parseBound(s string, endOfDay bool) (string, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return domain.FormatTimestamp(t), nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return "", err
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Second)
	}
	return domain.FormatTimestamp(t), nil
}
