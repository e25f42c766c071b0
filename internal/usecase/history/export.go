package history

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"

	"github.com/shopspring/decimal"

	"github.com/simaogato/wealthflow-allocator/internal/domain"
)

// Display precision for exported figures
const (
	pricePlaces   = 8
	valuePlaces   = 2
	percentPlaces = 4
)

func round(v float64, places int32) string {
	return decimal.NewFromFloat(v).Round(places).String()
}

// Export writes the rows of a level as CSV with a header row
func (s *HistoryService) Export(ctx context.Context, w io.Writer, level, from, to string) (int, error) {
	res, err := s.Fetch(ctx, level, from, to)
	if err != nil {
		return 0, err
	}

	header, records := res.Table()

	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return 0, fmt.Errorf("failed to write csv header: %w", err)
	}
	if err := cw.WriteAll(records); err != nil {
		return 0, fmt.Errorf("failed to write csv rows: %w", err)
	}

	return len(records), nil
}

// Table flattens the result into a header and string records
func (r *Result) Table() ([]string, [][]string) {
	var header []string
	var records [][]string

	switch r.Level {
	case domain.LevelAssets:
		header = []string{"timestamp", "symbol", "group", "barca", "current_quantity", "price", "value",
			"target_percent", "current_percent", "deviation_percent", "value_deviation"}
		for _, a := range r.Assets {
			records = append(records, []string{
				a.Timestamp, a.Symbol, a.Group, a.Bucket,
				round(a.CurrentQuantity, pricePlaces),
				round(a.Price, pricePlaces),
				round(a.Value, valuePlaces),
				round(a.TargetPercent, percentPlaces),
				round(a.CurrentPercent, percentPlaces),
				round(a.DeviationPercent, percentPlaces),
				round(a.ValueDeviation, valuePlaces),
			})
		}

	case domain.LevelGroups:
		header = []string{"timestamp", "group", "value", "current_percent", "target_percent", "deviation_percent"}
		for _, g := range r.Groups {
			records = append(records, []string{
				g.Timestamp, g.Group,
				round(g.Value, valuePlaces),
				round(g.CurrentPercent, percentPlaces),
				round(g.TargetPercent, percentPlaces),
				round(g.DeviationPercent, percentPlaces),
			})
		}

	case domain.LevelBucket:
		header = []string{"timestamp", "barca", "value", "current_percent", "target_percent", "deviation_percent"}
		for _, b := range r.Buckets {
			records = append(records, []string{
				b.Timestamp, b.Bucket,
				round(b.Value, valuePlaces),
				round(b.CurrentPercent, percentPlaces),
				round(b.TargetPercent, percentPlaces),
				round(b.DeviationPercent, percentPlaces),
			})
		}

	default:
		header = []string{"timestamp", "total_value"}
		for _, t := range r.Totals {
			records = append(records, []string{t.Timestamp, round(t.TotalValue, valuePlaces)})
		}
	}

	return header, records
}
