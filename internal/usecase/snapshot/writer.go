package snapshot

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/simaogato/wealthflow-allocator/internal/domain"
	"github.com/simaogato/wealthflow-allocator/internal/metrics"
)

// Result summarizes one Persist call
type Result struct {
	Written int
	Failed  int
}

// Writer turns a report into history rows
type Writer struct {
	HistoryRepo domain.HistoryRepository
	logger      *zap.Logger
}

// NewWriter creates a new Writer instance
func NewWriter(historyRepo domain.HistoryRepository, logger *zap.Logger) *Writer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Writer{
		HistoryRepo: historyRepo,
		logger:      logger.Named("SnapshotWriter"),
	}
}

// Persist records every row of the report at ts. Each insert is independent:
// a failed row is logged and counted, and the remaining rows are still
// written. Dimension rows already present for ts are left untouched; the
// total for ts is replaced.
func (w *Writer) Persist(ctx context.Context, ts time.Time, report domain.Report) Result {
	stamp := domain.FormatTimestamp(ts)
	var res Result

	record := func(level string, err error, fields ...zap.Field) {
		if err != nil {
			res.Failed++
			metrics.SnapshotWrites.WithLabelValues(level, "error").Inc()
			w.logger.Error("Failed to insert snapshot row",
				append(fields, zap.String("level", level), zap.String("timestamp", stamp), zap.Error(err))...)
			return
		}
		res.Written++
		metrics.SnapshotWrites.WithLabelValues(level, "ok").Inc()
	}

	for _, a := range report.PerAsset {
		snap := &domain.AssetSnapshot{
			Timestamp:        stamp,
			Symbol:           a.Symbol,
			Group:            a.Group,
			Bucket:           a.Bucket,
			Price:            a.Price,
			CurrentQuantity:  a.CurrentQuantity,
			Value:            a.Value,
			TargetPercent:    a.TargetPercent,
			CurrentPercent:   a.CurrentPercent,
			MarketCap:        a.MarketCap,
			FDV:              a.FDV,
			Volume24h:        a.Volume24h,
			PercentChange24h: a.PercentChange24h,
			PercentChange7d:  a.PercentChange7d,
		}
		record(string(domain.LevelAssets), w.HistoryRepo.InsertAsset(ctx, snap), zap.String("symbol", a.Symbol))
	}

	for _, g := range report.PerGroup {
		snap := &domain.GroupSnapshot{
			Timestamp:      stamp,
			Group:          g.Group,
			Value:          g.Value,
			CurrentPercent: g.CurrentPercent,
			TargetPercent:  g.TargetPercent,
		}
		record(string(domain.LevelGroups), w.HistoryRepo.InsertGroup(ctx, snap), zap.String("group", g.Group))
	}

	for _, b := range report.PerBucket {
		snap := &domain.BucketSnapshot{
			Timestamp:      stamp,
			Bucket:         b.Bucket,
			Value:          b.Value,
			CurrentPercent: b.CurrentPercent,
			TargetPercent:  b.TargetPercent,
		}
		record(string(domain.LevelBucket), w.HistoryRepo.InsertBucket(ctx, snap), zap.String("barca", b.Bucket))
	}

	total := &domain.TotalSnapshot{Timestamp: stamp, TotalValue: report.TotalValue}
	record(string(domain.LevelTotals), w.HistoryRepo.UpsertTotal(ctx, total))

	if res.Failed > 0 {
		w.logger.Warn("Snapshot persisted with failures",
			zap.String("timestamp", stamp),
			zap.Int("written", res.Written),
			zap.Int("failed", res.Failed))
	}

	return res
}
