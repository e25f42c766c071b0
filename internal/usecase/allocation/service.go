package allocation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/simaogato/wealthflow-allocator/internal/domain"
	"github.com/simaogato/wealthflow-allocator/internal/metrics"
	"github.com/simaogato/wealthflow-allocator/internal/usecase/allocator"
	"github.com/simaogato/wealthflow-allocator/internal/usecase/snapshot"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Settings are the read-only inputs of a computation
type Settings struct {
	APIKey        string
	MarketContext string
}

// AllocationService runs the compute-and-persist cycle
type AllocationService struct {
	Provider   domain.PriceProvider
	Targets    domain.TargetLoader
	LedgerRepo domain.LedgerRepository
	RecordRepo domain.AllocationRecordRepository
	Writer     *snapshot.Writer

	settings Settings
	logger   *zap.Logger
}

// NewAllocationService creates a new AllocationService instance
func NewAllocationService(
	provider domain.PriceProvider,
	targets domain.TargetLoader,
	ledgerRepo domain.LedgerRepository,
	recordRepo domain.AllocationRecordRepository,
	writer *snapshot.Writer,
	settings Settings,
	logger *zap.Logger,
) *AllocationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AllocationService{
		Provider:   provider,
		Targets:    targets,
		LedgerRepo: ledgerRepo,
		RecordRepo: recordRepo,
		Writer:     writer,
		settings:   settings,
		logger:     logger.Named("AllocationService"),
	}
}

// ComputeAndRecord fetches quotes, aggregates the current ledger against them
// and persists the result.
// Logic:
//  1. Load bucket targets for the active market context (empty = configuration error)
//  2. Fetch the latest quotes (upstream errors are returned as is)
//  3. Load the current ledger and aggregate
//  4. Persist history rows best-effort, then the audit record
//
// Persistence failures are logged; the report is still returned.
func (s *AllocationService) ComputeAndRecord(ctx context.Context) (domain.Report, error) {
	start := time.Now()
	defer func() { metrics.ComputeDuration.Observe(time.Since(start).Seconds()) }()

	report, err := s.compute(ctx)
	if err != nil {
		metrics.Computations.WithLabelValues(resultLabel(err)).Inc()
		return domain.Report{}, err
	}

	computedAt := time.Now()
	res := s.Writer.Persist(ctx, computedAt, report)

	if err := s.record(ctx, computedAt, report); err != nil {
		s.logger.Error("Failed to persist allocation record", zap.Error(err))
	}

	metrics.Computations.WithLabelValues("ok").Inc()
	s.logger.Info("Allocation computed",
		zap.Float64("totalValue", report.TotalValue),
		zap.Int("assets", len(report.PerAsset)),
		zap.Int("skipped", len(report.Skipped)),
		zap.Int("snapshotRows", res.Written),
		zap.Int("snapshotFailures", res.Failed))

	return report, nil
}

func (s *AllocationService) compute(ctx context.Context) (domain.Report, error) {
	if strings.TrimSpace(s.settings.APIKey) == "" {
		return domain.Report{}, fmt.Errorf("%w: price provider API key is not set", domain.ErrConfiguration)
	}

	// Step 1: bucket targets
	targets, err := s.Targets.Load(ctx, s.settings.MarketContext)
	if err != nil {
		return domain.Report{}, fmt.Errorf("failed to load bucket targets: %w", err)
	}

	// Step 2: quotes
	quotes, err := s.Provider.FetchLatest(ctx, s.settings.APIKey)
	if err != nil {
		return domain.Report{}, fmt.Errorf("failed to fetch quotes: %w", err)
	}

	// Step 3: ledger + aggregation
	ledger, err := s.LedgerRepo.Current(ctx)
	if err != nil {
		return domain.Report{}, fmt.Errorf("failed to load wallet allocations: %w", err)
	}

	report := allocator.Aggregate(ledger, allocator.BuildIndex(quotes), targets)

	if len(report.Skipped) > 0 {
		metrics.SkippedSymbols.Add(float64(len(report.Skipped)))
		s.logger.Debug("Ledger symbols without market data", zap.Strings("symbols", report.Skipped))
	}

	return report, nil
}

func (s *AllocationService) record(ctx context.Context, computedAt time.Time, report domain.Report) error {
	payload, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to encode allocation payload: %w", err)
	}

	rec := &domain.AllocationRecord{
		ID:         uuid.New(),
		ComputedAt: domain.FormatTimestamp(computedAt),
		Payload:    payload,
		CreatedAt:  time.Now().UTC(),
	}
	return s.RecordRepo.Create(ctx, rec)
}

// Latest returns the most recently recorded report without recomputing it
func (s *AllocationService) Latest(ctx context.Context) (*domain.AllocationRecord, domain.Report, error) {
	rec, err := s.RecordRepo.Latest(ctx)
	if err != nil {
		return nil, domain.Report{}, err
	}

	var report domain.Report
	if err := json.Unmarshal(rec.Payload, &report); err != nil {
		return nil, domain.Report{}, fmt.Errorf("failed to decode allocation payload: %w", err)
	}
	return rec, report, nil
}

func resultLabel(err error) string {
	switch {
	case domain.IsUpstream(err):
		return "upstream_error"
	case errors.Is(err, domain.ErrConfiguration):
		return "config_error"
	default:
		return "error"
	}
}
