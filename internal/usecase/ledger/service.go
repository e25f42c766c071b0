package ledger

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/simaogato/wealthflow-allocator/internal/domain"
	"github.com/simaogato/wealthflow-allocator/internal/metrics"
)

// LedgerService handles the append-only wallet allocation ledger
type LedgerService struct {
	LedgerRepo domain.LedgerRepository
	logger     *zap.Logger
}

// NewLedgerService creates a new LedgerService instance
func NewLedgerService(ledgerRepo domain.LedgerRepository, logger *zap.Logger) *LedgerService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LedgerService{
		LedgerRepo: ledgerRepo,
		logger:     logger.Named("LedgerService"),
	}
}

// Import parses the whole file before writing anything, then appends every
// row in one batch stamped with a single created_at. Importing the same file
// twice appends the rows twice.
func (s *LedgerService) Import(ctx context.Context, r io.Reader) (int, error) {
	entries, err := ParseCSV(r)
	if err != nil {
		return 0, err
	}
	if len(entries) == 0 {
		return 0, nil
	}

	createdAt := time.Now().UTC()
	for _, e := range entries {
		e.ID = uuid.New()
		e.CreatedAt = createdAt
	}

	if err := s.LedgerRepo.InsertBatch(ctx, entries); err != nil {
		return 0, err
	}

	metrics.LedgerImported.Add(float64(len(entries)))
	s.logger.Info("Ledger rows imported", zap.Int("count", len(entries)))

	return len(entries), nil
}

// ImportFile opens path and imports it
func (s *LedgerService) ImportFile(ctx context.Context, path string) (int, error) {
	if strings.TrimSpace(path) == "" {
		return 0, fmt.Errorf("%w: import path cannot be empty", domain.ErrValidation)
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, fmt.Errorf("%w: import file %s", domain.ErrNotFound, path)
		}
		return 0, fmt.Errorf("failed to open import file: %w", err)
	}
	defer f.Close()

	n, err := s.Import(ctx, f)
	if err != nil {
		return 0, fmt.Errorf("failed to import %s: %w", path, err)
	}
	return n, nil
}

// Current returns the current holdings
func (s *LedgerService) Current(ctx context.Context) ([]*domain.LedgerEntry, error) {
	return s.LedgerRepo.Current(ctx)
}

// SymbolHistory returns every ledger row for a symbol, newest first
func (s *LedgerService) SymbolHistory(ctx context.Context, symbol string) ([]*domain.LedgerEntry, error) {
	symbol = strings.TrimSpace(symbol)
	if symbol == "" {
		return nil, fmt.Errorf("%w: symbol cannot be empty", domain.ErrValidation)
	}

	entries, err := s.LedgerRepo.BySymbol(ctx, symbol)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: no ledger rows for symbol %s", domain.ErrNotFound, symbol)
	}
	return entries, nil
}
