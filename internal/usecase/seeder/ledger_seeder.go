package seeder

import (
	"context"
	"errors"
	"os"

	"go.uber.org/zap"

	"github.com/simaogato/wealthflow-allocator/internal/domain"
)

// LedgerImporter is the part of the ledger service the seeder needs
type LedgerImporter interface {
	ImportFile(ctx context.Context, path string) (int, error)
}

// LedgerSeeder loads the wallet allocation file into an empty ledger at startup
type LedgerSeeder struct {
	repo     domain.LedgerRepository
	importer LedgerImporter
	path     string
	logger   *zap.Logger
}

// NewLedgerSeeder creates a new LedgerSeeder instance
func NewLedgerSeeder(repo domain.LedgerRepository, importer LedgerImporter, path string, logger *zap.Logger) *LedgerSeeder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LedgerSeeder{
		repo:     repo,
		importer: importer,
		path:     path,
		logger:   logger.Named("LedgerSeeder"),
	}
}

// Seed imports the configured file when the ledger holds no rows.
// A ledger that already has rows, or a missing file, is left untouched.
// Returns the number of rows imported.
func (s *LedgerSeeder) Seed(ctx context.Context) (int, error) {
	if s.path == "" {
		return 0, nil
	}

	count, err := s.repo.Count(ctx)
	if err != nil {
		return 0, err
	}
	if count > 0 {
		s.logger.Debug("Ledger already populated, skipping seed", zap.Int("rows", count))
		return 0, nil
	}

	if _, err := os.Stat(s.path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.logger.Info("No wallet allocation file to seed from", zap.String("path", s.path))
			return 0, nil
		}
		return 0, err
	}

	n, err := s.importer.ImportFile(ctx, s.path)
	if err != nil {
		return 0, err
	}

	s.logger.Info("Ledger seeded", zap.String("path", s.path), zap.Int("rows", n))
	return n, nil
}
