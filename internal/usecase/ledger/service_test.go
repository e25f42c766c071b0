package ledger

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/simaogato/wealthflow-allocator/internal/domain"
)

// MockLedgerRepository is a mock implementation of LedgerRepository for testing
type MockLedgerRepository struct {
	mock.Mock
}

func (m *MockLedgerRepository) InsertBatch(ctx context.Context, entries []*domain.LedgerEntry) error {
	args := m.Called(ctx, entries)
	return args.Error(0)
}

func (m *MockLedgerRepository) Current(ctx context.Context) ([]*domain.LedgerEntry, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.LedgerEntry), args.Error(1)
}

func (m *MockLedgerRepository) BySymbol(ctx context.Context, symbol string) ([]*domain.LedgerEntry, error) {
	args := m.Called(ctx, symbol)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.LedgerEntry), args.Error(1)
}

func (m *MockLedgerRepository) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

const walletCSV = `symbol, group, barca, target_percent, current_quantity, last_price, comments
BTC, Core, Base, 40, 0.5, "64,000.50", cold storage
ETH,Core,Growth,20,3
  SOL  ,Alt,,
`

func TestParseCSV_TrimmedAndFlexible(t *testing.T) {
	entries, err := ParseCSV(strings.NewReader(walletCSV))

	require.NoError(t, err)
	require.Len(t, entries, 3)

	btc := entries[0]
	assert.Equal(t, "BTC", btc.Symbol)
	assert.Equal(t, "Core", btc.GroupName())
	assert.Equal(t, "Base", btc.BucketName())
	assert.Equal(t, 40.0, *btc.TargetPercent)
	assert.Equal(t, 0.5, *btc.CurrentQuantity)
	assert.Equal(t, 64000.5, *btc.LastPrice)
	assert.Equal(t, "cold storage", *btc.Notes)

	// Short row: missing trailing columns are nil
	eth := entries[1]
	assert.Equal(t, 3.0, *eth.CurrentQuantity)
	assert.Nil(t, eth.LastPrice)
	assert.Nil(t, eth.Notes)

	sol := entries[2]
	assert.Equal(t, "SOL", sol.Symbol)
	assert.Nil(t, sol.Bucket)
	assert.Nil(t, sol.TargetPercent)
}

func TestParseCSV_Errors(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		errMsg string
	}{
		{
			name:   "Empty file",
			input:  "",
			errMsg: "header row is required",
		},
		{
			name:   "Missing symbol column",
			input:  "group,barca\nCore,Base\n",
			errMsg: "header must contain a symbol column",
		},
		{
			name:   "Non numeric quantity",
			input:  "symbol,current_quantity\nBTC,1\nETH,lots\n",
			errMsg: "line 3",
		},
		{
			name:   "Empty symbol",
			input:  "symbol,current_quantity\n,1\n",
			errMsg: "symbol cannot be empty",
		},
		{
			name:   "Target out of range",
			input:  "symbol,target_percent\nBTC,150\n",
			errMsg: "target_percent must be between 0 and 100",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries, err := ParseCSV(strings.NewReader(tt.input))

			assert.Nil(t, entries)
			assert.ErrorIs(t, err, domain.ErrValidation)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestImport_SharedCreatedAt(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockLedgerRepository)
	service := NewLedgerService(mockRepo, nil)

	// Setup
	mockRepo.On("InsertBatch", ctx, mock.MatchedBy(func(entries []*domain.LedgerEntry) bool {
		if len(entries) != 3 {
			return false
		}
		ids := make(map[string]bool)
		for _, e := range entries {
			if !e.CreatedAt.Equal(entries[0].CreatedAt) {
				return false
			}
			ids[e.ID.String()] = true
		}
		return len(ids) == 3 && !entries[0].CreatedAt.IsZero()
	})).Return(nil).Once()

	// Execute
	n, err := service.Import(ctx, strings.NewReader(walletCSV))

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	mockRepo.AssertExpectations(t)
}

func TestImport_BadRowWritesNothing(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockLedgerRepository)
	service := NewLedgerService(mockRepo, nil)

	n, err := service.Import(ctx, strings.NewReader("symbol,current_quantity\nBTC,1\nETH,abc\n"))

	assert.Error(t, err)
	assert.Equal(t, 0, n)
	mockRepo.AssertNotCalled(t, "InsertBatch", mock.Anything, mock.Anything)
}

func TestImport_RepositoryFailure(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockLedgerRepository)
	service := NewLedgerService(mockRepo, nil)

	mockRepo.On("InsertBatch", ctx, mock.Anything).Return(errors.New("failed to commit ledger import")).Once()

	n, err := service.Import(ctx, strings.NewReader("symbol\nBTC\n"))

	assert.Error(t, err)
	assert.Equal(t, 0, n)
	mockRepo.AssertExpectations(t)
}

func TestImportFile(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockLedgerRepository)
	service := NewLedgerService(mockRepo, nil)

	path := filepath.Join(t.TempDir(), "wallet.csv")
	require.NoError(t, os.WriteFile(path, []byte(walletCSV), 0o600))

	mockRepo.On("InsertBatch", ctx, mock.Anything).Return(nil).Once()

	n, err := service.ImportFile(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	_, err = service.ImportFile(ctx, filepath.Join(t.TempDir(), "missing.csv"))
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = service.ImportFile(ctx, " ")
	assert.ErrorIs(t, err, domain.ErrValidation)
	mockRepo.AssertExpectations(t)
}

func TestSymbolHistory(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockLedgerRepository)
	service := NewLedgerService(mockRepo, nil)

	rows := []*domain.LedgerEntry{{Symbol: "BTC"}, {Symbol: "BTC"}}
	mockRepo.On("BySymbol", ctx, "BTC").Return(rows, nil)
	mockRepo.On("BySymbol", ctx, "XRP").Return([]*domain.LedgerEntry{}, nil)

	got, err := service.SymbolHistory(ctx, " BTC ")
	require.NoError(t, err)
	assert.Len(t, got, 2)

	_, err = service.SymbolHistory(ctx, "XRP")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = service.SymbolHistory(ctx, "")
	assert.ErrorIs(t, err, domain.ErrValidation)
	mockRepo.AssertExpectations(t)
}
