package snapshot

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/simaogato/wealthflow-allocator/internal/domain"
)

// MockHistoryRepository is a mock implementation of HistoryRepository for testing
type MockHistoryRepository struct {
	mock.Mock
}

func (m *MockHistoryRepository) InsertAsset(ctx context.Context, snap *domain.AssetSnapshot) error {
	args := m.Called(ctx, snap)
	return args.Error(0)
}

func (m *MockHistoryRepository) InsertGroup(ctx context.Context, snap *domain.GroupSnapshot) error {
	args := m.Called(ctx, snap)
	return args.Error(0)
}

func (m *MockHistoryRepository) InsertBucket(ctx context.Context, snap *domain.BucketSnapshot) error {
	args := m.Called(ctx, snap)
	return args.Error(0)
}

func (m *MockHistoryRepository) UpsertTotal(ctx context.Context, snap *domain.TotalSnapshot) error {
	args := m.Called(ctx, snap)
	return args.Error(0)
}

func (m *MockHistoryRepository) FetchAssets(ctx context.Context, r domain.TimeRange) ([]*domain.AssetHistoryRow, error) {
	args := m.Called(ctx, r)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.AssetHistoryRow), args.Error(1)
}

func (m *MockHistoryRepository) FetchGroups(ctx context.Context, r domain.TimeRange) ([]*domain.GroupSnapshot, error) {
	args := m.Called(ctx, r)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.GroupSnapshot), args.Error(1)
}

func (m *MockHistoryRepository) FetchBuckets(ctx context.Context, r domain.TimeRange) ([]*domain.BucketSnapshot, error) {
	args := m.Called(ctx, r)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.BucketSnapshot), args.Error(1)
}

func (m *MockHistoryRepository) FetchTotals(ctx context.Context, r domain.TimeRange) ([]*domain.TotalSnapshot, error) {
	args := m.Called(ctx, r)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.TotalSnapshot), args.Error(1)
}

func sampleReport() domain.Report {
	return domain.Report{
		PerAsset: []domain.PerAsset{
			{Symbol: "BTC", Group: "Core", Bucket: "Base", Price: 40000, CurrentQuantity: 1, Value: 40000, TargetPercent: 60, CurrentPercent: 80, Deviation: 20, MarketCap: 7.8e11},
			{Symbol: "ETH", Group: "Core", Bucket: "Growth", Price: 2000, CurrentQuantity: 5, Value: 10000, TargetPercent: 40, CurrentPercent: 20, Deviation: -20},
		},
		PerGroup: []domain.PerGroup{
			{Group: "Core", Value: 50000, TargetPercent: 100, CurrentPercent: 100},
		},
		PerBucket: []domain.PerBucket{
			{Bucket: "Base", Value: 40000, TargetPercent: 50, CurrentPercent: 80, Deviation: 30},
			{Bucket: "Growth", Value: 10000, TargetPercent: 50, CurrentPercent: 20, Deviation: -30},
		},
		TotalValue: 50000,
	}
}

func TestWriter_Persist_AllRows(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockHistoryRepository)
	writer := NewWriter(mockRepo, nil)

	ts := time.Date(2024, 5, 1, 12, 0, 0, 0, time.FixedZone("CEST", 2*3600))
	stamp := "2024-05-01T10:00:00Z"

	// Setup
	mockRepo.On("InsertAsset", ctx, mock.MatchedBy(func(s *domain.AssetSnapshot) bool {
		return s.Timestamp == stamp && (s.Symbol == "BTC" || s.Symbol == "ETH")
	})).Return(nil).Twice()
	mockRepo.On("InsertGroup", ctx, mock.MatchedBy(func(s *domain.GroupSnapshot) bool {
		return s.Timestamp == stamp && s.Group == "Core" && s.Value == 50000
	})).Return(nil).Once()
	mockRepo.On("InsertBucket", ctx, mock.MatchedBy(func(s *domain.BucketSnapshot) bool {
		return s.Timestamp == stamp
	})).Return(nil).Twice()
	mockRepo.On("UpsertTotal", ctx, &domain.TotalSnapshot{Timestamp: stamp, TotalValue: 50000}).Return(nil).Once()

	// Execute
	res := writer.Persist(ctx, ts, sampleReport())

	// Assert
	assert.Equal(t, Result{Written: 6, Failed: 0}, res)
	mockRepo.AssertExpectations(t)
}

func TestWriter_Persist_FailuresDoNotAbort(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockHistoryRepository)
	writer := NewWriter(mockRepo, nil)

	// Setup: BTC insert fails, everything else succeeds
	mockRepo.On("InsertAsset", ctx, mock.MatchedBy(func(s *domain.AssetSnapshot) bool { return s.Symbol == "BTC" })).
		Return(errors.New("disk full")).Once()
	mockRepo.On("InsertAsset", ctx, mock.MatchedBy(func(s *domain.AssetSnapshot) bool { return s.Symbol == "ETH" })).
		Return(nil).Once()
	mockRepo.On("InsertGroup", ctx, mock.Anything).Return(errors.New("locked")).Once()
	mockRepo.On("InsertBucket", ctx, mock.Anything).Return(nil).Twice()
	mockRepo.On("UpsertTotal", ctx, mock.Anything).Return(nil).Once()

	// Execute
	res := writer.Persist(ctx, time.Now(), sampleReport())

	// Assert: the batch ran to the end
	assert.Equal(t, 4, res.Written)
	assert.Equal(t, 2, res.Failed)
	mockRepo.AssertExpectations(t)
}

func TestWriter_Persist_EmptyReportStillRecordsTotal(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockHistoryRepository)
	writer := NewWriter(mockRepo, nil)

	mockRepo.On("UpsertTotal", ctx, mock.MatchedBy(func(s *domain.TotalSnapshot) bool { return s.TotalValue == 0 })).Return(nil).Once()

	res := writer.Persist(ctx, time.Now(), domain.Report{})

	assert.Equal(t, Result{Written: 1}, res)
	mockRepo.AssertNotCalled(t, "InsertAsset", mock.Anything, mock.Anything)
	mockRepo.AssertExpectations(t)
}
