package httpapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/simaogato/wealthflow-allocator/internal/domain"
	"github.com/simaogato/wealthflow-allocator/internal/usecase/history"
)

// MockAllocations is a mock implementation of AllocationComputer
type MockAllocations struct {
	mock.Mock
}

func (m *MockAllocations) ComputeAndRecord(ctx context.Context) (domain.Report, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.Report), args.Error(1)
}

func (m *MockAllocations) Latest(ctx context.Context) (*domain.AllocationRecord, domain.Report, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, domain.Report{}, args.Error(2)
	}
	return args.Get(0).(*domain.AllocationRecord), args.Get(1).(domain.Report), args.Error(2)
}

// MockHistory is a mock implementation of HistoryReader
type MockHistory struct {
	mock.Mock
}

func (m *MockHistory) Fetch(ctx context.Context, level, from, to string) (*history.Result, error) {
	args := m.Called(ctx, level, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*history.Result), args.Error(1)
}

func (m *MockHistory) Export(ctx context.Context, w io.Writer, level, from, to string) (int, error) {
	args := m.Called(ctx, w, level, from, to)
	if csv, ok := args.Get(0).(string); ok {
		_, _ = io.WriteString(w, csv)
	}
	return args.Int(1), args.Error(2)
}

// MockLedger is a mock implementation of LedgerManager
type MockLedger struct {
	mock.Mock
}

func (m *MockLedger) ImportFile(ctx context.Context, path string) (int, error) {
	args := m.Called(ctx, path)
	return args.Int(0), args.Error(1)
}

func (m *MockLedger) Current(ctx context.Context) ([]*domain.LedgerEntry, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.LedgerEntry), args.Error(1)
}

func (m *MockLedger) SymbolHistory(ctx context.Context, symbol string) ([]*domain.LedgerEntry, error) {
	args := m.Called(ctx, symbol)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.LedgerEntry), args.Error(1)
}

type testServer struct {
	allocations *MockAllocations
	history     *MockHistory
	ledger      *MockLedger
	router      *gin.Engine
}

func newTestServer() *testServer {
	gin.SetMode(gin.TestMode)
	s := &testServer{
		allocations: new(MockAllocations),
		history:     new(MockHistory),
		ledger:      new(MockLedger),
	}
	s.router = NewRouter(&Handler{Allocations: s.allocations, History: s.history, Ledger: s.ledger}, nil)
	return s
}

func (s *testServer) do(method, target, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func TestComputeAllocations(t *testing.T) {
	report := domain.Report{
		PerAsset:        []domain.PerAsset{{Symbol: "BTC", Group: "Core", Bucket: "Base", Value: 100, CurrentPercent: 100}},
		PerGroup:        []domain.PerGroup{{Group: "Core", Value: 100, CurrentPercent: 100}},
		PerBucket:       []domain.PerBucket{{Bucket: "Base", Value: 100, TargetPercent: 60, CurrentPercent: 100, Deviation: 40}},
		PerBucketActual: []domain.PerBucketActual{{Bucket: "Base", Value: 100, CurrentPercent: 100}},
		TotalValue:      100,
		Skipped:         []string{"PEPE"},
	}

	for _, path := range []string{"/allocations", "/api/allocations"} {
		t.Run(path, func(t *testing.T) {
			s := newTestServer()
			s.allocations.On("ComputeAndRecord", mock.Anything).Return(report, nil).Once()

			w := s.do(http.MethodGet, path, "")

			require.Equal(t, http.StatusOK, w.Code)
			body := w.Body.String()
			assert.Contains(t, body, `"per_asset":[{"symbol":"BTC"`)
			assert.Contains(t, body, `"per_barca":[{"barca":"Base"`)
			assert.Contains(t, body, `"per_barca_actual"`)
			assert.Contains(t, body, `"total_value":100`)
			assert.NotContains(t, body, "PEPE")
			s.allocations.AssertExpectations(t)
		})
	}
}

func TestComputeAllocations_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{
			name:       "Missing API key",
			err:        fmt.Errorf("%w: price provider API key is not set", domain.ErrConfiguration),
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "Empty target table",
			err:        fmt.Errorf("failed to load bucket targets: %w", fmt.Errorf("%w: no barca targets", domain.ErrConfiguration)),
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "Upstream status",
			err:        fmt.Errorf("failed to fetch quotes: %w", &domain.UpstreamError{Kind: domain.UpstreamStatus, StatusCode: 429, Err: errors.New("rate limited")}),
			wantStatus: http.StatusBadGateway,
		},
		{
			name:       "Storage failure",
			err:        errors.New("failed to query wallet allocations: disk I/O error"),
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer()
			s.allocations.On("ComputeAndRecord", mock.Anything).Return(domain.Report{}, tt.err)

			w := s.do(http.MethodGet, "/allocations", "")

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.JSONEq(t, fmt.Sprintf(`{"error":%q}`, tt.err.Error()), w.Body.String())
		})
	}
}

func TestLatestAllocation(t *testing.T) {
	s := newTestServer()
	s.allocations.On("Latest", mock.Anything).
		Return(&domain.AllocationRecord{ComputedAt: "2024-05-01T10:00:00Z"}, domain.Report{TotalValue: 42}, nil).Once()
	s.allocations.On("Latest", mock.Anything).
		Return(nil, domain.Report{}, fmt.Errorf("%w: no allocation has been recorded", domain.ErrNotFound)).Once()

	w := s.do(http.MethodGet, "/allocations/latest", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"computed_at":"2024-05-01T10:00:00Z"`)
	assert.Contains(t, w.Body.String(), `"total_value":42`)

	w = s.do(http.MethodGet, "/allocations/latest", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetHistory(t *testing.T) {
	s := newTestServer()
	res := &history.Result{
		Level:  domain.LevelTotals,
		Totals: []history.TotalRow{{Timestamp: "2024-01-01T00:00:00Z", TotalValue: 10}},
	}
	s.history.On("Fetch", mock.Anything, "totals", "2024-01-01", "2024-01-31").Return(res, nil)
	s.history.On("Fetch", mock.Anything, "weekly", "", "").
		Return(nil, fmt.Errorf("%w: unknown history level \"weekly\"", domain.ErrValidation))

	w := s.do(http.MethodGet, "/history?level=totals&from=2024-01-01&to=2024-01-31", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"level":"totals","rows":[{"timestamp":"2024-01-01T00:00:00Z","total_value":10}]}`, w.Body.String())

	w = s.do(http.MethodGet, "/history?level=weekly", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetHistory_DefaultsToTotals(t *testing.T) {
	s := newTestServer()
	s.history.On("Fetch", mock.Anything, "totals", "", "").
		Return(&history.Result{Level: domain.LevelTotals, Totals: []history.TotalRow{}}, nil)

	w := s.do(http.MethodGet, "/history", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"level":"totals","rows":[]}`, w.Body.String())
}

func TestExportHistory(t *testing.T) {
	s := newTestServer()
	s.history.On("Export", mock.Anything, mock.Anything, "groups", "", "").
		Return("timestamp,group\n2024-01-01T00:00:00Z,Core\n", 1, nil)
	s.history.On("Export", mock.Anything, mock.Anything, "assets", "bad", "").
		Return(nil, 0, fmt.Errorf("%w: invalid from bound", domain.ErrValidation))

	w := s.do(http.MethodGet, "/history/export?level=groups", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "history_groups.csv")
	assert.Equal(t, "timestamp,group\n2024-01-01T00:00:00Z,Core\n", w.Body.String())

	w = s.do(http.MethodGet, "/history/export?level=assets&from=bad", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"error"`)
}

func TestImportWallets(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		setup      func(m *MockLedger)
		wantStatus int
		wantBody   string
	}{
		{
			name: "Imported",
			body: `{"path":"wallet_allocations.csv"}`,
			setup: func(m *MockLedger) {
				m.On("ImportFile", mock.Anything, "wallet_allocations.csv").Return(3, nil)
			},
			wantStatus: http.StatusOK,
			wantBody:   `{"imported":3}`,
		},
		{
			name:       "Missing path",
			body:       `{}`,
			setup:      func(*MockLedger) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "Malformed body",
			body:       `{"path":`,
			setup:      func(*MockLedger) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "File not found",
			body: `{"path":"absent.csv"}`,
			setup: func(m *MockLedger) {
				m.On("ImportFile", mock.Anything, "absent.csv").Return(0, fmt.Errorf("%w: import file absent.csv", domain.ErrNotFound))
			},
			wantStatus: http.StatusNotFound,
		},
		{
			name: "Bad row",
			body: `{"path":"bad.csv"}`,
			setup: func(m *MockLedger) {
				m.On("ImportFile", mock.Anything, "bad.csv").Return(0, fmt.Errorf("%w: line 4: invalid number", domain.ErrValidation))
			},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer()
			tt.setup(s.ledger)

			w := s.do(http.MethodPost, "/import_wallets", tt.body)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantBody != "" {
				assert.JSONEq(t, tt.wantBody, w.Body.String())
			}
			s.ledger.AssertExpectations(t)
		})
	}
}

func TestWalletAllocations(t *testing.T) {
	s := newTestServer()
	id := uuid.MustParse("7b0c1f9e-2d5e-4a53-9c57-3f0f9a3b6a11")
	group := "Core"
	qty := 0.5
	created := time.Date(2024, 2, 1, 9, 30, 0, 0, time.UTC)
	entries := []*domain.LedgerEntry{{ID: id, Symbol: "BTC", Group: &group, CurrentQuantity: &qty, CreatedAt: created}}

	s.ledger.On("Current", mock.Anything).Return(entries, nil)
	s.ledger.On("SymbolHistory", mock.Anything, "BTC").Return(entries, nil)
	s.ledger.On("SymbolHistory", mock.Anything, "XRP").Return(nil, fmt.Errorf("%w: no ledger rows for symbol XRP", domain.ErrNotFound))

	want := `[{"id":"7b0c1f9e-2d5e-4a53-9c57-3f0f9a3b6a11","symbol":"BTC","group":"Core","barca":null,
		"target_percent":null,"current_quantity":0.5,"last_price":null,"notes":null,"created_at":"2024-02-01T09:30:00Z"}]`

	w := s.do(http.MethodGet, "/wallet_allocations", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, want, w.Body.String())

	w = s.do(http.MethodGet, "/wallet_allocations/BTC/history", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, want, w.Body.String())

	w = s.do(http.MethodGet, "/wallet_allocations/XRP/history", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHealthMetricsAndCORS(t *testing.T) {
	s := newTestServer()

	w := s.do(http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = s.do(http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("Origin", "http://dashboard.local")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
