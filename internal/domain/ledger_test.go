package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func ptr[T any](v T) *T { return &v }

func TestLedgerEntry_Validate(t *testing.T) {
	tests := []struct {
		name    string
		entry   LedgerEntry
		wantErr bool
		errMsg  string
	}{
		{
			name:    "Empty symbol should fail",
			entry:   LedgerEntry{Symbol: "  "},
			wantErr: true,
			errMsg:  "symbol cannot be empty",
		},
		{
			name:  "Symbol only should pass",
			entry: LedgerEntry{Symbol: "BTC"},
		},
		{
			name: "Full row should pass",
			entry: LedgerEntry{
				Symbol:          "ETH",
				Group:           ptr("Core"),
				Bucket:          ptr("Base"),
				TargetPercent:   ptr(25.0),
				CurrentQuantity: ptr(3.5),
				LastPrice:       ptr(2100.0),
				Notes:           ptr("cold wallet"),
			},
		},
		{
			name:    "Target above 100 should fail",
			entry:   LedgerEntry{Symbol: "BTC", TargetPercent: ptr(120.0)},
			wantErr: true,
			errMsg:  "target_percent must be between 0 and 100",
		},
		{
			name:    "Negative target should fail",
			entry:   LedgerEntry{Symbol: "BTC", TargetPercent: ptr(-1.0)},
			wantErr: true,
			errMsg:  "target_percent must be between 0 and 100",
		},
		{
			name:    "Negative quantity should fail",
			entry:   LedgerEntry{Symbol: "BTC", CurrentQuantity: ptr(-0.5)},
			wantErr: true,
			errMsg:  "current_quantity cannot be negative",
		},
		{
			name:    "Negative last price should fail",
			entry:   LedgerEntry{Symbol: "BTC", LastPrice: ptr(-3.0)},
			wantErr: true,
			errMsg:  "last_price cannot be negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.entry.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				assert.True(t, errors.Is(err, ErrValidation))
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLedgerEntry_Accessors(t *testing.T) {
	empty := LedgerEntry{Symbol: "SOL"}
	assert.Equal(t, "", empty.GroupName())
	assert.Equal(t, "", empty.BucketName())
	assert.Equal(t, 0.0, empty.Quantity())
	assert.Equal(t, 0.0, empty.Target())

	full := LedgerEntry{Symbol: "SOL", Group: ptr("Alt"), Bucket: ptr("Growth"), CurrentQuantity: ptr(10.0), TargetPercent: ptr(5.0)}
	assert.Equal(t, "Alt", full.GroupName())
	assert.Equal(t, "Growth", full.BucketName())
	assert.Equal(t, 10.0, full.Quantity())
	assert.Equal(t, 5.0, full.Target())
}

func TestParseHistoryLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    HistoryLevel
		wantErr bool
	}{
		{input: "assets", want: LevelAssets},
		{input: "Groups", want: LevelGroups},
		{input: "barca", want: LevelBucket},
		{input: "bucket", want: LevelBucket},
		{input: " totals ", want: LevelTotals},
		{input: "weekly", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseHistoryLevel(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrValidation)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestUpstreamError(t *testing.T) {
	cause := errors.New("connection refused")
	err := fmt.Errorf("failed to fetch quotes: %w", &UpstreamError{Kind: UpstreamTransport, Err: cause})

	assert.True(t, IsUpstream(err))
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "upstream transport error")

	statusErr := &UpstreamError{Kind: UpstreamStatus, StatusCode: 429, Err: errors.New("rate limited")}
	assert.Contains(t, statusErr.Error(), "status 429")

	assert.False(t, IsUpstream(errors.New("plain")))
}

func TestPercent(t *testing.T) {
	assert.Equal(t, 0.0, Percent(50, 0))
	assert.Equal(t, 0.0, Percent(50, -1))
	assert.InDelta(t, 25.0, Percent(25, 100), 1e-9)
}
