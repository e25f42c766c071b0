package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simaogato/wealthflow-allocator/internal/domain"
)

func TestFormatUSD(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{in: 0, want: "$0.00"},
		{in: 38000, want: "$38,000.00"},
		{in: 1234.567, want: "$1,234.57"},
		{in: 0.004, want: "$0.00"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, formatUSD(tt.in))
		})
	}
}

func TestFormatPercent(t *testing.T) {
	assert.Equal(t, "12.35%", formatPercent(12.345678))
	assert.Equal(t, "-5.00%", formatPercent(-5))
}

func TestRenderReport(t *testing.T) {
	report := domain.Report{
		PerAsset: []domain.PerAsset{
			{Symbol: "BTC", Group: "Core", Bucket: "Base", CurrentQuantity: 0.5, Price: 64000, Value: 32000, CurrentPercent: 84.21, TargetPercent: 60},
		},
		PerGroup:   []domain.PerGroup{{Group: "Core", Value: 32000, CurrentPercent: 100}},
		PerBucket:  []domain.PerBucket{{Bucket: "Base", Value: 32000, TargetPercent: 70, CurrentPercent: 84.21, Deviation: 14.21}},
		TotalValue: 38000,
		Skipped:    []string{"DOGE"},
	}

	md := renderReport("Allocation", report)

	assert.Contains(t, md, "# Allocation")
	assert.Contains(t, md, "**Total value:** $38,000.00")
	assert.Contains(t, md, "| Base | $32,000.00 | 84.21% | 70.00% | 14.21% |")
	assert.Contains(t, md, "| BTC | Core | Base | 0.5 | $64,000.00 | $32,000.00 |")
	assert.Contains(t, md, "_No market data for: DOGE_")
}

func TestPrintMarkdown_Raw(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, printMarkdown(&buf, "# Title\n", true))

	assert.Equal(t, "# Title\n", buf.String())
}
