package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/charmbracelet/glamour"
	"github.com/shopspring/decimal"

	"github.com/simaogato/wealthflow-allocator/internal/domain"
)

// formatUSD displays v as dollars with thousands separators, rounded to cents
func formatUSD(v float64) string {
	cents := decimal.NewFromFloat(v).Shift(2).Round(0).IntPart()
	return money.New(cents, money.USD).Display()
}

func formatPercent(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2) + "%"
}

// renderReport renders a report as a markdown document
func renderReport(title string, r domain.Report) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", title)
	fmt.Fprintf(&b, "**Total value:** %s\n\n", formatUSD(r.TotalValue))

	b.WriteString("## Buckets\n\n")
	b.WriteString("| Bucket | Value | Current | Target | Deviation |\n")
	b.WriteString("|---|---:|---:|---:|---:|\n")
	for _, row := range r.PerBucket {
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s |\n",
			row.Bucket, formatUSD(row.Value), formatPercent(row.CurrentPercent),
			formatPercent(row.TargetPercent), formatPercent(row.Deviation))
	}

	b.WriteString("\n## Groups\n\n")
	b.WriteString("| Group | Value | Current | Target | Deviation |\n")
	b.WriteString("|---|---:|---:|---:|---:|\n")
	for _, row := range r.PerGroup {
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s |\n",
			row.Group, formatUSD(row.Value), formatPercent(row.CurrentPercent),
			formatPercent(row.TargetPercent), formatPercent(row.Deviation))
	}

	b.WriteString("\n## Assets\n\n")
	b.WriteString("| Symbol | Group | Bucket | Quantity | Price | Value | Current | Target | 24h |\n")
	b.WriteString("|---|---|---|---:|---:|---:|---:|---:|---:|\n")
	for _, row := range r.PerAsset {
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s | %s | %s | %s |\n",
			row.Symbol, row.Group, row.Bucket,
			decimal.NewFromFloat(row.CurrentQuantity).String(),
			formatUSD(row.Price), formatUSD(row.Value),
			formatPercent(row.CurrentPercent), formatPercent(row.TargetPercent),
			formatPercent(row.PercentChange24h))
	}

	if len(r.Skipped) > 0 {
		fmt.Fprintf(&b, "\n_No market data for: %s_\n", strings.Join(r.Skipped, ", "))
	}
	return b.String()
}

// printMarkdown writes md to w, styled for the terminal unless raw is set
func printMarkdown(w io.Writer, md string, raw bool) error {
	if raw {
		_, err := io.WriteString(w, md)
		return err
	}

	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(120))
	if err != nil {
		return err
	}
	out, err := r.Render(md)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, out)
	return err
}
