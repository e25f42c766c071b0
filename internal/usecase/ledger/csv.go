package ledger

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/simaogato/wealthflow-allocator/internal/domain"
)

// column aliases accepted in the import header
var columnAliases = map[string]string{
	"symbol":           "symbol",
	"group":            "group",
	"group_name":       "group",
	"barca":            "barca",
	"bucket":           "barca",
	"target_percent":   "target_percent",
	"current_quantity": "current_quantity",
	"quantity":         "current_quantity",
	"last_price":       "last_price",
	"notes":            "notes",
	"comments":         "notes",
}

// ParseCSV reads ledger rows from delimited text with a header row. Every
// row must parse and validate; the first failure aborts with its line.
func ParseCSV(r io.Reader) ([]*domain.LedgerEntry, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: import file is empty, a header row is required", domain.ErrValidation)
		}
		return nil, fmt.Errorf("%w: failed to read header: %v", domain.ErrValidation, err)
	}

	columns := make(map[string]int, len(header))
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if canonical, ok := columnAliases[name]; ok {
			if _, dup := columns[canonical]; !dup {
				columns[canonical] = i
			}
		}
	}
	if _, ok := columns["symbol"]; !ok {
		return nil, fmt.Errorf("%w: header must contain a symbol column", domain.ErrValidation)
	}

	var entries []*domain.LedgerEntry
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
		}
		line, _ := reader.FieldPos(0)

		if isBlank(record) {
			continue
		}

		entry, err := parseRecord(record, columns)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if err := entry.Validate(); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		entries = append(entries, entry)
	}

	return entries, nil
}

func parseRecord(record []string, columns map[string]int) (*domain.LedgerEntry, error) {
	field := func(name string) string {
		i, ok := columns[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	entry := &domain.LedgerEntry{
		Symbol: field("symbol"),
		Group:  optionalString(field("group")),
		Bucket: optionalString(field("barca")),
		Notes:  optionalString(field("notes")),
	}

	var err error
	if entry.TargetPercent, err = optionalNumber("target_percent", field("target_percent")); err != nil {
		return nil, err
	}
	if entry.CurrentQuantity, err = optionalNumber("current_quantity", field("current_quantity")); err != nil {
		return nil, err
	}
	if entry.LastPrice, err = optionalNumber("last_price", field("last_price")); err != nil {
		return nil, err
	}

	return entry, nil
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// optionalNumber parses a decimal that may carry thousands separators
func optionalNumber(name, s string) (*float64, error) {
	if s == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(s, ",", ""))
	if err != nil {
		return nil, fmt.Errorf("%w: %s %q is not a number", domain.ErrValidation, name, s)
	}
	v := d.InexactFloat64()
	return &v, nil
}

func isBlank(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
