package allocator

import "github.com/simaogato/wealthflow-allocator/internal/domain"

// BuildIndex maps each symbol to its quote. When a symbol appears more than
// once the last quote wins.
func BuildIndex(quotes []domain.PriceQuote) map[string]domain.PriceQuote {
	index := make(map[string]domain.PriceQuote, len(quotes))
	for _, q := range quotes {
		index[q.Symbol] = q
	}
	return index
}
