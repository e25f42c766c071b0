package allocator

import (
	"sort"

	"github.com/simaogato/wealthflow-allocator/internal/domain"
)

// Aggregate joins ledger rows against the price index and derives the
// per-asset, per-group and per-bucket reports.
// Logic:
//  1. Drop rows whose symbol has no quote (recorded in Report.Skipped)
//  2. value = quantity × price, summed per (symbol, group, bucket) along with quantity and target
//  3. Total = sum of retained values
//  4. Re-sum by group for PerGroup, by bucket for the bucket actuals
//  5. Reconcile bucket actuals against bucketTargets
//
// Rows sharing a key add their targets together. No rounding is applied.
func Aggregate(ledger []*domain.LedgerEntry, index map[string]domain.PriceQuote, bucketTargets map[string]float64) domain.Report {
	assets := make(map[domain.AssetKey]*domain.AggregatedAsset)
	var skipped []string
	total := 0.0

	// Step 1-3: accumulate per key
	for _, entry := range ledger {
		if entry == nil {
			continue
		}
		quote, ok := index[entry.Symbol]
		if !ok {
			skipped = append(skipped, entry.Symbol)
			continue
		}

		key := domain.AssetKey{
			Symbol: entry.Symbol,
			Group:  entry.GroupName(),
			Bucket: entry.BucketName(),
		}
		agg, ok := assets[key]
		if !ok {
			agg = &domain.AggregatedAsset{Key: key}
			assets[key] = agg
		}

		value := entry.Quantity() * quote.Price
		agg.Value += value
		agg.Quantity += entry.Quantity()
		agg.TargetPercent += entry.Target()
		agg.Quote = quote
		total += value
	}

	keys := make([]domain.AssetKey, 0, len(assets))
	for k := range assets {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		if a.Symbol != b.Symbol {
			return a.Symbol < b.Symbol
		}
		if a.Group != b.Group {
			return a.Group < b.Group
		}
		return a.Bucket < b.Bucket
	})

	report := domain.Report{
		PerAsset:   make([]domain.PerAsset, 0, len(keys)),
		TotalValue: total,
		Skipped:    skipped,
	}

	// Step 4: per asset rows and the group/bucket re-sums
	groupValue := make(map[string]float64)
	groupTarget := make(map[string]float64)
	bucketValue := make(map[string]float64)

	for _, k := range keys {
		agg := assets[k]
		current := domain.Percent(agg.Value, total)
		report.PerAsset = append(report.PerAsset, domain.PerAsset{
			Symbol:           k.Symbol,
			Group:            k.Group,
			Bucket:           k.Bucket,
			Price:            agg.Quote.Price,
			CurrentQuantity:  agg.Quantity,
			Value:            agg.Value,
			TargetPercent:    agg.TargetPercent,
			CurrentPercent:   current,
			Deviation:        current - agg.TargetPercent,
			MarketCap:        agg.Quote.MarketCap,
			FDV:              agg.Quote.FullyDilutedValue,
			Volume24h:        agg.Quote.Volume24h,
			PercentChange24h: agg.Quote.PercentChange24h,
			PercentChange7d:  agg.Quote.PercentChange7d,
		})

		groupValue[k.Group] += agg.Value
		groupTarget[k.Group] += agg.TargetPercent
		bucketValue[k.Bucket] += agg.Value
	}

	report.PerGroup = make([]domain.PerGroup, 0, len(groupValue))
	for _, g := range sortedKeys(groupValue) {
		current := domain.Percent(groupValue[g], total)
		report.PerGroup = append(report.PerGroup, domain.PerGroup{
			Group:          g,
			Value:          groupValue[g],
			TargetPercent:  groupTarget[g],
			CurrentPercent: current,
			Deviation:      current - groupTarget[g],
		})
	}

	// Step 5: bucket targets come from the external table
	report.PerBucket, report.PerBucketActual = ReconcileBuckets(bucketValue, bucketTargets, total)

	return report
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
