package domain

// AssetKey identifies one aggregated position
type AssetKey struct {
	Symbol string
	Group  string
	Bucket string
}

// AggregatedAsset accumulates every ledger row sharing an AssetKey.
// Value is the sum of quantity × price over the contributing rows.
type AggregatedAsset struct {
	Key           AssetKey
	Value         float64
	Quantity      float64
	TargetPercent float64
	Quote         PriceQuote
}

// PerAsset is one report row per (symbol, group, bucket)
type PerAsset struct {
	Symbol           string  `json:"symbol"`
	Group            string  `json:"group"`
	Bucket           string  `json:"barca"`
	Price            float64 `json:"price"`
	CurrentQuantity  float64 `json:"current_quantity"`
	Value            float64 `json:"value"`
	TargetPercent    float64 `json:"target_percent"`
	CurrentPercent   float64 `json:"current_percent"`
	Deviation        float64 `json:"deviation"`
	MarketCap        float64 `json:"market_cap"`
	FDV              float64 `json:"fdv"`
	Volume24h        float64 `json:"volume_24h"`
	PercentChange24h float64 `json:"percent_change_24h"`
	PercentChange7d  float64 `json:"percent_change_7d"`
}

// PerGroup sums assets sharing a group
type PerGroup struct {
	Group          string  `json:"group"`
	Value          float64 `json:"value"`
	TargetPercent  float64 `json:"target_percent"`
	CurrentPercent float64 `json:"current_percent"`
	Deviation      float64 `json:"deviation"`
}

// PerBucket compares a bucket's actual value against the bucket-target table
type PerBucket struct {
	Bucket         string  `json:"barca"`
	Value          float64 `json:"value"`
	TargetPercent  float64 `json:"target_percent"`
	CurrentPercent float64 `json:"current_percent"`
	Deviation      float64 `json:"deviation"`
}

// PerBucketActual is the raw exposure of a bucket, independent of targets
type PerBucketActual struct {
	Bucket         string  `json:"barca"`
	Value          float64 `json:"value"`
	CurrentPercent float64 `json:"current_percent"`
}

// Report is the result of one allocation computation
type Report struct {
	PerAsset        []PerAsset        `json:"per_asset"`
	PerGroup        []PerGroup        `json:"per_group"`
	PerBucket       []PerBucket       `json:"per_barca"`
	PerBucketActual []PerBucketActual `json:"per_barca_actual"`
	TotalValue      float64           `json:"total_value"`

	// Skipped lists ledger symbols dropped for lack of market data
	Skipped []string `json:"-"`
}

// Percent returns 100 × value / total, or 0 when total is not positive
func Percent(value, total float64) float64 {
	if total <= 0 {
		return 0
	}
	return 100 * value / total
}
