package domain

// PriceQuote is the latest market data for one symbol. Quotes are fetched
// fresh for every computation and only persisted as snapshot fields.
type PriceQuote struct {
	Symbol            string
	Price             float64
	Volume24h         float64
	PercentChange24h  float64
	PercentChange7d   float64
	MarketCap         float64
	FullyDilutedValue float64
}

// BucketTarget is one row of the bucket-target table
type BucketTarget struct {
	MarketContext string
	BucketName    string
	TargetPercent float64
}
