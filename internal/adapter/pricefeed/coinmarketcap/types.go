package coinmarketcap

// listingsResponse is the body of /v1/cryptocurrency/listings/latest
type listingsResponse struct {
	Status status    `json:"status"`
	Data   []listing `json:"data"`
}

type status struct {
	Timestamp    string  `json:"timestamp"`
	ErrorCode    int     `json:"error_code"`
	ErrorMessage *string `json:"error_message"`
	CreditCount  int     `json:"credit_count"`
	Notice       *string `json:"notice"`
}

type listing struct {
	ID      int                 `json:"id"`
	Name    string              `json:"name"`
	Symbol  string              `json:"symbol"`
	CMCRank int                 `json:"cmc_rank"`
	Quote   map[string]usdQuote `json:"quote"`
}

type usdQuote struct {
	Price                 float64 `json:"price"`
	Volume24h             float64 `json:"volume_24h"`
	PercentChange24h      float64 `json:"percent_change_24h"`
	PercentChange7d       float64 `json:"percent_change_7d"`
	MarketCap             float64 `json:"market_cap"`
	FullyDilutedMarketCap float64 `json:"fully_diluted_market_cap"`
}
