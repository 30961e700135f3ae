package models

import "time"

// PricePoint is one observation of a symbol's price. Sequences are ordered
// ascending by timestamp; dedup (same symbol+timestamp) is the store's job.
type PricePoint struct {
	Timestamp time.Time
	Price     float64
}

// Quote is the latest market snapshot for a symbol from the price API.
type Quote struct {
	Symbol      string
	Price       float64
	MarketCap   float64
	Volume24h   float64
	Change24hPc float64
	Timestamp   time.Time
}

// Tick is a single trade/price update from the live market stream.
type Tick struct {
	Symbol    string
	Timestamp int64 // unix seconds
	Price     float64
	Volume    float64
}
