package contracts

import "time"

// Bar is one daily OHLCV bar for a symbol. Bars are supplied
// pre-sorted ascending by date per symbol.
type Bar struct {
	Symbol string    `json:"symbol"`
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
}
