package models

import "time"

// Bar represents one daily OHLCV price bar.
type Bar struct {
	Timestamp time.Time
	Symbol    string
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
}
