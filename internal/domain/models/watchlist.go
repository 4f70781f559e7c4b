package models

import "time"

// WatchlistItem is a symbol the user tracks between scans, with optional
// notes and price levels. Items are keyed by symbol.
type WatchlistItem struct {
	Symbol      string    `json:"symbol"`
	CompanyName string    `json:"company_name,omitempty"`
	Notes       string    `json:"notes,omitempty"`
	TargetPrice *float64  `json:"target_price,omitempty"`
	StopLoss    *float64  `json:"stop_loss,omitempty"`
	AddedAt     time.Time `json:"added_at"`
}
