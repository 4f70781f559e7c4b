package models

import "time"

// Alert types.
const (
	AlertPriceAbove  = "PRICE_ABOVE"
	AlertPriceBelow  = "PRICE_BELOW"
	AlertSqueezeFire = "SQUEEZE_FIRE"
)

// Alert is a user-configured trigger on a symbol.
type Alert struct {
	ID          int64     `json:"id"`
	Symbol      string    `json:"symbol"`
	CompanyName string    `json:"company_name,omitempty"`
	Type        string    `json:"type"`
	Threshold   float64   `json:"threshold,omitempty"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
}

// TriggeredAlert is an alert that matched the latest scan, published to the
// alert topic for downstream notification.
type TriggeredAlert struct {
	Alert
	CurrentPrice float64   `json:"current_price"`
	Direction    string    `json:"direction,omitempty"`
	TriggeredAt  time.Time `json:"triggered_at"`
}
