package models

import "time"

// ScanResult is the latest-bar squeeze snapshot for one symbol.
type ScanResult struct {
	Symbol            string    `json:"symbol"`
	CompanyName       string    `json:"company_name,omitempty"`
	ScannedAt         time.Time `json:"scanned_at"`
	CurrentPrice      float64   `json:"current_price"`
	PriceChangePct    float64   `json:"price_change_pct"`
	SqueezeOn         bool      `json:"squeeze_on"`
	SqueezeFired      bool      `json:"squeeze_fired"`
	SqueezeDuration   int       `json:"squeeze_duration"`
	Momentum          float64   `json:"momentum"`
	MomentumDirection string    `json:"momentum_direction,omitempty"`
	BBWidthPct        float64   `json:"bb_width_pct"`
	Volume            float64   `json:"volume"`
	DMA200            *float64  `json:"dma_200,omitempty"`
	AboveDMA200       *bool     `json:"above_dma_200,omitempty"`
	DMA200DistancePct *float64  `json:"dma_200_distance_pct,omitempty"`
	SignalValid       bool      `json:"signal_valid"`
}

// ScanSummary aggregates a universe scan.
type ScanSummary struct {
	TotalSymbols    int `json:"total_symbols"`
	ActiveSqueezes  int `json:"active_squeezes"`
	FiredToday      int `json:"fired_today"`
	BullishMomentum int `json:"bullish_momentum"`
	BearishMomentum int `json:"bearish_momentum"`
}

// ScanProgress is emitted while a universe scan runs.
type ScanProgress struct {
	Completed int    `json:"completed"`
	Total     int    `json:"total"`
	Symbol    string `json:"symbol"`
	Failed    bool   `json:"failed,omitempty"`
}

// SqueezeEvent is one historical squeeze episode extracted from a bar series.
// An episode still open at the end of the series has Ongoing set and zero
// breakout fields.
type SqueezeEvent struct {
	StartIndex      int       `json:"start_index"`
	EndIndex        int       `json:"end_index"`
	StartTime       time.Time `json:"start_time"`
	EndTime         time.Time `json:"end_time"`
	Ongoing         bool      `json:"ongoing,omitempty"`
	Duration        int       `json:"duration"`
	Direction       string    `json:"direction"`
	BBWidthBefore   float64   `json:"bb_width_before"`
	MinBBWidth      float64   `json:"min_bb_width"`
	PriceAtBreakout float64   `json:"price_at_breakout"`
	Move5D          float64   `json:"move_5d"`
	Move10D         float64   `json:"move_10d"`
	Move20D         float64   `json:"move_20d"`
	Momentum        float64   `json:"momentum"`
}
