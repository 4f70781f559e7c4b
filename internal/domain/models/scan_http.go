package models

// Requests for scanner HTTP endpoints. Defined in domain for consistency and reuse.

type ScanRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"required"`
	Period string `query:"period" json:"period" default:"1y" validate:"oneof=6mo 1y 2y 5y max"`
}

type ScanUniverseRequest struct {
	Symbols []string `json:"symbols" validate:"omitempty,max=2000,dive,required"`
	Period  string   `json:"period" default:"1y" validate:"oneof=6mo 1y 2y 5y max"`
	Force   bool     `json:"force"`
}

type HistoryRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"required"`
	Period string `query:"period" json:"period" default:"2y" validate:"oneof=6mo 1y 2y 5y max"`
}

type IndicatorsRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"required"`
	Period string `query:"period" json:"period" default:"1y" validate:"oneof=6mo 1y 2y 5y max"`
	N      int    `query:"n" json:"n" default:"120" validate:"gte=1,lte=5000"`
}

type ToggleAlertRequest struct {
	Active *bool `json:"active" validate:"required"`
}

type CreateAlertRequest struct {
	Symbol      string  `json:"symbol" validate:"required"`
	CompanyName string  `json:"company_name"`
	Type        string  `json:"type" validate:"required,oneof=PRICE_ABOVE PRICE_BELOW SQUEEZE_FIRE"`
	Threshold   float64 `json:"threshold" validate:"gte=0"`
}

type AddWatchlistRequest struct {
	Symbol      string   `json:"symbol" validate:"required,max=12"`
	CompanyName string   `json:"company_name" validate:"max=120"`
	Notes       string   `json:"notes" validate:"max=1000"`
	TargetPrice *float64 `json:"target_price" validate:"omitempty,gt=0"`
	StopLoss    *float64 `json:"stop_loss" validate:"omitempty,gt=0"`
}

type UpdateWatchlistRequest struct {
	Notes       *string  `json:"notes" validate:"omitempty,max=1000"`
	TargetPrice *float64 `json:"target_price" validate:"omitempty,gt=0"`
	StopLoss    *float64 `json:"stop_loss" validate:"omitempty,gt=0"`
}
