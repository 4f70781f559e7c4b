package usecase

import (
	"context"
	"fmt"
	"time"

	drepo "SqueezeScan/internal/domain/repository"
	"SqueezeScan/internal/engine"
)

// IndicatorsUseCase computes the full per-bar indicator rows for charting.
type IndicatorsUseCase struct {
	source drepo.BarSource
	eng    *engine.Engine
}

func NewIndicatorsUseCase(source drepo.BarSource, eng *engine.Engine) *IndicatorsUseCase {
	return &IndicatorsUseCase{source: source, eng: eng}
}

// IndicatorRow is one bar with its indicator values. Pointer fields are nil
// where the underlying value is undefined (warmup regions).
type IndicatorRow struct {
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    float64   `json:"volume"`

	BBMiddle   *float64 `json:"bb_middle,omitempty"`
	BBUpper    *float64 `json:"bb_upper,omitempty"`
	BBLower    *float64 `json:"bb_lower,omitempty"`
	BBWidthPct *float64 `json:"bb_width_pct,omitempty"`

	KCMiddle *float64 `json:"kc_middle,omitempty"`
	KCUpper  *float64 `json:"kc_upper,omitempty"`
	KCLower  *float64 `json:"kc_lower,omitempty"`
	ATR      *float64 `json:"atr,omitempty"`

	Momentum *float64 `json:"momentum,omitempty"`
	DMA200   *float64 `json:"dma_200,omitempty"`
	DMA50    *float64 `json:"dma_50,omitempty"`

	SqueezeStatus   string `json:"squeeze_status"`
	SqueezeDuration int    `json:"squeeze_duration"`
	SqueezeFired    bool   `json:"squeeze_fired"`
}

type GetIndicatorsResult struct {
	Symbol    string                  `json:"symbol"`
	Period    string                  `json:"period"`
	Count     int                     `json:"count"`
	Rows      []IndicatorRow          `json:"rows"`
	Breakouts []engine.BreakoutRecord `json:"breakouts,omitempty"`
}

func (uc *IndicatorsUseCase) GetIndicators(ctx context.Context, symbol string, period drepo.Period) (*GetIndicatorsResult, error) {
	if symbol == "" {
		return nil, fmt.Errorf("symbol required")
	}
	bars, err := uc.source.FetchDailyBars(ctx, symbol, period)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", symbol, err)
	}
	res, err := uc.eng.Compute(bars)
	if err != nil {
		return nil, fmt.Errorf("compute %s: %w", symbol, err)
	}

	rows := make([]IndicatorRow, len(bars))
	for i, b := range bars {
		st := res.States[i]
		rows[i] = IndicatorRow{
			Timestamp:       b.Timestamp,
			Open:            b.Open,
			High:            b.High,
			Low:             b.Low,
			Close:           b.Close,
			Volume:          b.Volume,
			BBMiddle:        seriesPtr(res.Frame.BBMiddle, i),
			BBUpper:         seriesPtr(res.Frame.BBUpper, i),
			BBLower:         seriesPtr(res.Frame.BBLower, i),
			BBWidthPct:      seriesPtr(res.Frame.BBWidthPct, i),
			KCMiddle:        seriesPtr(res.Frame.KCMiddle, i),
			KCUpper:         seriesPtr(res.Frame.KCUpper, i),
			KCLower:         seriesPtr(res.Frame.KCLower, i),
			ATR:             seriesPtr(res.Frame.ATR, i),
			Momentum:        seriesPtr(res.Frame.Momentum, i),
			DMA200:          seriesPtr(res.Frame.DMA200, i),
			DMA50:           seriesPtr(res.Frame.DMA50, i),
			SqueezeStatus:   st.Status.String(),
			SqueezeDuration: st.Duration,
			SqueezeFired:    st.Fired,
		}
	}

	return &GetIndicatorsResult{
		Symbol:    symbol,
		Period:    string(period),
		Count:     len(rows),
		Rows:      rows,
		Breakouts: res.Breakouts,
	}, nil
}

func seriesPtr(s engine.Series, i int) *float64 {
	v, ok := s.At(i)
	if !ok {
		return nil
	}
	return &v
}
