package engine

import (
	"math"

	"SqueezeScan/internal/domain/models"
)

// IndicatorFrame holds the per-bar indicator sequences, each the same length
// as the input series.
type IndicatorFrame struct {
	BBMiddle   Series
	BBUpper    Series
	BBLower    Series
	BBWidthPct Series

	KCMiddle  Series
	KCUpper   Series
	KCLower   Series
	ATR       Series
	TrueRange Series

	Momentum Series

	DMA200            Series
	DMA50             Series
	DistFromDMA200Pct Series
}

// Result is the full engine output for one bar series.
type Result struct {
	Frame     *IndicatorFrame
	States    []SqueezeState
	Breakouts []BreakoutRecord
}

// Engine turns a daily bar series into volatility bands, squeeze states and
// trend-validated breakout records. It holds no state between calls; a single
// Engine is safe for concurrent use across independent series.
type Engine struct {
	cfg Config
}

// New creates an Engine, filling unset config fields with defaults.
func New(cfg Config) *Engine {
	return &Engine{cfg: cfg.withDefaults()}
}

// Config returns the effective engine parameters.
func (e *Engine) Config() Config { return e.cfg }

// Compute runs the full single-pass pipeline over bars. It returns an
// *InvalidInputError for malformed input; a short series never fails, it only
// yields a wider undefined region.
func (e *Engine) Compute(bars []models.Bar) (*Result, error) {
	if err := validateBars(bars); err != nil {
		return nil, err
	}

	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
	}

	frame := &IndicatorFrame{}
	frame.BBMiddle, frame.BBUpper, frame.BBLower, frame.BBWidthPct =
		bollinger(closes, e.cfg.BBPeriod, e.cfg.BBMult)

	tr := trueRange(bars)
	frame.TrueRange = NewSeries(len(tr))
	for i, v := range tr {
		frame.TrueRange.Set(i, v)
	}
	frame.KCMiddle, frame.KCUpper, frame.KCLower, frame.ATR =
		keltner(closes, tr, e.cfg.KCSpan, e.cfg.ATRSpan, e.cfg.KCMult)

	src := momentumSource(closes, frame.KCMiddle, e.cfg.MomentumSource)
	frame.Momentum = momentum(src, e.cfg.MomentumPeriod)

	frame.DMA200, frame.DMA50, frame.DistFromDMA200Pct =
		trendReference(closes, e.cfg.TrendLong, e.cfg.TrendShort)

	states := squeezeStates(frame.BBUpper, frame.BBLower, frame.KCUpper, frame.KCLower)
	breakouts := classify(bars, frame, states)

	return &Result{Frame: frame, States: states, Breakouts: breakouts}, nil
}

// MomentumStateAt classifies the momentum direction at position i, requiring
// two consecutive defined oscillator values.
func (r *Result) MomentumStateAt(i int) (MomentumState, bool) {
	return momentumState(r.Frame.Momentum, i)
}

func validateBars(bars []models.Bar) error {
	for i, b := range bars {
		if i > 0 && !b.Timestamp.After(bars[i-1].Timestamp) {
			return &InvalidInputError{Index: i, Reason: "timestamps not strictly increasing"}
		}
		for _, v := range [...]float64{b.Open, b.High, b.Low, b.Close} {
			if math.IsNaN(v) {
				return &InvalidInputError{Index: i, Reason: "NaN price"}
			}
			if v <= 0 {
				return &InvalidInputError{Index: i, Reason: "non-positive price"}
			}
		}
		if math.IsNaN(b.Volume) {
			return &InvalidInputError{Index: i, Reason: "NaN volume"}
		}
	}
	return nil
}
