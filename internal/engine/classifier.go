package engine

import (
	"time"

	"SqueezeScan/internal/domain/models"
)

// Direction is the classified breakout direction at a fired bar.
type Direction string

const (
	DirectionNone    Direction = "NONE"
	DirectionBullish Direction = "BULLISH"
	DirectionBearish Direction = "BEARISH"
)

// BreakoutRecord is emitted at a fired bar where bands, momentum and the long
// trend average are all defined.
type BreakoutRecord struct {
	Index             int           `json:"index"`
	Timestamp         time.Time     `json:"timestamp"`
	Direction         Direction     `json:"direction"`
	Valid             bool          `json:"valid"`
	MomentumState     MomentumState `json:"momentum_state"`
	BBWidthPct        float64       `json:"bb_width_pct"`
	DistFromDMA200Pct float64       `json:"distance_from_dma200_pct"`
}

// classify walks the fired bars and applies the layered decision table.
// All comparisons are strict; equality never satisfies a directional or
// validity condition.
func classify(bars []models.Bar, f *IndicatorFrame, states []SqueezeState) []BreakoutRecord {
	var out []BreakoutRecord
	for i, st := range states {
		if !st.Fired {
			continue
		}
		bbUpper, ok1 := f.BBUpper.At(i)
		bbLower, ok2 := f.BBLower.At(i)
		m, ok3 := f.Momentum.At(i)
		dma, ok4 := f.DMA200.At(i)
		if !ok1 || !ok2 || !ok3 || !ok4 {
			continue
		}

		close := bars[i].Close
		dir := DirectionNone
		switch {
		case m > 0 && close > bbUpper:
			dir = DirectionBullish
		case m < 0 && close < bbLower:
			dir = DirectionBearish
		}

		valid := (dir == DirectionBullish && close > dma) ||
			(dir == DirectionBearish && close < dma)

		rec := BreakoutRecord{
			Index:     i,
			Timestamp: bars[i].Timestamp,
			Direction: dir,
			Valid:     valid,
		}
		if ms, ok := momentumState(f.Momentum, i); ok {
			rec.MomentumState = ms
		}
		if w, ok := f.BBWidthPct.At(i); ok {
			rec.BBWidthPct = w
		}
		if d, ok := f.DistFromDMA200Pct.At(i); ok {
			rec.DistFromDMA200Pct = d
		}
		out = append(out, rec)
	}
	return out
}
