package engine

import (
	"math"

	"SqueezeScan/internal/domain/models"
)

// bollinger computes the Bollinger Bands over closes: middle = SMA(w),
// upper/lower = middle ± mult*std, width = (upper-lower)/middle*100.
// Width is 0 for a zero-variance window and undefined where middle is 0.
func bollinger(closes []float64, w int, mult float64) (middle, upper, lower, widthPct Series) {
	middle = SMA(closes, w)
	std := RollingStd(closes, w)
	upper = NewSeries(len(closes))
	lower = NewSeries(len(closes))
	widthPct = NewSeries(len(closes))
	for i := 0; i < len(closes); i++ {
		m, ok := middle.At(i)
		if !ok {
			continue
		}
		sd, _ := std.At(i)
		u := m + mult*sd
		l := m - mult*sd
		upper.Set(i, u)
		lower.Set(i, l)
		if m != 0 {
			widthPct.Set(i, (u-l)/m*100)
		}
	}
	return middle, upper, lower, widthPct
}

// trueRange computes the per-bar True Range. Position 0 uses high-low; later
// positions take the gap against the previous close into account.
func trueRange(bars []models.Bar) []float64 {
	tr := make([]float64, len(bars))
	for i, b := range bars {
		if i == 0 {
			tr[i] = b.High - b.Low
			continue
		}
		prevClose := bars[i-1].Close
		tr[i] = math.Max(b.High-b.Low,
			math.Max(math.Abs(b.High-prevClose), math.Abs(b.Low-prevClose)))
	}
	return tr
}

// keltner computes the Keltner Channels: middle = EMA(close, span),
// upper/lower = middle ± mult*ATR with ATR = EMA(true range, atrSpan).
// All four are defined from position 0.
func keltner(closes, tr []float64, span, atrSpan int, mult float64) (middle, upper, lower, atr Series) {
	middle = EMA(closes, span)
	atr = EMA(tr, atrSpan)
	upper = NewSeries(len(closes))
	lower = NewSeries(len(closes))
	for i := 0; i < len(closes); i++ {
		m, ok := middle.At(i)
		if !ok {
			continue
		}
		a, _ := atr.At(i)
		upper.Set(i, m+mult*a)
		lower.Set(i, m-mult*a)
	}
	return middle, upper, lower, atr
}
