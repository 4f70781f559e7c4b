package engine

// MomentumState classifies the momentum oscillator at one bar against its
// previous value.
type MomentumState string

const (
	MomentumBullishUp   MomentumState = "BULLISH_UP"
	MomentumBullishDown MomentumState = "BULLISH_DOWN"
	MomentumBearishDown MomentumState = "BEARISH_DOWN"
	MomentumBearishUp   MomentumState = "BEARISH_UP"
	MomentumNeutral     MomentumState = "NEUTRAL"
)

// momentumSource derives the regression input series. The midline-deviation
// form measures how far price sits from the Keltner equilibrium; the raw
// close form is kept as a configurable alternative.
func momentumSource(closes []float64, kcMiddle Series, src MomentumSource) Series {
	out := NewSeries(len(closes))
	for i, c := range closes {
		switch src {
		case SourceClose:
			out.Set(i, c)
		default:
			m, ok := kcMiddle.At(i)
			if !ok {
				continue
			}
			out.Set(i, c-m)
		}
	}
	return out
}

// momentum fits an OLS line through the last `period` source values ending at
// each position and takes the slope. Positions before `period` stay
// undefined; zero-filling them would corrupt direction classification
// downstream.
func momentum(src Series, period int) Series {
	out := NewSeries(src.Len())
	if period < 2 {
		return out
	}
	window := make([]float64, period)
	for i := period; i < src.Len(); i++ {
		ok := true
		for j := 0; j < period; j++ {
			v, def := src.At(i - period + 1 + j)
			if !def {
				ok = false
				break
			}
			window[j] = v
		}
		if !ok {
			continue
		}
		out.Set(i, olsSlope(window))
	}
	return out
}

// momentumState classifies position i. It requires both m[i] and m[i-1] to be
// defined; otherwise there is no classification.
func momentumState(m Series, i int) (MomentumState, bool) {
	cur, ok := m.At(i)
	if !ok {
		return "", false
	}
	prev, ok := m.At(i - 1)
	if !ok {
		return "", false
	}
	switch {
	case cur > 0 && cur > prev:
		return MomentumBullishUp, true
	case cur > 0:
		return MomentumBullishDown, true
	case cur < 0 && cur < prev:
		return MomentumBearishDown, true
	case cur < 0:
		return MomentumBearishUp, true
	default:
		return MomentumNeutral, true
	}
}
