package engine

import "math"

// SMA computes the simple moving average of xs over window w. Position i is
// undefined while i < w-1.
func SMA(xs []float64, w int) Series {
	out := NewSeries(len(xs))
	if w <= 0 || len(xs) < w {
		return out
	}
	sum := 0.0
	for i, x := range xs {
		sum += x
		if i >= w {
			sum -= xs[i-w]
		}
		if i >= w-1 {
			out.Set(i, sum/float64(w))
		}
	}
	return out
}

// RollingStd computes the rolling sample standard deviation (divisor w-1) of
// xs over window w. Position i is undefined while i < w-1.
func RollingStd(xs []float64, w int) Series {
	out := NewSeries(len(xs))
	if w <= 1 || len(xs) < w {
		return out
	}
	for i := w - 1; i < len(xs); i++ {
		sum := 0.0
		sum2 := 0.0
		for j := i - w + 1; j <= i; j++ {
			sum += xs[j]
			sum2 += xs[j] * xs[j]
		}
		n := float64(w)
		mean := sum / n
		variance := (sum2 - n*mean*mean) / (n - 1)
		if variance < 0 {
			variance = 0
		}
		out.Set(i, math.Sqrt(variance))
	}
	return out
}

// EMA computes the recursive exponential moving average with the given span:
// ema[0] = x[0], ema[i] = x[i]*a + ema[i-1]*(1-a), a = 2/(span+1). Defined
// from position 0; there is no warm-up gap.
func EMA(xs []float64, span int) Series {
	out := NewSeries(len(xs))
	if span <= 0 || len(xs) == 0 {
		return out
	}
	alpha := 2.0 / (float64(span) + 1.0)
	prev := xs[0]
	out.Set(0, prev)
	for i := 1; i < len(xs); i++ {
		prev = xs[i]*alpha + prev*(1-alpha)
		out.Set(i, prev)
	}
	return out
}

// olsSlope fits x = 0..len(ys)-1 against ys by ordinary least squares and
// returns the fitted slope.
func olsSlope(ys []float64) float64 {
	n := float64(len(ys))
	if n < 2 {
		return 0
	}
	xMean := (n - 1) / 2
	yMean := 0.0
	for _, y := range ys {
		yMean += y
	}
	yMean /= n
	num := 0.0
	den := 0.0
	for i, y := range ys {
		dx := float64(i) - xMean
		num += dx * (y - yMean)
		den += dx * dx
	}
	if den == 0 {
		return 0
	}
	return num / den
}
