package engine

import (
	"math"
	"testing"
)

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestSMAWarmupAndValues(t *testing.T) {
	s := SMA([]float64{1, 2, 3, 4, 5}, 3)
	for i := 0; i < 2; i++ {
		if s.Defined(i) {
			t.Fatalf("position %d should be undefined", i)
		}
	}
	want := []float64{2, 3, 4}
	for i, w := range want {
		v, ok := s.At(i + 2)
		if !ok {
			t.Fatalf("position %d should be defined", i+2)
		}
		if !almostEqual(v, w, 1e-12) {
			t.Fatalf("sma[%d] = %v, want %v", i+2, v, w)
		}
	}
}

func TestSMAShortSeries(t *testing.T) {
	s := SMA([]float64{1, 2}, 3)
	if s.FirstDefined() != -1 {
		t.Fatalf("expected all undefined on short input")
	}
}

func TestRollingStdSampleDefinition(t *testing.T) {
	xs := []float64{2, 4, 4, 4, 5, 5, 7, 9}
	s := RollingStd(xs, 8)
	v, ok := s.At(7)
	if !ok {
		t.Fatalf("position 7 should be defined")
	}
	// sum of squared deviations = 32, sample variance = 32/7
	want := math.Sqrt(32.0 / 7.0)
	if !almostEqual(v, want, 1e-12) {
		t.Fatalf("std = %v, want %v", v, want)
	}
}

func TestRollingStdZeroVariance(t *testing.T) {
	s := RollingStd([]float64{5, 5, 5, 5}, 3)
	for i := 2; i < 4; i++ {
		v, ok := s.At(i)
		if !ok || v != 0 {
			t.Fatalf("std[%d] = %v defined=%v, want 0", i, v, ok)
		}
	}
}

func TestEMARecursiveForm(t *testing.T) {
	// span 3 gives alpha = 0.5
	s := EMA([]float64{2, 4, 8}, 3)
	want := []float64{2, 3, 5.5}
	for i, w := range want {
		v, ok := s.At(i)
		if !ok {
			t.Fatalf("ema[%d] should be defined", i)
		}
		if !almostEqual(v, w, 1e-12) {
			t.Fatalf("ema[%d] = %v, want %v", i, v, w)
		}
	}
}

func TestEMADefinedFromZero(t *testing.T) {
	s := EMA([]float64{7}, 20)
	v, ok := s.At(0)
	if !ok || v != 7 {
		t.Fatalf("ema[0] = %v defined=%v, want 7", v, ok)
	}
}

func TestOLSSlopeLinear(t *testing.T) {
	ys := make([]float64, 12)
	for i := range ys {
		ys[i] = 3.5 + 0.25*float64(i)
	}
	if got := olsSlope(ys); !almostEqual(got, 0.25, 1e-12) {
		t.Fatalf("slope = %v, want 0.25", got)
	}
}

func TestOLSSlopeConstant(t *testing.T) {
	if got := olsSlope([]float64{4, 4, 4, 4}); got != 0 {
		t.Fatalf("slope = %v, want 0", got)
	}
}
