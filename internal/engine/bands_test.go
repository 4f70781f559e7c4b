package engine

import (
	"testing"
	"time"

	"SqueezeScan/internal/domain/models"
)

func barsFromOHLC(o, h, l, c []float64) []models.Bar {
	bars := make([]models.Bar, len(c))
	start := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	for i := range c {
		bars[i] = models.Bar{
			Timestamp: start.AddDate(0, 0, i),
			Open:      o[i], High: h[i], Low: l[i], Close: c[i],
			Volume: 1000,
		}
	}
	return bars
}

func TestTrueRange(t *testing.T) {
	bars := barsFromOHLC(
		[]float64{10, 12, 9},
		[]float64{11, 13, 10},
		[]float64{9, 11.5, 8},
		[]float64{10, 12, 9},
	)
	tr := trueRange(bars)
	if tr[0] != 2 {
		t.Fatalf("tr[0] = %v, want high-low = 2", tr[0])
	}
	// max(13-11.5, |13-10|, |11.5-10|) = 3 (gap up)
	if tr[1] != 3 {
		t.Fatalf("tr[1] = %v, want 3", tr[1])
	}
	// max(10-8, |10-12|, |8-12|) = 4 (gap down)
	if tr[2] != 4 {
		t.Fatalf("tr[2] = %v, want 4", tr[2])
	}
}

func TestBollingerWarmupAndWidth(t *testing.T) {
	closes := make([]float64, 30)
	for i := range closes {
		closes[i] = 100
	}
	mid, up, low, width := bollinger(closes, 20, 2.0)
	for i := 0; i < 19; i++ {
		if mid.Defined(i) || up.Defined(i) || low.Defined(i) || width.Defined(i) {
			t.Fatalf("bollinger defined at %d during warm-up", i)
		}
	}
	for i := 19; i < 30; i++ {
		m, _ := mid.At(i)
		u, _ := up.At(i)
		l, _ := low.At(i)
		w, ok := width.At(i)
		if m != 100 || u != 100 || l != 100 {
			t.Fatalf("degenerate bands at %d: mid=%v up=%v low=%v", i, m, u, l)
		}
		if !ok || w != 0 {
			t.Fatalf("zero-variance width at %d = %v defined=%v, want 0", i, w, ok)
		}
	}
}

func TestBollingerWidthUndefinedOnZeroMiddle(t *testing.T) {
	closes := []float64{0, 0, 0}
	mid, up, low, width := bollinger(closes, 3, 2.0)
	if !mid.Defined(2) || !up.Defined(2) || !low.Defined(2) {
		t.Fatalf("bands should be defined at 2")
	}
	if width.Defined(2) {
		t.Fatalf("width must stay undefined when middle is 0")
	}
}

func TestKeltnerDefinedFromZero(t *testing.T) {
	closes := []float64{100, 101, 102}
	tr := []float64{2, 2, 2}
	mid, up, low, atr := keltner(closes, tr, 20, 20, 1.5)
	m, ok := mid.At(0)
	if !ok || m != 100 {
		t.Fatalf("kc middle[0] = %v defined=%v, want 100", m, ok)
	}
	a, _ := atr.At(0)
	if a != 2 {
		t.Fatalf("atr[0] = %v, want tr[0] = 2", a)
	}
	u, _ := up.At(0)
	l, _ := low.At(0)
	if u != 103 || l != 97 {
		t.Fatalf("kc bands[0] = (%v, %v), want (103, 97)", u, l)
	}
}
