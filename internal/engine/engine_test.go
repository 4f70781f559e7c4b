package engine

import (
	"errors"
	"math"
	"reflect"
	"testing"
	"time"

	"SqueezeScan/internal/domain/models"
)

func dailyBars(closes []float64, spread float64) []models.Bar {
	bars := make([]models.Bar, len(closes))
	start := time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)
	for i, c := range closes {
		bars[i] = models.Bar{
			Timestamp: start.AddDate(0, 0, i),
			Open:      c,
			High:      c + spread,
			Low:       c - spread,
			Close:     c,
			Volume:    100000,
		}
	}
	return bars
}

func TestComputeRejectsNonMonotonicTimestamps(t *testing.T) {
	bars := dailyBars([]float64{100, 101, 102}, 1)
	bars[2].Timestamp = bars[1].Timestamp
	_, err := New(Config{}).Compute(bars)
	var iie *InvalidInputError
	if !errors.As(err, &iie) {
		t.Fatalf("expected InvalidInputError, got %v", err)
	}
	if iie.Index != 2 {
		t.Fatalf("index = %d, want 2", iie.Index)
	}
}

func TestComputeRejectsNonPositivePrices(t *testing.T) {
	bars := dailyBars([]float64{100, 101, 102}, 1)
	bars[1].Low = 0
	if _, err := New(Config{}).Compute(bars); err == nil {
		t.Fatalf("expected error on non-positive price")
	}
}

func TestComputeRejectsNaN(t *testing.T) {
	bars := dailyBars([]float64{100, 101, 102}, 1)
	bars[0].Close = math.NaN()
	var iie *InvalidInputError
	if _, err := New(Config{}).Compute(bars); !errors.As(err, &iie) {
		t.Fatalf("expected InvalidInputError on NaN")
	}
}

func TestComputeShortSeriesDegradesOnly(t *testing.T) {
	bars := dailyBars([]float64{100, 101, 102, 103, 104}, 1)
	res, err := New(Config{}).Compute(bars)
	if err != nil {
		t.Fatalf("short series must not fail: %v", err)
	}
	for i := range bars {
		if res.Frame.BBUpper.Defined(i) || res.Frame.BBLower.Defined(i) || res.Frame.BBWidthPct.Defined(i) {
			t.Fatalf("bb defined at %d on a 5-bar series", i)
		}
		if res.States[i].Status != SqueezeUndefined {
			t.Fatalf("state[%d] = %s, want UNDEFINED", i, res.States[i].Status)
		}
		if !res.Frame.KCUpper.Defined(i) || !res.Frame.ATR.Defined(i) {
			t.Fatalf("kc/atr should be defined from position 0")
		}
	}
	if len(res.Breakouts) != 0 {
		t.Fatalf("breakouts = %d, want 0", len(res.Breakouts))
	}
}

func TestComputeFrameLengthsMatchInput(t *testing.T) {
	bars := dailyBars(make([]float64, 60), 0)
	for i := range bars {
		bars[i].Open, bars[i].High, bars[i].Low, bars[i].Close = 50, 51, 49, 50
	}
	res, err := New(Config{}).Compute(bars)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	f := res.Frame
	for name, s := range map[string]Series{
		"bb_middle": f.BBMiddle, "bb_upper": f.BBUpper, "bb_lower": f.BBLower,
		"bb_width_pct": f.BBWidthPct, "kc_middle": f.KCMiddle, "kc_upper": f.KCUpper,
		"kc_lower": f.KCLower, "atr": f.ATR, "true_range": f.TrueRange,
		"momentum": f.Momentum, "dma_200": f.DMA200, "dma_50": f.DMA50,
	} {
		if s.Len() != len(bars) {
			t.Fatalf("%s length = %d, want %d", name, s.Len(), len(bars))
		}
	}
	if len(res.States) != len(bars) {
		t.Fatalf("states length = %d, want %d", len(res.States), len(bars))
	}
}

func TestComputeIsPure(t *testing.T) {
	closes := make([]float64, 260)
	for i := range closes {
		closes[i] = 100 + 0.3*float64(i) + 2*math.Sin(float64(i)/7)
	}
	bars := dailyBars(closes, 0.5)
	eng := New(Config{})
	a, err := eng.Compute(bars)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	b, err := eng.Compute(bars)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("two runs over the same series diverged")
	}
}

func TestFlatSeriesScenario(t *testing.T) {
	closes := make([]float64, 250)
	for i := range closes {
		closes[i] = 100
	}
	bars := dailyBars(closes, 1) // high 101, low 99
	res, err := New(Config{}).Compute(bars)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	for i := 19; i < 250; i++ {
		w, ok := res.Frame.BBWidthPct.At(i)
		if !ok || w != 0 {
			t.Fatalf("bb width[%d] = %v defined=%v, want 0", i, w, ok)
		}
		if res.States[i].Status != SqueezeOn {
			t.Fatalf("state[%d] = %s, want ON on a flat series", i, res.States[i].Status)
		}
		if res.States[i].Duration != i-18 {
			t.Fatalf("duration[%d] = %d, want %d", i, res.States[i].Duration, i-18)
		}
	}
	for i := 12; i < 250; i++ {
		m, ok := res.Frame.Momentum.At(i)
		if !ok || math.Abs(m) > 1e-9 {
			t.Fatalf("momentum[%d] = %v defined=%v, want ~0", i, m, ok)
		}
	}
	if len(res.Breakouts) != 0 {
		t.Fatalf("breakouts = %d, want 0 on a flat series", len(res.Breakouts))
	}
}

// squeezeBreakoutBars builds a rising series with a squeeze injected after the
// long trend average is available: rise to bar 199, hold flat for 20 bars,
// then gap up and resume the rise. The hold contracts the Bollinger Bands
// inside the Keltner Channels; the gap fires the squeeze.
func squeezeBreakoutBars() []models.Bar {
	closes := make([]float64, 250)
	for i := 0; i < 200; i++ {
		closes[i] = 100 + 0.2*float64(i)
	}
	for i := 200; i < 220; i++ {
		closes[i] = 140
	}
	for i := 220; i < 250; i++ {
		closes[i] = 146 + 0.2*float64(i-220)
	}
	return dailyBars(closes, 0.1)
}

func TestSqueezeBreakoutScenario(t *testing.T) {
	res, err := New(Config{}).Compute(squeezeBreakoutBars())
	if err != nil {
		t.Fatalf("compute: %v", err)
	}

	var fired []int
	for i, st := range res.States {
		if st.Fired {
			fired = append(fired, i)
		}
	}
	if len(fired) != 1 || fired[0] != 220 {
		t.Fatalf("fired bars = %v, want exactly [220]", fired)
	}
	if res.States[219].Status != SqueezeOn {
		t.Fatalf("state[219] = %s, want ON before the fire", res.States[219].Status)
	}

	if len(res.Breakouts) != 1 {
		t.Fatalf("breakouts = %d, want 1", len(res.Breakouts))
	}
	rec := res.Breakouts[0]
	if rec.Index != 220 || rec.Direction != DirectionBullish || !rec.Valid {
		t.Fatalf("breakout = %+v, want valid BULLISH at 220", rec)
	}

	m, ok := res.Frame.Momentum.At(220)
	if !ok || m <= 0 {
		t.Fatalf("momentum[220] = %v defined=%v, want > 0", m, ok)
	}
	d, ok := res.Frame.DMA200.At(249)
	if !ok || d >= 146+0.2*29 {
		t.Fatalf("dma200[249] = %v defined=%v, want below the final close", d, ok)
	}
}

func TestFiredMatchesOnOffTransitionsExactly(t *testing.T) {
	res, err := New(Config{}).Compute(squeezeBreakoutBars())
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	prev := SqueezeUndefined
	for i, st := range res.States {
		wantFired := prev == SqueezeOn && st.Status == SqueezeOff
		if st.Fired != wantFired {
			t.Fatalf("fired[%d] = %v, transition (%s -> %s) wants %v", i, st.Fired, prev, st.Status, wantFired)
		}
		if st.Status == SqueezeUndefined &&
			res.Frame.BBUpper.Defined(i) && res.Frame.BBLower.Defined(i) &&
			res.Frame.KCUpper.Defined(i) && res.Frame.KCLower.Defined(i) {
			t.Fatalf("state[%d] UNDEFINED with all bands defined", i)
		}
		prev = st.Status
	}
}

func TestConfigurableMomentumSource(t *testing.T) {
	bars := squeezeBreakoutBars()
	eng := New(Config{MomentumSource: SourceClose})
	res, err := eng.Compute(bars)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	// raw rising closes regress to a positive slope everywhere after warm-up
	m, ok := res.Frame.Momentum.At(100)
	if !ok || m <= 0 {
		t.Fatalf("raw-close momentum[100] = %v defined=%v, want > 0", m, ok)
	}
}

func TestValidImpliesDirection(t *testing.T) {
	res, err := New(Config{}).Compute(squeezeBreakoutBars())
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	for _, rec := range res.Breakouts {
		if rec.Valid && rec.Direction == DirectionNone {
			t.Fatalf("valid record with direction NONE at %d", rec.Index)
		}
	}
}
