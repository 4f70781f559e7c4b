package engine

import (
	"testing"
	"time"

	"SqueezeScan/internal/domain/models"
)

// classifierFixture builds a two-bar frame where everything relevant lives at
// position 1, the fired bar.
func classifierFixture(close, bbUpper, bbLower, momPrev, mom, dma float64) ([]models.Bar, *IndicatorFrame, []SqueezeState) {
	bars := []models.Bar{
		{Timestamp: time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC), Open: close, High: close + 1, Low: close - 1, Close: close, Volume: 100},
		{Timestamp: time.Date(2024, 6, 4, 0, 0, 0, 0, time.UTC), Open: close, High: close + 1, Low: close - 1, Close: close, Volume: 100},
	}
	f := &IndicatorFrame{
		BBUpper:           NewSeries(2),
		BBLower:           NewSeries(2),
		BBWidthPct:        NewSeries(2),
		Momentum:          NewSeries(2),
		DMA200:            NewSeries(2),
		DistFromDMA200Pct: NewSeries(2),
	}
	f.BBUpper.Set(1, bbUpper)
	f.BBLower.Set(1, bbLower)
	f.BBWidthPct.Set(1, 4.2)
	f.Momentum.Set(0, momPrev)
	f.Momentum.Set(1, mom)
	f.DMA200.Set(1, dma)
	f.DistFromDMA200Pct.Set(1, (close-dma)/dma*100)
	states := []SqueezeState{
		{Status: SqueezeOn, Duration: 3},
		{Status: SqueezeOff, Fired: true},
	}
	return bars, f, states
}

func TestClassifyBullishValid(t *testing.T) {
	bars, f, states := classifierFixture(110, 108, 100, 0.5, 1.2, 95)
	recs := classify(bars, f, states)
	if len(recs) != 1 {
		t.Fatalf("records = %d, want 1", len(recs))
	}
	r := recs[0]
	if r.Direction != DirectionBullish || !r.Valid {
		t.Fatalf("got direction=%s valid=%v, want BULLISH valid", r.Direction, r.Valid)
	}
	if r.MomentumState != MomentumBullishUp {
		t.Fatalf("momentum state = %s, want BULLISH_UP", r.MomentumState)
	}
	if r.Index != 1 {
		t.Fatalf("index = %d, want 1", r.Index)
	}
}

func TestClassifyBullishBelowTrendInvalid(t *testing.T) {
	// breakout above the upper band with positive momentum, but price sits
	// below the 200-bar average
	bars, f, states := classifierFixture(110, 108, 100, 0.5, 1.2, 120)
	recs := classify(bars, f, states)
	if len(recs) != 1 {
		t.Fatalf("records = %d, want 1", len(recs))
	}
	if recs[0].Direction != DirectionBullish || recs[0].Valid {
		t.Fatalf("got direction=%s valid=%v, want BULLISH invalid", recs[0].Direction, recs[0].Valid)
	}
}

func TestClassifyBearishValid(t *testing.T) {
	bars, f, states := classifierFixture(90, 108, 95, -0.5, -1.2, 120)
	recs := classify(bars, f, states)
	if len(recs) != 1 {
		t.Fatalf("records = %d, want 1", len(recs))
	}
	if recs[0].Direction != DirectionBearish || !recs[0].Valid {
		t.Fatalf("got direction=%s valid=%v, want BEARISH valid", recs[0].Direction, recs[0].Valid)
	}
	if recs[0].MomentumState != MomentumBearishDown {
		t.Fatalf("momentum state = %s, want BEARISH_DOWN", recs[0].MomentumState)
	}
}

func TestClassifyZeroMomentumIsNone(t *testing.T) {
	bars, f, states := classifierFixture(110, 108, 100, 0.5, 0, 95)
	recs := classify(bars, f, states)
	if len(recs) != 1 {
		t.Fatalf("records = %d, want 1", len(recs))
	}
	if recs[0].Direction != DirectionNone || recs[0].Valid {
		t.Fatalf("zero momentum must yield NONE/invalid, got %s/%v", recs[0].Direction, recs[0].Valid)
	}
}

func TestClassifyEqualityNeverBreaksOut(t *testing.T) {
	// close exactly on the upper band: strict comparison fails
	bars, f, states := classifierFixture(108, 108, 100, 0.5, 1.2, 95)
	recs := classify(bars, f, states)
	if len(recs) != 1 {
		t.Fatalf("records = %d, want 1", len(recs))
	}
	if recs[0].Direction != DirectionNone {
		t.Fatalf("direction = %s, want NONE on band equality", recs[0].Direction)
	}
}

func TestClassifySkipsUndefinedTrend(t *testing.T) {
	bars, f, states := classifierFixture(110, 108, 100, 0.5, 1.2, 95)
	f.DMA200 = NewSeries(2) // trend undefined at the fired bar
	recs := classify(bars, f, states)
	if len(recs) != 0 {
		t.Fatalf("records = %d, want none without a defined dma_200", len(recs))
	}
}

func TestClassifySkipsUnfiredBars(t *testing.T) {
	bars, f, states := classifierFixture(110, 108, 100, 0.5, 1.2, 95)
	states[1].Fired = false
	recs := classify(bars, f, states)
	if len(recs) != 0 {
		t.Fatalf("records = %d, want none without a fired bar", len(recs))
	}
}
