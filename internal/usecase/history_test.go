package usecase

import (
	"context"
	"testing"

	drepo "SqueezeScan/internal/domain/repository"
	"SqueezeScan/internal/engine"
)

// historyCloses fires a squeeze at bar 220 with 29 bars of follow-through.
func historyCloses() []float64 {
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
	return closes
}

func TestSqueezeHistoryClosedEpisode(t *testing.T) {
	src := &stubSource{bars: mapBars("ACME", historyCloses())}
	uc := NewHistoryUseCase(src, engine.New(engine.Config{}))

	events, err := uc.GetSqueezeHistory(context.Background(), "ACME", drepo.Period2Y)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(events) == 0 {
		t.Fatalf("expected at least one episode")
	}

	var found bool
	for _, ev := range events {
		if ev.Ongoing || ev.Direction != "BULLISH" {
			continue
		}
		found = true
		if ev.EndIndex != 219 {
			t.Fatalf("end index = %d, want 219", ev.EndIndex)
		}
		if ev.Duration != ev.EndIndex-ev.StartIndex+1 {
			t.Fatalf("duration = %d, indices %d..%d", ev.Duration, ev.StartIndex, ev.EndIndex)
		}
		if ev.PriceAtBreakout != 146 {
			t.Fatalf("breakout price = %v, want 146", ev.PriceAtBreakout)
		}
		if ev.Momentum <= 0 {
			t.Fatalf("momentum = %v, want positive", ev.Momentum)
		}
		if ev.Move5D <= 0 || ev.Move10D <= 0 || ev.Move20D <= 0 {
			t.Fatalf("forward moves = %v/%v/%v, want positive", ev.Move5D, ev.Move10D, ev.Move20D)
		}
		if ev.Move20D <= ev.Move5D {
			t.Fatalf("20d move %v should exceed 5d move %v on a steady climb", ev.Move20D, ev.Move5D)
		}
	}
	if !found {
		t.Fatalf("no closed bullish episode in %+v", events)
	}
}

func TestSqueezeHistoryOngoingEpisode(t *testing.T) {
	// Series ends while still squeezed: flat tail with no breakout.
	closes := make([]float64, 240)
	for i := 0; i < 200; i++ {
		closes[i] = 100 + 0.2*float64(i)
	}
	for i := 200; i < 240; i++ {
		closes[i] = 140
	}
	src := &stubSource{bars: mapBars("ACME", closes)}
	uc := NewHistoryUseCase(src, engine.New(engine.Config{}))

	events, err := uc.GetSqueezeHistory(context.Background(), "ACME", drepo.Period2Y)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	last := events[len(events)-1]
	if !last.Ongoing {
		t.Fatalf("last episode = %+v, want ongoing", last)
	}
	if last.EndIndex != 239 {
		t.Fatalf("ongoing end index = %d, want the final bar", last.EndIndex)
	}
	if last.PriceAtBreakout != 0 || last.Move5D != 0 {
		t.Fatalf("ongoing episode must not carry breakout fields: %+v", last)
	}
}

func TestForwardMovePastSeriesEnd(t *testing.T) {
	bars := dailyBars("X", []float64{100, 110, 120})
	if m := forwardMove(bars, 0, 2); m != 20 {
		t.Fatalf("move = %v, want 20", m)
	}
	if m := forwardMove(bars, 1, 5); m != 0 {
		t.Fatalf("move past the end = %v, want 0", m)
	}
}
