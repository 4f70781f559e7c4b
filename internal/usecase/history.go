package usecase

import (
	"context"
	"fmt"

	"SqueezeScan/internal/domain/models"
	drepo "SqueezeScan/internal/domain/repository"
	"SqueezeScan/internal/engine"
)

// HistoryUseCase extracts historical squeeze episodes from a bar series.
type HistoryUseCase struct {
	source drepo.BarSource
	eng    *engine.Engine
}

func NewHistoryUseCase(source drepo.BarSource, eng *engine.Engine) *HistoryUseCase {
	return &HistoryUseCase{source: source, eng: eng}
}

// GetSqueezeHistory returns past squeeze episodes for symbol, oldest first.
// An episode still open at the end of the series is reported as ongoing with
// zero breakout fields.
func (uc *HistoryUseCase) GetSqueezeHistory(ctx context.Context, symbol string, period drepo.Period) ([]models.SqueezeEvent, error) {
	if symbol == "" {
		return nil, fmt.Errorf("symbol required")
	}
	bars, err := uc.source.FetchDailyBars(ctx, symbol, period)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", symbol, err)
	}
	res, err := uc.eng.Compute(bars)
	if err != nil {
		return nil, fmt.Errorf("compute %s: %w", symbol, err)
	}
	return extractEpisodes(bars, res), nil
}

func extractEpisodes(bars []models.Bar, res *engine.Result) []models.SqueezeEvent {
	var events []models.SqueezeEvent
	n := len(res.States)

	inSqueeze := false
	start := 0
	for i := 0; i < n; i++ {
		st := res.States[i]
		switch {
		case st.Status == engine.SqueezeOn && !inSqueeze:
			inSqueeze = true
			start = i
		case st.Status != engine.SqueezeOn && inSqueeze:
			inSqueeze = false
			if st.Fired {
				events = append(events, closedEpisode(bars, res, start, i))
			} else {
				// Squeeze dissolved into an undefined region, no breakout.
				ev := baseEpisode(bars, res, start, i-1)
				events = append(events, ev)
			}
		}
	}
	if inSqueeze {
		ev := baseEpisode(bars, res, start, n-1)
		ev.Ongoing = true
		events = append(events, ev)
	}
	return events
}

// baseEpisode fills the fields every episode has regardless of how it ended.
func baseEpisode(bars []models.Bar, res *engine.Result, start, end int) models.SqueezeEvent {
	ev := models.SqueezeEvent{
		StartIndex: start,
		EndIndex:   end,
		StartTime:  bars[start].Timestamp,
		EndTime:    bars[end].Timestamp,
		Duration:   end - start + 1,
		Direction:  string(engine.DirectionNone),
	}
	if start > 0 {
		if w, ok := res.Frame.BBWidthPct.At(start - 1); ok {
			ev.BBWidthBefore = w
		}
	}
	min := 0.0
	first := true
	for i := start; i <= end && i < res.Frame.BBWidthPct.Len(); i++ {
		w, ok := res.Frame.BBWidthPct.At(i)
		if !ok {
			continue
		}
		if first || w < min {
			min = w
			first = false
		}
	}
	ev.MinBBWidth = min
	return ev
}

// closedEpisode extends a base episode with breakout facts at the fired bar.
func closedEpisode(bars []models.Bar, res *engine.Result, start, fired int) models.SqueezeEvent {
	ev := baseEpisode(bars, res, start, fired-1)
	ev.PriceAtBreakout = bars[fired].Close
	if m, ok := res.Frame.Momentum.At(fired); ok {
		ev.Momentum = m
	}
	for _, br := range res.Breakouts {
		if br.Index == fired {
			ev.Direction = string(br.Direction)
			break
		}
	}
	ev.Move5D = forwardMove(bars, fired, 5)
	ev.Move10D = forwardMove(bars, fired, 10)
	ev.Move20D = forwardMove(bars, fired, 20)
	return ev
}

// forwardMove is the percent change from the bar at i to the bar h bars
// later, or 0 when the series ends first.
func forwardMove(bars []models.Bar, i, h int) float64 {
	j := i + h
	if j >= len(bars) || bars[i].Close == 0 {
		return 0
	}
	return (bars[j].Close - bars[i].Close) / bars[i].Close * 100
}
