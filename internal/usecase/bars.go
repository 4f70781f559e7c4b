package usecase

import (
	"context"
	"fmt"
	"time"

	"SqueezeScan/internal/domain/models"
	domrepo "SqueezeScan/internal/domain/repository"
)

// BarsUseCase provides business logic for retrieving stored daily bars.
type BarsUseCase struct {
	store domrepo.BarStore
}

func NewBarsUseCase(store domrepo.BarStore) *BarsUseCase {
	return &BarsUseCase{store: store}
}

type GetBarsParams struct {
	Symbol string
	From   time.Time
	To     time.Time
	Limit  int
}

type GetBarsResult struct {
	Symbol string       `json:"symbol"`
	From   time.Time    `json:"from"`
	To     time.Time    `json:"to"`
	Count  int          `json:"count"`
	Bars   []models.Bar `json:"bars"`
}

func (uc *BarsUseCase) GetBars(ctx context.Context, p GetBarsParams) (*GetBarsResult, error) {
	if p.Symbol == "" {
		return nil, fmt.Errorf("symbol required")
	}
	if p.From.After(p.To) {
		return nil, fmt.Errorf("from must be <= to")
	}
	if p.Limit <= 0 {
		p.Limit = 5000
	}
	if p.Limit > 20000 {
		p.Limit = 20000
	}

	bars, err := uc.store.GetBars(ctx, p.Symbol, p.From, p.To)
	if err != nil {
		return nil, fmt.Errorf("get bars: %w", err)
	}
	if len(bars) > p.Limit {
		bars = bars[len(bars)-p.Limit:]
	}

	return &GetBarsResult{
		Symbol: p.Symbol,
		From:   p.From,
		To:     p.To,
		Count:  len(bars),
		Bars:   bars,
	}, nil
}
