package usecase

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"SqueezeScan/internal/domain/models"
)

// WatchlistUseCase keeps the tracked-symbol registry. Adding an existing
// symbol replaces its entry, matching upsert semantics.
type WatchlistUseCase struct {
	mu    sync.RWMutex
	items map[string]*models.WatchlistItem
}

func NewWatchlistUseCase() *WatchlistUseCase {
	return &WatchlistUseCase{items: make(map[string]*models.WatchlistItem)}
}

// Add upserts a watchlist entry and returns a copy of it.
func (uc *WatchlistUseCase) Add(item models.WatchlistItem) (*models.WatchlistItem, error) {
	sym := strings.ToUpper(strings.TrimSpace(item.Symbol))
	if sym == "" {
		return nil, fmt.Errorf("symbol required")
	}
	item.Symbol = sym
	item.AddedAt = time.Now().UTC()

	uc.mu.Lock()
	defer uc.mu.Unlock()
	uc.items[sym] = &item
	out := item
	return &out, nil
}

// Remove deletes a watchlist entry. Removing an unknown symbol is an error.
func (uc *WatchlistUseCase) Remove(symbol string) error {
	sym := strings.ToUpper(strings.TrimSpace(symbol))
	uc.mu.Lock()
	defer uc.mu.Unlock()
	if _, ok := uc.items[sym]; !ok {
		return fmt.Errorf("%s not in watchlist", sym)
	}
	delete(uc.items, sym)
	return nil
}

// List returns all entries, most recently added first.
func (uc *WatchlistUseCase) List() []models.WatchlistItem {
	uc.mu.RLock()
	defer uc.mu.RUnlock()
	out := make([]models.WatchlistItem, 0, len(uc.items))
	for _, it := range uc.items {
		out = append(out, *it)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].AddedAt.Equal(out[j].AddedAt) {
			return out[i].AddedAt.After(out[j].AddedAt)
		}
		return out[i].Symbol < out[j].Symbol
	})
	return out
}

// Contains reports whether a symbol is tracked.
func (uc *WatchlistUseCase) Contains(symbol string) bool {
	sym := strings.ToUpper(strings.TrimSpace(symbol))
	uc.mu.RLock()
	defer uc.mu.RUnlock()
	_, ok := uc.items[sym]
	return ok
}

// Symbols returns the tracked symbols in list order, for scanning the
// watchlist as a universe.
func (uc *WatchlistUseCase) Symbols() []string {
	items := uc.List()
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Symbol
	}
	return out
}

// Update patches the notes and price levels of an entry; nil fields keep
// their current value.
func (uc *WatchlistUseCase) Update(symbol string, notes *string, targetPrice, stopLoss *float64) (*models.WatchlistItem, error) {
	sym := strings.ToUpper(strings.TrimSpace(symbol))
	uc.mu.Lock()
	defer uc.mu.Unlock()
	it, ok := uc.items[sym]
	if !ok {
		return nil, fmt.Errorf("%s not in watchlist", sym)
	}
	if notes != nil {
		it.Notes = *notes
	}
	if targetPrice != nil {
		v := *targetPrice
		it.TargetPrice = &v
	}
	if stopLoss != nil {
		v := *stopLoss
		it.StopLoss = &v
	}
	out := *it
	return &out, nil
}
