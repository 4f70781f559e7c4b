package usecase

import (
	"testing"

	"SqueezeScan/internal/domain/models"
)

func TestWatchlistAddUpserts(t *testing.T) {
	uc := NewWatchlistUseCase()

	if _, err := uc.Add(models.WatchlistItem{Symbol: "  "}); err == nil {
		t.Fatalf("expected error on blank symbol")
	}

	first, err := uc.Add(models.WatchlistItem{Symbol: "acme", Notes: "tight bands"})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if first.Symbol != "ACME" {
		t.Fatalf("symbol = %q, want normalized ACME", first.Symbol)
	}
	if first.AddedAt.IsZero() {
		t.Fatalf("added_at not set")
	}

	// Re-adding the same symbol replaces the entry.
	tp := 150.0
	if _, err := uc.Add(models.WatchlistItem{Symbol: "ACME", TargetPrice: &tp}); err != nil {
		t.Fatalf("re-add: %v", err)
	}
	items := uc.List()
	if len(items) != 1 {
		t.Fatalf("items = %d, want 1 after upsert", len(items))
	}
	if items[0].Notes != "" || items[0].TargetPrice == nil || *items[0].TargetPrice != 150 {
		t.Fatalf("upsert kept stale fields: %+v", items[0])
	}
	if !uc.Contains("acme") {
		t.Fatalf("Contains should be case-insensitive")
	}
}

func TestWatchlistUpdatePatchesFields(t *testing.T) {
	uc := NewWatchlistUseCase()
	tp := 150.0
	if _, err := uc.Add(models.WatchlistItem{Symbol: "ACME", Notes: "keep", TargetPrice: &tp}); err != nil {
		t.Fatalf("add: %v", err)
	}

	sl := 120.0
	item, err := uc.Update("acme", nil, nil, &sl)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if item.Notes != "keep" || item.TargetPrice == nil || *item.TargetPrice != 150 {
		t.Fatalf("nil fields must keep their value: %+v", item)
	}
	if item.StopLoss == nil || *item.StopLoss != 120 {
		t.Fatalf("stop loss not patched: %+v", item)
	}

	notes := "breaking out"
	if _, err := uc.Update("ACME", &notes, nil, nil); err != nil {
		t.Fatalf("update notes: %v", err)
	}
	if got := uc.List()[0].Notes; got != "breaking out" {
		t.Fatalf("notes = %q", got)
	}

	if _, err := uc.Update("GHOST", &notes, nil, nil); err == nil {
		t.Fatalf("expected error updating unknown symbol")
	}
}

func TestWatchlistRemoveAndSymbols(t *testing.T) {
	uc := NewWatchlistUseCase()
	for _, sym := range []string{"AAA", "BBB", "CCC"} {
		if _, err := uc.Add(models.WatchlistItem{Symbol: sym}); err != nil {
			t.Fatalf("add %s: %v", sym, err)
		}
	}

	if err := uc.Remove("bbb"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := uc.Remove("BBB"); err == nil {
		t.Fatalf("expected error removing twice")
	}

	syms := uc.Symbols()
	if len(syms) != 2 {
		t.Fatalf("symbols = %v, want 2", syms)
	}
	for _, s := range syms {
		if s == "BBB" {
			t.Fatalf("removed symbol still listed: %v", syms)
		}
	}
}
