package usecase

import (
	"context"
	"fmt"
	"testing"
	"time"

	"SqueezeScan/internal/domain/models"
	drepo "SqueezeScan/internal/domain/repository"
	"SqueezeScan/internal/engine"
	"SqueezeScan/pkg/logger"
)

type stubSource struct {
	bars map[string][]models.Bar
	errs map[string]error
}

func (s *stubSource) FetchDailyBars(_ context.Context, symbol string, _ drepo.Period) ([]models.Bar, error) {
	if err, ok := s.errs[symbol]; ok {
		return nil, err
	}
	return s.bars[symbol], nil
}

type nopMetrics struct{}

func (nopMetrics) RecordScan(string, float64)   {}
func (nopMetrics) RecordScanOutcome(string)     {}
func (nopMetrics) RecordError(string)           {}
func (nopMetrics) RecordLastClose(string, float64) {}
func (nopMetrics) RecordSqueezeCounts(int, int) {}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	l, err := logger.New(&logger.Config{Level: "error", Format: "console", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return l
}

func dailyBars(symbol string, closes []float64) []models.Bar {
	start := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	bars := make([]models.Bar, len(closes))
	for i, c := range closes {
		bars[i] = models.Bar{
			Timestamp: start.AddDate(0, 0, i),
			Symbol:    symbol,
			Open:      c,
			High:      c + 0.1,
			Low:       c - 0.1,
			Close:     c,
			Volume:    1000,
		}
	}
	return bars
}

func mapBars(symbol string, closes []float64) map[string][]models.Bar {
	return map[string][]models.Bar{symbol: dailyBars(symbol, closes)}
}

// breakoutCloses produces a series whose squeeze fires on the final bar.
func breakoutCloses() []float64 {
	closes := make([]float64, 221)
	for i := 0; i < 200; i++ {
		closes[i] = 100 + 0.2*float64(i)
	}
	for i := 200; i < 220; i++ {
		closes[i] = 140
	}
	closes[220] = 146
	return closes
}

func trendingCloses(n int) []float64 {
	closes := make([]float64, n)
	for i := range closes {
		closes[i] = 100 + 0.3*float64(i)
	}
	return closes
}

func newTestScanner(src *stubSource, t *testing.T) *SqueezeScanner {
	return NewSqueezeScanner(src, nil, nil, engine.New(engine.Config{}), nopMetrics{}, testLogger(t), 2, 50)
}

func TestScanSymbolFiredBreakout(t *testing.T) {
	src := &stubSource{bars: map[string][]models.Bar{
		"ACME": dailyBars("ACME", breakoutCloses()),
	}}
	s := newTestScanner(src, t)

	res, err := s.ScanSymbol(context.Background(), "ACME", drepo.Period1Y)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if res.Symbol != "ACME" {
		t.Fatalf("symbol = %q", res.Symbol)
	}
	if res.CurrentPrice != 146 {
		t.Fatalf("price = %v, want 146", res.CurrentPrice)
	}
	if !res.SqueezeFired || res.SqueezeOn {
		t.Fatalf("fired=%v on=%v, want fired and not on", res.SqueezeFired, res.SqueezeOn)
	}
	if res.Momentum <= 0 {
		t.Fatalf("momentum = %v, want positive", res.Momentum)
	}
	if !res.SignalValid {
		t.Fatalf("expected valid signal, got %+v", res)
	}
	if res.DMA200 == nil || res.AboveDMA200 == nil || !*res.AboveDMA200 {
		t.Fatalf("expected price above the 200 DMA")
	}
	if res.PriceChangePct <= 0 {
		t.Fatalf("change pct = %v, want positive on the jump bar", res.PriceChangePct)
	}
}

func TestScanSymbolInsufficientData(t *testing.T) {
	src := &stubSource{bars: map[string][]models.Bar{
		"TINY": dailyBars("TINY", trendingCloses(10)),
	}}
	s := newTestScanner(src, t)

	if _, err := s.ScanSymbol(context.Background(), "TINY", drepo.Period1Y); err == nil {
		t.Fatalf("expected error on 10-bar series")
	}
}

func TestScanSymbolShortButEnoughDegrades(t *testing.T) {
	// 60 bars passes the minimum but leaves the 200 DMA undefined.
	src := &stubSource{bars: map[string][]models.Bar{
		"MID": dailyBars("MID", trendingCloses(60)),
	}}
	s := newTestScanner(src, t)

	res, err := s.ScanSymbol(context.Background(), "MID", drepo.Period1Y)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if res.DMA200 != nil || res.AboveDMA200 != nil {
		t.Fatalf("trend fields should be nil on a 60-bar series")
	}
	if res.SignalValid {
		t.Fatalf("signal cannot be valid without a trend reference")
	}
}

func TestScanUniverseCollectsFailures(t *testing.T) {
	src := &stubSource{
		bars: map[string][]models.Bar{
			"AAA": dailyBars("AAA", trendingCloses(260)),
			"BBB": dailyBars("BBB", breakoutCloses()),
		},
		errs: map[string]error{
			"BAD": fmt.Errorf("upstream 404"),
		},
	}
	s := newTestScanner(src, t)

	res, err := s.ScanUniverse(context.Background(), []string{"AAA", "BBB", "BAD"}, drepo.Period1Y, false)
	if err != nil {
		t.Fatalf("universe scan: %v", err)
	}
	if len(res.Results) != 2 {
		t.Fatalf("results = %d, want 2", len(res.Results))
	}
	if len(res.Failed) != 1 || res.Failed[0] != "BAD" {
		t.Fatalf("failed = %v, want [BAD]", res.Failed)
	}
	if res.Summary.TotalSymbols != 2 {
		t.Fatalf("summary total = %d, want 2", res.Summary.TotalSymbols)
	}
	if res.Summary.FiredToday != 1 {
		t.Fatalf("summary fired = %d, want 1", res.Summary.FiredToday)
	}
	// Fired signals sort first.
	if res.Results[0].Symbol != "BBB" {
		t.Fatalf("first result = %s, want the fired BBB", res.Results[0].Symbol)
	}
}

type recordSink struct {
	events []models.ScanProgress
}

func (r *recordSink) Publish(p models.ScanProgress) { r.events = append(r.events, p) }

func TestScanUniverseReportsProgress(t *testing.T) {
	src := &stubSource{bars: map[string][]models.Bar{
		"AAA": dailyBars("AAA", trendingCloses(260)),
	}}
	s := NewSqueezeScanner(src, nil, nil, engine.New(engine.Config{}), nopMetrics{}, testLogger(t), 1, 50)
	sink := &recordSink{}
	s.SetProgressSink(sink)

	if _, err := s.ScanUniverse(context.Background(), []string{"AAA"}, drepo.Period1Y, false); err != nil {
		t.Fatalf("universe scan: %v", err)
	}
	if len(sink.events) != 1 {
		t.Fatalf("progress events = %d, want 1", len(sink.events))
	}
	ev := sink.events[0]
	if ev.Completed != 1 || ev.Total != 1 || ev.Symbol != "AAA" || ev.Failed {
		t.Fatalf("progress = %+v", ev)
	}
}

func TestSortScanResultsOrdering(t *testing.T) {
	results := []models.ScanResult{
		{Symbol: "WIDE", BBWidthPct: 9},
		{Symbol: "ON_SHORT", SqueezeOn: true, SqueezeDuration: 2},
		{Symbol: "FIRED", SqueezeFired: true},
		{Symbol: "ON_LONG", SqueezeOn: true, SqueezeDuration: 8},
		{Symbol: "TIGHT", BBWidthPct: 3},
	}
	sortScanResults(results)

	want := []string{"FIRED", "ON_LONG", "ON_SHORT", "TIGHT", "WIDE"}
	for i, w := range want {
		if results[i].Symbol != w {
			t.Fatalf("order[%d] = %s, want %s (full: %+v)", i, results[i].Symbol, w, results)
		}
	}
}

func TestScanSymbolUndefinedMomentumLeftBlank(t *testing.T) {
	// 12 bars passes a lowered minimum but is one bar short of the first
	// defined oscillator value, so the direction stays unclassified.
	src := &stubSource{bars: map[string][]models.Bar{
		"NEW": dailyBars("NEW", trendingCloses(12)),
	}}
	s := NewSqueezeScanner(src, nil, nil, engine.New(engine.Config{}), nopMetrics{}, testLogger(t), 1, 12)

	res, err := s.ScanSymbol(context.Background(), "NEW", drepo.Period1Y)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if res.MomentumDirection != "" {
		t.Fatalf("direction = %q, want empty when the oscillator is undefined", res.MomentumDirection)
	}
}

type stubScans struct {
	stored []models.ScanResult
	saved  []models.ScanResult
}

func (s *stubScans) SaveScanResults(_ context.Context, _ time.Time, results []models.ScanResult) error {
	s.saved = append(s.saved, results...)
	return nil
}

func (s *stubScans) GetScanResults(context.Context, time.Time) ([]models.ScanResult, error) {
	return s.stored, nil
}

func (s *stubScans) SymbolsNeedingScan(_ context.Context, _ time.Time, symbols []string) ([]string, error) {
	done := make(map[string]struct{}, len(s.stored))
	for _, r := range s.stored {
		done[r.Symbol] = struct{}{}
	}
	var missing []string
	for _, sym := range symbols {
		if _, ok := done[sym]; !ok {
			missing = append(missing, sym)
		}
	}
	return missing, nil
}

func TestScanUniverseServesStoredResults(t *testing.T) {
	// AAA has a stored result for today and no fetchable bars, so a second
	// run must serve it from the store and scan only BBB.
	src := &stubSource{
		bars: map[string][]models.Bar{"BBB": dailyBars("BBB", trendingCloses(260))},
		errs: map[string]error{"AAA": fmt.Errorf("upstream down")},
	}
	scans := &stubScans{stored: []models.ScanResult{
		{Symbol: "AAA", CurrentPrice: 123, BBWidthPct: 1},
	}}
	s := NewSqueezeScanner(src, nil, scans, engine.New(engine.Config{}), nopMetrics{}, testLogger(t), 2, 50)

	res, err := s.ScanUniverse(context.Background(), []string{"AAA", "BBB"}, drepo.Period1Y, false)
	if err != nil {
		t.Fatalf("universe scan: %v", err)
	}
	if len(res.Failed) != 0 {
		t.Fatalf("failed = %v, cached AAA should not be fetched", res.Failed)
	}
	if len(res.Results) != 2 {
		t.Fatalf("results = %d, want stored AAA merged with fresh BBB", len(res.Results))
	}
	var sawCached bool
	for _, r := range res.Results {
		if r.Symbol == "AAA" && r.CurrentPrice == 123 {
			sawCached = true
		}
	}
	if !sawCached {
		t.Fatalf("stored AAA snapshot missing from %+v", res.Results)
	}
	if len(scans.saved) != 1 || scans.saved[0].Symbol != "BBB" {
		t.Fatalf("saved = %+v, want only the freshly scanned BBB", scans.saved)
	}
}

func TestScanUniverseForceRescans(t *testing.T) {
	src := &stubSource{
		errs: map[string]error{"AAA": fmt.Errorf("upstream down")},
	}
	scans := &stubScans{stored: []models.ScanResult{
		{Symbol: "AAA", CurrentPrice: 123},
	}}
	s := NewSqueezeScanner(src, nil, scans, engine.New(engine.Config{}), nopMetrics{}, testLogger(t), 1, 50)

	res, err := s.ScanUniverse(context.Background(), []string{"AAA"}, drepo.Period1Y, true)
	if err != nil {
		t.Fatalf("universe scan: %v", err)
	}
	if len(res.Failed) != 1 || res.Failed[0] != "AAA" {
		t.Fatalf("failed = %v, force must bypass the stored snapshot", res.Failed)
	}
	if len(res.Results) != 0 {
		t.Fatalf("results = %+v, want none on a forced failing fetch", res.Results)
	}
}
