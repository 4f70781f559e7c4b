package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"SqueezeScan/internal/domain/models"
	drepo "SqueezeScan/internal/domain/repository"
	"SqueezeScan/internal/engine"
	icache "SqueezeScan/internal/service/cache"
	"SqueezeScan/pkg/logger"
)

// ErrInsufficientData marks a symbol with fewer bars than the scan minimum.
var ErrInsufficientData = errors.New("insufficient data")

// ProgressSink receives per-symbol progress while a universe scan runs.
type ProgressSink interface {
	Publish(p models.ScanProgress)
}

// SqueezeScanner runs the squeeze engine over one symbol or a whole universe.
type SqueezeScanner struct {
	source  drepo.BarSource
	store   drepo.BarStore
	scans   drepo.ScanStore
	eng     *engine.Engine
	metrics drepo.Metrics
	log     *logger.Logger

	workers  int
	minBars  int
	progress ProgressSink

	resultCache icache.BytesCache
	resultTTL   time.Duration
}

// NewSqueezeScanner creates a scanner. store and scans may be nil when
// persistence is disabled.
func NewSqueezeScanner(
	source drepo.BarSource,
	store drepo.BarStore,
	scans drepo.ScanStore,
	eng *engine.Engine,
	metrics drepo.Metrics,
	log *logger.Logger,
	workers, minBars int,
) *SqueezeScanner {
	if workers <= 0 {
		workers = 4
	}
	if minBars <= 0 {
		minBars = 50
	}
	return &SqueezeScanner{
		source:  source,
		store:   store,
		scans:   scans,
		eng:     eng,
		metrics: metrics,
		log:     log,
		workers: workers,
		minBars: minBars,
	}
}

// SetProgressSink wires a progress receiver for universe scans.
func (s *SqueezeScanner) SetProgressSink(p ProgressSink) { s.progress = p }

// SetResultCache enables short-lived per-symbol result caching so repeated
// requests inside one session skip the fetch and compute.
func (s *SqueezeScanner) SetResultCache(c icache.BytesCache, ttl time.Duration) {
	s.resultCache = c
	s.resultTTL = ttl
}

// ScanSymbol fetches bars for one symbol, runs the engine, and distills the
// latest bar into a ScanResult.
func (s *SqueezeScanner) ScanSymbol(ctx context.Context, symbol string, period drepo.Period) (*models.ScanResult, error) {
	start := time.Now()

	cacheKey := "scan:" + symbol + ":" + string(period)
	if s.resultCache != nil {
		if b, ok, err := s.resultCache.GetBytes(cacheKey); err == nil && ok {
			var cached models.ScanResult
			if err := json.Unmarshal(b, &cached); err == nil {
				return &cached, nil
			}
		}
	}

	bars, err := s.source.FetchDailyBars(ctx, symbol, period)
	if err != nil {
		s.metrics.RecordError("fetch")
		s.metrics.RecordScanOutcome("fetch_error")
		return nil, fmt.Errorf("fetch %s: %w", symbol, err)
	}
	if len(bars) < s.minBars {
		s.metrics.RecordScanOutcome("insufficient_data")
		return nil, fmt.Errorf("%s: %d bars, need at least %d: %w", symbol, len(bars), s.minBars, ErrInsufficientData)
	}

	if s.store != nil {
		if err := s.store.StoreBars(ctx, bars); err != nil {
			s.log.Warn("store bars failed", logger.String("symbol", symbol), logger.Error(err))
		}
	}

	res, err := s.eng.Compute(bars)
	if err != nil {
		s.metrics.RecordError("engine")
		s.metrics.RecordScanOutcome("engine_error")
		return nil, fmt.Errorf("compute %s: %w", symbol, err)
	}

	sr := buildScanResult(symbol, bars, res)
	s.metrics.RecordScan(symbol, time.Since(start).Seconds())
	s.metrics.RecordLastClose(symbol, sr.CurrentPrice)
	s.metrics.RecordScanOutcome("ok")

	if s.resultCache != nil {
		if b, err := json.Marshal(sr); err == nil {
			if err := s.resultCache.SetBytes(cacheKey, b, s.resultTTL); err != nil {
				s.log.Warn("result cache set failed", logger.String("symbol", symbol), logger.Error(err))
			}
		}
	}
	return sr, nil
}

// UniverseResult is the aggregate of one universe scan.
type UniverseResult struct {
	Results []models.ScanResult `json:"results"`
	Summary models.ScanSummary  `json:"summary"`
	Failed  []string            `json:"failed,omitempty"`
}

// ScanUniverse scans symbols concurrently with a bounded worker pool.
// Individual symbol failures are collected, not fatal. When a scan store is
// wired and force is false, symbols already scanned today are served from
// the stored snapshot instead of being fetched and recomputed.
func (s *SqueezeScanner) ScanUniverse(ctx context.Context, symbols []string, period drepo.Period, force bool) (*UniverseResult, error) {
	if len(symbols) == 0 {
		return nil, fmt.Errorf("empty symbol universe")
	}

	pending, cached := s.splitCachedToday(ctx, symbols, force)

	type outcome struct {
		res *models.ScanResult
		sym string
		err error
	}

	jobs := make(chan string)
	outs := make(chan outcome, len(pending))

	var wg sync.WaitGroup
	for w := 0; w < s.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for sym := range jobs {
				r, err := s.ScanSymbol(ctx, sym, period)
				outs <- outcome{res: r, sym: sym, err: err}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, sym := range pending {
			select {
			case <-ctx.Done():
				return
			case jobs <- sym:
			}
		}
	}()

	go func() {
		wg.Wait()
		close(outs)
	}()

	out := &UniverseResult{Results: make([]models.ScanResult, 0, len(symbols))}
	fresh := make([]models.ScanResult, 0, len(pending))
	completed := len(symbols) - len(pending)
	for o := range outs {
		completed++
		if o.err != nil {
			out.Failed = append(out.Failed, o.sym)
			s.log.Warn("scan failed", logger.String("symbol", o.sym), logger.Error(o.err))
		} else {
			fresh = append(fresh, *o.res)
		}
		if s.progress != nil {
			s.progress.Publish(models.ScanProgress{
				Completed: completed,
				Total:     len(symbols),
				Symbol:    o.sym,
				Failed:    o.err != nil,
			})
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if s.scans != nil && len(fresh) > 0 {
		if err := s.scans.SaveScanResults(ctx, time.Now().UTC(), fresh); err != nil {
			s.log.Warn("save scan results failed", logger.Error(err))
		}
	}

	out.Results = append(append(out.Results, fresh...), cached...)
	sortScanResults(out.Results)
	out.Summary = summarize(out.Results)
	s.metrics.RecordSqueezeCounts(out.Summary.ActiveSqueezes, out.Summary.FiredToday)

	s.log.Info("universe scan done",
		logger.Int("symbols", len(symbols)),
		logger.Int("ok", len(out.Results)),
		logger.Int("cached", len(cached)),
		logger.Int("failed", len(out.Failed)),
	)
	return out, nil
}

// splitCachedToday partitions the universe into symbols still needing a scan
// today and results already stored for today. Store errors degrade to
// scanning everything.
func (s *SqueezeScanner) splitCachedToday(ctx context.Context, symbols []string, force bool) ([]string, []models.ScanResult) {
	if s.scans == nil || force {
		return symbols, nil
	}
	today := time.Now().UTC()

	pending, err := s.scans.SymbolsNeedingScan(ctx, today, symbols)
	if err != nil {
		s.log.Warn("scan cache lookup failed", logger.Error(err))
		return symbols, nil
	}
	if len(pending) == len(symbols) {
		return pending, nil
	}

	stored, err := s.scans.GetScanResults(ctx, today)
	if err != nil {
		s.log.Warn("load stored scan results failed", logger.Error(err))
		return symbols, nil
	}
	want := make(map[string]struct{}, len(symbols))
	for _, sym := range symbols {
		want[sym] = struct{}{}
	}
	need := make(map[string]struct{}, len(pending))
	for _, sym := range pending {
		need[sym] = struct{}{}
	}
	cached := make([]models.ScanResult, 0, len(symbols)-len(pending))
	for _, r := range stored {
		if _, ok := want[r.Symbol]; !ok {
			continue
		}
		if _, ok := need[r.Symbol]; ok {
			continue
		}
		cached = append(cached, r)
	}
	return pending, cached
}

// buildScanResult distills the last bar of an engine result.
func buildScanResult(symbol string, bars []models.Bar, res *engine.Result) *models.ScanResult {
	last := len(bars) - 1
	bar := bars[last]
	st := res.States[last]

	sr := &models.ScanResult{
		Symbol:          symbol,
		ScannedAt:       time.Now().UTC(),
		CurrentPrice:    bar.Close,
		SqueezeOn:       st.Status == engine.SqueezeOn,
		SqueezeFired:    st.Fired,
		SqueezeDuration: st.Duration,
		Volume:          bar.Volume,
	}
	if last > 0 && bars[last-1].Close != 0 {
		sr.PriceChangePct = (bar.Close - bars[last-1].Close) / bars[last-1].Close * 100
	}
	if w, ok := res.Frame.BBWidthPct.At(last); ok {
		sr.BBWidthPct = w
	}
	if m, ok := res.Frame.Momentum.At(last); ok {
		sr.Momentum = m
	}
	if ms, ok := res.MomentumStateAt(last); ok {
		sr.MomentumDirection = string(ms)
	}
	if dma, ok := res.Frame.DMA200.At(last); ok {
		v := dma
		sr.DMA200 = &v
		above := bar.Close > dma
		sr.AboveDMA200 = &above
	}
	if d, ok := res.Frame.DistFromDMA200Pct.At(last); ok {
		v := d
		sr.DMA200DistancePct = &v
	}
	for _, br := range res.Breakouts {
		if br.Index == last {
			sr.SignalValid = br.Valid
			break
		}
	}
	return sr
}

// sortScanResults orders fired signals first, then active squeezes by
// duration, then the rest by tightest bands.
func sortScanResults(results []models.ScanResult) {
	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.SqueezeFired != b.SqueezeFired {
			return a.SqueezeFired
		}
		if a.SqueezeOn != b.SqueezeOn {
			return a.SqueezeOn
		}
		if a.SqueezeOn && b.SqueezeOn && a.SqueezeDuration != b.SqueezeDuration {
			return a.SqueezeDuration > b.SqueezeDuration
		}
		return a.BBWidthPct < b.BBWidthPct
	})
}

func summarize(results []models.ScanResult) models.ScanSummary {
	sum := models.ScanSummary{TotalSymbols: len(results)}
	for _, r := range results {
		if r.SqueezeOn {
			sum.ActiveSqueezes++
		}
		if r.SqueezeFired {
			sum.FiredToday++
		}
		if r.Momentum > 0 {
			sum.BullishMomentum++
		} else if r.Momentum < 0 {
			sum.BearishMomentum++
		}
	}
	return sum
}
