package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"SqueezeScan/internal/domain/models"
	pkgch "SqueezeScan/pkg/clickhouse"
	applogger "SqueezeScan/pkg/logger"
	"SqueezeScan/pkg/util"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS squeezescan.daily_bars (
        day DateTime,
        symbol String,
        open Float64,
        high Float64,
        low Float64,
        close Float64,
        vol Float64
    ) ENGINE = ReplacingMergeTree
    ORDER BY (symbol, day)`,
	`CREATE TABLE IF NOT EXISTS squeezescan.scan_results (
        day DateTime,
        symbol String,
        scanned_at DateTime,
        price Float64,
        change_pct Float64,
        squeeze_on UInt8,
        squeeze_fired UInt8,
        squeeze_duration Int32,
        momentum Float64,
        momentum_direction String,
        bb_width_pct Float64,
        vol Float64,
        dma_200 Nullable(Float64),
        dma_200_distance_pct Nullable(Float64),
        signal_valid UInt8
    ) ENGINE = ReplacingMergeTree
    ORDER BY (day, symbol)`,
}

// CHBarStore implements BarStore and ScanStore backed by ClickHouse.
type CHBarStore struct {
	ch *pkgch.Client
	db *sql.DB
	l  *applogger.Logger
}

func NewCHBarStore(ch *pkgch.Client) *CHBarStore {
	return &CHBarStore{ch: ch, db: ch.DB()}
}

// SetLogger injects a structured logger.
func (s *CHBarStore) SetLogger(l *applogger.Logger) { s.l = l }

// Init creates the schema if it does not exist.
func (s *CHBarStore) Init(ctx context.Context) error {
	return s.ch.InitSchema(ctx, schemaStatements)
}

// StoreBars inserts daily bars. ReplacingMergeTree dedupes on (symbol, day).
func (s *CHBarStore) StoreBars(ctx context.Context, bars []models.Bar) error {
	if len(bars) == 0 {
		return nil
	}
	start := time.Now()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO squeezescan.daily_bars (day, symbol, open, high, low, close, vol) VALUES (?, ?, ?, ?, ?, ?, ?)")
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, b := range bars {
		day := util.TruncateDay(b.Timestamp)
		if _, err := stmt.ExecContext(ctx, day, b.Symbol, b.Open, b.High, b.Low, b.Close, b.Volume); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert bar %s %s: %w", b.Symbol, day.Format("2006-01-02"), err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit bars: %w", err)
	}

	if s.l != nil {
		s.l.Debug("clickhouse store_bars ok",
			applogger.String("symbol", bars[0].Symbol),
			applogger.Int("rows", len(bars)),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return nil
}

// GetBars returns bars for symbol in [from, to], ascending.
func (s *CHBarStore) GetBars(ctx context.Context, symbol string, from, to time.Time) ([]models.Bar, error) {
	const q = `
        SELECT day, symbol, open, high, low, close, vol
        FROM squeezescan.daily_bars FINAL
        WHERE symbol = ? AND day >= ? AND day <= ?
        ORDER BY day ASC
    `
	rows, err := s.db.QueryContext(ctx, q, symbol, from, to)
	if err != nil {
		return nil, fmt.Errorf("get bars: %w", err)
	}
	defer rows.Close()

	out := make([]models.Bar, 0, 512)
	for rows.Next() {
		var b models.Bar
		if err := rows.Scan(&b.Timestamp, &b.Symbol, &b.Open, &b.High, &b.Low, &b.Close, &b.Volume); err != nil {
			return nil, fmt.Errorf("scan bar: %w", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}

// GetLatestNBars returns the most recent n bars, ascending.
func (s *CHBarStore) GetLatestNBars(ctx context.Context, symbol string, n int) ([]models.Bar, error) {
	const q = `
        SELECT day, symbol, open, high, low, close, vol
        FROM squeezescan.daily_bars FINAL
        WHERE symbol = ?
        ORDER BY day DESC
        LIMIT ?
    `
	rows, err := s.db.QueryContext(ctx, q, symbol, n)
	if err != nil {
		return nil, fmt.Errorf("get latest bars: %w", err)
	}
	defer rows.Close()

	tmp := make([]models.Bar, 0, n)
	for rows.Next() {
		var b models.Bar
		if err := rows.Scan(&b.Timestamp, &b.Symbol, &b.Open, &b.High, &b.Low, &b.Close, &b.Volume); err != nil {
			return nil, fmt.Errorf("scan bar: %w", err)
		}
		tmp = append(tmp, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	// reverse to ASC
	for i, j := 0, len(tmp)-1; i < j; i, j = i+1, j-1 {
		tmp[i], tmp[j] = tmp[j], tmp[i]
	}
	return tmp, nil
}

// SaveScanResults persists a day's scan snapshot.
func (s *CHBarStore) SaveScanResults(ctx context.Context, day time.Time, results []models.ScanResult) error {
	if len(results) == 0 {
		return nil
	}
	day = util.TruncateDay(day)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, `
        INSERT INTO squeezescan.scan_results
        (day, symbol, scanned_at, price, change_pct, squeeze_on, squeeze_fired, squeeze_duration,
         momentum, momentum_direction, bb_width_pct, vol, dma_200, dma_200_distance_pct, signal_valid)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range results {
		if _, err := stmt.ExecContext(ctx,
			day, r.Symbol, r.ScannedAt, r.CurrentPrice, r.PriceChangePct,
			boolToUInt8(r.SqueezeOn), boolToUInt8(r.SqueezeFired), int32(r.SqueezeDuration),
			r.Momentum, r.MomentumDirection, r.BBWidthPct, r.Volume,
			r.DMA200, r.DMA200DistancePct, boolToUInt8(r.SignalValid),
		); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert scan result %s: %w", r.Symbol, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit scan results: %w", err)
	}
	return nil
}

// GetScanResults returns the stored snapshot for a day, if any.
func (s *CHBarStore) GetScanResults(ctx context.Context, day time.Time) ([]models.ScanResult, error) {
	day = util.TruncateDay(day)
	const q = `
        SELECT symbol, scanned_at, price, change_pct, squeeze_on, squeeze_fired, squeeze_duration,
               momentum, momentum_direction, bb_width_pct, vol, dma_200, dma_200_distance_pct, signal_valid
        FROM squeezescan.scan_results FINAL
        WHERE day = ?
        ORDER BY symbol ASC
    `
	rows, err := s.db.QueryContext(ctx, q, day)
	if err != nil {
		return nil, fmt.Errorf("get scan results: %w", err)
	}
	defer rows.Close()

	out := make([]models.ScanResult, 0, 128)
	for rows.Next() {
		var (
			r       models.ScanResult
			on, fd  uint8
			dur     int32
			valid   uint8
			dma     sql.NullFloat64
			dmaDist sql.NullFloat64
		)
		if err := rows.Scan(&r.Symbol, &r.ScannedAt, &r.CurrentPrice, &r.PriceChangePct,
			&on, &fd, &dur, &r.Momentum, &r.MomentumDirection, &r.BBWidthPct, &r.Volume,
			&dma, &dmaDist, &valid,
		); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		r.SqueezeOn = on != 0
		r.SqueezeFired = fd != 0
		r.SqueezeDuration = int(dur)
		r.SignalValid = valid != 0
		if dma.Valid {
			v := dma.Float64
			r.DMA200 = &v
			above := r.CurrentPrice > v
			r.AboveDMA200 = &above
		}
		if dmaDist.Valid {
			v := dmaDist.Float64
			r.DMA200DistancePct = &v
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}

// SymbolsNeedingScan returns symbols with no stored result for day.
func (s *CHBarStore) SymbolsNeedingScan(ctx context.Context, day time.Time, symbols []string) ([]string, error) {
	day = util.TruncateDay(day)
	const q = `SELECT DISTINCT symbol FROM squeezescan.scan_results WHERE day = ?`
	rows, err := s.db.QueryContext(ctx, q, day)
	if err != nil {
		return nil, fmt.Errorf("symbols needing scan: %w", err)
	}
	defer rows.Close()

	done := make(map[string]struct{})
	for rows.Next() {
		var sym string
		if err := rows.Scan(&sym); err != nil {
			return nil, fmt.Errorf("scan symbol: %w", err)
		}
		done[sym] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	missing := make([]string, 0, len(symbols))
	for _, sym := range symbols {
		if _, ok := done[sym]; !ok {
			missing = append(missing, sym)
		}
	}
	return missing, nil
}

// Health checks the ClickHouse connection.
func (s *CHBarStore) Health(ctx context.Context) error {
	return s.ch.Health(ctx)
}

// Close releases the underlying connection.
func (s *CHBarStore) Close() error {
	return s.ch.Close()
}

func boolToUInt8(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}
