package repository

import (
	"context"
	"time"

	"SqueezeScan/internal/domain/models"
)

// BarSource fetches daily bars from an external market data provider.
type BarSource interface {
	FetchDailyBars(ctx context.Context, symbol string, period Period) ([]models.Bar, error)
}

// BarStore persists daily bars and serves them back in ascending order.
type BarStore interface {
	Init(ctx context.Context) error
	StoreBars(ctx context.Context, bars []models.Bar) error
	GetBars(ctx context.Context, symbol string, from, to time.Time) ([]models.Bar, error)
	GetLatestNBars(ctx context.Context, symbol string, n int) ([]models.Bar, error)
	Health(ctx context.Context) error
	Close() error
}

// ScanStore persists per-day scan results so a universe scan is run at most
// once per trading day.
type ScanStore interface {
	SaveScanResults(ctx context.Context, day time.Time, results []models.ScanResult) error
	GetScanResults(ctx context.Context, day time.Time) ([]models.ScanResult, error)
	SymbolsNeedingScan(ctx context.Context, day time.Time, symbols []string) ([]string, error)
}

// AlertPublisher publishes triggered alerts for downstream notification.
type AlertPublisher interface {
	PublishAlert(ctx context.Context, a *models.TriggeredAlert) error
	PublishAlertBatch(ctx context.Context, alerts []*models.TriggeredAlert) error
	Close() error
}

// Metrics records operational metrics for the scanner.
type Metrics interface {
	RecordScan(symbol string, seconds float64)
	RecordScanOutcome(outcome string)
	RecordError(kind string)
	RecordLastClose(symbol string, price float64)
	RecordSqueezeCounts(active, fired int)
}
