package usecase

import (
	"context"
	"fmt"

	"SqueezeScan/internal/domain/models"
	drepo "SqueezeScan/internal/domain/repository"
	"SqueezeScan/pkg/logger"
	"SqueezeScan/pkg/queue"
)

const scanJobType = "scan_symbol"

// ScanJobPayload is the queue message for one symbol scan.
type ScanJobPayload struct {
	Symbol string `json:"symbol"`
	Period string `json:"period"`
}

// ScanJob consumes queued symbol scans, runs the scanner and evaluates
// alerts against the result.
type ScanJob struct {
	scanner *SqueezeScanner
	alerts  *AlertsUseCase
	log     *logger.Logger
}

func NewScanJob(scanner *SqueezeScanner, alerts *AlertsUseCase, log *logger.Logger) *ScanJob {
	return &ScanJob{scanner: scanner, alerts: alerts, log: log}
}

func (j *ScanJob) Name() string { return "squeeze_scan" }
func (j *ScanJob) Type() string { return scanJobType }

func (j *ScanJob) Handle(ctx context.Context, payload interface{}) error {
	p, err := queue.ParsePayload[ScanJobPayload](payload)
	if err != nil {
		return fmt.Errorf("parse scan payload: %w", err)
	}
	if p.Symbol == "" {
		return fmt.Errorf("scan payload missing symbol")
	}

	res, err := j.scanner.ScanSymbol(ctx, p.Symbol, drepo.NormalizePeriod(p.Period))
	if err != nil {
		return err
	}
	if j.alerts != nil {
		j.alerts.Evaluate(ctx, []models.ScanResult{*res})
	}
	j.log.Debug("queued scan done",
		logger.String("symbol", p.Symbol),
		logger.Bool("squeeze_on", res.SqueezeOn),
		logger.Bool("fired", res.SqueezeFired),
	)
	return nil
}

// EnqueueUniverse pushes one scan job per symbol onto the queue.
func EnqueueUniverse(ctx context.Context, q queue.QueueService, symbols []string, period drepo.Period) error {
	for _, sym := range symbols {
		if err := q.PublishMessage(ctx, scanJobType, ScanJobPayload{Symbol: sym, Period: string(period)}); err != nil {
			return fmt.Errorf("enqueue %s: %w", sym, err)
		}
	}
	return nil
}
