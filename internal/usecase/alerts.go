package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"SqueezeScan/internal/domain/models"
	"SqueezeScan/pkg/logger"
)

// AlertsUseCase stores alert definitions and evaluates them against scan
// results. Matched alerts are handed to a dispatcher for publishing.
type AlertsUseCase struct {
	mu     sync.RWMutex
	alerts map[int64]*models.Alert
	nextID int64

	dispatch func(ctx context.Context, t *models.TriggeredAlert) error
	log      *logger.Logger
}

func NewAlertsUseCase(log *logger.Logger) *AlertsUseCase {
	return &AlertsUseCase{
		alerts: make(map[int64]*models.Alert),
		nextID: 1,
		log:    log,
	}
}

// SetDispatcher wires the sink that receives triggered alerts.
func (uc *AlertsUseCase) SetDispatcher(fn func(ctx context.Context, t *models.TriggeredAlert) error) {
	uc.dispatch = fn
}

// Create registers a new active alert and returns a copy with its ID
// assigned.
func (uc *AlertsUseCase) Create(symbol, companyName, alertType string, threshold float64) (*models.Alert, error) {
	switch alertType {
	case models.AlertPriceAbove, models.AlertPriceBelow:
		if threshold <= 0 {
			return nil, fmt.Errorf("threshold must be positive for %s", alertType)
		}
	case models.AlertSqueezeFire:
	default:
		return nil, fmt.Errorf("unknown alert type '%s'", alertType)
	}
	if symbol == "" {
		return nil, fmt.Errorf("symbol required")
	}

	uc.mu.Lock()
	defer uc.mu.Unlock()
	a := &models.Alert{
		ID:          uc.nextID,
		Symbol:      symbol,
		CompanyName: companyName,
		Type:        alertType,
		Threshold:   threshold,
		Active:      true,
		CreatedAt:   time.Now().UTC(),
	}
	uc.nextID++
	uc.alerts[a.ID] = a
	out := *a
	return &out, nil
}

// List returns all alerts ordered by ID.
func (uc *AlertsUseCase) List() []models.Alert {
	uc.mu.RLock()
	defer uc.mu.RUnlock()
	out := make([]models.Alert, 0, len(uc.alerts))
	for _, a := range uc.alerts {
		out = append(out, *a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Delete removes an alert. Deleting an unknown ID is an error.
func (uc *AlertsUseCase) Delete(id int64) error {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	if _, ok := uc.alerts[id]; !ok {
		return fmt.Errorf("alert %d not found", id)
	}
	delete(uc.alerts, id)
	return nil
}

// SetActive toggles an alert without removing its definition.
func (uc *AlertsUseCase) SetActive(id int64, active bool) error {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	a, ok := uc.alerts[id]
	if !ok {
		return fmt.Errorf("alert %d not found", id)
	}
	a.Active = active
	return nil
}

// Evaluate checks active alerts against scan results and dispatches matches.
// A matched one-shot price alert is deactivated so it fires once.
func (uc *AlertsUseCase) Evaluate(ctx context.Context, results []models.ScanResult) []models.TriggeredAlert {
	bySymbol := make(map[string]*models.ScanResult, len(results))
	for i := range results {
		bySymbol[results[i].Symbol] = &results[i]
	}

	uc.mu.Lock()
	var triggered []models.TriggeredAlert
	for _, a := range uc.alerts {
		if !a.Active {
			continue
		}
		r, ok := bySymbol[a.Symbol]
		if !ok {
			continue
		}
		t, match := matchAlert(a, r)
		if !match {
			continue
		}
		if a.Type == models.AlertPriceAbove || a.Type == models.AlertPriceBelow {
			a.Active = false
		}
		triggered = append(triggered, *t)
	}
	uc.mu.Unlock()

	sort.Slice(triggered, func(i, j int) bool { return triggered[i].ID < triggered[j].ID })
	for i := range triggered {
		if uc.dispatch == nil {
			continue
		}
		if err := uc.dispatch(ctx, &triggered[i]); err != nil {
			uc.log.Warn("alert dispatch failed",
				logger.String("symbol", triggered[i].Symbol),
				logger.Error(err),
			)
		}
	}
	return triggered
}

func matchAlert(a *models.Alert, r *models.ScanResult) (*models.TriggeredAlert, bool) {
	var direction string
	switch a.Type {
	case models.AlertPriceAbove:
		if r.CurrentPrice <= a.Threshold {
			return nil, false
		}
	case models.AlertPriceBelow:
		if r.CurrentPrice >= a.Threshold {
			return nil, false
		}
	case models.AlertSqueezeFire:
		if !r.SqueezeFired {
			return nil, false
		}
		if r.Momentum > 0 {
			direction = "BULLISH"
		} else if r.Momentum < 0 {
			direction = "BEARISH"
		}
	default:
		return nil, false
	}
	return &models.TriggeredAlert{
		Alert:        *a,
		CurrentPrice: r.CurrentPrice,
		Direction:    direction,
		TriggeredAt:  time.Now().UTC(),
	}, true
}
