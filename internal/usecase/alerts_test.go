package usecase

import (
	"context"
	"testing"

	"SqueezeScan/internal/domain/models"
)

func TestCreateAlertValidation(t *testing.T) {
	uc := NewAlertsUseCase(testLogger(t))

	if _, err := uc.Create("", "", models.AlertPriceAbove, 100); err == nil {
		t.Fatalf("expected error on empty symbol")
	}
	if _, err := uc.Create("ACME", "", "PRICE_SIDEWAYS", 100); err == nil {
		t.Fatalf("expected error on unknown type")
	}
	if _, err := uc.Create("ACME", "", models.AlertPriceAbove, 0); err == nil {
		t.Fatalf("expected error on zero threshold")
	}

	a, err := uc.Create("ACME", "", models.AlertSqueezeFire, 0)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if a.ID == 0 || !a.Active {
		t.Fatalf("alert = %+v, want active with an ID", a)
	}
}

func TestEvaluatePriceAlertFiresOnce(t *testing.T) {
	uc := NewAlertsUseCase(testLogger(t))
	var dispatched []models.TriggeredAlert
	uc.SetDispatcher(func(_ context.Context, tr *models.TriggeredAlert) error {
		dispatched = append(dispatched, *tr)
		return nil
	})

	if _, err := uc.Create("ACME", "", models.AlertPriceAbove, 150); err != nil {
		t.Fatalf("create: %v", err)
	}

	below := []models.ScanResult{{Symbol: "ACME", CurrentPrice: 149}}
	if got := uc.Evaluate(context.Background(), below); len(got) != 0 {
		t.Fatalf("triggered below threshold: %+v", got)
	}

	above := []models.ScanResult{{Symbol: "ACME", CurrentPrice: 151}}
	got := uc.Evaluate(context.Background(), above)
	if len(got) != 1 || got[0].CurrentPrice != 151 {
		t.Fatalf("triggered = %+v, want one at 151", got)
	}
	if len(dispatched) != 1 {
		t.Fatalf("dispatched = %d, want 1", len(dispatched))
	}

	// One-shot: the matched price alert deactivates.
	if got := uc.Evaluate(context.Background(), above); len(got) != 0 {
		t.Fatalf("price alert fired twice: %+v", got)
	}
	alerts := uc.List()
	if len(alerts) != 1 || alerts[0].Active {
		t.Fatalf("alert should stay listed but inactive: %+v", alerts)
	}
}

func TestEvaluateSqueezeFireDirection(t *testing.T) {
	uc := NewAlertsUseCase(testLogger(t))
	if _, err := uc.Create("ACME", "", models.AlertSqueezeFire, 0); err != nil {
		t.Fatalf("create: %v", err)
	}

	quiet := []models.ScanResult{{Symbol: "ACME", CurrentPrice: 100, SqueezeOn: true}}
	if got := uc.Evaluate(context.Background(), quiet); len(got) != 0 {
		t.Fatalf("triggered without a fire: %+v", got)
	}

	fired := []models.ScanResult{{Symbol: "ACME", CurrentPrice: 104, SqueezeFired: true, Momentum: 1.3}}
	got := uc.Evaluate(context.Background(), fired)
	if len(got) != 1 {
		t.Fatalf("triggered = %d, want 1", len(got))
	}
	if got[0].Direction != "BULLISH" {
		t.Fatalf("direction = %q, want BULLISH", got[0].Direction)
	}

	// Squeeze alerts stay active for the next fire.
	bearish := []models.ScanResult{{Symbol: "ACME", CurrentPrice: 96, SqueezeFired: true, Momentum: -0.8}}
	got = uc.Evaluate(context.Background(), bearish)
	if len(got) != 1 || got[0].Direction != "BEARISH" {
		t.Fatalf("second fire = %+v, want BEARISH", got)
	}
}

func TestDeleteAndToggleAlert(t *testing.T) {
	uc := NewAlertsUseCase(testLogger(t))
	a, err := uc.Create("ACME", "", models.AlertPriceBelow, 90)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := uc.SetActive(a.ID, false); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	hit := []models.ScanResult{{Symbol: "ACME", CurrentPrice: 80}}
	if got := uc.Evaluate(context.Background(), hit); len(got) != 0 {
		t.Fatalf("inactive alert triggered: %+v", got)
	}

	if err := uc.Delete(a.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := uc.Delete(a.ID); err == nil {
		t.Fatalf("expected error deleting twice")
	}
	if len(uc.List()) != 0 {
		t.Fatalf("list should be empty")
	}
}

func TestCreateAlertCarriesCompanyName(t *testing.T) {
	uc := NewAlertsUseCase(testLogger(t))
	a, err := uc.Create("ACME", "Acme Corp", models.AlertPriceAbove, 150)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if a.CompanyName != "Acme Corp" {
		t.Fatalf("company = %q, want Acme Corp", a.CompanyName)
	}

	// The returned alert is a copy; mutating it must not leak into the
	// registry.
	a.CompanyName = "changed"
	alerts := uc.List()
	if len(alerts) != 1 || alerts[0].CompanyName != "Acme Corp" {
		t.Fatalf("listed = %+v, want registry untouched", alerts)
	}
}
