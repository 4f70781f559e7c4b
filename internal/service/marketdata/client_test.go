package marketdata

import (
	"encoding/json"
	"testing"
	"time"
)

func TestParseChartSkipsNullRows(t *testing.T) {
	payload := `{
        "chart": {
            "result": [{
                "timestamp": [1700006400, 1700092800, 1700179200],
                "indicators": {
                    "quote": [{
                        "open":   [100.0, null, 102.0],
                        "high":   [101.0, null, 103.0],
                        "low":    [99.0,  null, 101.0],
                        "close":  [100.5, null, 102.5],
                        "volume": [5000,  null, null]
                    }]
                }
            }],
            "error": null
        }
    }`
	var resp chartResponse
	if err := json.Unmarshal([]byte(payload), &resp); err != nil {
		t.Fatalf("unmarshal fixture: %v", err)
	}

	bars, err := parseChart("ACME", &resp)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(bars) != 2 {
		t.Fatalf("bars = %d, want 2 (null row skipped)", len(bars))
	}
	if bars[0].Close != 100.5 || bars[1].Close != 102.5 {
		t.Fatalf("closes = %v/%v", bars[0].Close, bars[1].Close)
	}
	if bars[0].Symbol != "ACME" {
		t.Fatalf("symbol = %q", bars[0].Symbol)
	}
	if !bars[0].Timestamp.Equal(time.Unix(1700006400, 0).UTC()) {
		t.Fatalf("timestamp = %v", bars[0].Timestamp)
	}
	// Missing volume falls back to zero rather than dropping the bar.
	if bars[1].Volume != 0 {
		t.Fatalf("volume = %v, want 0", bars[1].Volume)
	}
	if !bars[0].Timestamp.Before(bars[1].Timestamp) {
		t.Fatalf("bars not ascending")
	}
}

func TestParseChartProviderError(t *testing.T) {
	payload := `{"chart": {"result": [], "error": {"code": "Not Found", "description": "no data"}}}`
	var resp chartResponse
	if err := json.Unmarshal([]byte(payload), &resp); err != nil {
		t.Fatalf("unmarshal fixture: %v", err)
	}
	if _, err := parseChart("NOPE", &resp); err == nil {
		t.Fatalf("expected provider error")
	}
}

func TestParseChartEmptyResult(t *testing.T) {
	var resp chartResponse
	if _, err := parseChart("EMPTY", &resp); err == nil {
		t.Fatalf("expected error on empty result")
	}
}
