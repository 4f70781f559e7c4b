package usecase

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"SqueezeScan/internal/domain/models"
)

var exportHeader = []string{
	"symbol", "scanned_at", "price", "change_pct",
	"squeeze_on", "squeeze_fired", "squeeze_duration",
	"momentum", "momentum_direction", "bb_width_pct", "volume",
	"dma_200", "above_dma_200", "dma_200_distance_pct", "signal_valid",
}

// ExportCSV writes scan results as CSV. Undefined trend columns are left
// empty rather than zero-filled so spreadsheets do not misread warmup rows.
func ExportCSV(w io.Writer, results []models.ScanResult) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, r := range results {
		row := []string{
			r.Symbol,
			r.ScannedAt.UTC().Format("2006-01-02T15:04:05Z"),
			formatFloat(r.CurrentPrice),
			formatFloat(r.PriceChangePct),
			strconv.FormatBool(r.SqueezeOn),
			strconv.FormatBool(r.SqueezeFired),
			strconv.Itoa(r.SqueezeDuration),
			formatFloat(r.Momentum),
			r.MomentumDirection,
			formatFloat(r.BBWidthPct),
			formatFloat(r.Volume),
			formatFloatPtr(r.DMA200),
			formatBoolPtr(r.AboveDMA200),
			formatFloatPtr(r.DMA200DistancePct),
			strconv.FormatBool(r.SignalValid),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row %s: %w", r.Symbol, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatFloatPtr(v *float64) string {
	if v == nil {
		return ""
	}
	return formatFloat(*v)
}

func formatBoolPtr(v *bool) string {
	if v == nil {
		return ""
	}
	return strconv.FormatBool(*v)
}
