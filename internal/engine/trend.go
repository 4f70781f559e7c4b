package engine

// trendReference computes the long- and short-window simple moving averages
// of close used for validation, and the percentage distance of close from the
// long average.
func trendReference(closes []float64, long, short int) (dmaLong, dmaShort, distPct Series) {
	dmaLong = SMA(closes, long)
	dmaShort = SMA(closes, short)
	distPct = NewSeries(len(closes))
	for i := range closes {
		d, ok := dmaLong.At(i)
		if !ok || d == 0 {
			continue
		}
		distPct.Set(i, (closes[i]-d)/d*100)
	}
	return dmaLong, dmaShort, distPct
}
