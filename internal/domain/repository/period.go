package repository

// Period represents a daily-bar lookback window requested from the data
// provider (yahoo-style period strings).
type Period string

const (
	Period6M  Period = "6mo"
	Period1Y  Period = "1y"
	Period2Y  Period = "2y"
	Period5Y  Period = "5y"
	PeriodMax Period = "max"
)

// IsValidPeriod returns true if p is a supported period.
func IsValidPeriod(p Period) bool {
	switch p {
	case Period6M, Period1Y, Period2Y, Period5Y, PeriodMax:
		return true
	default:
		return false
	}
}

// DefaultPeriod returns the default lookback period.
func DefaultPeriod() Period { return Period1Y }

// NormalizePeriod converts a raw string to a valid period (or default).
func NormalizePeriod(s string) Period {
	if s == "" {
		return DefaultPeriod()
	}
	p := Period(s)
	if IsValidPeriod(p) {
		return p
	}
	return DefaultPeriod()
}

// ApproxBars returns the approximate number of daily bars covered by p,
// used for provider range requests and cache sizing.
func ApproxBars(p Period) int {
	switch p {
	case Period6M:
		return 126
	case Period1Y:
		return 252
	case Period2Y:
		return 504
	case Period5Y:
		return 1260
	default:
		return 2520
	}
}
