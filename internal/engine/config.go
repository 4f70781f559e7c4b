package engine

// MomentumSource selects the regression input for the momentum oscillator.
type MomentumSource string

const (
	// SourceMidlineDeviation regresses close - kc_middle, the deviation of
	// price from the Keltner midline.
	SourceMidlineDeviation MomentumSource = "midline"
	// SourceClose regresses the raw close.
	SourceClose MomentumSource = "close"
)

// Config holds the engine parameters. The zero value of any field falls back
// to its default, so callers can override selectively.
type Config struct {
	BBPeriod       int            `yaml:"bb_period"`
	BBMult         float64        `yaml:"bb_mult"`
	KCSpan         int            `yaml:"kc_span"`
	ATRSpan        int            `yaml:"atr_span"`
	KCMult         float64        `yaml:"kc_mult"`
	MomentumPeriod int            `yaml:"momentum_period"`
	MomentumSource MomentumSource `yaml:"momentum_source"`
	TrendLong      int            `yaml:"trend_long"`
	TrendShort     int            `yaml:"trend_short"`
}

// DefaultConfig returns the standard squeeze parameters: BB(20, 2.0),
// KC(span 20, 1.5x ATR span 20), momentum length 12 over the midline
// deviation, 200/50 trend averages.
func DefaultConfig() Config {
	return Config{
		BBPeriod:       20,
		BBMult:         2.0,
		KCSpan:         20,
		ATRSpan:        20,
		KCMult:         1.5,
		MomentumPeriod: 12,
		MomentumSource: SourceMidlineDeviation,
		TrendLong:      200,
		TrendShort:     50,
	}
}

func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.BBPeriod <= 0 {
		c.BBPeriod = def.BBPeriod
	}
	if c.BBMult <= 0 {
		c.BBMult = def.BBMult
	}
	if c.KCSpan <= 0 {
		c.KCSpan = def.KCSpan
	}
	if c.ATRSpan <= 0 {
		c.ATRSpan = def.ATRSpan
	}
	if c.KCMult <= 0 {
		c.KCMult = def.KCMult
	}
	if c.MomentumPeriod <= 0 {
		c.MomentumPeriod = def.MomentumPeriod
	}
	if c.MomentumSource == "" {
		c.MomentumSource = def.MomentumSource
	}
	if c.TrendLong <= 0 {
		c.TrendLong = def.TrendLong
	}
	if c.TrendShort <= 0 {
		c.TrendShort = def.TrendShort
	}
	return c
}
