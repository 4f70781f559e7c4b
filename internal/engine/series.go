package engine

// Series is a per-bar numeric sequence where every position is either defined
// or undefined. Positions inside a lookback warm-up stay undefined; arithmetic
// never sees a sentinel value.
type Series struct {
	vals  []float64
	valid []bool
}

// NewSeries returns a Series of length n with every position undefined.
func NewSeries(n int) Series {
	return Series{vals: make([]float64, n), valid: make([]bool, n)}
}

// Len returns the number of positions.
func (s Series) Len() int { return len(s.vals) }

// At returns the value at i and whether it is defined.
func (s Series) At(i int) (float64, bool) {
	if i < 0 || i >= len(s.vals) || !s.valid[i] {
		return 0, false
	}
	return s.vals[i], true
}

// Defined reports whether position i holds a defined value.
func (s Series) Defined(i int) bool {
	return i >= 0 && i < len(s.valid) && s.valid[i]
}

// Set marks position i defined with value v.
func (s *Series) Set(i int, v float64) {
	s.vals[i] = v
	s.valid[i] = true
}

// FirstDefined returns the first defined position, or -1 if none.
func (s Series) FirstDefined() int {
	for i, ok := range s.valid {
		if ok {
			return i
		}
	}
	return -1
}

// Last returns the last defined value, scanning backwards, or (0, false).
func (s Series) Last() (float64, bool) {
	for i := len(s.vals) - 1; i >= 0; i-- {
		if s.valid[i] {
			return s.vals[i], true
		}
	}
	return 0, false
}
