package engine

import "testing"

func definedSeries(xs []float64) Series {
	s := NewSeries(len(xs))
	for i, x := range xs {
		s.Set(i, x)
	}
	return s
}

func TestMomentumWarmup(t *testing.T) {
	xs := make([]float64, 20)
	for i := range xs {
		xs[i] = float64(i)
	}
	m := momentum(definedSeries(xs), 12)
	for i := 0; i < 12; i++ {
		if m.Defined(i) {
			t.Fatalf("momentum defined at %d before warm-up", i)
		}
	}
	for i := 12; i < 20; i++ {
		v, ok := m.At(i)
		if !ok {
			t.Fatalf("momentum undefined at %d", i)
		}
		if !almostEqual(v, 1.0, 1e-12) {
			t.Fatalf("momentum[%d] = %v, want 1", i, v)
		}
	}
}

func TestMomentumSkipsUndefinedSource(t *testing.T) {
	src := NewSeries(20)
	for i := 5; i < 20; i++ {
		src.Set(i, float64(i))
	}
	m := momentum(src, 12)
	// window ending at 15 reaches back to position 4, still undefined
	if m.Defined(15) {
		t.Fatalf("momentum must stay undefined while its window has gaps")
	}
	if !m.Defined(16) {
		t.Fatalf("momentum should be defined once the window is fully covered")
	}
}

func TestMomentumSourceMidlineDeviation(t *testing.T) {
	closes := []float64{100, 102, 104}
	kc := definedSeries([]float64{99, 100, 101})
	src := momentumSource(closes, kc, SourceMidlineDeviation)
	want := []float64{1, 2, 3}
	for i, w := range want {
		v, ok := src.At(i)
		if !ok || !almostEqual(v, w, 1e-12) {
			t.Fatalf("src[%d] = %v defined=%v, want %v", i, v, ok, w)
		}
	}
}

func TestMomentumSourceRawClose(t *testing.T) {
	closes := []float64{100, 102}
	src := momentumSource(closes, NewSeries(2), SourceClose)
	v, ok := src.At(1)
	if !ok || v != 102 {
		t.Fatalf("src[1] = %v defined=%v, want 102", v, ok)
	}
}

func TestMomentumStateTable(t *testing.T) {
	cases := []struct {
		name       string
		prev, cur  float64
		want       MomentumState
	}{
		{"positive increasing", 0.5, 1.0, MomentumBullishUp},
		{"positive decreasing", 1.5, 1.0, MomentumBullishDown},
		{"positive equal", 1.0, 1.0, MomentumBullishDown},
		{"negative decreasing", -0.5, -1.0, MomentumBearishDown},
		{"negative increasing", -1.5, -1.0, MomentumBearishUp},
		{"negative equal", -1.0, -1.0, MomentumBearishUp},
		{"zero", 1.0, 0.0, MomentumNeutral},
	}
	for _, tc := range cases {
		m := definedSeries([]float64{tc.prev, tc.cur})
		got, ok := momentumState(m, 1)
		if !ok {
			t.Fatalf("%s: expected classification", tc.name)
		}
		if got != tc.want {
			t.Fatalf("%s: state = %s, want %s", tc.name, got, tc.want)
		}
	}
}

func TestMomentumStateNeedsTwoValues(t *testing.T) {
	m := NewSeries(2)
	m.Set(1, 1.0)
	if _, ok := momentumState(m, 1); ok {
		t.Fatalf("classification requires a defined previous value")
	}
	if _, ok := momentumState(m, 0); ok {
		t.Fatalf("classification requires a defined current value")
	}
}
