package engine

import "testing"

// buildBandSeries constructs the four band series from compact per-bar descriptors.
// A nil row leaves every band undefined at that position.
type bandRow struct {
	bbU, bbL, kcU, kcL float64
}

func buildBandSeries(rows []*bandRow) (bbU, bbL, kcU, kcL Series) {
	n := len(rows)
	bbU, bbL, kcU, kcL = NewSeries(n), NewSeries(n), NewSeries(n), NewSeries(n)
	for i, r := range rows {
		if r == nil {
			continue
		}
		bbU.Set(i, r.bbU)
		bbL.Set(i, r.bbL)
		kcU.Set(i, r.kcU)
		kcL.Set(i, r.kcL)
	}
	return
}

func TestSqueezeStateTransitions(t *testing.T) {
	on := &bandRow{bbU: 101, bbL: 99, kcU: 102, kcL: 98}
	off := &bandRow{bbU: 103, bbL: 97, kcU: 102, kcL: 98}
	rows := []*bandRow{nil, on, on, off, nil, on}
	states := squeezeStates(buildBandSeries(rows))

	wantStatus := []SqueezeStatus{SqueezeUndefined, SqueezeOn, SqueezeOn, SqueezeOff, SqueezeUndefined, SqueezeOn}
	wantDur := []int{0, 1, 2, 0, 0, 1}
	wantFired := []bool{false, false, false, true, false, false}
	for i, st := range states {
		if st.Status != wantStatus[i] {
			t.Fatalf("state[%d] = %s, want %s", i, st.Status, wantStatus[i])
		}
		if st.Duration != wantDur[i] {
			t.Fatalf("duration[%d] = %d, want %d", i, st.Duration, wantDur[i])
		}
		if st.Fired != wantFired[i] {
			t.Fatalf("fired[%d] = %v, want %v", i, st.Fired, wantFired[i])
		}
	}
}

func TestSqueezeNoDefaultState(t *testing.T) {
	// the first defined bar takes whatever the comparison yields
	off := &bandRow{bbU: 103, bbL: 97, kcU: 102, kcL: 98}
	states := squeezeStates(buildBandSeries([]*bandRow{nil, off}))
	if states[1].Status != SqueezeOff || states[1].Fired {
		t.Fatalf("first defined bar must come from the comparison alone, got %+v", states[1])
	}
}

func TestSqueezeUndefinedNeverFires(t *testing.T) {
	on := &bandRow{bbU: 101, bbL: 99, kcU: 102, kcL: 98}
	// ON -> UNDEFINED -> OFF must not fire anywhere
	off := &bandRow{bbU: 103, bbL: 97, kcU: 102, kcL: 98}
	states := squeezeStates(buildBandSeries([]*bandRow{on, nil, off}))
	for i, st := range states {
		if st.Fired {
			t.Fatalf("fired[%d] must be false across an undefined gap", i)
		}
	}
}

func TestSqueezeBoundaryEqualityIsOff(t *testing.T) {
	// touching bands are not nested: equality yields OFF
	eq := &bandRow{bbU: 102, bbL: 98, kcU: 102, kcL: 98}
	states := squeezeStates(buildBandSeries([]*bandRow{eq}))
	if states[0].Status != SqueezeOff {
		t.Fatalf("state = %s, want OFF on band equality", states[0].Status)
	}
}
