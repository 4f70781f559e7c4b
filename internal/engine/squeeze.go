package engine

// SqueezeStatus is the per-bar squeeze state.
type SqueezeStatus int8

const (
	SqueezeUndefined SqueezeStatus = iota
	SqueezeOn
	SqueezeOff
)

func (s SqueezeStatus) String() string {
	switch s {
	case SqueezeOn:
		return "ON"
	case SqueezeOff:
		return "OFF"
	default:
		return "UNDEFINED"
	}
}

// SqueezeState is the state machine output at one bar.
type SqueezeState struct {
	Status   SqueezeStatus `json:"status"`
	Duration int           `json:"duration"`
	Fired    bool          `json:"fired"`
}

// squeezeStates folds over the band series carrying only the previous state
// and duration. ON means the Bollinger Bands sit fully inside the Keltner
// Channels; fired marks the exact ON to OFF transition. UNDEFINED bars never
// participate in a transition and reset the duration counter to 0.
func squeezeStates(bbUpper, bbLower, kcUpper, kcLower Series) []SqueezeState {
	n := bbUpper.Len()
	out := make([]SqueezeState, n)
	prev := SqueezeUndefined
	prevDur := 0
	for i := 0; i < n; i++ {
		bu, ok1 := bbUpper.At(i)
		bl, ok2 := bbLower.At(i)
		ku, ok3 := kcUpper.At(i)
		kl, ok4 := kcLower.At(i)

		cur := SqueezeUndefined
		if ok1 && ok2 && ok3 && ok4 {
			if bu < ku && bl > kl {
				cur = SqueezeOn
			} else {
				cur = SqueezeOff
			}
		}

		dur := 0
		if cur == SqueezeOn {
			dur = prevDur + 1
		}
		out[i] = SqueezeState{
			Status:   cur,
			Duration: dur,
			Fired:    prev == SqueezeOn && cur == SqueezeOff,
		}
		prev = cur
		prevDur = dur
	}
	return out
}
