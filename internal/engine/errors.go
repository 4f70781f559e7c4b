package engine

import "fmt"

// InvalidInputError reports a bar series the engine refuses to compute on:
// non-monotonic timestamps, non-positive prices, or NaN values. Short series
// are not an error; they only widen the undefined region.
type InvalidInputError struct {
	Index  int
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid input at bar %d: %s", e.Index, e.Reason)
}
