package capture

import "time"

// Transition is the inferred kind of the last advance step.
type Transition int

const (
	// PositionChange means the surface hook observed a full slide transition.
	PositionChange Transition = iota
	// FragmentChange means the step finished too fast for a slide transition
	// and most likely revealed a fragment on the same slide.
	FragmentChange
)

func (t Transition) String() string {
	switch t {
	case PositionChange:
		return "position"
	case FragmentChange:
		return "fragment"
	default:
		return "unknown"
	}
}

// DefaultFragmentThreshold is the elapsed time below which an advance is
// treated as a fragment reveal. Tuned against reveal.js default transitions.
const DefaultFragmentThreshold = 200 * time.Millisecond

// Classifier decides what kind of transition an advance step was, given the
// wall-clock time between sending the input and the readiness flag.
type Classifier func(elapsed time.Duration) Transition

// ClassifyTransition applies the elapsed-time heuristic. The comparison is
// strict: elapsed == threshold counts as a position change.
func ClassifyTransition(elapsed, threshold time.Duration) Transition {
	if elapsed < threshold {
		return FragmentChange
	}
	return PositionChange
}

// ThresholdClassifier returns a Classifier bound to threshold.
func ThresholdClassifier(threshold time.Duration) Classifier {
	return func(elapsed time.Duration) Transition {
		return ClassifyTransition(elapsed, threshold)
	}
}
