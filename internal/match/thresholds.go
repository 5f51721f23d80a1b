package match

import (
	"fmt"
	"math"

	"mapper/internal/classifier"
)

const (
	DefaultAbsoluteThreshold = 0.25
	DefaultRelativeThreshold = 0.025
)

// Thresholds decide whether the best ranked candidate is confident enough
// to be committed as a match.
//
// Scores are compared squared: the top result needs top² >= Absolute, and a
// runner-up must trail it by more than the Relative fraction (second² <
// top²·(1-Relative)).
type Thresholds struct {
	Absolute float64
	Relative float64
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		Absolute: DefaultAbsoluteThreshold,
		Relative: DefaultRelativeThreshold,
	}
}

func (t Thresholds) Validate() error {
	if math.IsNaN(t.Absolute) || t.Absolute <= 0 || t.Absolute > 1 {
		return fmt.Errorf("absolute threshold %v not in (0,1]", t.Absolute)
	}
	if math.IsNaN(t.Relative) || t.Relative < 0 || t.Relative >= 1 {
		return fmt.Errorf("relative threshold %v not in [0,1)", t.Relative)
	}
	return nil
}

// MaxMismatch is the mismatch passed to the ranker. Candidates scoring below
// sqrt(Absolute·(1-Relative)) could never be accepted, so they are not kept.
func (t Thresholds) MaxMismatch() float64 {
	return 1 - math.Sqrt(t.Absolute*(1-t.Relative))
}

// Accept reports whether the top result of a ranking is unambiguous.
func Accept[T any](t Thresholds, ranking []classifier.RankResult[T]) bool {
	if len(ranking) == 0 {
		return false
	}

	top := ranking[0].Score * ranking[0].Score
	if top < t.Absolute {
		return false
	}
	if len(ranking) == 1 {
		return true
	}

	next := ranking[1].Score * ranking[1].Score
	return next < top*(1-t.Relative)
}
