// Package classifier implements the weighted classification and ranking
// engine used to match entities between two versions of a program.
//
// A Registry holds the classifiers for one entity kind, each gated by the
// minimum Level it runs at. A Ranker scores a source entity against a set of
// candidates with every classifier active at the requested level and returns
// the surviving candidates ordered by their weighted mean score.
package classifier

import "math"

// Classifier scores the similarity of two entities of the same kind.
//
// Score must return a value in [0,1] (1 is a certain match) and must not
// mutate the environment or either entity. A returned error is reported by
// the Ranker as ErrClassifierFailure.
type Classifier[T, E any] interface {
	Name() string
	Weight() float64
	Score(a, b T, env E) (float64, error)
}

// ScoreFunc is the scoring logic of a closure-backed classifier.
type ScoreFunc[T, E any] func(a, b T, env E) float64

// CheckedScoreFunc is a ScoreFunc that can fail.
type CheckedScoreFunc[T, E any] func(a, b T, env E) (float64, error)

type funcClassifier[T, E any] struct {
	name   string
	weight float64
	fn     CheckedScoreFunc[T, E]
}

func (c *funcClassifier[T, E]) Name() string    { return c.name }
func (c *funcClassifier[T, E]) Weight() float64 { return c.weight }

func (c *funcClassifier[T, E]) Score(a, b T, env E) (float64, error) {
	return c.fn(a, b, env)
}

// New builds a classifier from a plain scoring function.
func New[T, E any](name string, weight float64, fn ScoreFunc[T, E]) Classifier[T, E] {
	return &funcClassifier[T, E]{
		name:   name,
		weight: weight,
		fn: func(a, b T, env E) (float64, error) {
			return fn(a, b, env), nil
		},
	}
}

// NewChecked builds a classifier from a scoring function that reports errors.
func NewChecked[T, E any](name string, weight float64, fn CheckedScoreFunc[T, E]) Classifier[T, E] {
	return &funcClassifier[T, E]{name: name, weight: weight, fn: fn}
}

type reweighted[T, E any] struct {
	Classifier[T, E]
	weight float64
}

func (r *reweighted[T, E]) Weight() float64 { return r.weight }

// Reweight returns c with its weight replaced by w. The name and scoring
// logic are unchanged.
func Reweight[T, E any](c Classifier[T, E], w float64) Classifier[T, E] {
	if inner, ok := c.(*reweighted[T, E]); ok {
		c = inner.Classifier
	}
	return &reweighted[T, E]{Classifier: c, weight: w}
}

func validWeight(w float64) bool {
	return w > 0 && !math.IsInf(w, 0) && !math.IsNaN(w)
}
