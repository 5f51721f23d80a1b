package classifier

import (
	"cmp"
	"fmt"
	"math"
	"slices"
)

// DefaultEpsilon is the tolerance under which two aggregate scores are
// treated as equal.
const DefaultEpsilon = 1e-9

// Ranker scores a source entity against candidate entities using the
// classifiers of a registry.
type Ranker[T, E any] struct {
	registry *Registry[T, E]
	filter   func(a, b T, env E) bool
	epsilon  float64
}

// Option configures a Ranker.
type Option[T, E any] func(*Ranker[T, E])

// WithCandidateFilter skips candidates for which keep returns false before
// any classifier runs on them.
func WithCandidateFilter[T, E any](keep func(a, b T, env E) bool) Option[T, E] {
	return func(r *Ranker[T, E]) {
		r.filter = keep
	}
}

// WithEpsilon sets the score tolerance used for the mismatch cut-off and
// for tie detection.
func WithEpsilon[T, E any](eps float64) Option[T, E] {
	return func(r *Ranker[T, E]) {
		if eps >= 0 && !math.IsNaN(eps) {
			r.epsilon = eps
		}
	}
}

// NewRanker creates a ranker over reg.
func NewRanker[T, E any](reg *Registry[T, E], opts ...Option[T, E]) *Ranker[T, E] {
	r := &Ranker[T, E]{registry: reg, epsilon: DefaultEpsilon}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Registry returns the registry the ranker draws classifiers from.
func (r *Ranker[T, E]) Registry() *Registry[T, E] {
	return r.registry
}

// Rank scores src against every candidate in dsts with the classifiers
// active at level and returns the candidates whose mismatch (1 - score) does
// not exceed maxMismatch, best first. Candidates with equal scores keep
// their order from dsts.
//
// Every active classifier runs on every candidate. Any classifier error,
// panic or out-of-range score aborts the call and no results are returned.
func (r *Ranker[T, E]) Rank(src T, dsts []T, level Level, env E, maxMismatch float64) ([]RankResult[T], error) {
	if !level.Valid() {
		return nil, &Error{Kind: ErrInvalidLevel, Level: level}
	}
	if math.IsNaN(maxMismatch) || maxMismatch < 0 || maxMismatch > 1 {
		return nil, &Error{Kind: ErrInvalidThreshold, Err: fmt.Errorf("max mismatch %v not in [0,1]", maxMismatch)}
	}

	var active []Classifier[T, E]
	if r.registry != nil {
		active = r.registry.ActiveAt(level)
	}
	if len(active) == 0 {
		return nil, &Error{Kind: ErrNoApplicableClassifiers, Level: level}
	}

	var totalWeight float64
	for _, c := range active {
		totalWeight += c.Weight()
	}

	results := make([]RankResult[T], 0, len(dsts))
	for i, dst := range dsts {
		if r.filter != nil && !r.filter(src, dst, env) {
			continue
		}

		checks := make([]CheckResult, 0, len(active))
		var weighted float64
		for _, c := range active {
			score, err := evaluate(c, src, dst, env)
			if err != nil {
				return nil, err
			}
			weighted += c.Weight() * score
			checks = append(checks, CheckResult{Name: c.Name(), Weight: c.Weight(), Score: score})
		}

		score := clamp01(weighted / totalWeight)
		if 1-score > maxMismatch+r.epsilon {
			continue
		}

		results = append(results, RankResult[T]{
			Candidate: dst,
			Index:     i,
			Score:     score,
			Checks:    checks,
		})
	}

	sortRanking(results, r.epsilon)
	return results, nil
}

// sortRanking orders results by descending score. Scores within eps of
// the best score of their run form a tie and keep input order, so the
// first result never trails a later one by more than eps.
func sortRanking[T any](results []RankResult[T], eps float64) {
	slices.SortStableFunc(results, func(a, b RankResult[T]) int {
		return cmp.Compare(b.Score, a.Score)
	})
	for start := 0; start < len(results); {
		end := start + 1
		for end < len(results) && results[start].Score-results[end].Score <= eps {
			end++
		}
		slices.SortStableFunc(results[start:end], func(a, b RankResult[T]) int {
			return cmp.Compare(a.Index, b.Index)
		})
		start = end
	}
}

// evaluate runs a single classifier, turning errors, panics and
// out-of-range scores into ranking errors.
func evaluate[T, E any](c Classifier[T, E], a, b T, env E) (score float64, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = &Error{Kind: ErrClassifierFailure, Classifier: c.Name(), Err: fmt.Errorf("panic: %v", p)}
		}
	}()

	score, err = c.Score(a, b, env)
	if err != nil {
		return 0, &Error{Kind: ErrClassifierFailure, Classifier: c.Name(), Err: err}
	}
	if math.IsNaN(score) || score < 0 || score > 1 {
		return 0, &Error{Kind: ErrScoreOutOfRange, Classifier: c.Name(), Score: score}
	}
	return score, nil
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
