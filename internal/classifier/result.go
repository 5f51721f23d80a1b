package classifier

// CheckResult is the score a single classifier gave a candidate.
type CheckResult struct {
	Name   string
	Weight float64
	Score  float64
}

// RankResult is one ranked candidate. Index is the candidate's position in
// the slice passed to Rank.
type RankResult[T any] struct {
	Candidate T
	Index     int
	Score     float64
	Checks    []CheckResult
}

// Top returns the best result, if any.
func Top[T any](results []RankResult[T]) (RankResult[T], bool) {
	if len(results) == 0 {
		var zero RankResult[T]
		return zero, false
	}
	return results[0], true
}

// Gap returns the score difference between the best and second-best
// results. A single result has a gap equal to its own score; an empty slice
// has a gap of zero.
func Gap[T any](results []RankResult[T]) float64 {
	switch len(results) {
	case 0:
		return 0
	case 1:
		return results[0].Score
	default:
		return results[0].Score - results[1].Score
	}
}

// Candidates extracts the candidates of results, preserving order.
func Candidates[T any](results []RankResult[T]) []T {
	out := make([]T, len(results))
	for i, r := range results {
		out[i] = r.Candidate
	}
	return out
}
