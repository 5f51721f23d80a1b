package classifier

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// lookup returns a classifier whose score for a candidate comes from scores.
func lookup(name string, weight float64, scores map[string]float64) Classifier[string, testEnv] {
	return New(name, weight, func(a, b string, env testEnv) float64 { return scores[b] })
}

func twoClassifierRanker(t *testing.T, name, shape map[string]float64) *Ranker[string, testEnv] {
	t.Helper()
	reg, err := Build(
		Registration[string, testEnv]{Classifier: lookup("nameSim", 1.0, name), MinLevel: LevelInitial},
		Registration[string, testEnv]{Classifier: lookup("shapeSim", 2.0, shape), MinLevel: LevelInitial},
	)
	require.NoError(t, err)
	return NewRanker(reg)
}

func TestRank_WeightedMeanDiscardedByMismatch(t *testing.T) {
	r := twoClassifierRanker(t, map[string]float64{"A": 0.9}, map[string]float64{"A": 0.6})

	results, err := r.Rank("src", []string{"A"}, LevelInitial, testEnv{}, 0.25)
	require.NoError(t, err)
	assert.Empty(t, results)

	results, err = r.Rank("src", []string{"A"}, LevelInitial, testEnv{}, 1.0)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.InDelta(t, 0.7, results[0].Score, 1e-9)
	assert.Equal(t, []CheckResult{
		{Name: "nameSim", Weight: 1, Score: 0.9},
		{Name: "shapeSim", Weight: 2, Score: 0.6},
	}, results[0].Checks)
}

func TestRank_OrdersByDescendingScore(t *testing.T) {
	r := twoClassifierRanker(t,
		map[string]float64{"A": 0.9, "B": 0.95},
		map[string]float64{"A": 0.6, "B": 0.95},
	)

	results, err := r.Rank("src", []string{"A", "B"}, LevelInitial, testEnv{}, 1.0)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, []string{"B", "A"}, Candidates(results))
	assert.InDelta(t, 0.95, results[0].Score, 1e-9)
	assert.InDelta(t, 0.7, results[1].Score, 1e-9)
	assert.Equal(t, 1, results[0].Index)
	assert.Equal(t, 0, results[1].Index)
	assert.InDelta(t, 0.25, Gap(results), 1e-9)
}

func TestRank_ScoreOutOfRangeAbortsCall(t *testing.T) {
	reg, err := Build(
		Registration[string, testEnv]{Classifier: constant("good", 10, 1), MinLevel: LevelInitial},
		Registration[string, testEnv]{Classifier: lookup("broken", 1, map[string]float64{"B": 1.3}), MinLevel: LevelInitial},
	)
	require.NoError(t, err)

	results, err := NewRanker(reg).Rank("src", []string{"A", "B", "C"}, LevelInitial, testEnv{}, 1.0)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrScoreOutOfRange)
	assert.Nil(t, results)

	var rerr *Error
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, "broken", rerr.Classifier)
	assert.Equal(t, 1.3, rerr.Score)
}

func TestRank_ClassifierFailurePropagatesCause(t *testing.T) {
	cause := errors.New("call graph unavailable")
	reg, err := Build(
		Registration[string, testEnv]{Classifier: constant("good", 1, 1), MinLevel: LevelInitial},
		Registration[string, testEnv]{
			Classifier: NewChecked("flaky", 1, func(a, b string, env testEnv) (float64, error) {
				if b == "B" {
					return 0, cause
				}
				return 1, nil
			}),
			MinLevel: LevelInitial,
		},
	)
	require.NoError(t, err)

	results, err := NewRanker(reg).Rank("src", []string{"A", "B"}, LevelInitial, testEnv{}, 1.0)
	assert.Nil(t, results)
	assert.ErrorIs(t, err, ErrClassifierFailure)
	assert.ErrorIs(t, err, cause)
}

func TestRank_PanicIsClassifierFailure(t *testing.T) {
	reg, err := Build(Registration[string, testEnv]{
		Classifier: New("panics", 1, func(a, b string, env testEnv) float64 { panic("boom") }),
		MinLevel:   LevelInitial,
	})
	require.NoError(t, err)

	results, err := NewRanker(reg).Rank("src", []string{"A"}, LevelInitial, testEnv{}, 1.0)
	assert.Nil(t, results)
	assert.ErrorIs(t, err, ErrClassifierFailure)
	assert.Contains(t, err.Error(), "boom")
}

func TestRank_NoApplicableClassifiers(t *testing.T) {
	reg := NewRegistry[string, testEnv]()
	require.NoError(t, reg.Register(constant("late", 1, 1), LevelFull))

	_, err := NewRanker(reg).Rank("src", []string{"A"}, LevelIntermediate, testEnv{}, 1.0)
	assert.ErrorIs(t, err, ErrNoApplicableClassifiers)

	results, err := NewRanker(reg).Rank("src", []string{"A"}, LevelFull, testEnv{}, 1.0)
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestRank_EmptyCandidatesIsNotAnError(t *testing.T) {
	r := twoClassifierRanker(t, nil, nil)
	results, err := r.Rank("src", nil, LevelInitial, testEnv{}, 0.5)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestRank_InvalidThreshold(t *testing.T) {
	r := twoClassifierRanker(t, nil, nil)
	for _, m := range []float64{-0.1, 1.5} {
		_, err := r.Rank("src", []string{"A"}, LevelInitial, testEnv{}, m)
		assert.ErrorIs(t, err, ErrInvalidThreshold)
	}
}

func TestRank_MismatchBounds(t *testing.T) {
	scores := map[string]float64{"perfect": 1, "high": 0.99, "low": 0.1, "zero": 0}
	reg, err := Build(Registration[string, testEnv]{Classifier: lookup("s", 1, scores), MinLevel: LevelInitial})
	require.NoError(t, err)
	r := NewRanker(reg)
	dsts := []string{"low", "perfect", "zero", "high"}

	results, err := r.Rank("src", dsts, LevelInitial, testEnv{}, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"perfect"}, Candidates(results))

	results, err = r.Rank("src", dsts, LevelInitial, testEnv{}, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"perfect", "high", "low", "zero"}, Candidates(results))
}

func TestRank_StableForEqualScores(t *testing.T) {
	scores := map[string]float64{"a": 0.5, "b": 0.8, "c": 0.5, "d": 0.5, "e": 0.8}
	reg, err := Build(
		Registration[string, testEnv]{Classifier: lookup("s1", 0.3, scores), MinLevel: LevelInitial},
		Registration[string, testEnv]{Classifier: lookup("s2", 0.7, scores), MinLevel: LevelInitial},
	)
	require.NoError(t, err)
	r := NewRanker(reg)

	results, err := r.Rank("src", []string{"a", "b", "c", "d", "e"}, LevelInitial, testEnv{}, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "e", "a", "c", "d"}, Candidates(results))

	results, err = r.Rank("src", []string{"d", "e", "c", "b", "a"}, LevelInitial, testEnv{}, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"e", "b", "d", "c", "a"}, Candidates(results))
}

func TestRank_ChainedNearTiesKeepBestFirst(t *testing.T) {
	scores := map[string]float64{"a": 0.50, "b": 0.56, "c": 0.62}
	reg, err := Build(Registration[string, testEnv]{Classifier: lookup("s", 1, scores), MinLevel: LevelInitial})
	require.NoError(t, err)
	r := NewRanker(reg, WithEpsilon[string, testEnv](0.1))

	results, err := r.Rank("src", []string{"a", "b", "c"}, LevelInitial, testEnv{}, 1)
	require.NoError(t, err)
	// b ties with c (within 0.1), a does not.
	assert.Equal(t, []string{"b", "c", "a"}, Candidates(results))
	for _, res := range results[1:] {
		assert.LessOrEqual(t, res.Score-results[0].Score, 0.1)
	}

	reg, err = Build(Registration[string, testEnv]{Classifier: lookup("s", 1, map[string]float64{
		"x": 0.5, "y": 0.5 + 0.8e-9, "z": 0.5 + 1.6e-9,
	}), MinLevel: LevelInitial})
	require.NoError(t, err)
	results, err = NewRanker(reg).Rank("src", []string{"x", "y", "z"}, LevelInitial, testEnv{}, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"y", "z", "x"}, Candidates(results))
	assert.LessOrEqual(t, results[2].Score, results[0].Score)
}

func TestRank_AggregateStaysInUnitInterval(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for round := 0; round < 50; round++ {
		reg := NewRegistry[string, testEnv]()
		n := 1 + rng.Intn(6)
		for i := 0; i < n; i++ {
			scores := map[string]float64{}
			for _, d := range []string{"a", "b", "c", "d"} {
				scores[d] = rng.Float64()
			}
			name := string(rune('p' + i))
			require.NoError(t, reg.Register(lookup(name, 0.01+rng.Float64()*20, scores), LevelInitial))
		}

		results, err := NewRanker(reg).Rank("src", []string{"a", "b", "c", "d"}, LevelInitial, testEnv{}, 1)
		require.NoError(t, err)
		require.Len(t, results, 4)
		for _, res := range results {
			assert.GreaterOrEqual(t, res.Score, 0.0)
			assert.LessOrEqual(t, res.Score, 1.0)
		}
	}
}

func TestRank_LevelGatesClassifiers(t *testing.T) {
	reg, err := Build(
		Registration[string, testEnv]{Classifier: constant("base", 1, 0.5), MinLevel: LevelInitial},
		Registration[string, testEnv]{Classifier: lookup("context", 1, map[string]float64{"B": 1}), MinLevel: LevelIntermediate},
	)
	require.NoError(t, err)
	r := NewRanker(reg)

	results, err := r.Rank("src", []string{"A", "B"}, LevelInitial, testEnv{}, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, Candidates(results))

	results, err = r.Rank("src", []string{"A", "B"}, LevelIntermediate, testEnv{}, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"B", "A"}, Candidates(results))
	assert.InDelta(t, 0.75, results[0].Score, 1e-9)
}

func TestRank_CandidateFilterSkipsScoring(t *testing.T) {
	calls := 0
	reg, err := Build(Registration[string, testEnv]{
		Classifier: New("count", 1, func(a, b string, env testEnv) float64 {
			calls++
			return 1
		}),
		MinLevel: LevelInitial,
	})
	require.NoError(t, err)

	r := NewRanker(reg, WithCandidateFilter(func(a, b string, env testEnv) bool { return b != "skip" }))
	results, err := r.Rank("src", []string{"keep", "skip", "also"}, LevelInitial, testEnv{}, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"keep", "also"}, Candidates(results))
	assert.Equal(t, 2, calls)
	assert.Equal(t, 2, results[1].Index)
}

func TestTop(t *testing.T) {
	_, ok := Top[string](nil)
	assert.False(t, ok)
	assert.Zero(t, Gap[string](nil))

	res, ok := Top([]RankResult[string]{{Candidate: "x", Score: 0.4}})
	assert.True(t, ok)
	assert.Equal(t, "x", res.Candidate)
	assert.Equal(t, 0.4, Gap([]RankResult[string]{res}))
}
