package classifiers

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mapper/internal/classifier"
	"mapper/internal/crawler"
	"mapper/internal/extractor"
	"mapper/internal/graph"
	"mapper/internal/index"
	"mapper/internal/match"
)

func loadShop(t *testing.T) *graph.Environment {
	t.Helper()
	ext, err := extractor.NewExtractor("go")
	require.NoError(t, err)
	env, err := index.NewIndexer(crawler.NewCrawler(ext)).LoadEnvironment(context.Background(),
		filepath.Join("..", "index", "testdata", "v1"),
		filepath.Join("..", "index", "testdata", "v2"))
	require.NoError(t, err)
	return env
}

func TestNew_RegistersAllHeuristics(t *testing.T) {
	s, err := New(Options{})
	require.NoError(t, err)

	assert.Equal(t, 14, s.Classes.Len())
	assert.Equal(t, 12, s.Methods.Len())
	assert.Equal(t, 8, s.Fields.Len())
	assert.Equal(t, 4, s.Variables.Len())

	assert.Equal(t, 56.0, s.Classes.TotalWeight(classifier.LevelInitial))
	assert.Equal(t, 73.0, s.Classes.TotalWeight(classifier.LevelIntermediate))
	assert.Equal(t, 83.0, s.Classes.TotalWeight(classifier.LevelFull))
	assert.Equal(t, 85.0, s.Classes.TotalWeight(classifier.LevelExtra))
	assert.Equal(t, 55.0, s.Methods.TotalWeight(classifier.LevelInitial))
	assert.Equal(t, 36.0, s.Fields.TotalWeight(classifier.LevelInitial))
	assert.Equal(t, 23.0, s.Variables.TotalWeight(classifier.LevelInitial))

	listing := s.List()
	assert.Len(t, listing, 38)
	assert.Equal(t, KindClass, listing[0].Kind)
	assert.Equal(t, "class_kind", listing[0].Name)
	assert.Equal(t, KindField, listing[33].Kind)
	assert.Equal(t, classifier.LevelExtra, listing[33].MinLevel)
	assert.Equal(t, KindVariable, listing[len(listing)-1].Kind)
}

func TestNew_WeightOverrides(t *testing.T) {
	s, err := New(Options{Weights: map[string]map[string]float64{
		KindClass:  {"class_kind": 5},
		KindMethod: {"code_shape": 1.5},
	}})
	require.NoError(t, err)
	assert.Equal(t, 41.0, s.Classes.TotalWeight(classifier.LevelInitial))
	assert.Equal(t, 55.0+8+1.5, s.Methods.TotalWeight(classifier.LevelFull))

	_, err = New(Options{Weights: map[string]map[string]float64{KindField: {"nope": 1}}})
	assert.True(t, errors.Is(err, ErrUnknownClassifier))

	_, err = New(Options{Weights: map[string]map[string]float64{"package": {"x": 1}}})
	assert.True(t, errors.Is(err, ErrUnknownClassifier))

	_, err = New(Options{Weights: map[string]map[string]float64{KindClass: {"class_kind": 0}}})
	assert.True(t, errors.Is(err, classifier.ErrInvalidWeight))
}

func TestFilters(t *testing.T) {
	env := loadShop(t)
	cart, basket := env.A.Class("shop.Cart"), env.B.Class("shop.Basket")
	product := env.B.Class("shop.Product")

	loose, err := New(Options{})
	require.NoError(t, err)
	strict, err := New(Options{StrictNames: true})
	require.NoError(t, err)

	assert.True(t, loose.ClassesMayMatch(cart, basket, env))
	assert.False(t, strict.ClassesMayMatch(cart, basket, env))
	assert.False(t, loose.ClassesMayMatch(cart, env.B.Class("shop"), env), "package classes only pair with each other")

	require.NoError(t, env.MatchClass(cart, basket, 1, classifier.LevelInitial))
	assert.False(t, loose.ClassesMayMatch(cart, product, env))
	assert.True(t, loose.ClassesMayMatch(cart, basket, env))

	add, put := cart.Method("Add"), basket.Method("Put")
	assert.True(t, loose.MethodsMayMatch(add, put, env))
	assert.False(t, strict.MethodsMayMatch(add, put, env))
	assert.False(t, loose.MethodsMayMatch(add, env.B.Class("shop").Method("Lookup"), env), "static and member methods never pair")
}

func TestRanking_ScoresStayInUnitInterval(t *testing.T) {
	env := loadShop(t)
	s, err := New(Options{})
	require.NoError(t, err)

	for _, level := range classifier.Levels() {
		for _, c := range env.A.Classes {
			_, err := s.ClassRanker().Rank(c, env.B.Classes, level, env, 1)
			require.NoError(t, err, "class %s at %s", c, level)
		}
		for _, m := range env.A.Methods() {
			_, err := s.MethodRanker().Rank(m, env.B.Methods(), level, env, 1)
			require.NoError(t, err, "method %s at %s", m, level)
		}
		for _, f := range env.A.Fields() {
			_, err := s.FieldRanker().Rank(f, env.B.Fields(), level, env, 1)
			require.NoError(t, err, "field %s at %s", f, level)
		}
	}
}

func TestRanking_FindsRenamedClass(t *testing.T) {
	env := loadShop(t)
	s, err := New(Options{})
	require.NoError(t, err)

	th := match.DefaultThresholds()
	ranking, err := s.ClassRanker().Rank(env.A.Class("shop.Cart"), env.B.Classes, classifier.LevelInitial, env, th.MaxMismatch())
	require.NoError(t, err)
	require.NotEmpty(t, ranking)
	assert.Equal(t, "shop.Basket", ranking[0].Candidate.ID)
	assert.InDelta(t, 1.0, ranking[0].Score, 1e-9)
	assert.True(t, match.Accept(th, ranking))
	assert.Len(t, ranking[0].Checks, 9)
}

func TestRanking_MatchesLocals(t *testing.T) {
	env := loadShop(t)
	s, err := New(Options{})
	require.NoError(t, err)

	total, totalB := env.A.Class("shop.Cart").Method("Total"), env.B.Class("shop.Basket").Method("Total")
	require.Len(t, total.Locals, 2)
	sum := total.Locals[0]
	assert.False(t, s.VariablesMayMatch(sum, totalB.Locals[0], env), "owners are not matched yet")

	require.NoError(t, env.MatchMethod(total, totalB, 1, classifier.LevelInitial))
	assert.True(t, s.VariablesMayMatch(sum, totalB.Locals[0], env))
	assert.False(t, s.VariablesMayMatch(sum, env.B.Class("shop").Method("Lookup").Args[0], env))

	th := match.DefaultThresholds()
	ranking, err := s.VariableRanker().Rank(sum, env.UnmatchedVariables(env.B, false), classifier.LevelInitial, env, th.MaxMismatch())
	require.NoError(t, err)
	require.NotEmpty(t, ranking)
	assert.Equal(t, "shop.Basket.Total#sum", ranking[0].Candidate.String())
	assert.True(t, match.Accept(th, ranking))
}
