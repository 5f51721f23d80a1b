package graph

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mapper/internal/classifier"
	"mapper/internal/extractor"
)

func TestEnvironment_MatchClassCascades(t *testing.T) {
	a := buildStore(t)
	b := buildStore(t)
	env := NewEnvironment(a, b)

	ca, cb := a.Class("store.Cache"), b.Class("store.Cache")
	require.NoError(t, env.MatchClass(ca, cb, 0.9, classifier.LevelInitial))

	assert.Same(t, cb, env.ClassMatch(ca))
	assert.Same(t, ca, env.ClassMatch(cb))
	assert.Same(t, cb.Method("Get"), env.MethodMatch(ca.Method("Get")))
	assert.Same(t, cb.Field("items"), env.FieldMatch(ca.Field("items")))

	pairs := env.Pairs()
	require.NotEmpty(t, pairs)
	assert.Equal(t, EntityClass, pairs[0].Kind)
	assert.False(t, pairs[0].Cascaded)
	assert.InDelta(t, 0.9, pairs[0].Score, 1e-12)
	for _, p := range pairs[1:] {
		assert.True(t, p.Cascaded)
	}

	// "id" is too short to carry over on name alone.
	ba, bb := a.Class("store.Base"), b.Class("store.Base")
	require.NoError(t, env.MatchClass(ba, bb, 0.8, classifier.LevelInitial))
	assert.Nil(t, env.FieldMatch(ba.Field("id")))
}

func TestEnvironment_MatchErrors(t *testing.T) {
	a := buildStore(t)
	b := buildStore(t)
	env := NewEnvironment(a, b)

	ca, cb := a.Class("store.Cache"), b.Class("store.Cache")
	err := env.MatchClass(cb, ca, 1, classifier.LevelInitial)
	assert.True(t, errors.Is(err, ErrWrongGroup))

	require.NoError(t, env.MatchClass(ca, cb, 1, classifier.LevelInitial))
	require.NoError(t, env.MatchClass(ca, cb, 1, classifier.LevelInitial), "rematching the same pair is a no-op")

	err = env.MatchClass(ca, b.Class("store.Base"), 1, classifier.LevelInitial)
	assert.True(t, errors.Is(err, ErrAlreadyMatched))

	hashA, hashB := a.Class("store").Method("hash"), b.Class("store").Method("hash")
	require.NoError(t, env.MatchMethod(hashA, hashB, 0.7, classifier.LevelFull))
	err = env.MatchMethod(hashA, b.Class("store").Method("Fetch"), 0.7, classifier.LevelFull)
	assert.True(t, errors.Is(err, ErrAlreadyMatched))
}

func TestEnvironment_UnmatchedAndStats(t *testing.T) {
	a := buildStore(t)
	b := buildStore(t)
	env := NewEnvironment(a, b)

	assert.Len(t, env.UnmatchedClasses(a), 3)
	assert.Len(t, env.UnmatchedMethods(a, true), 2) // hash, Fetch
	assert.Len(t, env.UnmatchedFields(a, true), 1)  // Limit

	require.NoError(t, env.MatchField(a.Class("store").Field("Limit"), b.Class("store").Field("Limit"), 1, classifier.LevelInitial))
	assert.Empty(t, env.UnmatchedFields(a, true))

	s := env.Stats()
	assert.Equal(t, Count{Matched: 0, Total: 3}, s.Classes)
	assert.Equal(t, Count{Matched: 1, Total: 1}, s.StaticFields)
	assert.Equal(t, Count{Matched: 0, Total: 2}, s.StaticMethods)
	assert.Equal(t, 2, s.Methods.Total)
	assert.Equal(t, 3, s.Fields.Total)
	assert.InDelta(t, 100.0, s.StaticFields.Percent(), 1e-9)
	assert.Zero(t, Count{}.Percent())
}

func varGroup(t *testing.T, name string) *Group {
	t.Helper()
	g := NewGroup(name)
	g.AddUnit(&extractor.CodeUnit{
		ID:       "calc:Sum",
		Package:  "calc",
		Name:     "Sum",
		UnitType: "function",
		Details: extractor.GoFunctionDetails{
			Parameters: []extractor.GoParam{{Name: "xs", Type: "[]int"}, {Type: "int"}},
			Locals:     []extractor.GoParam{{Name: "total"}, {Name: "x"}},
			Uses:       map[string]int{"xs": 1, "total": 3, "x": 1},
		},
	})
	g.LinkRelations()
	return g
}

func TestGroup_Variables(t *testing.T) {
	g := varGroup(t, "v1")
	sum := g.Class("calc").Method("Sum")
	require.NotNil(t, sum)

	require.Len(t, sum.Args, 2)
	require.Len(t, sum.Locals, 2)
	assert.Equal(t, "calc.Sum#xs", sum.Args[0].String())
	assert.Equal(t, "calc.Sum#$1", sum.Args[1].String())
	assert.Equal(t, "calc:Sum#total", sum.Locals[0].ID)
	assert.Equal(t, 3, sum.Locals[0].Uses)
	assert.Equal(t, 0, sum.Locals[0].Index)
	assert.Equal(t, 2, sum.Locals[0].Slot)
	assert.Len(t, sum.Variables(), 4)
}

func TestEnvironment_MatchVariable(t *testing.T) {
	a, b := varGroup(t, "v1"), varGroup(t, "v2")
	env := NewEnvironment(a, b)
	ma, mb := a.Class("calc").Method("Sum"), b.Class("calc").Method("Sum")

	err := env.MatchVariable(ma.Args[0], mb.Args[0], 1, classifier.LevelInitial)
	assert.ErrorIs(t, err, ErrOwnerUnmatched)
	assert.Empty(t, env.UnmatchedVariables(a, true), "variables of unmatched methods are not candidates")

	require.NoError(t, env.MatchMethod(ma, mb, 1, classifier.LevelInitial))
	assert.Len(t, env.UnmatchedVariables(a, true), 2)
	assert.Len(t, env.UnmatchedVariables(a, false), 2)

	err = env.MatchVariable(ma.Args[0], mb.Locals[0], 1, classifier.LevelInitial)
	assert.ErrorIs(t, err, ErrKindMismatch)

	require.NoError(t, env.MatchVariable(ma.Args[0], mb.Args[0], 0.9, classifier.LevelInitial))
	assert.Same(t, mb.Args[0], env.VariableMatch(ma.Args[0]))
	assert.Same(t, ma.Args[0], env.VariableMatch(mb.Args[0]))

	err = env.MatchVariable(ma.Args[1], mb.Args[0], 0.9, classifier.LevelInitial)
	assert.ErrorIs(t, err, ErrAlreadyMatched)

	pairs := env.Pairs()
	last := pairs[len(pairs)-1]
	assert.Equal(t, EntityVariable, last.Kind)
	assert.Equal(t, "calc.Sum#xs", last.Src)

	s := env.Stats()
	assert.Equal(t, Count{Matched: 1, Total: 2}, s.Args)
	assert.Equal(t, Count{Matched: 0, Total: 2}, s.Locals)
}
