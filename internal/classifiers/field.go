package classifiers

import (
	"mapper/internal/classifier"
	"mapper/internal/graph"
)

type fieldReg = classifier.Registration[*graph.Field, *graph.Environment]

func (s *Set) fieldRegistrations() []fieldReg {
	return []fieldReg{
		at[*graph.Field](classifier.LevelInitial, "field_kind", 10, fieldKind),
		at[*graph.Field](classifier.LevelInitial, "field_type", 10, fieldType),
		at[*graph.Field](classifier.LevelInitial, "accessors", 6, accessorCount),
		at[*graph.Field](classifier.LevelInitial, "position", 3, fieldPosition),
		at[*graph.Field](classifier.LevelInitial, "init_value", 7, initValue),
		at[*graph.Field](classifier.LevelIntermediate, "owner", 5, fieldOwner),
		at[*graph.Field](classifier.LevelFull, "matched_accessors", 6, s.matchedAccessors),
		at[*graph.Field](classifier.LevelExtra, "name_similarity", 2, fieldNames),
	}
}

func fieldKind(a, b *graph.Field, _ *graph.Environment) float64 {
	return boolScore(a.Static == b.Static, a.Const == b.Const, a.Embedded == b.Embedded)
}

func fieldType(a, b *graph.Field, env *graph.Environment) float64 {
	return boolScore(sameType(a.Type, b.Type, a.Owner.Package, b.Owner.Package, env))
}

func accessorCount(a, b *graph.Field, _ *graph.Environment) float64 {
	return CompareCounts(len(a.AccessedBy), len(b.AccessedBy))
}

func fieldPosition(a, b *graph.Field, _ *graph.Environment) float64 {
	return ComparePositions(a.Position, len(a.Owner.Fields), b.Position, len(b.Owner.Fields))
}

func initValue(a, b *graph.Field, _ *graph.Environment) float64 {
	return boolScore(a.Value == b.Value)
}

func fieldOwner(a, b *graph.Field, env *graph.Environment) float64 {
	return ownerScore(a.Owner, b.Owner, env)
}

func (s *Set) matchedAccessors(a, b *graph.Field, env *graph.Environment) float64 {
	return s.compareMethodSets(a.AccessedBy, b.AccessedBy, env)
}

func fieldNames(a, b *graph.Field, _ *graph.Environment) float64 {
	return NameSimilarity(a.Name, b.Name)
}
