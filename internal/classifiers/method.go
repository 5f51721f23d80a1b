package classifiers

import (
	"mapper/internal/classifier"
	"mapper/internal/graph"
)

type methodReg = classifier.Registration[*graph.Method, *graph.Environment]

func (s *Set) methodRegistrations() []methodReg {
	return []methodReg{
		at[*graph.Method](classifier.LevelInitial, "method_kind", 10, methodKind),
		at[*graph.Method](classifier.LevelInitial, "argument_types", 10, argumentTypes),
		at[*graph.Method](classifier.LevelInitial, "return_types", 5, returnTypes),
		at[*graph.Method](classifier.LevelInitial, "string_constants", 5, stringConstants),
		at[*graph.Method](classifier.LevelInitial, "numeric_constants", 5, numericConstants),
		at[*graph.Method](classifier.LevelInitial, "in_references", 6, s.methodCallers),
		at[*graph.Method](classifier.LevelInitial, "out_references", 6, s.methodCallees),
		at[*graph.Method](classifier.LevelInitial, "field_references", 5, s.methodFieldRefs),
		at[*graph.Method](classifier.LevelInitial, "position", 3, methodPosition),
		at[*graph.Method](classifier.LevelIntermediate, "owner", 8, methodOwner),
		at[*graph.Method](classifier.LevelFull, "code_shape", 12, codeShape),
		at[*graph.Method](classifier.LevelExtra, "name_similarity", 2, methodNames),
	}
}

func methodKind(a, b *graph.Method, _ *graph.Environment) float64 {
	return boolScore(a.Static == b.Static, a.Abstract == b.Abstract)
}

func argumentTypes(a, b *graph.Method, env *graph.Environment) float64 {
	return compareTypeLists(a.Params, b.Params, a.Owner.Package, b.Owner.Package, env)
}

func returnTypes(a, b *graph.Method, env *graph.Environment) float64 {
	return compareTypeLists(a.Returns, b.Returns, a.Owner.Package, b.Owner.Package, env)
}

func stringConstants(a, b *graph.Method, _ *graph.Environment) float64 {
	return CompareSets(a.Strings, b.Strings)
}

func numericConstants(a, b *graph.Method, _ *graph.Environment) float64 {
	return CompareSets(a.Numbers, b.Numbers)
}

func (s *Set) methodCallers(a, b *graph.Method, env *graph.Environment) float64 {
	return s.compareMethodSets(a.CalledBy, b.CalledBy, env)
}

func (s *Set) methodCallees(a, b *graph.Method, env *graph.Environment) float64 {
	return s.compareMethodSets(a.Calls, b.Calls, env)
}

func (s *Set) methodFieldRefs(a, b *graph.Method, env *graph.Environment) float64 {
	return s.compareFieldSets(a.FieldRefs, b.FieldRefs, env)
}

func methodPosition(a, b *graph.Method, _ *graph.Environment) float64 {
	return ComparePositions(a.Position, len(a.Owner.Methods), b.Position, len(b.Owner.Methods))
}

func methodOwner(a, b *graph.Method, env *graph.Environment) float64 {
	return ownerScore(a.Owner, b.Owner, env)
}

// codeShape compares the size of two bodies by statement, call, field and
// type reference counts.
func codeShape(a, b *graph.Method, _ *graph.Environment) float64 {
	if a.Abstract || b.Abstract {
		return boolScore(a.Abstract == b.Abstract)
	}
	return (CompareCounts(a.Statements, b.Statements) +
		CompareCounts(len(a.Calls), len(b.Calls)) +
		CompareCounts(len(a.FieldRefs), len(b.FieldRefs)) +
		CompareCounts(len(a.TypeRefs), len(b.TypeRefs))) / 4
}

func methodNames(a, b *graph.Method, _ *graph.Environment) float64 {
	return NameSimilarity(a.Name, b.Name)
}
