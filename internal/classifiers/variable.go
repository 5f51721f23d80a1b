package classifiers

import (
	"mapper/internal/classifier"
	"mapper/internal/graph"
)

type variableReg = classifier.Registration[*graph.Variable, *graph.Environment]

func (s *Set) variableRegistrations() []variableReg {
	return []variableReg{
		at[*graph.Variable](classifier.LevelInitial, "variable_type", 10, variableType),
		at[*graph.Variable](classifier.LevelInitial, "position", 3, variablePosition),
		at[*graph.Variable](classifier.LevelInitial, "slot", 2, variableSlot),
		at[*graph.Variable](classifier.LevelInitial, "usage", 8, variableUsage),
	}
}

func variableType(a, b *graph.Variable, env *graph.Environment) float64 {
	return boolScore(sameType(a.Type, b.Type, a.Owner.Owner.Package, b.Owner.Owner.Package, env))
}

// variablePosition compares positions among the arguments, or among the
// locals, of each method.
func variablePosition(a, b *graph.Variable, _ *graph.Environment) float64 {
	return ComparePositions(a.Index, len(siblings(a)), b.Index, len(siblings(b)))
}

func siblings(v *graph.Variable) []*graph.Variable {
	if v.Arg {
		return v.Owner.Args
	}
	return v.Owner.Locals
}

func variableSlot(a, b *graph.Variable, _ *graph.Environment) float64 {
	return boolScore(a.Slot == b.Slot)
}

// variableUsage compares how often each variable is referenced and which
// fields and methods are selected on it.
func variableUsage(a, b *graph.Variable, _ *graph.Environment) float64 {
	return (CompareCounts(a.Uses, b.Uses) + CompareSets(a.Selectors, b.Selectors)) / 2
}
