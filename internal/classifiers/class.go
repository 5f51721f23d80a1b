package classifiers

import (
	"mapper/internal/classifier"
	"mapper/internal/graph"
	"mapper/internal/match"
)

type classReg = classifier.Registration[*graph.Class, *graph.Environment]

func (s *Set) classRegistrations() []classReg {
	return []classReg{
		at[*graph.Class](classifier.LevelInitial, "class_kind", 20, classKind),
		at[*graph.Class](classifier.LevelInitial, "hierarchy_depth", 1, hierarchyDepth),
		at[*graph.Class](classifier.LevelInitial, "parent_classes", 4, s.parentClasses),
		at[*graph.Class](classifier.LevelInitial, "child_classes", 3, s.childClasses),
		at[*graph.Class](classifier.LevelInitial, "method_count", 3, methodCount),
		at[*graph.Class](classifier.LevelInitial, "field_count", 3, fieldCount),
		at[*graph.Class](classifier.LevelInitial, "similar_methods", 10, s.similarMethods),
		at[*graph.Class](classifier.LevelInitial, "out_references", 6, s.classOutReferences),
		at[*graph.Class](classifier.LevelInitial, "in_references", 6, s.classInReferences),
		at[*graph.Class](classifier.LevelIntermediate, "method_out_references", 6, s.methodOutReferences),
		at[*graph.Class](classifier.LevelIntermediate, "method_in_references", 6, s.methodInReferences),
		at[*graph.Class](classifier.LevelIntermediate, "field_references", 5, s.classFieldReferences),
		atChecked[*graph.Class](classifier.LevelFull, "members_full", 10, s.membersFull),
		at[*graph.Class](classifier.LevelExtra, "name_similarity", 2, classNames),
	}
}

func classKind(a, b *graph.Class, _ *graph.Environment) float64 {
	return boolScore(a.Kind == b.Kind)
}

func hierarchyDepth(a, b *graph.Class, _ *graph.Environment) float64 {
	return CompareCounts(a.Depth(), b.Depth())
}

func (s *Set) parentClasses(a, b *graph.Class, env *graph.Environment) float64 {
	return s.compareClassSets(a.Parents, b.Parents, env)
}

func (s *Set) childClasses(a, b *graph.Class, env *graph.Environment) float64 {
	return s.compareClassSets(a.Children, b.Children, env)
}

func methodCount(a, b *graph.Class, _ *graph.Environment) float64 {
	return CompareCounts(len(a.Methods), len(b.Methods))
}

func fieldCount(a, b *graph.Class, _ *graph.Environment) float64 {
	return CompareCounts(len(a.Fields), len(b.Fields))
}

// similarMethods pairs every method of a with its most similar, still
// unpaired method of b that has the same arity, and averages the pair
// scores over the larger method count.
func (s *Set) similarMethods(a, b *graph.Class, env *graph.Environment) float64 {
	if len(a.Methods) == 0 || len(b.Methods) == 0 {
		return boolScore(len(a.Methods) == len(b.Methods))
	}

	used := make(map[*graph.Method]bool)
	total := 0.0
	for _, ma := range a.Methods {
		var best *graph.Method
		bestScore := 0.0

		for _, mb := range b.Methods {
			if used[mb] || !s.MethodsMayMatch(ma, mb, env) {
				continue
			}
			if len(ma.Params) != len(mb.Params) || len(ma.Returns) != len(mb.Returns) {
				continue
			}

			var score float64
			switch {
			case ma.Abstract && mb.Abstract:
				score = 1
			case ma.Abstract != mb.Abstract:
				score = 0
			default:
				score = CompareCounts(ma.Statements, mb.Statements)
			}
			if score > bestScore {
				best, bestScore = mb, score
			}
		}

		if best != nil {
			total += bestScore
			used[best] = true
		}
	}
	return total / float64(max(len(a.Methods), len(b.Methods)))
}

func classOutRefs(c *graph.Class) []*graph.Class {
	var out []*graph.Class
	seen := make(map[*graph.Class]bool)
	add := func(r *graph.Class) {
		if r != nil && !seen[r] {
			seen[r] = true
			out = append(out, r)
		}
	}
	for _, m := range c.Methods {
		for _, r := range m.TypeRefs {
			add(r)
		}
	}
	for _, f := range c.Fields {
		add(f.TypeClass)
	}
	return out
}

func (s *Set) classOutReferences(a, b *graph.Class, env *graph.Environment) float64 {
	return s.compareClassSets(classOutRefs(a), classOutRefs(b), env)
}

func (s *Set) classInReferences(a, b *graph.Class, env *graph.Environment) float64 {
	return s.compareClassSets(a.InRefs, b.InRefs, env)
}

func memberCalls(c *graph.Class, in bool) []*graph.Method {
	var out []*graph.Method
	for _, m := range c.Methods {
		if in {
			out = append(out, m.CalledBy...)
		} else {
			out = append(out, m.Calls...)
		}
	}
	return out
}

func (s *Set) methodOutReferences(a, b *graph.Class, env *graph.Environment) float64 {
	return s.compareMethodSets(memberCalls(a, false), memberCalls(b, false), env)
}

func (s *Set) methodInReferences(a, b *graph.Class, env *graph.Environment) float64 {
	return s.compareMethodSets(memberCalls(a, true), memberCalls(b, true), env)
}

func (s *Set) classFieldReferences(a, b *graph.Class, env *graph.Environment) float64 {
	var refsA, refsB []*graph.Field
	for _, m := range a.Methods {
		refsA = append(refsA, m.FieldRefs...)
	}
	for _, m := range b.Methods {
		refsB = append(refsB, m.FieldRefs...)
	}
	return s.compareFieldSets(refsA, refsB, env)
}

// membersFull ranks every member of a against the members of b and sums
// the squared scores of the confident rankings.
func (s *Set) membersFull(a, b *graph.Class, env *graph.Environment) (float64, error) {
	t := s.opts.Thresholds
	maxMismatch := t.MaxMismatch()
	total := 0.0

	if len(a.Methods) > 0 && len(b.Methods) > 0 {
		for _, m := range a.Methods {
			ranking, err := s.methodRanker.Rank(m, b.Methods, classifier.LevelFull, env, maxMismatch)
			if err != nil {
				return 0, err
			}
			if match.Accept(t, ranking) {
				total += ranking[0].Score * ranking[0].Score
			}
		}
	}
	if len(a.Fields) > 0 && len(b.Fields) > 0 {
		for _, f := range a.Fields {
			ranking, err := s.fieldRanker.Rank(f, b.Fields, classifier.LevelFull, env, maxMismatch)
			if err != nil {
				return 0, err
			}
			if match.Accept(t, ranking) {
				total += ranking[0].Score * ranking[0].Score
			}
		}
	}

	n := max(len(a.Methods), len(b.Methods)) + max(len(a.Fields), len(b.Fields))
	if n == 0 {
		return 1, nil
	}
	return total / float64(n), nil
}

func classNames(a, b *graph.Class, _ *graph.Environment) float64 {
	return NameSimilarity(a.Name, b.Name)
}
