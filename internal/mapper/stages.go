package mapper

import (
	"mapper/internal/classifiers"
	"mapper/internal/graph"
	"mapper/internal/match"
)

// stages returns the passes run in every round: classes first, then the
// members they unlock.
func stages(set *classifiers.Set) []match.Stage[*graph.Environment] {
	return []match.Stage[*graph.Environment]{
		classPass(set),
		staticMethodPass(set),
		methodPass(set),
		staticFieldPass(set),
		fieldPass(set),
	}
}

func classPass(set *classifiers.Set) *match.Pass[*graph.Class, *graph.Environment] {
	return &match.Pass[*graph.Class, *graph.Environment]{
		Label:  "classes",
		Ranker: set.ClassRanker(),
		Sources: func(env *graph.Environment) []*graph.Class {
			return env.UnmatchedClasses(env.A)
		},
		Candidates: func(env *graph.Environment, _ *graph.Class) []*graph.Class {
			return env.UnmatchedClasses(env.B)
		},
		Commit: func(env *graph.Environment, matches []match.Match[*graph.Class]) error {
			for _, m := range matches {
				if err := env.MatchClass(m.Src, m.Dst, m.Score, m.Level); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

// Static members may match any static member of the other version.
func staticMethodPass(set *classifiers.Set) *match.Pass[*graph.Method, *graph.Environment] {
	return &match.Pass[*graph.Method, *graph.Environment]{
		Label:  "static methods",
		Ranker: set.MethodRanker(),
		Sources: func(env *graph.Environment) []*graph.Method {
			return env.UnmatchedMethods(env.A, true)
		},
		Candidates: func(env *graph.Environment, _ *graph.Method) []*graph.Method {
			return env.UnmatchedMethods(env.B, true)
		},
		Commit: commitMethods,
	}
}

// Member methods only match within the class their owner is matched to.
func methodPass(set *classifiers.Set) *match.Pass[*graph.Method, *graph.Environment] {
	return &match.Pass[*graph.Method, *graph.Environment]{
		Label:  "methods",
		Ranker: set.MethodRanker(),
		Sources: func(env *graph.Environment) []*graph.Method {
			var out []*graph.Method
			for _, m := range env.UnmatchedMethods(env.A, false) {
				if env.ClassMatch(m.Owner) != nil {
					out = append(out, m)
				}
			}
			return out
		},
		Candidates: func(env *graph.Environment, src *graph.Method) []*graph.Method {
			owner := env.ClassMatch(src.Owner)
			if owner == nil {
				return nil
			}
			var out []*graph.Method
			for _, m := range owner.Methods {
				if !m.Static && env.MethodMatch(m) == nil {
					out = append(out, m)
				}
			}
			return out
		},
		Commit: commitMethods,
	}
}

func staticFieldPass(set *classifiers.Set) *match.Pass[*graph.Field, *graph.Environment] {
	return &match.Pass[*graph.Field, *graph.Environment]{
		Label:  "static fields",
		Ranker: set.FieldRanker(),
		Sources: func(env *graph.Environment) []*graph.Field {
			return env.UnmatchedFields(env.A, true)
		},
		Candidates: func(env *graph.Environment, _ *graph.Field) []*graph.Field {
			return env.UnmatchedFields(env.B, true)
		},
		Commit: commitFields,
	}
}

func fieldPass(set *classifiers.Set) *match.Pass[*graph.Field, *graph.Environment] {
	return &match.Pass[*graph.Field, *graph.Environment]{
		Label:  "fields",
		Ranker: set.FieldRanker(),
		Sources: func(env *graph.Environment) []*graph.Field {
			var out []*graph.Field
			for _, f := range env.UnmatchedFields(env.A, false) {
				if env.ClassMatch(f.Owner) != nil {
					out = append(out, f)
				}
			}
			return out
		},
		Candidates: func(env *graph.Environment, src *graph.Field) []*graph.Field {
			owner := env.ClassMatch(src.Owner)
			if owner == nil {
				return nil
			}
			var out []*graph.Field
			for _, f := range owner.Fields {
				if !f.Static && env.FieldMatch(f) == nil {
					out = append(out, f)
				}
			}
			return out
		},
		Commit: commitFields,
	}
}

// finalStages match the variables of matched methods once every level has
// run: arguments first, then locals.
func finalStages(set *classifiers.Set) []match.Stage[*graph.Environment] {
	return []match.Stage[*graph.Environment]{
		variablePass(set, true),
		variablePass(set, false),
	}
}

// Variables only match within the method their owner is matched to.
func variablePass(set *classifiers.Set, args bool) *match.Pass[*graph.Variable, *graph.Environment] {
	label := "locals"
	if args {
		label = "arguments"
	}
	return &match.Pass[*graph.Variable, *graph.Environment]{
		Label:  label,
		Ranker: set.VariableRanker(),
		Sources: func(env *graph.Environment) []*graph.Variable {
			return env.UnmatchedVariables(env.A, args)
		},
		Candidates: func(env *graph.Environment, src *graph.Variable) []*graph.Variable {
			owner := env.MethodMatch(src.Owner)
			if owner == nil {
				return nil
			}
			vars := owner.Locals
			if args {
				vars = owner.Args
			}
			var out []*graph.Variable
			for _, v := range vars {
				if env.VariableMatch(v) == nil {
					out = append(out, v)
				}
			}
			return out
		},
		Commit: func(env *graph.Environment, matches []match.Match[*graph.Variable]) error {
			for _, m := range matches {
				if err := env.MatchVariable(m.Src, m.Dst, m.Score, m.Level); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func commitMethods(env *graph.Environment, matches []match.Match[*graph.Method]) error {
	for _, m := range matches {
		if err := env.MatchMethod(m.Src, m.Dst, m.Score, m.Level); err != nil {
			return err
		}
	}
	return nil
}

func commitFields(env *graph.Environment, matches []match.Match[*graph.Field]) error {
	for _, m := range matches {
		if err := env.MatchField(m.Src, m.Dst, m.Score, m.Level); err != nil {
			return err
		}
	}
	return nil
}
