package classifiers

import "mapper/internal/graph"

// ClassesMayMatch is the cheap candidate filter for classes. Matched
// classes only pair with their match, and package pseudo classes only with
// each other.
func (s *Set) ClassesMayMatch(a, b *graph.Class, env *graph.Environment) bool {
	if a == b {
		return true
	}
	if m := env.ClassMatch(a); m != nil {
		return m == b
	}
	if m := env.ClassMatch(b); m != nil {
		return m == a
	}
	if (a.Kind == graph.KindPackage) != (b.Kind == graph.KindPackage) {
		return false
	}
	return s.namesMayMatch(a.Name, b.Name)
}

// MethodsMayMatch also requires the owners of member methods to be
// possible matches.
func (s *Set) MethodsMayMatch(a, b *graph.Method, env *graph.Environment) bool {
	if a == b {
		return true
	}
	if m := env.MethodMatch(a); m != nil {
		return m == b
	}
	if m := env.MethodMatch(b); m != nil {
		return m == a
	}
	if a.Static != b.Static {
		return false
	}
	if !a.Static && !s.ClassesMayMatch(a.Owner, b.Owner, env) {
		return false
	}
	return s.namesMayMatch(a.Name, b.Name)
}

func (s *Set) FieldsMayMatch(a, b *graph.Field, env *graph.Environment) bool {
	if a == b {
		return true
	}
	if m := env.FieldMatch(a); m != nil {
		return m == b
	}
	if m := env.FieldMatch(b); m != nil {
		return m == a
	}
	if a.Static != b.Static {
		return false
	}
	if !a.Static && !s.ClassesMayMatch(a.Owner, b.Owner, env) {
		return false
	}
	return s.namesMayMatch(a.Name, b.Name)
}

// VariablesMayMatch pairs arguments with arguments and locals with locals,
// of methods matched to each other.
func (s *Set) VariablesMayMatch(a, b *graph.Variable, env *graph.Environment) bool {
	if m := env.VariableMatch(a); m != nil {
		return m == b
	}
	if m := env.VariableMatch(b); m != nil {
		return m == a
	}
	if a.Arg != b.Arg || env.MethodMatch(a.Owner) != b.Owner {
		return false
	}
	return s.namesMayMatch(a.Name, b.Name)
}

func (s *Set) namesMayMatch(a, b string) bool {
	if s.opts.StrictNames && !graph.IsObfuscatedName(a) && !graph.IsObfuscatedName(b) {
		return a == b
	}
	return true
}

func (s *Set) compareClassSets(a, b []*graph.Class, env *graph.Environment) float64 {
	return CompareIdentitySets(a, b,
		func(c *graph.Class) (*graph.Class, bool) {
			m := env.ClassMatch(c)
			return m, m != nil
		},
		func(x, y *graph.Class) bool { return s.ClassesMayMatch(x, y, env) },
	)
}

func (s *Set) compareMethodSets(a, b []*graph.Method, env *graph.Environment) float64 {
	return CompareIdentitySets(a, b,
		func(m *graph.Method) (*graph.Method, bool) {
			o := env.MethodMatch(m)
			return o, o != nil
		},
		func(x, y *graph.Method) bool { return s.MethodsMayMatch(x, y, env) },
	)
}

func (s *Set) compareFieldSets(a, b []*graph.Field, env *graph.Environment) float64 {
	return CompareIdentitySets(a, b,
		func(f *graph.Field) (*graph.Field, bool) {
			o := env.FieldMatch(f)
			return o, o != nil
		},
		func(x, y *graph.Field) bool { return s.FieldsMayMatch(x, y, env) },
	)
}

// ownerScore rates how well the owners of two members agree.
func ownerScore(a, b *graph.Class, env *graph.Environment) float64 {
	if m := env.ClassMatch(a); m != nil {
		if m == b {
			return 1
		}
		return 0
	}
	if env.ClassMatch(b) != nil {
		return 0
	}
	if a.Kind == b.Kind {
		return 0.5
	}
	return 0
}

func boolScore(flags ...bool) float64 {
	if len(flags) == 0 {
		return 1
	}
	n := 0
	for _, f := range flags {
		if f {
			n++
		}
	}
	return float64(n) / float64(len(flags))
}
