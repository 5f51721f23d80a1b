package graph

import (
	"errors"
	"fmt"
	"sync"

	"mapper/internal/classifier"
)

var (
	ErrAlreadyMatched = errors.New("entity already matched")
	ErrWrongGroup     = errors.New("entity does not belong to the expected group")
	ErrKindMismatch   = errors.New("argument and local variable cannot match")
	ErrOwnerUnmatched = errors.New("owners are not matched to each other")
)

// EntityKind names the kind of a matched entity.
type EntityKind string

const (
	EntityClass  EntityKind = "class"
	EntityMethod EntityKind = "method"
	EntityField  EntityKind = "field"
	// Variables are logged as "method#name".
	EntityVariable EntityKind = "variable"
)

// Pair is one committed match, in commit order.
type Pair struct {
	Kind     EntityKind
	Src      string
	Dst      string
	SrcID    string
	DstID    string
	Score    float64
	Level    classifier.Level
	Cascaded bool
}

// Environment holds both program versions and the matches found so far.
// A is the source version, B the destination. Lookups are safe while a
// pass ranks in parallel; Match* calls happen between passes.
type Environment struct {
	A, B *Group

	mu      sync.RWMutex
	classes map[*Class]*Class
	methods map[*Method]*Method
	fields  map[*Field]*Field
	vars    map[*Variable]*Variable
	pairs   []Pair
}

func NewEnvironment(a, b *Group) *Environment {
	return &Environment{
		A:       a,
		B:       b,
		classes: make(map[*Class]*Class),
		methods: make(map[*Method]*Method),
		fields:  make(map[*Field]*Field),
		vars:    make(map[*Variable]*Variable),
	}
}

// ClassMatch returns the class c is matched to, in either direction.
func (e *Environment) ClassMatch(c *Class) *Class {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.classes[c]
}

func (e *Environment) MethodMatch(m *Method) *Method {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.methods[m]
}

func (e *Environment) FieldMatch(f *Field) *Field {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.fields[f]
}

func (e *Environment) VariableMatch(v *Variable) *Variable {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.vars[v]
}

// MatchClass records a ↔ b. Members of both classes with the same
// non-obfuscated name are matched along with them.
func (e *Environment) MatchClass(a, b *Class, score float64, level classifier.Level) error {
	if a.Group != e.A || b.Group != e.B {
		return fmt.Errorf("class %s -> %s: %w", a, b, ErrWrongGroup)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if cur, ok := e.classes[a]; ok {
		if cur == b {
			return nil
		}
		return fmt.Errorf("class %s: %w", a, ErrAlreadyMatched)
	}
	if _, ok := e.classes[b]; ok {
		return fmt.Errorf("class %s: %w", b, ErrAlreadyMatched)
	}

	e.classes[a] = b
	e.classes[b] = a
	e.pairs = append(e.pairs, Pair{
		Kind: EntityClass, Src: a.ID, Dst: b.ID, SrcID: a.ID, DstID: b.ID,
		Score: score, Level: level,
	})

	for _, src := range a.Methods {
		if IsObfuscatedName(src.Name) {
			continue
		}
		dst := b.Method(src.Name)
		if dst == nil || e.methods[src] != nil || e.methods[dst] != nil {
			continue
		}
		e.linkMethods(src, dst, 1, level, true)
	}
	for _, src := range a.Fields {
		if IsObfuscatedName(src.Name) {
			continue
		}
		dst := b.Field(src.Name)
		if dst == nil || e.fields[src] != nil || e.fields[dst] != nil {
			continue
		}
		e.linkFields(src, dst, 1, level, true)
	}
	return nil
}

func (e *Environment) MatchMethod(a, b *Method, score float64, level classifier.Level) error {
	if a.Owner.Group != e.A || b.Owner.Group != e.B {
		return fmt.Errorf("method %s -> %s: %w", a, b, ErrWrongGroup)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if cur, ok := e.methods[a]; ok {
		if cur == b {
			return nil
		}
		return fmt.Errorf("method %s: %w", a, ErrAlreadyMatched)
	}
	if _, ok := e.methods[b]; ok {
		return fmt.Errorf("method %s: %w", b, ErrAlreadyMatched)
	}
	e.linkMethods(a, b, score, level, false)
	return nil
}

func (e *Environment) MatchField(a, b *Field, score float64, level classifier.Level) error {
	if a.Owner.Group != e.A || b.Owner.Group != e.B {
		return fmt.Errorf("field %s -> %s: %w", a, b, ErrWrongGroup)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if cur, ok := e.fields[a]; ok {
		if cur == b {
			return nil
		}
		return fmt.Errorf("field %s: %w", a, ErrAlreadyMatched)
	}
	if _, ok := e.fields[b]; ok {
		return fmt.Errorf("field %s: %w", b, ErrAlreadyMatched)
	}
	e.linkFields(a, b, score, level, false)
	return nil
}

// MatchVariable records a ↔ b. Both must be arguments or both locals, of
// methods already matched to each other.
func (e *Environment) MatchVariable(a, b *Variable, score float64, level classifier.Level) error {
	if a.Owner.Owner.Group != e.A || b.Owner.Owner.Group != e.B {
		return fmt.Errorf("variable %s -> %s: %w", a, b, ErrWrongGroup)
	}
	if a.Arg != b.Arg {
		return fmt.Errorf("variable %s -> %s: %w", a, b, ErrKindMismatch)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.methods[a.Owner] != b.Owner {
		return fmt.Errorf("variable %s -> %s: %w", a, b, ErrOwnerUnmatched)
	}
	if cur, ok := e.vars[a]; ok {
		if cur == b {
			return nil
		}
		return fmt.Errorf("variable %s: %w", a, ErrAlreadyMatched)
	}
	if _, ok := e.vars[b]; ok {
		return fmt.Errorf("variable %s: %w", b, ErrAlreadyMatched)
	}

	e.vars[a] = b
	e.vars[b] = a
	e.pairs = append(e.pairs, Pair{
		Kind: EntityVariable, Src: a.String(), Dst: b.String(), SrcID: a.ID, DstID: b.ID,
		Score: score, Level: level,
	})
	return nil
}

func (e *Environment) linkMethods(a, b *Method, score float64, level classifier.Level, cascaded bool) {
	e.methods[a] = b
	e.methods[b] = a
	e.pairs = append(e.pairs, Pair{
		Kind: EntityMethod, Src: a.String(), Dst: b.String(), SrcID: a.ID, DstID: b.ID,
		Score: score, Level: level, Cascaded: cascaded,
	})
}

func (e *Environment) linkFields(a, b *Field, score float64, level classifier.Level, cascaded bool) {
	e.fields[a] = b
	e.fields[b] = a
	e.pairs = append(e.pairs, Pair{
		Kind: EntityField, Src: a.String(), Dst: b.String(), SrcID: a.ID, DstID: b.ID,
		Score: score, Level: level, Cascaded: cascaded,
	})
}

// Pairs returns a copy of the match log.
func (e *Environment) Pairs() []Pair {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]Pair, len(e.pairs))
	copy(out, e.pairs)
	return out
}

// UnmatchedClasses lists the classes of g without a match.
func (e *Environment) UnmatchedClasses(g *Group) []*Class {
	e.mu.RLock()
	defer e.mu.RUnlock()
	var out []*Class
	for _, c := range g.Classes {
		if _, ok := e.classes[c]; !ok {
			out = append(out, c)
		}
	}
	return out
}

// UnmatchedMethods lists the unmatched methods of g that are (or are not)
// static.
func (e *Environment) UnmatchedMethods(g *Group, static bool) []*Method {
	e.mu.RLock()
	defer e.mu.RUnlock()
	var out []*Method
	for _, c := range g.Classes {
		for _, m := range c.Methods {
			if m.Static != static {
				continue
			}
			if _, ok := e.methods[m]; !ok {
				out = append(out, m)
			}
		}
	}
	return out
}

func (e *Environment) UnmatchedFields(g *Group, static bool) []*Field {
	e.mu.RLock()
	defer e.mu.RUnlock()
	var out []*Field
	for _, c := range g.Classes {
		for _, f := range c.Fields {
			if f.Static != static {
				continue
			}
			if _, ok := e.fields[f]; !ok {
				out = append(out, f)
			}
		}
	}
	return out
}

// UnmatchedVariables lists the unmatched arguments (or locals) of the
// methods of g that have a match.
func (e *Environment) UnmatchedVariables(g *Group, args bool) []*Variable {
	e.mu.RLock()
	defer e.mu.RUnlock()
	var out []*Variable
	for _, c := range g.Classes {
		for _, m := range c.Methods {
			if e.methods[m] == nil {
				continue
			}
			vars := m.Locals
			if args {
				vars = m.Args
			}
			for _, v := range vars {
				if _, ok := e.vars[v]; !ok {
					out = append(out, v)
				}
			}
		}
	}
	return out
}

// Count is matched/total for one entity kind of the source version.
type Count struct {
	Matched int
	Total   int
}

func (c Count) Percent() float64 {
	if c.Total == 0 {
		return 0
	}
	return float64(c.Matched) / float64(c.Total) * 100
}

type Stats struct {
	Classes       Count
	StaticMethods Count
	Methods       Count
	StaticFields  Count
	Fields        Count
	Args          Count
	Locals        Count
}

// Stats counts the matched entities of the source version.
func (e *Environment) Stats() Stats {
	e.mu.RLock()
	defer e.mu.RUnlock()

	var s Stats
	for _, c := range e.A.Classes {
		s.Classes.Total++
		if e.classes[c] != nil {
			s.Classes.Matched++
		}
		for _, m := range c.Methods {
			cnt := &s.Methods
			if m.Static {
				cnt = &s.StaticMethods
			}
			cnt.Total++
			if e.methods[m] != nil {
				cnt.Matched++
			}
			for _, v := range m.Variables() {
				cnt := &s.Locals
				if v.Arg {
					cnt = &s.Args
				}
				cnt.Total++
				if e.vars[v] != nil {
					cnt.Matched++
				}
			}
		}
		for _, f := range c.Fields {
			cnt := &s.Fields
			if f.Static {
				cnt = &s.StaticFields
			}
			cnt.Total++
			if e.fields[f] != nil {
				cnt.Matched++
			}
		}
	}
	return s
}
