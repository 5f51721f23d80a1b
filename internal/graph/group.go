package graph

import (
	"sort"
	"strings"

	"mapper/internal/extractor"
)

// Group is the entity model of one program version.
type Group struct {
	Name    string
	Classes []*Class

	classes map[string]*Class
	// name -> entities, for resolving name-based relations
	classIndex  map[string][]*Class
	methodIndex map[string][]*Method
	fieldIndex  map[string][]*Field
}

// NewGroup creates an empty group.
func NewGroup(name string) *Group {
	return &Group{
		Name:        name,
		classes:     make(map[string]*Class),
		classIndex:  make(map[string][]*Class),
		methodIndex: make(map[string][]*Method),
		fieldIndex:  make(map[string][]*Field),
	}
}

// Class returns the class with the given qualified ID.
func (g *Group) Class(id string) *Class {
	return g.classes[id]
}

// Methods returns every method in the group, class by class.
func (g *Group) Methods() []*Method {
	var out []*Method
	for _, c := range g.Classes {
		out = append(out, c.Methods...)
	}
	return out
}

// Fields returns every field in the group, class by class.
func (g *Group) Fields() []*Field {
	var out []*Field
	for _, c := range g.Classes {
		out = append(out, c.Fields...)
	}
	return out
}

func (g *Group) class(pkg, name string, kind ClassKind) *Class {
	id := pkg
	if kind != KindPackage {
		id = pkg + "." + name
	}
	if c, ok := g.classes[id]; ok {
		return c
	}
	c := &Class{ID: id, Name: name, Package: pkg, Kind: kind, Group: g}
	g.classes[id] = c
	g.Classes = append(g.Classes, c)
	if kind != KindPackage {
		g.classIndex[name] = append(g.classIndex[name], c)
	}
	return c
}

func (g *Group) packageClass(pkg string) *Class {
	c := g.class(pkg, pkg, KindPackage)
	c.declared = true
	return c
}

// AddUnit adds an extracted unit to the group.
func (g *Group) AddUnit(unit *extractor.CodeUnit) {
	if unit == nil || unit.Name == "" {
		return
	}

	switch unit.UnitType {
	case extractor.UnitStruct, extractor.UnitInterface, extractor.UnitType:
		g.addType(unit)
	case extractor.UnitFunction:
		g.addMethod(unit, g.packageClass(unit.Package), true)
	case extractor.UnitMethod:
		owner := g.packageClass(unit.Package)
		if d, ok := unit.Details.(extractor.GoFunctionDetails); ok && d.ReceiverType != "" {
			owner = g.class(unit.Package, d.ReceiverType, KindType)
		}
		g.addMethod(unit, owner, false)
	case extractor.UnitConstant, extractor.UnitVariable:
		d, _ := unit.Details.(extractor.GoValueDetails)
		g.addField(&Field{
			ID:     unit.ID,
			Name:   unit.Name,
			Type:   d.Type,
			Value:  d.Value,
			Static: true,
			Const:  unit.UnitType == extractor.UnitConstant,
			Line:   unit.StartLine,
		}, g.packageClass(unit.Package))
	}
}

func (g *Group) addType(unit *extractor.CodeUnit) {
	c := g.class(unit.Package, unit.Name, ClassKind(unit.UnitType))
	c.Kind = ClassKind(unit.UnitType)
	c.Filepath = unit.Filepath
	c.declared = true

	for _, rel := range unit.Relations {
		if rel.Kind == extractor.RelationEmbeds {
			c.pending = append(c.pending, pendingRef{target: rel.Target, kind: rel.Kind})
		}
	}

	switch d := unit.Details.(type) {
	case extractor.GoTypeDetails:
		c.Underlying = d.Underlying
		for _, f := range d.Fields {
			g.addField(&Field{
				ID:       unit.ID + "." + f.Name,
				Name:     f.Name,
				Type:     f.Type,
				Embedded: f.Embedded,
				Line:     unit.StartLine,
			}, c)
		}
	case extractor.GoInterfaceDetails:
		for _, spec := range d.Methods {
			m := &Method{
				ID:        unit.ID + "." + spec.Name,
				Name:      spec.Name,
				Abstract:  true,
				Signature: spec.Signature,
				Line:      unit.StartLine,
			}
			for _, p := range spec.Parameters {
				m.Params = append(m.Params, p.Type)
			}
			for _, r := range spec.Returns {
				m.Returns = append(m.Returns, r.Type)
			}
			m.addVariables(spec.Parameters, nil, nil, nil)
			g.attachMethod(m, c)
		}
	}
}

func (g *Group) addMethod(unit *extractor.CodeUnit, owner *Class, static bool) {
	m := &Method{
		ID:     unit.ID,
		Name:   unit.Name,
		Static: static,
		Line:   unit.StartLine,
	}
	if d, ok := unit.Details.(extractor.GoFunctionDetails); ok {
		m.Signature = d.Signature
		m.Strings = d.Strings
		m.Numbers = d.Numbers
		m.Statements = d.Statements
		for _, p := range d.Parameters {
			m.Params = append(m.Params, p.Type)
		}
		for _, r := range d.Returns {
			m.Returns = append(m.Returns, r.Type)
		}
		m.addVariables(d.Parameters, d.Locals, d.Uses, d.Selectors)
	}
	for _, rel := range unit.Relations {
		m.pending = append(m.pending, pendingRef{target: rel.Target, kind: rel.Kind})
	}
	g.attachMethod(m, owner)
}

func (m *Method) addVariables(params, locals []extractor.GoParam, uses map[string]int, selectors map[string][]string) {
	slot := 0
	add := func(p extractor.GoParam, arg bool, index int) *Variable {
		v := &Variable{
			Name:      p.Name,
			Type:      p.Type,
			Owner:     m,
			Arg:       arg,
			Index:     index,
			Slot:      slot,
			Uses:      uses[p.Name],
			Selectors: selectors[p.Name],
		}
		v.ID = m.ID + "#" + v.Label()
		slot++
		return v
	}
	for i, p := range params {
		m.Args = append(m.Args, add(p, true, i))
	}
	for i, p := range locals {
		m.Locals = append(m.Locals, add(p, false, i))
	}
}

func (g *Group) attachMethod(m *Method, owner *Class) {
	m.Owner = owner
	owner.Methods = append(owner.Methods, m)
	g.methodIndex[m.Name] = append(g.methodIndex[m.Name], m)
}

func (g *Group) addField(f *Field, owner *Class) {
	f.Owner = owner
	owner.Fields = append(owner.Fields, f)
	g.fieldIndex[f.Name] = append(g.fieldIndex[f.Name], f)
}

// LinkRelations resolves the name-based relations collected by AddUnit into
// entity references, drops receiver-only classes without a declaration and
// fixes member positions. It is safe to call more than once.
func (g *Group) LinkRelations() {
	var orphans []*Class
	for _, c := range g.Classes {
		if !c.declared && len(c.Fields) == 0 {
			orphans = append(orphans, c)
		}
	}
	for _, c := range orphans {
		// Receiver of a type declared elsewhere: its methods become static
		// members of the package class.
		pkg := g.packageClass(c.Package)
		for _, m := range c.Methods {
			m.Owner = pkg
			m.Static = true
			pkg.Methods = append(pkg.Methods, m)
		}
		delete(g.classes, c.ID)
		g.classIndex[c.Name] = removeClass(g.classIndex[c.Name], c)
		g.Classes = removeClass(g.Classes, c)
	}

	sort.SliceStable(g.Classes, func(i, j int) bool { return g.Classes[i].ID < g.Classes[j].ID })

	for _, c := range g.Classes {
		c.Parents, c.Children, c.InRefs = nil, nil, nil
	}
	for _, m := range g.Methods() {
		m.Calls, m.CalledBy, m.FieldRefs, m.TypeRefs = nil, nil, nil, nil
	}
	for _, f := range g.Fields() {
		f.AccessedBy = nil
	}

	for _, c := range g.Classes {
		sort.SliceStable(c.Methods, func(i, j int) bool { return c.Methods[i].Line < c.Methods[j].Line })
		sort.SliceStable(c.Fields, func(i, j int) bool { return c.Fields[i].Line < c.Fields[j].Line })
		for i, m := range c.Methods {
			m.Position = i
		}
		for i, f := range c.Fields {
			f.Position = i
		}

		for _, ref := range c.pending {
			if p := g.resolveClass(ref.target, c.Package); p != nil && p != c {
				c.Parents = appendUnique(c.Parents, p)
				p.Children = appendUnique(p.Children, c)
			}
		}
		for _, f := range c.Fields {
			if f.Type != "" {
				f.TypeClass = g.resolveClass(f.Type, c.Package)
			}
			if f.TypeClass != nil && f.TypeClass != c {
				f.TypeClass.InRefs = appendUnique(f.TypeClass.InRefs, c)
			}
		}
	}

	for _, c := range g.Classes {
		for _, m := range c.Methods {
			g.linkMethod(m)
		}
	}
}

func (g *Group) linkMethod(m *Method) {
	for _, ref := range m.pending {
		switch ref.kind {
		case extractor.RelationCalls:
			if callee := g.resolveMethod(ref.target, m.Owner); callee != nil {
				m.Calls = appendUnique(m.Calls, callee)
				callee.CalledBy = appendUnique(callee.CalledBy, m)
			}
		case extractor.RelationAccesses:
			if f := g.resolveField(ref.target, m.Owner); f != nil {
				m.FieldRefs = appendUnique(m.FieldRefs, f)
				f.AccessedBy = appendUnique(f.AccessedBy, m)
			}
		case extractor.RelationInstantiates:
			if c := g.resolveClass(ref.target, m.Owner.Package); c != nil {
				m.TypeRefs = appendUnique(m.TypeRefs, c)
			}
		}
	}

	for _, t := range append(append([]string{}, m.Params...), m.Returns...) {
		if c := g.resolveClass(t, m.Owner.Package); c != nil {
			m.TypeRefs = appendUnique(m.TypeRefs, c)
		}
	}
	for _, c := range m.TypeRefs {
		if c != m.Owner {
			c.InRefs = appendUnique(c.InRefs, m.Owner)
		}
	}
}

// ResolveType returns the class of this group a type expression written in
// package pkg refers to, or nil.
func (g *Group) ResolveType(expr, pkg string) *Class {
	return g.resolveClass(expr, pkg)
}

// resolveClass finds the class a type expression names, preferring the
// given package. Qualified names only resolve against their package.
func (g *Group) resolveClass(expr, pkg string) *Class {
	name := extractor.BaseTypeName(expr)
	if q := qualifier(expr); q != "" {
		return g.classes[q+"."+name]
	}
	if c, ok := g.classes[pkg+"."+name]; ok {
		return c
	}
	if cands := g.classIndex[name]; len(cands) == 1 {
		return cands[0]
	}
	return nil
}

// resolveMethod prefers methods of the caller's own class, then its
// package, then a unique match anywhere in the group.
func (g *Group) resolveMethod(name string, from *Class) *Method {
	return pick(g.methodIndex[name], func(m *Method) *Class { return m.Owner }, from)
}

func (g *Group) resolveField(name string, from *Class) *Field {
	return pick(g.fieldIndex[name], func(f *Field) *Class { return f.Owner }, from)
}

func pick[T any](cands []T, owner func(T) *Class, from *Class) T {
	var zero T
	if len(cands) == 0 {
		return zero
	}
	for _, c := range cands {
		if owner(c) == from {
			return c
		}
	}
	var local []T
	for _, c := range cands {
		if owner(c).Package == from.Package {
			local = append(local, c)
		}
	}
	if len(local) == 1 {
		return local[0]
	}
	if len(local) == 0 && len(cands) == 1 {
		return cands[0]
	}
	return zero
}

func qualifier(expr string) string {
	s := strings.TrimLeft(strings.TrimSpace(expr), "*[]")
	if i := strings.Index(s, "["); i > 0 {
		s = s[:i]
	}
	if i := strings.LastIndex(s, "."); i > 0 {
		return s[:i]
	}
	return ""
}

func appendUnique[T comparable](list []T, v T) []T {
	for _, x := range list {
		if x == v {
			return list
		}
	}
	return append(list, v)
}

func removeClass(list []*Class, c *Class) []*Class {
	out := list[:0]
	for _, x := range list {
		if x != c {
			out = append(out, x)
		}
	}
	return out
}
