package graph

import "fmt"

// ClassKind tells what kind of declaration a class was built from.
type ClassKind string

const (
	KindStruct    ClassKind = "struct"
	KindInterface ClassKind = "interface"
	KindType      ClassKind = "type"
	// KindPackage is the pseudo class holding a package's functions, vars
	// and consts.
	KindPackage ClassKind = "package"
)

// Class is a named type of one program version, or the package pseudo
// class of one of its packages.
type Class struct {
	ID         string
	Name       string
	Package    string
	Kind       ClassKind
	Filepath   string
	Underlying string

	Parents  []*Class
	Children []*Class
	Methods  []*Method
	Fields   []*Field

	// InRefs are the other classes whose methods or fields use this one.
	InRefs []*Class

	Group *Group

	// declared is false for classes only seen as a method receiver.
	declared bool
	pending  []pendingRef
}

func (c *Class) String() string {
	return c.ID
}

// Method returns the member method called name.
func (c *Class) Method(name string) *Method {
	for _, m := range c.Methods {
		if m.Name == name {
			return m
		}
	}
	return nil
}

// Field returns the member field called name.
func (c *Class) Field(name string) *Field {
	for _, f := range c.Fields {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// Depth is the length of the longest embedding chain above c.
func (c *Class) Depth() int {
	return c.depth(map[*Class]bool{})
}

func (c *Class) depth(seen map[*Class]bool) int {
	if seen[c] {
		return 0
	}
	seen[c] = true
	defer delete(seen, c)

	deepest := 0
	for _, p := range c.Parents {
		if d := p.depth(seen) + 1; d > deepest {
			deepest = d
		}
	}
	return deepest
}

// Method is a function or method. Package level functions are static
// members of their package class; interface methods are abstract.
type Method struct {
	ID         string
	Name       string
	Owner      *Class
	Static     bool
	Abstract   bool
	Signature  string
	Params     []string
	Returns    []string
	Strings    []string
	Numbers    []string
	Statements int
	Position   int
	Line       int

	Args   []*Variable
	Locals []*Variable

	Calls     []*Method
	CalledBy  []*Method
	FieldRefs []*Field
	TypeRefs  []*Class

	pending []pendingRef
}

func (m *Method) String() string {
	return m.Owner.ID + "." + m.Name
}

// Field is a struct field, or a package var or const as a static field of
// the package class.
type Field struct {
	ID        string
	Name      string
	Type      string
	Value     string
	TypeClass *Class
	Owner     *Class
	Static    bool
	Const     bool
	Embedded  bool
	Position  int
	Line      int

	AccessedBy []*Method
}

func (f *Field) String() string {
	return f.Owner.ID + "." + f.Name
}

// Variable is an argument or a local variable of a method. Index counts
// within Args or Locals; Slot counts across both, arguments first.
type Variable struct {
	ID        string
	Name      string
	Type      string
	Owner     *Method
	Arg       bool
	Index     int
	Slot      int
	Uses      int
	Selectors []string
}

func (v *Variable) String() string {
	return v.Owner.String() + "#" + v.Label()
}

// Label names v within its method. Unnamed variables are named by slot.
func (v *Variable) Label() string {
	if v.Name == "" || v.Name == "_" {
		return fmt.Sprintf("$%d", v.Slot)
	}
	return v.Name
}

// Variables returns the arguments of m followed by its locals.
func (m *Method) Variables() []*Variable {
	out := make([]*Variable, 0, len(m.Args)+len(m.Locals))
	out = append(out, m.Args...)
	return append(out, m.Locals...)
}

type pendingRef struct {
	target string
	kind   string
}
