package extractor

import (
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
)

// GoExtractor parses Go source.
type GoExtractor struct{}

func (g *GoExtractor) Grammar() *sitter.Language {
	return golang.GetLanguage()
}

func (g *GoExtractor) Query() string {
	return `
		(source_file (function_declaration) @func)
		(source_file (method_declaration) @func)
		(source_file (type_declaration (type_spec) @type))
		(source_file (const_declaration (const_spec) @const))
		(source_file (var_declaration (var_spec) @var))
	`
}

func (g *GoExtractor) ExtractUnit(captureName string, node *sitter.Node, sourceCode []byte, filepath string, packageName string) *CodeUnit {
	var unit *CodeUnit
	switch captureName {
	case "func":
		unit = g.extractFunctionUnit(node, sourceCode, filepath)
	case "type":
		unit = g.extractTypeUnit(node, sourceCode, filepath)
	case "const":
		unit = g.extractValueUnit(node, sourceCode, filepath, UnitConstant)
	case "var":
		unit = g.extractValueUnit(node, sourceCode, filepath, UnitVariable)
	}

	if unit != nil {
		unit.Package = packageName
		unit.Language = "go"
	}
	return unit
}

// Go-specific Detail Schemas

type GoFunctionDetails struct {
	Receiver     string     `json:"receiver,omitempty"`
	ReceiverType string     `json:"receiver_type,omitempty"`
	Parameters   []GoParam  `json:"parameters"`
	Returns      []GoReturn `json:"returns"`
	Signature    string     `json:"signature"`
	Strings      []string   `json:"strings,omitempty"`
	Numbers      []string   `json:"numbers,omitempty"`
	Statements   int        `json:"statements"`
	// Locals are the variables declared in the body, in declaration order.
	// Types are empty when the declaration does not spell one out.
	Locals []GoParam `json:"locals,omitempty"`
	// Uses counts the references to each identifier of the body.
	Uses map[string]int `json:"uses,omitempty"`
	// Selectors lists the fields and methods selected on each identifier.
	Selectors map[string][]string `json:"selectors,omitempty"`
}

type GoTypeDetails struct {
	Fields     []GoField `json:"fields"`
	Underlying string    `json:"underlying,omitempty"`
}

type GoInterfaceDetails struct {
	Methods []GoMethodSpec `json:"methods"`
	Embeds  []string       `json:"embeds,omitempty"`
}

type GoMethodSpec struct {
	Name       string     `json:"name"`
	Parameters []GoParam  `json:"parameters"`
	Returns    []GoReturn `json:"returns"`
	Signature  string     `json:"signature"`
}

type GoValueDetails struct {
	Value string `json:"value,omitempty"`
	Type  string `json:"type"`
}

type GoParam struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

type GoReturn struct {
	Name string `json:"name,omitempty"`
	Type string `json:"type"`
}

type GoField struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Tag      string `json:"tag,omitempty"`
	Embedded bool   `json:"embedded,omitempty"`
}

// Extraction Logic

func (g *GoExtractor) extractTypeUnit(node *sitter.Node, sourceCode []byte, filepath string) *CodeUnit {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}
	name := nameNode.Content(sourceCode)

	parentNode := node.Parent()
	if parentNode == nil || parentNode.Type() != "type_declaration" {
		parentNode = node
	}

	unit := &CodeUnit{
		Filepath:    filepath,
		StartLine:   int(parentNode.StartPoint().Row + 1),
		EndLine:     int(parentNode.EndPoint().Row + 1),
		Content:     parentNode.Content(sourceCode),
		UnitType:    UnitType,
		Name:        name,
		Description: g.extractDocComment(parentNode, sourceCode),
	}

	typeNode := node.ChildByFieldName("type")
	if typeNode == nil {
		return unit
	}

	switch typeNode.Type() {
	case "struct_type":
		unit.UnitType = UnitStruct
		details := g.extractStructDetails(typeNode, sourceCode)
		for _, f := range details.Fields {
			if f.Embedded {
				unit.Relations = append(unit.Relations, g.relation(f.Type, RelationEmbeds, filepath, typeNode))
			}
		}
		unit.Details = details
	case "interface_type":
		unit.UnitType = UnitInterface
		details := g.extractInterfaceDetails(typeNode, sourceCode)
		for _, e := range details.Embeds {
			unit.Relations = append(unit.Relations, g.relation(e, RelationEmbeds, filepath, typeNode))
		}
		unit.Details = details
	default:
		unit.Details = GoTypeDetails{Fields: []GoField{}, Underlying: typeNode.Content(sourceCode)}
	}
	return unit
}

func (g *GoExtractor) extractStructDetails(structNode *sitter.Node, sourceCode []byte) GoTypeDetails {
	fields := []GoField{}
	var fieldList *sitter.Node
	for i := 0; i < int(structNode.NamedChildCount()); i++ {
		child := structNode.NamedChild(i)
		if child.Type() == "field_declaration_list" {
			fieldList = child
			break
		}
	}
	if fieldList == nil {
		return GoTypeDetails{Fields: fields}
	}

	for i := 0; i < int(fieldList.NamedChildCount()); i++ {
		fieldDecl := fieldList.NamedChild(i)
		if fieldDecl.Type() != "field_declaration" {
			continue
		}

		var fieldType, fieldTag string
		if typeNode := fieldDecl.ChildByFieldName("type"); typeNode != nil {
			fieldType = typeNode.Content(sourceCode)
		}
		if tagNode := fieldDecl.ChildByFieldName("tag"); tagNode != nil {
			fieldTag = tagNode.Content(sourceCode)
		}

		foundNames := false
		for j := 0; j < int(fieldDecl.NamedChildCount()); j++ {
			child := fieldDecl.NamedChild(j)
			if child.Type() == "field_identifier" {
				fields = append(fields, GoField{Name: child.Content(sourceCode), Type: fieldType, Tag: fieldTag})
				foundNames = true
			}
		}

		if !foundNames && fieldType != "" {
			fields = append(fields, GoField{Name: BaseTypeName(fieldType), Type: fieldType, Tag: fieldTag, Embedded: true})
		}
	}
	return GoTypeDetails{Fields: fields}
}

func (g *GoExtractor) extractInterfaceDetails(interfaceNode *sitter.Node, sourceCode []byte) GoInterfaceDetails {
	details := GoInterfaceDetails{Methods: []GoMethodSpec{}}

	for i := 0; i < int(interfaceNode.NamedChildCount()); i++ {
		n := interfaceNode.NamedChild(i)
		switch n.Type() {
		case "method_elem", "method_spec":
			spec := GoMethodSpec{
				Signature:  n.Content(sourceCode),
				Parameters: []GoParam{},
				Returns:    []GoReturn{},
			}
			if nameNode := n.ChildByFieldName("name"); nameNode != nil {
				spec.Name = nameNode.Content(sourceCode)
			}
			if paramsNode := n.ChildByFieldName("parameters"); paramsNode != nil {
				spec.Parameters = g.extractParams(paramsNode, sourceCode)
			}
			if resultNode := n.ChildByFieldName("result"); resultNode != nil {
				spec.Returns = g.extractReturns(resultNode, sourceCode)
			}
			details.Methods = append(details.Methods, spec)
		case "type_elem", "constraint_elem":
			details.Embeds = append(details.Embeds, strings.TrimSpace(n.Content(sourceCode)))
		}
	}
	return details
}

func (g *GoExtractor) extractFunctionUnit(node *sitter.Node, sourceCode []byte, filepath string) *CodeUnit {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}

	unit := &CodeUnit{
		Filepath:    filepath,
		StartLine:   int(node.StartPoint().Row + 1),
		EndLine:     int(node.EndPoint().Row + 1),
		Content:     node.Content(sourceCode),
		UnitType:    UnitFunction,
		Name:        nameNode.Content(sourceCode),
		Description: g.extractDocComment(node, sourceCode),
	}

	details := GoFunctionDetails{
		Parameters: []GoParam{},
		Returns:    []GoReturn{},
	}

	if node.Type() == "method_declaration" {
		unit.UnitType = UnitMethod
		if receiverNode := node.ChildByFieldName("receiver"); receiverNode != nil {
			details.Receiver = receiverNode.Content(sourceCode)
			if params := g.extractParams(receiverNode, sourceCode); len(params) > 0 {
				details.ReceiverType = BaseTypeName(params[0].Type)
			}
		}
	}

	if paramsNode := node.ChildByFieldName("parameters"); paramsNode != nil {
		details.Parameters = g.extractParams(paramsNode, sourceCode)
	}
	if resultNode := node.ChildByFieldName("result"); resultNode != nil {
		details.Returns = g.extractReturns(resultNode, sourceCode)
	}

	if bodyNode := node.ChildByFieldName("body"); bodyNode != nil {
		details.Signature = strings.TrimSpace(string(sourceCode[node.StartByte():bodyNode.StartByte()]))
		w := &bodyWalker{g: g, src: sourceCode, filepath: filepath}
		w.walk(bodyNode)
		details.Strings = w.strings
		details.Numbers = w.numbers
		details.Statements = w.statements
		details.Locals = w.locals
		details.Uses = w.uses
		details.Selectors = w.selectors
		unit.Relations = w.relations
	} else {
		details.Signature = unit.Content
	}

	unit.Details = details
	return unit
}

func (g *GoExtractor) extractValueUnit(node *sitter.Node, sourceCode []byte, filepath string, unitType string) *CodeUnit {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}
	parentNode := node.Parent()
	if parentNode == nil {
		parentNode = node
	}
	docComment := g.extractDocComment(parentNode, sourceCode)
	if docComment == "" {
		docComment = g.extractDocComment(node, sourceCode)
	}

	details := GoValueDetails{}
	if typeNode := node.ChildByFieldName("type"); typeNode != nil {
		details.Type = typeNode.Content(sourceCode)
	}
	if valueNode := node.ChildByFieldName("value"); valueNode != nil {
		details.Value = valueNode.Content(sourceCode)
	}

	return &CodeUnit{
		Filepath:    filepath,
		StartLine:   int(node.StartPoint().Row + 1),
		EndLine:     int(node.EndPoint().Row + 1),
		Content:     node.Content(sourceCode),
		UnitType:    unitType,
		Name:        nameNode.Content(sourceCode),
		Description: docComment,
		Details:     details,
	}
}

func (g *GoExtractor) relation(target, kind, filepath string, node *sitter.Node) Relation {
	return Relation{
		Target: target,
		Kind:   kind,
		Evidence: Evidence{
			Filepath:  filepath,
			StartLine: int(node.StartPoint().Row + 1),
			EndLine:   int(node.EndPoint().Row + 1),
		},
	}
}

// bodyWalker collects the references, literals and local variables of a
// function body.
type bodyWalker struct {
	g          *GoExtractor
	src        []byte
	filepath   string
	relations  []Relation
	strings    []string
	numbers    []string
	statements int
	locals     []GoParam
	uses       map[string]int
	selectors  map[string][]string
}

func (w *bodyWalker) walk(n *sitter.Node) {
	if n == nil {
		return
	}

	t := n.Type()
	if strings.HasSuffix(t, "_statement") || t == "short_var_declaration" {
		w.statements++
	}

	switch t {
	case "call_expression":
		fn := n.ChildByFieldName("function")
		if fn != nil {
			switch fn.Type() {
			case "identifier":
				w.add(fn.Content(w.src), RelationCalls, n)
			case "selector_expression":
				if field := fn.ChildByFieldName("field"); field != nil {
					w.add(field.Content(w.src), RelationCalls, n)
				}
				w.selector(fn)
				w.walk(fn.ChildByFieldName("operand"))
			default:
				w.walk(fn)
			}
		}
		w.walk(n.ChildByFieldName("arguments"))
		return
	case "selector_expression":
		if field := n.ChildByFieldName("field"); field != nil {
			w.add(field.Content(w.src), RelationAccesses, n)
		}
		w.selector(n)
		w.walk(n.ChildByFieldName("operand"))
		return
	case "identifier":
		if name := n.Content(w.src); name != "_" {
			if w.uses == nil {
				w.uses = make(map[string]int)
			}
			w.uses[name]++
		}
		return
	case "short_var_declaration":
		w.declare(n.ChildByFieldName("left"), "")
	case "var_spec":
		typ := ""
		if typeNode := n.ChildByFieldName("type"); typeNode != nil {
			typ = typeNode.Content(w.src)
		}
		w.declare(n, typ)
	case "range_clause":
		if w.definesRange(n) {
			w.declare(n.ChildByFieldName("left"), "")
		}
	case "composite_literal":
		if typeNode := n.ChildByFieldName("type"); typeNode != nil {
			w.add(BaseTypeName(typeNode.Content(w.src)), RelationInstantiates, n)
		}
		w.walk(n.ChildByFieldName("body"))
		return
	case "interpreted_string_literal", "raw_string_literal":
		w.strings = append(w.strings, n.Content(w.src))
		return
	case "int_literal", "float_literal", "imaginary_literal", "rune_literal":
		w.numbers = append(w.numbers, n.Content(w.src))
		return
	case "func_literal":
		// Closures belong to the enclosing function.
	}

	for i := 0; i < int(n.NamedChildCount()); i++ {
		w.walk(n.NamedChild(i))
	}
}

// declare records the identifiers directly under n as locals.
func (w *bodyWalker) declare(n *sitter.Node, typ string) {
	if n == nil {
		return
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		id := n.NamedChild(i)
		if id.Type() != "identifier" {
			continue
		}
		name := id.Content(w.src)
		if name == "_" || w.declared(name) {
			continue
		}
		w.locals = append(w.locals, GoParam{Name: name, Type: typ})
	}
}

func (w *bodyWalker) declared(name string) bool {
	for _, l := range w.locals {
		if l.Name == name {
			return true
		}
	}
	return false
}

// definesRange reports whether a range clause declares its variables
// with := rather than assigning existing ones.
func (w *bodyWalker) definesRange(n *sitter.Node) bool {
	for i := 0; i < int(n.ChildCount()); i++ {
		if n.Child(i).Type() == ":=" {
			return true
		}
	}
	return false
}

// selector records "x.field" against the identifier x.
func (w *bodyWalker) selector(n *sitter.Node) {
	operand, field := n.ChildByFieldName("operand"), n.ChildByFieldName("field")
	if operand == nil || field == nil || operand.Type() != "identifier" {
		return
	}
	if w.selectors == nil {
		w.selectors = make(map[string][]string)
	}
	name := operand.Content(w.src)
	w.selectors[name] = appendMissing(w.selectors[name], field.Content(w.src))
}

func appendMissing(list []string, s string) []string {
	for _, v := range list {
		if v == s {
			return list
		}
	}
	return append(list, s)
}

func (w *bodyWalker) add(target, kind string, n *sitter.Node) {
	if target == "" || target == "_" {
		return
	}
	w.relations = append(w.relations, w.g.relation(target, kind, w.filepath, n))
}

func (g *GoExtractor) extractDocComment(node *sitter.Node, sourceCode []byte) string {
	var commentLines []string
	currentNode := node
	for {
		prevSibling := currentNode.PrevSibling()
		if prevSibling == nil || (currentNode.StartPoint().Row-prevSibling.EndPoint().Row > 1) {
			break
		}
		if prevSibling.Type() != "comment" {
			break
		}
		commentLines = append([]string{prevSibling.Content(sourceCode)}, commentLines...)
		currentNode = prevSibling
	}
	return cleanDocComment(strings.Join(commentLines, "\n"))
}

func (g *GoExtractor) extractParams(paramsNode *sitter.Node, sourceCode []byte) []GoParam {
	params := []GoParam{}
	for i := 0; i < int(paramsNode.NamedChildCount()); i++ {
		pNode := paramsNode.NamedChild(i)
		if pNode.Type() != "parameter_declaration" && pNode.Type() != "variadic_parameter_declaration" {
			continue
		}

		pType := ""
		if tn := pNode.ChildByFieldName("type"); tn != nil {
			pType = tn.Content(sourceCode)
		}
		if pNode.Type() == "variadic_parameter_declaration" {
			pType = "..." + pType
		}

		var names []string
		for j := 0; j < int(pNode.NamedChildCount()); j++ {
			if c := pNode.NamedChild(j); c.Type() == "identifier" {
				names = append(names, c.Content(sourceCode))
			}
		}

		if len(names) == 0 {
			params = append(params, GoParam{Type: pType})
			continue
		}
		for _, n := range names {
			params = append(params, GoParam{Name: n, Type: pType})
		}
	}
	return params
}

func (g *GoExtractor) extractReturns(resultNode *sitter.Node, sourceCode []byte) []GoReturn {
	returns := []GoReturn{}
	if resultNode.Type() == "parameter_list" {
		for _, p := range g.extractParams(resultNode, sourceCode) {
			returns = append(returns, GoReturn{Name: p.Name, Type: p.Type})
		}
		return returns
	}
	return append(returns, GoReturn{Type: resultNode.Content(sourceCode)})
}

// BaseTypeName strips pointer, slice, package qualifier and type arguments
// from a type expression: "*pkg.List[T]" becomes "List".
func BaseTypeName(expr string) string {
	s := strings.TrimSpace(expr)
	for {
		trimmed := strings.TrimPrefix(strings.TrimPrefix(s, "*"), "[]")
		if trimmed == s {
			break
		}
		s = trimmed
	}
	if i := strings.Index(s, "["); i > 0 {
		s = s[:i]
	}
	if i := strings.LastIndex(s, "."); i >= 0 {
		s = s[i+1:]
	}
	return s
}

func cleanDocComment(rawComment string) string {
	if rawComment == "" {
		return ""
	}
	lines := strings.Split(rawComment, "\n")
	var cleaned []string
	for _, l := range lines {
		l = strings.TrimSpace(l)
		l = strings.TrimPrefix(l, "//")
		l = strings.TrimPrefix(l, "/*")
		l = strings.TrimSuffix(l, "*/")
		cleaned = append(cleaned, strings.TrimSpace(l))
	}
	return strings.Join(cleaned, "\n")
}

func (d GoFunctionDetails) String() string {
	return fmt.Sprintf("%s (%d params, %d returns)", d.Signature, len(d.Parameters), len(d.Returns))
}
