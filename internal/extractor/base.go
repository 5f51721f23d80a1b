package extractor

import sitter "github.com/smacker/go-tree-sitter"

// Unit types produced by the Go extractor.
const (
	UnitStruct    = "struct"
	UnitInterface = "interface"
	UnitType      = "type"
	UnitFunction  = "function"
	UnitMethod    = "method"
	UnitVariable  = "variable"
	UnitConstant  = "constant"
)

// CodeUnit is one top-level declaration of a source file.
type CodeUnit struct {
	ID          string      `json:"id"`
	Filepath    string      `json:"filepath"`
	Package     string      `json:"package"`
	Language    string      `json:"language"`
	StartLine   int         `json:"start_line"`
	EndLine     int         `json:"end_line"`
	Content     string      `json:"content"`
	UnitType    string      `json:"unit_type"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Details     interface{} `json:"details"`
	// Relations are the names this unit refers to, resolved later by the
	// entity graph.
	Relations []Relation `json:"relations,omitempty"`
}

// languageParser is implemented by each supported language.
type languageParser interface {
	Grammar() *sitter.Language
	Query() string
	ExtractUnit(captureName string, node *sitter.Node, sourceCode []byte, filepath string, packageName string) *CodeUnit
}
