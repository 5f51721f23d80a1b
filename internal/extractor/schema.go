package extractor

// Relation kinds recorded on code units. Targets are plain names; they are
// resolved to entities when the graph is linked.
const (
	RelationCalls        = "calls"
	RelationAccesses     = "accesses"
	RelationEmbeds       = "embeds"
	RelationInstantiates = "instantiates"
)

// Relation is a name-based reference from a unit to another symbol.
type Relation struct {
	Target   string   `json:"target"`
	Kind     string   `json:"kind"`
	Evidence Evidence `json:"evidence,omitempty"`
}

// Evidence points at the source location a relation was found at.
type Evidence struct {
	Filepath  string `json:"filepath,omitempty"`
	StartLine int    `json:"start_line,omitempty"`
	EndLine   int    `json:"end_line,omitempty"`
}
