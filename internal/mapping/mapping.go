// Package mapping reads and writes mapping documents: the matched entities
// of a run as YAML, grouped by class.
package mapping

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"mapper/internal/classifier"
	"mapper/internal/graph"
)

var (
	ErrConflict = errors.New("conflicting mapping")
	ErrInvalid  = errors.New("invalid mapping document")
)

type Document struct {
	Run     string  `yaml:"run,omitempty"`
	Old     string  `yaml:"old,omitempty"`
	New     string  `yaml:"new,omitempty"`
	Classes []Class `yaml:"classes"`
}

// Class maps one class of the old version to the new one. A class entry
// whose Score is zero only groups members; the class itself was not matched.
// Static members moved between packages give one grouping entry per pair of
// owners, so Old alone does not identify an entry.
type Class struct {
	Old       string   `yaml:"old"`
	New       string   `yaml:"new"`
	Score     float64  `yaml:"score,omitempty"`
	Level     string   `yaml:"level,omitempty"`
	Methods   []Member `yaml:"methods,omitempty"`
	Fields    []Member `yaml:"fields,omitempty"`
	Variables []Member `yaml:"variables,omitempty"`
}

// Member maps a method, field or variable. Variables are named
// "method#name" relative to the class.
type Member struct {
	Old      string  `yaml:"old"`
	New      string  `yaml:"new"`
	Score    float64 `yaml:"score"`
	Level    string  `yaml:"level"`
	Cascaded bool    `yaml:"cascaded,omitempty"`
}

// Matched reports whether the class itself was matched, as opposed to an
// entry that only groups members.
func (c *Class) Matched() bool {
	return c.Score > 0
}

// FromPairs groups a match log by the owner classes on both sides. Classes
// keep the order in which they first appear in pairs.
func FromPairs(pairs []graph.Pair) []Class {
	var classes []*Class
	byOwners := make(map[[2]string]*Class)

	get := func(src, dst string) *Class {
		key := [2]string{src, dst}
		if c, ok := byOwners[key]; ok {
			return c
		}
		c := &Class{Old: src, New: dst}
		byOwners[key] = c
		classes = append(classes, c)
		return c
	}

	for _, p := range pairs {
		switch p.Kind {
		case graph.EntityClass:
			c := get(p.Src, p.Dst)
			c.Score = p.Score
			c.Level = p.Level.String()
		case graph.EntityMethod, graph.EntityField, graph.EntityVariable:
			srcOwner, srcName := splitMember(p.Src)
			dstOwner, dstName := splitMember(p.Dst)
			c := get(srcOwner, dstOwner)
			m := Member{Old: srcName, New: dstName, Score: p.Score, Level: p.Level.String(), Cascaded: p.Cascaded}
			switch p.Kind {
			case graph.EntityMethod:
				c.Methods = append(c.Methods, m)
			case graph.EntityField:
				c.Fields = append(c.Fields, m)
			default:
				c.Variables = append(c.Variables, m)
			}
		}
	}

	out := make([]Class, len(classes))
	for i, c := range classes {
		out[i] = *c
	}
	return out
}

func (c *Class) groups() []memberGroup {
	return []memberGroup{
		{graph.EntityMethod, c.Methods},
		{graph.EntityField, c.Fields},
		{graph.EntityVariable, c.Variables},
	}
}

type memberGroup struct {
	kind    graph.EntityKind
	members []Member
}

// Pairs flattens d back into a match log. Entity IDs are not part of the
// document and stay empty.
func (d *Document) Pairs() ([]graph.Pair, error) {
	var pairs []graph.Pair
	for _, c := range d.Classes {
		if c.Matched() {
			level, err := classifier.ParseLevel(c.Level)
			if err != nil {
				return nil, fmt.Errorf("class %s: %w", c.Old, err)
			}
			pairs = append(pairs, graph.Pair{Kind: graph.EntityClass, Src: c.Old, Dst: c.New, Score: c.Score, Level: level})
		}
		for _, group := range c.groups() {
			for _, m := range group.members {
				level, err := classifier.ParseLevel(m.Level)
				if err != nil {
					return nil, fmt.Errorf("%s %s.%s: %w", group.kind, c.Old, m.Old, err)
				}
				pairs = append(pairs, graph.Pair{
					Kind: group.kind, Src: c.Old + "." + m.Old, Dst: c.New + "." + m.New,
					Score: m.Score, Level: level, Cascaded: m.Cascaded,
				})
			}
		}
	}
	return pairs, nil
}

// Validate checks that no entity is mapped twice in either direction and
// that no two entries share both owners.
func (d *Document) Validate() error {
	seen := map[[3]string]bool{}
	claim := func(side string, kind graph.EntityKind, name string) error {
		key := [3]string{side, string(kind), name}
		if seen[key] {
			return fmt.Errorf("%s %s %s mapped twice: %w", side, kind, name, ErrConflict)
		}
		seen[key] = true
		return nil
	}

	entries := map[[2]string]bool{}
	for _, c := range d.Classes {
		if c.Old == "" || c.New == "" {
			return fmt.Errorf("class entry with empty name: %w", ErrConflict)
		}
		if entries[[2]string{c.Old, c.New}] {
			return fmt.Errorf("class entry %s -> %s repeated: %w", c.Old, c.New, ErrConflict)
		}
		entries[[2]string{c.Old, c.New}] = true

		if c.Matched() {
			if err := claim("old", graph.EntityClass, c.Old); err != nil {
				return err
			}
			if err := claim("new", graph.EntityClass, c.New); err != nil {
				return err
			}
		}
		for _, group := range c.groups() {
			for _, m := range group.members {
				if err := claim("old", group.kind, c.Old+"."+m.Old); err != nil {
					return err
				}
				if err := claim("new", group.kind, c.New+"."+m.New); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func Write(w io.Writer, d *Document) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(d); err != nil {
		return fmt.Errorf("failed to encode mapping: %w", err)
	}
	return enc.Close()
}

func WriteFile(path string, d *Document) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Write(f, d); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Read decodes a mapping document, checks it against the document schema
// and validates it. An empty input is an empty document.
func Read(r io.Reader) (*Document, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var tree any
	if err := yaml.Unmarshal(raw, &tree); err != nil {
		return nil, fmt.Errorf("failed to decode mapping: %w", err)
	}
	var d Document
	if tree == nil {
		return &d, nil
	}
	if err := validateSchema(tree); err != nil {
		return nil, err
	}

	if err := yaml.Unmarshal(raw, &d); err != nil {
		return nil, fmt.Errorf("failed to decode mapping: %w", err)
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return &d, nil
}

func ReadFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Read(f)
}

// splitMember splits "owner.name" at the last dot. Owner IDs may contain
// dots, member names never do.
func splitMember(s string) (owner, name string) {
	i := strings.LastIndexByte(s, '.')
	if i < 0 {
		return "", s
	}
	return s[:i], s[i+1:]
}
