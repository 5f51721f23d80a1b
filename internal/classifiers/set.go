// Package classifiers holds the concrete similarity heuristics for classes,
// methods, fields and variables of a Go program.
package classifiers

import (
	"errors"
	"fmt"
	"sort"

	"mapper/internal/classifier"
	"mapper/internal/graph"
	"mapper/internal/match"
)

// Entity kinds, as used for weight overrides.
const (
	KindClass  = "class"
	KindMethod = "method"
	KindField  = "field"
	// KindVariable covers both arguments and locals.
	KindVariable = "variable"
)

var ErrUnknownClassifier = errors.New("unknown classifier")

// Options configures a Set.
type Options struct {
	// StrictNames only lets entities with the same non-obfuscated name be
	// candidates for each other.
	StrictNames bool
	// Thresholds decide which nested rankings count as a match inside the
	// members_full class heuristic.
	Thresholds match.Thresholds
	// Weights overrides classifier weights by kind and name.
	Weights map[string]map[string]float64
}

// Set is the full collection of registries and rankers for one run.
type Set struct {
	Classes *classifier.Registry[*graph.Class, *graph.Environment]
	Methods *classifier.Registry[*graph.Method, *graph.Environment]
	Fields    *classifier.Registry[*graph.Field, *graph.Environment]
	Variables *classifier.Registry[*graph.Variable, *graph.Environment]

	opts           Options
	classRanker    *classifier.Ranker[*graph.Class, *graph.Environment]
	methodRanker   *classifier.Ranker[*graph.Method, *graph.Environment]
	fieldRanker    *classifier.Ranker[*graph.Field, *graph.Environment]
	variableRanker *classifier.Ranker[*graph.Variable, *graph.Environment]
}

// New registers every heuristic, applying weight overrides.
func New(opts Options) (*Set, error) {
	if opts.Thresholds == (match.Thresholds{}) {
		opts.Thresholds = match.DefaultThresholds()
	}
	for kind := range opts.Weights {
		switch kind {
		case KindClass, KindMethod, KindField, KindVariable:
		default:
			return nil, fmt.Errorf("weights for entity kind %q: %w", kind, ErrUnknownClassifier)
		}
	}

	s := &Set{opts: opts}
	var err error
	if s.Methods, err = build(KindMethod, s.methodRegistrations(), opts.Weights[KindMethod]); err != nil {
		return nil, err
	}
	if s.Fields, err = build(KindField, s.fieldRegistrations(), opts.Weights[KindField]); err != nil {
		return nil, err
	}
	if s.Classes, err = build(KindClass, s.classRegistrations(), opts.Weights[KindClass]); err != nil {
		return nil, err
	}
	if s.Variables, err = build(KindVariable, s.variableRegistrations(), opts.Weights[KindVariable]); err != nil {
		return nil, err
	}

	s.classRanker = classifier.NewRanker(s.Classes, classifier.WithCandidateFilter(s.ClassesMayMatch))
	s.methodRanker = classifier.NewRanker(s.Methods, classifier.WithCandidateFilter(s.MethodsMayMatch))
	s.fieldRanker = classifier.NewRanker(s.Fields, classifier.WithCandidateFilter(s.FieldsMayMatch))
	s.variableRanker = classifier.NewRanker(s.Variables, classifier.WithCandidateFilter(s.VariablesMayMatch))
	return s, nil
}

func (s *Set) ClassRanker() *classifier.Ranker[*graph.Class, *graph.Environment] {
	return s.classRanker
}

func (s *Set) MethodRanker() *classifier.Ranker[*graph.Method, *graph.Environment] {
	return s.methodRanker
}

func (s *Set) FieldRanker() *classifier.Ranker[*graph.Field, *graph.Environment] {
	return s.fieldRanker
}

func (s *Set) VariableRanker() *classifier.Ranker[*graph.Variable, *graph.Environment] {
	return s.variableRanker
}

// Listing is one registered classifier of a kind.
type Listing struct {
	Kind string
	classifier.Entry
}

// List returns every registered classifier, grouped by kind.
func (s *Set) List() []Listing {
	var out []Listing
	add := func(kind string, entries []classifier.Entry) {
		sort.SliceStable(entries, func(i, j int) bool { return entries[i].MinLevel < entries[j].MinLevel })
		for _, e := range entries {
			out = append(out, Listing{Kind: kind, Entry: e})
		}
	}
	add(KindClass, s.Classes.Entries())
	add(KindMethod, s.Methods.Entries())
	add(KindField, s.Fields.Entries())
	add(KindVariable, s.Variables.Entries())
	return out
}

func at[T any](level classifier.Level, name string, weight float64, fn classifier.ScoreFunc[T, *graph.Environment]) classifier.Registration[T, *graph.Environment] {
	return classifier.Registration[T, *graph.Environment]{
		Classifier: classifier.New[T, *graph.Environment](name, weight, fn),
		MinLevel:   level,
	}
}

func build[T any](kind string, regs []classifier.Registration[T, *graph.Environment], weights map[string]float64) (*classifier.Registry[T, *graph.Environment], error) {
	known := make(map[string]bool, len(regs))
	for i, r := range regs {
		name := r.Classifier.Name()
		known[name] = true
		if w, ok := weights[name]; ok {
			regs[i].Classifier = classifier.Reweight(r.Classifier, w)
		}
	}
	for name := range weights {
		if !known[name] {
			return nil, fmt.Errorf("%s classifier %q: %w", kind, name, ErrUnknownClassifier)
		}
	}

	reg, err := classifier.Build(regs...)
	if err != nil {
		return nil, fmt.Errorf("%s classifiers: %w", kind, err)
	}
	return reg, nil
}

func atChecked[T any](level classifier.Level, name string, weight float64, fn classifier.CheckedScoreFunc[T, *graph.Environment]) classifier.Registration[T, *graph.Environment] {
	return classifier.Registration[T, *graph.Environment]{
		Classifier: classifier.NewChecked[T, *graph.Environment](name, weight, fn),
		MinLevel:   level,
	}
}
