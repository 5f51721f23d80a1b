package classifier

import (
	"fmt"
	"reflect"
	"sync"
)

// Registration pairs a classifier with the first level it is active at.
type Registration[T, E any] struct {
	Classifier Classifier[T, E]
	MinLevel   Level
}

// Entry is a read-only description of a registered classifier.
type Entry struct {
	Name     string
	Weight   float64
	MinLevel Level
}

// Registry is the ordered set of classifiers for one entity kind.
// Registration is expected to finish before ranking starts; lookups are
// safe for concurrent use.
type Registry[T, E any] struct {
	mu      sync.RWMutex
	entries []Registration[T, E]
	names   map[string]struct{}
}

// NewRegistry creates an empty registry.
func NewRegistry[T, E any]() *Registry[T, E] {
	return &Registry[T, E]{names: make(map[string]struct{})}
}

// Build creates a registry holding all of regs, or fails without returning
// a registry if any of them is rejected.
func Build[T, E any](regs ...Registration[T, E]) (*Registry[T, E], error) {
	r := NewRegistry[T, E]()
	for _, reg := range regs {
		if err := r.Register(reg.Classifier, reg.MinLevel); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds c, active from minLevel onwards. On error the registry is
// left unchanged.
func (r *Registry[T, E]) Register(c Classifier[T, E], minLevel Level) error {
	if isNil(c) {
		return &Error{Kind: ErrNilClassifier}
	}
	name := c.Name()
	if !minLevel.Valid() {
		return &Error{Kind: ErrInvalidLevel, Classifier: name, Level: minLevel}
	}
	if w := c.Weight(); !validWeight(w) {
		return &Error{Kind: ErrInvalidWeight, Classifier: name, Err: fmt.Errorf("weight %v", w)}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.names[name]; exists {
		return &Error{Kind: ErrDuplicateName, Classifier: name}
	}
	r.names[name] = struct{}{}
	r.entries = append(r.entries, Registration[T, E]{Classifier: c, MinLevel: minLevel})
	return nil
}

// ActiveAt returns the classifiers whose minimum level is <= level, in
// registration order.
func (r *Registry[T, E]) ActiveAt(level Level) []Classifier[T, E] {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var active []Classifier[T, E]
	for _, e := range r.entries {
		if e.MinLevel <= level {
			active = append(active, e.Classifier)
		}
	}
	return active
}

// TotalWeight is the sum of weights of the classifiers active at level.
func (r *Registry[T, E]) TotalWeight(level Level) float64 {
	var total float64
	for _, c := range r.ActiveAt(level) {
		total += c.Weight()
	}
	return total
}

// Len returns the number of registered classifiers.
func (r *Registry[T, E]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Entries describes every registered classifier in registration order.
func (r *Registry[T, E]) Entries() []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Entry, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, Entry{
			Name:     e.Classifier.Name(),
			Weight:   e.Classifier.Weight(),
			MinLevel: e.MinLevel,
		})
	}
	return out
}

// isNil also catches a nil pointer (or func, map, ...) stored in the
// interface.
func isNil(c any) bool {
	if c == nil {
		return true
	}
	v := reflect.ValueOf(c)
	switch v.Kind() {
	case reflect.Pointer, reflect.Func, reflect.Map, reflect.Slice, reflect.Chan, reflect.Interface:
		return v.IsNil()
	}
	return false
}
