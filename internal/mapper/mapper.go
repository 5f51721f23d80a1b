// Package mapper wires the heuristics, passes and level driver into a
// single matching run over two program versions.
package mapper

import (
	"context"
	"fmt"
	"time"

	"mapper/internal/classifier"
	"mapper/internal/classifiers"
	"mapper/internal/graph"
	"mapper/internal/logging"
	"mapper/internal/match"
)

// Config tunes a Mapper.
type Config struct {
	Thresholds  match.Thresholds
	Workers     int
	MaxRounds   int
	StrictNames bool
	Weights     map[string]map[string]float64
	// Levels restricts the run to some levels. Empty means all of them.
	Levels []classifier.Level
}

// Report summarizes a run.
type Report struct {
	Stages   []match.StageResult
	Pairs    []graph.Pair
	Stats    graph.Stats
	Duration time.Duration
}

// Mapper matches the entities of two program versions.
type Mapper struct {
	set    *classifiers.Set
	driver *match.Driver[*graph.Environment]
}

// New builds the classifier registries and the pass pipeline.
func New(cfg Config) (*Mapper, error) {
	if cfg.Thresholds == (match.Thresholds{}) {
		cfg.Thresholds = match.DefaultThresholds()
	}
	if err := cfg.Thresholds.Validate(); err != nil {
		return nil, fmt.Errorf("invalid thresholds: %w", err)
	}

	set, err := classifiers.New(classifiers.Options{
		StrictNames: cfg.StrictNames,
		Thresholds:  cfg.Thresholds,
		Weights:     cfg.Weights,
	})
	if err != nil {
		return nil, err
	}

	opts := []match.DriverOption[*graph.Environment]{
		match.WithThresholds[*graph.Environment](cfg.Thresholds),
		match.WithWorkers[*graph.Environment](cfg.Workers),
		match.WithMaxRounds[*graph.Environment](cfg.MaxRounds),
		match.WithFinalStages[*graph.Environment](finalStages(set)...),
	}
	if len(cfg.Levels) > 0 {
		opts = append(opts, match.WithLevels[*graph.Environment](cfg.Levels...))
	}

	return &Mapper{
		set:    set,
		driver: match.NewDriver(stages(set), opts...),
	}, nil
}

// Classifiers exposes the registered heuristics.
func (m *Mapper) Classifiers() *classifiers.Set {
	return m.set
}

// Run matches env.A against env.B. On failure the report still holds the
// stages run so far and the matches committed before the failing pass.
func (m *Mapper) Run(ctx context.Context, env *graph.Environment) (*Report, error) {
	start := time.Now()
	results, err := m.driver.Run(ctx, env)

	report := &Report{
		Stages:   results,
		Pairs:    env.Pairs(),
		Stats:    env.Stats(),
		Duration: time.Since(start),
	}
	if err != nil {
		return report, err
	}

	s := report.Stats
	logging.Info("Mapping finished",
		"classes", fmt.Sprintf("%d/%d", s.Classes.Matched, s.Classes.Total),
		"static_methods", fmt.Sprintf("%d/%d", s.StaticMethods.Matched, s.StaticMethods.Total),
		"methods", fmt.Sprintf("%d/%d", s.Methods.Matched, s.Methods.Total),
		"static_fields", fmt.Sprintf("%d/%d", s.StaticFields.Matched, s.StaticFields.Total),
		"fields", fmt.Sprintf("%d/%d", s.Fields.Matched, s.Fields.Total),
		"args", fmt.Sprintf("%d/%d", s.Args.Matched, s.Args.Total),
		"locals", fmt.Sprintf("%d/%d", s.Locals.Matched, s.Locals.Total),
		"duration", report.Duration,
	)
	return report, nil
}
