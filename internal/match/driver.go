package match

import (
	"context"
	"fmt"

	"mapper/internal/classifier"
	"mapper/internal/logging"
)

// DefaultMaxRounds caps how many rounds a single level may run.
const DefaultMaxRounds = 16

// Driver runs stages level by level. At each level it repeats rounds of all
// stages while the previous round committed at least one match, so that new
// matches can unlock further ones before moving to a richer level.
type Driver[E any] struct {
	stages    []Stage[E]
	final     []Stage[E]
	opts      Options
	maxRounds int
	levels    []classifier.Level
}

// DriverOption configures a Driver.
type DriverOption[E any] func(*Driver[E])

func WithThresholds[E any](t Thresholds) DriverOption[E] {
	return func(d *Driver[E]) { d.opts.Thresholds = t }
}

func WithWorkers[E any](n int) DriverOption[E] {
	return func(d *Driver[E]) { d.opts.Workers = n }
}

func WithMaxRounds[E any](n int) DriverOption[E] {
	return func(d *Driver[E]) {
		if n > 0 {
			d.maxRounds = n
		}
	}
}

// WithFinalStages adds stages that only run once every level is done,
// in rounds at the last level. They suit entities that depend on the
// matches of the main stages but never feed back into them.
func WithFinalStages[E any](stages ...Stage[E]) DriverOption[E] {
	return func(d *Driver[E]) { d.final = append(d.final, stages...) }
}

// WithLevels restricts the driver to the given levels. They are run in
// ascending order regardless of the order given.
func WithLevels[E any](levels ...classifier.Level) DriverOption[E] {
	return func(d *Driver[E]) {
		var out []classifier.Level
		for _, l := range classifier.Levels() {
			for _, want := range levels {
				if want == l {
					out = append(out, l)
					break
				}
			}
		}
		d.levels = out
	}
}

// NewDriver creates a driver over stages, run in the given order.
func NewDriver[E any](stages []Stage[E], opts ...DriverOption[E]) *Driver[E] {
	d := &Driver[E]{
		stages:    stages,
		opts:      Options{Thresholds: DefaultThresholds()},
		maxRounds: DefaultMaxRounds,
		levels:    classifier.Levels(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Run drives all levels, then the final stages. It stops at the first
// failing stage; matches committed by earlier, successful stages stay in
// the environment.
func (d *Driver[E]) Run(ctx context.Context, env E) ([]StageResult, error) {
	if err := d.opts.Thresholds.Validate(); err != nil {
		return nil, err
	}

	var results []StageResult
	for _, level := range d.levels {
		if err := d.runRounds(ctx, env, d.stages, level, &results); err != nil {
			return results, err
		}
	}
	if len(d.final) > 0 && len(d.levels) > 0 {
		if err := d.runRounds(ctx, env, d.final, d.levels[len(d.levels)-1], &results); err != nil {
			return results, err
		}
	}
	return results, nil
}

// runRounds repeats stages at level while the previous round committed at
// least one match.
func (d *Driver[E]) runRounds(ctx context.Context, env E, stages []Stage[E], level classifier.Level, results *[]StageResult) error {
	for round := 1; round <= d.maxRounds; round++ {
		matchedAny := false

		for _, stage := range stages {
			if err := ctx.Err(); err != nil {
				return err
			}

			logging.Debug("Analyzing", "stage", stage.Name(), "level", level, "round", round)
			res, err := stage.Run(ctx, env, level, d.opts)
			res.Round = round
			*results = append(*results, res)
			if err != nil {
				logging.Error("Stage failed", "stage", stage.Name(), "level", level, "err", err)
				return fmt.Errorf("level %s: %w", level, err)
			}

			logging.Info("Matched",
				"stage", stage.Name(),
				"level", level,
				"matched", res.Matched,
				"unmatched", res.Unmatched,
				"conflicts", res.Conflicts,
			)
			if res.Matched > 0 {
				matchedAny = true
			}
		}

		if !matchedAny {
			return nil
		}
	}
	return nil
}
