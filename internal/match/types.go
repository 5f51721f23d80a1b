package match

import (
	"context"
	"time"

	"mapper/internal/classifier"
)

// Match is a committed correspondence between a source and a destination.
type Match[T any] struct {
	Src   T
	Dst   T
	Score float64
	Level classifier.Level
}

// Options tune a single pass run.
type Options struct {
	Thresholds Thresholds
	Workers    int
}

// StageResult reports one run of a stage at a level.
type StageResult struct {
	Stage     string
	Level     classifier.Level
	Round     int
	Attempted int
	Matched   int
	Unmatched int
	Conflicts int
	Duration  time.Duration
	Err       error
}

// Stage is a matching pass over one entity kind. Run ranks every unresolved
// source, then commits the confident matches in a single batch.
type Stage[E any] interface {
	Name() string
	Run(ctx context.Context, env E, level classifier.Level, opts Options) (StageResult, error)
}
