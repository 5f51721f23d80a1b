package storage

import (
	"context"
	"errors"
	"time"

	"mapper/internal/graph"
)

var (
	ErrRunNotFound  = errors.New("run not found")
	ErrAmbiguousRun = errors.New("run id prefix is ambiguous")
)

// Run is one persisted mapping run.
type Run struct {
	ID        string
	CreatedAt time.Time
	OldRoot   string
	NewRoot   string
	Stats     graph.Stats
	// Pairs is only filled by LoadRun.
	Pairs []graph.Pair
}

// RunStore persists mapping runs.
type RunStore interface {
	// SaveRun stores run and its pairs, replacing any run with the same ID.
	// An empty ID is filled with a new UUID.
	SaveRun(ctx context.Context, run *Run) error

	// LoadRun returns the run whose ID equals or uniquely starts with id.
	LoadRun(ctx context.Context, id string) (*Run, error)

	// ListRuns returns all runs without their pairs, newest first.
	ListRuns(ctx context.Context) ([]Run, error)

	DeleteRun(ctx context.Context, id string) error

	Close() error
}
