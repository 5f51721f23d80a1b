package index

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"mapper/internal/crawler"
	"mapper/internal/extractor"
	"mapper/internal/graph"
	"mapper/internal/logging"
)

// Indexer turns source trees into linked entity groups.
type Indexer struct {
	crawler *crawler.Crawler
}

// NewIndexer creates a new indexer.
func NewIndexer(c *crawler.Crawler) *Indexer {
	return &Indexer{
		crawler: c,
	}
}

// BuildGroup scans root and builds the group of one program version.
func (i *Indexer) BuildGroup(ctx context.Context, root, name string) (*graph.Group, error) {
	g := graph.NewGroup(name)

	units := 0
	err := i.crawler.ScanProject(ctx, root, func(unit *extractor.CodeUnit) {
		g.AddUnit(unit)
		units++
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s failed: %w", root, err)
	}

	// Resolve relationships after all units are loaded
	g.LinkRelations()

	logging.Info("Indexed", "group", name, "root", root, "units", units, "classes", len(g.Classes))
	return g, nil
}

// LoadEnvironment indexes both versions concurrently and pairs them up.
func (i *Indexer) LoadEnvironment(ctx context.Context, oldRoot, newRoot string) (*graph.Environment, error) {
	var a, b *graph.Group

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		var err error
		a, err = i.BuildGroup(ctx, oldRoot, "old")
		return err
	})
	eg.Go(func() error {
		var err error
		b, err = i.BuildGroup(ctx, newRoot, "new")
		return err
	})
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	return graph.NewEnvironment(a, b), nil
}
