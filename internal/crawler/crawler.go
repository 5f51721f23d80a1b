package crawler

import (
	"context"
	"io/fs"
	"path/filepath"
	"strings"

	"mapper/internal/extractor"
	"mapper/internal/logging"
)

// Crawler scans a directory for source files.
type Crawler struct {
	extractor    *extractor.Extractor
	ignored      []string
	includeTests bool
}

// Option configures a Crawler.
type Option func(*Crawler)

// WithIgnored replaces the directory names skipped while walking.
func WithIgnored(names ...string) Option {
	return func(c *Crawler) { c.ignored = names }
}

// WithTests makes the crawler read _test.go files too.
func WithTests(include bool) Option {
	return func(c *Crawler) { c.includeTests = include }
}

// NewCrawler creates a new crawler instance.
func NewCrawler(ext *extractor.Extractor, opts ...Option) *Crawler {
	c := &Crawler{
		extractor: ext,
		ignored:   []string{".git", "vendor", "node_modules", "testdata"},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ScanProject walks root and streams every extracted unit to onUnit.
// Files that fail to parse are logged and skipped.
func (c *Crawler) ScanProject(ctx context.Context, root string, onUnit func(*extractor.CodeUnit)) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		if d.IsDir() {
			if path == root {
				return nil
			}
			for _, ign := range c.ignored {
				if d.Name() == ign {
					return filepath.SkipDir
				}
			}
			return nil
		}

		if !c.wants(d.Name()) {
			return nil
		}

		units, err := c.extractor.ExtractFromFile(path)
		if err != nil {
			logging.Warn("Skipping file", "path", path, "err", err)
			return nil
		}

		for _, unit := range units {
			onUnit(unit)
		}
		return nil
	})
}

func (c *Crawler) wants(name string) bool {
	if !strings.HasSuffix(name, ".go") {
		return false
	}
	return c.includeTests || !strings.HasSuffix(name, "_test.go")
}
