package main

import (
	"context"
	"fmt"
	"io"

	"mapper/internal/crawler"
	"mapper/internal/extractor"
	"mapper/internal/git"
	"mapper/internal/graph"
	"mapper/internal/index"
	"mapper/internal/mapper"
	"mapper/internal/mapping"
	"mapper/internal/storage"

	"github.com/spf13/cobra"
)

func (a *app) newMatchCmd() *cobra.Command {
	var (
		out         string
		noSave      bool
		repo        string
		tests       bool
		workers     int
		strictNames bool
	)

	cmd := &cobra.Command{
		Use:   "match <old> <new>",
		Short: "Match the entities of two source trees (or two git revisions with --git)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			w := cmd.OutOrStdout()
			oldRoot, newRoot := args[0], args[1]
			oldLabel, newLabel := oldRoot, newRoot

			if repo != "" {
				var (
					cleanup func()
					err     error
				)
				if oldRoot, oldLabel, cleanup, err = exportRevision(ctx, repo, args[0]); err != nil {
					return err
				}
				defer cleanup()
				if newRoot, newLabel, cleanup, err = exportRevision(ctx, repo, args[1]); err != nil {
					return err
				}
				defer cleanup()
			}

			ext, err := extractor.NewExtractor("go")
			if err != nil {
				return fmt.Errorf("failed to create extractor: %w", err)
			}
			idx := index.NewIndexer(crawler.NewCrawler(ext, crawler.WithTests(tests)))

			fmt.Fprintf(w, "📂 Indexing %s and %s\n", oldLabel, newLabel)
			env, err := idx.LoadEnvironment(ctx, oldRoot, newRoot)
			if err != nil {
				return fmt.Errorf("indexing failed: %w", err)
			}

			mcfg, err := a.mapperConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("workers") {
				mcfg.Workers = workers
			}
			if cmd.Flags().Changed("strict-names") {
				mcfg.StrictNames = strictNames
			}
			m, err := mapper.New(mcfg)
			if err != nil {
				return err
			}

			fmt.Fprintln(w, "🚀 Matching...")
			report, err := m.Run(ctx, env)
			if err != nil {
				// Matches committed before the failing pass are reported but
				// not persisted.
				printStats(w, report.Stats)
				return fmt.Errorf("matching failed: %w", err)
			}
			printStats(w, report.Stats)
			fmt.Fprintf(w, "✅ %d matches in %v\n", len(report.Pairs), report.Duration)

			run := &storage.Run{OldRoot: oldLabel, NewRoot: newLabel, Stats: report.Stats, Pairs: report.Pairs}
			if !noSave {
				store, err := a.openStore()
				if err != nil {
					return err
				}
				defer store.Close()
				if err := store.SaveRun(ctx, run); err != nil {
					return fmt.Errorf("failed to save run: %w", err)
				}
				fmt.Fprintf(w, "💾 Saved run %s to %s\n", run.ID, a.cfg.Storage.DBPath)
			}

			if out != "" {
				doc := &mapping.Document{Run: run.ID, Old: oldLabel, New: newLabel, Classes: mapping.FromPairs(run.Pairs)}
				if err := mapping.WriteFile(out, doc); err != nil {
					return fmt.Errorf("failed to write mapping: %w", err)
				}
				fmt.Fprintf(w, "📝 Mapping written to %s\n", out)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "Write the mapping as YAML to this file")
	cmd.Flags().BoolVar(&noSave, "no-save", false, "Do not store the run in the database")
	cmd.Flags().StringVar(&repo, "git", "", "Treat <old> and <new> as revisions of this git repository")
	cmd.Flags().BoolVar(&tests, "tests", false, "Include _test.go files")
	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "Parallel ranking workers (0 = number of CPUs)")
	cmd.Flags().BoolVar(&strictNames, "strict-names", false, "Only pair entities whose names are equal or both obfuscated")
	return cmd
}

// exportRevision materializes ref of repo into a temporary directory.
func exportRevision(ctx context.Context, repo, ref string) (dir, label string, cleanup func(), err error) {
	hash, err := git.ResolveRef(ctx, repo, ref)
	if err != nil {
		return "", "", nil, err
	}
	dir, cleanup, err = git.ExportTemp(ctx, repo, hash)
	if err != nil {
		return "", "", nil, err
	}
	return dir, fmt.Sprintf("%s@%s", ref, hash[:12]), cleanup, nil
}

func (a *app) mapperConfig() (mapper.Config, error) {
	levels, err := a.cfg.ParsedLevels()
	if err != nil {
		return mapper.Config{}, err
	}
	return mapper.Config{
		Thresholds:  a.cfg.Thresholds(),
		Workers:     a.cfg.Match.Workers,
		MaxRounds:   a.cfg.Match.MaxRounds,
		StrictNames: a.cfg.Match.StrictNames,
		Weights:     a.cfg.Weights,
		Levels:      levels,
	}, nil
}

func printStats(w io.Writer, s graph.Stats) {
	rows := []struct {
		name string
		c    graph.Count
	}{
		{"classes", s.Classes},
		{"static methods", s.StaticMethods},
		{"methods", s.Methods},
		{"static fields", s.StaticFields},
		{"fields", s.Fields},
		{"arguments", s.Args},
		{"locals", s.Locals},
	}
	for _, r := range rows {
		fmt.Fprintf(w, "  %-15s %5d / %-5d %6.1f%%\n", r.name, r.c.Matched, r.c.Total, r.c.Percent())
	}
}
