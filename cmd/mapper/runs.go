package main

import (
	"fmt"
	"time"

	"mapper/internal/graph"
	"mapper/internal/mapping"
	"mapper/internal/storage"

	"github.com/spf13/cobra"
)

func (a *app) newRunsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List stored matching runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			runs, err := store.ListRuns(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to list runs: %w", err)
			}

			w := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(w, "No runs stored.")
				return nil
			}
			for _, r := range runs {
				fmt.Fprintf(w, "%s  %s  %s -> %s  classes %d/%d\n",
					r.ID, r.CreatedAt.Local().Format(time.DateTime), r.OldRoot, r.NewRoot,
					r.Stats.Classes.Matched, r.Stats.Classes.Total)
			}
			return nil
		},
	}

	cmd.AddCommand(a.newDeleteRunCmd())
	cmd.AddCommand(a.newImportRunCmd())
	return cmd
}

func (a *app) newDeleteRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <run-id>",
		Short: "Delete a stored run (an unambiguous ID prefix is enough)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			run, err := store.LoadRun(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if err := store.DeleteRun(cmd.Context(), run.ID); err != nil {
				return fmt.Errorf("failed to delete run: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "🗑️  Deleted run %s\n", run.ID)
			return nil
		},
	}
}

// newImportRunCmd stores a mapping file as a run, for example one written
// by match --out and corrected by hand. The run keeps the file's ID when
// it has one, replacing the stored run of that ID.
func (a *app) newImportRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <mapping.yaml>",
		Short: "Store a mapping file as a run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := mapping.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read mapping %s: %w", args[0], err)
			}
			pairs, err := doc.Pairs()
			if err != nil {
				return fmt.Errorf("invalid mapping %s: %w", args[0], err)
			}

			store, err := a.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			run := &storage.Run{ID: doc.Run, OldRoot: doc.Old, NewRoot: doc.New, Pairs: pairs}
			if err := store.SaveRun(cmd.Context(), run); err != nil {
				return fmt.Errorf("failed to save run: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "💾 Imported %d matches as run %s\n", len(pairs), run.ID)
			return nil
		},
	}
}

func (a *app) newShowCmd() *cobra.Command {
	var (
		out  string
		kind string
	)

	cmd := &cobra.Command{
		Use:   "show <run-id>",
		Short: "Print the matches of a stored run (an unambiguous ID prefix is enough)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			run, err := store.LoadRun(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Run %s (%s)\n%s -> %s\n", run.ID, run.CreatedAt.Local().Format(time.DateTime), run.OldRoot, run.NewRoot)
			printStats(w, run.Stats)
			for _, p := range run.Pairs {
				if kind != "" && string(p.Kind) != kind {
					continue
				}
				note := ""
				if p.Cascaded {
					note = " (by name)"
				}
				fmt.Fprintf(w, "%-8s %s -> %s  %.3f %s%s\n", p.Kind, p.Src, p.Dst, p.Score, p.Level, note)
			}

			if out != "" {
				doc := &mapping.Document{Run: run.ID, Old: run.OldRoot, New: run.NewRoot, Classes: mapping.FromPairs(run.Pairs)}
				if err := mapping.WriteFile(out, doc); err != nil {
					return fmt.Errorf("failed to write mapping: %w", err)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "Also write the mapping as YAML to this file")
	cmd.Flags().StringVarP(&kind, "kind", "k", "", fmt.Sprintf("Only print one entity kind (%s, %s, %s, %s)", graph.EntityClass, graph.EntityMethod, graph.EntityField, graph.EntityVariable))
	return cmd
}
