package main

import (
	"fmt"

	"mapper/internal/classifier"
	"mapper/internal/mapper"

	"github.com/spf13/cobra"
)

func (a *app) newClassifiersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "classifiers",
		Short: "List the registered classifiers with their effective weights",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			mcfg, err := a.mapperConfig()
			if err != nil {
				return err
			}
			m, err := mapper.New(mcfg)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "%-8s %-24s %7s  %s\n", "KIND", "NAME", "WEIGHT", "FROM LEVEL")
			for _, l := range m.Classifiers().List() {
				fmt.Fprintf(w, "%-8s %-24s %7.2f  %s\n", l.Kind, l.Name, l.Weight, l.MinLevel)
			}

			set := m.Classifiers()
			for _, lvl := range classifier.Levels() {
				fmt.Fprintf(w, "total weight @%-12s class %.0f  method %.0f  field %.0f  variable %.0f\n", lvl,
					set.Classes.TotalWeight(lvl), set.Methods.TotalWeight(lvl), set.Fields.TotalWeight(lvl),
					set.Variables.TotalWeight(lvl))
			}
			return nil
		},
	}
}
