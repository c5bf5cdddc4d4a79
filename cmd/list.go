package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/signalnine/foldrun/internal/registry"
	"github.com/spf13/cobra"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list <seq-dir> <mut-dir> <native.pdb>",
		Short: "List discovered models and the file names each pipeline stage uses",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			set, err := registry.Discover(args[0], args[1], args[2])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Ensemble: %s\n\n", set.EnsembleName())
			for _, g := range []registry.Group{registry.Sequence, registry.Mutant} {
				if set.Empty(g) {
					fmt.Fprintf(out, "No %s models found.\n", g)
				}
			}

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "MODEL\tSOURCE\tSTAGED\tREPAIRED\tREPORT")
			for _, id := range set.All() {
				staged, repaired, rep := registry.StageNames(id, cfg.FoldX.ReportExt)
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", id.Label(), set.SourcePath(id), staged, repaired, rep)
			}
			return tw.Flush()
		},
	}
}
