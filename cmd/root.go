package cmd

import (
	"github.com/signalnine/foldrun/internal/config"
	"github.com/spf13/cobra"
)

var cfgFile string

func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "foldrun",
		Short:        "Repair and score FoldX model ensembles",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "foldrun.yaml", "config file path")
	root.AddCommand(newRunCmd())
	root.AddCommand(newListCmd())
	root.AddCommand(newAnalyzeCmd())
	return root
}

// loadConfig reads --config. A missing default file means built-in
// defaults; a missing file named on the command line is an error.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	return config.LoadOrDefault(cfgFile, cmd.Flags().Changed("config"))
}
