package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd builds the command tree. Without a subcommand the root serves
// the HTTP API, same as serve.
func NewRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "goflightscore",
		Short:         "Search, normalize and rank flights by weighted preferences",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			serve(cmd.Context(), configPath)
			return nil
		},
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "Config file path (default /config/config.yaml, ./config/config.yaml when LOCAL=true)")

	root.AddCommand(serveCmd(&configPath))
	root.AddCommand(normalizeCmd())
	root.AddCommand(scoreCmd())

	return root
}

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
