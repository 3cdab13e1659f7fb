package cmd

import (
	"fmt"

	"github.com/dagucloud/txtwriter/internal/cmn/config"
	"github.com/spf13/cobra"
)

// Version returns the command that prints the binary version.
func Version() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Display the binary version",
		Long:  `Print the current version of the txtwriter executable.`,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), config.Version)
		},
	}
}
