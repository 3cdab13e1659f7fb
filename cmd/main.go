package main

import (
	"os"

	"github.com/dagucloud/txtwriter/internal/cmd"
	"github.com/dagucloud/txtwriter/internal/cmn/config"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   config.AppSlug,
	Short: "txtwriter writes records into delimited text files",
	Long: `txtwriter writes streams of records into delimited text files.

A job definition names the target directory, the file name prefix and the
output format (strict CSV or free text with multi-character delimiters),
together with charset and compression. Jobs are split into concurrent
write tasks that each own one file.
`,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(cmd.Plan())
	rootCmd.AddCommand(cmd.Write())
	rootCmd.AddCommand(cmd.Dirty())
	rootCmd.AddCommand(cmd.Version())

	config.Version = version
}

var version = "0.0.0"
