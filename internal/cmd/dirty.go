package cmd

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/dagucloud/txtwriter/internal/cmn/logger"
	"github.com/dagucloud/txtwriter/internal/cmn/logger/tag"
	"github.com/dagucloud/txtwriter/internal/persis/filedirty"
	"github.com/goccy/go-yaml"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

// Dirty returns the command that lists records persisted to a dirty file.
func Dirty() *cobra.Command {
	return NewCommand(
		&cobra.Command{
			Use:   "dirty [flags] [dirty.jsonl]",
			Short: "List records rejected by earlier write runs",
			Long: `Read a dirty record file written by "txtwriter write --dirty-file" and
print every entry. Without an argument the configured dirty_file is used.

Example:
  txtwriter dirty dirty.jsonl --output yaml
`,
			Args: cobra.MaximumNArgs(1),
		},
		dirtyFlags,
		runDirty,
	)
}

var dirtyFlags = []commandLineFlag{dirtyFileFlag, outputFlag}

var errNoDirtyFile = errors.New("no dirty file given, pass one as argument or set dirty_file")

type dirtyRow struct {
	Task    string    `yaml:"task"`
	Time    time.Time `yaml:"time"`
	Columns []any     `yaml:"columns"`
	Error   string    `yaml:"error"`
}

func runDirty(ctx *Context, args []string) error {
	output, err := ctx.StringParam("output")
	if err != nil {
		return err
	}
	if output != "table" && output != "yaml" {
		return fmt.Errorf("unsupported output format %q, use table or yaml", output)
	}

	path := ctx.Config.Paths.DirtyFile
	if len(args) > 0 {
		path = args[0]
	}
	if path == "" {
		return errNoDirtyFile
	}

	entries, err := filedirty.ReadAll(path)
	if err != nil {
		return err
	}
	logger.Debug(ctx, "Dirty records loaded", tag.File(path), tag.Count(len(entries)))

	rows := make([]dirtyRow, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, dirtyRow(e))
	}
	return renderDirty(ctx.Command.OutOrStdout(), output, rows)
}

func renderDirty(w io.Writer, output string, rows []dirtyRow) error {
	if output == "yaml" {
		data, err := yaml.Marshal(rows)
		if err != nil {
			return fmt.Errorf("failed to marshal dirty records: %w", err)
		}
		_, err = w.Write(data)
		return err
	}

	t := table.NewWriter()
	t.AppendHeader(table.Row{"Task", "Time", "Columns", "Error"})
	for _, r := range rows {
		t.AppendRow(table.Row{r.Task, r.Time.Format(time.RFC3339), fmt.Sprint(r.Columns), r.Error})
	}
	_, err := fmt.Fprintln(w, t.Render())
	return err
}
