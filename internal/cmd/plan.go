package cmd

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/dagucloud/txtwriter/internal/cmn/fileutil"
	"github.com/dagucloud/txtwriter/internal/cmn/logger"
	"github.com/dagucloud/txtwriter/internal/cmn/logger/tag"
	"github.com/dagucloud/txtwriter/internal/core"
	"github.com/dagucloud/txtwriter/internal/core/spec"
	"github.com/dagucloud/txtwriter/internal/runtime/planner"
	"github.com/goccy/go-yaml"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

// Plan returns the command that resolves a job's write mode and prints the
// file each write task would create.
func Plan() *cobra.Command {
	return NewCommand(
		&cobra.Command{
			Use:   "plan [flags] <job.yaml>",
			Short: "Resolve the write mode and allocate task file names",
			Long: `Load and validate a job definition, apply its write mode to the target
directory and print the file each write task would create.

The write mode is applied for real: truncate removes matching files.

Example:
  txtwriter plan job.yaml --tasks 4
`,
			Args: cobra.ExactArgs(1),
		},
		planFlags,
		runPlan,
	)
}

var planFlags = []commandLineFlag{tasksFlag, baseFlag, dotenvFlag, outputFlag}

// plannedTask is one row of the plan output.
type plannedTask struct {
	Index    int    `yaml:"index"`
	FileName string `yaml:"fileName"`
	Path     string `yaml:"path"`
}

func runPlan(ctx *Context, args []string) error {
	output, err := ctx.StringParam("output")
	if err != nil {
		return err
	}
	if output != "table" && output != "yaml" {
		return fmt.Errorf("unsupported output format %q, use table or yaml", output)
	}

	configs, err := ctx.planJob(args[0])
	if err != nil {
		return err
	}

	rows := make([]plannedTask, 0, len(configs))
	for i, cfg := range configs {
		rows = append(rows, plannedTask{
			Index:    i,
			FileName: cfg.FileName,
			Path:     fileutil.BuildFilePath(cfg.Path, cfg.FileName, cfg.Suffix),
		})
	}
	return renderPlan(ctx.Command.OutOrStdout(), output, rows)
}

// planJob loads the job definition, applies the write mode and splits the
// job into per-task configurations.
func (c *Context) planJob(file string) ([]core.WriterConfig, error) {
	dotenv, err := c.ListParam("dotenv")
	if err != nil {
		return nil, err
	}

	var opts []spec.LoadOption
	if base := c.Config.Paths.BaseConfig; base != "" {
		opts = append(opts, spec.WithBaseConfig(base))
	}
	if len(dotenv) > 0 {
		opts = append(opts, spec.WithDotEnv(dotenv...))
	}

	ctx := logger.WithValues(c.Context, tag.Job(fileutil.TrimYAMLFileExtension(filepath.Base(file))), tag.File(file))
	job, err := spec.Load(ctx, file, opts...)
	if err != nil {
		return nil, err
	}
	if err := planner.Prepare(ctx, *job); err != nil {
		return nil, err
	}
	configs, err := planner.Split(ctx, *job, c.Config.Core.Tasks)
	if err != nil {
		return nil, err
	}
	logger.Info(ctx, "Job planned", tag.Count(len(configs)), tag.Dir(job.Path))
	return configs, nil
}

func renderPlan(w io.Writer, output string, rows []plannedTask) error {
	if output == "yaml" {
		data, err := yaml.Marshal(rows)
		if err != nil {
			return fmt.Errorf("failed to marshal plan: %w", err)
		}
		_, err = w.Write(data)
		return err
	}

	t := table.NewWriter()
	t.AppendHeader(table.Row{"#", "File Name", "Path"})
	for _, r := range rows {
		t.AppendRow(table.Row{r.Index, r.FileName, r.Path})
	}
	_, err := fmt.Fprintln(w, t.Render())
	return err
}
