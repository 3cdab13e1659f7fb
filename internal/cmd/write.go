package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dagucloud/txtwriter/internal/cmn/logger"
	"github.com/dagucloud/txtwriter/internal/cmn/logger/tag"
	"github.com/dagucloud/txtwriter/internal/cmn/telemetry"
	"github.com/dagucloud/txtwriter/internal/core"
	"github.com/dagucloud/txtwriter/internal/persis/filedirty"
	"github.com/dagucloud/txtwriter/internal/runtime/dirty"
	"github.com/dagucloud/txtwriter/internal/runtime/pipeline"
	"github.com/dagucloud/txtwriter/internal/runtime/source"
	"github.com/dagucloud/txtwriter/internal/runtime/task"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// Write returns the command that plans a job and writes NDJSON records into
// the planned files, one concurrent task per file.
func Write() *cobra.Command {
	return NewCommand(
		&cobra.Command{
			Use:   "write [flags] <job.yaml>",
			Short: "Write NDJSON records into delimited text files",
			Long: `Plan the job, then read records from an NDJSON stream and write them with
one concurrent task per allocated file. Records are handed to tasks in
round-robin order. Each input line is a JSON array holding one record.

Example:
  txtwriter write job.yaml --tasks 4 --input records.ndjson
  cat records.ndjson | txtwriter write job.yaml
`,
			Args: cobra.ExactArgs(1),
		},
		writeFlags,
		runWrite,
	)
}

var writeFlags = []commandLineFlag{tasksFlag, baseFlag, dotenvFlag, inputFlag, dirtyFileFlag, metricsTextfileFlag}

var errTasksFailed = errors.New("one or more write tasks failed")

// taskResult is one row of the write summary.
type taskResult struct {
	name  string
	path  string
	stats pipeline.Stats
	err   error
}

func runWrite(ctx *Context, args []string) error {
	configs, err := ctx.planJob(args[0])
	if err != nil {
		return err
	}

	input, err := ctx.StringParam("input")
	if err != nil {
		return err
	}
	r, err := openInput(input, ctx.Command.InOrStdin())
	if err != nil {
		return err
	}
	logger.Info(ctx, "Reading records", tag.Path(inputName(input)), tag.Count(len(configs)))
	defer func() {
		_ = r.Close()
	}()

	registry := prometheus.NewRegistry()
	metrics := telemetry.NewMetrics(registry)

	var store *filedirty.Store
	if path := ctx.Config.Paths.DirtyFile; path != "" {
		store, err = filedirty.New(path)
		if err != nil {
			return err
		}
		logger.Info(ctx, "Persisting dirty records", tag.File(store.Path()))
		defer func() {
			if err := store.Close(); err != nil {
				logger.Warn(ctx, "Failed to close dirty file", tag.File(path), tag.Error(err))
			}
		}()
	}

	tasks := make([]*task.Task, len(configs))
	for i, cfg := range configs {
		tasks[i] = task.New(cfg, task.WithMetrics(metrics))
	}
	fanout := source.NewFanout(len(tasks), 64)

	results := make([]taskResult, len(tasks))
	var g errgroup.Group
	g.Go(func() error {
		return fanout.Run(ctx, source.NewNDJSON(r))
	})
	for i, t := range tasks {
		collector := dirtyCollector(store, t.Name())
		g.Go(func() error {
			stats, err := t.StartWrite(ctx, fanout.Source(i), collector)
			if err != nil {
				fanout.Discard(i)
			}
			results[i] = taskResult{name: t.Name(), path: t.FilePath(), stats: stats, err: err}
			logger.Debug(ctx, "Task result", tag.Task(t.Name()), tag.Status(results[i].status()))
			return nil
		})
	}
	distErr := g.Wait()

	if path := ctx.Config.Paths.MetricsTextfile; path != "" {
		if err := telemetry.WriteTextfile(registry, path); err != nil {
			logger.Warn(ctx, "Failed to write metrics", tag.File(path), tag.Error(err))
		}
	}

	if err := renderSummary(ctx.Command.OutOrStdout(), results); err != nil {
		return err
	}

	if distErr != nil {
		return fmt.Errorf("failed to read records: %w", distErr)
	}
	for _, res := range results {
		if res.err != nil {
			return errTasksFailed
		}
	}
	return nil
}

func (r taskResult) status() string {
	if r.err != nil {
		return "failed: " + r.err.Error()
	}
	return "finished"
}

// dirtyCollector logs dirty records and, when store is set, persists them.
func dirtyCollector(store *filedirty.Store, taskName string) core.DirtyCollector {
	if store == nil {
		return dirty.Logging{}
	}
	return dirty.Tee{dirty.Logging{}, store.ForTask(taskName)}
}

func inputName(input string) string {
	if input == "" || input == "-" {
		return "stdin"
	}
	return input
}

func openInput(input string, stdin io.Reader) (io.ReadCloser, error) {
	if input == "" || input == "-" {
		return io.NopCloser(stdin), nil
	}
	f, err := os.Open(input) //nolint:gosec
	if err != nil {
		return nil, fmt.Errorf("failed to open input %s: %w", input, err)
	}
	return f, nil
}

func renderSummary(w io.Writer, results []taskResult) error {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"Task", "File", "Written", "Dirty", "Status"})
	for _, r := range results {
		t.AppendRow(table.Row{r.name, r.path, r.stats.Written, r.stats.Dirty, r.status()})
	}
	_, err := fmt.Fprintln(w, t.Render())
	return err
}
