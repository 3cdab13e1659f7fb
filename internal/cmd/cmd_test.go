package cmd_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dagucloud/txtwriter/internal/cmd"
	"github.com/dagucloud/txtwriter/internal/cmn/config"
	"github.com/dagucloud/txtwriter/internal/core"
	"github.com/dagucloud/txtwriter/internal/persis/filedirty"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cmdResult struct {
	stdout string
	stderr string
	err    error
}

type cmdHelper struct {
	dir        string
	configFile string
}

func setup(t *testing.T) cmdHelper {
	t.Helper()

	home := t.TempDir()
	t.Setenv("HOME", home)
	configFile := filepath.Join(home, "config.yaml")
	require.NoError(t, os.WriteFile(configFile, []byte("log_format: text\n"), 0600))

	return cmdHelper{dir: t.TempDir(), configFile: configFile}
}

func (h cmdHelper) job(t *testing.T, body string) string {
	t.Helper()
	file := filepath.Join(t.TempDir(), "job.yaml")
	content := "path: " + h.dir + "\nfileName: out\n" + body
	require.NoError(t, os.WriteFile(file, []byte(content), 0600))
	return file
}

func (h cmdHelper) run(t *testing.T, c *cobra.Command, stdin string, args ...string) cmdResult {
	t.Helper()

	root := &cobra.Command{Use: "root", SilenceErrors: true}
	root.AddCommand(c)

	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(append(args, "--config", h.configFile))

	err := root.Execute()
	return cmdResult{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

func (h cmdHelper) read(t *testing.T, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(h.dir, name))
	require.NoError(t, err)
	return string(data)
}

func TestPlanCommand(t *testing.T) {
	t.Run("Table", func(t *testing.T) {
		h := setup(t)
		job := h.job(t, "writeMode: truncate\n")

		res := h.run(t, cmd.Plan(), "", "plan", job, "--tasks", "3")
		require.NoError(t, res.err)
		assert.Contains(t, res.stdout, "FILE NAME")
		assert.Contains(t, res.stdout, filepath.Join(h.dir, "out"))
		// Renamed slots appear in both the name and the path column.
		assert.Equal(t, 4, strings.Count(res.stdout, "out__"))
	})

	t.Run("YAML", func(t *testing.T) {
		h := setup(t)
		job := h.job(t, "writeMode: append\n")

		res := h.run(t, cmd.Plan(), "", "plan", job, "--output", "yaml")
		require.NoError(t, res.err)
		assert.Contains(t, res.stdout, "fileName: out")
		assert.Contains(t, res.stdout, "index: 0")
	})

	t.Run("NonConflictRejectsExistingFiles", func(t *testing.T) {
		h := setup(t)
		require.NoError(t, os.WriteFile(filepath.Join(h.dir, "out.csv"), nil, 0600))
		job := h.job(t, "writeMode: nonConflict\n")

		res := h.run(t, cmd.Plan(), "", "plan", job)
		require.Error(t, res.err)
		assert.True(t, core.IsCode(res.err, core.ErrIllegalValue))
		assert.Contains(t, res.stderr, "Command failed")
	})

	t.Run("InvalidOutput", func(t *testing.T) {
		h := setup(t)
		job := h.job(t, "writeMode: append\n")

		res := h.run(t, cmd.Plan(), "", "plan", job, "--output", "xml")
		require.Error(t, res.err)
		assert.Contains(t, res.err.Error(), "unsupported output format")
	})

	t.Run("DotEnvExpansion", func(t *testing.T) {
		h := setup(t)
		envFile := filepath.Join(t.TempDir(), ".env")
		require.NoError(t, os.WriteFile(envFile, []byte("MODE=append\n"), 0600))
		job := h.job(t, "writeMode: \"${MODE}\"\n")

		res := h.run(t, cmd.Plan(), "", "plan", job, "--dotenv", envFile)
		require.NoError(t, res.err)
	})
}

func TestWriteCommand(t *testing.T) {
	t.Run("RoundRobin", func(t *testing.T) {
		h := setup(t)
		job := h.job(t, "writeMode: truncate\nfieldDelimiter: \"|\"\n")
		input := `["a", 1]
["b", null]
["c", true]
`
		res := h.run(t, cmd.Write(), input, "write", job, "--tasks", "2")
		require.NoError(t, res.err)
		assert.Contains(t, res.stdout, "finished")

		assert.Equal(t, "a|1\nc|true\n", h.read(t, "out"))

		entries, err := os.ReadDir(h.dir)
		require.NoError(t, err)
		require.Len(t, entries, 2)
		for _, e := range entries {
			if e.Name() != "out" {
				assert.Equal(t, "b|null\n", h.read(t, e.Name()))
			}
		}
	})

	t.Run("InputFileDirtyRecordsAndMetrics", func(t *testing.T) {
		h := setup(t)
		job := h.job(t, "writeMode: truncate\nfileFormat: csv\n")
		input := filepath.Join(t.TempDir(), "records.ndjson")
		require.NoError(t, os.WriteFile(input, []byte(`["x,y", {"$date": "bogus"}]
["ok", {"$date": "2024-01-02"}]
`), 0600))
		dirtyFile := filepath.Join(t.TempDir(), "dirty.jsonl")
		metricsFile := filepath.Join(t.TempDir(), "metrics.prom")

		res := h.run(t, cmd.Write(), "", "write", job,
			"--input", input,
			"--dirty-file", dirtyFile,
			"--metrics-textfile", metricsFile,
		)
		require.NoError(t, res.err)

		assert.Equal(t, "ok,2024-01-02 00:00:00\n", h.read(t, "out"))

		entries, err := filedirty.ReadAll(dirtyFile)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "out", entries[0].Task)
		assert.NotEmpty(t, entries[0].Error)

		metrics, err := os.ReadFile(metricsFile)
		require.NoError(t, err)
		assert.Contains(t, string(metrics), `txtwriter_records_written_total{task="out"} 1`)
		assert.Contains(t, string(metrics), `txtwriter_records_dirty_total{task="out"} 1`)
	})

	t.Run("MalformedInput", func(t *testing.T) {
		h := setup(t)
		job := h.job(t, "writeMode: truncate\n")

		metricsFile := filepath.Join(t.TempDir(), "metrics.prom")

		res := h.run(t, cmd.Write(), "[\"a\"]\nnot json\n", "write", job, "--metrics-textfile", metricsFile)
		require.Error(t, res.err)
		assert.Contains(t, res.err.Error(), "failed to read records")
		assert.Equal(t, "a\n", h.read(t, "out"))
		assert.Contains(t, res.stdout, "failed: record source failed")
		assert.NotContains(t, res.stdout, "finished")

		metrics, err := os.ReadFile(metricsFile)
		require.NoError(t, err)
		assert.Contains(t, string(metrics), `txtwriter_tasks_total{status="failed"} 1`)
	})
}

func TestDirtyCommand(t *testing.T) {
	writeStore := func(t *testing.T) string {
		t.Helper()
		path := filepath.Join(t.TempDir(), "dirty.jsonl")
		store, err := filedirty.New(path)
		require.NoError(t, err)
		require.NoError(t, store.Append(filedirty.Entry{
			Task:    "orders__1",
			Time:    time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
			Columns: []any{"x", 1},
			Error:   "unparseable date",
		}))
		require.NoError(t, store.Close())
		return path
	}

	t.Run("Table", func(t *testing.T) {
		h := setup(t)
		res := h.run(t, cmd.Dirty(), "", "dirty", writeStore(t))
		require.NoError(t, res.err)
		assert.Contains(t, res.stdout, "orders__1")
		assert.Contains(t, res.stdout, "2024-01-02T03:04:05Z")
		assert.Contains(t, res.stdout, "unparseable date")
	})

	t.Run("YAMLFromDirtyFileFlag", func(t *testing.T) {
		h := setup(t)
		res := h.run(t, cmd.Dirty(), "", "dirty", "--dirty-file", writeStore(t), "--output", "yaml")
		require.NoError(t, res.err)
		assert.Contains(t, res.stdout, "task: orders__1")
		assert.Contains(t, res.stdout, "error: unparseable date")
	})

	t.Run("NoFile", func(t *testing.T) {
		h := setup(t)
		res := h.run(t, cmd.Dirty(), "", "dirty")
		require.Error(t, res.err)
		assert.Contains(t, res.err.Error(), "no dirty file given")
	})

	t.Run("MissingFile", func(t *testing.T) {
		h := setup(t)
		res := h.run(t, cmd.Dirty(), "", "dirty", filepath.Join(t.TempDir(), "none.jsonl"))
		require.Error(t, res.err)
	})
}

func TestVersionCommand(t *testing.T) {
	config.Version = "1.2.3"

	root := &cobra.Command{Use: "root"}
	root.AddCommand(cmd.Version())
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"version"})
	require.NoError(t, root.Execute())
	assert.Equal(t, "1.2.3\n", out.String())
}
