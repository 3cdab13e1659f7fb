package task_test

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/dagucloud/txtwriter/internal/cmn/telemetry"
	"github.com/dagucloud/txtwriter/internal/core"
	"github.com/dagucloud/txtwriter/internal/runtime/dirty"
	"github.com/dagucloud/txtwriter/internal/runtime/serializer"
	"github.com/dagucloud/txtwriter/internal/runtime/source"
	"github.com/dagucloud/txtwriter/internal/runtime/stream"
	"github.com/dagucloud/txtwriter/internal/runtime/task"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func channelOf(records ...*core.Record) *source.Channel {
	ch := make(chan *core.Record, len(records))
	for _, r := range records {
		ch <- r
	}
	close(ch)
	return source.NewChannel(ch)
}

func csvConfig(dir string) core.WriterConfig {
	return core.WriterConfig{
		Path:           dir,
		FileName:       "people",
		WriteMode:      core.WriteModeTruncate,
		FieldDelimiter: ",",
		Encoding:       "UTF-8",
		FileFormat:     core.FileFormatCSV,
		Header:         []string{"id", "name"},
		Suffix:         ".csv",
	}
}

func TestTask_FilePath(t *testing.T) {
	t.Parallel()

	cfg := csvConfig("/data/out/")
	cfg.Suffix = " .csv "
	assert.Equal(t, "/data/out/people.csv", task.New(cfg).FilePath())

	cfg.Path = "/data/out"
	assert.Equal(t, "/data/out"+string(os.PathSeparator)+"people.csv", task.New(cfg).FilePath())
}

func TestTask_RoundTrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	tk := task.New(csvConfig(dir))
	src := channelOf(
		core.NewRecord(core.LongColumn(1), core.StringColumn("Alice")),
		core.NewRecord(core.LongColumn(2), core.StringColumn("Bob")),
	)

	stats, err := tk.StartWrite(context.Background(), src, &dirty.Memory{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.Written)

	data, err := os.ReadFile(filepath.Join(dir, "people.csv"))
	require.NoError(t, err)
	term := serializer.LineSeparator[:1]
	assert.Equal(t, "id,name"+term+"1,Alice"+term+"2,Bob"+term, string(data))
}

func TestTask_TruncatesExistingFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "people.csv")
	require.NoError(t, os.WriteFile(path, []byte(strings.Repeat("old data\n", 100)), 0600))

	cfg := csvConfig(dir)
	cfg.Header = nil
	_, err := task.New(cfg).StartWrite(context.Background(), channelOf(), nil)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Empty(t, data)
}

func TestTask_GzipText(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfg := csvConfig(dir)
	cfg.FileFormat = core.FileFormatText
	cfg.FieldDelimiter = "||"
	cfg.Compress = core.CompressionGzip
	cfg.Suffix = ".txt.gz"
	cfg.Header = nil

	registry := prometheus.NewRegistry()
	metrics := telemetry.NewMetrics(registry)
	memory := &dirty.Memory{}
	src := channelOf(
		core.NewRecord(core.StringColumn("a||b"), core.NullColumn()),
		core.NewRecord(core.DateStringColumn("garbage")),
	)

	stats, err := task.New(cfg, task.WithMetrics(metrics), task.WithName("t0")).StartWrite(context.Background(), src, memory)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.Written)
	assert.Equal(t, int64(1), stats.Dirty)
	assert.Equal(t, 1, memory.Len())

	f, err := os.Open(filepath.Join(dir, "people.txt.gz"))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	r, err := stream.NewReader(f, core.CompressionGzip)
	require.NoError(t, err)
	defer func() { _ = r.Close() }()

	data, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "a||b||null"+serializer.LineSeparator, string(data))

	count, err := testutil.GatherAndCount(registry, "txtwriter_tasks_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestTask_Failures(t *testing.T) {
	t.Parallel()

	t.Run("MissingDirectory", func(t *testing.T) {
		t.Parallel()
		cfg := csvConfig(filepath.Join(t.TempDir(), "missing"))
		_, err := task.New(cfg).StartWrite(context.Background(), channelOf(), nil)
		require.Error(t, err)
		assert.True(t, core.IsCode(err, core.ErrWriteFileIO))
	})

	t.Run("PermissionDenied", func(t *testing.T) {
		t.Parallel()
		if runtime.GOOS == "windows" || os.Geteuid() == 0 {
			t.Skip("permission bits are not enforced")
		}
		dir := filepath.Join(t.TempDir(), "ro")
		require.NoError(t, os.Mkdir(dir, 0500))
		t.Cleanup(func() { _ = os.Chmod(dir, 0750) })

		_, err := task.New(csvConfig(dir)).StartWrite(context.Background(), channelOf(), nil)
		require.Error(t, err)
		assert.True(t, core.IsCode(err, core.ErrSecurityNotEnough))
	})

	t.Run("UnknownCharset", func(t *testing.T) {
		t.Parallel()
		cfg := csvConfig(t.TempDir())
		cfg.Encoding = "klingon"
		_, err := task.New(cfg).StartWrite(context.Background(), channelOf(), nil)
		require.Error(t, err)
		assert.True(t, core.IsCode(err, core.ErrCharset))
	})

	t.Run("CSVMultiCharDelimiterWritesNothing", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		cfg := csvConfig(dir)
		cfg.FieldDelimiter = "::"

		src := channelOf(core.NewRecord(core.StringColumn("x")))
		_, err := task.New(cfg).StartWrite(context.Background(), src, nil)
		require.Error(t, err)
		assert.True(t, core.IsCode(err, core.ErrIllegalValue))

		data, err := os.ReadFile(filepath.Join(dir, "people.csv"))
		require.NoError(t, err)
		assert.Empty(t, data)
	})
}
