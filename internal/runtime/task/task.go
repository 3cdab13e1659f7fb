// Package task writes the records of one task into one output file.
package task

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/dagucloud/txtwriter/internal/cmn/fileutil"
	"github.com/dagucloud/txtwriter/internal/cmn/logger"
	"github.com/dagucloud/txtwriter/internal/cmn/logger/tag"
	"github.com/dagucloud/txtwriter/internal/cmn/telemetry"
	"github.com/dagucloud/txtwriter/internal/core"
	"github.com/dagucloud/txtwriter/internal/runtime/pipeline"
	"github.com/dagucloud/txtwriter/internal/runtime/stream"
)

// filePermission is applied to created output files.
const filePermission = 0644

// Task owns one output file for its whole lifetime.
type Task struct {
	cfg     core.WriterConfig
	name    string
	metrics *telemetry.Metrics
}

// Option configures a Task.
type Option func(*Task)

// WithMetrics records task and record metrics into m.
func WithMetrics(m *telemetry.Metrics) Option {
	return func(t *Task) {
		t.metrics = m
	}
}

// WithName overrides the task label used in logs and metrics. It defaults
// to the file name.
func WithName(name string) Option {
	return func(t *Task) {
		t.name = name
	}
}

// New creates a task for a configuration produced by planner.Split.
func New(cfg core.WriterConfig, opts ...Option) *Task {
	t := &Task{cfg: cfg, name: cfg.FileName}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Name returns the task label.
func (t *Task) Name() string {
	return t.name
}

// Config returns the task configuration.
func (t *Task) Config() core.WriterConfig {
	return t.cfg
}

// FilePath returns the absolute path the task writes to.
func (t *Task) FilePath() string {
	return fileutil.BuildFilePath(t.cfg.Path, t.cfg.FileName, t.cfg.Suffix)
}

// StartWrite creates the output file and drains src into it. The file is
// closed on every return path.
func (t *Task) StartWrite(ctx context.Context, src core.RecordSource, dirty core.DirtyCollector) (stats pipeline.Stats, err error) {
	start := time.Now()
	path := t.FilePath()
	ctx = logger.WithValues(ctx, tag.Task(t.name), tag.File(path))
	defer func() {
		t.metrics.TaskFinished(err, time.Since(start))
	}()

	compress := string(t.cfg.Compress)
	if compress == "" {
		compress = "none"
	}
	logger.Info(ctx, "Write task started",
		tag.Format(string(t.cfg.FileFormat)),
		tag.Encoding(t.cfg.Encoding),
		tag.Compress(compress),
	)

	if fileutil.FileExists(path) {
		logger.Warn(ctx, "Overwriting existing file", tag.Mode(string(t.cfg.WriteMode)))
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, filePermission) // nolint:gosec
	if err != nil {
		if errors.Is(err, fs.ErrPermission) {
			return stats, core.WrapError(core.ErrSecurityNotEnough, err, "no permission to create file %s", path)
		}
		return stats, core.WrapError(core.ErrWriteFileIO, err, "failed to create file %s", path)
	}

	charset := t.cfg.Encoding
	if strings.TrimSpace(charset) == "" {
		charset = core.DefaultEncoding
	}
	out, err := stream.Open(file, charset, t.cfg.Compress)
	if err != nil {
		_ = file.Close()
		return stats, err
	}
	defer func() {
		if closeErr := out.Close(); closeErr != nil && err == nil {
			err = core.WrapError(core.ErrWriteFileIO, closeErr, "failed to close file %s", path)
		}
	}()

	p, err := pipeline.New(ctx, t.cfg, out,
		pipeline.WithMetrics(t.metrics),
		pipeline.WithTaskName(t.name),
	)
	if err != nil {
		return stats, err
	}

	stats, err = p.Run(ctx, src, dirty)
	if err != nil {
		logger.Error(ctx, "Write task failed", tag.Error(err))
		return stats, err
	}

	logger.Info(ctx, "Write task finished",
		tag.Written(stats.Written),
		tag.Dirty(stats.Dirty),
		tag.Duration(time.Since(start)),
	)
	return stats, nil
}
