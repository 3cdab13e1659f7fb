// Package pipeline drains a record source into a serializer, isolating
// per-record failures to a dirty collector.
package pipeline

import (
	"context"
	"errors"
	"io"

	"github.com/dagucloud/txtwriter/internal/cmn/logger"
	"github.com/dagucloud/txtwriter/internal/cmn/logger/tag"
	"github.com/dagucloud/txtwriter/internal/cmn/telemetry"
	"github.com/dagucloud/txtwriter/internal/core"
	"github.com/dagucloud/txtwriter/internal/runtime/serializer"
)

// Stats counts the records handled by one run.
type Stats struct {
	Written int64
	Dirty   int64
}

// Pipeline renders records and writes them through a serializer.
type Pipeline struct {
	writer     serializer.RecordWriter
	header     []string
	nullFormat string
	dateFormat DateFormatter
	metrics    *telemetry.Metrics
	taskName   string
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithMetrics mirrors record counters into m.
func WithMetrics(m *telemetry.Metrics) Option {
	return func(p *Pipeline) {
		p.metrics = m
	}
}

// WithTaskName labels logs and metrics with the task name.
func WithTaskName(name string) Option {
	return func(p *Pipeline) {
		p.taskName = name
	}
}

// New prepares a pipeline writing to sink. It fails before anything is
// written when the configuration cannot be serialized.
func New(ctx context.Context, cfg core.WriterConfig, sink io.Writer, opts ...Option) (*Pipeline, error) {
	dateFormat, err := CompileDateFormat(cfg.DateFormat)
	if err != nil {
		return nil, err
	}

	format := cfg.FileFormat
	if format == "" {
		format = core.DefaultFileFormat
	}
	writer, err := serializer.New(ctx, format, cfg.FieldDelimiter, sink)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		writer:     writer,
		header:     cfg.Header,
		nullFormat: cfg.NullString(),
		dateFormat: dateFormat,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Run writes the header, then every record from src until io.EOF. Records
// that fail to render or serialize are passed to dirty and the loop goes on.
// Any other source error ends the run and is returned unchanged.
func (p *Pipeline) Run(ctx context.Context, src core.RecordSource, dirty core.DirtyCollector) (Stats, error) {
	var stats Stats

	if len(p.header) > 0 {
		if err := p.writer.WriteRecord(p.header); err != nil {
			return stats, core.WrapError(core.ErrWriteFileIO, err, "failed to write header")
		}
	}

	for {
		record, err := src.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return stats, err
		}
		if record == nil {
			continue
		}

		out := p.process(record)
		if out.Failed() {
			stats.Dirty++
			p.metrics.RecordDirty(p.taskName)
			logger.Debug(ctx, "Record rejected", tag.Task(p.taskName), tag.Error(out.Cause))
			if dirty != nil {
				dirty.CollectDirtyRecord(ctx, record, out.Cause)
			}
			continue
		}
		stats.Written++
		p.metrics.RecordWritten(p.taskName)
	}

	if err := p.writer.Flush(); err != nil {
		return stats, core.WrapError(core.ErrWriteFileIO, err, "failed to flush records")
	}
	return stats, nil
}

func (p *Pipeline) process(record *core.Record) Outcome {
	out := p.render(record)
	if out.Failed() {
		return out
	}
	if err := p.writer.WriteRecord(out.Fields); err != nil {
		return failed(err)
	}
	return out
}
