// Package tag provides standardized tag functions for structured logging.
//
// All tag keys use kebab-case naming convention for consistency.
// Use these functions instead of raw strings to keep log output uniform
// across the planner, the tasks and the CLI.
package tag

import (
	"log/slog"
	"time"
)

// Error creates a tag for error objects.
func Error(err any) slog.Attr {
	return slog.Any("err", err)
}

// Job creates a tag for job definition names.
func Job(name string) slog.Attr {
	return slog.String("job", name)
}

// Task creates a tag for write task identifiers.
func Task(name string) slog.Attr {
	return slog.String("task", name)
}

// Path and file tags

// File creates a tag for file paths.
func File(path string) slog.Attr {
	return slog.String("file", path)
}

// Dir creates a tag for directory paths.
func Dir(path string) slog.Attr {
	return slog.String("dir", path)
}

// Path creates a tag for generic paths (prefer File or Dir when specific).
func Path(path string) slog.Attr {
	return slog.String("path", path)
}

// Prefix creates a tag for file name prefixes.
func Prefix(prefix string) slog.Attr {
	return slog.String("prefix", prefix)
}

// Writer configuration tags

// Mode creates a tag for write modes.
func Mode(mode string) slog.Attr {
	return slog.String("mode", mode)
}

// Format creates a tag for file formats.
func Format(format string) slog.Attr {
	return slog.String("format", format)
}

// Delimiter creates a tag for field delimiters.
func Delimiter(d string) slog.Attr {
	return slog.String("delimiter", d)
}

// Encoding creates a tag for character encodings.
func Encoding(name string) slog.Attr {
	return slog.String("encoding", name)
}

// Compress creates a tag for compression codecs.
func Compress(codec string) slog.Attr {
	return slog.String("compress", codec)
}

// Counters

// Count creates a tag for numeric counts.
func Count(n int) slog.Attr {
	return slog.Int("count", n)
}

// Written creates a tag for the number of records written.
func Written(n int64) slog.Attr {
	return slog.Int64("written", n)
}

// Dirty creates a tag for the number of dirty records.
func Dirty(n int64) slog.Attr {
	return slog.Int64("dirty", n)
}

// Columns creates a tag for a record's column count.
func Columns(n int) slog.Attr {
	return slog.Int("columns", n)
}

// Misc

// Name creates a tag for generic names.
func Name(name string) slog.Attr {
	return slog.String("name", name)
}

// Key creates a tag for configuration keys.
func Key(key string) slog.Attr {
	return slog.String("key", key)
}

// Value creates a tag for generic values.
func Value(v any) slog.Attr {
	return slog.Any("value", v)
}

// Reason creates a tag for explanations attached to warnings.
func Reason(reason string) slog.Attr {
	return slog.String("reason", reason)
}

// Status creates a tag for task status values.
func Status(status string) slog.Attr {
	return slog.String("status", status)
}

// Duration creates a tag for elapsed time.
func Duration(d time.Duration) slog.Attr {
	return slog.Duration("duration", d)
}
