// Package serializer turns string field sequences into delimited lines.
package serializer

import (
	"context"
	"io"
	"unicode/utf8"

	"github.com/dagucloud/txtwriter/internal/cmn/logger"
	"github.com/dagucloud/txtwriter/internal/cmn/logger/tag"
	"github.com/dagucloud/txtwriter/internal/core"
)

// RecordWriter writes one line per field sequence to a sink.
type RecordWriter interface {
	WriteRecord(fields []string) error
	Flush() error
	Close() error
}

// Variant names the serialization strategy.
type Variant int

const (
	// Strict applies RFC 4180 quoting with a single-character delimiter.
	Strict Variant = iota
	// FreeText joins fields with a delimiter of any length and no escaping.
	FreeText
)

func (v Variant) String() string {
	switch v {
	case Strict:
		return "strict"
	case FreeText:
		return "freeText"
	default:
		return "unknown"
	}
}

// Select picks the variant for a format and delimiter. csv with a
// multi-character delimiter has no variant.
func Select(format core.FileFormat, delimiter string) (Variant, error) {
	if err := core.ValidateDelimiter(format, delimiter); err != nil {
		return 0, err
	}
	switch format {
	case core.FileFormatCSV:
		return Strict, nil
	case core.FileFormatText:
		return FreeText, nil
	default:
		return 0, core.NewError(core.ErrIllegalValue, "fileFormat %q is not supported, use csv or text", format)
	}
}

// New builds the record writer for format over sink.
func New(ctx context.Context, format core.FileFormat, delimiter string, sink io.Writer) (RecordWriter, error) {
	variant, err := Select(format, delimiter)
	if err != nil {
		return nil, err
	}
	if utf8.RuneCountInString(delimiter) > 1 {
		logger.Info(ctx, "Using multi-character field delimiter", tag.Delimiter(delimiter))
	}

	switch variant {
	case Strict:
		w, err := newStrictWriter(ctx, delimiter, sink)
		if err != nil {
			return nil, err
		}
		return w, nil
	default:
		return newTextWriter(ctx, delimiter, sink), nil
	}
}

// sinkControl forwards Flush and Close to the sink when it supports them.
type sinkControl struct {
	sink io.Writer
}

func (s sinkControl) Flush() error {
	if f, ok := s.sink.(interface{ Flush() error }); ok {
		return f.Flush()
	}
	return nil
}

func (s sinkControl) Close() error {
	if c, ok := s.sink.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
