package serializer

import (
	"bytes"
	"context"
	"encoding/csv"
	"io"
	"unicode/utf8"

	"github.com/dagucloud/txtwriter/internal/cmn/logger"
	"github.com/dagucloud/txtwriter/internal/core"
)

// strictWriter renders each record through encoding/csv into a scratch
// buffer and then replaces the trailing newline with the record terminator,
// so every record reaches the sink in a single write.
type strictWriter struct {
	sinkControl
	ctx        context.Context
	scratch    bytes.Buffer
	csv        *csv.Writer
	terminator byte
}

func newStrictWriter(ctx context.Context, delimiter string, sink io.Writer) (*strictWriter, error) {
	comma, _ := utf8.DecodeRuneInString(delimiter)
	if !validComma(comma) {
		return nil, core.NewError(core.ErrIllegalValue, "fieldDelimiter %q cannot be used with the csv format", delimiter)
	}

	w := &strictWriter{
		sinkControl: sinkControl{sink: sink},
		ctx:         ctx,
		terminator:  LineSeparator[0],
	}
	w.csv = csv.NewWriter(&w.scratch)
	w.csv.Comma = comma
	return w, nil
}

func validComma(r rune) bool {
	return r != 0 && r != '"' && r != '\r' && r != '\n' && utf8.ValidRune(r) && r != utf8.RuneError
}

// WriteRecord implements RecordWriter.
func (w *strictWriter) WriteRecord(fields []string) error {
	if len(fields) == 0 {
		logger.Info(w.ctx, "Writing empty record")
		_, err := w.sink.Write([]byte{w.terminator})
		return err
	}

	w.scratch.Reset()
	// An empty first field is quoted so a lone empty field stays
	// distinguishable from an empty record.
	if fields[0] == "" {
		w.scratch.WriteString(`""`)
	}
	if err := w.csv.Write(fields); err != nil {
		return err
	}
	w.csv.Flush()
	if err := w.csv.Error(); err != nil {
		return err
	}

	line := w.scratch.Bytes()
	line[len(line)-1] = w.terminator
	_, err := w.sink.Write(line)
	return err
}
