// Package stream builds the byte pipeline a task writes into: an optional
// compressor over the raw sink, an optional charset encoder over that, and a
// buffer on top.
package stream

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"github.com/dagucloud/txtwriter/internal/core"
	"golang.org/x/text/encoding"
	"golang.org/x/text/transform"
)

const bufferSize = 64 * 1024

// Writer is a buffered, encoded and optionally compressed view of a sink.
type Writer struct {
	buf    *bufio.Writer
	stages []io.Closer // innermost last
	closed bool
}

var _ io.WriteCloser = (*Writer)(nil)

// Open layers compression, charset encoding and buffering over sink. When
// sink implements io.Closer, closing the Writer closes it too.
func Open(sink io.Writer, charset string, c core.Compression) (*Writer, error) {
	enc, err := LookupEncoding(charset)
	if err != nil {
		return nil, err
	}

	var stages []io.Closer
	out := sink

	if c != core.CompressionNone {
		cd, ok := codecs[c]
		if !ok {
			return nil, core.NewError(core.ErrIllegalValue,
				"only gzip, bzip2 compression is supported, got compress %q", c)
		}
		cw, err := cd.OpenWriter(out)
		if err != nil {
			return nil, core.WrapError(core.ErrWriteFileIO, err, "failed to open %s compressor", c)
		}
		stages = append(stages, cw)
		out = cw
	}

	if !isUTF8(enc) {
		tw := transform.NewWriter(out, encoding.ReplaceUnsupported(enc.NewEncoder()))
		stages = append(stages, tw)
		out = tw
	}

	// reverse so the outermost stage closes first
	for i, j := 0, len(stages)-1; i < j; i, j = i+1, j-1 {
		stages[i], stages[j] = stages[j], stages[i]
	}
	if closer, ok := sink.(io.Closer); ok {
		stages = append(stages, closer)
	}

	return &Writer{
		buf:    bufio.NewWriterSize(out, bufferSize),
		stages: stages,
	}, nil
}

// Write implements io.Writer.
func (w *Writer) Write(p []byte) (int, error) {
	if w.closed {
		return 0, fmt.Errorf("stream: write after close")
	}
	return w.buf.Write(p)
}

// WriteString writes s without an intermediate copy.
func (w *Writer) WriteString(s string) (int, error) {
	if w.closed {
		return 0, fmt.Errorf("stream: write after close")
	}
	return w.buf.WriteString(s)
}

// Flush pushes buffered bytes to the stage below. Compressors that support
// flushing are flushed as well.
func (w *Writer) Flush() error {
	if w.closed {
		return nil
	}
	if err := w.buf.Flush(); err != nil {
		return err
	}
	for _, s := range w.stages {
		if f, ok := s.(interface{ Flush() error }); ok {
			if err := f.Flush(); err != nil {
				return err
			}
		}
	}
	return nil
}

// Close flushes the buffer and closes every stage from the outermost inward,
// ending with the sink. Only the first call has an effect.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	errs := []error{w.buf.Flush()}
	for _, s := range w.stages {
		errs = append(errs, s.Close())
	}
	return errors.Join(errs...)
}
