package serializer

import (
	"context"
	"io"
	"strings"

	"github.com/dagucloud/txtwriter/internal/cmn/logger"
)

// textWriter joins fields with the delimiter verbatim. Fields containing the
// delimiter or a line break are written unchanged.
type textWriter struct {
	sinkControl
	ctx       context.Context
	delimiter string
}

func newTextWriter(ctx context.Context, delimiter string, sink io.Writer) *textWriter {
	return &textWriter{
		sinkControl: sinkControl{sink: sink},
		ctx:         ctx,
		delimiter:   delimiter,
	}
}

// WriteRecord implements RecordWriter.
func (w *textWriter) WriteRecord(fields []string) error {
	if len(fields) == 0 {
		logger.Info(w.ctx, "Writing empty record")
	}
	_, err := io.WriteString(w.sink, strings.Join(fields, w.delimiter)+LineSeparator)
	return err
}
