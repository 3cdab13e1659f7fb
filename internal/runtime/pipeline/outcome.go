package pipeline

import (
	"fmt"

	"github.com/dagucloud/txtwriter/internal/core"
)

// Outcome is the result of processing one record: either the rendered
// fields or the cause that made the record dirty.
type Outcome struct {
	Fields []string
	Cause  error
}

// Failed reports whether the record must go to the dirty collector.
func (o Outcome) Failed() bool {
	return o.Cause != nil
}

func failed(cause error) Outcome {
	return Outcome{Cause: cause}
}

// render converts every column of record into its output string.
func (p *Pipeline) render(record *core.Record) Outcome {
	fields := make([]string, 0, record.Len())
	for i, col := range record.Columns() {
		s, err := p.renderColumn(col)
		if err != nil {
			return failed(fmt.Errorf("column %d: %w", i, err))
		}
		fields = append(fields, s)
	}
	return Outcome{Fields: fields}
}

func (p *Pipeline) renderColumn(col core.Column) (string, error) {
	if col.IsNull() {
		return p.nullFormat, nil
	}
	if col.IsDate() && p.dateFormat != nil {
		t, err := col.AsDate()
		if err != nil {
			return "", err
		}
		return p.dateFormat.Format(t), nil
	}
	return col.AsString()
}
