package source

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/dagucloud/txtwriter/internal/core"
)

// dateKey marks a JSON object as a date value: {"$date": "2024-01-02"}.
const dateKey = "$date"

var _ core.RecordSource = (*NDJSON)(nil)

// NDJSON reads one record per line, each line a JSON array of column values.
// Blank lines are skipped. A line that does not decode is a fatal error.
type NDJSON struct {
	r    *bufio.Reader
	line int
}

// NewNDJSON reads records from r.
func NewNDJSON(r io.Reader) *NDJSON {
	return &NDJSON{r: bufio.NewReader(r)}
}

// Next implements core.RecordSource.
func (s *NDJSON) Next(ctx context.Context) (*core.Record, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		data, err := s.r.ReadBytes('\n')
		if len(data) == 0 && errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("ndjson: read line %d: %w", s.line+1, err)
		}
		s.line++

		data = bytes.TrimSpace(data)
		if len(data) == 0 {
			continue
		}
		record, decodeErr := decodeRecord(data)
		if decodeErr != nil {
			return nil, fmt.Errorf("ndjson: line %d: %w", s.line, decodeErr)
		}
		return record, nil
	}
}

func decodeRecord(data []byte) (*core.Record, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var values []any
	if err := dec.Decode(&values); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, errors.New("trailing data after record")
	}

	cols := make([]core.Column, 0, len(values))
	for i, v := range values {
		col, err := toColumn(v)
		if err != nil {
			return nil, fmt.Errorf("column %d: %w", i, err)
		}
		cols = append(cols, col)
	}
	return core.NewRecord(cols...), nil
}

func toColumn(v any) (core.Column, error) {
	switch v := v.(type) {
	case nil:
		return core.NullColumn(), nil
	case string:
		return core.StringColumn(v), nil
	case json.Number:
		return core.NumberColumn(v), nil
	case bool:
		return core.BoolColumn(v), nil
	case map[string]any:
		raw, ok := v[dateKey]
		if !ok || len(v) != 1 {
			return core.Column{}, fmt.Errorf("object values must be of the form {%q: ...}", dateKey)
		}
		switch d := raw.(type) {
		case nil:
			return core.NullColumnOf(core.KindDate), nil
		case string:
			return core.DateStringColumn(d), nil
		case json.Number:
			ms, err := d.Int64()
			if err != nil {
				return core.Column{}, fmt.Errorf("date millis %s: %w", d, err)
			}
			return core.DateColumnFromMillis(ms), nil
		default:
			return core.Column{}, fmt.Errorf("unsupported %s value of type %T", dateKey, raw)
		}
	default:
		return core.Column{}, fmt.Errorf("unsupported value of type %T", v)
	}
}
