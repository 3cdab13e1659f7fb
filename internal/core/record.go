package core

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// DefaultDateLayout renders date columns when no date pattern is configured.
const DefaultDateLayout = "2006-01-02 15:04:05"

// dateLayouts are tried in order when a date column holds text.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	DefaultDateLayout,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ColumnKind is the variant tag of a Column.
type ColumnKind int

const (
	KindNull ColumnKind = iota
	KindString
	KindLong
	KindDouble
	KindBool
	KindBytes
	KindNumber
	KindDate
)

var kindNames = map[ColumnKind]string{
	KindNull:   "null",
	KindString: "string",
	KindLong:   "long",
	KindDouble: "double",
	KindBool:   "bool",
	KindBytes:  "bytes",
	KindNumber: "number",
	KindDate:   "date",
}

func (k ColumnKind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Column is one field of a Record.
type Column struct {
	kind ColumnKind
	raw  any
}

func StringColumn(s string) Column { return Column{kind: KindString, raw: s} }
func LongColumn(v int64) Column { return Column{kind: KindLong, raw: v} }
func DoubleColumn(v float64) Column { return Column{kind: KindDouble, raw: v} }
func BoolColumn(v bool) Column { return Column{kind: KindBool, raw: v} }
func BytesColumn(b []byte) Column { return Column{kind: KindBytes, raw: b} }
func NumberColumn(n json.Number) Column { return Column{kind: KindNumber, raw: n} }
func DateColumn(t time.Time) Column { return Column{kind: KindDate, raw: t} }
func DateStringColumn(s string) Column { return Column{kind: KindDate, raw: s} }
func DateColumnFromMillis(ms int64) Column { return Column{kind: KindDate, raw: ms} }
func NullColumn() Column { return Column{kind: KindNull} }
func NullColumnOf(kind ColumnKind) Column { return Column{kind: kind} }

// Kind returns the variant tag.
func (c Column) Kind() ColumnKind { return c.kind }

// Raw returns the underlying value; nil for null columns.
func (c Column) Raw() any { return c.raw }

// IsNull reports whether the column has no value.
func (c Column) IsNull() bool {
	if c.raw == nil {
		return true
	}
	if b, ok := c.raw.([]byte); ok && b == nil {
		return true
	}
	return false
}

// IsDate reports whether the column is a date column.
func (c Column) IsDate() bool { return c.kind == KindDate }

// AsString returns the default string rendering of the value.
func (c Column) AsString() (string, error) {
	if c.kind == KindDate && c.raw != nil {
		t, err := c.AsDate()
		if err != nil {
			return "", err
		}
		return t.Format(DefaultDateLayout), nil
	}

	switch v := c.raw.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	case bool:
		return strconv.FormatBool(v), nil
	case []byte:
		return string(v), nil
	case json.Number:
		return v.String(), nil
	case time.Time:
		return v.Format(DefaultDateLayout), nil
	default:
		return "", fmt.Errorf("column of kind %s holds unsupported value type %T", c.kind, c.raw)
	}
}

// AsDate returns the structured date value of a date column.
func (c Column) AsDate() (time.Time, error) {
	switch v := c.raw.(type) {
	case time.Time:
		return v, nil
	case string:
		for _, layout := range dateLayouts {
			if t, err := time.ParseInLocation(layout, v, time.Local); err == nil {
				return t, nil
			}
		}
		return time.Time{}, fmt.Errorf("malformed date value %q", v)
	case int64:
		return time.UnixMilli(v), nil
	default:
		return time.Time{}, fmt.Errorf("column of kind %s cannot be converted to a date", c.kind)
	}
}

// Record is one row: an ordered, fixed-length sequence of columns.
type Record struct {
	columns []Column
}

// NewRecord creates a record holding the given columns.
func NewRecord(cols ...Column) *Record {
	return &Record{columns: cols}
}

// Len returns the number of columns.
func (r *Record) Len() int { return len(r.columns) }

// Column returns the i-th column.
func (r *Record) Column(i int) Column { return r.columns[i] }

// Columns returns the columns in order. The slice must not be modified.
func (r *Record) Columns() []Column { return r.columns }

// RecordSource delivers records to a task. Next blocks until a record is
// available and returns io.EOF once the stream is exhausted.
type RecordSource interface {
	Next(ctx context.Context) (*Record, error)
}

// DirtyCollector receives records that could not be written. Collection is
// fire-and-forget; records are never retried.
type DirtyCollector interface {
	CollectDirtyRecord(ctx context.Context, record *Record, cause error)
}

// DirtyRecord is a rejected record paired with the cause of the rejection.
type DirtyRecord struct {
	Record *Record
	Cause  error
}
