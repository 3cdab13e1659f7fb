// Package dirty provides collectors for records that could not be written.
package dirty

import (
	"context"
	"sync"

	"github.com/dagucloud/txtwriter/internal/cmn/logger"
	"github.com/dagucloud/txtwriter/internal/cmn/logger/tag"
	"github.com/dagucloud/txtwriter/internal/core"
	"github.com/samber/lo"
)

var (
	_ core.DirtyCollector = (*Logging)(nil)
	_ core.DirtyCollector = (*Memory)(nil)
	_ core.DirtyCollector = Tee(nil)
)

// Logging reports each dirty record as a warning.
type Logging struct{}

// CollectDirtyRecord implements core.DirtyCollector.
func (Logging) CollectDirtyRecord(ctx context.Context, record *core.Record, cause error) {
	logger.Warn(ctx, "Dirty record",
		tag.Columns(record.Len()),
		tag.Value(Values(record)),
		tag.Error(cause),
	)
}

// Memory keeps dirty records in memory. It is safe for concurrent use.
type Memory struct {
	mu      sync.Mutex
	records []core.DirtyRecord
}

// CollectDirtyRecord implements core.DirtyCollector.
func (m *Memory) CollectDirtyRecord(_ context.Context, record *core.Record, cause error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, core.DirtyRecord{Record: record, Cause: cause})
}

// Records returns a copy of the collected records.
func (m *Memory) Records() []core.DirtyRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]core.DirtyRecord(nil), m.records...)
}

// Len returns the number of collected records.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records)
}

// Tee forwards every dirty record to each collector in order.
type Tee []core.DirtyCollector

// CollectDirtyRecord implements core.DirtyCollector.
func (t Tee) CollectDirtyRecord(ctx context.Context, record *core.Record, cause error) {
	for _, c := range t {
		c.CollectDirtyRecord(ctx, record, cause)
	}
}

// Values renders the raw column values of record for reporting. Unrenderable
// values fall back to their raw form.
func Values(record *core.Record) []any {
	return lo.Map(record.Columns(), func(c core.Column, _ int) any {
		if c.IsNull() {
			return nil
		}
		if s, err := c.AsString(); err == nil {
			return s
		}
		return c.Raw()
	})
}
