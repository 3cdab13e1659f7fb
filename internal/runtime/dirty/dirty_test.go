package dirty_test

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/dagucloud/txtwriter/internal/cmn/logger"
	"github.com/dagucloud/txtwriter/internal/core"
	"github.com/dagucloud/txtwriter/internal/runtime/dirty"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_Concurrent(t *testing.T) {
	t.Parallel()

	m := &dirty.Memory{}
	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.CollectDirtyRecord(context.Background(), core.NewRecord(), errors.New("bad"))
		}()
	}
	wg.Wait()
	assert.Equal(t, 20, m.Len())
	assert.Len(t, m.Records(), 20)
}

func TestTeeAndLogging(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	ctx := logger.WithLogger(context.Background(), logger.NewLogger(logger.WithConsole(&buf)))

	m := &dirty.Memory{}
	tee := dirty.Tee{dirty.Logging{}, m}

	record := core.NewRecord(core.StringColumn("x"), core.DateStringColumn("nope"), core.NullColumn())
	tee.CollectDirtyRecord(ctx, record, errors.New("malformed date value"))

	require.Equal(t, 1, m.Len())
	assert.Same(t, record, m.Records()[0].Record)
	assert.Contains(t, buf.String(), "Dirty record")
	assert.Contains(t, buf.String(), "malformed date value")
}

func TestValues(t *testing.T) {
	t.Parallel()

	record := core.NewRecord(core.LongColumn(7), core.DateStringColumn("nope"), core.NullColumn())
	assert.Equal(t, []any{"7", "nope", nil}, dirty.Values(record))
}
