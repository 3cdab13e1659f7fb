package source_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/dagucloud/txtwriter/internal/core"
	"github.com/dagucloud/txtwriter/internal/runtime/source"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChannel(t *testing.T) {
	t.Parallel()

	t.Run("DrainsThenEOF", func(t *testing.T) {
		t.Parallel()
		ch := make(chan *core.Record, 2)
		ch <- core.NewRecord(core.StringColumn("a"))
		ch <- core.NewRecord(core.StringColumn("b"))
		close(ch)

		src := source.NewChannel(ch)
		for range 2 {
			r, err := src.Next(context.Background())
			require.NoError(t, err)
			assert.Equal(t, 1, r.Len())
		}
		_, err := src.Next(context.Background())
		assert.ErrorIs(t, err, io.EOF)
	})

	t.Run("HonorsContext", func(t *testing.T) {
		t.Parallel()
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()

		_, err := source.NewChannel(make(chan *core.Record)).Next(ctx)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
}

func TestNDJSON(t *testing.T) {
	t.Parallel()

	input := strings.Join([]string{
		`[1, "Alice", true, null]`,
		``,
		`[2.5, {"$date": "2024-01-02 03:04:05"}, {"$date": 0}, {"$date": null}]`,
		`[]`,
	}, "\n")

	src := source.NewNDJSON(strings.NewReader(input))
	ctx := context.Background()

	r, err := src.Next(ctx)
	require.NoError(t, err)
	require.Equal(t, 4, r.Len())
	assert.Equal(t, core.KindNumber, r.Column(0).Kind())
	assert.Equal(t, core.KindString, r.Column(1).Kind())
	assert.Equal(t, core.KindBool, r.Column(2).Kind())
	assert.True(t, r.Column(3).IsNull())

	r, err = src.Next(ctx)
	require.NoError(t, err)
	require.Equal(t, 4, r.Len())
	s, err := r.Column(0).AsString()
	require.NoError(t, err)
	assert.Equal(t, "2.5", s)
	assert.True(t, r.Column(1).IsDate())
	s, err = r.Column(1).AsString()
	require.NoError(t, err)
	assert.Equal(t, "2024-01-02 03:04:05", s)
	d, err := r.Column(2).AsDate()
	require.NoError(t, err)
	assert.Equal(t, int64(0), d.UnixMilli())
	assert.True(t, r.Column(3).IsNull())
	assert.True(t, r.Column(3).IsDate())

	r, err = src.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, r.Len())

	_, err = src.Next(ctx)
	assert.ErrorIs(t, err, io.EOF)
}

func TestNDJSON_MalformedLineIsFatal(t *testing.T) {
	t.Parallel()

	for _, line := range []string{`{"a": 1}`, `[1, [2]]`, `[1,`, `[{"$bytes": "x"}]`, `[1] [2]`} {
		src := source.NewNDJSON(strings.NewReader("[0]\n" + line + "\n"))
		_, err := src.Next(context.Background())
		require.NoError(t, err)

		_, err = src.Next(context.Background())
		require.Error(t, err, line)
		assert.NotErrorIs(t, err, io.EOF)
		assert.ErrorContains(t, err, "line 2")
	}
}

// sliceSource returns its records, then err.
type sliceSource struct {
	records []*core.Record
	err     error
}

func (s *sliceSource) Next(context.Context) (*core.Record, error) {
	if len(s.records) == 0 {
		return nil, s.err
	}
	r := s.records[0]
	s.records = s.records[1:]
	return r, nil
}

func longRecords(n int) []*core.Record {
	records := make([]*core.Record, n)
	for i := range records {
		records[i] = core.NewRecord(core.LongColumn(int64(i)))
	}
	return records
}

func drain(t *testing.T, src core.RecordSource) ([]int64, error) {
	t.Helper()
	var got []int64
	for {
		r, err := src.Next(context.Background())
		if err != nil {
			return got, err
		}
		got = append(got, r.Column(0).Raw().(int64))
	}
}

func TestFanout(t *testing.T) {
	t.Parallel()

	t.Run("RoundRobinThenEOF", func(t *testing.T) {
		t.Parallel()
		f := source.NewFanout(2, 5)
		require.NoError(t, f.Run(context.Background(), &sliceSource{records: longRecords(5), err: io.EOF}))

		gotA, err := drain(t, f.Source(0))
		assert.ErrorIs(t, err, io.EOF)
		gotB, err := drain(t, f.Source(1))
		assert.ErrorIs(t, err, io.EOF)
		assert.Equal(t, []int64{0, 2, 4}, gotA)
		assert.Equal(t, []int64{1, 3}, gotB)
		assert.NoError(t, f.Err())
	})

	t.Run("WrappedEOFEndsStream", func(t *testing.T) {
		t.Parallel()
		f := source.NewFanout(1, 1)
		src := &sliceSource{records: longRecords(1), err: fmt.Errorf("reader closed: %w", io.EOF)}
		require.NoError(t, f.Run(context.Background(), src))

		got, err := drain(t, f.Source(0))
		assert.ErrorIs(t, err, io.EOF)
		assert.Len(t, got, 1)
		assert.NoError(t, f.Err())
	})

	t.Run("SourceFailureReachesEverySlot", func(t *testing.T) {
		t.Parallel()
		boom := errors.New("line 3: invalid character")
		f := source.NewFanout(2, 4)
		err := f.Run(context.Background(), &sliceSource{records: longRecords(1), err: boom})
		require.ErrorIs(t, err, boom)

		first := f.Source(0)
		_, err = first.Next(context.Background())
		require.NoError(t, err)
		_, err = first.Next(context.Background())
		require.ErrorIs(t, err, boom)
		assert.NotErrorIs(t, err, io.EOF)

		_, err = f.Source(1).Next(context.Background())
		assert.ErrorIs(t, err, boom)
		assert.ErrorIs(t, f.Err(), boom)
	})

	t.Run("DiscardKeepsOtherSlotsFlowing", func(t *testing.T) {
		t.Parallel()
		f := source.NewFanout(2, 0)
		go f.Discard(0)

		read := make(chan int, 1)
		go func() {
			src := f.Source(1)
			n := 0
			for {
				if _, err := src.Next(context.Background()); err != nil {
					read <- n
					return
				}
				n++
			}
		}()
		require.NoError(t, f.Run(context.Background(), &sliceSource{records: longRecords(4), err: io.EOF}))
		assert.Equal(t, 2, <-read)
	})
}
