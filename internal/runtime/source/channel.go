// Package source provides record sources for write tasks.
package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/dagucloud/txtwriter/internal/core"
)

var _ core.RecordSource = (*Channel)(nil)

// Channel reads records from a Go channel. A closed channel is the end of
// the stream.
type Channel struct {
	ch   <-chan *core.Record
	fail func() error
}

// NewChannel wraps ch.
func NewChannel(ch <-chan *core.Record) *Channel {
	return &Channel{ch: ch}
}

// Next blocks until a record arrives, the channel is closed or ctx is done.
func (c *Channel) Next(ctx context.Context) (*core.Record, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r, ok := <-c.ch:
		if !ok {
			if c.fail != nil {
				if err := c.fail(); err != nil {
					return nil, err
				}
			}
			return nil, io.EOF
		}
		return r, nil
	}
}

// distribute drains src and hands records to outs in round-robin order.
func distribute(ctx context.Context, src core.RecordSource, outs []chan *core.Record) error {
	if len(outs) == 0 {
		return nil
	}

	for i := 0; ; i++ {
		r, err := src.Next(ctx)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case outs[i%len(outs)] <- r:
		}
	}
}

// Fanout spreads one source over a fixed set of channel sources. When the
// source fails, every channel source returns that error once its buffered
// records are drained, instead of io.EOF.
type Fanout struct {
	chans []chan *core.Record

	mu  sync.Mutex
	err error
}

// NewFanout creates n channels, each holding up to buffer records.
func NewFanout(n, buffer int) *Fanout {
	f := &Fanout{chans: make([]chan *core.Record, n)}
	for i := range f.chans {
		f.chans[i] = make(chan *core.Record, buffer)
	}
	return f
}

// Source returns the channel source for slot i.
func (f *Fanout) Source(i int) *Channel {
	return &Channel{ch: f.chans[i], fail: f.Err}
}

// Discard drops every record still routed to slot i. A consumer that stops
// early calls it so the remaining slots keep receiving records.
func (f *Fanout) Discard(i int) {
	for range f.chans[i] {
	}
}

// Run distributes src in round-robin order and closes every slot when done.
// The source error, if any, is recorded before the slots are closed.
func (f *Fanout) Run(ctx context.Context, src core.RecordSource) error {
	err := distribute(ctx, src, f.chans)
	if err != nil {
		f.mu.Lock()
		f.err = fmt.Errorf("record source failed: %w", err)
		f.mu.Unlock()
	}
	for _, ch := range f.chans {
		close(ch)
	}
	return err
}

// Err returns the recorded source failure.
func (f *Fanout) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}
