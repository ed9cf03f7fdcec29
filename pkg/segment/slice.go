package segment

import (
	"context"
	"io"

	"github.com/matzehuels/gdivelog2uddf/pkg/divelog"
)

// SliceCursor is a Cursor over dives already in memory, for small logs
// and tests. The slice must be sorted by Start.
type SliceCursor struct {
	dives  []divelog.Dive
	closed bool
}

// NewSliceCursor returns a cursor over dives.
func NewSliceCursor(dives []divelog.Dive) *SliceCursor {
	return &SliceCursor{dives: dives}
}

// Next implements Cursor.
func (c *SliceCursor) Next(ctx context.Context) (divelog.Dive, error) {
	if err := ctx.Err(); err != nil {
		return divelog.Dive{}, err
	}
	if c.closed || len(c.dives) == 0 {
		return divelog.Dive{}, io.EOF
	}
	d := c.dives[0]
	c.dives = c.dives[1:]
	return d, nil
}

// Close implements Cursor.
func (c *SliceCursor) Close() error {
	c.closed = true
	return nil
}

var _ Cursor = (*SliceCursor)(nil)
