package segment

import (
	"context"
	"errors"
	"io"
	"iter"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/gdivelog2uddf/pkg/divelog"
)

type state int

const (
	stateIdle state = iota // between documents
	stateAccumulating
	stateDone
)

// Segmenter drives an Assembler over a Cursor. It owns the only mutable
// accumulation context of a run and is not safe for concurrent use.
type Segmenter[D any] struct {
	cursor Cursor
	asm    Assembler[D]
	opts   Options
	logger *log.Logger

	state   state
	pending *divelog.Dive // dive that closed the previous document

	prev     time.Time
	havePrev bool
	group    int
	tripSeq  int

	// per-document
	trips []Trip
	count int

	stats Stats
}

// New creates a segmenter. logger may be nil.
func New[D any](cursor Cursor, asm Assembler[D], opts Options, logger *log.Logger) *Segmenter[D] {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Segmenter[D]{
		cursor: cursor,
		asm:    asm,
		opts:   opts,
		logger: logger,
	}
}

// Next returns the next completed document, or io.EOF once every dive has
// been emitted. After an error the segmenter is finished and further calls
// return io.EOF.
func (s *Segmenter[D]) Next(ctx context.Context) (D, error) {
	var zero D
	if s.state == stateDone {
		return zero, io.EOF
	}

	if s.state == stateIdle {
		if err := s.begin(ctx); err != nil {
			return s.fail(err)
		}
	}

	for {
		if err := ctx.Err(); err != nil {
			return s.fail(err)
		}

		d, err := s.pull(ctx)
		if errors.Is(err, io.EOF) {
			doc, err := s.finish(ctx)
			if err != nil {
				return s.fail(err)
			}
			s.state = stateDone
			return doc, nil
		}
		if err != nil {
			return s.fail(err)
		}

		iv := s.interval(d)
		newGroup := !s.havePrev || iv.Elapsed >= InfiniteInterval
		if newGroup && s.opts.SegmentsEnabled() && s.count >= s.opts.SegmentSize {
			s.pending = &d
			doc, err := s.finish(ctx)
			if err != nil {
				return s.fail(err)
			}
			s.state = stateIdle
			return doc, nil
		}

		if err := s.place(ctx, d, iv, newGroup); err != nil {
			return s.fail(err)
		}
	}
}

// All returns an iterator over the remaining documents. Iteration stops at
// the first error, which is yielded with a zero document.
func (s *Segmenter[D]) All(ctx context.Context) iter.Seq2[D, error] {
	return func(yield func(D, error) bool) {
		for {
			doc, err := s.Next(ctx)
			if errors.Is(err, io.EOF) {
				return
			}
			if !yield(doc, err) || err != nil {
				return
			}
		}
	}
}

// Close releases the dive cursor.
func (s *Segmenter[D]) Close() error {
	s.state = stateDone
	return s.cursor.Close()
}

// Stats returns counters for the documents emitted so far.
func (s *Segmenter[D]) Stats() Stats {
	return s.stats
}

func (s *Segmenter[D]) pull(ctx context.Context) (divelog.Dive, error) {
	if s.pending != nil {
		d := *s.pending
		s.pending = nil
		return d, nil
	}
	return s.cursor.Next(ctx)
}

func (s *Segmenter[D]) interval(d divelog.Dive) Interval {
	if !s.havePrev {
		return Interval{Infinite: true}
	}
	elapsed := d.Start.Sub(s.prev)
	return Interval{Elapsed: elapsed, Infinite: elapsed > InfiniteInterval}
}

func (s *Segmenter[D]) begin(ctx context.Context) error {
	s.stats.Documents++
	s.trips = nil
	s.count = 0
	s.state = stateAccumulating
	s.logger.Debug("opening document", "document", s.stats.Documents)
	return s.asm.Begin(ctx, s.stats.Documents)
}

func (s *Segmenter[D]) place(ctx context.Context, d divelog.Dive, iv Interval, newGroup bool) error {
	if newGroup {
		s.group++
		s.stats.Groups++
	}

	p := Placement{
		Dive:     d,
		Interval: iv,
		Group:    s.group,
		NewGroup: newGroup,
		Index:    s.count,
	}

	if s.opts.TripsEnabled() {
		if len(s.trips) == 0 || !s.havePrev || iv.Elapsed > s.opts.TripThreshold {
			s.tripSeq++
			s.stats.Trips++
			s.trips = append(s.trips, Trip{ID: s.tripSeq, SiteID: d.SiteID})
			p.NewTrip = true
		}
		current := &s.trips[len(s.trips)-1]
		current.DiveIDs = append(current.DiveIDs, d.ID)
		p.Trip = current.ID
	}

	if err := s.asm.Place(ctx, p); err != nil {
		return err
	}

	s.count++
	s.stats.Dives++
	s.prev = d.Start
	s.havePrev = true
	return nil
}

func (s *Segmenter[D]) finish(ctx context.Context) (D, error) {
	trips := s.trips
	s.trips = nil
	s.logger.Debug("closing document",
		"document", s.stats.Documents,
		"dives", s.count,
		"trips", len(trips))
	return s.asm.Finish(ctx, trips)
}

func (s *Segmenter[D]) fail(err error) (D, error) {
	var zero D
	s.state = stateDone
	return zero, err
}
