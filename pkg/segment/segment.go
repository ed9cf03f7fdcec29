// Package segment partitions a time-ordered dive stream into repetition
// groups, trips and bounded-size output documents.
//
// # Model
//
// Dives are pulled one at a time from a [Cursor]. The start-to-start delta
// to the previous dive is its surface interval:
//
//   - an interval of at least [InfiniteInterval] opens a new repetition group;
//   - an interval above the trip threshold opens a new trip;
//   - a document may only close where a new repetition group begins, and
//     only once it holds SegmentSize dives.
//
// The [Segmenter] is a pull-based generator. Each call to [Segmenter.Next]
// runs until a document is complete, hands it back and suspends; nothing is
// read ahead except the single dive that triggered the split.
//
// # Usage
//
//	seg := segment.New(cursor, assembler, segment.Options{SegmentSize: 100})
//	defer seg.Close()
//	for doc, err := range seg.All(ctx) {
//	    if err != nil {
//	        return err
//	    }
//	    write(doc)
//	}
package segment

import (
	"context"
	"time"

	"github.com/matzehuels/gdivelog2uddf/pkg/divelog"
)

// InfiniteInterval is the surface interval after which tissue loading is
// considered reset: dives further apart start a new repetition group.
const InfiniteInterval = 5 * 24 * time.Hour

// Day is the unit trip thresholds are configured in.
const Day = 24 * time.Hour

// Cursor is a forward-only, non-restartable sequence of dives in ascending
// start time. Next returns io.EOF once exhausted.
type Cursor interface {
	Next(ctx context.Context) (divelog.Dive, error)
	Close() error
}

// Interval is the surface interval before a dive.
type Interval struct {
	// Elapsed is the start-to-start delta to the previous dive.
	// It is zero for the first dive of the run.
	Elapsed time.Duration

	// Infinite is set for the first dive and whenever Elapsed exceeds
	// InfiniteInterval.
	Infinite bool
}

// Seconds returns the elapsed interval in whole seconds.
func (i Interval) Seconds() int64 {
	return int64(i.Elapsed / time.Second)
}

// Placement describes where a dive lands in the current document.
type Placement struct {
	Dive     divelog.Dive
	Interval Interval

	// Group is the run-wide repetition group number, starting at 1.
	Group int
	// NewGroup is set when this dive opens Group.
	NewGroup bool

	// Trip is the run-wide trip number, or 0 when trips are disabled.
	Trip int
	// NewTrip is set when this dive opens Trip.
	NewTrip bool

	// Index is the dive's position within the current document.
	Index int
}

// Trip is a run of dives separated by less than the trip threshold.
type Trip struct {
	ID int
	// SiteID is the site of the first dive, used to name the trip.
	SiteID int64
	// DiveIDs lists member dives of the current document, in order.
	DiveIDs []int64
}

// Assembler turns placements into one document per segment.
//
// Begin is called before the first placement of every document and must
// discard all per-document state (header, gas scope, cross references).
// Finish receives the trips accumulated for the document and returns the
// completed document.
type Assembler[D any] interface {
	Begin(ctx context.Context, seq int) error
	Place(ctx context.Context, p Placement) error
	Finish(ctx context.Context, trips []Trip) (D, error)
}

// Options configures segmentation. Zero values disable trips and segments.
type Options struct {
	// TripThreshold is the surface interval above which a new trip starts.
	TripThreshold time.Duration

	// SegmentSize is the number of dives after which the document is split
	// at the next repetition group boundary.
	SegmentSize int
}

// TripsEnabled reports whether trip grouping is configured.
func (o Options) TripsEnabled() bool { return o.TripThreshold > 0 }

// SegmentsEnabled reports whether document splitting is configured.
func (o Options) SegmentsEnabled() bool { return o.SegmentSize > 0 }

// Stats summarizes a segmentation run.
type Stats struct {
	Dives     int
	Groups    int
	Trips     int
	Documents int
}
