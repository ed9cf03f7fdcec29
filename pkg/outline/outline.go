package outline

import (
	"context"
	"time"

	"github.com/matzehuels/gdivelog2uddf/pkg/errors"
	"github.com/matzehuels/gdivelog2uddf/pkg/segment"
)

// Dive is the planned position of a single dive.
type Dive struct {
	ID       int64
	Number   int64
	Start    time.Time
	Interval segment.Interval
	SiteID   int64
	Trip     int

	// Stored values, in meters, °C and kg.
	MaxDepth float64
	MinTemp  float64
	Weight   float64
}

// Group is a repetition group within a document.
type Group struct {
	ID    int
	Dives []Dive
}

// Document is the outline of one output document.
type Document struct {
	Seq    int
	Groups []Group
	Trips  []segment.Trip
}

// Dives returns the number of dives in the document.
func (d *Document) Dives() int {
	n := 0
	for _, g := range d.Groups {
		n += len(g.Dives)
	}
	return n
}

// First returns the first dive of the document, if any.
func (d *Document) First() (Dive, bool) {
	if len(d.Groups) == 0 || len(d.Groups[0].Dives) == 0 {
		return Dive{}, false
	}
	return d.Groups[0].Dives[0], true
}

// Last returns the last dive of the document, if any.
func (d *Document) Last() (Dive, bool) {
	if len(d.Groups) == 0 {
		return Dive{}, false
	}
	g := d.Groups[len(d.Groups)-1]
	if len(g.Dives) == 0 {
		return Dive{}, false
	}
	return g.Dives[len(g.Dives)-1], true
}

// Assembler collects outlines. It implements segment.Assembler.
type Assembler struct {
	doc *Document
}

// New returns an outline assembler.
func New() *Assembler {
	return &Assembler{}
}

// Begin starts the outline of document seq.
func (a *Assembler) Begin(_ context.Context, seq int) error {
	a.doc = &Document{Seq: seq}
	return nil
}

// Place records a dive in the current repetition group, opening a new group
// at a group boundary.
func (a *Assembler) Place(_ context.Context, p segment.Placement) error {
	if a.doc == nil {
		return errors.New(errors.ErrCodeInternal, "place dive %d before Begin", p.Dive.Number)
	}
	if p.NewGroup || len(a.doc.Groups) == 0 {
		a.doc.Groups = append(a.doc.Groups, Group{ID: p.Group})
	}
	g := &a.doc.Groups[len(a.doc.Groups)-1]
	g.Dives = append(g.Dives, Dive{
		ID:       p.Dive.ID,
		Number:   p.Dive.Number,
		Start:    p.Dive.Start,
		Interval: p.Interval,
		SiteID:   p.Dive.SiteID,
		Trip:     p.Trip,
		MaxDepth: p.Dive.MaxDepth,
		MinTemp:  p.Dive.MinTemp,
		Weight:   p.Dive.Weight,
	})
	return nil
}

// Finish attaches the document's trips and returns the outline.
func (a *Assembler) Finish(_ context.Context, trips []segment.Trip) (*Document, error) {
	if a.doc == nil {
		return nil, errors.New(errors.ErrCodeInternal, "finish document before Begin")
	}
	doc := a.doc
	doc.Trips = trips
	a.doc = nil
	return doc, nil
}

var _ segment.Assembler[*Document] = (*Assembler)(nil)
