// Package uddf assembles UDDF 3.0.0 documents from a gdivelog dive stream.
//
// [Assembler] implements segment.Assembler: the segmenter calls Begin once
// per output document, Place for every dive in order and Finish when the
// document is complete. Each document is self-contained: it repeats the
// generator, diver, equipment and site sections and defines exactly the gas
// mixes its own dives reference, plus air.
//
// Document layout:
//
//	<uddf version="3.0.0" type="converter">
//	  <generator/>       name, version, manufacturer, datetime
//	  <diver/>           owner with equipment and tanks, buddies
//	  <divesite/>        flattened site names
//	  <gasdefinitions/>  mixes registered while placing dives
//	  <profiledata/>     repetition groups of dives with samples
//	  <divetrip/>        only when trip grouping is enabled
//	</uddf>
package uddf

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/gdivelog2uddf/pkg/divelog"
	"github.com/matzehuels/gdivelog2uddf/pkg/errors"
	"github.com/matzehuels/gdivelog2uddf/pkg/gas"
	"github.com/matzehuels/gdivelog2uddf/pkg/prefs"
	"github.com/matzehuels/gdivelog2uddf/pkg/segment"
	"github.com/matzehuels/gdivelog2uddf/pkg/xmltree"
)

// Version is the UDDF schema version written.
const Version = "3.0.0"

// Fixed dive attributes gdivelog does not record.
const (
	density   = 1030
	altitude  = 0
	apparatus = "open-scuba"
)

// Options configures an Assembler.
type Options struct {
	Prefs prefs.Preferences

	// Now stamps the generator header. Nil uses time.Now; callers wanting
	// reproducible output inject a fixed clock.
	Now func() time.Time

	// Logger receives warnings about malformed notes. Nil discards them.
	Logger *log.Logger
}

// Assembler builds UDDF documents. It is not safe for concurrent use.
type Assembler struct {
	src    divelog.Source
	opts   Options
	logger *log.Logger

	records  *records
	registry *gas.Registry

	// per document
	seq         int
	dives       int
	root        *xmltree.Element
	gasdefs     *xmltree.Element
	profiledata *xmltree.Element
	group       *xmltree.Element
}

// New creates an assembler reading auxiliary records from src.
func New(src divelog.Source, opts Options) *Assembler {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Assembler{
		src:      src,
		opts:     opts,
		logger:   logger,
		registry: gas.NewRegistry(nil),
	}
}

// Begin starts document seq and writes its static sections.
func (a *Assembler) Begin(ctx context.Context, seq int) error {
	if a.records == nil {
		r, err := loadRecords(ctx, a.src, a.opts.Prefs.Separator)
		if err != nil {
			return err
		}
		a.records = r
	}

	a.seq = seq
	a.dives = 0
	a.group = nil
	a.root = xmltree.New("uddf",
		xmltree.Attr{Name: "version", Value: Version},
		xmltree.Attr{Name: "type", Value: "converter"})

	a.addGenerator()
	a.addDivers()
	a.addSites()
	a.gasdefs = a.root.Add("gasdefinitions")
	a.profiledata = a.root.Add("profiledata")
	a.registry.Reset(a.defineMix)
	return nil
}

// Place appends one dive to the current document.
func (a *Assembler) Place(ctx context.Context, p segment.Placement) error {
	if a.root == nil {
		return errors.New(errors.ErrCodeInternal, "place dive %d before Begin", p.Dive.Number)
	}
	if p.NewGroup || a.group == nil {
		a.group = a.profiledata.Add("repetitiongroup",
			xmltree.Attr{Name: "id", Value: RepetitionGroupRef(p.Group)})
	}
	if err := a.addDive(ctx, a.group, p); err != nil {
		return fmt.Errorf("dive %d: %w", p.Dive.Number, err)
	}
	a.dives++
	return nil
}

// Finish completes the current document.
func (a *Assembler) Finish(ctx context.Context, trips []segment.Trip) (*xmltree.Document, error) {
	if a.root == nil {
		return nil, errors.New(errors.ErrCodeInternal, "finish document before Begin")
	}
	if a.registry.Finalize() {
		a.logger.Debug("defined air for document", "document", a.seq)
	}
	a.logger.Debug("gas definitions complete", "document", a.seq, "mixes", a.registry.Len())
	if a.opts.Prefs.TripThreshold > 0 {
		a.addTrips(trips)
	}

	doc := &xmltree.Document{Seq: a.seq, Dives: a.dives, Root: a.root}
	a.root, a.gasdefs, a.profiledata, a.group = nil, nil, nil, nil
	return doc, nil
}

var _ segment.Assembler[*xmltree.Document] = (*Assembler)(nil)

func (a *Assembler) defineMix(m gas.Mix) {
	mix := a.gasdefs.Add("mix", xmltree.Attr{Name: "id", Value: m.Ref})
	if f, ok := m.O2Fraction(); ok {
		mix.AddText("o2", f)
	}
	if f, ok := m.HeFraction(); ok {
		mix.AddText("he", f)
	}
}

func (a *Assembler) addTrips(trips []segment.Trip) {
	section := a.root.Add("divetrip")
	for _, t := range trips {
		trip := section.Add("trip", xmltree.Attr{Name: "id", Value: TripRef(t.ID)})
		if name := a.records.siteNames[t.SiteID]; name != "" {
			trip.AddText("name", name)
		}
		related := trip.Add("trippart").Add("relateddives")
		for _, id := range t.DiveIDs {
			related.Add("link", xmltree.Attr{Name: "ref", Value: DiveRef(id)})
		}
	}
}
