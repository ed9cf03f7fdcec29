// Package udcf assembles documents in the discontinued UDCF format.
//
// UDCF predates UDDF and carries far less: no equipment, buddies or gas
// tracking. Every dive gets the same default air mix. The format is kept for
// older logbook software; new integrations should use package uddf.
package udcf

import (
	"context"
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/gdivelog2uddf/pkg/buildinfo"
	"github.com/matzehuels/gdivelog2uddf/pkg/divelog"
	"github.com/matzehuels/gdivelog2uddf/pkg/errors"
	"github.com/matzehuels/gdivelog2uddf/pkg/prefs"
	"github.com/matzehuels/gdivelog2uddf/pkg/segment"
	"github.com/matzehuels/gdivelog2uddf/pkg/units"
	"github.com/matzehuels/gdivelog2uddf/pkg/xmltree"
)

// Unit system names.
const (
	Metric   = "Metric"
	Imperial = "Imperial"
)

// Source is the subset of records UDCF needs.
type Source interface {
	SiteName(ctx context.Context, id int64, sep string) (string, error)
	Samples(ctx context.Context, diveID int64, fn func(divelog.Sample) error) error
}

// Assembler builds UDCF documents. It is not safe for concurrent use.
type Assembler struct {
	src    Source
	prefs  prefs.Preferences
	logger *log.Logger

	seq      int
	dives    int
	root     *xmltree.Element
	repgroup *xmltree.Element
}

// New creates an assembler. logger may be nil.
func New(src Source, p prefs.Preferences, logger *log.Logger) *Assembler {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Assembler{src: src, prefs: p, logger: logger}
}

// Begin starts document seq.
func (a *Assembler) Begin(_ context.Context, seq int) error {
	a.seq = seq
	a.dives = 0
	a.root = xmltree.New("profile", xmltree.Attr{Name: "udcf", Value: "1"})

	system := Imperial
	if a.prefs.Units.IsMetric() {
		system = Metric
	}
	a.root.AddText("units", system)
	a.root.Add("device").AddFields(
		xmltree.Field{Tag: "vendor", Value: buildinfo.Name},
		xmltree.Field{Tag: "model", Value: "udcf"},
		xmltree.Field{Tag: "version", Value: buildinfo.Version},
	)
	a.repgroup = a.root.Add("repgroup")
	return nil
}

// Place appends a dive. UDCF has a single repetition group per document.
func (a *Assembler) Place(ctx context.Context, p segment.Placement) error {
	if a.root == nil {
		return errors.New(errors.ErrCodeInternal, "place dive %d before Begin", p.Dive.Number)
	}
	d := p.Dive
	dive := a.repgroup.Add("dive")

	dive.Add("date").AddFields(
		xmltree.Field{Tag: "year", Value: d.Start.Year()},
		xmltree.Field{Tag: "month", Value: int(d.Start.Month())},
		xmltree.Field{Tag: "day", Value: d.Start.Day()},
	)
	dive.Add("time").AddFields(
		xmltree.Field{Tag: "hour", Value: d.Start.Hour()},
		xmltree.Field{Tag: "minute", Value: d.Start.Minute()},
	)

	si := dive.Add("surface_interval")
	if p.Interval.Infinite {
		si.Add("infinity")
	} else {
		si.AddText("passedtime", p.Interval.Seconds())
	}

	if units.CelsiusToKelvin(d.MinTemp) > 0 {
		t := d.MinTemp
		if !a.prefs.Units.IsMetric() {
			t = units.CelsiusToFahrenheit(t)
		}
		dive.AddText("temperature", t)
	}
	dive.AddFields(
		xmltree.Field{Tag: "density", Value: 1030.0},
		xmltree.Field{Tag: "altitude", Value: 0.0},
	)

	mix := dive.Add("gases").Add("mix")
	mix.AddFields(
		xmltree.Field{Tag: "mixname", Value: 1},
		xmltree.Field{Tag: "o2", Value: 0.21},
		xmltree.Field{Tag: "n2", Value: 0.79},
		xmltree.Field{Tag: "he", Value: 0.0},
	)
	mix.Add("tank").AddFields(
		xmltree.Field{Tag: "tankvolume", Value: 10},
		xmltree.Field{Tag: "pstart", Value: 250},
		xmltree.Field{Tag: "pend", Value: 30},
	)

	if d.HasSite() {
		name, err := a.src.SiteName(ctx, d.SiteID, a.prefs.Separator)
		if err != nil {
			return err
		}
		dive.AddText("place", name)
	}

	dive.Add("timedepthmode")
	samples := dive.Add("samples")
	samples.AddText("switch", 1)
	samples.AddFields(xmltree.Field{Tag: "t", Value: 0}, xmltree.Field{Tag: "d", Value: 0})

	var last int64
	err := a.src.Samples(ctx, d.ID, func(s divelog.Sample) error {
		samples.AddFields(
			xmltree.Field{Tag: "t", Value: s.Time},
			xmltree.Field{Tag: "d", Value: s.Depth},
		)
		last = s.Time
		return nil
	})
	if err != nil {
		return err
	}

	// Close the profile at the surface.
	end := max(d.Duration, last)
	samples.AddFields(xmltree.Field{Tag: "t", Value: end}, xmltree.Field{Tag: "d", Value: 0})

	a.dives++
	return nil
}

// Finish completes the document. UDCF has no trips.
func (a *Assembler) Finish(_ context.Context, _ []segment.Trip) (*xmltree.Document, error) {
	if a.root == nil {
		return nil, errors.New(errors.ErrCodeInternal, "finish document before Begin")
	}
	doc := &xmltree.Document{Seq: a.seq, Dives: a.dives, Root: a.root}
	a.root, a.repgroup = nil, nil
	return doc, nil
}

var _ segment.Assembler[*xmltree.Document] = (*Assembler)(nil)
