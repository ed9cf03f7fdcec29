package uddf

import (
	"context"

	"github.com/matzehuels/gdivelog2uddf/pkg/divelog"
	"github.com/matzehuels/gdivelog2uddf/pkg/errors"
	"github.com/matzehuels/gdivelog2uddf/pkg/gas"
	"github.com/matzehuels/gdivelog2uddf/pkg/segment"
	"github.com/matzehuels/gdivelog2uddf/pkg/units"
	"github.com/matzehuels/gdivelog2uddf/pkg/xmltree"
)

// diveDateTime is the layout of a dive's start time.
const diveDateTime = "2006-01-02T15:04:05"

func (a *Assembler) addDive(ctx context.Context, group *xmltree.Element, p segment.Placement) error {
	d := p.Dive
	u := a.opts.Prefs.Units

	dive := group.Add("dive", xmltree.Attr{Name: "id", Value: DiveRef(d.ID)})
	dive.AddText("dive_number", d.Number)
	membership := dive.Add("tripmembership")
	if p.Trip > 0 {
		membership.Text = TripRef(p.Trip)
	}
	dive.AddText("datetime", d.Start.Format(diveDateTime))

	si := dive.Add("surfaceintervalbeforedive")
	if p.Interval.Infinite {
		si.Add("infinity")
	} else {
		si.AddText("passedtime", p.Interval.Seconds())
	}

	if d.MinTemp != 0 {
		dive.AddText("lowesttemperature", units.CelsiusToKelvin(d.MinTemp))
	}
	dive.AddFields(
		xmltree.Field{Tag: "greatestdepth", Value: d.MaxDepth},
		xmltree.Field{Tag: "altitude", Value: altitude},
		xmltree.Field{Tag: "density", Value: density},
		xmltree.Field{Tag: "duration", Value: d.Duration},
		xmltree.Field{Tag: "apparatus", Value: apparatus},
	)
	a.addNotes(dive, d.Notes, "dive", d.Number)

	usages, err := a.src.DiveTanks(ctx, d.ID)
	if err != nil {
		return err
	}
	timeline := make([]gas.Usage, 0, len(usages))
	for _, dt := range usages {
		ref, _ := a.registry.Register(gas.NewMix(dt.O2, dt.He))
		timeline = append(timeline, gas.Usage{Start: dt.StartTime, End: dt.EndTime, Mix: gas.Mix{Ref: ref}})

		tank, ok := a.records.tankByID[dt.TankID]
		if !ok {
			return errors.New(errors.ErrCodeNotFound, "tank %d used by dive %d", dt.TankID, d.Number)
		}
		td := dive.Add("tankdata")
		td.Add("link", xmltree.Attr{Name: "ref", Value: TankRef(dt.TankID)})
		td.Add("link", xmltree.Attr{Name: "ref", Value: ref})
		if v, ok := u.TankVolume(tank.Volume, tank.WorkingPressure); ok {
			td.AddText("volume", v)
		}
		if pa, ok := u.Pascal(dt.StartPressure); ok {
			td.AddText("tankpressurebegin", pa)
		}
		if pa, ok := u.Pascal(dt.EndPressure); ok {
			td.AddText("tankpressureend", pa)
		}
	}

	if d.HasSite() {
		dive.Add("link", xmltree.Attr{Name: "ref", Value: SiteRef(d.SiteID)})
	}
	buddies, err := a.src.DiveBuddies(ctx, d.ID)
	if err != nil {
		return err
	}
	for _, id := range buddies {
		dive.Add("link", xmltree.Attr{Name: "ref", Value: BuddyRef(id)})
	}

	used := dive.Add("equipmentused")
	if d.Weight > 0 {
		used.AddText("leadquantity", d.Weight)
	}
	equipment, err := a.src.DiveEquipment(ctx, d.ID)
	if err != nil {
		return err
	}
	for _, id := range equipment {
		used.Add("link", xmltree.Attr{Name: "ref", Value: EquipmentRef(id)})
	}

	return a.addSamples(ctx, dive.Add("samples"), d, gas.NewTimeline(timeline))
}

func (a *Assembler) addSamples(ctx context.Context, samples *xmltree.Element, d divelog.Dive, tl *gas.Timeline) error {
	err := a.src.Samples(ctx, d.ID, func(s divelog.Sample) error {
		wp := samples.Add("waypoint")
		wp.AddFields(
			xmltree.Field{Tag: "divetime", Value: s.Time},
			xmltree.Field{Tag: "depth", Value: s.Depth},
		)
		if ref, ok := tl.Next(s.Time); ok {
			wp.Add("switchmix", xmltree.Attr{Name: "ref", Value: ref})
		}
		if k := units.CelsiusToKelvin(s.Temperature); k > 0 {
			wp.AddText("temperature", k)
		}
		return nil
	})
	if err != nil {
		return err
	}
	if n := tl.Len(); n > 0 {
		a.logger.Warn("gas switches after the last sample were dropped", "dive", d.Number, "switches", n)
	}
	return nil
}
