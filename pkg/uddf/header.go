package uddf

import (
	"context"

	"github.com/matzehuels/gdivelog2uddf/pkg/buildinfo"
	"github.com/matzehuels/gdivelog2uddf/pkg/divelog"
	"github.com/matzehuels/gdivelog2uddf/pkg/xmltree"
)

// generatorDateTime is the layout of the generator timestamp.
const generatorDateTime = "2006-01-02T15:04:05"

// records are the tables every document repeats. They are read once per run.
type records struct {
	sites     []divelog.Site
	siteNames map[int64]string
	buddies   []divelog.Buddy
	equipment []divelog.Equipment
	tanks     []divelog.Tank
	tankByID  map[int64]divelog.Tank
}

func loadRecords(ctx context.Context, src divelog.Source, sep string) (*records, error) {
	r := &records{
		siteNames: make(map[int64]string),
		tankByID:  make(map[int64]divelog.Tank),
	}

	var err error
	if r.sites, err = src.Sites(ctx); err != nil {
		return nil, err
	}
	for _, s := range r.sites {
		name, err := src.SiteName(ctx, s.ID, sep)
		if err != nil {
			return nil, err
		}
		r.siteNames[s.ID] = name
	}
	if r.buddies, err = src.Buddies(ctx); err != nil {
		return nil, err
	}
	if r.equipment, err = src.Equipment(ctx); err != nil {
		return nil, err
	}
	if r.tanks, err = src.Tanks(ctx); err != nil {
		return nil, err
	}
	for _, t := range r.tanks {
		r.tankByID[t.ID] = t
	}
	return r, nil
}

func (a *Assembler) addGenerator() {
	gen := a.root.Add("generator")
	gen.AddFields(
		xmltree.Field{Tag: "name", Value: buildinfo.Name},
		xmltree.Field{Tag: "version", Value: buildinfo.Version},
		xmltree.Field{Tag: "type", Value: "logbook"},
	)
	manufacturer := gen.Add("manufacturer")
	manufacturer.AddText("name", buildinfo.Name)
	manufacturer.Add("contact").AddText("homepage", buildinfo.Homepage)
	gen.AddText("datetime", a.opts.Now().Format(generatorDateTime))
}

func (a *Assembler) addDivers() {
	diver := a.root.Add("diver")

	owner := diver.Add("owner", xmltree.Attr{Name: "id", Value: OwnerID})
	owner.Add("personal").AddFields(
		xmltree.Field{Tag: "firstname", Value: a.opts.Prefs.Owner.FirstName},
		xmltree.Field{Tag: "lastname", Value: a.opts.Prefs.Owner.LastName},
	)

	equipment := owner.Add("equipment")
	for _, e := range a.records.equipment {
		piece := equipment.Add("variouspieces", xmltree.Attr{Name: "id", Value: EquipmentRef(e.ID)})
		piece.AddText("name", e.Name)
		a.addNotes(piece, e.Notes, "equipment", e.ID)
	}
	for _, t := range a.records.tanks {
		tank := equipment.Add("tank", xmltree.Attr{Name: "id", Value: TankRef(t.ID)})
		tank.AddText("name", t.Name)
		if v, ok := a.opts.Prefs.Units.TankVolume(t.Volume, t.WorkingPressure); ok {
			tank.AddText("volume", v)
		}
		a.addNotes(tank, t.Notes, "tank", t.ID)
	}

	for _, b := range a.records.buddies {
		buddy := diver.Add("buddy", xmltree.Attr{Name: "id", Value: BuddyRef(b.ID)})
		first, last := b.SplitName()
		buddy.Add("personal").AddFields(
			xmltree.Field{Tag: "firstname", Value: first},
			xmltree.Field{Tag: "lastname", Value: last},
		)
		a.addNotes(buddy, b.Notes, "buddy", b.ID)
	}
}

func (a *Assembler) addSites() {
	section := a.root.Add("divesite")
	for _, s := range a.records.sites {
		site := section.Add("site", xmltree.Attr{Name: "id", Value: SiteRef(s.ID)})
		site.AddText("name", a.records.siteNames[s.ID])
		a.addNotes(site, s.Notes, "site", s.ID)
	}
}

// addNotes attaches free text as <notes>, logging malformed embedded markup.
func (a *Assembler) addNotes(parent *xmltree.Element, text, kind string, id int64) {
	if err := xmltree.AddNotes(parent, "notes", text); err != nil {
		a.logger.Warn("malformed markup in notes, kept as text", kind, id, "err", err)
	}
}
