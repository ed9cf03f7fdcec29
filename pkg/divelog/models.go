// Package divelog defines the records of a gdivelog dive log.
//
// The types mirror gdivelog's SQLite tables one to one. They are plain
// read-only values: the store fills them, the segmenter orders them and the
// export assemblers turn them into documents.
package divelog

import (
	"fmt"
	"strings"
	"time"
)

// DateTimeLayout is the layout of Dive.DateTime as stored by gdivelog.
const DateTimeLayout = "2006-01-02 15:04:05"

// Dive is a row of the Dive table.
type Dive struct {
	ID         int64   `db:"dive_id"`
	Number     int64   `db:"dive_number"`
	DateTime   string  `db:"dive_datetime"`
	Duration   int64   `db:"dive_duration"`
	MaxDepth   float64 `db:"dive_maxdepth"`
	MinTemp    float64 `db:"dive_mintemp"`
	MaxTemp    float64 `db:"dive_maxtemp"`
	Notes      string  `db:"dive_notes"`
	SiteID     int64   `db:"site_id"`
	Visibility float64 `db:"dive_visibility"`
	Weight     float64 `db:"dive_weight"`

	// Start is DateTime parsed in UTC. The store sets it while scanning.
	Start time.Time `db:"-"`
}

// ParseStart parses DateTime into Start.
func (d *Dive) ParseStart() error {
	t, err := time.Parse(DateTimeLayout, strings.TrimSpace(d.DateTime))
	if err != nil {
		return fmt.Errorf("dive %d: parse datetime %q: %w", d.ID, d.DateTime, err)
	}
	d.Start = t
	return nil
}

// HasSite reports whether the dive references a site.
func (d Dive) HasSite() bool { return d.SiteID > 0 }

// Site is a row of the Site table. Sites form a tree through ParentID;
// a ParentID ≤ 0 marks the root.
type Site struct {
	ID       int64  `db:"site_id"`
	ParentID int64  `db:"site_parent_id"`
	Name     string `db:"site_name"`
	Notes    string `db:"site_notes"`
}

// IsRoot reports whether s has no parent.
func (s Site) IsRoot() bool { return s.ParentID <= 0 }

// Buddy is a row of the Buddy table.
type Buddy struct {
	ID    int64  `db:"buddy_id"`
	Name  string `db:"buddy_name"`
	Notes string `db:"buddy_notes"`
}

// SplitName splits the buddy name into first name and the remainder.
func (b Buddy) SplitName() (first, last string) {
	first, last, _ = strings.Cut(b.Name, " ")
	return first, last
}

// Equipment is a row of the Equipment table.
type Equipment struct {
	ID    int64  `db:"equipment_id"`
	Name  string `db:"equipment_name"`
	Notes string `db:"equipment_notes"`
}

// Tank is a row of the Tank table.
type Tank struct {
	ID              int64   `db:"tank_id"`
	Name            string  `db:"tank_name"`
	Volume          float64 `db:"tank_volume"`
	WorkingPressure float64 `db:"tank_wp"`
	Notes           string  `db:"tank_notes"`
}

// DiveTank is a row of the Dive_Tank table: one tank used during a dive,
// with the interval (seconds since dive start) it was breathed from.
type DiveTank struct {
	ID            int64   `db:"dive_tank_id"`
	DiveID        int64   `db:"dive_id"`
	TankID        int64   `db:"tank_id"`
	AvgDepth      float64 `db:"dive_tank_avg_depth"`
	O2            float64 `db:"dive_tank_O2"`
	He            float64 `db:"dive_tank_He"`
	StartTime     int64   `db:"dive_tank_stime"`
	EndTime       int64   `db:"dive_tank_etime"`
	StartPressure float64 `db:"dive_tank_spressure"`
	EndPressure   float64 `db:"dive_tank_epressure"`
}

// Sample is a row of the Profile table.
type Sample struct {
	DiveID      int64   `db:"dive_id"`
	Time        int64   `db:"profile_time"`
	Depth       float64 `db:"profile_depth"`
	Temperature float64 `db:"profile_temperature"`
}
