// Package prefs resolves the settings of a conversion run.
//
// Settings come from three layers, later layers winning:
//
//  1. the TOML configuration file ([LoadConfig]),
//  2. gdivelog's own binary preferences file ([LoadBinary]), which only
//     carries the depth unit and the site-name separator we can read,
//  3. command-line flags, applied by the caller.
//
// The result is a [Preferences] value that stays immutable for the run.
package prefs

import (
	"time"

	"github.com/matzehuels/gdivelog2uddf/pkg/errors"
	"github.com/matzehuels/gdivelog2uddf/pkg/units"
)

// Output schemas.
const (
	FormatUDDF = "uddf"
	FormatUDCF = "udcf"
)

// Defaults.
const (
	DefaultSeparator = "/"
	DefaultFirstName = "Your First Name"
	DefaultLastName  = "Your Last Name"
)

// Owner names the log owner in exported documents.
type Owner struct {
	FirstName string
	LastName  string
}

// Preferences is the resolved configuration of one run.
type Preferences struct {
	Units     units.System
	Separator string

	// TripThreshold groups dives into trips when positive.
	TripThreshold time.Duration
	// SegmentSize splits output into documents of about this many dives
	// when positive.
	SegmentSize int

	Format string
	Pretty bool
	Owner  Owner
}

// Default returns metric units, "/" as separator, UDDF output and no trips
// or segments.
func Default() Preferences {
	return Preferences{
		Units:     units.Metric(),
		Separator: DefaultSeparator,
		Format:    FormatUDDF,
		Owner:     Owner{FirstName: DefaultFirstName, LastName: DefaultLastName},
	}
}

// Resolve layers the config file and the binary preferences (either may be
// nil) over Default.
func Resolve(cfg *Config, bin *Binary) (Preferences, error) {
	p := Default()
	if cfg != nil {
		if err := cfg.apply(&p); err != nil {
			return Preferences{}, err
		}
	}
	if bin != nil {
		bin.apply(&p)
	}
	return p, p.Validate()
}

// Validate checks value ranges.
func (p Preferences) Validate() error {
	if p.TripThreshold < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "trip threshold must not be negative, got %s", p.TripThreshold)
	}
	if p.SegmentSize < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "segment size must not be negative, got %d", p.SegmentSize)
	}
	switch p.Format {
	case FormatUDDF, FormatUDCF:
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unknown output format %q (want %s or %s)", p.Format, FormatUDDF, FormatUDCF)
	}
	return nil
}

// Days converts a trip threshold given in days.
func Days(d float64) time.Duration {
	return time.Duration(d * float64(24*time.Hour))
}
