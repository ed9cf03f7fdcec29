package export

import (
	"github.com/matzehuels/gdivelog2uddf/pkg/prefs"
)

// Settings names the preference sources of a run. Later sources win:
// defaults, the TOML config, gdivelog's binary preferences, then Overrides.
type Settings struct {
	// ConfigPath is the TOML config. Empty tries the default location.
	ConfigPath string
	// NoConfig skips the config file entirely.
	NoConfig bool

	// PreferencesPath is gdivelog's binary preferences file. Empty skips it.
	PreferencesPath string

	Overrides Overrides
}

// Overrides holds command-line values. Nil fields are unset.
type Overrides struct {
	TripThresholdDays *float64
	SegmentSize       *int
	Format            *string
	Pretty            *bool
	Separator         *string
}

// LoadPreferences resolves the preferences for a run.
func LoadPreferences(s Settings) (prefs.Preferences, error) {
	var cfg *prefs.Config
	if !s.NoConfig {
		c, err := prefs.LoadConfig(s.ConfigPath)
		if err != nil {
			return prefs.Preferences{}, err
		}
		cfg = c
	}

	var bin *prefs.Binary
	if s.PreferencesPath != "" {
		b, err := prefs.LoadBinary(s.PreferencesPath)
		if err != nil {
			return prefs.Preferences{}, err
		}
		bin = b
	}

	p, err := prefs.Resolve(cfg, bin)
	if err != nil {
		return prefs.Preferences{}, err
	}
	s.Overrides.apply(&p)
	return p, p.Validate()
}

func (o Overrides) apply(p *prefs.Preferences) {
	if o.TripThresholdDays != nil {
		p.TripThreshold = prefs.Days(*o.TripThresholdDays)
	}
	if o.SegmentSize != nil {
		p.SegmentSize = *o.SegmentSize
	}
	if o.Format != nil {
		p.Format = *o.Format
	}
	if o.Pretty != nil {
		p.Pretty = *o.Pretty
	}
	if o.Separator != nil {
		p.Separator = *o.Separator
	}
}
