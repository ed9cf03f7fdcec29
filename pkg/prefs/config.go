package prefs

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/gdivelog2uddf/pkg/errors"
	"github.com/matzehuels/gdivelog2uddf/pkg/units"
)

const appName = "gdivelog2uddf"

// Config mirrors the TOML configuration file:
//
//	[units]
//	depth = "m"
//	temperature = "c"
//	pressure = "bar"
//
//	[site]
//	separator = " / "
//
//	[export]
//	trip_threshold_days = 7
//	segment_size = 100
//	format = "uddf"
//	pretty = true
//
//	[owner]
//	first_name = "Jacques"
//	last_name = "Cousteau"
//
// Unset keys keep their defaults.
type Config struct {
	Units struct {
		Depth       *units.DepthUnit       `toml:"depth"`
		Temperature *units.TemperatureUnit `toml:"temperature"`
		Weight      *units.WeightUnit      `toml:"weight"`
		Pressure    *units.PressureUnit    `toml:"pressure"`
		Volume      *units.VolumeUnit      `toml:"volume"`
	} `toml:"units"`
	Site struct {
		Separator *string `toml:"separator"`
	} `toml:"site"`
	Export struct {
		TripThresholdDays *float64 `toml:"trip_threshold_days"`
		SegmentSize       *int     `toml:"segment_size"`
		Format            *string  `toml:"format"`
		Pretty            *bool    `toml:"pretty"`
	} `toml:"export"`
	Owner struct {
		FirstName *string `toml:"first_name"`
		LastName  *string `toml:"last_name"`
	} `toml:"owner"`

	// Undecoded lists keys the file set that are not recognized.
	Undecoded []string `toml:"-"`
}

// DefaultConfigPath returns the config file location using the XDG standard
// (~/.config/gdivelog2uddf/config.toml).
func DefaultConfigPath() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// LoadConfig reads a TOML config file. With an empty path the default
// location is tried and a missing file yields (nil, nil); an explicit path
// must exist.
func LoadConfig(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		p, err := DefaultConfigPath()
		if err != nil {
			return nil, nil
		}
		path = p
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return nil, nil
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config %s", path)
	}
	return ParseConfig(data)
}

// ParseConfig decodes TOML config data.
func ParseConfig(data []byte) (*Config, error) {
	var cfg Config
	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse config")
	}
	for _, k := range md.Undecoded() {
		cfg.Undecoded = append(cfg.Undecoded, k.String())
	}
	return &cfg, nil
}

func (c *Config) apply(p *Preferences) error {
	if u := c.Units.Depth; u != nil {
		p.Units.Depth = *u
	}
	if u := c.Units.Temperature; u != nil {
		p.Units.Temperature = *u
	}
	if u := c.Units.Weight; u != nil {
		p.Units.Weight = *u
	}
	if u := c.Units.Pressure; u != nil {
		p.Units.Pressure = *u
	}
	if u := c.Units.Volume; u != nil {
		p.Units.Volume = *u
	}
	if s := c.Site.Separator; s != nil {
		p.Separator = *s
	}
	if d := c.Export.TripThresholdDays; d != nil {
		if *d < 0 {
			return errors.New(errors.ErrCodeInvalidConfig, "trip_threshold_days must not be negative, got %g", *d)
		}
		p.TripThreshold = Days(*d)
	}
	if n := c.Export.SegmentSize; n != nil {
		p.SegmentSize = *n
	}
	if f := c.Export.Format; f != nil {
		p.Format = *f
	}
	if b := c.Export.Pretty; b != nil {
		p.Pretty = *b
	}
	if s := c.Owner.FirstName; s != nil {
		p.Owner.FirstName = *s
	}
	if s := c.Owner.LastName; s != nil {
		p.Owner.LastName = *s
	}
	return nil
}
