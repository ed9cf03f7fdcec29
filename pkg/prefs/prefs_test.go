package prefs

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matzehuels/gdivelog2uddf/pkg/errors"
	"github.com/matzehuels/gdivelog2uddf/pkg/units"
)

// binaryPrefs builds a gdivelog preferences blob.
func binaryPrefs(depth byte, sep string) []byte {
	buf := make([]byte, 160)
	buf[0] = depth
	copy(buf[separatorOffset:separatorOffset+separatorLen], sep)
	return buf
}

func TestReadBinary(t *testing.T) {
	tests := []struct {
		name  string
		data  []byte
		depth units.DepthUnit
		sep   string
	}{
		{"meters", binaryPrefs('m', " - "), units.Meters, " - "},
		{"feet", binaryPrefs('f', "/"), units.Feet, "/"},
		{"unknown flag means feet", binaryPrefs('x', ","), units.Feet, ","},
		{"full width separator", binaryPrefs('m', "::::"), units.Meters, "::::"},
		{"empty separator", binaryPrefs('m', ""), units.Meters, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := ReadBinary(bytes.NewReader(tt.data))
			if err != nil {
				t.Fatalf("ReadBinary: %v", err)
			}
			if b.Depth != tt.depth {
				t.Errorf("Depth = %c, want %c", b.Depth, tt.depth)
			}
			if b.Separator != tt.sep {
				t.Errorf("Separator = %q, want %q", b.Separator, tt.sep)
			}
		})
	}
}

func TestReadBinaryTooShort(t *testing.T) {
	_, err := ReadBinary(bytes.NewReader(make([]byte, 50)))
	if !errors.Is(err, errors.ErrCodeInvalidPreferences) {
		t.Errorf("err = %v, want INVALID_PREFERENCES", err)
	}
}

func TestLoadBinaryMissing(t *testing.T) {
	_, err := LoadBinary(filepath.Join(t.TempDir(), "prefs"))
	if !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("err = %v, want NOT_FOUND", err)
	}
}

func TestParseConfig(t *testing.T) {
	cfg, err := ParseConfig([]byte(`
[units]
depth = "feet"
temperature = "f"
pressure = "psi"
volume = "cuft"

[site]
separator = " > "

[export]
trip_threshold_days = 7
segment_size = 50
format = "udcf"
pretty = true

[owner]
first_name = "Jacques"
last_name = "Cousteau"

[extra]
unknown = 1
`))
	if err != nil {
		t.Fatalf("ParseConfig: %v", err)
	}

	p, err := Resolve(cfg, nil)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	want := units.System{
		Depth:       units.Feet,
		Temperature: units.Fahrenheit,
		Weight:      units.Kilograms,
		Pressure:    units.PSI,
		Volume:      units.CubicFeet,
	}
	if p.Units != want {
		t.Errorf("Units = %+v, want %+v", p.Units, want)
	}
	if p.Separator != " > " || p.SegmentSize != 50 || p.Format != FormatUDCF || !p.Pretty {
		t.Errorf("prefs = %+v", p)
	}
	if p.TripThreshold != 7*24*time.Hour {
		t.Errorf("TripThreshold = %s", p.TripThreshold)
	}
	if p.Owner.FirstName != "Jacques" || p.Owner.LastName != "Cousteau" {
		t.Errorf("Owner = %+v", p.Owner)
	}
	if len(cfg.Undecoded) == 0 {
		t.Error("unknown keys should be reported")
	}
}

func TestParseConfigErrors(t *testing.T) {
	for _, data := range []string{
		`[units]
depth = "fathoms"`,
		`[export
segment_size = 1`,
	} {
		if _, err := ParseConfig([]byte(data)); !errors.Is(err, errors.ErrCodeInvalidConfig) {
			t.Errorf("ParseConfig(%q) = %v, want INVALID_CONFIG", data, err)
		}
	}
}

func TestResolveDefaults(t *testing.T) {
	p, err := Resolve(nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if p.Units != units.Metric() || p.Separator != DefaultSeparator || p.Format != FormatUDDF {
		t.Errorf("defaults = %+v", p)
	}
	if p.Owner.FirstName != DefaultFirstName {
		t.Errorf("owner = %+v", p.Owner)
	}
	if p.TripThreshold != 0 || p.SegmentSize != 0 {
		t.Error("trips and segments should be off by default")
	}
}

func TestBinaryOverridesConfig(t *testing.T) {
	cfg, err := ParseConfig([]byte(`
[units]
depth = "m"
[site]
separator = "/"
`))
	if err != nil {
		t.Fatal(err)
	}
	bin := &Binary{Depth: units.Feet, Separator: ", "}

	p, err := Resolve(cfg, bin)
	if err != nil {
		t.Fatal(err)
	}
	if p.Units.Depth != units.Feet || p.Separator != ", " {
		t.Errorf("prefs = %+v", p)
	}

	// An empty binary separator keeps the configured one.
	p, _ = Resolve(cfg, &Binary{Depth: units.Meters})
	if p.Separator != "/" {
		t.Errorf("Separator = %q, want /", p.Separator)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Preferences)
	}{
		{"negative segment size", func(p *Preferences) { p.SegmentSize = -1 }},
		{"negative trip threshold", func(p *Preferences) { p.TripThreshold = -time.Hour }},
		{"unknown format", func(p *Preferences) { p.Format = "csv" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Default()
			tt.modify(&p)
			if err := p.Validate(); !errors.Is(err, errors.ErrCodeInvalidConfig) {
				t.Errorf("Validate = %v, want INVALID_CONFIG", err)
			}
		})
	}
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	// Missing default file is fine.
	cfg, err := LoadConfig("")
	if err != nil || cfg != nil {
		t.Fatalf("LoadConfig default = %v, %v", cfg, err)
	}

	// Missing explicit file is not.
	if _, err := LoadConfig(filepath.Join(dir, "nope.toml")); !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("explicit missing = %v", err)
	}

	path := filepath.Join(dir, appName, "config.toml")
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("[export]\nsegment_size = 3\n"), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err = LoadConfig("")
	if err != nil || cfg == nil || *cfg.Export.SegmentSize != 3 {
		t.Fatalf("LoadConfig = %+v, %v", cfg, err)
	}
}
