package units

import (
	"math"
	"testing"
)

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestTemperatures(t *testing.T) {
	tests := []struct {
		c, k, f float64
	}{
		{0, 273.15, 32},
		{100, 373.15, 212},
		{-40, 233.15, -40},
		{21.5, 294.65, 70.7},
	}
	for _, tt := range tests {
		if got := CelsiusToKelvin(tt.c); !approx(got, tt.k) {
			t.Errorf("CelsiusToKelvin(%v) = %v, want %v", tt.c, got, tt.k)
		}
		if got := CelsiusToFahrenheit(tt.c); !approx(got, tt.f) {
			t.Errorf("CelsiusToFahrenheit(%v) = %v, want %v", tt.c, got, tt.f)
		}
	}
}

func TestTankVolume(t *testing.T) {
	metric := Metric()
	cuftBar := Metric()
	cuftBar.Volume = CubicFeet
	cuftPSI := cuftBar
	cuftPSI.Pressure = PSI

	tests := []struct {
		name   string
		sys    System
		volume float64
		wp     float64
		want   float64
		ok     bool
	}{
		{"liters", metric, 12, 232, 0.012, true},
		{"liters ignores wp", metric, 15, 0, 0.015, true},
		{"liters zero", metric, 0, 232, 0, false},
		{"liters negative", metric, -3, 232, 0, false},
		{"cuft bar", cuftBar, 80, 207, 80 * 28.3168466 / 207, true},
		{"cuft psi", cuftPSI, 80, 3000, 80 * 28.3168466 / (3000 * 0.0689475729), true},
		{"cuft missing wp", cuftBar, 80, 0, 0, false},
		{"cuft missing volume", cuftBar, 0, 207, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.sys.TankVolume(tt.volume, tt.wp)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if !approx(got, tt.want) {
				t.Errorf("TankVolume = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPascal(t *testing.T) {
	bar := Metric()
	psi := Metric()
	psi.Pressure = PSI

	if got, ok := bar.Pascal(200); !ok || !approx(got, 2e7) {
		t.Errorf("bar.Pascal(200) = %v, %v", got, ok)
	}
	if got, ok := psi.Pascal(1000); !ok || !approx(got, 1000*0.0689475729*1e5) {
		t.Errorf("psi.Pascal(1000) = %v, %v", got, ok)
	}
	if _, ok := bar.Pascal(0); ok {
		t.Error("zero pressure should be undefined")
	}
}

func TestUnmarshalText(t *testing.T) {
	var sys System
	if err := sys.Depth.UnmarshalText([]byte("Feet")); err != nil || sys.Depth != Feet {
		t.Errorf("depth = %q, %v", sys.Depth, err)
	}
	if err := sys.Volume.UnmarshalText([]byte("cuft")); err != nil || sys.Volume != CubicFeet {
		t.Errorf("volume = %q, %v", sys.Volume, err)
	}
	if err := sys.Pressure.UnmarshalText([]byte(" psi ")); err != nil || sys.Pressure != PSI {
		t.Errorf("pressure = %q, %v", sys.Pressure, err)
	}
	if err := sys.Weight.UnmarshalText([]byte("stone")); err == nil {
		t.Error("expected error for unknown weight unit")
	}
}

func TestDisplay(t *testing.T) {
	metric := Metric()
	imperial := System{Depth: Feet, Temperature: Fahrenheit, Weight: Pounds}

	tests := []struct {
		name     string
		display  func() (float64, string)
		want     float64
		wantUnit string
	}{
		{"depth m", func() (float64, string) { return metric.DisplayDepth(30) }, 30, "m"},
		{"depth ft", func() (float64, string) { return imperial.DisplayDepth(30.48) }, 100, "ft"},
		{"temperature C", func() (float64, string) { return metric.DisplayTemperature(24) }, 24, "°C"},
		{"temperature F", func() (float64, string) { return imperial.DisplayTemperature(100) }, 212, "°F"},
		{"weight kg", func() (float64, string) { return metric.DisplayWeight(6) }, 6, "kg"},
		{"weight lb", func() (float64, string) { return imperial.DisplayWeight(0.45359237) }, 1, "lb"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, unit := tt.display()
			if !approx(got, tt.want) || unit != tt.wantUnit {
				t.Errorf("got %v %s, want %v %s", got, unit, tt.want, tt.wantUnit)
			}
		})
	}
}
