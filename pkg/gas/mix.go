// Package gas names breathing-gas mixtures and schedules gas switches.
//
// A [Mix] is identified by its oxygen and helium percentages. The
// [Registry] hands out one stable reference per distinct mix within an
// output document, and a [Timeline] replays the tank-usage intervals of a
// single dive as ordered switch events while its samples are walked.
package gas

import "fmt"

// AirRef is the reference name of plain air.
const AirRef = "mix_air"

// airO2 is the oxygen percentage that gdivelog records for air.
const airO2 = 21.0

// Air is the mix synthesized when a document recorded no air usage.
var Air = Mix{Ref: AirRef, O2: 20.9}

// Mix is a breathing gas. O2 and He are percentages (0–100).
type Mix struct {
	Ref string
	O2  float64
	He  float64
}

// NewMix returns the mix for the given percentages with its canonical reference.
func NewMix(o2, he float64) Mix {
	return Mix{Ref: Ref(o2, he), O2: o2, He: he}
}

// Ref returns the canonical reference for a mix:
//
//   - no helium and 21% or unset oxygen: "mix_air"
//   - no helium, other oxygen: nitrox, e.g. "mix_ean32.0"
//   - any helium: trimix, e.g. "mix_tx_18.0_35.0"
func Ref(o2, he float64) string {
	if he <= 0 {
		if o2 == airO2 || o2 <= 0 {
			return AirRef
		}
		return fmt.Sprintf("mix_ean%.1f", o2)
	}
	return fmt.Sprintf("mix_tx_%.1f_%.1f", o2, he)
}

// IsAir reports whether m is referenced as air.
func (m Mix) IsAir() bool { return m.Ref == AirRef }

// O2Fraction returns the oxygen content as a 0–1 ratio, if recorded.
func (m Mix) O2Fraction() (float64, bool) {
	if m.O2 <= 0 {
		return 0, false
	}
	return m.O2 / 100, true
}

// HeFraction returns the helium content as a 0–1 ratio, if any.
func (m Mix) HeFraction() (float64, bool) {
	if m.He <= 0 {
		return 0, false
	}
	return m.He / 100, true
}
