package cli

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/gdivelog2uddf/pkg/outline"
	"github.com/matzehuels/gdivelog2uddf/pkg/segment"
	"github.com/matzehuels/gdivelog2uddf/pkg/units"
)

func TestPrintDivesUsesDisplayUnits(t *testing.T) {
	docs := []*outline.Document{{
		Seq: 1,
		Groups: []outline.Group{{ID: 1, Dives: []outline.Dive{
			{ID: 1, Number: 7, Start: time.Date(2010, 5, 1, 9, 0, 0, 0, time.UTC),
				Interval: segment.Interval{Infinite: true}, MaxDepth: 30.48, MinTemp: 20, Weight: 0},
		}}},
	}}

	tests := []struct {
		name  string
		units units.System
		want  []string
	}{
		{"metric", units.Metric(), []string{"30.5 m", "20.0 °C"}},
		{"imperial", units.System{Depth: units.Feet, Temperature: units.Fahrenheit, Weight: units.Pounds},
			[]string{"100.0 ft", "68.0 °F"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			printDives(&buf, docs, tt.units)
			for _, want := range tt.want {
				if !strings.Contains(buf.String(), want) {
					t.Errorf("table lacks %q:\n%s", want, buf.String())
				}
			}
			if strings.Contains(buf.String(), "0.0 kg") || strings.Contains(buf.String(), "0.0 lb") {
				t.Error("unrecorded lead should show as -")
			}
		})
	}
}
