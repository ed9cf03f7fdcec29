package outline

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/gdivelog2uddf/pkg/divelog"
	"github.com/matzehuels/gdivelog2uddf/pkg/segment"
)

var epoch = time.Date(2010, 6, 1, 9, 0, 0, 0, time.UTC)

func plan(t *testing.T, opts segment.Options, offsets ...time.Duration) []*Document {
	t.Helper()
	var dives []divelog.Dive
	for i, off := range offsets {
		dives = append(dives, divelog.Dive{ID: int64(i + 1), Number: int64(i + 1), Start: epoch.Add(off), SiteID: 4})
	}
	seg := segment.New(segment.NewSliceCursor(dives), New(), opts, nil)
	defer seg.Close()

	var docs []*Document
	for doc, err := range seg.All(context.Background()) {
		if err != nil {
			t.Fatalf("plan: %v", err)
		}
		docs = append(docs, doc)
	}
	return docs
}

// countNodes reports how often each dive node is declared in dot.
func countNodes(dot string) map[string]int {
	out := make(map[string]int)
	for _, line := range strings.Split(dot, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, `"dive_`) || strings.Contains(line, "->") {
			continue
		}
		id, _, _ := strings.Cut(line, " ")
		out[strings.Trim(id, `"`)]++
	}
	return out
}

func TestAssemblerGroups(t *testing.T) {
	docs := plan(t, segment.Options{}, 0, 2*time.Hour, 6*segment.Day, 6*segment.Day+3*time.Hour)
	if len(docs) != 1 {
		t.Fatalf("documents = %d", len(docs))
	}
	doc := docs[0]
	if len(doc.Groups) != 2 {
		t.Fatalf("groups = %d, want 2", len(doc.Groups))
	}
	if doc.Dives() != 4 {
		t.Errorf("Dives() = %d", doc.Dives())
	}
	if n := len(doc.Groups[1].Dives); n != 2 {
		t.Errorf("second group has %d dives", n)
	}
	first, _ := doc.First()
	last, _ := doc.Last()
	if first.Number != 1 || last.Number != 4 {
		t.Errorf("first/last = %d/%d", first.Number, last.Number)
	}
	if !first.Interval.Infinite || doc.Groups[0].Dives[1].Interval.Infinite {
		t.Error("interval flags wrong")
	}
}

func TestAssemblerTripsAndSegments(t *testing.T) {
	docs := plan(t, segment.Options{TripThreshold: 2 * segment.Day, SegmentSize: 1},
		0, segment.Day, 10*segment.Day)
	if len(docs) != 2 {
		t.Fatalf("documents = %d, want 2", len(docs))
	}
	if docs[0].Dives() != 2 || docs[1].Dives() != 1 {
		t.Errorf("dives per document = %d, %d", docs[0].Dives(), docs[1].Dives())
	}
	if len(docs[0].Trips) != 1 || docs[0].Trips[0].ID != 1 {
		t.Errorf("first document trips = %+v", docs[0].Trips)
	}
	if len(docs[1].Trips) != 1 || docs[1].Trips[0].ID != 2 {
		t.Errorf("second document trips = %+v", docs[1].Trips)
	}
}

func TestToDOTListsEveryDiveOnce(t *testing.T) {
	docs := plan(t, segment.Options{TripThreshold: 2 * segment.Day, SegmentSize: 1},
		0, 2*time.Hour, 10*segment.Day, 20*segment.Day)

	dot := ToDOT(docs, Options{})
	nodes := countNodes(dot)
	if len(nodes) != 4 {
		t.Fatalf("dive nodes = %v", nodes)
	}
	for id, n := range nodes {
		if n != 1 {
			t.Errorf("%s declared %d times", id, n)
		}
	}
	for _, want := range []string{"digraph G {", "cluster_doc_1", "cluster_doc_3", "cluster_rg_2", `label="∞"`, `label="2h 00m"`, "trip_1"} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q", want)
		}
	}
}

func TestToDOTDetailed(t *testing.T) {
	docs := plan(t, segment.Options{}, 0)
	dot := ToDOT(docs, Options{Detailed: true})
	if !strings.Contains(dot, `#1\n2010-06-01 09:00\nid: 1`) {
		t.Errorf("detailed label missing:\n%s", dot)
	}
}

func TestFmtInterval(t *testing.T) {
	tests := []struct {
		elapsed  time.Duration
		infinite bool
		want     string
	}{
		{0, true, "∞"},
		{90 * time.Minute, false, "1h 30m"},
		{2*segment.Day + 5*time.Hour, false, "2d 5h"},
	}
	for _, tt := range tests {
		if got := fmtInterval(tt.elapsed, tt.infinite); got != tt.want {
			t.Errorf("fmtInterval(%v, %v) = %q, want %q", tt.elapsed, tt.infinite, got, tt.want)
		}
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="10pt" height="20pt" viewBox="0.00 0.00 100.00 50.00" xmlns="http://www.w3.org/2000/svg"><g/></svg>`)
	out := string(normalizeViewBox(in))
	if !strings.Contains(out, `viewBox="0 0 100.00 50.00" width="100" height="50"`) {
		t.Errorf("normalizeViewBox = %s", out)
	}
	if got := normalizeViewBox([]byte("<svg></svg>")); string(got) != "<svg></svg>" {
		t.Errorf("svg without viewBox changed: %s", got)
	}
}

func TestPlaceBeforeBegin(t *testing.T) {
	a := New()
	if err := a.Place(context.Background(), segment.Placement{}); err == nil {
		t.Error("expected error")
	}
}
