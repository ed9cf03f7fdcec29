package export

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/gdivelog2uddf/pkg/cache"
	"github.com/matzehuels/gdivelog2uddf/pkg/errors"
	"github.com/matzehuels/gdivelog2uddf/pkg/observability"
	"github.com/matzehuels/gdivelog2uddf/pkg/prefs"
	"github.com/matzehuels/gdivelog2uddf/pkg/units"
	"github.com/matzehuels/gdivelog2uddf/pkg/xmltree"
)

const fixture = "testdata/divelog.glg"

var fixedNow = func() time.Time { return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC) }

func newRunner(t *testing.T) (*Runner, *bytes.Buffer) {
	t.Helper()
	c, err := cache.NewFileCache(t.TempDir(), 0)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })

	var out bytes.Buffer
	r := NewRunner(c, nil)
	r.Stdout = &out
	return r, &out
}

func TestExecuteToStdout(t *testing.T) {
	r, out := newRunner(t)

	res, err := r.Execute(context.Background(), Options{Input: fixture, Prefs: prefs.Default(), Now: fixedNow})
	require.NoError(t, err)

	assert.Empty(t, res.Files)
	assert.Equal(t, 3, res.Stats.Dives)
	assert.Equal(t, 2, res.Stats.Groups)
	assert.Equal(t, 1, res.Stats.Documents)

	body := out.String()
	assert.True(t, strings.HasPrefix(body, `<?xml version="1.0" encoding="UTF-8"?>`))
	assert.Contains(t, body, `<uddf version="3.0.0" type="converter">`)
	assert.Contains(t, body, `<datetime>2024-03-01T12:00:00</datetime>`)
	assert.Contains(t, body, `<name>Egypt/Red Sea/Thistlegorm</name>`)
	assert.Equal(t, 3, strings.Count(body, `<dive id="dive_`))
}

func TestExecuteSegmentedFiles(t *testing.T) {
	r, out := newRunner(t)
	dir := t.TempDir()

	p := prefs.Default()
	p.SegmentSize = 1
	p.Pretty = true

	var seen []int
	res, err := r.Execute(context.Background(), Options{
		Input:  fixture,
		Output: filepath.Join(dir, "dives.uddf"),
		Prefs:  p,
		Now:    fixedNow,
		OnDocument: func(doc *xmltree.Document, _ string) {
			seen = append(seen, doc.Dives)
		},
	})
	require.NoError(t, err)

	// Dives 1 and 2 share a repetition group, so the first split is after 2.
	assert.Equal(t, []string{
		filepath.Join(dir, "dives_001.uddf"),
		filepath.Join(dir, "dives_002.uddf"),
	}, res.Files)
	assert.Equal(t, []int{2, 1}, seen)
	assert.Zero(t, out.Len())

	for _, f := range res.Files {
		data, err := os.ReadFile(f)
		require.NoError(t, err)
		assert.Contains(t, string(data), `id="mix_air"`, "%s defines air", f)
		assert.Contains(t, string(data), "\n  <generator>", "%s is indented", f)
	}
	second, err := os.ReadFile(res.Files[1])
	require.NoError(t, err)
	assert.NotContains(t, string(second), "ean50", "mixes do not leak across documents")
}

func TestSegmentationNeedsOutput(t *testing.T) {
	r, _ := newRunner(t)
	p := prefs.Default()
	p.SegmentSize = 10

	// The input does not exist: the configuration error must come first.
	_, err := r.Execute(context.Background(), Options{Input: "missing.glg", Prefs: p})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidConfig), "got %v", err)
}

func TestExecuteIsIdempotent(t *testing.T) {
	r, _ := newRunner(t)
	dir := t.TempDir()

	run := func(name string) []byte {
		path := filepath.Join(dir, name)
		_, err := r.Execute(context.Background(), Options{Input: fixture, Output: path, Prefs: prefs.Default()})
		require.NoError(t, err)
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		return data
	}
	assert.Equal(t, run("a.uddf"), run("b.uddf"))
}

func TestExecuteDiveFilter(t *testing.T) {
	r, out := newRunner(t)

	res, err := r.Execute(context.Background(), Options{
		Input:   fixture,
		Numbers: []int64{3},
		Prefs:   prefs.Default(),
		Now:     fixedNow,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Stats.Dives)
	assert.Contains(t, out.String(), `<dive id="dive_3">`)
	assert.NotContains(t, out.String(), `<dive id="dive_1">`)
}

func TestExecuteUDCF(t *testing.T) {
	r, out := newRunner(t)
	p := prefs.Default()
	p.Format = prefs.FormatUDCF

	_, err := r.Execute(context.Background(), Options{Input: fixture, Prefs: p, Now: fixedNow})
	require.NoError(t, err)

	body := out.String()
	assert.Contains(t, body, `<profile udcf="1">`)
	assert.Contains(t, body, `<units>Metric</units>`)
	assert.Equal(t, 1, strings.Count(body, "<repgroup>"))
	assert.Contains(t, body, `<place>Egypt/Red Sea/Thistlegorm</place>`)
}

func TestExecuteTrips(t *testing.T) {
	r, out := newRunner(t)
	p := prefs.Default()
	p.TripThreshold = prefs.Days(2)

	res, err := r.Execute(context.Background(), Options{Input: fixture, Prefs: p, Now: fixedNow})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Stats.Trips)
	assert.Contains(t, out.String(), `<trip id="trip_1">`)
	assert.Contains(t, out.String(), `<trip id="trip_2">`)
}

func TestPlan(t *testing.T) {
	r, _ := newRunner(t)
	p := prefs.Default()
	p.SegmentSize = 1

	// Plan never writes, so no output path is needed.
	docs, stats, err := r.Plan(context.Background(), Options{Input: fixture, Prefs: p})
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, 3, stats.Dives)
	assert.Equal(t, 2, docs[0].Dives())
	assert.Len(t, docs[1].Groups, 1)
}

func TestSegmentPath(t *testing.T) {
	tests := []struct {
		output, format string
		seq            int
		want           string
	}{
		{"out/dives.uddf", "uddf", 1, "out/dives_001.uddf"},
		{"dives", "udcf", 12, "dives_012.udcf"},
		{"a.b.xml", "uddf", 100, "a.b_100.xml"},
	}
	for _, tt := range tests {
		if got := SegmentPath(tt.output, tt.format, tt.seq); got != tt.want {
			t.Errorf("SegmentPath(%q, %q, %d) = %q, want %q", tt.output, tt.format, tt.seq, got, tt.want)
		}
	}
}

func TestLoadPreferences(t *testing.T) {
	dir := t.TempDir()

	config := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(config, []byte(`
[site]
separator = " > "

[export]
segment_size = 5
trip_threshold_days = 3.0
`), 0o644))

	bin := make([]byte, 0o140+4)
	bin[0] = 'f'
	copy(bin[0o140:], " - \x00")
	binPath := filepath.Join(dir, "gdivelog.prefs")
	require.NoError(t, os.WriteFile(binPath, bin, 0o644))

	zero := 0
	p, err := LoadPreferences(Settings{
		ConfigPath:      config,
		PreferencesPath: binPath,
		Overrides:       Overrides{SegmentSize: &zero},
	})
	require.NoError(t, err)

	assert.Equal(t, units.Feet, p.Units.Depth, "binary preferences set the depth unit")
	assert.Equal(t, " - ", p.Separator, "binary preferences override the config separator")
	assert.Equal(t, 0, p.SegmentSize, "flags override the config")
	assert.Equal(t, 3*24*time.Hour, p.TripThreshold)
}

func TestLoadPreferencesNoConfig(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	format := "pdf"
	_, err := LoadPreferences(Settings{Overrides: Overrides{Format: &format}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidConfig))

	p, err := LoadPreferences(Settings{NoConfig: true})
	require.NoError(t, err)
	assert.Equal(t, prefs.Default(), p)
}

type countingHooks struct {
	observability.NoopExportHooks
	observability.NoopCacheHooks
	starts, documents, completes int
	hits, misses                 int
	lastErr                      error
}

func (h *countingHooks) OnConvertStart(context.Context, string, string) { h.starts++ }
func (h *countingHooks) OnDocument(context.Context, int, int, string)   { h.documents++ }
func (h *countingHooks) OnConvertComplete(_ context.Context, _ string, _, _ int, _ time.Duration, err error) {
	h.completes++
	h.lastErr = err
}
func (h *countingHooks) OnCacheHit(context.Context, string)  { h.hits++ }
func (h *countingHooks) OnCacheMiss(context.Context, string) { h.misses++ }

func TestExecuteHooks(t *testing.T) {
	h := &countingHooks{}
	observability.SetExportHooks(h)
	observability.SetCacheHooks(h)
	defer observability.Reset()

	r, _ := newRunner(t)
	p := prefs.Default()
	p.SegmentSize = 1
	dir := t.TempDir()

	for range 2 {
		_, err := r.Execute(context.Background(), Options{Input: fixture, Output: filepath.Join(dir, "d.uddf"), Prefs: p, Now: fixedNow})
		require.NoError(t, err)
	}

	assert.Equal(t, 2, h.starts)
	assert.Equal(t, 4, h.documents)
	assert.Equal(t, 2, h.completes)
	assert.NoError(t, h.lastErr)
	assert.Equal(t, 1, h.misses, "first run decompresses")
	assert.Equal(t, 1, h.hits, "second run reuses the cache")
}
