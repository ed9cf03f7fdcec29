// Package export runs a complete conversion: it opens the dive log, resolves
// preferences, drives the segmenter with the selected assembler and hands
// every finished document to an output sink.
//
// # Usage
//
//	p, err := export.LoadPreferences(export.Settings{PreferencesPath: "/home/diver/.gdivelog"})
//	runner := export.NewRunner(cache, logger)
//	result, err := runner.Execute(ctx, export.Options{
//	    Input:  "gdivelog.glg",
//	    Output: "dives.uddf",
//	    Prefs:  p,
//	})
//
// With segmentation enabled the output path is a template: documents are
// written to <base>_001.<ext>, <base>_002.<ext> and so on.
package export

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/gdivelog2uddf/pkg/cache"
	"github.com/matzehuels/gdivelog2uddf/pkg/errors"
	"github.com/matzehuels/gdivelog2uddf/pkg/observability"
	"github.com/matzehuels/gdivelog2uddf/pkg/outline"
	"github.com/matzehuels/gdivelog2uddf/pkg/prefs"
	"github.com/matzehuels/gdivelog2uddf/pkg/segment"
	"github.com/matzehuels/gdivelog2uddf/pkg/store"
	"github.com/matzehuels/gdivelog2uddf/pkg/udcf"
	"github.com/matzehuels/gdivelog2uddf/pkg/uddf"
	"github.com/matzehuels/gdivelog2uddf/pkg/xmltree"
)

// DefaultInput is the log file gdivelog writes in its working directory.
const DefaultInput = "gdivelog.glg"

// Options configures a single run.
type Options struct {
	// Input is the gdivelog log, compressed or plain.
	Input string

	// Output is the destination file. Empty or "-" writes to the runner's
	// Stdout, which is only allowed without segmentation.
	Output string

	// Numbers restricts the run to these dive numbers.
	Numbers []int64

	Prefs prefs.Preferences

	// Now stamps generated documents. Nil uses the input's modification
	// time so repeated runs over the same log produce identical output.
	Now func() time.Time

	// OnDocument is called after each document is written.
	OnDocument func(doc *xmltree.Document, path string)
}

// ToStdout reports whether output goes to the runner's Stdout.
func (o Options) ToStdout() bool {
	return o.Output == "" || o.Output == "-"
}

// Validate checks the options before any work is done.
func (o Options) Validate() error {
	if o.Input == "" {
		return errors.New(errors.ErrCodeInvalidInput, "no dive log given")
	}
	if err := o.Prefs.Validate(); err != nil {
		return err
	}
	if o.Prefs.SegmentSize > 0 && o.ToStdout() {
		return errors.New(errors.ErrCodeInvalidConfig,
			"segment size %d needs an output file: segmented documents cannot share stdout", o.Prefs.SegmentSize)
	}
	return nil
}

func (o Options) segmentOptions() segment.Options {
	return segment.Options{
		TripThreshold: o.Prefs.TripThreshold,
		SegmentSize:   o.Prefs.SegmentSize,
	}
}

// Result summarizes a run.
type Result struct {
	// Files lists the written paths, in document order. It is empty when
	// writing to stdout.
	Files    []string
	Stats    segment.Stats
	Duration time.Duration
}

// Runner executes conversions. The zero value is not usable; use NewRunner.
type Runner struct {
	Cache  cache.Cache
	Logger *log.Logger
	Stdout io.Writer
}

// NewRunner creates a runner. A nil cache decompresses logs into temporary
// files; a nil logger discards output.
func NewRunner(c cache.Cache, logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Runner{Cache: c, Logger: logger, Stdout: os.Stdout}
}

// Execute converts the log and writes every document.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	hooks := observability.Export()
	hooks.OnConvertStart(ctx, opts.Input, opts.Prefs.Format)
	result := &Result{}
	start := time.Now()
	err := r.execute(ctx, opts, result)
	result.Duration = time.Since(start)
	hooks.OnConvertComplete(ctx, opts.Input, result.Stats.Dives, result.Stats.Documents, result.Duration, err)
	if err != nil {
		return result, err
	}

	r.Logger.Info("conversion complete",
		"dives", result.Stats.Dives,
		"groups", result.Stats.Groups,
		"trips", result.Stats.Trips,
		"documents", result.Stats.Documents,
		"duration", result.Duration)
	return result, nil
}

func (r *Runner) execute(ctx context.Context, opts Options, result *Result) error {
	s, err := r.open(ctx, opts.Input)
	if err != nil {
		return err
	}
	defer s.Close()

	now := opts.Now
	if now == nil {
		now, err = modTime(opts.Input)
		if err != nil {
			return err
		}
	}

	var asm segment.Assembler[*xmltree.Document]
	switch opts.Prefs.Format {
	case prefs.FormatUDCF:
		asm = udcf.New(s, opts.Prefs, r.Logger)
	default:
		asm = uddf.New(s, uddf.Options{Prefs: opts.Prefs, Now: now, Logger: r.Logger})
	}

	sink := r.sink(opts)
	result.Stats, err = drive(ctx, s, opts, asm, r.Logger, func(doc *xmltree.Document) error {
		path, err := sink.Write(doc)
		if err != nil {
			return err
		}
		if path != "" {
			result.Files = append(result.Files, path)
		}
		r.Logger.Info("wrote document", "document", doc.Seq, "dives", doc.Dives, "path", displayPath(path))
		observability.Export().OnDocument(ctx, doc.Seq, doc.Dives, path)
		if opts.OnDocument != nil {
			opts.OnDocument(doc, path)
		}
		return nil
	})
	return err
}

// Plan segments the log without building documents.
func (r *Runner) Plan(ctx context.Context, opts Options) ([]*outline.Document, segment.Stats, error) {
	if opts.Input == "" {
		return nil, segment.Stats{}, errors.New(errors.ErrCodeInvalidInput, "no dive log given")
	}
	if err := opts.Prefs.Validate(); err != nil {
		return nil, segment.Stats{}, err
	}

	s, err := r.open(ctx, opts.Input)
	if err != nil {
		return nil, segment.Stats{}, err
	}
	defer s.Close()

	var docs []*outline.Document
	stats, err := drive(ctx, s, opts, outline.New(), r.Logger, func(doc *outline.Document) error {
		docs = append(docs, doc)
		return nil
	})
	return docs, stats, err
}

func (r *Runner) open(ctx context.Context, path string) (*store.Store, error) {
	r.Logger.Debug("opening dive log", "path", path)
	return store.Open(ctx, path, store.Options{Cache: r.Cache, Logger: r.Logger})
}

// drive pulls documents from a segmenter over the selected dives and passes
// each to emit.
func drive[D any](ctx context.Context, s *store.Store, opts Options, asm segment.Assembler[D], logger *log.Logger, emit func(D) error) (segment.Stats, error) {
	cursor, err := s.Dives(ctx, store.DiveFilter{Numbers: opts.Numbers})
	if err != nil {
		return segment.Stats{}, err
	}
	seg := segment.New(cursor, asm, opts.segmentOptions(), logger)
	defer seg.Close()

	for doc, err := range seg.All(ctx) {
		if err != nil {
			return seg.Stats(), err
		}
		if err := emit(doc); err != nil {
			return seg.Stats(), err
		}
	}
	return seg.Stats(), nil
}

// modTime returns a clock fixed at the file's modification time.
func modTime(path string) (func() time.Time, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "stat %s", path)
	}
	t := info.ModTime().UTC().Truncate(time.Second)
	return func() time.Time { return t }, nil
}

func displayPath(path string) string {
	if path == "" {
		return "-"
	}
	return path
}
