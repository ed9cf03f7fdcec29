package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/matzehuels/gdivelog2uddf/pkg/errors"
	"github.com/matzehuels/gdivelog2uddf/pkg/xmltree"
)

// Sink receives finished documents.
type Sink interface {
	// Write stores doc and returns the path written, or "" for streams.
	Write(doc *xmltree.Document) (string, error)
}

func (r *Runner) sink(opts Options) Sink {
	if opts.ToStdout() {
		w := r.Stdout
		if w == nil {
			w = os.Stdout
		}
		return &streamSink{w: w, pretty: opts.Prefs.Pretty}
	}
	return &fileSink{
		output:    opts.Output,
		format:    opts.Prefs.Format,
		segmented: opts.Prefs.SegmentSize > 0,
		pretty:    opts.Prefs.Pretty,
	}
}

type streamSink struct {
	w      io.Writer
	pretty bool
}

func (s *streamSink) Write(doc *xmltree.Document) (string, error) {
	if err := doc.Render(s.w, s.pretty); err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, err, "write document %d", doc.Seq)
	}
	return "", nil
}

type fileSink struct {
	output    string
	format    string
	segmented bool
	pretty    bool
}

func (s *fileSink) Write(doc *xmltree.Document) (string, error) {
	path := s.output
	if s.segmented {
		path = SegmentPath(s.output, s.format, doc.Seq)
	}
	if err := writeFile(path, doc, s.pretty); err != nil {
		return "", err
	}
	return path, nil
}

// SegmentPath returns the file name of document seq for the output template:
// <base>_<NNN>.<ext>. Without an extension in output, format is used.
func SegmentPath(output, format string, seq int) string {
	ext := filepath.Ext(output)
	base := strings.TrimSuffix(output, ext)
	if ext == "" {
		ext = "." + format
	}
	return fmt.Sprintf("%s_%03d%s", base, seq, ext)
}

// writeFile renders to a temporary file next to path and renames it into
// place.
func writeFile(path string, doc *xmltree.Document, pretty bool) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "create output directory %s", dir)
	}
	tmp, err := os.CreateTemp(dir, ".export-*")
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "create %s", path)
	}
	defer os.Remove(tmp.Name())

	if err := doc.Render(tmp, pretty); err != nil {
		tmp.Close()
		return errors.Wrap(errors.ErrCodeInternal, err, "write %s", path)
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "write %s", path)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "write %s", path)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "write %s", path)
	}
	return nil
}
