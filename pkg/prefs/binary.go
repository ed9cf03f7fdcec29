package prefs

import (
	"bytes"
	"io"
	"os"

	"github.com/matzehuels/gdivelog2uddf/pkg/errors"
	"github.com/matzehuels/gdivelog2uddf/pkg/units"
)

// gdivelog writes its preferences struct to disk as-is. Only two fields sit
// at offsets that do not depend on compiler padding.
const (
	depthOffset     = 0
	separatorOffset = 0o140
	separatorLen    = 4
)

// Binary holds the fields read from gdivelog's preferences file.
type Binary struct {
	Depth     units.DepthUnit
	Separator string
}

// LoadBinary reads a gdivelog preferences file.
func LoadBinary(path string) (*Binary, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeNotFound, err, "preferences file %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidPreferences, err, "open preferences %s", path)
	}
	defer f.Close()
	return ReadBinary(f)
}

// ReadBinary decodes gdivelog preferences. 'm' selects meters; any other
// depth flag means feet. The separator is cut at the first NUL.
func ReadBinary(r io.Reader) (*Binary, error) {
	buf := make([]byte, separatorOffset+separatorLen)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPreferences, err,
			"preferences file shorter than %d bytes", len(buf))
	}

	b := &Binary{Depth: units.Feet}
	if buf[depthOffset] == byte(units.Meters) {
		b.Depth = units.Meters
	}
	sep := buf[separatorOffset : separatorOffset+separatorLen]
	if i := bytes.IndexByte(sep, 0); i >= 0 {
		sep = sep[:i]
	}
	b.Separator = string(sep)
	return b, nil
}

// apply overrides the depth unit, and the separator when one is set.
func (b *Binary) apply(p *Preferences) {
	p.Units.Depth = b.Depth
	if b.Separator != "" {
		p.Separator = b.Separator
	}
}
