package font

import (
	"bytes"
	"fmt"
	"sync"

	gtfont "github.com/go-text/typesetting/font"
	xfont "golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
)

// Metrics is the monospace cell geometry derived from a face: every
// cell on screen is CellWidth by CellHeight pixels, with the text
// baseline Ascent pixels below the cell top.
type Metrics struct {
	CellWidth  int
	CellHeight int
	Ascent     int
}

// Face is a font parsed at a fixed pixel size. It owns both the sfnt
// form (outline loading) and the go-text form (shaping) of the same
// font data.
//
// Face is safe for concurrent use; outline loading serializes on an
// internal buffer.
type Face struct {
	sf      *sfnt.Font
	gt      *gtfont.Font
	ppem    fixed.Int26_6
	metrics Metrics

	// buf is the sfnt scratch buffer; sfnt methods that take it are
	// not concurrent-safe.
	mu  sync.Mutex
	buf sfnt.Buffer
}

// NewFace parses TTF/OTF data at the given pixel size.
func NewFace(data []byte, sizePx float64) (*Face, error) {
	if sizePx <= 0 {
		return nil, fmt.Errorf("font: invalid size %v", sizePx)
	}
	sf, err := sfnt.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("font: parse: %w", err)
	}
	gtFace, err := gtfont.ParseTTF(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("font: parse for shaping: %w", err)
	}

	f := &Face{
		sf:   sf,
		gt:   gtFace.Font,
		ppem: fixed.Int26_6(sizePx * 64),
	}
	if err := f.computeMetrics(); err != nil {
		return nil, err
	}
	return f, nil
}

// DefaultFace returns the embedded Go Mono face at the given pixel
// size.
func DefaultFace(sizePx float64) (*Face, error) {
	return NewFace(gomono.TTF, sizePx)
}

// Metrics returns the cell geometry for this face.
func (f *Face) Metrics() Metrics {
	return f.metrics
}

func (f *Face) computeMetrics() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	m, err := f.sf.Metrics(&f.buf, f.ppem, xfont.HintingNone)
	if err != nil {
		return fmt.Errorf("font: metrics: %w", err)
	}
	ascent := m.Ascent.Ceil()
	descent := m.Descent.Ceil()

	// A monospace cell is as wide as the digit zero's advance.
	gi, err := f.sf.GlyphIndex(&f.buf, '0')
	if err != nil {
		return fmt.Errorf("font: glyph index: %w", err)
	}
	adv, err := f.sf.GlyphAdvance(&f.buf, gi, f.ppem, xfont.HintingNone)
	if err != nil {
		return fmt.Errorf("font: advance: %w", err)
	}

	f.metrics = Metrics{
		CellWidth:  adv.Ceil(),
		CellHeight: ascent + descent,
		Ascent:     ascent,
	}
	if f.metrics.CellWidth <= 0 || f.metrics.CellHeight <= 0 {
		return fmt.Errorf("font: degenerate cell metrics %+v", f.metrics)
	}
	return nil
}

// loadGlyph returns the outline segments for a glyph, in pixels,
// y-down, origin on the baseline.
func (f *Face) loadGlyph(gid uint32) (sfnt.Segments, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sf.LoadGlyph(&f.buf, sfnt.GlyphIndex(gid), f.ppem, nil)
}
