package font

import (
	"errors"
	"testing"
)

func newTestFace(t *testing.T) *Face {
	t.Helper()
	f, err := DefaultFace(16)
	if err != nil {
		t.Fatalf("DefaultFace: %v", err)
	}
	return f
}

func TestMetrics(t *testing.T) {
	f := newTestFace(t)
	m := f.Metrics()
	if m.CellWidth <= 0 || m.CellHeight <= 0 {
		t.Fatalf("degenerate metrics %+v", m)
	}
	if m.Ascent <= 0 || m.Ascent >= m.CellHeight {
		t.Fatalf("ascent %d outside cell height %d", m.Ascent, m.CellHeight)
	}
}

func TestNewFaceRejectsBadInput(t *testing.T) {
	if _, err := NewFace([]byte("not a font"), 16); err == nil {
		t.Fatal("expected parse error")
	}
	if _, err := NewFace(nil, 0); err == nil {
		t.Fatal("expected size error")
	}
}

func TestRasterizeBasic(t *testing.T) {
	f := newTestFace(t)
	m := f.Metrics()

	bm, err := f.Rasterize("A", 0, 1)
	if err != nil {
		t.Fatalf("Rasterize: %v", err)
	}
	if bm.Width != m.CellWidth || bm.Height != m.CellHeight {
		t.Fatalf("bitmap %dx%d, want %dx%d", bm.Width, bm.Height, m.CellWidth, m.CellHeight)
	}
	if bm.HasColor {
		t.Fatal("monochrome glyph marked colored")
	}
	if coverage(bm) == 0 {
		t.Fatal("glyph rendered no pixels")
	}
}

func TestRasterizeSpaceIsEmpty(t *testing.T) {
	f := newTestFace(t)
	bm, err := f.Rasterize(" ", 0, 1)
	if err != nil {
		t.Fatalf("Rasterize: %v", err)
	}
	if coverage(bm) != 0 {
		t.Fatal("space rendered pixels")
	}
}

func TestRasterizeStyles(t *testing.T) {
	f := newTestFace(t)
	plain, err := f.Rasterize("W", 0, 1)
	if err != nil {
		t.Fatalf("plain: %v", err)
	}
	bold, err := f.Rasterize("W", StyleBold, 1)
	if err != nil {
		t.Fatalf("bold: %v", err)
	}
	if coverage(bold) <= coverage(plain) {
		t.Fatal("synthetic bold did not add coverage")
	}
	if _, err := f.Rasterize("W", StyleItalic, 1); err != nil {
		t.Fatalf("italic: %v", err)
	}
}

func TestRasterizeWideSpan(t *testing.T) {
	f := newTestFace(t)
	m := f.Metrics()
	bm, err := f.Rasterize("A", 0, 2)
	if err != nil {
		t.Fatalf("Rasterize: %v", err)
	}
	if bm.Width != 2*m.CellWidth {
		t.Fatalf("width %d, want %d", bm.Width, 2*m.CellWidth)
	}
}

func TestRasterizeEmptyCluster(t *testing.T) {
	f := newTestFace(t)
	_, err := f.Rasterize("", 0, 1)
	var re *RasterizationError
	if !errors.As(err, &re) {
		t.Fatalf("err = %v, want RasterizationError", err)
	}
}

func TestPlaceholder(t *testing.T) {
	m := Metrics{CellWidth: 8, CellHeight: 16, Ascent: 12}
	bm := Placeholder(m, 1)
	if bm.Width != 8 || bm.Height != 16 {
		t.Fatalf("bitmap %dx%d", bm.Width, bm.Height)
	}
	if coverage(bm) == 0 {
		t.Fatal("placeholder is empty")
	}
}

func coverage(bm *Bitmap) int {
	n := 0
	for i := 3; i < len(bm.Pix); i += 4 {
		if bm.Pix[i] != 0 {
			n++
		}
	}
	return n
}
