// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package font

import (
	"image"

	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"
)

// Style selects the shape-affecting style bits of a glyph. Underline
// and strikethrough are drawn as separate geometry, not baked into
// glyph bitmaps, so they do not appear here.
type Style uint8

const (
	StyleBold Style = 1 << iota
	StyleItalic
)

// italicShear is the synthetic oblique slope used when the face has
// no italic variant.
const italicShear = 0.2

// Bitmap is a rasterized glyph sized to whole terminal cells. Pix is
// premultiplied RGBA; monochrome glyphs are premultiplied white so
// the renderer can tint them by multiplying with the foreground
// color. HasColor marks intrinsically colored glyphs that must not be
// tinted.
type Bitmap struct {
	Pix    []uint8
	Width  int
	Height int

	HasColor bool
}

// Rasterizer maps a grapheme cluster and style to a cell-sized glyph
// bitmap. cells is the column span, 1 or 2.
type Rasterizer interface {
	Rasterize(cluster string, style Style, cells int) (*Bitmap, error)
	Metrics() Metrics
}

// Rasterize shapes the cluster and renders its outlines into a bitmap
// spanning cells columns.
func (f *Face) Rasterize(cluster string, style Style, cells int) (*Bitmap, error) {
	if cells < 1 {
		cells = 1
	}
	w := cells * f.metrics.CellWidth
	h := f.metrics.CellHeight

	glyphs := f.shape(cluster)
	if len(glyphs) == 0 {
		return nil, &RasterizationError{Cluster: cluster}
	}

	r := vector.NewRasterizer(w, h)
	pen := 0.0
	for _, g := range glyphs {
		segs, err := f.loadGlyph(g.gid)
		if err != nil {
			return nil, &RasterizationError{Cluster: cluster, Err: err}
		}
		f.appendOutline(r, segs, pen+g.xOffset, g.yOffset, style, 0)
		if style&StyleBold != 0 {
			// Synthetic bold: overstrike one pixel to the right.
			f.appendOutline(r, segs, pen+g.xOffset, g.yOffset, style, 1)
		}
		pen += g.xAdvance
	}

	mask := image.NewAlpha(image.Rect(0, 0, w, h))
	r.Draw(mask, mask.Bounds(), image.Opaque, image.Point{})

	return maskToBitmap(mask), nil
}

// appendOutline adds one glyph outline to the rasterizer. Outline
// coordinates from sfnt are in pixels, y-down, origin on the
// baseline; the cell places the baseline at Ascent.
func (f *Face) appendOutline(r *vector.Rasterizer, segs sfnt.Segments, penX, yOffset float64, style Style, dx float64) {
	ascent := float64(f.metrics.Ascent)
	pt := func(p fixed.Point26_6) (float32, float32) {
		x := penX + dx + fixedToFloat(p.X)
		y := ascent - yOffset + fixedToFloat(p.Y)
		if style&StyleItalic != 0 {
			// Synthetic oblique: lean the upper half to the right.
			x += italicShear * (ascent - y)
		}
		return float32(x), float32(y)
	}

	started := false
	for _, seg := range segs {
		switch seg.Op {
		case sfnt.SegmentOpMoveTo:
			if started {
				r.ClosePath()
			}
			x, y := pt(seg.Args[0])
			r.MoveTo(x, y)
			started = true
		case sfnt.SegmentOpLineTo:
			x, y := pt(seg.Args[0])
			r.LineTo(x, y)
		case sfnt.SegmentOpQuadTo:
			bx, by := pt(seg.Args[0])
			cx, cy := pt(seg.Args[1])
			r.QuadTo(bx, by, cx, cy)
		case sfnt.SegmentOpCubeTo:
			bx, by := pt(seg.Args[0])
			cx, cy := pt(seg.Args[1])
			ax, ay := pt(seg.Args[2])
			r.CubeTo(bx, by, cx, cy, ax, ay)
		}
	}
	if started {
		r.ClosePath()
	}
}

// maskToBitmap expands an alpha mask into premultiplied white RGBA.
func maskToBitmap(mask *image.Alpha) *Bitmap {
	b := mask.Bounds()
	bm := &Bitmap{
		Pix:    make([]uint8, b.Dx()*b.Dy()*4),
		Width:  b.Dx(),
		Height: b.Dy(),
	}
	for i, a := range mask.Pix {
		bm.Pix[i*4+0] = a
		bm.Pix[i*4+1] = a
		bm.Pix[i*4+2] = a
		bm.Pix[i*4+3] = a
	}
	return bm
}

// Placeholder returns the hollow-box bitmap used when rasterization
// fails or the atlas cannot hold a glyph this frame.
func Placeholder(m Metrics, cells int) *Bitmap {
	if cells < 1 {
		cells = 1
	}
	w := cells * m.CellWidth
	h := m.CellHeight
	bm := &Bitmap{
		Pix:    make([]uint8, w*h*4),
		Width:  w,
		Height: h,
	}
	set := func(x, y int) {
		if x < 0 || x >= w || y < 0 || y >= h {
			return
		}
		i := (y*w + x) * 4
		bm.Pix[i+0] = 0xFF
		bm.Pix[i+1] = 0xFF
		bm.Pix[i+2] = 0xFF
		bm.Pix[i+3] = 0xFF
	}
	for x := 1; x < w-1; x++ {
		set(x, 1)
		set(x, h-2)
	}
	for y := 1; y < h-1; y++ {
		set(1, y)
		set(w-2, y)
	}
	return bm
}

func fixedToFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64
}
