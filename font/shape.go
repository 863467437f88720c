package font

import (
	"sync"

	"github.com/go-text/typesetting/di"
	gtfont "github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/language"
	"github.com/go-text/typesetting/shaping"
)

// shaperPool pools HarfbuzzShaper instances. HarfbuzzShaper has
// internal mutable state and is not safe for concurrent use, but
// reusing instances across calls avoids reallocating its buffers.
var shaperPool = sync.Pool{
	New: func() any {
		return &shaping.HarfbuzzShaper{}
	},
}

// shapedGlyph is one positioned glyph from shaping a cluster. Offsets
// and advance are in pixels relative to the pen position on the
// baseline.
type shapedGlyph struct {
	gid      uint32
	xOffset  float64
	yOffset  float64
	xAdvance float64
}

// shape runs HarfBuzz shaping over one grapheme cluster. Terminal
// cells are shaped cluster by cluster, so runs are tiny; ligatures
// across cells are intentionally not formed.
func (f *Face) shape(cluster string) []shapedGlyph {
	runes := []rune(cluster)
	if len(runes) == 0 {
		return nil
	}

	input := shaping.Input{
		Text:      runes,
		RunStart:  0,
		RunEnd:    len(runes),
		Direction: di.DirectionLTR,
		Face:      gtfont.NewFace(f.gt),
		Size:      f.ppem,
		Script:    detectScript(runes),
		Language:  language.NewLanguage("en"),
	}

	hb := shaperPool.Get().(*shaping.HarfbuzzShaper)
	out := hb.Shape(input)
	shaperPool.Put(hb)

	glyphs := make([]shapedGlyph, 0, len(out.Glyphs))
	for _, g := range out.Glyphs {
		glyphs = append(glyphs, shapedGlyph{
			gid:      uint32(g.GlyphID),
			xOffset:  fixedToFloat(g.XOffset),
			yOffset:  fixedToFloat(g.YOffset),
			xAdvance: fixedToFloat(g.XAdvance),
		})
	}
	return glyphs
}

// detectScript returns the script of the first non-space rune.
func detectScript(runes []rune) language.Script {
	for _, r := range runes {
		if r == ' ' || r == '\t' {
			continue
		}
		return language.LookupScript(r)
	}
	return language.Latin
}
