package render

import (
	"github.com/gogpu/term/atlas"
	"github.com/gogpu/term/font"
)

// Sprite ids for the permanent cell sprites the background pass
// composites over cell backgrounds.
const (
	spriteBlank = iota
	spriteUnderline
	spriteStrike
	spriteUnderlineStrike
)

// lineSprites holds the resolved slots for every line-decoration
// combination, indexed by sprite id.
type lineSprites [4]atlas.Slot

// registerSprites builds and inserts the cell sprites. They are
// permanent: their slots stay valid for the renderer's lifetime.
func registerSprites(a *atlas.Atlas, m font.Metrics) (lineSprites, error) {
	var s lineSprites
	for id, bm := range []*font.Bitmap{
		spriteBitmap(m, false, false),
		spriteBitmap(m, true, false),
		spriteBitmap(m, false, true),
		spriteBitmap(m, true, true),
	} {
		slot, err := a.Insert(atlas.Key{Kind: atlas.KindSprite, Cells: id}, bm)
		if err != nil {
			return s, err
		}
		s[id] = slot
	}
	return s, nil
}

// spriteBitmap draws a cell-sized sprite with the requested underline
// and strikethrough rows. The all-transparent sprite doubles as the
// glyph texture for blank cells.
func spriteBitmap(m font.Metrics, underline, strike bool) *font.Bitmap {
	bm := &font.Bitmap{
		Pix:    make([]uint8, m.CellWidth*m.CellHeight*4),
		Width:  m.CellWidth,
		Height: m.CellHeight,
	}
	row := func(y int) {
		if y < 0 || y >= m.CellHeight {
			return
		}
		for x := 0; x < m.CellWidth; x++ {
			i := (y*m.CellWidth + x) * 4
			bm.Pix[i+0] = 0xFF
			bm.Pix[i+1] = 0xFF
			bm.Pix[i+2] = 0xFF
			bm.Pix[i+3] = 0xFF
		}
	}
	if underline {
		y := m.Ascent + 1
		if y >= m.CellHeight {
			y = m.CellHeight - 1
		}
		row(y)
	}
	if strike {
		row(m.Ascent * 2 / 3)
	}
	return bm
}
