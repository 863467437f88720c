package screen

import (
	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"
	"golang.org/x/text/width"
)

// ColorMode selects how a Color value is interpreted.
type ColorMode uint8

const (
	// ColorDefault means the terminal's configured default fg/bg.
	ColorDefault ColorMode = iota

	// ColorPalette is an index into the 256-color palette.
	ColorPalette

	// ColorRGB is a 24-bit truecolor value.
	ColorRGB
)

// Color is a cell foreground or background color.
// The zero value is the default color.
type Color struct {
	Mode    ColorMode
	Index   uint8 // palette index when Mode == ColorPalette
	R, G, B uint8 // components when Mode == ColorRGB
}

// PaletteColor returns a palette-indexed color.
func PaletteColor(idx uint8) Color {
	return Color{Mode: ColorPalette, Index: idx}
}

// RGBColor returns a truecolor value.
func RGBColor(r, g, b uint8) Color {
	return Color{Mode: ColorRGB, R: r, G: g, B: b}
}

// Attr is a bit set of style flags.
type Attr uint16

const (
	AttrBold Attr = 1 << iota
	AttrDim
	AttrItalic
	AttrUnderline
	AttrStrikethrough
	AttrBlink
	AttrReverse
	AttrInvisible
)

// Attributes is the full style applied to a cell: the "pen" that the
// terminal copies into each printed cell.
type Attributes struct {
	FG    Color
	BG    Color
	Flags Attr

	// Hyperlink is an opaque id assigned by the OSC 8 handler.
	// Zero means no hyperlink.
	Hyperlink uint32
}

// Has reports whether all the given flags are set.
func (a Attributes) Has(flags Attr) bool {
	return a.Flags&flags == flags
}

// SGROnly returns a copy suitable for painting erased cells: the colors
// and flags survive, the hyperlink does not. Erase operations must fill
// with the current background color, not the default.
func (a Attributes) SGROnly() Attributes {
	a.Hyperlink = 0
	return a
}

// Cell is one grid position. Text holds a full grapheme cluster (base
// code point plus any combining marks) so that combining marks attach to
// their base cell rather than consuming a column.
//
// A wide (2-column) character occupies two adjacent cells: the leading
// cell has Width 2, the trailing one is a continuation placeholder with
// Width 0 and empty Text.
type Cell struct {
	Text  string
	Width uint8
	Attrs Attributes
}

// Blank returns an erased cell carrying the given attributes.
func Blank(attrs Attributes) Cell {
	return Cell{Text: " ", Width: 1, Attrs: attrs}
}

// continuation is the placeholder stored after a wide cell.
func continuation(attrs Attributes) Cell {
	return Cell{Text: "", Width: 0, Attrs: attrs}
}

// IsContinuation reports whether the cell is the trailing half of a
// wide character.
func (c Cell) IsContinuation() bool {
	return c.Width == 0 && c.Text == ""
}

// IsBlank reports whether the cell displays nothing but background.
func (c Cell) IsBlank() bool {
	return c.Text == " " || c.Text == ""
}

// AppendMark appends a zero-width combining mark to the cell's cluster.
func (c *Cell) AppendMark(mark string) {
	c.Text += mark
}

// ClusterWidth returns the display width (0, 1 or 2 columns) of a
// grapheme cluster. The width of the cluster is the width of its base
// rune; combining marks contribute nothing. When ambiguousWide is set,
// East Asian ambiguous-width runes count as wide, matching legacy CJK
// terminal behavior.
func ClusterWidth(cluster string, ambiguousWide bool) int {
	if cluster == "" {
		return 0
	}
	var base rune
	for _, r := range cluster {
		base = r
		break
	}
	if ambiguousWide {
		if k := width.LookupRune(base).Kind(); k == width.EastAsianAmbiguous {
			return 2
		}
	}
	w := runewidth.RuneWidth(base)
	if w > 2 {
		w = 2
	}
	return w
}

// Graphemes splits text into grapheme clusters in display order.
// Used by the print path so multi-code-point clusters become one cell.
func Graphemes(text string) []string {
	var out []string
	state := -1
	for len(text) > 0 {
		var cluster string
		cluster, text, _, state = uniseg.FirstGraphemeClusterInString(text, state)
		out = append(out, cluster)
	}
	return out
}
