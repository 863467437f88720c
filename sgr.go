package term

import "github.com/gogpu/term/screen"

// applySGR folds one SGR parameter list into the pen. A full reset
// (SGR 0) clears colors and flags but keeps the active hyperlink;
// OSC 8 is the only thing that ends a link run.
func (s *State) applySGR(params []int) {
	if len(params) == 0 {
		params = []int{0}
	}
	for i := 0; i < len(params); {
		p := params[i]
		i++
		switch p {
		case 0:
			link := s.pen.Hyperlink
			s.pen = screen.Attributes{Hyperlink: link}
		case 1:
			s.pen.Flags |= screen.AttrBold
		case 2:
			s.pen.Flags |= screen.AttrDim
		case 3:
			s.pen.Flags |= screen.AttrItalic
		case 4, 21:
			// Double underline renders as plain underline.
			s.pen.Flags |= screen.AttrUnderline
		case 5, 6:
			s.pen.Flags |= screen.AttrBlink
		case 7:
			s.pen.Flags |= screen.AttrReverse
		case 8:
			s.pen.Flags |= screen.AttrInvisible
		case 9:
			s.pen.Flags |= screen.AttrStrikethrough
		case 22:
			s.pen.Flags &^= screen.AttrBold | screen.AttrDim
		case 23:
			s.pen.Flags &^= screen.AttrItalic
		case 24:
			s.pen.Flags &^= screen.AttrUnderline
		case 25:
			s.pen.Flags &^= screen.AttrBlink
		case 27:
			s.pen.Flags &^= screen.AttrReverse
		case 28:
			s.pen.Flags &^= screen.AttrInvisible
		case 29:
			s.pen.Flags &^= screen.AttrStrikethrough
		case 38:
			c, n, ok := extendedColor(params[i:])
			i += n
			if ok {
				s.pen.FG = c
			}
		case 39:
			s.pen.FG = screen.Color{}
		case 48:
			c, n, ok := extendedColor(params[i:])
			i += n
			if ok {
				s.pen.BG = c
			}
		case 49:
			s.pen.BG = screen.Color{}
		default:
			switch {
			case p >= 30 && p <= 37:
				s.pen.FG = screen.PaletteColor(uint8(p - 30))
			case p >= 40 && p <= 47:
				s.pen.BG = screen.PaletteColor(uint8(p - 40))
			case p >= 90 && p <= 97:
				s.pen.FG = screen.PaletteColor(uint8(p - 90 + 8))
			case p >= 100 && p <= 107:
				s.pen.BG = screen.PaletteColor(uint8(p - 100 + 8))
			}
		}
	}
}

// extendedColor decodes the parameters following SGR 38/48: "5;n" for
// a 256-color index, "2;r;g;b" for truecolor. It returns the number of
// parameters consumed so the caller can continue the list.
func extendedColor(rest []int) (screen.Color, int, bool) {
	if len(rest) == 0 {
		return screen.Color{}, 0, false
	}
	switch rest[0] {
	case 5:
		if len(rest) < 2 {
			return screen.Color{}, len(rest), false
		}
		return screen.PaletteColor(clamp8(rest[1])), 2, true
	case 2:
		if len(rest) < 4 {
			return screen.Color{}, len(rest), false
		}
		return screen.RGBColor(clamp8(rest[1]), clamp8(rest[2]), clamp8(rest[3])), 4, true
	}
	return screen.Color{}, 1, false
}

func clamp8(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
