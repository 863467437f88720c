// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package escape

// csiDispatch maps a completed CSI sequence onto an Action. Parameters
// have already been accumulated; final is the terminating byte.
func (p *Parser) csiDispatch(final byte, emit func(Action)) {
	if len(p.intermeds) > 0 {
		if len(p.intermeds) == 1 && p.intermeds[0] == '!' && final == 'p' {
			emit(SoftReset{})
			return
		}
		// DECSCUSR, DECSCPP and friends are consumed but unsupported.
		p.ignored("csi", final, emit)
		return
	}

	private := p.private == '?'
	if p.private != 0 && !private {
		// '>' and '=' prefixed sequences (DA2 aside) are xterm
		// extensions we do not implement.
		if final == 'c' && p.private == '>' {
			emit(DeviceAttributes{Secondary: true})
			return
		}
		p.ignored("csi", final, emit)
		return
	}

	switch final {
	case '@':
		emit(InsertChars{N: p.param(0, 1)})
	case 'A':
		emit(CursorRelative{DY: -p.param(0, 1)})
	case 'B':
		emit(CursorRelative{DY: p.param(0, 1)})
	case 'C':
		emit(CursorRelative{DX: p.param(0, 1)})
	case 'D':
		emit(CursorRelative{DX: -p.param(0, 1)})
	case 'E':
		emit(CursorNextLine{N: p.param(0, 1)})
	case 'F':
		emit(CursorPrevLine{N: p.param(0, 1)})
	case 'G', '`':
		emit(CursorColumn{Col: p.param(0, 1) - 1})
	case 'H', 'f':
		emit(CursorPosition{Row: p.param(0, 1) - 1, Col: p.param(1, 1) - 1})
	case 'I':
		emit(CursorForwardTabs{N: p.param(0, 1)})
	case 'J':
		emit(EraseDisplay{Mode: p.paramOrZero(0)})
	case 'K':
		emit(EraseLine{Mode: p.paramOrZero(0)})
	case 'L':
		emit(InsertLines{N: p.param(0, 1)})
	case 'M':
		emit(DeleteLines{N: p.param(0, 1)})
	case 'P':
		emit(DeleteChars{N: p.param(0, 1)})
	case 'S':
		emit(ScrollUp{N: p.param(0, 1)})
	case 'T':
		emit(ScrollDown{N: p.param(0, 1)})
	case 'X':
		emit(EraseChars{N: p.param(0, 1)})
	case 'Z':
		emit(CursorBackwardTabs{N: p.param(0, 1)})
	case 'b':
		emit(Repeat{N: p.param(0, 1)})
	case 'c':
		emit(DeviceAttributes{})
	case 'd':
		emit(CursorRow{Row: p.param(0, 1) - 1})
	case 'g':
		emit(TabClear{Mode: p.paramOrZero(0)})
	case 'h', 'l':
		enable := final == 'h'
		if len(p.params) == 0 {
			p.ignored("csi", final, emit)
			return
		}
		for _, m := range p.params {
			emit(SetMode{Mode: m, Private: private, Enable: enable})
		}
	case 'm':
		if private {
			p.ignored("csi", final, emit)
			return
		}
		params := p.params
		if len(params) == 0 {
			params = []int{0}
		}
		// The parameter slice is reused across sequences; actions may
		// outlive the next Parse call.
		sgr := make([]int, len(params))
		copy(sgr, params)
		emit(SGR{Params: sgr})
	case 'n':
		switch p.paramOrZero(0) {
		case 5, 6:
			emit(DeviceStatusReport{Mode: p.paramOrZero(0)})
		default:
			p.ignored("csi", final, emit)
		}
	case 'r':
		if private {
			p.ignored("csi", final, emit)
			return
		}
		emit(SetScrollRegion{
			Top:    p.param(0, 1) - 1,
			Bottom: p.paramOrZero(1) - 1, // -1 selects the last row
			Full:   len(p.params) == 0,
		})
	case 's':
		emit(SaveCursor{})
	case 'u':
		emit(RestoreCursor{})
	case 't':
		// Window manipulation (XTWINOPS).
		p.ignored("csi", final, emit)
	default:
		p.ignored("csi", final, emit)
	}
}
