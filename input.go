// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package term

import "fmt"

// Modifiers is the keyboard modifier set held during an input event.
type Modifiers uint8

const (
	ModShift Modifiers = 1 << iota
	ModAlt
	ModCtrl
	ModSuper
)

// KeyCode names a non-character key. Character keys use KeyChar with
// the rune filled in.
type KeyCode uint8

const (
	KeyChar KeyCode = iota
	KeyUp
	KeyDown
	KeyRight
	KeyLeft
	KeyHome
	KeyEnd
	KeyPageUp
	KeyPageDown
	KeyInsert
	KeyDelete
	KeyBackspace
	KeyTab
	KeyEnter
	KeyEscape
	KeyF1
	KeyF2
	KeyF3
	KeyF4
	KeyF5
	KeyF6
	KeyF7
	KeyF8
	KeyF9
	KeyF10
	KeyF11
	KeyF12
)

// KeyEvent is one key press to encode for the application.
type KeyEvent struct {
	Code KeyCode
	Rune rune // valid when Code == KeyChar
	Mods Modifiers
}

// MouseButton identifies the button or wheel direction of a mouse
// event.
type MouseButton uint8

const (
	MouseLeft MouseButton = iota
	MouseMiddle
	MouseRight
	MouseWheelUp
	MouseWheelDown
)

// MouseEvent is one pointer event in cell coordinates.
type MouseEvent struct {
	X, Y    int
	Button  MouseButton
	Press   bool
	Release bool
	Motion  bool
	Mods    Modifiers
}

// ambiguousCtrl holds the characters whose Ctrl mapping collides with
// an existing control byte (Ctrl-I is TAB, Ctrl-M is CR, Ctrl-[ is
// ESC). These encode in the CSI u form so the application can tell
// them apart.
func ambiguousCtrl(r rune) bool {
	switch r {
	case 'i', 'I', 'm', 'M', '[', '{', '@':
		return true
	}
	return false
}

// xtermMods is the parameter encoding of a modifier set: 1 plus the
// shift/alt/ctrl bits.
func xtermMods(m Modifiers) int {
	v := 1
	if m&ModShift != 0 {
		v += 1
	}
	if m&ModAlt != 0 {
		v += 2
	}
	if m&ModCtrl != 0 {
		v += 4
	}
	return v
}

// EncodeKey translates a key press into the byte sequence the
// application expects, honoring application cursor key mode. The
// result is empty for events that do not produce input.
func (s *State) EncodeKey(ev KeyEvent) []byte {
	switch ev.Code {
	case KeyChar:
		return s.encodeChar(ev)
	case KeyUp, KeyDown, KeyRight, KeyLeft, KeyHome, KeyEnd:
		return s.encodeCursorKey(ev)
	case KeyPageUp, KeyPageDown, KeyInsert, KeyDelete:
		return encodeTilde(ev)
	case KeyBackspace:
		if ev.Mods&ModAlt != 0 {
			return []byte{0x1b, 0x7f}
		}
		return []byte{0x7f}
	case KeyTab:
		if ev.Mods&ModShift != 0 {
			return []byte("\x1b[Z")
		}
		return []byte{'\t'}
	case KeyEnter:
		if ev.Mods&ModAlt != 0 {
			return []byte{0x1b, '\r'}
		}
		return []byte{'\r'}
	case KeyEscape:
		return []byte{0x1b}
	default:
		return encodeFunctionKey(ev)
	}
}

func (s *State) encodeChar(ev KeyEvent) []byte {
	r := ev.Rune
	if r == 0 {
		return nil
	}

	if ev.Mods&ModCtrl != 0 {
		if ambiguousCtrl(r) {
			// CSI u disambiguates Ctrl chords that collide with plain
			// control bytes.
			return fmt.Appendf(nil, "\x1b[%d;%du", r, xtermMods(ev.Mods))
		}
		if ctrl, ok := ctrlByte(r); ok {
			if ev.Mods&ModAlt != 0 {
				return []byte{0x1b, ctrl}
			}
			return []byte{ctrl}
		}
	}

	buf := make([]byte, 0, 5)
	if ev.Mods&ModAlt != 0 {
		buf = append(buf, 0x1b)
	}
	return append(buf, string(r)...)
}

// ctrlByte maps a character to its control byte (Ctrl-A is 0x01,
// Ctrl-Space is NUL).
func ctrlByte(r rune) (byte, bool) {
	switch {
	case r >= 'a' && r <= 'z':
		return byte(r-'a') + 1, true
	case r >= 'A' && r <= 'Z':
		return byte(r-'A') + 1, true
	case r >= '@' && r <= '_':
		return byte(r-'@'), true
	case r == ' ':
		return 0, true
	case r == '?':
		return 0x7f, true
	}
	return 0, false
}

func (s *State) encodeCursorKey(ev KeyEvent) []byte {
	var final byte
	switch ev.Code {
	case KeyUp:
		final = 'A'
	case KeyDown:
		final = 'B'
	case KeyRight:
		final = 'C'
	case KeyLeft:
		final = 'D'
	case KeyHome:
		final = 'H'
	case KeyEnd:
		final = 'F'
	}
	if ev.Mods != 0 {
		return fmt.Appendf(nil, "\x1b[1;%d%c", xtermMods(ev.Mods), final)
	}
	if s.appCursorKeys {
		return []byte{0x1b, 'O', final}
	}
	return []byte{0x1b, '[', final}
}

func encodeTilde(ev KeyEvent) []byte {
	var n int
	switch ev.Code {
	case KeyInsert:
		n = 2
	case KeyDelete:
		n = 3
	case KeyPageUp:
		n = 5
	case KeyPageDown:
		n = 6
	}
	if ev.Mods != 0 {
		return fmt.Appendf(nil, "\x1b[%d;%d~", n, xtermMods(ev.Mods))
	}
	return fmt.Appendf(nil, "\x1b[%d~", n)
}

func encodeFunctionKey(ev KeyEvent) []byte {
	// F1-F4 are SS3 escapes from the VT220 keypad; F5 onward use the
	// tilde form with historical gaps in the numbering.
	if ev.Code >= KeyF1 && ev.Code <= KeyF4 {
		final := byte('P' + ev.Code - KeyF1)
		if ev.Mods != 0 {
			return fmt.Appendf(nil, "\x1b[1;%d%c", xtermMods(ev.Mods), final)
		}
		return []byte{0x1b, 'O', final}
	}
	var n int
	switch ev.Code {
	case KeyF5:
		n = 15
	case KeyF6:
		n = 17
	case KeyF7:
		n = 18
	case KeyF8:
		n = 19
	case KeyF9:
		n = 20
	case KeyF10:
		n = 21
	case KeyF11:
		n = 23
	case KeyF12:
		n = 24
	default:
		return nil
	}
	if ev.Mods != 0 {
		return fmt.Appendf(nil, "\x1b[%d;%d~", n, xtermMods(ev.Mods))
	}
	return fmt.Appendf(nil, "\x1b[%d~", n)
}

// EncodeMouse translates a pointer event into a report for the
// application, or nil when the active tracking mode does not report
// it.
func (s *State) EncodeMouse(ev MouseEvent) []byte {
	switch s.mouse {
	case MouseNone:
		return nil
	case MouseX10:
		if !ev.Press {
			return nil
		}
	case MouseClick:
		if ev.Motion {
			return nil
		}
	case MouseDrag:
		if ev.Motion && ev.Button > MouseRight {
			return nil
		}
	}

	b := buttonCode(ev)
	if s.sgrMouse {
		final := byte('M')
		if ev.Release {
			final = 'm'
		}
		return fmt.Appendf(nil, "\x1b[<%d;%d;%d%c", b, ev.X+1, ev.Y+1, final)
	}

	if ev.Release {
		// Legacy reports cannot name the released button; 3 plus the
		// surviving modifier bits means "release".
		b = 3 | (b & (4 | 8 | 16 | 32))
	}
	// Legacy encoding offsets everything by 32 and cannot express
	// coordinates past 223.
	x := min(ev.X+1, 222)
	y := min(ev.Y+1, 222)
	return []byte{0x1b, '[', 'M', byte(32 + b), byte(32 + x), byte(32 + y)}
}

func buttonCode(ev MouseEvent) int {
	var b int
	switch ev.Button {
	case MouseLeft:
		b = 0
	case MouseMiddle:
		b = 1
	case MouseRight:
		b = 2
	case MouseWheelUp:
		b = 64
	case MouseWheelDown:
		b = 65
	}
	if ev.Motion {
		b |= 32
	}
	if ev.Mods&ModShift != 0 {
		b |= 4
	}
	if ev.Mods&ModAlt != 0 {
		b |= 8
	}
	if ev.Mods&ModCtrl != 0 {
		b |= 16
	}
	return b
}

// EncodePaste wraps pasted text in the bracketed-paste markers when
// the application asked for them.
func (s *State) EncodePaste(text string) []byte {
	if !s.bracketedPaste {
		return []byte(text)
	}
	out := make([]byte, 0, len(text)+12)
	out = append(out, "\x1b[200~"...)
	out = append(out, text...)
	return append(out, "\x1b[201~"...)
}

// EncodeFocus reports focus gain/loss when mode 1004 is set.
func (s *State) EncodeFocus(gained bool) []byte {
	if !s.focusEvents {
		return nil
	}
	if gained {
		return []byte("\x1b[I")
	}
	return []byte("\x1b[O")
}
