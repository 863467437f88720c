package term

// decGraphics maps the DEC special graphics character set (ESC ( 0)
// onto Unicode box-drawing runes.
var decGraphics = map[rune]rune{
	'`': '◆', 'a': '▒', 'b': '␉', 'c': '␌', 'd': '␍',
	'e': '␊', 'f': '°', 'g': '±', 'h': '␤', 'i': '␋',
	'j': '┘', 'k': '┐', 'l': '┌', 'm': '└', 'n': '┼',
	'o': '⎺', 'p': '⎻', 'q': '─', 'r': '⎼', 's': '⎽',
	't': '├', 'u': '┤', 'v': '┴', 'w': '┬', 'x': '│',
	'y': '≤', 'z': '≥', '{': 'π', '|': '≠', '}': '£',
	'~': '·',
}

// mapCharset translates r through the active character set. Only the
// DEC special graphics set alters output; everything else passes
// through.
func (s *State) mapCharset(r rune) rune {
	cs := s.g0
	if s.shiftOut {
		cs = s.g1
	}
	if cs != '0' {
		return r
	}
	if mapped, ok := decGraphics[r]; ok {
		return mapped
	}
	return r
}
