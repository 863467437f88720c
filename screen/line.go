package screen

// Line is one terminal row: a fixed-width run of cells plus the
// bookkeeping the damage tracker and the reflow algorithm need.
type Line struct {
	cells []Cell

	// gen increments on every mutation; renderers compare generations
	// to decide whether cached row geometry is still valid.
	gen uint64

	// dirty marks the line as changed since the damage set was last
	// consumed.
	dirty bool

	// wrapped is set when this line is a soft continuation of the
	// previous one. Reflow joins wrapped runs back into logical lines.
	wrapped bool
}

// NewLine returns a blank line of the given width.
func NewLine(width int) Line {
	cells := make([]Cell, width)
	for i := range cells {
		cells[i] = Blank(Attributes{})
	}
	return Line{cells: cells, dirty: true}
}

// Width returns the number of cells in the line.
func (l *Line) Width() int { return len(l.cells) }

// Cells returns the cell slice. Callers must treat it as read-only;
// mutations go through the Set/Fill/Erase methods so generation and
// dirty tracking stay correct.
func (l *Line) Cells() []Cell { return l.cells }

// Cell returns the cell at x, or a blank cell when out of range.
func (l *Line) Cell(x int) Cell {
	if x < 0 || x >= len(l.cells) {
		return Blank(Attributes{})
	}
	return l.cells[x]
}

// Generation returns the mutation counter.
func (l *Line) Generation() uint64 { return l.gen }

// Dirty reports whether the line changed since ClearDirty.
func (l *Line) Dirty() bool { return l.dirty }

// ClearDirty resets the dirty flag after a render pass consumed it.
func (l *Line) ClearDirty() { l.dirty = false }

// SetDirty marks the line changed.
func (l *Line) SetDirty() {
	l.dirty = true
	l.gen++
}

// Wrapped reports whether the line soft-wraps from the previous one.
func (l *Line) Wrapped() bool { return l.wrapped }

// SetWrapped records the soft-wrap flag.
func (l *Line) SetWrapped(w bool) {
	if l.wrapped != w {
		l.wrapped = w
		l.SetDirty()
	}
}

// Set stores a cell at x. Setting the leading half of a wide character
// or overwriting one keeps the wide-cell invariant: the partner cell is
// replaced with a blank or continuation as needed.
func (l *Line) Set(x int, c Cell) {
	if x < 0 || x >= len(l.cells) {
		return
	}

	// Overwriting the trailing half of a wide pair orphans the lead;
	// overwriting the lead orphans the trailer. Blank the partner so a
	// half-glyph is never displayed.
	if old := l.cells[x]; old.IsContinuation() && x > 0 && l.cells[x-1].Width == 2 {
		l.cells[x-1] = Blank(l.cells[x-1].Attrs)
	} else if old.Width == 2 && x+1 < len(l.cells) {
		l.cells[x+1] = Blank(l.cells[x+1].Attrs)
	}

	l.cells[x] = c
	if c.Width == 2 && x+1 < len(l.cells) {
		l.cells[x+1] = continuation(c.Attrs)
	}
	l.SetDirty()
}

// Fill replaces cells in [from, to) with copies of c.
func (l *Line) Fill(from, to int, c Cell) {
	from = max(from, 0)
	to = min(to, len(l.cells))
	for x := from; x < to; x++ {
		l.cells[x] = c
	}
	if to > from {
		l.SetDirty()
	}
}

// Erase resets cells in [from, to) to blanks carrying attrs, per
// terminal erase semantics (current background, not default).
func (l *Line) Erase(from, to int, attrs Attributes) {
	l.Fill(from, to, Blank(attrs.SGROnly()))
}

// InsertCell shifts cells right from x and inserts c, dropping the cell
// that falls off the end of the line.
func (l *Line) InsertCell(x int, c Cell) {
	if x < 0 || x >= len(l.cells) {
		return
	}
	copy(l.cells[x+1:], l.cells[x:len(l.cells)-1])
	l.cells[x] = c
	l.SetDirty()
}

// DeleteCell removes the cell at x, shifting the remainder left and
// filling the vacated last column with a blank carrying attrs.
func (l *Line) DeleteCell(x int, attrs Attributes) {
	if x < 0 || x >= len(l.cells) {
		return
	}
	copy(l.cells[x:], l.cells[x+1:])
	l.cells[len(l.cells)-1] = Blank(attrs.SGROnly())
	l.SetDirty()
}

// Resize grows or truncates the line to the given width, padding with
// blanks.
func (l *Line) Resize(width int) {
	if width == len(l.cells) {
		return
	}
	if width < len(l.cells) {
		l.cells = l.cells[:width]
	} else {
		for len(l.cells) < width {
			l.cells = append(l.cells, Blank(Attributes{}))
		}
	}
	l.SetDirty()
}

// trimTrailingBlanks returns the cells with default-attribute trailing
// blanks removed. Reflow uses this so re-wrapped text does not carry
// phantom padding.
func (l *Line) trimTrailingBlanks() []Cell {
	cells := l.cells
	for len(cells) > 0 {
		last := cells[len(cells)-1]
		if last.IsBlank() && last.Attrs == (Attributes{}) {
			cells = cells[:len(cells)-1]
			continue
		}
		break
	}
	return cells
}
