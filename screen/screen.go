package screen

// Region is a half-open range [Top, Bottom) of visible row indices,
// used for scroll regions (DECSTBM).
type Region struct {
	Top    int
	Bottom int
}

// Contains reports whether the visible row y falls inside the region.
func (r Region) Contains(y int) bool {
	return y >= r.Top && y < r.Bottom
}

// Screen owns the cell grid: the visible rows plus a bounded scrollback
// of historical rows. Rows are stored in one slice in physical order,
// scrollback first, so that scrolling the whole grid is an append.
//
// Screen is not safe for concurrent use. A single owner applies
// mutations and takes damage snapshots; the session layer serializes
// access.
type Screen struct {
	lines []Line

	rows, cols    int
	maxScrollback int
}

// NewScreen creates a screen with the given visible dimensions and
// scrollback bound. A maxScrollback of 0 disables scrollback (the
// alternate screen uses this).
func NewScreen(rows, cols, maxScrollback int) *Screen {
	rows = max(rows, 1)
	cols = max(cols, 1)
	lines := make([]Line, 0, rows+maxScrollback)
	for i := 0; i < rows; i++ {
		lines = append(lines, NewLine(cols))
	}
	return &Screen{lines: lines, rows: rows, cols: cols, maxScrollback: maxScrollback}
}

// Rows returns the visible row count.
func (s *Screen) Rows() int { return s.rows }

// Cols returns the column count.
func (s *Screen) Cols() int { return s.cols }

// ScrollbackLen returns the number of historical rows currently held.
func (s *Screen) ScrollbackLen() int { return len(s.lines) - s.rows }

// phys maps a visible row index to an index into the physical line slice.
func (s *Screen) phys(v int) int { return len(s.lines) - s.rows + v }

// Line returns the visible line at row v. It panics on out-of-range
// rows; callers clamp cursor positions before touching the grid.
func (s *Screen) Line(v int) *Line {
	return &s.lines[s.phys(v)]
}

// HistoryLine returns a line by physical index, 0 being the oldest
// scrollback row. Used by viewport scrolling in the host.
func (s *Screen) HistoryLine(idx int) *Line {
	return &s.lines[idx]
}

// TotalLines returns scrollback plus visible row count.
func (s *Screen) TotalLines() int { return len(s.lines) }

// Set stores a cell at (x, y) in visible coordinates.
func (s *Screen) Set(x, y int, c Cell) {
	if y < 0 || y >= s.rows {
		return
	}
	s.Line(y).Set(x, c)
}

// Cell returns the cell at (x, y) in visible coordinates.
func (s *Screen) Cell(x, y int) Cell {
	if y < 0 || y >= s.rows {
		return Blank(Attributes{})
	}
	return s.Line(y).Cell(x)
}

// EraseLine erases [from, to) of visible row y with attrs.
func (s *Screen) EraseLine(y, from, to int, attrs Attributes) {
	if y < 0 || y >= s.rows {
		return
	}
	s.Line(y).Erase(from, to, attrs)
}

// ScrollUp scrolls the given region up by n rows. Rows leaving the top
// of the region enter scrollback only when the region starts at the top
// of the grid; a region pinned below the top discards them, matching
// DECSTBM semantics. New blank rows appear at the region bottom.
func (s *Screen) ScrollUp(region Region, n int) {
	n = min(n, region.Bottom-region.Top)
	if n <= 0 {
		return
	}

	for y := region.Top; y < region.Bottom; y++ {
		s.Line(y).SetDirty()
	}

	if region.Top == 0 {
		// The region includes the original grid top, so evicted rows
		// enter scrollback. Inserting n blank lines at the physical
		// index of the region bottom shifts the phys mapping such
		// that the old region-top rows fall into history while rows
		// below the region keep their content.
		p := s.phys(region.Bottom)
		blanks := make([]Line, n)
		for i := range blanks {
			blanks[i] = NewLine(s.cols)
		}
		tail := make([]Line, len(s.lines)-p)
		copy(tail, s.lines[p:])
		s.lines = append(append(s.lines[:p], blanks...), tail...)
		if excess := s.ScrollbackLen() - s.maxScrollback; excess > 0 {
			s.lines = s.lines[excess:]
		}
		return
	}

	// Interior region: rows scrolled out are discarded.
	top := s.phys(region.Top)
	bottom := s.phys(region.Bottom)
	copy(s.lines[top:], s.lines[top+n:bottom])
	for i := 0; i < n; i++ {
		s.lines[bottom-n+i] = NewLine(s.cols)
	}
}

// ScrollDown scrolls the region down by n rows; rows leaving the bottom
// are discarded and blank rows appear at the region top.
func (s *Screen) ScrollDown(region Region, n int) {
	n = min(n, region.Bottom-region.Top)
	if n <= 0 {
		return
	}
	for y := region.Top; y < region.Bottom; y++ {
		s.Line(y).SetDirty()
	}
	top := s.phys(region.Top)
	bottom := s.phys(region.Bottom)
	copy(s.lines[top+n:bottom], s.lines[top:bottom-n])
	for i := 0; i < n; i++ {
		s.lines[top+i] = NewLine(s.cols)
	}
}

// EraseScrollback drops all historical rows, keeping the viewport.
func (s *Screen) EraseScrollback() {
	if sb := s.ScrollbackLen(); sb > 0 {
		s.lines = s.lines[sb:]
	}
}

// DamageAll marks every visible row dirty.
func (s *Screen) DamageAll() {
	for y := 0; y < s.rows; y++ {
		s.Line(y).SetDirty()
	}
}

// Damage returns the set of visible row indices mutated since the last
// TakeDamage, without clearing it.
func (s *Screen) Damage() []int {
	var dirty []int
	for y := 0; y < s.rows; y++ {
		if s.Line(y).Dirty() {
			dirty = append(dirty, y)
		}
	}
	return dirty
}

// TakeDamage returns the damage set and clears it. Called once per
// frame by the renderer's snapshot step.
func (s *Screen) TakeDamage() []int {
	dirty := s.Damage()
	for _, y := range dirty {
		s.Line(y).ClearDirty()
	}
	return dirty
}
