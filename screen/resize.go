package screen

// Resize changes the visible dimensions to rows x cols, preserving
// content. A row-count change truncates or pads against scrollback: a
// shrinking grid pushes its top rows into history, a growing one
// reveals history before padding with blanks. A column-count change
// re-flows soft-wrapped runs to the new width, never splitting a wide
// character across the wrap boundary. The entire grid is damaged.
//
// Dimensions must be positive; callers validate before calling.
func (s *Screen) Resize(rows, cols int) {
	rows = max(rows, 1)
	cols = max(cols, 1)

	if cols != s.cols {
		s.reflow(cols)
	}

	switch {
	case rows < s.rows:
		// Shrink: top visible rows become history (or are dropped
		// when scrollback is disabled or full).
		s.rows = rows
		if excess := s.ScrollbackLen() - s.maxScrollback; excess > 0 {
			s.lines = s.lines[excess:]
		}
	case rows > s.rows:
		// Grow: reveal history first, then pad with blanks.
		reveal := min(rows-s.rows, s.ScrollbackLen())
		s.rows += reveal
		for s.rows < rows {
			s.lines = append(s.lines, NewLine(s.cols))
			s.rows++
		}
	}

	s.DamageAll()
}

// reflow re-justifies all content to a new column count. Soft-wrapped
// runs (lines flagged as wrapped continuations) are joined into logical
// lines and re-wrapped, so no character is lost or duplicated.
func (s *Screen) reflow(cols int) {
	visibleBefore := s.rows

	var relaid []Line
	for i := 0; i < len(s.lines); {
		// Collect one logical line: a head plus its soft-wrapped
		// continuations. Interior segments keep every cell; only the
		// final segment drops its trailing blanks, so printed content
		// survives while viewport padding does not.
		var run []Cell
		last := i
		for last+1 < len(s.lines) && s.lines[last+1].wrapped {
			run = append(run, s.lines[last].Cells()...)
			last++
		}
		run = append(run, s.lines[last].trimTrailingBlanks()...)
		i = last + 1
		relaid = append(relaid, wrapCells(run, cols)...)
	}

	// Drop trailing fully-blank lines so unused viewport rows do not
	// push content into scrollback; they are re-padded below.
	for len(relaid) > 1 {
		last := &relaid[len(relaid)-1]
		if !last.wrapped && len(last.trimTrailingBlanks()) == 0 {
			relaid = relaid[:len(relaid)-1]
			continue
		}
		break
	}

	if len(relaid) == 0 {
		relaid = append(relaid, NewLine(cols))
	}

	s.cols = cols
	s.lines = relaid

	// Keep the visible height stable: pad with blanks when re-wrapping
	// shortened the buffer below the viewport height.
	for len(s.lines) < visibleBefore {
		s.lines = append(s.lines, NewLine(cols))
	}
	s.rows = visibleBefore
	if excess := s.ScrollbackLen() - s.maxScrollback; excess > 0 {
		s.lines = s.lines[excess:]
	}
}

// wrapCells lays a logical line's cells out into physical lines of the
// given width. Wide characters wrap early rather than splitting: when
// one column remains and the next cell is 2 wide, the column is padded
// and the cell starts the next line.
func wrapCells(cells []Cell, cols int) []Line {
	lines := []Line{NewLine(cols)}
	cur := &lines[0]
	x := 0

	flush := func() {
		lines = append(lines, NewLine(cols))
		cur = &lines[len(lines)-1]
		cur.wrapped = true
		x = 0
	}

	for i := 0; i < len(cells); i++ {
		c := cells[i]
		if c.IsContinuation() {
			// The trailing half is re-created when its lead lands.
			continue
		}
		w := int(c.Width)
		if w == 0 {
			w = 1
		}
		if x+w > cols && x > 0 {
			flush()
		}
		cur.Set(x, c)
		x += w
	}
	return lines
}
