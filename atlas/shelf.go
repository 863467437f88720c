package atlas

// shelfAllocator packs variable-width rectangles into horizontal
// shelves. Items are placed left to right on the first shelf tall
// enough; a new shelf opens below when none fits. The last shelf may
// grow to accommodate a taller item.
type shelfAllocator struct {
	width   int
	height  int
	padding int
	shelves []shelf
}

type shelf struct {
	y      int
	height int
	x      int
}

func newShelfAllocator(width, height, padding int) *shelfAllocator {
	return &shelfAllocator{
		width:   width,
		height:  height,
		padding: padding,
		shelves: make([]shelf, 0, 16),
	}
}

// allocate finds space for a w by h rectangle. Returns the position
// and false when the atlas has no room left.
func (a *shelfAllocator) allocate(w, h int) (x, y int, ok bool) {
	paddedW := w + a.padding
	paddedH := h + a.padding

	for i := range a.shelves {
		s := &a.shelves[i]
		if s.x+paddedW > a.width {
			continue
		}
		if h > s.height {
			// Too tall for this shelf; the last shelf can grow if
			// there is room below it.
			if i == len(a.shelves)-1 && s.y+paddedH <= a.height {
				s.height = h
				x, y = s.x, s.y
				s.x += paddedW
				return x, y, true
			}
			continue
		}
		x, y = s.x, s.y
		s.x += paddedW
		return x, y, true
	}

	newY := 0
	if len(a.shelves) > 0 {
		last := a.shelves[len(a.shelves)-1]
		newY = last.y + last.height + a.padding
	}
	if newY+paddedH > a.height {
		return -1, -1, false
	}
	a.shelves = append(a.shelves, shelf{y: newY, height: h, x: paddedW})
	return 0, newY, true
}

// reset discards all shelves.
func (a *shelfAllocator) reset() {
	a.shelves = a.shelves[:0]
}
