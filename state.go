// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package term

import (
	"fmt"
	"log/slog"

	"github.com/gogpu/term/escape"
	"github.com/gogpu/term/screen"
)

// MouseMode selects which pointer events are reported to the
// application.
type MouseMode uint8

const (
	MouseNone   MouseMode = iota
	MouseX10              // mode 9: button presses only, no modifiers
	MouseClick            // mode 1000: presses and releases
	MouseDrag             // mode 1002: clicks plus drag motion
	MouseMotion           // mode 1003: all motion
)

// Cursor is the visible cursor position and state.
type Cursor struct {
	X, Y    int
	Visible bool
}

// Hyperlink is an OSC 8 target. Cells reference it by the opaque id
// stored in their attributes.
type Hyperlink struct {
	ID  string
	URI string
}

// savedCursor is the state captured by DECSC and restored by DECRC.
// Each screen (primary, alternate) keeps its own.
type savedCursor struct {
	x, y     int
	wrapNext bool
	pen      screen.Attributes
	origin   bool
}

// Snapshot is a consistent view of the model taken between action
// batches. Lines alias the live grid: a snapshot is valid until the
// next Apply and must not be retained across frames.
type Snapshot struct {
	Seq        uint64
	Rows, Cols int
	Lines      []*screen.Line
	Cursor     Cursor
	Damage     []int
	Title      string
}

// State is the terminal model: the screens, the cursor, the pen, and
// every mode the escape stream can toggle. It consumes decoded actions
// one at a time and is not safe for concurrent use; Session serializes
// access.
type State struct {
	primary *screen.Screen
	alt     *screen.Screen

	rows, cols int
	scrollback int

	cursorX, cursorY int
	wrapNext         bool
	cursorVisible    bool

	pen screen.Attributes

	// scrollTop/scrollBottom delimit the DECSTBM region, half-open.
	scrollTop, scrollBottom int

	tabStops []bool

	altActive bool
	saved     [2]savedCursor // indexed by altActive

	g0, g1   byte
	shiftOut bool

	insertMode      bool
	autoWrap        bool
	originMode      bool
	reverseWrap     bool
	linefeedNewline bool
	reverseVideo    bool
	appCursorKeys   bool
	appKeypad       bool
	bracketedPaste  bool
	focusEvents     bool
	mouse           MouseMode
	sgrMouse        bool

	palette *Palette
	title   string

	links    []Hyperlink
	linkIDs  map[Hyperlink]uint32
	lastRune rune

	responses []byte
	seq       uint64

	// OnBell, when set, is invoked for each BEL in the stream.
	OnBell func()
}

// NewState creates a terminal of the given visible size with the given
// scrollback bound for the primary screen. The alternate screen never
// keeps scrollback.
func NewState(rows, cols, scrollback int) *State {
	rows = max(rows, 1)
	cols = max(cols, 1)
	s := &State{
		primary:       screen.NewScreen(rows, cols, scrollback),
		alt:           screen.NewScreen(rows, cols, 0),
		rows:          rows,
		cols:          cols,
		scrollback:    scrollback,
		cursorVisible: true,
		autoWrap:      true,
		scrollBottom:  rows,
		g0:            'B',
		g1:            'B',
		palette:       NewPalette(),
		linkIDs:       make(map[Hyperlink]uint32),
	}
	s.resetTabs()
	return s
}

// screen returns the active screen.
func (s *State) screen() *screen.Screen {
	if s.altActive {
		return s.alt
	}
	return s.primary
}

// Screen exposes the active grid for rendering and tests.
func (s *State) Screen() *screen.Screen { return s.screen() }

// Size returns the visible dimensions.
func (s *State) Size() (rows, cols int) { return s.rows, s.cols }

// Cursor returns the cursor position and visibility.
func (s *State) Cursor() Cursor {
	return Cursor{X: s.cursorX, Y: s.cursorY, Visible: s.cursorVisible}
}

// Pen returns the current attributes applied to printed cells.
func (s *State) Pen() screen.Attributes { return s.pen }

// Title returns the window title set by OSC 0/2.
func (s *State) Title() string { return s.title }

// Palette returns the live color palette.
func (s *State) Palette() *Palette { return s.palette }

// AltScreenActive reports whether the alternate screen is displayed.
func (s *State) AltScreenActive() bool { return s.altActive }

// BracketedPasteEnabled reports whether pasted text must be wrapped in
// the ESC [200~ / ESC [201~ markers.
func (s *State) BracketedPasteEnabled() bool { return s.bracketedPaste }

// Mouse returns the active mouse reporting mode and whether reports
// use the SGR encoding.
func (s *State) Mouse() (MouseMode, bool) { return s.mouse, s.sgrMouse }

// HyperlinkByID resolves a cell attribute hyperlink id.
func (s *State) HyperlinkByID(id uint32) (Hyperlink, bool) {
	if id == 0 || int(id) > len(s.links) {
		return Hyperlink{}, false
	}
	return s.links[id-1], true
}

// TakeResponses returns bytes the model wants written back to the
// application (DSR, DA, color query replies) and clears the buffer.
func (s *State) TakeResponses() []byte {
	r := s.responses
	s.responses = nil
	return r
}

func (s *State) respond(format string, args ...any) {
	s.responses = fmt.Appendf(s.responses, format, args...)
}

// Snapshot captures the visible grid, consuming the damage set. The
// sequence number increases with every snapshot.
func (s *State) Snapshot() Snapshot {
	s.seq++
	scr := s.screen()
	lines := make([]*screen.Line, s.rows)
	for y := 0; y < s.rows; y++ {
		lines[y] = scr.Line(y)
	}
	return Snapshot{
		Seq:    s.seq,
		Rows:   s.rows,
		Cols:   s.cols,
		Lines:  lines,
		Cursor: s.Cursor(),
		Damage: scr.TakeDamage(),
		Title:  s.title,
	}
}

// Resize changes the terminal dimensions. Content re-flows on the
// primary screen; the scroll region resets to the full height and the
// cursor is clamped. Non-positive dimensions are rejected and the
// previous geometry kept.
func (s *State) Resize(rows, cols int) error {
	if rows <= 0 || cols <= 0 {
		return &ResizeError{Rows: rows, Cols: cols}
	}
	if rows == s.rows && cols == s.cols {
		return nil
	}
	s.primary.Resize(rows, cols)
	s.alt.Resize(rows, cols)
	s.rows = rows
	s.cols = cols
	s.scrollTop = 0
	s.scrollBottom = rows
	s.cursorX = min(s.cursorX, cols-1)
	s.cursorY = min(s.cursorY, rows-1)
	s.wrapNext = false
	s.resizeTabs(cols)
	Logger().Info("terminal resized", slog.Int("rows", rows), slog.Int("cols", cols))
	return nil
}

// region returns the active scroll region.
func (s *State) region() screen.Region {
	return screen.Region{Top: s.scrollTop, Bottom: s.scrollBottom}
}

// Apply folds one decoded action into the model.
func (s *State) Apply(act escape.Action) {
	switch a := act.(type) {
	case escape.Print:
		s.printRune(a.Rune)
	case escape.Control:
		s.applyControl(a.Code)

	case escape.CursorPosition:
		s.moveAbsolute(a.Col, a.Row)
	case escape.CursorRelative:
		s.moveRelative(a.DX, a.DY)
	case escape.CursorColumn:
		s.cursorX = clampInt(a.Col, 0, s.cols-1)
		s.wrapNext = false
	case escape.CursorRow:
		s.moveAbsolute(s.cursorX, a.Row)
	case escape.CursorNextLine:
		s.moveRelative(0, a.N)
		s.cursorX = 0
	case escape.CursorPrevLine:
		s.moveRelative(0, -a.N)
		s.cursorX = 0

	case escape.SaveCursor:
		s.saveCursor()
	case escape.RestoreCursor:
		s.restoreCursor()

	case escape.EraseDisplay:
		s.eraseDisplay(a.Mode)
	case escape.EraseLine:
		s.eraseLine(a.Mode)
	case escape.InsertChars:
		s.insertChars(a.N)
	case escape.DeleteChars:
		s.deleteChars(a.N)
	case escape.EraseChars:
		s.eraseChars(a.N)
	case escape.InsertLines:
		s.insertLines(a.N)
	case escape.DeleteLines:
		s.deleteLines(a.N)
	case escape.Repeat:
		s.repeatLast(a.N)

	case escape.SetScrollRegion:
		s.setScrollRegion(a)
	case escape.ScrollUp:
		s.screen().ScrollUp(s.region(), a.N)
	case escape.ScrollDown:
		s.screen().ScrollDown(s.region(), a.N)

	case escape.SGR:
		s.applySGR(a.Params)
	case escape.SetMode:
		s.setMode(a)

	case escape.TabSet:
		if s.cursorX < len(s.tabStops) {
			s.tabStops[s.cursorX] = true
		}
	case escape.TabClear:
		s.clearTabs(a.Mode)
	case escape.CursorForwardTabs:
		for i := 0; i < a.N; i++ {
			s.horizontalTab()
		}
	case escape.CursorBackwardTabs:
		for i := 0; i < a.N; i++ {
			s.backwardTab()
		}

	case escape.SelectCharset:
		if a.G1 {
			s.g1 = a.Charset
		} else {
			s.g0 = a.Charset
		}

	case escape.Index:
		s.index()
	case escape.ReverseIndex:
		s.reverseIndex()
	case escape.NextLine:
		s.index()
		s.cursorX = 0

	case escape.FullReset:
		s.fullReset()
	case escape.SoftReset:
		s.softReset()

	case escape.SetTitle:
		s.title = a.Title
	case escape.SetHyperlink:
		s.setHyperlink(a.ID, a.URI)
	case escape.SetPaletteColor:
		s.setPaletteColor(a.Index, a.Spec)
	case escape.QueryColor:
		s.queryColor(a.Index)
	case escape.ResetColors:
		s.resetColors(a)

	case escape.DeviceStatusReport:
		s.deviceStatus(a.Mode)
	case escape.DeviceAttributes:
		if a.Secondary {
			s.respond("\x1b[>0;0;0c")
		} else {
			s.respond("\x1b[?63;4;6c")
		}

	case escape.Ignored:
		Logger().Debug("ignored sequence",
			slog.String("kind", a.Kind), slog.String("final", string(rune(a.Final))))
	}
}

// printRune places one code point at the cursor, handling charset
// translation, combining marks, wide characters, pending wrap and
// insert mode.
func (s *State) printRune(r rune) {
	r = s.mapCharset(r)
	cluster := string(r)
	w := screen.ClusterWidth(cluster, false)
	scr := s.screen()

	if w == 0 {
		// Combining mark: attach to the last printed cell. With a wrap
		// pending the cursor still sits on that cell; otherwise it is
		// one column past it (two past a wide character's lead).
		x := s.cursorX
		if !s.wrapNext {
			x--
		}
		if x > 0 && scr.Cell(x, s.cursorY).IsContinuation() {
			x--
		}
		if x >= 0 {
			line := scr.Line(s.cursorY)
			c := line.Cell(x)
			c.AppendMark(cluster)
			line.Set(x, c)
		}
		return
	}

	if s.joinPrevCluster(scr, cluster) {
		return
	}

	if s.wrapNext {
		if s.autoWrap {
			s.wrap(scr)
		}
		s.wrapNext = false
	}

	// A wide character that does not fit in the remaining columns
	// wraps early, leaving the last column padded.
	if w == 2 && s.cursorX+2 > s.cols {
		if s.autoWrap {
			s.wrap(scr)
		} else {
			s.cursorX = max(s.cols-2, 0)
		}
	}

	if s.insertMode {
		line := scr.Line(s.cursorY)
		for i := 0; i < w; i++ {
			line.InsertCell(s.cursorX, screen.Blank(s.pen.SGROnly()))
		}
	}

	scr.Set(s.cursorX, s.cursorY, screen.Cell{Text: cluster, Width: uint8(w), Attrs: s.pen})
	s.lastRune = r

	if s.cursorX+w >= s.cols {
		// Cursor rests on the printed cell; the wrap is deferred until
		// the next printable so a trailing newline does not double-wrap.
		s.wrapNext = s.autoWrap
	} else {
		s.cursorX += w
	}
}

// joinPrevCluster absorbs a printable rune into the previously printed
// cell when the combined text still segments as a single grapheme
// cluster, so ZWJ emoji sequences and regional-indicator pairs occupy
// one cell. Reports whether the rune was absorbed.
func (s *State) joinPrevCluster(scr *screen.Screen, cluster string) bool {
	x := s.cursorX
	if !s.wrapNext {
		x--
	}
	if x > 0 && scr.Cell(x, s.cursorY).IsContinuation() {
		x--
	}
	if x < 0 {
		return false
	}
	line := scr.Line(s.cursorY)
	c := line.Cell(x)
	if c.IsBlank() || len(screen.Graphemes(c.Text+cluster)) != 1 {
		return false
	}
	c.Text += cluster
	line.Set(x, c)
	return true
}

// wrap moves to column zero of the next row, scrolling at the region
// bottom, and flags the new row as a soft continuation.
func (s *State) wrap(scr *screen.Screen) {
	s.cursorX = 0
	if s.cursorY == s.scrollBottom-1 {
		scr.ScrollUp(s.region(), 1)
	} else if s.cursorY < s.rows-1 {
		s.cursorY++
	}
	scr.Line(s.cursorY).SetWrapped(true)
}

func (s *State) applyControl(code byte) {
	switch code {
	case escape.BEL:
		if s.OnBell != nil {
			s.OnBell()
		}
	case escape.BS:
		if s.cursorX > 0 {
			s.cursorX--
		} else if s.reverseWrap && s.autoWrap && s.cursorY > s.scrollTop {
			s.cursorY--
			s.cursorX = s.cols - 1
		}
		s.wrapNext = false
	case escape.HT:
		s.horizontalTab()
	case escape.LF, escape.VT, escape.FF:
		s.index()
		if s.linefeedNewline {
			s.cursorX = 0
		}
	case escape.CR:
		s.cursorX = 0
		s.wrapNext = false
	case escape.SO:
		s.shiftOut = true
	case escape.SI:
		s.shiftOut = false
	}
}

// index moves down one row, scrolling when the cursor is on the region
// bottom.
func (s *State) index() {
	s.wrapNext = false
	if s.cursorY == s.scrollBottom-1 {
		s.screen().ScrollUp(s.region(), 1)
	} else if s.cursorY < s.rows-1 {
		s.cursorY++
	}
}

func (s *State) reverseIndex() {
	s.wrapNext = false
	if s.cursorY == s.scrollTop {
		s.screen().ScrollDown(s.region(), 1)
	} else if s.cursorY > 0 {
		s.cursorY--
	}
}

// moveAbsolute places the cursor, applying origin-mode offsets. With
// DECOM set, coordinates are region-relative and clamped inside it.
func (s *State) moveAbsolute(x, y int) {
	s.wrapNext = false
	if s.originMode {
		y += s.scrollTop
		s.cursorY = clampInt(y, s.scrollTop, s.scrollBottom-1)
	} else {
		s.cursorY = clampInt(y, 0, s.rows-1)
	}
	s.cursorX = clampInt(x, 0, s.cols-1)
}

// moveRelative moves the cursor by a delta. Vertical motion stops at
// the scroll region boundary when the cursor starts inside it.
func (s *State) moveRelative(dx, dy int) {
	s.wrapNext = false
	top, bottom := 0, s.rows-1
	if s.cursorY >= s.scrollTop {
		top = s.scrollTop
	}
	if s.cursorY < s.scrollBottom {
		bottom = s.scrollBottom - 1
	}
	s.cursorY = clampInt(s.cursorY+dy, top, bottom)
	s.cursorX = clampInt(s.cursorX+dx, 0, s.cols-1)
}

func (s *State) savedSlot() *savedCursor {
	if s.altActive {
		return &s.saved[1]
	}
	return &s.saved[0]
}

func (s *State) saveCursor() {
	*s.savedSlot() = savedCursor{
		x:        s.cursorX,
		y:        s.cursorY,
		wrapNext: s.wrapNext,
		pen:      s.pen,
		origin:   s.originMode,
	}
}

func (s *State) restoreCursor() {
	sc := *s.savedSlot()
	s.cursorX = clampInt(sc.x, 0, s.cols-1)
	s.cursorY = clampInt(sc.y, 0, s.rows-1)
	s.wrapNext = sc.wrapNext
	s.pen = sc.pen
	s.originMode = sc.origin
}

func (s *State) eraseDisplay(mode int) {
	scr := s.screen()
	switch mode {
	case 0:
		scr.EraseLine(s.cursorY, s.cursorX, s.cols, s.pen)
		for y := s.cursorY + 1; y < s.rows; y++ {
			scr.EraseLine(y, 0, s.cols, s.pen)
		}
	case 1:
		for y := 0; y < s.cursorY; y++ {
			scr.EraseLine(y, 0, s.cols, s.pen)
		}
		scr.EraseLine(s.cursorY, 0, s.cursorX+1, s.pen)
	case 2:
		for y := 0; y < s.rows; y++ {
			scr.EraseLine(y, 0, s.cols, s.pen)
		}
	case 3:
		scr.EraseScrollback()
	}
}

func (s *State) eraseLine(mode int) {
	scr := s.screen()
	switch mode {
	case 0:
		scr.EraseLine(s.cursorY, s.cursorX, s.cols, s.pen)
	case 1:
		scr.EraseLine(s.cursorY, 0, s.cursorX+1, s.pen)
	case 2:
		scr.EraseLine(s.cursorY, 0, s.cols, s.pen)
	}
}

func (s *State) insertChars(n int) {
	line := s.screen().Line(s.cursorY)
	n = min(n, s.cols-s.cursorX)
	for i := 0; i < n; i++ {
		line.InsertCell(s.cursorX, screen.Blank(s.pen.SGROnly()))
	}
}

func (s *State) deleteChars(n int) {
	line := s.screen().Line(s.cursorY)
	n = min(n, s.cols-s.cursorX)
	for i := 0; i < n; i++ {
		line.DeleteCell(s.cursorX, s.pen)
	}
}

func (s *State) eraseChars(n int) {
	s.screen().EraseLine(s.cursorY, s.cursorX, min(s.cursorX+n, s.cols), s.pen)
}

// insertLines shifts rows down within the scroll region, starting at
// the cursor row. A cursor outside the region makes it a no-op.
func (s *State) insertLines(n int) {
	if !s.region().Contains(s.cursorY) {
		return
	}
	sub := screen.Region{Top: s.cursorY, Bottom: s.scrollBottom}
	s.screen().ScrollDown(sub, n)
	s.cursorX = 0
	s.wrapNext = false
}

func (s *State) deleteLines(n int) {
	if !s.region().Contains(s.cursorY) {
		return
	}
	sub := screen.Region{Top: s.cursorY, Bottom: s.scrollBottom}
	s.screen().ScrollUp(sub, n)
	s.cursorX = 0
	s.wrapNext = false
}

func (s *State) repeatLast(n int) {
	if s.lastRune == 0 {
		return
	}
	n = min(n, s.rows*s.cols)
	for i := 0; i < n; i++ {
		s.printRune(s.lastRune)
	}
}

func (s *State) setScrollRegion(a escape.SetScrollRegion) {
	top := clampInt(a.Top, 0, s.rows-1)
	bottom := s.rows
	if !a.Full && a.Bottom >= 0 {
		bottom = clampInt(a.Bottom+1, 1, s.rows)
	}
	// DECSTBM needs at least two rows; anything smaller is ignored.
	if bottom-top < 2 {
		return
	}
	s.scrollTop = top
	s.scrollBottom = bottom
	s.moveAbsolute(0, 0)
}

func (s *State) setMode(a escape.SetMode) {
	if !a.Private {
		switch a.Mode {
		case 4:
			s.insertMode = a.Enable
		case 20:
			s.linefeedNewline = a.Enable
		default:
			Logger().Debug("unknown mode", slog.Int("mode", a.Mode), slog.Bool("enable", a.Enable))
		}
		return
	}

	switch a.Mode {
	case 1:
		s.appCursorKeys = a.Enable
	case 5:
		if s.reverseVideo != a.Enable {
			s.reverseVideo = a.Enable
			s.screen().DamageAll()
		}
	case 6:
		s.originMode = a.Enable
		s.moveAbsolute(0, 0)
	case 7:
		s.autoWrap = a.Enable
		if !a.Enable {
			s.wrapNext = false
		}
	case 9:
		s.setMouse(MouseX10, a.Enable)
	case 25:
		s.cursorVisible = a.Enable
	case 45:
		s.reverseWrap = a.Enable
	case 47:
		s.switchAltScreen(a.Enable, false, false)
	case 66:
		s.appKeypad = a.Enable
	case 1000:
		s.setMouse(MouseClick, a.Enable)
	case 1002:
		s.setMouse(MouseDrag, a.Enable)
	case 1003:
		s.setMouse(MouseMotion, a.Enable)
	case 1004:
		s.focusEvents = a.Enable
	case 1006:
		s.sgrMouse = a.Enable
	case 1047:
		s.switchAltScreen(a.Enable, true, false)
	case 1048:
		if a.Enable {
			s.saveCursor()
		} else {
			s.restoreCursor()
		}
	case 1049:
		s.switchAltScreen(a.Enable, true, true)
	case 2004:
		s.bracketedPaste = a.Enable
	default:
		Logger().Debug("unknown private mode", slog.Int("mode", a.Mode), slog.Bool("enable", a.Enable))
	}
}

func (s *State) setMouse(mode MouseMode, enable bool) {
	if enable {
		s.mouse = mode
	} else if s.mouse == mode {
		s.mouse = MouseNone
	}
}

// switchAltScreen handles the three alternate-screen modes. clearAlt
// erases the alternate screen on entry; saveRestore wraps the switch
// in DECSC/DECRC so the primary cursor survives (mode 1049).
func (s *State) switchAltScreen(enter, clearAlt, saveRestore bool) {
	if enter == s.altActive {
		return
	}
	if enter {
		if saveRestore {
			s.saveCursor()
		}
		s.altActive = true
		if clearAlt {
			for y := 0; y < s.rows; y++ {
				s.alt.EraseLine(y, 0, s.cols, screen.Attributes{})
			}
			s.cursorX, s.cursorY = 0, 0
		}
		if saveRestore {
			s.pen = screen.Attributes{}
		}
	} else {
		s.altActive = false
		if saveRestore {
			s.restoreCursor()
		}
	}
	s.wrapNext = false
	s.screen().DamageAll()
}

func (s *State) resetTabs() {
	s.tabStops = make([]bool, s.cols)
	for i := 8; i < s.cols; i += 8 {
		s.tabStops[i] = true
	}
}

// resizeTabs preserves explicit stops inside the surviving width and
// extends the default every-8 pattern into new columns.
func (s *State) resizeTabs(cols int) {
	old := s.tabStops
	s.tabStops = make([]bool, cols)
	copy(s.tabStops, old)
	for i := len(old); i < cols; i++ {
		s.tabStops[i] = i%8 == 0 && i > 0
	}
}

func (s *State) clearTabs(mode int) {
	switch mode {
	case 0:
		if s.cursorX < len(s.tabStops) {
			s.tabStops[s.cursorX] = false
		}
	case 3:
		s.tabStops = make([]bool, s.cols)
	}
}

func (s *State) horizontalTab() {
	s.wrapNext = false
	for x := s.cursorX + 1; x < s.cols; x++ {
		if s.tabStops[x] {
			s.cursorX = x
			return
		}
	}
	s.cursorX = s.cols - 1
}

func (s *State) backwardTab() {
	s.wrapNext = false
	for x := s.cursorX - 1; x > 0; x-- {
		if s.tabStops[x] {
			s.cursorX = x
			return
		}
	}
	s.cursorX = 0
}

func (s *State) setHyperlink(id, uri string) {
	if uri == "" {
		s.pen.Hyperlink = 0
		return
	}
	key := Hyperlink{ID: id, URI: uri}
	if v, ok := s.linkIDs[key]; ok {
		s.pen.Hyperlink = v
		return
	}
	s.links = append(s.links, key)
	v := uint32(len(s.links))
	s.linkIDs[key] = v
	s.pen.Hyperlink = v
}

// setPaletteColor handles OSC 4 palette writes and the OSC 10/11
// dynamic default colors (index -1 foreground, -2 background).
func (s *State) setPaletteColor(index int, spec string) {
	c, err := ParseColorSpec(spec)
	if err != nil {
		Logger().Debug("bad palette color", slog.Int("index", index), slog.String("spec", spec))
		return
	}
	switch {
	case index == -1:
		s.palette.Foreground = c
	case index == -2:
		s.palette.Background = c
	case index >= 0 && index <= 255:
		s.palette.Colors[index] = c
	default:
		return
	}
	s.screen().DamageAll()
}

// queryColor answers OSC 4/10/11 "?" queries with the current color in
// X11 rgb: form, terminated by ST.
func (s *State) queryColor(index int) {
	switch {
	case index == -1:
		s.respond("\x1b]10;%s\x1b\\", s.palette.Foreground.xParseColor())
	case index == -2:
		s.respond("\x1b]11;%s\x1b\\", s.palette.Background.xParseColor())
	case index >= 0 && index <= 255:
		s.respond("\x1b]4;%d;%s\x1b\\", index, s.palette.Colors[index].xParseColor())
	}
}

func (s *State) resetColors(a escape.ResetColors) {
	def := NewPalette()
	switch {
	case a.All:
		s.palette.Colors = def.Colors
	case a.Index == -1:
		s.palette.Foreground = def.Foreground
	case a.Index == -2:
		s.palette.Background = def.Background
	case a.Index >= 0 && a.Index <= 255:
		s.palette.Colors[a.Index] = def.Colors[a.Index]
	}
	s.screen().DamageAll()
}

func (s *State) deviceStatus(mode int) {
	switch mode {
	case 5:
		s.respond("\x1b[0n")
	case 6:
		y := s.cursorY
		if s.originMode {
			y -= s.scrollTop
		}
		s.respond("\x1b[%d;%dR", y+1, s.cursorX+1)
	}
}

// softReset is DECSTR: modes and pen return to defaults, the display
// is untouched.
func (s *State) softReset() {
	s.pen = screen.Attributes{}
	s.insertMode = false
	s.originMode = false
	s.autoWrap = true
	s.reverseWrap = false
	s.wrapNext = false
	s.cursorVisible = true
	s.appCursorKeys = false
	s.appKeypad = false
	s.scrollTop = 0
	s.scrollBottom = s.rows
	s.g0, s.g1 = 'B', 'B'
	s.shiftOut = false
	*s.savedSlot() = savedCursor{}
}

// fullReset is RIS: everything returns to the power-on state,
// including both screens, the palette and the tab stops.
func (s *State) fullReset() {
	fresh := NewState(s.rows, s.cols, s.scrollback)
	onBell := s.OnBell
	seq := s.seq
	*s = *fresh
	s.OnBell = onBell
	s.seq = seq
	s.screen().DamageAll()
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
