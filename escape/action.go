package escape

// Action is one decoded terminal instruction. The parser turns the raw
// byte stream into a sequence of Actions; the terminal model consumes
// them one at a time with a type switch.
//
// Actions are plain values so they can cross a channel between the
// reader goroutine and the model owner.
type Action interface {
	isAction()
}

// Print is a single printable code point in the current pen style.
type Print struct {
	Rune rune
}

// Control is a C0 control byte (BEL, BS, HT, LF, VT, FF, CR, SO, SI).
type Control struct {
	Code byte
}

// C0 control codes the model acts on.
const (
	BEL byte = 0x07
	BS  byte = 0x08
	HT  byte = 0x09
	LF  byte = 0x0A
	VT  byte = 0x0B
	FF  byte = 0x0C
	CR  byte = 0x0D
	SO  byte = 0x0E
	SI  byte = 0x0F
)

// CursorPosition moves the cursor to an absolute position (CUP/HVP).
// Coordinates are zero-based; origin mode offsets are applied by the
// model.
type CursorPosition struct {
	Row, Col int
}

// CursorRelative moves the cursor by a delta (CUU/CUD/CUF/CUB).
type CursorRelative struct {
	DX, DY int
}

// CursorColumn sets the column, keeping the row (CHA/HPA).
type CursorColumn struct {
	Col int
}

// CursorRow sets the row, keeping the column (VPA).
type CursorRow struct {
	Row int
}

// CursorNextLine moves down N rows to column 0 (CNL).
type CursorNextLine struct {
	N int
}

// CursorPrevLine moves up N rows to column 0 (CPL).
type CursorPrevLine struct {
	N int
}

// SaveCursor records cursor position, pen and flags (DECSC / CSI s).
type SaveCursor struct{}

// RestoreCursor restores the saved cursor state (DECRC / CSI u).
type RestoreCursor struct{}

// EraseDisplay clears part of the display (ED). Mode 0 erases from the
// cursor to the end, 1 from the start to the cursor, 2 the whole
// display, 3 the scrollback.
type EraseDisplay struct {
	Mode int
}

// EraseLine clears part of the cursor line (EL). Mode 0 erases to the
// end of the line, 1 to the start, 2 the whole line.
type EraseLine struct {
	Mode int
}

// InsertChars inserts N blank cells at the cursor (ICH).
type InsertChars struct {
	N int
}

// DeleteChars deletes N cells at the cursor (DCH).
type DeleteChars struct {
	N int
}

// EraseChars blanks N cells at the cursor without shifting (ECH).
type EraseChars struct {
	N int
}

// InsertLines inserts N blank rows at the cursor (IL).
type InsertLines struct {
	N int
}

// DeleteLines deletes N rows at the cursor (DL).
type DeleteLines struct {
	N int
}

// Repeat repeats the previously printed character N times (REP).
type Repeat struct {
	N int
}

// SetScrollRegion defines the scroll region (DECSTBM). Rows are
// zero-based, the region is [Top, Bottom). A zero-value Bottom means
// the full height.
type SetScrollRegion struct {
	Top, Bottom int
	Full        bool
}

// ScrollUp scrolls the region up N rows (SU).
type ScrollUp struct {
	N int
}

// ScrollDown scrolls the region down N rows (SD).
type ScrollDown struct {
	N int
}

// SGR carries the numeric parameter list of a style-setting sequence.
// Colon-separated sub-parameters (SGR 38/48 colon form) are flattened
// into the list.
type SGR struct {
	Params []int
}

// SetMode sets or resets a terminal mode (SM/RM). Private is true for
// DEC private modes introduced by '?'.
type SetMode struct {
	Mode    int
	Private bool
	Enable  bool
}

// TabSet sets a tab stop at the cursor column (HTS).
type TabSet struct{}

// TabClear clears tab stops (TBC). Mode 0 clears the stop at the
// cursor, 3 clears all stops.
type TabClear struct {
	Mode int
}

// CursorForwardTabs advances the cursor N tab stops (CHT).
type CursorForwardTabs struct {
	N int
}

// CursorBackwardTabs moves the cursor back N tab stops (CBT).
type CursorBackwardTabs struct {
	N int
}

// SelectCharset designates a character set for G0 or G1 (ESC ( x /
// ESC ) x). Charset 'B' is US ASCII, '0' is DEC special graphics.
type SelectCharset struct {
	G1      bool
	Charset byte
}

// Index moves down one row, scrolling at the region bottom (IND).
type Index struct{}

// ReverseIndex moves up one row, scrolling at the region top (RI).
type ReverseIndex struct{}

// NextLine moves to column 0 of the next row, scrolling (NEL).
type NextLine struct{}

// FullReset is RIS: reset everything to power-on state.
type FullReset struct{}

// SoftReset is DECSTR: reset modes and pen, keep display content.
type SoftReset struct{}

// SetTitle sets the window/icon title (OSC 0/2).
type SetTitle struct {
	Title string
}

// SetHyperlink starts or ends a hyperlink run (OSC 8). An empty URI
// ends the run.
type SetHyperlink struct {
	ID  string
	URI string
}

// SetPaletteColor sets palette entry Index from an X11 color spec
// (OSC 4).
type SetPaletteColor struct {
	Index int
	Spec  string
}

// QueryColor requests a color report (OSC 4 with "?" spec, OSC 10/11).
// Index -1 queries the default foreground, -2 the default background.
type QueryColor struct {
	Index int
}

// ResetColors restores colors to their defaults (OSC 104/110/111).
// Index >= 0 names a palette entry, -1 the default foreground, -2 the
// default background. All resets the whole palette.
type ResetColors struct {
	Index int
	All   bool
}

// DeviceStatusReport requests a status report (DSR). Mode 5 is
// operating status, 6 is cursor position.
type DeviceStatusReport struct {
	Mode int
}

// DeviceAttributes requests device attributes (DA). Secondary is true
// for the `>` form.
type DeviceAttributes struct {
	Secondary bool
}

// Ignored records a well-formed but unrecognized or unsupported
// sequence. The model treats it as a no-op; diagnostics can log it.
type Ignored struct {
	Kind  string
	Final byte
}

func (Print) isAction()              {}
func (Control) isAction()            {}
func (CursorPosition) isAction()     {}
func (CursorRelative) isAction()     {}
func (CursorColumn) isAction()       {}
func (CursorRow) isAction()          {}
func (CursorNextLine) isAction()     {}
func (CursorPrevLine) isAction()     {}
func (SaveCursor) isAction()         {}
func (RestoreCursor) isAction()      {}
func (EraseDisplay) isAction()       {}
func (EraseLine) isAction()          {}
func (InsertChars) isAction()        {}
func (DeleteChars) isAction()        {}
func (EraseChars) isAction()         {}
func (InsertLines) isAction()        {}
func (DeleteLines) isAction()        {}
func (Repeat) isAction()             {}
func (SetScrollRegion) isAction()    {}
func (ScrollUp) isAction()           {}
func (ScrollDown) isAction()         {}
func (SGR) isAction()                {}
func (SetMode) isAction()            {}
func (TabSet) isAction()             {}
func (TabClear) isAction()           {}
func (CursorForwardTabs) isAction()  {}
func (CursorBackwardTabs) isAction() {}
func (SelectCharset) isAction()      {}
func (Index) isAction()              {}
func (ReverseIndex) isAction()       {}
func (NextLine) isAction()           {}
func (FullReset) isAction()          {}
func (SoftReset) isAction()          {}
func (SetTitle) isAction()           {}
func (SetHyperlink) isAction()       {}
func (SetPaletteColor) isAction()    {}
func (QueryColor) isAction()         {}
func (ResetColors) isAction()        {}
func (DeviceStatusReport) isAction() {}
func (DeviceAttributes) isAction()   {}
func (Ignored) isAction()            {}
