// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package term

import (
	"strings"
	"testing"

	"github.com/gogpu/term/escape"
	"github.com/gogpu/term/screen"
)

// feed parses input and applies every action to the state.
func feed(s *State, input string) {
	p := escape.NewParser()
	p.Parse([]byte(input), s.Apply)
}

func rowText(s *State, y int) string {
	var b strings.Builder
	for _, c := range s.Screen().Line(y).Cells() {
		b.WriteString(c.Text)
	}
	return strings.TrimRight(b.String(), " ")
}

func TestPrintWithSGR(t *testing.T) {
	s := NewState(24, 80, 0)
	feed(s, "\x1b[31mHi\x1b[0m\n")

	h := s.Screen().Cell(0, 0)
	if h.Text != "H" {
		t.Fatalf("cell(0,0) = %q, want H", h.Text)
	}
	if h.Attrs.FG != screen.PaletteColor(1) {
		t.Errorf("cell(0,0) fg = %+v, want palette 1", h.Attrs.FG)
	}
	if i := s.Screen().Cell(1, 0); i.Attrs.FG != screen.PaletteColor(1) {
		t.Errorf("cell(1,0) fg = %+v, want palette 1", i.Attrs.FG)
	}
	if s.Pen().FG != (screen.Color{}) {
		t.Errorf("pen fg after reset = %+v, want default", s.Pen().FG)
	}
	if cur := s.Cursor(); cur.X != 2 || cur.Y != 1 {
		t.Errorf("cursor = (%d,%d), want (2,1)", cur.X, cur.Y)
	}
}

func TestPendingWrapIsLazy(t *testing.T) {
	s := NewState(4, 10, 0)
	feed(s, strings.Repeat("x", 10))

	// The cursor rests on the last column until the next printable.
	if cur := s.Cursor(); cur.X != 9 || cur.Y != 0 {
		t.Fatalf("cursor after fill = (%d,%d), want (9,0)", cur.X, cur.Y)
	}

	// CR cancels the pending wrap; the next character overwrites
	// column 0 instead of opening row 1.
	feed(s, "\rA")
	if got := s.Screen().Cell(0, 0).Text; got != "A" {
		t.Errorf("cell(0,0) = %q, want A", got)
	}
	if got := rowText(s, 1); got != "" {
		t.Errorf("row 1 = %q, want empty", got)
	}

	// Without the cancel, the 11th character wraps.
	s2 := NewState(4, 10, 0)
	feed(s2, strings.Repeat("x", 10)+"y")
	if got := s2.Screen().Cell(0, 1).Text; got != "y" {
		t.Errorf("cell(0,1) = %q, want y", got)
	}
	if !s2.Screen().Line(1).Wrapped() {
		t.Error("row 1 not flagged as soft wrap")
	}
}

func TestWideCharWrapsEarly(t *testing.T) {
	s := NewState(4, 4, 0)
	feed(s, "abc火") // U+706B is two columns wide

	if got := s.Screen().Cell(0, 1).Text; got != "火" {
		t.Fatalf("cell(0,1) = %q, want wide char", got)
	}
	if w := s.Screen().Cell(0, 1).Width; w != 2 {
		t.Errorf("width = %d, want 2", w)
	}
	if !s.Screen().Cell(1, 1).IsContinuation() {
		t.Error("cell(1,1) is not a continuation")
	}
	// The skipped last column of row 0 stays blank.
	if got := s.Screen().Cell(3, 0); !got.IsBlank() {
		t.Errorf("cell(3,0) = %q, want blank", got.Text)
	}
}

func TestCombiningMarkJoinsBaseCell(t *testing.T) {
	s := NewState(4, 10, 0)
	feed(s, "éx")

	if got := s.Screen().Cell(0, 0).Text; got != "é" {
		t.Errorf("cell(0,0) = %q, want e+combining acute", got)
	}
	if got := s.Screen().Cell(1, 0).Text; got != "x" {
		t.Errorf("cell(1,0) = %q, want x", got)
	}
}

func TestZWJSequenceStaysInOneCell(t *testing.T) {
	s := NewState(4, 10, 0)
	// Woman-technologist: 👩 ZWJ 💻, one cluster across three runes.
	seq := "\U0001f469‍\U0001f4bb"
	feed(s, seq+"x")

	if got := s.Screen().Cell(0, 0).Text; got != seq {
		t.Fatalf("cell(0,0) = %q, want full ZWJ sequence", got)
	}
	if w := s.Screen().Cell(0, 0).Width; w != 2 {
		t.Errorf("width = %d, want 2", w)
	}
	if !s.Screen().Cell(1, 0).IsContinuation() {
		t.Error("cell(1,0) is not a continuation")
	}
	if got := s.Screen().Cell(2, 0).Text; got != "x" {
		t.Errorf("cell(2,0) = %q, want x", got)
	}
}

func TestRegionalIndicatorsPairUp(t *testing.T) {
	s := NewState(4, 10, 0)
	feed(s, "\U0001f1e9\U0001f1ea") // D + E regional indicators

	if got := s.Screen().Cell(0, 0).Text; got != "\U0001f1e9\U0001f1ea" {
		t.Fatalf("cell(0,0) = %q, want flag pair", got)
	}
	// A third indicator starts a fresh pair rather than extending it.
	feed(s, "\U0001f1eb")
	if got := s.Screen().Cell(0, 0).Text; got != "\U0001f1e9\U0001f1ea" {
		t.Errorf("cell(0,0) grew to %q", got)
	}
}

func TestEraseUsesCurrentBackground(t *testing.T) {
	s := NewState(4, 10, 0)
	feed(s, "\x1b[41m\x1b[2J")

	c := s.Screen().Cell(5, 2)
	if !c.IsBlank() {
		t.Fatalf("cell not blank: %q", c.Text)
	}
	if c.Attrs.BG != screen.PaletteColor(1) {
		t.Errorf("erased bg = %+v, want palette 1", c.Attrs.BG)
	}
}

func TestDamageExactness(t *testing.T) {
	s := NewState(4, 10, 0)
	s.Snapshot() // consume initial damage

	feed(s, "x")
	snap := s.Snapshot()
	if len(snap.Damage) != 1 || snap.Damage[0] != 0 {
		t.Fatalf("damage after print = %v, want [0]", snap.Damage)
	}

	feed(s, "\x1b[2J")
	snap = s.Snapshot()
	if len(snap.Damage) != 4 {
		t.Fatalf("damage after ED2 = %v, want all 4 rows", snap.Damage)
	}
}

func TestResizeReflow(t *testing.T) {
	s := NewState(24, 80, 100)
	feed(s, strings.Repeat("a", 60))

	if err := s.Resize(24, 40); err != nil {
		t.Fatal(err)
	}
	if got := rowText(s, 0); got != strings.Repeat("a", 40) {
		t.Errorf("row 0 = %d chars, want 40", len(got))
	}
	if got := rowText(s, 1); got != strings.Repeat("a", 20) {
		t.Errorf("row 1 = %d chars, want 20", len(got))
	}
	if !s.Screen().Line(1).Wrapped() {
		t.Error("row 1 lost its wrap flag")
	}
}

func TestResizeRejectsBadDims(t *testing.T) {
	s := NewState(4, 10, 0)
	if err := s.Resize(0, 10); err == nil {
		t.Fatal("expected error for zero rows")
	}
	if rows, cols := s.Size(); rows != 4 || cols != 10 {
		t.Errorf("size changed to %dx%d after rejected resize", cols, rows)
	}
}

func TestScrollRegion(t *testing.T) {
	s := NewState(4, 10, 100)
	feed(s, "aaa\r\nbbb\r\nccc\r\nddd")

	// Region rows 2-3 (1-based); LF at the region bottom scrolls only
	// the region, leaving rows outside untouched.
	feed(s, "\x1b[2;3r")
	if cur := s.Cursor(); cur.X != 0 || cur.Y != 0 {
		t.Fatalf("cursor after DECSTBM = (%d,%d), want (0,0)", cur.X, cur.Y)
	}
	feed(s, "\x1b[3;1H\n")

	if got := rowText(s, 0); got != "aaa" {
		t.Errorf("row 0 = %q, want aaa", got)
	}
	if got := rowText(s, 1); got != "ccc" {
		t.Errorf("row 1 = %q, want ccc (scrolled)", got)
	}
	if got := rowText(s, 2); got != "" {
		t.Errorf("row 2 = %q, want blank", got)
	}
	if got := rowText(s, 3); got != "ddd" {
		t.Errorf("row 3 = %q, want ddd", got)
	}
	// Interior region: nothing entered scrollback.
	if sb := s.Screen().ScrollbackLen(); sb != 0 {
		t.Errorf("scrollback = %d, want 0", sb)
	}
}

func TestScrollTopRegionFeedsScrollback(t *testing.T) {
	s := NewState(2, 10, 100)
	feed(s, "one\r\ntwo\r\nthree")

	if sb := s.Screen().ScrollbackLen(); sb != 1 {
		t.Fatalf("scrollback = %d, want 1", sb)
	}
	var b strings.Builder
	for _, c := range s.Screen().HistoryLine(0).Cells() {
		b.WriteString(c.Text)
	}
	if got := strings.TrimRight(b.String(), " "); got != "one" {
		t.Errorf("history line = %q, want one", got)
	}
}

func TestAltScreen1049(t *testing.T) {
	s := NewState(4, 10, 0)
	feed(s, "\x1b[31mhello")
	cur := s.Cursor()

	feed(s, "\x1b[?1049h")
	if !s.AltScreenActive() {
		t.Fatal("alt screen not active")
	}
	if got := rowText(s, 0); got != "" {
		t.Errorf("alt screen row 0 = %q, want blank", got)
	}
	if s.Pen() != (screen.Attributes{}) {
		t.Errorf("pen not reset on alt entry: %+v", s.Pen())
	}
	feed(s, "alt!")

	feed(s, "\x1b[?1049l")
	if s.AltScreenActive() {
		t.Fatal("alt screen still active")
	}
	if got := rowText(s, 0); got != "hello" {
		t.Errorf("primary row 0 = %q, want hello", got)
	}
	if got := s.Cursor(); got.X != cur.X || got.Y != cur.Y {
		t.Errorf("cursor = (%d,%d), want restored (%d,%d)", got.X, got.Y, cur.X, cur.Y)
	}
	if s.Pen().FG != screen.PaletteColor(1) {
		t.Errorf("pen fg = %+v, want restored palette 1", s.Pen().FG)
	}
}

func TestTabStops(t *testing.T) {
	s := NewState(4, 40, 0)
	feed(s, "\t")
	if cur := s.Cursor(); cur.X != 8 {
		t.Fatalf("cursor after tab = %d, want 8", cur.X)
	}
	feed(s, "\t\t")
	if cur := s.Cursor(); cur.X != 24 {
		t.Fatalf("cursor = %d, want 24", cur.X)
	}

	// Clear all stops and set a custom one at column 5.
	feed(s, "\x1b[3g\r\x1b[5G\x1bH\r\t")
	if cur := s.Cursor(); cur.X != 4 {
		t.Errorf("cursor after custom stop = %d, want 4", cur.X)
	}
	// No further stops: tab runs to the last column.
	feed(s, "\t")
	if cur := s.Cursor(); cur.X != 39 {
		t.Errorf("cursor = %d, want 39", cur.X)
	}
}

func TestCursorPositionReport(t *testing.T) {
	s := NewState(24, 80, 0)
	feed(s, "\x1b[5;10H\x1b[6n")
	if got := string(s.TakeResponses()); got != "\x1b[5;10R" {
		t.Errorf("CPR = %q, want ESC[5;10R", got)
	}

	feed(s, "\x1b[5n")
	if got := string(s.TakeResponses()); got != "\x1b[0n" {
		t.Errorf("DSR = %q, want ESC[0n", got)
	}
}

func TestOriginMode(t *testing.T) {
	s := NewState(10, 20, 0)
	feed(s, "\x1b[3;8r\x1b[?6h\x1b[1;1H")
	if cur := s.Cursor(); cur.Y != 2 {
		t.Fatalf("origin-mode home row = %d, want 2", cur.Y)
	}
	// CPR reports region-relative coordinates under DECOM.
	feed(s, "\x1b[6n")
	if got := string(s.TakeResponses()); got != "\x1b[1;1R" {
		t.Errorf("CPR = %q, want ESC[1;1R", got)
	}
	// Movement clamps inside the region.
	feed(s, "\x1b[99;1H")
	if cur := s.Cursor(); cur.Y != 7 {
		t.Errorf("clamped row = %d, want 7", cur.Y)
	}
}

func TestSGRExtendedColors(t *testing.T) {
	s := NewState(4, 20, 0)
	feed(s, "\x1b[38;2;10;20;30m\x1b[48;5;100mx")

	c := s.Screen().Cell(0, 0)
	if c.Attrs.FG != screen.RGBColor(10, 20, 30) {
		t.Errorf("fg = %+v, want rgb(10,20,30)", c.Attrs.FG)
	}
	if c.Attrs.BG != screen.PaletteColor(100) {
		t.Errorf("bg = %+v, want palette 100", c.Attrs.BG)
	}

	// Colon form parses the same.
	feed(s, "\x1b[38:5:200my")
	if c := s.Screen().Cell(1, 0); c.Attrs.FG != screen.PaletteColor(200) {
		t.Errorf("colon-form fg = %+v, want palette 200", c.Attrs.FG)
	}
}

func TestSGRBrightAndReset(t *testing.T) {
	s := NewState(4, 20, 0)
	feed(s, "\x1b[1;93;104mx")
	c := s.Screen().Cell(0, 0)
	if !c.Attrs.Has(screen.AttrBold) {
		t.Error("bold not set")
	}
	if c.Attrs.FG != screen.PaletteColor(11) {
		t.Errorf("fg = %+v, want palette 11", c.Attrs.FG)
	}
	if c.Attrs.BG != screen.PaletteColor(12) {
		t.Errorf("bg = %+v, want palette 12", c.Attrs.BG)
	}

	feed(s, "\x1b[22;39;49m")
	pen := s.Pen()
	if pen.Has(screen.AttrBold) || pen.FG != (screen.Color{}) || pen.BG != (screen.Color{}) {
		t.Errorf("pen after resets = %+v", pen)
	}
}

func TestHyperlinkRun(t *testing.T) {
	s := NewState(4, 40, 0)
	feed(s, "\x1b]8;id=doc;https://example.com\x1b\\link\x1b]8;;\x1b\\plain")

	linked := s.Screen().Cell(0, 0)
	if linked.Attrs.Hyperlink == 0 {
		t.Fatal("linked cell has no hyperlink id")
	}
	target, ok := s.HyperlinkByID(linked.Attrs.Hyperlink)
	if !ok || target.URI != "https://example.com" || target.ID != "doc" {
		t.Errorf("hyperlink = %+v, want example.com/doc", target)
	}
	if plain := s.Screen().Cell(4, 0); plain.Attrs.Hyperlink != 0 {
		t.Error("cell after link end still linked")
	}
	// Erased cells never carry the link.
	feed(s, "\x1b]8;id=doc;https://example.com\x1b\\\x1b[K")
	if c := s.Screen().Cell(20, 0); c.Attrs.Hyperlink != 0 {
		t.Error("erased cell carries hyperlink")
	}
}

func TestTitleAndColorQueries(t *testing.T) {
	s := NewState(4, 10, 0)
	feed(s, "\x1b]2;hello world\x07")
	if s.Title() != "hello world" {
		t.Errorf("title = %q", s.Title())
	}

	feed(s, "\x1b]4;1;#102030\x07")
	if got := s.Palette().Colors[1]; got != (RGB{0x10, 0x20, 0x30}) {
		t.Errorf("palette[1] = %+v", got)
	}
	feed(s, "\x1b]4;1;?\x07")
	if got := string(s.TakeResponses()); got != "\x1b]4;1;rgb:1010/2020/3030\x1b\\" {
		t.Errorf("color report = %q", got)
	}

	feed(s, "\x1b]104;1\x07")
	if got := s.Palette().Colors[1]; got != (RGB{0xcc, 0x55, 0x55}) {
		t.Errorf("palette[1] after reset = %+v", got)
	}
}

func TestInsertDeleteLines(t *testing.T) {
	s := NewState(4, 10, 0)
	feed(s, "a\r\nb\r\nc\r\nd\x1b[2;1H\x1b[L")

	want := []string{"a", "", "b", "c"}
	for y, w := range want {
		if got := rowText(s, y); got != w {
			t.Errorf("after IL: row %d = %q, want %q", y, got, w)
		}
	}

	feed(s, "\x1b[M")
	want = []string{"a", "b", "c", ""}
	for y, w := range want {
		if got := rowText(s, y); got != w {
			t.Errorf("after DL: row %d = %q, want %q", y, got, w)
		}
	}
}

func TestInsertDeleteChars(t *testing.T) {
	s := NewState(2, 10, 0)
	feed(s, "abcdef\r\x1b[2@")
	if got := rowText(s, 0); got != "  abcdef" {
		t.Errorf("after ICH: %q", got)
	}
	feed(s, "\x1b[3P")
	if got := rowText(s, 0); got != "bcdef" {
		t.Errorf("after DCH: %q", got)
	}
	feed(s, "\x1b[2X")
	if got := rowText(s, 0); got != "  def" {
		t.Errorf("after ECH: %q", got)
	}
}

func TestRepeat(t *testing.T) {
	s := NewState(2, 20, 0)
	feed(s, "ab\x1b[3b")
	if got := rowText(s, 0); got != "abbbb" {
		t.Errorf("after REP: %q", got)
	}
}

func TestDECLineDrawing(t *testing.T) {
	s := NewState(2, 20, 0)
	feed(s, "\x1b(0lqk\x1b(B|")
	if got := rowText(s, 0); got != "┌─┐|" {
		t.Errorf("line drawing = %q", got)
	}

	// SO/SI switch to G1 and back.
	s2 := NewState(2, 20, 0)
	feed(s2, "\x1b)0a\x0eq\x0fq")
	if got := rowText(s2, 0); got != "a─q" {
		t.Errorf("shift-out drawing = %q", got)
	}
}

func TestSoftReset(t *testing.T) {
	s := NewState(10, 20, 0)
	feed(s, "\x1b[31m\x1b[4h\x1b[?6h\x1b[2;5rtext\x1b[!p")

	if got := rowText(s, 1); got != "text" {
		t.Errorf("display disturbed by DECSTR: row 1 = %q", got)
	}
	if s.Pen() != (screen.Attributes{}) {
		t.Errorf("pen not reset: %+v", s.Pen())
	}
	if s.originMode || s.insertMode {
		t.Error("modes survive DECSTR")
	}
	if s.scrollTop != 0 || s.scrollBottom != 10 {
		t.Errorf("region = [%d,%d), want full", s.scrollTop, s.scrollBottom)
	}
}

func TestFullReset(t *testing.T) {
	s := NewState(4, 10, 50)
	bells := 0
	s.OnBell = func() { bells++ }
	feed(s, "text\x1b]4;1;#000000\x07\x1bc")

	if got := rowText(s, 0); got != "" {
		t.Errorf("display survives RIS: %q", got)
	}
	if got := s.Palette().Colors[1]; got != (RGB{0xcc, 0x55, 0x55}) {
		t.Errorf("palette survives RIS: %+v", got)
	}
	feed(s, "\x07")
	if bells != 1 {
		t.Errorf("bell callback lost across RIS: %d", bells)
	}
}

func TestModelChunkInvariance(t *testing.T) {
	input := "\x1b[2J\x1b[31mhé火\x1b[0m\r\n\x1b[2;5H\x1b]2;t\x07tab\tend" +
		strings.Repeat("x", 30)

	whole := NewState(6, 20, 10)
	feed(whole, input)

	byByte := NewState(6, 20, 10)
	p := escape.NewParser()
	for i := 0; i < len(input); i++ {
		p.Parse([]byte{input[i]}, byByte.Apply)
	}

	if whole.Cursor() != byByte.Cursor() {
		t.Fatalf("cursor differs: %+v vs %+v", whole.Cursor(), byByte.Cursor())
	}
	for y := 0; y < 6; y++ {
		for x := 0; x < 20; x++ {
			a, b := whole.Screen().Cell(x, y), byByte.Screen().Cell(x, y)
			if a != b {
				t.Fatalf("cell (%d,%d) differs: %+v vs %+v", x, y, a, b)
			}
		}
	}
}
