package escape

import (
	"unicode/utf8"
)

// Parser limits. Sequences exceeding them degrade to no-ops; the
// stream itself is never corrupted.
const (
	// maxParams bounds the CSI parameter list; extra parameters are
	// dropped.
	maxParams = 16

	// maxParamValue caps each numeric parameter.
	maxParamValue = 65535

	// maxStringLen caps OSC/DCS string accumulation. An unterminated
	// string sequence would otherwise buffer the rest of the stream.
	maxStringLen = 4096
)

type state uint8

const (
	stateGround state = iota
	stateEscape
	stateEscapeIntermediate
	stateCSIEntry
	stateCSIParam
	stateCSIIntermediate
	stateCSIIgnore
	stateOSC
	stateOSCEsc
	stateDCS
	stateDCSEsc
	stateSOS // SOS/PM/APC: consumed and discarded
	stateSOSEsc
)

// Parser is the escape-sequence state machine. It consumes an
// arbitrarily chunked byte stream and emits Actions. All parse state
// (automaton state, partial UTF-8 sequences, partial escape sequences,
// OSC accumulation) persists across Parse calls, so feeding a stream
// in one chunk or split at any byte boundary produces identical
// actions.
//
// Parser is not safe for concurrent use; the reader goroutine owns it.
type Parser struct {
	state state

	params    []int
	curParam  int
	hasParam  bool
	private   byte
	intermeds []byte

	strBuf      []byte
	strOverflow bool

	utf8Buf  [4]byte
	utf8Len  int
	utf8Need int

	// diag receives recovered parse errors (ignored sequences,
	// overflowed strings) for observability. Never affects parsing.
	diag func(error)
}

// NewParser creates a parser in the ground state.
func NewParser() *Parser {
	return &Parser{
		params:    make([]int, 0, maxParams),
		intermeds: make([]byte, 0, 2),
	}
}

// SetDiagnostic installs a callback invoked with a *ParseError or
// *OverflowError each time a sequence is recovered from. Pass nil to
// disable.
func (p *Parser) SetDiagnostic(fn func(error)) {
	p.diag = fn
}

// Parse consumes one chunk of bytes, invoking emit for every completed
// action. It never fails: malformed input degrades to Ignored actions.
func (p *Parser) Parse(data []byte, emit func(Action)) {
	for _, b := range data {
		p.step(b, emit)
	}
}

func (p *Parser) step(b byte, emit func(Action)) {
	switch p.state {
	case stateGround:
		p.ground(b, emit)
	case stateEscape:
		p.escape(b, emit)
	case stateEscapeIntermediate:
		p.escapeIntermediate(b, emit)
	case stateCSIEntry, stateCSIParam, stateCSIIntermediate:
		p.csi(b, emit)
	case stateCSIIgnore:
		p.csiIgnore(b, emit)
	case stateOSC, stateOSCEsc:
		p.oscString(b, emit)
	case stateDCS, stateDCSEsc:
		p.dcsString(b, emit)
	case stateSOS, stateSOSEsc:
		p.sosString(b, emit)
	}
}

// ground handles printable text, UTF-8 assembly and C0 controls.
func (p *Parser) ground(b byte, emit func(Action)) {
	if p.utf8Need > 0 {
		if b&0xC0 == 0x80 {
			p.utf8Buf[p.utf8Len] = b
			p.utf8Len++
			if p.utf8Len == p.utf8Need {
				r, _ := utf8.DecodeRune(p.utf8Buf[:p.utf8Len])
				p.utf8Need = 0
				p.utf8Len = 0
				emit(Print{Rune: r})
			}
			return
		}
		// Broken sequence: emit a replacement and reprocess the byte.
		p.utf8Need = 0
		p.utf8Len = 0
		emit(Print{Rune: utf8.RuneError})
	}

	switch {
	case b == 0x1B:
		p.enterEscape()
	case b < 0x20:
		if isControl(b) {
			emit(Control{Code: b})
		}
	case b == 0x7F:
		// DEL is ignored on the wire.
	case b < 0x80:
		emit(Print{Rune: rune(b)})
	default:
		need := utf8SeqLen(b)
		if need == 0 {
			emit(Print{Rune: utf8.RuneError})
			return
		}
		p.utf8Buf[0] = b
		p.utf8Len = 1
		p.utf8Need = need
	}
}

func (p *Parser) enterEscape() {
	p.state = stateEscape
	p.intermeds = p.intermeds[:0]
}

func (p *Parser) enterCSI() {
	p.state = stateCSIEntry
	p.params = p.params[:0]
	p.curParam = 0
	p.hasParam = false
	p.private = 0
	p.intermeds = p.intermeds[:0]
}

func (p *Parser) enterString(s state) {
	p.state = s
	p.strBuf = p.strBuf[:0]
	p.strOverflow = false
}

func (p *Parser) escape(b byte, emit func(Action)) {
	switch {
	case b == 0x18 || b == 0x1A: // CAN, SUB
		p.state = stateGround
	case b == 0x1B:
		p.enterEscape()
	case b < 0x20:
		if isControl(b) {
			emit(Control{Code: b})
		}
	case b <= 0x2F: // intermediate
		p.intermeds = append(p.intermeds, b)
		p.state = stateEscapeIntermediate
	case b == '[':
		p.enterCSI()
	case b == ']':
		p.enterString(stateOSC)
	case b == 'P':
		p.enterString(stateDCS)
	case b == 'X' || b == '^' || b == '_': // SOS, PM, APC
		p.enterString(stateSOS)
	default:
		p.state = stateGround
		p.escDispatch(b, emit)
	}
}

// escDispatch handles two-byte ESC sequences without intermediates.
func (p *Parser) escDispatch(b byte, emit func(Action)) {
	switch b {
	case '7':
		emit(SaveCursor{})
	case '8':
		emit(RestoreCursor{})
	case 'D':
		emit(Index{})
	case 'E':
		emit(NextLine{})
	case 'H':
		emit(TabSet{})
	case 'M':
		emit(ReverseIndex{})
	case 'c':
		emit(FullReset{})
	case '=':
		// DECKPAM; equivalent to setting DECNKM (private mode 66).
		emit(SetMode{Mode: 66, Private: true, Enable: true})
	case '>':
		emit(SetMode{Mode: 66, Private: true, Enable: false})
	case '\\':
		// Stray string terminator.
	default:
		p.ignored("esc", b, emit)
	}
}

func (p *Parser) escapeIntermediate(b byte, emit func(Action)) {
	switch {
	case b == 0x18 || b == 0x1A:
		p.state = stateGround
	case b == 0x1B:
		p.enterEscape()
	case b < 0x20:
		if isControl(b) {
			emit(Control{Code: b})
		}
	case b <= 0x2F:
		p.intermeds = append(p.intermeds, b)
	default:
		p.state = stateGround
		// Charset designations select G0/G1; everything else with
		// intermediates (DECALN and friends) is consumed uninterpreted.
		if len(p.intermeds) == 1 && (p.intermeds[0] == '(' || p.intermeds[0] == ')') {
			emit(SelectCharset{G1: p.intermeds[0] == ')', Charset: b})
			return
		}
		p.ignored("esc-intermediate", b, emit)
	}
}

func (p *Parser) csi(b byte, emit func(Action)) {
	switch {
	case b == 0x18 || b == 0x1A:
		p.state = stateGround
	case b == 0x1B:
		p.enterEscape()
	case b < 0x20:
		// C0 controls execute immediately without leaving the
		// sequence, per the VT500 state diagram.
		if isControl(b) {
			emit(Control{Code: b})
		}
	case b >= '0' && b <= '9':
		if p.state == stateCSIIntermediate {
			p.state = stateCSIIgnore
			return
		}
		p.state = stateCSIParam
		p.hasParam = true
		p.curParam = p.curParam*10 + int(b-'0')
		if p.curParam > maxParamValue {
			p.curParam = maxParamValue
		}
	case b == ';' || b == ':':
		// Colon sub-parameters are flattened into the list; the SGR
		// decoder treats both spellings of 38/48 alike.
		if p.state == stateCSIIntermediate {
			p.state = stateCSIIgnore
			return
		}
		p.state = stateCSIParam
		p.pushParam()
	case b >= '<' && b <= '?':
		if p.state != stateCSIEntry {
			p.state = stateCSIIgnore
			return
		}
		p.private = b
		p.state = stateCSIParam
	case b >= 0x20 && b <= 0x2F:
		p.intermeds = append(p.intermeds, b)
		p.state = stateCSIIntermediate
	case b >= 0x40 && b <= 0x7E:
		// A bare final byte carries zero parameters; a trailing ';'
		// contributes an implicit empty one.
		if p.hasParam || len(p.params) > 0 {
			p.pushParam()
		}
		p.state = stateGround
		p.csiDispatch(b, emit)
	default:
		p.state = stateCSIIgnore
	}
}

func (p *Parser) csiIgnore(b byte, emit func(Action)) {
	switch {
	case b == 0x18 || b == 0x1A:
		p.state = stateGround
	case b == 0x1B:
		p.enterEscape()
	case b >= 0x40 && b <= 0x7E:
		p.state = stateGround
		p.ignored("csi", b, emit)
	}
}

func (p *Parser) pushParam() {
	if len(p.params) < maxParams {
		p.params = append(p.params, p.curParam)
	}
	p.curParam = 0
	p.hasParam = false
}

func (p *Parser) oscString(b byte, emit func(Action)) {
	if p.state == stateOSCEsc {
		if b == '\\' {
			p.state = stateGround
			p.finishOSC(emit)
			return
		}
		// ESC followed by anything else cancels the string and is
		// reprocessed as the start of a new sequence.
		p.discardString("osc")
		p.enterEscape()
		p.step(b, emit)
		return
	}
	switch b {
	case 0x07: // BEL terminator
		p.state = stateGround
		p.finishOSC(emit)
	case 0x1B:
		p.state = stateOSCEsc
	case 0x18, 0x1A:
		p.discardString("osc")
		p.state = stateGround
	default:
		p.accumulate(b)
	}
}

func (p *Parser) dcsString(b byte, emit func(Action)) {
	if p.state == stateDCSEsc {
		if b == '\\' {
			p.state = stateGround
			if !p.stringComplete("dcs") {
				return
			}
			// DCS payloads (sixel, termcap queries) are consumed but
			// unsupported here.
			emit(Ignored{Kind: "dcs"})
			return
		}
		p.discardString("dcs")
		p.enterEscape()
		p.step(b, emit)
		return
	}
	switch b {
	case 0x1B:
		p.state = stateDCSEsc
	case 0x18, 0x1A:
		p.discardString("dcs")
		p.state = stateGround
	default:
		p.accumulate(b)
	}
}

func (p *Parser) sosString(b byte, emit func(Action)) {
	if p.state == stateSOSEsc {
		if b == '\\' {
			p.state = stateGround
			return
		}
		p.enterEscape()
		p.step(b, emit)
		return
	}
	switch b {
	case 0x1B:
		p.state = stateSOSEsc
	case 0x18, 0x1A:
		p.state = stateGround
	}
}

func (p *Parser) accumulate(b byte) {
	if len(p.strBuf) >= maxStringLen {
		p.strOverflow = true
		return
	}
	p.strBuf = append(p.strBuf, b)
}

// stringComplete reports whether the accumulated string survived the
// length cap, reporting an OverflowError otherwise.
func (p *Parser) stringComplete(kind string) bool {
	if p.strOverflow {
		if p.diag != nil {
			p.diag(&OverflowError{Kind: kind, Limit: maxStringLen})
		}
		return false
	}
	return true
}

func (p *Parser) discardString(kind string) {
	if p.strOverflow && p.diag != nil {
		p.diag(&OverflowError{Kind: kind, Limit: maxStringLen})
	}
	p.strBuf = p.strBuf[:0]
	p.strOverflow = false
}

func (p *Parser) finishOSC(emit func(Action)) {
	if !p.stringComplete("osc") {
		return
	}
	oscDispatch(p.strBuf, emit, p.reportIgnored)
}

func (p *Parser) ignored(kind string, final byte, emit func(Action)) {
	emit(Ignored{Kind: kind, Final: final})
	p.reportIgnored(kind, final)
}

func (p *Parser) reportIgnored(kind string, final byte) {
	if p.diag != nil {
		p.diag(&ParseError{Kind: kind, Final: final})
	}
}

// param returns the i'th parameter, or def when absent or zero.
func (p *Parser) param(i, def int) int {
	if i >= len(p.params) || p.params[i] == 0 {
		return def
	}
	return p.params[i]
}

// paramOrZero returns the i'th parameter with no zero-default.
func (p *Parser) paramOrZero(i int) int {
	if i >= len(p.params) {
		return 0
	}
	return p.params[i]
}

func isControl(b byte) bool {
	switch b {
	case BEL, BS, HT, LF, VT, FF, CR, SO, SI:
		return true
	}
	return false
}

// utf8SeqLen returns the expected byte length of a UTF-8 sequence
// starting with b, or 0 for an invalid lead byte.
func utf8SeqLen(b byte) int {
	switch {
	case b&0xE0 == 0xC0:
		return 2
	case b&0xF0 == 0xE0:
		return 3
	case b&0xF8 == 0xF0:
		return 4
	}
	return 0
}
