package escape

import "fmt"

// ParseError records a sequence that was consumed but not understood.
// Parsing always recovers; these exist for diagnostics only.
type ParseError struct {
	Kind  string // "esc", "csi", "osc", "dcs"
	Final byte   // terminating byte, 0 when not applicable
}

func (e *ParseError) Error() string {
	if e.Final == 0 {
		return fmt.Sprintf("escape: ignored %s sequence", e.Kind)
	}
	return fmt.Sprintf("escape: ignored %s sequence (final %q)", e.Kind, e.Final)
}

// OverflowError records a string sequence that exceeded the
// accumulation limit and was dropped.
type OverflowError struct {
	Kind  string
	Limit int
}

func (e *OverflowError) Error() string {
	return fmt.Sprintf("escape: %s payload exceeded %d bytes", e.Kind, e.Limit)
}
