package term

import (
	"errors"
	"fmt"
)

// ErrStreamClosed is returned by Session.Wait when the byte stream
// reached EOF and all pending actions were applied.
var ErrStreamClosed = errors.New("term: stream closed")

// ResizeError reports an invalid terminal geometry.
type ResizeError struct {
	Rows, Cols int
}

func (e *ResizeError) Error() string {
	return fmt.Sprintf("term: invalid size %dx%d", e.Cols, e.Rows)
}
