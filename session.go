// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package term

import (
	"context"
	"errors"
	"fmt"
	"io"

	"golang.org/x/sync/errgroup"

	"github.com/gogpu/term/escape"
)

// SessionConfig configures a Session.
type SessionConfig struct {
	// Rows and Cols are the initial terminal dimensions.
	Rows, Cols int

	// Scrollback bounds the primary screen history in rows.
	Scrollback int

	// QueueDepth bounds the decoded-action queue between the reader
	// goroutine and the model owner. A full queue blocks the reader,
	// applying backpressure to the PTY.
	QueueDepth int

	// ReadBuffer is the size of the PTY read buffer.
	ReadBuffer int
}

// DefaultSessionConfig returns the standard session configuration.
func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		Rows:       24,
		Cols:       80,
		Scrollback: 10000,
		QueueDepth: 64,
		ReadBuffer: 8192,
	}
}

// Validate checks the configuration.
func (c SessionConfig) Validate() error {
	if c.Rows <= 0 || c.Cols <= 0 {
		return &ResizeError{Rows: c.Rows, Cols: c.Cols}
	}
	if c.Scrollback < 0 {
		return fmt.Errorf("term: negative scrollback %d", c.Scrollback)
	}
	if c.QueueDepth <= 0 {
		return fmt.Errorf("term: queue depth must be positive, got %d", c.QueueDepth)
	}
	if c.ReadBuffer <= 0 {
		return fmt.Errorf("term: read buffer must be positive, got %d", c.ReadBuffer)
	}
	return nil
}

// Session ties a byte stream to a terminal model. A reader goroutine
// decodes the stream into actions and queues them; the owner calls
// DrainAndSnapshot once per frame to fold queued actions into the
// model and capture a render snapshot. The model is never mutated
// while a frame is built from the snapshot.
type Session struct {
	state  *State
	parser *escape.Parser
	output io.Writer

	actions chan []escape.Action
	group   *errgroup.Group
	cancel  context.CancelFunc

	drained bool
}

// NewSession starts a session reading application output from r and
// writing responses and encoded input to w. The reader goroutine runs
// until r reaches EOF, the context is cancelled, or Close is called.
func NewSession(ctx context.Context, r io.Reader, w io.Writer, cfg SessionConfig) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	g, ctx := errgroup.WithContext(ctx)

	s := &Session{
		state:   NewState(cfg.Rows, cfg.Cols, cfg.Scrollback),
		parser:  escape.NewParser(),
		output:  w,
		actions: make(chan []escape.Action, cfg.QueueDepth),
		group:   g,
		cancel:  cancel,
	}
	s.parser.SetDiagnostic(func(err error) {
		Logger().Debug("parse recovery", "err", err)
	})

	g.Go(func() error {
		defer close(s.actions)
		return s.readLoop(ctx, r, cfg.ReadBuffer)
	})

	Logger().Info("session started", "rows", cfg.Rows, "cols", cfg.Cols)
	return s, nil
}

// readLoop decodes the stream chunk by chunk. Each chunk's actions are
// queued as one batch so application order is preserved.
func (s *Session) readLoop(ctx context.Context, r io.Reader, bufSize int) error {
	buf := make([]byte, bufSize)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			var batch []escape.Action
			s.parser.Parse(buf[:n], func(a escape.Action) {
				batch = append(batch, a)
			})
			if len(batch) > 0 {
				select {
				case s.actions <- batch:
				case <-ctx.Done():
					return ctx.Err()
				}
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return ErrStreamClosed
			}
			return fmt.Errorf("term: read: %w", err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
	}
}

// State returns the model. It must only be touched by the goroutine
// that calls DrainAndSnapshot.
func (s *Session) State() *State { return s.state }

// DrainAndSnapshot applies every queued action batch, flushes any
// pending responses to the writer, and returns a snapshot for
// rendering. When the stream has closed and all actions are applied it
// returns ErrStreamClosed alongside the final snapshot.
func (s *Session) DrainAndSnapshot() (Snapshot, error) {
	for !s.drained {
		select {
		case batch, ok := <-s.actions:
			if !ok {
				s.drained = true
				break
			}
			for _, a := range batch {
				s.state.Apply(a)
			}
		default:
			goto flush
		}
	}

flush:
	s.flushResponses()
	snap := s.state.Snapshot()
	if s.drained {
		return snap, ErrStreamClosed
	}
	return snap, nil
}

func (s *Session) flushResponses() {
	if resp := s.state.TakeResponses(); len(resp) > 0 && s.output != nil {
		if _, err := s.output.Write(resp); err != nil {
			Logger().Warn("response write failed", "err", err)
		}
	}
}

// SendKey encodes a key press under the current modes and writes it to
// the application.
func (s *Session) SendKey(ev KeyEvent) error {
	return s.send(s.state.EncodeKey(ev))
}

// SendMouse encodes a pointer event if the active tracking mode
// reports it.
func (s *Session) SendMouse(ev MouseEvent) error {
	return s.send(s.state.EncodeMouse(ev))
}

// SendPaste writes pasted text, bracketed when the application asked.
func (s *Session) SendPaste(text string) error {
	return s.send(s.state.EncodePaste(text))
}

// SendFocus reports a focus change if mode 1004 is set.
func (s *Session) SendFocus(gained bool) error {
	return s.send(s.state.EncodeFocus(gained))
}

func (s *Session) send(b []byte) error {
	if len(b) == 0 || s.output == nil {
		return nil
	}
	_, err := s.output.Write(b)
	return err
}

// Resize changes the model dimensions. The caller is responsible for
// resizing the PTY to match.
func (s *Session) Resize(rows, cols int) error {
	return s.state.Resize(rows, cols)
}

// Close cancels the session and waits for the reader goroutine. A
// blocked Read returns only when the underlying stream is closed, so
// callers close the PTY first. The returned error is ErrStreamClosed
// after a clean EOF and context.Canceled after cancellation.
func (s *Session) Close() error {
	s.cancel()
	return s.group.Wait()
}

// Wait blocks until the reader goroutine exits.
func (s *Session) Wait() error {
	return s.group.Wait()
}
