// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package escape parses the VT/xterm wire protocol into typed actions.
//
// The parser is a byte-oriented state machine in the shape of the
// VT500 state diagram: printable text, C0 controls, ESC sequences,
// CSI with numeric parameters, and OSC/DCS string sequences. It is
// restartable at any byte boundary, so a stream read in arbitrary
// chunks parses identically to the same stream read at once.
//
// Malformed or unsupported input never fails the parse. Unknown
// sequences are consumed and surfaced as Ignored actions, and an
// optional diagnostic callback observes them.
package escape
