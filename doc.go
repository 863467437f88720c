// Package term provides a terminal emulator core for Go.
//
// # Overview
//
// term interprets the byte stream a shell or other application writes
// to its pseudo-terminal and maintains the resulting screen model:
// cells with attributes, scrollback, cursor, tab stops, scroll
// regions, and the alternate screen. The companion render package
// draws that model on the GPU via gogpu/wgpu, caching rasterized
// glyphs in a texture atlas.
//
// # Quick Start
//
//	import "github.com/gogpu/term"
//
//	sess, err := term.NewSession(ctx, ptmx, ptmx, term.DefaultSessionConfig())
//	if err != nil {
//		return err
//	}
//	defer sess.Close()
//
//	// Once per frame:
//	snap, err := sess.DrainAndSnapshot()
//
// The snapshot carries the damaged row set, so a renderer only
// rebuilds what changed.
//
// # Architecture
//
// The module is organized into:
//   - Public API: State, Session, Snapshot, Palette, input encoders
//   - escape: the escape-sequence state machine producing Actions
//   - screen: the cell grid, scrollback, and damage tracking
//   - font, atlas, render: shaping, glyph caching, and GPU drawing
//
// # Threading
//
// A Session owns one reader goroutine; the State is mutated only from
// the goroutine that calls DrainAndSnapshot. Everything else in this
// package is single-owner unless documented otherwise.
package term

// Version information
const (
	// Version is the current version of the library
	Version = "0.1.0-alpha.1"
)
