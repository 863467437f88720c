// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package font turns grapheme clusters into rasterized glyph bitmaps.
//
// Shaping runs through go-text/typesetting's HarfBuzz implementation,
// so ligatures and combining marks resolve to the right glyphs.
// Rasterization renders the shaped outlines with x/image's sfnt and
// vector packages into per-cell bitmaps sized by the monospace cell
// metrics.
//
// The package is consumed through the Rasterizer interface; the glyph
// atlas calls it on cache misses and never touches font data directly.
package font
