// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package render turns terminal snapshots into GPU frames.
//
// The renderer keeps one quad per cell and draws the grid twice from
// the same vertex buffer: a background pass (cell background plus the
// underline or strikethrough sprite) and a glyph pass (atlas-sampled
// glyphs, tinted by the foreground color unless the glyph carries its
// own color). Geometry is rebuilt only for rows the terminal damaged
// since the last frame; undamaged rows reuse their cached vertex data.
package render
