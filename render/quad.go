// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"encoding/binary"
	"math"

	"github.com/gogpu/gputypes"
)

// cellVertexStride is the byte stride per vertex. Layout per vertex:
//
//	position  (vec2<f32>) =  8 bytes (location 0)
//	tex       (vec2<f32>) =  8 bytes (location 1)
//	underline (vec2<f32>) =  8 bytes (location 2)
//	bg        (vec4<f32>) = 16 bytes (location 3)
//	fg        (vec4<f32>) = 16 bytes (location 4)
//	has_color (f32)       =  4 bytes (location 5)
//
// Total = 60 bytes per vertex.
const cellVertexStride = 60

// verticesPerCell and indicesPerCell: each cell is one quad drawn as
// two triangles with shared corners.
const (
	verticesPerCell = 4
	indicesPerCell  = 6
)

// uv is a texture coordinate rectangle in [0, 1].
type uvRect struct {
	U0, V0, U1, V1 float32
}

// cellQuad is everything one cell contributes to the frame.
type cellQuad struct {
	// Pixel rectangle of the cell.
	X0, Y0, X1, Y1 float32

	// Glyph and line-sprite texture rectangles.
	Tex       uvRect
	Underline uvRect

	BG       [4]float32
	FG       [4]float32
	HasColor bool
}

// appendQuad serializes the quad's four vertices into buf, which must
// hold verticesPerCell*cellVertexStride bytes. Corner order is
// top-left, top-right, bottom-right, bottom-left.
func appendQuad(buf []byte, q *cellQuad) {
	hc := float32(0)
	if q.HasColor {
		hc = 1
	}
	writeCellVertex(buf[0*cellVertexStride:], q.X0, q.Y0, q.Tex.U0, q.Tex.V0, q.Underline.U0, q.Underline.V0, q.BG, q.FG, hc)
	writeCellVertex(buf[1*cellVertexStride:], q.X1, q.Y0, q.Tex.U1, q.Tex.V0, q.Underline.U1, q.Underline.V0, q.BG, q.FG, hc)
	writeCellVertex(buf[2*cellVertexStride:], q.X1, q.Y1, q.Tex.U1, q.Tex.V1, q.Underline.U1, q.Underline.V1, q.BG, q.FG, hc)
	writeCellVertex(buf[3*cellVertexStride:], q.X0, q.Y1, q.Tex.U0, q.Tex.V1, q.Underline.U0, q.Underline.V1, q.BG, q.FG, hc)
}

func writeCellVertex(buf []byte, x, y, u, v, lu, lv float32, bg, fg [4]float32, hasColor float32) {
	off := 0
	put := func(f float32) {
		binary.LittleEndian.PutUint32(buf[off:], math.Float32bits(f))
		off += 4
	}
	put(x)
	put(y)
	put(u)
	put(v)
	put(lu)
	put(lv)
	for _, f := range bg {
		put(f)
	}
	for _, f := range fg {
		put(f)
	}
	put(hasColor)
}

// buildIndexData serializes the static index buffer for numCells
// quads. Indices are 32-bit: a large grid overflows 16 bits.
func buildIndexData(numCells int) []byte {
	data := make([]byte, numCells*indicesPerCell*4)
	off := 0
	put := func(v uint32) {
		binary.LittleEndian.PutUint32(data[off:], v)
		off += 4
	}
	for i := 0; i < numCells; i++ {
		base := uint32(i * verticesPerCell)
		put(base + 0)
		put(base + 1)
		put(base + 2)
		put(base + 2)
		put(base + 3)
		put(base + 0)
	}
	return data
}

// cellVertexLayout returns the vertex buffer layout matching
// VertexInput in the cell shader.
func cellVertexLayout() []gputypes.VertexBufferLayout {
	return []gputypes.VertexBufferLayout{
		{
			ArrayStride: cellVertexStride,
			StepMode:    gputypes.VertexStepModeVertex,
			Attributes: []gputypes.VertexAttribute{
				{Format: gputypes.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0},  // position
				{Format: gputypes.VertexFormatFloat32x2, Offset: 8, ShaderLocation: 1},  // tex
				{Format: gputypes.VertexFormatFloat32x2, Offset: 16, ShaderLocation: 2}, // underline
				{Format: gputypes.VertexFormatFloat32x4, Offset: 24, ShaderLocation: 3}, // bg
				{Format: gputypes.VertexFormatFloat32x4, Offset: 40, ShaderLocation: 4}, // fg
				{Format: gputypes.VertexFormatFloat32, Offset: 56, ShaderLocation: 5},   // has_color
			},
		},
	}
}
