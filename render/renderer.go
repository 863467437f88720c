// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	term "github.com/gogpu/term"
	"github.com/gogpu/term/atlas"
	"github.com/gogpu/term/font"
	"github.com/gogpu/term/internal/cache"
	"github.com/gogpu/term/internal/gpu"
	"github.com/gogpu/term/screen"
)

// uniformSize is the byte size of the frame uniform buffer:
// screen (vec4<f32>) = 16 bytes.
const uniformSize = 16

// Config holds renderer configuration.
type Config struct {
	// Atlas configures the glyph atlas texture.
	Atlas atlas.Config

	// TargetFormat is the color format of the render target.
	// Default: BGRA8Unorm, the common surface format.
	TargetFormat gputypes.TextureFormat
}

// DefaultConfig returns the default renderer configuration.
func DefaultConfig() Config {
	return Config{
		Atlas:        atlas.DefaultConfig(),
		TargetFormat: gputypes.TextureFormatBGRA8Unorm,
	}
}

// rowGeometry is the cached vertex data for one grid row, tagged with
// the line generation it was built from and the atlas slots its UVs
// reference. The slots must survive eviction checks for the geometry
// to be reused.
type rowGeometry struct {
	gen   uint64
	data  []byte
	slots []atlas.Slot
}

// Renderer owns the GPU resources for drawing terminal snapshots: the
// atlas texture, the static cell grid, and the two render pipelines.
// BuildFrame rebuilds geometry for damaged rows; Render records and
// submits the two draw passes. Not safe for concurrent use.
type Renderer struct {
	device hal.Device
	queue  hal.Queue

	face    font.Rasterizer
	metrics font.Metrics
	atlas   *atlas.Atlas
	sprites lineSprites
	tex     *gpu.Texture

	shader        hal.ShaderModule
	bindLayout    hal.BindGroupLayout
	pipeLayout    hal.PipelineLayout
	bgPipeline    hal.RenderPipeline
	glyphPipeline hal.RenderPipeline
	sampler       hal.Sampler
	bindGroup     hal.BindGroup
	uniformBuf    *gpu.Buffer

	vertexBuf *gpu.Buffer
	indexBuf  *gpu.Buffer

	rows, cols    int
	width, height uint32
	indexCount    uint32

	rowCache   *cache.Cache[int, rowGeometry]
	lastCursor term.Cursor
	haveCursor bool
	clear      [4]float32

	format gputypes.TextureFormat
}

// New creates a renderer on the given device. The face supplies glyph
// bitmaps and the cell metrics that size the grid.
func New(device hal.Device, queue hal.Queue, face font.Rasterizer, cfg Config) (*Renderer, error) {
	if cfg.TargetFormat == 0 {
		cfg.TargetFormat = gputypes.TextureFormatBGRA8Unorm
	}

	a, err := atlas.New(cfg.Atlas, face)
	if err != nil {
		return nil, err
	}

	m := face.Metrics()
	sprites, err := registerSprites(a, m)
	if err != nil {
		return nil, err
	}

	size := uint32(a.Size())
	tex, err := gpu.NewTexture(device, queue, "glyph_atlas", size, size)
	if err != nil {
		return nil, err
	}

	r := &Renderer{
		device:   device,
		queue:    queue,
		face:     face,
		metrics:  m,
		atlas:    a,
		sprites:  sprites,
		tex:      tex,
		format:   cfg.TargetFormat,
		rowCache: cache.New[int, rowGeometry](0),
		clear:    [4]float32{0, 0, 0, 1},
	}

	if err := r.createPipelines(); err != nil {
		r.Close()
		return nil, err
	}
	if err := r.flushAtlas(); err != nil {
		r.Close()
		return nil, err
	}
	return r, nil
}

// NewShared creates a renderer on a device borrowed from a host
// application. The provider must expose HAL access the way gogpu's
// context provider does; the host keeps ownership of the device.
func NewShared(provider gpucontext.DeviceProvider, face font.Rasterizer, cfg Config) (*Renderer, error) {
	opened, err := gpu.FromProvider(provider)
	if err != nil {
		return nil, err
	}
	return New(opened.Device, opened.Queue, face, cfg)
}

// createPipelines compiles the cell shader and builds the two render
// pipelines plus the shared bind group resources.
func (r *Renderer) createPipelines() error {
	shader, err := gpu.NewShaderModule(r.device, "cell_shader", cellShaderSource)
	if err != nil {
		return err
	}
	r.shader = shader

	bindLayout, err := r.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "cell_bind_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageVertex | gputypes.ShaderStageFragment,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
			},
			{
				Binding:    1,
				Visibility: gputypes.ShaderStageFragment,
				Texture: &gputypes.TextureBindingLayout{
					SampleType:    gputypes.TextureSampleTypeFloat,
					ViewDimension: gputypes.TextureViewDimension2D,
				},
			},
			{
				Binding:    2,
				Visibility: gputypes.ShaderStageFragment,
				Sampler:    &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("create cell bind layout: %w", err)
	}
	r.bindLayout = bindLayout

	pipeLayout, err := r.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "cell_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{bindLayout},
	})
	if err != nil {
		return fmt.Errorf("create cell pipeline layout: %w", err)
	}
	r.pipeLayout = pipeLayout

	sampler, err := r.device.CreateSampler(&hal.SamplerDescriptor{
		Label:        "cell_sampler",
		AddressModeU: gputypes.AddressModeClampToEdge,
		AddressModeV: gputypes.AddressModeClampToEdge,
		AddressModeW: gputypes.AddressModeClampToEdge,
		MagFilter:    gputypes.FilterModeLinear,
		MinFilter:    gputypes.FilterModeLinear,
		MipmapFilter: gputypes.FilterModeNearest,
	})
	if err != nil {
		return fmt.Errorf("create cell sampler: %w", err)
	}
	r.sampler = sampler

	uniformBuf, err := gpu.NewBuffer(r.device, r.queue, "cell_uniforms", uniformSize,
		gputypes.BufferUsageUniform|gputypes.BufferUsageCopyDst)
	if err != nil {
		return err
	}
	r.uniformBuf = uniformBuf

	bindGroup, err := r.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  "cell_bind",
		Layout: bindLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.BufferBinding{
				Buffer: uniformBuf.Handle().NativeHandle(), Offset: 0, Size: uniformSize,
			}},
			{Binding: 1, Resource: gputypes.TextureViewBinding{
				TextureView: r.tex.View().NativeHandle(),
			}},
			{Binding: 2, Resource: gputypes.SamplerBinding{
				Sampler: sampler.NativeHandle(),
			}},
		},
	})
	if err != nil {
		return fmt.Errorf("create cell bind group: %w", err)
	}
	r.bindGroup = bindGroup

	// Background pass writes opaque cells; no blending.
	bgPipe, err := r.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  "cell_bg_pipeline",
		Layout: pipeLayout,
		Vertex: hal.VertexState{
			Module:     shader,
			EntryPoint: "vs_main",
			Buffers:    cellVertexLayout(),
		},
		Fragment: &hal.FragmentState{
			Module:     shader,
			EntryPoint: "fs_bg",
			Targets: []gputypes.ColorTargetState{
				{
					Format:    r.format,
					WriteMask: gputypes.ColorWriteMaskAll,
				},
			},
		},
		Primitive: gputypes.PrimitiveState{
			Topology: gputypes.PrimitiveTopologyTriangleList,
			CullMode: gputypes.CullModeNone,
		},
		Multisample: gputypes.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return fmt.Errorf("create cell bg pipeline: %w", err)
	}
	r.bgPipeline = bgPipe

	premulBlend := gputypes.BlendStatePremultiplied()
	glyphPipe, err := r.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  "cell_glyph_pipeline",
		Layout: pipeLayout,
		Vertex: hal.VertexState{
			Module:     shader,
			EntryPoint: "vs_main",
			Buffers:    cellVertexLayout(),
		},
		Fragment: &hal.FragmentState{
			Module:     shader,
			EntryPoint: "fs_glyph",
			Targets: []gputypes.ColorTargetState{
				{
					Format:    r.format,
					Blend:     &premulBlend,
					WriteMask: gputypes.ColorWriteMaskAll,
				},
			},
		},
		Primitive: gputypes.PrimitiveState{
			Topology: gputypes.PrimitiveTopologyTriangleList,
			CullMode: gputypes.CullModeNone,
		},
		Multisample: gputypes.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return fmt.Errorf("create cell glyph pipeline: %w", err)
	}
	r.glyphPipeline = glyphPipe

	return nil
}

// Size returns the frame dimensions in pixels.
func (r *Renderer) Size() (uint32, uint32) { return r.width, r.height }

// Atlas returns the glyph atlas, exposed for stats.
func (r *Renderer) Atlas() *atlas.Atlas { return r.atlas }

// BuildFrame rebuilds the vertex data for every row the snapshot
// damaged, uploads changed atlas regions, and refreshes the uniforms.
// Glyphs that fail to rasterize or no longer fit in the atlas render
// as placeholders; the frame itself never fails on those.
func (r *Renderer) BuildFrame(snap term.Snapshot, pal *term.Palette) error {
	r.atlas.BeginFrame()

	if snap.Rows != r.rows || snap.Cols != r.cols {
		if err := r.resize(snap.Rows, snap.Cols); err != nil {
			return err
		}
	}

	damaged := make(map[int]bool, len(snap.Damage))
	for _, y := range snap.Damage {
		damaged[y] = true
	}
	// The cursor is painted by swapping cell colors, so the rows it
	// leaves and enters must be rebuilt even when their text is clean.
	if r.haveCursor && (r.lastCursor != snap.Cursor) {
		damaged[r.lastCursor.Y] = true
		damaged[snap.Cursor.Y] = true
	}

	var degraded int
	for y := 0; y < r.rows; y++ {
		line := snap.Lines[y]
		cached, ok := r.rowCache.Peek(y)
		if ok && !damaged[y] && cached.gen == line.Generation() && r.touchAll(cached.slots) {
			continue
		}
		data, slots, n := r.buildRow(y, line, snap.Cursor, pal)
		degraded += n
		r.rowCache.Set(y, rowGeometry{gen: line.Generation(), data: data, slots: slots})
		off := uint64(y) * uint64(r.cols) * verticesPerCell * cellVertexStride
		if err := r.vertexBuf.Write(off, data); err != nil {
			return err
		}
	}
	if degraded > 0 {
		term.Logger().Warn("glyphs degraded to placeholder", "count", degraded)
	}

	if err := r.flushAtlas(); err != nil {
		return err
	}

	bg := pal.ResolveBG(screen.Color{})
	r.clear = rgbaOf(bg)
	r.lastCursor = snap.Cursor
	r.haveCursor = true
	return nil
}

// resize reallocates the quad grid for a new terminal size and
// invalidates all cached row geometry.
func (r *Renderer) resize(rows, cols int) error {
	r.rows, r.cols = rows, cols
	r.width = uint32(cols * r.metrics.CellWidth)
	r.height = uint32(rows * r.metrics.CellHeight)
	r.rowCache.Clear()
	r.haveCursor = false

	if r.vertexBuf != nil {
		r.vertexBuf.Destroy()
	}
	if r.indexBuf != nil {
		r.indexBuf.Destroy()
	}

	numCells := rows * cols
	vb, err := gpu.NewBuffer(r.device, r.queue, "cell_vertices",
		uint64(numCells)*verticesPerCell*cellVertexStride,
		gputypes.BufferUsageVertex|gputypes.BufferUsageCopyDst)
	if err != nil {
		return err
	}
	r.vertexBuf = vb

	ib, err := gpu.NewBufferWithData(r.device, r.queue, "cell_indices",
		buildIndexData(numCells), gputypes.BufferUsageIndex)
	if err != nil {
		return err
	}
	r.indexBuf = ib
	r.indexCount = uint32(numCells * indicesPerCell)

	var u [uniformSize]byte
	binary.LittleEndian.PutUint32(u[0:], math.Float32bits(float32(r.width)))
	binary.LittleEndian.PutUint32(u[4:], math.Float32bits(float32(r.height)))
	return r.uniformBuf.Write(0, u[:])
}

// touchAll re-pins every slot a cached row references. False means a
// slot was evicted and its rectangle may now hold a different glyph,
// so the row geometry cannot be reused.
func (r *Renderer) touchAll(slots []atlas.Slot) bool {
	for _, s := range slots {
		if !r.atlas.Touch(s) {
			return false
		}
	}
	return true
}

// buildRow serializes the quads for one row. It returns the vertex
// bytes, the glyph slots the row references, and the number of cells
// degraded to a placeholder.
func (r *Renderer) buildRow(y int, line *screen.Line, cursor term.Cursor, pal *term.Palette) ([]byte, []atlas.Slot, int) {
	data := make([]byte, r.cols*verticesPerCell*cellVertexStride)
	var slots []atlas.Slot
	degraded := 0

	cellW := float32(r.metrics.CellWidth)
	cellH := float32(r.metrics.CellHeight)
	top := float32(y) * cellH

	for x := 0; x < r.cols; {
		c := line.Cell(x)
		w := int(c.Width)
		if w < 1 {
			// Orphaned continuation cell; render as blank.
			w = 1
			c = screen.Blank(c.Attrs)
		}
		if x+w > r.cols {
			w = r.cols - x
		}

		slot, hasGlyph, err := r.resolveGlyph(c, w)
		if err != nil {
			degraded++
		}
		if hasGlyph {
			slots = append(slots, slot)
		}

		underline := r.sprites[lineSpriteFor(c.Attrs)]

		for i := 0; i < w; i++ {
			cx := x + i
			fg, bg := r.cellColors(c.Attrs, pal, cursor.Visible && cursor.Y == y && cursor.X == cx)

			q := cellQuad{
				X0: float32(cx) * cellW,
				Y0: top,
				X1: float32(cx+1) * cellW,
				Y1: top + cellH,

				Underline: r.slotUV(underline, 0, 1),
				BG:        bg,
				FG:        fg,
			}
			if hasGlyph {
				q.Tex = r.slotUV(slot, i, w)
				q.HasColor = slot.HasColor
			} else {
				q.Tex = r.slotUV(r.sprites[spriteBlank], 0, 1)
			}
			appendQuad(data[cx*verticesPerCell*cellVertexStride:], &q)
		}
		x += w
	}
	return data, slots, degraded
}

// resolveGlyph maps a cell to its atlas slot. Blank cells use the
// transparent sprite (reported as hasGlyph false); failures fall back
// to the placeholder slot the atlas already returned.
func (r *Renderer) resolveGlyph(c screen.Cell, w int) (atlas.Slot, bool, error) {
	if c.Text == "" || c.Text == " " {
		return atlas.Slot{}, false, nil
	}
	var style font.Style
	if c.Attrs.Has(screen.AttrBold) {
		style |= font.StyleBold
	}
	if c.Attrs.Has(screen.AttrItalic) {
		style |= font.StyleItalic
	}
	slot, err := r.atlas.Resolve(atlas.TextKey(c.Text, style, w))
	return slot, true, err
}

// cellColors resolves the foreground and background of one cell,
// honoring bold brightening, reverse video, invisibility, and the
// cursor overlay.
func (r *Renderer) cellColors(attrs screen.Attributes, pal *term.Palette, isCursor bool) ([4]float32, [4]float32) {
	fg := pal.ResolveFG(attrs.FG, attrs.Has(screen.AttrBold))
	bg := pal.ResolveBG(attrs.BG)
	if attrs.Has(screen.AttrReverse) {
		fg, bg = bg, fg
	}
	if attrs.Has(screen.AttrInvisible) {
		fg = bg
	}
	if isCursor {
		fg, bg = pal.CursorFG, pal.CursorBG
	}
	return rgbaOf(fg), rgbaOf(bg)
}

// slotUV returns the texture rectangle for slice i of a slot spanning
// n cells. Wide glyphs pack both columns into one slot; each cell
// samples its own horizontal slice.
func (r *Renderer) slotUV(s atlas.Slot, i, n int) uvRect {
	size := float32(r.atlas.Size())
	sliceW := float32(s.W) / float32(n)
	x0 := float32(s.X) + float32(i)*sliceW
	return uvRect{
		U0: x0 / size,
		V0: float32(s.Y) / size,
		U1: (x0 + sliceW) / size,
		V1: float32(s.Y+s.H) / size,
	}
}

// lineSpriteFor selects the underline/strikethrough sprite for a cell.
func lineSpriteFor(attrs screen.Attributes) int {
	switch {
	case attrs.Has(screen.AttrUnderline | screen.AttrStrikethrough):
		return spriteUnderlineStrike
	case attrs.Has(screen.AttrUnderline):
		return spriteUnderline
	case attrs.Has(screen.AttrStrikethrough):
		return spriteStrike
	default:
		return spriteBlank
	}
}

// flushAtlas uploads the texture regions the atlas wrote since the
// last frame.
func (r *Renderer) flushAtlas() error {
	stride := uint32(r.atlas.Size()) * 4
	pix := r.atlas.Pix()
	for _, rect := range r.atlas.TakeDirty() {
		off := (rect.Y*r.atlas.Size() + rect.X) * 4
		err := r.tex.UploadRegion(uint32(rect.X), uint32(rect.Y), uint32(rect.W), uint32(rect.H), pix[off:], stride)
		if err != nil {
			return err
		}
	}
	return nil
}

// Render records both passes against the target view and submits,
// waiting for the GPU to finish so the caller can present. BuildFrame
// must have been called at least once.
func (r *Renderer) Render(view hal.TextureView) error {
	if r.indexCount == 0 {
		return errors.New("render: no frame built")
	}

	encoder, err := r.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: "term_frame_encoder",
	})
	if err != nil {
		return fmt.Errorf("create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("term_frame"); err != nil {
		return fmt.Errorf("begin encoding: %w", err)
	}

	rp := encoder.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: "term_cell_pass",
		ColorAttachments: []hal.RenderPassColorAttachment{{
			View:    view,
			LoadOp:  gputypes.LoadOpClear,
			StoreOp: gputypes.StoreOpStore,
			ClearValue: gputypes.Color{
				R: float64(r.clear[0]),
				G: float64(r.clear[1]),
				B: float64(r.clear[2]),
				A: float64(r.clear[3]),
			},
		}},
	})

	// Pass 1: backgrounds and line decorations.
	rp.SetPipeline(r.bgPipeline)
	rp.SetBindGroup(0, r.bindGroup, nil)
	rp.SetVertexBuffer(0, r.vertexBuf.Handle(), 0)
	rp.SetIndexBuffer(r.indexBuf.Handle(), gputypes.IndexFormatUint32, 0)
	rp.DrawIndexed(r.indexCount, 1, 0, 0, 0)

	// Pass 2: glyphs over the same geometry.
	rp.SetPipeline(r.glyphPipeline)
	rp.DrawIndexed(r.indexCount, 1, 0, 0, 0)

	rp.End()

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("end encoding: %w", err)
	}
	defer r.device.FreeCommandBuffer(cmdBuf)

	fence, err := r.device.CreateFence()
	if err != nil {
		return fmt.Errorf("create fence: %w", err)
	}
	defer r.device.DestroyFence(fence)

	if err := r.queue.Submit([]hal.CommandBuffer{cmdBuf}, fence, 1); err != nil {
		return fmt.Errorf("submit: %w", err)
	}
	fenceOK, err := r.device.Wait(fence, 1, 5*time.Second)
	if err != nil || !fenceOK {
		return fmt.Errorf("wait for GPU: ok=%v err=%w", fenceOK, err)
	}
	return nil
}

// Close releases all GPU resources. Safe to call twice.
func (r *Renderer) Close() {
	if r.vertexBuf != nil {
		r.vertexBuf.Destroy()
		r.vertexBuf = nil
	}
	if r.indexBuf != nil {
		r.indexBuf.Destroy()
		r.indexBuf = nil
	}
	if r.bindGroup != nil {
		r.device.DestroyBindGroup(r.bindGroup)
		r.bindGroup = nil
	}
	if r.uniformBuf != nil {
		r.uniformBuf.Destroy()
		r.uniformBuf = nil
	}
	if r.glyphPipeline != nil {
		r.device.DestroyRenderPipeline(r.glyphPipeline)
		r.glyphPipeline = nil
	}
	if r.bgPipeline != nil {
		r.device.DestroyRenderPipeline(r.bgPipeline)
		r.bgPipeline = nil
	}
	if r.sampler != nil {
		r.device.DestroySampler(r.sampler)
		r.sampler = nil
	}
	if r.pipeLayout != nil {
		r.device.DestroyPipelineLayout(r.pipeLayout)
		r.pipeLayout = nil
	}
	if r.bindLayout != nil {
		r.device.DestroyBindGroupLayout(r.bindLayout)
		r.bindLayout = nil
	}
	if r.shader != nil {
		r.device.DestroyShaderModule(r.shader)
		r.shader = nil
	}
	if r.tex != nil {
		r.tex.Destroy()
		r.tex = nil
	}
}

// rgbaOf converts a palette color to normalized RGBA.
func rgbaOf(c term.RGB) [4]float32 {
	return [4]float32{
		float32(c.R) / 255,
		float32(c.G) / 255,
		float32(c.B) / 255,
		1,
	}
}
