// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"

	term "github.com/gogpu/term"
	"github.com/gogpu/term/atlas"
	"github.com/gogpu/term/escape"
	"github.com/gogpu/term/font"
)

// createNoopDevice creates a noop device and queue for testing.
// Returns the device, queue, and a cleanup function.
func createNoopDevice(t *testing.T) (hal.Device, hal.Queue, func()) {
	t.Helper()
	api := noop.API{}
	instance, err := api.CreateInstance(nil)
	if err != nil {
		t.Fatalf("CreateInstance failed: %v", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	openDev, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		t.Fatalf("Open failed: %v", err)
	}
	cleanup := func() {
		openDev.Device.Destroy()
		instance.Destroy()
	}
	return openDev.Device, openDev.Queue, cleanup
}

// stubFace produces solid cell-sized bitmaps and can be told to fail
// for specific clusters.
type stubFace struct {
	m    font.Metrics
	fail map[string]bool
}

func newStubFace() *stubFace {
	return &stubFace{
		m:    font.Metrics{CellWidth: 8, CellHeight: 16, Ascent: 12},
		fail: make(map[string]bool),
	}
}

func (s *stubFace) Metrics() font.Metrics { return s.m }

func (s *stubFace) Rasterize(cluster string, _ font.Style, cells int) (*font.Bitmap, error) {
	if s.fail[cluster] {
		return nil, &font.RasterizationError{Cluster: cluster}
	}
	w := cells * s.m.CellWidth
	bm := &font.Bitmap{Pix: make([]uint8, w*s.m.CellHeight*4), Width: w, Height: s.m.CellHeight}
	for i := range bm.Pix {
		bm.Pix[i] = 0xFF
	}
	return bm, nil
}

func newTestRenderer(t *testing.T) (*Renderer, *stubFace) {
	t.Helper()
	device, queue, cleanup := createNoopDevice(t)
	t.Cleanup(cleanup)

	face := newStubFace()
	cfg := DefaultConfig()
	cfg.Atlas = atlas.Config{Size: 256, Padding: 1}
	r, err := New(device, queue, face, cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(r.Close)
	return r, face
}

// feed parses raw bytes into the terminal state.
func feed(st *term.State, data string) {
	p := escape.NewParser()
	p.Parse([]byte(data), st.Apply)
}

func TestRendererNew(t *testing.T) {
	r, _ := newTestRenderer(t)
	if r.bgPipeline == nil || r.glyphPipeline == nil {
		t.Error("expected both pipelines after New")
	}
	if r.bindGroup == nil {
		t.Error("expected bind group after New")
	}
	if w, h := r.Size(); w != 0 || h != 0 {
		t.Errorf("size before first frame = (%d, %d), want (0, 0)", w, h)
	}
	// No pending atlas uploads after sprite registration.
	if dirty := r.Atlas().TakeDirty(); len(dirty) != 0 {
		t.Errorf("expected flushed atlas after New, got %d dirty rects", len(dirty))
	}
}

func TestBuildFrameGeometry(t *testing.T) {
	r, _ := newTestRenderer(t)
	st := term.NewState(2, 4, 0)
	feed(st, "hi")

	if err := r.BuildFrame(st.Snapshot(), st.Palette()); err != nil {
		t.Fatalf("BuildFrame: %v", err)
	}

	if w, h := r.Size(); w != 4*8 || h != 2*16 {
		t.Errorf("frame size = (%d, %d), want (32, 32)", w, h)
	}
	if want := uint32(2 * 4 * indicesPerCell); r.indexCount != want {
		t.Errorf("index count = %d, want %d", r.indexCount, want)
	}
	if r.rowCache.Len() != 2 {
		t.Errorf("cached rows = %d, want 2", r.rowCache.Len())
	}
	if dirty := r.Atlas().TakeDirty(); len(dirty) != 0 {
		t.Errorf("expected flushed atlas after BuildFrame, got %d dirty rects", len(dirty))
	}
}

func TestBuildFrameRowCacheReuse(t *testing.T) {
	r, _ := newTestRenderer(t)
	st := term.NewState(3, 8, 0)
	feed(st, "top\r\nmid")

	if err := r.BuildFrame(st.Snapshot(), st.Palette()); err != nil {
		t.Fatalf("first BuildFrame: %v", err)
	}
	before, _ := r.rowCache.Peek(2)

	// Change only row 0; row 2 must keep its geometry. A rebuild
	// allocates fresh vertex data, so the backing array is the tell.
	feed(st, "\x1b[1;1HTOP")
	if err := r.BuildFrame(st.Snapshot(), st.Palette()); err != nil {
		t.Fatalf("second BuildFrame: %v", err)
	}
	after, _ := r.rowCache.Peek(2)
	if &after.data[0] != &before.data[0] {
		t.Error("untouched row 2 was rebuilt")
	}
}

func TestBuildFrameCursorRowRebuild(t *testing.T) {
	r, _ := newTestRenderer(t)
	st := term.NewState(4, 8, 0)
	feed(st, "ab")

	if err := r.BuildFrame(st.Snapshot(), st.Palette()); err != nil {
		t.Fatalf("first BuildFrame: %v", err)
	}
	before, _ := r.rowCache.Peek(0)
	cursorOff := 2 * verticesPerCell * cellVertexStride // cell (2,0), bg at +24

	// The cursor sits at (2,0): its cell must carry the cursor colors.
	pal := st.Palette()
	wantBG := [4]float32{
		float32(pal.CursorBG.R) / 255,
		float32(pal.CursorBG.G) / 255,
		float32(pal.CursorBG.B) / 255,
		1,
	}
	gotBG := [4]float32{
		f32At(before.data, cursorOff+24),
		f32At(before.data, cursorOff+28),
		f32At(before.data, cursorOff+32),
		f32At(before.data, cursorOff+36),
	}
	if gotBG != wantBG {
		t.Errorf("cursor cell bg = %v, want %v", gotBG, wantBG)
	}

	// Move the cursor to row 2. Row 0 has no text damage but must be
	// rebuilt to drop the cursor overlay.
	feed(st, "\x1b[3;1H")
	if err := r.BuildFrame(st.Snapshot(), st.Palette()); err != nil {
		t.Fatalf("second BuildFrame: %v", err)
	}
	after, _ := r.rowCache.Peek(0)
	stillCursor := [4]float32{
		f32At(after.data, cursorOff+24),
		f32At(after.data, cursorOff+28),
		f32At(after.data, cursorOff+32),
		f32At(after.data, cursorOff+36),
	}
	if stillCursor == wantBG {
		t.Error("old cursor row kept the cursor overlay after the cursor moved")
	}
}

func TestBuildFrameRebuildsRowAfterEviction(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	t.Cleanup(cleanup)

	face := newStubFace()
	cfg := DefaultConfig()
	cfg.Atlas = atlas.Config{Size: 64, Padding: 1}
	r, err := New(device, queue, face, cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(r.Close)

	// "A" lives on row 1, which stays clean for the rest of the test.
	st := term.NewState(2, 4, 0)
	feed(st, "\x1b[2;1HA\x1b[1;1H")
	if err := r.BuildFrame(st.Snapshot(), st.Palette()); err != nil {
		t.Fatalf("first BuildFrame: %v", err)
	}

	// Churn row 0 with fresh glyphs until the tiny atlas has had to
	// evict. Row 0 rebuilds before row 1's slots are re-pinned each
	// frame, so the churn can push "A" out between frames.
	for frame := 0; frame < 10; frame++ {
		text := ""
		for col := 0; col < 4; col++ {
			text += string(rune(0x100 + frame*4 + col))
		}
		feed(st, "\x1b[1;1H"+text)
		if err := r.BuildFrame(st.Snapshot(), st.Palette()); err != nil {
			t.Fatalf("churn frame %d: %v", frame, err)
		}
	}
	if r.Atlas().Stats().Evictions == 0 {
		t.Fatal("churn did not evict; atlas too large for the scenario")
	}

	// Wherever "A" sits now, the clean row's cached vertex data must
	// reference that rectangle, not the one it was first built with.
	slot, err := r.Atlas().Resolve(atlas.TextKey("A", 0, 1))
	if err != nil {
		t.Fatalf("re-resolve A: %v", err)
	}
	want := r.slotUV(slot, 0, 1)
	row, ok := r.rowCache.Peek(1)
	if !ok {
		t.Fatal("row 1 not cached")
	}
	gotU, gotV := f32At(row.data, 8), f32At(row.data, 12)
	if gotU != want.U0 || gotV != want.V0 {
		t.Errorf("clean row references stale atlas rect: uv = (%v, %v), want (%v, %v)",
			gotU, gotV, want.U0, want.V0)
	}
	for _, s := range row.slots {
		if !r.Atlas().Touch(s) {
			t.Error("cached row holds a dead slot")
		}
	}
}

func TestBuildFramePlaceholderDegradation(t *testing.T) {
	r, face := newTestRenderer(t)
	face.fail["X"] = true

	st := term.NewState(1, 4, 0)
	feed(st, "aXb")

	// Failed glyphs degrade to the placeholder; the frame still builds.
	if err := r.BuildFrame(st.Snapshot(), st.Palette()); err != nil {
		t.Fatalf("BuildFrame with failing glyph: %v", err)
	}
}

func TestBuildFrameResize(t *testing.T) {
	r, _ := newTestRenderer(t)
	st := term.NewState(2, 4, 0)
	feed(st, "ab")

	if err := r.BuildFrame(st.Snapshot(), st.Palette()); err != nil {
		t.Fatalf("first BuildFrame: %v", err)
	}

	if err := st.Resize(3, 6); err != nil {
		t.Fatalf("Resize: %v", err)
	}
	if err := r.BuildFrame(st.Snapshot(), st.Palette()); err != nil {
		t.Fatalf("BuildFrame after resize: %v", err)
	}
	if w, h := r.Size(); w != 6*8 || h != 3*16 {
		t.Errorf("frame size after resize = (%d, %d), want (48, 48)", w, h)
	}
	if want := uint32(3 * 6 * indicesPerCell); r.indexCount != want {
		t.Errorf("index count after resize = %d, want %d", r.indexCount, want)
	}
	if r.rowCache.Len() != 3 {
		t.Errorf("cached rows after resize = %d, want 3", r.rowCache.Len())
	}
}

func TestBuildFrameWideGlyph(t *testing.T) {
	r, _ := newTestRenderer(t)
	st := term.NewState(1, 4, 0)
	feed(st, "世") // CJK, two cells wide

	if err := r.BuildFrame(st.Snapshot(), st.Palette()); err != nil {
		t.Fatalf("BuildFrame: %v", err)
	}
	row, ok := r.rowCache.Peek(0)
	if !ok {
		t.Fatal("row 0 not cached")
	}

	// Both halves sample the same slot; the right half starts where the
	// left half ends.
	leftU1 := f32At(row.data, 0*verticesPerCell*cellVertexStride+8+cellVertexStride) // TR.tex.u of cell 0
	rightU0 := f32At(row.data, 1*verticesPerCell*cellVertexStride+8)                 // TL.tex.u of cell 1
	if leftU1 != rightU0 {
		t.Errorf("wide glyph UV not contiguous: left ends at %v, right starts at %v", leftU1, rightU0)
	}
	if leftU1 == 0 {
		t.Error("wide glyph UV slice is empty")
	}
}

func TestRenderWithoutFrame(t *testing.T) {
	r, _ := newTestRenderer(t)
	if err := r.Render(nil); err == nil {
		t.Error("expected error rendering before any BuildFrame")
	}
}

func TestRenderSubmits(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	face := newStubFace()
	cfg := DefaultConfig()
	cfg.Atlas = atlas.Config{Size: 256, Padding: 1}
	r, err := New(device, queue, face, cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer r.Close()

	st := term.NewState(2, 4, 0)
	feed(st, "ok")
	if err := r.BuildFrame(st.Snapshot(), st.Palette()); err != nil {
		t.Fatalf("BuildFrame: %v", err)
	}

	w, h := r.Size()
	tex, err := device.CreateTexture(&hal.TextureDescriptor{
		Label:         "test_target",
		Size:          hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        gputypes.TextureFormatBGRA8Unorm,
		Usage:         gputypes.TextureUsageRenderAttachment,
	})
	if err != nil {
		t.Fatalf("CreateTexture: %v", err)
	}
	defer device.DestroyTexture(tex)
	view, err := device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:         "test_target_view",
		Format:        gputypes.TextureFormatBGRA8Unorm,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		t.Fatalf("CreateTextureView: %v", err)
	}
	defer device.DestroyTextureView(view)

	if err := r.Render(view); err != nil {
		t.Fatalf("Render: %v", err)
	}
}
