// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu

import (
	"fmt"
	"sync/atomic"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// textureMemory tracks total bytes held by live Textures.
var textureMemory atomic.Uint64

// TextureMemory returns the bytes currently allocated to Textures.
func TextureMemory() uint64 { return textureMemory.Load() }

// Texture wraps a sampleable hal texture plus its view. All Textures
// are RGBA8 with CopyDst usage so the CPU side can stream sub-regions
// in through the queue.
type Texture struct {
	device hal.Device
	queue  hal.Queue

	tex  hal.Texture
	view hal.TextureView

	width  uint32
	height uint32

	released atomic.Bool
}

// NewTexture creates a width x height RGBA8 texture bindable from the
// fragment stage and writable from the queue.
func NewTexture(device hal.Device, queue hal.Queue, label string, width, height uint32) (*Texture, error) {
	tex, err := device.CreateTexture(&hal.TextureDescriptor{
		Label:         label,
		Size:          hal.Extent3D{Width: width, Height: height, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Usage:         gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("create texture %q: %w", label, err)
	}

	view, err := device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:         label + "_view",
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		device.DestroyTexture(tex)
		return nil, fmt.Errorf("create texture view %q: %w", label, err)
	}

	textureMemory.Add(uint64(width) * uint64(height) * 4)
	return &Texture{
		device: device,
		queue:  queue,
		tex:    tex,
		view:   view,
		width:  width,
		height: height,
	}, nil
}

// Width returns the texture width in pixels.
func (t *Texture) Width() uint32 { return t.width }

// Height returns the texture height in pixels.
func (t *Texture) Height() uint32 { return t.height }

// View returns the texture view for bind groups.
func (t *Texture) View() hal.TextureView { return t.view }

// Handle returns the underlying hal texture.
func (t *Texture) Handle() hal.Texture { return t.tex }

// Upload writes a full-texture RGBA image. data must hold exactly
// width*height*4 bytes.
func (t *Texture) Upload(data []byte) error {
	return t.UploadRegion(0, 0, t.width, t.height, data, t.width*4)
}

// UploadRegion writes one RGBA sub-rectangle. data holds h rows of w*4
// payload bytes each, rows srcStride bytes apart. The copy is queued;
// it completes before any later submission on the same queue samples
// the texture.
func (t *Texture) UploadRegion(x, y, w, h uint32, data []byte, srcStride uint32) error {
	if t.released.Load() {
		return ErrTextureReleased
	}
	if x+w > t.width || y+h > t.height {
		return fmt.Errorf("%w: %dx%d at (%d,%d) in %dx%d", ErrUploadBounds, w, h, x, y, t.width, t.height)
	}
	if w == 0 || h == 0 {
		return nil
	}

	rowBytes := w * 4
	payload := data
	if srcStride != rowBytes {
		// WriteTexture wants tightly packed rows.
		payload = make([]byte, uint64(rowBytes)*uint64(h))
		for row := uint32(0); row < h; row++ {
			src := uint64(row) * uint64(srcStride)
			dst := uint64(row) * uint64(rowBytes)
			copy(payload[dst:dst+uint64(rowBytes)], data[src:src+uint64(rowBytes)])
		}
	}

	t.queue.WriteTexture(
		&hal.ImageCopyTexture{
			Texture:  t.tex,
			MipLevel: 0,
			Origin:   hal.Origin3D{X: x, Y: y, Z: 0},
			Aspect:   gputypes.TextureAspectAll,
		},
		payload,
		&hal.ImageDataLayout{
			Offset:       0,
			BytesPerRow:  rowBytes,
			RowsPerImage: h,
		},
		&hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
	)
	return nil
}

// Destroy releases the texture and its view. Safe to call twice.
func (t *Texture) Destroy() {
	if !t.released.CompareAndSwap(false, true) {
		return
	}
	if t.view != nil {
		t.device.DestroyTextureView(t.view)
		t.view = nil
	}
	if t.tex != nil {
		t.device.DestroyTexture(t.tex)
		t.tex = nil
	}
	textureMemory.Add(^(uint64(t.width)*uint64(t.height)*4 - 1))
}
