package gpu

import (
	"errors"
	"testing"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"
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

func TestBackendLifecycle(t *testing.T) {
	b := NewBackend()
	if b.IsInitialized() {
		t.Fatal("fresh backend reports initialized")
	}
	if b.Info() != nil {
		t.Error("expected nil info before Init")
	}
	if !b.DeviceID().IsZero() || !b.QueueID().IsZero() {
		t.Error("expected zero handles before Init")
	}
	// Close before Init is a no-op.
	b.Close()
}

func TestBackendDescribeBeforeInit(t *testing.T) {
	b := NewBackend()
	if _, err := b.Describe(); !errors.Is(err, ErrNotInitialized) {
		t.Fatalf("Describe before Init: got %v, want ErrNotInitialized", err)
	}
}

// halDeviceProvider implements gpucontext.DeviceProvider plus the HAL
// escape hatch used for device sharing.
type halDeviceProvider struct {
	device hal.Device
	queue  hal.Queue
}

func (p *halDeviceProvider) Device() gpucontext.Device   { return nil }
func (p *halDeviceProvider) Queue() gpucontext.Queue     { return nil }
func (p *halDeviceProvider) Adapter() gpucontext.Adapter { return nil }
func (p *halDeviceProvider) SurfaceFormat() gputypes.TextureFormat {
	return gputypes.TextureFormatUndefined
}
func (p *halDeviceProvider) AdapterInfo() gpucontext.AdapterInfo { return gpucontext.AdapterInfo{} }
func (p *halDeviceProvider) HalDevice() any                      { return p.device }
func (p *halDeviceProvider) HalQueue() any                       { return p.queue }

// bareProvider lacks the HAL accessors.
type bareProvider struct{}

func (bareProvider) Device() gpucontext.Device   { return nil }
func (bareProvider) Queue() gpucontext.Queue     { return nil }
func (bareProvider) Adapter() gpucontext.Adapter { return nil }
func (bareProvider) SurfaceFormat() gputypes.TextureFormat {
	return gputypes.TextureFormatUndefined
}
func (bareProvider) AdapterInfo() gpucontext.AdapterInfo { return gpucontext.AdapterInfo{} }

func TestFromProvider(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	opened, err := FromProvider(&halDeviceProvider{device: device, queue: queue})
	if err != nil {
		t.Fatalf("FromProvider: %v", err)
	}
	if opened.Device != device || opened.Queue != queue {
		t.Error("shared device not passed through")
	}

	// Close must not destroy the borrowed device.
	opened.Close()
	if opened.Device != nil {
		t.Error("expected nil Device after Close")
	}
	tex, err := NewTexture(device, queue, "after_close", 16, 16)
	if err != nil {
		t.Fatalf("device unusable after borrowed Close: %v", err)
	}
	tex.Destroy()
}

func TestFromProviderRejectsBare(t *testing.T) {
	if _, err := FromProvider(bareProvider{}); !errors.Is(err, ErrNoGPU) {
		t.Errorf("err = %v, want ErrNoGPU", err)
	}
	if _, err := FromProvider(&halDeviceProvider{}); !errors.Is(err, ErrNoGPU) {
		t.Errorf("nil hal device: err = %v, want ErrNoGPU", err)
	}
}

func TestTextureUpload(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	before := TextureMemory()
	tex, err := NewTexture(device, queue, "test_atlas", 64, 64)
	if err != nil {
		t.Fatalf("NewTexture: %v", err)
	}
	if got := TextureMemory() - before; got != 64*64*4 {
		t.Errorf("texture memory delta = %d, want %d", got, 64*64*4)
	}
	if tex.Width() != 64 || tex.Height() != 64 {
		t.Errorf("size = %dx%d, want 64x64", tex.Width(), tex.Height())
	}
	if tex.View() == nil {
		t.Error("expected non-nil view")
	}

	full := make([]byte, 64*64*4)
	if err := tex.Upload(full); err != nil {
		t.Errorf("Upload: %v", err)
	}

	// Sub-region with a wider source stride than the copied row.
	region := make([]byte, 8*64*4)
	if err := tex.UploadRegion(4, 4, 8, 8, region, 64*4); err != nil {
		t.Errorf("UploadRegion: %v", err)
	}

	if err := tex.UploadRegion(60, 60, 8, 8, region, 64*4); !errors.Is(err, ErrUploadBounds) {
		t.Errorf("out-of-bounds upload: err = %v, want ErrUploadBounds", err)
	}

	tex.Destroy()
	if got := TextureMemory(); got != before {
		t.Errorf("texture memory after Destroy = %d, want %d", got, before)
	}
	if err := tex.Upload(full); !errors.Is(err, ErrTextureReleased) {
		t.Errorf("upload after Destroy: err = %v, want ErrTextureReleased", err)
	}
	// Second Destroy is a no-op.
	tex.Destroy()
}

func TestBufferWrite(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	data := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	buf, err := NewBufferWithData(device, queue, "test_verts", data, gputypes.BufferUsageVertex)
	if err != nil {
		t.Fatalf("NewBufferWithData: %v", err)
	}
	defer buf.Destroy()

	if buf.Size() != 8 {
		t.Errorf("Size = %d, want 8", buf.Size())
	}
	if err := buf.Write(4, []byte{9, 9, 9, 9}); err != nil {
		t.Errorf("Write: %v", err)
	}
	if err := buf.Write(6, []byte{9, 9, 9, 9}); err == nil {
		t.Error("expected error for write past end of buffer")
	}
}

func TestCompileWGSL(t *testing.T) {
	const src = `
@vertex
fn vs_main(@location(0) pos: vec2<f32>) -> @builtin(position) vec4<f32> {
    return vec4<f32>(pos, 0.0, 1.0);
}

@fragment
fn fs_main() -> @location(0) vec4<f32> {
    return vec4<f32>(1.0, 1.0, 1.0, 1.0);
}
`
	words, err := CompileWGSL(src)
	if err != nil {
		t.Fatalf("CompileWGSL: %v", err)
	}
	if len(words) == 0 {
		t.Fatal("expected non-empty SPIR-V")
	}
	// SPIR-V magic number.
	if words[0] != 0x07230203 {
		t.Errorf("SPIR-V magic = %#x, want 0x07230203", words[0])
	}

	if _, err := CompileWGSL("not wgsl"); err == nil {
		t.Error("expected error for invalid source")
	}
}
