package gpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// Buffer wraps a hal buffer with its size and destruction state.
type Buffer struct {
	device hal.Device
	queue  hal.Queue

	buf  hal.Buffer
	size uint64
}

// NewBuffer creates an empty buffer of the given size and usage.
func NewBuffer(device hal.Device, queue hal.Queue, label string, size uint64, usage gputypes.BufferUsage) (*Buffer, error) {
	buf, err := device.CreateBuffer(&hal.BufferDescriptor{
		Label: label,
		Size:  size,
		Usage: usage,
	})
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", label, err)
	}
	return &Buffer{device: device, queue: queue, buf: buf, size: size}, nil
}

// NewBufferWithData creates a buffer sized to data and uploads it.
func NewBufferWithData(device hal.Device, queue hal.Queue, label string, data []byte, usage gputypes.BufferUsage) (*Buffer, error) {
	b, err := NewBuffer(device, queue, label, uint64(len(data)), usage|gputypes.BufferUsageCopyDst)
	if err != nil {
		return nil, err
	}
	b.queue.WriteBuffer(b.buf, 0, data)
	return b, nil
}

// Write uploads data at the given byte offset.
func (b *Buffer) Write(offset uint64, data []byte) error {
	if b.buf == nil {
		return fmt.Errorf("gpu: write to destroyed buffer")
	}
	if offset+uint64(len(data)) > b.size {
		return fmt.Errorf("gpu: write of %d bytes at %d exceeds buffer size %d", len(data), offset, b.size)
	}
	b.queue.WriteBuffer(b.buf, offset, data)
	return nil
}

// Size returns the buffer size in bytes.
func (b *Buffer) Size() uint64 { return b.size }

// Handle returns the underlying hal buffer.
func (b *Buffer) Handle() hal.Buffer { return b.buf }

// Destroy releases the buffer. Safe to call twice.
func (b *Buffer) Destroy() {
	if b.buf != nil {
		b.device.DestroyBuffer(b.buf)
		b.buf = nil
	}
}
