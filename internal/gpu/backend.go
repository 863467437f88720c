// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu

import (
	"fmt"
	"sync"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/core"
)

// GPUInfo describes the selected GPU adapter.
type GPUInfo struct {
	// Name is the GPU name (e.g. "NVIDIA GeForce RTX 3080").
	Name string
	// Vendor is the GPU vendor.
	Vendor string
	// DeviceType is the adapter class (discrete, integrated, ...).
	DeviceType gputypes.DeviceType
	// Backend is the graphics API in use (Vulkan, Metal, DX12).
	Backend gputypes.Backend
	// Driver is the driver version string.
	Driver string
}

// String returns a human-readable description of the GPU.
func (g *GPUInfo) String() string {
	return fmt.Sprintf("%s (%s, %s)", g.Name, g.DeviceType, g.Backend)
}

// Backend manages the wgpu/core handles for the terminal renderer:
// instance, adapter, device and queue. It must be initialized with
// Init before use and released with Close.
type Backend struct {
	mu sync.RWMutex

	instance *core.Instance
	adapter  core.AdapterID
	device   core.DeviceID
	queue    core.QueueID

	info *GPUInfo

	initialized bool
}

// NewBackend creates an uninitialized backend.
func NewBackend() *Backend {
	return &Backend{}
}

// Init creates the GPU resources: instance, adapter (preferring a
// high-performance GPU), device and queue. Safe to call twice; the
// second call is a no-op.
func (b *Backend) Init() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.initialized {
		return nil
	}

	b.instance = core.NewInstance(&gputypes.InstanceDescriptor{
		Backends: gputypes.BackendsPrimary,
		Flags:    0,
	})

	adapterID, err := b.instance.RequestAdapter(&gputypes.RequestAdapterOptions{
		PowerPreference: gputypes.PowerPreferenceHighPerformance,
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrNoGPU, err)
	}
	b.adapter = adapterID

	b.info = adapterInfo(adapterID)

	deviceID, err := core.RequestDevice(adapterID, &gputypes.DeviceDescriptor{
		Label:            "term-device",
		RequiredFeatures: nil,
		RequiredLimits:   gputypes.DefaultLimits(),
	})
	if err != nil {
		return fmt.Errorf("device creation failed: %w", err)
	}
	b.device = deviceID

	queueID, err := core.GetDeviceQueue(deviceID)
	if err != nil {
		_ = core.DeviceDrop(deviceID)
		return fmt.Errorf("queue retrieval failed: %w", err)
	}
	b.queue = queueID

	b.initialized = true
	if b.info != nil {
		slogger().Info("gpu backend initialized", "adapter", b.info.String())
	}
	return nil
}

// Close releases the backend resources in reverse creation order.
// The queue is released when the device is dropped.
func (b *Backend) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.initialized {
		return
	}

	if !b.device.IsZero() {
		if err := core.DeviceDrop(b.device); err != nil {
			slogger().Warn("device release failed", "err", err)
		}
		b.device = core.DeviceID{}
	}
	if !b.adapter.IsZero() {
		if err := core.AdapterDrop(b.adapter); err != nil {
			slogger().Warn("adapter release failed", "err", err)
		}
		b.adapter = core.AdapterID{}
	}

	b.instance = nil
	b.queue = core.QueueID{}
	b.info = nil
	b.initialized = false
}

// IsInitialized reports whether Init has completed.
func (b *Backend) IsInitialized() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.initialized
}

// Describe returns a printable description of the selected adapter.
// It fails with ErrNotInitialized before Init.
func (b *Backend) Describe() (string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.initialized {
		return "", ErrNotInitialized
	}
	if b.info == nil {
		return "unknown adapter", nil
	}
	return b.info.String(), nil
}

// Info returns the selected GPU description, or nil before Init.
func (b *Backend) Info() *GPUInfo {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.info
}

// DeviceID returns the core device handle (zero before Init).
func (b *Backend) DeviceID() core.DeviceID {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.device
}

// QueueID returns the core queue handle (zero before Init).
func (b *Backend) QueueID() core.QueueID {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.queue
}

// adapterInfo retrieves the adapter description. Failures are logged
// and swallowed; missing info never blocks initialization.
func adapterInfo(adapterID core.AdapterID) *GPUInfo {
	info, err := core.GetAdapterInfo(adapterID)
	if err != nil {
		slogger().Warn("adapter info unavailable", "err", err)
		return nil
	}
	return &GPUInfo{
		Name:       info.Name,
		Vendor:     info.Vendor,
		DeviceType: info.DeviceType,
		Backend:    info.Backend,
		Driver:     info.Driver,
	}
}
