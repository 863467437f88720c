// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu

import (
	"fmt"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// Opened bundles the hal device and queue the render pipelines record
// against, together with the instance that owns them. Close releases
// everything in reverse order.
type Opened struct {
	Device hal.Device
	Queue  hal.Queue

	// AdapterName is the name of the adapter the device was opened on.
	AdapterName string

	instance hal.Instance
	borrowed bool
}

// Open creates a standalone Vulkan hal device, preferring a discrete
// GPU, then an integrated one, then whatever is exposed. Tests build
// their device on the hal noop backend instead of calling Open.
func Open() (*Opened, error) {
	backend, ok := hal.GetBackend(gputypes.BackendVulkan)
	if !ok {
		return nil, fmt.Errorf("%w: vulkan backend not available", ErrNoGPU)
	}

	instance, err := backend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return nil, fmt.Errorf("create instance: %w", err)
	}

	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, ErrNoGPU
	}

	var selected *hal.ExposedAdapter
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU {
			selected = &adapters[i]
			break
		}
	}
	if selected == nil {
		for i := range adapters {
			if adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
				selected = &adapters[i]
				break
			}
		}
	}
	if selected == nil {
		selected = &adapters[0]
	}

	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, fmt.Errorf("open device: %w", err)
	}

	slogger().Info("hal device opened", "adapter", selected.Info.Name)
	return &Opened{
		Device:      openDev.Device,
		Queue:       openDev.Queue,
		AdapterName: selected.Info.Name,
		instance:    instance,
	}, nil
}

// FromProvider borrows a shared device from a host application instead
// of opening one. The provider must also expose HalDevice() any and
// HalQueue() any returning the underlying hal types. Close on the
// returned Opened is a no-op; the host owns the device.
func FromProvider(provider gpucontext.DeviceProvider) (*Opened, error) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, fmt.Errorf("%w: provider does not expose HAL types", ErrNoGPU)
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, fmt.Errorf("%w: provider HalDevice is not hal.Device", ErrNoGPU)
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, fmt.Errorf("%w: provider HalQueue is not hal.Queue", ErrNoGPU)
	}

	slogger().Info("using shared hal device")
	return &Opened{
		Device:      device,
		Queue:       queue,
		AdapterName: "shared",
		borrowed:    true,
	}, nil
}

// Close destroys the device and the instance. Borrowed devices stay
// with their owner. Safe to call twice.
func (o *Opened) Close() {
	if o.borrowed {
		o.Device = nil
		o.Queue = nil
		return
	}
	if o.Device != nil {
		o.Device.Destroy()
		o.Device = nil
		o.Queue = nil
	}
	if o.instance != nil {
		o.instance.Destroy()
		o.instance = nil
	}
}
