// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package gpu owns the wgpu resources behind the terminal renderer:
// adapter discovery, device and queue lifetime, and thin wrappers over
// hal textures, buffers and shader modules.
//
// The package splits device access in two. Backend drives the wgpu/core
// layer for adapter selection and device bookkeeping. Open returns the
// hal.Device and hal.Queue the render pipelines record against; tests
// substitute the hal noop backend and never touch real hardware.
package gpu
