package gpu

import "errors"

var (
	// ErrNoGPU is returned when no usable GPU adapter is found.
	ErrNoGPU = errors.New("gpu: no suitable GPU adapter found")

	// ErrNotInitialized is returned when using a backend before Init.
	ErrNotInitialized = errors.New("gpu: backend not initialized")

	// ErrTextureReleased is returned when uploading to a destroyed texture.
	ErrTextureReleased = errors.New("gpu: texture already released")

	// ErrUploadBounds is returned when an upload region exceeds the
	// texture dimensions.
	ErrUploadBounds = errors.New("gpu: upload region out of bounds")
)
