package atlas

import "fmt"

// ConfigError reports an invalid atlas configuration field.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return "atlas: invalid config." + e.Field + ": " + e.Reason
}

// FullError reports that a glyph could not be placed even after
// evicting every unpinned slot. The caller renders a placeholder for
// the glyph this frame and retries next frame.
type FullError struct {
	Width  int
	Height int
}

func (e *FullError) Error() string {
	return fmt.Sprintf("atlas: no space for %dx%d glyph after full eviction", e.Width, e.Height)
}
