package font

import "fmt"

// RasterizationError reports a cluster that could not be shaped or
// rendered. Callers recover by substituting the placeholder glyph.
type RasterizationError struct {
	Cluster string
	Err     error
}

func (e *RasterizationError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("font: no glyphs for %q", e.Cluster)
	}
	return fmt.Sprintf("font: rasterize %q: %v", e.Cluster, e.Err)
}

func (e *RasterizationError) Unwrap() error { return e.Err }
