// Package cache provides a generic thread-safe LRU cache.
//
// The renderer keys rasterized glyphs and shaped-row geometry by
// content, so working-set reuse is high and strict LRU order matters:
// eviction removes exactly the least recently touched entry.
//
//	c := cache.New[glyphKey, *Bitmap](1024)
//	c.Set(k, bm)
//	bm, ok := c.Get(k)
//
// Cache is safe for concurrent use and must not be copied after
// creation.
package cache
