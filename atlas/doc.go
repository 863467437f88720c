// Package atlas caches rasterized glyphs in a single shared texture.
//
// Slots are packed with a shelf allocator and addressed by stable
// integer handles rather than pointers, so the renderer's cached
// geometry can detect eviction by handle comparison. When the texture
// fills up, the least recently resolved slots are evicted first;
// slots resolved during the current frame are pinned and survive
// until the next BeginFrame.
//
// The atlas owns a CPU-side copy of the texture. Insertions record
// dirty regions which the renderer uploads to the GPU once per frame.
package atlas
