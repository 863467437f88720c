package atlas

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/gogpu/term/font"
)

// Kind distinguishes text glyphs from the built-in slots the renderer
// needs every frame.
type Kind uint8

const (
	// KindText is a rasterized grapheme cluster.
	KindText Kind = iota
	// KindSolid is the solid white block used for backgrounds,
	// underlines and the cursor, colorized in the shader.
	KindSolid
	// KindPlaceholder is the hollow box substituted for glyphs that
	// failed to rasterize or fit.
	KindPlaceholder
	// KindSprite is a renderer-supplied cell sprite (underline,
	// strikethrough, blank). Sprites are permanent; Cells carries the
	// sprite id.
	KindSprite
)

// Key identifies one atlas entry. Only shape-affecting style bits
// belong in the key; color never does.
type Key struct {
	Kind    Kind
	Cluster string
	Style   font.Style
	Cells   int
}

// TextKey builds the key for a grapheme cluster spanning cells
// columns.
func TextKey(cluster string, style font.Style, cells int) Key {
	return Key{Kind: KindText, Cluster: cluster, Style: style & (font.StyleBold | font.StyleItalic), Cells: cells}
}

// SlotID is a stable integer handle for an atlas slot. IDs are reused
// after eviction; the Epoch field of Slot disambiguates reuse.
type SlotID int32

// NoSlot is the zero handle.
const NoSlot SlotID = -1

// Slot is a borrowed view of an atlas entry: the texture rectangle in
// pixels plus the handle identifying it. Slots are plain values; they
// stay valid for the frame they were resolved in, and holding one
// across frames requires re-validating it with Touch.
type Slot struct {
	ID         SlotID
	Epoch      uint32
	X, Y, W, H int
	HasColor   bool
}

// Rect is a pixel region of the atlas texture.
type Rect struct {
	X, Y, W, H int
}

// Config holds atlas configuration.
type Config struct {
	// Size is the texture size (width = height). Must be a power of
	// two. Default: 1024.
	Size int

	// Padding between slots to prevent sampling bleed. Default: 1.
	Padding int
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{Size: 1024, Padding: 1}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.Size < 64 {
		return &ConfigError{Field: "Size", Reason: "must be at least 64"}
	}
	if c.Size > 8192 {
		return &ConfigError{Field: "Size", Reason: "must be at most 8192"}
	}
	if c.Size&(c.Size-1) != 0 {
		return &ConfigError{Field: "Size", Reason: "must be power of 2"}
	}
	if c.Padding < 0 {
		return &ConfigError{Field: "Padding", Reason: "must be non-negative"}
	}
	if c.Padding > 16 {
		return &ConfigError{Field: "Padding", Reason: "must be at most 16"}
	}
	return nil
}

type slotRecord struct {
	key      Key
	slot     Slot
	lastUsed uint64
	live     bool

	// permanent slots (solid block, placeholders) are never evicted
	// and never enter the LRU list.
	permanent bool

	prev, next SlotID
}

// Atlas is the glyph cache. Safe for concurrent use, though in
// practice the render goroutine is the only caller.
type Atlas struct {
	mu     sync.Mutex
	cfg    Config
	source font.Rasterizer

	pix   []byte
	alloc *shelfAllocator

	slots   []slotRecord
	freeIDs []SlotID
	byKey   map[Key]SlotID

	// LRU list over evictable slots; head is most recently used.
	head, tail SlotID

	frame     uint64
	freeRects []Rect
	dirty     []Rect

	solid        Slot
	placeholders [3]Slot

	hits      atomic.Uint64
	misses    atomic.Uint64
	evictions atomic.Uint64
}

// New creates an atlas backed by the given rasterization source. The
// solid block and placeholder slots are inserted immediately and are
// permanent.
func New(cfg Config, source font.Rasterizer) (*Atlas, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if source == nil {
		return nil, fmt.Errorf("atlas: nil rasterization source")
	}

	a := &Atlas{
		cfg:    cfg,
		source: source,
		pix:    make([]byte, cfg.Size*cfg.Size*4),
		alloc:  newShelfAllocator(cfg.Size, cfg.Size, cfg.Padding),
		byKey:  make(map[Key]SlotID),
		head:   NoSlot,
		tail:   NoSlot,
	}

	solid, err := a.insertPermanent(Key{Kind: KindSolid}, solidBitmap())
	if err != nil {
		return nil, err
	}
	a.solid = solid

	m := source.Metrics()
	for cells := 1; cells <= 2; cells++ {
		slot, err := a.insertPermanent(Key{Kind: KindPlaceholder, Cells: cells}, font.Placeholder(m, cells))
		if err != nil {
			return nil, err
		}
		a.placeholders[cells] = slot
	}
	return a, nil
}

// BeginFrame advances the pinning generation: slots resolved from now
// on are protected from eviction until the next BeginFrame.
func (a *Atlas) BeginFrame() {
	a.mu.Lock()
	a.frame++
	a.mu.Unlock()
}

// Solid returns the permanent solid-white slot.
func (a *Atlas) Solid() Slot { return a.solid }

// Placeholder returns the permanent placeholder slot spanning cells
// columns.
func (a *Atlas) Placeholder(cells int) Slot {
	if cells < 1 || cells > 2 {
		cells = 1
	}
	return a.placeholders[cells]
}

// Resolve returns the slot for key, rasterizing and inserting on a
// miss. On rasterization failure or a full atlas it returns the
// placeholder slot together with the error; rendering proceeds
// degraded and the error is observable.
func (a *Atlas) Resolve(key Key) (Slot, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if id, ok := a.byKey[key]; ok {
		rec := &a.slots[id]
		a.hits.Add(1)
		if !rec.permanent {
			rec.lastUsed = a.frame
			a.moveToFront(id)
		}
		return rec.slot, nil
	}
	a.misses.Add(1)

	cells := key.Cells
	if cells < 1 {
		cells = 1
	}

	bm, err := a.source.Rasterize(key.Cluster, key.Style, cells)
	if err != nil {
		return a.placeholders[min(cells, 2)], err
	}

	slot, err := a.insertLocked(key, bm, false)
	if err != nil {
		return a.placeholders[min(cells, 2)], err
	}
	return slot, nil
}

// Insert adds a permanent, caller-built entry under key. Inserting an
// existing key returns the existing slot. The renderer uses this for
// its underline and strikethrough sprites.
func (a *Atlas) Insert(key Key, bm *font.Bitmap) (Slot, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if id, ok := a.byKey[key]; ok {
		return a.slots[id].slot, nil
	}
	return a.insertLocked(key, bm, true)
}

// Touch re-pins s for the current frame and reports whether it still
// names the rectangle it was resolved with. A slot dies when its entry
// is evicted; the ID may be reused at a new epoch for a different
// glyph, so callers holding slots across frames must Touch them before
// reusing geometry built from the old rectangle.
func (a *Atlas) Touch(s Slot) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if s.ID < 0 || int(s.ID) >= len(a.slots) {
		return false
	}
	rec := &a.slots[s.ID]
	if !rec.live || rec.slot.Epoch != s.Epoch {
		return false
	}
	if !rec.permanent {
		rec.lastUsed = a.frame
		a.moveToFront(s.ID)
	}
	return true
}

// TakeDirty returns the texture regions written since the last call
// and clears the list. The caller uploads them to the GPU texture.
func (a *Atlas) TakeDirty() []Rect {
	a.mu.Lock()
	d := a.dirty
	a.dirty = nil
	a.mu.Unlock()
	return d
}

// Pix returns the CPU-side RGBA texture. The slice is owned by the
// atlas; callers read the regions reported by TakeDirty.
func (a *Atlas) Pix() []byte { return a.pix }

// Size returns the texture dimension.
func (a *Atlas) Size() int { return a.cfg.Size }

// Stats is a snapshot of atlas counters.
type Stats struct {
	Hits      uint64
	Misses    uint64
	Evictions uint64
	Live      int
}

// Stats returns current counters.
func (a *Atlas) Stats() Stats {
	a.mu.Lock()
	live := len(a.byKey)
	a.mu.Unlock()
	return Stats{
		Hits:      a.hits.Load(),
		Misses:    a.misses.Load(),
		Evictions: a.evictions.Load(),
		Live:      live,
	}
}

func (a *Atlas) insertPermanent(key Key, bm *font.Bitmap) (Slot, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.insertLocked(key, bm, true)
}

func (a *Atlas) insertLocked(key Key, bm *font.Bitmap, permanent bool) (Slot, error) {
	x, y, ok := a.place(bm.Width, bm.Height)
	if !ok {
		return Slot{ID: NoSlot}, &FullError{Width: bm.Width, Height: bm.Height}
	}

	id, epoch := a.takeID()
	rec := &a.slots[id]
	*rec = slotRecord{
		key: key,
		slot: Slot{
			ID: id, Epoch: epoch,
			X: x, Y: y, W: bm.Width, H: bm.Height,
			HasColor: bm.HasColor,
		},
		lastUsed:  a.frame,
		live:      true,
		permanent: permanent,
		prev:      NoSlot,
		next:      NoSlot,
	}
	a.byKey[key] = id
	if !permanent {
		a.pushFront(id)
	}

	a.blit(bm, x, y)
	a.dirty = append(a.dirty, Rect{X: x, Y: y, W: bm.Width, H: bm.Height})
	return rec.slot, nil
}

// place finds room for a w by h rectangle: fresh shelf space first,
// then freed rectangles, then LRU eviction until something fits.
func (a *Atlas) place(w, h int) (int, int, bool) {
	if x, y, ok := a.alloc.allocate(w, h); ok {
		return x, y, true
	}
	if x, y, ok := a.takeFreeRect(w, h); ok {
		return x, y, true
	}
	for a.tail != NoSlot {
		// The tail is the least recently resolved slot; if it is
		// pinned to the current frame, every slot ahead of it is too.
		if a.slots[a.tail].lastUsed == a.frame && a.frame > 0 {
			break
		}
		a.evictLocked(a.tail)
		if x, y, ok := a.takeFreeRect(w, h); ok {
			return x, y, true
		}
	}
	return 0, 0, false
}

func (a *Atlas) evictLocked(id SlotID) {
	rec := &a.slots[id]
	a.unlink(id)
	delete(a.byKey, rec.key)
	a.freeRects = append(a.freeRects, Rect{X: rec.slot.X, Y: rec.slot.Y, W: rec.slot.W, H: rec.slot.H})
	rec.live = false
	a.freeIDs = append(a.freeIDs, id)
	a.evictions.Add(1)
}

// takeFreeRect removes and returns the first freed rectangle that can
// hold w by h. Oversized rectangles are used whole; the waste churns
// out through later evictions.
func (a *Atlas) takeFreeRect(w, h int) (int, int, bool) {
	for i, r := range a.freeRects {
		if w <= r.W && h <= r.H {
			last := len(a.freeRects) - 1
			a.freeRects[i] = a.freeRects[last]
			a.freeRects = a.freeRects[:last]
			return r.X, r.Y, true
		}
	}
	return 0, 0, false
}

func (a *Atlas) takeID() (SlotID, uint32) {
	if n := len(a.freeIDs); n > 0 {
		id := a.freeIDs[n-1]
		a.freeIDs = a.freeIDs[:n-1]
		return id, a.slots[id].slot.Epoch + 1
	}
	a.slots = append(a.slots, slotRecord{})
	return SlotID(len(a.slots) - 1), 0
}

func (a *Atlas) blit(bm *font.Bitmap, x, y int) {
	stride := a.cfg.Size * 4
	for row := 0; row < bm.Height; row++ {
		dst := (y+row)*stride + x*4
		src := row * bm.Width * 4
		copy(a.pix[dst:dst+bm.Width*4], bm.Pix[src:src+bm.Width*4])
	}
}

func (a *Atlas) pushFront(id SlotID) {
	rec := &a.slots[id]
	rec.prev = NoSlot
	rec.next = a.head
	if a.head != NoSlot {
		a.slots[a.head].prev = id
	}
	a.head = id
	if a.tail == NoSlot {
		a.tail = id
	}
}

func (a *Atlas) moveToFront(id SlotID) {
	if a.head == id {
		return
	}
	a.unlink(id)
	a.pushFront(id)
}

func (a *Atlas) unlink(id SlotID) {
	rec := &a.slots[id]
	if rec.prev != NoSlot {
		a.slots[rec.prev].next = rec.next
	} else if a.head == id {
		a.head = rec.next
	}
	if rec.next != NoSlot {
		a.slots[rec.next].prev = rec.prev
	} else if a.tail == id {
		a.tail = rec.prev
	}
	rec.prev = NoSlot
	rec.next = NoSlot
}

// solidBitmap is the 4x4 opaque white block.
func solidBitmap() *font.Bitmap {
	bm := &font.Bitmap{Pix: make([]uint8, 4*4*4), Width: 4, Height: 4}
	for i := range bm.Pix {
		bm.Pix[i] = 0xFF
	}
	return bm
}
