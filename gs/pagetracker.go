package gs

import "math"

// Per-page hazard flags
type PageStateFlags uint32

const (
	// There are pending render pass operations
	PAGE_STATE_FB_WRITE_BIT PageStateFlags = 1 << 0
	PAGE_STATE_FB_READ_BIT  PageStateFlags = 1 << 1

	// On mark submission, page will get updated host read timeline
	PAGE_STATE_TIMELINE_UPDATE_HOST_READ_BIT PageStateFlags = 1 << 2
	// On mark submission, page will get updated host write timeline
	PAGE_STATE_TIMELINE_UPDATE_HOST_WRITE_BIT PageStateFlags = 1 << 3
)

// What a flush request asks the owner to resolve
type PageTrackerFlushFlags uint32

const (
	PAGE_TRACKER_FLUSH_HOST_VRAM_SYNC_BIT PageTrackerFlushFlags = 1 << 0
	// Flush all HOST -> LOCAL or LOCAL -> LOCAL copies
	PAGE_TRACKER_FLUSH_COPY_BIT PageTrackerFlushFlags = 1 << 1
	// Flush all work copying VRAM into textures
	PAGE_TRACKER_FLUSH_CACHE_BIT PageTrackerFlushFlags = 1 << 2
	// Flush render pass
	PAGE_TRACKER_FLUSH_FB_BIT PageTrackerFlushFlags = 1 << 3
	// Flush write-back
	PAGE_TRACKER_FLUSH_WRITE_BACK_BIT PageTrackerFlushFlags = 1 << 4

	PAGE_TRACKER_FLUSH_FB_ALL = PAGE_TRACKER_FLUSH_HOST_VRAM_SYNC_BIT |
		PAGE_TRACKER_FLUSH_CACHE_BIT | PAGE_TRACKER_FLUSH_COPY_BIT | PAGE_TRACKER_FLUSH_FB_BIT
	PAGE_TRACKER_FLUSH_COPY_ALL = PAGE_TRACKER_FLUSH_HOST_VRAM_SYNC_BIT | PAGE_TRACKER_FLUSH_COPY_BIT
	PAGE_TRACKER_FLUSH_CACHE_ALL = PAGE_TRACKER_FLUSH_HOST_VRAM_SYNC_BIT |
		PAGE_TRACKER_FLUSH_COPY_BIT | PAGE_TRACKER_FLUSH_CACHE_BIT
)

// A shared handle to a GPU image plus its fingerprint
type CachedTexture struct {
	Image *TextureImage
	Hash  uint64
	dead  bool
}

// A cached texture as seen from one page: which blocks and word channels
// of the page it reads, and which CLUT instance baked it
type CachedTextureMasked struct {
	Tex          *CachedTexture
	BlockMask    uint32
	WriteMask    uint32
	ClutInstance uint32
}

type blockState struct {
	copyWriteBlockMask  uint32
	copyReadBlockMask   uint32
	cachedReadBlockMask uint32
}

// Hazard and timeline state of one 8 KiB VRAM page
type PageState struct {
	// On writes to the page, these texture handles may need clobbering
	CachedTextures []CachedTextureMasked

	// To safely read from host memory, this timeline must be reached
	HostReadTimeline uint64
	// To safely write to host memory, this timeline must be reached
	HostWriteTimeline uint64

	// Hazards which affect the entire page
	Flags PageStateFlags

	// Tracked on a per-block (256b) basis. Copies and textures are
	// aligned to 256b and tracking per-page is too pessimistic.
	CopyWriteBlockMask  uint32
	CopyReadBlockMask   uint32
	CachedReadBlockMask uint32

	TextureCacheNeedsInvalidateBlockMask uint32

	PendingFBAccessMask uint32

	// A write to a block may be masked, e.g. 24-bit FB with the upper
	// 8 bits sampled as a texture. No overlap, no invalidate.
	TextureCacheNeedsInvalidateWriteMask uint32
}

// The owner of the tracker resolves flush requests and texture drops
type PageTrackerCallback interface {
	Flush(flags PageTrackerFlushFlags, reason FlushReason)
	SyncHostVRAMPage(page uint32)
	SyncVRAMHostPage(page uint32)
	InvalidateTextureHash(hash uint64, clut bool)
	ForgetInRenderPassMemoization()
}

// Maintains per-page hazard state and decides which flushes the command
// stream forces. All transitions are additive within a flush epoch; pages
// drop back to idle only when the matching flush fires.
type PageTracker struct {
	cb             PageTrackerCallback
	cachedTextures map[uint64]*CachedTexture
	pageState      []PageState
	timeline       uint64
	csaWrittenMask uint32

	// Textures indexed by the palette banks they baked in
	textureCachedPalette []CachedTextureMasked
}

func NewPageTracker(cb PageTrackerCallback) *PageTracker {
	return &PageTracker{
		cb:             cb,
		cachedTextures: make(map[uint64]*CachedTexture),
	}
}

func (t *PageTracker) SetNumPages(numPages uint32) {
	t.pageState = make([]PageState, numPages)
}

func (t *PageTracker) numPages() uint32 {
	return uint32(len(t.pageState))
}

func (t *PageTracker) page(index uint32) *PageState {
	return &t.pageState[index]
}

func (t *PageTracker) getBlockState(rect PageRect) blockState {
	var bs blockState
	rect.ForEachPage(t.numPages(), func(page uint32) {
		p := &t.pageState[page]
		bs.copyWriteBlockMask |= p.CopyWriteBlockMask
		bs.copyReadBlockMask |= p.CopyReadBlockMask
		bs.cachedReadBlockMask |= p.CachedReadBlockMask
	})
	return bs
}

func (t *PageTracker) pageHasFlag(rect PageRect, flags PageStateFlags) bool {
	found := false
	rect.ForEachPage(t.numPages(), func(page uint32) {
		if t.pageState[page].Flags&flags != 0 {
			found = true
		}
	})
	return found
}

func (t *PageTracker) pageHasFlagWithFBAccessMask(rect PageRect, flags PageStateFlags, writeMask uint32) bool {
	found := false
	rect.ForEachPage(t.numPages(), func(page uint32) {
		p := &t.pageState[page]
		if p.Flags&flags != 0 && p.PendingFBAccessMask&writeMask != 0 {
			found = true
		}
	})
	return found
}

// Issues a flush request and retires the matching tracker state
func (t *PageTracker) flush(flags PageTrackerFlushFlags, reason FlushReason) {
	t.cb.Flush(flags, reason)

	if flags&PAGE_TRACKER_FLUSH_COPY_BIT != 0 {
		for i := range t.pageState {
			p := &t.pageState[i]
			p.CopyWriteBlockMask = 0
			p.CopyReadBlockMask = 0
		}
	}
	if flags&PAGE_TRACKER_FLUSH_CACHE_BIT != 0 {
		for i := range t.pageState {
			t.pageState[i].CachedReadBlockMask = 0
		}
	}
	if flags&PAGE_TRACKER_FLUSH_FB_BIT != 0 {
		for i := range t.pageState {
			p := &t.pageState[i]
			if p.Flags&PAGE_STATE_FB_WRITE_BIT != 0 {
				// Render output overwrote the page; any cached texture
				// sourcing it is stale once the pass has landed.
				p.TextureCacheNeedsInvalidateBlockMask = math.MaxUint32
				p.TextureCacheNeedsInvalidateWriteMask |= p.PendingFBAccessMask
			}
			p.Flags &^= PAGE_STATE_FB_WRITE_BIT | PAGE_STATE_FB_READ_BIT
			p.PendingFBAccessMask = 0
		}
	}
}

// Marks pages the render pass writes. Outstanding copies on those blocks
// must land first.
func (t *PageTracker) MarkFBWrite(rect PageRect) {
	bs := t.getBlockState(rect)
	if (bs.copyWriteBlockMask|bs.copyReadBlockMask)&rect.BlockMask != 0 {
		t.flush(PAGE_TRACKER_FLUSH_COPY_ALL, FLUSH_REASON_COPY_HAZARD)
	}
	if bs.cachedReadBlockMask&rect.BlockMask != 0 {
		t.flush(PAGE_TRACKER_FLUSH_CACHE_ALL, FLUSH_REASON_COPY_HAZARD)
	}

	rect.ForEachPage(t.numPages(), func(page uint32) {
		p := &t.pageState[page]
		p.Flags |= PAGE_STATE_FB_WRITE_BIT |
			PAGE_STATE_TIMELINE_UPDATE_HOST_READ_BIT |
			PAGE_STATE_TIMELINE_UPDATE_HOST_WRITE_BIT
		p.PendingFBAccessMask |= rect.WriteMask
	})
}

// For read-only depth
func (t *PageTracker) MarkFBRead(rect PageRect) {
	bs := t.getBlockState(rect)
	if bs.copyWriteBlockMask&rect.BlockMask != 0 {
		t.flush(PAGE_TRACKER_FLUSH_COPY_ALL, FLUSH_REASON_COPY_HAZARD)
	}

	rect.ForEachPage(t.numPages(), func(page uint32) {
		p := &t.pageState[page]
		p.Flags |= PAGE_STATE_FB_READ_BIT | PAGE_STATE_TIMELINE_UPDATE_HOST_WRITE_BIT
		p.PendingFBAccessMask |= rect.WriteMask
	})
}

// HOST -> LOCAL destination (also the destination half of LOCAL -> LOCAL)
func (t *PageTracker) MarkTransferWrite(rect PageRect) {
	if t.pageHasFlagWithFBAccessMask(rect,
		PAGE_STATE_FB_WRITE_BIT|PAGE_STATE_FB_READ_BIT, rect.WriteMask) {
		t.flush(PAGE_TRACKER_FLUSH_FB_ALL, FLUSH_REASON_COPY_HAZARD)
	}

	bs := t.getBlockState(rect)
	if bs.cachedReadBlockMask&rect.BlockMask != 0 {
		// Cache uploads read VRAM in a batch; they must observe the
		// pre-copy contents.
		t.flush(PAGE_TRACKER_FLUSH_CACHE_ALL, FLUSH_REASON_COPY_HAZARD)
	} else if (bs.copyWriteBlockMask|bs.copyReadBlockMask)&rect.BlockMask != 0 {
		// WAW / WAR between copies resolves with a barrier only.
		t.flush(PAGE_TRACKER_FLUSH_COPY_ALL, FLUSH_REASON_COPY_HAZARD)
	}

	rect.ForEachPage(t.numPages(), func(page uint32) {
		p := &t.pageState[page]
		p.CopyWriteBlockMask |= rect.BlockMask
		p.TextureCacheNeedsInvalidateBlockMask |= rect.BlockMask
		p.TextureCacheNeedsInvalidateWriteMask |= rect.WriteMask
		p.Flags |= PAGE_STATE_TIMELINE_UPDATE_HOST_READ_BIT |
			PAGE_STATE_TIMELINE_UPDATE_HOST_WRITE_BIT
	})
}

// LOCAL -> LOCAL
func (t *PageTracker) MarkTransferCopy(dstRect, srcRect PageRect) {
	if t.pageHasFlagWithFBAccessMask(srcRect, PAGE_STATE_FB_WRITE_BIT, srcRect.WriteMask) {
		t.flush(PAGE_TRACKER_FLUSH_FB_ALL, FLUSH_REASON_COPY_HAZARD)
	}

	t.MarkTransferWrite(dstRect)

	bs := t.getBlockState(srcRect)
	if bs.copyWriteBlockMask&srcRect.BlockMask != 0 {
		t.flush(PAGE_TRACKER_FLUSH_COPY_ALL, FLUSH_REASON_COPY_HAZARD)
	}

	srcRect.ForEachPage(t.numPages(), func(page uint32) {
		p := &t.pageState[page]
		p.CopyReadBlockMask |= srcRect.BlockMask
		p.Flags |= PAGE_STATE_TIMELINE_UPDATE_HOST_WRITE_BIT
	})
}

// A texture (or CLUT) read from VRAM by the cache-upload path
func (t *PageTracker) MarkTextureRead(rect PageRect) {
	if t.pageHasFlagWithFBAccessMask(rect, PAGE_STATE_FB_WRITE_BIT, rect.WriteMask) {
		t.flush(PAGE_TRACKER_FLUSH_FB_ALL, FLUSH_REASON_TEXTURE_HAZARD)
	}

	bs := t.getBlockState(rect)
	if bs.copyWriteBlockMask&rect.BlockMask != 0 {
		t.flush(PAGE_TRACKER_FLUSH_CACHE_ALL, FLUSH_REASON_COPY_HAZARD)
	}

	rect.ForEachPage(t.numPages(), func(page uint32) {
		p := &t.pageState[page]
		p.CachedReadBlockMask |= rect.BlockMask
		p.Flags |= PAGE_STATE_TIMELINE_UPDATE_HOST_WRITE_BIT
	})
}

// A CLUT upload. Cached textures whose palette banks overlap the freshly
// written CSA range bake stale colors and are dropped.
func (t *PageTracker) RegisterCachedClutClobber(rect PageRectCLUT) {
	if t.csaWrittenMask&rect.CSAMask != 0 {
		retained := t.textureCachedPalette[:0]
		for _, masked := range t.textureCachedPalette {
			if masked.Tex.dead {
				continue
			}
			if masked.BlockMask&rect.CSAMask != 0 {
				t.dropCachedTexture(masked.Tex, true)
				continue
			}
			retained = append(retained, masked)
		}
		t.textureCachedPalette = retained
	}
	t.csaWrittenMask |= rect.CSAMask
}

func (t *PageTracker) dropCachedTexture(tex *CachedTexture, clut bool) {
	if tex.dead {
		return
	}
	tex.dead = true
	delete(t.cachedTextures, tex.Hash)
	t.cb.InvalidateTextureHash(tex.Hash, clut)
}

// Publishes a freshly synthesized texture in the global fingerprint map
// and indexes it from every page any mip level reads
func (t *PageTracker) RegisterCachedTexture(levelRects []PageRect, csaMask, clutInstance uint32,
	hash uint64, image *TextureImage) {
	tex := &CachedTexture{Image: image, Hash: hash}
	t.cachedTextures[hash] = tex

	for _, rect := range levelRects {
		masked := CachedTextureMasked{
			Tex:          tex,
			BlockMask:    rect.BlockMask,
			WriteMask:    rect.WriteMask,
			ClutInstance: clutInstance,
		}
		rect.ForEachPage(t.numPages(), func(page uint32) {
			p := &t.pageState[page]
			p.CachedTextures = append(p.CachedTextures, masked)
		})
	}

	if csaMask != 0 {
		t.textureCachedPalette = append(t.textureCachedPalette, CachedTextureMasked{
			Tex:          tex,
			BlockMask:    csaMask,
			WriteMask:    math.MaxUint32,
			ClutInstance: clutInstance,
		})
	}
}

func (t *PageTracker) FindCachedTexture(hash uint64) *TextureImage {
	if tex, ok := t.cachedTextures[hash]; ok && !tex.dead {
		return tex.Image
	}
	return nil
}

// Walks pages with pending invalidation and drops cached textures whose
// blocks and word channels were overwritten. Entries owned by
// `clutInstanceMatch` survive, which avoids self-invalidation inside a
// render pass; pass ^uint32(0) to always drop. Returns true if anything
// was invalidated so the caller can mark texture state dirty.
func (t *PageTracker) InvalidateTextureCache(clutInstanceMatch uint32) bool {
	invalidated := false
	for i := range t.pageState {
		p := &t.pageState[i]
		if p.TextureCacheNeedsInvalidateBlockMask == 0 {
			continue
		}

		blockMask := p.TextureCacheNeedsInvalidateBlockMask
		writeMask := p.TextureCacheNeedsInvalidateWriteMask
		retained := p.CachedTextures[:0]
		for _, masked := range p.CachedTextures {
			if masked.Tex.dead {
				continue
			}
			if masked.BlockMask&blockMask != 0 && masked.WriteMask&writeMask != 0 &&
				masked.ClutInstance != clutInstanceMatch {
				t.dropCachedTexture(masked.Tex, false)
				invalidated = true
				continue
			}
			retained = append(retained, masked)
		}
		p.CachedTextures = retained
		p.TextureCacheNeedsInvalidateBlockMask = 0
		p.TextureCacheNeedsInvalidateWriteMask = 0
	}
	return invalidated
}

// Max host read timeline across the rect, or MaxUint64 while GPU-side
// hazards are pending and a submission must be marked first
func (t *PageTracker) GetHostReadTimeline(rect PageRect) uint64 {
	var timeline uint64
	rect.ForEachPage(t.numPages(), func(page uint32) {
		p := &t.pageState[page]
		if p.Flags&PAGE_STATE_TIMELINE_UPDATE_HOST_READ_BIT != 0 {
			timeline = math.MaxUint64
		} else {
			timeline = maxUint64(timeline, p.HostReadTimeline)
		}
	})
	return timeline
}

func (t *PageTracker) GetHostWriteTimeline(rect PageRect) uint64 {
	var timeline uint64
	rect.ForEachPage(t.numPages(), func(page uint32) {
		p := &t.pageState[page]
		if p.Flags&PAGE_STATE_TIMELINE_UPDATE_HOST_WRITE_BIT != 0 {
			timeline = math.MaxUint64
		} else {
			timeline = maxUint64(timeline, p.HostWriteTimeline)
		}
	})
	return timeline
}

// True if the host may write the rect once `maxTimeline` is reached
func (t *PageTracker) AcquireHostWrite(rect PageRect, maxTimeline uint64) bool {
	return t.GetHostWriteTimeline(rect) <= maxTimeline
}

// The host finished writing VRAM directly. The GPU copy of those pages
// is stale and so is everything cached from them.
func (t *PageTracker) CommitHostWrite(rect PageRect) {
	rect.ForEachPage(t.numPages(), func(page uint32) {
		p := &t.pageState[page]
		p.TextureCacheNeedsInvalidateBlockMask = math.MaxUint32
		p.TextureCacheNeedsInvalidateWriteMask = math.MaxUint32
		t.cb.SyncHostVRAMPage(page)
	})
	t.InvalidateTextureCache(math.MaxUint32)
	t.cb.ForgetInRenderPassMemoization()
}

// LOCAL -> HOST: queue the rect for readback into host VRAM
func (t *PageTracker) MarkReadback(rect PageRect) {
	rect.ForEachPage(t.numPages(), func(page uint32) {
		p := &t.pageState[page]
		p.Flags |= PAGE_STATE_TIMELINE_UPDATE_HOST_READ_BIT
		t.cb.SyncVRAMHostPage(page)
	})
}

// Explicitly flush render pass; does not force a submit as well
func (t *PageTracker) FlushRenderPass(reason FlushReason) {
	t.flush(PAGE_TRACKER_FLUSH_FB_ALL, reason)
}

// Marks an explicit flush. All batched GPU operations complete and
// resolve fully; once the returned timeline is reached, the CPU can
// safely touch the host copy of every flagged page.
func (t *PageTracker) MarkSubmissionTimeline() uint64 {
	t.flush(PAGE_TRACKER_FLUSH_FB_ALL|PAGE_TRACKER_FLUSH_WRITE_BACK_BIT, FLUSH_REASON_SUBMISSION)

	t.timeline++
	for i := range t.pageState {
		p := &t.pageState[i]
		if p.Flags&PAGE_STATE_TIMELINE_UPDATE_HOST_READ_BIT != 0 {
			p.HostReadTimeline = t.timeline
		}
		if p.Flags&PAGE_STATE_TIMELINE_UPDATE_HOST_WRITE_BIT != 0 {
			p.HostWriteTimeline = t.timeline
		}
		p.Flags &^= PAGE_STATE_TIMELINE_UPDATE_HOST_READ_BIT |
			PAGE_STATE_TIMELINE_UPDATE_HOST_WRITE_BIT
	}
	return t.timeline
}
