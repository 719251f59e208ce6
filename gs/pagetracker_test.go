package gs

import (
	"math"
	"testing"
)

// Records flush requests from the tracker
type traceTrackerCallback struct {
	flushFlags   []PageTrackerFlushFlags
	flushReasons []FlushReason
	hostSyncs    []uint32
	readbacks    []uint32
	invalidated  []uint64
	forgets      int
}

func (cb *traceTrackerCallback) Flush(flags PageTrackerFlushFlags, reason FlushReason) {
	cb.flushFlags = append(cb.flushFlags, flags)
	cb.flushReasons = append(cb.flushReasons, reason)
}

func (cb *traceTrackerCallback) SyncHostVRAMPage(page uint32) { cb.hostSyncs = append(cb.hostSyncs, page) }
func (cb *traceTrackerCallback) SyncVRAMHostPage(page uint32) { cb.readbacks = append(cb.readbacks, page) }

func (cb *traceTrackerCallback) InvalidateTextureHash(hash uint64, clut bool) {
	cb.invalidated = append(cb.invalidated, hash)
}

func (cb *traceTrackerCallback) ForgetInRenderPassMemoization() { cb.forgets++ }

func singlePageRect(page, blockMask, writeMask uint32) PageRect {
	return PageRect{
		BasePage:   page,
		PageWidth:  1,
		PageHeight: 1,
		PageStride: 0,
		BlockMask:  blockMask,
		WriteMask:  writeMask,
	}
}

func newTestTracker() (*PageTracker, *traceTrackerCallback) {
	cb := &traceTrackerCallback{}
	tracker := NewPageTracker(cb)
	tracker.SetNumPages(512)
	return tracker, cb
}

func TestTransferThenTextureReadRaisesCopyHazard(t *testing.T) {
	assert := func(v bool) {
		if !v {
			t.Error("assert failed")
		}
	}

	tracker, cb := newTestTracker()

	tracker.MarkTransferWrite(singlePageRect(100, 0xff, 0xffffffff))
	assert(len(cb.flushFlags) == 0)

	tracker.MarkTextureRead(singlePageRect(100, 0x10, 0xffffffff))
	assert(len(cb.flushFlags) == 1)
	assert(cb.flushFlags[0]&PAGE_TRACKER_FLUSH_CACHE_BIT != 0)
	assert(cb.flushReasons[0] == FLUSH_REASON_COPY_HAZARD)

	// The copy state was retired; a second read is clean
	tracker.MarkTextureRead(singlePageRect(100, 0x10, 0xffffffff))
	assert(len(cb.flushFlags) == 1)
}

func TestTextureReadDisjointBlocksNoHazard(t *testing.T) {
	assert := func(v bool) {
		if !v {
			t.Error("assert failed")
		}
	}

	tracker, cb := newTestTracker()
	tracker.MarkTransferWrite(singlePageRect(100, 0x0f, 0xffffffff))
	tracker.MarkTextureRead(singlePageRect(100, 0xf0, 0xffffffff))
	assert(len(cb.flushFlags) == 0)
}

func TestTransferWriteOverFBWriteFlushesOnce(t *testing.T) {
	assert := func(v bool) {
		if !v {
			t.Error("assert failed")
		}
	}

	tracker, cb := newTestTracker()

	tracker.MarkFBWrite(singlePageRect(10, 0xffffffff, 0xffffffff))
	tracker.MarkTransferWrite(singlePageRect(10, 0xffffffff, 0xffffffff))

	fbFlushes := 0
	for _, flags := range cb.flushFlags {
		if flags&PAGE_TRACKER_FLUSH_FB_BIT != 0 {
			fbFlushes++
		}
	}
	assert(fbFlushes == 1)

	// Masked apart: 24-bit FB and 8H texture upload do not collide
	tracker2, cb2 := newTestTracker()
	tracker2.MarkFBWrite(singlePageRect(10, 0xffffffff, 0x00ffffff))
	tracker2.MarkTransferWrite(singlePageRect(10, 0xffffffff, 0xff000000))
	for _, flags := range cb2.flushFlags {
		assert(flags&PAGE_TRACKER_FLUSH_FB_BIT == 0)
	}
}

func TestTextureReadOverFBWriteRaisesTextureHazard(t *testing.T) {
	assert := func(v bool) {
		if !v {
			t.Error("assert failed")
		}
	}

	tracker, cb := newTestTracker()
	tracker.MarkFBWrite(singlePageRect(20, 0xffffffff, 0xffffffff))
	tracker.MarkTextureRead(singlePageRect(20, 1, 0xffffffff))

	assert(len(cb.flushReasons) == 1)
	assert(cb.flushReasons[0] == FLUSH_REASON_TEXTURE_HAZARD)
	assert(cb.flushFlags[0]&PAGE_TRACKER_FLUSH_FB_BIT != 0)
}

func TestSubmissionTimelineStrictlyIncreases(t *testing.T) {
	assert := func(v bool) {
		if !v {
			t.Error("assert failed")
		}
	}

	tracker, _ := newTestTracker()
	prev := uint64(0)
	for i := 0; i < 8; i++ {
		next := tracker.MarkSubmissionTimeline()
		assert(next > prev)
		prev = next
	}
}

func TestHostTimelinesAfterFBWrite(t *testing.T) {
	assert := func(v bool) {
		if !v {
			t.Error("assert failed")
		}
	}

	tracker, _ := newTestTracker()
	rect := singlePageRect(42, 0xffffffff, 0xffffffff)

	assert(tracker.GetHostReadTimeline(rect) == 0)

	tracker.MarkFBWrite(rect)
	// Hazard pending: caller must mark a submission first
	assert(tracker.GetHostReadTimeline(rect) == math.MaxUint64)
	assert(tracker.GetHostWriteTimeline(rect) == math.MaxUint64)

	timeline := tracker.MarkSubmissionTimeline()
	assert(tracker.GetHostReadTimeline(rect) == timeline)
	assert(tracker.GetHostWriteTimeline(rect) == timeline)

	// Untouched pages stay at zero
	other := singlePageRect(100, 0xffffffff, 0xffffffff)
	assert(tracker.GetHostReadTimeline(other) == 0)
}

func TestInvalidateTextureCachePostcondition(t *testing.T) {
	assert := func(v bool) {
		if !v {
			t.Error("assert failed")
		}
	}

	tracker, cb := newTestTracker()

	rects := []PageRect{singlePageRect(5, 0x0f, 0xffffffff)}
	tracker.RegisterCachedTexture(rects, 0, 7, 0x1234, &TextureImage{Width: 64, Height: 64})
	rects2 := []PageRect{singlePageRect(5, 0xf0, 0xffffffff)}
	tracker.RegisterCachedTexture(rects2, 0, 7, 0x5678, &TextureImage{Width: 64, Height: 64})

	assert(tracker.FindCachedTexture(0x1234) != nil)
	assert(tracker.FindCachedTexture(0x5678) != nil)

	// Overwrite the low blocks only
	tracker.MarkTransferWrite(singlePageRect(5, 0x0f, 0xffffffff))
	assert(tracker.InvalidateTextureCache(math.MaxUint32))

	assert(tracker.FindCachedTexture(0x1234) == nil)
	assert(tracker.FindCachedTexture(0x5678) != nil)
	assert(len(cb.invalidated) == 1 && cb.invalidated[0] == 0x1234)

	// The invalidate masks are consumed; nothing further drops
	assert(!tracker.InvalidateTextureCache(math.MaxUint32))

	// No retained entry can match the invalidation predicate
	for _, masked := range tracker.pageState[5].CachedTextures {
		assert(!masked.Tex.dead)
	}
}

func TestInvalidateSkipsMatchingClutInstance(t *testing.T) {
	assert := func(v bool) {
		if !v {
			t.Error("assert failed")
		}
	}

	tracker, _ := newTestTracker()

	rects := []PageRect{singlePageRect(8, 0xff, 0xffffffff)}
	tracker.RegisterCachedTexture(rects, 0, 3, 0xaaaa, &TextureImage{Width: 32, Height: 32})

	tracker.MarkTransferWrite(singlePageRect(8, 0xff, 0xffffffff))

	// Self-invalidation inside a render pass is suppressed
	assert(!tracker.InvalidateTextureCache(3))
	assert(tracker.FindCachedTexture(0xaaaa) != nil)
}

func TestClutClobberInvalidatesOverlappingBanks(t *testing.T) {
	assert := func(v bool) {
		if !v {
			t.Error("assert failed")
		}
	}

	tracker, _ := newTestTracker()

	clutRect := PageRectCLUT{PageRect: singlePageRect(1, 0xf, 0xffffffff), CSAMask: 0x1}
	tracker.RegisterCachedClutClobber(clutRect)

	tracker.RegisterCachedTexture([]PageRect{singlePageRect(2, 1, 0xffffffff)},
		0x1, 5, 0xbeef, &TextureImage{Width: 16, Height: 16})

	// Re-writing the same CSA bank drops the texture baked from it
	tracker.RegisterCachedClutClobber(clutRect)
	assert(tracker.FindCachedTexture(0xbeef) == nil)

	// A disjoint bank leaves other textures alone
	tracker.RegisterCachedTexture([]PageRect{singlePageRect(3, 1, 0xffffffff)},
		0x4, 6, 0xcafe, &TextureImage{Width: 16, Height: 16})
	other := PageRectCLUT{PageRect: singlePageRect(1, 0xf, 0xffffffff), CSAMask: 0x2}
	tracker.RegisterCachedClutClobber(other)
	assert(tracker.FindCachedTexture(0xcafe) != nil)
}

func TestCommitHostWriteSyncsAndInvalidates(t *testing.T) {
	assert := func(v bool) {
		if !v {
			t.Error("assert failed")
		}
	}

	tracker, cb := newTestTracker()

	tracker.RegisterCachedTexture([]PageRect{singlePageRect(9, 0xff, 0xffffffff)},
		0, 1, 0x77, &TextureImage{Width: 8, Height: 8})

	rect := singlePageRect(9, 0xffffffff, 0xffffffff)
	rect.PageWidth = 2
	tracker.CommitHostWrite(rect)

	assert(len(cb.hostSyncs) == 2)
	assert(cb.forgets == 1)
	assert(tracker.FindCachedTexture(0x77) == nil)
}

func TestReadbackMarksPages(t *testing.T) {
	assert := func(v bool) {
		if !v {
			t.Error("assert failed")
		}
	}

	tracker, cb := newTestTracker()
	rect := singlePageRect(30, 0xffffffff, 0xffffffff)
	rect.PageWidth = 3
	tracker.MarkReadback(rect)

	assert(len(cb.readbacks) == 3)
	assert(tracker.GetHostReadTimeline(rect) == math.MaxUint64)
}
