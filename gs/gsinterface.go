package gs

import (
	"log"
	"math"
)

// The GS command stream interpreter and render-pass batcher. One owner
// thread pushes GIF packets and register writes in; coarse render
// passes, palette uploads and VRAM transfers come out on the Renderer.
type GSInterface struct {
	registers     RegisterState
	privRegisters PrivRegisterState

	tracker  *PageTracker
	renderer Renderer
	vramSize uint32

	samplingRateXLog2 uint32
	samplingRateYLog2 uint32

	// Pages the host wrote that the GPU copy must re-upload, and pages
	// queued for readback. One bit per page.
	syncHostVRAMPages []uint32
	syncVRAMHostPages []uint32
	pageBuffer        []uint32

	renderPass    renderPassState
	stateTracker  stateTrackerState
	vertexQueue   vertexQueueState
	transferState transferState
	paths         [4]GIFPath

	// Kick behavior cached off PRIM, re-selected on PRIM writes
	drawInfo primKickInfo

	debugMode DebugMode
}

func NewGSInterface(renderer Renderer) *GSInterface {
	gs := &GSInterface{renderer: renderer}
	gs.tracker = NewPageTracker(gs)
	gs.stateTracker.lastTextureIndex = math.MaxUint32
	gs.registers.Prmodecont = 1 // AC defaults to set
	gs.registers.InternalQ = 1.0
	return gs
}

func (gs *GSInterface) Init(options *GSOptions) bool {
	gs.vramSize = options.VRAMSize
	numPages := gs.vramSize / PageSize
	gs.tracker.SetNumPages(numPages)
	numPagesU32 := (numPages + 31) / 32
	gs.syncHostVRAMPages = make([]uint32, numPagesU32)
	gs.syncVRAMHostPages = make([]uint32, numPagesU32)
	gs.pageBuffer = make([]uint32, 0, numPages)

	gs.SetSuperSamplingRate(options.SuperSampling)

	if !gs.renderer.Init(options) {
		return false
	}

	gs.renderPass.positions = make([]VertexPosition, 0, MaxPrimitivesPerFlush*3)
	gs.renderPass.attributes = make([]VertexAttribute, 0, MaxPrimitivesPerFlush*3)
	gs.renderPass.prim = make([]PrimitiveAttribute, 0, MaxPrimitivesPerFlush)
	gs.renderPass.stateVectorMap = make(map[uint64]uint32)
	gs.renderPass.textureMap = make(map[uint64]*textureMapEntry)
	gs.renderPass.resetBB()

	fbLayout := GetPSMLayout(PSMCT32)
	gs.renderPass.fbPageWidthLog2 = fbLayout.PageWidthLog2
	gs.renderPass.fbPageHeightLog2 = fbLayout.PageHeightLog2
	zLayout := GetPSMLayout(PSMZ32)
	gs.renderPass.zPageWidthLog2 = zLayout.PageWidthLog2
	gs.renderPass.zPageHeightLog2 = zLayout.PageHeightLog2
	return true
}

func (gs *GSInterface) SetSuperSamplingRate(rate SuperSampling) {
	switch rate {
	case SSAA_X1:
		gs.samplingRateXLog2, gs.samplingRateYLog2 = 0, 0
	case SSAA_X2:
		gs.samplingRateXLog2, gs.samplingRateYLog2 = 0, 1
	case SSAA_X4:
		gs.samplingRateXLog2, gs.samplingRateYLog2 = 1, 1
	case SSAA_X8:
		gs.samplingRateXLog2, gs.samplingRateYLog2 = 1, 2
	case SSAA_X16:
		gs.samplingRateXLog2, gs.samplingRateYLog2 = 2, 2
	}
	gs.renderer.InvalidateSuperSamplingState()
}

// Emits the open render pass to the renderer and resets the accumulator
func (gs *GSInterface) flushRenderPass(reason FlushReason) {
	rp := &gs.renderPass

	if rp.primitiveCount > 0 {
		var desc RenderPassDesc
		desc.Positions = rp.positions[:3*rp.primitiveCount]
		desc.Attributes = rp.attributes[:3*rp.primitiveCount]
		desc.Prims = rp.prim[:rp.primitiveCount]

		desc.FB.Frame = rp.frame
		desc.FB.Z = rp.zbuf

		desc.States = rp.stateVectors
		desc.Textures = rp.texInfos

		// Somewhat arbitrary. Try to balance binning load.
		tileWidth := uint32((rp.bb[2]-rp.bb[0])>>3) + 1
		tileHeight := uint32((rp.bb[3]-rp.bb[1])>>3) + 1
		binningCost := tileWidth * tileHeight * rp.primitiveCount
		switch {
		case binningCost < 10*1000:
			desc.CoarseTileSizeLog2 = 3
		case binningCost < 10*1000*1000:
			desc.CoarseTileSizeLog2 = 4
		case binningCost < 100*1000*1000:
			desc.CoarseTileSizeLog2 = 5
		default:
			desc.CoarseTileSizeLog2 = 6
		}
		if gs.samplingRateYLog2 != 0 && desc.CoarseTileSizeLog2 > 3 {
			desc.CoarseTileSizeLog2--
		}

		desc.BaseX = rp.bb[0]
		desc.BaseY = rp.bb[1]
		desc.CoarseTilesWidth = uint32((rp.bb[2]-rp.bb[0])>>desc.CoarseTileSizeLog2) + 1
		desc.CoarseTilesHeight = uint32((rp.bb[3]-rp.bb[1])>>desc.CoarseTileSizeLog2) + 1

		desc.FeedbackTexture = rp.hasColorFeedback
		desc.FeedbackTexturePSM = rp.feedbackPSM
		desc.FeedbackTextureCPSM = rp.feedbackCPSM

		// Affects shader variants
		desc.ZSensitive = rp.zSensitive
		desc.HasAA1 = rp.hasAA1
		desc.HasScanmsk = rp.hasScanmsk

		desc.SamplingRateXLog2 = gs.samplingRateXLog2
		desc.SamplingRateYLog2 = gs.samplingRateYLog2

		switch gs.debugMode.DrawMode {
		case DRAW_DEBUG_STRIDED:
			desc.DebugCaptureStride = 16
		case DRAW_DEBUG_FULL:
			desc.DebugCaptureStride = 1
		}

		desc.LabelKey = rp.labelKey
		rp.labelKey++
		desc.Reason = reason

		gs.renderer.FlushRendering(&desc)
	}

	rp.heldImages = rp.heldImages[:0]
	for hash := range rp.textureMap {
		delete(rp.textureMap, hash)
	}
	rp.texInfos = rp.texInfos[:0]
	for hash := range rp.stateVectorMap {
		delete(rp.stateVectorMap, hash)
	}
	rp.stateVectors = rp.stateVectors[:0]
	rp.positions = rp.positions[:0]
	rp.attributes = rp.attributes[:0]
	rp.prim = rp.prim[:0]
	rp.primitiveCount = 0
	rp.pendingPaletteUpdates = 0
	rp.resetBB()
	rp.colorWriteMask = 0
	rp.zSensitive = false
	rp.zWrite = false
	rp.hasColorFeedback = false
	rp.hasAA1 = false
	rp.hasScanmsk = false
	gs.stateTracker.dirtyFlags = STATE_DIRTY_ALL_BITS
}

// PageTrackerCallback: fan a flush request out to the renderer
func (gs *GSInterface) Flush(flags PageTrackerFlushFlags, reason FlushReason) {
	if flags&PAGE_TRACKER_FLUSH_HOST_VRAM_SYNC_BIT != 0 {
		gs.pageBuffer = gs.pageBuffer[:0]
		for i, word := range gs.syncHostVRAMPages {
			for word != 0 {
				bit := uint32(trailingZeros32(word))
				word &= word - 1
				gs.pageBuffer = append(gs.pageBuffer, uint32(i)*32+bit)
			}
			gs.syncHostVRAMPages[i] = 0
		}
		if len(gs.pageBuffer) > 0 {
			gs.renderer.FlushHostVRAMCopy(gs.pageBuffer)
		}
	}

	if flags&PAGE_TRACKER_FLUSH_COPY_BIT != 0 {
		if flags&(PAGE_TRACKER_FLUSH_CACHE_BIT|PAGE_TRACKER_FLUSH_FB_BIT|
			PAGE_TRACKER_FLUSH_WRITE_BACK_BIT) != 0 {
			gs.renderer.FlushTransfer()
		} else {
			// Nothing beyond copies means we are just resolving a WAW
			// hazard internally.
			gs.renderer.TransferOverlapBarrier()
		}
	}

	if flags&PAGE_TRACKER_FLUSH_CACHE_BIT != 0 {
		gs.renderer.FlushCacheUpload()
		// VRAM may have changed, so reset memoization state
		gs.renderPass.numMemoizedPalettes = 0
	}

	if flags&PAGE_TRACKER_FLUSH_FB_BIT != 0 {
		gs.flushRenderPass(reason)
	}

	if flags&PAGE_TRACKER_FLUSH_WRITE_BACK_BIT != 0 {
		gs.pageBuffer = gs.pageBuffer[:0]
		for i, word := range gs.syncVRAMHostPages {
			for word != 0 {
				bit := uint32(trailingZeros32(word))
				word &= word - 1
				gs.pageBuffer = append(gs.pageBuffer, uint32(i)*32+bit)
			}
			gs.syncVRAMHostPages[i] = 0
		}
		if len(gs.pageBuffer) > 0 {
			gs.renderer.FlushReadback(gs.pageBuffer)
		}
	}
}

// PageTrackerCallback
func (gs *GSInterface) SyncHostVRAMPage(page uint32) {
	gs.syncHostVRAMPages[page/32] |= 1 << (page & 31)
}

// PageTrackerCallback
func (gs *GSInterface) SyncVRAMHostPage(page uint32) {
	gs.syncVRAMHostPages[page/32] |= 1 << (page & 31)
}

// PageTrackerCallback
func (gs *GSInterface) InvalidateTextureHash(hash uint64, clut bool) {
	if !clut {
		// Any CLUT texture makes the palette bank part of the hash
		if entry, ok := gs.renderPass.textureMap[hash]; ok {
			entry.valid = false
		}
	}
	gs.markTextureStateDirty()
}

// PageTrackerCallback
func (gs *GSInterface) ForgetInRenderPassMemoization() {
	gs.renderPass.numMemoizedPalettes = 0
	gs.markTextureStateDirty()
}

func pageRectForByteRange(offset, size, numPages uint32) PageRect {
	beginPage := offset / PageSize
	endPage := (offset + size - 1) / PageSize
	return PageRect{
		BasePage:   beginPage,
		PageWidth:  endPage - beginPage + 1,
		PageHeight: 1,
		PageStride: 0,
		BlockMask:  math.MaxUint32,
		WriteMask:  math.MaxUint32,
	}
}

// Acquires a VRAM region for direct host writes. May force a submit if
// GPU work on those pages is still pending.
func (gs *GSInterface) MapVRAMWrite(offset, size uint32) []byte {
	if size == 0 {
		return nil
	}

	rect := pageRectForByteRange(offset, size, gs.vramSize/PageSize)
	timeline := gs.tracker.GetHostWriteTimeline(rect)
	if timeline == math.MaxUint64 {
		timeline = gs.tracker.MarkSubmissionTimeline()
		gs.renderer.FlushSubmit(timeline)
	}
	gs.renderer.WaitTimeline(timeline)

	return gs.renderer.BeginHostVRAMAccess()[offset : offset+size]
}

func (gs *GSInterface) EndVRAMWrite(offset, size uint32) {
	if size == 0 {
		return
	}
	rect := pageRectForByteRange(offset, size, gs.vramSize/PageSize)
	gs.renderer.EndHostWriteVRAMAccess()
	gs.tracker.CommitHostWrite(rect)
}

// Symmetric read mapping
func (gs *GSInterface) MapVRAMRead(offset, size uint32) []byte {
	if size == 0 {
		return nil
	}

	rect := pageRectForByteRange(offset, size, gs.vramSize/PageSize)
	timeline := gs.tracker.GetHostReadTimeline(rect)
	if timeline == math.MaxUint64 {
		timeline = gs.tracker.MarkSubmissionTimeline()
		gs.renderer.FlushSubmit(timeline)
	}
	gs.renderer.WaitTimeline(timeline)

	return gs.renderer.BeginHostVRAMAccess()[offset : offset+size]
}

// Force-submits all batched work and bumps the timeline
func (gs *GSInterface) FlushAll() {
	gs.flushPendingTransfer(true)
	gs.renderer.FlushSubmit(gs.tracker.MarkSubmissionTimeline())
}

// Marks all state dirty and re-derives the cached handlers. Used when an
// external actor (save state load, debugger) rewrote the register bank.
func (gs *GSInterface) ClobberRegisterState() {
	gs.stateTracker.dirtyFlags = STATE_DIRTY_ALL_BITS
	gs.updateDrawHandler()
	// We don't know which path will execute next, so recompile every
	// path's packet shape from its current GIFTag and the current PRIM.
	for i := range gs.paths {
		gs.updateOptimizedGIFHandler(uint32(i))
	}
}

func (gs *GSInterface) RegisterState() *RegisterState {
	return &gs.registers
}

func (gs *GSInterface) PrivRegisterState() *PrivRegisterState {
	return &gs.privRegisters
}

func (gs *GSInterface) GIFPathState(path uint32) *GIFPath {
	return &gs.paths[path]
}

func (gs *GSInterface) SetDebugMode(mode DebugMode) {
	gs.debugMode = mode
}

func (gs *GSInterface) VSync(info VSyncInfo) ScanoutResult {
	return gs.renderer.VSync(&gs.privRegisters, info)
}

func (gs *GSInterface) ConsumeFlushStats() FlushStats {
	return gs.renderer.ConsumeFlushStats()
}

func (gs *GSInterface) AccumulatedTimestamps(t TimestampType) float64 {
	return gs.renderer.AccumulatedTimestamps(t)
}

func (gs *GSInterface) debugLog(format string, a ...interface{}) {
	if gs.debugMode.Enabled {
		log.Printf("gs: "+format, a...)
	}
}
