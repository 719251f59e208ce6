package gs

import "math"

// Blend mode word layout
const (
	BLEND_MODE_ABE_BIT      = 1 << 0
	BLEND_MODE_DATE_BIT     = 1 << 1
	BLEND_MODE_DATM_BIT     = 1 << 2
	BLEND_MODE_PABE_BIT     = 1 << 3
	BLEND_MODE_COLCLAMP_BIT = 1 << 4
	BLEND_MODE_FB_ALPHA_BIT = 1 << 5
	BLEND_MODE_DTHE_BIT     = 1 << 6
	BLEND_MODE_ATE_BIT      = 1 << 7

	BLEND_MODE_ATE_MODE_OFFSET   = 8
	BLEND_MODE_AFAIL_MODE_OFFSET = 11
	BLEND_MODE_A_MODE_OFFSET     = 13
	BLEND_MODE_B_MODE_OFFSET     = 15
	BLEND_MODE_C_MODE_OFFSET     = 17
	BLEND_MODE_D_MODE_OFFSET     = 19
)

// Combiner word layout
const (
	COMBINER_TME_BIT     = 1 << 0
	COMBINER_TCC_BIT     = 1 << 1
	COMBINER_MODE_OFFSET = 2
	COMBINER_FOG_BIT     = 1 << 4
)

// Per-primitive state word layout
const (
	STATE_INDEX_BIT_OFFSET = 0 // 10 bits of state vector index

	STATE_BIT_Z_TEST         = 10
	STATE_BIT_Z_TEST_GREATER = 11
	STATE_BIT_Z_WRITE        = 12
	STATE_BIT_OPAQUE         = 13
	STATE_BIT_MULTISAMPLE    = 14
	STATE_BIT_SCANMSK_EVEN   = 15
	STATE_BIT_SCANMSK_ODD    = 16
	STATE_BIT_PERSPECTIVE    = 17
	STATE_BIT_IIP            = 18
	STATE_BIT_FIX            = 19
	STATE_BIT_PARALLELOGRAM  = 20
	STATE_BIT_SPRITE         = 21
	STATE_BIT_LINE           = 22
	STATE_BIT_SNAP_RASTER    = 23
)

// Per-primitive texture word layout
const (
	TEX_TEXTURE_INDEX_OFFSET = 0
	TEX_TEXTURE_INDEX_BITS   = 16

	TEX_SAMPLER_MAG_LINEAR_BIT    = 1 << 16
	TEX_SAMPLER_MIN_LINEAR_BIT    = 1 << 17
	TEX_SAMPLER_MIPMAP_LINEAR_BIT = 1 << 18
	TEX_SAMPLER_CLAMP_S_BIT       = 1 << 19
	TEX_SAMPLER_CLAMP_T_BIT       = 1 << 20
	TEX_MAX_MIP_LEVEL_OFFSET      = 21

	TEX2_FIXED_LOD_OFFSET = 0
	TEX2_L_OFFSET         = 1
	TEX2_K_OFFSET         = 3
)

const (
	ALPHA_AFIX_OFFSET = 0
	ALPHA_AREF_OFFSET = 8
)

type memoizedPalette struct {
	upload       PaletteUploadDescriptor
	csaMask      uint32
	clutInstance uint32
}

type textureMapEntry struct {
	index uint32
	valid bool
}

// The open render-pass accumulator. Allocated once, cleared on flush.
type renderPassState struct {
	positions      []VertexPosition
	attributes     []VertexAttribute
	prim           []PrimitiveAttribute
	primitiveCount uint32

	stateVectors   []StateVector
	stateVectorMap map[uint64]uint32

	texInfos   []TextureInfo
	textureMap map[uint64]*textureMapEntry
	heldImages []*TextureImage

	// Pixel-space bounding box: x0, y0, x1, y1 inclusive
	bb [4]int32

	frame            FRAMEReg
	zbuf             ZBUFReg
	fbPageWidthLog2  uint32
	fbPageHeightLog2 uint32
	zPageWidthLog2   uint32
	zPageHeightLog2  uint32

	colorWriteMask uint32
	zSensitive     bool
	zWrite         bool
	hasAA1         bool
	hasScanmsk     bool

	hasColorFeedback bool
	feedbackPSM      PSM
	feedbackCPSM     PSM

	isColorFeedback          bool
	isPotentialColorFeedback bool
	isPotentialDepthFeedback bool

	clutInstance          uint32
	latestClutInstance    uint32
	pendingPaletteUpdates uint32
	memoizedPalettes      [NumMemoizedPalettes]memoizedPalette
	numMemoizedPalettes   uint32

	labelKey uint32
}

func (rp *renderPassState) resetBB() {
	rp.bb = [4]int32{math.MaxInt32, math.MaxInt32, math.MinInt32, math.MinInt32}
}

type texLevelState struct {
	base   uint32
	stride uint32
}

type texStateCache struct {
	rect      TextureRect
	levels    [7]texLevelState
	pageRects [7]PageRect
}

type primTemplate struct {
	tex   uint32
	tex2  uint32
	state uint32
}

// Memoized derived state between draws; refreshed lazily off dirty bits
type stateTrackerState struct {
	dirtyFlags StateDirtyFlags

	lastStateVector StateVector
	lastStateIndex  uint32

	lastTextureIndex      uint32
	lastTextureDescriptor TextureDescriptor

	degenerateDraw bool
	primTmpl       primTemplate
	tex            texStateCache
}

func (gs *GSInterface) getAndClearDirtyFlag(flags StateDirtyFlags) bool {
	ret := gs.stateTracker.dirtyFlags&flags != 0
	if ret {
		gs.stateTracker.dirtyFlags &^= flags
	}
	return ret
}

func (gs *GSInterface) markTextureStateDirty() {
	gs.stateTracker.lastTextureIndex = math.MaxUint32
	gs.stateTracker.dirtyFlags |= STATE_DIRTY_PRIM_TEMPLATE_BIT | STATE_DIRTY_TEX_BIT
}

func (gs *GSInterface) findOrPlaceUniqueStateVector(state StateVector) uint32 {
	st := &gs.stateTracker

	if len(gs.renderPass.stateVectors) > 0 && state == st.lastStateVector {
		return st.lastStateIndex
	}

	h := newHasher()
	h.u32(state.BlendMode)
	h.u32(state.Combiner)
	h.u32(state.DimxX)
	h.u32(state.DimxY)

	var stateIndex uint32
	if cached, ok := gs.renderPass.stateVectorMap[h.get()]; ok {
		stateIndex = cached
	} else {
		stateIndex = uint32(len(gs.renderPass.stateVectors))
		gs.renderPass.stateVectors = append(gs.renderPass.stateVectors, state)
		gs.renderPass.stateVectorMap[h.get()] = stateIndex
	}

	st.lastStateVector = state
	st.lastStateIndex = stateIndex
	return stateIndex
}

// Rebuilds the deduplicated blend/combiner/dither state off the live
// registers and returns its index in the pass
func (gs *GSInterface) drawingKickUpdateStateVector() uint32 {
	if !gs.getAndClearDirtyFlag(STATE_DIRTY_STATE_BIT) {
		return gs.stateTracker.lastStateIndex
	}

	prim := gs.registers.Prim
	ctx := &gs.registers.Ctx[prim.CTXT()]

	var state StateVector

	if gs.registers.Dthe.DTHE() {
		state.BlendMode |= BLEND_MODE_DTHE_BIT
		state.DimxX = uint32(uint64(gs.registers.Dimx))
		state.DimxY = uint32(uint64(gs.registers.Dimx) >> 32)
	}

	if ctx.Test.ATE() && ctx.Test.ATST() != ATST_ALWAYS { // ALWAYS pass is meaningless
		state.BlendMode |= BLEND_MODE_ATE_BIT
		state.BlendMode |= ctx.Test.ATST() << BLEND_MODE_ATE_MODE_OFFSET
		state.BlendMode |= ctx.Test.AFAIL() << BLEND_MODE_AFAIL_MODE_OFFSET
	}

	if ctx.Test.DATE() {
		state.BlendMode |= BLEND_MODE_DATE_BIT
	}
	if ctx.Test.DATM() != 0 {
		state.BlendMode |= BLEND_MODE_DATM_BIT
	}

	// Enabling AA1 seems to imply alpha blending
	if prim.ABE() || prim.AA1() {
		state.BlendMode |= ctx.Alpha.A() << BLEND_MODE_A_MODE_OFFSET
		state.BlendMode |= ctx.Alpha.B() << BLEND_MODE_B_MODE_OFFSET
		state.BlendMode |= ctx.Alpha.C() << BLEND_MODE_C_MODE_OFFSET
		state.BlendMode |= ctx.Alpha.D() << BLEND_MODE_D_MODE_OFFSET
	}

	if prim.ABE() {
		state.BlendMode |= BLEND_MODE_ABE_BIT
	}
	if gs.registers.Pabe.PABE() {
		state.BlendMode |= BLEND_MODE_PABE_BIT
	}
	if gs.registers.Colclamp.CLAMP() {
		state.BlendMode |= BLEND_MODE_COLCLAMP_BIT
	}
	if ctx.Fba.FBA() {
		state.BlendMode |= BLEND_MODE_FB_ALPHA_BIT
	}

	if prim.TME() {
		state.Combiner |= COMBINER_TME_BIT
		if ctx.Tex0.TCC() != 0 {
			state.Combiner |= COMBINER_TCC_BIT
		}
		state.Combiner |= ctx.Tex0.TFX() << COMBINER_MODE_OFFSET
	}

	if prim.FGE() {
		state.Combiner |= COMBINER_FOG_BIT
	}
	return gs.findOrPlaceUniqueStateVector(state)
}

// If FRAME / ZBUF change in meaningful ways, restart the render pass.
// If no draw needs to read or write Z, the Z buffer can change freely.
func (gs *GSInterface) checkFrameBufferState() {
	prim := gs.registers.Prim
	ctx := &gs.registers.Ctx[prim.CTXT()]
	rp := &gs.renderPass

	if !gs.getAndClearDirtyFlag(STATE_DIRTY_FB_BIT) {
		return
	}

	fbDelta := rp.frame.Word0() != ctx.Frame.Word0()
	zDelta := rp.zbuf.PSM() != ctx.Zbuf.PSM() || rp.zbuf.ZBP() != ctx.Zbuf.ZBP()

	if rp.primitiveCount > 0 && (fbDelta || (rp.zSensitive && zDelta)) {
		gs.flushPendingTransfer(true)
		gs.tracker.FlushRenderPass(FLUSH_REASON_FB_POINTER)
	}

	if fbDelta {
		layout := GetPSMLayout(ctx.Frame.PSM())
		rp.fbPageWidthLog2 = layout.PageWidthLog2
		rp.fbPageHeightLog2 = layout.PageHeightLog2
		rp.frame = ctx.Frame
	}

	if zDelta {
		layout := GetPSMLayout(ctx.Zbuf.PSM())
		rp.zPageWidthLog2 = layout.PageWidthLog2
		rp.zPageHeightLog2 = layout.PageHeightLog2
		rp.zbuf = ctx.Zbuf
	}
}

func (gs *GSInterface) computeFBRect(bb [4]int32) PageRect {
	rp := &gs.renderPass
	x0 := uint32(bb[0]) >> rp.fbPageWidthLog2
	y0 := uint32(bb[1]) >> rp.fbPageHeightLog2
	x1 := uint32(bb[2]) >> rp.fbPageWidthLog2
	y1 := uint32(bb[3]) >> rp.fbPageHeightLog2

	stride := rp.frame.FBW()
	return PageRect{
		BasePage:   rp.frame.FBP() + x0 + y0*stride,
		PageWidth:  x1 - x0 + 1,
		PageHeight: y1 - y0 + 1,
		PageStride: stride,
		BlockMask:  math.MaxUint32,
		WriteMask:  PSMWordWriteMask(rp.frame.PSM()),
	}
}

func (gs *GSInterface) computeZRect(bb [4]int32) PageRect {
	rp := &gs.renderPass
	x0 := uint32(bb[0]) >> rp.zPageWidthLog2
	y0 := uint32(bb[1]) >> rp.zPageHeightLog2
	x1 := uint32(bb[2]) >> rp.zPageWidthLog2
	y1 := uint32(bb[3]) >> rp.zPageHeightLog2

	stride := rp.frame.FBW()
	return PageRect{
		BasePage:   rp.zbuf.ZBP() + x0 + y0*stride,
		PageWidth:  x1 - x0 + 1,
		PageHeight: y1 - y0 + 1,
		PageStride: stride,
		BlockMask:  math.MaxUint32,
		WriteMask:  PSMWordWriteMask(rp.zbuf.PSM()),
	}
}

// A draw with no observable side effects is skipped entirely
func (gs *GSInterface) drawIsDegenerate() bool {
	if !gs.getAndClearDirtyFlag(STATE_DIRTY_DEGENERATE_BIT) {
		return gs.stateTracker.degenerateDraw
	}

	ctx := &gs.registers.Ctx[gs.registers.Prim.CTXT()]
	st := &gs.stateTracker

	// Degenerate scissor
	if ctx.Scissor.SCAX0() > ctx.Scissor.SCAX1() || ctx.Scissor.SCAY0() > ctx.Scissor.SCAY1() {
		st.degenerateDraw = true
		return true
	}

	// We never pass the depth test
	if ctx.Test.ZTE() == ZTE_ENABLED && ctx.Test.ZTST() == ZTST_NEVER {
		st.degenerateDraw = true
		return true
	}

	// Alpha test forced to fail with KEEP leaves the FB untouched
	if ctx.Test.ATE() && ctx.Test.ATST() == ATST_NEVER && ctx.Test.AFAIL() == AFAIL_KEEP {
		st.degenerateDraw = true
		return true
	}

	// Undefined ZTE seems to mean ignore depth completely
	readOnlyDepth := ctx.Zbuf.ZMSK() || ctx.Test.ZTE() == ZTE_UNDEFINED
	readOnlyColor := ctx.Frame.FBMSK() == math.MaxUint32
	st.degenerateDraw = readOnlyColor && readOnlyDepth
	return st.degenerateDraw
}

func (gs *GSInterface) stateIsZSensitive() bool {
	ctx := &gs.registers.Ctx[gs.registers.Prim.CTXT()]

	if ctx.Test.ZTE() == ZTE_ENABLED {
		// We need to read depth
		if ctx.Test.HasZTest() {
			return true
		}
		// We need to write depth. ZTST_NEVER triggers the degenerate
		// path and never gets here.
		if !ctx.Zbuf.ZMSK() {
			return true
		}
	}
	return false
}
