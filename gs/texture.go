package gs

import "math"

// How a draw that samples its own framebuffer gets handled
type ColorFeedbackMode uint32

const (
	FEEDBACK_NONE ColorFeedbackMode = iota
	// Requires resolve-then-sample of the overlapping slice
	FEEDBACK_SLICED
	// 1:1 copy, the render target doubles as the texture
	FEEDBACK_PIXEL
)

// A second feedback draw with different formats cannot share the pass
func (gs *GSInterface) markRenderPassHasTextureFeedback(tex0 TEX0Reg) {
	rp := &gs.renderPass

	if rp.hasColorFeedback {
		if tex0.PSM() != rp.feedbackPSM ||
			(IsPaletteFormat(rp.feedbackPSM) && rp.feedbackCPSM != tex0.CPSM()) {
			gs.tracker.FlushRenderPass(FLUSH_REASON_TEXTURE_HAZARD)
		}
	}

	if !rp.hasColorFeedback {
		rp.hasColorFeedback = true
		rp.feedbackPSM = tex0.PSM()
		if IsPaletteFormat(rp.feedbackPSM) {
			rp.feedbackCPSM = tex0.CPSM()
		} else {
			rp.feedbackCPSM = 0
		}
	}
}

// A texture that merely straddles the FB/Z base is only potential
// feedback; games declare huge TW/TH without sampling into the FB
func computeHasPotentialFeedback(tex0 TEX0Reg, fbp, zbp, vramPages uint32) (color, depth bool) {
	texPages := textureSpanPages(tex0)
	texBasePage := tex0.TBP0() / BlocksPerPage

	fbPage := fbp
	if fbPage <= texBasePage {
		fbPage += vramPages
	}
	color = fbPage < texBasePage+texPages

	zPage := zbp
	if zPage <= texBasePage {
		zPage += vramPages
	}
	depth = zPage < texBasePage+texPages
	return
}

func textureSpanPages(tex0 TEX0Reg) uint32 {
	layout := GetPSMLayout(tex0.PSM())
	w := uint32(1) << tex0.TW()
	h := uint32(1) << tex0.TH()
	pagesX := (w + (1 << layout.PageWidthLog2) - 1) >> layout.PageWidthLog2
	pagesY := (h + (1 << layout.PageHeightLog2) - 1) >> layout.PageHeightLog2
	stride := maxInt(int(tex0.TBW()>>(layout.PageWidthLog2-6)), 1)
	return (pagesY-1)*uint32(stride) + pagesX
}

func (gs *GSInterface) updateColorFeedbackState() {
	rp := &gs.renderPass

	if !gs.getAndClearDirtyFlag(STATE_DIRTY_FEEDBACK_BIT) {
		// In feedback we recheck state every draw; the FB would have to
		// be re-resolved every draw anyway.
		if rp.isColorFeedback {
			gs.stateTracker.dirtyFlags |= STATE_DIRTY_PRIM_TEMPLATE_BIT | STATE_DIRTY_TEX_BIT
		}
		return
	}

	prim := gs.registers.Prim
	ctx := &gs.registers.Ctx[prim.CTXT()]
	rp.isColorFeedback = false
	rp.isPotentialColorFeedback = false
	rp.isPotentialDepthFeedback = false

	if !prim.TME() {
		return
	}

	// Anything repeat region is too messy
	if ctx.Clamp.WMS() == WM_REGION_REPEAT || ctx.Clamp.WMT() == WM_REGION_REPEAT {
		return
	}

	// Mip-mapping is too weird to deal with
	if ctx.Tex1.HasMipmap() {
		return
	}

	texPSM := ctx.Tex0.PSM()

	if ctx.Tex0.TBP0() != ctx.Frame.FBP()*BlocksPerPage {
		colorPotential, depthPotential := computeHasPotentialFeedback(
			ctx.Tex0, ctx.Frame.FBP(), ctx.Zbuf.ZBP(), gs.vramSize/PageSize)
		rp.isPotentialColorFeedback = colorPotential
		rp.isPotentialDepthFeedback = depthPotential

		// z_write is committed later, so derive it from the live state
		hasZWrite := rp.zWrite || (gs.stateIsZSensitive() && !ctx.Zbuf.ZMSK())

		texWriteMask := PSMWordWriteMask(texPSM)
		fbWriteMask := PSMWordWriteMask(rp.frame.PSM())
		zWriteMask := PSMWordWriteMask(rp.zbuf.PSM())

		// Aliasing 8H against 24-bit is fine
		if texWriteMask&fbWriteMask == 0 {
			rp.isPotentialColorFeedback = false
		}
		if texWriteMask&zWriteMask == 0 || !hasZWrite {
			rp.isPotentialDepthFeedback = false
		}

		// Not true feedback, exit analysis
		return
	}

	if ctx.Tex0.TBW() != ctx.Frame.FBW() {
		return
	}

	// Feedback assumes the texture format has same bpp and swizzle
	if SwizzleCompatKey(texPSM) != SwizzleCompatKey(ctx.Frame.PSM()) {
		return
	}

	width := uint32(1) << ctx.Tex0.TW()
	height := uint32(1) << ctx.Tex0.TH()

	// The image must cover the entire frame buffer
	if ctx.Frame.FBW()*BUFFER_WIDTH_SCALE > width {
		return
	}

	// There is no framebuffer height, but scissor Y max deduces it
	if ctx.Scissor.SCAY1() >= height {
		return
	}

	rp.isColorFeedback = true
	gs.stateTracker.dirtyFlags |= STATE_DIRTY_PRIM_TEMPLATE_BIT | STATE_DIRTY_TEX_BIT
}

// Classifies one feedback draw. Pixel mode requires a provable 1:1
// nearest-neighbor mapping from render pixels to texels; anything with
// perspective, linear filtering or out-of-window sampling slices.
func (gs *GSInterface) deduceColorFeedbackMode(quad bool, numVertices int,
	pos []VertexPosition, attr []VertexAttribute, uvBB *[4]int32, bb [4]int32) ColorFeedbackMode {
	// Sprite and triangle are fine. Line is not.
	canFeedback := numVertices == 3 || (quad && numVertices == 2)
	if !canFeedback {
		return FEEDBACK_NONE
	}

	ctx := &gs.registers.Ctx[gs.registers.Prim.CTXT()]
	prim := gs.registers.Prim

	width := 1 << ctx.Tex0.TW()
	height := 1 << ctx.Tex0.TH()
	fwidth := float32(width * 16)
	fheight := float32(height * 16)
	needsPerspective := false

	var uv [3][2]int32
	if prim.FST() {
		for i := 0; i < numVertices; i++ {
			uv[i] = [2]int32{int32(attr[i].U), int32(attr[i].V)}
		}
	} else {
		// With perspective we cannot assume pixel correctness. For
		// sprites Q is flat and only Q0 matters anyway.
		if !quad {
			if attr[0].Q != attr[1].Q || attr[1].Q != attr[2].Q {
				needsPerspective = true
			}
		}
		for i := 0; i < numVertices; i++ {
			invQ := 1.0 / attr[i].Q
			uv[i] = [2]int32{
				int32(fwidth * attr[i].S * invQ),
				int32(fheight * attr[i].T * invQ),
			}
		}
	}

	uvMin := uv[0]
	uvMax := uv[0]
	for i := 1; i < numVertices; i++ {
		uvMin[0] = int32(minInt(int(uvMin[0]), int(uv[i][0])))
		uvMin[1] = int32(minInt(int(uvMin[1]), int(uv[i][1])))
		uvMax[0] = int32(maxInt(int(uvMax[0]), int(uv[i][0])))
		uvMax[1] = int32(maxInt(int(uvMax[1]), int(uv[i][1])))
	}

	// Linear filtering samples half a texel around; expand the BB
	if ctx.Tex1.MMAG() != TEX_NEAREST {
		uvMin[0] -= 1 << (SUBPIXEL_BITS - 1)
		uvMin[1] -= 1 << (SUBPIXEL_BITS - 1)
		uvMax[0] += (1 << SUBPIXEL_BITS) - 1
		uvMax[1] += (1 << SUBPIXEL_BITS) - 1
	}

	// This can safely become a REGION_CLAMP
	*uvBB = [4]int32{
		uvMin[0] >> SUBPIXEL_BITS, uvMin[1] >> SUBPIXEL_BITS,
		uvMax[0] >> SUBPIXEL_BITS, uvMax[1] >> SUBPIXEL_BITS,
	}

	if needsPerspective || ctx.Tex1.MMAG() == TEX_LINEAR {
		return FEEDBACK_SLICED
	}

	// If the region clamp contains the full primitive BB, clamping is
	// unobservable and can be ignored.
	if ctx.Clamp.WMS() == WM_REGION_CLAMP {
		if bb[0] < int32(ctx.Clamp.MINU()) || bb[2] > int32(ctx.Clamp.MAXU()) {
			return FEEDBACK_SLICED
		}
	}
	if ctx.Clamp.WMT() == WM_REGION_CLAMP {
		if bb[1] < int32(ctx.Clamp.MINV()) || bb[3] > int32(ctx.Clamp.MAXV()) {
			return FEEDBACK_SLICED
		}
	}

	minDelta := int32(math.MaxInt32)
	maxDelta := int32(math.MinInt32)
	for i := 0; i < numVertices; i++ {
		dx := uv[i][0] - pos[i].X
		dy := uv[i][1] - pos[i].Y
		minDelta = int32(minInt(minInt(int(minDelta), int(dx)), int(dy)))
		maxDelta = int32(maxInt(maxInt(int(maxDelta), int(dx)), int(dy)))
	}

	// The UV offset must stay in [0, 2^SUBPIXEL_BITS - 1] to guarantee
	// snapping with NEAREST.
	if minDelta < 0 || maxDelta >= 1<<SUBPIXEL_BITS {
		return FEEDBACK_SLICED
	}

	return FEEDBACK_PIXEL
}

// Effective rect covering every accessed mip level
func computeEffectiveTextureRect(desc *TextureDescriptor) TextureRect {
	var rect TextureRect
	rect.Width = 1 << desc.Tex0.TW()
	rect.Height = 1 << desc.Tex0.TH()

	if desc.Clamp.WMS() == WM_REGION_CLAMP {
		rect.X = desc.Clamp.MINU()
		if desc.Clamp.MAXU() >= rect.X {
			rect.Width = desc.Clamp.MAXU() - rect.X + 1
		}
	}
	if desc.Clamp.WMT() == WM_REGION_CLAMP {
		rect.Y = desc.Clamp.MINV()
		if desc.Clamp.MAXV() >= rect.Y {
			rect.Height = desc.Clamp.MAXV() - rect.Y + 1
		}
	}

	rect.Levels = 1
	if desc.Tex1.MminHasMipmap() {
		rect.Levels = desc.Tex1.MXL() + 1
		if rect.Levels > 7 {
			rect.Levels = 7
		}
	}
	return rect
}

// Marks the texture read in the tracker, clamping the hazard region when
// a huge texture merely straddles the FB/Z base
func (gs *GSInterface) updateTexturePageRectsAndRead() {
	prim := gs.registers.Prim
	ctx := &gs.registers.Ctx[prim.CTXT()]
	psm := ctx.Tex0.PSM()
	tex := &gs.stateTracker.tex
	rp := &gs.renderPass

	for level := uint32(0); level < tex.rect.Levels; level++ {
		if rp.isPotentialColorFeedback || rp.isPotentialDepthFeedback {
			texBasePage := ctx.Tex0.TBP0() / BlocksPerPage
			vramPages := gs.vramSize / PageSize

			rect := PageRect{
				BasePage:   texBasePage,
				PageWidth:  vramPages,
				PageHeight: 1,
				PageStride: 0,
				BlockMask:  math.MaxUint32,
				WriteMask:  math.MaxUint32,
			}

			// Clamp the hazard region to just below the FB so we don't
			// falsely invalidate the texture.
			if rp.isPotentialColorFeedback {
				fbBasePage := ctx.Frame.FBP()
				if fbBasePage <= texBasePage {
					fbBasePage += vramPages
				}
				rect.PageWidth = minUint32(rect.PageWidth, fbBasePage-texBasePage)
			}
			if rp.isPotentialDepthFeedback {
				zBasePage := ctx.Zbuf.ZBP()
				if zBasePage <= texBasePage {
					zBasePage += vramPages
				}
				rect.PageWidth = minUint32(rect.PageWidth, zBasePage-texBasePage)
			}

			tex.pageRects[level] = rect
		} else {
			tex.pageRects[level] = ComputePageRect(
				tex.levels[level].base,
				tex.rect.X>>level,
				tex.rect.Y>>level,
				tex.rect.Width>>level,
				tex.rect.Height>>level,
				tex.levels[level].stride,
				psm)
		}

		gs.tracker.MarkTextureRead(tex.pageRects[level])
	}
}

// Re-checks hazards for the memoized texture rects without rebuilding them
func (gs *GSInterface) texturePageRectsRead() {
	tex := &gs.stateTracker.tex
	for level := uint32(0); level < tex.rect.Levels; level++ {
		gs.tracker.MarkTextureRead(tex.pageRects[level])
	}
}

// Resolves the texture index for the next draw: dedup in the pass,
// then the global cache, then synthesis through the renderer
func (gs *GSInterface) drawingKickUpdateTexture(feedbackMode ColorFeedbackMode,
	uvBB, bb [4]int32) uint32 {
	st := &gs.stateTracker
	rp := &gs.renderPass

	if !gs.getAndClearDirtyFlag(STATE_DIRTY_TEX_BIT) {
		return st.lastTextureIndex
	}

	prim := gs.registers.Prim
	ctx := &gs.registers.Ctx[prim.CTXT()]

	if feedbackMode == FEEDBACK_PIXEL {
		gs.markRenderPassHasTextureFeedback(ctx.Tex0)
		// Special index for on-tile feedback. CLUTInstances palettes and
		// 32 sub-banks fit in 15 bits; the MSB marks feedback.
		return (1 << (TEX_TEXTURE_INDEX_BITS - 1)) | (rp.clutInstance*32 + ctx.Tex0.CSA())
	}

	var desc TextureDescriptor
	desc.Tex0 = ctx.Tex0
	desc.Tex1 = ctx.Tex1
	desc.Clamp = ctx.Clamp

	psm := desc.Tex0.PSM()
	cpsm := desc.Tex0.CPSM()
	var csaMask uint32

	if IsPaletteFormat(psm) {
		desc.PaletteBank = rp.clutInstance
		desc.LatestBank = rp.latestClutInstance

		// Only CT32 and CT16(S) are allowed CPSM formats
		if cpsm != PSMCT32 {
			desc.Texa = gs.registers.Texa
		}

		if psm == PSMT8 || psm == PSMT8H {
			csaMask = 0xffff
		} else {
			csaMask = 1
		}
		csaMask <<= desc.Tex0.CSA()

		// For 32-bit color, the upper CLUT bank is read as well
		if cpsm == PSMCT32 {
			csaMask |= csaMask << 16
		}
	} else {
		// Palette does not matter
		desc.Tex0 = desc.Tex0.WithCPSM(0).WithCSA(0)
		if psm != PSMCT32 && psm != PSMZ32 {
			desc.Texa = gs.registers.Texa
		}
	}

	// Only affects shading
	desc.Tex0 = desc.Tex0.WithTCC(0).WithTFX(0)
	// Only affects palette upload
	desc.Tex0 = desc.Tex0.WithCBP(0).WithCSM(0).WithCLD(0)

	// In feedback scenarios where UV BB and render BB overlap, hazard
	// tracking is suspended until a disjoint pattern is proven.
	cacheTexture := true

	if feedbackMode == FEEDBACK_SLICED {
		if prim.PRIM() == PRIM_SPRITE {
			// Sprites are likely explicit mip blurs and the like; cache
			// those. The case to avoid is random triangle soup feedback.
			cacheTexture = true
		} else if desc.Clamp.WMS() == WM_REGION_CLAMP && desc.Clamp.WMT() == WM_REGION_CLAMP {
			// An explicit small clamp rect implies a well-defined
			// feedback, e.g. ping-pong blurs.
			hx0 := maxInt(int(desc.Clamp.MINU()), int(bb[0]))
			hy0 := maxInt(int(desc.Clamp.MINV()), int(bb[1]))
			hx1 := minInt(int(desc.Clamp.MAXU()), int(bb[2]))
			hy1 := minInt(int(desc.Clamp.MAXV()), int(bb[3]))
			cacheTexture = hx0 > hx1 || hy0 > hy1
		} else {
			// Doing this correctly means emulating the PS2 texture
			// cache exactly. Conservatively skip caching.
			cacheTexture = false
		}
	}

	if feedbackMode == FEEDBACK_SLICED && cacheTexture &&
		!desc.Clamp.HasHorizontalRepeat() && !desc.Clamp.HasVerticalRepeat() {
		// Narrow the texture for load purposes; it gets discarded right
		// away anyway.
		if desc.Clamp.WMS() == WM_REGION_CLAMP {
			minU := maxInt(int(desc.Clamp.MINU()), minInt(int(uvBB[0]), int(desc.Clamp.MAXU())))
			maxU := minInt(int(desc.Clamp.MAXU()), maxInt(int(uvBB[2]), minU))
			desc.Clamp = desc.Clamp.WithMINU(uint32(minU)).WithMAXU(uint32(maxU))
		} else {
			desc.Clamp = desc.Clamp.WithWMS(WM_REGION_CLAMP).
				WithMINU(uint32(maxInt(0, int(uvBB[0])))).WithMAXU(uint32(maxInt(0, int(uvBB[2]))))
		}

		if desc.Clamp.WMT() == WM_REGION_CLAMP {
			minV := maxInt(int(desc.Clamp.MINV()), minInt(int(uvBB[1]), int(desc.Clamp.MAXV())))
			maxV := minInt(int(desc.Clamp.MAXV()), maxInt(int(uvBB[3]), minV))
			desc.Clamp = desc.Clamp.WithMINV(uint32(minV)).WithMAXV(uint32(maxV))
		} else {
			desc.Clamp = desc.Clamp.WithWMT(WM_REGION_CLAMP).
				WithMINV(uint32(maxInt(0, int(uvBB[1])))).WithMAXV(uint32(maxInt(0, int(uvBB[3]))))
		}
	} else {
		// Normalize the region bounds when region modes are unused so we
		// don't create duplicate textures for different clamp words.
		if !desc.Clamp.HasHorizontalRegion() {
			desc.Clamp = desc.Clamp.WithMINU(0).WithMAXU(0).WithWMS(WM_CLAMP)
		}
		if !desc.Clamp.HasVerticalRegion() {
			desc.Clamp = desc.Clamp.WithMINV(0).WithMAXV(0).WithWMT(WM_CLAMP)
		}
	}

	width := uint32(1) << desc.Tex0.TW()
	height := uint32(1) << desc.Tex0.TH()

	// No point uploading mips that are never accessed
	if !desc.Tex1.MminHasMipmap() {
		desc.Tex1 = desc.Tex1.WithMXL(0)
	}

	desc.Rect = computeEffectiveTextureRect(&desc)
	st.tex.rect = desc.Rect
	st.tex.levels[0] = texLevelState{base: desc.Tex0.TBP0(), stride: desc.Tex0.TBW()}

	for level := uint32(1); level < desc.Rect.Levels; level++ {
		var mip MIPTBPReg
		var mipLevel uint32
		if level <= 3 {
			mip, mipLevel = ctx.MipTbl13, level
		} else {
			mip, mipLevel = ctx.MipTbl46, level-3
		}
		st.tex.levels[level] = texLevelState{base: mip.TBP(mipLevel), stride: mip.TBW(mipLevel)}
		if level <= 3 {
			desc.MipTbp13 = ctx.MipTbl13
		} else {
			desc.MipTbp46 = ctx.MipTbl46
		}
	}

	// Only affects shading
	desc.Tex1 = desc.Tex1.WithLCM(0).WithMMAG(0).WithMMIN(0).WithMTBA(0).WithL(0).WithK(0)

	// May flush the render pass if there is a hazard
	if cacheTexture {
		gs.updateTexturePageRectsAndRead()
	}

	// After TEXFLUSH-style invalidation, lastTextureIndex is poisoned
	// and the full lookup has to run.
	if st.lastTextureIndex != math.MaxUint32 &&
		len(rp.texInfos) > 0 &&
		st.lastTextureDescriptor == desc {
		return st.lastTextureIndex
	}

	h := newHasher()
	h.u64(uint64(desc.Tex0))
	h.u64(uint64(desc.Tex1))
	h.u64(uint64(desc.Texa))
	h.u64(uint64(desc.MipTbp13))
	h.u64(uint64(desc.MipTbp46))
	h.u64(uint64(desc.Clamp))
	// The palette bank must be part of the key: the same texture used
	// with different palettes needs distinct variants in the pass.
	h.u64(uint64(desc.PaletteBank))
	hash := h.get()

	var textureIndex uint32
	entry := rp.textureMap[hash]

	if entry != nil && entry.valid {
		textureIndex = entry.index
	} else {
		// When not caching in the tracker, hazards still have to be
		// checked on the first read from VRAM.
		if !cacheTexture {
			gs.updateTexturePageRectsAndRead()
		}

		image := gs.tracker.FindCachedTexture(hash)
		if image == nil {
			desc.Hash = hash
			image = gs.renderer.CreateCachedTexture(&desc)

			// Explicit feedback is self-managed and skips registration
			if cacheTexture {
				gs.tracker.RegisterCachedTexture(st.tex.pageRects[:desc.Rect.Levels],
					csaMask, rp.clutInstance, hash, image)
			}
		}

		textureIndex = uint32(len(rp.texInfos))

		if entry != nil {
			entry.index = textureIndex
			entry.valid = true
		} else {
			rp.textureMap[hash] = &textureMapEntry{index: textureIndex, valid: true}
		}

		var info TextureInfo
		info.Image = image
		info.Sizes = [4]float32{
			float32(width), float32(height),
			1.0 / float32(image.Width), 1.0 / float32(image.Height),
		}

		if desc.Clamp.WMS() == WM_CLAMP {
			info.Region[0] = 0
			info.Region[2] = float32(image.Width) - 1
		} else if desc.Clamp.WMS() == WM_REGION_CLAMP {
			info.Region[0] = float32(desc.Clamp.MINU())
			info.Region[2] = float32(desc.Clamp.MAXU())
		}

		if desc.Clamp.WMT() == WM_CLAMP {
			info.Region[1] = 0
			info.Region[3] = float32(image.Height) - 1
		} else if desc.Clamp.WMT() == WM_REGION_CLAMP {
			info.Region[1] = float32(desc.Clamp.MINV())
			info.Region[3] = float32(desc.Clamp.MAXV())
		}

		info.Bias[0] = -float32(desc.Rect.X) * info.Sizes[2]
		info.Bias[1] = -float32(desc.Rect.Y) * info.Sizes[3]

		rp.texInfos = append(rp.texInfos, info)
		rp.heldImages = append(rp.heldImages, image)
	}

	st.lastTextureDescriptor = desc
	st.lastTextureIndex = textureIndex
	return textureIndex
}

// Rebuilds the per-primitive template when dirty
func (gs *GSInterface) drawingKickUpdateState(feedbackMode ColorFeedbackMode, uvBB, bb [4]int32) {
	if !gs.getAndClearDirtyFlag(STATE_DIRTY_PRIM_TEMPLATE_BIT) {
		return
	}

	prim := gs.registers.Prim
	ctx := &gs.registers.Ctx[prim.CTXT()]
	p := &gs.stateTracker.primTmpl
	*p = primTemplate{}

	if prim.TME() {
		p.tex = gs.drawingKickUpdateTexture(feedbackMode, uvBB, bb) << TEX_TEXTURE_INDEX_OFFSET
		if ctx.Tex1.MMAG() == TEX_LINEAR {
			p.tex |= TEX_SAMPLER_MAG_LINEAR_BIT
		}
		if ctx.Clamp.HasHorizontalClamp() {
			p.tex |= TEX_SAMPLER_CLAMP_S_BIT
		}
		if ctx.Clamp.HasVerticalClamp() {
			p.tex |= TEX_SAMPLER_CLAMP_T_BIT
		}

		switch ctx.Tex1.MMIN() {
		case TEX_LINEAR:
			p.tex |= TEX_SAMPLER_MIN_LINEAR_BIT
		case TEX_NEAREST_MIPMAP_LINEAR:
			p.tex |= TEX_SAMPLER_MIPMAP_LINEAR_BIT
		case TEX_LINEAR_MIPMAP_NEAREST:
			p.tex |= TEX_SAMPLER_MIN_LINEAR_BIT
		case TEX_LINEAR_MIPMAP_LINEAR:
			p.tex |= TEX_SAMPLER_MIN_LINEAR_BIT | TEX_SAMPLER_MIPMAP_LINEAR_BIT
		}

		p.tex2 = ctx.Tex1.LCM() << TEX2_FIXED_LOD_OFFSET
		p.tex2 |= ctx.Tex1.L() << TEX2_L_OFFSET
		p.tex2 |= ctx.Tex1.K() << TEX2_K_OFFSET
		if ctx.Tex1.MminHasMipmap() {
			p.tex |= ctx.Tex1.MXL() << TEX_MAX_MIP_LEVEL_OFFSET
		}
	}

	// Texture resolution can flush the pass and reset the state vectors,
	// so the state index is resolved after it.
	p.state = gs.drawingKickUpdateStateVector() << STATE_INDEX_BIT_OFFSET

	if ctx.Test.ZTE() == ZTE_ENABLED {
		if ctx.Test.HasZTest() {
			p.state |= 1 << STATE_BIT_Z_TEST
			if ctx.Test.ZTST() == ZTST_GREATER {
				p.state |= 1 << STATE_BIT_Z_TEST_GREATER
			}
		}
		if !ctx.Zbuf.ZMSK() {
			p.state |= 1 << STATE_BIT_Z_WRITE
		}
	}

	colorWriteNeedsPreviousPixels := false

	// AA1 implies alpha-blending of some sort
	if prim.ABE() || prim.AA1() {
		// Any blend factor using dst color makes the draw non-opaque
		if ctx.Alpha.A() == BLEND_RGB_DEST || ctx.Alpha.B() == BLEND_RGB_DEST ||
			ctx.Alpha.C() == BLEND_ALPHA_DEST || ctx.Alpha.D() == BLEND_RGB_DEST {
			colorWriteNeedsPreviousPixels = true
		}
	}

	// Any pixel test mode cannot be opaque
	if (ctx.Test.ATE() && ctx.Test.ATST() != ATST_ALWAYS) || ctx.Test.DATE() ||
		ctx.Frame.FBMSK() != 0 {
		colorWriteNeedsPreviousPixels = true
	}

	// In feedback, sampling the texture essentially becomes blending
	if gs.renderPass.isColorFeedback {
		colorWriteNeedsPreviousPixels = true
	}

	if !colorWriteNeedsPreviousPixels {
		p.state |= 1 << STATE_BIT_OPAQUE
	}

	if prim.AA1() {
		p.state |= 1 << STATE_BIT_MULTISAMPLE
		gs.renderPass.hasAA1 = true
	}

	if gs.registers.Scanmsk.HasMask() {
		p.state |= 1 << (STATE_BIT_SCANMSK_EVEN + gs.registers.Scanmsk.MSK() - MSK_SKIP_EVEN)
		gs.renderPass.hasScanmsk = true
	}

	if !prim.FST() {
		p.state |= 1 << STATE_BIT_PERSPECTIVE
	}
	if prim.IIP() {
		p.state |= 1 << STATE_BIT_IIP
	}
	if prim.FIX() {
		p.state |= 1 << STATE_BIT_FIX
	}
}
