package gs

// Decodes CLD and performs the CLUT upload, memoizing redundant uploads.
// Games re-upload identical palettes constantly; the memoization window
// is extremely important.
func (gs *GSInterface) handleClutUpload(ctxIndex uint32) {
	ctx := &gs.registers.Ctx[ctxIndex]
	tex0 := ctx.Tex0
	loadClut := false

	cld := tex0.CLD()
	switch cld {
	case CLD_LOAD:
		loadClut = true
	case CLD_LOAD_WRITE_CBP0, CLD_LOAD_WRITE_CBP1:
		loadClut = true
		gs.registers.CachedCBP[cld&1] = tex0.CBP()
	case CLD_COMPARE_LOAD_CBP0, CLD_COMPARE_LOAD_CBP1:
		loadClut = gs.registers.CachedCBP[cld&1] != tex0.CBP()
		gs.registers.CachedCBP[cld&1] = tex0.CBP()
	}

	if !loadClut {
		return
	}

	// The HWREG write technically lands as soon as it is received and
	// this CLUT upload may depend on it, so flush a partial transfer.
	if gs.transferState.hostToLocalActive &&
		uint32(len(gs.transferState.hostToLocalPayload)) > gs.transferState.lastFlushedQwords {
		gs.debugLog("flushing partial transfer due to palette read")
		gs.flushPendingTransfer(true)
	}

	var page PageRectCLUT

	var paletteWidth, paletteHeight uint32
	psm := tex0.PSM()
	cpsm := tex0.CPSM()
	is8bitPalette := false

	if psm == PSMT8 || psm == PSMT8H {
		if tex0.CSM() != CSM_LAYOUT_RECT {
			paletteWidth, paletteHeight = 256, 1
		} else {
			paletteWidth, paletteHeight = 16, 16
		}
		page.CSAMask = 0xffff
		is8bitPalette = true
	} else {
		if tex0.CSM() != CSM_LAYOUT_RECT {
			paletteWidth, paletteHeight = 16, 1
		} else {
			paletteWidth, paletteHeight = 8, 4
		}
		page.CSAMask = 1 << tex0.CSA()
	}

	// For 32-bit color, the upper CLUT bank is read as well
	if cpsm == PSMCT32 {
		page.CSAMask |= page.CSAMask << 16
	}

	var xOffset, yOffset uint32
	if tex0.CSM() == CSM_LAYOUT_LINE {
		xOffset = gs.registers.Texclut.COU() * COU_SCALE
		yOffset = gs.registers.Texclut.COV()
	}

	page.PageRect = ComputePageRect(tex0.CBP(), xOffset, yOffset,
		paletteWidth, paletteHeight, gs.registers.Texclut.CBW(), cpsm)

	gs.tracker.MarkTextureRead(page.PageRect)
	gs.tracker.RegisterCachedClutClobber(page)

	// Queue up the palette upload, normalizing the fields that do not
	// contribute to its contents.
	var paletteDesc PaletteUploadDescriptor
	paletteDesc.Texclut = gs.registers.Texclut
	paletteDesc.Tex0 = tex0.
		WithTBP0(0).WithTFX(0).WithTW(0).WithTH(0).WithTCC(0).WithTBW(0).WithCLD(0)

	// CSA seems to be ignored on upload in 256 color mode
	if is8bitPalette {
		paletteDesc.Tex0 = paletteDesc.Tex0.WithCSA(0)
	}

	rp := &gs.renderPass

	// Search the memoized window newest-to-oldest
	for i := rp.numMemoizedPalettes; i > 0; i-- {
		memoized := &rp.memoizedPalettes[i-1]
		// A later update writing banks this one did not means the
		// histories diverged; stop.
		if memoized.csaMask&^page.CSAMask != 0 {
			break
		}

		if memoized.csaMask == page.CSAMask &&
			memoized.upload.Texclut == paletteDesc.Texclut &&
			memoized.upload.Tex0 == paletteDesc.Tex0 {
			if memoized.clutInstance != rp.clutInstance {
				gs.markTextureStateDirty()
			}
			rp.clutInstance = memoized.clutInstance

			// Move the hit to the most-recent slot
			if i < rp.numMemoizedPalettes {
				instance := rp.clutInstance
				copy(rp.memoizedPalettes[i-1:rp.numMemoizedPalettes-1],
					rp.memoizedPalettes[i:rp.numMemoizedPalettes])
				last := &rp.memoizedPalettes[rp.numMemoizedPalettes-1]
				last.csaMask = page.CSAMask
				last.upload = paletteDesc
				last.clutInstance = instance
			}
			return
		}
	}

	rp.clutInstance = gs.renderer.UpdatePaletteCache(paletteDesc)
	rp.latestClutInstance = rp.clutInstance
	rp.pendingPaletteUpdates++
	gs.markTextureStateDirty()

	// Maintain a sliding window
	if rp.numMemoizedPalettes == NumMemoizedPalettes {
		copy(rp.memoizedPalettes[:], rp.memoizedPalettes[1:])
		rp.numMemoizedPalettes--
	}

	memoized := &rp.memoizedPalettes[rp.numMemoizedPalettes]
	rp.numMemoizedPalettes++
	memoized.clutInstance = rp.clutInstance
	memoized.csaMask = page.CSAMask
	memoized.upload = paletteDesc

	if rp.pendingPaletteUpdates >= CLUTInstances {
		gs.tracker.FlushRenderPass(FLUSH_REASON_OVERFLOW)
	}
}

func (gs *GSInterface) handleTex0Write(ctxIndex uint32) {
	gs.handleClutUpload(ctxIndex)
}

// Auto-generates MIPTBP1 when TEX0 is written with TEX1.MTBA set
func (gs *GSInterface) handleMiptblGen(ctxIndex uint32) {
	ctx := &gs.registers.Ctx[ctxIndex]
	if ctx.Tex1.MTBA() == 0 {
		return
	}

	tex0 := ctx.Tex0
	base := tex0.TBP0()
	w := uint32(1) << tex0.TW()
	h := uint32(1) << tex0.TH()
	rowLength64 := w / 64

	layout := GetPSMLayout(tex0.PSM())
	numBlocks := (w >> layout.BlockWidthLog2) * (h >> layout.BlockHeightLog2)
	base += numBlocks

	numBlocks /= 4
	rowLength64 /= 2
	ctx.MipTbl13 = ctx.MipTbl13.WithTBP1(base).WithTBW1(rowLength64)
	base += numBlocks

	numBlocks /= 4
	rowLength64 /= 2
	ctx.MipTbl13 = ctx.MipTbl13.WithTBP2(base).WithTBW2(rowLength64)
	base += numBlocks

	ctx.MipTbl13 = ctx.MipTbl13.WithTBP3(base).WithTBW3(rowLength64)

	gs.stateTracker.dirtyFlags |= STATE_DIRTY_TEX_BIT | STATE_DIRTY_PRIM_TEMPLATE_BIT
}
