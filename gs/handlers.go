package gs

// A+D register addresses
type RegisterAddr uint32

const (
	ADDR_PRIM       RegisterAddr = 0x00
	ADDR_RGBAQ      RegisterAddr = 0x01
	ADDR_ST         RegisterAddr = 0x02
	ADDR_UV         RegisterAddr = 0x03
	ADDR_XYZF2      RegisterAddr = 0x04
	ADDR_XYZ2       RegisterAddr = 0x05
	ADDR_TEX0_1     RegisterAddr = 0x06
	ADDR_TEX0_2     RegisterAddr = 0x07
	ADDR_CLAMP_1    RegisterAddr = 0x08
	ADDR_CLAMP_2    RegisterAddr = 0x09
	ADDR_FOG        RegisterAddr = 0x0a
	ADDR_XYZF3      RegisterAddr = 0x0c
	ADDR_XYZ3       RegisterAddr = 0x0d
	// Undocumented RGBAQ mirror, seen in Ridge Racer V
	ADDR_RGBAQ_2    RegisterAddr = 0x11
	ADDR_TEX1_1     RegisterAddr = 0x14
	ADDR_TEX1_2     RegisterAddr = 0x15
	ADDR_TEX2_1     RegisterAddr = 0x16
	ADDR_TEX2_2     RegisterAddr = 0x17
	ADDR_XYOFFSET_1 RegisterAddr = 0x18
	ADDR_XYOFFSET_2 RegisterAddr = 0x19
	ADDR_PRMODECONT RegisterAddr = 0x1a
	ADDR_PRMODE     RegisterAddr = 0x1b
	ADDR_TEXCLUT    RegisterAddr = 0x1c
	ADDR_SCANMSK    RegisterAddr = 0x22
	ADDR_MIPTBP1_1  RegisterAddr = 0x34
	ADDR_MIPTBP1_2  RegisterAddr = 0x35
	ADDR_MIPTBP2_1  RegisterAddr = 0x36
	ADDR_MIPTBP2_2  RegisterAddr = 0x37
	ADDR_TEXA       RegisterAddr = 0x3b
	ADDR_FOGCOL     RegisterAddr = 0x3d
	ADDR_TEXFLUSH   RegisterAddr = 0x3f
	ADDR_SCISSOR_1  RegisterAddr = 0x40
	ADDR_SCISSOR_2  RegisterAddr = 0x41
	ADDR_ALPHA_1    RegisterAddr = 0x42
	ADDR_ALPHA_2    RegisterAddr = 0x43
	ADDR_DIMX       RegisterAddr = 0x44
	ADDR_DTHE       RegisterAddr = 0x45
	ADDR_COLCLAMP   RegisterAddr = 0x46
	ADDR_TEST_1     RegisterAddr = 0x47
	ADDR_TEST_2     RegisterAddr = 0x48
	ADDR_PABE       RegisterAddr = 0x49
	ADDR_FBA_1      RegisterAddr = 0x4a
	ADDR_FBA_2      RegisterAddr = 0x4b
	ADDR_FRAME_1    RegisterAddr = 0x4c
	ADDR_FRAME_2    RegisterAddr = 0x4d
	ADDR_ZBUF_1     RegisterAddr = 0x4e
	ADDR_ZBUF_2     RegisterAddr = 0x4f
	ADDR_BITBLTBUF  RegisterAddr = 0x50
	ADDR_TRXPOS     RegisterAddr = 0x51
	ADDR_TRXREG     RegisterAddr = 0x52
	ADDR_TRXDIR     RegisterAddr = 0x53
	ADDR_HWREG      RegisterAddr = 0x54
	ADDR_SIGNAL     RegisterAddr = 0x60
	ADDR_FINISH     RegisterAddr = 0x61
	ADDR_LABEL      RegisterAddr = 0x62

	NumRegisterAddrs = 0x63
)

type adHandler func(gs *GSInterface, payload uint64)

var adHandlers [NumRegisterAddrs]adHandler

func init() {
	for i := range adHandlers {
		adHandlers[i] = adNOP
	}
	adHandlers[ADDR_PRIM] = adPRIM
	adHandlers[ADDR_RGBAQ] = adRGBAQ
	adHandlers[ADDR_RGBAQ_2] = adRGBAQ
	adHandlers[ADDR_ST] = adST
	adHandlers[ADDR_UV] = adUV
	adHandlers[ADDR_XYZF2] = adXYZF2
	adHandlers[ADDR_XYZ2] = adXYZ2
	adHandlers[ADDR_TEX0_1] = adTEX0_1
	adHandlers[ADDR_TEX0_2] = adTEX0_2
	adHandlers[ADDR_CLAMP_1] = adCLAMP_1
	adHandlers[ADDR_CLAMP_2] = adCLAMP_2
	adHandlers[ADDR_FOG] = adFOG
	adHandlers[ADDR_XYZF3] = adXYZF3
	adHandlers[ADDR_XYZ3] = adXYZ3
	adHandlers[ADDR_TEX1_1] = adTEX1_1
	adHandlers[ADDR_TEX1_2] = adTEX1_2
	adHandlers[ADDR_TEX2_1] = adTEX2_1
	adHandlers[ADDR_TEX2_2] = adTEX2_2
	adHandlers[ADDR_XYOFFSET_1] = adXYOFFSET_1
	adHandlers[ADDR_XYOFFSET_2] = adXYOFFSET_2
	adHandlers[ADDR_PRMODECONT] = adPRMODECONT
	adHandlers[ADDR_PRMODE] = adPRMODE
	adHandlers[ADDR_TEXCLUT] = adTEXCLUT
	adHandlers[ADDR_SCANMSK] = adSCANMSK
	adHandlers[ADDR_MIPTBP1_1] = adMIPTBP1_1
	adHandlers[ADDR_MIPTBP1_2] = adMIPTBP1_2
	adHandlers[ADDR_MIPTBP2_1] = adMIPTBP2_1
	adHandlers[ADDR_MIPTBP2_2] = adMIPTBP2_2
	adHandlers[ADDR_TEXA] = adTEXA
	adHandlers[ADDR_FOGCOL] = adFOGCOL
	adHandlers[ADDR_TEXFLUSH] = adTEXFLUSH
	adHandlers[ADDR_SCISSOR_1] = adSCISSOR_1
	adHandlers[ADDR_SCISSOR_2] = adSCISSOR_2
	adHandlers[ADDR_ALPHA_1] = adALPHA_1
	adHandlers[ADDR_ALPHA_2] = adALPHA_2
	adHandlers[ADDR_DIMX] = adDIMX
	adHandlers[ADDR_DTHE] = adDTHE
	adHandlers[ADDR_COLCLAMP] = adCOLCLAMP
	adHandlers[ADDR_TEST_1] = adTEST_1
	adHandlers[ADDR_TEST_2] = adTEST_2
	adHandlers[ADDR_PABE] = adPABE
	adHandlers[ADDR_FBA_1] = adFBA_1
	adHandlers[ADDR_FBA_2] = adFBA_2
	adHandlers[ADDR_FRAME_1] = adFRAME_1
	adHandlers[ADDR_FRAME_2] = adFRAME_2
	adHandlers[ADDR_ZBUF_1] = adZBUF_1
	adHandlers[ADDR_ZBUF_2] = adZBUF_2
	adHandlers[ADDR_BITBLTBUF] = adBITBLTBUF
	adHandlers[ADDR_TRXPOS] = adTRXPOS
	adHandlers[ADDR_TRXREG] = adTRXREG
	adHandlers[ADDR_TRXDIR] = adTRXDIR
	adHandlers[ADDR_HWREG] = adHWREG
	adHandlers[ADDR_SIGNAL] = adSIGNAL
	adHandlers[ADDR_FINISH] = adFINISH
	adHandlers[ADDR_LABEL] = adLABEL
}

// Direct A+D write
func (gs *GSInterface) WriteRegister(addr RegisterAddr, payload uint64) {
	if uint32(addr) < NumRegisterAddrs {
		adHandlers[addr](gs, payload)
	}
}

// Writes a register only if the value actually changed, raising the
// named dirty bits on delta
func updateInternalRegister[T ~uint64](gs *GSInterface, reg *T, value uint64, flags StateDirtyFlags) {
	if uint64(*reg) != value {
		*reg = T(value)
		gs.stateTracker.dirtyFlags |= flags
	}
}

// Re-selects the cached primitive kick behavior off PRIM
func (gs *GSInterface) updateDrawHandler() {
	gs.drawInfo = primKickTable[gs.registers.Prim.PRIM()]
}

func adNOP(*GSInterface, uint64) {}

func adPRIM(gs *GSInterface, payload uint64) {
	prim := PRIMReg(payload)
	primDelta := gs.registers.Prim.PRIM() != prim.PRIM()

	if gs.registers.Prmodecont.AC() {
		if gs.registers.Prim.CTXT() != prim.CTXT() {
			gs.stateTracker.dirtyFlags |= STATE_DIRTY_DEGENERATE_BIT |
				STATE_DIRTY_PRIM_TEMPLATE_BIT | STATE_DIRTY_TEX_BIT |
				STATE_DIRTY_FB_BIT | STATE_DIRTY_FEEDBACK_BIT
		}

		updateInternalRegister(gs, &gs.registers.Prim, payload,
			STATE_DIRTY_FEEDBACK_BIT|STATE_DIRTY_PRIM_TEMPLATE_BIT|
				STATE_DIRTY_TEX_BIT|STATE_DIRTY_STATE_BIT)

		if !gs.registers.Prim.TME() {
			gs.stateTracker.dirtyFlags &^= STATE_DIRTY_TEX_BIT
		}
	} else {
		gs.registers.Prim = gs.registers.Prim.WithPRIM(prim.PRIM())
	}

	if primDelta {
		gs.updateDrawHandler()
		// The compiled GIF packet shape either ignores PRIM (ADONLY) or
		// was rejected at tag time, so it does not need re-deriving.
	}

	gs.resetVertexQueue()
	gs.registers.InternalQ = 1.0
}

func adRGBAQ(gs *GSInterface, payload uint64) {
	gs.registers.Rgbaq = RGBAQReg(payload)
}

func adST(gs *GSInterface, payload uint64) {
	gs.registers.St = STReg(payload)
}

func adUV(gs *GSInterface, payload uint64) {
	gs.registers.Uv = UVReg(payload)
}

func adFOG(gs *GSInterface, payload uint64) {
	gs.registers.Fog = FOGReg(payload)
}

func adXYZF2(gs *GSInterface, payload uint64) {
	gs.vertexKickXYZF(XYZFReg(payload))
	gs.drawingKick(false)
}

func adXYZ2(gs *GSInterface, payload uint64) {
	gs.vertexKickXYZ(XYZReg(payload))
	gs.drawingKick(false)
}

// XYZF3/XYZ3 update the queue without a draw kick
func adXYZF3(gs *GSInterface, payload uint64) {
	gs.vertexKickXYZF(XYZFReg(payload))
}

func adXYZ3(gs *GSInterface, payload uint64) {
	gs.vertexKickXYZ(XYZReg(payload))
}

func adTEX0_1(gs *GSInterface, payload uint64) {
	updateInternalRegister(gs, &gs.registers.Ctx[0].Tex0, payload,
		STATE_DIRTY_FEEDBACK_BIT|STATE_DIRTY_STATE_BIT|
			STATE_DIRTY_PRIM_TEMPLATE_BIT|STATE_DIRTY_TEX_BIT)
	gs.handleTex0Write(0)
	gs.handleMiptblGen(0)
}

func adTEX0_2(gs *GSInterface, payload uint64) {
	updateInternalRegister(gs, &gs.registers.Ctx[1].Tex0, payload,
		STATE_DIRTY_FEEDBACK_BIT|STATE_DIRTY_STATE_BIT|
			STATE_DIRTY_PRIM_TEMPLATE_BIT|STATE_DIRTY_TEX_BIT)
	gs.handleTex0Write(1)
	gs.handleMiptblGen(1)
}

// TEX2 aliases TEX0 but preserves the sampling geometry fields
func adTEX2(gs *GSInterface, ctxIndex uint32, payload uint64) {
	preserve := gs.registers.Ctx[ctxIndex].Tex0
	tex0 := TEX0Reg(payload).
		WithTBP0(preserve.TBP0()).
		WithTBW(preserve.TBW()).
		WithTW(preserve.TW()).
		WithTH(preserve.TH()).
		WithTCC(preserve.TCC()).
		WithTFX(preserve.TFX())

	if ctxIndex == 0 {
		adTEX0_1(gs, uint64(tex0))
	} else {
		adTEX0_2(gs, uint64(tex0))
	}
}

func adTEX2_1(gs *GSInterface, payload uint64) { adTEX2(gs, 0, payload) }
func adTEX2_2(gs *GSInterface, payload uint64) { adTEX2(gs, 1, payload) }

func adCLAMP_1(gs *GSInterface, payload uint64) {
	updateInternalRegister(gs, &gs.registers.Ctx[0].Clamp, payload,
		STATE_DIRTY_FEEDBACK_BIT|STATE_DIRTY_PRIM_TEMPLATE_BIT|STATE_DIRTY_TEX_BIT)
}

func adCLAMP_2(gs *GSInterface, payload uint64) {
	updateInternalRegister(gs, &gs.registers.Ctx[1].Clamp, payload,
		STATE_DIRTY_FEEDBACK_BIT|STATE_DIRTY_PRIM_TEMPLATE_BIT|STATE_DIRTY_TEX_BIT)
}

func adTEX1_1(gs *GSInterface, payload uint64) {
	updateInternalRegister(gs, &gs.registers.Ctx[0].Tex1, payload,
		STATE_DIRTY_FEEDBACK_BIT|STATE_DIRTY_PRIM_TEMPLATE_BIT|STATE_DIRTY_TEX_BIT)
}

func adTEX1_2(gs *GSInterface, payload uint64) {
	updateInternalRegister(gs, &gs.registers.Ctx[1].Tex1, payload,
		STATE_DIRTY_FEEDBACK_BIT|STATE_DIRTY_PRIM_TEMPLATE_BIT|STATE_DIRTY_TEX_BIT)
}

func adXYOFFSET_1(gs *GSInterface, payload uint64) {
	gs.registers.Ctx[0].XYOffset = XYOFFSETReg(payload)
}

func adXYOFFSET_2(gs *GSInterface, payload uint64) {
	gs.registers.Ctx[1].XYOffset = XYOFFSETReg(payload)
}

func adPRMODECONT(gs *GSInterface, payload uint64) {
	gs.registers.Prmodecont = PRMODECONTReg(payload)
}

// PRMODE rewrites the non-PRIM fields of PRIM when PRMODECONT.AC == 0
func adPRMODE(gs *GSInterface, payload uint64) {
	if gs.registers.Prmodecont.AC() {
		return
	}

	prim := PRIMReg(payload).WithPRIM(gs.registers.Prim.PRIM())

	if gs.registers.Prim.CTXT() != prim.CTXT() {
		gs.stateTracker.dirtyFlags |= STATE_DIRTY_DEGENERATE_BIT |
			STATE_DIRTY_PRIM_TEMPLATE_BIT | STATE_DIRTY_TEX_BIT |
			STATE_DIRTY_FB_BIT | STATE_DIRTY_FEEDBACK_BIT
	}

	updateInternalRegister(gs, &gs.registers.Prim, uint64(prim),
		STATE_DIRTY_FEEDBACK_BIT|STATE_DIRTY_PRIM_TEMPLATE_BIT|
			STATE_DIRTY_TEX_BIT|STATE_DIRTY_STATE_BIT)

	if !gs.registers.Prim.TME() {
		gs.stateTracker.dirtyFlags &^= STATE_DIRTY_TEX_BIT
	}
}

func adTEXCLUT(gs *GSInterface, payload uint64) {
	gs.registers.Texclut = TEXCLUTReg(payload)
}

func adSCANMSK(gs *GSInterface, payload uint64) {
	updateInternalRegister(gs, &gs.registers.Scanmsk, payload, STATE_DIRTY_PRIM_TEMPLATE_BIT)
}

func adMIPTBP1_1(gs *GSInterface, payload uint64) {
	updateInternalRegister(gs, &gs.registers.Ctx[0].MipTbl13, payload,
		STATE_DIRTY_PRIM_TEMPLATE_BIT|STATE_DIRTY_TEX_BIT)
}

func adMIPTBP1_2(gs *GSInterface, payload uint64) {
	updateInternalRegister(gs, &gs.registers.Ctx[1].MipTbl13, payload,
		STATE_DIRTY_PRIM_TEMPLATE_BIT|STATE_DIRTY_TEX_BIT)
}

func adMIPTBP2_1(gs *GSInterface, payload uint64) {
	updateInternalRegister(gs, &gs.registers.Ctx[0].MipTbl46, payload,
		STATE_DIRTY_PRIM_TEMPLATE_BIT|STATE_DIRTY_TEX_BIT)
}

func adMIPTBP2_2(gs *GSInterface, payload uint64) {
	updateInternalRegister(gs, &gs.registers.Ctx[1].MipTbl46, payload,
		STATE_DIRTY_PRIM_TEMPLATE_BIT|STATE_DIRTY_TEX_BIT)
}

func adTEXA(gs *GSInterface, payload uint64) {
	updateInternalRegister(gs, &gs.registers.Texa, payload,
		STATE_DIRTY_PRIM_TEMPLATE_BIT|STATE_DIRTY_TEX_BIT)
}

func adFOGCOL(gs *GSInterface, payload uint64) {
	gs.registers.Fogcol = FOGCOLReg(payload)
}

func adTEXFLUSH(gs *GSInterface, payload uint64) {
	// TEXFLUSH cannot be relied on; our own tracking covers it
}

func adSCISSOR_1(gs *GSInterface, payload uint64) {
	updateInternalRegister(gs, &gs.registers.Ctx[0].Scissor, payload, STATE_DIRTY_DEGENERATE_BIT)
}

func adSCISSOR_2(gs *GSInterface, payload uint64) {
	updateInternalRegister(gs, &gs.registers.Ctx[1].Scissor, payload, STATE_DIRTY_DEGENERATE_BIT)
}

func adALPHA_1(gs *GSInterface, payload uint64) {
	updateInternalRegister(gs, &gs.registers.Ctx[0].Alpha, payload,
		STATE_DIRTY_STATE_BIT|STATE_DIRTY_PRIM_TEMPLATE_BIT)
}

func adALPHA_2(gs *GSInterface, payload uint64) {
	updateInternalRegister(gs, &gs.registers.Ctx[1].Alpha, payload,
		STATE_DIRTY_STATE_BIT|STATE_DIRTY_PRIM_TEMPLATE_BIT)
}

func adDIMX(gs *GSInterface, payload uint64) {
	updateInternalRegister(gs, &gs.registers.Dimx, payload,
		STATE_DIRTY_STATE_BIT|STATE_DIRTY_PRIM_TEMPLATE_BIT)
}

func adDTHE(gs *GSInterface, payload uint64) {
	updateInternalRegister(gs, &gs.registers.Dthe, payload,
		STATE_DIRTY_STATE_BIT|STATE_DIRTY_PRIM_TEMPLATE_BIT)
}

func adCOLCLAMP(gs *GSInterface, payload uint64) {
	updateInternalRegister(gs, &gs.registers.Colclamp, payload,
		STATE_DIRTY_STATE_BIT|STATE_DIRTY_PRIM_TEMPLATE_BIT)
}

func adTEST_1(gs *GSInterface, payload uint64) {
	updateInternalRegister(gs, &gs.registers.Ctx[0].Test, payload,
		STATE_DIRTY_DEGENERATE_BIT|STATE_DIRTY_STATE_BIT|STATE_DIRTY_PRIM_TEMPLATE_BIT)
}

func adTEST_2(gs *GSInterface, payload uint64) {
	updateInternalRegister(gs, &gs.registers.Ctx[1].Test, payload,
		STATE_DIRTY_DEGENERATE_BIT|STATE_DIRTY_STATE_BIT|STATE_DIRTY_PRIM_TEMPLATE_BIT)
}

func adPABE(gs *GSInterface, payload uint64) {
	updateInternalRegister(gs, &gs.registers.Pabe, payload,
		STATE_DIRTY_STATE_BIT|STATE_DIRTY_PRIM_TEMPLATE_BIT)
}

func adFBA_1(gs *GSInterface, payload uint64) {
	updateInternalRegister(gs, &gs.registers.Ctx[0].Fba, payload,
		STATE_DIRTY_STATE_BIT|STATE_DIRTY_PRIM_TEMPLATE_BIT)
}

func adFBA_2(gs *GSInterface, payload uint64) {
	updateInternalRegister(gs, &gs.registers.Ctx[1].Fba, payload,
		STATE_DIRTY_STATE_BIT|STATE_DIRTY_PRIM_TEMPLATE_BIT)
}

func adFRAME_1(gs *GSInterface, payload uint64) {
	updateInternalRegister(gs, &gs.registers.Ctx[0].Frame, payload,
		STATE_DIRTY_DEGENERATE_BIT|STATE_DIRTY_FEEDBACK_BIT|
			STATE_DIRTY_FB_BIT|STATE_DIRTY_PRIM_TEMPLATE_BIT)
}

func adFRAME_2(gs *GSInterface, payload uint64) {
	updateInternalRegister(gs, &gs.registers.Ctx[1].Frame, payload,
		STATE_DIRTY_DEGENERATE_BIT|STATE_DIRTY_FEEDBACK_BIT|
			STATE_DIRTY_FB_BIT|STATE_DIRTY_PRIM_TEMPLATE_BIT)
}

func adZBUF_1(gs *GSInterface, payload uint64) {
	updateInternalRegister(gs, &gs.registers.Ctx[0].Zbuf, payload,
		STATE_DIRTY_FEEDBACK_BIT|STATE_DIRTY_DEGENERATE_BIT|
			STATE_DIRTY_FB_BIT|STATE_DIRTY_PRIM_TEMPLATE_BIT)
}

func adZBUF_2(gs *GSInterface, payload uint64) {
	updateInternalRegister(gs, &gs.registers.Ctx[1].Zbuf, payload,
		STATE_DIRTY_FEEDBACK_BIT|STATE_DIRTY_DEGENERATE_BIT|
			STATE_DIRTY_FB_BIT|STATE_DIRTY_PRIM_TEMPLATE_BIT)
}

func adBITBLTBUF(gs *GSInterface, payload uint64) {
	gs.registers.Bitbltbuf = BITBLTBUFReg(payload)
}

func adTRXPOS(gs *GSInterface, payload uint64) {
	gs.registers.Trxpos = TRXPOSReg(payload)
}

func adTRXREG(gs *GSInterface, payload uint64) {
	gs.registers.Trxreg = TRXREGReg(payload)
}

func adTRXDIR(gs *GSInterface, payload uint64) {
	gs.registers.Trxdir = TRXDIRReg(payload)
	gs.initTransfer()
}

func adHWREG(gs *GSInterface, payload uint64) {
	gs.hwregWrite(payload)
}

// For debugging
func adSIGNAL(*GSInterface, uint64) {}
func adFINISH(*GSInterface, uint64) {}
func adLABEL(*GSInterface, uint64)  {}
