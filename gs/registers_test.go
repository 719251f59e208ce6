package gs

import "testing"

func TestRegisterWriteIdempotence(t *testing.T) {
	assert := func(v bool) {
		if !v {
			t.Error("assert failed")
		}
	}

	core, _ := newTestCore(t)

	payload := testWord(ZTE_ENABLED, ZTST_GEQUAL)
	core.stateTracker.dirtyFlags = 0
	core.WriteRegister(ADDR_TEST_1, payload)
	assert(core.stateTracker.dirtyFlags != 0)

	// The same payload again raises no new dirty bits
	core.stateTracker.dirtyFlags = 0
	core.WriteRegister(ADDR_TEST_1, payload)
	assert(core.stateTracker.dirtyFlags == 0)

	// A different payload dirties again
	core.WriteRegister(ADDR_TEST_1, testWord(ZTE_ENABLED, ZTST_GREATER))
	assert(core.stateTracker.dirtyFlags != 0)
}

func TestTex0BitfieldDecode(t *testing.T) {
	assert := func(v bool) {
		if !v {
			t.Error("assert failed")
		}
	}

	tex0 := TEX0Reg(tex0Word(0x1234, 10, PSMT8, 8, 7) |
		uint64(0x100)<<37 | uint64(PSMCT16)<<51 | 1<<55 | 12<<56 | uint64(CLD_LOAD)<<61)

	assert(tex0.TBP0() == 0x1234)
	assert(tex0.TBW() == 10)
	assert(tex0.PSM() == PSMT8)
	assert(tex0.TW() == 8)
	assert(tex0.TH() == 7)
	assert(tex0.CBP() == 0x100)
	assert(tex0.CPSM() == PSMCT16)
	assert(tex0.CSM() == CSM_LAYOUT_LINE)
	assert(tex0.CSA() == 12)
	assert(tex0.CLD() == CLD_LOAD)
}

func TestFrameAndZbufDecode(t *testing.T) {
	assert := func(v bool) {
		if !v {
			t.Error("assert failed")
		}
	}

	frame := FRAMEReg(frameWord(0x80, 10, PSMCT24, 0xff00ff00))
	assert(frame.FBP() == 0x80)
	assert(frame.FBW() == 10)
	assert(frame.PSM() == PSMCT24)
	assert(frame.FBMSK() == 0xff00ff00)
	assert(frame.Word0() == uint32(frameWord(0x80, 10, PSMCT24, 0)))

	zbuf := ZBUFReg(zbufWord(0x40, PSMZ16S, 1))
	assert(zbuf.ZBP() == 0x40)
	assert(zbuf.PSM() == PSMZ16S)
	assert(zbuf.ZMSK())
}

func TestTex2PreservesSamplingGeometry(t *testing.T) {
	assert := func(v bool) {
		if !v {
			t.Error("assert failed")
		}
	}

	core, _ := newTestCore(t)

	core.WriteRegister(ADDR_TEX0_1, tex0Word(0x500, 8, PSMCT32, 9, 8)|1<<34|2<<35)
	// TEX2 carries a new palette setup but must not disturb geometry
	core.WriteRegister(ADDR_TEX2_1, tex0Word(0x999, 1, PSMT8, 2, 3)|uint64(0x77)<<37)

	tex0 := core.registers.Ctx[0].Tex0
	assert(tex0.TBP0() == 0x500)
	assert(tex0.TBW() == 8)
	assert(tex0.TW() == 9)
	assert(tex0.TH() == 8)
	assert(tex0.TCC() == 1)
	assert(tex0.TFX() == 2)
	// Palette fields did update
	assert(tex0.PSM() == PSMT8)
	assert(tex0.CBP() == 0x77)
}

func TestPRMODEAliasing(t *testing.T) {
	assert := func(v bool) {
		if !v {
			t.Error("assert failed")
		}
	}

	core, _ := newTestCore(t)

	// AC defaults to 1: PRMODE writes are ignored
	core.WriteRegister(ADDR_PRIM, uint64(PRIM_TRIANGLE_LIST)|1<<4)
	core.WriteRegister(ADDR_PRMODE, 1<<6)
	assert(core.registers.Prim.TME())
	assert(!core.registers.Prim.ABE())

	// With AC == 0, PRMODE rewrites everything but the PRIM type
	core.WriteRegister(ADDR_PRMODECONT, 0)
	core.WriteRegister(ADDR_PRMODE, 1<<6|1<<9)
	assert(core.registers.Prim.PRIM() == PRIM_TRIANGLE_LIST)
	assert(core.registers.Prim.ABE())
	assert(core.registers.Prim.CTXT() == 1)
	assert(!core.registers.Prim.TME())

	// And PRIM writes only change the type
	core.WriteRegister(ADDR_PRIM, uint64(PRIM_SPRITE)|1<<4)
	assert(core.registers.Prim.PRIM() == PRIM_SPRITE)
	assert(!core.registers.Prim.TME())
}

func TestPrimWriteResetsVertexQueue(t *testing.T) {
	assert := func(v bool) {
		if !v {
			t.Error("assert failed")
		}
	}

	core, _ := newTestCore(t)

	core.WriteRegister(ADDR_PRIM, uint64(PRIM_TRIANGLE_LIST))
	core.WriteRegister(ADDR_XYZ3, xyzWord(0, 0, 0))
	core.WriteRegister(ADDR_XYZ3, xyzWord(16, 0, 0))
	assert(core.vertexQueue.count == 2)

	core.registers.InternalQ = 5.0
	core.WriteRegister(ADDR_PRIM, uint64(PRIM_LINE_LIST))
	assert(core.vertexQueue.count == 0)
	assert(core.registers.InternalQ == 1.0)
}

func TestMiptblAutoGeneration(t *testing.T) {
	assert := func(v bool) {
		if !v {
			t.Error("assert failed")
		}
	}

	core, _ := newTestCore(t)

	// MTBA set: writing TEX0 derives the mip chain from TBP0
	core.WriteRegister(ADDR_TEX1_1, 1<<9|uint64(TEX_NEAREST_MIPMAP_NEAREST)<<6|3<<2)
	core.WriteRegister(ADDR_TEX0_1, tex0Word(0, 4, PSMCT32, 8, 8))

	mip := core.registers.Ctx[0].MipTbl13
	// 256x256 CT32 is 32x32 blocks
	assert(mip.TBP1() == 1024)
	assert(mip.TBW1() == 2)
	assert(mip.TBP2() == 1024+256)
	assert(mip.TBW2() == 1)
	assert(mip.TBP3() == 1024+256+64)
	assert(mip.TBW3() == 1)
}
