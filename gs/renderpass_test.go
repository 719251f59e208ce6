package gs

import (
	"math"
	"testing"
)

func kickTriangle(core *GSInterface, x0, y0, x1, y1, x2, y2 uint32) {
	core.WriteRegister(ADDR_XYZ2, xyzWord(x0, y0, 1))
	core.WriteRegister(ADDR_XYZ2, xyzWord(x1, y1, 1))
	core.WriteRegister(ADDR_XYZ2, xyzWord(x2, y2, 1))
}

func TestSingleOpaqueTriangle(t *testing.T) {
	assert := func(v bool) {
		if !v {
			t.Error("assert failed")
		}
	}

	core, renderer := newTestCore(t)
	setupFrame(core)
	core.WriteRegister(ADDR_PRIM, uint64(PRIM_TRIANGLE_LIST))

	kickTriangle(core, 0, 0, 640<<4, 0, 0, 448<<4)
	assert(core.renderPass.primitiveCount == 1)

	core.FlushAll()

	assert(len(renderer.flushedPasses) == 1)
	rp := renderer.flushedPasses[0]
	assert(len(rp.Prims) == 1)
	assert(len(rp.States) == 1)
	assert(len(rp.Textures) == 0)
	assert(rp.Prims[0].BB == [4]int16{0, 0, 639, 447})
	assert(rp.BaseX == 0 && rp.BaseY == 0)
	assert(rp.Reason == FLUSH_REASON_SUBMISSION)

	// Post-flush invariants
	assert(core.renderPass.primitiveCount == 0)
	assert(len(core.renderPass.stateVectors) == 0)
	assert(len(core.renderPass.texInfos) == 0)
	assert(core.renderPass.bb == [4]int32{math.MaxInt32, math.MaxInt32, math.MinInt32, math.MinInt32})
	assert(core.stateTracker.dirtyFlags == STATE_DIRTY_ALL_BITS)
}

func TestStateVectorDeduplication(t *testing.T) {
	assert := func(v bool) {
		if !v {
			t.Error("assert failed")
		}
	}

	core, renderer := newTestCore(t)
	setupFrame(core)
	core.WriteRegister(ADDR_PRIM, uint64(PRIM_TRIANGLE_LIST))

	kickTriangle(core, 0, 0, 64<<4, 0, 0, 64<<4)
	kickTriangle(core, 64<<4, 64<<4, 128<<4, 64<<4, 64<<4, 128<<4)
	core.FlushAll()

	rp := renderer.flushedPasses[0]
	assert(len(rp.Prims) == 2)
	assert(len(rp.States) == 1)
	// The dedup map always agrees with the sequence
	for _, index := range core.renderPass.stateVectorMap {
		assert(index < uint32(len(core.renderPass.stateVectors)))
	}
}

func TestClutMemoization(t *testing.T) {
	assert := func(v bool) {
		if !v {
			t.Error("assert failed")
		}
	}

	core, renderer := newTestCore(t)

	tex0 := tex0Word(0, 4, PSMT8, 6, 6) |
		uint64(0x200)<<37 | uint64(PSMCT32)<<51 | uint64(CLD_LOAD)<<61

	core.WriteRegister(ADDR_TEX0_1, tex0)
	assert(len(renderer.paletteUploads) == 1)
	assert(core.renderPass.pendingPaletteUpdates == 1)
	assert(core.renderPass.numMemoizedPalettes == 1)

	// Identical upload memoizes; the renderer is not called again
	core.WriteRegister(ADDR_TEX0_1, tex0)
	assert(len(renderer.paletteUploads) == 1)
	assert(core.renderPass.pendingPaletteUpdates == 1)
	assert(core.renderPass.numMemoizedPalettes == 1)

	// A different CBP is a different upload
	core.WriteRegister(ADDR_TEX0_1, tex0Word(0, 4, PSMT8, 6, 6)|
		uint64(0x300)<<37|uint64(PSMCT32)<<51|uint64(CLD_LOAD)<<61)
	assert(len(renderer.paletteUploads) == 2)
	assert(core.renderPass.numMemoizedPalettes == 2)
}

func TestClutCompareLoadModes(t *testing.T) {
	assert := func(v bool) {
		if !v {
			t.Error("assert failed")
		}
	}

	core, renderer := newTestCore(t)

	tex0 := tex0Word(0, 4, PSMT4, 6, 6) |
		uint64(0x200)<<37 | uint64(PSMCT32)<<51 | uint64(CLD_COMPARE_LOAD_CBP0)<<61

	// First compare sees a stale cached CBP and loads
	core.WriteRegister(ADDR_TEX0_1, tex0)
	assert(len(renderer.paletteUploads) == 1)
	assert(core.registers.CachedCBP[0] == 0x200)

	// Matching CBP now: no load. TCC is set so the TEX0 payload itself
	// differs.
	core.WriteRegister(ADDR_TEX0_1, tex0|1<<34)
	assert(len(renderer.paletteUploads) == 1)
}

func TestPixelFeedbackLoop(t *testing.T) {
	assert := func(v bool) {
		if !v {
			t.Error("assert failed")
		}
	}

	core, renderer := newTestCore(t)
	setupFrame(core)

	// Texture binds the live framebuffer: TBP0=FBP*32, TBW=FBW, 1024x512
	// covers the 640x448 FB
	core.WriteRegister(ADDR_TEX0_1, tex0Word(0, 10, PSMCT32, 10, 9))
	core.WriteRegister(ADDR_PRIM, uint64(PRIM_SPRITE)|1<<4|1<<8) // TME | FST

	core.WriteRegister(ADDR_UV, uvWord(0, 0))
	core.WriteRegister(ADDR_XYZ2, xyzWord(0, 0, 1))
	core.WriteRegister(ADDR_UV, uvWord(640<<4, 448<<4))
	core.WriteRegister(ADDR_XYZ2, xyzWord(640<<4, 448<<4, 1))

	assert(core.renderPass.isColorFeedback)
	assert(core.renderPass.hasColorFeedback)
	assert(core.renderPass.primitiveCount == 1)

	// The texture index carries the feedback sentinel, and nothing was
	// synthesized or registered for it
	texIndex := core.renderPass.prim[0].Tex >> TEX_TEXTURE_INDEX_OFFSET &
		(1<<TEX_TEXTURE_INDEX_BITS - 1)
	assert(texIndex&(1<<(TEX_TEXTURE_INDEX_BITS-1)) != 0)
	assert(renderer.createdTextures == 0)
	assert(len(core.renderPass.texInfos) == 0)

	core.FlushAll()
	rp := renderer.flushedPasses[0]
	assert(rp.FeedbackTexture)
	assert(rp.FeedbackTexturePSM == PSMCT32)
}

func TestFramebufferChangeFlushesMidPass(t *testing.T) {
	assert := func(v bool) {
		if !v {
			t.Error("assert failed")
		}
	}

	core, renderer := newTestCore(t)
	setupFrame(core)
	core.WriteRegister(ADDR_PRIM, uint64(PRIM_TRIANGLE_LIST))

	kickTriangle(core, 0, 0, 64<<4, 0, 0, 64<<4)
	kickTriangle(core, 0, 0, 32<<4, 0, 0, 32<<4)
	assert(core.renderPass.primitiveCount == 2)

	core.WriteRegister(ADDR_FRAME_1, frameWord(0x100, 10, PSMCT32, 0))
	kickTriangle(core, 0, 0, 64<<4, 0, 0, 64<<4)

	// The pass flushed between the second and third draws
	assert(len(renderer.flushedPasses) == 1)
	assert(renderer.flushedPasses[0].Reason == FLUSH_REASON_FB_POINTER)
	assert(len(renderer.flushedPasses[0].Prims) == 2)
	assert(core.renderPass.primitiveCount == 1)
	assert(core.renderPass.frame.FBP() == 0x100)
}

func TestZbufChangeOnlyFlushesWhenZSensitive(t *testing.T) {
	assert := func(v bool) {
		if !v {
			t.Error("assert failed")
		}
	}

	core, renderer := newTestCore(t)
	setupFrame(core)
	core.WriteRegister(ADDR_PRIM, uint64(PRIM_TRIANGLE_LIST))

	// Z ignored: ZBUF can move freely
	kickTriangle(core, 0, 0, 64<<4, 0, 0, 64<<4)
	core.WriteRegister(ADDR_ZBUF_1, zbufWord(0x180, PSMZ32, 0))
	kickTriangle(core, 0, 0, 64<<4, 0, 0, 64<<4)
	assert(len(renderer.flushedPasses) == 0)

	// Enable depth: the pass becomes Z sensitive, the next ZBUF move flushes
	core.WriteRegister(ADDR_TEST_1, testWord(ZTE_ENABLED, ZTST_GEQUAL))
	kickTriangle(core, 0, 0, 64<<4, 0, 0, 64<<4)
	core.WriteRegister(ADDR_ZBUF_1, zbufWord(0x1c0, PSMZ32, 0))
	kickTriangle(core, 0, 0, 64<<4, 0, 0, 64<<4)
	assert(len(renderer.flushedPasses) == 1)
	assert(renderer.flushedPasses[0].Reason == FLUSH_REASON_FB_POINTER)
	assert(renderer.flushedPasses[0].ZSensitive)
}

func TestOverflowFlush(t *testing.T) {
	assert := func(v bool) {
		if !v {
			t.Error("assert failed")
		}
	}

	core, renderer := newTestCore(t)
	setupFrame(core)
	core.WriteRegister(ADDR_PRIM, uint64(PRIM_SPRITE))

	for i := uint32(0); i < MaxPrimitivesPerFlush; i++ {
		core.WriteRegister(ADDR_XYZ2, xyzWord(0, 0, 1))
		core.WriteRegister(ADDR_XYZ2, xyzWord(64<<4, 64<<4, 1))
	}

	// The flush fired right after the last append
	assert(len(renderer.flushedPasses) == 1)
	assert(renderer.flushedPasses[0].Reason == FLUSH_REASON_OVERFLOW)
	assert(len(renderer.flushedPasses[0].Prims) == MaxPrimitivesPerFlush)
	assert(core.renderPass.primitiveCount == 0)
}

func TestDegenerateDraws(t *testing.T) {
	assert := func(v bool) {
		if !v {
			t.Error("assert failed")
		}
	}

	core, _ := newTestCore(t)
	core.WriteRegister(ADDR_FRAME_1, frameWord(0, 10, PSMCT32, 0))
	core.WriteRegister(ADDR_PRIM, uint64(PRIM_TRIANGLE_LIST))

	// Inverted scissor
	core.WriteRegister(ADDR_SCISSOR_1, scissorWord(100, 50, 0, 447))
	kickTriangle(core, 0, 0, 64<<4, 0, 0, 64<<4)
	assert(core.renderPass.primitiveCount == 0)

	// ZTE enabled with ZTST never
	core.WriteRegister(ADDR_SCISSOR_1, scissorWord(0, 639, 0, 447))
	core.WriteRegister(ADDR_TEST_1, testWord(ZTE_ENABLED, ZTST_NEVER))
	kickTriangle(core, 0, 0, 64<<4, 0, 0, 64<<4)
	assert(core.renderPass.primitiveCount == 0)

	// Both masked off: no observable effect
	core.WriteRegister(ADDR_TEST_1, 0)
	core.WriteRegister(ADDR_FRAME_1, frameWord(0, 10, PSMCT32, 0xffffffff))
	core.WriteRegister(ADDR_ZBUF_1, zbufWord(0x180, PSMZ32, 1))
	kickTriangle(core, 0, 0, 64<<4, 0, 0, 64<<4)
	assert(core.renderPass.primitiveCount == 0)

	// Restoring a writable FB draws again
	core.WriteRegister(ADDR_FRAME_1, frameWord(0, 10, PSMCT32, 0))
	kickTriangle(core, 0, 0, 64<<4, 0, 0, 64<<4)
	assert(core.renderPass.primitiveCount == 1)
}

func TestTextureDeduplication(t *testing.T) {
	assert := func(v bool) {
		if !v {
			t.Error("assert failed")
		}
	}

	core, renderer := newTestCore(t)
	setupFrame(core)

	// A texture far away from the FB, sampled twice
	core.WriteRegister(ADDR_TEX0_1, tex0Word(0x2000, 1, PSMCT32, 6, 6))
	core.WriteRegister(ADDR_PRIM, uint64(PRIM_SPRITE)|1<<4|1<<8)

	drawSprite := func() {
		core.WriteRegister(ADDR_UV, uvWord(0, 0))
		core.WriteRegister(ADDR_XYZ2, xyzWord(0, 0, 1))
		core.WriteRegister(ADDR_UV, uvWord(64<<4, 64<<4))
		core.WriteRegister(ADDR_XYZ2, xyzWord(64<<4, 64<<4, 1))
	}

	drawSprite()
	drawSprite()

	assert(core.renderPass.primitiveCount == 2)
	assert(renderer.createdTextures == 1)
	assert(len(core.renderPass.texInfos) == 1)

	// Both draws reference the same texture slot
	assert(core.renderPass.prim[0].Tex == core.renderPass.prim[1].Tex)

	for _, entry := range core.renderPass.textureMap {
		assert(entry.index < uint32(len(core.renderPass.texInfos)))
	}
}
