package gs

import "testing"

func TestPartialTransferFlushedByPaletteRead(t *testing.T) {
	assert := func(v bool) {
		if !v {
			t.Error("assert failed")
		}
	}

	core, renderer := newTestCore(t)

	// 64x32 PSMCT32 HOST->LOCAL wants 1024 64-bit words
	core.WriteRegister(ADDR_BITBLTBUF, uint64(0x400)<<32|uint64(1)<<48)
	core.WriteRegister(ADDR_TRXREG, 64|32<<32)
	core.WriteRegister(ADDR_TRXDIR, HOST_TO_LOCAL)
	assert(core.transferState.requiredQwords == 1024)

	// Half the payload arrives
	for i := 0; i < 512; i++ {
		core.WriteRegister(ADDR_HWREG, uint64(i))
	}
	assert(len(renderer.copies) == 0)

	// A CLUT load depends on VRAM: the partial transfer flushes early
	core.WriteRegister(ADDR_TEX0_1, tex0Word(0, 4, PSMT8, 6, 6)|
		uint64(0x400)<<37|uint64(PSMCT32)<<51|uint64(CLD_LOAD)<<61)

	assert(len(renderer.copies) == 1)
	assert(renderer.copies[0].HostDataSizeOffset == 0)
	assert(len(renderer.copies[0].HostData) == 512)
	// Still alive: the stream may continue
	assert(core.transferState.hostToLocalActive)
	assert(core.transferState.lastFlushedQwords == 512)

	// The rest arrives; the re-emit starts where the flush left off
	for i := 512; i < 1024; i++ {
		core.WriteRegister(ADDR_HWREG, uint64(i))
	}
	assert(len(renderer.copies) == 2)
	assert(renderer.copies[1].HostDataSizeOffset == 512*8)
	assert(len(renderer.copies[1].HostData) == 1024)
	assert(!core.transferState.hostToLocalActive)
}

func TestLocalToLocalTransfer(t *testing.T) {
	assert := func(v bool) {
		if !v {
			t.Error("assert failed")
		}
	}

	core, renderer := newTestCore(t)

	// src at block 0, dst at block 0x800
	core.WriteRegister(ADDR_BITBLTBUF, uint64(1)<<16|uint64(0x800)<<32|uint64(1)<<48)
	core.WriteRegister(ADDR_TRXREG, 64|32<<32)
	core.WriteRegister(ADDR_TRXDIR, LOCAL_TO_LOCAL)

	assert(len(renderer.copies) == 1)
	assert(renderer.copies[0].HostData == nil)

	// A texture read of the copy destination forces a cache flush
	core.WriteRegister(ADDR_TEX0_1, tex0Word(0x800, 1, PSMCT32, 6, 5))
	core.WriteRegister(ADDR_PRIM, uint64(PRIM_SPRITE)|1<<4|1<<8)
	setupFrame(core)
	core.WriteRegister(ADDR_UV, uvWord(0, 0))
	core.WriteRegister(ADDR_XYZ2, xyzWord(0, 0, 1))
	core.WriteRegister(ADDR_UV, uvWord(64<<4, 32<<4))
	core.WriteRegister(ADDR_XYZ2, xyzWord(64<<4, 32<<4, 1))

	assert(renderer.cacheUploads >= 1)
}

func TestLocalToHostQueuesReadback(t *testing.T) {
	assert := func(v bool) {
		if !v {
			t.Error("assert failed")
		}
	}

	core, renderer := newTestCore(t)

	core.WriteRegister(ADDR_BITBLTBUF, 0x100|uint64(1)<<16)
	core.WriteRegister(ADDR_TRXREG, 64|32<<32)
	core.WriteRegister(ADDR_TRXDIR, LOCAL_TO_HOST)

	// Mapping the pages for reading submits and waits on the timeline
	data := core.MapVRAMRead(0x100/BlocksPerPage*PageSize, PageSize)
	assert(data != nil)
	assert(len(renderer.submits) == 1)
	assert(len(renderer.waits) == 1)
	assert(renderer.waits[0] == renderer.submits[0])
	assert(renderer.readbacks == 1)
}

func TestMapVRAMWriteTimelines(t *testing.T) {
	assert := func(v bool) {
		if !v {
			t.Error("assert failed")
		}
	}

	core, renderer := newTestCore(t)

	// Nothing pending: no submit needed, wait on timeline zero
	data := core.MapVRAMWrite(0, PageSize)
	assert(data != nil)
	assert(len(data) == PageSize)
	assert(len(renderer.submits) == 0)
	assert(len(renderer.waits) == 1 && renderer.waits[0] == 0)
	core.EndVRAMWrite(0, PageSize)

	// Committed host writes are queued for GPU upload on the next flush
	core.FlushAll()
	assert(renderer.hostVRAMCopies == 1)

	// Draw over page 0, then map it again: now a submit is forced
	setupFrame(core)
	core.WriteRegister(ADDR_PRIM, uint64(PRIM_TRIANGLE_LIST))
	kickTriangle(core, 0, 0, 64<<4, 0, 0, 64<<4)

	core.MapVRAMWrite(0, PageSize)
	assert(len(renderer.submits) >= 1)
	last := renderer.waits[len(renderer.waits)-1]
	assert(last == renderer.submits[len(renderer.submits)-1])
	assert(len(renderer.flushedPasses) == 1)
}

func TestHeadlessRendererRoundTrip(t *testing.T) {
	assert := func(v bool) {
		if !v {
			t.Error("assert failed")
		}
	}

	renderer := NewHeadlessRenderer()
	core := NewGSInterface(renderer)
	if !core.Init(&GSOptions{VRAMSize: 4 * 1024 * 1024}) {
		t.Fatal("init failed")
	}

	// Stream 16 words into VRAM at block 4 and read them back
	core.WriteRegister(ADDR_BITBLTBUF, uint64(4)<<32|uint64(1)<<48)
	core.WriteRegister(ADDR_TRXREG, 16|2<<32)
	core.WriteRegister(ADDR_TRXDIR, HOST_TO_LOCAL)
	for i := 0; i < 16; i++ {
		core.WriteRegister(ADDR_HWREG, 0x1111111111111111*uint64(i&0xf))
	}

	data := core.MapVRAMRead(4*BlockSize, 16*8)
	assert(data != nil)
	assert(data[8] == 0x11)

	stats := core.ConsumeFlushStats()
	assert(stats.Copies == 1)
}
