package gs

import (
	"encoding/binary"
	"testing"
)

func giftag(nloop, flg, nreg uint32, regs uint64, pre bool, prim uint32) qword {
	lo := uint64(nloop) | 1<<15 | uint64(prim)<<47 | uint64(flg)<<58 | uint64(nreg)<<60
	if pre {
		lo |= 1 << 46
	}
	return qword{lo: lo, hi: regs}
}

func qwordsToBytes(qwords ...qword) []byte {
	out := make([]byte, 16*len(qwords))
	for i, q := range qwords {
		binary.LittleEndian.PutUint64(out[16*i:], q.lo)
		binary.LittleEndian.PutUint64(out[16*i+8:], q.hi)
	}
	return out
}

func adQword(addr RegisterAddr, payload uint64) qword {
	return qword{lo: payload, hi: uint64(addr)}
}

func setupFrame(core *GSInterface) {
	core.WriteRegister(ADDR_FRAME_1, frameWord(0, 10, PSMCT32, 0))
	core.WriteRegister(ADDR_SCISSOR_1, scissorWord(0, 639, 0, 447))
}

func TestPackedADWrites(t *testing.T) {
	assert := func(v bool) {
		if !v {
			t.Error("assert failed")
		}
	}

	core, _ := newTestCore(t)

	packet := qwordsToBytes(
		giftag(2, GIF_FLG_PACKED, 1, uint64(GIF_ADDR_A_D), false, 0),
		adQword(ADDR_FOGCOL, 0x123456),
		adQword(ADDR_TEXA, 0x80),
	)
	core.GIFTransfer(0, packet)

	assert(uint64(core.registers.Fogcol) == 0x123456)
	assert(core.registers.Texa.TA0() == 0x80)
}

func TestADOnlyFastPathSelected(t *testing.T) {
	assert := func(v bool) {
		if !v {
			t.Error("assert failed")
		}
	}

	core, _ := newTestCore(t)

	// Tag only; the registers follow in a later transfer
	core.GIFTransfer(1, qwordsToBytes(
		giftag(4, GIF_FLG_PACKED, 2, 0xee, false, 0)))
	assert(core.paths[1].shape == SHAPE_AD_ONLY)

	core.GIFTransfer(1, qwordsToBytes(
		adQword(ADDR_FOGCOL, 0xff),
		adQword(ADDR_TEXA, 0x42),
	))
	assert(uint64(core.registers.Fogcol) == 0xff)
	assert(core.registers.Texa.TA0() == 0x42)
	assert(core.paths[1].Loop == 1)
}

func TestSTQRGBAXYZFastPath(t *testing.T) {
	assert := func(v bool) {
		if !v {
			t.Error("assert failed")
		}
	}

	core, renderer := newTestCore(t)
	setupFrame(core)

	regs := packedRegsMask(GIF_ADDR_ST, GIF_ADDR_RGBAQ, GIF_ADDR_XYZ2)
	tag := giftag(3, GIF_FLG_PACKED, 3, regs, true, uint32(PRIM_TRIANGLE_LIST))

	st := func(s, q float32) qword {
		return qword{lo: uint64(f32Bits(s)), hi: uint64(f32Bits(q))}
	}
	rgba := func(r, g, b, a uint32) qword {
		return qword{lo: uint64(r) | uint64(g)<<32, hi: uint64(b) | uint64(a)<<32}
	}
	xyz := func(x, y, z uint32) qword {
		return qword{lo: uint64(x) | uint64(y)<<32, hi: uint64(z)}
	}

	core.GIFTransfer(0, qwordsToBytes(
		tag,
		st(0, 1), rgba(255, 0, 0, 128), xyz(0, 0, 1),
		st(0, 1), rgba(0, 255, 0, 128), xyz(640<<4, 0, 1),
		st(1, 1), rgba(0, 0, 255, 128), xyz(0, 448<<4, 1),
	))

	assert(core.paths[0].shape == SHAPE_STQ_RGBA_XYZ)
	assert(core.renderPass.primitiveCount == 1)

	core.FlushAll()
	assert(len(renderer.flushedPasses) == 1)
	rp := renderer.flushedPasses[0]
	assert(len(rp.Prims) == 1)
	assert(len(rp.States) == 1)
	assert(len(rp.Textures) == 0)
}

func TestReglistFormat(t *testing.T) {
	assert := func(v bool) {
		if !v {
			t.Error("assert failed")
		}
	}

	core, _ := newTestCore(t)

	// Two registers per loop: RGBAQ then UV in one quadword
	regs := packedRegsMask(GIF_ADDR_RGBAQ, GIF_ADDR_UV)
	core.GIFTransfer(0, qwordsToBytes(
		giftag(1, GIF_FLG_REGLIST, 2, regs, false, 0),
		qword{lo: 0x80402010, hi: uvWord(5<<4, 6<<4)},
	))

	assert(core.registers.Rgbaq.R() == 0x10)
	assert(core.registers.Rgbaq.G() == 0x20)
	assert(core.registers.Uv.U() == 5<<4)
	assert(core.registers.Uv.V() == 6<<4)
}

func TestImageFormatFeedsTransfer(t *testing.T) {
	assert := func(v bool) {
		if !v {
			t.Error("assert failed")
		}
	}

	core, renderer := newTestCore(t)

	// 16x2 PSMCT32 HOST->LOCAL: 16 64-bit payload words
	core.WriteRegister(ADDR_BITBLTBUF, uint64(0x80)<<32|uint64(1)<<48)
	core.WriteRegister(ADDR_TRXREG, 16|2<<32)
	core.WriteRegister(ADDR_TRXDIR, HOST_TO_LOCAL)
	assert(core.transferState.requiredQwords == 16)

	data := make([]qword, 9)
	data[0] = giftag(8, GIF_FLG_IMAGE, 0, 0, false, 0)
	for i := 1; i < 9; i++ {
		data[i] = qword{lo: uint64(i), hi: uint64(i) << 32}
	}
	core.GIFTransfer(2, qwordsToBytes(data...))

	// The transfer completed and deactivated
	assert(len(renderer.copies) == 1)
	assert(!core.transferState.hostToLocalActive)
	assert(renderer.copies[0].HostDataSizeRequired == 16*8)
	assert(len(renderer.copies[0].HostData) == 16)
}

func TestPackedXYZADCSkipsDraw(t *testing.T) {
	assert := func(v bool) {
		if !v {
			t.Error("assert failed")
		}
	}

	core, _ := newTestCore(t)
	setupFrame(core)
	core.WriteRegister(ADDR_PRIM, uint64(PRIM_TRIANGLE_LIST))

	regs := uint64(GIF_ADDR_XYZ2)
	xyzq := func(x, y uint32, adc bool) qword {
		q := qword{lo: uint64(x) | uint64(y)<<32, hi: 1}
		if adc {
			q.hi |= 1 << 47
		}
		return q
	}

	core.GIFTransfer(0, qwordsToBytes(
		giftag(3, GIF_FLG_PACKED, 1, regs, false, 0),
		xyzq(0, 0, false),
		xyzq(640<<4, 0, false),
		xyzq(0, 448<<4, true), // ADC: vertex only, no kick
	))

	// The skipped kick still maintains the queue
	assert(core.renderPass.primitiveCount == 0)
	assert(core.vertexQueue.count == 0)
}

func TestGIFTagNREGZeroMeansSixteen(t *testing.T) {
	assert := func(v bool) {
		if !v {
			t.Error("assert failed")
		}
	}

	core, _ := newTestCore(t)

	// NREG=0 with an all-A+D descriptor still compiles the AD shape
	core.GIFTransfer(3, qwordsToBytes(
		giftag(1, GIF_FLG_PACKED, 0, 0xeeeeeeeeeeeeeeee, false, 0)))
	assert(core.paths[3].shape == SHAPE_AD_ONLY)

	qwords := make([]qword, 16)
	for i := range qwords {
		qwords[i] = adQword(ADDR_FOGCOL, uint64(i))
	}
	core.GIFTransfer(3, qwordsToBytes(qwords...))
	assert(uint64(core.registers.Fogcol) == 15)
	assert(core.paths[3].Loop == 1)
}
