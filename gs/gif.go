package gs

import "encoding/binary"

// One 128-bit GIF quadword as two little-endian halves
type qword struct {
	lo, hi uint64
}

// GIFTag FLG formats
const (
	GIF_FLG_PACKED  = 0
	GIF_FLG_REGLIST = 1
	GIF_FLG_IMAGE   = 2
	GIF_FLG_IMAGE2  = 3
)

// Register descriptor nibbles in GIFTag.REGS
type GIFAddr uint32

const (
	GIF_ADDR_PRIM    GIFAddr = 0x0
	GIF_ADDR_RGBAQ   GIFAddr = 0x1
	GIF_ADDR_ST      GIFAddr = 0x2
	GIF_ADDR_UV      GIFAddr = 0x3
	GIF_ADDR_XYZF2   GIFAddr = 0x4
	GIF_ADDR_XYZ2    GIFAddr = 0x5
	GIF_ADDR_TEX0_1  GIFAddr = 0x6
	GIF_ADDR_TEX0_2  GIFAddr = 0x7
	GIF_ADDR_CLAMP_1 GIFAddr = 0x8
	GIF_ADDR_CLAMP_2 GIFAddr = 0x9
	GIF_ADDR_FOG     GIFAddr = 0xa
	GIF_ADDR_XYZF3   GIFAddr = 0xc
	GIF_ADDR_XYZ3    GIFAddr = 0xd
	GIF_ADDR_A_D     GIFAddr = 0xe
	GIF_ADDR_NOP     GIFAddr = 0xf
)

// Parsed GIFTag header
type GIFTag struct {
	NLOOP uint32
	EOP   bool
	PRE   bool
	PRIM  uint32
	FLG   uint32
	NREG  uint32
	REGS  uint64
}

func parseGIFTag(q qword) GIFTag {
	return GIFTag{
		NLOOP: uint32(bits64(q.lo, 0, 15)),
		EOP:   bits64(q.lo, 15, 1) != 0,
		PRE:   bits64(q.lo, 46, 1) != 0,
		PRIM:  uint32(bits64(q.lo, 47, 11)),
		FLG:   uint32(bits64(q.lo, 58, 2)),
		NREG:  uint32(bits64(q.lo, 60, 4)),
		REGS:  q.hi,
	}
}

// A compiled handler shape for the common register-list patterns. The
// shape is cached on the path at tag time and switched on at dispatch.
type packetShape uint8

const (
	SHAPE_NONE packetShape = iota
	// (ST, RGBAQ, XYZ2/XYZF2) x factor
	SHAPE_STQ_RGBA_XYZ
	// (UV, RGBAQ, XYZ2/XYZF2)
	SHAPE_UV_RGBA_XYZ
	// (ST, XYZ, ST, RGBAQ, XYZ) sprites; no need to specify RGBA twice
	SHAPE_ST_XYZ_ST_RGBA_XYZ
	// A+D only, any NREG
	SHAPE_AD_ONLY
)

// Per-path demux state
type GIFPath struct {
	Tag  GIFTag
	Loop uint32
	Reg  uint32

	shape       packetShape
	shapeFog    bool
	shapeFactor uint32
}

func packedRegsMask(addrs ...GIFAddr) uint64 {
	var mask uint64
	for i, addr := range addrs {
		mask |= uint64(addr) << (4 * i)
	}
	return mask
}

var (
	maskSTQRGBAXYZ2  = packedRegsMask(GIF_ADDR_ST, GIF_ADDR_RGBAQ, GIF_ADDR_XYZ2)
	maskSTQRGBAXYZF2 = packedRegsMask(GIF_ADDR_ST, GIF_ADDR_RGBAQ, GIF_ADDR_XYZF2)
	maskUVRGBAXYZ2   = packedRegsMask(GIF_ADDR_UV, GIF_ADDR_RGBAQ, GIF_ADDR_XYZ2)
	maskUVRGBAXYZF2  = packedRegsMask(GIF_ADDR_UV, GIF_ADDR_RGBAQ, GIF_ADDR_XYZF2)

	maskSTXYZFSTRGBAXYZF = packedRegsMask(GIF_ADDR_ST, GIF_ADDR_XYZF2,
		GIF_ADDR_ST, GIF_ADDR_RGBAQ, GIF_ADDR_XYZF2)
	maskSTXYZSTRGBAXYZ = packedRegsMask(GIF_ADDR_ST, GIF_ADDR_XYZ2,
		GIF_ADDR_ST, GIF_ADDR_RGBAQ, GIF_ADDR_XYZ2)

	maskSTQRGBAXYZ2LineList  = maskSTQRGBAXYZ2 | maskSTQRGBAXYZ2<<12
	maskSTQRGBAXYZF2LineList = maskSTQRGBAXYZF2 | maskSTQRGBAXYZF2<<12
	maskSTQRGBAXYZ2TriList   = maskSTQRGBAXYZ2 | maskSTQRGBAXYZ2<<12 | maskSTQRGBAXYZ2<<24
	maskSTQRGBAXYZF2TriList  = maskSTQRGBAXYZF2 | maskSTQRGBAXYZF2<<12 | maskSTQRGBAXYZF2<<24
)

// Inspects a fresh GIFTag and compiles an optimized handler shape if the
// (FLG, NREG, REGS, PRIM) pattern matches a known common one
func (gs *GSInterface) updateOptimizedGIFHandler(pathIndex uint32) {
	path := &gs.paths[pathIndex]
	path.shape = SHAPE_NONE

	// Only PACKED has fast paths
	if path.Tag.FLG != GIF_FLG_PACKED || path.Tag.NLOOP == 0 {
		return
	}

	nreg := path.Tag.NREG
	regs := path.Tag.REGS
	primType := gs.registers.Prim.PRIM()

	switch {
	case nreg == 3 && regs&0xfff == maskSTQRGBAXYZ2:
		// STQ comes before RGBA since that is how Q updates correctly,
		// and XYZ2 is the draw kick, so it has to be last. Super common.
		path.shape, path.shapeFog, path.shapeFactor = SHAPE_STQ_RGBA_XYZ, false, 1
	case nreg == 3 && regs&0xfff == maskSTQRGBAXYZF2:
		path.shape, path.shapeFog, path.shapeFactor = SHAPE_STQ_RGBA_XYZ, true, 1
	case nreg == 3 && regs&0xfff == maskUVRGBAXYZ2:
		path.shape, path.shapeFog, path.shapeFactor = SHAPE_UV_RGBA_XYZ, false, 1
	case nreg == 3 && regs&0xfff == maskUVRGBAXYZF2:
		path.shape, path.shapeFog, path.shapeFactor = SHAPE_UV_RGBA_XYZ, true, 1
	case nreg == 5 && regs&0xfffff == maskSTXYZFSTRGBAXYZF && primType == PRIM_SPRITE:
		path.shape, path.shapeFog, path.shapeFactor = SHAPE_ST_XYZ_ST_RGBA_XYZ, true, 1
	case nreg == 5 && regs&0xfffff == maskSTXYZSTRGBAXYZ && primType == PRIM_SPRITE:
		path.shape, path.shapeFog, path.shapeFactor = SHAPE_ST_XYZ_ST_RGBA_XYZ, false, 1
	case nreg == 6 && regs&0xffffff == maskSTQRGBAXYZ2LineList && primType == PRIM_LINE_LIST:
		path.shape, path.shapeFog, path.shapeFactor = SHAPE_STQ_RGBA_XYZ, false, 2
	case nreg == 6 && regs&0xffffff == maskSTQRGBAXYZF2LineList && primType == PRIM_LINE_LIST:
		path.shape, path.shapeFog, path.shapeFactor = SHAPE_STQ_RGBA_XYZ, true, 2
	case nreg == 9 && regs&0xfffffffff == maskSTQRGBAXYZ2TriList && primType == PRIM_TRIANGLE_LIST:
		path.shape, path.shapeFog, path.shapeFactor = SHAPE_STQ_RGBA_XYZ, false, 3
	case nreg == 9 && regs&0xfffffffff == maskSTQRGBAXYZF2TriList && primType == PRIM_TRIANGLE_LIST:
		path.shape, path.shapeFog, path.shapeFactor = SHAPE_STQ_RGBA_XYZ, true, 3
	default:
		const adOnlyMask = uint64(GIF_ADDR_A_D) * 0x1111111111111111
		regMask := uint64(1)<<(nreg*4) - 1
		if nreg == 0 {
			regMask = ^uint64(0)
		}
		if regs&regMask == adOnlyMask&regMask {
			path.shape = SHAPE_AD_ONLY
		}
	}
}

func (gs *GSInterface) packedRGBAQ(q qword) {
	r := &gs.registers
	rgba := bits64(q.lo, 0, 8) | bits64(q.lo, 32, 8)<<8 |
		bits64(q.hi, 0, 8)<<16 | bits64(q.hi, 32, 8)<<24
	qbits := uint64(f32Bits(r.InternalQ)) << 32
	r.Rgbaq = RGBAQReg(rgba | qbits)
}

func (gs *GSInterface) packedST(q qword) {
	gs.registers.St = STReg(q.lo)
	gs.registers.InternalQ = f32FromBits(uint32(q.hi))
}

func (gs *GSInterface) packedUV(q qword) {
	u := bits64(q.lo, 0, 14)
	v := bits64(q.lo, 32, 14)
	gs.registers.Uv = UVReg(u | v<<16)
}

func (gs *GSInterface) packedFOG(q qword) {
	f := bits64(q.hi, 36, 8)
	gs.registers.Fog = FOGReg(f << 56)
}

func (gs *GSInterface) packedXYZF(q qword, forceADC bool) {
	adc := forceADC || bits64(q.hi, 47, 1) != 0

	x := bits64(q.lo, 0, 16)
	y := bits64(q.lo, 32, 16)
	z := bits64(q.hi, 4, 24)
	f := bits64(q.hi, 36, 8)
	gs.vertexKickXYZF(XYZFReg(x | y<<16 | z<<32 | f<<56))
	gs.drawingKick(adc)
}

func (gs *GSInterface) packedXYZ(q qword, forceADC bool) {
	adc := forceADC || bits64(q.hi, 47, 1) != 0

	x := bits64(q.lo, 0, 16)
	y := bits64(q.lo, 32, 16)
	z := bits64(q.hi, 0, 32)
	gs.vertexKickXYZ(XYZReg(x | y<<16 | z<<32))
	gs.drawingKick(adc)
}

func (gs *GSInterface) packedXYZKick(q qword, fog bool) {
	if fog {
		gs.packedXYZF(q, false)
	} else {
		gs.packedXYZ(q, false)
	}
}

func (gs *GSInterface) packedAD(q qword) {
	gs.WriteRegister(RegisterAddr(bits64(q.hi, 0, 8)), q.lo)
}

// Generic PACKED register dispatch by descriptor nibble
func (gs *GSInterface) packedDispatch(addr GIFAddr, q qword) {
	switch addr {
	case GIF_ADDR_PRIM:
		adPRIM(gs, q.lo)
	case GIF_ADDR_RGBAQ:
		gs.packedRGBAQ(q)
	case GIF_ADDR_ST:
		gs.packedST(q)
	case GIF_ADDR_UV:
		gs.packedUV(q)
	case GIF_ADDR_XYZF2:
		gs.packedXYZF(q, false)
	case GIF_ADDR_XYZ2:
		gs.packedXYZ(q, false)
	case GIF_ADDR_TEX0_1:
		adTEX0_1(gs, q.lo)
	case GIF_ADDR_TEX0_2:
		adTEX0_2(gs, q.lo)
	case GIF_ADDR_CLAMP_1:
		adCLAMP_1(gs, q.lo)
	case GIF_ADDR_CLAMP_2:
		adCLAMP_2(gs, q.lo)
	case GIF_ADDR_FOG:
		gs.packedFOG(q)
	case GIF_ADDR_XYZF3:
		gs.packedXYZF(q, true)
	case GIF_ADDR_XYZ3:
		gs.packedXYZ(q, true)
	case GIF_ADDR_A_D:
		gs.packedAD(q)
	}
}

// REGLIST register dispatch; only the vertex stream registers exist here
func (gs *GSInterface) reglistDispatch(addr GIFAddr, payload uint64) {
	switch addr {
	case GIF_ADDR_PRIM:
		adPRIM(gs, payload)
	case GIF_ADDR_RGBAQ:
		adRGBAQ(gs, payload)
	case GIF_ADDR_ST:
		adST(gs, payload)
	case GIF_ADDR_UV:
		adUV(gs, payload)
	case GIF_ADDR_XYZF2:
		adXYZF2(gs, payload)
	case GIF_ADDR_XYZ2:
		adXYZ2(gs, payload)
	case GIF_ADDR_TEX0_1:
		adTEX0_1(gs, payload)
	case GIF_ADDR_TEX0_2:
		adTEX0_2(gs, payload)
	case GIF_ADDR_CLAMP_1:
		adCLAMP_1(gs, payload)
	case GIF_ADDR_CLAMP_2:
		adCLAMP_2(gs, payload)
	case GIF_ADDR_FOG:
		adFOG(gs, payload)
	case GIF_ADDR_XYZF3:
		adXYZF3(gs, payload)
	case GIF_ADDR_XYZ3:
		adXYZ3(gs, payload)
	}
}

// Runs `numLoops` whole loops of a compiled shape in a tight burst
// without per-register dispatch
func (gs *GSInterface) runOptimizedShape(path *GIFPath, qwords []qword, numLoops uint32) {
	switch path.shape {
	case SHAPE_STQ_RGBA_XYZ:
		i := 0
		for loop := uint32(0); loop < numLoops*path.shapeFactor; loop++ {
			gs.packedST(qwords[i])
			gs.packedRGBAQ(qwords[i+1])
			gs.packedXYZKick(qwords[i+2], path.shapeFog)
			i += 3
		}
	case SHAPE_UV_RGBA_XYZ:
		i := 0
		for loop := uint32(0); loop < numLoops*path.shapeFactor; loop++ {
			gs.packedUV(qwords[i])
			gs.packedRGBAQ(qwords[i+1])
			gs.packedXYZKick(qwords[i+2], path.shapeFog)
			i += 3
		}
	case SHAPE_ST_XYZ_ST_RGBA_XYZ:
		i := 0
		for loop := uint32(0); loop < numLoops; loop++ {
			gs.packedST(qwords[i])
			gs.packedXYZKick(qwords[i+1], path.shapeFog)
			gs.packedST(qwords[i+2])
			gs.packedRGBAQ(qwords[i+3])
			gs.packedXYZKick(qwords[i+4], path.shapeFog)
			i += 5
		}
	case SHAPE_AD_ONLY:
		nreg := path.Tag.NREG
		if nreg == 0 {
			nreg = 16
		}
		i := 0
		for loop := uint32(0); loop < numLoops; loop++ {
			for reg := uint32(0); reg < nreg; reg++ {
				gs.packedAD(qwords[i])
				i++
			}
		}
	}
}

// Ingests a byte stream on one of the four GIF paths. The stream must be
// a multiple of 16 bytes; within a path GIFTags and register writes are
// strictly ordered.
func (gs *GSInterface) GIFTransfer(pathIndex uint32, data []byte) {
	if pathIndex >= 4 {
		panicFmt("gs: invalid GIF path %d", pathIndex)
	}
	if len(data)%16 != 0 {
		panicFmt("gs: GIF transfer size %d not a multiple of 16", len(data))
	}

	size := uint32(len(data) / 16)
	if size == 0 {
		return
	}
	path := &gs.paths[pathIndex]

	qwords := make([]qword, size)
	for i := range qwords {
		qwords[i].lo = binary.LittleEndian.Uint64(data[16*i:])
		qwords[i].hi = binary.LittleEndian.Uint64(data[16*i+8:])
	}

	nreg := path.Tag.NREG
	if nreg == 0 {
		nreg = 16
	}

	for i := uint32(0); i < size; {
		if path.Loop == path.Tag.NLOOP {
			path.Tag = parseGIFTag(qwords[i])
			if path.Tag.FLG == GIF_FLG_PACKED && path.Tag.PRE {
				adPRIM(gs, uint64(path.Tag.PRIM))
			}

			gs.updateOptimizedGIFHandler(pathIndex)

			path.Loop = 0
			path.Reg = 0
			i++
			nreg = path.Tag.NREG
			if nreg == 0 {
				nreg = 16
			}
			continue
		}

		if path.Reg == 0 && path.shape != SHAPE_NONE {
			loopsToRun := minUint32((size-i)/nreg, path.Tag.NLOOP-path.Loop)
			if loopsToRun > 0 {
				gs.runOptimizedShape(path, qwords[i:], loopsToRun)
				i += loopsToRun * nreg
				path.Loop += loopsToRun
				continue
			}
			// Not even one whole loop left in this transfer; fall back
			// to per-register dispatch for the tail.
		}

		switch path.Tag.FLG {
		case GIF_FLG_PACKED:
			addr := GIFAddr(path.Tag.REGS >> (4 * path.Reg) & 0xf)
			path.Reg++
			gs.packedDispatch(addr, qwords[i])
			i++

			if path.Reg == nreg {
				path.Loop++
				path.Reg = 0
			}

		case GIF_FLG_REGLIST:
			// The number of quadwords is ceil(NLOOP*NREG/2); loops pack
			// tightly when NREG is odd.
			halves := [2]uint64{qwords[i].lo, qwords[i].hi}
			for _, payload := range halves {
				addr := GIFAddr(path.Tag.REGS >> (4 * path.Reg) & 0xf)
				path.Reg++
				gs.reglistDispatch(addr, payload)

				if path.Reg == nreg {
					path.Loop++
					path.Reg = 0
					if path.Loop == path.Tag.NLOOP {
						break
					}
				}
			}
			i++

		default:
			// IMAGE: spam HWREG
			numLoops := minUint32(size-i, path.Tag.NLOOP-path.Loop)
			payload := make([]uint64, 0, 2*numLoops)
			for j := uint32(0); j < numLoops; j++ {
				payload = append(payload, qwords[i+j].lo, qwords[i+j].hi)
			}
			gs.hwregWriteMulti(payload)
			i += numLoops
			path.Loop += numLoops
		}
	}
}
