package gs

// Every GS register is a 64-bit integer plus a typed view that extracts
// fields by named shifts and masks. Nothing here relies on platform
// bit-field layout.

func bits64(v uint64, lo, count uint32) uint64 {
	return (v >> lo) & ((1 << count) - 1)
}

func setBits64(v uint64, lo, count uint32, field uint64) uint64 {
	mask := uint64((1<<count)-1) << lo
	return (v &^ mask) | ((field << lo) & mask)
}

// Primitive types selected by PRIM.PRIM
type PRIMType uint32

const (
	PRIM_POINT          PRIMType = 0
	PRIM_LINE_LIST      PRIMType = 1
	PRIM_LINE_STRIP     PRIMType = 2
	PRIM_TRIANGLE_LIST  PRIMType = 3
	PRIM_TRIANGLE_STRIP PRIMType = 4
	PRIM_TRIANGLE_FAN   PRIMType = 5
	PRIM_SPRITE         PRIMType = 6
	PRIM_INVALID        PRIMType = 7
)

type PRIMReg uint64

func (r PRIMReg) PRIM() PRIMType { return PRIMType(bits64(uint64(r), 0, 3)) }
func (r PRIMReg) IIP() bool      { return bits64(uint64(r), 3, 1) != 0 }
func (r PRIMReg) TME() bool      { return bits64(uint64(r), 4, 1) != 0 }
func (r PRIMReg) FGE() bool      { return bits64(uint64(r), 5, 1) != 0 }
func (r PRIMReg) ABE() bool      { return bits64(uint64(r), 6, 1) != 0 }
func (r PRIMReg) AA1() bool      { return bits64(uint64(r), 7, 1) != 0 }
func (r PRIMReg) FST() bool      { return bits64(uint64(r), 8, 1) != 0 }
func (r PRIMReg) CTXT() uint32   { return uint32(bits64(uint64(r), 9, 1)) }
func (r PRIMReg) FIX() bool      { return bits64(uint64(r), 10, 1) != 0 }

func (r PRIMReg) WithPRIM(p PRIMType) PRIMReg {
	return PRIMReg(setBits64(uint64(r), 0, 3, uint64(p)))
}

type RGBAQReg uint64

func (r RGBAQReg) R() uint32     { return uint32(bits64(uint64(r), 0, 8)) }
func (r RGBAQReg) G() uint32     { return uint32(bits64(uint64(r), 8, 8)) }
func (r RGBAQReg) B() uint32     { return uint32(bits64(uint64(r), 16, 8)) }
func (r RGBAQReg) A() uint32     { return uint32(bits64(uint64(r), 24, 8)) }
func (r RGBAQReg) Q() float32    { return f32FromBits(uint32(uint64(r) >> 32)) }
func (r RGBAQReg) RGBA() uint32  { return uint32(uint64(r)) }

type STReg uint64

func (r STReg) S() float32 { return f32FromBits(uint32(uint64(r))) }
func (r STReg) T() float32 { return f32FromBits(uint32(uint64(r) >> 32)) }

type UVReg uint64

func (r UVReg) U() uint32 { return uint32(bits64(uint64(r), 0, 14)) }
func (r UVReg) V() uint32 { return uint32(bits64(uint64(r), 16, 14)) }

type XYZReg uint64

func (r XYZReg) X() uint32 { return uint32(bits64(uint64(r), 0, 16)) }
func (r XYZReg) Y() uint32 { return uint32(bits64(uint64(r), 16, 16)) }
func (r XYZReg) Z() uint32 { return uint32(uint64(r) >> 32) }

type XYZFReg uint64

func (r XYZFReg) X() uint32 { return uint32(bits64(uint64(r), 0, 16)) }
func (r XYZFReg) Y() uint32 { return uint32(bits64(uint64(r), 16, 16)) }
func (r XYZFReg) Z() uint32 { return uint32(bits64(uint64(r), 32, 24)) }
func (r XYZFReg) F() uint32 { return uint32(bits64(uint64(r), 56, 8)) }

// TEX0 CLD load-control modes
const (
	CLD_NOP               = 0
	CLD_LOAD              = 1
	CLD_LOAD_WRITE_CBP0   = 2
	CLD_LOAD_WRITE_CBP1   = 3
	CLD_COMPARE_LOAD_CBP0 = 4
	CLD_COMPARE_LOAD_CBP1 = 5
)

// TEX0 CSM layouts
const (
	CSM_LAYOUT_RECT = 0
	CSM_LAYOUT_LINE = 1
)

type TEX0Reg uint64

func (r TEX0Reg) TBP0() uint32 { return uint32(bits64(uint64(r), 0, 14)) }
func (r TEX0Reg) TBW() uint32  { return uint32(bits64(uint64(r), 14, 6)) }
func (r TEX0Reg) PSM() PSM     { return PSM(bits64(uint64(r), 20, 6)) }
func (r TEX0Reg) TW() uint32   { return uint32(bits64(uint64(r), 26, 4)) }
func (r TEX0Reg) TH() uint32   { return uint32(bits64(uint64(r), 30, 4)) }
func (r TEX0Reg) TCC() uint32  { return uint32(bits64(uint64(r), 34, 1)) }
func (r TEX0Reg) TFX() uint32  { return uint32(bits64(uint64(r), 35, 2)) }
func (r TEX0Reg) CBP() uint32  { return uint32(bits64(uint64(r), 37, 14)) }
func (r TEX0Reg) CPSM() PSM    { return PSM(bits64(uint64(r), 51, 4)) }
func (r TEX0Reg) CSM() uint32  { return uint32(bits64(uint64(r), 55, 1)) }
func (r TEX0Reg) CSA() uint32  { return uint32(bits64(uint64(r), 56, 5)) }
func (r TEX0Reg) CLD() uint32  { return uint32(bits64(uint64(r), 61, 3)) }

func (r TEX0Reg) WithTBP0(v uint32) TEX0Reg { return TEX0Reg(setBits64(uint64(r), 0, 14, uint64(v))) }
func (r TEX0Reg) WithTBW(v uint32) TEX0Reg  { return TEX0Reg(setBits64(uint64(r), 14, 6, uint64(v))) }
func (r TEX0Reg) WithTW(v uint32) TEX0Reg   { return TEX0Reg(setBits64(uint64(r), 26, 4, uint64(v))) }
func (r TEX0Reg) WithTH(v uint32) TEX0Reg   { return TEX0Reg(setBits64(uint64(r), 30, 4, uint64(v))) }
func (r TEX0Reg) WithTCC(v uint32) TEX0Reg  { return TEX0Reg(setBits64(uint64(r), 34, 1, uint64(v))) }
func (r TEX0Reg) WithTFX(v uint32) TEX0Reg  { return TEX0Reg(setBits64(uint64(r), 35, 2, uint64(v))) }
func (r TEX0Reg) WithCBP(v uint32) TEX0Reg  { return TEX0Reg(setBits64(uint64(r), 37, 14, uint64(v))) }
func (r TEX0Reg) WithCPSM(v PSM) TEX0Reg    { return TEX0Reg(setBits64(uint64(r), 51, 4, uint64(v))) }
func (r TEX0Reg) WithCSM(v uint32) TEX0Reg  { return TEX0Reg(setBits64(uint64(r), 55, 1, uint64(v))) }
func (r TEX0Reg) WithCSA(v uint32) TEX0Reg  { return TEX0Reg(setBits64(uint64(r), 56, 5, uint64(v))) }
func (r TEX0Reg) WithCLD(v uint32) TEX0Reg  { return TEX0Reg(setBits64(uint64(r), 61, 3, uint64(v))) }

// CLAMP wrap modes
const (
	WM_REPEAT        = 0
	WM_CLAMP         = 1
	WM_REGION_CLAMP  = 2
	WM_REGION_REPEAT = 3
)

type CLAMPReg uint64

func (r CLAMPReg) WMS() uint32  { return uint32(bits64(uint64(r), 0, 2)) }
func (r CLAMPReg) WMT() uint32  { return uint32(bits64(uint64(r), 2, 2)) }
func (r CLAMPReg) MINU() uint32 { return uint32(bits64(uint64(r), 4, 10)) }
func (r CLAMPReg) MAXU() uint32 { return uint32(bits64(uint64(r), 14, 10)) }
func (r CLAMPReg) MINV() uint32 { return uint32(bits64(uint64(r), 24, 10)) }
func (r CLAMPReg) MAXV() uint32 { return uint32(bits64(uint64(r), 34, 10)) }

func (r CLAMPReg) WithWMS(v uint32) CLAMPReg  { return CLAMPReg(setBits64(uint64(r), 0, 2, uint64(v))) }
func (r CLAMPReg) WithWMT(v uint32) CLAMPReg  { return CLAMPReg(setBits64(uint64(r), 2, 2, uint64(v))) }
func (r CLAMPReg) WithMINU(v uint32) CLAMPReg { return CLAMPReg(setBits64(uint64(r), 4, 10, uint64(v))) }
func (r CLAMPReg) WithMAXU(v uint32) CLAMPReg { return CLAMPReg(setBits64(uint64(r), 14, 10, uint64(v))) }
func (r CLAMPReg) WithMINV(v uint32) CLAMPReg { return CLAMPReg(setBits64(uint64(r), 24, 10, uint64(v))) }
func (r CLAMPReg) WithMAXV(v uint32) CLAMPReg { return CLAMPReg(setBits64(uint64(r), 34, 10, uint64(v))) }

func (r CLAMPReg) HasHorizontalClamp() bool  { return r.WMS() == WM_CLAMP || r.WMS() == WM_REGION_CLAMP }
func (r CLAMPReg) HasVerticalClamp() bool    { return r.WMT() == WM_CLAMP || r.WMT() == WM_REGION_CLAMP }
func (r CLAMPReg) HasHorizontalRegion() bool { return r.WMS() >= WM_REGION_CLAMP }
func (r CLAMPReg) HasVerticalRegion() bool   { return r.WMT() >= WM_REGION_CLAMP }
func (r CLAMPReg) HasHorizontalRepeat() bool { return r.WMS() == WM_REPEAT || r.WMS() == WM_REGION_REPEAT }
func (r CLAMPReg) HasVerticalRepeat() bool   { return r.WMT() == WM_REPEAT || r.WMT() == WM_REGION_REPEAT }

// TEX1 filter modes
const (
	TEX_NEAREST                = 0
	TEX_LINEAR                 = 1
	TEX_NEAREST_MIPMAP_NEAREST = 2
	TEX_NEAREST_MIPMAP_LINEAR  = 3
	TEX_LINEAR_MIPMAP_NEAREST  = 4
	TEX_LINEAR_MIPMAP_LINEAR   = 5
)

type TEX1Reg uint64

func (r TEX1Reg) LCM() uint32  { return uint32(bits64(uint64(r), 0, 1)) }
func (r TEX1Reg) MXL() uint32  { return uint32(bits64(uint64(r), 2, 3)) }
func (r TEX1Reg) MMAG() uint32 { return uint32(bits64(uint64(r), 5, 1)) }
func (r TEX1Reg) MMIN() uint32 { return uint32(bits64(uint64(r), 6, 3)) }
func (r TEX1Reg) MTBA() uint32 { return uint32(bits64(uint64(r), 9, 1)) }
func (r TEX1Reg) L() uint32    { return uint32(bits64(uint64(r), 19, 2)) }
func (r TEX1Reg) K() uint32    { return uint32(bits64(uint64(r), 32, 12)) }

func (r TEX1Reg) WithLCM(v uint32) TEX1Reg  { return TEX1Reg(setBits64(uint64(r), 0, 1, uint64(v))) }
func (r TEX1Reg) WithMXL(v uint32) TEX1Reg  { return TEX1Reg(setBits64(uint64(r), 2, 3, uint64(v))) }
func (r TEX1Reg) WithMMAG(v uint32) TEX1Reg { return TEX1Reg(setBits64(uint64(r), 5, 1, uint64(v))) }
func (r TEX1Reg) WithMMIN(v uint32) TEX1Reg { return TEX1Reg(setBits64(uint64(r), 6, 3, uint64(v))) }
func (r TEX1Reg) WithMTBA(v uint32) TEX1Reg { return TEX1Reg(setBits64(uint64(r), 9, 1, uint64(v))) }
func (r TEX1Reg) WithL(v uint32) TEX1Reg    { return TEX1Reg(setBits64(uint64(r), 19, 2, uint64(v))) }
func (r TEX1Reg) WithK(v uint32) TEX1Reg    { return TEX1Reg(setBits64(uint64(r), 32, 12, uint64(v))) }

func (r TEX1Reg) MminHasMipmap() bool { return r.MMIN() >= TEX_NEAREST_MIPMAP_NEAREST }
func (r TEX1Reg) HasMipmap() bool     { return r.MminHasMipmap() && r.MXL() != 0 }

type XYOFFSETReg uint64

func (r XYOFFSETReg) OFX() uint32 { return uint32(bits64(uint64(r), 0, 16)) }
func (r XYOFFSETReg) OFY() uint32 { return uint32(bits64(uint64(r), 32, 16)) }

type PRMODECONTReg uint64

func (r PRMODECONTReg) AC() bool { return bits64(uint64(r), 0, 1) != 0 }

type TEXCLUTReg uint64

func (r TEXCLUTReg) CBW() uint32 { return uint32(bits64(uint64(r), 0, 6)) }
func (r TEXCLUTReg) COU() uint32 { return uint32(bits64(uint64(r), 6, 6)) }
func (r TEXCLUTReg) COV() uint32 { return uint32(bits64(uint64(r), 12, 10)) }

// COU is in units of 16 pixels
const COU_SCALE = 16

// SCANMSK modes
const (
	MSK_NONE      = 0
	MSK_SKIP_EVEN = 2
	MSK_SKIP_ODD  = 3
)

type SCANMSKReg uint64

func (r SCANMSKReg) MSK() uint32  { return uint32(bits64(uint64(r), 0, 2)) }
func (r SCANMSKReg) HasMask() bool { return r.MSK() >= MSK_SKIP_EVEN }

type MIPTBPReg uint64

func (r MIPTBPReg) TBP1() uint32 { return uint32(bits64(uint64(r), 0, 14)) }
func (r MIPTBPReg) TBW1() uint32 { return uint32(bits64(uint64(r), 14, 6)) }
func (r MIPTBPReg) TBP2() uint32 { return uint32(bits64(uint64(r), 20, 14)) }
func (r MIPTBPReg) TBW2() uint32 { return uint32(bits64(uint64(r), 34, 6)) }
func (r MIPTBPReg) TBP3() uint32 { return uint32(bits64(uint64(r), 40, 14)) }
func (r MIPTBPReg) TBW3() uint32 { return uint32(bits64(uint64(r), 54, 6)) }

func (r MIPTBPReg) WithTBP1(v uint32) MIPTBPReg { return MIPTBPReg(setBits64(uint64(r), 0, 14, uint64(v))) }
func (r MIPTBPReg) WithTBW1(v uint32) MIPTBPReg { return MIPTBPReg(setBits64(uint64(r), 14, 6, uint64(v))) }
func (r MIPTBPReg) WithTBP2(v uint32) MIPTBPReg { return MIPTBPReg(setBits64(uint64(r), 20, 14, uint64(v))) }
func (r MIPTBPReg) WithTBW2(v uint32) MIPTBPReg { return MIPTBPReg(setBits64(uint64(r), 34, 6, uint64(v))) }
func (r MIPTBPReg) WithTBP3(v uint32) MIPTBPReg { return MIPTBPReg(setBits64(uint64(r), 40, 14, uint64(v))) }
func (r MIPTBPReg) WithTBW3(v uint32) MIPTBPReg { return MIPTBPReg(setBits64(uint64(r), 54, 6, uint64(v))) }

// Level base/stride lookup by mip level (level 0 comes from TEX0)
func (r MIPTBPReg) TBP(level uint32) uint32 {
	switch level {
	case 1:
		return r.TBP1()
	case 2:
		return r.TBP2()
	default:
		return r.TBP3()
	}
}

func (r MIPTBPReg) TBW(level uint32) uint32 {
	switch level {
	case 1:
		return r.TBW1()
	case 2:
		return r.TBW2()
	default:
		return r.TBW3()
	}
}

type TEXAReg uint64

func (r TEXAReg) TA0() uint32 { return uint32(bits64(uint64(r), 0, 8)) }
func (r TEXAReg) AEM() uint32 { return uint32(bits64(uint64(r), 15, 1)) }
func (r TEXAReg) TA1() uint32 { return uint32(bits64(uint64(r), 32, 8)) }

type FOGCOLReg uint64

func (r FOGCOLReg) FCR() uint32 { return uint32(bits64(uint64(r), 0, 8)) }
func (r FOGCOLReg) FCG() uint32 { return uint32(bits64(uint64(r), 8, 8)) }
func (r FOGCOLReg) FCB() uint32 { return uint32(bits64(uint64(r), 16, 8)) }

type FOGReg uint64

func (r FOGReg) FOG() uint32 { return uint32(bits64(uint64(r), 56, 8)) }

type SCISSORReg uint64

func (r SCISSORReg) SCAX0() uint32 { return uint32(bits64(uint64(r), 0, 11)) }
func (r SCISSORReg) SCAX1() uint32 { return uint32(bits64(uint64(r), 16, 11)) }
func (r SCISSORReg) SCAY0() uint32 { return uint32(bits64(uint64(r), 32, 11)) }
func (r SCISSORReg) SCAY1() uint32 { return uint32(bits64(uint64(r), 48, 11)) }

// Blend unit input selectors
const (
	BLEND_RGB_SOURCE  = 0
	BLEND_RGB_DEST    = 1
	BLEND_RGB_ZERO    = 2
	BLEND_ALPHA_DEST  = 1
	BLEND_ALPHA_FIX   = 2
)

type ALPHAReg uint64

func (r ALPHAReg) A() uint32   { return uint32(bits64(uint64(r), 0, 2)) }
func (r ALPHAReg) B() uint32   { return uint32(bits64(uint64(r), 2, 2)) }
func (r ALPHAReg) C() uint32   { return uint32(bits64(uint64(r), 4, 2)) }
func (r ALPHAReg) D() uint32   { return uint32(bits64(uint64(r), 6, 2)) }
func (r ALPHAReg) FIX() uint32 { return uint32(bits64(uint64(r), 32, 8)) }

type DIMXReg uint64

type DTHEReg uint64

func (r DTHEReg) DTHE() bool { return bits64(uint64(r), 0, 1) != 0 }

type COLCLAMPReg uint64

func (r COLCLAMPReg) CLAMP() bool { return bits64(uint64(r), 0, 1) != 0 }

type PABEReg uint64

func (r PABEReg) PABE() bool { return bits64(uint64(r), 0, 1) != 0 }

// TEST alpha test modes
const (
	ATST_NEVER    = 0
	ATST_ALWAYS   = 1
	ATST_LESS     = 2
	ATST_LEQUAL   = 3
	ATST_EQUAL    = 4
	ATST_GEQUAL   = 5
	ATST_GREATER  = 6
	ATST_NOTEQUAL = 7
)

// TEST alpha fail modes
const (
	AFAIL_KEEP     = 0
	AFAIL_FB_ONLY  = 1
	AFAIL_ZB_ONLY  = 2
	AFAIL_RGB_ONLY = 3
)

// TEST depth test enable / modes
const (
	ZTE_UNDEFINED = 0
	ZTE_ENABLED   = 1

	ZTST_NEVER   = 0
	ZTST_ALWAYS  = 1
	ZTST_GEQUAL  = 2
	ZTST_GREATER = 3
)

type TESTReg uint64

func (r TESTReg) ATE() bool    { return bits64(uint64(r), 0, 1) != 0 }
func (r TESTReg) ATST() uint32 { return uint32(bits64(uint64(r), 1, 3)) }
func (r TESTReg) AREF() uint32 { return uint32(bits64(uint64(r), 4, 8)) }
func (r TESTReg) AFAIL() uint32 { return uint32(bits64(uint64(r), 12, 2)) }
func (r TESTReg) DATE() bool   { return bits64(uint64(r), 14, 1) != 0 }
func (r TESTReg) DATM() uint32 { return uint32(bits64(uint64(r), 15, 1)) }
func (r TESTReg) ZTE() uint32  { return uint32(bits64(uint64(r), 16, 1)) }
func (r TESTReg) ZTST() uint32 { return uint32(bits64(uint64(r), 17, 2)) }

// True when the depth test can actually reject pixels
func (r TESTReg) HasZTest() bool {
	return r.ZTST() == ZTST_GEQUAL || r.ZTST() == ZTST_GREATER
}

type FBAReg uint64

func (r FBAReg) FBA() bool { return bits64(uint64(r), 0, 1) != 0 }

type FRAMEReg uint64

func (r FRAMEReg) FBP() uint32   { return uint32(bits64(uint64(r), 0, 9)) }
func (r FRAMEReg) FBW() uint32   { return uint32(bits64(uint64(r), 16, 6)) }
func (r FRAMEReg) PSM() PSM      { return PSM(bits64(uint64(r), 24, 6)) }
func (r FRAMEReg) FBMSK() uint32 { return uint32(uint64(r) >> 32) }

// The low word identifies the framebuffer binding (base, stride, format)
func (r FRAMEReg) Word0() uint32 { return uint32(uint64(r)) }

type ZBUFReg uint64

func (r ZBUFReg) ZBP() uint32 { return uint32(bits64(uint64(r), 0, 9)) }
func (r ZBUFReg) PSM() PSM    { return PSM(bits64(uint64(r), 24, 4)) | PSMZ32 }
func (r ZBUFReg) ZMSK() bool  { return bits64(uint64(r), 32, 1) != 0 }

type BITBLTBUFReg uint64

func (r BITBLTBUFReg) SBP() uint32 { return uint32(bits64(uint64(r), 0, 14)) }
func (r BITBLTBUFReg) SBW() uint32 { return uint32(bits64(uint64(r), 16, 6)) }
func (r BITBLTBUFReg) SPSM() PSM   { return PSM(bits64(uint64(r), 24, 6)) }
func (r BITBLTBUFReg) DBP() uint32 { return uint32(bits64(uint64(r), 32, 14)) }
func (r BITBLTBUFReg) DBW() uint32 { return uint32(bits64(uint64(r), 48, 6)) }
func (r BITBLTBUFReg) DPSM() PSM   { return PSM(bits64(uint64(r), 56, 6)) }

type TRXPOSReg uint64

func (r TRXPOSReg) SSAX() uint32 { return uint32(bits64(uint64(r), 0, 11)) }
func (r TRXPOSReg) SSAY() uint32 { return uint32(bits64(uint64(r), 16, 11)) }
func (r TRXPOSReg) DSAX() uint32 { return uint32(bits64(uint64(r), 32, 11)) }
func (r TRXPOSReg) DSAY() uint32 { return uint32(bits64(uint64(r), 48, 11)) }
func (r TRXPOSReg) DIR() uint32  { return uint32(bits64(uint64(r), 59, 2)) }

type TRXREGReg uint64

func (r TRXREGReg) RRW() uint32 { return uint32(bits64(uint64(r), 0, 12)) }
func (r TRXREGReg) RRH() uint32 { return uint32(bits64(uint64(r), 32, 12)) }

// TRXDIR transfer directions
const (
	HOST_TO_LOCAL  = 0
	LOCAL_TO_HOST  = 1
	LOCAL_TO_LOCAL = 2
	TRX_DEACTIVATE = 3
)

type TRXDIRReg uint64

func (r TRXDIRReg) XDIR() uint32 { return uint32(bits64(uint64(r), 0, 2)) }

// One rendering context worth of registers
type ContextState struct {
	Tex0      TEX0Reg
	Clamp     CLAMPReg
	Tex1      TEX1Reg
	XYOffset  XYOFFSETReg
	MipTbl13  MIPTBPReg
	MipTbl46  MIPTBPReg
	Scissor   SCISSORReg
	Test      TESTReg
	Alpha     ALPHAReg
	Fba       FBAReg
	Frame     FRAMEReg
	Zbuf      ZBUFReg
}

// The full GS register bank mutated by the command stream
type RegisterState struct {
	Ctx [2]ContextState

	Prim       PRIMReg
	Prmodecont PRMODECONTReg
	Rgbaq      RGBAQReg
	St         STReg
	Uv         UVReg
	Fog        FOGReg
	Fogcol     FOGCOLReg
	Texa       TEXAReg
	Texclut    TEXCLUTReg
	Dimx       DIMXReg
	Dthe       DTHEReg
	Pabe       PABEReg
	Colclamp   COLCLAMPReg
	Scanmsk    SCANMSKReg
	Bitbltbuf  BITBLTBUFReg
	Trxpos     TRXPOSReg
	Trxreg     TRXREGReg
	Trxdir     TRXDIRReg

	// CBP values cached by the CLD compare modes
	CachedCBP [2]uint32

	// Q latched by packed ST writes, consumed by packed RGBAQ
	InternalQ float32
}

// Dirty bits raised by register writes, consumed lazily at draw kick
type StateDirtyFlags uint32

const (
	STATE_DIRTY_DEGENERATE_BIT    StateDirtyFlags = 1 << 0
	STATE_DIRTY_STATE_BIT         StateDirtyFlags = 1 << 1
	STATE_DIRTY_PRIM_TEMPLATE_BIT StateDirtyFlags = 1 << 2
	STATE_DIRTY_TEX_BIT           StateDirtyFlags = 1 << 3
	STATE_DIRTY_FB_BIT            StateDirtyFlags = 1 << 4
	STATE_DIRTY_FEEDBACK_BIT      StateDirtyFlags = 1 << 5

	STATE_DIRTY_ALL_BITS StateDirtyFlags = STATE_DIRTY_DEGENERATE_BIT |
		STATE_DIRTY_STATE_BIT | STATE_DIRTY_PRIM_TEMPLATE_BIT |
		STATE_DIRTY_TEX_BIT | STATE_DIRTY_FB_BIT | STATE_DIRTY_FEEDBACK_BIT
)
