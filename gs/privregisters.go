package gs

// Privileged (CSR-space) registers. The core only stores these; scanout
// interpretation is the renderer's job.

type PMODEReg uint64

func (r PMODEReg) EN1() bool   { return bits64(uint64(r), 0, 1) != 0 }
func (r PMODEReg) EN2() bool   { return bits64(uint64(r), 1, 1) != 0 }
func (r PMODEReg) CRTMD() uint32 { return uint32(bits64(uint64(r), 2, 3)) }
func (r PMODEReg) MMOD() uint32  { return uint32(bits64(uint64(r), 5, 1)) }
func (r PMODEReg) AMOD() uint32  { return uint32(bits64(uint64(r), 6, 1)) }
func (r PMODEReg) SLBG() uint32  { return uint32(bits64(uint64(r), 7, 1)) }
func (r PMODEReg) ALP() uint32   { return uint32(bits64(uint64(r), 8, 8)) }

type DISPFBReg uint64

func (r DISPFBReg) FBP() uint32 { return uint32(bits64(uint64(r), 0, 9)) }
func (r DISPFBReg) FBW() uint32 { return uint32(bits64(uint64(r), 9, 6)) }
func (r DISPFBReg) PSM() PSM    { return PSM(bits64(uint64(r), 15, 5)) }
func (r DISPFBReg) DBX() uint32 { return uint32(bits64(uint64(r), 32, 11)) }
func (r DISPFBReg) DBY() uint32 { return uint32(bits64(uint64(r), 43, 11)) }

type DISPLAYReg uint64

func (r DISPLAYReg) DX() uint32   { return uint32(bits64(uint64(r), 0, 12)) }
func (r DISPLAYReg) DY() uint32   { return uint32(bits64(uint64(r), 12, 11)) }
func (r DISPLAYReg) MAGH() uint32 { return uint32(bits64(uint64(r), 23, 4)) }
func (r DISPLAYReg) MAGV() uint32 { return uint32(bits64(uint64(r), 27, 2)) }
func (r DISPLAYReg) DW() uint32   { return uint32(bits64(uint64(r), 32, 12)) }
func (r DISPLAYReg) DH() uint32   { return uint32(bits64(uint64(r), 44, 11)) }

type SMODE1Reg uint64
type SMODE2Reg uint64

func (r SMODE2Reg) INT() bool  { return bits64(uint64(r), 0, 1) != 0 }
func (r SMODE2Reg) FFMD() bool { return bits64(uint64(r), 1, 1) != 0 }

type CSRReg uint64

type PrivRegisterState struct {
	Pmode    PMODEReg
	Smode1   SMODE1Reg
	Smode2   SMODE2Reg
	Dispfb1  DISPFBReg
	Display1 DISPLAYReg
	Dispfb2  DISPFBReg
	Display2 DISPLAYReg
	Extbuf   uint64
	Extdata  uint64
	Extwrite uint64
	Bgcolor  uint64
	Csr      CSRReg
	Imr      uint64
	Busdir   uint64
	Siglblid uint64
}
