package gs

// Pixel storage mode, the bit layout/swizzle of a VRAM region
type PSM uint32

const (
	PSMCT32  PSM = 0x00
	PSMCT24  PSM = 0x01
	PSMCT16  PSM = 0x02
	PSMCT16S PSM = 0x0a
	PSMT8    PSM = 0x13
	PSMT4    PSM = 0x14
	PSMT8H   PSM = 0x1b
	PSMT4HL  PSM = 0x24
	PSMT4HH  PSM = 0x2c
	PSMZ32   PSM = 0x30
	PSMZ24   PSM = 0x31
	PSMZ16   PSM = 0x32
	PSMZ16S  PSM = 0x3a
)

// VRAM addressing units
const (
	WordSize      = 4
	BlockSize     = 256
	PageSize      = 8192
	BlocksPerPage = PageSize / BlockSize
)

// Describes the page/block tiling of one pixel storage mode
type PSMLayout struct {
	BitsPerPixel    uint32
	PageWidthLog2   uint32 // Page width in pixels, log2
	PageHeightLog2  uint32
	BlockWidthLog2  uint32 // Block width in pixels, log2
	BlockHeightLog2 uint32
}

var psmLayout32 = PSMLayout{32, 6, 5, 3, 3}  // 64x32 page, 8x8 block
var psmLayout16 = PSMLayout{16, 6, 6, 4, 3}  // 64x64 page, 16x8 block
var psmLayout8 = PSMLayout{8, 7, 6, 4, 4}    // 128x64 page, 16x16 block
var psmLayout4 = PSMLayout{4, 7, 7, 5, 4}    // 128x128 page, 32x16 block
var psmLayout24 = PSMLayout{32, 6, 5, 3, 3}  // Aliases the 32-bit layout

// Returns the tiling parameters of `psm`
func GetPSMLayout(psm PSM) PSMLayout {
	switch psm {
	case PSMCT32, PSMZ32, PSMT8H, PSMT4HL, PSMT4HH:
		return psmLayout32
	case PSMCT24, PSMZ24:
		return psmLayout24
	case PSMCT16, PSMCT16S, PSMZ16, PSMZ16S:
		return psmLayout16
	case PSMT8:
		return psmLayout8
	case PSMT4:
		return psmLayout4
	default:
		panicFmt("gs: unknown PSM 0x%x", uint32(psm))
	}
	return PSMLayout{}
}

// Returns bits per pixel of `psm`
func GetBitsPerPixel(psm PSM) uint32 {
	return GetPSMLayout(psm).BitsPerPixel
}

// Which bits of each 32-bit word a write in this format touches.
// 24-bit color leaves the top byte alone, the 8H/4H formats live
// entirely in the top byte.
func PSMWordWriteMask(psm PSM) uint32 {
	switch psm {
	case PSMCT24, PSMZ24:
		return 0x00ffffff
	case PSMT8H:
		return 0xff000000
	case PSMT4HL:
		return 0x0f000000
	case PSMT4HH:
		return 0xf0000000
	default:
		return 0xffffffff
	}
}

// Equivalence class of the in-memory swizzle pattern. Two PSMs sharing a
// key have byte-identical VRAM layout, which is what feedback aliasing
// detection cares about.
func SwizzleCompatKey(psm PSM) PSM {
	switch psm {
	case PSMCT24:
		return PSMCT32
	case PSMZ24:
		return PSMZ32
	default:
		return psm
	}
}

// Returns true for palette-indexed storage modes
func IsPaletteFormat(psm PSM) bool {
	switch psm {
	case PSMT8, PSMT8H, PSMT4, PSMT4HL, PSMT4HH:
		return true
	}
	return false
}

// Block index tables. Within a page, 256-byte blocks are laid out in a
// swizzled grid; the grid shape depends on the storage mode. Indexed as
// [y][x] in block-grid cells.

// 8 wide x 4 high (PSMCT32 family, PSMT8)
var blockTable32 = [4][8]uint8{
	{0, 1, 4, 5, 16, 17, 20, 21},
	{2, 3, 6, 7, 18, 19, 22, 23},
	{8, 9, 12, 13, 24, 25, 28, 29},
	{10, 11, 14, 15, 26, 27, 30, 31},
}

// PSMZ32 family: the 32-bit table with both halves swapped
var blockTableZ32 = [4][8]uint8{
	{24, 25, 28, 29, 8, 9, 12, 13},
	{26, 27, 30, 31, 10, 11, 14, 15},
	{16, 17, 20, 21, 0, 1, 4, 5},
	{18, 19, 22, 23, 2, 3, 6, 7},
}

// 4 wide x 8 high (PSMCT16, PSMT4)
var blockTable16 = [8][4]uint8{
	{0, 2, 8, 10},
	{1, 3, 9, 11},
	{4, 6, 12, 14},
	{5, 7, 13, 15},
	{16, 18, 24, 26},
	{17, 19, 25, 27},
	{20, 22, 28, 30},
	{21, 23, 29, 31},
}

var blockTable16S = [8][4]uint8{
	{0, 2, 16, 18},
	{1, 3, 17, 19},
	{8, 10, 24, 26},
	{9, 11, 25, 27},
	{4, 6, 20, 22},
	{5, 7, 21, 23},
	{12, 14, 28, 30},
	{13, 15, 29, 31},
}

var blockTableZ16 = [8][4]uint8{
	{16, 18, 24, 26},
	{17, 19, 25, 27},
	{20, 22, 28, 30},
	{21, 23, 29, 31},
	{0, 2, 8, 10},
	{1, 3, 9, 11},
	{4, 6, 12, 14},
	{5, 7, 13, 15},
}

var blockTableZ16S = [8][4]uint8{
	{16, 18, 0, 2},
	{17, 19, 1, 3},
	{24, 26, 8, 10},
	{25, 27, 9, 11},
	{20, 22, 4, 6},
	{21, 23, 5, 7},
	{28, 30, 12, 14},
	{29, 31, 13, 15},
}

// Returns the block index at block-grid cell (bx, by) for `psm`
func blockIndex(psm PSM, bx, by uint32) uint32 {
	switch psm {
	case PSMCT32, PSMCT24, PSMT8H, PSMT4HL, PSMT4HH, PSMT8:
		return uint32(blockTable32[by][bx])
	case PSMZ32, PSMZ24:
		return uint32(blockTableZ32[by][bx])
	case PSMCT16, PSMT4:
		return uint32(blockTable16[by][bx])
	case PSMCT16S:
		return uint32(blockTable16S[by][bx])
	case PSMZ16:
		return uint32(blockTableZ16[by][bx])
	case PSMZ16S:
		return uint32(blockTableZ16S[by][bx])
	default:
		panicFmt("gs: unknown PSM 0x%x", uint32(psm))
	}
	return 0
}
