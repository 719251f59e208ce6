package gs

// A rectangular region in page space. BlockMask selects which of the 32
// blocks inside each covered page participate; WriteMask selects which
// word channels are touched (24-bit color and the 8H/4H formats alias
// the same words without overlapping bits).
type PageRect struct {
	BasePage   uint32
	PageWidth  uint32
	PageHeight uint32
	PageStride uint32
	BlockMask  uint32
	WriteMask  uint32
}

// A PageRect for a CLUT region, extended with the mask of palette
// sub-banks (CSA units) the upload touches
type PageRectCLUT struct {
	PageRect
	CSAMask uint32
}

// Computes the page-space footprint of a pixel rectangle.
// `baseBlock` is the region base in 256-byte blocks, `stride` the row
// stride in units of 64 pixels (the FBW/TBW/CBW register convention).
func ComputePageRect(baseBlock, x, y, width, height, stride uint32, psm PSM) PageRect {
	layout := GetPSMLayout(psm)

	if width == 0 {
		width = 1
	}
	if height == 0 {
		height = 1
	}

	// Stride in pages. A page is one 64-pixel stride unit wide for
	// 32/16-bit modes and two units (128 pixels) for 8/4-bit ones.
	pageStride := stride >> (layout.PageWidthLog2 - 6)

	x0 := x >> layout.PageWidthLog2
	y0 := y >> layout.PageHeightLog2
	x1 := (x + width - 1) >> layout.PageWidthLog2
	y1 := (y + height - 1) >> layout.PageHeightLog2

	rect := PageRect{
		BasePage:   baseBlock/BlocksPerPage + x0 + y0*pageStride,
		PageWidth:  x1 - x0 + 1,
		PageHeight: y1 - y0 + 1,
		PageStride: pageStride,
		BlockMask:  computeBlockMask(baseBlock, x, y, width, height, psm, layout),
		WriteMask:  PSMWordWriteMask(psm),
	}
	return rect
}

// Per-page block coverage. Only a rectangle confined to a single page can
// be narrowed below full coverage; anything spanning pages (or spilling
// over a misaligned base) conservatively claims every block.
func computeBlockMask(baseBlock, x, y, width, height uint32, psm PSM, layout PSMLayout) uint32 {
	blockOffset := baseBlock % BlocksPerPage

	x0 := x >> layout.PageWidthLog2
	y0 := y >> layout.PageHeightLog2
	x1 := (x + width - 1) >> layout.PageWidthLog2
	y1 := (y + height - 1) >> layout.PageHeightLog2
	if x0 != x1 || y0 != y1 {
		return 0xffffffff
	}

	bx0 := (x & ((1 << layout.PageWidthLog2) - 1)) >> layout.BlockWidthLog2
	by0 := (y & ((1 << layout.PageHeightLog2) - 1)) >> layout.BlockHeightLog2
	bx1 := ((x + width - 1) & ((1 << layout.PageWidthLog2) - 1)) >> layout.BlockWidthLog2
	by1 := ((y + height - 1) & ((1 << layout.PageHeightLog2) - 1)) >> layout.BlockHeightLog2

	var mask uint32
	for by := by0; by <= by1; by++ {
		for bx := bx0; bx <= bx1; bx++ {
			block := blockIndex(psm, bx, by) + blockOffset
			if block >= BlocksPerPage {
				// Spills into the next page, give up on narrowing
				return 0xffffffff
			}
			mask |= 1 << block
		}
	}
	return mask
}

// Calls fn for every page index covered by the rect, clamped to
// `numPages`. The stride walk matches how the GS lays out rows of pages.
func (r *PageRect) ForEachPage(numPages uint32, fn func(page uint32)) {
	for y := uint32(0); y < r.PageHeight; y++ {
		for x := uint32(0); x < r.PageWidth; x++ {
			// VRAM addressing wraps around
			fn((r.BasePage + x + y*r.PageStride) % numPages)
		}
	}
}
