package gs

import (
	"encoding/binary"
	"image"

	xdraw "golang.org/x/image/draw"
)

// A renderer backend with no GPU behind it. It keeps the canonical VRAM
// copy on the host, counts the work it is handed, and scans out the
// display framebuffer as a plain image. Useful headless and as the
// frontend fallback; the real GPU renderer lives out of tree.
type HeadlessRenderer struct {
	vram  []byte
	stats FlushStats

	submittedTimeline uint64
	completedTimeline uint64

	nextClutInstance uint32
	timestamps       [TIMESTAMP_COUNT]float64
}

func NewHeadlessRenderer() *HeadlessRenderer {
	return &HeadlessRenderer{}
}

func (r *HeadlessRenderer) Init(options *GSOptions) bool {
	if options.VRAMSize == 0 || options.VRAMSize%PageSize != 0 {
		return false
	}
	r.vram = make([]byte, options.VRAMSize)
	return true
}

func (r *HeadlessRenderer) FlushRendering(rp *RenderPassDesc) {
	r.stats.RenderPasses++
	r.stats.Primitives += uint32(len(rp.Prims))
}

func (r *HeadlessRenderer) FlushTransfer()          {}
func (r *HeadlessRenderer) TransferOverlapBarrier() { r.stats.CopyBarriers++ }
func (r *HeadlessRenderer) FlushCacheUpload()       {}

func (r *HeadlessRenderer) FlushHostVRAMCopy(pages []uint32) {}

func (r *HeadlessRenderer) FlushReadback(pages []uint32) {
	r.stats.Readbacks += uint32(len(pages))
}

// Applies the copy directly to the host VRAM array. Data lands linearly
// from the destination base block; the GPU renderer does the real
// swizzled addressing, this backend only has to keep bytes flowing for
// readback and scanout.
func (r *HeadlessRenderer) CopyVRAM(desc *CopyDescriptor) {
	r.stats.Copies++

	switch desc.Trxdir.XDIR() {
	case HOST_TO_LOCAL:
		if desc.HostData == nil {
			return
		}
		base := int(desc.Bitbltbuf.DBP()) * BlockSize
		offset := int(desc.HostDataSizeOffset)
		for i := offset / 8; i < len(desc.HostData); i++ {
			at := base + i*8
			if at+8 > len(r.vram) {
				break
			}
			binary.LittleEndian.PutUint64(r.vram[at:], desc.HostData[i])
		}

	case LOCAL_TO_LOCAL:
		length := int(desc.Trxreg.RRW()) * int(desc.Trxreg.RRH()) *
			int(GetBitsPerPixel(desc.Bitbltbuf.SPSM())) / 8
		src := int(desc.Bitbltbuf.SBP()) * BlockSize
		dst := int(desc.Bitbltbuf.DBP()) * BlockSize
		if src+length > len(r.vram) || dst+length > len(r.vram) {
			return
		}
		copy(r.vram[dst:dst+length], r.vram[src:src+length])
	}
}

func (r *HeadlessRenderer) UpdatePaletteCache(desc PaletteUploadDescriptor) uint32 {
	r.stats.PaletteUpdates++
	instance := r.nextClutInstance
	r.nextClutInstance = (r.nextClutInstance + 1) % CLUTInstances
	return instance
}

func (r *HeadlessRenderer) CreateCachedTexture(desc *TextureDescriptor) *TextureImage {
	r.stats.CacheTextures++
	w := desc.Rect.Width
	h := desc.Rect.Height
	if w == 0 {
		w = 1
	}
	if h == 0 {
		h = 1
	}
	return &TextureImage{Width: w, Height: h}
}

func (r *HeadlessRenderer) InvalidateSuperSamplingState() {}

func (r *HeadlessRenderer) BeginHostVRAMAccess() []byte { return r.vram }
func (r *HeadlessRenderer) EndHostWriteVRAMAccess()     {}

func (r *HeadlessRenderer) WaitTimeline(t uint64) {
	// Everything completes synchronously here
	if t > r.completedTimeline {
		r.completedTimeline = t
	}
}

func (r *HeadlessRenderer) FlushSubmit(t uint64) {
	r.submittedTimeline = t
}

// Interprets the scanout circuit registers and produces a frame. The
// framebuffer bytes are read as 32-bit RGBA rows and scaled to the
// display rectangle.
func (r *HeadlessRenderer) VSync(priv *PrivRegisterState, info VSyncInfo) ScanoutResult {
	dispfb := priv.Dispfb1
	display := priv.Display1
	if !priv.Pmode.EN1() && priv.Pmode.EN2() {
		dispfb = priv.Dispfb2
		display = priv.Display2
	}

	width := dispfb.FBW() * BUFFER_WIDTH_SCALE
	if width == 0 {
		width = 640
	}
	height := (display.DH() + 1) / (display.MAGV() + 1)
	if height == 0 || height > 1080 {
		height = 448
	}

	src := image.NewRGBA(image.Rect(0, 0, int(width), int(height)))
	base := int(dispfb.FBP()) * PageSize
	for y := 0; y < int(height); y++ {
		rowOffset := base + (y+int(dispfb.DBY()))*int(width)*4 + int(dispfb.DBX())*4
		for x := 0; x < int(width); x++ {
			at := rowOffset + x*4
			if at+4 > len(r.vram) {
				break
			}
			i := src.PixOffset(x, y)
			src.Pix[i+0] = r.vram[at+0]
			src.Pix[i+1] = r.vram[at+1]
			src.Pix[i+2] = r.vram[at+2]
			src.Pix[i+3] = 0xff
		}
	}

	outWidth := (display.DW() + 1) / (display.MAGH() + 1)
	if outWidth == 0 || outWidth > 4096 {
		outWidth = width
	}

	out := src
	if outWidth != width {
		out = image.NewRGBA(image.Rect(0, 0, int(outWidth), int(height)))
		xdraw.NearestNeighbor.Scale(out, out.Bounds(), src, src.Bounds(), xdraw.Src, nil)
	}

	return ScanoutResult{
		Image:       out,
		InnerWidth:  outWidth,
		InnerHeight: height,
	}
}

func (r *HeadlessRenderer) ConsumeFlushStats() FlushStats {
	stats := r.stats
	r.stats = FlushStats{}
	return stats
}

func (r *HeadlessRenderer) AccumulatedTimestamps(t TimestampType) float64 {
	return r.timestamps[t]
}
