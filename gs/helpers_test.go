package gs

import "testing"

// Records every renderer call the core makes
type traceRenderer struct {
	vram []byte

	flushedPasses  []RenderPassDesc
	flushReasons   []FlushReason
	copies         []CopyDescriptor
	paletteUploads []PaletteUploadDescriptor

	transferFlushes  int
	overlapBarriers  int
	cacheUploads     int
	hostVRAMCopies   int
	readbacks        int
	createdTextures  int
	submits          []uint64
	waits            []uint64
	nextClutInstance uint32
}

func (r *traceRenderer) Init(options *GSOptions) bool {
	r.vram = make([]byte, options.VRAMSize)
	return true
}

func (r *traceRenderer) FlushRendering(rp *RenderPassDesc) {
	// Snapshot: the core recycles the backing slices after the call
	snapshot := *rp
	snapshot.Positions = append([]VertexPosition(nil), rp.Positions...)
	snapshot.Attributes = append([]VertexAttribute(nil), rp.Attributes...)
	snapshot.Prims = append([]PrimitiveAttribute(nil), rp.Prims...)
	snapshot.States = append([]StateVector(nil), rp.States...)
	snapshot.Textures = append([]TextureInfo(nil), rp.Textures...)
	r.flushedPasses = append(r.flushedPasses, snapshot)
	r.flushReasons = append(r.flushReasons, rp.Reason)
}

func (r *traceRenderer) FlushTransfer()          { r.transferFlushes++ }
func (r *traceRenderer) TransferOverlapBarrier() { r.overlapBarriers++ }
func (r *traceRenderer) FlushCacheUpload()       { r.cacheUploads++ }

func (r *traceRenderer) FlushHostVRAMCopy(pages []uint32) { r.hostVRAMCopies += len(pages) }
func (r *traceRenderer) FlushReadback(pages []uint32)     { r.readbacks += len(pages) }

func (r *traceRenderer) CopyVRAM(desc *CopyDescriptor) {
	snapshot := *desc
	snapshot.HostData = append([]uint64(nil), desc.HostData...)
	r.copies = append(r.copies, snapshot)
}

func (r *traceRenderer) UpdatePaletteCache(desc PaletteUploadDescriptor) uint32 {
	r.paletteUploads = append(r.paletteUploads, desc)
	r.nextClutInstance++
	return r.nextClutInstance
}

func (r *traceRenderer) CreateCachedTexture(desc *TextureDescriptor) *TextureImage {
	r.createdTextures++
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

func (r *traceRenderer) InvalidateSuperSamplingState() {}

func (r *traceRenderer) BeginHostVRAMAccess() []byte { return r.vram }
func (r *traceRenderer) EndHostWriteVRAMAccess()     {}

func (r *traceRenderer) WaitTimeline(t uint64)  { r.waits = append(r.waits, t) }
func (r *traceRenderer) FlushSubmit(t uint64)   { r.submits = append(r.submits, t) }

func (r *traceRenderer) VSync(priv *PrivRegisterState, info VSyncInfo) ScanoutResult {
	return ScanoutResult{}
}

func (r *traceRenderer) ConsumeFlushStats() FlushStats            { return FlushStats{} }
func (r *traceRenderer) AccumulatedTimestamps(TimestampType) float64 { return 0 }

func newTestCore(t *testing.T) (*GSInterface, *traceRenderer) {
	t.Helper()
	renderer := &traceRenderer{}
	core := NewGSInterface(renderer)
	if !core.Init(&GSOptions{VRAMSize: 4 * 1024 * 1024}) {
		t.Fatal("core init failed")
	}
	return core, renderer
}

// Register word builders used across the tests

func frameWord(fbp, fbw uint32, psm PSM, fbmsk uint32) uint64 {
	return uint64(fbp) | uint64(fbw)<<16 | uint64(psm)<<24 | uint64(fbmsk)<<32
}

func zbufWord(zbp uint32, psm PSM, zmsk uint32) uint64 {
	return uint64(zbp) | uint64(psm&0xf)<<24 | uint64(zmsk)<<32
}

func scissorWord(x0, x1, y0, y1 uint32) uint64 {
	return uint64(x0) | uint64(x1)<<16 | uint64(y0)<<32 | uint64(y1)<<48
}

func testWord(zte, ztst uint32) uint64 {
	return uint64(zte)<<16 | uint64(ztst)<<17
}

func xyzWord(x, y, z uint32) uint64 {
	return uint64(x) | uint64(y)<<16 | uint64(z)<<32
}

func tex0Word(tbp0, tbw uint32, psm PSM, tw, th uint32) uint64 {
	return uint64(tbp0) | uint64(tbw)<<14 | uint64(psm)<<20 | uint64(tw)<<26 | uint64(th)<<30
}

func uvWord(u, v uint32) uint64 {
	return uint64(u) | uint64(v)<<16
}
