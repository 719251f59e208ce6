package gs

import "image"

// Batching limits of the render-pass accumulator. Hitting any of these
// forces an Overflow flush.
const (
	MaxPrimitivesPerFlush = 0x4000
	MaxStateVectors       = 1024
	MaxTextures           = 0x4000
	CLUTInstances         = 1024
	NumMemoizedPalettes   = 16
)

// Vertex coordinates carry 4 fractional bits
const SUBPIXEL_BITS = 4

// FBW/TBW strides are in units of 64 pixels
const BUFFER_WIDTH_SCALE = 64

// Super sampling rate selector
type SuperSampling uint32

const (
	SSAA_X1 SuperSampling = iota
	SSAA_X2
	SSAA_X4
	SSAA_X8
	SSAA_X16
)

// GS core options
type GSOptions struct {
	VRAMSize      uint32
	SuperSampling SuperSampling
}

// Why a render pass was flushed
type FlushReason uint32

const (
	FLUSH_REASON_FB_POINTER FlushReason = iota
	FLUSH_REASON_OVERFLOW
	FLUSH_REASON_TEXTURE_HAZARD
	FLUSH_REASON_COPY_HAZARD
	FLUSH_REASON_SUBMISSION
)

func (r FlushReason) String() string {
	switch r {
	case FLUSH_REASON_FB_POINTER:
		return "FBPointer"
	case FLUSH_REASON_OVERFLOW:
		return "Overflow"
	case FLUSH_REASON_TEXTURE_HAZARD:
		return "TextureHazard"
	case FLUSH_REASON_COPY_HAZARD:
		return "CopyHazard"
	default:
		return "SubmissionFlush"
	}
}

// A vertex position in subpixel space plus depth
type VertexPosition struct {
	X, Y int32
	Z    float32
}

// Per-vertex shading attributes snapshotted at vertex kick
type VertexAttribute struct {
	S, T float32
	Q    float32
	RGBA uint32
	Fog  float32
	U, V uint16
}

// Per-primitive packed state
type PrimitiveAttribute struct {
	Tex    uint32
	Tex2   uint32
	State  uint32
	Fbmsk  uint32
	Fogcol uint32
	Alpha  uint32
	BB     [4]int16
}

// Deduplicated blend/combiner/dither state
type StateVector struct {
	BlendMode uint32
	Combiner  uint32
	DimxX     uint32
	DimxY     uint32
}

// GPU image handle owned by the downstream renderer
type TextureImage struct {
	Width  uint32
	Height uint32
}

// Image view plus normalized sampling region for one deduplicated texture
type TextureInfo struct {
	Image  *TextureImage
	Sizes  [4]float32 // width, height, 1/width, 1/height
	Region [4]float32 // minU, minV, maxU, maxV in texels
	Bias   [2]float32
}

// Effective texture rect covering all mip levels
type TextureRect struct {
	X, Y          uint32
	Width, Height uint32
	Levels        uint32
}

// Everything the renderer needs to synthesize one cached texture
type TextureDescriptor struct {
	Tex0        TEX0Reg
	Tex1        TEX1Reg
	Texa        TEXAReg
	MipTbp13    MIPTBPReg
	MipTbp46    MIPTBPReg
	Clamp       CLAMPReg
	PaletteBank uint32
	LatestBank  uint32
	Rect        TextureRect
	Hash        uint64
}

// One CLUT upload, normalized so equal uploads memoize
type PaletteUploadDescriptor struct {
	Tex0    TEX0Reg
	Texclut TEXCLUTReg
}

// One HOST->LOCAL or LOCAL->LOCAL VRAM transfer
type CopyDescriptor struct {
	Trxdir    TRXDIRReg
	Trxpos    TRXPOSReg
	Trxreg    TRXREGReg
	Bitbltbuf BITBLTBUFReg

	// HOST->LOCAL payload, in 64-bit quadword halves
	HostData             []uint64
	HostDataSizeOffset   uint32 // bytes already submitted by partial flushes
	HostDataSizeRequired uint32 // bytes of the complete transfer
}

// Framebuffer binding of one render pass
type FrameBufferDesc struct {
	Frame FRAMEReg
	Z     ZBUFReg
}

// One batched render pass, emitted atomically to the renderer
type RenderPassDesc struct {
	Positions  []VertexPosition
	Attributes []VertexAttribute
	Prims      []PrimitiveAttribute

	FB FrameBufferDesc

	States   []StateVector
	Textures []TextureInfo

	BaseX, BaseY       int32
	CoarseTileSizeLog2 uint32
	CoarseTilesWidth   uint32
	CoarseTilesHeight  uint32

	FeedbackTexture     bool
	FeedbackTexturePSM  PSM
	FeedbackTextureCPSM PSM

	ZSensitive bool
	HasAA1     bool
	HasScanmsk bool

	SamplingRateXLog2 uint32
	SamplingRateYLog2 uint32

	DebugCaptureStride uint32
	LabelKey           uint32
	Reason             FlushReason
}

// Vsync request parameters
type VSyncInfo struct {
	Phase          uint32
	ForceProgressive bool
	Overscan       bool
	AntiBlur       bool
}

// Scanout produced by the renderer at vsync
type ScanoutResult struct {
	Image     image.Image
	InnerWidth  uint32
	InnerHeight uint32
}

// Counters consumed by the front-end once per frame
type FlushStats struct {
	RenderPasses    uint32
	Primitives      uint32
	PaletteUpdates  uint32
	CopyBarriers    uint32
	Copies          uint32
	Readbacks       uint32
	CacheTextures   uint32
}

type TimestampType uint32

const (
	TIMESTAMP_RENDER TimestampType = iota
	TIMESTAMP_COPY
	TIMESTAMP_READBACK
	TIMESTAMP_COUNT
)

// Debug knobs; DrawDebugMode widens capture labels for stepping
type DrawDebugMode uint32

const (
	DRAW_DEBUG_NONE DrawDebugMode = iota
	DRAW_DEBUG_STRIDED
	DRAW_DEBUG_FULL
)

type DebugMode struct {
	DrawMode             DrawDebugMode
	FeedbackRenderTarget bool
	Enabled              bool
}

// The downstream GPU renderer consumed by the core. The core batches,
// the renderer rasterizes; they only meet at this interface.
type Renderer interface {
	Init(options *GSOptions) bool

	FlushRendering(rp *RenderPassDesc)
	FlushTransfer()
	TransferOverlapBarrier()
	FlushCacheUpload()
	FlushHostVRAMCopy(pages []uint32)
	FlushReadback(pages []uint32)

	CopyVRAM(desc *CopyDescriptor)
	UpdatePaletteCache(desc PaletteUploadDescriptor) uint32
	CreateCachedTexture(desc *TextureDescriptor) *TextureImage
	InvalidateSuperSamplingState()

	BeginHostVRAMAccess() []byte
	EndHostWriteVRAMAccess()
	WaitTimeline(t uint64)
	FlushSubmit(t uint64)

	VSync(priv *PrivRegisterState, info VSyncInfo) ScanoutResult
	ConsumeFlushStats() FlushStats
	AccumulatedTimestamps(t TimestampType) float64
}
