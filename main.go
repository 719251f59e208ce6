package main

import (
	"encoding/binary"
	"flag"
	"fmt"
	"image"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"

	"github.com/Virtua64/parallel-gs/gs"
)

const (
	displayWidth  = 640
	displayHeight = 448
)

// Builds one PACKED A+D GIF packet from (address, payload) pairs
func adPacket(writes ...[2]uint64) []byte {
	out := make([]byte, 16*(len(writes)+1))
	tag := uint64(len(writes)) | 1<<15 | 1<<60 // NLOOP, EOP, NREG=1
	binary.LittleEndian.PutUint64(out[0:], tag)
	binary.LittleEndian.PutUint64(out[8:], 0xe) // A+D descriptor

	for i, w := range writes {
		binary.LittleEndian.PutUint64(out[16*(i+1):], w[1])
		binary.LittleEndian.PutUint64(out[16*(i+1)+8:], w[0])
	}
	return out
}

// Builds an IMAGE-mode packet carrying raw transfer data
func imagePacket(data []byte) []byte {
	qwords := (len(data) + 15) / 16
	out := make([]byte, 16+qwords*16)
	tag := uint64(qwords) | 1<<15 | 2<<58 // NLOOP, EOP, FLG=IMAGE
	binary.LittleEndian.PutUint64(out[0:], tag)
	copy(out[16:], data)
	return out
}

type app struct {
	core    *gs.GSInterface
	scanout *ebiten.Image
	frame   uint32
	stats   gs.FlushStats
}

func (a *app) Update() error {
	// Stream a full-frame HOST->LOCAL upload through GIF path 2, the
	// way a game DMA would feed the GS.
	a.core.GIFTransfer(2, adPacket(
		[2]uint64{0x50, uint64(displayWidth/64) << 48},    // BITBLTBUF: DBP=0, DBW
		[2]uint64{0x51, 0},                                // TRXPOS
		[2]uint64{0x52, displayWidth | displayHeight<<32}, // TRXREG
		[2]uint64{0x53, 0},                                // TRXDIR: HOST->LOCAL
	))

	pixels := make([]byte, displayWidth*displayHeight*4)
	for y := 0; y < displayHeight; y++ {
		for x := 0; x < displayWidth; x++ {
			i := (y*displayWidth + x) * 4
			pixels[i+0] = byte(x + int(a.frame))
			pixels[i+1] = byte(y)
			pixels[i+2] = byte(x ^ y)
		}
	}
	// NLOOP is 15 bits, so a full frame spans several IMAGE packets
	const maxPacketBytes = 0x7fff * 16
	for off := 0; off < len(pixels); off += maxPacketBytes {
		end := off + maxPacketBytes
		if end > len(pixels) {
			end = len(pixels)
		}
		a.core.GIFTransfer(2, imagePacket(pixels[off:end]))
	}
	a.core.FlushAll()

	result := a.core.VSync(gs.VSyncInfo{Phase: a.frame & 1})
	if result.Image != nil {
		if rgba, ok := result.Image.(*image.RGBA); ok {
			if a.scanout == nil || a.scanout.Bounds() != rgba.Bounds() {
				a.scanout = ebiten.NewImage(rgba.Bounds().Dx(), rgba.Bounds().Dy())
			}
			a.scanout.WritePixels(rgba.Pix)
		}
	}

	a.stats = a.core.ConsumeFlushStats()
	a.frame++
	return nil
}

func (a *app) Draw(screen *ebiten.Image) {
	if a.scanout != nil {
		screen.DrawImage(a.scanout, nil)
	}
	ebitenutil.DebugPrint(screen, fmt.Sprintf(
		"frame %d\npasses %d prims %d\ncopies %d palettes %d",
		a.frame, a.stats.RenderPasses, a.stats.Primitives,
		a.stats.Copies, a.stats.PaletteUpdates))
}

func (a *app) Layout(outsideWidth, outsideHeight int) (int, int) {
	return displayWidth, displayHeight
}

func main() {
	vramSize := flag.Int("vram", 4*1024*1024, "VRAM size in bytes")
	ssaa := flag.Int("ssaa", 0, "super sampling rate (0=1x .. 4=16x)")
	flag.Parse()

	renderer := gs.NewHeadlessRenderer()
	core := gs.NewGSInterface(renderer)
	if !core.Init(&gs.GSOptions{
		VRAMSize:      uint32(*vramSize),
		SuperSampling: gs.SuperSampling(*ssaa),
	}) {
		log.Fatal("failed to initialize GS core")
	}

	// Point the scanout circuit at the frame buffer we stream into
	priv := core.PrivRegisterState()
	priv.Pmode = 1 // EN1
	priv.Dispfb1 = gs.DISPFBReg(uint64(displayWidth/64) << 9)
	priv.Display1 = gs.DISPLAYReg(uint64(displayWidth-1)<<32 | uint64(displayHeight-1)<<44)

	log.Printf("gs core up, %d MiB VRAM", *vramSize/(1024*1024))

	ebiten.SetWindowSize(displayWidth, displayHeight)
	ebiten.SetWindowTitle("parallel-gs")
	if err := ebiten.RunGame(&app{core: core}); err != nil {
		log.Fatal(err)
	}
}
