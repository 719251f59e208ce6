package gs

// 3-deep vertex queue feeding the primitive kick
type vertexQueueState struct {
	pos   [3]VertexPosition
	attr  [3]VertexAttribute
	count int
}

type primTopology uint8

const (
	TOPOLOGY_LIST primTopology = iota
	TOPOLOGY_STRIP
	TOPOLOGY_FAN
)

// Kick behavior per primitive type. NumVertices == 0 marks the invalid
// primitive that discards all vertex kicks.
type primKickInfo struct {
	NumVertices int
	Topology    primTopology
	Quad        bool
}

var primKickTable = [8]primKickInfo{
	PRIM_POINT:          {NumVertices: 1, Topology: TOPOLOGY_LIST, Quad: true},
	PRIM_LINE_LIST:      {NumVertices: 2, Topology: TOPOLOGY_LIST},
	PRIM_LINE_STRIP:     {NumVertices: 2, Topology: TOPOLOGY_STRIP},
	PRIM_TRIANGLE_LIST:  {NumVertices: 3, Topology: TOPOLOGY_LIST},
	PRIM_TRIANGLE_STRIP: {NumVertices: 3, Topology: TOPOLOGY_STRIP},
	PRIM_TRIANGLE_FAN:   {NumVertices: 3, Topology: TOPOLOGY_FAN},
	PRIM_SPRITE:         {NumVertices: 2, Topology: TOPOLOGY_LIST, Quad: true},
	PRIM_INVALID:        {},
}

func (gs *GSInterface) shiftVertexQueue() {
	q := &gs.vertexQueue
	if q.count == 3 {
		q.pos[0] = q.pos[1]
		q.attr[0] = q.attr[1]
		q.pos[1] = q.pos[2]
		q.attr[1] = q.attr[2]
		q.count = 2
	}
}

func (gs *GSInterface) snapshotAttributes(attr *VertexAttribute) {
	r := &gs.registers
	attr.S = r.St.S()
	attr.T = r.St.T()
	attr.Q = r.Rgbaq.Q()
	attr.RGBA = r.Rgbaq.RGBA()
	attr.U = uint16(r.Uv.U())
	attr.V = uint16(r.Uv.V())
}

func (gs *GSInterface) vertexKickXYZ(xyz XYZReg) {
	gs.shiftVertexQueue()
	q := &gs.vertexQueue

	pos := &q.pos[q.count]
	pos.X = int32(xyz.X())
	pos.Y = int32(xyz.Y())
	pos.Z = float32(xyz.Z())

	attr := &q.attr[q.count]
	gs.snapshotAttributes(attr)
	attr.Fog = float32(gs.registers.Fog.FOG())

	q.count++
}

func (gs *GSInterface) vertexKickXYZF(xyzf XYZFReg) {
	gs.shiftVertexQueue()
	q := &gs.vertexQueue

	pos := &q.pos[q.count]
	pos.X = int32(xyzf.X())
	pos.Y = int32(xyzf.Y())
	pos.Z = float32(xyzf.Z())

	attr := &q.attr[q.count]
	gs.snapshotAttributes(attr)
	attr.Fog = float32(xyzf.F())

	q.count++
}

func (gs *GSInterface) resetVertexQueue() {
	gs.vertexQueue.count = 0
}

// Appends one drawable primitive to the open render pass
func (gs *GSInterface) drawingKickAppend(info primKickInfo) {
	prim := gs.registers.Prim
	ctx := &gs.registers.Ctx[prim.CTXT()]
	q := &gs.vertexQueue
	rp := &gs.renderPass

	var attr [3]VertexAttribute
	var pos [3]VertexPosition

	offX := int32(ctx.XYOffset.OFX())
	offY := int32(ctx.XYOffset.OFY())

	switch info.NumVertices {
	case 1:
		pos[0] = q.pos[q.count-1]
		attr[0] = q.attr[q.count-1]
		pos[0].X -= offX + (1 << (SUBPIXEL_BITS - 1))
		pos[0].Y -= offY + (1 << (SUBPIXEL_BITS - 1))
		// Points raster as a 1x1 parallelogram
		pos[1] = pos[0]
		pos[1].X += 1 << SUBPIXEL_BITS
		pos[1].Y += 1 << SUBPIXEL_BITS
	case 2:
		for i := 0; i < 2; i++ {
			pos[i] = q.pos[q.count-1-i]
			attr[i] = q.attr[q.count-1-i]
			pos[i].X -= offX
			pos[i].Y -= offY
		}
	case 3:
		for i := 0; i < 3; i++ {
			pos[i] = q.pos[2-i]
			attr[i] = q.attr[2-i]
			pos[i].X -= offX
			pos[i].Y -= offY
		}
	}

	loX := int32(minInt(int(pos[0].X), int(pos[1].X)))
	loY := int32(minInt(int(pos[0].Y), int(pos[1].Y)))
	hiX := int32(maxInt(int(pos[0].X), int(pos[1].X)))
	hiY := int32(maxInt(int(pos[0].Y), int(pos[1].Y)))

	isLine := !info.Quad && info.NumVertices == 2

	if !info.Quad && !isLine {
		loX = int32(minInt(int(loX), int(pos[2].X)))
		loY = int32(minInt(int(loY), int(pos[2].Y)))
		hiX = int32(maxInt(int(hiX), int(pos[2].X)))
		hiY = int32(maxInt(int(hiY), int(pos[2].Y)))
	}

	hiX--
	hiY--
	// Tighten the bounding box according to top-left raster rules
	if info.Quad || !prim.AA1() {
		inclusive := int32(1<<(SUBPIXEL_BITS-gs.samplingRateYLog2)) - 1
		loX += inclusive
		loY += inclusive
	}

	loX >>= SUBPIXEL_BITS
	loY >>= SUBPIXEL_BITS
	hiX >>= SUBPIXEL_BITS
	hiY >>= SUBPIXEL_BITS

	// Account for line expansion just to be safe
	if isLine {
		loX--
		loY--
		hiX++
		hiY++
	}

	loX = int32(maxInt(int(loX), int(ctx.Scissor.SCAX0())))
	loY = int32(maxInt(int(loY), int(ctx.Scissor.SCAY0())))
	hiX = int32(minInt(int(hiX), int(ctx.Scissor.SCAX1())))
	hiY = int32(minInt(int(hiY), int(ctx.Scissor.SCAY1())))

	hiX = int32(minInt(int(hiX), int(ctx.Frame.FBW()*BUFFER_WIDTH_SCALE)-1))
	bb := [4]int32{loX, loY, hiX, hiY}

	// Completely clipped away by scissor
	if bb[2] < bb[0] || bb[3] < bb[1] {
		return
	}

	gs.updateColorFeedbackState()
	feedbackMode := FEEDBACK_NONE
	var uvBB [4]int32
	if rp.isColorFeedback {
		feedbackMode = gs.deduceColorFeedbackMode(info.Quad, info.NumVertices,
			pos[:], attr[:], &uvBB, bb)
	}

	// The HWREG write technically lands immediately; a texture read may
	// depend on a partial transfer, so flush it before dirty checks.
	if prim.TME() && gs.transferState.hostToLocalActive &&
		uint32(len(gs.transferState.hostToLocalPayload)) > gs.transferState.lastFlushedQwords {
		gs.debugLog("flushing partial transfer due to texture read")
		gs.flushPendingTransfer(true)
	}

	// Even with no state changes, hazards have to be considered. A
	// hazard sets dirty bits, re-triggering the state checks.
	gs.checkFrameBufferState()

	// Make sure it's still safe to read the texture in use. Only when
	// the dirty flag is clear; otherwise texture resolution checks it.
	if prim.TME() && gs.stateTracker.dirtyFlags&STATE_DIRTY_TEX_BIT == 0 {
		gs.texturePageRectsRead()
	}

	gs.drawingKickUpdateState(feedbackMode, uvBB, bb)
	primState := &gs.stateTracker.primTmpl

	var primAttr PrimitiveAttribute
	primAttr.Tex = primState.tex
	primAttr.Tex2 = primState.tex2
	primAttr.State = primState.state
	primAttr.Fbmsk = ctx.Frame.FBMSK()
	primAttr.Fogcol = uint32(uint64(gs.registers.Fogcol))
	primAttr.Alpha = (ctx.Alpha.FIX() << ALPHA_AFIX_OFFSET) |
		(ctx.Test.AREF() << ALPHA_AREF_OFFSET)

	if info.Quad {
		primAttr.State |= 1 << STATE_BIT_PARALLELOGRAM
		primAttr.State |= 1 << STATE_BIT_SPRITE
		primAttr.State |= 1 << STATE_BIT_SNAP_RASTER
		primAttr.State &^= 1 << STATE_BIT_MULTISAMPLE
	} else if isLine {
		primAttr.State |= 1 << STATE_BIT_PARALLELOGRAM
		primAttr.State |= 1 << STATE_BIT_LINE
		// Lines never have full coverage; with AA1, never write Z
		if primAttr.State&(1<<STATE_BIT_MULTISAMPLE) != 0 {
			primAttr.State &^= 1 << STATE_BIT_Z_WRITE
		}
	}

	if info.NumVertices == 1 {
		// Nothing to interpolate, and rounding must generate the exact
		// pixel games rely on.
		primAttr.State |= 1 << STATE_BIT_FIX
		primAttr.State |= 1 << STATE_BIT_SNAP_RASTER
	}

	// Re-mark hazards only when the damage region expands; remarking
	// every single draw is too costly.
	rpExpands := false
	isZSensitive := gs.stateIsZSensitive()

	// No Z pages to at least read-only Z
	if !rp.zSensitive && isZSensitive {
		rp.zSensitive = true
		rpExpands = true
	}

	// Read-only Z to read-write Z
	if isZSensitive && !ctx.Zbuf.ZMSK() && !rp.zWrite {
		rp.zWrite = true
		// With Z writes existing, a feedback may exist that didn't before
		gs.stateTracker.dirtyFlags |= STATE_DIRTY_FEEDBACK_BIT
		rpExpands = true
	}

	// Color write mask increases, redamage all pages
	writeMask := ^ctx.Frame.FBMSK()
	if writeMask&rp.colorWriteMask != writeMask {
		rp.colorWriteMask |= writeMask
		rpExpands = true
	}

	if bb[0] < rp.bb[0] {
		rpExpands = true
		rp.bb[0] = bb[0]
	}
	if bb[1] < rp.bb[1] {
		rpExpands = true
		rp.bb[1] = bb[1]
	}
	if bb[2] > rp.bb[2] {
		rpExpands = true
		rp.bb[2] = bb[2]
	}
	if bb[3] > rp.bb[3] {
		rpExpands = true
		rp.bb[3] = bb[3]
	}

	if rpExpands {
		// Conservative: damage every page the pass BB covers
		fbRect := gs.computeFBRect(rp.bb)
		fbRect.WriteMask &= rp.colorWriteMask
		gs.tracker.MarkFBWrite(fbRect)

		if rp.zSensitive {
			zRect := gs.computeZRect(rp.bb)
			if rp.zWrite {
				gs.tracker.MarkFBWrite(zRect)
			} else {
				gs.tracker.MarkFBRead(zRect)
			}
		}
	}

	primAttr.BB = [4]int16{int16(bb[0]), int16(bb[1]), int16(bb[2]), int16(bb[3])}

	rp.prim = append(rp.prim, primAttr)
	rp.positions = append(rp.positions, pos[:]...)
	rp.attributes = append(rp.attributes, attr[:]...)
	rp.primitiveCount++

	// If resolving state flushed the render pass, stray dirty bits can
	// remain set; the primitive we just placed consumed them all.
	gs.stateTracker.dirtyFlags = 0
}

func (gs *GSInterface) drawingKickMaintainQueue(info primKickInfo) {
	q := &gs.vertexQueue
	switch info.Topology {
	case TOPOLOGY_FAN:
		q.pos[1] = q.pos[2]
		q.attr[1] = q.attr[2]
		q.count = 2
	case TOPOLOGY_LIST:
		q.count = 0
	}
	// Strip primitives shift the queue on the next vertex kick
}

// Runs the primitive kick for the cached PRIM type
func (gs *GSInterface) drawingKick(adc bool) {
	info := gs.drawInfo

	if info.NumVertices == 0 {
		// Invalid primitive: flush the queue, do nothing otherwise
		gs.vertexQueue.count = 0
		return
	}

	if gs.vertexQueue.count < info.NumVertices {
		return
	}

	if !adc && !gs.drawIsDegenerate() {
		gs.drawingKickAppend(info)
	}

	// Queue maintenance runs regardless of ADC or degeneracy
	gs.drawingKickMaintainQueue(info)
	gs.postDrawKickHandler()
}

// Automatic overflow flush once any accumulator hits its cap
func (gs *GSInterface) postDrawKickHandler() {
	rp := &gs.renderPass
	if rp.pendingPaletteUpdates >= CLUTInstances ||
		rp.primitiveCount >= MaxPrimitivesPerFlush ||
		len(rp.texInfos) >= MaxTextures ||
		len(rp.stateVectors) >= MaxStateVectors {
		gs.flushPendingTransfer(true)
		gs.tracker.FlushRenderPass(FLUSH_REASON_OVERFLOW)
	}
}
