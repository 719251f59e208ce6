package gs

// HOST->LOCAL accumulator and the LOCAL->LOCAL / LOCAL->HOST kickoff
type transferState struct {
	copy CopyDescriptor

	hostToLocalPayload []uint64
	hostToLocalActive  bool
	requiredQwords     uint32

	// Qwords already emitted by partial flushes, so re-emitting a
	// partially sent transfer does not duplicate work
	lastFlushedQwords uint32
}

// TRXDIR was written; decode and kick off the transfer
func (gs *GSInterface) initTransfer() {
	gs.flushPendingTransfer(false)

	ts := &gs.transferState
	ts.copy.Trxdir = gs.registers.Trxdir
	ts.copy.Trxreg = gs.registers.Trxreg
	ts.copy.Trxpos = gs.registers.Trxpos
	ts.copy.Bitbltbuf = gs.registers.Bitbltbuf

	switch ts.copy.Trxdir.XDIR() {
	case LOCAL_TO_LOCAL:
		dstRect := ComputePageRect(ts.copy.Bitbltbuf.DBP(),
			ts.copy.Trxpos.DSAX(), ts.copy.Trxpos.DSAY(),
			ts.copy.Trxreg.RRW(), ts.copy.Trxreg.RRH(),
			ts.copy.Bitbltbuf.DBW(), ts.copy.Bitbltbuf.DPSM())

		srcRect := ComputePageRect(ts.copy.Bitbltbuf.SBP(),
			ts.copy.Trxpos.SSAX(), ts.copy.Trxpos.SSAY(),
			ts.copy.Trxreg.RRW(), ts.copy.Trxreg.RRH(),
			ts.copy.Bitbltbuf.SBW(), ts.copy.Bitbltbuf.SPSM())

		gs.tracker.MarkTransferCopy(dstRect, srcRect)
		if gs.tracker.InvalidateTextureCache(gs.renderPass.clutInstance) {
			gs.markTextureStateDirty()
		}

		copyDesc := ts.copy
		copyDesc.HostData = nil
		gs.renderer.CopyVRAM(&copyDesc)

	case HOST_TO_LOCAL:
		ts.requiredQwords = ts.copy.Trxreg.RRW() * ts.copy.Trxreg.RRH() *
			GetBitsPerPixel(ts.copy.Bitbltbuf.DPSM()) / 64
		// Await writes to HWREG
		ts.hostToLocalActive = ts.requiredQwords != 0

	case LOCAL_TO_HOST:
		srcRect := ComputePageRect(ts.copy.Bitbltbuf.SBP(),
			ts.copy.Trxpos.SSAX(), ts.copy.Trxpos.SSAY(),
			ts.copy.Trxreg.RRW(), ts.copy.Trxreg.RRH(),
			ts.copy.Bitbltbuf.SBW(), ts.copy.Bitbltbuf.SPSM())

		// Queue the readback; the host waits on the returned timeline
		// and then maps the pages.
		gs.tracker.MarkReadback(srcRect)
	}
}

// Flushes once enough HWREG data has been received
func (gs *GSInterface) checkPendingTransfer() {
	ts := &gs.transferState
	if ts.hostToLocalActive && uint32(len(ts.hostToLocalPayload)) >= ts.requiredQwords {
		gs.flushPendingTransfer(false)
	}
}

// Emits the accumulated HOST->LOCAL payload. With keepAlive the
// accumulator survives so a partially flushed transfer can keep
// streaming; games may also just abandon it.
func (gs *GSInterface) flushPendingTransfer(keepAlive bool) {
	ts := &gs.transferState

	if ts.hostToLocalActive && uint32(len(ts.hostToLocalPayload)) > ts.lastFlushedQwords {
		if gs.debugMode.Enabled {
			if ts.copy.Bitbltbuf != gs.registers.Bitbltbuf {
				gs.debugLog("mismatch in bitbltbuf state")
			}
			if ts.copy.Trxpos != gs.registers.Trxpos {
				gs.debugLog("mismatch in trxpos state")
			}
			if ts.copy.Trxreg != gs.registers.Trxreg {
				gs.debugLog("mismatch in trxreg state")
			}
		}

		dstRect := ComputePageRect(ts.copy.Bitbltbuf.DBP(),
			ts.copy.Trxpos.DSAX(), ts.copy.Trxpos.DSAY(),
			ts.copy.Trxreg.RRW(), ts.copy.Trxreg.RRH(),
			ts.copy.Bitbltbuf.DBW(), ts.copy.Bitbltbuf.DPSM())

		gs.tracker.MarkTransferWrite(dstRect)
		if gs.tracker.InvalidateTextureCache(gs.renderPass.clutInstance) {
			gs.markTextureStateDirty()
		}

		copyDesc := ts.copy
		copyDesc.HostData = ts.hostToLocalPayload
		copyDesc.HostDataSizeOffset = ts.lastFlushedQwords * 8
		copyDesc.HostDataSizeRequired = ts.requiredQwords * 8
		gs.renderer.CopyVRAM(&copyDesc)

		// Very possibly we flushed early and never receive more data
		// until the game kicks a new transfer.
		ts.lastFlushedQwords = uint32(len(ts.hostToLocalPayload))
	}

	if !keepAlive {
		ts.hostToLocalPayload = ts.hostToLocalPayload[:0]
		ts.lastFlushedQwords = 0
		ts.hostToLocalActive = false
	}
}

// Normally spammed by GIFTag IMAGE mode, but nothing stops an
// application from writing HWREG on its own
func (gs *GSInterface) hwregWrite(payload uint64) {
	ts := &gs.transferState
	if ts.hostToLocalActive {
		ts.hostToLocalPayload = append(ts.hostToLocalPayload, payload)
		gs.checkPendingTransfer()
	}
}

func (gs *GSInterface) hwregWriteMulti(payload []uint64) {
	ts := &gs.transferState
	if ts.hostToLocalActive {
		ts.hostToLocalPayload = append(ts.hostToLocalPayload, payload...)
		gs.checkPendingTransfer()
	}
}
