// holly_sb.go - Holly system block: tri-plane IRQ MMIO, DMA launchers.

package hollycore

// Normal-plane IRQ bit assignments this core raises directly.
const (
	NormalBitVBlankIn    = 3
	NormalBitVBlankOut   = 4
	NormalBitRetrace     = 5
	NormalBitOpaqueDone       = 7
	NormalBitOpaqueModDone    = 8
	NormalBitTransDone        = 9
	NormalBitTransModDone     = 10
	NormalBitPunchThroughDone = 21
	normalBitExtMirror        = 30 // mirrors ISTEXT != 0
	normalBitErrMirror        = 31 // mirrors ISTERR != 0
)

// SystemBlock is Holly's MMIO register plane: three IRQ status words
// (normal/external/error), each gated by three mask words (levels 2/4/6),
// plus the Ch2 and Maple DMA launch registers.
type SystemBlock struct {
	istnrm, istext, isterr uint32

	iml6nrm, iml6ext, iml6err uint32
	iml4nrm, iml4ext, iml4err uint32
	iml2nrm, iml2ext, iml2err uint32

	needRecalc bool

	// Ch2 DMA registers
	sar2, c2dstat uint32
	c2dlen        uint32
	dmatcr2       uint32
	c2dst         bool

	// Maple DMA registers
	mdstar uint32
	mden   bool
	mdst   bool

	// frameCycleAnchor is the scheduler cycle at which the last periodic
	// FrameEnd event fired; see MarkFrameBoundary.
	frameCycleAnchor uint64

	intc  *INTC
	sched *Scheduler
}

// NewSystemBlock wires the system block to the interrupt controller and
// scheduler it must raise events through. Peripherals never hold a
// back-reference beyond these two.
func NewSystemBlock(intc *INTC, sched *Scheduler) *SystemBlock {
	return &SystemBlock{intc: intc, sched: sched}
}

// Reset restores power-on defaults: all status/mask words zero, DMA
// registers idle.
func (sb *SystemBlock) Reset() {
	*sb = SystemBlock{intc: sb.intc, sched: sb.sched}
}

// updateMirrors keeps ISTNRM bits 30/31 in sync with ISTEXT/ISTERR.
func (sb *SystemBlock) updateMirrors() {
	sb.istnrm = evalBit(sb.istnrm, normalBitExtMirror, sb.istext != 0)
	sb.istnrm = evalBit(sb.istnrm, normalBitErrMirror, sb.isterr != 0)
}

// RaiseNormal sets bits in ISTNRM (write-1-to-clear plane, set directly by
// a peripheral rather than by the CPU) and flags a recalculation.
func (sb *SystemBlock) RaiseNormal(bits uint32) {
	sb.istnrm |= bits
	sb.updateMirrors()
	sb.needRecalc = true
}

func (sb *SystemBlock) RaiseExternal(bits uint32) {
	sb.istext |= bits
	sb.updateMirrors()
	sb.needRecalc = true
}

func (sb *SystemBlock) LowerExternal(bits uint32) {
	sb.istext &^= bits
	sb.updateMirrors()
	sb.needRecalc = true
}

func (sb *SystemBlock) RaiseError(bits uint32) {
	sb.isterr |= bits
	sb.updateMirrors()
	sb.needRecalc = true
}

// WriteISTNRM/EXT/ERR implement write-1-to-clear semantics.
func (sb *SystemBlock) WriteISTNRM(v uint32) {
	sb.istnrm &^= v
	sb.updateMirrors()
	sb.needRecalc = true
}
func (sb *SystemBlock) WriteISTEXT(v uint32) {
	sb.istext &^= v
	sb.updateMirrors()
	sb.needRecalc = true
}
func (sb *SystemBlock) WriteISTERR(v uint32) {
	sb.isterr &^= v
	sb.updateMirrors()
	sb.needRecalc = true
}

func (sb *SystemBlock) ReadISTNRM() uint32 { return sb.istnrm }
func (sb *SystemBlock) ReadISTEXT() uint32 { return sb.istext }
func (sb *SystemBlock) ReadISTERR() uint32 { return sb.isterr }

// Mask register writes store then flag a recalculation.
func (sb *SystemBlock) WriteIML6NRM(v uint32) { sb.iml6nrm = v; sb.needRecalc = true }
func (sb *SystemBlock) WriteIML6EXT(v uint32) { sb.iml6ext = v; sb.needRecalc = true }
func (sb *SystemBlock) WriteIML6ERR(v uint32) { sb.iml6err = v; sb.needRecalc = true }
func (sb *SystemBlock) WriteIML4NRM(v uint32) { sb.iml4nrm = v; sb.needRecalc = true }
func (sb *SystemBlock) WriteIML4EXT(v uint32) { sb.iml4ext = v; sb.needRecalc = true }
func (sb *SystemBlock) WriteIML4ERR(v uint32) { sb.iml4err = v; sb.needRecalc = true }
func (sb *SystemBlock) WriteIML2NRM(v uint32) { sb.iml2nrm = v; sb.needRecalc = true }
func (sb *SystemBlock) WriteIML2EXT(v uint32) { sb.iml2ext = v; sb.needRecalc = true }
func (sb *SystemBlock) WriteIML2ERR(v uint32) { sb.iml2err = v; sb.needRecalc = true }

// NeedsRecalc reports whether a status/mask write has happened since the
// last RecalcInterrupts event fired, so the caller knows whether to
// schedule one.
func (sb *SystemBlock) NeedsRecalc() bool { return sb.needRecalc }

// RecalcInterrupts computes the highest of the three aggregate levels
// (IRL9 from the level-6 plane, IRL11 from level-4, IRL13 from level-2)
// and raises the winning line via the INTC.
func (sb *SystemBlock) RecalcInterrupts() {
	sb.needRecalc = false

	level6 := (sb.istnrm&sb.iml6nrm)|(sb.istext&sb.iml6ext)|(sb.isterr&sb.iml6err) != 0
	level4 := (sb.istnrm&sb.iml4nrm)|(sb.istext&sb.iml4ext)|(sb.isterr&sb.iml4err) != 0
	level2 := (sb.istnrm&sb.iml2nrm)|(sb.istext&sb.iml2ext)|(sb.isterr&sb.iml2err) != 0

	switch {
	case level6:
		sb.intc.Raise(SrcIRL9)
	case level4:
		sb.intc.Raise(SrcIRL11)
	case level2:
		sb.intc.Raise(SrcIRL13)
	}
}

// WriteC2DST handles the Ch2 start trigger: writing 1 schedules a Ch2DMA
// event at delta=0, observed after the current instruction completes.
func (sb *SystemBlock) WriteC2DST(v uint32) {
	sb.c2dst = v&1 != 0
	if sb.c2dst {
		sb.sched.Schedule(EventCh2DMA, 0, 0)
	}
}

func (sb *SystemBlock) ReadC2DST() uint32 {
	if sb.c2dst {
		return 1
	}
	return 0
}

func (sb *SystemBlock) WriteSAR2(v uint32)    { sb.sar2 = v }
func (sb *SystemBlock) ReadSAR2() uint32      { return sb.sar2 }
func (sb *SystemBlock) WriteC2DSTAT(v uint32) { sb.c2dstat = v }
func (sb *SystemBlock) ReadC2DSTAT() uint32   { return sb.c2dstat }
func (sb *SystemBlock) WriteC2DLEN(v uint32)  { sb.c2dlen = v }
func (sb *SystemBlock) ReadC2DLEN() uint32    { return sb.c2dlen }
func (sb *SystemBlock) WriteDMATCR2(v uint32) { sb.dmatcr2 = v }
func (sb *SystemBlock) ReadDMATCR2() uint32   { return sb.dmatcr2 }

// WriteMDEN/MDST implement the Maple enable/start handshake: MDST only
// launches a transfer while MDEN is set.
func (sb *SystemBlock) WriteMDEN(v uint32) { sb.mden = v&1 != 0 }
func (sb *SystemBlock) ReadMDEN() uint32 {
	if sb.mden {
		return 1
	}
	return 0
}

func (sb *SystemBlock) WriteMDST(v uint32) {
	sb.mdst = v&1 != 0
	if sb.mdst && sb.mden {
		sb.sched.Schedule(EventMapleDMA, 0, 0)
	}
}

func (sb *SystemBlock) ReadMDST() uint32 {
	if sb.mdst {
		return 1
	}
	return 0
}

func (sb *SystemBlock) WriteMDSTAR(v uint32) { sb.mdstar = v }
func (sb *SystemBlock) ReadMDSTAR() uint32   { return sb.mdstar }

// finishCh2 clears the Ch2 launch registers on DMA completion.
func (sb *SystemBlock) finishCh2() {
	sb.c2dst = false
	sb.c2dlen = 0
	sb.dmatcr2 = 0
}

// finishMaple clears MDST on DMA completion.
func (sb *SystemBlock) finishMaple() {
	sb.mdst = false
}

// MarkFrameBoundary records the scheduler cycle of the periodic FrameEnd
// event. A host register that wants the live scanline without going
// through the SPG's own counter derives it from the cycle count elapsed
// since this anchor.
func (sb *SystemBlock) MarkFrameBoundary(now uint64) {
	sb.frameCycleAnchor = now
}

// CyclesSinceFrameBoundary returns how many cycles have elapsed since the
// last FrameEnd anchor, wrapping the same way the 64-bit scheduler clock
// itself does.
func (sb *SystemBlock) CyclesSinceFrameBoundary(now uint64) uint32 {
	return uint32(now - sb.frameCycleAnchor)
}
