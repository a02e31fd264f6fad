// cpu_sh4.go - SH4 register file, fetch/decode/execute loop, delay slots,
// interrupt entry.
//
// Grounded on cpu.go's Registers/CPU split and Reset/Step shape: a plain
// struct of architectural state, a Bus interface for memory, and a Step
// method that fetches one instruction, dispatches it, and reports cycles
// consumed.

package hollycore

// SR bit positions this core tracks explicitly.
const (
	srBitT  = 0  // true/condition flag
	srBitS  = 1  // MAC saturation mode
	srBitI0 = 4  // interrupt mask, 4 bits wide (I3:I0)
	srBitQ  = 8  // DIV1 quotient bit
	srBitM  = 9  // DIV1 dividend-sign bit
	srBitFD = 15 // FPU disable
	srBitBL = 28 // interrupt block
	srBitRB = 29 // register bank
	srBitMD = 30 // privileged mode
)

const srIMask = 0xF << srBitI0

// fpscrBitRM  = rounding mode (bit 0)
// fpscrBitFlag, fpscrBitEnable, fpscrBitCause occupy 2..17 and are not
// separately modeled; this core only tracks the bits that change decode
// behavior.
const (
	fpscrBitSZ = 20 // move width: 0=32-bit, 1=64-bit
	fpscrBitPR = 19 // precision: 0=single, 1=double
	fpscrBitFR = 21 // FPU register bank select
)

// CPU is the SH4 interpreter's full architectural state.
type CPU struct {
	// General registers: two banks of R0..R7 (selected by SR.RB) plus a
	// common R8..R15.
	rbank [2][8]uint32
	rhigh [8]uint32 // R8..R15

	pc, pr, sr, ssr, spc, vbr, gbr, sgr, dbr uint32
	macl, mach                               uint32

	fpscr, fpul uint32
	fr          [2][16]uint32 // banked FR/XF, indexed by SR-independent FPSCR.FR

	bus   *Bus
	intc  *INTC
	sched *Scheduler

	delaySlotTarget uint32
	inDelaySlot     bool

	callStack []uint32 // debug-only logical call stack; no architectural effect

	halted bool
}

// NewCPU wires the interpreter to the bus, interrupt controller and
// scheduler (the latter only consulted for Now(), never advanced here).
func NewCPU(bus *Bus, intc *INTC, sched *Scheduler) *CPU {
	c := &CPU{bus: bus, intc: intc, sched: sched}
	c.Reset()
	return c
}

// Reset establishes the documented hardware reset state: bank 0 selected,
// privileged mode, interrupts masked at level 15, vectors zeroed.
func (c *CPU) Reset() {
	c.rbank = [2][8]uint32{}
	c.rhigh = [8]uint32{}
	c.pc, c.pr, c.ssr, c.spc, c.vbr, c.gbr, c.sgr, c.dbr = 0, 0, 0, 0, 0, 0, 0, 0
	c.macl, c.mach = 0, 0
	c.sr = 1<<srBitMD | 1<<srBitBL | srIMask
	c.fpscr = 1 << fpscrBitPR // reset value has PR set per hardware; shortcut-boot overrides it
	c.fpul = 0
	c.fr = [2][16]uint32{}
	c.inDelaySlot = false
	c.callStack = c.callStack[:0]
	c.halted = false
}

func (c *CPU) bankIndex() int {
	if checkBit(c.sr, srBitRB) {
		return 1
	}
	return 0
}

// R reads general register i (0..15), resolving the active bank for 0..7.
func (c *CPU) R(i int) uint32 {
	if i < 8 {
		return c.rbank[c.bankIndex()][i]
	}
	return c.rhigh[i-8]
}

// SetR writes general register i.
func (c *CPU) SetR(i int, v uint32) {
	if i < 8 {
		c.rbank[c.bankIndex()][i] = v
	} else {
		c.rhigh[i-8] = v
	}
}

func (c *CPU) t() bool      { return checkBit(c.sr, srBitT) }
func (c *CPU) setT(b bool)  { c.sr = evalBit(c.sr, srBitT, b) }

// fpBank resolves which of the two FR/XF banks is "FR" right now.
func (c *CPU) fpBank() int {
	if checkBit(c.fpscr, fpscrBitFR) {
		return 1
	}
	return 0
}
func (c *CPU) xfBank() int { return 1 - c.fpBank() }

func (c *CPU) FR(i int) uint32     { return c.fr[c.fpBank()][i] }
func (c *CPU) SetFR(i int, v uint32) { c.fr[c.fpBank()][i] = v }
func (c *CPU) XF(i int) uint32     { return c.fr[c.xfBank()][i] }
func (c *CPU) SetXF(i int, v uint32) { c.fr[c.xfBank()][i] = v }

// PendingInterruptLevel exposes the INTC's elected level for Step's
// boundary check.
func (c *CPU) PendingInterruptLevel() (uint8, bool) {
	return c.intc.PendingLevel()
}

// Step executes exactly one instruction (plus, when the instruction is a
// delay-slotted branch, its delay slot is fetched and executed as a
// second, separate instruction before the branch commits). Returns cycles
// consumed (always 1: this core does not model per-opcode timing).
func (c *CPU) Step() (cycles int, err error) {
	if !c.inDelaySlot {
		if level, ok := c.PendingInterruptLevel(); ok && !checkBit(c.sr, srBitBL) {
			curLevel := uint8(bitField(c.sr, srBitI0+3, srBitI0))
			if level > curLevel {
				if err := c.enterInterrupt(level); err != nil {
					return 0, err
				}
			}
		}
	}

	op, err := c.bus.Read16(c.pc, c.pc)
	if err != nil {
		return 0, err
	}

	pcBefore := c.pc
	branched, err := c.execute(op)
	if err != nil {
		return 0, err
	}

	if !branched {
		c.pc = pcBefore + 2
	}
	return 1, nil
}

// enterInterrupt performs the documented entry sequence: save PC/SR/R15,
// bank-swap, raise BL/MD/RB, set the new mask, vector to VBR+offset.
func (c *CPU) enterInterrupt(level uint8) error {
	_, ackLevel, ok := c.intc.Ack()
	if !ok {
		return nil
	}

	c.spc = c.pc
	c.ssr = c.sr
	c.sgr = c.R(15)

	c.sr = setBit(c.sr, srBitBL)
	c.sr = setBit(c.sr, srBitMD)
	c.sr = setBit(c.sr, srBitRB)
	c.sr &^= srIMask
	c.sr |= uint32(ackLevel) << srBitI0

	c.pc = c.vbr + 0x600
	return nil
}
