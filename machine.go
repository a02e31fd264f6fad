// machine.go - top-level wiring: owns every subsystem, drains scheduler
// events, and drives the CPU's step loop.
//
// Grounded on machine_bus.go's single-owner graph (one root struct holds
// every peripheral by value or unique pointer; the bus and DMA engines hold
// back-references to what they need, never the whole graph) generalized
// from a single 68000 bus to the nine-owner SH4 physical map this core
// dispatches across.

package hollycore

// frameEndCycles is the fixed period, in SH4 cycles, of the Holly-side
// frame-cycle anchor: independent of the SPG's own programmable scanline
// thresholds, it is the hardware's fallback timing domain for deriving the
// current scanline without reading the SPG's live counter.
const frameEndCycles = 3_333_333

// Machine owns the full hardware graph and the scheduler that drives it.
type Machine struct {
	sched *Scheduler
	video *VideoSubsystem
	intc  *INTC
	tmu   *TMU
	sb    *SystemBlock
	spg   *SPG
	ta    *TAParser
	ch2   *Ch2DMA
	maple *MapleDMA
	bus   *Bus
	cpu   *CPU

	lastSpgTick uint64

	onFrame func(DisplayList, FrameSnapshot)
}

// NewMachine constructs every subsystem and wires their cross-references.
// Construction order matters: the scheduler and system block have no
// dependencies, everything else is built outward from them.
func NewMachine() *Machine {
	sched := NewScheduler()
	video := NewVideoSubsystem()
	intc := NewINTC()
	tmu := NewTMU()
	sb := NewSystemBlock(intc, sched)
	spg := NewSPG(sb)
	ta := NewTAParser(sched, video, sb)
	bus := NewBus(video, sb, intc, tmu, ta)
	ch2 := NewCh2DMA(bus, sb, ta)
	maple := NewMapleDMA(bus, sb)
	cpu := NewCPU(bus, intc, sched)

	m := &Machine{
		sched: sched, video: video, intc: intc, tmu: tmu, sb: sb,
		spg: spg, ta: ta, ch2: ch2, maple: maple, bus: bus, cpu: cpu,
	}
	spg.SetOnVBlank(m.handleVBlank)
	return m
}

// AttachPeripheral wires a Maple responder to one of the four controller
// ports.
func (m *Machine) AttachPeripheral(port int, p MaplePeripheral) {
	m.maple.AttachPeripheral(port, p)
}

// SetFrameHandler registers the callback invoked at every VBlank-in with the
// frame's accumulated display list and a VRAM snapshot.
func (m *Machine) SetFrameHandler(fn func(DisplayList, FrameSnapshot)) {
	m.onFrame = fn
}

// Bus exposes the memory router for loaders that need to seed boot ROM,
// flash or system RAM directly.
func (m *Machine) Bus() *Bus { return m.bus }

// CPU exposes the interpreter for debug front-ends.
func (m *Machine) CPU() *CPU { return m.cpu }

// Reset restores every owned subsystem to its power-on state and arms the
// first sync-pulse event.
func (m *Machine) Reset() {
	m.sched.Reset()
	m.video.Reset()
	m.intc.Reset()
	m.tmu.Reset()
	m.sb.Reset()
	m.spg.Reset()
	m.ta.Reset()
	m.bus.Reset()
	m.cpu.Reset()
	m.spg.SetOnVBlank(m.handleVBlank)
	m.lastSpgTick = 0

	// Default NTSC-ish timing: 480 lines, vblank-in at line 480 and
	// vblank-out/active-start at line 40, matching a 525-line interlaced
	// frame at a 27MHz pixel clock.
	m.spg.Configure(857, 525, 480, 40, 480, 40)
	m.sched.Schedule(EventSpgSync, 0, 0)
	m.sched.Schedule(EventFrameEnd, frameEndCycles, 0)
}

// ShortcutBoot skips the BIOS validation/bootstrap sequence: it seeds the
// minimal register state a post-BIOS program expects and points PC directly
// at the loaded program's entry point. Real firmware performs a slower
// sequence (syscon handshake, GD-ROM spin-up, IP.BIN relocation) this core
// does not model.
func (m *Machine) ShortcutBoot(entry uint32) {
	m.cpu.pc = entry
	m.cpu.sr = 1<<srBitMD | 1<<srBitRB | srIMask
	m.cpu.fpscr = 1 << fpscrBitPR
	m.cpu.SetR(15, RegionSystemRAMStart+systemRAMSize-16)
}

// Step runs exactly one CPU instruction, advances every time-driven
// subsystem by the cycles it consumed, and drains any scheduler events that
// became due.
func (m *Machine) Step() error {
	cycles, err := m.cpu.Step()
	if err != nil {
		return err
	}
	m.sched.Advance(uint64(cycles))
	m.tmu.Tick(m.sched, uint32(cycles))
	return m.drainEvents()
}

// drainEvents pops and dispatches every event at or before the current
// clock, then recalculates the aggregate interrupt lines exactly once if
// anything changed the status/mask planes.
func (m *Machine) drainEvents() error {
	for {
		ev, ok := m.sched.Tick()
		if !ok {
			break
		}
		if err := m.dispatch(ev); err != nil {
			return err
		}
	}
	if m.sb.NeedsRecalc() {
		m.sb.RecalcInterrupts()
	}
	return nil
}

func (m *Machine) dispatch(ev Event) error {
	switch ev.Kind {
	case EventSpgSync:
		delta := uint32(m.sched.Now() - m.lastSpgTick)
		m.lastSpgTick = m.sched.Now()
		m.spg.HandleSpgSync(m.sched, delta)
	case EventCh2DMA:
		return m.ch2.Run()
	case EventMapleDMA:
		return m.maple.Run()
	case EventRaiseIRLNormal:
		m.sb.RaiseNormal(ev.Payload)
	case EventRaiseIRLExternal:
		m.sb.RaiseExternal(ev.Payload)
	case EventLowerIRLExternal:
		m.sb.LowerExternal(ev.Payload)
	case EventRecalcInterrupts:
		m.sb.RecalcInterrupts()
	case EventSH4RaiseIRL:
		m.intc.Raise(InterruptSource(ev.Payload))
	case EventFrameEnd:
		m.sb.MarkFrameBoundary(m.sched.Now())
		m.sched.Schedule(EventFrameEnd, frameEndCycles, 0)
	case EventGdromPhase:
		// GD-ROM phase stepping belongs to the optical-drive loader, which
		// this core does not model; a scheduled phase event is a no-op here.
	}
	return nil
}

// handleVBlank fires at the vblank-in scanline: it hands the frame's
// accumulated display list and a VRAM snapshot to whatever host front-end
// registered a handler, then resets the builder for the next frame.
func (m *Machine) handleVBlank() {
	if m.onFrame == nil {
		m.ta.TakeFrame()
		return
	}
	list := m.ta.TakeFrame()
	snap := m.video.Snapshot(640, 480)
	m.onFrame(list, snap)
}
