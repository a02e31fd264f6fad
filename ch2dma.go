// ch2dma.go - Ch2 DMA engine: streams CPU RAM into the TA FIFO in 32-byte
// bursts.
//
// Grounded on the same burst-loop shape as mapledma.go (a fixed-size
// transfer unit copied in a loop, with a length check up front and
// completion bookkeeping at the end) adapted to Holly's single source
// (system RAM) and destination (the TA FIFO), with a 200-cycle
// completion-interrupt delay.

package hollycore

import "encoding/binary"

const ch2BurstBytes = 32

// Ch2DMA owns the RAM-to-TA-FIFO burst loop. It never runs concurrently
// with the interpreter: the scheduler only fires EventCh2DMA from the
// outer step loop, the same serialization point every other event handler
// runs at.
type Ch2DMA struct {
	bus *Bus
	sb  *SystemBlock
	ta  *TAParser
}

func NewCh2DMA(bus *Bus, sb *SystemBlock, ta *TAParser) *Ch2DMA {
	return &Ch2DMA{bus: bus, sb: sb, ta: ta}
}

// Run executes the full transfer described by SAR2/C2DLEN/DMATCR2 in one
// call: the scheduler models DMA completion as a single deferred event
// rather than one event per burst, since no other component can observe a
// transfer mid-flight. A length/DMATCR2 mismatch is architecturally
// unrecoverable and returned as a *FatalError.
func (d *Ch2DMA) Run() error {
	length := d.sb.ReadC2DLEN()
	tcrBursts := d.sb.ReadDMATCR2()

	if length == 0 {
		// zero-length transfer: no RAM read, registers still clear and the
		// completion interrupt still fires.
		d.finish()
		return nil
	}

	if length%ch2BurstBytes != 0 || length/ch2BurstBytes != tcrBursts {
		return newFatal(0, nil, "ch2 dma length %d mismatches DMATCR2 %d", length, tcrBursts)
	}

	ram := d.bus.RAM()
	sar := d.sb.ReadSAR2()
	dest := d.sb.ReadC2DSTAT() // destination address the launching driver programmed
	bursts := length / ch2BurstBytes

	for i := uint32(0); i < bursts; i++ {
		var words [8]uint32
		for w := 0; w < 8; w++ {
			off := (sar - RegionSystemRAMStart + uint32(w)*4) % uint32(len(ram))
			words[w] = binary.LittleEndian.Uint32(ram[off:])
		}
		if inRange(dest, RegionTAFIFOStart, RegionTAFIFOEnd) {
			if err := d.ta.IngestRecord(0, words); err != nil {
				return err
			}
		}
		sar += ch2BurstBytes
	}

	d.sb.WriteSAR2(sar)
	d.finish()
	return nil
}

// finish clears the launch registers and schedules normal-IRQ bits 3 and 4
// (the same status bits the sync pulse generator raises for VBlank-in/out;
// Holly's status plane reuses them for Ch2 completion too, per the memory
// map this core follows).
func (d *Ch2DMA) finish() {
	d.sb.finishCh2()
	d.sb.sched.Schedule(EventRaiseIRLNormal, 200, 1<<NormalBitVBlankIn|1<<NormalBitVBlankOut)
}
