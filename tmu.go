// tmu.go - timer unit: three down-counting channels with prescalers.

package hollycore

// tmuPrescale maps TCR[2:0] to a cycle divisor.
var tmuPrescale = [8]uint32{4, 16, 64, 256, 1024, 1, 1, 1} // 5,6,7 reserved/external, treated as 1:1.

const (
	tcrUNF  = 1 << 8 // underflow flag
	tcrUNIE = 1 << 5 // underflow interrupt enable
)

// tmuChannel is one of the three TMU channels: control (TCR), counter
// (TCNT), and reload constant (TCOR).
type tmuChannel struct {
	tcr        uint32
	tcnt       uint32
	tcor       uint32
	accumulated uint32 // cycles accumulated toward the next prescaled tick
}

// TMU owns the three SH4 timer channels plus the shared start/stop register.
type TMU struct {
	tstr     uint32 // bits 0..2 enable channels 0..2
	channels [3]tmuChannel
	tuniSrc  [3]InterruptSource
}

// NewTMU returns a TMU with all channels stopped and counters zeroed.
func NewTMU() *TMU {
	t := &TMU{tuniSrc: [3]InterruptSource{SrcTMUTUNI0, SrcTMUTUNI1, SrcTMUTUNI2}}
	return t
}

// Reset restores power-on defaults: TSTR=0, all TCNT/TCOR/TCR zeroed.
func (t *TMU) Reset() {
	t.tstr = 0
	for i := range t.channels {
		t.channels[i] = tmuChannel{}
	}
}

func (t *TMU) channelEnabled(ch int) bool {
	return checkBit(t.tstr, uint(ch))
}

// Tick advances every enabled channel by cycles CPU clocks, each
// enabled channel accumulates cycles; when the accumulation reaches the
// channel's prescaler, TCNT decrements by one; on underflow TCOR reloads,
// the UNF flag sets, and if UNIE is set the matching TUNI is scheduled
// 200 cycles out.
func (t *TMU) Tick(sched *Scheduler, cycles uint32) {
	for i := range t.channels {
		if !t.channelEnabled(i) {
			continue
		}
		ch := &t.channels[i]
		prescale := tmuPrescale[bitField(ch.tcr, 2, 0)]
		ch.accumulated += cycles
		for ch.accumulated >= prescale {
			ch.accumulated -= prescale
			if ch.tcnt == 0 {
				ch.tcnt = ch.tcor
				ch.tcr |= tcrUNF
				if ch.tcr&tcrUNIE != 0 {
					sched.Schedule(EventSH4RaiseIRL, 200, uint32(t.tuniSrc[i]))
				}
			} else {
				ch.tcnt--
			}
		}
	}
}

func (t *TMU) ReadTSTR() uint32 { return t.tstr }
func (t *TMU) WriteTSTR(v uint32) { t.tstr = v & 0x7 }

func (t *TMU) ReadTCR(ch int) uint32   { return t.channels[ch].tcr }
func (t *TMU) WriteTCR(ch int, v uint32) { t.channels[ch].tcr = v & 0x3FF }

func (t *TMU) ReadTCNT(ch int) uint32    { return t.channels[ch].tcnt }
func (t *TMU) WriteTCNT(ch int, v uint32) { t.channels[ch].tcnt = v }

func (t *TMU) ReadTCOR(ch int) uint32    { return t.channels[ch].tcor }
func (t *TMU) WriteTCOR(ch int, v uint32) { t.channels[ch].tcor = v }
