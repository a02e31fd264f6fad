// spg.go - sync pulse generator: scanline counter, VBlank/HBlank timing.

package hollycore

const (
	sh4Clock    = 200_000_000
	pixelClock  = 27_000_000
)

// SPG owns the current scanline and the programmed thresholds that drive
// VBlank/retrace interrupt raising.
type SPG struct {
	scanline    uint32
	accumulated uint32 // cycles accumulated in the current scanline
	inVBlank    bool

	hcount       uint32
	vcount       uint32
	vblankStart  uint32
	vblankEnd    uint32
	vblankIntIn  uint32
	vblankIntOut uint32
	vclkDiv2x    bool // VCLK_DIV: true selects the /1 divisor, false /2

	sb *SystemBlock

	// onVBlank is invoked when the vblank_int_in threshold is crossed, so
	// the video/display-list layer can snapshot a completed frame.
	onVBlank func()
}

// NewSPG wires the SPG to the system block it raises normal-plane
// interrupts through.
func NewSPG(sb *SystemBlock) *SPG {
	return &SPG{sb: sb, vclkDiv2x: true}
}

// Reset restores all programmed thresholds and the live scanline to zero.
func (s *SPG) Reset() {
	onVBlank := s.onVBlank
	sb := s.sb
	*s = SPG{sb: sb, vclkDiv2x: true, onVBlank: onVBlank}
}

// SetOnVBlank registers the frame-boundary observer.
func (s *SPG) SetOnVBlank(fn func()) { s.onVBlank = fn }

func (s *SPG) Configure(hcount, vcount, vblankStart, vblankEnd, vblankIntIn, vblankIntOut uint32) {
	s.hcount, s.vcount = hcount, vcount
	s.vblankStart, s.vblankEnd = vblankStart, vblankEnd
	s.vblankIntIn, s.vblankIntOut = vblankIntIn, vblankIntOut
}

// cyclesPerScanline computes the SH4-cycle length of one scanline:
//
//	SH4_CLOCK * (hcount+1) / (PIXEL_CLOCK / (VCLK_DIV ? 1 : 2))
func (s *SPG) cyclesPerScanline() uint64 {
	divisor := uint64(pixelClock)
	if !s.vclkDiv2x {
		divisor /= 2
	}
	return uint64(sh4Clock) * uint64(s.hcount+1) / divisor
}

// HandleSpgSync advances the scanline counter by the measured delta, fires
// the interrupts/observers due at each boundary crossing, then reschedules
// the next SpgSync at the next interesting scanline.
func (s *SPG) HandleSpgSync(sched *Scheduler, measuredDelta uint32) {
	cyclesPerLine := s.cyclesPerScanline()
	s.accumulated += measuredDelta

	for uint64(s.accumulated) >= cyclesPerLine {
		s.accumulated -= uint32(cyclesPerLine)
		s.scanline++
		if s.scanline >= s.vcount {
			s.scanline = 0
		}

		switch s.scanline {
		case 0:
			s.sb.RaiseNormal(1 << NormalBitRetrace)
		}
		if s.scanline == s.vblankIntIn {
			s.sb.RaiseNormal(1 << NormalBitVBlankIn)
			if s.onVBlank != nil {
				s.onVBlank()
			}
		}
		if s.scanline == s.vblankIntOut {
			s.sb.RaiseNormal(1 << NormalBitVBlankOut)
		}
		if s.scanline == s.vblankStart {
			s.inVBlank = true
		}
		if s.scanline == s.vblankEnd {
			s.inVBlank = false
		}
	}

	next := s.nextInterestingScanline()
	delta := uint64(next-s.scanline) * cyclesPerLine
	// overrun: the accumulated cycles already banked toward the line we're
	// currently in.
	if uint64(s.accumulated) < delta {
		delta -= uint64(s.accumulated)
	} else {
		delta = 0
	}
	sched.Schedule(EventSpgSync, delta, 0)
}

// nextInterestingScanline finds the minimum threshold strictly greater
// than the current scanline, wrapping to vcount if all
// thresholds are behind us.
func (s *SPG) nextInterestingScanline() uint32 {
	best := s.vcount
	for _, candidate := range [...]uint32{s.vblankIntIn, s.vblankIntOut, s.vblankStart, s.vblankEnd, s.vcount} {
		if candidate > s.scanline && candidate < best {
			best = candidate
		}
	}
	if best <= s.scanline {
		best = s.vcount
	}
	return best
}

func (s *SPG) Scanline() uint32 { return s.scanline }
func (s *SPG) InVBlank() bool   { return s.inVBlank }
