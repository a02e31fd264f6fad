// intc.go - interrupt controller: 41 sources, 16 priority levels.

package hollycore

// InterruptSource is a closed enumeration of every fixed and on-chip
// interrupt source the SH4 core recognizes. Source index doubles as the
// stable tie-break key the sorted priority table uses.
type InterruptSource int

const (
	SrcNMI InterruptSource = iota
	SrcIRL0
	SrcIRL1
	SrcIRL2
	SrcIRL3
	SrcIRL4
	SrcIRL5
	SrcIRL6
	SrcIRL7
	SrcIRL8
	SrcIRL9
	SrcIRL10
	SrcIRL11
	SrcIRL12
	SrcIRL13
	SrcIRL14

	// On-chip sources (25), levels programmed via IPRA/IPRB/IPRC.
	SrcTMUTUNI0
	SrcTMUTUNI1
	SrcTMUTUNI2
	SrcTMUTICPI2
	SrcRTCATI
	SrcRTCPRI
	SrcRTCCUI
	SrcSCIERI
	SrcSCIRXI
	SrcSCITXI
	SrcSCITEI
	SrcWDTITI
	SrcREFRCMI
	SrcREFROVI
	SrcGPIOGPIOI
	SrcDMAC0DMTE0
	SrcDMAC0DMTE1
	SrcDMAC0DMTE2
	SrcDMAC0DMTE3
	SrcDMAC0DMAE
	SrcSCIF2ERI
	SrcSCIF2RXI
	SrcSCIF2BRI
	SrcSCIF2TXI
	SrcHUDIHUDI

	numInterruptSources
)

// fixedSourceLevel returns the hard-wired priority (16 down to 1) for the
// 16 fixed sources NMI/IRL0..IRL14. On-chip sources use 0 here and are
// resolved from IPRA/B/C instead.
func fixedSourceLevel(src InterruptSource) (level uint8, fixed bool) {
	switch {
	case src == SrcNMI:
		return 16, true
	case src >= SrcIRL0 && src <= SrcIRL14:
		return uint8(15 - (src - SrcIRL0)), true
	default:
		return 0, false
	}
}

// ipr field layout: each on-chip source reads its 4-bit level out of one of
// IPRA/IPRB/IPRC, at a fixed nibble. Modeled directly rather than via a
// generic bit trait, per the "free functions over bit widths" idiom.
type iprField struct {
	reg    int // 0=IPRA, 1=IPRB, 2=IPRC
	nibble uint
}

var onChipIPRField = map[InterruptSource]iprField{
	SrcTMUTUNI0:  {0, 3},
	SrcTMUTUNI1:  {0, 2},
	SrcTMUTUNI2:  {0, 1},
	SrcTMUTICPI2: {0, 1},
	SrcRTCATI:    {0, 0},
	SrcRTCPRI:    {0, 0},
	SrcRTCCUI:    {0, 0},
	SrcSCIERI:    {1, 3},
	SrcSCIRXI:    {1, 3},
	SrcSCITXI:    {1, 3},
	SrcSCITEI:    {1, 3},
	SrcWDTITI:    {1, 2},
	SrcREFRCMI:   {1, 1},
	SrcREFROVI:   {1, 1},
	SrcGPIOGPIOI: {1, 0},
	SrcDMAC0DMTE0: {2, 3},
	SrcDMAC0DMTE1: {2, 3},
	SrcDMAC0DMTE2: {2, 3},
	SrcDMAC0DMTE3: {2, 3},
	SrcDMAC0DMAE:  {2, 3},
	SrcSCIF2ERI:   {2, 2},
	SrcSCIF2RXI:   {2, 2},
	SrcSCIF2BRI:   {2, 2},
	SrcSCIF2TXI:   {2, 2},
	SrcHUDIHUDI:   {2, 1},
}

// rankedSource is one row of the sorted priority table: a source plus its
// currently effective level, ordered (level desc, stable source index asc).
type rankedSource struct {
	src   InterruptSource
	level uint8
}

// INTC models the SH4's interrupt controller: 41 fixed+on-chip sources,
// each with a requested bit, re-sorted into a derived priority table
// whenever IPRA/B/C change.
type INTC struct {
	ipra, iprb, iprc uint16

	requested [numInterruptSources]bool

	// sorted is the derived table, highest priority first; rank maps a
	// source to its row in sorted so raise/clear are O(1).
	sorted []rankedSource
	rank   map[InterruptSource]int
}

// NewINTC returns an INTC with IPRA/B/C at reset value (all on-chip levels
// zero) and the sorted table built for that state.
func NewINTC() *INTC {
	ic := &INTC{}
	ic.rebuild()
	return ic
}

// Reset restores IPRA/B/C and all requested bits to power-on state.
func (ic *INTC) Reset() {
	ic.ipra, ic.iprb, ic.iprc = 0, 0, 0
	for i := range ic.requested {
		ic.requested[i] = false
	}
	ic.rebuild()
}

func (ic *INTC) levelOf(src InterruptSource) uint8 {
	if lvl, fixed := fixedSourceLevel(src); fixed {
		return lvl
	}
	f, ok := onChipIPRField[src]
	if !ok {
		return 0
	}
	var reg uint16
	switch f.reg {
	case 0:
		reg = ic.ipra
	case 1:
		reg = ic.iprb
	case 2:
		reg = ic.iprc
	}
	return uint8(bitField(reg, f.nibble*4+3, f.nibble*4))
}

// rebuild re-sorts the priority table stable-by-source-index and re-indexes
// the requested bitset's row mapping, preserving each previously raised
// source's identity across IPR writes.
func (ic *INTC) rebuild() {
	ic.sorted = ic.sorted[:0]
	for src := InterruptSource(0); src < numInterruptSources; src++ {
		ic.sorted = append(ic.sorted, rankedSource{src: src, level: ic.levelOf(src)})
	}
	// Stable sort by level descending; source index is already ascending
	// so a stable sort preserves it as the tie-break.
	for i := 1; i < len(ic.sorted); i++ {
		for j := i; j > 0 && ic.sorted[j].level > ic.sorted[j-1].level; j-- {
			ic.sorted[j], ic.sorted[j-1] = ic.sorted[j-1], ic.sorted[j]
		}
	}
	ic.rank = make(map[InterruptSource]int, len(ic.sorted))
	for i, row := range ic.sorted {
		ic.rank[row.src] = i
	}
}

// WriteIPRA/B/C store a new priority register and rebuild the derived table.
func (ic *INTC) WriteIPRA(v uint16) { ic.ipra = v; ic.rebuild() }
func (ic *INTC) WriteIPRB(v uint16) { ic.iprb = v; ic.rebuild() }
func (ic *INTC) WriteIPRC(v uint16) { ic.iprc = v; ic.rebuild() }

func (ic *INTC) ReadIPRA() uint16 { return ic.ipra }
func (ic *INTC) ReadIPRB() uint16 { return ic.iprb }
func (ic *INTC) ReadIPRC() uint16 { return ic.iprc }

// Raise sets the requested bit for src.
func (ic *INTC) Raise(src InterruptSource) {
	ic.requested[src] = true
}

// Clear clears the requested bit for src.
func (ic *INTC) Clear(src InterruptSource) {
	ic.requested[src] = false
}

// PendingLevel scans the sorted table from highest rank down and returns
// the level of the first requested source, or ok=false if none is pending.
func (ic *INTC) PendingLevel() (level uint8, ok bool) {
	for _, row := range ic.sorted {
		if ic.requested[row.src] && row.level > 0 {
			return row.level, true
		}
	}
	return 0, false
}

// Ack returns the highest-ranked pending source and clears its requested
// bit, as the interpreter does on interrupt entry.
func (ic *INTC) Ack() (src InterruptSource, level uint8, ok bool) {
	for _, row := range ic.sorted {
		if ic.requested[row.src] && row.level > 0 {
			ic.requested[row.src] = false
			return row.src, row.level, true
		}
	}
	return 0, 0, false
}
