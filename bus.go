// bus.go - physical address space dispatch.
//
// Grounded on machine_bus.go's Bus32 interface and page-routed MMIO table,
// generalized from a single flat 32-bit window to the nine fixed physical
// ranges this machine's address map defines, with a 64-bit accessor added
// for VRAM's interleaved window and on-chip double-precision FPU
// loads/stores.

package hollycore

import "encoding/binary"

const (
	bootROMSize = 2 * 1024 * 1024
	flashSize   = 128 * 1024
	systemRAMSize = 16 * 1024 * 1024
)

// Bus is the core's single memory/MMIO router. It owns boot ROM, flash and
// system RAM directly; VRAM, the system block, the TA FIFO and on-chip
// registers are routed to their owning components.
type Bus struct {
	bootROM []byte
	flash   []byte
	ram     []byte

	video *VideoSubsystem
	sb    *SystemBlock
	intc  *INTC
	tmu   *TMU
	ta    *TAParser

	warnings *onceLog
}

// NewBus allocates the flat memory regions and wires the MMIO owners.
func NewBus(video *VideoSubsystem, sb *SystemBlock, intc *INTC, tmu *TMU, ta *TAParser) *Bus {
	return &Bus{
		bootROM:  make([]byte, bootROMSize),
		flash:    make([]byte, flashSize),
		ram:      make([]byte, systemRAMSize),
		video:    video,
		sb:       sb,
		intc:     intc,
		tmu:      tmu,
		ta:       ta,
		warnings: newOnceLog(),
	}
}

// Reset zeroes system RAM. Boot ROM and flash are external inputs and are
// not cleared by a soft reset.
func (b *Bus) Reset() {
	for i := range b.ram {
		b.ram[i] = 0
	}
}

// LoadBootROM copies data into the boot ROM image, truncating or
// zero-padding to bootROMSize.
func (b *Bus) LoadBootROM(data []byte) {
	n := copy(b.bootROM, data)
	for i := n; i < len(b.bootROM); i++ {
		b.bootROM[i] = 0
	}
}

// LoadFlash copies data into the flash image, truncating or zero-padding
// to flashSize.
func (b *Bus) LoadFlash(data []byte) {
	n := copy(b.flash, data)
	for i := n; i < len(b.flash); i++ {
		b.flash[i] = 0
	}
}

// RAM exposes the raw system RAM slice for DMA engines and the GDI loader.
func (b *Bus) RAM() []byte { return b.ram }

func fatalUnaligned(pc uint32, addr uint32, width int) error {
	return newFatal(pc, nil, "unaligned %d-bit access at %#08x", width, addr)
}

func fatalUnmapped(pc uint32, addr uint32, op string) error {
	return newFatal(pc, nil, "unmapped %s at %#08x", op, addr)
}

// Read8 always legal regardless of alignment.
func (b *Bus) Read8(pc, addr uint32) (uint8, error) {
	p := maskPhys(addr)
	switch {
	case inRange(p, RegionBootROMStart, RegionBootROMEnd):
		return b.bootROM[p-RegionBootROMStart], nil
	case inRange(p, RegionFlashStart, RegionFlashEnd):
		return b.readFlash8(p - RegionFlashStart), nil
	case inRange(p, RegionSystemRAMStart, RegionSystemRAMEnd):
		return b.ram[p-RegionSystemRAMStart], nil
	case inRange(p, RegionVRAM32Start, RegionVRAM32End), inRange(p, RegionVRAM64Start, RegionVRAM64End):
		return b.video.Read8(p), nil
	case inRange(p, RegionSBStart, RegionSBEnd):
		return uint8(b.readSB(pc, p)), nil
	case isIgnoredTestRegister(p):
		b.warnings.logOnce(p, "ignored write-only test register read at %#08x", p)
		return 0, nil
	default:
		return 0, fatalUnmapped(pc, addr, "read8")
	}
}

func (b *Bus) Write8(pc, addr uint32, v uint8) error {
	p := maskPhys(addr)
	switch {
	case inRange(p, RegionFlashStart, RegionFlashEnd):
		// flash is read-mostly: byte writes are accepted but do not
		// persist past the region-code/language bytes machine.go seeds.
		return nil
	case inRange(p, RegionSystemRAMStart, RegionSystemRAMEnd):
		b.ram[p-RegionSystemRAMStart] = v
		return nil
	case inRange(p, RegionVRAM32Start, RegionVRAM32End), inRange(p, RegionVRAM64Start, RegionVRAM64End):
		b.video.Write8(p, v)
		return nil
	case inRange(p, RegionSBStart, RegionSBEnd):
		b.writeSB(pc, p, uint32(v))
		return nil
	case isIgnoredTestRegister(p):
		b.warnings.logOnce(p, "ignored test register write at %#08x", p)
		return nil
	default:
		return fatalUnmapped(pc, addr, "write8")
	}
}

func (b *Bus) Read16(pc, addr uint32) (uint16, error) {
	if addr&1 != 0 {
		return 0, fatalUnaligned(pc, addr, 16)
	}
	hi, err := b.Read8(pc, addr+1)
	if err != nil {
		return 0, err
	}
	lo, err := b.Read8(pc, addr)
	if err != nil {
		return 0, err
	}
	return uint16(hi)<<8 | uint16(lo), nil
}

func (b *Bus) Write16(pc, addr uint32, v uint16) error {
	if addr&1 != 0 {
		return fatalUnaligned(pc, addr, 16)
	}
	if err := b.Write8(pc, addr, uint8(v)); err != nil {
		return err
	}
	return b.Write8(pc, addr+1, uint8(v>>8))
}

func (b *Bus) Read32(pc, addr uint32) (uint32, error) {
	p := maskPhys(addr)
	if addr&3 != 0 {
		return 0, fatalUnaligned(pc, addr, 32)
	}
	switch {
	case inRange(p, RegionBootROMStart, RegionBootROMEnd):
		return binary.LittleEndian.Uint32(b.bootROM[p-RegionBootROMStart:]), nil
	case inRange(p, RegionFlashStart, RegionFlashEnd):
		return uint32(b.readFlash8(p-RegionFlashStart)) |
			uint32(b.readFlash8(p-RegionFlashStart+1))<<8 |
			uint32(b.readFlash8(p-RegionFlashStart+2))<<16 |
			uint32(b.readFlash8(p-RegionFlashStart+3))<<24, nil
	case inRange(p, RegionSystemRAMStart, RegionSystemRAMEnd):
		return binary.LittleEndian.Uint32(b.ram[p-RegionSystemRAMStart:]), nil
	case inRange(p, RegionVRAM32Start, RegionVRAM32End), inRange(p, RegionVRAM64Start, RegionVRAM64End):
		return b.video.Read32(p), nil
	case inRange(p, RegionSBStart, RegionSBEnd):
		return b.readSB(pc, p), nil
	case inRange(p, RegionOnChipStart, RegionOnChipEnd):
		return b.readOnChip(pc, p), nil
	case isIgnoredTestRegister(p):
		b.warnings.logOnce(p, "ignored write-only test register read at %#08x", p)
		return 0, nil
	default:
		return 0, fatalUnmapped(pc, addr, "read32")
	}
}

func (b *Bus) Write32(pc, addr uint32, v uint32) error {
	p := maskPhys(addr)
	if addr&3 != 0 {
		return fatalUnaligned(pc, addr, 32)
	}
	switch {
	case inRange(p, RegionSystemRAMStart, RegionSystemRAMEnd):
		binary.LittleEndian.PutUint32(b.ram[p-RegionSystemRAMStart:], v)
		return nil
	case inRange(p, RegionVRAM32Start, RegionVRAM32End), inRange(p, RegionVRAM64Start, RegionVRAM64End):
		b.video.Write32(p, v)
		return nil
	case inRange(p, RegionSBStart, RegionSBEnd):
		b.writeSB(pc, p, v)
		return nil
	case inRange(p, RegionOnChipStart, RegionOnChipEnd):
		b.writeOnChip(pc, p, v)
		return nil
	case inRange(p, RegionTAFIFOStart, RegionTAFIFOEnd):
		return b.ta.WriteFIFO32(pc, p-RegionTAFIFOStart, v)
	case isIgnoredTestRegister(p):
		b.warnings.logOnce(p, "ignored test register write at %#08x", p)
		return nil
	default:
		return fatalUnmapped(pc, addr, "write32")
	}
}

func (b *Bus) Read64(pc, addr uint32) (uint64, error) {
	p := maskPhys(addr)
	if addr&7 != 0 {
		return 0, fatalUnaligned(pc, addr, 64)
	}
	if inRange(p, RegionVRAM32Start, RegionVRAM32End) || inRange(p, RegionVRAM64Start, RegionVRAM64End) {
		return b.video.Read64(p), nil
	}
	lo, err := b.Read32(pc, addr)
	if err != nil {
		return 0, err
	}
	hi, err := b.Read32(pc, addr+4)
	if err != nil {
		return 0, err
	}
	return uint64(hi)<<32 | uint64(lo), nil
}

func (b *Bus) Write64(pc, addr uint32, v uint64) error {
	p := maskPhys(addr)
	if addr&7 != 0 {
		return fatalUnaligned(pc, addr, 64)
	}
	if inRange(p, RegionVRAM32Start, RegionVRAM32End) || inRange(p, RegionVRAM64Start, RegionVRAM64End) {
		b.video.Write64(p, v)
		return nil
	}
	if err := b.Write32(pc, addr, uint32(v)); err != nil {
		return err
	}
	return b.Write32(pc, addr+4, uint32(v>>32))
}

// readFlash8 implements the region/language/broadcast-standard syscon
// bytes a real flash image carries.
func (b *Bus) readFlash8(off uint32) uint8 {
	switch off {
	case 0x1A002, 0x1A0A2:
		return '0' + 1
	case 0x1A003, 0x1A0A3:
		return 0 // default language: Japanese
	case 0x1A004, 0x1A0A4:
		return 0 // default broadcast standard: NTSC
	default:
		return b.flash[off]
	}
}
