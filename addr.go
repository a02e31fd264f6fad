// addr.go - physical address space layout.
//
// The core models a straight 29-bit physical map: the top three bits of a
// 32-bit logical address select a cache/translation mode on real hardware
// but are simply masked off here, the same way machine_bus.go strips its
// sign-extended page bits before a region lookup.

package hollycore

const physAddrMask = 0x1FFFFFFF

// maskPhys strips the top three bits of a 32-bit logical address, yielding
// the 29-bit physical address used for region dispatch.
func maskPhys(addr uint32) uint32 {
	return addr & physAddrMask
}

// Region boundaries, inclusive, in physical address space.
const (
	RegionBootROMStart = 0x00000000
	RegionBootROMEnd   = 0x001FFFFF

	RegionFlashStart = 0x00200000
	RegionFlashEnd   = 0x0021FFFF

	RegionG1BusStart = 0x005F7018
	RegionG1BusEnd   = 0x005F709C

	RegionSBStart = 0x005F6800
	RegionSBEnd   = 0x005F7CF8

	RegionVRAM64Start = 0x04000000
	RegionVRAM64End   = 0x047FFFFF

	RegionVRAM32Start = 0x05000000
	RegionVRAM32End   = 0x057FFFFF

	RegionSystemRAMStart = 0x0C000000
	RegionSystemRAMEnd   = 0x0CFFFFFF

	RegionTAFIFOStart = 0x10000000
	RegionTAFIFOEnd   = 0x107FFFE0

	RegionOnChipStart = 0x1F000000
	RegionOnChipEnd   = 0x1FFFFFFF
)

// Known "test"/diagnostic registers that silently accept writes and return
// zero on read rather than raising a fatal bus error.
var ignoredTestRegisters = map[uint32]bool{
	0x005F68AC: true,
}

func isIgnoredTestRegister(addr uint32) bool {
	if ignoredTestRegisters[addr] {
		return true
	}
	return addr >= 0x005F78A0 && addr <= 0x005F78B8
}

func inRange(addr, lo, hi uint32) bool {
	return addr >= lo && addr <= hi
}
