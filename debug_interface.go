// debug_interface.go - DebuggableCPU adapter surface for an external
// monitor front-end.
//
// Grounded on debug_interface.go's RegisterInfo/DisassembledLine/
// DebuggableCPU trio: one register-listing type, one disassembly-line
// type, and an interface a monitor drives without knowing the concrete
// CPU type. hollycore has exactly one CPU, so there is no per-architecture
// dispatch table, only the one adapter in debug_cpu_sh4.go.

package hollycore

// RegisterInfo describes a single CPU register for display in a monitor.
type RegisterInfo struct {
	Name     string
	BitWidth int
	Value    uint64
	Group    string // "general", "fpu", "control", "banked"
}

// DisassembledLine is one decoded instruction, ready for display.
type DisassembledLine struct {
	Address  uint32
	HexBytes string
	Mnemonic string
	Size     int
	IsPC     bool
}

// DebuggableCPU is the interface a monitor front-end drives. debug_cpu_sh4.go
// is the only implementation.
type DebuggableCPU interface {
	GetRegisters() []RegisterInfo
	GetRegister(name string) (uint64, bool)
	SetRegister(name string, value uint64) bool
	GetPC() uint64
	SetPC(addr uint64)

	Step() (int, error)

	Disassemble(addr uint32, count int) []DisassembledLine

	ReadMemory(addr uint32, size int) []byte
	WriteMemory(addr uint32, data []byte)
}
