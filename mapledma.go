// mapledma.go - Maple DMA engine: walks the command list at MDSTAR, emits
// per-port transactions to the peripheral fabric, writes responses back.
//
// Grounded on the same burst-loop shape as ch2dma.go; where Ch2 DMA has one
// fixed destination, Maple fans out to whichever of the four ports a
// command addresses, so the loop dispatches through a small port-indexed
// interface instead of a parser.

package hollycore

import "encoding/binary"

const maplePortCount = 4

// MaplePeripheral answers one Maple-bus transaction for a given port.
// controller.go's host-input bridge is the only implementation; a port
// with nothing attached returns a nil response (no ACK byte), the same as
// real hardware's "nothing there" timeout behavior collapsed to an
// immediate no-op for determinism.
type MaplePeripheral interface {
	Transact(port int, command []byte) []byte
}

// MapleDMA owns the command-list walk. Like Ch2DMA it only ever runs from
// the outer step loop in response to a scheduled MapleDMA event.
type MapleDMA struct {
	bus   *Bus
	sb    *SystemBlock
	ports [maplePortCount]MaplePeripheral
}

func NewMapleDMA(bus *Bus, sb *SystemBlock) *MapleDMA {
	return &MapleDMA{bus: bus, sb: sb}
}

// AttachPeripheral wires a responder to one of the four Maple ports.
func (m *MapleDMA) AttachPeripheral(port int, p MaplePeripheral) {
	m.ports[port] = p
}

// maple command-list entry layout (one entry per transaction):
//
//	word0: bit31 = last entry; bits 17:16 = port; bits 7:0 = command length
//	       in 32-bit words (payload follows inline starting at word2)
//	word1: response buffer address in system RAM
//	word2..: command payload, `length` words
func (m *MapleDMA) Run() error {
	ram := m.bus.RAM()
	ptr := m.sb.ReadMDSTAR()

	for {
		header := readRAM32(ram, ptr)
		last := checkBit(header, 31)
		port := int(bitField(header, 17, 16))
		length := bitField(header, 7, 0)

		responseAddr := readRAM32(ram, ptr+4)

		command := make([]byte, length*4)
		for i := uint32(0); i < length; i++ {
			binary.LittleEndian.PutUint32(command[i*4:], readRAM32(ram, ptr+8+i*4))
		}

		var response []byte
		if p := m.ports[port]; p != nil {
			response = p.Transact(port, command)
		}
		writeRAMBytes(ram, responseAddr, response)

		ptr += 8 + length*4
		if last {
			break
		}
	}

	m.sb.finishMaple()
	return nil
}

func readRAM32(ram []byte, addr uint32) uint32 {
	off := (addr - RegionSystemRAMStart) % uint32(len(ram))
	return binary.LittleEndian.Uint32(ram[off:])
}

func writeRAMBytes(ram []byte, addr uint32, data []byte) {
	if len(data) == 0 {
		return
	}
	off := (addr - RegionSystemRAMStart) % uint32(len(ram))
	copy(ram[off:], data)
}
