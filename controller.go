// controller.go - a standard Maple controller peripheral, translating a
// host-side button/axis state into the wire response a GetCondition
// transaction expects.
//
// Grounded on video_backend_ebiten.go's keyHandler bridge: that file
// turns host key events into a byte stream fed to one consumer via a
// mutex-guarded callback; ControllerPad turns host key events into a
// bit-packed condition struct read by one consumer (MapleDMA.Run) through
// the same mutex-guarded-state shape, generalized from a byte stream to a
// fixed-layout struct because Maple's wire format is fixed-size, not
// stream-oriented.

package hollycore

import (
	"encoding/binary"
	"sync"
)

// PadButton is one of the digital buttons on a standard controller.
type PadButton int

const (
	PadUp PadButton = iota
	PadDown
	PadLeft
	PadRight
	PadA
	PadB
	PadX
	PadY
	PadStart
)

// padButtonBit maps a PadButton to its bit position in the condition
// packet's button field. The wire encoding is active-low: a pressed
// button clears its bit.
var padButtonBit = map[PadButton]uint16{
	PadStart: 0x0008,
	PadUp:    0x0010,
	PadDown:  0x0020,
	PadLeft:  0x0040,
	PadRight: 0x0080,
	PadY:     0x0200,
	PadX:     0x0400,
	PadB:     0x0800,
	PadA:     0x1000,
}

const (
	mapleFuncController uint32 = 1 << 0
	mapleCmdDeviceInfo  byte   = 1
	mapleCmdGetCondition byte  = 9
)

// ControllerPad is a MaplePeripheral modeling one standard controller: a
// digital d-pad and face buttons plus two analog triggers, reported via
// the condition packet a host polls once per frame.
type ControllerPad struct {
	mu      sync.RWMutex
	buttons uint16 // active-high internally; inverted when packed on the wire
	ltrig   uint8
	rtrig   uint8
	xAxis   uint8
	yAxis   uint8
}

// NewControllerPad returns a pad with both analog axes centered, matching
// a real pad's idle rest position.
func NewControllerPad() *ControllerPad {
	return &ControllerPad{xAxis: 0x80, yAxis: 0x80}
}

// SetButton records a digital button's host-side press state.
func (p *ControllerPad) SetButton(btn PadButton, pressed bool) {
	bit, ok := padButtonBit[btn]
	if !ok {
		return
	}
	p.mu.Lock()
	if pressed {
		p.buttons |= bit
	} else {
		p.buttons &^= bit
	}
	p.mu.Unlock()
}

// SetTriggers records the analog shoulder trigger positions (0-255).
func (p *ControllerPad) SetTriggers(left, right uint8) {
	p.mu.Lock()
	p.ltrig, p.rtrig = left, right
	p.mu.Unlock()
}

// SetStick records the analog stick position (0-255 per axis, 0x80 center).
func (p *ControllerPad) SetStick(x, y uint8) {
	p.mu.Lock()
	p.xAxis, p.yAxis = x, y
	p.mu.Unlock()
}

// Transact answers a Maple command addressed to this pad's port. Only
// DeviceInfo and GetCondition are implemented; any other command returns
// nil, the same as an unattached port.
func (p *ControllerPad) Transact(port int, command []byte) []byte {
	if len(command) == 0 {
		return nil
	}
	switch command[0] {
	case mapleCmdDeviceInfo:
		return p.deviceInfoResponse()
	case mapleCmdGetCondition:
		return p.conditionResponse()
	default:
		return nil
	}
}

// deviceInfoResponse reports a standard controller's function code so a
// host driver can route subsequent GetCondition calls correctly.
func (p *ControllerPad) deviceInfoResponse() []byte {
	out := make([]byte, 4)
	binary.LittleEndian.PutUint32(out, mapleFuncController)
	return out
}

// conditionResponse packs the current button/axis state into the
// controller condition layout: function code, then active-low buttons,
// then trigger/stick bytes.
func (p *ControllerPad) conditionResponse() []byte {
	p.mu.RLock()
	buttons, lt, rt, x, y := p.buttons, p.ltrig, p.rtrig, p.xAxis, p.yAxis
	p.mu.RUnlock()

	out := make([]byte, 8)
	binary.LittleEndian.PutUint32(out[0:], mapleFuncController)
	binary.LittleEndian.PutUint16(out[4:], ^buttons)
	out[6] = rt
	out[7] = lt
	return append(out, x, y)
}
