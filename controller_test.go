// controller_test.go - active-low button packing and the device-info
// function code, independent of the Maple command-list plumbing.

package hollycore

import (
	"encoding/binary"
	"testing"
)

func TestControllerPadIdleConditionAllButtonBitsSet(t *testing.T) {
	pad := NewControllerPad()
	resp := pad.conditionResponse()
	if len(resp) != 10 {
		t.Fatalf("response len = %d, want 10", len(resp))
	}
	buttons := binary.LittleEndian.Uint16(resp[4:])
	// active-low: with nothing pressed, every assigned bit reads 1.
	var allBits uint16
	for _, b := range padButtonBit {
		allBits |= b
	}
	if buttons&allBits != allBits {
		t.Fatalf("idle buttons = %#x, want all bits set (%#x)", buttons, allBits)
	}
	if resp[8] != 0x80 || resp[9] != 0x80 {
		t.Fatalf("idle stick = (%d,%d), want centered (128,128)", resp[8], resp[9])
	}
}

func TestControllerPadPressedButtonClearsItsBit(t *testing.T) {
	pad := NewControllerPad()
	pad.SetButton(PadA, true)
	resp := pad.conditionResponse()
	buttons := binary.LittleEndian.Uint16(resp[4:])
	if buttons&padButtonBit[PadA] != 0 {
		t.Fatal("expected PadA's bit cleared (active-low) while pressed")
	}
	if buttons&padButtonBit[PadB] == 0 {
		t.Fatal("expected PadB's bit still set while not pressed")
	}

	pad.SetButton(PadA, false)
	resp = pad.conditionResponse()
	buttons = binary.LittleEndian.Uint16(resp[4:])
	if buttons&padButtonBit[PadA] == 0 {
		t.Fatal("expected PadA's bit set again after release")
	}
}

func TestControllerPadTriggersAndStick(t *testing.T) {
	pad := NewControllerPad()
	pad.SetTriggers(10, 20)
	pad.SetStick(200, 50)
	resp := pad.conditionResponse()
	if resp[6] != 20 || resp[7] != 10 {
		t.Fatalf("triggers = (rt=%d, lt=%d), want (20,10)", resp[6], resp[7])
	}
	if resp[8] != 200 || resp[9] != 50 {
		t.Fatalf("stick = (%d,%d), want (200,50)", resp[8], resp[9])
	}
}

func TestControllerPadDeviceInfoFunctionCode(t *testing.T) {
	pad := NewControllerPad()
	resp := pad.Transact(0, []byte{mapleCmdDeviceInfo})
	if len(resp) != 4 {
		t.Fatalf("response len = %d, want 4", len(resp))
	}
	if binary.LittleEndian.Uint32(resp) != mapleFuncController {
		t.Fatalf("function code = %#x, want %#x", binary.LittleEndian.Uint32(resp), mapleFuncController)
	}
}

func TestControllerPadUnknownCommandReturnsNil(t *testing.T) {
	pad := NewControllerPad()
	if resp := pad.Transact(0, []byte{0xFF}); resp != nil {
		t.Fatalf("expected nil for an unimplemented command, got %v", resp)
	}
	if resp := pad.Transact(0, nil); resp != nil {
		t.Fatalf("expected nil for an empty command, got %v", resp)
	}
}
