// debug_disasm.go - SH4 instruction disassembler for the debug monitor.
//
// Grounded on debug_disasm_m68k.go's format: one function mapping a raw
// opcode to a mnemonic string, switching on the same field groups the
// real decoder (cpu_sh4_decode.go) dispatches execution on, kept
// independent of it so a malformed or unimplemented opcode never panics
// the monitor.

package hollycore

import "fmt"

// disassembleSH4 renders a 16-bit opcode as a mnemonic string. Opcodes it
// has no pattern for are rendered as ".WORD $xxxx"; its pattern set is not
// identical to the interpreter's (see DESIGN.md).
func disassembleSH4(op uint16) string {
	n, m := fieldN(op), fieldM(op)
	imm8 := fieldImm8(op)
	d8 := fieldDisp8(op)
	d12 := fieldDisp12(op)

	switch op >> 12 {
	case 0x0:
		switch op & 0xFF {
		case 0x02, 0x12, 0x22, 0x32, 0x42, 0x52, 0x62:
			return fmt.Sprintf("STC %s,R%d", ctrlRegName(ctrlFromField(op)), n)
		case 0x03:
			return fmt.Sprintf("BSRF R%d", n)
		case 0x08:
			return "CLRT"
		case 0x09:
			return "NOP"
		case 0x0B:
			return "RTS"
		case 0x18:
			return "SETT"
		case 0x19:
			return "DIV0U"
		case 0x1B:
			return "SLEEP"
		case 0x28:
			return "CLRMAC"
		case 0x29:
			return fmt.Sprintf("MOVT R%d", n)
		case 0x2B:
			return "RTE"
		case 0x48:
			return "CLRS"
		case 0x58:
			return "SETS"
		}
		if op&0xF == 0x4 {
			return fmt.Sprintf("MOV.B R%d,@(R0,R%d)", m, n)
		}
		if op&0xF == 0x5 {
			return fmt.Sprintf("MOV.W R%d,@(R0,R%d)", m, n)
		}
		if op&0xF == 0x6 {
			return fmt.Sprintf("MOV.L R%d,@(R0,R%d)", m, n)
		}
		if op&0xF == 0x7 {
			return fmt.Sprintf("MUL.L R%d,R%d", m, n)
		}
		if op&0xF == 0xC {
			return fmt.Sprintf("MOV.B @(R0,R%d),R%d", m, n)
		}
		if op&0xF == 0xD {
			return fmt.Sprintf("MOV.W @(R0,R%d),R%d", m, n)
		}
		if op&0xF == 0xE {
			return fmt.Sprintf("MOV.L @(R0,R%d),R%d", m, n)
		}
	case 0x1:
		return fmt.Sprintf("MOV.L R%d,@(%d,R%d)", m, fieldDisp4(op)*4, n)
	case 0x2:
		switch op & 0xF {
		case 0x0:
			return fmt.Sprintf("MOV.B R%d,@R%d", m, n)
		case 0x1:
			return fmt.Sprintf("MOV.W R%d,@R%d", m, n)
		case 0x2:
			return fmt.Sprintf("MOV.L R%d,@R%d", m, n)
		case 0x4:
			return fmt.Sprintf("MOV.B R%d,@-R%d", m, n)
		case 0x5:
			return fmt.Sprintf("MOV.W R%d,@-R%d", m, n)
		case 0x6:
			return fmt.Sprintf("MOV.L R%d,@-R%d", m, n)
		case 0x7:
			return fmt.Sprintf("DIV0S R%d,R%d", m, n)
		case 0x8:
			return fmt.Sprintf("TST R%d,R%d", m, n)
		case 0x9:
			return fmt.Sprintf("AND R%d,R%d", m, n)
		case 0xA:
			return fmt.Sprintf("XOR R%d,R%d", m, n)
		case 0xB:
			return fmt.Sprintf("OR R%d,R%d", m, n)
		case 0xC:
			return fmt.Sprintf("CMP/STR R%d,R%d", m, n)
		case 0xD:
			return fmt.Sprintf("XTRCT R%d,R%d", m, n)
		case 0xE:
			return fmt.Sprintf("MULU.W R%d,R%d", m, n)
		case 0xF:
			return fmt.Sprintf("MULS.W R%d,R%d", m, n)
		}
	case 0x3:
		switch op & 0xF {
		case 0x0:
			return fmt.Sprintf("CMP/EQ R%d,R%d", m, n)
		case 0x2:
			return fmt.Sprintf("CMP/HS R%d,R%d", m, n)
		case 0x3:
			return fmt.Sprintf("CMP/GE R%d,R%d", m, n)
		case 0x4:
			return fmt.Sprintf("DIV1 R%d,R%d", m, n)
		case 0x5:
			return fmt.Sprintf("DMULU.L R%d,R%d", m, n)
		case 0x6:
			return fmt.Sprintf("CMP/HI R%d,R%d", m, n)
		case 0x7:
			return fmt.Sprintf("CMP/GT R%d,R%d", m, n)
		case 0x8:
			return fmt.Sprintf("SUB R%d,R%d", m, n)
		case 0xA:
			return fmt.Sprintf("SUBC R%d,R%d", m, n)
		case 0xB:
			return fmt.Sprintf("SUBV R%d,R%d", m, n)
		case 0xC:
			return fmt.Sprintf("ADD R%d,R%d", m, n)
		case 0xD:
			return fmt.Sprintf("DMULS.L R%d,R%d", m, n)
		case 0xE:
			return fmt.Sprintf("ADDC R%d,R%d", m, n)
		case 0xF:
			return fmt.Sprintf("ADDV R%d,R%d", m, n)
		}
	case 0x4:
		switch op & 0xFF {
		case 0x00:
			return fmt.Sprintf("SHLL R%d", n)
		case 0x01:
			return fmt.Sprintf("SHLR R%d", n)
		case 0x04:
			return fmt.Sprintf("ROTL R%d", n)
		case 0x05:
			return fmt.Sprintf("ROTR R%d", n)
		case 0x08:
			return fmt.Sprintf("SHLL2 R%d", n)
		case 0x09:
			return fmt.Sprintf("SHLR2 R%d", n)
		case 0x10:
			return fmt.Sprintf("DT R%d", n)
		case 0x11:
			return fmt.Sprintf("CMP/PZ R%d", n)
		case 0x15:
			return fmt.Sprintf("CMP/PL R%d", n)
		case 0x18:
			return fmt.Sprintf("SHLL8 R%d", n)
		case 0x19:
			return fmt.Sprintf("SHLR8 R%d", n)
		case 0x20:
			return fmt.Sprintf("SHAL R%d", n)
		case 0x21:
			return fmt.Sprintf("SHAR R%d", n)
		case 0x24:
			return fmt.Sprintf("ROTCL R%d", n)
		case 0x25:
			return fmt.Sprintf("ROTCR R%d", n)
		case 0x28:
			return fmt.Sprintf("SHLL16 R%d", n)
		case 0x29:
			return fmt.Sprintf("SHLR16 R%d", n)
		case 0x0B:
			return fmt.Sprintf("JSR @R%d", n)
		case 0x2B:
			return fmt.Sprintf("JMP @R%d", n)
		}
		if op&0xF == 0xE {
			return fmt.Sprintf("LDC R%d,%s", n, ctrlRegName(ctrlFromField(op)))
		}
	case 0x6:
		switch op & 0xF {
		case 0x0:
			return fmt.Sprintf("MOV.B @R%d,R%d", m, n)
		case 0x1:
			return fmt.Sprintf("MOV.W @R%d,R%d", m, n)
		case 0x2:
			return fmt.Sprintf("MOV.L @R%d,R%d", m, n)
		case 0x3:
			return fmt.Sprintf("MOV R%d,R%d", m, n)
		case 0x4:
			return fmt.Sprintf("MOV.B @R%d+,R%d", m, n)
		case 0x5:
			return fmt.Sprintf("MOV.W @R%d+,R%d", m, n)
		case 0x6:
			return fmt.Sprintf("MOV.L @R%d+,R%d", m, n)
		case 0x7:
			return fmt.Sprintf("NOT R%d,R%d", m, n)
		case 0x8:
			return fmt.Sprintf("SWAP.B R%d,R%d", m, n)
		case 0x9:
			return fmt.Sprintf("SWAP.W R%d,R%d", m, n)
		case 0xA:
			return fmt.Sprintf("NEGC R%d,R%d", m, n)
		case 0xB:
			return fmt.Sprintf("NEG R%d,R%d", m, n)
		case 0xC:
			return fmt.Sprintf("EXTU.B R%d,R%d", m, n)
		case 0xD:
			return fmt.Sprintf("EXTU.W R%d,R%d", m, n)
		case 0xE:
			return fmt.Sprintf("EXTS.B R%d,R%d", m, n)
		case 0xF:
			return fmt.Sprintf("EXTS.W R%d,R%d", m, n)
		}
	case 0x7:
		return fmt.Sprintf("ADD #%d,R%d", int32(int8(imm8)), n)
	case 0x8:
		switch op >> 8 & 0xF {
		case 0x8:
			return fmt.Sprintf("CMP/EQ #%d,R0", int32(int8(imm8)))
		case 0x9:
			return fmt.Sprintf("BT %d", d8*2+4)
		case 0xB:
			return fmt.Sprintf("BF %d", d8*2+4)
		case 0xD:
			return fmt.Sprintf("BT/S %d", d8*2+4)
		case 0xF:
			return fmt.Sprintf("BF/S %d", d8*2+4)
		}
	case 0x9:
		return fmt.Sprintf("MOV.W @(%d,PC),R%d", imm8*2, n)
	case 0xA:
		return fmt.Sprintf("BRA %d", d12*2+4)
	case 0xB:
		return fmt.Sprintf("BSR %d", d12*2+4)
	case 0xC:
		switch op >> 8 & 0xF {
		case 0x3:
			return fmt.Sprintf("TRAPA #%d", imm8)
		case 0x7:
			return fmt.Sprintf("MOVA @(%d,PC),R0", imm8*4)
		case 0x8:
			return fmt.Sprintf("TST #%d,R0", imm8)
		case 0x9:
			return fmt.Sprintf("AND #%d,R0", imm8)
		case 0xA:
			return fmt.Sprintf("XOR #%d,R0", imm8)
		case 0xB:
			return fmt.Sprintf("OR #%d,R0", imm8)
		}
	case 0xD:
		return fmt.Sprintf("MOV.L @(%d,PC),R%d", imm8*4, n)
	case 0xE:
		return fmt.Sprintf("MOV #%d,R%d", int32(int8(imm8)), n)
	case 0xF:
		return disassembleFPU(op, n, m)
	}
	return fmt.Sprintf(".WORD $%04X", op)
}

func disassembleFPU(op uint16, n, m int) string {
	switch fieldFmt(op) {
	case 0x0:
		return fmt.Sprintf("FADD FR%d,FR%d", m, n)
	case 0x1:
		return fmt.Sprintf("FSUB FR%d,FR%d", m, n)
	case 0x2:
		return fmt.Sprintf("FMUL FR%d,FR%d", m, n)
	case 0x3:
		return fmt.Sprintf("FDIV FR%d,FR%d", m, n)
	case 0x4:
		return fmt.Sprintf("FCMP/EQ FR%d,FR%d", m, n)
	case 0x5:
		return fmt.Sprintf("FCMP/GT FR%d,FR%d", m, n)
	case 0x8:
		return fmt.Sprintf("FMOV.S @R%d,FR%d", m, n)
	case 0x9:
		return fmt.Sprintf("FMOV.S @R%d+,FR%d", m, n)
	case 0xA:
		return fmt.Sprintf("FMOV.S FR%d,@R%d", m, n)
	case 0xB:
		return fmt.Sprintf("FMOV.S FR%d,@-R%d", m, n)
	case 0xC:
		return fmt.Sprintf("FMOV FR%d,FR%d", m, n)
	case 0xD:
		if op&0xFF == 0xFD && (op>>8)&0x3 == 0x1 {
			return fmt.Sprintf("FTRV XMTRX,FV%d", n>>2)
		}
		if op&0xFF == 0xED {
			return fmt.Sprintf("FIPR FV%d,FV%d", n&0x3, (n>>2)&0x3)
		}
		return disassembleFMisc(op, n)
	case 0xE:
		return fmt.Sprintf("FMAC FR0,FR%d,FR%d", m, n)
	}
	return fmt.Sprintf(".WORD $%04X", op)
}

func disassembleFMisc(op uint16, n int) string {
	if op == 0xF3FD {
		return "FSCHG"
	}
	if op == 0xFBFD {
		return "FRCHG"
	}
	switch op >> 4 & 0xF {
	case 0x0:
		return fmt.Sprintf("FSTS FPUL,FR%d", n)
	case 0x1:
		return fmt.Sprintf("FLDS FR%d,FPUL", n)
	case 0x2:
		return fmt.Sprintf("FLOAT FPUL,FR%d", n)
	case 0x3:
		return fmt.Sprintf("FTRC FR%d,FPUL", n)
	case 0x5:
		return fmt.Sprintf("FABS FR%d", n)
	case 0x6:
		return fmt.Sprintf("FSQRT FR%d", n)
	case 0xA, 0xC, 0xE:
		return fmt.Sprintf("FSCA FPUL,FR%d", n&^1)
	case 0x4:
		return fmt.Sprintf("FNEG FR%d", n)
	}
	return fmt.Sprintf(".WORD $%04X", op)
}

func ctrlRegName(idx int) string {
	switch idx {
	case ctrlSR:
		return "SR"
	case ctrlGBR:
		return "GBR"
	case ctrlVBR:
		return "VBR"
	case ctrlSSR:
		return "SSR"
	case ctrlSPC:
		return "SPC"
	case ctrlSGR:
		return "SGR"
	case ctrlDBR:
		return "DBR"
	default:
		return "?"
	}
}
