// This file is part of Mockingboard.
//
// Mockingboard is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Mockingboard is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Mockingboard.  If not, see <https://www.gnu.org/licenses/>.

package card

import (
	"github.com/xizhe-zhang/mockingboard/logger"
	"github.com/xizhe-zhang/mockingboard/test"
)

// The cycle compensation decoders work backwards from the program counter:
// at the point the card is told about an access the program counter has
// moved past the operand bytes, so the opcode is at pc-2 for the two-byte
// indirect forms and pc-3 for the three-byte absolute forms.
//
// The decode is a heuristic and it can be wrong: self-modifying code, or
// an access performed by something other than a load or store instruction,
// is not recognised. The reconstructed effective address is checked
// against the register really being accessed and the access is serviced
// without compensation on a mismatch.

// readCycles returns the length in cycles of the instruction performing
// the current read, or zero if the instruction cannot be identified.
func (crd *Card) readCycles(reg uint8) uint16 {
	pc := crd.cpu.PC()
	op3 := crd.cpu.Peek(pc - 3)
	op2 := crd.cpu.Peek(pc - 2)

	var cycles uint16
	var abs, absX, absY, indX, indY bool

	switch {
	case op2&0x1f == 0x01:
		// ora/and/eor/adc/sta group, (zp,x)
		cycles = 6
		indX = true
	case op2&0x1f == 0x11:
		// ora/and/eor/adc/sta group, (zp),y
		cycles = 5
		indY = true
	case op2&0x1f == 0x12 && crd.cpu.Is65C02():
		// ora/and/eor/adc/sta group, (zp)
		cycles = 5
	default:
		cycles = 4
		abs = true

		switch {
		case op3&0x1f == 0x0d,
			op3 == 0x2c, op3 == 0xac, op3 == 0xae, op3 == 0xcc, op3 == 0xec:
			// column 0x0d absolute plus bit/ldy/ldx/cpy/cpx abs
		case op3 == 0xbc, op3 == 0x3c && crd.cpu.Is65C02():
			// ldy abs,x and the CMOS bit abs,x
			absX = true
		case op3 == 0xbe:
			// ldx abs,y
			absY = true
		case op3&0x1f == 0x1d:
			absX = true
		case op3&0x1f == 0x19:
			absY = true
		case op3&0x10 == 0x10:
			// unrecognised indexed form: let the address check reject it
		default:
			return crd.decodeFault("read", pc)
		}
	}

	var ea uint16
	if abs {
		ea = uint16(crd.cpu.Peek(pc-2)) | uint16(crd.cpu.Peek(pc-1))<<8
		if absY {
			ea += uint16(crd.cpu.Y())
		}
		if absX {
			ea += uint16(crd.cpu.X())
		}
	} else {
		zp := crd.cpu.Peek(pc - 1)
		if indX {
			zp += crd.cpu.X()
		}
		ea = uint16(crd.cpu.Peek(uint16(zp))) | uint16(crd.cpu.Peek(uint16(zp+1)))<<8
		if indY {
			ea += uint16(crd.cpu.Y())
		}
	}

	if ea&0xf80f != 0xc000|uint16(reg) {
		return crd.decodeFault("read", pc)
	}

	return cycles
}

// readAdjust is the number of cycles between now and the moment the
// current read samples the bus: one cycle before the end of the
// instruction.
func (crd *Card) readAdjust(reg uint8) uint16 {
	n := crd.readCycles(reg)
	if n > 0 {
		n--
	}
	return n
}

// writeCycles returns the length in cycles of the instruction performing
// the current write, or zero if the instruction cannot be identified.
func (crd *Card) writeCycles(reg uint8) uint16 {
	pc := crd.cpu.PC()
	op3 := crd.cpu.Peek(pc - 3)
	op2 := crd.cpu.Peek(pc - 2)

	var cycles uint16
	var abs bool
	var op uint8

	switch {
	case op3 == 0x8c, op3 == 0x8d, op3 == 0x8e:
		// sty/sta/stx abs
		cycles = 4
		abs = true
		op = op3
	case op3 == 0x99, op3 == 0x9d:
		// sta abs,y and sta abs,x
		cycles = 5
		abs = true
		op = op3
	case op2 == 0x81:
		// sta (zp,x)
		cycles = 6
		op = op2
	case op2 == 0x91:
		// sta (zp),y
		cycles = 6
		op = op2
	case op2 == 0x92 && crd.cpu.Is65C02():
		// sta (zp)
		cycles = 5
		op = op2
	case op3 == 0x9c && crd.cpu.Is65C02():
		// stz abs
		cycles = 4
		abs = true
		op = op3
	case op3 == 0x9e && crd.cpu.Is65C02():
		// stz abs,x
		cycles = 5
		abs = true
		op = op3
	default:
		return crd.decodeFault("write", pc)
	}

	var ea uint16
	if abs {
		ea = uint16(crd.cpu.Peek(pc-2)) | uint16(crd.cpu.Peek(pc-1))<<8
		if op == 0x99 {
			ea += uint16(crd.cpu.Y())
		}
		if op == 0x9d || op == 0x9e {
			ea += uint16(crd.cpu.X())
		}
	} else {
		zp := crd.cpu.Peek(pc - 1)
		if op == 0x81 {
			zp += crd.cpu.X()
		}
		ea = uint16(crd.cpu.Peek(uint16(zp))) | uint16(crd.cpu.Peek(uint16(zp+1)))<<8
		if op == 0x91 {
			ea += uint16(crd.cpu.Y())
		}
	}

	if ea&0xf80f != 0xc000|uint16(reg) {
		return crd.decodeFault("write", pc)
	}

	return cycles
}

// decodeFault records a failure to identify the instruction behind a
// register access. Diagnostic builds stop; otherwise the access goes
// ahead uncompensated, which is close enough for software that is not
// racing the timers.
func (crd *Card) decodeFault(access string, pc uint16) uint16 {
	test.Assert(false, "card: cannot identify the instruction performing a %s access (pc=%04x)", access, pc)
	logger.Logf(crd.env, "card", "%s access by unrecognised instruction (pc=%04x): no cycle compensation", access, pc)
	return 0
}
