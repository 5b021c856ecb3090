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
	"testing"

	"github.com/xizhe-zhang/mockingboard/hardware/via"
	"github.com/xizhe-zhang/mockingboard/test"
)

func (mc *mockCPU) fabricateAbs(opcode uint8, operand uint16) {
	mc.mem[0x0300] = opcode
	mc.mem[0x0301] = uint8(operand)
	mc.mem[0x0302] = uint8(operand >> 8)
	mc.pc = 0x0303
}

func (mc *mockCPU) fabricateInd(opcode uint8, zp uint8) {
	mc.mem[0x0300] = opcode
	mc.mem[0x0301] = zp
	mc.pc = 0x0302
}

// setPointer places a two byte pointer in the zero page. the second byte
// wraps rather than crossing into page one
func (mc *mockCPU) setPointer(zp uint8, pointer uint16) {
	mc.mem[uint16(zp)] = uint8(pointer)
	mc.mem[uint16(uint8(zp+1))] = uint8(pointer >> 8)
}

func TestReadCyclesAbsolute(t *testing.T) {
	h := newHarness(t, "mockingboard")
	addr := unitAddr(0, via.RegT1CL)
	reg := uint8(addr & 0xf)

	// lda/ldx/ldy/bit/cpy/cpx and the read-modify column
	for _, opcode := range []uint8{0xad, 0xae, 0xac, 0x2c, 0xcc, 0xec, 0x0d, 0x2d, 0x4d, 0x6d, 0xcd, 0xed} {
		h.cpu.fabricateAbs(opcode, addr)
		test.ExpectEquality(t, h.crd.readCycles(reg), 4, opcode)
	}

	// any slot decodes: the address check masks the slot bits
	h.cpu.fabricateAbs(0xad, 0xc70d)
	test.ExpectEquality(t, h.crd.readCycles(via.RegIFR), 4)
}

func TestReadCyclesAbsoluteIndexed(t *testing.T) {
	h := newHarness(t, "mockingboard")
	addr := unitAddr(0, via.RegT1CL)
	reg := uint8(addr & 0xf)

	h.cpu.x = 5
	h.cpu.y = 7

	for _, opcode := range []uint8{0xbd, 0x1d, 0x3d, 0x5d, 0x7d, 0xdd, 0xfd, 0xbc} {
		h.cpu.fabricateAbs(opcode, addr-5)
		test.ExpectEquality(t, h.crd.readCycles(reg), 4, opcode)
	}
	for _, opcode := range []uint8{0xb9, 0x19, 0x39, 0x59, 0x79, 0xd9, 0xf9, 0xbe} {
		h.cpu.fabricateAbs(opcode, addr-7)
		test.ExpectEquality(t, h.crd.readCycles(reg), 4, opcode)
	}

	// bit abs,x exists only on the 65C02
	h.cpu.fabricateAbs(0x3c, addr-5)
	test.ExpectEquality(t, h.crd.readCycles(reg), 0)
	h.cpu.cmos = true
	h.cpu.fabricateAbs(0x3c, addr-5)
	test.ExpectEquality(t, h.crd.readCycles(reg), 4)
}

func TestReadCyclesIndirect(t *testing.T) {
	h := newHarness(t, "mockingboard")
	addr := unitAddr(0, via.RegT1CL)
	reg := uint8(addr & 0xf)

	// (zp,x): six cycles. the pointer is fetched from zp+x
	h.cpu.x = 2
	h.cpu.fabricateInd(0xa1, 0x3e)
	h.cpu.setPointer(0x40, addr)
	test.ExpectEquality(t, h.crd.readCycles(reg), 6)

	// the zp+x addition wraps within the zero page
	h.cpu.x = 1
	h.cpu.fabricateInd(0xa1, 0xff)
	h.cpu.setPointer(0x00, addr)
	test.ExpectEquality(t, h.crd.readCycles(reg), 6)

	// (zp),y: five cycles
	h.cpu.x = 0
	h.cpu.y = 3
	h.cpu.fabricateInd(0xb1, 0x40)
	h.cpu.setPointer(0x40, addr-3)
	test.ExpectEquality(t, h.crd.readCycles(reg), 5)

	// (zp): five cycles, 65C02 only
	h.cpu.y = 0
	h.cpu.fabricateInd(0xb2, 0x40)
	h.cpu.setPointer(0x40, addr)
	test.ExpectEquality(t, h.crd.readCycles(reg), 0)
	h.cpu.cmos = true
	test.ExpectEquality(t, h.crd.readCycles(reg), 5)
}

func TestReadCyclesRejection(t *testing.T) {
	h := newHarness(t, "mockingboard")
	addr := unitAddr(0, via.RegT1CL)
	reg := uint8(addr & 0xf)

	// a recognised instruction whose target is not the register being
	// read cannot be the instruction performing the read
	h.cpu.fabricateAbs(0xad, 0x0400)
	test.ExpectEquality(t, h.crd.readCycles(reg), 0)

	h.cpu.fabricateAbs(0xad, unitAddr(0, via.RegT2CL))
	test.ExpectEquality(t, h.crd.readCycles(reg), 0)

	// an unrecognised instruction
	h.cpu.fabricateAbs(0xea, addr)
	test.ExpectEquality(t, h.crd.readCycles(reg), 0)

	// the fallback for unrecognised indexed forms relies on the address
	// check: with an index in play the unindexed operand cannot match
	h.cpu.x = 5
	h.cpu.fabricateAbs(0x3c, addr-5)
	test.ExpectEquality(t, h.crd.readCycles(reg), 0)
}

func TestReadAdjust(t *testing.T) {
	h := newHarness(t, "mockingboard")
	addr := unitAddr(0, via.RegT1CL)
	reg := uint8(addr & 0xf)

	// the bus is sampled one cycle before the instruction ends
	h.cpu.fabricateAbs(0xad, addr)
	test.ExpectEquality(t, h.crd.readAdjust(reg), 3)

	// no compensation degrades to no adjustment
	h.cpu.fabricateAbs(0xea, addr)
	test.ExpectEquality(t, h.crd.readAdjust(reg), 0)
}

func TestWriteCyclesAbsolute(t *testing.T) {
	h := newHarness(t, "mockingboard")
	addr := unitAddr(0, via.RegT1CH)
	reg := uint8(addr & 0xf)

	for _, opcode := range []uint8{0x8d, 0x8e, 0x8c} {
		h.cpu.fabricateAbs(opcode, addr)
		test.ExpectEquality(t, h.crd.writeCycles(reg), 4, opcode)
	}

	h.cpu.x = 5
	h.cpu.fabricateAbs(0x9d, addr-5)
	test.ExpectEquality(t, h.crd.writeCycles(reg), 5)

	h.cpu.y = 7
	h.cpu.fabricateAbs(0x99, addr-7)
	test.ExpectEquality(t, h.crd.writeCycles(reg), 5)

	// stz forms are 65C02 only
	h.cpu.fabricateAbs(0x9c, addr)
	test.ExpectEquality(t, h.crd.writeCycles(reg), 0)
	h.cpu.fabricateAbs(0x9e, addr-5)
	test.ExpectEquality(t, h.crd.writeCycles(reg), 0)
	h.cpu.cmos = true
	h.cpu.fabricateAbs(0x9c, addr)
	test.ExpectEquality(t, h.crd.writeCycles(reg), 4)
	h.cpu.fabricateAbs(0x9e, addr-5)
	test.ExpectEquality(t, h.crd.writeCycles(reg), 5)
}

func TestWriteCyclesIndirect(t *testing.T) {
	h := newHarness(t, "mockingboard")
	addr := unitAddr(0, via.RegT1CH)
	reg := uint8(addr & 0xf)

	h.cpu.x = 2
	h.cpu.fabricateInd(0x81, 0x3e)
	h.cpu.setPointer(0x40, addr)
	test.ExpectEquality(t, h.crd.writeCycles(reg), 6)

	h.cpu.x = 0
	h.cpu.y = 9
	h.cpu.fabricateInd(0x91, 0x40)
	h.cpu.setPointer(0x40, addr-9)
	test.ExpectEquality(t, h.crd.writeCycles(reg), 6)

	// sta (zp) is 65C02 only
	h.cpu.y = 0
	h.cpu.fabricateInd(0x92, 0x40)
	h.cpu.setPointer(0x40, addr)
	test.ExpectEquality(t, h.crd.writeCycles(reg), 0)
	h.cpu.cmos = true
	test.ExpectEquality(t, h.crd.writeCycles(reg), 5)
}

func TestWriteCyclesRejection(t *testing.T) {
	h := newHarness(t, "mockingboard")
	addr := unitAddr(0, via.RegT1CH)
	reg := uint8(addr & 0xf)

	h.cpu.fabricateAbs(0x8d, 0x0400)
	test.ExpectEquality(t, h.crd.writeCycles(reg), 0)

	h.cpu.fabricateAbs(0x8d, unitAddr(0, via.RegT2CH))
	test.ExpectEquality(t, h.crd.writeCycles(reg), 0)

	h.cpu.fabricateAbs(0xea, addr)
	test.ExpectEquality(t, h.crd.writeCycles(reg), 0)
}
