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

package hardware

import (
	"fmt"

	"github.com/xizhe-zhang/mockingboard/hardware/card"
)

// the address the stand-in CPU fabricates instructions at
const fabricateOrigin = 0x0300

// CPU is a stand-in for the host 6502. it is not an instruction set
// emulation. the card reconstructs effective addresses from the memory
// around the program counter, so before every access the stand-in
// fabricates an absolute load or store instruction targeting the accessed
// address and leaves the program counter pointing past it, exactly as a
// real CPU would mid-instruction.
type CPU struct {
	mem  [0x10000]uint8
	pc   uint16
	x, y uint8
	cmos bool
	irq  [card.NumIRQSources]bool
}

// NewCPU is the preferred method of initialisation for the CPU type.
func NewCPU() *CPU {
	return &CPU{}
}

func (mc *CPU) String() string {
	model := "6502"
	if mc.cmos {
		model = "65C02"
	}
	return fmt.Sprintf("%s irq=%v", model, mc.IRQ())
}

// PC returns the current value of the program counter.
func (mc *CPU) PC() uint16 {
	return mc.pc
}

// X returns the current value of the X index register.
func (mc *CPU) X() uint8 {
	return mc.x
}

// Y returns the current value of the Y index register.
func (mc *CPU) Y() uint8 {
	return mc.y
}

// Peek reads host memory without side effects.
func (mc *CPU) Peek(addr uint16) uint8 {
	return mc.mem[addr]
}

// Is65C02 returns true if the CPU is the CMOS model.
func (mc *CPU) Is65C02() bool {
	return mc.cmos
}

// SetModel selects between the NMOS 6502 and the CMOS 65C02.
func (mc *CPU) SetModel(cmos bool) {
	mc.cmos = cmos
}

// AssertIRQ drives the IRQ line for the named source.
func (mc *CPU) AssertIRQ(src card.IRQSource) {
	mc.irq[src] = true
}

// ReleaseIRQ releases the IRQ line for the named source.
func (mc *CPU) ReleaseIRQ(src card.IRQSource) {
	mc.irq[src] = false
}

// IRQ returns the state of the IRQ line into the CPU, the wired-OR of
// every source.
func (mc *CPU) IRQ() bool {
	for _, v := range mc.irq {
		if v {
			return true
		}
	}
	return false
}

// fabricateStore sets up the memory context for a "sta abs" instruction
// targeting addr. it returns the number of cycles the instruction takes.
func (mc *CPU) fabricateStore(addr uint16) uint64 {
	mc.mem[fabricateOrigin] = 0x8d
	mc.mem[fabricateOrigin+1] = uint8(addr)
	mc.mem[fabricateOrigin+2] = uint8(addr >> 8)
	mc.pc = fabricateOrigin + 3
	return 4
}

// fabricateLoad sets up the memory context for a "lda abs" instruction
// targeting addr. it returns the number of cycles the instruction takes.
func (mc *CPU) fabricateLoad(addr uint16) uint64 {
	mc.mem[fabricateOrigin] = 0xad
	mc.mem[fabricateOrigin+1] = uint8(addr)
	mc.mem[fabricateOrigin+2] = uint8(addr >> 8)
	mc.pc = fabricateOrigin + 3
	return 4
}
