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

// IRQSource distinguishes the card devices that drive the CPU's IRQ line.
// The line into the CPU is the OR of all sources.
type IRQSource int

// The list of IRQSource values. IRQVIA covers the timer and speech
// interrupts that arrive through a VIA; IRQSpeech is the direct connection
// of the speech chip's A/!R line that only the alternate card wires up.
const (
	IRQVIA IRQSource = iota
	IRQSpeech
	NumIRQSources
)

// CPU is the card's interface to the host 6502.
type CPU interface {
	// PC returns the current value of the program counter. The card is
	// told about an access once the host has fetched the complete
	// instruction, so the program counter has moved past the operand
	// bytes of the instruction performing the access.
	PC() uint16

	// the index registers, needed to reconstruct effective addresses
	X() uint8
	Y() uint8

	// Peek reads host memory without side effects
	Peek(addr uint16) uint8

	// Is65C02 distinguishes the CMOS CPU from the NMOS original. some
	// addressing modes exist on only one of the two
	Is65C02() bool

	// the card asserts and releases the IRQ line for each source
	// independently
	AssertIRQ(src IRQSource)
	ReleaseIRQ(src IRQSource)
}
