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

package via_test

import (
	"testing"

	"github.com/xizhe-zhang/mockingboard/hardware/via"
	"github.com/xizhe-zhang/mockingboard/test"
)

func TestPowerOn(t *testing.T) {
	v := via.NewVIA()
	test.ExpectEquality(t, v.Timer1.Latch, uint16(0xffff))
	test.ExpectEquality(t, v.Timer2.Latch, uint16(0))
	test.ExpectEquality(t, v.IFR, uint8(0))
	test.ExpectEquality(t, v.IER, uint8(0))
}

func TestUpdateIFR(t *testing.T) {
	v := via.NewVIA()

	// flag with no enabled interrupts: bit 7 stays clear
	test.ExpectEquality(t, v.UpdateIFR(0, via.IntT1), false)
	test.ExpectEquality(t, v.IFR, via.IntT1)

	// enabling the interrupt raises bit 7 on the next update
	v.IER = via.IntT1
	test.ExpectEquality(t, v.UpdateIFR(0, 0), true)
	test.ExpectEquality(t, v.IFR, via.IntT1|via.IntAny)

	// a flagged but unenabled interrupt does not contribute to bit 7
	v.IER = via.IntT2
	test.ExpectEquality(t, v.UpdateIFR(0, 0), false)
	test.ExpectEquality(t, v.IFR, via.IntT1)

	// clearing the flag
	v.IER = via.IntT1
	v.UpdateIFR(0, 0)
	test.ExpectEquality(t, v.UpdateIFR(via.IntT1, 0), false)
	test.ExpectEquality(t, v.IFR, uint8(0))
}

func TestUpdateIFRBit7Invariant(t *testing.T) {
	// bit 7 of the IFR is the conjunction of the flag and enable registers
	// for every combination of the two
	v := via.NewVIA()
	for ifr := 0; ifr < 0x80; ifr += 3 {
		for ier := 0; ier < 0x80; ier += 5 {
			v.IFR = 0
			v.IER = uint8(ier)
			bit7 := v.UpdateIFR(0, uint8(ifr))
			test.ExpectEquality(t, bit7, ifr&ier != 0)
			test.ExpectEquality(t, v.IFR&0x7f, uint8(ifr))
			test.ExpectEquality(t, v.IFR&via.IntAny == via.IntAny, bit7)
		}
	}
}

func TestTimer1Read(t *testing.T) {
	v := via.NewVIA()
	v.Timer1.Counter = 100
	v.Timer1.Latch = 50

	// the adjusted value is returned without committing anything
	test.ExpectEquality(t, v.Timer1Read(3), uint16(97))
	test.ExpectEquality(t, v.Timer1.Counter, uint16(100))

	// an adjustment beyond the underflow point returns the reloaded value
	v.Timer1.Counter = 1
	test.ExpectEquality(t, v.Timer1Read(3), uint16(50))
	test.ExpectEquality(t, v.Timer1.Counter, uint16(1))
	test.ExpectEquality(t, v.Timer1.IRQDelay, false)
}

func TestTimer2Read(t *testing.T) {
	v := via.NewVIA()
	v.Timer2.Counter = 100

	test.ExpectEquality(t, v.Timer2Read(3), uint16(97))
	test.ExpectEquality(t, v.Timer2.Counter, uint16(100))

	// timer2 does not reload: the read value wraps through 0xffff
	v.Timer2.Counter = 1
	test.ExpectEquality(t, v.Timer2Read(3), uint16(0xfffe))
}

func TestTimerUnderflowPrediction(t *testing.T) {
	v := via.NewVIA()

	v.Timer1.Counter = 10
	test.ExpectEquality(t, v.Timer1Underflowed(4), false)
	test.ExpectEquality(t, v.Timer1Underflowed(12), true)
	test.ExpectEquality(t, v.Timer1.Counter, uint16(10))

	// a pending delayed interrupt completes on any prediction
	v.Timer1.IRQDelay = true
	test.ExpectEquality(t, v.Timer1Underflowed(1), true)
	test.ExpectEquality(t, v.Timer1.IRQDelay, true)

	v.Timer2.Counter = 10
	test.ExpectEquality(t, v.Timer2Underflowed(4), false)
	test.ExpectEquality(t, v.Timer2Underflowed(12), true)
}

func TestSnapshot(t *testing.T) {
	v := via.NewVIA()
	v.ORA = 0x12
	v.Timer1.Counter = 0x3456

	s := v.Snapshot()
	test.ExpectEquality(t, *s, *v)

	// the snapshot is a discrete copy
	v.Timer1.Counter = 0
	test.ExpectEquality(t, s.Timer1.Counter, uint16(0x3456))
}
