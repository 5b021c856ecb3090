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

// a latch value of N written by a four cycle store interrupts N+2 cycles
// after the store completes: N+2+4 cycles from the start of the store.

func TestTimerOneShot(t *testing.T) {
	h := newHarness(t, "mockingboard")

	h.write(unitAddr(0, via.RegT1CL), 0x64)
	h.write(unitAddr(0, via.RegT1CH), 0x00)

	// underflow event is 106 cycles from the start of the high byte
	// store. the store itself accounts for 4 of them
	h.run(101)
	test.ExpectEquality(t, h.crd.units[0].VIA.IFR&via.IntT1, 0x00)
	h.run(1)
	test.ExpectEquality(t, h.crd.units[0].VIA.IFR&via.IntT1, via.IntT1)

	// interrupt not enabled: bit 7 stays clear and the line stays released
	test.ExpectEquality(t, h.crd.units[0].VIA.IFR&via.IntAny, 0x00)
	test.ExpectEquality(t, h.cpu.irq[IRQVIA], false)

	// one-shot: the timer stops after the first underflow
	test.ExpectEquality(t, h.crd.units[0].VIA.Timer1.Active, false)
}

func TestTimerIRQLineAndAck(t *testing.T) {
	h := newHarness(t, "mockingboard")

	h.write(unitAddr(0, via.RegIER), 0x80|via.IntT1)
	h.write(unitAddr(0, via.RegT1CL), 0x64)
	h.write(unitAddr(0, via.RegT1CH), 0x00)

	h.run(102)
	test.ExpectEquality(t, h.crd.units[0].VIA.IFR, via.IntAny|via.IntT1)
	test.ExpectEquality(t, h.cpu.irq[IRQVIA], true)

	// reading the counter low byte acknowledges
	h.read(unitAddr(0, via.RegT1CL))
	test.ExpectEquality(t, h.crd.units[0].VIA.IFR, 0x00)
	test.ExpectEquality(t, h.cpu.irq[IRQVIA], false)
}

func TestTimerAckByIFRWrite(t *testing.T) {
	h := newHarness(t, "mockingboard")

	h.write(unitAddr(0, via.RegIER), 0x80|via.IntT1)
	h.write(unitAddr(0, via.RegT1CL), 0x64)
	h.write(unitAddr(0, via.RegT1CH), 0x00)

	h.run(102)
	test.ExpectEquality(t, h.cpu.irq[IRQVIA], true)

	// writing a one to an IFR bit clears the flag
	h.write(unitAddr(0, via.RegIFR), via.IntT1)
	test.ExpectEquality(t, h.crd.units[0].VIA.IFR, 0x00)
	test.ExpectEquality(t, h.cpu.irq[IRQVIA], false)
}

func TestTimerFreeRunningRearm(t *testing.T) {
	h := newHarness(t, "mockingboard")

	h.write(unitAddr(0, via.RegACR), via.ACRFreeRunning)
	h.write(unitAddr(0, via.RegIER), 0x80|via.IntT1)
	h.write(unitAddr(0, via.RegT1CL), 0x32)
	h.write(unitAddr(0, via.RegT1CH), 0x00)

	// first interrupt 52 cycles after the end of the store, then every
	// latch+2 cycles. the acknowledging store occupies 4 of each period
	h.run(52)
	for i := 0; i < 5; i++ {
		test.ExpectEquality(t, h.cpu.irq[IRQVIA], true, i)
		h.write(unitAddr(0, via.RegIFR), via.IntT1)
		test.ExpectEquality(t, h.cpu.irq[IRQVIA], false, i)
		h.run(48)
	}

	test.ExpectEquality(t, h.crd.units[0].VIA.Timer1.Active, true)
}

func TestTimerIFRPolling(t *testing.T) {
	h := newHarness(t, "mockingboard")

	h.write(unitAddr(0, via.RegT1CL), 0x64)
	h.write(unitAddr(0, via.RegT1CH), 0x00)

	// each poll is a four cycle load. the flag must appear on the poll
	// whose final cycle coincides with the underflow
	for i := 0; i < 25; i++ {
		test.ExpectEquality(t, h.read(unitAddr(0, via.RegIFR))&via.IntT1, 0x00, i)
	}

	// the underflow event has not fired yet but it falls within the next
	// polling instruction, so the poll sees the flag early
	test.ExpectEquality(t, h.crd.units[0].VIA.IFR&via.IntT1, 0x00)
	test.ExpectEquality(t, h.read(unitAddr(0, via.RegIFR))&via.IntT1, via.IntT1)

	// and by now the event has committed it
	test.ExpectEquality(t, h.crd.units[0].VIA.IFR&via.IntT1, via.IntT1)
}

func TestTimerCounterRead(t *testing.T) {
	h := newHarness(t, "mockingboard")

	h.write(unitAddr(0, via.RegT1CL), 0x64)
	h.write(unitAddr(0, via.RegT1CH), 0x00)

	// the counter starts at 104: the latch plus the four cycles of the
	// store. the read samples the bus three cycles into its own
	// instruction, one instruction later: 104 - 4 - 3
	test.ExpectEquality(t, h.read(unitAddr(0, via.RegT1CL)), 0x61)
	test.ExpectEquality(t, h.read(unitAddr(0, via.RegT1CH)), 0x00)

	// latch reads are not adjusted
	test.ExpectEquality(t, h.read(unitAddr(0, via.RegT1LL)), 0x64)
	test.ExpectEquality(t, h.read(unitAddr(0, via.RegT1LH)), 0x00)
}

func TestTimer2OneShot(t *testing.T) {
	h := newHarness(t, "mockingboard")

	h.write(unitAddr(0, via.RegIER), 0x80|via.IntT2)
	h.write(unitAddr(0, via.RegT2CL), 0xc8)
	h.write(unitAddr(0, via.RegT2CH), 0x00)

	h.run(201)
	test.ExpectEquality(t, h.crd.units[0].VIA.IFR&via.IntT2, 0x00)
	h.run(1)
	test.ExpectEquality(t, h.crd.units[0].VIA.IFR, via.IntAny|via.IntT2)
	test.ExpectEquality(t, h.cpu.irq[IRQVIA], true)

	// timer2 has no reload: the counter runs on through zero
	test.ExpectEquality(t, h.read(unitAddr(0, via.RegT2CL)), 0xfb)

	// the read acknowledged
	test.ExpectEquality(t, h.crd.units[0].VIA.IFR, 0x00)
	test.ExpectEquality(t, h.cpu.irq[IRQVIA], false)
}

func TestTimerRestartReplacesEvent(t *testing.T) {
	h := newHarness(t, "mockingboard")

	h.write(unitAddr(0, via.RegIER), 0x80|via.IntT1)
	h.write(unitAddr(0, via.RegT1CL), 0x64)
	h.write(unitAddr(0, via.RegT1CH), 0x00)

	// restart the timer halfway through the count. the original deadline
	// must not fire
	h.run(46)
	h.write(unitAddr(0, via.RegT1CH), 0x00)

	h.run(52)
	test.ExpectEquality(t, h.cpu.irq[IRQVIA], false)
	h.run(50)
	test.ExpectEquality(t, h.cpu.irq[IRQVIA], true)
}

func TestTimerWriteCompensationIndexed(t *testing.T) {
	h := newHarness(t, "mockingboard")

	h.write(unitAddr(0, via.RegIER), 0x80|via.IntT1)
	h.write(unitAddr(0, via.RegT1CL), 0x64)

	// a six cycle store pushes the underflow two cycles further out than
	// the four cycle version
	h.cpu.fabricateStoreIndY(0x40, unitAddr(0, via.RegT1CH), 0)
	h.crd.Write(unitAddr(0, via.RegT1CH), 0x00)
	h.clk.Advance(6)
	h.events.Dispatch()

	h.run(101)
	test.ExpectEquality(t, h.cpu.irq[IRQVIA], false)
	h.run(1)
	test.ExpectEquality(t, h.cpu.irq[IRQVIA], true)
}

func TestTimerLongGapReconcile(t *testing.T) {
	h := newHarness(t, "mockingboard")

	h.write(unitAddr(0, via.RegT1CL), 0x0a)
	h.write(unitAddr(0, via.RegT1CH), 0x00)

	// 20005 cycles into a 12 cycle period the counter stands at 1. the
	// read accounts for a further 3 cycles, taking it through a reload
	// back to the latch value
	h.run(20001)
	test.ExpectEquality(t, h.read(unitAddr(0, via.RegT1CL)), 0x0a)
}

func TestTimersIndependentUnits(t *testing.T) {
	h := newHarness(t, "mockingboard")

	h.write(unitAddr(0, via.RegIER), 0x80|via.IntT1)
	h.write(unitAddr(3, via.RegIER), 0x80|via.IntT1)

	h.write(unitAddr(0, via.RegT1CL), 0x64)
	h.write(unitAddr(0, via.RegT1CH), 0x00)
	h.write(unitAddr(3, via.RegT1CL), 0xc8)
	h.write(unitAddr(3, via.RegT1CH), 0x00)

	// unit 0 fires first. its flag must not appear on unit 3
	h.run(94)
	test.ExpectEquality(t, h.crd.units[0].VIA.IFR&via.IntT1, via.IntT1)
	test.ExpectEquality(t, h.crd.units[3].VIA.IFR&via.IntT1, 0x00)
	test.ExpectEquality(t, h.cpu.irq[IRQVIA], true)

	// acknowledging unit 0 leaves the line released only until unit 3
	// underflows
	h.write(unitAddr(0, via.RegIFR), via.IntT1)
	test.ExpectEquality(t, h.cpu.irq[IRQVIA], false)

	h.run(200)
	test.ExpectEquality(t, h.crd.units[3].VIA.IFR&via.IntT1, via.IntT1)
	test.ExpectEquality(t, h.cpu.irq[IRQVIA], true)
}
