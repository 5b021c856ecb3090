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
	"github.com/xizhe-zhang/mockingboard/hardware/via"
	"github.com/xizhe-zhang/mockingboard/test"
)

// startTimer1 marks the unit's timer1 as running. A timer that will
// interrupt, or that is free-running, takes over the pacing of audio
// generation from the periodic update.
func (crd *Card) startTimer1(u *Unit) {
	u.VIA.Timer1.Active = true

	if u.VIA.IER&via.IntT1 == via.IntT1 || u.VIA.ACR&via.ACRFreeRunning == via.ACRFreeRunning {
		crd.timerUnit = u.num
	}
}

// startTimer1Restore is the variation used when restoring the oldest saved
// states, which did not record whether the timer was running: interrupt
// enable is the best guess.
func (crd *Card) startTimer1Restore(u *Unit) {
	if u.VIA.IER&via.IntT1 == 0 {
		return
	}
	u.VIA.Timer1.Active = true
	crd.timerUnit = u.num
}

func (crd *Card) stopTimer1(u *Unit) {
	u.VIA.Timer1.Active = false
	crd.timerUnit = -1
}

func (crd *Card) startTimer2(u *Unit) {
	u.VIA.Timer2.Active = true
}

func (crd *Card) stopTimer2(u *Unit) {
	u.VIA.Timer2.Active = false
}

// setTimerSyncEvent schedules the underflow event for a timer that has
// just been loaded and returns the value the counter starts from.
//
// Both the deadline and the returned counter include the write
// compensation: the clock stands at the start of the instruction
// performing the write but the write itself lands near the end of the
// instruction, so from the clock's point of view the period is longer and
// the counter further along than the programmed value.
func (crd *Card) setTimerSyncEvent(u *Unit, timer int, reg uint8, latch uint16) uint16 {
	adjust := crd.writeCycles(reg)

	ev := crd.sync[u.num*2+timer]
	crd.events.Insert(ev, uint64(latch)+via.ReloadCycles+uint64(adjust))

	return latch + adjust
}

// syncEvent is dispatched by the event manager when a timer reaches its
// interrupt point.
func (crd *Card) syncEvent(id int, _ uint64, _ uint64) uint64 {
	u := crd.units[id/2]

	if id&1 == 0 {
		test.Assert(u.VIA.Timer1.Active, "timer1 event for unit %d while stopped", u.num)

		// bring audio generation up to date before the interrupt disturbs
		// anything
		crd.update()

		crd.updateIFR(u, 0, via.IntT1)
		crd.advance()

		if u.VIA.ACR&via.ACRFreeRunning == 0 {
			crd.stopTimer1(u)
			return 0
		}

		// the reconciliation just above has reloaded the counter, so the
		// next interrupt is a full period from now
		crd.startTimer1(u)
		return uint64(u.VIA.Timer1.Counter) + via.ReloadCycles
	}

	test.Assert(u.VIA.Timer2.Active, "timer2 event for unit %d while stopped", u.num)

	crd.updateIFR(u, 0, via.IntT2)
	crd.stopTimer2(u)
	return 0
}
