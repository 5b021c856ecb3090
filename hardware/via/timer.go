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

package via

import "fmt"

// ReloadCycles is the number of cycles a timer spends outside the count
// proper. A timer loaded with a latch value of N interrupts every N+2
// cycles: one cycle to move from 0x0000 to 0xffff and one more for the
// reload of the latched value.
const ReloadCycles = 2

// Timer is one of the two interval timers on the VIA. The counter
// decrements once per CPU cycle; what happens on underflow is decided by
// the owner of the VIA.
type Timer struct {
	Counter uint16
	Latch   uint16

	// the interrupt condition lags underflow by one cycle. an underflow
	// seen on the final cycle of an advance sets IRQDelay rather than
	// returning true; the next advance completes it
	IRQDelay bool

	// set by a write to the counter high byte and cleared when the timer
	// is stopped
	Active bool
}

// Advance moves the timer on by the given number of cycles and returns
// true if the interrupt condition has been met.
//
// Advancing in several small steps is equivalent to advancing in one large
// step, except that an advance of zero cycles is a no-op and will not
// complete a delayed interrupt.
func (tm *Timer) Advance(clocks uint16) bool {
	if clocks == 0 {
		return false
	}

	remain := int(tm.Counter) - int(clocks)
	tm.Counter = uint16(remain)

	irq := false
	if tm.IRQDelay {
		tm.IRQDelay = false
		irq = true
	}
	if remain < 0 {
		if remain <= -ReloadCycles {
			irq = true
		} else {
			tm.IRQDelay = true
		}
	}
	return irq
}

// Reload folds an underflowed counter back into the latched period,
// preserving any cycles that were counted beyond the underflow point. Small
// latch values may need more than one period to bring the counter back
// into range.
func (tm *Timer) Reload() {
	t := int(int16(tm.Counter))
	for t < -1 {
		t += int(tm.Latch) + ReloadCycles
	}
	tm.Counter = uint16(t)
	tm.IRQDelay = t == -1
}

func (tm Timer) String() string {
	return fmt.Sprintf("counter=%04x latch=%04x active=%v", tm.Counter, tm.Latch, tm.Active)
}
