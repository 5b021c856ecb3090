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

// Package clock counts CPU cycles and schedules work against the count.
//
// The Clock type is a plain cumulative cycle counter. It is the time base
// for everything on the card: the VIA timers, sample generation and random
// number generation all key off the one count.
//
// The Manager type dispatches Events when the clock reaches their deadline.
// Deadlines are only checked when the Dispatch() function is called, meaning
// that the host decides the granularity of dispatch. For cycle accurate
// results Dispatch() should be called after every instruction; the overshoot
// is reported to the event callback either way.
package clock

import "fmt"

// Clock is the cumulative number of CPU cycles since the machine was
// switched on. The zero value is a clock that has never run.
type Clock struct {
	cycles uint64
}

// Cycles returns the cumulative cycle count.
func (clk *Clock) Cycles() uint64 {
	return clk.cycles
}

// Advance moves the clock forward by the given number of cycles.
func (clk *Clock) Advance(cycles uint64) {
	clk.cycles += cycles
}

// Reset winds the clock back to zero.
func (clk *Clock) Reset() {
	clk.cycles = 0
}

func (clk *Clock) String() string {
	return fmt.Sprintf("%d", clk.cycles)
}
