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
	"github.com/xizhe-zhang/mockingboard/environment"
	"github.com/xizhe-zhang/mockingboard/hardware/card"
	"github.com/xizhe-zhang/mockingboard/hardware/card/script"
	"github.com/xizhe-zhang/mockingboard/hardware/clock"
)

// number of cycles between continueCheck calls in the Run() function
const runChunkCycles = 1000

// System is the root of the emulation and contains references to all the
// sub-systems: the cycle clock, the event manager, the stand-in CPU and
// the card itself.
type System struct {
	Env    *environment.Environment
	Clock  *clock.Clock
	Events *clock.Manager
	CPU    *CPU
	Card   *card.Card
}

// NewSystem is the preferred method of initialisation for the System
// type. the clock must be the same one the environment was created with.
func NewSystem(env *environment.Environment, clk *clock.Clock) (*System, error) {
	sys := &System{
		Env:    env,
		Clock:  clk,
		Events: clock.NewManager(clk),
		CPU:    NewCPU(),
	}

	var err error
	sys.Card, err = card.NewCard(env, sys.Clock, sys.Events, sys.CPU)
	if err != nil {
		return nil, err
	}

	return sys, nil
}

// Reset the card. the cycle clock is monotonic and is not reset.
func (sys *System) Reset(powerCycle bool) {
	sys.Card.Reset(powerCycle)
}

// Poke writes to the card as though the host CPU had executed an absolute
// store instruction targeting addr.
func (sys *System) Poke(addr uint16, data uint8) {
	n := sys.CPU.fabricateStore(addr)
	sys.Card.Write(addr, data)
	sys.tick(n)
}

// Peek reads from the card as though the host CPU had executed an
// absolute load instruction targeting addr. unlike CPU.Peek this is a
// live bus access with side effects.
func (sys *System) Peek(addr uint16) uint8 {
	n := sys.CPU.fabricateLoad(addr)
	v := sys.Card.Read(addr)
	sys.tick(n)
	return v
}

// Select accesses the card's device select page.
func (sys *System) Select(addr uint16) uint8 {
	n := sys.CPU.fabricateLoad(addr)
	v := sys.Card.DeviceSelect(addr)
	sys.tick(n)
	return v
}

func (sys *System) tick(cycles uint64) {
	sys.Clock.Advance(cycles)
	sys.Events.Dispatch()
	sys.Card.PeriodicUpdate(cycles)
}

// RunForCycles advances the emulation by the given number of cycles,
// stopping at every event deadline on the way so that timer and speech
// events fire at their exact cycle.
func (sys *System) RunForCycles(cycles uint64) {
	target := sys.Clock.Cycles() + cycles
	for sys.Clock.Cycles() < target {
		step := target - sys.Clock.Cycles()
		if deadline, ok := sys.Events.Next(); ok && deadline > sys.Clock.Cycles() {
			if d := deadline - sys.Clock.Cycles(); d < step {
				step = d
			}
		}
		sys.tick(step)
	}
}

// Run sets the emulation running as quickly as possible. the
// continueCheck function is called at regular intervals; the emulation
// ends when it returns false. pacing against real time is the caller's
// responsibility, typically through the audio queue.
func (sys *System) Run(continueCheck func() (bool, error)) error {
	if continueCheck == nil {
		continueCheck = func() (bool, error) { return true, nil }
	}

	for {
		sys.RunForCycles(runChunkCycles)

		cont, err := continueCheck()
		if err != nil {
			return err
		}
		if !cont {
			return nil
		}
	}
}

// RunScript performs every access in the script at its stamped cycle.
// accesses closer together than the stand-in instruction time are
// serviced back to back.
func (sys *System) RunScript(scr *script.Script) {
	for _, e := range scr.Entries {
		if e.Cycle > sys.Clock.Cycles() {
			sys.RunForCycles(e.Cycle - sys.Clock.Cycles())
		}
		switch e.Access {
		case script.AccessWrite:
			sys.Poke(e.Addr, e.Data)
		case script.AccessRead:
			sys.Peek(e.Addr)
		case script.AccessSelect:
			sys.Select(e.Addr)
		}
	}
}
