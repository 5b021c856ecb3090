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
	"github.com/xizhe-zhang/mockingboard/hardware/ay38910"
	"github.com/xizhe-zhang/mockingboard/hardware/ssi263"
	"github.com/xizhe-zhang/mockingboard/hardware/via"
)

// State is a copy of the card at an instant, for the rewind machinery.
// The copy is independent of the card it was taken from and can be
// plumbed back any number of times.
//
// A State records event deadlines relative to the clock at the moment of
// the snapshot. Plumb the card back into a clock standing at that same
// cycle.
type State struct {
	Mode  Mode
	Scale int
	Units [NumUnits]*UnitState
	Chips [NumChips]*ay38910.PSG

	TimerUnit  int
	LastCycles uint64
	LastUpdate uint64

	// cycles remaining on each timer underflow event. negative when the
	// event was idle
	Sync [NumUnits * 2]int64
}

// UnitState is the per-unit portion of State.
type UnitState struct {
	VIA    *via.VIA
	Speech *ssi263.SSI263
	State  BusFunc
	StateB BusFunc
	Reg    uint8
}

// Snapshot creates a copy of the card in its current state.
func (crd *Card) Snapshot() *State {
	crd.advance()

	st := &State{
		Mode:       crd.mode,
		Scale:      crd.scale,
		TimerUnit:  crd.timerUnit,
		LastCycles: crd.lastCycles,
		LastUpdate: crd.lastUpdate,
	}

	for i, u := range crd.units {
		st.Units[i] = &UnitState{
			VIA:    u.VIA.Snapshot(),
			Speech: u.Speech.Snapshot(),
			State:  u.State,
			StateB: u.StateB,
			Reg:    u.Reg,
		}
	}
	for i, psg := range crd.chips {
		st.Chips[i] = psg.Snapshot()
	}
	for i, ev := range crd.sync {
		if remaining, ok := crd.events.Remaining(ev); ok {
			st.Sync[i] = int64(remaining)
		} else {
			st.Sync[i] = -1
		}
	}

	return st
}

// Plumb a previously taken State into the card. Pending audio is
// discarded; generation resumes from the restored timer state.
func (crd *Card) Plumb(st *State) {
	crd.mode = st.Mode
	crd.scale = st.Scale
	crd.timerUnit = st.TimerUnit
	crd.lastCycles = st.LastCycles
	crd.lastUpdate = st.LastUpdate

	for i, u := range crd.units {
		us := st.Units[i]
		*u.VIA = *us.VIA

		// the live chip's phoneme event, if armed, is lost to the manager
		// once the snapshot is copied over the chip
		u.Speech.Restore(-1)
		*u.Speech = *us.Speech
		u.Speech.Plumb(crd.events, speechIRQ{crd: crd, unit: i})
		u.State = us.State
		u.StateB = us.StateB
		u.Reg = us.Reg
	}
	for i, psg := range crd.chips {
		psg.Plumb(st.Chips[i])
	}
	for i, ev := range crd.sync {
		crd.events.Remove(ev)
		if st.Sync[i] >= 0 {
			crd.events.Insert(ev, uint64(st.Sync[i]))
		}
	}

	crd.regAccessed = false
	crd.active = false
	crd.inactiveSince = 0
	crd.sampleErr = 0
	crd.pending = crd.pending[:0]
	crd.frameCycles = 0

	crd.updateIRQ()
}
