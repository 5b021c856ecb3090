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

package clock

import (
	"fmt"
	"strings"
)

// Manager dispatches events in deadline order. Deadlines are absolute
// values of the associated Clock.
type Manager struct {
	clk    *Clock
	events []*Event
}

// NewManager is the preferred method of initialisation for the Manager
// type.
func NewManager(clk *Clock) *Manager {
	return &Manager{
		clk: clk,
	}
}

// Insert schedules the event to fire after the given number of cycles. Any
// deadline already pending for the event is replaced.
func (mgr *Manager) Insert(ev *Event, cycles uint64) {
	if ev.pending {
		mgr.Remove(ev)
	}
	ev.deadline = mgr.clk.Cycles() + cycles
	ev.pending = true
	mgr.events = append(mgr.events, ev)
}

// Remove cancels the pending deadline for the event. Removing an event that
// is not pending is a no-op.
func (mgr *Manager) Remove(ev *Event) {
	for i := range mgr.events {
		if mgr.events[i] == ev {
			mgr.events = append(mgr.events[:i], mgr.events[i+1:]...)
			ev.pending = false
			return
		}
	}
}

// Dispatch fires every pending event whose deadline has been reached, in
// deadline order. Events with equal deadlines fire in the order they were
// scheduled.
//
// An event whose callback returns a non-zero period is rescheduled at that
// many cycles from the current clock value.
func (mgr *Manager) Dispatch() {
	for {
		now := mgr.clk.Cycles()

		var next *Event
		for _, ev := range mgr.events {
			if ev.deadline <= now && (next == nil || ev.deadline < next.deadline) {
				next = ev
			}
		}
		if next == nil {
			return
		}

		mgr.Remove(next)
		if period := next.callback(next.id, now-next.deadline, now); period > 0 {
			mgr.Insert(next, period)
		}
	}
}

// Next returns the earliest pending deadline. The second return value is
// false if no events are pending.
func (mgr *Manager) Next() (uint64, bool) {
	var deadline uint64
	found := false
	for _, ev := range mgr.events {
		if !found || ev.deadline < deadline {
			deadline = ev.deadline
			found = true
		}
	}
	return deadline, found
}

// Remaining returns the number of cycles until the event's deadline. The
// second return value is false if the event is not pending.
func (mgr *Manager) Remaining(ev *Event) (uint64, bool) {
	if !ev.pending {
		return 0, false
	}
	now := mgr.clk.Cycles()
	if ev.deadline <= now {
		return 0, true
	}
	return ev.deadline - now, true
}

func (mgr *Manager) String() string {
	if len(mgr.events) == 0 {
		return "no pending events"
	}
	s := strings.Builder{}
	for _, ev := range mgr.events {
		s.WriteString(fmt.Sprintf("%s\n", ev.String()))
	}
	return strings.TrimSuffix(s.String(), "\n")
}
