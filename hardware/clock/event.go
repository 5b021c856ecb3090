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

import "fmt"

// Callback is invoked by the Manager when an event's deadline is reached.
// The late argument is the number of cycles by which dispatch overshot the
// deadline and the cycles argument is the value of the clock at the point
// of dispatch.
//
// The return value is the number of cycles until the event fires again.
// A return value of zero leaves the event idle.
type Callback func(id int, late uint64, cycles uint64) uint64

// Event is a deferred function call keyed on the cumulative cycle count. An
// event has at most one pending deadline at any time: scheduling a pending
// event replaces the previous deadline.
type Event struct {
	id       int
	callback Callback
	deadline uint64
	pending  bool
}

// NewEvent is the preferred method of initialisation for the Event type.
// The id is returned to the callback on dispatch and is otherwise
// uninterpreted.
func NewEvent(id int, callback Callback) *Event {
	return &Event{
		id:       id,
		callback: callback,
	}
}

// ID returns the identifier the event was created with.
func (ev *Event) ID() int {
	return ev.id
}

// Pending returns true if the event is waiting on a deadline.
func (ev *Event) Pending() bool {
	return ev.pending
}

// Deadline returns the clock value at which the event will fire. The result
// is meaningless if the event is not pending.
func (ev *Event) Deadline() uint64 {
	return ev.deadline
}

func (ev *Event) String() string {
	if !ev.pending {
		return fmt.Sprintf("event %d: idle", ev.id)
	}
	return fmt.Sprintf("event %d: deadline %d", ev.id, ev.deadline)
}
