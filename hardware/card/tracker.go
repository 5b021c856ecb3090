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

import "github.com/xizhe-zhang/mockingboard/environment"

// Tracker implementations are notified of every register write that
// reaches a PSG. Useful for music trackers and other analysis tools that
// want the register stream rather than the mixed audio.
type Tracker interface {
	// PSGTick is called at the moment a write completes. unit is the
	// 6522 the write travelled through and chip the PSG that accepted
	// it. for a Phasor the two differ.
	PSGTick(env *environment.Environment, unit int, chip int, reg uint8, data uint8)
}
