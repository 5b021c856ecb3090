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

package random

import (
	"math/rand"
	"time"
)

// the base seed for all random numbers
var baseSeed int64

// free-running source for the NoRewind() function
var noRewind *rand.Rand

func init() {
	baseSeed = int64(time.Now().Nanosecond())
	noRewind = rand.New(rand.NewSource(baseSeed))
}

// Clock defines the time source used by the Rewindable() function. Time in
// the emulation is the cumulative CPU cycle count
type Clock interface {
	Cycles() uint64
}

// Random is a random number generator that is sensitive to time within the
// emulation. Required for the rewind system and parallel emulations
type Random struct {
	clock Clock

	// use zero seed rather than the random base seed. this is only really
	// useful for normalised instances where random numbers must be
	// predictable
	ZeroSeed bool
}

// NewRandom is the preferred method of initialisation for the Random type
func NewRandom(clock Clock) *Random {
	return &Random{
		clock: clock,
	}
}

// Rewindable returns a number in the range 0 to n-1. The same number is
// returned for the same point in emulation time, making it compatible with
// the rewind system
func (rnd *Random) Rewindable(n int) int {
	seed := baseSeed
	if rnd.ZeroSeed {
		seed = 0
	}
	return rand.New(rand.NewSource(seed + int64(rnd.clock.Cycles()))).Intn(n)
}

// NoRewind returns a number in the range 0 to n-1 regardless of the point in
// emulation time. It is therefore, not compatible with the rewind system
func (rnd *Random) NoRewind(n int) int {
	if rnd.ZeroSeed {
		return rand.New(rand.NewSource(0)).Intn(n)
	}
	return noRewind.Intn(n)
}
