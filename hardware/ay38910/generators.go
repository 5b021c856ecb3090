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

package ay38910

// The generators tick at one-eighth of the chip clock. At that rate a tone
// generator flips its output every period, giving the documented output
// frequency of clock/(16*period).

type toneGenerator struct {
	counter int
	out     bool
}

func (g *toneGenerator) tick(period int) {
	g.counter++
	if g.counter >= period {
		g.counter = 0
		g.out = !g.out
	}
}

type noiseGenerator struct {
	counter int
	half    bool
	lfsr    uint32
	out     bool
}

func (g *noiseGenerator) tick(period int) {
	g.counter++
	if g.counter < period {
		return
	}
	g.counter = 0

	// the noise shift rate is half the equivalent tone rate
	g.half = !g.half
	if g.half {
		return
	}

	// 17-bit LFSR with taps at bits 0 and 3
	fb := (g.lfsr ^ (g.lfsr >> 3)) & 1
	g.lfsr = (g.lfsr >> 1) | (fb << 16)
	g.out = g.lfsr&1 == 1
}

type envelopeGenerator struct {
	counter int
	step    int

	// decomposition of the shape register
	cont      bool
	attack    bool
	alternate bool
	hold      bool

	// a finished envelope holds its level indefinitely
	holding bool

	// current output level, 0 to 15
	level int
}

// restart begins the envelope anew. called on any write to the shape
// register.
func (g *envelopeGenerator) restart(shape uint8) {
	g.cont = shape&0x08 == 0x08
	g.attack = shape&0x04 == 0x04
	g.alternate = shape&0x02 == 0x02
	g.hold = shape&0x01 == 0x01

	g.counter = 0
	g.step = 0
	g.holding = false
	if g.attack {
		g.level = 0
	} else {
		g.level = 15
	}
}

// the envelope steps through sixteen levels per ramp. like the noise
// generator it runs at half the tone rate, which the caller accounts for
// by doubling the period.
func (g *envelopeGenerator) tick(period int) {
	if g.holding {
		return
	}

	g.counter++
	if g.counter < period {
		return
	}
	g.counter = 0

	g.step++
	if g.step > 15 {
		if !g.cont {
			g.holding = true
			g.level = 0
			return
		}
		if g.hold {
			g.holding = true
			if g.alternate {
				g.level = 15 - g.level
			}
			return
		}
		if g.alternate {
			g.attack = !g.attack
		}
		g.step = 0
	}

	if g.attack {
		g.level = g.step
	} else {
		g.level = 15 - g.step
	}
}
