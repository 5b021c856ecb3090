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

import (
	"fmt"
	"strings"
)

// NumVoices is the number of square wave voices on one PSG.
const NumVoices = 3

// write masks for each register. unused bits are not stored and read back
// as zero
var regMasks = [16]uint8{
	0xff, 0x0f, 0xff, 0x0f, 0xff, 0x0f, 0x1f, 0xff,
	0x1f, 0x1f, 0x1f, 0xff, 0xff, 0x0f, 0xff, 0xff,
}

// output levels of the DAC for each of the sixteen volume steps, as
// measured on real hardware and normalised to 1.0. the steps are roughly
// 3dB apart rather than linear.
var dacLevels = [16]float64{
	0.0000, 0.0137, 0.0205, 0.0291, 0.0423, 0.0618, 0.0847, 0.1369,
	0.1691, 0.2647, 0.3527, 0.4499, 0.5406, 0.6873, 0.8482, 1.0000,
}

// dacLevels scaled such that the three voices of one chip sum inside the
// int16 range
var volumes [16]int16

func init() {
	for i := range dacLevels {
		volumes[i] = int16(dacLevels[i] * 32767 / NumVoices)
	}
}

// PSG is a single AY-3-8910 sound generator.
type PSG struct {
	// the sixteen registers as last written
	Regs [16]uint8

	tone     [NumVoices]toneGenerator
	noise    noiseGenerator
	envelope envelopeGenerator

	// chip clock in Hz and the output sample rate it is resampled to
	clock      float64
	sampleRate int

	// 16.16 fixed point count of generator ticks per output sample
	step uint32
	frac uint32

	// one batch of samples per voice, (re)filled by Update()
	buf [NumVoices][]int16
}

// NewPSG is the preferred method of initialisation for the PSG type.
func NewPSG(clock float64, sampleRate int) *PSG {
	psg := &PSG{
		sampleRate: sampleRate,
	}
	psg.SetClock(clock)
	psg.Reset()
	return psg
}

// SetClock changes the chip clock. The alternate card doubles the clock of
// its PSGs in the native mode, raising the pitch of everything by an
// octave.
func (psg *PSG) SetClock(clock float64) {
	psg.clock = clock

	// the generators tick at an eighth of the chip clock
	psg.step = uint32(clock / 8 / float64(psg.sampleRate) * 65536)
}

// Clock returns the current chip clock in Hz.
func (psg *PSG) Clock() float64 {
	return psg.clock
}

// Reset returns the PSG to its power-on state. The chip clock is left as
// it is.
func (psg *PSG) Reset() {
	psg.Regs = [16]uint8{}
	psg.tone = [NumVoices]toneGenerator{}
	psg.noise = noiseGenerator{lfsr: 1}
	psg.envelope = envelopeGenerator{}
	psg.envelope.restart(0)
	psg.frac = 0
}

// Write stores a value in the numbered register. Writing to the envelope
// shape register restarts the envelope, even if the value is unchanged.
func (psg *PSG) Write(reg uint8, data uint8) {
	reg &= 0x0f
	if reg >= 14 {
		// the 8913 package does not bond out the IO ports
		return
	}
	psg.Regs[reg] = data & regMasks[reg]
	if reg == 13 {
		psg.envelope.restart(psg.Regs[13])
	}
}

// Read returns the value of the numbered register.
func (psg *PSG) Read(reg uint8) uint8 {
	reg &= 0x0f
	if reg >= 14 {
		return 0xff
	}
	return psg.Regs[reg]
}

// Update generates n samples for each voice. The generated samples are
// retrievable with the Voice() function until the next call to Update().
func (psg *PSG) Update(n int) {
	for v := range psg.buf {
		if cap(psg.buf[v]) < n {
			psg.buf[v] = make([]int16, n)
		} else {
			psg.buf[v] = psg.buf[v][:n]
		}
	}
	if n == 0 {
		return
	}

	// period registers are sampled once per batch. a period of zero counts
	// as one
	var tp [NumVoices]int
	for v := range tp {
		tp[v] = int(psg.Regs[2*v]) | int(psg.Regs[2*v+1])<<8
		if tp[v] == 0 {
			tp[v] = 1
		}
	}

	np := int(psg.Regs[6])
	if np == 0 {
		np = 1
	}

	// the envelope steps at half the tone rate, accounted for here by
	// doubling the period
	ep := int(psg.Regs[11]) | int(psg.Regs[12])<<8
	if ep == 0 {
		ep = 1
	}
	ep *= 2

	for i := 0; i < n; i++ {
		psg.frac += psg.step
		for psg.frac >= 1<<16 {
			psg.frac -= 1 << 16
			for v := range psg.tone {
				psg.tone[v].tick(tp[v])
			}
			psg.noise.tick(np)
			psg.envelope.tick(ep)
		}
		for v := range psg.buf {
			psg.buf[v][i] = psg.level(v)
		}
	}
}

// Voice returns the samples generated for the voice by the most recent
// call to Update().
func (psg *PSG) Voice(v int) []int16 {
	return psg.buf[v]
}

// level is the output of a single voice at the current moment.
func (psg *PSG) level(v int) int16 {
	mixer := psg.Regs[7]
	toneOff := mixer&(1<<v) != 0
	noiseOff := mixer&(1<<(v+3)) != 0

	// a disabled source holds its mixer input high
	out := (psg.tone[v].out || toneOff) && (psg.noise.out || noiseOff)
	if !out {
		return 0
	}

	amp := psg.Regs[8+v]
	if amp&0x10 == 0x10 {
		return volumes[psg.envelope.level]
	}
	return volumes[amp&0x0f]
}

// Snapshot creates a copy of the PSG in its current state. The sample
// buffers are not part of the copy.
func (psg *PSG) Snapshot() *PSG {
	n := *psg
	n.buf = [NumVoices][]int16{}
	return &n
}

// Plumb the snapshot back into the PSG.
func (psg *PSG) Plumb(src *PSG) {
	buf := psg.buf
	*psg = *src
	psg.buf = buf
	for v := range psg.buf {
		psg.buf[v] = psg.buf[v][:0]
	}
}

func (psg *PSG) String() string {
	s := strings.Builder{}
	for i := 0; i < 14; i++ {
		s.WriteString(fmt.Sprintf("R%d=%02x", i, psg.Regs[i]))
		if i == 6 {
			s.WriteString("\n")
		} else if i < 13 {
			s.WriteString(" ")
		}
	}
	return s.String()
}
