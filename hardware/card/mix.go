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
	"math"

	"github.com/xizhe-zhang/mockingboard/hardware/ay38910"
	"github.com/xizhe-zhang/mockingboard/hardware/clocks"
	"github.com/xizhe-zhang/mockingboard/hardware/via"
)

// SampleRate is the frequency of the audio stream produced by the card.
const SampleRate = 44100

// NumChannels is the number of channels in the audio stream. Samples are
// interleaved left then right.
const NumChannels = 2

const (
	// update intervals shorter than this are folded into the next one.
	// very short intervals produce zero length sample runs and waste
	// effort on PSG state that cannot be heard
	minUpdateInterval = 500

	// the longest span of cycles a single update will account for. the
	// limit matches the longest possible timer period. anything longer
	// means the software has stopped sequencing the card and precision
	// no longer matters
	maxUpdateInterval = 0xffff + via.ReloadCycles

	// number of audio frames buffered for the host before the card
	// starts dropping them
	maxPendingFrames = 16384

	// adjustment applied to the frame count when the pending queue
	// drifts away from its comfortable fill level
	sampleErrAdjust = 4

	// cycles between updates when no timer interrupt is sequencing the
	// card. approximately 44.1KHz at the CPU clock
	cyclesPerAudioFrame = 1000
)

// update converts the cycles elapsed since the previous update into audio
// frames and appends them to the pending queue. it is called from the
// timer1 underflow event, putting frame generation in lockstep with the
// software sequencing the card.
func (crd *Card) update() {
	// a card that hasn't had a register access for a while is idle. the
	// IsActive() function gives the host mixer permission to stop
	// draining the queue
	if crd.regAccessed {
		crd.regAccessed = false
		crd.inactiveSince = 0
		crd.active = true
	} else if crd.inactiveSince == 0 {
		crd.inactiveSince = crd.clk.Cycles()
	} else if float64(crd.clk.Cycles()-crd.inactiveSince) > clocks.CPU/10 {
		crd.active = false
	}

	if crd.lastUpdate == 0 {
		crd.lastUpdate = crd.lastCycles
	}

	interval := crd.lastCycles - crd.lastUpdate
	if interval < minUpdateInterval {
		return
	}
	if interval > maxUpdateInterval {
		interval = maxUpdateInterval
	}
	crd.lastUpdate = crd.lastCycles

	frames := int(float64(interval)*SampleRate/clocks.CPU + 0.5)

	// the sample error nudges the frame count so that the pending queue
	// neither starves nor overflows as the emulated clock drifts against
	// the host audio clock
	n := frames + crd.sampleErr
	if n < 0 {
		n = 0
	}
	if n > frames*2 {
		n = frames * 2
	}
	if n > maxPendingFrames {
		n = maxPendingFrames
	}

	for _, psg := range crd.chips {
		psg.Update(n)
	}

	switch {
	case len(crd.pending) < maxPendingFrames*NumChannels/4:
		crd.sampleErr += sampleErrAdjust
	case len(crd.pending) > maxPendingFrames*NumChannels/2:
		crd.sampleErr -= sampleErrAdjust
	default:
		crd.sampleErr = 0
	}

	if n == 0 {
		return
	}

	atten := crd.env.Prefs.Volume.Get().(float64)
	if crd.phasor() {
		// the Phasor drives six voices a side rather than three
		atten *= 2.0 / 3.0
	}
	stereo := crd.env.Prefs.Stereo.Get().(bool)

	for i := 0; i < n; i++ {
		var l, r int
		for v := 0; v < ay38910.NumVoices; v++ {
			l += int(crd.chips[0].Voice(v)[i]) + int(crd.chips[2].Voice(v)[i])
			r += int(crd.chips[1].Voice(v)[i]) + int(crd.chips[3].Voice(v)[i])
		}

		if !stereo {
			m := (l + r) / 2
			l = m
			r = m
		}

		l = int(float64(l) * atten)
		r = int(float64(r) * atten)

		if l > math.MaxInt16 {
			l = math.MaxInt16
		} else if l < math.MinInt16 {
			l = math.MinInt16
		}
		if r > math.MaxInt16 {
			r = math.MaxInt16
		} else if r < math.MinInt16 {
			r = math.MinInt16
		}

		if len(crd.pending) < maxPendingFrames*NumChannels {
			crd.pending = append(crd.pending, int16(l), int16(r))
		}
	}
}

// Mix drains pending audio frames into buf, which should be a multiple of
// NumChannels in length. it returns the number of samples copied. Mix is
// intended to be called from the host audio loop at the cadence of the
// sample rate.
func (crd *Card) Mix(buf []int16) int {
	n := copy(buf, crd.pending)
	crd.pending = crd.pending[:copy(crd.pending, crd.pending[n:])]
	return n
}

// PeriodicUpdate keeps audio flowing when no timer interrupt is
// sequencing the card. it should be called with the number of cycles that
// have elapsed since the previous call.
func (crd *Card) PeriodicUpdate(cycles uint64) {
	if crd.timerUnit >= 0 {
		// the timer1 underflow event is driving updates
		return
	}

	crd.frameCycles += cycles
	if crd.frameCycles < cyclesPerAudioFrame {
		return
	}
	crd.frameCycles %= cyclesPerAudioFrame

	crd.advance()
	crd.update()
}
