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

// Package ssi263 emulates the speech sockets of the card: the SSI-263
// phoneme synthesiser and, through the same type, the older Votrax SC-01
// that some software drives through the VIA's port B.
//
// No speech waveform is synthesised. What is emulated is the timing of the
// chip: a phoneme write starts a timer scaled by the duration and rate
// registers and the A/!R line is raised when the timer expires. Software
// that sequences phonemes off the A/!R interrupt runs correctly against
// this model, which is what the rest of the card needs from the chip.
package ssi263

import (
	"fmt"

	"github.com/xizhe-zhang/mockingboard/hardware/clock"
)

// The five write-only registers of the SSI-263.
const (
	RegDurationPhoneme uint8 = 0x00
	RegInflection      uint8 = 0x01
	RegRateInflection  uint8 = 0x02
	RegCtrlArtAmp      uint8 = 0x03
	RegFilterFreq      uint8 = 0x04
)

// Bit 7 of the control/articulation/amplitude register is the power
// control. The chip speaks only when the bit is low.
const ctrlBit uint8 = 0x80

// Phoneme timing, in CPU cycles.
const (
	// the length of a phoneme at the slowest duration setting and the
	// nominal speech rate
	phonemeBaseCycles = 98304

	// the SC-01 is not rate programmable: every phoneme gets the same
	// nominal length
	votraxPhonemeCycles = 32768
)

// IRQ is implemented by whatever the A/!R pins of the speech sockets are
// wired to. The argument is the new level of the line: raised on phoneme
// completion and released on acknowledgement.
type IRQ interface {
	// SpeechIRQ is the A/!R line of the SSI-263 socket
	SpeechIRQ(assert bool)

	// VotraxIRQ is the A/!R line of the SC-01 socket
	VotraxIRQ(assert bool)
}

// SSI263 is the speech state of a single unit.
type SSI263 struct {
	events *clock.Manager
	event  *clock.Event
	id     int
	irq    IRQ

	DurationPhoneme uint8
	Inflection      uint8
	RateInflection  uint8
	CtrlArtAmp      uint8
	FilterFreq      uint8

	// the transition mode, latched from the top bits of the duration
	// register on the falling edge of the power control bit
	Mode uint8

	// mirror of the power control bit. true means powered down
	Ctrl bool

	// a phoneme is being spoken
	Active bool

	// the phoneme has finished and the A/!R line is raised
	Complete bool

	// the phoneme belongs to the SC-01 socket
	Votrax bool

	// the last phoneme written to the SC-01 socket
	VotraxPhoneme uint8

	// cycles left on the phoneme timer when the snapshot was taken.
	// negative when the timer was idle
	resume int64
}

// NewSSI263 is the preferred method of initialisation for the SSI263 type.
// The id distinguishes the phoneme timers of the different units in the
// event manager.
func NewSSI263(events *clock.Manager, id int, irq IRQ) *SSI263 {
	ssi := &SSI263{
		events: events,
		id:     id,
		irq:    irq,
		resume: -1,
	}
	ssi.event = clock.NewEvent(id, ssi.phonemeEvent)
	return ssi
}

// Reset returns the chip to the power-on state, releasing the A/!R line if
// it was raised.
func (ssi *SSI263) Reset() {
	ssi.events.Remove(ssi.event)
	ssi.ack()

	ssi.DurationPhoneme = 0
	ssi.Inflection = 0
	ssi.RateInflection = 0
	ssi.CtrlArtAmp = 0
	ssi.FilterFreq = 0
	ssi.Mode = 0
	ssi.Ctrl = false
	ssi.Active = false
	ssi.Votrax = false
	ssi.VotraxPhoneme = 0
}

// Write services a write to one of the five registers. Only the low three
// address bits reach the chip.
func (ssi *SSI263) Write(reg uint8, data uint8) {
	switch reg & 0x07 {
	case RegDurationPhoneme:
		ssi.DurationPhoneme = data

		// a phoneme write acknowledges the previous phoneme whether or not
		// the chip is powered to speak the new one
		ssi.ack()
		if !ssi.Ctrl {
			ssi.startPhoneme(false)
		}
	case RegInflection:
		ssi.Inflection = data
	case RegRateInflection:
		ssi.RateInflection = data
	case RegCtrlArtAmp:
		ctrl := data&ctrlBit == ctrlBit
		if ssi.Ctrl && !ctrl {
			// falling edge: latch the transition mode and start speaking
			ssi.Mode = ssi.DurationPhoneme >> 6
			ssi.ack()
			ssi.startPhoneme(false)
		} else if !ssi.Ctrl && ctrl {
			// rising edge: power down
			ssi.events.Remove(ssi.event)
			ssi.Active = false
		}
		ssi.Ctrl = ctrl
		ssi.CtrlArtAmp = data
	case RegFilterFreq:
		ssi.FilterFreq = data
	}
}

// Read returns the value presented on the data bus. Only the A/!R state in
// bit 7 is driven by the chip.
func (ssi *SSI263) Read() uint8 {
	if ssi.Complete {
		return 0x80
	}
	return 0x00
}

// VotraxWrite services a write to the SC-01 socket. The SC-01 has no
// register file: the six low bits select the phoneme and the top two bits
// the pitch, delivered in one write through the VIA's port B.
func (ssi *SSI263) VotraxWrite(data uint8) {
	ssi.VotraxPhoneme = data & 0x3f
	ssi.ack()
	ssi.startPhoneme(true)
}

// IRQAsserted returns the state of the SSI-263 socket's A/!R line. The
// SC-01 socket does not contribute.
func (ssi *SSI263) IRQAsserted() bool {
	return ssi.Complete && !ssi.Votrax
}

// IsPhonemeActive returns true while a phoneme is being spoken.
func (ssi *SSI263) IsPhonemeActive() bool {
	return ssi.Active
}

// Remaining returns the number of cycles left on the phoneme timer, or a
// negative value if the timer is idle.
func (ssi *SSI263) Remaining() int64 {
	if remaining, ok := ssi.events.Remaining(ssi.event); ok {
		return int64(remaining)
	}
	return -1
}

// Restore re-arms the phoneme timer with the given number of cycles
// remaining. Used when rebuilding the chip from a saved state. A negative
// value leaves the timer idle.
func (ssi *SSI263) Restore(remaining int64) {
	ssi.events.Remove(ssi.event)
	if remaining >= 0 {
		ssi.events.Insert(ssi.event, uint64(remaining))
	}
}

// Snapshot creates a copy of the chip in its current state, including the
// progress of any phoneme being spoken.
func (ssi *SSI263) Snapshot() *SSI263 {
	n := *ssi
	n.resume = ssi.Remaining()
	return &n
}

// Plumb the snapshot into the live emulation, re-arming the phoneme timer
// if one was running when the snapshot was taken. The caller is expected
// to have cancelled any event the live chip had armed.
func (ssi *SSI263) Plumb(events *clock.Manager, irq IRQ) {
	ssi.events = events
	ssi.irq = irq
	ssi.event = clock.NewEvent(ssi.id, ssi.phonemeEvent)
	if ssi.resume >= 0 {
		ssi.events.Insert(ssi.event, uint64(ssi.resume))
	}
}

// startPhoneme begins timing a phoneme for one of the two sockets.
func (ssi *SSI263) startPhoneme(votrax bool) {
	ssi.Votrax = votrax
	ssi.Active = true
	if votrax {
		ssi.events.Insert(ssi.event, votraxPhonemeCycles)
	} else {
		ssi.events.Insert(ssi.event, ssi.phonemeCycles())
	}
}

// ack acknowledges a completed phoneme, releasing the A/!R line.
func (ssi *SSI263) ack() {
	if !ssi.Complete {
		return
	}
	ssi.Complete = false
	if ssi.Votrax {
		ssi.irq.VotraxIRQ(false)
	} else {
		ssi.irq.SpeechIRQ(false)
	}
}

// phonemeEvent is dispatched when the phoneme timer expires.
func (ssi *SSI263) phonemeEvent(_ int, _ uint64, _ uint64) uint64 {
	ssi.Active = false
	ssi.Complete = true
	if ssi.Votrax {
		ssi.irq.VotraxIRQ(true)
	} else {
		ssi.irq.SpeechIRQ(true)
	}
	return 0
}

// phonemeCycles returns the length of the phoneme about to be spoken. The
// top two bits of the duration register quarter the length and the rate
// field scales the whole utterance.
func (ssi *SSI263) phonemeCycles() uint64 {
	dur := uint64(ssi.DurationPhoneme >> 6)
	rate := uint64(ssi.RateInflection >> 4)

	cycles := uint64(phonemeBaseCycles)
	cycles = cycles * (4 - dur) / 4
	cycles = cycles * 8 / (rate + 1)
	if cycles == 0 {
		cycles = 1
	}
	return cycles
}

func (ssi *SSI263) String() string {
	return fmt.Sprintf("dur=%02x inf=%02x rate=%02x ctl=%02x flt=%02x speaking=%v",
		ssi.DurationPhoneme, ssi.Inflection, ssi.RateInflection, ssi.CtrlArtAmp,
		ssi.FilterFreq, ssi.Active)
}
