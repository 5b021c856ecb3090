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

// Package via emulates the SY6522 Versatile Interface Adapter, or as much
// of it as the card population requires: the port registers, the two
// interval timers and the interrupt flag and enable registers. The shift
// register and the handshake modes of the ports are not emulated.
//
// The VIA type is a register file with timer arithmetic. It does not decode
// register accesses itself; the card drives the registers according to its
// own address decoding and its own idea of when, within the current
// instruction, the access takes effect.
package via

import (
	"fmt"
	"strings"
)

// VIA is the state of a single SY6522.
type VIA struct {
	ORA  uint8
	ORB  uint8
	DDRA uint8
	DDRB uint8

	ACR uint8
	PCR uint8
	IFR uint8
	IER uint8

	Timer1 Timer
	Timer2 Timer
}

// NewVIA is the preferred method of initialisation for the VIA type.
func NewVIA() *VIA {
	via := &VIA{}
	via.PowerOn()
	return via
}

// PowerOn returns the register file to the power-on state.
//
// The timer1 latch takes the value 0xffff rather than zero. Software
// detects the card by measuring the period of the free-running timer and a
// very small power-on latch would cause the detection to fail.
func (via *VIA) PowerOn() {
	*via = VIA{}
	via.Timer1.Latch = 0xffff
}

// UpdateIFR clears and then sets bits in the interrupt flag register. Bit 7
// is recomputed: it reads as one whenever a flagged interrupt is enabled in
// the IER. The new value of bit 7 is returned.
func (via *VIA) UpdateIFR(clear uint8, set uint8) bool {
	via.IFR &= ^clear
	via.IFR |= set
	if via.IFR&via.IER&0x7f != 0 {
		via.IFR |= IntAny
	} else {
		via.IFR &= ^IntAny
	}
	return via.IFR&IntAny == IntAny
}

// Timer1Read returns the timer1 counter as it will be adjust cycles from
// now. Underflow and reload are applied to a copy: the stored counter is
// not disturbed.
func (via *VIA) Timer1Read(adjust uint16) uint16 {
	tm := via.Timer1
	if tm.Advance(adjust) {
		tm.Reload()
	}
	return tm.Counter
}

// Timer2Read returns the timer2 counter as it will be adjust cycles from
// now. Timer2 has no reload so the result is a plain subtraction.
func (via *VIA) Timer2Read(adjust uint16) uint16 {
	return via.Timer2.Counter - adjust
}

// Timer1Underflowed predicts whether timer1 will have met its interrupt
// condition adjust cycles from now. The prediction works on a copy of the
// timer.
func (via *VIA) Timer1Underflowed(adjust uint16) bool {
	tm := via.Timer1
	return tm.Advance(adjust)
}

// Timer2Underflowed predicts whether timer2 will have underflowed adjust
// cycles from now.
func (via *VIA) Timer2Underflowed(adjust uint16) bool {
	return int16(via.Timer2.Counter-adjust) < 0
}

// Snapshot creates a copy of the VIA in its current state.
func (via *VIA) Snapshot() *VIA {
	n := *via
	return &n
}

func (via *VIA) String() string {
	s := strings.Builder{}
	s.WriteString(fmt.Sprintf("ORA=%02x ORB=%02x DDRA=%02x DDRB=%02x\n", via.ORA, via.ORB, via.DDRA, via.DDRB))
	s.WriteString(fmt.Sprintf("ACR=%02x PCR=%02x IFR=%02x IER=%02x\n", via.ACR, via.PCR, via.IFR, via.IER))
	s.WriteString(fmt.Sprintf("timer1: %s\n", via.Timer1))
	s.WriteString(fmt.Sprintf("timer2: %s", via.Timer2))
	return s.String()
}
