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
	"fmt"

	"github.com/xizhe-zhang/mockingboard/hardware/ssi263"
	"github.com/xizhe-zhang/mockingboard/hardware/via"
)

// Unit is one VIA with the chips hanging off its ports: a PSG on the bus
// formed by the two ports and a speech chip. The alternate card hangs a
// second PSG off the same bus, with its own protocol state.
type Unit struct {
	num int

	VIA    *via.VIA
	Speech *ssi263.SSI263

	// bus protocol state for the unit's PSG and, on the alternate card,
	// for the secondary PSG
	State  BusFunc
	StateB BusFunc

	// the PSG register latched by the most recent latch-address function
	Reg uint8
}

func newUnit(crd *Card, num int) *Unit {
	return &Unit{
		num:    num,
		VIA:    via.NewVIA(),
		Speech: ssi263.NewSSI263(crd.events, NumUnits*2+num, speechIRQ{crd: crd, unit: num}),
		State:  FuncInactive,
		StateB: FuncInactive,
	}
}

func (u *Unit) String() string {
	return fmt.Sprintf("reg=%02x state=%s/%s ifr=%02x ier=%02x", u.Reg, u.State, u.StateB, u.VIA.IFR, u.VIA.IER)
}

// resetUnit quietens a unit. The IFR and IER writes go through the normal
// write path so that the IRQ line into the CPU is released along the way.
func (crd *Card) resetUnit(u *Unit, powerCycle bool) {
	if powerCycle {
		u.VIA.PowerOn()
	}

	crd.writeUnit(u, via.RegACR, 0x00)
	crd.writeUnit(u, via.RegIFR, 0x7f)
	crd.writeUnit(u, via.RegIER, 0x7f)

	crd.stopTimer1(u)
	crd.stopTimer2(u)

	u.Reg = 0
	u.State = FuncInactive
	u.StateB = FuncInactive
}

// writeUnit services a write to one of a unit's sixteen registers.
func (crd *Card) writeUnit(u *Unit, reg uint8, data uint8) {
	crd.active = true

	switch reg {
	case via.RegORB:
		data &= u.VIA.DDRB
		u.VIA.ORB = data

		// an SC-01 fitted to the first unit of a card is driven directly
		// from port B. a PCR of 0xb0 is the signature of its driver and
		// keeps the write away from the PSG protocol
		if u.num&1 == 0 && u.VIA.PCR == 0xb0 {
			u.Speech.VotraxWrite(u.VIA.ORB | ^u.VIA.DDRB)
			return
		}

		if crd.phasor() {
			cs := 1
			if crd.mode == ModePhasor {
				cs = int(^(data>>3)) & 0x3
			}
			if cs&1 == 1 {
				crd.protocol(u, &u.State, 0, data)
			}
			if cs&2 == 2 {
				crd.protocol(u, &u.StateB, 1, data)
			}
		} else {
			crd.protocol(u, &u.State, 0, data)
		}

	case via.RegORA:
		u.VIA.ORA = data & u.VIA.DDRA

	case via.RegDDRB:
		u.VIA.DDRB = data

	case via.RegDDRA:
		u.VIA.DDRA = data

	case via.RegT1CL, via.RegT1LL:
		u.VIA.Timer1.Latch = (u.VIA.Timer1.Latch & 0xff00) | uint16(data)

	case via.RegT1CH:
		crd.updateIFR(u, via.IntT1, 0)
		u.VIA.Timer1.Latch = (u.VIA.Timer1.Latch & 0x00ff) | uint16(data)<<8
		u.VIA.Timer1.Counter = crd.setTimerSyncEvent(u, 0, reg, u.VIA.Timer1.Latch)
		crd.startTimer1(u)

	case via.RegT1LH:
		crd.updateIFR(u, via.IntT1, 0)
		u.VIA.Timer1.Latch = (u.VIA.Timer1.Latch & 0x00ff) | uint16(data)<<8

	case via.RegT2CL:
		u.VIA.Timer2.Latch = (u.VIA.Timer2.Latch & 0xff00) | uint16(data)

	case via.RegT2CH:
		// the real timer2 has no high latch byte but keeping one makes no
		// difference to software
		crd.updateIFR(u, via.IntT2, 0)
		u.VIA.Timer2.Latch = (u.VIA.Timer2.Latch & 0x00ff) | uint16(data)<<8
		u.VIA.Timer2.Counter = crd.setTimerSyncEvent(u, 1, reg, u.VIA.Timer2.Latch)
		crd.startTimer2(u)

	case via.RegSR:
		// the shift register is not emulated

	case via.RegACR:
		u.VIA.ACR = data

	case via.RegPCR:
		u.VIA.PCR = data

	case via.RegIFR:
		// writing a one clears the corresponding flag
		crd.updateIFR(u, data, 0)

	case via.RegIER:
		if data&0x80 == 0 {
			u.VIA.IER &= ^(data & 0x7f)
		} else {
			u.VIA.IER |= data & 0x7f
		}
		crd.updateIFR(u, 0, 0)

	case via.RegORAnh:
		// the no-handshake port is not wired on the card
	}
}

// readUnit services a read of one of a unit's sixteen registers.
func (crd *Card) readUnit(u *Unit, reg uint8) uint8 {
	crd.active = true

	switch reg {
	case via.RegORB:
		return u.VIA.ORB

	case via.RegORA, via.RegORAnh:
		return u.VIA.ORA

	case via.RegDDRB:
		return u.VIA.DDRB

	case via.RegDDRA:
		return u.VIA.DDRA

	case via.RegT1CL:
		v := uint8(u.VIA.Timer1Read(crd.readAdjust(reg)))
		crd.updateIFR(u, via.IntT1, 0)
		return v

	case via.RegT1CH:
		return uint8(u.VIA.Timer1Read(crd.readAdjust(reg)) >> 8)

	case via.RegT1LL:
		return uint8(u.VIA.Timer1.Latch)

	case via.RegT1LH:
		return uint8(u.VIA.Timer1.Latch >> 8)

	case via.RegT2CL:
		v := uint8(u.VIA.Timer2Read(crd.readAdjust(reg)))
		crd.updateIFR(u, via.IntT2, 0)
		return v

	case via.RegT2CH:
		return uint8(u.VIA.Timer2Read(crd.readAdjust(reg)) >> 8)

	case via.RegSR:
		return 0

	case via.RegACR:
		return u.VIA.ACR

	case via.RegPCR:
		return u.VIA.PCR

	case via.RegIFR:
		// a read of the IFR sees underflows that will have happened by
		// the end of the reading instruction, without committing them.
		// this is what IRQ polling loops are looking at
		v := u.VIA.IFR
		if u.VIA.Timer1.Active && u.VIA.Timer1Underflowed(crd.readCycles(reg)) {
			v |= via.IntT1
		}
		if u.VIA.Timer2.Active && u.VIA.Timer2Underflowed(crd.readAdjust(reg)) {
			v |= via.IntT2
		}
		return v

	case via.RegIER:
		return 0x80 | u.VIA.IER
	}

	return 0
}
