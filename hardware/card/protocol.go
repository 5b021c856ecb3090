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

// BusFunc is the function presented to an AY-3-8910 on its BDIR and BC1
// pins, as driven by the low bits of a 6522 port B.
type BusFunc uint8

// The AY-3-8910 bus functions. On the Mockingboard BC2 is tied high which
// cuts the eight 8910 bus states down to four.
//
// The values mirror the port B wiring: bit 0 is BC1 and bit 1 is BDIR,
// shifted up one with the implied BC2 in between.
const (
	FuncNOP0     BusFunc = 0x00
	FuncNOP1     BusFunc = 0x01
	FuncInactive BusFunc = 0x02
	FuncRead     BusFunc = 0x03
	FuncNOP4     BusFunc = 0x04
	FuncNOP5     BusFunc = 0x05
	FuncWrite    BusFunc = 0x06
	FuncLatch    BusFunc = 0x07
)

func (f BusFunc) String() string {
	switch f {
	case FuncInactive:
		return "inactive"
	case FuncRead:
		return "read"
	case FuncWrite:
		return "write"
	case FuncLatch:
		return "latch"
	}
	return "nop"
}

// transition decodes the BDIR/BC1 bits of a port B write into the next pin
// state and says whether the PSG acts on it.
//
// the PSG acts on the edge into a function from inactive. repeating a
// function without returning to inactive does nothing, which is exactly
// the behaviour software relies on when it toggles only the BC1 line.
func transition(state BusFunc, data uint8) (BusFunc, bool) {
	f := BusFunc((data&0x02)<<1 | 0x02 | (data & 0x01))
	return f, state == FuncInactive && f != FuncInactive
}

// protocol drives the bus function pins of one PSG from a port B write.
// state is the pin latch for the chip being driven; a Phasor unit has two
// chips on the port and so two latches.
func (crd *Card) protocol(u *Unit, state *BusFunc, chip int, data uint8) {
	crd.regAccessed = true

	psg := crd.chips[u.num+2*chip]

	// reset line is active low
	if data&0x04 == 0 {
		psg.Reset()
		return
	}

	f, edge := transition(*state, data)
	*state = f
	if !edge {
		return
	}

	switch f {
	case FuncRead:
		if crd.mode == ModeEchoPlus {
			// the Echo+ never drives the PSG data bus back at the
			// CPU. reads float high
			u.VIA.ORA = 0xff & ^u.VIA.DDRA
		} else {
			u.VIA.ORA = psg.Read(u.Reg) & ^u.VIA.DDRA
		}
	case FuncWrite:
		psg.Write(u.Reg, u.VIA.ORA)
		if crd.tracker != nil {
			crd.tracker.PSGTick(crd.env, u.num, u.num+2*chip, u.Reg, u.VIA.ORA)
		}
	case FuncLatch:
		// values outside the register range are not latched
		if u.VIA.ORA <= 0x0f {
			u.Reg = u.VIA.ORA & 0x0f
		}
	}
}
