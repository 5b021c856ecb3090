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

package via

// The sixteen registers of the VIA, indexed by the low four bits of the
// address.
const (
	RegORB   uint8 = 0x00
	RegORA   uint8 = 0x01
	RegDDRB  uint8 = 0x02
	RegDDRA  uint8 = 0x03
	RegT1CL  uint8 = 0x04
	RegT1CH  uint8 = 0x05
	RegT1LL  uint8 = 0x06
	RegT1LH  uint8 = 0x07
	RegT2CL  uint8 = 0x08
	RegT2CH  uint8 = 0x09
	RegSR    uint8 = 0x0a
	RegACR   uint8 = 0x0b
	RegPCR   uint8 = 0x0c
	RegIFR   uint8 = 0x0d
	RegIER   uint8 = 0x0e
	RegORAnh uint8 = 0x0f
)

// RegisterNames is the common abbreviation for each register, indexed by
// register number.
var RegisterNames = [16]string{
	"ORB", "ORA", "DDRB", "DDRA",
	"T1C-L", "T1C-H", "T1L-L", "T1L-H",
	"T2C-L", "T2C-H", "SR", "ACR",
	"PCR", "IFR", "IER", "ORA*",
}

// The interrupt bits of the IFR and IER registers.
const (
	IntCA2 uint8 = 0x01
	IntCA1 uint8 = 0x02
	IntSR  uint8 = 0x04
	IntCB2 uint8 = 0x08
	IntCB1 uint8 = 0x10
	IntT2  uint8 = 0x20
	IntT1  uint8 = 0x40

	// bit 7 of the IFR reads as one whenever an enabled interrupt is
	// flagged. it is never set directly
	IntAny uint8 = 0x80
)

// Bit 6 of the ACR selects the timer1 run mode: set for free-running,
// clear for one-shot.
const ACRFreeRunning uint8 = 0x40
