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

// Package clocks defines the constant values that define the speed of the
// clocks in the host machine. The machine being the NTSC Apple II in which
// the card is seated.
//
// The CPU value is not a clean division of the master clock. The video
// circuitry stretches every sixty-fifth CPU cycle by two master periods in
// order to keep the colour subcarrier in phase, which gives the 65/912
// ratio.
package clocks

// Frequencies are in units of Hz.
const (
	// the master crystal. 315/22 MHz
	Master = 14318181.8

	// the 6502 clock. sixty-five CPU cycles for every 912 periods of the
	// master clock
	CPU = Master * 65 / 912

	// the PSGs on the card are clocked at the CPU rate. the alternate
	// card doubles this in its native mode
	PSG = CPU
)
