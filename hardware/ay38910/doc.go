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

// Package ay38910 emulates the General Instrument AY-3-8910 programmable
// sound generator, in the 8913 package found on the card: three square
// wave voices, a shared noise source and a shared envelope, with no IO
// ports.
//
// The chip knows nothing of the bus protocol used to drive it. The card
// decodes the BDIR/BC1 handshake and calls the Read(), Write() and Reset()
// functions with explicit register numbers. Audio is produced in batches
// with the Update() function: each voice is rendered to its own buffer so
// that the card can place the six voices of a stereo pair into the output
// channels as the hardware wiring dictates.
package ay38910
