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

// Package card assembles the VIA, PSG and speech chips into the sound card
// proper and deals with everything that involves more than one chip:
// address decoding, the PSG bus protocol, interrupt aggregation and audio
// mixing.
//
// Four VIA/PSG units are emulated. For the standard card type they are the
// two units of a card in slot 4 followed by the two of a card in slot 5.
// The alternate card type sits in slot 4 alone and drives four PSGs from
// two units.
//
// Register access is cycle compensated. The card is told about a read or a
// write when the host CPU begins the instruction but the bus access really
// happens on one of the final cycles of that instruction. The card works
// backwards from the program counter to identify the instruction in use
// and adjusts its idea of the timer counters by the instruction length.
// Without this adjustment timing loops that poll the timer, or that race
// the timer interrupt, read counter values that are a few cycles stale and
// software detection of the card can fail.
//
// Timer interrupts are raised through the synchronous event manager in the
// clock package rather than by polling. A write that starts a timer
// schedules an underflow event at latch+2 cycles, plus the write
// compensation described above; the event raises the interrupt at the
// exact cycle the hardware would.
package card
