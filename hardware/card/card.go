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
	"strings"

	"github.com/xizhe-zhang/mockingboard/environment"
	"github.com/xizhe-zhang/mockingboard/hardware/ay38910"
	"github.com/xizhe-zhang/mockingboard/hardware/clock"
	"github.com/xizhe-zhang/mockingboard/hardware/clocks"
	"github.com/xizhe-zhang/mockingboard/hardware/via"
	"github.com/xizhe-zhang/mockingboard/logger"
)

const (
	// NumUnits is the number of VIA/PSG units in the emulation: two per
	// card, two cards
	NumUnits = 4

	// NumChips is the number of PSGs. The alternate card pairs a second
	// PSG with each of its two units, which conveniently reuses the chips
	// of the second standard card
	NumChips = 4

	// the first slot occupied by a card
	baseSlot = 4
)

// Type is the model of card being emulated.
type Type int

// The list of Type values. TypeEchoPlus is alternate-card hardware that
// powers up in its Echo+ compatibility mode.
const (
	TypeMockingboard Type = iota
	TypePhasor
	TypeEchoPlus
)

// ParseType converts a card mode preference string to a Type.
func ParseType(s string) (Type, error) {
	switch strings.ToLower(s) {
	case "mockingboard":
		return TypeMockingboard, nil
	case "phasor":
		return TypePhasor, nil
	case "echoplus":
		return TypeEchoPlus, nil
	}
	return TypeMockingboard, fmt.Errorf("unrecognised card type: %s", s)
}

func (t Type) String() string {
	switch t {
	case TypeMockingboard:
		return "mockingboard"
	case TypePhasor:
		return "phasor"
	case TypeEchoPlus:
		return "echoplus"
	}
	return fmt.Sprintf("unknown type %d", int(t))
}

// Mode is the runtime personality of the alternate card, driven through
// the card's device select page. The named values are the three that
// software uses; the intermediate bit patterns are reachable and leave
// the IO space undecoded.
type Mode int

// The list of Mode values.
const (
	ModeMockingboard Mode = 0
	ModePhasor       Mode = 5
	ModeEchoPlus     Mode = 7
)

func (m Mode) String() string {
	switch m {
	case ModeMockingboard:
		return "mockingboard"
	case ModePhasor:
		return "phasor"
	case ModeEchoPlus:
		return "echo+"
	}
	return fmt.Sprintf("undefined mode %d", int(m))
}

// Card is the sound card population of the machine: the four VIA/PSG
// units, the four PSGs and the two speech sockets per card.
type Card struct {
	env *environment.Environment

	clk    *clock.Clock
	events *clock.Manager
	cpu    CPU

	typ   Type
	mode  Mode
	scale int

	units [NumUnits]*Unit
	chips [NumChips]*ay38910.PSG

	// underflow events for every timer: unit*2 for timer1, unit*2+1 for
	// timer2
	sync [NumUnits * 2]*clock.Event

	// clock value at the most recent timer reconciliation
	lastCycles uint64

	// the unit whose timer1 is pacing audio generation. negative when no
	// timer qualifies and generation falls to the periodic update
	timerUnit int

	// activity detection. the card is considered silent a short while
	// after the last effective PSG access
	regAccessed   bool
	active        bool
	inactiveSince uint64

	// audio generation and mixing state
	lastUpdate  uint64
	sampleErr   int
	pending     []int16
	frameCycles uint64

	tracker Tracker
}

// NewCard is the preferred method of initialisation for the Card type. The
// card type is taken from the card.mode preference.
func NewCard(env *environment.Environment, clk *clock.Clock, events *clock.Manager, cpu CPU) (*Card, error) {
	crd := &Card{
		env:    env,
		clk:    clk,
		events: events,
		cpu:    cpu,
	}

	typ, err := ParseType(env.Prefs.Mode.Get().(string))
	if err != nil {
		return nil, fmt.Errorf("card: %w", err)
	}
	crd.typ = typ

	for i := range crd.chips {
		crd.chips[i] = ay38910.NewPSG(clocks.PSG, SampleRate)
	}
	for i := range crd.units {
		crd.units[i] = newUnit(crd, i)
	}
	for i := range crd.sync {
		crd.sync[i] = clock.NewEvent(i, crd.syncEvent)
	}

	crd.Reset(true)

	return crd, nil
}

// Type returns the model of card being emulated.
func (crd *Card) Type() Type {
	return crd.typ
}

// Mode returns the current runtime mode. Always ModeMockingboard for the
// standard card type.
func (crd *Card) Mode() Mode {
	return crd.mode
}

// phasor is true when the emulated hardware is the alternate card,
// whatever mode it is currently running in.
func (crd *Card) phasor() bool {
	return crd.typ == TypePhasor || crd.typ == TypeEchoPlus
}

// initialMode is the runtime mode the card type powers up in.
func (crd *Card) initialMode() Mode {
	if crd.typ == TypeEchoPlus {
		return ModeEchoPlus
	}
	return ModeMockingboard
}

// Reset the card. A power cycle additionally returns the VIA register
// files to their power-on values; a warm reset leaves them readable but
// quietens the card all the same.
func (crd *Card) Reset(powerCycle bool) {
	for i, u := range crd.units {
		crd.resetUnit(u, powerCycle)
		crd.chips[i].Reset()
	}

	crd.timerUnit = -1
	crd.lastCycles = crd.clk.Cycles()
	crd.regAccessed = false
	crd.active = false
	crd.inactiveSince = 0

	crd.lastUpdate = 0
	crd.sampleErr = 0
	crd.pending = crd.pending[:0]
	crd.frameCycles = 0

	for _, ev := range crd.sync {
		crd.events.Remove(ev)
	}
	for _, u := range crd.units {
		u.Speech.Reset()
	}

	crd.setMode(crd.initialMode())
	crd.updateIRQ()
}

// setMode installs a new runtime mode, rescaling the PSG clocks to suit.
// The scale factor belongs to the named modes; an intermediate mode keeps
// whatever factor was last in force.
func (crd *Card) setMode(mode Mode) {
	if mode != crd.mode {
		logger.Logf(crd.env, "card", "mode: %s", mode)
	}
	crd.mode = mode

	switch mode {
	case ModeMockingboard, ModeEchoPlus:
		crd.scale = 1
	case ModePhasor:
		crd.scale = 2
	}
	for _, chip := range crd.chips {
		chip.SetClock(float64(clocks.PSG) * float64(crd.scale))
	}

	crd.updateIRQ()
}

// advance reconciles every unit's timers with the current clock value.
// Some timer effects are dealt with here rather than at the exact cycle:
// in particular the reload of a free-running timer1. The interrupt itself
// is raised by the underflow event, never from here.
func (crd *Card) advance() {
	now := crd.clk.Cycles()
	for now > crd.lastCycles {
		// an underflowed counter must stay within the signed range that
		// the reload arithmetic recovers the remainder from
		delta := now - crd.lastCycles
		if delta > 0x8000 {
			delta = 0x8000
		}
		crd.lastCycles += delta

		n := uint16(delta)
		for _, u := range crd.units {
			if u.VIA.Timer1.Advance(n) {
				u.VIA.Timer1.Reload()
			}
			u.VIA.Timer2.Advance(n)
		}
	}
}

// AdvanceCycles reconciles the card with the current clock value. Register
// access does this automatically; a host that runs the clock for long
// stretches without touching the card should call this now and again.
func (crd *Card) AdvanceCycles() {
	crd.advance()
}

// updateIFR clears and then sets bits in a unit's interrupt flag register
// and updates the IRQ lines into the CPU.
func (crd *Card) updateIFR(u *Unit, clear uint8, set uint8) {
	u.VIA.UpdateIFR(clear, set)
	crd.updateIRQ()
}

// updateIRQ drives the CPU's IRQ lines from the aggregate interrupt state
// of every unit.
func (crd *Card) updateIRQ() {
	irq := false
	for _, u := range crd.units {
		irq = irq || u.VIA.IFR&via.IntAny != 0
	}
	if irq {
		crd.cpu.AssertIRQ(IRQVIA)
	} else {
		crd.cpu.ReleaseIRQ(IRQVIA)
	}

	// in the native mode of the alternate card the speech chips' A/!R
	// lines are wired directly to the CPU as well as to the VIA
	speech := false
	if crd.mode == ModePhasor {
		for _, u := range crd.units {
			speech = speech || u.Speech.IRQAsserted()
		}
	}
	if speech {
		crd.cpu.AssertIRQ(IRQSpeech)
	} else {
		crd.cpu.ReleaseIRQ(IRQSpeech)
	}
}

// speechIRQ connects the A/!R lines of a unit's speech sockets to the
// unit's VIA: the SSI-263 to CA1 and the SC-01 to CB1.
type speechIRQ struct {
	crd  *Card
	unit int
}

func (irq speechIRQ) SpeechIRQ(assert bool) {
	u := irq.crd.units[irq.unit]
	if assert {
		irq.crd.updateIFR(u, 0, via.IntCA1)
	} else {
		irq.crd.updateIFR(u, via.IntCA1, 0)
	}
}

func (irq speechIRQ) VotraxIRQ(assert bool) {
	u := irq.crd.units[irq.unit]
	if assert {
		irq.crd.updateIFR(u, 0, via.IntCB1)
	} else {
		irq.crd.updateIFR(u, via.IntCB1, 0)
	}
}

// bus returns a floating bus value for reads the card does not service.
// The real bus carries remnants of the video stream; a randomised value is
// as good a model as software can tell.
func (crd *Card) bus() uint8 {
	if crd.env.Prefs.RandBus.Get().(bool) {
		return uint8(crd.env.Random.Rewindable(256))
	}
	return 0
}

// chipSelect decodes a register access address into a pair of unit select
// bits: bit 0 for the card's first unit, bit 1 for its second. Only the
// named modes decode anything; the intermediate modes select nothing.
func (crd *Card) chipSelect(addr uint16) int {
	switch crd.mode {
	case ModeMockingboard:
		return int((addr&0x80)>>7) + 1
	case ModePhasor:
		return int((addr&0x80)>>6) | int((addr&0x10)>>4)
	case ModeEchoPlus:
		return 2
	}
	return 0
}

// speechSelect is true when the address falls in the speech chip select
// range of the alternate card.
func speechSelect(addr uint16) bool {
	return addr&0x80 == 0 && addr&0x60 != 0
}

// Read services a read of the card's IO select pages, 0xc400 to 0xc5ff.
// Reads the card does not decode return the floating bus value.
func (crd *Card) Read(addr uint16) uint8 {
	crd.advance()

	cardIdx := int((addr>>8)&0xf) - baseSlot
	reg := uint8(addr & 0xf)

	if crd.phasor() {
		// the alternate card occupies the first slot only
		if cardIdx != 0 {
			return crd.bus()
		}

		cs := crd.chipSelect(addr)

		var v uint8
		if cs&1 == 1 {
			v |= crd.readUnit(crd.units[0], reg)
		}
		if cs&2 == 2 {
			v |= crd.readUnit(crd.units[1], reg)
		}
		accessed := cs != 0

		if crd.mode == ModePhasor && speechSelect(addr) {
			if addr&0x40 == 0x40 {
				v = crd.units[1].Speech.Read()
			}
			if addr&0x20 == 0x20 {
				v = crd.units[0].Speech.Read()
			}
			accessed = true
		}

		if !accessed {
			return crd.bus()
		}
		return v
	}

	if cardIdx < 0 || cardIdx > 1 {
		return crd.bus()
	}

	u := crd.units[cardIdx*2]
	if addr&0x80 == 0x80 {
		u = crd.units[cardIdx*2+1]
	}
	return crd.readUnit(u, reg)
}

// Write services a write to the card's IO select pages.
func (crd *Card) Write(addr uint16, data uint8) {
	crd.advance()
	crd.falseRead(addr)

	cardIdx := int((addr>>8)&0xf) - baseSlot
	reg := uint8(addr & 0xf)

	if crd.phasor() {
		if cardIdx != 0 {
			return
		}

		cs := crd.chipSelect(addr)
		if cs&1 == 1 {
			crd.writeUnit(crd.units[0], reg, data)
		}
		if cs&2 == 2 {
			crd.writeUnit(crd.units[1], reg, data)
		}

		if (crd.mode == ModeMockingboard || crd.mode == ModePhasor) && speechSelect(addr) {
			if addr&0x40 == 0x40 {
				crd.units[1].Speech.Write(uint8(addr&0x7), data)
			}
			if addr&0x20 == 0x20 {
				crd.units[0].Speech.Write(uint8(addr&0x7), data)
			}
		}
		return
	}

	if cardIdx < 0 || cardIdx > 1 {
		return
	}

	u := crd.units[cardIdx*2]
	if addr&0x80 == 0x80 {
		u = crd.units[cardIdx*2+1]
	}
	crd.writeUnit(u, reg, data)

	// the standard card's speech socket decode is wired without reference
	// to the VIA select
	if addr&0x40 == 0x40 {
		crd.units[cardIdx*2+1].Speech.Write(uint8(addr&0x7), data)
	}
	if addr&0x20 == 0x20 {
		crd.units[cardIdx*2].Speech.Write(uint8(addr&0x7), data)
	}
}

// falseRead reproduces the dummy read performed by some store
// instructions. On the NMOS 6502 an indexed store reads the target address
// on the cycle before the write; if the target is a timer counter register
// that read has side effects that real software depends on.
func (crd *Card) falseRead(addr uint16) {
	pc := crd.cpu.PC()
	op2 := crd.cpu.Peek(pc - 2)
	op3 := crd.cpu.Peek(pc - 3)

	if !((op2 == 0x91 && !crd.cpu.Is65C02()) || op3 == 0x99 || op3 == 0x9d) {
		return
	}

	var base, ea uint16
	if op2 == 0x91 {
		zp := crd.cpu.Peek(pc - 1)
		base = uint16(crd.cpu.Peek(uint16(zp))) | uint16(crd.cpu.Peek(uint16(zp+1)))<<8
		ea = base + uint16(crd.cpu.Y())
	} else {
		base = uint16(crd.cpu.Peek(pc-2)) | uint16(crd.cpu.Peek(pc-1))<<8
		if op3 == 0x99 {
			ea = base + uint16(crd.cpu.Y())
		} else {
			ea = base + uint16(crd.cpu.X())
		}
	}

	// when the index pushes the address across a page boundary the dummy
	// read goes to the wrong page and cannot hit the card
	if (base^ea)>>8 != 0 {
		return
	}
	if ea != addr {
		return
	}

	// only the counter low registers have read side effects worth
	// reproducing
	if addr&0xf == uint16(via.RegT1CL) || addr&0xf == uint16(via.RegT2CL) {
		crd.Read(addr)
	}
}

// DeviceSelect services an access to the card's device select page,
// 0xc0c0 to 0xc0cf. The alternate card decodes these accesses into its
// mode register; the standard card ignores them. Reads float.
func (crd *Card) DeviceSelect(addr uint16) uint8 {
	if !crd.phasor() {
		return crd.bus()
	}

	mode := crd.mode
	if addr&0x8 == 0x8 {
		mode = 0
	}
	mode |= Mode(addr & 0x7)
	crd.setMode(mode)

	return crd.bus()
}

// IsActive returns true while the card is producing sound or speech.
func (crd *Card) IsActive() bool {
	if crd.active {
		return true
	}
	for _, u := range crd.units {
		if u.Speech.IsPhonemeActive() {
			return true
		}
	}
	return false
}

// SetTracker attaches a Tracker to the card. A nil value detaches.
func (crd *Card) SetTracker(t Tracker) {
	crd.tracker = t
}

func (crd *Card) String() string {
	s := strings.Builder{}
	s.WriteString(fmt.Sprintf("%s (mode: %s)\n", crd.typ, crd.mode))
	for i, u := range crd.units {
		s.WriteString(fmt.Sprintf("unit %d: %s\n", i, u))
	}
	return strings.TrimSuffix(s.String(), "\n")
}
