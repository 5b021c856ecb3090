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
	"testing"

	"github.com/xizhe-zhang/mockingboard/environment"
	"github.com/xizhe-zhang/mockingboard/hardware/clock"
	"github.com/xizhe-zhang/mockingboard/hardware/via"
	"github.com/xizhe-zhang/mockingboard/test"
)

// mockCPU implements the CPU interface. The fabricate functions place a
// plausible instruction in memory and leave the program counter where the
// cycle compensation expects to find it.
type mockCPU struct {
	mem  [0x10000]uint8
	pc   uint16
	x, y uint8
	cmos bool
	irq  [NumIRQSources]bool
}

func (mc *mockCPU) PC() uint16               { return mc.pc }
func (mc *mockCPU) X() uint8                 { return mc.x }
func (mc *mockCPU) Y() uint8                 { return mc.y }
func (mc *mockCPU) Peek(addr uint16) uint8   { return mc.mem[addr] }
func (mc *mockCPU) Is65C02() bool            { return mc.cmos }
func (mc *mockCPU) AssertIRQ(src IRQSource)  { mc.irq[src] = true }
func (mc *mockCPU) ReleaseIRQ(src IRQSource) { mc.irq[src] = false }

// fabricateStore simulates "sta abs". four cycles
func (mc *mockCPU) fabricateStore(addr uint16) {
	mc.mem[0x0300] = 0x8d
	mc.mem[0x0301] = uint8(addr)
	mc.mem[0x0302] = uint8(addr >> 8)
	mc.pc = 0x0303
}

// fabricateStoreAbsX simulates "sta abs,x". five cycles
func (mc *mockCPU) fabricateStoreAbsX(base uint16, x uint8) {
	mc.mem[0x0300] = 0x9d
	mc.mem[0x0301] = uint8(base)
	mc.mem[0x0302] = uint8(base >> 8)
	mc.x = x
	mc.pc = 0x0303
}

// fabricateStoreIndY simulates "sta (zp),y". six cycles
func (mc *mockCPU) fabricateStoreIndY(zp uint8, base uint16, y uint8) {
	mc.mem[0x0300] = 0x91
	mc.mem[0x0301] = zp
	mc.mem[uint16(zp)] = uint8(base)
	mc.mem[uint16(zp)+1] = uint8(base >> 8)
	mc.y = y
	mc.pc = 0x0302
}

// fabricateLoad simulates "lda abs". four cycles
func (mc *mockCPU) fabricateLoad(addr uint16) {
	mc.mem[0x0300] = 0xad
	mc.mem[0x0301] = uint8(addr)
	mc.mem[0x0302] = uint8(addr >> 8)
	mc.pc = 0x0303
}

// harness wires a card to a mock CPU and a clock, and moves the clock the
// way the full system does: an instruction's worth at a time, stopping at
// event deadlines.
type harness struct {
	crd    *Card
	cpu    *mockCPU
	clk    *clock.Clock
	events *clock.Manager
	env    *environment.Environment
}

func newHarness(t *testing.T, typ string) *harness {
	t.Helper()

	clk := &clock.Clock{}
	env, err := environment.NewEnvironment(clk, nil)
	test.DemandSuccess(t, err)
	test.DemandSuccess(t, env.Normalise())
	test.DemandSuccess(t, env.Prefs.Mode.Set(typ))

	cpu := &mockCPU{}
	events := clock.NewManager(clk)

	crd, err := NewCard(env, clk, events, cpu)
	test.DemandSuccess(t, err)

	return &harness{
		crd:    crd,
		cpu:    cpu,
		clk:    clk,
		events: events,
		env:    env,
	}
}

// run the clock forward, dispatching events at their deadlines.
func (h *harness) run(cycles uint64) {
	target := h.clk.Cycles() + cycles
	for h.clk.Cycles() < target {
		step := target - h.clk.Cycles()
		if deadline, ok := h.events.Next(); ok && deadline > h.clk.Cycles() {
			if d := deadline - h.clk.Cycles(); d < step {
				step = d
			}
		}
		h.clk.Advance(step)
		h.events.Dispatch()
		h.crd.PeriodicUpdate(step)
	}
}

// write to the card the way a store instruction does: the card sees the
// access with the clock at the start of the instruction and the clock then
// moves past the instruction.
func (h *harness) write(addr uint16, data uint8) {
	h.cpu.fabricateStore(addr)
	h.crd.Write(addr, data)
	h.clk.Advance(4)
	h.events.Dispatch()
}

// read from the card the way a load instruction does.
func (h *harness) read(addr uint16) uint8 {
	h.cpu.fabricateLoad(addr)
	v := h.crd.Read(addr)
	h.clk.Advance(4)
	h.events.Dispatch()
	return v
}

// unitAddr is the IO address of a unit register as decoded by the
// standard card.
func unitAddr(unit int, reg uint8) uint16 {
	addr := 0xc400 | uint16(unit/2)<<8 | uint16(reg)
	if unit&1 == 1 {
		addr |= 0x80
	}
	return addr
}

func TestNewCard(t *testing.T) {
	h := newHarness(t, "mockingboard")
	test.ExpectEquality(t, h.crd.Type(), TypeMockingboard)
	test.ExpectEquality(t, h.crd.Mode(), ModeMockingboard)

	h = newHarness(t, "phasor")
	test.ExpectEquality(t, h.crd.Type(), TypePhasor)
	test.ExpectEquality(t, h.crd.Mode(), ModeMockingboard)

	h = newHarness(t, "echoplus")
	test.ExpectEquality(t, h.crd.Type(), TypeEchoPlus)
	test.ExpectEquality(t, h.crd.Mode(), ModeEchoPlus)
}

func TestParseType(t *testing.T) {
	typ, err := ParseType("Phasor")
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, typ, TypePhasor)

	_, err = ParseType("unobtainium")
	test.ExpectFailure(t, err)
}

func TestPowerOnState(t *testing.T) {
	h := newHarness(t, "mockingboard")

	for unit := 0; unit < NumUnits; unit++ {
		test.ExpectEquality(t, h.read(unitAddr(unit, via.RegT1LL)), 0xff)
		test.ExpectEquality(t, h.read(unitAddr(unit, via.RegT1LH)), 0xff)
		test.ExpectEquality(t, h.read(unitAddr(unit, via.RegDDRA)), 0x00)
		test.ExpectEquality(t, h.read(unitAddr(unit, via.RegDDRB)), 0x00)
		test.ExpectEquality(t, h.read(unitAddr(unit, via.RegIFR)), 0x00)

		// bit 7 of the IER always reads as one
		test.ExpectEquality(t, h.read(unitAddr(unit, via.RegIER)), 0x80)
	}
}

func TestReset(t *testing.T) {
	h := newHarness(t, "mockingboard")

	h.write(unitAddr(0, via.RegDDRA), 0xff)
	h.write(unitAddr(0, via.RegORA), 0x55)
	h.write(unitAddr(0, via.RegT1LL), 0x12)

	// a warm reset quietens the card but leaves the register file alone
	h.crd.Reset(false)
	test.ExpectEquality(t, h.read(unitAddr(0, via.RegDDRA)), 0xff)
	test.ExpectEquality(t, h.read(unitAddr(0, via.RegT1LL)), 0x12)
	test.ExpectEquality(t, h.read(unitAddr(0, via.RegIER)), 0x80)

	// a power cycle returns the register file to the power-on state
	h.crd.Reset(true)
	test.ExpectEquality(t, h.read(unitAddr(0, via.RegDDRA)), 0x00)
	test.ExpectEquality(t, h.read(unitAddr(0, via.RegT1LL)), 0xff)
}

func TestResetStopsTimers(t *testing.T) {
	h := newHarness(t, "mockingboard")

	h.write(unitAddr(0, via.RegIER), 0x80|via.IntT1)
	h.write(unitAddr(0, via.RegT1CL), 0x64)
	h.write(unitAddr(0, via.RegT1CH), 0x00)

	h.crd.Reset(false)

	// the underflow event has been removed along with the interrupt
	// enable. nothing fires
	h.run(1000)
	test.ExpectEquality(t, h.crd.units[0].VIA.IFR, 0x00)
	test.ExpectEquality(t, h.cpu.irq[IRQVIA], false)
}

func TestIsActive(t *testing.T) {
	h := newHarness(t, "mockingboard")
	test.ExpectEquality(t, h.crd.IsActive(), false)

	h.write(unitAddr(0, via.RegDDRB), 0xff)
	test.ExpectEquality(t, h.crd.IsActive(), true)

	// activity decays a while after the last register access. the decay is
	// only noticed by the audio update so the clock must really run
	for i := 0; i < 150; i++ {
		h.run(1000)
	}
	test.ExpectEquality(t, h.crd.IsActive(), false)
}

func TestIsActiveSpeech(t *testing.T) {
	h := newHarness(t, "mockingboard")

	// a phoneme counts as activity even with the PSGs silent
	h.write(0xc420, 0x00)
	test.ExpectEquality(t, h.crd.IsActive(), true)
}

func TestString(t *testing.T) {
	h := newHarness(t, "mockingboard")
	test.ExpectInequality(t, h.crd.String(), "")
}
