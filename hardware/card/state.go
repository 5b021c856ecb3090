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
	"errors"
	"fmt"
	"io"

	"github.com/xizhe-zhang/mockingboard/hardware/via"
	"github.com/xizhe-zhang/mockingboard/logger"
	"gopkg.in/yaml.v3"
)

// SchemaVersion is the version of the saved state schema written by
// SaveState. LoadState accepts this version and every version before it.
const SchemaVersion = 7

// UnknownSchema is returned by LoadState for saved states written by a
// later schema version than this build understands.
var UnknownSchema = errors.New("unknown schema version")

// The saved state schema. Fields that arrived after version 1 are
// pointers so that their absence in an older file can be told apart from
// a zero value.
//
// Schema history:
//
//	v2 adds the timer run flags
//	v3 adds the PSG bus state
//	v4 adds the timer interrupt delay flags
//	v5 adds the secondary PSG bus state
//	v6 re-encodes the mode field as the raw mode register value
//	v7 adds the speech section and the timer1 latch power-on value
type saveState struct {
	Version int        `yaml:"version"`
	Mode    int        `yaml:"mode"`
	Votrax  bool       `yaml:"votrax phoneme"`
	Units   []saveUnit `yaml:"units"`
}

type saveUnit struct {
	VIA    saveVIA     `yaml:"via"`
	Reg    uint8       `yaml:"register latch"`
	State  *int        `yaml:"bus state,omitempty"`
	StateB *int        `yaml:"bus state b,omitempty"`
	Speech *saveSpeech `yaml:"speech,omitempty"`
	PSG    *savePSG    `yaml:"psg,omitempty"`
	PSGB   *savePSG    `yaml:"psg b,omitempty"`
}

type saveVIA struct {
	ORA  uint8 `yaml:"ora"`
	ORB  uint8 `yaml:"orb"`
	DDRA uint8 `yaml:"ddra"`
	DDRB uint8 `yaml:"ddrb"`
	ACR  uint8 `yaml:"acr"`
	PCR  uint8 `yaml:"pcr"`
	IFR  uint8 `yaml:"ifr"`
	IER  uint8 `yaml:"ier"`

	Timer1Counter uint16 `yaml:"timer1 counter"`
	Timer1Latch   uint16 `yaml:"timer1 latch"`
	Timer2Counter uint16 `yaml:"timer2 counter"`
	Timer2Latch   uint16 `yaml:"timer2 latch"`

	Timer1Active *bool `yaml:"timer1 active,omitempty"`
	Timer2Active *bool `yaml:"timer2 active,omitempty"`
	Timer1Delay  *bool `yaml:"timer1 irq delay,omitempty"`
	Timer2Delay  *bool `yaml:"timer2 irq delay,omitempty"`
}

type savePSG struct {
	Regs [16]uint8 `yaml:"registers,flow"`
}

type saveSpeech struct {
	DurationPhoneme uint8 `yaml:"duration phoneme"`
	Inflection      uint8 `yaml:"inflection"`
	RateInflection  uint8 `yaml:"rate inflection"`
	CtrlArtAmp      uint8 `yaml:"ctrl art amp"`
	FilterFreq      uint8 `yaml:"filter freq"`
	Mode            uint8 `yaml:"mode"`
	Ctrl            bool  `yaml:"powered down"`
	Active          bool  `yaml:"active"`
	Complete        bool  `yaml:"complete"`
	Votrax          bool  `yaml:"votrax"`
	VotraxPhoneme   uint8 `yaml:"votrax phoneme"`

	// cycles left on the phoneme timer. negative when idle
	Remaining int64 `yaml:"remaining cycles"`
}

// SaveState writes the state of the card to w in the current schema
// version. The timers are reconciled with the clock first so that the
// counters in the file are the counters at the moment of the save.
func (crd *Card) SaveState(w io.Writer) error {
	crd.advance()

	sv := saveState{
		Version: SchemaVersion,
		Mode:    int(crd.mode),
	}

	numUnits := NumUnits
	if crd.phasor() {
		numUnits = 2
	}

	for i := 0; i < numUnits; i++ {
		u := crd.units[i]

		state := int(u.State)
		stateB := int(u.StateB)
		t1Active := u.VIA.Timer1.Active
		t2Active := u.VIA.Timer2.Active
		t1Delay := u.VIA.Timer1.IRQDelay
		t2Delay := u.VIA.Timer2.IRQDelay

		su := saveUnit{
			VIA: saveVIA{
				ORA:           u.VIA.ORA,
				ORB:           u.VIA.ORB,
				DDRA:          u.VIA.DDRA,
				DDRB:          u.VIA.DDRB,
				ACR:           u.VIA.ACR,
				PCR:           u.VIA.PCR,
				IFR:           u.VIA.IFR,
				IER:           u.VIA.IER,
				Timer1Counter: u.VIA.Timer1.Counter,
				Timer1Latch:   u.VIA.Timer1.Latch,
				Timer2Counter: u.VIA.Timer2.Counter,
				Timer2Latch:   u.VIA.Timer2.Latch,
				Timer1Active:  &t1Active,
				Timer2Active:  &t2Active,
				Timer1Delay:   &t1Delay,
				Timer2Delay:   &t2Delay,
			},
			Reg:   u.Reg,
			State: &state,
			Speech: &saveSpeech{
				DurationPhoneme: u.Speech.DurationPhoneme,
				Inflection:      u.Speech.Inflection,
				RateInflection:  u.Speech.RateInflection,
				CtrlArtAmp:      u.Speech.CtrlArtAmp,
				FilterFreq:      u.Speech.FilterFreq,
				Mode:            u.Speech.Mode,
				Ctrl:            u.Speech.Ctrl,
				Active:          u.Speech.Active,
				Complete:        u.Speech.Complete,
				Votrax:          u.Speech.Votrax,
				VotraxPhoneme:   u.Speech.VotraxPhoneme,
				Remaining:       u.Speech.Remaining(),
			},
			PSG: &savePSG{Regs: crd.chips[i].Regs},
		}

		if crd.phasor() {
			su.StateB = &stateB
			su.PSGB = &savePSG{Regs: crd.chips[i+2].Regs}
		}

		sv.Votrax = sv.Votrax || (u.Speech.Active && u.Speech.Votrax)
		sv.Units = append(sv.Units, su)
	}

	enc := yaml.NewEncoder(w)
	if err := enc.Encode(&sv); err != nil {
		return fmt.Errorf("card: state: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("card: state: %w", err)
	}

	logger.Logf(crd.env, "card", "state saved (schema v%d)", SchemaVersion)

	return nil
}

// LoadState replaces the state of the card with a state previously
// written by SaveState, migrating older schema versions along the way. On
// error the card is left as it was, except that a state which fails while
// being committed leaves the card reset.
func (crd *Card) LoadState(r io.Reader) error {
	var sv saveState

	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&sv); err != nil {
		return fmt.Errorf("card: state: %w", err)
	}

	if sv.Version < 1 || sv.Version > SchemaVersion {
		return fmt.Errorf("card: state: %w: %d", UnknownSchema, sv.Version)
	}

	numUnits := NumUnits
	if crd.phasor() {
		numUnits = 2
	}
	if len(sv.Units) != numUnits {
		return fmt.Errorf("card: state: saved by a different card type: %d units", len(sv.Units))
	}

	if sv.Version >= 6 && (sv.Mode < 0 || sv.Mode > 7) {
		return fmt.Errorf("card: state: mode out of range: %d", sv.Mode)
	}

	// every version-required key must be present before anything is
	// committed. a file that fails here leaves the card untouched
	for i, su := range sv.Units {
		missing := func(key string) error {
			return fmt.Errorf("card: state: unit %d: missing %s", i, key)
		}

		if su.PSG == nil {
			return missing("psg")
		}
		if crd.phasor() && su.PSGB == nil {
			return missing("psg b")
		}
		if sv.Version >= 2 && (su.VIA.Timer1Active == nil || su.VIA.Timer2Active == nil) {
			return missing("timer active flags")
		}
		if sv.Version >= 3 && su.State == nil {
			return missing("bus state")
		}
		if sv.Version >= 4 && (su.VIA.Timer1Delay == nil || su.VIA.Timer2Delay == nil) {
			return missing("timer irq delay flags")
		}
		if sv.Version >= 5 && crd.phasor() && su.StateB == nil {
			return missing("bus state b")
		}
		if sv.Version >= 7 && su.Speech == nil {
			return missing("speech")
		}
	}

	crd.Reset(true)

	for i, su := range sv.Units {
		u := crd.units[i]

		u.VIA.ORA = su.VIA.ORA
		u.VIA.ORB = su.VIA.ORB
		u.VIA.DDRA = su.VIA.DDRA
		u.VIA.DDRB = su.VIA.DDRB
		u.VIA.ACR = su.VIA.ACR
		u.VIA.PCR = su.VIA.PCR
		u.VIA.IER = su.VIA.IER & 0x7f
		crd.updateIFR(u, 0x7f, su.VIA.IFR&0x7f)

		u.VIA.Timer1.Counter = su.VIA.Timer1Counter
		u.VIA.Timer1.Latch = su.VIA.Timer1Latch
		u.VIA.Timer2.Counter = su.VIA.Timer2Counter
		u.VIA.Timer2.Latch = su.VIA.Timer2Latch

		// before v7 the power-on state of the timer1 latch was zero. a
		// zero latch in an old file means the software never wrote it and
		// the hardware value is restored instead
		if sv.Version < 7 && u.VIA.Timer1.Latch == 0 {
			u.VIA.Timer1.Latch = 0xffff
		}

		if sv.Version >= 2 {
			u.VIA.Timer1.Active = *su.VIA.Timer1Active
			u.VIA.Timer2.Active = *su.VIA.Timer2Active
		}
		if sv.Version >= 4 {
			u.VIA.Timer1.IRQDelay = *su.VIA.Timer1Delay
			u.VIA.Timer2.IRQDelay = *su.VIA.Timer2Delay
		}

		u.Reg = su.Reg & 0x0f
		if su.State != nil {
			u.State = BusFunc(*su.State) & 0x07
		}
		if su.StateB != nil {
			u.StateB = BusFunc(*su.StateB) & 0x07
		}

		for r, v := range su.PSG.Regs {
			crd.chips[i].Write(uint8(r), v)
		}
		if su.PSGB != nil {
			for r, v := range su.PSGB.Regs {
				crd.chips[i+2].Write(uint8(r), v)
			}
		}

		if sv.Version == 1 {
			crd.startTimer1Restore(u)
		} else if u.VIA.Timer1.Active {
			crd.startTimer1(u)
		}

		if u.VIA.Timer1.Active {
			crd.events.Insert(crd.sync[u.num*2], uint64(u.VIA.Timer1.Counter)+via.ReloadCycles)
		}
		if u.VIA.Timer2.Active {
			crd.events.Insert(crd.sync[u.num*2+1], uint64(u.VIA.Timer2.Counter)+via.ReloadCycles)
		}

		if su.Speech != nil {
			sp := su.Speech
			u.Speech.DurationPhoneme = sp.DurationPhoneme
			u.Speech.Inflection = sp.Inflection
			u.Speech.RateInflection = sp.RateInflection
			u.Speech.CtrlArtAmp = sp.CtrlArtAmp
			u.Speech.FilterFreq = sp.FilterFreq
			u.Speech.Mode = sp.Mode
			u.Speech.Ctrl = sp.Ctrl
			u.Speech.Active = sp.Active
			u.Speech.Complete = sp.Complete
			u.Speech.Votrax = sp.Votrax
			u.Speech.VotraxPhoneme = sp.VotraxPhoneme
			u.Speech.Restore(sp.Remaining)
		}
	}

	// before v7 the only record of speech activity was the card level
	// phoneme flag. the phoneme is restarted from the port B value with
	// its full length, which errs on the long side
	if sv.Version < 7 && sv.Votrax {
		u := crd.units[0]
		u.Speech.VotraxWrite(u.VIA.ORB | ^u.VIA.DDRB)
	}

	if crd.phasor() {
		if sv.Version >= 6 {
			crd.setMode(Mode(sv.Mode))
		} else if sv.Mode == 0 {
			crd.setMode(ModeMockingboard)
		} else {
			crd.setMode(ModePhasor)
		}
	}

	crd.updateIRQ()

	logger.Logf(crd.env, "card", "state loaded (schema v%d)", sv.Version)

	return nil
}
