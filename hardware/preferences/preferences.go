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

package preferences

import (
	"errors"
	"fmt"
	"strings"

	"github.com/xizhe-zhang/mockingboard/prefs"
	"github.com/xizhe-zhang/mockingboard/resources"
)

// Preferences defines and collates all the preference values used by the
// card emulation.
type Preferences struct {
	dsk *prefs.Disk

	// the card mode in effect at power on. one of "mockingboard", "phasor"
	// or "echoplus"
	Mode prefs.String

	// mixing volume and whether the PSG units are panned hard left/right
	Volume prefs.Float
	Stereo prefs.Bool

	// reads of unserviced addresses in the card's IO range return a
	// randomised value rather than zero
	RandBus prefs.Bool
}

func (p *Preferences) String() string {
	return p.dsk.String()
}

// NewPreferences is the preferred method of initialisation for the
// Preferences type.
func NewPreferences() (*Preferences, error) {
	p := &Preferences{}

	// validation hooks must be in place before any value is set
	p.Mode.SetHookPre(func(v prefs.Value) error {
		switch strings.ToLower(v.(string)) {
		case "mockingboard", "phasor", "echoplus":
			return nil
		}
		return fmt.Errorf("card mode: unrecognised value: %v", v)
	})
	p.Volume.SetHookPre(func(v prefs.Value) error {
		if vol := v.(float64); vol < 0.0 || vol > 1.0 {
			return fmt.Errorf("card volume: value out of range: %.2f", vol)
		}
		return nil
	})

	if err := p.SetDefaults(); err != nil {
		return nil, err
	}

	// setup preferences and load from disk
	pth, err := resources.JoinPath(prefs.DefaultPrefsFile)
	if err != nil {
		return nil, err
	}
	p.dsk, err = prefs.NewDisk(pth)
	if err != nil {
		return nil, err
	}
	err = p.dsk.Add("card.mode", &p.Mode)
	if err != nil {
		return nil, err
	}
	err = p.dsk.Add("card.volume", &p.Volume)
	if err != nil {
		return nil, err
	}
	err = p.dsk.Add("card.stereo", &p.Stereo)
	if err != nil {
		return nil, err
	}
	err = p.dsk.Add("card.randbus", &p.RandBus)
	if err != nil {
		return nil, err
	}
	err = p.dsk.Load(true)
	if err != nil {
		// ignore missing prefs file errors
		if !errors.Is(err, prefs.NoPrefsFile) {
			return nil, err
		}
	}

	// bespoke preferences given on the command line take precedence over
	// the saved values
	if v, ok := prefs.GetCommandLinePref("card.mode"); ok {
		if err := p.Mode.Set(v); err != nil {
			return nil, fmt.Errorf("prefs: card.mode: %w", err)
		}
	}
	if v, ok := prefs.GetCommandLinePref("card.volume"); ok {
		if err := p.Volume.Set(v); err != nil {
			return nil, fmt.Errorf("prefs: card.volume: %w", err)
		}
	}
	if v, ok := prefs.GetCommandLinePref("card.stereo"); ok {
		if err := p.Stereo.Set(v); err != nil {
			return nil, fmt.Errorf("prefs: card.stereo: %w", err)
		}
	}
	if v, ok := prefs.GetCommandLinePref("card.randbus"); ok {
		if err := p.RandBus.Set(v); err != nil {
			return nil, fmt.Errorf("prefs: card.randbus: %w", err)
		}
	}

	return p, nil
}

// SetDefaults reverts all settings to default values.
func (p *Preferences) SetDefaults() error {
	if err := p.Mode.Set("mockingboard"); err != nil {
		return err
	}
	if err := p.Volume.Set(0.75); err != nil {
		return err
	}
	if err := p.Stereo.Set(true); err != nil {
		return err
	}
	return p.RandBus.Set(true)
}

// Reset all preferences to the default values.
func (p *Preferences) Reset() error {
	return p.SetDefaults()
}

// Load current preferences from disk.
func (p *Preferences) Load() error {
	return p.dsk.Load(false)
}

// Save current preferences to disk.
func (p *Preferences) Save() error {
	return p.dsk.Save()
}
