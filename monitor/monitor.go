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

// Package monitor provides an interactive terminal attached to a card
// emulation. registers can be poked and peeked by hand, the clock stepped
// an exact number of cycles, and the state of the card inspected, saved
// and restored. it is the tool to reach for when working out why a piece
// of software and the card disagree.
package monitor

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/xizhe-zhang/mockingboard/environment"
	"github.com/xizhe-zhang/mockingboard/hardware"
	"github.com/xizhe-zhang/mockingboard/hardware/card/script"
	"github.com/xizhe-zhang/mockingboard/logger"
	"github.com/xizhe-zhang/mockingboard/monitor/easyterm"
	"github.com/xizhe-zhang/mockingboard/monitor/easyterm/ansi"
	"github.com/xizhe-zhang/mockingboard/version"
)

// sentinel error returned by the line reader when the user asks to leave
var errQuit = errors.New("quit")

// Monitor is an interactive terminal attached to a card emulation.
type Monitor struct {
	env  *environment.Environment
	sys  *hardware.System
	term easyterm.Terminal

	history []string

	// echo PSG register writes as they happen
	trace bool

	// when non-nil, card accesses made from the monitor are appended to
	// this file as script entries
	rec     *os.File
	recName string
}

// NewMonitor is the preferred method of initialisation for the Monitor
// type.
func NewMonitor(env *environment.Environment, sys *hardware.System) (*Monitor, error) {
	mon := &Monitor{
		env: env,
		sys: sys,
	}

	if err := mon.term.Initialise(os.Stdin, os.Stdout); err != nil {
		return nil, fmt.Errorf("monitor: %w", err)
	}

	sys.Card.SetTracker(mon)

	return mon, nil
}

// PSGTick implements the card.Tracker interface.
func (mon *Monitor) PSGTick(_ *environment.Environment, unit int, chip int, reg uint8, data uint8) {
	if !mon.trace {
		return
	}
	mon.print(ansi.DimPens["yellow"], "unit %d psg %d: reg %02x = %02x", unit, chip, reg, data)
}

// print a formatted line to the terminal. raw mode needs the carriage
// return as well as the newline.
func (mon *Monitor) print(pen string, s string, a ...any) {
	s = fmt.Sprintf(s, a...)
	s = strings.ReplaceAll(s, "\n", "\r\n")
	mon.term.TermPrint("%s%s%s\r\n", pen, s, ansi.NormalPen)
}

// record the access as a script entry when a recording is in progress.
// the clock must not have advanced past the access yet or replaying the
// script will not reproduce the session.
func (mon *Monitor) record(acc script.Access, addr uint16, data uint8) {
	if mon.rec == nil {
		return
	}
	e := script.Entry{
		Cycle:  mon.sys.Clock.Cycles(),
		Access: acc,
		Addr:   addr,
		Data:   data,
	}
	fmt.Fprintln(mon.rec, e)
}

// endRecording closes any recording in progress.
func (mon *Monitor) endRecording() {
	if mon.rec == nil {
		return
	}
	mon.rec.Close()
	mon.rec = nil
	logger.Logf(mon.env, "monitor", "recording ended: %s", mon.recName)
}

// Run is the monitor input loop. it returns when the user quits.
func (mon *Monitor) Run() error {
	defer mon.term.CleanUp()
	defer mon.endRecording()

	ver, _, _ := version.Version()
	mon.print(ansi.PenStyles["bold"], "%s monitor (%s)", version.ApplicationName, ver)
	mon.print(ansi.NormalPen, "type \"help\" for the list of commands")

	mon.term.RawMode()

	for {
		input, err := mon.readLine()
		if err != nil {
			if errors.Is(err, errQuit) {
				return nil
			}
			return err
		}

		cont, err := mon.dispatch(input)
		if err != nil {
			mon.print(ansi.Pens["red"], "%v", err)
		}
		if !cont {
			return nil
		}
	}
}

// readLine reads a line of input in raw mode. editing is rudimentary:
// backspace, ctrl-c to abandon the line, and the up/down cursor keys for
// history.
func (mon *Monitor) readLine() (string, error) {
	var input []byte
	hist := len(mon.history)

	for {
		mon.term.TermPrint("%s\r%s(mb)%s %s", ansi.ClearLine, ansi.Pens["green"], ansi.NormalPen, string(input))

		r, err := mon.term.TermReadRune()
		if err != nil {
			return "", err
		}

		switch r {
		case easyterm.KeyInterrupt:
			// abandon the line. quit if there is nothing to abandon
			if len(input) == 0 {
				mon.term.TermPrint("\r\n")
				return "", errQuit
			}
			input = input[:0]

		case easyterm.KeyEndOfFile:
			mon.term.TermPrint("\r\n")
			return "", errQuit

		case easyterm.KeySuspend:
			mon.term.CanonicalMode()
			easyterm.SuspendProcess()
			mon.term.RawMode()

		case easyterm.KeyCarriageReturn:
			mon.term.TermPrint("\r\n")
			s := strings.TrimSpace(string(input))
			if s != "" && (len(mon.history) == 0 || mon.history[len(mon.history)-1] != s) {
				mon.history = append(mon.history, s)
			}
			return s, nil

		case easyterm.KeyBackspace, easyterm.KeyRubout:
			if len(input) > 0 {
				input = input[:len(input)-1]
			}

		case easyterm.KeyEsc:
			r, err := mon.term.TermReadRune()
			if err != nil {
				return "", err
			}
			if r != easyterm.EscCursor {
				continue // for loop
			}
			r, err = mon.term.TermReadRune()
			if err != nil {
				return "", err
			}
			switch r {
			case easyterm.CursorUp:
				if hist > 0 {
					hist--
					input = append(input[:0], mon.history[hist]...)
				}
			case easyterm.CursorDown:
				if hist < len(mon.history)-1 {
					hist++
					input = append(input[:0], mon.history[hist]...)
				} else {
					hist = len(mon.history)
					input = input[:0]
				}
			}

		case easyterm.KeyTab:
			// no tab completion

		default:
			if r >= 32 && r < 127 {
				input = append(input, byte(r))
			}
		}
	}
}
