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

package monitor

import (
	"bytes"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/bradleyjkemp/memviz"

	"github.com/xizhe-zhang/mockingboard/hardware/card/script"
	"github.com/xizhe-zhang/mockingboard/logger"
	"github.com/xizhe-zhang/mockingboard/monitor/easyterm/ansi"
	"github.com/xizhe-zhang/mockingboard/version"
)

const helpText = `help            this text
peek ADDR       read a card address
poke ADDR VAL   write a card address
select ADDR     access the device select page
step [N]        advance the clock N cycles (default 1)
run N           advance the clock N cycles
state           show card, cpu and clock state
trace [on|off]  echo PSG register writes
record FILE     record peek/poke/select accesses to a script file
record end      stop recording
save FILE       save card state to FILE
load FILE       restore card state from FILE
dump FILE       write a graphviz graph of the card state to FILE
log [N]         show the last N log entries (default 10)
reset [cold]    reset the card
model [MODEL]   show or set the cpu model: 6502 or 65c02
quit            leave the monitor`

func convertAddress(s string) (uint16, error) {
	if s[0] == '$' {
		s = fmt.Sprintf("0x%s", s[1:])
	}
	a, err := strconv.ParseUint(s, 0, 16)
	if err != nil {
		return 0, fmt.Errorf("monitor: unrecognised address: %s", s)
	}
	return uint16(a), nil
}

func convertValue(s string) (uint8, error) {
	if s[0] == '$' {
		s = fmt.Sprintf("0x%s", s[1:])
	}
	v, err := strconv.ParseUint(s, 0, 8)
	if err != nil {
		return 0, fmt.Errorf("monitor: unrecognised value: %s", s)
	}
	return uint8(v), nil
}

func convertCount(s string) (uint64, error) {
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("monitor: unrecognised cycle count: %s", s)
	}
	return n, nil
}

// dispatch a single line of input. the returned bool is false when the
// monitor should end.
func (mon *Monitor) dispatch(input string) (bool, error) {
	toks := strings.Fields(input)
	if len(toks) == 0 {
		return true, nil
	}

	arg := func(n int) (string, error) {
		if len(toks) <= n {
			return "", fmt.Errorf("monitor: too few arguments for %s", toks[0])
		}
		return toks[n], nil
	}

	switch strings.ToLower(toks[0]) {
	default:
		return true, fmt.Errorf("monitor: unrecognised command: %s", toks[0])

	case "help", "h", "?":
		mon.print(ansi.NormalPen, "%s", helpText)

	case "quit", "q":
		return false, nil

	case "peek":
		s, err := arg(1)
		if err != nil {
			return true, err
		}
		addr, err := convertAddress(s)
		if err != nil {
			return true, err
		}
		mon.record(script.AccessRead, addr, 0)
		mon.print(ansi.NormalPen, "$%04x -> $%02x", addr, mon.sys.Peek(addr))

	case "poke":
		s, err := arg(1)
		if err != nil {
			return true, err
		}
		addr, err := convertAddress(s)
		if err != nil {
			return true, err
		}
		s, err = arg(2)
		if err != nil {
			return true, err
		}
		data, err := convertValue(s)
		if err != nil {
			return true, err
		}
		mon.record(script.AccessWrite, addr, data)
		mon.sys.Poke(addr, data)

	case "select":
		s, err := arg(1)
		if err != nil {
			return true, err
		}
		addr, err := convertAddress(s)
		if err != nil {
			return true, err
		}
		mon.record(script.AccessSelect, addr, 0)
		v := mon.sys.Select(addr)
		mon.print(ansi.NormalPen, "$%04x -> $%02x (mode: %s)", addr, v, mon.sys.Card.Mode())

	case "step", "run":
		n := uint64(1)
		if len(toks) > 1 {
			var err error
			n, err = convertCount(toks[1])
			if err != nil {
				return true, err
			}
		} else if strings.ToLower(toks[0]) == "run" {
			return true, fmt.Errorf("monitor: too few arguments for run")
		}
		mon.sys.RunForCycles(n)
		mon.print(ansi.DimPens["cyan"], "clock: %v irq: %v", mon.sys.Clock, mon.sys.CPU.IRQ())

	case "state":
		mon.print(ansi.NormalPen, "%v", mon.sys.Card)
		mon.print(ansi.NormalPen, "cpu: %v", mon.sys.CPU)
		mon.print(ansi.NormalPen, "clock: %v", mon.sys.Clock)

	case "trace":
		if len(toks) > 1 {
			switch strings.ToLower(toks[1]) {
			case "on":
				mon.trace = true
			case "off":
				mon.trace = false
			default:
				return true, fmt.Errorf("monitor: trace takes \"on\" or \"off\"")
			}
		} else {
			mon.trace = !mon.trace
		}
		if mon.trace {
			mon.print(ansi.NormalPen, "trace on")
		} else {
			mon.print(ansi.NormalPen, "trace off")
		}

	case "record":
		s, err := arg(1)
		if err != nil {
			return true, err
		}
		if strings.ToLower(s) == "end" {
			if mon.rec == nil {
				return true, fmt.Errorf("monitor: no recording in progress")
			}
			mon.endRecording()
			mon.print(ansi.NormalPen, "recording ended: %s", mon.recName)
			return true, nil
		}
		if mon.rec != nil {
			return true, fmt.Errorf("monitor: already recording to %s", mon.recName)
		}
		f, err := os.Create(s)
		if err != nil {
			return true, fmt.Errorf("monitor: %w", err)
		}
		fmt.Fprintf(f, "# recorded by %s monitor\n", version.ApplicationName)
		mon.rec = f
		mon.recName = s
		mon.print(ansi.NormalPen, "recording to %s", s)

	case "save":
		s, err := arg(1)
		if err != nil {
			return true, err
		}
		f, err := os.Create(s)
		if err != nil {
			return true, fmt.Errorf("monitor: %w", err)
		}
		defer f.Close()
		if err := mon.sys.Card.SaveState(f); err != nil {
			return true, err
		}
		mon.print(ansi.NormalPen, "state saved to %s", s)

	case "load":
		s, err := arg(1)
		if err != nil {
			return true, err
		}
		f, err := os.Open(s)
		if err != nil {
			return true, fmt.Errorf("monitor: %w", err)
		}
		defer f.Close()
		if err := mon.sys.Card.LoadState(f); err != nil {
			return true, err
		}
		mon.print(ansi.NormalPen, "state loaded from %s", s)

	case "dump":
		s, err := arg(1)
		if err != nil {
			return true, err
		}
		f, err := os.Create(s)
		if err != nil {
			return true, fmt.Errorf("monitor: %w", err)
		}
		defer f.Close()
		memviz.Map(f, mon.sys.Card.Snapshot())
		mon.print(ansi.NormalPen, "state graph written to %s", s)

	case "log":
		n := 10
		if len(toks) > 1 {
			c, err := convertCount(toks[1])
			if err != nil {
				return true, err
			}
			n = int(c)
		}
		buf := &bytes.Buffer{}
		logger.Tail(buf, n)
		if buf.Len() == 0 {
			mon.print(ansi.DimPens["cyan"], "log is empty")
		} else {
			mon.print(ansi.NormalPen, "%s", strings.TrimRight(buf.String(), "\n"))
		}

	case "reset":
		cold := len(toks) > 1 && strings.ToLower(toks[1]) == "cold"
		mon.sys.Reset(cold)
		if cold {
			mon.print(ansi.NormalPen, "cold reset")
		} else {
			mon.print(ansi.NormalPen, "reset")
		}

	case "model":
		if len(toks) > 1 {
			switch strings.ToLower(toks[1]) {
			case "6502":
				mon.sys.CPU.SetModel(false)
			case "65c02":
				mon.sys.CPU.SetModel(true)
			default:
				return true, fmt.Errorf("monitor: unrecognised cpu model: %s", toks[1])
			}
		}
		mon.print(ansi.NormalPen, "cpu: %v", mon.sys.CPU)
	}

	return true, nil
}
