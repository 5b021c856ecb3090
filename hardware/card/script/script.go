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

// Package script reads register scripts. A register script is a plain text
// file describing a sequence of card accesses, one per line:
//
//	CYCLE ACCESS ADDRESS [DATA]
//
// CYCLE is the cumulative CPU cycle count at which the access happens.
// cycles must not decrease from one line to the next. ACCESS is one of
// "write", "read" or "select"; only write takes a DATA argument. ADDRESS
// and DATA accept decimal, 0x or $ prefixed hexadecimal. everything after
// a # is a comment.
//
// for example:
//
//	# voice A on full volume
//	100 write $c403 $ff
//	110 write $c402 $ff
//	120 write $c401 $07
//	130 write $c400 $07
//
// the script package only parses the file. stepping an emulation through
// the entries is the responsibility of the caller.
package script

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Access is the kind of card access described by an Entry.
type Access int

// List of valid Access values.
const (
	AccessWrite Access = iota
	AccessRead
	AccessSelect
)

func (acc Access) String() string {
	switch acc {
	case AccessWrite:
		return "write"
	case AccessRead:
		return "read"
	case AccessSelect:
		return "select"
	}
	return "unknown"
}

// Entry is a single cycle-stamped access to the card.
type Entry struct {
	Cycle  uint64
	Access Access
	Addr   uint16
	Data   uint8
}

func (e Entry) String() string {
	if e.Access == AccessWrite {
		return fmt.Sprintf("%d %s $%04x $%02x", e.Cycle, e.Access, e.Addr, e.Data)
	}
	return fmt.Sprintf("%d %s $%04x", e.Cycle, e.Access, e.Addr)
}

// Script is a sequence of card accesses in cycle order.
type Script struct {
	Entries []Entry
}

// NewScript is the preferred method of initialisation for the Script type.
// the named file is read in full and validated before the function returns.
func NewScript(filename string) (*Script, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("script: %w", err)
	}
	defer f.Close()

	scr, err := ReadScript(f)
	if err != nil {
		return nil, fmt.Errorf("script: %s: %w", filename, err)
	}
	return scr, nil
}

// ReadScript reads a register script from an io.Reader.
func ReadScript(r io.Reader) (*Script, error) {
	buffer, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("script: %w", err)
	}

	convert := func(s string, bitSize int) (uint64, error) {
		if s[0] == '$' {
			s = fmt.Sprintf("0x%s", s[1:])
		}
		return strconv.ParseUint(s, 0, bitSize)
	}

	scr := &Script{}

	for ln, s := range strings.Split(string(buffer), "\n") {
		if i := strings.IndexRune(s, '#'); i >= 0 {
			s = s[:i]
		}

		toks := strings.Fields(s)
		if len(toks) == 0 {
			continue // for loop
		}

		e := Entry{}

		e.Cycle, err = strconv.ParseUint(toks[0], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: unrecognised cycle count: %s", ln+1, toks[0])
		}
		if len(scr.Entries) > 0 && e.Cycle < scr.Entries[len(scr.Entries)-1].Cycle {
			return nil, fmt.Errorf("line %d: cycle count decreases", ln+1)
		}

		if len(toks) < 3 {
			return nil, fmt.Errorf("line %d: too few arguments", ln+1)
		}

		switch strings.ToLower(toks[1]) {
		case "write":
			e.Access = AccessWrite
			if len(toks) < 4 {
				return nil, fmt.Errorf("line %d: too few arguments for write", ln+1)
			}
			if len(toks) > 4 {
				return nil, fmt.Errorf("line %d: too many arguments for write", ln+1)
			}
		case "read":
			e.Access = AccessRead
			if len(toks) > 3 {
				return nil, fmt.Errorf("line %d: too many arguments for read", ln+1)
			}
		case "select":
			e.Access = AccessSelect
			if len(toks) > 3 {
				return nil, fmt.Errorf("line %d: too many arguments for select", ln+1)
			}
		default:
			return nil, fmt.Errorf("line %d: unrecognised access: %s", ln+1, toks[1])
		}

		addr, err := convert(toks[2], 16)
		if err != nil {
			return nil, fmt.Errorf("line %d: unrecognised address: %s", ln+1, toks[2])
		}
		e.Addr = uint16(addr)

		if e.Access == AccessWrite {
			data, err := convert(toks[3], 8)
			if err != nil {
				return nil, fmt.Errorf("line %d: unrecognised data value: %s", ln+1, toks[3])
			}
			e.Data = uint8(data)
		}

		scr.Entries = append(scr.Entries, e)
	}

	return scr, nil
}
