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

package script_test

import (
	"strings"
	"testing"

	"github.com/xizhe-zhang/mockingboard/hardware/card/script"
	"github.com/xizhe-zhang/mockingboard/test"
)

const testScript = `
# tone on voice A, full volume
100 write $c403 $ff
110 write $c402 0xff
120 write $c401 7      # latch register 7
130 write $c400 $07

200 select $c0c5
200 read $c404
`

func TestReadScript(t *testing.T) {
	scr, err := script.ReadScript(strings.NewReader(testScript))
	test.DemandSuccess(t, err)
	test.DemandEquality(t, len(scr.Entries), 6)

	test.ExpectEquality(t, scr.Entries[0],
		script.Entry{Cycle: 100, Access: script.AccessWrite, Addr: 0xc403, Data: 0xff})
	test.ExpectEquality(t, scr.Entries[1].Data, 0xff)
	test.ExpectEquality(t, scr.Entries[2].Data, 7)
	test.ExpectEquality(t, scr.Entries[4],
		script.Entry{Cycle: 200, Access: script.AccessSelect, Addr: 0xc0c5})

	// accesses on the same cycle are in file order
	test.ExpectEquality(t, scr.Entries[5].Access, script.AccessRead)
	test.ExpectEquality(t, scr.Entries[5].Cycle, 200)
}

func TestReadScriptEmpty(t *testing.T) {
	scr, err := script.ReadScript(strings.NewReader("# nothing here\n\n   \n"))
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, len(scr.Entries), 0)
}

func TestReadScriptErrors(t *testing.T) {
	for _, s := range []string{
		"abc write $c400 $ff",
		"100 write",
		"100 write $c400",
		"100 write $c400 $ff $00",
		"100 read $c400 $ff",
		"100 poke $c400 $ff",
		"100 write $c400 $1ff",
		"100 write $10000 $ff",
		"200 write $c400 $ff\n100 write $c400 $ff",
	} {
		_, err := script.ReadScript(strings.NewReader(s))
		test.ExpectFailure(t, err, s)
	}
}

func TestEntryString(t *testing.T) {
	e := script.Entry{Cycle: 100, Access: script.AccessWrite, Addr: 0xc400, Data: 0x07}
	test.ExpectEquality(t, e.String(), "100 write $c400 $07")
	e = script.Entry{Cycle: 250, Access: script.AccessRead, Addr: 0xc404}
	test.ExpectEquality(t, e.String(), "250 read $c404")
}
