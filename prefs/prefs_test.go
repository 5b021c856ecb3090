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

package prefs_test

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/xizhe-zhang/mockingboard/prefs"
	"github.com/xizhe-zhang/mockingboard/test"
)

func tmpPrefsFile(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "prefs_test")
}

func cmpPrefsFile(t *testing.T, fn string, expected string) {
	t.Helper()

	data, err := os.ReadFile(fn)
	if err != nil {
		t.Errorf("error reading prefs file: %v", err)
		return
	}

	expected = fmt.Sprintf("%s\n%s", prefs.WarningBoilerPlate, expected)

	if expected != string(data) {
		t.Errorf("expected data and data in prefs file do not match")
		fmt.Println("expected:")
		fmt.Println(expected)
		fmt.Println("\nin file:")
		fmt.Println(string(data))
	}
}

func TestBool(t *testing.T) {
	fn := tmpPrefsFile(t)

	dsk, err := prefs.NewDisk(fn)
	test.DemandSuccess(t, err)

	var v prefs.Bool
	var w prefs.Bool
	var x prefs.Bool
	err = dsk.Add("test", &v)
	test.ExpectSuccess(t, err)
	err = dsk.Add("testB", &w)
	test.ExpectSuccess(t, err)
	err = dsk.Add("testC", &x)
	test.ExpectSuccess(t, err)

	err = v.Set(true)
	test.ExpectSuccess(t, err)

	// a string other than "true" sets the value to false
	err = w.Set("foo")
	test.ExpectSuccess(t, err)
	err = x.Set("true")
	test.ExpectSuccess(t, err)

	err = dsk.Save()
	test.ExpectSuccess(t, err)

	cmpPrefsFile(t, fn, "test :: true\ntestB :: false\ntestC :: true\n")
}

func TestString(t *testing.T) {
	fn := tmpPrefsFile(t)

	dsk, err := prefs.NewDisk(fn)
	test.DemandSuccess(t, err)

	var v prefs.String
	err = dsk.Add("foo", &v)
	test.ExpectSuccess(t, err)

	err = v.Set("bar")
	test.ExpectSuccess(t, err)

	err = dsk.Save()
	test.ExpectSuccess(t, err)

	cmpPrefsFile(t, fn, "foo :: bar\n")
}

func TestInt(t *testing.T) {
	fn := tmpPrefsFile(t)

	dsk, err := prefs.NewDisk(fn)
	test.DemandSuccess(t, err)

	var v prefs.Int
	var w prefs.Int
	err = dsk.Add("number", &v)
	test.ExpectSuccess(t, err)
	err = dsk.Add("numberB", &w)
	test.ExpectSuccess(t, err)

	err = v.Set(10)
	test.ExpectSuccess(t, err)

	// test string conversion to int
	err = w.Set("99")
	test.ExpectSuccess(t, err)

	err = dsk.Save()
	test.ExpectSuccess(t, err)

	cmpPrefsFile(t, fn, "number :: 10\nnumberB :: 99\n")

	// while we have a prefs.Int instance set up we'll test some failure
	// conditions
	err = v.Set("---")
	test.ExpectFailure(t, err)

	err = v.Set(1.0)
	test.ExpectFailure(t, err)
}

func TestFloat(t *testing.T) {
	fn := tmpPrefsFile(t)

	dsk, err := prefs.NewDisk(fn)
	test.DemandSuccess(t, err)

	var v prefs.Float
	err = dsk.Add("volume", &v)
	test.ExpectSuccess(t, err)

	err = v.Set(0.5)
	test.ExpectSuccess(t, err)

	err = dsk.Save()
	test.ExpectSuccess(t, err)

	cmpPrefsFile(t, fn, "volume :: 0.500\n")

	// floats can be set from a string or an int
	err = v.Set("0.25")
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, v.Get().(float64), 0.25)

	err = v.Set(1)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, v.Get().(float64), 1.0)
}

func TestLoad(t *testing.T) {
	fn := tmpPrefsFile(t)

	dsk, err := prefs.NewDisk(fn)
	test.DemandSuccess(t, err)

	var v prefs.Int
	err = dsk.Add("number", &v)
	test.ExpectSuccess(t, err)

	err = v.Set(10)
	test.ExpectSuccess(t, err)

	err = dsk.Save()
	test.ExpectSuccess(t, err)

	// reset value and reload from disk
	err = v.Reset()
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, v.Get().(int), 0)

	err = dsk.Load(false)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, v.Get().(int), 10)
}

func TestNoPrefsFile(t *testing.T) {
	fn := tmpPrefsFile(t)

	dsk, err := prefs.NewDisk(fn)
	test.DemandSuccess(t, err)

	var v prefs.Bool
	err = dsk.Add("test", &v)
	test.ExpectSuccess(t, err)

	// loading when the file does not exist returns the NoPrefsFile
	// sentinel
	err = dsk.Load(true)
	test.ExpectFailure(t, err)
	test.ExpectErrorIs(t, err, prefs.NoPrefsFile)
}

// write bool and then a string from a different prefs.Disk instance. tests
// that the second writing doesn't clobber the results of the first write.
func TestMergedSave(t *testing.T) {
	fn := tmpPrefsFile(t)

	dsk, err := prefs.NewDisk(fn)
	test.DemandSuccess(t, err)

	var v prefs.Bool
	err = dsk.Add("test", &v)
	test.ExpectSuccess(t, err)

	err = v.Set(true)
	test.ExpectSuccess(t, err)

	err = dsk.Save()
	test.ExpectSuccess(t, err)

	// start a new disk instance using the same file
	dsk, err = prefs.NewDisk(fn)
	test.DemandSuccess(t, err)

	var s prefs.String
	err = dsk.Add("foo", &s)
	test.ExpectSuccess(t, err)

	err = s.Set("bar")
	test.ExpectSuccess(t, err)

	err = dsk.Save()
	test.ExpectSuccess(t, err)

	// the file should contain contents set by both disk instances
	cmpPrefsFile(t, fn, "foo :: bar\ntest :: true\n")
}

func TestDefunct(t *testing.T) {
	fn := tmpPrefsFile(t)

	// prepare a prefs file by hand containing a defunct entry
	content := fmt.Sprintf("%s\ncard.mode :: phasor\ncard.type :: phasor\n", prefs.WarningBoilerPlate)
	err := os.WriteFile(fn, []byte(content), 0o644)
	test.DemandSuccess(t, err)

	dsk, err := prefs.NewDisk(fn)
	test.DemandSuccess(t, err)

	var v prefs.String
	err = dsk.Add("card.mode", &v)
	test.ExpectSuccess(t, err)

	err = dsk.Load(false)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, v.String(), "phasor")

	// saving the file drops the defunct entry
	err = dsk.Save()
	test.ExpectSuccess(t, err)

	cmpPrefsFile(t, fn, "card.mode :: phasor\n")
}

func TestCommandLineOverride(t *testing.T) {
	fn := tmpPrefsFile(t)

	// prepare a prefs file by hand. the command line value should win over
	// the file during the initial load
	content := fmt.Sprintf("%s\ncard.mode :: mockingboard\n", prefs.WarningBoilerPlate)
	err := os.WriteFile(fn, []byte(content), 0o644)
	test.DemandSuccess(t, err)

	prefs.PushCommandLineStack("card.mode::phasor")
	defer prefs.PopCommandLineStack()

	dsk, err := prefs.NewDisk(fn)
	test.DemandSuccess(t, err)

	var v prefs.String
	err = dsk.Add("card.mode", &v)
	test.ExpectSuccess(t, err)

	// value from the command line has been applied by Add()
	test.ExpectEquality(t, v.String(), "phasor")

	// the initial load does not clobber the command line value
	err = dsk.Load(true)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, v.String(), "phasor")

	// an explicit load later on does
	err = dsk.Load(false)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, v.String(), "mockingboard")
}
