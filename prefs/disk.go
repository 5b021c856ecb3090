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

package prefs

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/xizhe-zhang/mockingboard/logger"
)

// DefaultPrefsFile is the default filename of the main preferences file.
const DefaultPrefsFile = "mockingboard.prefs"

// WarningBoilerPlate is the first line a prefs file must contain before the
// file is considered valid.
const WarningBoilerPlate = "*** do not edit this file by hand ***"

// the string that separates the key from the value on a single prefs line.
const keySep = " :: "

// NoPrefsFile is returned by Load() when the prefs file does not exist. It
// can be checked for with errors.Is() and is not necessarily a fatal error.
var NoPrefsFile = errors.New("no prefs file")

// Disk represents preference values as stored on disk. Only the entries that
// have been added to the Disk instance are ever updated by Load() or written
// by Save(). Entries on disk belonging to another Disk instance are preserved.
type Disk struct {
	path    string
	entries map[string]pref

	// entries that have been set from the command line. these are not
	// overwritten by the initial Load()
	overridden map[string]bool
}

// NewDisk is the preferred method of initialisation for the Disk type.
func NewDisk(path string) (*Disk, error) {
	return &Disk{
		path:       path,
		entries:    make(map[string]pref),
		overridden: make(map[string]bool),
	}, nil
}

func (dsk *Disk) String() string {
	s := strings.Builder{}
	keys := make([]string, 0, len(dsk.entries))
	for k := range dsk.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		s.WriteString(fmt.Sprintf("%s%s%s\n", k, keySep, dsk.entries[k].String()))
	}
	return s.String()
}

// Add preference entry to the list of entries to be saved/loaded to/from
// disk. The key must not contain the key separator string.
//
// If a value for the key has been supplied on the command line then the entry
// is set to that value immediately.
func (dsk *Disk) Add(key string, p pref) error {
	if strings.Contains(key, keySep) {
		return fmt.Errorf("prefs: add: key cannot contain %q", strings.TrimSpace(keySep))
	}

	dsk.entries[key] = p

	if v, ok := GetCommandLinePref(key); ok {
		if err := p.Set(v); err != nil {
			return fmt.Errorf("prefs: add: %w", err)
		}
		dsk.overridden[key] = true
	}

	return nil
}

// HasEntry returns true if the prefs file on disk contains the key. The
// key does not need to have been added to the Disk instance.
func (dsk *Disk) HasEntry(key string) (bool, error) {
	entries, err := dsk.readFile()
	if err != nil {
		if errors.Is(err, NoPrefsFile) {
			return false, nil
		}
		return false, err
	}
	_, ok := entries[key]
	return ok, nil
}

// Load entries from disk. Entries in the file that have not been added to the
// Disk instance are ignored.
//
// The init flag should be true when the load is part of program start up.
// During the initial load, entries that have been set from the command line
// are not overwritten by the values on disk.
func (dsk *Disk) Load(init bool) error {
	entries, err := dsk.readFile()
	if err != nil {
		return err
	}

	for k, v := range entries {
		if init && dsk.overridden[k] {
			continue
		}
		if p, ok := dsk.entries[k]; ok {
			if err := p.Set(v); err != nil {
				return fmt.Errorf("prefs: load: %w", err)
			}
		}
	}

	return nil
}

// Save entries to disk.
//
// Saving is a merge operation. Entries on disk that have not been added to
// the Disk instance are preserved, except for keys listed as defunct.
func (dsk *Disk) Save() error {
	// load the existing file so that entries we don't know about survive the
	// save
	entries, err := dsk.readFile()
	if err != nil && !errors.Is(err, NoPrefsFile) {
		return err
	}
	if entries == nil {
		entries = make(map[string]string)
	}

	for k, p := range dsk.entries {
		entries[k] = p.String()
	}

	f, err := os.Create(dsk.path)
	if err != nil {
		return fmt.Errorf("prefs: save: %w", err)
	}
	defer f.Close()

	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	s := strings.Builder{}
	s.WriteString(WarningBoilerPlate)
	s.WriteString("\n")
	for _, k := range keys {
		s.WriteString(fmt.Sprintf("%s%s%s\n", k, keySep, entries[k]))
	}

	if _, err := f.WriteString(s.String()); err != nil {
		return fmt.Errorf("prefs: save: %w", err)
	}

	return nil
}

// Reset all entries to their default values. Reset() is called on every pref
// value added to the Disk instance.
func (dsk *Disk) Reset() error {
	for _, p := range dsk.entries {
		if err := p.Reset(); err != nil {
			return fmt.Errorf("prefs: reset: %w", err)
		}
	}
	return nil
}

// read the prefs file and return the valid entries as a map of strings. keys
// listed in the defunct list are dropped with a log entry.
func (dsk *Disk) readFile() (map[string]string, error) {
	f, err := os.Open(dsk.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("prefs: %w: %s", NoPrefsFile, dsk.path)
		}
		return nil, fmt.Errorf("prefs: %w", err)
	}
	defer f.Close()

	entries := make(map[string]string)

	sc := bufio.NewScanner(f)

	// check validity of file before proceeding
	if !sc.Scan() || sc.Text() != WarningBoilerPlate {
		return nil, fmt.Errorf("prefs: not a valid prefs file: %s", dsk.path)
	}

	for sc.Scan() {
		if len(strings.TrimSpace(sc.Text())) == 0 {
			continue
		}

		sp := strings.SplitN(sc.Text(), keySep, 2)
		if len(sp) != 2 {
			return nil, fmt.Errorf("prefs: malformed entry in prefs file: %s", dsk.path)
		}

		if isDefunct(sp[0]) {
			logger.Logf(logger.Allow, "prefs", "defunct entry in prefs file: %s", sp[0])
			continue
		}

		entries[sp[0]] = sp[1]
	}

	return entries, nil
}
