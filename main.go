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

package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/alecthomas/kong"

	"github.com/xizhe-zhang/mockingboard/environment"
	"github.com/xizhe-zhang/mockingboard/hardware"
	"github.com/xizhe-zhang/mockingboard/hardware/card"
	"github.com/xizhe-zhang/mockingboard/hardware/card/script"
	"github.com/xizhe-zhang/mockingboard/hardware/clock"
	"github.com/xizhe-zhang/mockingboard/hardware/clocks"
	"github.com/xizhe-zhang/mockingboard/logger"
	"github.com/xizhe-zhang/mockingboard/monitor"
	"github.com/xizhe-zhang/mockingboard/prefs"
	"github.com/xizhe-zhang/mockingboard/sdlaudio"
	"github.com/xizhe-zhang/mockingboard/statsview"
	"github.com/xizhe-zhang/mockingboard/version"
	"github.com/xizhe-zhang/mockingboard/wavwriter"
)

// number of cycles to run between drain calls when performing a script.
// short enough that the card's pending sample queue never fills
const drainChunkCycles = 10000

// depth of SDL audio queue, in frames, that the play command tries to
// keep ahead of the device
const pacingFrames = card.SampleRate / 4

// raised by a drain function when the user has interrupted the command
var errInterrupt = errors.New("interrupted")

// arguments common to every command that creates a card emulation.
type systemArgs struct {
	Card  string `help:"card type: mockingboard, phasor or echoplus"`
	CMOS  bool   `help:"host CPU is a 65C02 rather than a 6502"`
	Log   bool   `help:"echo debugging log to stderr"`
	Prefs string `help:"bespoke preference values, overriding the saved preferences: \"key::value; key::value\""`
	Stats bool   `help:"launch the runtime statistics server"`
}

// newSystem creates the emulation system common to the play, wav and
// monitor commands.
func (args *systemArgs) newSystem() (*hardware.System, error) {
	if args.Log {
		logger.SetEcho(logger.NewColorizer(os.Stderr), false)
	}

	// bespoke preferences must be on the stack before the preferences
	// instance is created
	prefs.PushCommandLineStack(args.Prefs)

	clk := &clock.Clock{}

	env, err := environment.NewEnvironment(clk, nil)
	if err != nil {
		return nil, err
	}

	// the --card argument takes precedence over both the saved and the
	// bespoke card.mode preference. it must be applied before the system
	// is created
	if args.Card != "" {
		if err := env.Prefs.Mode.Set(args.Card); err != nil {
			return nil, err
		}
	}

	sys, err := hardware.NewSystem(env, clk)
	if err != nil {
		return nil, err
	}
	sys.CPU.SetModel(args.CMOS)

	if remaining := prefs.PopCommandLineStack(); remaining != "" {
		logger.Logf(env, "main", "%s unused on command line", remaining)
	}

	if args.Stats {
		statsview.Launch(os.Stderr)
	}

	return sys, nil
}

// runTo advances the emulation to the target cycle in short chunks,
// calling drain between chunks.
func runTo(sys *hardware.System, target uint64, drain func() error) error {
	for sys.Clock.Cycles() < target {
		step := target - sys.Clock.Cycles()
		if step > drainChunkCycles {
			step = drainChunkCycles
		}
		sys.RunForCycles(step)
		if err := drain(); err != nil {
			return err
		}
	}
	return nil
}

// runScript performs every access in the script at its stamped cycle,
// draining mixed audio at regular intervals along the way. unlike
// System.RunScript this is safe for scripts of any length.
func runScript(sys *hardware.System, scr *script.Script, drain func() error) error {
	for _, e := range scr.Entries {
		if err := runTo(sys, e.Cycle, drain); err != nil {
			return err
		}
		switch e.Access {
		case script.AccessWrite:
			sys.Poke(e.Addr, e.Data)
		case script.AccessRead:
			sys.Peek(e.Addr)
		case script.AccessSelect:
			sys.Select(e.Addr)
		}
	}
	return nil
}

type playCmd struct {
	systemArgs
	Duration time.Duration `help:"how long to keep playing after the script ends" default:"5s"`
	Script   string        `arg name:"script" help:"register script to play" type:"path"`
}

func (c *playCmd) Run() error {
	scr, err := script.NewScript(c.Script)
	if err != nil {
		return err
	}

	sys, err := c.newSystem()
	if err != nil {
		return err
	}

	aud, err := sdlaudio.NewAudio()
	if err != nil {
		return err
	}
	defer aud.EndMixing()

	intChan := make(chan os.Signal, 1)
	signal.Notify(intChan, os.Interrupt)
	defer signal.Stop(intChan)

	buf := make([]int16, 4096)

	drain := func() error {
		select {
		case <-intChan:
			return errInterrupt
		default:
		}

		n := sys.Card.Mix(buf)
		if err := aud.Queue(buf[:n]); err != nil {
			return err
		}

		// sleep while the device queue is comfortably ahead. this is
		// what paces the emulation against real time
		for aud.Queued() > pacingFrames {
			time.Sleep(5 * time.Millisecond)
		}

		return nil
	}

	err = runScript(sys, scr, drain)
	if err == nil {
		end := sys.Clock.Cycles() + uint64(c.Duration.Seconds()*clocks.CPU)
		err = runTo(sys, end, drain)
	}
	if err != nil {
		if errors.Is(err, errInterrupt) {
			return nil
		}
		return err
	}

	// let the device queue empty before closing it
	for aud.Queued() > 0 {
		time.Sleep(5 * time.Millisecond)
	}

	return nil
}

type wavCmd struct {
	systemArgs
	Output   string        `help:"WAV file to write. defaults to the script name with a .wav extension" type:"path"`
	Duration time.Duration `help:"how long to keep rendering after the script ends" default:"5s"`
	Script   string        `arg name:"script" help:"register script to render" type:"path"`
}

func (c *wavCmd) Run() error {
	scr, err := script.NewScript(c.Script)
	if err != nil {
		return err
	}

	sys, err := c.newSystem()
	if err != nil {
		return err
	}

	output := c.Output
	if output == "" {
		output = strings.TrimSuffix(c.Script, filepath.Ext(c.Script)) + ".wav"
	}

	wr, err := wavwriter.NewWavWriter(sys.Env, output)
	if err != nil {
		return err
	}

	buf := make([]int16, 4096)

	drain := func() error {
		n := sys.Card.Mix(buf)
		wr.Queue(buf[:n])
		return nil
	}

	if err := runScript(sys, scr, drain); err != nil {
		return err
	}

	end := sys.Clock.Cycles() + uint64(c.Duration.Seconds()*clocks.CPU)
	if err := runTo(sys, end, drain); err != nil {
		return err
	}

	return wr.EndMixing()
}

type monitorCmd struct {
	systemArgs
}

func (c *monitorCmd) Run() error {
	sys, err := c.newSystem()
	if err != nil {
		return err
	}

	mon, err := monitor.NewMonitor(sys.Env, sys)
	if err != nil {
		return err
	}

	return mon.Run()
}

type versionCmd struct {
	Revision bool `help:"display vcs revision"`
}

func (c *versionCmd) Run() error {
	ver, rev, release := version.Version()
	fmt.Println(version.ApplicationName, ver)
	if c.Revision || !release {
		fmt.Println(rev)
	}
	return nil
}

var root struct {
	Play    playCmd    `cmd help:"program the card from a register script and play the result"`
	Wav     wavCmd     `cmd help:"program the card from a register script and render the result to a WAV file"`
	Monitor monitorCmd `cmd help:"interactive monitor for poking the card directly"`
	Version versionCmd `cmd help:"display version information"`
}

func main() {
	cli := kong.Parse(&root,
		kong.Name(strings.ToLower(version.ApplicationName)),
		kong.Description("Emulation of the Mockingboard family of sound and speech cards."),
	)
	err := cli.Run()
	cli.FatalIfErrorf(err)
}
