/*
 * PERQ1 - Console command parser.
 *
 * Copyright 2025, Howard Kestrel
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in
 * all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

package parser

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/hkestrel/perq1/emu/core"
	"github.com/hkestrel/perq1/emu/device"
	"github.com/hkestrel/perq1/emu/shugart"
)

type command struct {
	name string
	args string
	help string
	fn   func(sys *core.System, args []string) (bool, error)
}

var commands []command

func init() {
	commands = []command{
		{"help", "", "list commands", cmdHelp},
		{"quit", "", "leave the emulator", cmdQuit},
		{"step", "[ns]", "advance the clock, default 1000ns", cmdStep},
		{"run", "<ms>", "advance the clock by milliseconds", cmdRun},
		{"clock", "", "show nanoseconds since power on", cmdClock},
		{"show", "<device>", "show device state", cmdShow},
		{"status", "", "read the disk controller status word", cmdStatus},
		{"write", "<reg> <value>", "write a disk controller register", cmdWrite},
		{"attach", "<device> <file>", "attach an image file", cmdAttach},
		{"detach", "<device>", "detach the image", cmdDetach},
		{"save", "<device> [file]", "save the image", cmdSave},
		{"examine", "<addr> [count]", "dump memory words", cmdExamine},
		{"deposit", "<addr> <word...>", "store memory words", cmdDeposit},
		{"debug", "<device> <option,...>", "enable debug tracing", cmdDebug},
		{"reset", "", "reset all devices", cmdReset},
	}
}

// ProcessCommand runs one console line. The bool result is true when the
// session should end.
func ProcessCommand(line string, sys *core.System) (bool, error) {
	args := strings.Fields(line)
	if len(args) == 0 {
		return false, nil
	}
	name := strings.ToLower(args[0])

	var match *command
	for i := range commands {
		if commands[i].name == name {
			match = &commands[i]
			break
		}
		if strings.HasPrefix(commands[i].name, name) {
			if match != nil {
				return false, errors.New("ambiguous command: " + name)
			}
			match = &commands[i]
		}
	}
	if match == nil {
		return false, errors.New("unknown command: " + name)
	}
	return match.fn(sys, args[1:])
}

// CompleteCmd returns command-name completions for the console.
func CompleteCmd(line string) []string {
	var out []string
	for _, cmd := range commands {
		if strings.HasPrefix(cmd.name, strings.ToLower(line)) {
			out = append(out, cmd.name)
		}
	}
	return out
}

func cmdHelp(_ *core.System, _ []string) (bool, error) {
	for _, cmd := range commands {
		fmt.Printf("%-10s %-22s %s\n", cmd.name, cmd.args, cmd.help)
	}
	return false, nil
}

func cmdQuit(_ *core.System, _ []string) (bool, error) {
	return true, nil
}

func cmdStep(sys *core.System, args []string) (bool, error) {
	ns := int64(1000)
	if len(args) > 0 {
		v, err := strconv.ParseInt(args[0], 0, 64)
		if err != nil || v <= 0 {
			return false, errors.New("step wants a positive nanosecond count")
		}
		ns = v
	}
	sys.Step(ns)
	return false, nil
}

func cmdRun(sys *core.System, args []string) (bool, error) {
	if len(args) < 1 {
		return false, errors.New("run wants a millisecond count")
	}
	ms, err := strconv.ParseInt(args[0], 0, 64)
	if err != nil || ms <= 0 {
		return false, errors.New("run wants a positive millisecond count")
	}
	sys.Step(ms * 1_000_000)
	return false, nil
}

func cmdClock(sys *core.System, _ []string) (bool, error) {
	fmt.Printf("%d ns\n", sys.Clock())
	return false, nil
}

func cmdShow(_ *core.System, args []string) (bool, error) {
	if len(args) < 1 {
		return false, errors.New("show wants a device name")
	}
	dev, err := core.GetDevice(args[0])
	if err != nil {
		return false, err
	}
	shower, ok := dev.(device.Shower)
	if !ok {
		return false, errors.New("device has no state to show")
	}
	fmt.Println(shower.Show())
	return false, nil
}

func controller() (*shugart.Controller, error) {
	dev, err := core.GetDevice("SHUGART")
	if err != nil {
		return nil, err
	}
	hd, ok := dev.(*shugart.Controller)
	if !ok {
		return nil, errors.New("SHUGART is not a disk controller")
	}
	return hd, nil
}

func cmdStatus(_ *core.System, _ []string) (bool, error) {
	hd, err := controller()
	if err != nil {
		return false, err
	}
	fmt.Printf("%#04x\n", hd.ReadStatus())
	return false, nil
}

// Console names for the controller registers.
var registers = map[string]shugart.Register{
	"command":    shugart.RegCommand,
	"head":       shugart.RegHead,
	"cylsec":     shugart.RegCylSec,
	"seriallow":  shugart.RegSerialLow,
	"serialhigh": shugart.RegSerialHigh,
	"block":      shugart.RegBlockNumber,
	"headerlow":  shugart.RegHeaderAddrLow,
	"headerhigh": shugart.RegHeaderAddrHigh,
	"datalow":    shugart.RegDataAddrLow,
	"datahigh":   shugart.RegDataAddrHigh,
}

func cmdWrite(_ *core.System, args []string) (bool, error) {
	if len(args) < 2 {
		return false, errors.New("write wants a register name and a value")
	}
	reg, ok := registers[strings.ToLower(args[0])]
	if !ok {
		var names []string
		for name := range registers {
			names = append(names, name)
		}
		return false, errors.New("unknown register, one of: " + strings.Join(names, " "))
	}
	value, err := strconv.ParseUint(args[1], 0, 16)
	if err != nil {
		return false, errors.New("bad register value: " + args[1])
	}
	hd, err := controller()
	if err != nil {
		return false, err
	}
	hd.WriteRegister(reg, int(value))
	return false, nil
}

func cmdAttach(_ *core.System, args []string) (bool, error) {
	if len(args) < 2 {
		return false, errors.New("attach wants a device name and a file")
	}
	dev, err := core.GetDevice(args[0])
	if err != nil {
		return false, err
	}
	att, ok := dev.(device.Attachable)
	if !ok {
		return false, errors.New("device does not take an image file")
	}
	return false, att.Attach(args[1])
}

func cmdDetach(_ *core.System, args []string) (bool, error) {
	if len(args) < 1 {
		return false, errors.New("detach wants a device name")
	}
	dev, err := core.GetDevice(args[0])
	if err != nil {
		return false, err
	}
	att, ok := dev.(device.Attachable)
	if !ok {
		return false, errors.New("device does not take an image file")
	}
	return false, att.Detach()
}

func cmdSave(_ *core.System, args []string) (bool, error) {
	if len(args) < 1 {
		return false, errors.New("save wants a device name")
	}
	dev, err := core.GetDevice(args[0])
	if err != nil {
		return false, err
	}
	att, ok := dev.(device.Attachable)
	if !ok {
		return false, errors.New("device does not take an image file")
	}
	path := ""
	if len(args) > 1 {
		path = args[1]
	}
	return false, att.Save(path)
}

func cmdExamine(_ *core.System, args []string) (bool, error) {
	if len(args) < 1 {
		return false, errors.New("examine wants an address")
	}
	addr, err := strconv.ParseUint(args[0], 0, 32)
	if err != nil {
		return false, errors.New("bad address: " + args[0])
	}
	count := 1
	if len(args) > 1 {
		count, err = strconv.Atoi(args[1])
		if err != nil || count <= 0 {
			return false, errors.New("bad count: " + args[1])
		}
	}
	mem := core.Memory()
	for i := 0; i < count; i++ {
		if i%8 == 0 {
			if i != 0 {
				fmt.Println()
			}
			fmt.Printf("%06x:", int(addr)+i)
		}
		fmt.Printf(" %04x", mem.Fetch(int(addr)+i))
	}
	fmt.Println()
	return false, nil
}

func cmdDeposit(_ *core.System, args []string) (bool, error) {
	if len(args) < 2 {
		return false, errors.New("deposit wants an address and words")
	}
	addr, err := strconv.ParseUint(args[0], 0, 32)
	if err != nil {
		return false, errors.New("bad address: " + args[0])
	}
	mem := core.Memory()
	for i, arg := range args[1:] {
		word, err := strconv.ParseUint(arg, 0, 16)
		if err != nil {
			return false, errors.New("bad word value: " + arg)
		}
		mem.Store(int(addr)+i, uint16(word))
	}
	return false, nil
}

func cmdDebug(_ *core.System, args []string) (bool, error) {
	if len(args) < 2 {
		return false, errors.New("debug wants a device name and options")
	}
	dev, err := core.GetDevice(args[0])
	if err != nil {
		return false, err
	}
	for _, option := range strings.Split(args[1], ",") {
		if err := dev.Debug(option); err != nil {
			return false, err
		}
	}
	return false, nil
}

func cmdReset(sys *core.System, _ []string) (bool, error) {
	sys.ResetDevices()
	return false, nil
}
