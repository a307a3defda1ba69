/*
   PERQ1 - System core.

   Copyright 2025, Howard Kestrel

   Permission is hereby granted, free of charge, to any person obtaining a
   copy of this software and associated documentation files (the "Software"),
   to deal in the Software without restriction, including without limitation
   the rights to use, copy, modify, merge, publish, distribute, sublicense,
   and/or sell copies of the Software, and to permit persons to whom the
   Software is furnished to do so, subject to the following conditions:

   The above copyright notice and this permission notice shall be included in
   all copies or substantial portions of the Software.

   THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
   IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
   FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT.  IN NO EVENT SHALL
   HOWARD KESTREL BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER LIABILITY, WHETHER
   IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM, OUT OF OR IN
   CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE SOFTWARE.

*/

package core

import (
	"errors"
	"strconv"
	"strings"

	config "github.com/hkestrel/perq1/config/configparser"
	"github.com/hkestrel/perq1/emu/device"
	"github.com/hkestrel/perq1/emu/event"
	"github.com/hkestrel/perq1/emu/irq"
	"github.com/hkestrel/perq1/emu/memory"
)

// System owns the shared machine state: the event clock, main memory, the
// interrupt lines and the attached devices. Everything runs on one logical
// timeline; register pokes happen synchronously and deferred work arrives
// through the scheduler.
type System struct {
	sched   *event.Scheduler
	mem     *memory.Memory
	intr    *irq.Controller
	devices map[string]device.Device
	order   []string // Device names in attach order
	clock   int64    // Nanoseconds advanced since power on
}

// The system being configured and run. Device create functions registered
// with the config parser reach it through the package accessors below.
var sys *System

// Initialize builds a fresh system with default memory and no devices.
func Initialize() *System {
	sys = &System{
		sched:   event.New(),
		mem:     memory.New(memory.DefaultSizeWords),
		intr:    irq.New(),
		devices: map[string]device.Device{},
	}
	return sys
}

// Scheduler returns the system event scheduler.
func Scheduler() *event.Scheduler {
	return sys.sched
}

// Memory returns system main memory.
func Memory() *memory.Memory {
	return sys.mem
}

// Interrupts returns the CPU interrupt lines.
func Interrupts() *irq.Controller {
	return sys.intr
}

// AddDevice registers a device under a console name.
func AddDevice(name string, dev device.Device) error {
	name = strings.ToUpper(name)
	if _, ok := sys.devices[name]; ok {
		return errors.New("duplicate device: " + name)
	}
	sys.devices[name] = dev
	sys.order = append(sys.order, name)
	return nil
}

// GetDevice looks a device up by console name.
func GetDevice(name string) (device.Device, error) {
	dev, ok := sys.devices[strings.ToUpper(name)]
	if !ok {
		return nil, errors.New("no such device: " + name)
	}
	return dev, nil
}

// Step advances the event clock by ns nanoseconds, delivering every
// scheduled callback that comes due.
func (sys *System) Step(ns int64) {
	sys.sched.Advance(ns)
	sys.clock += ns
}

// Clock returns total nanoseconds advanced since power on.
func (sys *System) Clock() int64 {
	return sys.clock
}

// ResetDevices puts every device back to power-on state.
func (sys *System) ResetDevices() {
	for _, name := range sys.order {
		sys.devices[name].Reset()
	}
}

// Shutdown stops every device, in reverse attach order.
func (sys *System) Shutdown() {
	for i := len(sys.order) - 1; i >= 0; i-- {
		sys.devices[sys.order[i]].Shutdown()
	}
}

// The MEMORY statement resizes main memory: MEMORY 256K or MEMORY 1M,
// counted in words.
func init() {
	config.RegisterOption("MEMORY", setMemorySize)
}

func setMemorySize(_ uint16, value string, _ []config.Option) error {
	value = strings.ToUpper(value)
	scale := 1
	switch {
	case strings.HasSuffix(value, "K"):
		scale = 1024
		value = strings.TrimSuffix(value, "K")
	case strings.HasSuffix(value, "M"):
		scale = 1024 * 1024
		value = strings.TrimSuffix(value, "M")
	}
	words, err := strconv.Atoi(value)
	if err != nil || words <= 0 {
		return errors.New("memory size must be a positive number: " + value)
	}
	sys.mem = memory.New(words * scale)
	return nil
}
