/*
   PERQ1 - System core test cases.

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

package core_test

import (
	"strings"
	"testing"

	config "github.com/hkestrel/perq1/config/configparser"
	"github.com/hkestrel/perq1/emu/core"
	"github.com/hkestrel/perq1/emu/shugart"
)

// dummyDev records lifecycle calls in a shared log.
type dummyDev struct {
	name string
	log  *[]string
}

func (d *dummyDev) Reset()                  { *d.log = append(*d.log, d.name+" reset") }
func (d *dummyDev) Shutdown()               { *d.log = append(*d.log, d.name+" shutdown") }
func (d *dummyDev) Debug(option string) error { return nil }

func TestAddGetDevice(t *testing.T) {
	core.Initialize()
	log := []string{}
	dev := &dummyDev{name: "disk0", log: &log}
	if err := core.AddDevice("disk0", dev); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	// Lookup is case insensitive.
	got, err := core.GetDevice("DISK0")
	if err != nil || got != dev {
		t.Errorf("lookup failed: %v", err)
	}
	if err := core.AddDevice("DISK0", dev); err == nil {
		t.Errorf("duplicate device accepted")
	}
	if _, err := core.GetDevice("nosuch"); err == nil {
		t.Errorf("missing device found")
	}
}

func TestStepClock(t *testing.T) {
	sys := core.Initialize()
	fired := false
	core.Scheduler().Schedule(nil, func(int, int64) { fired = true }, 5, 0)
	sys.Step(3)
	if fired {
		t.Errorf("event fired early")
	}
	sys.Step(3)
	if !fired {
		t.Errorf("event did not fire")
	}
	if sys.Clock() != 6 {
		t.Errorf("clock expected 6 got %d", sys.Clock())
	}
}

func TestResetShutdownOrder(t *testing.T) {
	sys := core.Initialize()
	log := []string{}
	core.AddDevice("first", &dummyDev{name: "first", log: &log})
	core.AddDevice("second", &dummyDev{name: "second", log: &log})

	sys.ResetDevices()
	sys.Shutdown()
	want := []string{"first reset", "second reset", "second shutdown", "first shutdown"}
	if len(log) != len(want) {
		t.Fatalf("lifecycle log %v", log)
	}
	for i := range want {
		if log[i] != want[i] {
			t.Errorf("lifecycle step %d expected %q got %q", i, want[i], log[i])
		}
	}
}

// A configuration file builds a working machine end to end.
func TestConfigBuildsSystem(t *testing.T) {
	sys := core.Initialize()
	cfg := `# test machine
MEMORY 64K
SHUGART 0 CYL=10 HEADS=2 SECTORS=4
`
	if err := config.LoadConfig(strings.NewReader(cfg)); err != nil {
		t.Fatalf("config failed: %v", err)
	}
	if core.Memory().Size() != 64*1024 {
		t.Errorf("memory size %d", core.Memory().Size())
	}
	dev, err := core.GetDevice("shugart")
	if err != nil {
		t.Fatalf("controller not registered: %v", err)
	}
	hd, ok := dev.(*shugart.Controller)
	if !ok {
		t.Fatalf("device is a %T", dev)
	}
	// A blank in-memory drive still comes up ready.
	if hd.ReadStatus()&0x80 == 0 {
		t.Errorf("unit not ready: status %02x", hd.ReadStatus())
	}
	// The drive spins on the system clock.
	if hd.ReadStatus()&0x08 == 0 {
		t.Errorf("index pulse not up at power on")
	}
	sys.Step(2 * shugart.IndexPulseNs)
	if hd.ReadStatus()&0x08 != 0 {
		t.Errorf("index pulse did not end")
	}
}

func TestConfigErrors(t *testing.T) {
	core.Initialize()
	if err := config.LoadConfig(strings.NewReader("SHUGART 1")); err == nil {
		t.Errorf("unit 1 accepted")
	}
	if err := config.LoadConfig(strings.NewReader("MEMORY lots")); err == nil {
		t.Errorf("bad memory size accepted")
	}
	if err := config.LoadConfig(strings.NewReader("SHUGART 0 BOGUS=1")); err == nil {
		t.Errorf("bad controller option accepted")
	}
}
