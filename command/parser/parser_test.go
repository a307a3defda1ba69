/*
 * PERQ1 - Console command parser test cases.
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
	"strings"
	"testing"

	config "github.com/hkestrel/perq1/config/configparser"
	"github.com/hkestrel/perq1/emu/core"
	"github.com/hkestrel/perq1/emu/shugart"
)

// testSystem builds a machine with a small blank drive attached.
func testSystem(t *testing.T) (*core.System, *shugart.Controller) {
	t.Helper()
	sys := core.Initialize()
	cfg := "SHUGART 0 CYL=10 HEADS=2 SECTORS=4\n"
	if err := config.LoadConfig(strings.NewReader(cfg)); err != nil {
		t.Fatal(err)
	}
	dev, err := core.GetDevice("SHUGART")
	if err != nil {
		t.Fatal(err)
	}
	return sys, dev.(*shugart.Controller)
}

func TestPrefixMatch(t *testing.T) {
	sys, _ := testSystem(t)
	done, err := ProcessCommand("q", sys)
	if err != nil || !done {
		t.Errorf("q did not quit: %v", err)
	}
	if _, err := ProcessCommand("s", sys); err == nil {
		t.Errorf("ambiguous prefix accepted")
	}
	if _, err := ProcessCommand("nosuch", sys); err == nil {
		t.Errorf("unknown command accepted")
	}
	if _, err := ProcessCommand("", sys); err != nil {
		t.Errorf("blank line errored: %v", err)
	}
	// An exact name wins over longer commands sharing the prefix.
	if _, err := ProcessCommand("status", sys); err != nil {
		t.Errorf("status failed: %v", err)
	}
}

func TestComplete(t *testing.T) {
	out := CompleteCmd("de")
	if len(out) != 3 {
		t.Errorf("expected detach, deposit, debug; got %v", out)
	}
	if len(CompleteCmd("zz")) != 0 {
		t.Errorf("completion invented a command")
	}
}

func TestWriteRegisterCommand(t *testing.T) {
	sys, hd := testSystem(t)
	// A full step pulse through the console moves the head.
	if _, err := ProcessCommand("write command 0x18", sys); err != nil {
		t.Fatal(err)
	}
	if _, err := ProcessCommand("write command 0x08", sys); err != nil {
		t.Fatal(err)
	}
	if hd.PhysicalCylinder() != 1 {
		t.Errorf("console step left head at %d", hd.PhysicalCylinder())
	}

	if _, err := ProcessCommand("write bogus 1", sys); err == nil {
		t.Errorf("unknown register accepted")
	}
	if _, err := ProcessCommand("write command notanumber", sys); err == nil {
		t.Errorf("bad value accepted")
	}
	if _, err := ProcessCommand("write command", sys); err == nil {
		t.Errorf("missing value accepted")
	}
}

func TestRunCompletesCommand(t *testing.T) {
	sys, hd := testSystem(t)
	if _, err := ProcessCommand("write command 1", sys); err != nil {
		t.Fatal(err)
	}
	if hd.ReadStatus()&7 != 7 {
		t.Fatalf("read command did not go busy")
	}
	if _, err := ProcessCommand("run 1", sys); err != nil {
		t.Fatal(err)
	}
	if hd.ReadStatus()&7 != 0 {
		t.Errorf("run did not complete the command")
	}
	if _, err := ProcessCommand("run", sys); err == nil {
		t.Errorf("run without a count accepted")
	}
}

func TestStepClock(t *testing.T) {
	sys, _ := testSystem(t)
	if _, err := ProcessCommand("step 500", sys); err != nil {
		t.Fatal(err)
	}
	if sys.Clock() != 500 {
		t.Errorf("clock at %d after step 500", sys.Clock())
	}
	if _, err := ProcessCommand("step -5", sys); err == nil {
		t.Errorf("negative step accepted")
	}
}

func TestDeposit(t *testing.T) {
	sys, _ := testSystem(t)
	if _, err := ProcessCommand("deposit 0x100 0x1234 0x5678", sys); err != nil {
		t.Fatal(err)
	}
	mem := core.Memory()
	if mem.Fetch(0x100) != 0x1234 || mem.Fetch(0x101) != 0x5678 {
		t.Errorf("deposit stored %04x %04x", mem.Fetch(0x100), mem.Fetch(0x101))
	}
	if _, err := ProcessCommand("deposit 0x100 junk", sys); err == nil {
		t.Errorf("bad word accepted")
	}
}

func TestDebugCommand(t *testing.T) {
	sys, _ := testSystem(t)
	if _, err := ProcessCommand("debug shugart cmd,seek", sys); err != nil {
		t.Fatal(err)
	}
	if _, err := ProcessCommand("debug shugart nosuch", sys); err == nil {
		t.Errorf("bad debug option accepted")
	}
	if _, err := ProcessCommand("debug nodev cmd", sys); err == nil {
		t.Errorf("missing device accepted")
	}
}
