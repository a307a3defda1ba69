/* PERQ1 - Shugart controller trace sink.

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

package shugart

import (
	"errors"
	"strings"

	"github.com/hkestrel/perq1/util/debug"
)

// Tracer receives structured controller events. It sits outside the
// state machine's control flow; the default sink drops everything.
type Tracer interface {
	RegisterWrite(reg Register, value int)
	Command(cmd Command, word int)
	SeekStep(physCylinder int)
	Transfer(op string, cyl, head, sec int)
	Interrupt(raised bool)
}

type nopTracer struct{}

func (nopTracer) RegisterWrite(Register, int)    {}
func (nopTracer) Command(Command, int)           {}
func (nopTracer) SeekStep(int)                   {}
func (nopTracer) Transfer(string, int, int, int) {}
func (nopTracer) Interrupt(bool)                 {}

// Debug masks selecting which event classes the debug tracer prints.
const (
	debugReg = 1 << iota
	debugCmd
	debugSeek
	debugXfer
	debugIRQ
)

var debugOptions = map[string]int{
	"REGISTERS": debugReg,
	"CMD":       debugCmd,
	"SEEK":      debugSeek,
	"DATA":      debugXfer,
	"IRQ":       debugIRQ,
	"ALL":       debugReg | debugCmd | debugSeek | debugXfer | debugIRQ,
}

// debugTracer prints selected controller events to the debug log.
type debugTracer struct {
	mask int
}

func (t *debugTracer) RegisterWrite(reg Register, value int) {
	debug.Debugf("shugart", t.mask, debugReg, "%s <- %#06x", reg, value)
}

func (t *debugTracer) Command(cmd Command, word int) {
	debug.Debugf("shugart", t.mask, debugCmd, "command %s word %#04x", cmd, word)
}

func (t *debugTracer) SeekStep(physCylinder int) {
	debug.Debugf("shugart", t.mask, debugSeek, "head at cylinder %d", physCylinder)
}

func (t *debugTracer) Transfer(op string, cyl, head, sec int) {
	debug.Debugf("shugart", t.mask, debugXfer, "%s %d/%d/%d", op, cyl, head, sec)
}

func (t *debugTracer) Interrupt(raised bool) {
	if raised {
		debug.Debugf("shugart", t.mask, debugIRQ, "interrupt raised")
	} else {
		debug.Debugf("shugart", t.mask, debugIRQ, "interrupt cleared")
	}
}

// Debug enables a trace option by name, installing the debug tracer if
// none is active yet.
func (hd *Controller) Debug(option string) error {
	mask, ok := debugOptions[strings.ToUpper(option)]
	if !ok {
		return errors.New("shugart invalid debug option: " + option)
	}
	tracer, ok := hd.trace.(*debugTracer)
	if !ok {
		tracer = &debugTracer{}
		hd.trace = tracer
	}
	tracer.mask |= mask
	return nil
}
