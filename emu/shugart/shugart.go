/* PERQ1 - Shugart hard disk controller.

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

   Register-level model of the PERQ 1 Shugart interface controller. The
   microcode talks to it through ten write registers and one status read;
   everything slow (command completion, index pulses) is delivered later
   through the event scheduler so firmware timing loops behave as they do
   against real hardware.

   Head motion never comes from the Seek command code. The drive steps one
   cylinder per step pulse: the microcode raises bit 4 of the command word,
   then lowers it, and the controller moves the head and interrupts once
   per full pulse. Bit 3 picks the direction. Those bits ride along on
   every command write, whatever the low three bits say.
*/

package shugart

import (
	"fmt"
	"log/slog"

	"github.com/hkestrel/perq1/emu/disk"
	"github.com/hkestrel/perq1/emu/event"
	"github.com/hkestrel/perq1/emu/irq"
)

// Memory is the word addressed store block transfers run against.
type Memory interface {
	Fetch(addr int) uint16
	Store(addr int, word uint16)
}

// InterruptLine raises and clears CPU interrupt lines.
type InterruptLine interface {
	Raise(i irq.Interrupt)
	Clear(i irq.Interrupt)
}

// Scheduler queues deferred controller events.
type Scheduler interface {
	Schedule(owner any, cb event.Callback, delayNs int64, arg int)
}

// Command is the low three bits of a command word.
type Command int

const (
	CmdIdle Command = iota
	CmdReadChk
	CmdReadDiag
	CmdWriteChk
	CmdWriteFirst
	CmdFormat
	CmdSeek // Wired but never dispatched; stepping happens via pulse bits
	CmdReset
)

var commandNames = [...]string{
	"Idle", "ReadChk", "ReadDiag", "WriteChk",
	"WriteFirst", "Format", "Seek", "Reset",
}

func (c Command) String() string {
	if c < 0 || int(c) >= len(commandNames) {
		return fmt.Sprintf("Command(%d)", int(c))
	}
	return commandNames[c]
}

// Command word bit assignments. The step and direction bits share the
// word with the command field and are sampled on every write.
const (
	maskCommand   = 0x07
	maskDirection = 0x08 // 0 steps toward cylinder 0, 1 away
	maskStep      = 0x10
)

// Register selects one of the controller's write registers.
type Register int

const (
	RegCommand Register = iota
	RegHead
	RegCylSec
	RegSerialLow
	RegSerialHigh
	RegBlockNumber
	RegHeaderAddrLow
	RegHeaderAddrHigh
	RegDataAddrLow
	RegDataAddrHigh
)

var registerNames = [...]string{
	"Command", "Head", "CylSec", "SerialLow", "SerialHigh", "BlockNumber",
	"HeaderAddrLow", "HeaderAddrHigh", "DataAddrLow", "DataAddrHigh",
}

func (r Register) String() string {
	if r < 0 || int(r) >= len(registerNames) {
		return fmt.Sprintf("Register(%d)", int(r))
	}
	return registerNames[r]
}

// Controller status field, bits 0-2 of the status word.
type ctlStatus int

const (
	statusDone ctlStatus = 0
	statusBusy ctlStatus = 7
)

// Seek state machine. seekDone is transient: the single-cylinder move
// happens the moment the step bit drops, then the machine rearms.
type seekState int

const (
	waitForStepSet seekState = iota
	waitForStepRelease
	seekDone
)

// Timing, in nanoseconds. The platter turns once every 20ms (3000 RPM)
// with a 1.1us index pulse; every command takes 1ms before Done.
const (
	DiscRotationNs = 20_000_000
	IndexPulseNs   = 1_100
	BusyDurationNs = 1_000_000
)

// Deferred event kinds, dispatched by (*Controller).event.
const (
	evBusyDone = iota
	evIndexStart
	evIndexEnd
)

// Controller holds all register and state machine state for one
// controller-drive pair. It is not safe for concurrent use; register
// writes and scheduler callbacks must share one timeline.
type Controller struct {
	drive *disk.Drive // Attached drive image, may be nil
	sched Scheduler
	intr  InterruptLine
	mem   Memory
	trace Tracer

	// Logical block address for transfers. Decoupled from the physical
	// head position on purpose: real hardware addresses sectors by the
	// registers, not by where the stepper last left the head.
	cylinder int
	head     int
	sector   int

	// Actual head position. Only this is clipped to the drive's
	// cylinder range, and only this drives trackZero.
	physCylinder int

	// Pass-through fields, stored but never interpreted.
	serialLow   int
	serialHigh  int
	blockNumber int

	// DMA addresses, already unfrobbed/uninverted at write time.
	headerAddrLow  int
	headerAddrHigh int
	dataAddrLow    int
	dataAddrHigh   int

	status ctlStatus

	// Single-bit status flags. Each must stay 0 or 1 or the composed
	// status word is corrupted.
	index        int
	trackZero    int
	driveFault   int
	seekComplete int
	unitReady    int

	seekState   seekState
	lastCommand int // Raw word of the most recent command write
}

// New builds a controller over an optional drive image and starts the
// index pulse cycle, which runs for the controller's whole life. The
// drive spins whether or not anyone is talking to it.
func New(drive *disk.Drive, sched Scheduler, intr InterruptLine, mem Memory) *Controller {
	hd := &Controller{
		drive: drive,
		sched: sched,
		intr:  intr,
		mem:   mem,
		trace: nopTracer{},
	}
	hd.powerOn()
	hd.event(evIndexStart, 0)
	return hd
}

// SetTracer installs an observability sink. A nil tracer restores the
// default no-op sink.
func (hd *Controller) SetTracer(t Tracer) {
	if t == nil {
		t = nopTracer{}
	}
	hd.trace = t
}

func (hd *Controller) powerOn() {
	hd.cylinder = 0
	hd.head = 0
	hd.sector = 0
	hd.serialLow = 0
	hd.serialHigh = 0
	hd.blockNumber = 0
	hd.headerAddrLow = 0
	hd.headerAddrHigh = 0
	hd.dataAddrLow = 0
	hd.dataAddrHigh = 0
	hd.lastCommand = 0
	hd.initFlags()
}

// initFlags restores flags and head position to power-on defaults. The
// index flag is left alone: the platter never stops turning.
func (hd *Controller) initFlags() {
	hd.physCylinder = 0
	hd.trackZero = 1
	hd.driveFault = 0
	hd.seekComplete = 1
	hd.unitReady = 0
	if hd.drive != nil {
		hd.unitReady = 1
	}
	hd.status = statusDone
	hd.seekState = waitForStepSet
}

// ReadStatus composes the status word. Reading it has no side effects:
// in particular it does not clear a pending interrupt, a hardware quirk
// the firmware polls around.
func (hd *Controller) ReadStatus() int {
	return int(hd.status)&7 |
		hd.index<<3 |
		hd.trackZero<<4 |
		hd.driveFault<<5 |
		hd.seekComplete<<6 |
		hd.unitReady<<7
}

// WriteRegister decodes a register selector and performs the write.
func (hd *Controller) WriteRegister(reg Register, value int) {
	switch reg {
	case RegCommand:
		hd.WriteCommand(value)
	case RegHead:
		hd.WriteHead(value)
	case RegCylSec:
		hd.WriteCylSec(value)
	case RegSerialLow:
		hd.WriteSerialLow(value)
	case RegSerialHigh:
		hd.WriteSerialHigh(value)
	case RegBlockNumber:
		hd.WriteBlockNumber(value)
	case RegHeaderAddrLow:
		hd.WriteHeaderAddrLow(value)
	case RegHeaderAddrHigh:
		hd.WriteHeaderAddrHigh(value)
	case RegDataAddrLow:
		hd.WriteDataAddrLow(value)
	case RegDataAddrHigh:
		hd.WriteDataAddrHigh(value)
	default:
		slog.Warn("shugart: write to unknown register",
			"register", int(reg), "value", value)
	}
}

// WriteCommand decodes and runs a command, then clocks the seek state
// machine with the same word. Step pulses arrive on every command write,
// whatever the command field holds.
func (hd *Controller) WriteCommand(value int) {
	value &= 0xffff
	cmd := Command(value & maskCommand)
	hd.trace.RegisterWrite(RegCommand, value)
	hd.trace.Command(cmd, value)

	switch cmd {
	case CmdIdle:
		hd.clearInterrupt()
	case CmdReset:
		hd.resetCommand()
	case CmdReadChk, CmdReadDiag:
		hd.readBlock()
	case CmdWriteFirst:
		hd.writeBlock(true)
	case CmdWriteChk:
		hd.writeBlock(false)
	case CmdFormat:
		hd.formatBlock()
	default:
		// Seek lands here. The controller never dispatches it; all
		// head motion comes through the pulse bits.
		slog.Warn("shugart: unhandled command", "command", cmd.String(),
			"word", fmt.Sprintf("%#04x", value))
	}

	hd.lastCommand = value
	hd.clockSeek(value)
}

// WriteHead sets the head select independently of the packed register.
func (hd *Controller) WriteHead(value int) {
	hd.trace.RegisterWrite(RegHead, value)
	hd.head = value & 0x07
}

// WriteCylSec loads the packed target address: sector in bits 0-4, head
// in bits 5-7, cylinder in bits 8-15.
func (hd *Controller) WriteCylSec(value int) {
	hd.trace.RegisterWrite(RegCylSec, value)
	hd.sector = value & 0x1f
	hd.head = (value >> 5) & 0x07
	hd.cylinder = (value >> 8) & 0xff
}

// WriteSerialLow stores the low serial number word. Opaque to the
// controller.
func (hd *Controller) WriteSerialLow(value int) {
	hd.trace.RegisterWrite(RegSerialLow, value)
	hd.serialLow = value & 0xffff
}

// WriteSerialHigh stores the high serial number word.
func (hd *Controller) WriteSerialHigh(value int) {
	hd.trace.RegisterWrite(RegSerialHigh, value)
	hd.serialHigh = value & 0xffff
}

// WriteBlockNumber stores the logical block number. Opaque to the
// controller.
func (hd *Controller) WriteBlockNumber(value int) {
	hd.trace.RegisterWrite(RegBlockNumber, value)
	hd.blockNumber = value & 0xffff
}

// WriteHeaderAddrLow loads the low word of the header DMA address. The
// hardware presents it frobbed; unfrob restores it.
func (hd *Controller) WriteHeaderAddrLow(value int) {
	hd.trace.RegisterWrite(RegHeaderAddrLow, value)
	hd.headerAddrLow = unfrob(value & 0xffff)
}

// WriteHeaderAddrHigh loads the high word of the header DMA address,
// presented inverted.
func (hd *Controller) WriteHeaderAddrHigh(value int) {
	hd.trace.RegisterWrite(RegHeaderAddrHigh, value)
	hd.headerAddrHigh = ^value & 0xffff
}

// WriteDataAddrLow loads the low word of the data buffer DMA address,
// frobbed like the header address.
func (hd *Controller) WriteDataAddrLow(value int) {
	hd.trace.RegisterWrite(RegDataAddrLow, value)
	hd.dataAddrLow = unfrob(value & 0xffff)
}

// WriteDataAddrHigh loads the high word of the data buffer DMA address,
// presented inverted.
func (hd *Controller) WriteDataAddrHigh(value int) {
	hd.trace.RegisterWrite(RegDataAddrHigh, value)
	hd.dataAddrHigh = ^value & 0xffff
}

// unfrob undoes the address scramble the hardware applies to the low DMA
// address words: the low ten bits arrive inverted. Applying it twice
// gives back the original word.
func unfrob(value int) int {
	return (value &^ 0x3ff) | (^value & 0x3ff)
}

func (hd *Controller) headerAddr() int {
	return hd.headerAddrLow | hd.headerAddrHigh<<16
}

func (hd *Controller) dataAddr() int {
	return hd.dataAddrLow | hd.dataAddrHigh<<16
}

// resetCommand clears fault and interrupt state, rehomes the head and
// runs a normal busy/done cycle. It does not cancel an in-flight
// completion; a stale one firing later just reasserts Done, which is
// what the real controller does too.
func (hd *Controller) resetCommand() {
	hd.clearInterrupt()
	hd.initFlags()
	hd.setBusy()
}

// Seek moves the head by a signed number of cylinders in one step,
// stopping at the physical head stops. Used for programmatic seeks; the
// pulse protocol calls it one cylinder at a time.
func (hd *Controller) Seek(cylinders int) {
	limit := 0
	if hd.drive != nil {
		limit = hd.drive.CylinderCount() - 1
	}
	hd.physCylinder += cylinders
	if hd.physCylinder < 0 {
		hd.physCylinder = 0
	}
	if hd.physCylinder > limit {
		hd.physCylinder = limit
	}
	if hd.physCylinder == 0 {
		hd.trackZero = 1
	} else {
		hd.trackZero = 0
	}
	hd.trace.SeekStep(hd.physCylinder)
}

// PhysicalCylinder returns the settled head position.
func (hd *Controller) PhysicalCylinder() int {
	return hd.physCylinder
}

// clockSeek advances the step-pulse handshake with the latest command
// word. One full set/release pulse moves the head one cylinder and
// raises one interrupt.
func (hd *Controller) clockSeek(cmd int) {
	switch hd.seekState {
	case waitForStepSet:
		if cmd&maskStep != 0 {
			hd.seekComplete = 0
			hd.seekState = waitForStepRelease
		}
	case waitForStepRelease:
		if cmd&maskStep == 0 {
			hd.seekState = seekDone
			hd.completeStep(cmd)
		}
	}
}

// completeStep performs the single-cylinder move at the end of a pulse
// and rearms the handshake.
func (hd *Controller) completeStep(cmd int) {
	if cmd&maskDirection != 0 {
		hd.Seek(1)
	} else {
		hd.Seek(-1)
	}
	hd.seekComplete = 1
	hd.raiseInterrupt()
	hd.seekState = waitForStepSet
}

// readBlock fetches the addressed sector and copies its data and header
// into memory at the DMA addresses, one little-endian word per store.
func (hd *Controller) readBlock() {
	hd.trace.Transfer("read", hd.cylinder, hd.head, hd.sector)
	if hd.drive == nil {
		hd.setBusy()
		return
	}
	sec := hd.drive.GetSector(hd.cylinder, hd.head, hd.sector)
	storeWords(hd.mem, hd.dataAddr(), sec.Data)
	storeWords(hd.mem, hd.headerAddr(), sec.Header)
	hd.setBusy()
}

// writeBlock commits a sector built from memory. With writeHeader the
// header also comes from memory; without it the header already on disk
// at that address is preserved.
func (hd *Controller) writeBlock(writeHeader bool) {
	hd.trace.Transfer("write", hd.cylinder, hd.head, hd.sector)
	if hd.drive == nil {
		hd.setBusy()
		return
	}
	sec := disk.NewSector(hd.drive.Geometry())
	fetchWords(hd.mem, hd.dataAddr(), sec.Data)
	if writeHeader {
		fetchWords(hd.mem, hd.headerAddr(), sec.Header)
	} else {
		old := hd.drive.GetSector(hd.cylinder, hd.head, hd.sector)
		copy(sec.Header, old.Header)
	}
	hd.drive.SetSector(sec, hd.cylinder, hd.head, hd.sector)
	hd.setBusy()
}

// formatBlock writes data and header unconditionally, both from memory.
func (hd *Controller) formatBlock() {
	hd.trace.Transfer("format", hd.cylinder, hd.head, hd.sector)
	if hd.drive == nil {
		hd.setBusy()
		return
	}
	sec := disk.NewSector(hd.drive.Geometry())
	fetchWords(hd.mem, hd.dataAddr(), sec.Data)
	fetchWords(hd.mem, hd.headerAddr(), sec.Header)
	hd.drive.SetSector(sec, hd.cylinder, hd.head, hd.sector)
	hd.setBusy()
}

// setBusy enters Busy and schedules the Done transition. A second call
// while already Busy is a no-op: at most one completion is ever
// outstanding.
func (hd *Controller) setBusy() {
	if hd.status == statusBusy {
		return
	}
	hd.status = statusBusy
	hd.sched.Schedule(hd, hd.event, BusyDurationNs, evBusyDone)
}

func (hd *Controller) raiseInterrupt() {
	hd.trace.Interrupt(true)
	hd.intr.Raise(irq.HardDisk)
}

func (hd *Controller) clearInterrupt() {
	hd.trace.Interrupt(false)
	hd.intr.Clear(irq.HardDisk)
}

// event dispatches deferred work scheduled by the controller. An unknown
// kind can only come from a controller bug.
func (hd *Controller) event(arg int, skew int64) {
	switch arg {
	case evBusyDone:
		hd.status = statusDone
		hd.raiseInterrupt()
	case evIndexStart:
		hd.index = 1
		hd.sched.Schedule(hd, hd.event, IndexPulseNs-skew, evIndexEnd)
	case evIndexEnd:
		hd.index = 0
		hd.sched.Schedule(hd, hd.event, DiscRotationNs-skew, evIndexStart)
	default:
		panic(fmt.Sprintf("shugart: impossible event kind %d", arg))
	}
}

// storeWords copies bytes into memory as little-endian 16 bit words,
// one word per address.
func storeWords(mem Memory, addr int, src []byte) {
	for i := 0; i+1 < len(src); i += 2 {
		mem.Store(addr, uint16(src[i])|uint16(src[i+1])<<8)
		addr++
	}
}

// fetchWords fills a byte buffer from memory, unpacking one little-endian
// 16 bit word per address.
func fetchWords(mem Memory, addr int, dst []byte) {
	for i := 0; i+1 < len(dst); i += 2 {
		word := mem.Fetch(addr)
		dst[i] = byte(word)
		dst[i+1] = byte(word >> 8)
		addr++
	}
}
