package irq

/*
 * PERQ1 - CPU interrupt lines
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

// Interrupt identifies one of the workstation's vectored interrupt lines,
// lowest vector number first.
type Interrupt int

const (
	Z80DataOut Interrupt = iota
	Network
	HardDisk
	Z80DataIn
	LineCounter
	Parity

	numInterrupts
)

var names = [...]string{
	"Z80DataOut", "Network", "HardDisk", "Z80DataIn", "LineCounter", "Parity",
}

func (i Interrupt) String() string {
	if i < 0 || int(i) >= len(names) {
		return "Unknown"
	}
	return names[i]
}

// Controller latches the raised interrupt lines as a bit set.
type Controller struct {
	pending uint8
}

func New() *Controller {
	return &Controller{}
}

// Raise latches an interrupt line. Raising an already pending line is
// harmless.
func (ic *Controller) Raise(i Interrupt) {
	ic.pending |= 1 << uint(i)
}

// Clear drops an interrupt line.
func (ic *Controller) Clear(i Interrupt) {
	ic.pending &^= 1 << uint(i)
}

// Pending reports whether a given line is raised.
func (ic *Controller) Pending(i Interrupt) bool {
	return ic.pending&(1<<uint(i)) != 0
}

// Highest returns the highest priority pending line. Lower vector numbers
// have higher priority.
func (ic *Controller) Highest() (Interrupt, bool) {
	for i := Interrupt(0); i < numInterrupts; i++ {
		if ic.Pending(i) {
			return i, true
		}
	}
	return 0, false
}

// Reset drops every line.
func (ic *Controller) Reset() {
	ic.pending = 0
}
