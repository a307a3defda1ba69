/*
 * PERQ1 - Debug trace output
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

package debug

import (
	"fmt"
	"io"
	"os"

	config "github.com/hkestrel/perq1/config/configparser"
)

var output io.Writer = os.Stderr

// Debugf prints a trace line when the selected level is enabled in the
// device's mask. Trace lines go to the DEBUGFILE if one is configured,
// otherwise to stderr.
func Debugf(module string, mask int, level int, format string, a ...any) {
	if mask&level == 0 {
		return
	}
	fmt.Fprintf(output, module+": "+format+"\n", a...)
}

// SetOutput redirects trace output, mainly for tests. A nil writer
// restores stderr.
func SetOutput(w io.Writer) {
	if w == nil {
		w = os.Stderr
	}
	output = w
}

// The DEBUGFILE statement sends trace output to a file.
func init() {
	config.RegisterOption("DEBUGFILE", create)
}

func create(_ uint16, fileName string, _ []config.Option) error {
	file, err := os.Create(fileName)
	if err != nil {
		return fmt.Errorf("unable to create debug file: %s", fileName)
	}
	output = file
	return nil
}
