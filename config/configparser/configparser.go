/*
 * PERQ1 - Configuration file parser
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

package configparser

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode"

	"github.com/hkestrel/perq1/emu/device"
)

/* Configuration file format:
 *
 * '#' starts a comment, rest of line is ignored.
 * <line> ::= <model> <unit> *<option>          device statement
 *          | <name> <value>                    single-value option
 *          | <name> <first> *<option>          option list
 *          | <name>                            switch
 * <unit> ::= hex number
 * <option> ::= <word> [ '=' <value> ] *( ',' <word> )
 * <value> ::= bare token | '"' quoted string '"'
 */

// Option is one parsed NAME, NAME=value or NAME,list item from a
// statement.
type Option struct {
	Name     string   // Option name
	EqualOpt string   // Value after =, if any
	Value    []string // Comma list following the option
}

// Statement handler kinds.
const (
	TypeModel   = 1 + iota // Device statement, requires a unit number
	TypeOption             // Single value statement
	TypeOptions            // First value plus option list
	TypeSwitch             // Bare flag statement
)

type handler struct {
	create func(uint16, string, []Option) error
	ty     int
}

var handlers = map[string]handler{}

// RegisterModel registers a device statement. Call from init functions.
func RegisterModel(name string, ty int, fn func(uint16, string, []Option) error) {
	handlers[strings.ToUpper(name)] = handler{create: fn, ty: ty}
}

// RegisterOption registers a single-value statement.
func RegisterOption(name string, fn func(uint16, string, []Option) error) {
	handlers[strings.ToUpper(name)] = handler{create: fn, ty: TypeOption}
}

// RegisterSwitch registers a bare flag statement.
func RegisterSwitch(name string, fn func(uint16, string, []Option) error) {
	handlers[strings.ToUpper(name)] = handler{create: fn, ty: TypeSwitch}
}

// LoadConfigFile reads and applies a configuration file.
func LoadConfigFile(name string) error {
	file, err := os.Open(name)
	if err != nil {
		return err
	}
	defer file.Close()
	return LoadConfig(file)
}

// LoadConfig reads and applies configuration statements from a reader.
func LoadConfig(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	num := 0
	for scanner.Scan() {
		num++
		line := &statement{line: scanner.Text(), num: num}
		if err := line.parse(); err != nil {
			return err
		}
	}
	return scanner.Err()
}

// statement walks one line of input.
type statement struct {
	line string
	num  int
	pos  int
}

func (st *statement) parse() error {
	name := strings.ToUpper(st.word())
	if name == "" {
		if !st.eol() {
			return st.errorf("statement must start with a name")
		}
		return nil
	}

	h, ok := handlers[name]
	if !ok {
		return st.errorf("unknown statement: %s", name)
	}

	switch h.ty {
	case TypeModel:
		unit := st.token()
		devNum, err := strconv.ParseUint(unit, 16, 12)
		if err != nil {
			return st.errorf("%s requires a unit number, got %q", name, unit)
		}
		options, oerr := st.options()
		if oerr != nil {
			return oerr
		}
		return h.create(uint16(devNum), "", options)

	case TypeOption:
		value := st.token()
		if value == "" {
			return st.errorf("%s requires a value", name)
		}
		if !st.eol() {
			return st.errorf("%s takes a single value", name)
		}
		return h.create(device.NoDev, value, nil)

	case TypeOptions:
		first := st.token()
		if first == "" {
			return st.errorf("%s requires a value", name)
		}
		devNum := device.NoDev
		if v, err := strconv.ParseUint(first, 16, 12); err == nil {
			devNum = uint16(v)
		}
		options, oerr := st.options()
		if oerr != nil {
			return oerr
		}
		return h.create(devNum, first, options)

	case TypeSwitch:
		if !st.eol() {
			return st.errorf("%s takes no options", name)
		}
		return h.create(device.NoDev, "", nil)
	}
	return st.errorf("bad handler type for %s", name)
}

// options collects the remaining NAME[=value][,list] items on the line.
func (st *statement) options() ([]Option, error) {
	options := []Option{}
	for {
		st.skipSpace()
		if st.eol() {
			return options, nil
		}
		name := st.word()
		if name == "" {
			return nil, st.errorf("invalid option at column %d", st.pos+1)
		}
		option := Option{Name: name}
		if st.peek() == '=' {
			st.pos++
			value, ok := st.value()
			if !ok {
				return nil, st.errorf("unterminated quoted string")
			}
			option.EqualOpt = value
		}
		st.skipSpace()
		for st.peek() == ',' {
			st.pos++
			st.skipSpace()
			item := st.word()
			if item == "" {
				return nil, st.errorf("missing item after comma")
			}
			option.Value = append(option.Value, item)
			st.skipSpace()
		}
		options = append(options, option)
	}
}

func (st *statement) skipSpace() {
	for st.pos < len(st.line) && unicode.IsSpace(rune(st.line[st.pos])) {
		st.pos++
	}
}

// eol reports end of line; a comment ends the line.
func (st *statement) eol() bool {
	st.skipSpace()
	return st.pos >= len(st.line) || st.line[st.pos] == '#'
}

func (st *statement) peek() byte {
	if st.pos >= len(st.line) {
		return 0
	}
	return st.line[st.pos]
}

// word reads a run of letters and digits.
func (st *statement) word() string {
	st.skipSpace()
	start := st.pos
	for st.pos < len(st.line) {
		by := rune(st.line[st.pos])
		if !unicode.IsLetter(by) && !unicode.IsNumber(by) {
			break
		}
		st.pos++
	}
	return st.line[start:st.pos]
}

// token reads a run of anything up to whitespace or a comment. Used for
// values like file names.
func (st *statement) token() string {
	st.skipSpace()
	if st.peek() == '"' {
		value, _ := st.value()
		return value
	}
	start := st.pos
	for st.pos < len(st.line) {
		by := st.line[st.pos]
		if unicode.IsSpace(rune(by)) || by == '#' {
			break
		}
		st.pos++
	}
	return st.line[start:st.pos]
}

// value reads a bare or quoted value. Inside quotes a doubled quote
// stands for one quote character.
func (st *statement) value() (string, bool) {
	if st.peek() != '"' {
		start := st.pos
		for st.pos < len(st.line) {
			by := st.line[st.pos]
			if unicode.IsSpace(rune(by)) || by == ',' || by == '#' {
				break
			}
			st.pos++
		}
		return st.line[start:st.pos], true
	}

	st.pos++
	var sb strings.Builder
	for st.pos < len(st.line) {
		by := st.line[st.pos]
		if by == '"' {
			st.pos++
			if st.peek() != '"' {
				return sb.String(), true
			}
		}
		sb.WriteByte(by)
		st.pos++
	}
	return sb.String(), false
}

func (st *statement) errorf(format string, a ...any) error {
	msg := fmt.Sprintf(format, a...)
	return errors.New(msg + fmt.Sprintf(", line: %d", st.num))
}
