package memory

/*
 * PERQ1 - Word addressed main memory
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

// Default store is 256K words, half the PERQ 1 maximum.
const DefaultSizeWords = 256 * 1024

// Memory is a flat store of 16 bit words addressed by word number.
type Memory struct {
	words []uint16
}

// New returns a zeroed memory of the given size in words.
func New(sizeWords int) *Memory {
	if sizeWords <= 0 {
		sizeWords = DefaultSizeWords
	}
	return &Memory{words: make([]uint16, sizeWords)}
}

// Size returns the memory size in words.
func (m *Memory) Size() int {
	return len(m.words)
}

// Fetch returns the word at addr. Reads past the end of memory float to
// zero, like an unterminated bus.
func (m *Memory) Fetch(addr int) uint16 {
	if addr < 0 || addr >= len(m.words) {
		return 0
	}
	return m.words[addr]
}

// Store writes the word at addr. Writes past the end of memory are dropped.
func (m *Memory) Store(addr int, word uint16) {
	if addr < 0 || addr >= len(m.words) {
		return
	}
	m.words[addr] = word
}

// Clear zeroes the whole store.
func (m *Memory) Clear() {
	for i := range m.words {
		m.words[i] = 0
	}
}
