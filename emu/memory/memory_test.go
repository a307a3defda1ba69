/*
 * PERQ1 - Memory test cases.
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

package memory

import "testing"

func TestFetchStore(t *testing.T) {
	m := New(1024)
	m.Store(0, 0x1234)
	m.Store(1023, 0xbeef)
	if v := m.Fetch(0); v != 0x1234 {
		t.Errorf("fetch 0 expected 1234 got %04x", v)
	}
	if v := m.Fetch(1023); v != 0xbeef {
		t.Errorf("fetch 1023 expected beef got %04x", v)
	}
	if v := m.Fetch(1); v != 0 {
		t.Errorf("unwritten word expected 0 got %04x", v)
	}
}

func TestOutOfRange(t *testing.T) {
	m := New(16)
	m.Store(16, 0xffff)
	m.Store(-1, 0xffff)
	if v := m.Fetch(16); v != 0 {
		t.Errorf("fetch past end expected 0 got %04x", v)
	}
	if v := m.Fetch(-1); v != 0 {
		t.Errorf("fetch below start expected 0 got %04x", v)
	}
	if v := m.Fetch(15); v != 0 {
		t.Errorf("in-range word corrupted by out-of-range store: %04x", v)
	}
}

func TestDefaultSize(t *testing.T) {
	m := New(0)
	if m.Size() != DefaultSizeWords {
		t.Errorf("expected default size %d got %d", DefaultSizeWords, m.Size())
	}
}

func TestClear(t *testing.T) {
	m := New(8)
	for i := 0; i < 8; i++ {
		m.Store(i, 0xa5a5)
	}
	m.Clear()
	for i := 0; i < 8; i++ {
		if m.Fetch(i) != 0 {
			t.Errorf("word %d not cleared", i)
		}
	}
}
