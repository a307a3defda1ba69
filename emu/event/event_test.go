/*
 * PERQ1 - Event scheduler test cases.
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

package event

import (
	"testing"
)

// recorder notes when its callback fired and with what.
type recorder struct {
	clock *int64
	fired int
	arg   int
	skew  int64
	at    int64
}

func (r *recorder) callback(arg int, skew int64) {
	r.fired++
	r.arg = arg
	r.skew = skew
	r.at = *r.clock
}

// tick advances the scheduler one nanosecond at a time, tracking a test
// clock the recorders can read.
func tick(s *Scheduler, clock *int64, ns int64) {
	for n := int64(0); n < ns; n++ {
		*clock++
		s.Advance(1)
	}
}

func TestScheduleOne(t *testing.T) {
	var clock int64
	s := New()
	a := &recorder{clock: &clock}
	s.Schedule(a, a.callback, 10, 1)
	tick(s, &clock, 20)
	if a.at != 10 {
		t.Errorf("event did not fire at correct time 10 got %d", a.at)
	}
	if a.arg != 1 {
		t.Errorf("event did not carry correct arg 1 got %d", a.arg)
	}
	if a.fired != 1 {
		t.Errorf("event fired %d times", a.fired)
	}
}

func TestScheduleTwo(t *testing.T) {
	var clock int64
	s := New()
	a := &recorder{clock: &clock}
	b := &recorder{clock: &clock}
	s.Schedule(a, a.callback, 10, 1)
	s.Schedule(b, b.callback, 5, 2)
	tick(s, &clock, 20)
	if a.at != 10 {
		t.Errorf("event A did not fire at correct time 10 got %d", a.at)
	}
	if b.at != 5 {
		t.Errorf("event B did not fire at correct time 5 got %d", b.at)
	}
}

// Events due at the same instant fire in schedule order.
func TestScheduleSameTime(t *testing.T) {
	var clock int64
	s := New()
	order := []int{}
	cb := func(arg int, _ int64) {
		order = append(order, arg)
	}
	s.Schedule(nil, cb, 10, 1)
	s.Schedule(nil, cb, 10, 2)
	s.Schedule(nil, cb, 10, 3)
	tick(s, &clock, 20)
	if len(order) != 3 || order[0] != 1 || order[1] != 2 || order[2] != 3 {
		t.Errorf("same-time events fired out of order: %v", order)
	}
}

// A callback may schedule a followup event.
func TestScheduleDuringEvent(t *testing.T) {
	var clock int64
	s := New()
	a := &recorder{clock: &clock}
	chain := func(arg int, _ int64) {
		s.Schedule(a, a.callback, int64(arg), arg)
	}
	s.Schedule(nil, chain, 10, 5)
	tick(s, &clock, 30)
	if a.at != 15 {
		t.Errorf("chained event did not fire at correct time 15 got %d", a.at)
	}
}

func TestCancel(t *testing.T) {
	var clock int64
	s := New()
	a := &recorder{clock: &clock}
	b := &recorder{clock: &clock}
	d := &recorder{clock: &clock}
	s.Schedule(a, a.callback, 10, 5)
	s.Schedule(b, b.callback, 20, 2)
	s.Schedule(d, d.callback, 30, 3)
	for n := 0; n < 30; n++ {
		clock++
		s.Advance(1)
		if a.fired == 1 && b.fired == 0 {
			s.Cancel(b, 2)
		}
	}
	if a.at != 10 {
		t.Errorf("event A did not fire at correct time 10 got %d", a.at)
	}
	if b.fired != 0 {
		t.Errorf("cancelled event B fired at %d", b.at)
	}
	if d.at != 30 {
		t.Errorf("event D did not fire at correct time 30 got %d", d.at)
	}
}

// Zero delay runs the callback immediately.
func TestScheduleImmediate(t *testing.T) {
	var clock int64
	s := New()
	a := &recorder{clock: &clock}
	s.Schedule(a, a.callback, 0, 5)
	if a.fired != 1 {
		t.Errorf("zero delay event did not fire immediately")
	}
	if a.arg != 5 {
		t.Errorf("event did not carry correct arg 5 got %d", a.arg)
	}
	if s.Pending() {
		t.Errorf("queue should be empty")
	}
}

// A single large advance fires everything due, in order, with skew
// reporting how far past due each event was.
func TestAdvanceOvershoot(t *testing.T) {
	var clock int64
	s := New()
	order := []int{}
	skews := []int64{}
	cb := func(arg int, skew int64) {
		order = append(order, arg)
		skews = append(skews, skew)
	}
	s.Schedule(nil, cb, 10, 1)
	s.Schedule(nil, cb, 12, 2)
	s.Schedule(nil, cb, 40, 3)
	clock += 20
	s.Advance(20)
	if len(order) != 2 || order[0] != 1 || order[1] != 2 {
		t.Fatalf("expected events 1,2 got %v", order)
	}
	if skews[0] != 10 || skews[1] != 8 {
		t.Errorf("wrong skews, expected 10,8 got %v", skews)
	}
	// The third event keeps its place on the timeline.
	s.Advance(19)
	if len(order) != 2 {
		t.Errorf("event 3 fired early")
	}
	s.Advance(1)
	if len(order) != 3 || order[2] != 3 {
		t.Errorf("event 3 did not fire at 40: %v", order)
	}
}

func TestPending(t *testing.T) {
	var clock int64
	s := New()
	a := &recorder{clock: &clock}
	if s.Pending() {
		t.Errorf("new scheduler should have no events")
	}
	s.Schedule(a, a.callback, 10, 1)
	if !s.Pending() {
		t.Errorf("scheduled event not pending")
	}
	tick(s, &clock, 10)
	if s.Pending() {
		t.Errorf("fired event still pending")
	}
}
