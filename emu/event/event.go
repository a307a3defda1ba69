package event

/*
 * PERQ1 - Discrete event scheduler
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

// Callback runs when a scheduled event comes due. arg is the value given
// to Schedule, skew is how many nanoseconds past due the event fired.
// Callbacks that reschedule themselves should subtract skew from the next
// delay to keep a periodic cycle exact.
type Callback = func(arg int, skew int64)

type event struct {
	delay int64    // Nanoseconds to event, relative to previous entry
	owner any      // Device the event belongs to
	cb    Callback // Function to call back
	arg   int      // Integer argument
	prev  *event
	next  *event
}

// Scheduler delivers callbacks in strict chronological order. Events sit
// on a delta queue: each entry holds its delay relative to the entry in
// front of it, so advancing time only touches the head.
type Scheduler struct {
	head *event
	tail *event
}

func New() *Scheduler {
	return &Scheduler{}
}

// Schedule an event delay nanoseconds in the future. A delay of zero or
// less runs the callback right away. Events due at the same instant fire
// in the order they were scheduled.
func (s *Scheduler) Schedule(owner any, cb Callback, delay int64, arg int) {
	if delay <= 0 {
		cb(arg, 0)
		return
	}

	ev := &event{owner: owner, cb: cb, delay: delay, arg: arg}

	evptr := s.head
	// Empty queue, event becomes the whole of it.
	if evptr == nil {
		s.head = ev
		s.tail = ev
		return
	}

	// Scan for the place to install it.
	for evptr != nil {
		// Strictly before the next event: install in front of it.
		if ev.delay < evptr.delay {
			evptr.delay -= ev.delay
			ev.prev = evptr.prev
			ev.next = evptr
			evptr.prev = ev
			if ev.prev != nil {
				ev.prev.next = ev
			} else {
				s.head = ev
			}
			return
		}
		// Make the new event relative to the one being passed.
		ev.delay -= evptr.delay
		evptr = evptr.next
	}

	// Ran off the end, put it on the tail.
	ev.prev = s.tail
	s.tail.next = ev
	s.tail = ev
}

// Cancel removes the first pending event matching owner and arg. Missing
// events are ignored.
func (s *Scheduler) Cancel(owner any, arg int) {
	for evptr := s.head; evptr != nil; evptr = evptr.next {
		if evptr.owner != owner || evptr.arg != arg {
			continue
		}
		nxt := evptr.next
		if nxt != nil {
			// Give our remaining delay to the next event.
			nxt.delay += evptr.delay
			nxt.prev = evptr.prev
		} else {
			s.tail = evptr.prev
		}
		if evptr.prev != nil {
			evptr.prev.next = nxt
		} else {
			s.head = nxt
		}
		return
	}
}

// Pending reports whether any events remain queued.
func (s *Scheduler) Pending() bool {
	return s.head != nil
}

// Advance moves time forward by ns nanoseconds and fires every event that
// comes due, oldest first. Each event is unlinked before its callback runs
// so callbacks may schedule or cancel freely.
func (s *Scheduler) Advance(ns int64) {
	ev := s.head
	if ev == nil {
		return
	}
	ev.delay -= ns
	for ev != nil && ev.delay <= 0 {
		overdue := -ev.delay
		s.head = ev.next
		if s.head != nil {
			s.head.prev = nil
			// The successor's delta was relative to the fired event.
			s.head.delay -= overdue
		} else {
			s.tail = nil
		}
		ev.cb(ev.arg, overdue)
		ev = s.head
	}
}
