// Copyright (c) 2024, The OpenThread Authors.
// All rights reserved.
//
// Redistribution and use in source and binary forms, with or without
// modification, are permitted provided that the following conditions are met:
// 1. Redistributions of source code must retain the above copyright
//    notice, this list of conditions and the following disclaimer.
// 2. Redistributions in binary form must reproduce the above copyright
//    notice, this list of conditions and the following disclaimer in the
//    documentation and/or other materials provided with the distribution.
// 3. Neither the name of the copyright holder nor the
//    names of its contributors may be used to endorse or promote products
//    derived from this software without specific prior written permission.
//
// THIS SOFTWARE IS PROVIDED BY THE COPYRIGHT HOLDERS AND CONTRIBUTORS "AS IS"
// AND ANY EXPRESS OR IMPLIED WARRANTIES, INCLUDING, BUT NOT LIMITED TO, THE
// IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS FOR A PARTICULAR PURPOSE
// ARE DISCLAIMED. IN NO EVENT SHALL THE COPYRIGHT HOLDER OR CONTRIBUTORS BE
// LIABLE FOR ANY DIRECT, INDIRECT, INCIDENTAL, SPECIAL, EXEMPLARY, OR
// CONSEQUENTIAL DAMAGES (INCLUDING, BUT NOT LIMITED TO, PROCUREMENT OF
// SUBSTITUTE GOODS OR SERVICES; LOSS OF USE, DATA, OR PROFITS; OR BUSINESS
// INTERRUPTION) HOWEVER CAUSED AND ON ANY THEORY OF LIABILITY, WHETHER IN
// CONTRACT, STRICT LIABILITY, OR TORT (INCLUDING NEGLIGENCE OR OTHERWISE)
// ARISING IN ANY WAY OUT OF THE USE OF THIS SOFTWARE, EVEN IF ADVISED OF THE
// POSSIBILITY OF SUCH DAMAGE.

package timer

import (
	"container/heap"

	"github.com/openthread/ot-link/logger"
	. "github.com/openthread/ot-link/types"
)

type timerQueue []*Timer

func (tq timerQueue) Len() int {
	return len(tq)
}

func (tq timerQueue) Less(i, j int) bool {
	return tq[i].fireAt < tq[j].fireAt
}

func (tq timerQueue) Swap(i, j int) {
	a, b := tq[i], tq[j]
	if a.index != i && b.index != j {
		logger.Panicf("wrong index")
	}

	tq[i], tq[j] = b, a             // swap the elements
	tq[i].index, tq[j].index = i, j // fix the indexes
}

func (tq *timerQueue) Push(x interface{}) {
	t := x.(*Timer)
	*tq = append(*tq, t)
	t.index = len(*tq) - 1
}

func (tq *timerQueue) Pop() (elem interface{}) {
	tqlen := len(*tq)
	elem = (*tq)[tqlen-1]
	*tq = (*tq)[:tqlen-1]
	return
}

// Scheduler is a virtual-time timer queue. It owns the scheduler clock; time
// only moves when AdvanceTo/Advance runs, popping due timers in timestamp
// order and running their handlers to completion.
type Scheduler struct {
	q             timerQueue
	now           uint64
	radioOffsetUs uint64
}

// NewScheduler creates a Scheduler whose radio clock reads radioOffsetUs
// ahead of the scheduler clock.
func NewScheduler(radioOffsetUs uint64) *Scheduler {
	s := &Scheduler{
		q: timerQueue{},
	}
	s.radioOffsetUs = radioOffsetUs
	heap.Init(&s.q)
	return s
}

// NewTimer creates a stopped timer that calls handler when it fires.
func (s *Scheduler) NewTimer(handler func()) *Timer {
	t := &Timer{
		sched:   s,
		handler: handler,
		fireAt:  Ever,
	}
	heap.Push(&s.q, t)
	return t
}

func (s *Scheduler) Now() uint64 {
	return s.now
}

func (s *Scheduler) RadioNow() uint64 {
	return s.now + s.radioOffsetUs
}

func (s *Scheduler) NowMs() uint32 {
	return uint32(s.now / 1000)
}

func (s *Scheduler) NowSecs() uint32 {
	return uint32(s.now / 1000000)
}

// NextTimestamp returns the fire time of the earliest scheduled timer, or Ever.
func (s *Scheduler) NextTimestamp() uint64 {
	if len(s.q) == 0 {
		return Ever
	}
	return s.q[0].fireAt
}

// AdvanceTo moves the scheduler clock to ts, firing all timers due on the way,
// in timestamp order. A handler may re-arm its own or other timers; re-armed
// timers due before ts fire within the same call.
func (s *Scheduler) AdvanceTo(ts uint64) {
	for len(s.q) > 0 && s.q[0].fireAt <= ts {
		t := s.q[0]
		if t.fireAt > s.now { // a timer armed in the past fires without moving time backwards
			s.now = t.fireAt
		}
		t.setFireAt(Ever)
		t.handler()
	}
	if ts > s.now {
		s.now = ts
	}
}

// Advance moves the scheduler clock forward by d microseconds.
func (s *Scheduler) Advance(d uint64) {
	s.AdvanceTo(s.now + d)
}

func (s *Scheduler) fix(t *Timer) {
	heap.Fix(&s.q, t.index)
}
