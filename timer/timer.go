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
	. "github.com/openthread/ot-link/types"
)

// Timer is a one-shot timer on a Scheduler. A fire time of Ever means the
// timer is not running.
type Timer struct {
	sched   *Scheduler
	handler func()
	fireAt  uint64

	index int
}

// Start arms the timer to fire after durationMs milliseconds of scheduler time.
func (t *Timer) Start(durationMs uint32) {
	t.setFireAt(t.sched.Now() + uint64(durationMs)*1000)
}

// StartUs arms the timer to fire after durationUs microseconds of scheduler time.
func (t *Timer) StartUs(durationUs uint32) {
	t.setFireAt(t.sched.Now() + uint64(durationUs))
}

// FireAt arms the timer to fire at the given scheduler time in microseconds.
func (t *Timer) FireAt(ts uint64) {
	t.setFireAt(ts)
}

// Stop disarms the timer. Stopping a stopped timer is a no-op.
func (t *Timer) Stop() {
	t.setFireAt(Ever)
}

func (t *Timer) IsRunning() bool {
	return t.fireAt != Ever
}

func (t *Timer) setFireAt(ts uint64) {
	if t.fireAt != ts {
		t.fireAt = ts
		t.sched.fix(t)
	}
}
