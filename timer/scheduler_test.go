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
	"testing"

	"github.com/stretchr/testify/assert"

	. "github.com/openthread/ot-link/types"
)

func TestScheduler_FireOrder(t *testing.T) {
	s := NewScheduler(0)
	var fired []int

	t1 := s.NewTimer(func() { fired = append(fired, 1) })
	t2 := s.NewTimer(func() { fired = append(fired, 2) })
	t3 := s.NewTimer(func() { fired = append(fired, 3) })

	t3.FireAt(3000)
	t1.FireAt(1000)
	t2.FireAt(2000)

	assert.Equal(t, uint64(1000), s.NextTimestamp())
	s.AdvanceTo(5000)
	assert.Equal(t, []int{1, 2, 3}, fired)
	assert.Equal(t, uint64(5000), s.Now())
	assert.Equal(t, Ever, s.NextTimestamp())
}

func TestScheduler_RearmWithinHandler(t *testing.T) {
	s := NewScheduler(0)
	count := 0

	var tm *Timer
	tm = s.NewTimer(func() {
		count++
		if count < 3 {
			tm.Start(1) // 1 ms
		}
	})
	tm.Start(1)

	s.Advance(10_000)
	assert.Equal(t, 3, count)
}

func TestScheduler_StopAndIsRunning(t *testing.T) {
	s := NewScheduler(0)
	fired := false

	tm := s.NewTimer(func() { fired = true })
	assert.False(t, tm.IsRunning())

	tm.Start(5)
	assert.True(t, tm.IsRunning())
	tm.Stop()
	assert.False(t, tm.IsRunning())

	s.Advance(10_000)
	assert.False(t, fired)
}

func TestScheduler_TimerArmedInPast(t *testing.T) {
	s := NewScheduler(0)
	s.Advance(10_000)

	fired := false
	tm := s.NewTimer(func() { fired = true })
	tm.FireAt(5_000)

	s.Advance(1)
	assert.True(t, fired)
	assert.Equal(t, uint64(10_001), s.Now())
}

func TestScheduler_Clocks(t *testing.T) {
	s := NewScheduler(7_000)
	s.AdvanceTo(3_500_000)

	assert.Equal(t, uint64(3_500_000), s.Now())
	assert.Equal(t, uint64(3_507_000), s.RadioNow())
	assert.Equal(t, uint32(3_500), s.NowMs())
	assert.Equal(t, uint32(3), s.NowSecs())
}
