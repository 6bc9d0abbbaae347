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

package thread

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/openthread/ot-link/config"
	"github.com/openthread/ot-link/mac"
	"github.com/openthread/ot-link/timer"
	. "github.com/openthread/ot-link/types"
)

// testRadio records transmitted frames and completes each transmit at once.
type testRadio struct {
	m      *mac.Mac
	frames []*mac.TxFrame
}

func (r *testRadio) BusSpeed() uint32 {
	return 0
}

func (r *testRadio) Transmit(frame *mac.TxFrame) {
	saved := *frame // the MAC reuses its frame buffer
	r.frames = append(r.frames, &saved)
	r.m.HandleTransmitDone(frame, OT_ERROR_NONE)
}

func newWakeupTestSetup(radioOffsetUs uint64) (*timer.Scheduler, *testRadio, *WakeupTxScheduler) {
	sched := timer.NewScheduler(radioOffsetUs)
	radio := &testRadio{}
	m := mac.New(sched, radio, 0xface, 0x1122334455667788)
	radio.m = m
	// Bus speed 0: the tx request ahead time is the configured lead time.
	ws := NewWakeupTxScheduler(sched, sched, m, 0, config.DefaultConfig())
	return sched, radio, ws
}

func TestWakeupScheduler_BurstStopsOnSchedule(t *testing.T) {
	sched, radio, ws := newWakeupTestSetup(0)

	err := ws.WakeUp(0x2, 10_000, 20)
	assert.NoError(t, err)
	assert.True(t, ws.IsSequenceOngoing())

	// tx time 2000, tx end 2000 + 20000 + 10000.
	assert.Equal(t, uint64(32_000), ws.TxEndTime())

	sched.Advance(50_000)

	assert.False(t, ws.IsSequenceOngoing())
	assert.Equal(t, 3, len(radio.frames)) // frames at 2000, 12000 and 22000
}

func TestWakeupScheduler_SingleSequenceGuard(t *testing.T) {
	sched, _, ws := newWakeupTestSetup(0)

	assert.NoError(t, ws.WakeUp(0x2, 10_000, 20))
	assert.Equal(t, ErrInvalidState, ws.WakeUp(0x3, 10_000, 20))

	sched.Advance(50_000)
	assert.False(t, ws.IsSequenceOngoing())

	// A finished sequence allows a new one.
	assert.NoError(t, ws.WakeUp(0x3, 10_000, 20))
}

func TestWakeupScheduler_FrameContents(t *testing.T) {
	sched, radio, ws := newWakeupTestSetup(5_000)

	assert.NoError(t, ws.WakeUp(0x2, 10_000, 20))
	sched.Advance(3_000)

	assert.Equal(t, 1, len(radio.frames))
	frame := radio.frames[0]

	assert.True(t, frame.SecurityEnabled)
	assert.False(t, frame.CsmaCaEnabled)
	assert.Equal(t, uint8(0), frame.MaxCsmaBackoffs)
	assert.Equal(t, uint8(0), frame.MaxFrameRetries)
	assert.Equal(t, mac.ExtendedAddress(0x2), frame.Addrs.Destination)
	assert.Equal(t, mac.ExtendedAddress(0x1122334455667788), frame.Addrs.Source)

	// The tx delay bridges the scheduler clock to the radio clock.
	assert.Equal(t, uint32(0), frame.TxDelayBaseTime)
	assert.Equal(t, uint32(7_000), frame.TxDelay)

	// rendezvous = (10000 - (54+78)*32)/2 + 10000 = 12888 us -> 80 ten-symbol units.
	assert.Equal(t, uint16(80), frame.RendezvousTime.RendezvousTime)
	assert.Equal(t, uint8(2), frame.Connection.RetryInterval)
	assert.Equal(t, uint8(4), frame.Connection.RetryCount)
}

func TestWakeupScheduler_Stop(t *testing.T) {
	sched, radio, ws := newWakeupTestSetup(0)

	assert.NoError(t, ws.WakeUp(0x2, 10_000, 500))
	ws.Stop()
	assert.False(t, ws.IsSequenceOngoing())

	sched.Advance(100_000)
	assert.Equal(t, 0, len(radio.frames))
}

func TestWakeupScheduler_ConnectionWindow(t *testing.T) {
	_, _, ws := newWakeupTestSetup(0)

	assert.NoError(t, ws.WakeUp(0x2, 10_000, 20))
	assert.Equal(t, uint32(10_000*2*4), ws.ConnectionWindowUs())
}

func TestWakeupScheduler_ShortIntervalEndsOnSchedule(t *testing.T) {
	sched, radio, ws := newWakeupTestSetup(0)

	// An interval shorter than the request-ahead time still yields a burst
	// that ends on schedule; each timer fires exactly ahead of its tx time,
	// so the catch-up clamp to now + ahead is not taken.
	assert.NoError(t, ws.WakeUp(0x2, 1_000, 10))
	sched.Advance(60_000)

	assert.False(t, ws.IsSequenceOngoing())
	assert.True(t, len(radio.frames) > 0)
}
