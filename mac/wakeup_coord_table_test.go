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

package mac

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"

	. "github.com/openthread/ot-link/types"
)

// testClock is a settable timer.Clock for table tests.
type testClock struct {
	nowUs uint64
}

func (c *testClock) Now() uint64 { return c.nowUs }
func (c *testClock) RadioNow() uint64 { return c.nowUs }
func (c *testClock) NowMs() uint32 { return uint32(c.nowUs / 1000) }
func (c *testClock) NowSecs() uint32 { return uint32(c.nowUs / 1000000) }

func wakeupRxFrame(ext ExtAddress, keySequence uint32, frameCounter uint32) *RxFrame {
	frame := &RxFrame{
		SrcAddr:         ExtendedAddress(ext),
		SecurityEnabled: true,
		FrameCounter:    frameCounter,
		RendezvousTime:  &RendezvousTimeIe{},
	}
	binary.BigEndian.PutUint32(frame.KeySource[:], keySequence)
	return frame
}

func TestWakeupCoordTable_DetectReplay(t *testing.T) {
	clk := &testClock{}
	table := NewWakeupCoordTable(clk, 4, 3600)

	assert.NoError(t, table.DetectReplay(wakeupRxFrame(0xe, 5, 100)))
	assert.Equal(t, 1, table.Len())

	// Identical key sequence and frame counter is a replay.
	assert.Equal(t, ErrSecurity, table.DetectReplay(wakeupRxFrame(0xe, 5, 100)))
	assert.Equal(t, 1, table.Len())

	// Lower frame counter within the same key sequence is a replay.
	assert.Equal(t, ErrSecurity, table.DetectReplay(wakeupRxFrame(0xe, 5, 99)))

	// Lower key sequence is a replay even with a higher frame counter.
	assert.Equal(t, ErrSecurity, table.DetectReplay(wakeupRxFrame(0xe, 4, 1000)))

	// Strictly higher frame counter advances the entry.
	assert.NoError(t, table.DetectReplay(wakeupRxFrame(0xe, 5, 101)))

	// A higher key sequence resets the frame counter requirement.
	assert.NoError(t, table.DetectReplay(wakeupRxFrame(0xe, 6, 0)))
	assert.Equal(t, 1, table.Len())
}

func TestWakeupCoordTable_Full(t *testing.T) {
	clk := &testClock{}
	table := NewWakeupCoordTable(clk, 2, 3600)

	assert.NoError(t, table.DetectReplay(wakeupRxFrame(0x1, 0, 0)))
	assert.NoError(t, table.DetectReplay(wakeupRxFrame(0x2, 0, 0)))
	assert.Equal(t, ErrNoBufs, table.DetectReplay(wakeupRxFrame(0x3, 0, 0)))
	assert.Equal(t, 2, table.Len())

	// Known coordinators are still validated when the table is full.
	assert.NoError(t, table.DetectReplay(wakeupRxFrame(0x1, 0, 1)))
}

func TestWakeupCoordTable_Evict(t *testing.T) {
	clk := &testClock{}
	table := NewWakeupCoordTable(clk, 2, 10)

	clk.nowUs = 5 * 1000000
	assert.NoError(t, table.DetectReplay(wakeupRxFrame(0x1, 0, 0)))
	clk.nowUs = 8 * 1000000
	assert.NoError(t, table.DetectReplay(wakeupRxFrame(0x2, 0, 0)))

	// At t=20s the entry from t=5s exceeds the evict age and makes room.
	clk.nowUs = 20 * 1000000
	assert.NoError(t, table.DetectReplay(wakeupRxFrame(0x3, 0, 0)))
	assert.Equal(t, 2, table.Len())

	// The evicted coordinator's history is gone: its old counter is accepted
	// again after the remaining stale entry is evicted in turn.
	assert.NoError(t, table.DetectReplay(wakeupRxFrame(0x1, 0, 0)))
	assert.Equal(t, 2, table.Len())
}

func TestWakeupCoordTable_Clear(t *testing.T) {
	clk := &testClock{}
	table := NewWakeupCoordTable(clk, 4, 3600)

	assert.NoError(t, table.DetectReplay(wakeupRxFrame(0x1, 1, 1)))
	assert.NoError(t, table.DetectReplay(wakeupRxFrame(0x2, 1, 1)))
	table.Clear()
	assert.Equal(t, 0, table.Len())

	assert.NoError(t, table.DetectReplay(wakeupRxFrame(0x1, 1, 1)))
}
