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
	"github.com/openthread/ot-link/message"
	. "github.com/openthread/ot-link/types"
)

type cslTestSetup struct {
	clk    *testClock
	pool   *message.Pool
	fwd    *MeshForwarder
	parent *Neighbor
	mle    *testMle
	req    *testCslRequester
	sender *EnhCslSender
}

func newCslTestSetup() *cslTestSetup {
	s := &cslTestSetup{
		clk:  &testClock{},
		pool: message.NewPool(16),
	}
	s.fwd = NewMeshForwarder(s.pool, 0xface, 0x2)
	s.fwd.SetRxOnWhenIdle(false)
	s.parent = NewNeighbor(0xabcd, 0x4400, 4)
	s.parent.SetState(NeighborStateValid)
	s.mle = &testMle{child: true, parent: s.parent}
	s.req = &testCslRequester{}
	// Bus speed 0: frame request ahead is the bare configured lead time.
	s.sender = NewEnhCslSender(s.mle, s.fwd, s.req, s.clk, 0, config.DefaultConfig())
	return s
}

func (s *cslTestSetup) synchronize(period uint16, phase uint16, lastRxUs uint64) {
	s.parent.SetEnhCslPeriod(period)
	s.parent.SetEnhCslPhase(phase)
	s.parent.SetEnhLastRxTimestamp(lastRxUs)
	s.parent.SetEnhCslSynchronized(true)
}

func (s *cslTestSetup) queueMessage(size int) *message.Message {
	msg, err := s.pool.Allocate(message.TypeIp6)
	if err != nil {
		panic(err)
	}
	msg.SetLinkSecurityEnabled(true)
	payload := make([]byte, size)
	msg.Append(payload)
	s.fwd.SendMessage(msg)
	return msg
}

func TestCslSender_SlotArithmetic(t *testing.T) {
	s := newCslTestSetup()
	s.clk.radioNowUs = 10_000
	s.synchronize(50, 10, 1_000) // period 8000 us, first window at 2600 us

	var delayFromLastRx uint32
	delay := s.sender.getNextCslTransmissionDelay(s.parent, &delayFromLastRx, 500)

	assert.Equal(t, uint32(100), delay)
	assert.Equal(t, uint32(9_600), delayFromLastRx)
}

func TestCslSender_SlotArithmeticAheadRollsOver(t *testing.T) {
	s := newCslTestSetup()
	s.clk.radioNowUs = 10_000
	s.synchronize(50, 10, 1_000)

	// With 1000 us lead the window at 10600 is too close; the next period is
	// used, keeping the window aligned on the CSL phase grid.
	var delayFromLastRx uint32
	delay := s.sender.getNextCslTransmissionDelay(s.parent, &delayFromLastRx, 1_000)

	assert.Equal(t, uint32(7_600), delay)
	assert.Equal(t, uint32(17_600), delayFromLastRx)

	nextTxWindow := s.parent.EnhLastRxTimestamp() + uint64(delayFromLastRx)
	firstTxWindow := s.parent.EnhLastRxTimestamp() + uint64(s.parent.EnhCslPhase())*uint64(UsPerTenSymbols)
	periodUs := uint64(s.parent.EnhCslPeriod()) * uint64(UsPerTenSymbols)
	assert.True(t, nextTxWindow >= s.clk.radioNowUs+1_000)
	assert.Equal(t, uint64(0), (nextTxWindow-firstTxWindow)%periodUs)
}

func TestCslSender_AddAndClearMessages(t *testing.T) {
	s := newCslTestSetup()
	s.synchronize(50, 10, 0)

	m1 := s.queueMessage(8)
	s.queueMessage(8)

	assert.Equal(t, uint16(2), s.parent.IndirectMessageCount())
	assert.Equal(t, m1, s.parent.IndirectMessage())
	assert.Equal(t, uint16(0), s.parent.IndirectFragmentOffset())
	assert.NotEmpty(t, s.req.requests)

	s.sender.ClearAllMessagesForCslPeer(s.parent)

	assert.Nil(t, s.parent.IndirectMessage())
	assert.Equal(t, uint16(0), s.parent.IndirectMessageCount())
	assert.Equal(t, uint8(0), s.parent.EnhCslTxAttempts())
	assert.Equal(t, 0, s.fwd.SendQueue().Len())
	assert.Equal(t, 0, s.pool.NumAllocated())
}

func TestCslSender_CounterRepair(t *testing.T) {
	s := newCslTestSetup()
	s.synchronize(50, 10, 0)

	// A stale counter without any queued message is repaired on reschedule.
	s.parent.IncrementIndirectMessageCount()
	s.parent.IncrementIndirectMessageCount()

	s.sender.RescheduleCslTx()

	assert.Equal(t, uint16(0), s.parent.IndirectMessageCount())
	assert.Empty(t, s.req.requests)
}

func TestCslSender_FrameRequestNotSynchronized(t *testing.T) {
	s := newCslTestSetup()
	s.queueMessage(8)

	txFrames := &mac.TxFrames{}
	assert.Nil(t, s.sender.HandleFrameRequest(txFrames))
}

func TestCslSender_FrameRequestTooEarly(t *testing.T) {
	s := newCslTestSetup()
	s.clk.radioNowUs = 10_000
	s.synchronize(100, 0, 2_000) // next window 8000 us away, beyond the guard
	s.queueMessage(8)

	txFrames := &mac.TxFrames{}
	assert.Nil(t, s.sender.HandleFrameRequest(txFrames))
}

func TestCslSender_FrameRequestFirstAttempt(t *testing.T) {
	s := newCslTestSetup()
	s.clk.radioNowUs = 10_000
	s.synchronize(50, 7, 9_900) // next window at 11020 us
	s.queueMessage(8)

	txFrames := &mac.TxFrames{}
	frame := s.sender.HandleFrameRequest(txFrames)

	assert.NotNil(t, frame)
	assert.False(t, frame.IsARetransmission())
	assert.False(t, frame.CsmaCaEnabled)
	assert.True(t, frame.SecurityEnabled)
	assert.Equal(t, uint32(1_120), frame.TxDelay)
	assert.Equal(t, uint32(9_900), frame.TxDelayBaseTime)
	assert.Equal(t, mac.ExtendedAddress(s.parent.ExtAddress()), frame.Addrs.Destination)
	assert.Equal(t, uint16(8), s.sender.frameContext.MessageNextOffset)
}

func TestCslSender_FrameRequestRetransmission(t *testing.T) {
	s := newCslTestSetup()
	s.clk.radioNowUs = 10_000
	s.synchronize(50, 7, 9_900)
	s.queueMessage(8)

	s.parent.IncrementEnhCslTxAttempts()
	s.parent.SetIndirectDsn(9)
	s.parent.SetIndirectFrameCounter(55)
	s.parent.SetIndirectKeyId(2)

	txFrames := &mac.TxFrames{}
	frame := s.sender.HandleFrameRequest(txFrames)

	assert.NotNil(t, frame)
	assert.True(t, frame.IsARetransmission())
	assert.Equal(t, uint8(9), frame.Sequence)
	assert.Equal(t, uint32(55), frame.FrameCounter)
	assert.Equal(t, uint8(2), frame.KeyId)
	assert.True(t, frame.IsHeaderUpdated())
}

func TestCslSender_ChildIdRequestFragmentationAborts(t *testing.T) {
	s := newCslTestSetup()
	s.clk.radioNowUs = 10_000
	s.synchronize(50, 7, 9_900)

	msg := s.queueMessage(200) // needs fragmentation
	msg.SetSubType(message.SubTypeMleChildIdRequest)

	txFrames := &mac.TxFrames{}
	assert.Nil(t, s.sender.HandleFrameRequest(txFrames))
	assert.Equal(t, msg.Length(), s.sender.frameContext.MessageNextOffset)
}

func TestCslSender_MaxRetryDetach(t *testing.T) {
	s := newCslTestSetup()
	s.synchronize(50, 10, 0)
	s.queueMessage(8)

	s.parent.IncrementEnhCslTxAttempts()
	s.parent.IncrementEnhCslTxAttempts()
	s.parent.IncrementEnhCslTxAttempts()
	assert.Equal(t, uint8(3), s.parent.EnhCslTxAttempts())

	requests := len(s.req.requests)

	frame := &mac.TxFrame{}
	frame.SetPrepared()
	s.sender.HandleSentFrame(frame, OT_ERROR_NO_ACK)

	assert.False(t, s.parent.IsEnhCslSynchronized())
	assert.Equal(t, uint8(0), s.parent.EnhCslTxAttempts())
	assert.Equal(t, uint32(1), s.fwd.IpCounters().TxFailure)
	assert.Equal(t, 0, s.fwd.SendQueue().Len())
	assert.Equal(t, 1, s.mle.detachCount)
	assert.Equal(t, requests, len(s.req.requests)) // no further reschedule
}

func TestCslSender_NoAckBelowMaxRetries(t *testing.T) {
	s := newCslTestSetup()
	s.synchronize(50, 10, 0)
	s.queueMessage(8)

	requests := len(s.req.requests)

	frame := &mac.TxFrame{Sequence: 17}
	frame.SetPrepared()
	s.sender.HandleSentFrame(frame, OT_ERROR_NO_ACK)

	assert.Equal(t, uint8(1), s.parent.EnhCslTxAttempts())
	assert.Equal(t, uint8(17), s.parent.IndirectDsn())
	assert.True(t, s.parent.IsEnhCslSynchronized())
	assert.Equal(t, 0, s.mle.detachCount)
	assert.Equal(t, requests+1, len(s.req.requests))
}

func TestCslSender_NoAckSavesSecurityState(t *testing.T) {
	s := newCslTestSetup()
	s.synchronize(50, 10, 0)
	s.queueMessage(8)

	frame := &mac.TxFrame{Sequence: 18, SecurityEnabled: true}
	frame.SetFrameCounter(90)
	frame.SetKeyId(5)
	frame.SetPrepared()
	s.sender.HandleSentFrame(frame, OT_ERROR_NO_ACK)

	assert.Equal(t, uint8(18), s.parent.IndirectDsn())
	assert.Equal(t, uint32(90), s.parent.IndirectFrameCounter())
	assert.Equal(t, uint8(5), s.parent.IndirectKeyId())
}

func TestCslSender_SuccessCompletesMessage(t *testing.T) {
	s := newCslTestSetup()
	s.synchronize(50, 10, 0)
	msg := s.queueMessage(8)
	s.sender.frameContext.MessageNextOffset = msg.Length()

	frame := &mac.TxFrame{}
	frame.SetPrepared()
	s.sender.HandleSentFrame(frame, OT_ERROR_NONE)

	assert.Nil(t, s.parent.IndirectMessage())
	assert.Equal(t, uint16(0), s.parent.IndirectMessageCount())
	assert.Equal(t, uint32(1), s.fwd.IpCounters().TxSuccess)
	assert.Equal(t, uint32(1), s.parent.LinkInfo().MessageTxSuccessCount())
	assert.Equal(t, 0, s.fwd.SendQueue().Len())
}

func TestCslSender_SuccessAdvancesFragment(t *testing.T) {
	s := newCslTestSetup()
	s.synchronize(50, 10, 0)
	msg := s.queueMessage(200) // three fragments of at most 96 bytes
	s.sender.frameContext.MessageNextOffset = 96

	frame := &mac.TxFrame{}
	frame.SetPrepared()
	s.sender.HandleSentFrame(frame, OT_ERROR_NONE)

	assert.Equal(t, msg, s.parent.IndirectMessage())
	assert.Equal(t, uint16(96), s.parent.IndirectFragmentOffset())
	assert.Equal(t, uint16(1), s.parent.IndirectMessageCount())
}

func TestCslSender_ChildIdRequestSoftFailureRequestsShorter(t *testing.T) {
	s := newCslTestSetup()
	s.synchronize(50, 10, 0)
	msg := s.queueMessage(8)
	msg.SetSubType(message.SubTypeMleChildIdRequest)
	s.sender.frameContext.MessageNextOffset = msg.Length()

	frame := &mac.TxFrame{}
	frame.SetPrepared()
	s.sender.HandleSentFrame(frame, OT_ERROR_CHANNEL_ACCESS_FAILURE)

	// The completion step runs before the shorter-child-id request.
	assert.Equal(t, 1, s.mle.shorterChildIdRequests)
	assert.Nil(t, s.parent.IndirectMessage())
	assert.Equal(t, uint32(1), s.fwd.IpCounters().TxFailure)
}

func TestCslSender_UpdateDetachesLatchedMessage(t *testing.T) {
	s := newCslTestSetup()
	s.clk.radioNowUs = 10_000
	s.synchronize(50, 7, 9_900)
	msg := s.queueMessage(8)

	// The MAC latches the frame.
	txFrames := &mac.TxFrames{}
	assert.NotNil(t, s.sender.HandleFrameRequest(txFrames))
	assert.True(t, s.sender.IsCslTxMessage(msg))

	// The current indirect message changes under the MAC's feet.
	s.parent.SetIndirectMessage(nil)
	s.sender.Update()

	// The sender waits for the tx-done callback instead of cancelling.
	frame := &mac.TxFrame{}
	frame.SetPrepared()
	s.sender.HandleSentFrame(frame, OT_ERROR_NONE)
	assert.False(t, s.sender.IsCslTxMessage(msg))
}
