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
	"github.com/openthread/ot-link/config"
	"github.com/openthread/ot-link/logger"
	"github.com/openthread/ot-link/mac"
	"github.com/openthread/ot-link/message"
	"github.com/openthread/ot-link/timer"
	. "github.com/openthread/ot-link/types"
)

// framePreparationGuardIntervalUs is the guard time added when checking the
// remaining delay while preparing a CSL frame for tx.
const framePreparationGuardIntervalUs = 1500

// FrameContext carries per-frame scheduling state between the frame-request
// and sent-frame callbacks.
type FrameContext struct {
	MessageNextOffset uint16
}

// CslFrameRequester is the MAC operation consumed by the sender.
type CslFrameRequester interface {
	RequestEnhCslFrameTransmission(delayMs uint32)
}

// EnhCslSender delivers queued indirect messages to a CSL-synchronized
// parent within its scheduled receive windows, with retry, frame-counter and
// key-id carryover across attempts.
//
// It assumes a single enhanced-CSL synchronized neighbor: any message in the
// send queue not marked for direct transmission is presumed to belong to it.
type EnhCslSender struct {
	mle       Mle
	forwarder *MeshForwarder
	mac       CslFrameRequester
	clock     timer.Clock

	cslTxNeigh             *Neighbor
	cslTxMessage           *message.Message
	cslFrameRequestAheadUs uint32
	frameContext           FrameContext
}

func NewEnhCslSender(mle Mle, forwarder *MeshForwarder, macRequester CslFrameRequester,
	clock timer.Clock, busSpeedHz uint32, cfg config.Config) *EnhCslSender {
	s := &EnhCslSender{
		mle:       mle,
		forwarder: forwarder,
		mac:       macRequester,
		clock:     clock,
	}
	s.initFrameRequestAhead(busSpeedHz, cfg.CslRequestAheadUs)
	forwarder.SetEnhCslSender(s)
	return s
}

func (s *EnhCslSender) initFrameRequestAhead(busSpeedHz uint32, requestAheadUs uint32) {
	// The longest frame on the bus is 127 bytes with some metadata; use 150
	// bytes for the bus tx time estimation.
	busTxTimeUs := uint32(0)
	if busSpeedHz > 0 {
		busTxTimeUs = (150*8*1000000 + busSpeedHz - 1) / busSpeedHz
	}

	s.cslFrameRequestAheadUs = requestAheadUs + busTxTimeUs
}

// GetParent returns the current parent or, while a CSL central is tracked,
// the parent candidate.
func (s *EnhCslSender) GetParent() *Neighbor {
	if parent := s.mle.Parent(); parent != nil && parent.IsStateValid() {
		return parent
	}
	if s.mle.IsCslCentralPresent() {
		return s.mle.ParentCandidate()
	}
	return nil
}

// IsCslTxMessage reports whether msg is latched for an in-flight CSL tx.
func (s *EnhCslSender) IsCslTxMessage(msg *message.Message) bool {
	return msg != nil && msg == s.cslTxMessage
}

// AddMessageForCslPeer adds a message for enhanced CSL transmission to the
// neighbor.
func (s *EnhCslSender) AddMessageForCslPeer(msg *message.Message, neighbor *Neighbor) error {
	if neighbor == nil {
		return ErrInvalidState
	}

	if neighbor.IndirectMessage() == nil {
		neighbor.SetIndirectMessage(msg)
		neighbor.SetIndirectFragmentOffset(0)
	}
	neighbor.IncrementIndirectMessageCount()
	s.RescheduleCslTx()

	return nil
}

// ClearAllMessagesForCslPeer removes all added messages for the neighbor.
func (s *EnhCslSender) ClearAllMessagesForCslPeer(neighbor *Neighbor) {
	if neighbor.IndirectMessageCount() == 0 {
		return
	}

	for _, msg := range s.forwarder.SendQueue().Messages() {
		s.forwarder.RemoveMessageIfNoPendingTx(msg)
	}

	neighbor.SetIndirectMessage(nil)
	neighbor.ResetIndirectMessageCount()
	neighbor.ResetEnhCslTxAttempts()

	s.Update()
}

// Update re-evaluates the next CSL transmission. When the MAC has already
// latched a frame for a message that is no longer current, the sender
// detaches and lets the tx-done callback drive the next reschedule; the MAC
// operation is never cancelled synchronously.
func (s *EnhCslSender) Update() {
	if s.cslTxMessage == nil {
		s.RescheduleCslTx()
	} else if s.cslTxNeigh != nil && s.cslTxNeigh.IndirectMessage() != s.cslTxMessage {
		s.cslTxNeigh = nil
		s.frameContext.MessageNextOffset = 0
	}
}

// RescheduleCslTx binds the next indirect message and requests a CSL frame
// transmission into the peer's next receive window.
func (s *EnhCslSender) RescheduleCslTx() {
	s.cslTxNeigh = s.GetParent()

	if s.cslTxNeigh == nil || s.cslTxNeigh.IndirectMessageCount() == 0 {
		return
	}

	if s.cslTxNeigh.IndirectMessage() == nil {
		for _, msg := range s.forwarder.SendQueue().Messages() {
			if !msg.IsDirectTransmission() {
				s.cslTxNeigh.SetIndirectMessage(msg)
				s.cslTxNeigh.SetIndirectFragmentOffset(0)
				break
			}
		}
	}

	// If no indirect message could be found despite the positive indirect
	// message counter, then messages were removed from the send queue without
	// notifying the enhanced CSL sender. Until such a notification exists,
	// reset the counter to recover.
	if s.cslTxNeigh.IndirectMessage() == nil {
		s.cslTxNeigh.ResetIndirectMessageCount()
		return
	}

	// The slot arithmetic needs a nonzero CSL period; an unsynchronized peer
	// keeps its messages bound until Update runs after synchronization.
	if !s.cslTxNeigh.IsEnhCslSynchronized() {
		return
	}

	var cslTxDelay uint32
	delay := s.getNextCslTransmissionDelay(s.cslTxNeigh, &cslTxDelay, s.cslFrameRequestAheadUs)
	s.mac.RequestEnhCslFrameTransmission(delay / 1000)
}

func (s *EnhCslSender) getNextCslTransmissionDelay(neighbor *Neighbor, delayFromLastRx *uint32, aheadUs uint32) uint32 {
	radioNow := s.clock.RadioNow()
	periodUs := uint64(neighbor.EnhCslPeriod()) * uint64(UsPerTenSymbols)
	firstTxWindow := neighbor.EnhLastRxTimestamp() + uint64(neighbor.EnhCslPhase())*uint64(UsPerTenSymbols)
	nextTxWindow := radioNow - radioNow%periodUs + firstTxWindow%periodUs

	for nextTxWindow < radioNow+uint64(aheadUs) {
		nextTxWindow += periodUs
	}

	*delayFromLastRx = uint32(nextTxWindow - neighbor.EnhLastRxTimestamp())

	return uint32(nextTxWindow - radioNow - uint64(aheadUs))
}

func (s *EnhCslSender) prepareDataFrame(frame *mac.TxFrame, neighbor *Neighbor, msg *message.Message) uint16 {
	var macAddrs mac.Addresses

	// Determine the MAC source and destination addresses.
	macAddrs.Source = s.forwarder.GetMacSourceAddress(msg)
	if msg.IsDestLinkLocal() {
		macAddrs.Destination = s.forwarder.GetMacDestinationAddress(msg)
	} else {
		macAddrs.Destination = mac.ExtendedAddress(neighbor.ExtAddress())
	}

	// Prepare the data frame from the neighbor's indirect fragment offset.
	directTxOffset := msg.Offset()
	msg.SetOffset(neighbor.IndirectFragmentOffset())

	nextOffset := s.forwarder.PrepareDataFrameNoMeshHeader(frame, msg, macAddrs)

	msg.SetOffset(directTxOffset)

	// Intentionally not setting the frame pending bit even if more messages
	// are queued.

	return nextOffset
}

func (s *EnhCslSender) prepareFrameForNeighbor(frame *mac.TxFrame, context *FrameContext, neighbor *Neighbor) error {
	msg := neighbor.IndirectMessage()
	if msg == nil {
		return ErrInvalidState
	}

	switch msg.Type() {
	case message.TypeIp6:
		context.MessageNextOffset = s.prepareDataFrame(frame, neighbor, msg)

		if msg.SubType() == message.SubTypeMleChildIdRequest && msg.IsLinkSecurityEnabled() &&
			context.MessageNextOffset < msg.Length() {
			logger.Notef("Child ID Request requires fragmentation, aborting tx")
			context.MessageNextOffset = msg.Length()
			return ErrAbort
		}

	default:
		return ErrNotImplemented
	}

	return nil
}

// HandleFrameRequest is called by the MAC when the CSL frame transmit
// operation is due; it returns the frame to transmit, or nil.
func (s *EnhCslSender) HandleFrameRequest(txFrames *mac.TxFrames) *mac.TxFrame {
	if s.cslTxNeigh == nil || !s.cslTxNeigh.IsEnhCslSynchronized() {
		return nil
	}

	frame := txFrames.GetTxFrame()

	if s.prepareFrameForNeighbor(frame, &s.frameContext, s.cslTxNeigh) != nil {
		return nil
	}
	s.cslTxMessage = s.cslTxNeigh.IndirectMessage()
	if s.cslTxMessage == nil {
		return nil
	}

	if s.cslTxNeigh.EnhCslTxAttempts() > 0 {
		// A retransmission of an indirect frame to a sleepy neighbor must use
		// the same frame counter, key id, and data sequence number as the
		// previous attempt.
		frame.SetIsARetransmission(true)
		frame.Sequence = s.cslTxNeigh.IndirectDsn()

		// A frame containing a CSL IE must be refreshed and re-secured with a
		// new frame counter. See Thread 1.3.0, 3.2.6.3.7 CSL Retransmissions.
		if frame.SecurityEnabled && !frame.CslIePresent {
			frame.SetFrameCounter(s.cslTxNeigh.IndirectFrameCounter())
			frame.SetKeyId(s.cslTxNeigh.IndirectKeyId())
		}
	} else {
		frame.SetIsARetransmission(false)
	}

	// Use zero as aheadUs so a CSL slot is not missed when the MAC operation
	// runs slightly delayed.
	var txDelay uint32
	delay := s.getNextCslTransmissionDelay(s.cslTxNeigh, &txDelay, 0)
	if delay > s.cslFrameRequestAheadUs+framePreparationGuardIntervalUs {
		return nil
	}

	frame.TxDelay = txDelay
	frame.TxDelayBaseTime = uint32(s.cslTxNeigh.EnhLastRxTimestamp()) // only the LSB part of the time is required
	frame.CsmaCaEnabled = false

	return frame
}

// HandleSentFrame is called by the MAC when the CSL frame transmit operation
// completed with the given status.
func (s *EnhCslSender) HandleSentFrame(frame *mac.TxFrame, status TxStatus) {
	neighbor := s.cslTxNeigh

	s.cslTxMessage = nil

	if neighbor == nil {
		// The sender detached from this tx (see Update); the result is no
		// longer of interest, so continue with the current indirect message.
		s.RescheduleCslTx()
		return
	}

	s.cslTxNeigh = nil
	s.handleSentFrame(frame, status, neighbor)
}

func (s *EnhCslSender) handleSentFrame(frame *mac.TxFrame, status TxStatus, neighbor *Neighbor) {
	switch status {
	case OT_ERROR_NONE:
		neighbor.ResetEnhCslTxAttempts()

	case OT_ERROR_NO_ACK:
		logger.AssertTrue(!frame.SecurityEnabled || frame.IsHeaderUpdated())

		neighbor.IncrementEnhCslTxAttempts()
		logger.Infof("CSL tx to neighbor %04x failed, attempt %d/%d", neighbor.Rloc16(),
			neighbor.EnhCslTxAttempts(), neighbor.EnhCslMaxTxAttempts())

		if neighbor.EnhCslTxAttempts() >= neighbor.EnhCslMaxTxAttempts() {
			// CSL transmission attempts reached max; consider the neighbor
			// out of sync.
			neighbor.SetEnhCslSynchronized(false)
			neighbor.ResetEnhCslTxAttempts()

			if neighbor.IndirectMessage().Type() == message.TypeIp6 {
				s.forwarder.ipCounters.TxFailure++
			}

			s.forwarder.RemoveMessageIfNoPendingTx(neighbor.IndirectMessage())
			s.mle.BecomeDetached()
			return
		}

		s.handleSoftTxFailure(frame, status, neighbor)
		return

	case OT_ERROR_CHANNEL_ACCESS_FAILURE, OT_ERROR_ABORT:
		s.handleSoftTxFailure(frame, status, neighbor)
		return

	default:
		logger.Panicf("unexpected csl tx status: %d", status)
		return
	}

	// Only reached on success.
	s.handleSentFrameToNeighbor(frame, &s.frameContext, OT_ERROR_NONE, neighbor)
}

// handleSoftTxFailure records the retry state and schedules the next CSL tx.
// The message stays bound for the next attempt, except a link-secured MLE
// Child ID Request, which is completed as failed and replaced by a request
// for a shorter Child ID Request.
func (s *EnhCslSender) handleSoftTxFailure(frame *mac.TxFrame, status TxStatus, neighbor *Neighbor) {
	if !frame.IsEmpty() {
		neighbor.SetIndirectDsn(frame.Sequence)

		if frame.SecurityEnabled && frame.IsHeaderUpdated() {
			neighbor.SetIndirectFrameCounter(frame.FrameCounter)
			neighbor.SetIndirectKeyId(frame.KeyId)
		}
	}

	msg := neighbor.IndirectMessage()
	if msg != nil && msg.Type() == message.TypeIp6 &&
		msg.SubType() == message.SubTypeMleChildIdRequest && msg.IsLinkSecurityEnabled() {
		s.handleSentFrameToNeighbor(frame, &s.frameContext, status, neighbor)
		s.mle.RequestShorterChildIdRequest()
	}

	s.RescheduleCslTx()
}

func (s *EnhCslSender) handleSentFrameToNeighbor(frame *mac.TxFrame, context *FrameContext,
	status TxStatus, neighbor *Neighbor) {
	msg := neighbor.IndirectMessage()
	nextOffset := context.MessageNextOffset

	if msg != nil && nextOffset < msg.Length() {
		neighbor.SetIndirectFragmentOffset(nextOffset)
		s.RescheduleCslTx()
		return
	}

	if msg != nil {
		// The indirect tx of this message to the neighbor is done.
		neighbor.SetIndirectMessage(nil)
		neighbor.LinkInfo().AddMessageTxStatus(status == OT_ERROR_NONE)
		logger.AssertTrue(neighbor.IndirectMessageCount() > 0)
		neighbor.DecrementIndirectMessageCount()

		if !frame.IsEmpty() {
			macDest := frame.Addrs.Destination
			s.forwarder.LogMessage("transmit", msg, status, &macDest)
		}

		if msg.Type() == message.TypeIp6 {
			if status == OT_ERROR_NONE {
				s.forwarder.ipCounters.TxSuccess++
			} else {
				s.forwarder.ipCounters.TxFailure++
			}
		}

		s.forwarder.RemoveMessageIfNoPendingTx(msg)
	}

	s.RescheduleCslTx()
}
