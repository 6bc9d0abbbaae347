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

	"github.com/openthread/ot-link/timer"
	. "github.com/openthread/ot-link/types"
)

// Radio is the radio driver interface consumed by the MAC. Transmission is
// asynchronous: the driver later reports completion via HandleTransmitDone.
type Radio interface {
	// BusSpeed returns the host-to-radio bus speed in Hz, or 0 when the radio
	// is not behind a bus (e.g. on-SoC radio).
	BusSpeed() uint32
	Transmit(frame *TxFrame)
}

type txKind uint8

const (
	txKindNone txKind = iota
	txKindEnhCsl
	txKindWakeup
)

// Mac is the MAC scheduling front-end. Upper-layer senders request frame
// transmissions; the Mac calls back into them at frame-preparation time and
// again when the radio reports the transmit outcome. All calls run on the
// single event-loop context.
type Mac struct {
	panId      PanId
	extAddress ExtAddress
	radio      Radio

	keySequence  uint32
	keyId        uint8
	frameCounter uint32

	txFrames TxFrames
	txKind   txKind
	cslTimer *timer.Timer

	enhCslFrameRequest func(*TxFrames) *TxFrame
	enhCslSentFrame    func(*TxFrame, TxStatus)
	wakeupFrameRequest func(*TxFrames) *TxFrame
}

func New(sched *timer.Scheduler, radio Radio, panId PanId, extAddress ExtAddress) *Mac {
	m := &Mac{
		panId:      panId,
		extAddress: extAddress,
		radio:      radio,
		keyId:      1,
	}
	m.cslTimer = sched.NewTimer(m.handleEnhCslTimer)
	return m
}

func (m *Mac) PanId() PanId {
	return m.panId
}

func (m *Mac) ExtAddress() ExtAddress {
	return m.extAddress
}

func (m *Mac) KeySequence() uint32 {
	return m.keySequence
}

func (m *Mac) SetKeySequence(keySequence uint32) {
	m.keySequence = keySequence
}

// SetEnhCslCallbacks registers the enhanced-CSL sender's frame-request and
// sent-frame callbacks.
func (m *Mac) SetEnhCslCallbacks(frameRequest func(*TxFrames) *TxFrame, sentFrame func(*TxFrame, TxStatus)) {
	m.enhCslFrameRequest = frameRequest
	m.enhCslSentFrame = sentFrame
}

// SetWakeupFrameRequest registers the wake-up tx scheduler's frame callback.
func (m *Mac) SetWakeupFrameRequest(frameRequest func(*TxFrames) *TxFrame) {
	m.wakeupFrameRequest = frameRequest
}

// RequestEnhCslFrameTransmission asks the MAC to start an enhanced CSL frame
// transmit operation after delayMs milliseconds.
func (m *Mac) RequestEnhCslFrameTransmission(delayMs uint32) {
	m.cslTimer.Start(delayMs)
}

func (m *Mac) handleEnhCslTimer() {
	if m.enhCslFrameRequest == nil {
		return
	}

	frame := m.enhCslFrameRequest(&m.txFrames)
	if frame == nil {
		// The operation is aborted; report it so the sender can release a
		// latched message and reschedule.
		if m.enhCslSentFrame != nil {
			m.enhCslSentFrame(m.txFrames.GetTxFrame(), OT_ERROR_ABORT)
		}
		return
	}

	m.txKind = txKindEnhCsl
	m.transmit(frame)
}

// RequestWakeupFrameTransmission asks the MAC to transmit the next frame of a
// wake-up sequence; the frame is produced on demand by the registered
// callback.
func (m *Mac) RequestWakeupFrameTransmission() {
	if m.wakeupFrameRequest == nil {
		return
	}

	frame := m.wakeupFrameRequest(&m.txFrames)
	if frame == nil {
		return
	}

	m.txKind = txKindWakeup
	m.transmit(frame)
}

// HandleTransmitDone is called by the radio driver when a transmit operation
// completes.
func (m *Mac) HandleTransmitDone(frame *TxFrame, status TxStatus) {
	kind := m.txKind
	m.txKind = txKindNone

	switch kind {
	case txKindEnhCsl:
		if m.enhCslSentFrame != nil {
			m.enhCslSentFrame(frame, status)
		}
	case txKindWakeup:
		// The next wake-up frame was already armed at preparation time.
	default:
	}
}

func (m *Mac) transmit(frame *TxFrame) {
	m.processTransmitSecurity(frame)
	m.radio.Transmit(frame)
}

// processTransmitSecurity assigns a fresh frame counter and key id unless the
// sender preset them for a retransmission.
func (m *Mac) processTransmitSecurity(frame *TxFrame) {
	if !frame.SecurityEnabled || frame.IsHeaderUpdated() {
		return
	}

	frame.FrameCounter = m.frameCounter
	m.frameCounter++
	frame.KeyId = m.keyId
	binary.BigEndian.PutUint32(frame.KeySource[:], m.keySequence)
	frame.SetHeaderUpdated(true)
}
