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
	"github.com/openthread/ot-link/timer"
	. "github.com/openthread/ot-link/types"
)

// Frame lengths including SHR.
const (
	wakeupFrameLength   uint32 = 54
	parentRequestLength uint32 = 78
	// Determined experimentally so that a wake-up frame is received by the
	// radio co-processor early enough to be scheduled on time. It is not
	// exactly the length of data sent over the RCP transport, such as USB.
	wakeupFrameDataLength uint32 = 100
)

// WakeupTxScheduler emits a bounded wake-up frame burst at a precise
// microsecond cadence, used by a CSL central to bring a deep-sleep
// peripheral onto a CSL schedule. At most one sequence is active at a time.
type WakeupTxScheduler struct {
	mac   *mac.Mac
	clock timer.Clock

	target               ExtAddress
	txTimeUs             uint64 // time of the next tx
	txEndTimeUs          uint64 // time when the wake-up sequence is over
	txRequestAheadTimeUs uint32 // how much ahead the tx MAC operation is requested
	intervalUs           uint32 // interval between consecutive wake-up frames
	timer                *timer.Timer
	sequenceOngoing      bool

	connectionRetryInterval uint8
	connectionRetryCount    uint8
}

func NewWakeupTxScheduler(sched *timer.Scheduler, clock timer.Clock, m *mac.Mac,
	busSpeedHz uint32, cfg config.Config) *WakeupTxScheduler {
	s := &WakeupTxScheduler{
		mac:                     m,
		clock:                   clock,
		txRequestAheadTimeUs:    calcTxRequestAheadTimeUs(busSpeedHz, cfg.CslRequestAheadUs),
		connectionRetryInterval: cfg.ConnectionRetryInterval,
		connectionRetryCount:    cfg.ConnectionRetryCount,
	}
	s.timer = sched.NewTimer(m.RequestWakeupFrameTransmission)
	m.SetWakeupFrameRequest(s.PrepareWakeupFrame)
	return s
}

func calcTxRequestAheadTimeUs(busSpeedHz uint32, requestAheadUs uint32) uint32 {
	aheadTimeUs := requestAheadUs

	if busSpeedHz > 0 {
		aheadTimeUs += (wakeupFrameDataLength*8*1000000 + busSpeedHz - 1) / busSpeedHz
	}

	return aheadTimeUs
}

// WakeUp initiates the wake-up sequence to the target device, sending
// wake-up frames every intervalUs for durationMs.
func (s *WakeupTxScheduler) WakeUp(target ExtAddress, intervalUs uint32, durationMs uint32) error {
	if s.sequenceOngoing {
		return ErrInvalidState
	}

	nowUs := s.clock.Now()
	s.target = target
	s.txTimeUs = nowUs + uint64(s.txRequestAheadTimeUs)
	s.txEndTimeUs = s.txTimeUs + uint64(durationMs)*1000 + uint64(intervalUs)
	s.intervalUs = intervalUs
	s.sequenceOngoing = true

	logger.Infof("Started wake-up sequence to %s", ExtAddressString(target))

	s.scheduleNext(true)

	return nil
}

// PrepareWakeupFrame is called by the MAC when a wake-up frame is about to
// be sent.
func (s *WakeupTxScheduler) PrepareWakeupFrame(txFrames *mac.TxFrames) *mac.TxFrame {
	if !s.sequenceOngoing {
		return nil
	}

	target := mac.ExtendedAddress(s.target)
	source := mac.ExtendedAddress(s.mac.ExtAddress())
	// Bridge the scheduler clock to the radio clock; the two drift
	// negligibly over the few-second burst.
	radioTxUs := s.clock.RadioNow() + (s.txTimeUs - s.clock.Now())

	frame := txFrames.GetTxFrame()
	if frame.GenerateWakeupFrame(s.mac.PanId(), target, source) != nil {
		return nil
	}
	frame.TxDelayBaseTime = 0
	frame.TxDelay = uint32(radioTxUs)
	frame.CsmaCaEnabled = false
	frame.MaxCsmaBackoffs = 0
	frame.MaxFrameRetries = 0

	// Rendezvous Time is the time between the end of transmission of a
	// wake-up frame and the start of transmission of the first payload
	// frame, in units of 10 symbols. Align the expected reception of the
	// Parent Request in the middle of the next empty slot between wake-up
	// frames.
	rendezvousTimeUs := (s.intervalUs - (wakeupFrameLength+parentRequestLength)*OctetDurationUs) / 2
	rendezvousTimeUs += s.intervalUs
	frame.RendezvousTime.RendezvousTime = uint16(rendezvousTimeUs / UsPerTenSymbols)

	frame.Connection.RetryInterval = s.connectionRetryInterval
	frame.Connection.RetryCount = s.connectionRetryCount

	// Arm the next timer right away instead of waiting for the transmission
	// completion, to keep up with the high rate of wake-up frames in the RCP
	// architecture.
	s.scheduleNext(false)

	return frame
}

func (s *WakeupTxScheduler) scheduleNext(isFirstFrame bool) {
	if !isFirstFrame {
		// Advance to the time of the next wake-up frame, but make sure we
		// are not late already.
		next := s.txTimeUs + uint64(s.intervalUs)
		if minTime := s.clock.Now() + uint64(s.txRequestAheadTimeUs); next < minTime {
			next = minTime
		}
		s.txTimeUs = next
	}

	// Exiting early when the wake-up sequence is over is sufficient: this
	// method runs either at the beginning of the sequence or right after a
	// wake-up frame was prepared, so no frame is scheduled at this moment.
	if s.txTimeUs >= s.txEndTimeUs {
		s.sequenceOngoing = false
		logger.Infof("Stopped wake-up sequence")
		return
	}

	s.timer.FireAt(s.txTimeUs - uint64(s.txRequestAheadTimeUs))
}

// Stop cancels the wake-up sequence. A frame already dispatched to the radio
// completes harmlessly.
func (s *WakeupTxScheduler) Stop() {
	s.sequenceOngoing = false
	s.timer.Stop()
}

// IsSequenceOngoing reports whether a wake-up sequence is in progress.
func (s *WakeupTxScheduler) IsSequenceOngoing() bool {
	return s.sequenceOngoing
}

// ConnectionWindowUs returns the amount of time this device waits for a link
// establishment message after sending the last wake-up frame.
func (s *WakeupTxScheduler) ConnectionWindowUs() uint32 {
	return s.intervalUs * uint32(s.connectionRetryInterval) * uint32(s.connectionRetryCount)
}

// TxEndTime returns the end of the wake-up sequence time.
func (s *WakeupTxScheduler) TxEndTime() uint64 {
	return s.txEndTimeUs
}
