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

package sim

import (
	"github.com/openthread/ot-link/energy"
	"github.com/openthread/ot-link/logger"
	"github.com/openthread/ot-link/mac"
	"github.com/openthread/ot-link/pcap"
	"github.com/openthread/ot-link/timer"
	. "github.com/openthread/ot-link/types"
	"github.com/openthread/ot-link/wpan"
)

// nodeClock bridges the shared scheduler clock to a per-node radio clock
// with a fixed offset, modeling the drift-free offset between the host MCU
// and the radio co-processor.
type nodeClock struct {
	sched         *timer.Scheduler
	radioOffsetUs uint64
}

var _ timer.Clock = (*nodeClock)(nil)

func (c *nodeClock) Now() uint64 {
	return c.sched.Now()
}

func (c *nodeClock) RadioNow() uint64 {
	return c.sched.Now() + c.radioOffsetUs
}

func (c *nodeClock) NowMs() uint32 {
	return uint32(c.sched.Now() / 1000)
}

func (c *nodeClock) NowSecs() uint32 {
	return uint32(c.sched.Now() / 1000000)
}

// simRadio is the virtual radio of one node, delivering frames to the peer
// node over a lossless medium with an optional scripted drop count.
type simRadio struct {
	sim        *Simulation
	node       *Node
	busSpeedHz uint32

	txTimer      *timer.Timer
	pendingFrame *mac.TxFrame
}

var _ mac.Radio = (*simRadio)(nil)

func newSimRadio(sim *Simulation, node *Node, busSpeedHz uint32) *simRadio {
	r := &simRadio{
		sim:        sim,
		node:       node,
		busSpeedHz: busSpeedHz,
	}
	r.txTimer = sim.sched.NewTimer(r.handleTxDone)
	return r
}

func (r *simRadio) BusSpeed() uint32 {
	return r.busSpeedHz
}

func (r *simRadio) Transmit(frame *mac.TxFrame) {
	if r.pendingFrame != nil {
		// The radio is still busy with the previous frame.
		r.node.Mac.HandleTransmitDone(frame, OT_ERROR_CHANNEL_ACCESS_FAILURE)
		return
	}
	r.pendingFrame = frame

	txStart := r.txStartTime(frame)
	airTimeUs := uint64(PhyHeaderLenBytes+len(frame.Bytes())) * uint64(OctetDurationUs)

	r.sim.energy.SetRadioState(r.node.Id, energy.RadioTx, txStart)
	r.txTimer.FireAt(txStart + airTimeUs)
}

// txStartTime converts the frame's radio-time tx delay to scheduler time.
func (r *simRadio) txStartTime(frame *mac.TxFrame) uint64 {
	now := r.sim.sched.Now()

	if frame.TxDelay == 0 {
		return now
	}

	// Only the LSB part of the base time is carried in the frame.
	radioTarget := uint64(frame.TxDelayBaseTime) + uint64(frame.TxDelay)
	if radioTarget < r.node.clock.radioOffsetUs {
		return now
	}
	schedTarget := radioTarget - r.node.clock.radioOffsetUs
	if schedTarget < now {
		return now
	}
	return schedTarget
}

func (r *simRadio) handleTxDone() {
	frame := r.pendingFrame
	r.pendingFrame = nil
	logger.AssertNotNil(frame)

	now := r.sim.sched.Now()
	r.sim.energy.SetRadioState(r.node.Id, r.node.idleRadioState(), now)

	dropped := r.sim.takeDrop()
	status := OT_ERROR_NONE
	if dropped && frame.AckRequest {
		status = OT_ERROR_NO_ACK
	}

	data := frame.Bytes()
	if r.sim.pcapFile != nil {
		logger.PanicfIfError(r.sim.pcapFile.AppendFrame(pcap.Frame{Timestamp: now, Data: data}),
			"appending frame to PCAP file")
	}
	if logger.GetLevel() >= logger.DebugLevel {
		logger.Debugf("node %d tx: %s", r.node.Id, wpan.Dissect(data))
	}

	if !dropped {
		r.sim.deliverFrame(r.node, frame)
	}

	r.node.Mac.HandleTransmitDone(frame, status)
	r.node.handleTxDone(frame, status)
}
