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
	"github.com/openthread/ot-link/logger"
	"github.com/openthread/ot-link/mac"
	"github.com/openthread/ot-link/message"
	. "github.com/openthread/ot-link/types"
)

// maxFramePayloadBytes is the payload capacity of a data frame after MHR,
// security and MFR overhead; longer messages fragment across frames.
const maxFramePayloadBytes = 96

// IpCounters counts IPv6 message transmit outcomes.
type IpCounters struct {
	TxSuccess uint32
	TxFailure uint32
}

// MeshForwarder owns the send queue and the per-message transmit
// disposition. Only the parts consumed by the link-layer components are
// modeled here; routing and receive-side forwarding are external.
type MeshForwarder struct {
	pool       *message.Pool
	sendQueue  *message.Queue
	ipCounters IpCounters

	panId        PanId
	extAddress   ExtAddress
	rxOnWhenIdle bool
	dsn          uint8

	supervisor   *ChildSupervisor
	enhCslSender *EnhCslSender
}

func NewMeshForwarder(pool *message.Pool, panId PanId, extAddress ExtAddress) *MeshForwarder {
	return &MeshForwarder{
		pool:         pool,
		sendQueue:    message.NewQueue(),
		panId:        panId,
		extAddress:   extAddress,
		rxOnWhenIdle: true,
	}
}

func (f *MeshForwarder) SetChildSupervisor(supervisor *ChildSupervisor) {
	f.supervisor = supervisor
}

func (f *MeshForwarder) SetEnhCslSender(sender *EnhCslSender) {
	f.enhCslSender = sender
}

func (f *MeshForwarder) SendQueue() *message.Queue {
	return f.sendQueue
}

func (f *MeshForwarder) IpCounters() IpCounters {
	return f.ipCounters
}

func (f *MeshForwarder) GetRxOnWhenIdle() bool {
	return f.rxOnWhenIdle
}

func (f *MeshForwarder) SetRxOnWhenIdle(rxOnWhenIdle bool) {
	f.rxOnWhenIdle = rxOnWhenIdle
}

// SendMessage takes ownership of the message and enqueues it for
// transmission. A message not marked for direct transmission is handed to
// the enhanced CSL sender for delivery to the CSL peer.
func (f *MeshForwarder) SendMessage(msg *message.Message) {
	f.sendQueue.Enqueue(msg)

	if !msg.IsDirectTransmission() && f.enhCslSender != nil {
		if parent := f.enhCslSender.GetParent(); parent != nil {
			f.enhCslSender.AddMessageForCslPeer(msg, parent)
		}
	}
}

// RemoveMessageIfNoPendingTx drops the message from the send queue and frees
// it, unless a transmission still references it.
func (f *MeshForwarder) RemoveMessageIfNoPendingTx(msg *message.Message) {
	if msg.IsDirectTransmission() {
		return
	}
	if f.enhCslSender != nil && f.enhCslSender.IsCslTxMessage(msg) {
		// The MAC has latched this message for an in-flight CSL tx.
		return
	}
	if !f.sendQueue.Contains(msg) {
		return
	}

	f.sendQueue.Dequeue(msg)
	msg.Free()
}

// GetMacSourceAddress resolves the MAC source address for a message.
func (f *MeshForwarder) GetMacSourceAddress(msg *message.Message) mac.Address {
	return mac.ExtendedAddress(f.extAddress)
}

// GetMacDestinationAddress resolves the MAC destination for a message with a
// link-local IPv6 destination.
func (f *MeshForwarder) GetMacDestinationAddress(msg *message.Message) mac.Address {
	return mac.ExtendedAddress(msg.DestExtAddress())
}

// PrepareDataFrameNoMeshHeader fills frame with the next fragment of msg,
// starting at the message offset, and returns the offset of the first byte
// not yet transmitted.
func (f *MeshForwarder) PrepareDataFrameNoMeshHeader(frame *mac.TxFrame, msg *message.Message, macAddrs mac.Addresses) uint16 {
	frame.Type = mac.FrameTypeData
	frame.PanId = f.panId
	frame.Addrs = macAddrs
	frame.AckRequest = true
	frame.SecurityEnabled = msg.IsLinkSecurityEnabled()
	frame.Sequence = f.dsn
	f.dsn++

	remaining := msg.Length() - msg.Offset()
	n := remaining
	if n > maxFramePayloadBytes {
		n = maxFramePayloadBytes
	}
	payload := make([]byte, n)
	msg.Read(msg.Offset(), payload)
	frame.Payload = payload
	frame.SetPrepared()

	return msg.Offset() + n
}

// LogMessage logs a message-level transmit event.
func (f *MeshForwarder) LogMessage(action string, msg *message.Message, status TxStatus, macDest *mac.Address) {
	logger.Debugf("%s message, type:%d, len:%d, to:%s, status:%s",
		action, msg.Type(), msg.Length(), macDest, TxStatusString(status))
}
