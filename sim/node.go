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
	"github.com/openthread/ot-link/message"
	"github.com/openthread/ot-link/prng"
	"github.com/openthread/ot-link/thread"
	"github.com/openthread/ot-link/timer"
	. "github.com/openthread/ot-link/types"
)

const (
	simBusSpeedHz      = 1000000 // 1 MHz SPI to the radio co-processor
	simMessagePoolSize = 64
	maxClockOffsetUs   = 100000

	// CSL schedule of the central's sampled listening, announced to the
	// peripheral at attach time.
	simCslPeriod uint16 = 100 // 16 ms in units of 10 symbols
	simCslPhase  uint16 = 20
)

// Node is one simulated device: a full wiring of the link-layer components
// around a virtual radio. A central node carries the supervisor and the
// wake-up scheduler; a peripheral node carries the listener, the enhanced
// CSL sender and the wake-up coordinator table.
type Node struct {
	Id      NodeId
	ExtAddr ExtAddress
	rloc16  Rloc16

	sim    *Simulation
	clock  *nodeClock
	radio  *simRadio
	sleepy bool

	Mac       *mac.Mac
	Pool      *message.Pool
	Forwarder *thread.MeshForwarder
	Mle       *mleModel
	Notifier  *thread.Notifier

	// central side
	ChildTable      *thread.ChildTable
	Supervisor      *thread.ChildSupervisor
	WakeupScheduler *thread.WakeupTxScheduler
	peripheralChild *thread.Child
	downlinkTimer   *timer.Timer
	pendingDownlink *message.Message

	// peripheral side
	Listener   *thread.SupervisionListener
	CslSender  *thread.EnhCslSender
	CoordTable *mac.WakeupCoordTable
	Parent     *thread.Neighbor
}

func newNode(s *Simulation, id NodeId, extAddr ExtAddress, rloc16 Rloc16) *Node {
	n := &Node{
		Id:      id,
		ExtAddr: extAddr,
		rloc16:  rloc16,
		sim:     s,
		clock:   &nodeClock{sched: s.sched, radioOffsetUs: prng.NewRadioClockOffset(maxClockOffsetUs)},
	}
	n.radio = newSimRadio(s, n, simBusSpeedHz)
	n.Mac = mac.New(s.sched, n.radio, s.panId, extAddr)
	n.Pool = message.NewPool(simMessagePoolSize)
	n.Forwarder = thread.NewMeshForwarder(n.Pool, s.panId, extAddr)
	n.Mle = &mleModel{}
	n.Notifier = thread.NewNotifier()
	s.energy.AddNode(id, s.sched.Now())
	return n
}

// newCentralNode wires an FTD acting as CSL central: child supervision plus
// the wake-up tx scheduler.
func newCentralNode(s *Simulation, id NodeId, extAddr ExtAddress, rloc16 Rloc16) *Node {
	n := newNode(s, id, extAddr, rloc16)
	n.sleepy = false
	n.Mle.role = DeviceRoleRouter

	n.ChildTable = thread.NewChildTable()
	n.Supervisor = thread.NewChildSupervisor(s.sched, n.Mle, n.ChildTable, n.Forwarder, n.Pool)
	n.Forwarder.SetChildSupervisor(n.Supervisor)
	n.Notifier.RegisterHandler(n.Supervisor.HandleNotifierEvents)
	n.WakeupScheduler = thread.NewWakeupTxScheduler(s.sched, n.clock, n.Mac, n.radio.BusSpeed(), s.cfg)

	n.downlinkTimer = s.sched.NewTimer(n.handleDownlinkTimer)
	n.downlinkTimer.Start(10)

	return n
}

// newPeripheralNode wires a sleepy end device acting as CSL peripheral: the
// supervision listener, the enhanced CSL sender, and the anti-replay table.
func newPeripheralNode(s *Simulation, id NodeId, extAddr ExtAddress, rloc16 Rloc16,
	centralExtAddr ExtAddress, centralRloc16 Rloc16) *Node {
	n := newNode(s, id, extAddr, rloc16)
	n.sleepy = true
	n.Forwarder.SetRxOnWhenIdle(false)
	n.Mle.role = DeviceRoleChild

	n.Parent = thread.NewNeighbor(centralExtAddr, centralRloc16, s.cfg.EnhCslTxAttempts)
	n.Parent.SetState(thread.NeighborStateValid)
	n.Mle.parent = n.Parent
	n.Mle.parentCandidate = n.Parent
	n.Mle.onBecomeDetached = func() {
		n.Parent.SetEnhCslSynchronized(false)
		n.Mle.cslCentralPresent = false
	}

	n.Listener = thread.NewSupervisionListener(s.sched, n.Mle, n.Mle, n.Forwarder, s.cfg)
	n.CslSender = thread.NewEnhCslSender(n.Mle, n.Forwarder, n.Mac, n.clock, n.radio.BusSpeed(), s.cfg)
	n.Mac.SetEnhCslCallbacks(n.CslSender.HandleFrameRequest, n.CslSender.HandleSentFrame)
	n.CoordTable = mac.NewWakeupCoordTable(n.clock, s.cfg.MaxWakeupCoords, s.cfg.WakeupCoordEvictAgeSecs)

	n.Listener.Start()

	return n
}

func (n *Node) idleRadioState() energy.RadioState {
	if n.sleepy {
		return energy.RadioSleep
	}
	return energy.RadioRx
}

// addChild registers the peripheral in the central's child table.
func (n *Node) addChild(extAddr ExtAddress, rloc16 Rloc16, supervisionInterval uint16) *thread.Child {
	child := thread.NewChild(extAddr, rloc16, n.sim.cfg.EnhCslTxAttempts)
	child.SetMode(NodeMode{RxOnWhenIdle: false, FullThreadDevice: false})
	child.SetSupervisionInterval(supervisionInterval)
	child.SetState(thread.NeighborStateValid)
	n.ChildTable.Add(child)
	n.peripheralChild = child
	n.Notifier.Signal(thread.EventThreadChildAdded)
	return child
}

// handleDownlinkTimer drains the central's send queue one message per tick,
// standing in for the full mesh forwarder transmit logic.
func (n *Node) handleDownlinkTimer() {
	defer n.downlinkTimer.Start(10)

	if n.pendingDownlink != nil || n.radio.pendingFrame != nil {
		return
	}

	msgs := n.Forwarder.SendQueue().Messages()
	if len(msgs) == 0 {
		return
	}
	msg := msgs[0]

	child := n.Supervisor.GetDestination(msg)
	if child == nil {
		return
	}

	frame := &mac.TxFrame{}
	addrs := mac.Addresses{
		Source:      mac.ExtendedAddress(n.ExtAddr),
		Destination: mac.ExtendedAddress(child.ExtAddress()),
	}
	n.Forwarder.PrepareDataFrameNoMeshHeader(frame, msg, addrs)
	// The child index stays in the message; the supervision frame itself
	// carries an empty payload.
	frame.Payload = nil
	n.pendingDownlink = msg
	n.radio.Transmit(frame)
}

// handleTxDone runs node-level completion after the Mac processed a transmit
// outcome.
func (n *Node) handleTxDone(frame *mac.TxFrame, status TxStatus) {
	if n.pendingDownlink == nil {
		return
	}

	msg := n.pendingDownlink
	n.pendingDownlink = nil

	if status == OT_ERROR_NONE {
		if child := n.Supervisor.GetDestination(msg); child != nil {
			n.Supervisor.UpdateOnSend(child)
		}
	}
	n.Forwarder.SendQueue().Dequeue(msg)
	msg.Free()
}

// handleReceivedFrame is the receive path of the node.
func (n *Node) handleReceivedFrame(rx *mac.RxFrame) {
	if n.CoordTable != nil && rx.RendezvousTime != nil {
		// A wake-up frame; run anti-replay, then attach to the central.
		if err := n.CoordTable.DetectReplay(rx); err != nil {
			return
		}
		n.attachToCentral(rx)
		return
	}

	if n.Listener != nil {
		n.Listener.UpdateOnReceive(rx.SrcAddr, rx.SecurityEnabled)
	}

	if n.Parent != nil && n.Parent.MatchesAddress(rx.SrcAddr) {
		n.Parent.SetEnhLastRxTimestamp(rx.Timestamp)
		n.Parent.SetEnhCslLastHeard(n.clock.NowMs())
	}

	if n.peripheralChild != nil && n.peripheralChild.MatchesAddress(rx.SrcAddr) {
		child := n.peripheralChild

		// MAC-level duplicate rejection of retransmitted CSL frames.
		if child.IsEnhCslPrevSnValid() && child.EnhCslPrevSn() == rx.Sequence {
			logger.Debugf("node %d: dropping duplicate frame sn %d from 0x%04x", n.Id, rx.Sequence, child.Rloc16())
			return
		}
		child.SetEnhCslPrevSn(rx.Sequence)
		child.SetEnhCslPrevSnValid(true)

		// Uplink from the peripheral; from now on the supervisor runs in
		// 100 ms units.
		if !n.Mle.cslPeripheralPresent {
			n.Mle.cslPeripheralPresent = true
			logger.Notef("node %d: CSL peripheral 0x%04x attached", n.Id, child.Rloc16())
		}
	}
}

// attachToCentral synchronizes the peripheral onto the central's CSL
// schedule after an accepted wake-up frame.
func (n *Node) attachToCentral(rx *mac.RxFrame) {
	n.Mle.role = DeviceRoleChild
	n.Mle.cslCentralPresent = true
	n.Parent.SetEnhCslPeriod(simCslPeriod)
	n.Parent.SetEnhCslPhase(simCslPhase)
	n.Parent.SetEnhCslSynchronized(true)
	n.Parent.SetEnhLastRxTimestamp(rx.Timestamp)
	n.Parent.SetEnhCslLastHeard(n.clock.NowMs())
	n.Listener.Start()
	n.CslSender.Update()

	logger.Notef("node %d: synchronized to central %s", n.Id, rx.SrcAddr)
}
