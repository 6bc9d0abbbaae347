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

// Package sim wires two full nodes, a CSL central and a sleepy CSL
// peripheral, over a virtual radio medium, to drive the link-layer liveness
// and coordinated-sleep components end to end.
package sim

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/openthread/ot-link/config"
	"github.com/openthread/ot-link/energy"
	"github.com/openthread/ot-link/mac"
	"github.com/openthread/ot-link/message"
	"github.com/openthread/ot-link/pcap"
	"github.com/openthread/ot-link/prng"
	"github.com/openthread/ot-link/timer"
	. "github.com/openthread/ot-link/types"
)

const (
	centralExtAddr    ExtAddress = 0x1122334455667788
	peripheralExtAddr ExtAddress = 0x8877665544332211
	centralRloc16     Rloc16     = 0x4400
	peripheralRloc16  Rloc16     = 0x4401
)

// Simulation is a two-node virtual-time harness.
type Simulation struct {
	cfg   config.Config
	panId PanId
	sched *timer.Scheduler

	energy   *energy.Tracker
	pcapFile *pcap.File

	central    *Node
	peripheral *Node

	dropCount int
}

// NewSimulation creates the harness. pcapPath may be empty to disable
// capture; rootSeed 0 picks a time-based seed.
func NewSimulation(cfg config.Config, rootSeed int64, pcapPath string) (*Simulation, error) {
	prng.Init(rootSeed)

	s := &Simulation{
		cfg:    cfg,
		panId:  0xface,
		sched:  timer.NewScheduler(0),
		energy: energy.NewTracker(),
	}

	if pcapPath != "" {
		pcapFile, err := pcap.NewFile(pcapPath)
		if err != nil {
			return nil, errors.Wrapf(err, "creating PCAP file %s", pcapPath)
		}
		s.pcapFile = pcapFile
	}

	s.central = newCentralNode(s, 1, centralExtAddr, centralRloc16)
	s.peripheral = newPeripheralNode(s, 2, peripheralExtAddr, peripheralRloc16,
		centralExtAddr, centralRloc16)
	s.central.addChild(peripheralExtAddr, peripheralRloc16, cfg.SupervisionIntervalSecs)

	return s, nil
}

func (s *Simulation) Central() *Node {
	return s.central
}

func (s *Simulation) Peripheral() *Node {
	return s.peripheral
}

// Go advances the virtual time by durationUs microseconds.
func (s *Simulation) Go(durationUs uint64) {
	s.sched.Advance(durationUs)
}

// Time returns the current virtual time in microseconds.
func (s *Simulation) Time() uint64 {
	return s.sched.Now()
}

// Wakeup starts a wake-up burst from the central towards the peripheral.
func (s *Simulation) Wakeup(intervalUs uint32, durationMs uint32) error {
	return s.central.WakeupScheduler.WakeUp(s.peripheral.ExtAddr, intervalUs, durationMs)
}

// QueueIndirect enqueues count indirect IPv6 messages of the given payload
// size on the peripheral, for enhanced CSL delivery to the parent.
func (s *Simulation) QueueIndirect(count int, size int) error {
	for i := 0; i < count; i++ {
		msg, err := s.peripheral.Pool.Allocate(message.TypeIp6)
		if err != nil {
			return err
		}
		msg.SetLinkSecurityEnabled(true)
		payload := make([]byte, size)
		for j := range payload {
			payload[j] = byte(j)
		}
		msg.Append(payload)
		s.peripheral.Forwarder.SendMessage(msg)
	}
	return nil
}

// SetSupervisionInterval updates the supervision interval on both sides of
// the parent-child link.
func (s *Simulation) SetSupervisionInterval(interval uint16) {
	s.peripheral.Listener.SetInterval(interval)
	if s.central.peripheralChild != nil {
		s.central.peripheralChild.SetSupervisionInterval(interval)
	}
}

func (s *Simulation) SetSupervisionTimeout(timeout uint16) {
	s.peripheral.Listener.SetTimeout(timeout)
}

// DropNext makes the medium drop the next n transmitted frames.
func (s *Simulation) DropNext(n int) {
	s.dropCount = n
}

func (s *Simulation) takeDrop() bool {
	if s.dropCount > 0 {
		s.dropCount--
		return true
	}
	return false
}

// deliverFrame hands a transmitted frame to the peer node's receive path.
func (s *Simulation) deliverFrame(from *Node, frame *mac.TxFrame) {
	to := s.peer(from)

	rx := &mac.RxFrame{
		Type:            frame.Type,
		SrcAddr:         frame.Addrs.Source,
		DstAddr:         frame.Addrs.Destination,
		Sequence:        frame.Sequence,
		SecurityEnabled: frame.SecurityEnabled,
		KeySource:       frame.KeySource,
		FrameCounter:    frame.FrameCounter,
		Timestamp:       to.clock.RadioNow(),
		Payload:         frame.Payload,
		RendezvousTime:  frame.RendezvousTime,
		Connection:      frame.Connection,
	}

	to.handleReceivedFrame(rx)
}

func (s *Simulation) peer(n *Node) *Node {
	if n == s.central {
		return s.peripheral
	}
	return s.central
}

// Status formats the state of both nodes.
func (s *Simulation) Status() string {
	c, p := s.central, s.peripheral
	out := fmt.Sprintf("time %d us\n", s.sched.Now())
	out += fmt.Sprintf("central    0x%04x: role %v, supervising %v, wakeup ongoing %v, queue %d\n",
		c.rloc16, c.Mle.role, c.Supervisor.IsRunning(), c.WakeupScheduler.IsSequenceOngoing(),
		c.Forwarder.SendQueue().Len())
	out += fmt.Sprintf("peripheral 0x%04x: role %v, csl sync %v, attempts %d/%d, queued %d, watchdog %v, timeouts %d",
		p.rloc16, p.Mle.role, p.Parent.IsEnhCslSynchronized(),
		p.Parent.EnhCslTxAttempts(), p.Parent.EnhCslMaxTxAttempts(),
		p.Parent.IndirectMessageCount(), p.Listener.IsRunning(), p.Listener.Counter())
	return out
}

// Counters formats the transmit counters of both nodes.
func (s *Simulation) Counters() string {
	c, p := s.central, s.peripheral
	pc := p.Forwarder.IpCounters()
	cc := c.Forwarder.IpCounters()
	out := fmt.Sprintf("peripheral ipv6: tx-success %d, tx-failure %d\n", pc.TxSuccess, pc.TxFailure)
	out += fmt.Sprintf("peripheral link: msg-tx-success %d, msg-tx-failure %d\n",
		p.Parent.LinkInfo().MessageTxSuccessCount(), p.Parent.LinkInfo().MessageTxFailureCount())
	out += fmt.Sprintf("peripheral mle: child-update-req %d, detach %d, shorter-child-id-req %d\n",
		p.Mle.childUpdateRequests, p.Mle.detachCount, p.Mle.shorterChildIdRequests)
	out += fmt.Sprintf("central ipv6: tx-success %d, tx-failure %d", cc.TxSuccess, cc.TxFailure)
	return out
}

// Energy formats the radio-state residency of both nodes.
func (s *Simulation) Energy() string {
	now := s.sched.Now()
	return s.energy.Summary(s.central.Id, now) + "\n" + s.energy.Summary(s.peripheral.Id, now)
}

// Close releases the harness resources.
func (s *Simulation) Close() {
	if s.pcapFile != nil {
		_ = s.pcapFile.Sync()
		_ = s.pcapFile.Close()
		s.pcapFile = nil
	}
}
