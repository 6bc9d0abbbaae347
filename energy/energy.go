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

// Package energy accounts per-node radio-state residency, to compare the
// energy behavior of a sleepy peripheral against an always-on node.
package energy

import (
	"fmt"

	"github.com/openthread/ot-link/logger"
	. "github.com/openthread/ot-link/types"
)

type RadioState byte

const (
	RadioDisabled RadioState = 0
	RadioSleep    RadioState = 1
	RadioRx       RadioState = 2
	RadioTx       RadioState = 3
)

func (s RadioState) String() string {
	switch s {
	case RadioDisabled:
		return "Off"
	case RadioSleep:
		return "Slp"
	case RadioRx:
		return "Rx_"
	case RadioTx:
		return "Tx_"
	default:
		logger.Panicf("invalid radio state: %v", byte(s))
		return "invalid"
	}
}

// nodeEnergy accumulates microseconds spent per radio state for one node.
type nodeEnergy struct {
	state      RadioState
	stateSince uint64
	spentUs    [4]uint64
}

// Tracker accounts radio-state residency for a set of nodes.
type Tracker struct {
	nodes map[NodeId]*nodeEnergy
}

func NewTracker() *Tracker {
	return &Tracker{
		nodes: map[NodeId]*nodeEnergy{},
	}
}

// AddNode starts tracking a node, initially in the sleep state.
func (t *Tracker) AddNode(nodeid NodeId, timestamp uint64) {
	logger.AssertNil(t.nodes[nodeid])
	t.nodes[nodeid] = &nodeEnergy{
		state:      RadioSleep,
		stateSince: timestamp,
	}
}

// SetRadioState accounts the residency of the previous state and enters the
// new one.
func (t *Tracker) SetRadioState(nodeid NodeId, state RadioState, timestamp uint64) {
	ne := t.nodes[nodeid]
	logger.AssertNotNil(ne)

	if timestamp >= ne.stateSince {
		ne.spentUs[ne.state] += timestamp - ne.stateSince
	}
	ne.state = state
	ne.stateSince = timestamp
}

// SpentUs returns the microseconds the node spent in the given state so far.
func (t *Tracker) SpentUs(nodeid NodeId, state RadioState) uint64 {
	ne := t.nodes[nodeid]
	logger.AssertNotNil(ne)
	return ne.spentUs[state]
}

// Summary formats the per-state residency of a node, closing the current
// state interval at the given timestamp.
func (t *Tracker) Summary(nodeid NodeId, timestamp uint64) string {
	ne := t.nodes[nodeid]
	logger.AssertNotNil(ne)

	t.SetRadioState(nodeid, ne.state, timestamp)
	return fmt.Sprintf("node %d: sleep %d us, rx %d us, tx %d us, off %d us",
		nodeid, ne.spentUs[RadioSleep], ne.spentUs[RadioRx], ne.spentUs[RadioTx], ne.spentUs[RadioDisabled])
}
