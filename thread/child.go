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

// EnhCslPeerInfo holds the peer state required for scheduling enhanced CSL
// transmissions. Neighbor embeds it.
type EnhCslPeerInfo struct {
	cslTxAttempts           uint8 // 0..63
	cslSynchronized         bool
	cslPrevSnValid          bool
	cslPrevSn               uint8
	cslMaxTxAttempts        uint8 // override, 0 means use the default
	defaultCslMaxTxAttempts uint8
	cslPeriod               uint16 // units of 10 symbols (160 microseconds)
	cslPhase                uint16 // offset of the next CSL sample start, same units
	cslLastHeard            uint32 // milliseconds, last frame containing a CSL IE
	lastRxTimestamp         uint64 // microseconds, radio time

	indirectDsn            uint8  // MAC data sequence number for retx attempts
	indirectKeyId          uint8  // key id of the current indirect frame, for retx
	indirectFrameCounter   uint32 // frame counter of the current indirect frame, for retx
	indirectMessage        *message.Message
	queuedMessageCount     uint16
	indirectFragmentOffset uint16
}

func (p *EnhCslPeerInfo) EnhCslTxAttempts() uint8 { return p.cslTxAttempts }
func (p *EnhCslPeerInfo) IncrementEnhCslTxAttempts() { p.cslTxAttempts++ }
func (p *EnhCslPeerInfo) ResetEnhCslTxAttempts() { p.cslTxAttempts = 0 }

func (p *EnhCslPeerInfo) IndirectDsn() uint8 { return p.indirectDsn }
func (p *EnhCslPeerInfo) SetIndirectDsn(dsn uint8) { p.indirectDsn = dsn }

// IsEnhCslSynchronized reports whether the peer is enhanced CSL synchronized,
// which requires a nonzero CSL period.
func (p *EnhCslPeerInfo) IsEnhCslSynchronized() bool {
	return p.cslSynchronized && p.cslPeriod > 0
}

func (p *EnhCslPeerInfo) SetEnhCslSynchronized(synchronized bool) { p.cslSynchronized = synchronized }

func (p *EnhCslPeerInfo) IsEnhCslPrevSnValid() bool { return p.cslPrevSnValid }
func (p *EnhCslPeerInfo) SetEnhCslPrevSnValid(valid bool) { p.cslPrevSnValid = valid }
func (p *EnhCslPeerInfo) EnhCslPrevSn() uint8 { return p.cslPrevSn }
func (p *EnhCslPeerInfo) SetEnhCslPrevSn(sn uint8) { p.cslPrevSn = sn }

func (p *EnhCslPeerInfo) EnhCslPeriod() uint16 { return p.cslPeriod }
func (p *EnhCslPeerInfo) SetEnhCslPeriod(period uint16) { p.cslPeriod = period }
func (p *EnhCslPeerInfo) EnhCslPhase() uint16 { return p.cslPhase }
func (p *EnhCslPeerInfo) SetEnhCslPhase(phase uint16) { p.cslPhase = phase }

func (p *EnhCslPeerInfo) EnhCslLastHeard() uint32 { return p.cslLastHeard }
func (p *EnhCslPeerInfo) SetEnhCslLastHeard(ms uint32) { p.cslLastHeard = ms }
func (p *EnhCslPeerInfo) EnhLastRxTimestamp() uint64 { return p.lastRxTimestamp }
func (p *EnhCslPeerInfo) SetEnhLastRxTimestamp(us uint64) { p.lastRxTimestamp = us }

func (p *EnhCslPeerInfo) IndirectFrameCounter() uint32 { return p.indirectFrameCounter }
func (p *EnhCslPeerInfo) SetIndirectFrameCounter(counter uint32) { p.indirectFrameCounter = counter }
func (p *EnhCslPeerInfo) IndirectKeyId() uint8 { return p.indirectKeyId }
func (p *EnhCslPeerInfo) SetIndirectKeyId(keyId uint8) { p.indirectKeyId = keyId }

func (p *EnhCslPeerInfo) IndirectMessage() *message.Message { return p.indirectMessage }
func (p *EnhCslPeerInfo) SetIndirectMessage(msg *message.Message) { p.indirectMessage = msg }

func (p *EnhCslPeerInfo) IndirectMessageCount() uint16 { return p.queuedMessageCount }
func (p *EnhCslPeerInfo) IncrementIndirectMessageCount() { p.queuedMessageCount++ }
func (p *EnhCslPeerInfo) DecrementIndirectMessageCount() { p.queuedMessageCount-- }
func (p *EnhCslPeerInfo) ResetIndirectMessageCount() { p.queuedMessageCount = 0 }

func (p *EnhCslPeerInfo) IndirectFragmentOffset() uint16 { return p.indirectFragmentOffset }
func (p *EnhCslPeerInfo) SetIndirectFragmentOffset(offset uint16) { p.indirectFragmentOffset = offset }

// EnhCslMaxTxAttempts returns the per-peer override when set, else the
// configured default.
func (p *EnhCslPeerInfo) EnhCslMaxTxAttempts() uint8 {
	if p.cslMaxTxAttempts != 0 {
		return p.cslMaxTxAttempts
	}
	return p.defaultCslMaxTxAttempts
}

func (p *EnhCslPeerInfo) SetEnhCslMaxTxAttempts(attempts uint8) { p.cslMaxTxAttempts = attempts }
func (p *EnhCslPeerInfo) ResetEnhCslMaxTxAttempts() { p.cslMaxTxAttempts = 0 }

type NeighborState uint8

const (
	NeighborStateInvalid NeighborState = iota
	NeighborStateRestored
	NeighborStateValid
)

// LinkQualityInfo tracks per-neighbor message tx outcomes.
type LinkQualityInfo struct {
	msgTxSuccess uint32
	msgTxFailure uint32
}

func (l *LinkQualityInfo) AddMessageTxStatus(success bool) {
	if success {
		l.msgTxSuccess++
	} else {
		l.msgTxFailure++
	}
}

func (l *LinkQualityInfo) MessageTxSuccessCount() uint32 { return l.msgTxSuccess }
func (l *LinkQualityInfo) MessageTxFailureCount() uint32 { return l.msgTxFailure }

// Neighbor is a neighboring Thread device, including its enhanced CSL peer
// state.
type Neighbor struct {
	EnhCslPeerInfo

	extAddress ExtAddress
	rloc16     Rloc16
	state      NeighborState
	mode       NodeMode
	linkInfo   LinkQualityInfo
}

func NewNeighbor(extAddress ExtAddress, rloc16 Rloc16, defaultCslMaxTxAttempts uint8) *Neighbor {
	n := &Neighbor{
		extAddress: extAddress,
		rloc16:     rloc16,
		mode:       DefaultNodeMode(),
	}
	n.defaultCslMaxTxAttempts = defaultCslMaxTxAttempts
	return n
}

func (n *Neighbor) ExtAddress() ExtAddress { return n.extAddress }
func (n *Neighbor) SetExtAddress(addr ExtAddress) { n.extAddress = addr }
func (n *Neighbor) Rloc16() Rloc16 { return n.rloc16 }
func (n *Neighbor) SetRloc16(rloc16 Rloc16) { n.rloc16 = rloc16 }

func (n *Neighbor) State() NeighborState { return n.state }
func (n *Neighbor) SetState(state NeighborState) { n.state = state }
func (n *Neighbor) IsStateValid() bool { return n.state == NeighborStateValid }

func (n *Neighbor) Mode() NodeMode { return n.mode }
func (n *Neighbor) SetMode(mode NodeMode) { n.mode = mode }
func (n *Neighbor) IsRxOnWhenIdle() bool { return n.mode.RxOnWhenIdle }

func (n *Neighbor) LinkInfo() *LinkQualityInfo { return &n.linkInfo }

// MatchesAddress reports whether the neighbor matches a MAC address.
func (n *Neighbor) MatchesAddress(address mac.Address) bool {
	switch address.Type {
	case mac.AddrTypeShort:
		return n.rloc16 == address.Short
	case mac.AddrTypeExtended:
		return n.extAddress == address.Extended
	default:
		return false
	}
}

// Child is the parent-side view of an attached child.
type Child struct {
	Neighbor

	supervisionInterval       uint16
	unitsSinceLastSupervision uint16
}

func NewChild(extAddress ExtAddress, rloc16 Rloc16, defaultCslMaxTxAttempts uint8) *Child {
	c := &Child{}
	c.extAddress = extAddress
	c.rloc16 = rloc16
	c.mode = DefaultNodeMode()
	c.defaultCslMaxTxAttempts = defaultCslMaxTxAttempts
	return c
}

// SupervisionInterval is the number of supervision units that may pass
// without a downlink frame before a keep-alive is due; 0 disables
// supervision of this child.
func (c *Child) SupervisionInterval() uint16 { return c.supervisionInterval }
func (c *Child) SetSupervisionInterval(interval uint16) { c.supervisionInterval = interval }

func (c *Child) UnitsSinceLastSupervision() uint16 { return c.unitsSinceLastSupervision }
func (c *Child) IncrementUnitsSinceLastSupervision() { c.unitsSinceLastSupervision++ }
func (c *Child) ResetUnitsSinceLastSupervision() { c.unitsSinceLastSupervision = 0 }

// ChildTable is the parent-side table of attached children. Slots are
// stable: a child keeps its index until removed.
type ChildTable struct {
	children []*Child
}

func NewChildTable() *ChildTable {
	return &ChildTable{}
}

// Add places the child into the first free slot and returns its index.
func (t *ChildTable) Add(child *Child) uint8 {
	for i, c := range t.children {
		if c == nil {
			t.children[i] = child
			return uint8(i)
		}
	}
	t.children = append(t.children, child)
	return uint8(len(t.children) - 1)
}

// Remove frees the child's slot; later indices are unaffected.
func (t *ChildTable) Remove(child *Child) {
	for i, c := range t.children {
		if c == child {
			t.children[i] = nil
			return
		}
	}
}

func (t *ChildTable) GetChildAtIndex(index uint8) *Child {
	if int(index) >= len(t.children) {
		return nil
	}
	return t.children[index]
}

func (t *ChildTable) GetChildIndex(child *Child) uint8 {
	for i, c := range t.children {
		if c == child {
			return uint8(i)
		}
	}
	logger.Panicf("child 0x%04x not in child table", child.Rloc16())
	return 0
}

// Iterate returns the children in the given state, in slot order.
func (t *ChildTable) Iterate(state NeighborState) []*Child {
	var children []*Child
	for _, c := range t.children {
		if c != nil && c.State() == state {
			children = append(children, c)
		}
	}
	return children
}

func (t *ChildTable) HasChildren(state NeighborState) bool {
	for _, c := range t.children {
		if c != nil && c.State() == state {
			return true
		}
	}
	return false
}

// FindChild looks up a child by MAC address.
func (t *ChildTable) FindChild(address mac.Address) *Child {
	for _, c := range t.children {
		if c != nil && c.MatchesAddress(address) {
			return c
		}
	}
	return nil
}
