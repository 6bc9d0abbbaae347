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
	"github.com/openthread/ot-link/logger"
	"github.com/openthread/ot-link/mac"
	"github.com/openthread/ot-link/thread"
	. "github.com/openthread/ot-link/types"
)

// mleModel is the simulated MLE role module of one node. It answers the role
// queries of the link-layer components and counts the recovery requests they
// issue.
type mleModel struct {
	role                 DeviceRole
	cslPeripheralPresent bool
	cslCentralPresent    bool
	parent               *thread.Neighbor
	parentCandidate      *thread.Neighbor

	childUpdateRequests    uint32
	shorterChildIdRequests uint32
	detachCount            uint32
	onBecomeDetached       func()
}

var _ thread.Mle = (*mleModel)(nil)
var _ thread.NeighborTable = (*mleModel)(nil)

func (m *mleModel) IsDisabled() bool {
	return m.role == DeviceRoleDisabled
}

func (m *mleModel) IsChild() bool {
	return m.role == DeviceRoleChild
}

func (m *mleModel) IsCslPeripheralPresent() bool {
	return m.cslPeripheralPresent
}

func (m *mleModel) IsCslCentralPresent() bool {
	return m.cslCentralPresent
}

func (m *mleModel) Parent() *thread.Neighbor {
	return m.parent
}

func (m *mleModel) ParentCandidate() *thread.Neighbor {
	return m.parentCandidate
}

func (m *mleModel) SendChildUpdateRequest() error {
	m.childUpdateRequests++
	logger.Debugf("mle: sending Child Update Request (#%d)", m.childUpdateRequests)
	return nil
}

func (m *mleModel) RequestShorterChildIdRequest() {
	m.shorterChildIdRequests++
}

func (m *mleModel) BecomeDetached() {
	m.detachCount++
	m.role = DeviceRoleDetached
	logger.Notef("mle: becoming detached")
	if m.onBecomeDetached != nil {
		m.onBecomeDetached()
	}
}

// FindNeighbor implements thread.NeighborTable over the single parent link.
func (m *mleModel) FindNeighbor(address mac.Address) *thread.Neighbor {
	if m.parent != nil && m.parent.MatchesAddress(address) {
		return m.parent
	}
	return nil
}
