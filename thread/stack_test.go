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
	"github.com/openthread/ot-link/mac"
)

// testMle is the scripted role module used by the component tests.
type testMle struct {
	disabled             bool
	child                bool
	cslPeripheralPresent bool
	cslCentralPresent    bool
	parent               *Neighbor
	parentCandidate      *Neighbor

	childUpdateRequests    int
	shorterChildIdRequests int
	detachCount            int
}

var _ Mle = (*testMle)(nil)
var _ NeighborTable = (*testMle)(nil)

func (m *testMle) IsDisabled() bool { return m.disabled }
func (m *testMle) IsChild() bool { return m.child }
func (m *testMle) IsCslPeripheralPresent() bool { return m.cslPeripheralPresent }
func (m *testMle) IsCslCentralPresent() bool { return m.cslCentralPresent }
func (m *testMle) Parent() *Neighbor { return m.parent }
func (m *testMle) ParentCandidate() *Neighbor { return m.parentCandidate }

func (m *testMle) SendChildUpdateRequest() error {
	m.childUpdateRequests++
	return nil
}

func (m *testMle) RequestShorterChildIdRequest() {
	m.shorterChildIdRequests++
}

func (m *testMle) BecomeDetached() {
	m.detachCount++
}

func (m *testMle) FindNeighbor(address mac.Address) *Neighbor {
	if m.parent != nil && m.parent.MatchesAddress(address) {
		return m.parent
	}
	return nil
}

// testClock is a settable clock for the CSL slot arithmetic tests.
type testClock struct {
	nowUs      uint64
	radioNowUs uint64
}

func (c *testClock) Now() uint64 { return c.nowUs }
func (c *testClock) RadioNow() uint64 { return c.radioNowUs }
func (c *testClock) NowMs() uint32 { return uint32(c.nowUs / 1000) }
func (c *testClock) NowSecs() uint32 { return uint32(c.nowUs / 1000000) }

// testCslRequester records the CSL transmit requests issued by the sender.
type testCslRequester struct {
	requests []uint32
}

func (r *testCslRequester) RequestEnhCslFrameTransmission(delayMs uint32) {
	r.requests = append(r.requests, delayMs)
}
