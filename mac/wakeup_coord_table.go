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
	"github.com/openthread/ot-link/logger"
	"github.com/openthread/ot-link/timer"
	. "github.com/openthread/ot-link/types"
)

// WakeupCoord is a trusted Wake-up Coordinator: the last accepted security
// state for wake-up frames from one extended address.
type WakeupCoord struct {
	extAddr      ExtAddress
	keySequence  uint32
	frameCounter uint32
	lastUpdated  uint32 // seconds
}

func (c *WakeupCoord) ExtAddress() ExtAddress {
	return c.extAddr
}

func (c *WakeupCoord) KeySequence() uint32 {
	return c.keySequence
}

func (c *WakeupCoord) FrameCounter() uint32 {
	return c.frameCounter
}

func (c *WakeupCoord) LastUpdated() uint32 {
	return c.lastUpdated
}

// WakeupCoordTable is the peripheral-side anti-replay cache of trusted
// wake-up coordinators, bounded in size and evicting stale entries.
type WakeupCoordTable struct {
	clock     timer.Clock
	maxCoords int
	evictAge  uint32
	coords    []WakeupCoord
}

func NewWakeupCoordTable(clock timer.Clock, maxCoords uint8, evictAgeSecs uint32) *WakeupCoordTable {
	return &WakeupCoordTable{
		clock:     clock,
		maxCoords: int(maxCoords),
		evictAge:  evictAgeSecs,
	}
}

// Clear drops all entries.
func (t *WakeupCoordTable) Clear() {
	t.coords = t.coords[:0]
}

// Len returns the number of tracked coordinators.
func (t *WakeupCoordTable) Len() int {
	return len(t.coords)
}

// DetectReplay verifies that the wake-up frame does not replay stale security
// state for its source address, and on success records the frame's key
// sequence and frame counter as the new high-water mark.
func (t *WakeupCoordTable) DetectReplay(frame *RxFrame) error {
	frameSrcAddr := frame.SrcAddr
	frameKeySequence := frame.KeySequence()
	frameCounter := frame.FrameCounter

	coord := t.find(frameSrcAddr.Extended)

	if coord != nil {
		if frameKeySequence < coord.keySequence ||
			(frameKeySequence == coord.keySequence && frameCounter <= coord.frameCounter) {
			logger.Warnf("Received replayed wake-up with source address %s!", frameSrcAddr)
			return ErrSecurity
		}
	} else {
		t.evict()
		if len(t.coords) >= t.maxCoords {
			logger.Infof("Received a wake-up frame while the WC table was full")
			return ErrNoBufs
		}
		t.coords = append(t.coords, WakeupCoord{})
		coord = &t.coords[len(t.coords)-1]
	}

	coord.extAddr = frameSrcAddr.Extended
	coord.keySequence = frameKeySequence
	coord.frameCounter = frameCounter
	coord.lastUpdated = t.clock.NowSecs()

	return nil
}

func (t *WakeupCoordTable) find(extAddr ExtAddress) *WakeupCoord {
	for i := range t.coords {
		if t.coords[i].extAddr == extAddr {
			return &t.coords[i]
		}
	}
	return nil
}

// evict removes the single oldest entry not updated within the evict age.
func (t *WakeupCoordTable) evict() {
	now := t.clock.NowSecs()
	oldest := -1

	if now <= t.evictAge {
		return
	}
	oldestUpdated := now - t.evictAge

	for i := range t.coords {
		if t.coords[i].lastUpdated < oldestUpdated {
			oldestUpdated = t.coords[i].lastUpdated
			oldest = i
		}
	}

	if oldest >= 0 {
		logger.Infof("Evicting WC %s", ExtAddressString(t.coords[oldest].extAddr))
		t.coords = append(t.coords[:oldest], t.coords[oldest+1:]...)
	}
}
