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

package types

import (
	"fmt"
	"math"

	"github.com/simonlingoogle/go-simplelogger"
)

type NodeId = int

const (
	InvalidNodeId NodeId = 0
)

// Ever is the timestamp value (microseconds) used for timers that are not scheduled to fire.
const Ever uint64 = math.MaxUint64

type ExtAddress = uint64
type Rloc16 = uint16
type PanId = uint16

const (
	// InvalidExtAddress defines the invalid extended (EUI-64) address.
	InvalidExtAddress ExtAddress = math.MaxUint64
	InvalidRloc16     Rloc16     = 0xfffe
)

// ExtAddressString formats an extended address the way OT CLI output does.
func ExtAddressString(addr ExtAddress) string {
	return fmt.Sprintf("%016x", addr)
}

// PHY and timing constants for 250 kbps O-QPSK (IEEE 802.15.4-2015, 2.4 GHz).
const (
	PhyHeaderLenBytes        = 6
	SymbolDurationUs  uint32 = 16
	UsPerTenSymbols   uint32 = 160 // 10 symbols, the CSL period/phase unit
	OctetDurationUs   uint32 = 32  // 2 symbols per octet
)

type NodeMode struct {
	RxOnWhenIdle     bool
	FullThreadDevice bool
}

func DefaultNodeMode() NodeMode {
	return NodeMode{
		RxOnWhenIdle:     true,
		FullThreadDevice: true,
	}
}

type DeviceRole int

const (
	DeviceRoleDisabled DeviceRole = 0 ///< The Thread stack is disabled.
	DeviceRoleDetached DeviceRole = 1 ///< Not currently participating in a Thread network/partition.
	DeviceRoleChild    DeviceRole = 2 ///< The Thread Child role.
	DeviceRoleRouter   DeviceRole = 3 ///< The Thread Router role.
	DeviceRoleLeader   DeviceRole = 4 ///< The Thread Leader role.
)

func (r DeviceRole) String() string {
	switch r {
	case DeviceRoleDisabled:
		return "disabled"
	case DeviceRoleDetached:
		return "detached"
	case DeviceRoleChild:
		return "child"
	case DeviceRoleRouter:
		return "router"
	case DeviceRoleLeader:
		return "leader"
	default:
		simplelogger.Panicf("invalid device role: %v", int(r))
		return "invalid"
	}
}
