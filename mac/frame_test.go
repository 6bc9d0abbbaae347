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
	"testing"

	"github.com/stretchr/testify/assert"

	. "github.com/openthread/ot-link/types"
	"github.com/openthread/ot-link/wpan"
)

func TestGenerateWakeupFrame(t *testing.T) {
	frame := &TxFrame{}

	err := frame.GenerateWakeupFrame(0xface, ExtendedAddress(0x2), ExtendedAddress(0x1))
	assert.NoError(t, err)
	assert.False(t, frame.IsEmpty())
	assert.True(t, frame.SecurityEnabled)
	assert.NotNil(t, frame.RendezvousTime)
	assert.NotNil(t, frame.Connection)

	// Wake-up frames require extended addressing on both sides.
	err = frame.GenerateWakeupFrame(0xface, ShortAddress(0x4401), ExtendedAddress(0x1))
	assert.Equal(t, ErrInvalidState, err)
}

func TestTxFrame_BytesDissect(t *testing.T) {
	frame := &TxFrame{
		Type:       FrameTypeData,
		PanId:      0xface,
		Sequence:   42,
		AckRequest: true,
		Addrs: Addresses{
			Source:      ExtendedAddress(0x1122334455667788),
			Destination: ExtendedAddress(0x8877665544332211),
		},
		Payload: []byte{0xde, 0xad},
	}
	frame.SetPrepared()

	dissected := wpan.Dissect(frame.Bytes())
	assert.Equal(t, wpan.FrameTypeData, dissected.FrameControl.FrameType())
	assert.True(t, dissected.FrameControl.AckRequest())
	assert.False(t, dissected.FrameControl.SecurityEnabled())
	assert.Equal(t, uint8(42), dissected.Seq)
	assert.Equal(t, uint16(0xface), dissected.DstPanId)
	assert.Equal(t, uint64(0x8877665544332211), dissected.DstAddrExtended)
	assert.Equal(t, uint64(0x1122334455667788), dissected.SrcAddrExtended)
}

func TestTxFrame_ResetClearsState(t *testing.T) {
	frame := &TxFrame{}
	assert.NoError(t, frame.GenerateWakeupFrame(0xface, ExtendedAddress(0x2), ExtendedAddress(0x1)))

	frame.Reset()
	assert.True(t, frame.IsEmpty())
	assert.False(t, frame.IsHeaderUpdated())
	assert.Nil(t, frame.RendezvousTime)
}

func TestTxFrame_PresetSecurity(t *testing.T) {
	frame := &TxFrame{SecurityEnabled: true}
	assert.False(t, frame.IsHeaderUpdated())

	frame.SetFrameCounter(77)
	frame.SetKeyId(3)
	assert.True(t, frame.IsHeaderUpdated())
	assert.Equal(t, uint32(77), frame.FrameCounter)
	assert.Equal(t, uint8(3), frame.KeyId)
}
