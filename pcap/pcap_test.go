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

package pcap

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFile_HeaderAndFrames(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "test.pcap")

	pf, err := NewFile(filename)
	assert.NoError(t, err)

	frameData := []byte{0x41, 0xa8, 0x07}
	assert.NoError(t, pf.AppendFrame(Frame{Timestamp: 1_500_000, Data: frameData}))
	assert.NoError(t, pf.Sync())
	assert.NoError(t, pf.Close())

	data, err := os.ReadFile(filename)
	assert.NoError(t, err)
	assert.Equal(t, pcapFileHeaderSize+pcapFrameHeaderSize+len(frameData), len(data))

	assert.Equal(t, uint32(pcapMagicNumber), binary.LittleEndian.Uint32(data[:4]))
	assert.Equal(t, uint32(dltIeee802154), binary.LittleEndian.Uint32(data[20:24]))

	frameHeader := data[pcapFileHeaderSize:]
	assert.Equal(t, uint32(1), binary.LittleEndian.Uint32(frameHeader[:4]))      // seconds
	assert.Equal(t, uint32(500000), binary.LittleEndian.Uint32(frameHeader[4:8])) // microseconds
	assert.Equal(t, uint32(len(frameData)), binary.LittleEndian.Uint32(frameHeader[8:12]))
	assert.Equal(t, frameData, frameHeader[pcapFrameHeaderSize:])
}
