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

package message

import (
	"testing"

	"github.com/stretchr/testify/assert"

	. "github.com/openthread/ot-link/types"
)

func TestPool_Exhaustion(t *testing.T) {
	p := NewPool(2)

	m1, err := p.Allocate(TypeIp6)
	assert.NoError(t, err)
	_, err = p.Allocate(TypeSupervision)
	assert.NoError(t, err)
	assert.Equal(t, 2, p.NumAllocated())

	_, err = p.Allocate(TypeIp6)
	assert.Equal(t, ErrNoBufs, err)

	m1.Free()
	assert.Equal(t, 1, p.NumAllocated())
	_, err = p.Allocate(TypeIp6)
	assert.NoError(t, err)
}

func TestMessage_ReadWrite(t *testing.T) {
	p := NewPool(4)
	m, _ := p.Allocate(TypeSupervision)

	m.AppendByte(3)
	assert.Equal(t, uint16(1), m.Length())

	b, ok := m.ReadByte(0)
	assert.True(t, ok)
	assert.Equal(t, byte(3), b)

	_, ok = m.ReadByte(1)
	assert.False(t, ok)
}

func TestMessage_Fragmenting(t *testing.T) {
	p := NewPool(4)
	m, _ := p.Allocate(TypeIp6)
	m.Append([]byte{1, 2, 3, 4, 5})

	m.SetOffset(2)
	buf := make([]byte, 2)
	n := m.Read(m.Offset(), buf)
	assert.Equal(t, 2, n)
	assert.Equal(t, []byte{3, 4}, buf)
}

func TestQueue_EnqueueDequeue(t *testing.T) {
	p := NewPool(4)
	q := NewQueue()
	m1, _ := p.Allocate(TypeIp6)
	m2, _ := p.Allocate(TypeIp6)
	m3, _ := p.Allocate(TypeIp6)

	q.Enqueue(m1)
	q.Enqueue(m2)
	q.Enqueue(m3)
	assert.Equal(t, 3, q.Len())
	assert.True(t, q.Contains(m2))

	q.Dequeue(m2)
	assert.Equal(t, 2, q.Len())
	assert.False(t, q.Contains(m2))
	assert.Equal(t, []*Message{m1, m3}, q.Messages())

	q.Dequeue(m2) // removing twice is a no-op
	assert.Equal(t, 2, q.Len())
}

func TestQueue_SnapshotAllowsDequeue(t *testing.T) {
	p := NewPool(4)
	q := NewQueue()
	m1, _ := p.Allocate(TypeIp6)
	m2, _ := p.Allocate(TypeIp6)
	q.Enqueue(m1)
	q.Enqueue(m2)

	for _, m := range q.Messages() {
		q.Dequeue(m)
	}
	assert.Equal(t, 0, q.Len())
}
