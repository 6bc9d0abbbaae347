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
	"github.com/openthread/ot-link/logger"
	. "github.com/openthread/ot-link/types"
)

// Pool is a bounded message allocator. Exhaustion returns ErrNoBufs; the
// caller retries later.
type Pool struct {
	capacity     int
	numAllocated int
}

func NewPool(capacity int) *Pool {
	return &Pool{
		capacity: capacity,
	}
}

// Allocate yields a new message of the given type, or ErrNoBufs when the
// pool is exhausted.
func (p *Pool) Allocate(typ Type) (*Message, error) {
	if p.numAllocated >= p.capacity {
		return nil, ErrNoBufs
	}
	p.numAllocated++
	return &Message{
		pool: p,
		typ:  typ,
	}, nil
}

// NumAllocated returns the number of live messages.
func (p *Pool) NumAllocated() int {
	return p.numAllocated
}

func (p *Pool) free(m *Message) {
	logger.AssertTrue(p.numAllocated > 0)
	p.numAllocated--
	m.data = nil
}
