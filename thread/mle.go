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

// Package thread implements the link-layer liveness and coordinated-sleep
// components of the Thread stack: child supervision on both sides of the
// parent-child link, enhanced CSL transmission to a sleepy parent, and the
// wake-up sequence scheduling used by a CSL central.
package thread

import (
	"github.com/openthread/ot-link/mac"
)

// Events is a bitmask of stack events delivered through the Notifier.
type Events uint32

const (
	EventThreadRoleChanged Events = 1 << iota
	EventThreadChildAdded
	EventThreadChildRemoved
)

func (e Events) ContainsAny(mask Events) bool {
	return e&mask != 0
}

// Notifier delivers stack events synchronously to registered handlers, in
// registration order, on the event-loop context.
type Notifier struct {
	handlers []func(Events)
}

func NewNotifier() *Notifier {
	return &Notifier{}
}

func (n *Notifier) RegisterHandler(handler func(Events)) {
	n.handlers = append(n.handlers, handler)
}

func (n *Notifier) Signal(events Events) {
	for _, handler := range n.handlers {
		handler(events)
	}
}

// Mle is the role module of the stack, answering role queries and accepting
// the recovery requests issued by the link-layer components.
type Mle interface {
	IsDisabled() bool
	IsChild() bool

	// IsCslPeripheralPresent reports whether this node, acting as a CSL
	// central, has an attached CSL peripheral child.
	IsCslPeripheralPresent() bool
	// IsCslCentralPresent reports whether this node, acting as a CSL
	// peripheral, is tracking a CSL central.
	IsCslCentralPresent() bool

	Parent() *Neighbor
	ParentCandidate() *Neighbor

	SendChildUpdateRequest() error
	RequestShorterChildIdRequest()
	BecomeDetached()
}

// NeighborTable yields neighbor lookup by MAC address.
type NeighborTable interface {
	FindNeighbor(address mac.Address) *Neighbor
}
