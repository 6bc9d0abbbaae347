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

// Package message provides the owned message buffers exchanged between the
// mesh forwarder and the link-layer senders, and the bounded pool they are
// allocated from.
package message

import (
	. "github.com/openthread/ot-link/types"
)

// Type identifies the message content. Values inherit OpenThread message.hpp.
type Type uint8

const (
	TypeIp6          Type = 0
	Type6lowpan      Type = 1
	TypeSupervision  Type = 2
	TypeMacEmptyData Type = 3
)

// SubType further identifies selected Ip6 messages that the link layer
// treats specially.
type SubType uint8

const (
	SubTypeNone SubType = iota
	SubTypeMleChildIdRequest
	SubTypeMleChildUpdateRequest
)

// Message is an owned message buffer with a typed payload and a fragment
// offset. True ownership stays with the pool and, once enqueued, with the
// mesh forwarder's send queue.
type Message struct {
	pool         *Pool
	typ          Type
	subType      SubType
	linkSecurity bool
	direct       bool
	offset       uint16
	data         []byte

	destLinkLocal bool
	destExtAddr   ExtAddress
}

func (m *Message) Type() Type {
	return m.typ
}

func (m *Message) SubType() SubType {
	return m.subType
}

func (m *Message) SetSubType(subType SubType) {
	m.subType = subType
}

func (m *Message) Length() uint16 {
	return uint16(len(m.data))
}

// Append appends bytes to the message payload.
func (m *Message) Append(b []byte) {
	m.data = append(m.data, b...)
}

// AppendByte appends a single byte to the message payload.
func (m *Message) AppendByte(b byte) {
	m.data = append(m.data, b)
}

// Read copies message bytes starting at offset into buf and returns the
// number of bytes copied.
func (m *Message) Read(offset uint16, buf []byte) int {
	if int(offset) >= len(m.data) {
		return 0
	}
	return copy(buf, m.data[offset:])
}

// ReadByte reads the single byte at offset; ok is false when out of range.
func (m *Message) ReadByte(offset uint16) (b byte, ok bool) {
	if int(offset) >= len(m.data) {
		return 0, false
	}
	return m.data[offset], true
}

func (m *Message) Offset() uint16 {
	return m.offset
}

func (m *Message) SetOffset(offset uint16) {
	m.offset = offset
}

func (m *Message) IsDirectTransmission() bool {
	return m.direct
}

func (m *Message) SetDirectTransmission(direct bool) {
	m.direct = direct
}

func (m *Message) IsLinkSecurityEnabled() bool {
	return m.linkSecurity
}

func (m *Message) SetLinkSecurityEnabled(enabled bool) {
	m.linkSecurity = enabled
}

// IsDestLinkLocal reports whether the IPv6 destination of an Ip6 message is
// link-local, in which case the MAC destination is resolved from the
// destination IID rather than the neighbor record.
func (m *Message) IsDestLinkLocal() bool {
	return m.destLinkLocal
}

// SetDestLinkLocal marks the message destination as an IPv6 link-local
// address whose IID maps to extAddr.
func (m *Message) SetDestLinkLocal(extAddr ExtAddress) {
	m.destLinkLocal = true
	m.destExtAddr = extAddr
}

// DestExtAddress returns the MAC extended address derived from a link-local
// IPv6 destination.
func (m *Message) DestExtAddress() ExtAddress {
	return m.destExtAddr
}

// Free returns the message to its pool.
func (m *Message) Free() {
	m.pool.free(m)
}
