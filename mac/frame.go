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

// Package mac models the IEEE 802.15.4 MAC frames and the MAC scheduling
// front-end used by the link-layer liveness and coordinated-sleep components.
package mac

import (
	"encoding/binary"
	"fmt"

	. "github.com/openthread/ot-link/types"
)

type AddrType uint8

const (
	AddrTypeNone     AddrType = 0
	AddrTypeShort    AddrType = 2
	AddrTypeExtended AddrType = 3
)

// Address is a MAC addressing field: none, 16-bit short, or EUI-64 extended.
type Address struct {
	Type     AddrType
	Short    Rloc16
	Extended ExtAddress
}

func ShortAddress(short Rloc16) Address {
	return Address{Type: AddrTypeShort, Short: short}
}

func ExtendedAddress(ext ExtAddress) Address {
	return Address{Type: AddrTypeExtended, Extended: ext}
}

func (a Address) IsNone() bool {
	return a.Type == AddrTypeNone
}

func (a Address) String() string {
	switch a.Type {
	case AddrTypeShort:
		return fmt.Sprintf("0x%04x", a.Short)
	case AddrTypeExtended:
		return ExtAddressString(a.Extended)
	default:
		return "-"
	}
}

// Addresses holds the MAC source and destination of a frame being prepared.
type Addresses struct {
	Source      Address
	Destination Address
}

// RendezvousTimeIe carries the offset between the end of a wake-up frame and
// the expected start of the peripheral's reply, in units of 10 symbols.
type RendezvousTimeIe struct {
	RendezvousTime uint16
}

// ConnectionIe carries the retry schedule the woken peripheral should use
// when answering a wake-up frame.
type ConnectionIe struct {
	RetryInterval uint8
	RetryCount    uint8
}

type FrameType uint8

const (
	FrameTypeData   FrameType = 1
	FrameTypeWakeup FrameType = 5 // multipurpose frame carrying wake-up IEs
)

// TxFrame is a MAC frame under construction for transmission. The radio
// driver consumes Bytes() plus the tx-delay and CSMA fields.
type TxFrame struct {
	Type            FrameType
	PanId           PanId
	Addrs           Addresses
	Sequence        uint8
	AckRequest      bool
	SecurityEnabled bool
	KeyId           uint8
	KeySource       [4]byte // big-endian key sequence, set by the MAC on every secured frame
	FrameCounter    uint32
	Payload         []byte

	TxDelay         uint32
	TxDelayBaseTime uint32
	CsmaCaEnabled   bool
	MaxCsmaBackoffs uint8
	MaxFrameRetries uint8

	CslIePresent   bool
	RendezvousTime *RendezvousTimeIe
	Connection     *ConnectionIe

	isARetransmission bool
	headerUpdated     bool
	prepared          bool
}

// Reset returns the frame to the empty state so it can be prepared anew.
func (f *TxFrame) Reset() {
	*f = TxFrame{}
}

// IsEmpty reports whether no frame content has been prepared.
func (f *TxFrame) IsEmpty() bool {
	return !f.prepared
}

// SetPrepared marks the frame as carrying valid content.
func (f *TxFrame) SetPrepared() {
	f.prepared = true
}

func (f *TxFrame) IsARetransmission() bool {
	return f.isARetransmission
}

func (f *TxFrame) SetIsARetransmission(retx bool) {
	f.isARetransmission = retx
}

// IsHeaderUpdated reports whether the MAC has written the security fields
// (frame counter, key id) into the frame header.
func (f *TxFrame) IsHeaderUpdated() bool {
	return f.headerUpdated
}

func (f *TxFrame) SetHeaderUpdated(updated bool) {
	f.headerUpdated = updated
}

// SetFrameCounter presets the security frame counter, e.g. to reuse the value
// of a previous transmit attempt. The MAC will not overwrite it.
func (f *TxFrame) SetFrameCounter(counter uint32) {
	f.FrameCounter = counter
	f.headerUpdated = true
}

// SetKeyId presets the security key id; see SetFrameCounter.
func (f *TxFrame) SetKeyId(keyId uint8) {
	f.KeyId = keyId
	f.headerUpdated = true
}

// GenerateWakeupFrame fills in the frame as a wake-up frame: extended
// addressing, security enabled, and the Rendezvous Time and Connection IEs
// left for the caller to populate. The key source (key sequence) and frame
// counter are filled in by the MAC at transmit time.
func (f *TxFrame) GenerateWakeupFrame(panId PanId, target Address, source Address) error {
	if target.Type != AddrTypeExtended || source.Type != AddrTypeExtended {
		return ErrInvalidState
	}

	f.Reset()
	f.Type = FrameTypeWakeup
	f.PanId = panId
	f.Addrs.Destination = target
	f.Addrs.Source = source
	f.SecurityEnabled = true
	f.RendezvousTime = &RendezvousTimeIe{}
	f.Connection = &ConnectionIe{}
	f.prepared = true

	return nil
}

// Bytes serializes the frame MHR, auxiliary security header, IEs and payload
// for the radio driver and PCAP capture. Field layout follows
// IEEE 802.15.4-2015 with frame version 2, except that the frame type field
// is always data and the IE contents are written without IE headers.
func (f *TxFrame) Bytes() []byte {
	var fc uint16

	fc = uint16(FrameTypeData) & 0x0007
	if f.SecurityEnabled {
		fc |= 0x0008
	}
	if f.AckRequest {
		fc |= 0x0020
	}
	fc |= 0x0040 // PAN ID compression, single dst PAN ID field
	if f.RendezvousTime != nil || f.Connection != nil || f.CslIePresent {
		fc |= 0x0200 // IE present
	}
	fc |= 0x2000 // frame version 2
	fc |= uint16(f.Addrs.Destination.Type) << 10
	fc |= uint16(f.Addrs.Source.Type) << 14

	b := make([]byte, 2, 64)
	binary.LittleEndian.PutUint16(b, fc)
	b = append(b, f.Sequence)
	b = appendUint16(b, uint16(f.PanId))
	b = appendAddress(b, f.Addrs.Destination)
	b = appendAddress(b, f.Addrs.Source)

	if f.SecurityEnabled {
		b = append(b, 0x15) // security level 5, key id mode 2 (4-byte key source, key index)
		b = appendUint32(b, f.FrameCounter)
		b = append(b, f.KeySource[:]...)
		b = append(b, f.KeyId)
	}

	if f.RendezvousTime != nil {
		b = appendUint16(b, f.RendezvousTime.RendezvousTime)
	}
	if f.Connection != nil {
		b = append(b, f.Connection.RetryInterval, f.Connection.RetryCount)
	}

	return append(b, f.Payload...)
}

func appendUint16(b []byte, v uint16) []byte {
	return append(b, byte(v), byte(v>>8))
}

func appendUint32(b []byte, v uint32) []byte {
	return append(b, byte(v), byte(v>>8), byte(v>>16), byte(v>>24))
}

func appendAddress(b []byte, addr Address) []byte {
	switch addr.Type {
	case AddrTypeShort:
		return appendUint16(b, uint16(addr.Short))
	case AddrTypeExtended:
		var ext [8]byte
		binary.LittleEndian.PutUint64(ext[:], addr.Extended)
		return append(b, ext[:]...)
	default:
		return b
	}
}

// TxFrames is the per-radio-link frame buffer handed to frame-request
// callbacks.
type TxFrames struct {
	frame TxFrame
}

// GetTxFrame returns the tx frame buffer, reset for preparation.
func (t *TxFrames) GetTxFrame() *TxFrame {
	t.frame.Reset()
	return &t.frame
}

// RxFrame is the receive-side view of a frame, as handed up by the radio.
type RxFrame struct {
	Type            FrameType
	SrcAddr         Address
	DstAddr         Address
	Sequence        uint8
	SecurityEnabled bool
	KeySource       [4]byte
	FrameCounter    uint32
	Timestamp       uint64 // radio time of reception, microseconds
	Payload         []byte

	RendezvousTime *RendezvousTimeIe
	Connection     *ConnectionIe
}

// KeySequence reads the 32-bit key sequence carried big-endian in the key
// source field.
func (f *RxFrame) KeySequence() uint32 {
	return binary.BigEndian.Uint32(f.KeySource[:])
}
