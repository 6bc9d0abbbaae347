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
	"errors"

	"github.com/simonlingoogle/go-simplelogger"
)

// TxStatus is the MAC transmit completion status. Values inherit the
// OT_ERROR_* numbering from OpenThread error.h.
type TxStatus = uint8

const (
	OT_ERROR_NONE                   TxStatus = 0
	OT_ERROR_NO_BUFS                TxStatus = 3
	OT_ERROR_SECURITY               TxStatus = 8
	OT_ERROR_ABORT                  TxStatus = 11
	OT_ERROR_NOT_IMPLEMENTED        TxStatus = 12
	OT_ERROR_INVALID_STATE          TxStatus = 13
	OT_ERROR_NO_ACK                 TxStatus = 14
	OT_ERROR_CHANNEL_ACCESS_FAILURE TxStatus = 15
	OT_ERROR_FCS                    TxStatus = 17
)

func TxStatusString(status TxStatus) string {
	switch status {
	case OT_ERROR_NONE:
		return "none"
	case OT_ERROR_ABORT:
		return "abort"
	case OT_ERROR_NO_ACK:
		return "no-ack"
	case OT_ERROR_CHANNEL_ACCESS_FAILURE:
		return "channel-access-failure"
	case OT_ERROR_FCS:
		return "fcs"
	default:
		simplelogger.Panicf("invalid tx status: %v", status)
		return "invalid"
	}
}

// Errors returned from public operations of the link-layer components.
var (
	ErrNoBufs         = errors.New("no bufs")
	ErrInvalidState   = errors.New("invalid state")
	ErrSecurity       = errors.New("security")
	ErrAbort          = errors.New("abort")
	ErrNotImplemented = errors.New("not implemented")
)
