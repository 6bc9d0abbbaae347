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

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, uint8(4), cfg.EnhCslTxAttempts)
	assert.Equal(t, uint32(2000), cfg.CslRequestAheadUs)
	assert.Equal(t, uint16(190), cfg.SupervisionTimeoutSecs)
	assert.Equal(t, uint16(129), cfg.SupervisionIntervalSecs)
}

func TestLoad(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "linksim.yaml")
	content := []byte("mac-enh-csl-tx-attempts: 8\nmac-csl-request-ahead-us: 1500\nwor-timeout: 50\n")
	assert.NoError(t, os.WriteFile(filename, content, 0644))

	cfg, err := Load(filename)
	assert.NoError(t, err)

	// Overridden keys.
	assert.Equal(t, uint8(8), cfg.EnhCslTxAttempts)
	assert.Equal(t, uint32(1500), cfg.CslRequestAheadUs)
	assert.Equal(t, uint16(50), cfg.WorTimeout)

	// Untouched keys keep the defaults.
	assert.Equal(t, uint16(190), cfg.SupervisionTimeoutSecs)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("/nonexistent/linksim.yaml")
	assert.Error(t, err)
}
