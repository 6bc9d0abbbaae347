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

// Package config carries the compile-time-style configuration of the
// link-layer components, loadable from a YAML file.
package config

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config mirrors the OPENTHREAD_CONFIG_* options consumed by the link-layer
// liveness and coordinated-sleep components.
type Config struct {
	// EnhCslTxAttempts is the default maximum number of enhanced CSL
	// triggered tx attempts before the peer is considered out of sync.
	EnhCslTxAttempts uint8 `yaml:"mac-enh-csl-tx-attempts"`

	// CslRequestAheadUs is the base scheduling lead time for CSL and wake-up
	// frame requests, excluding the radio bus tx time.
	CslRequestAheadUs uint32 `yaml:"mac-csl-request-ahead-us"`

	// MaxWakeupCoords is the capacity of the wake-up coordinator table.
	MaxWakeupCoords uint8 `yaml:"mac-max-wakeup-coords"`

	// WakeupCoordEvictAgeSecs is the age after which a wake-up coordinator
	// entry may be evicted to make room.
	WakeupCoordEvictAgeSecs uint32 `yaml:"mac-wc-evict-age"`

	// ConnectionRetryInterval and ConnectionRetryCount fill the Connection IE
	// of wake-up frames sent by a CSL central.
	ConnectionRetryInterval uint8 `yaml:"mac-csl-central-connection-retry-interval"`
	ConnectionRetryCount    uint8 `yaml:"mac-csl-central-connection-retry-count"`

	// SupervisionTimeoutSecs and SupervisionIntervalSecs are the child
	// supervision listener defaults.
	SupervisionTimeoutSecs  uint16 `yaml:"child-supervision-default-timeout"`
	SupervisionIntervalSecs uint16 `yaml:"child-supervision-default-interval"`

	// WorInterval and WorTimeout replace the supervision interval and timeout
	// while a CSL peripheral is tracking a central, in units of 100 ms.
	WorInterval uint16 `yaml:"wor-interval"`
	WorTimeout  uint16 `yaml:"wor-timeout"`
}

// DefaultConfig returns the defaults matching the OpenThread core config.
func DefaultConfig() Config {
	return Config{
		EnhCslTxAttempts:        4,
		CslRequestAheadUs:       2000,
		MaxWakeupCoords:         4,
		WakeupCoordEvictAgeSecs: 3600,
		ConnectionRetryInterval: 2,
		ConnectionRetryCount:    4,
		SupervisionTimeoutSecs:  190,
		SupervisionIntervalSecs: 129,
		WorInterval:             10,
		WorTimeout:              30,
	}
}

// Load reads a YAML config file, applying its keys over the defaults.
func Load(filename string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(filename)
	if err != nil {
		return cfg, errors.Wrapf(err, "reading config file %s", filename)
	}

	if err = yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "parsing config file %s", filename)
	}

	return cfg, nil
}
