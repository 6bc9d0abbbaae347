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

// Package prng provides the seeded random generators used by the simulation
// harness, so that runs are reproducible for a given root seed.
package prng

import (
	"math/rand"
	"time"
)

var clockOffsetRandGenerator *rand.Rand
var dsnRandGenerator *rand.Rand
var unitRandGenerator *rand.Rand

// Init initializes the prng package, either with a fixed PRNG seed
// (rootSeed != 0) or a 'random' time-based PRNG seed (if rootSeed == 0).
func Init(rootSeed int64) {
	if rootSeed == 0 {
		rootSeed = time.Now().UnixNano()
	}

	clockOffsetRandGenerator = rand.New(rand.NewSource(rootSeed + 1))
	dsnRandGenerator = rand.New(rand.NewSource(rootSeed + 2))
	unitRandGenerator = rand.New(rand.NewSource(rootSeed + 3))
}

// NewRadioClockOffset generates a radio-vs-scheduler clock offset in
// microseconds, up to maxOffsetUs.
func NewRadioClockOffset(maxOffsetUs int) uint64 {
	return uint64(clockOffsetRandGenerator.Intn(maxOffsetUs))
}

// NewDsn generates an initial MAC data sequence number.
func NewDsn() uint8 {
	return uint8(dsnRandGenerator.Intn(256))
}

// NewUnitRandom generates a random unit [0, 1) float, usable as a random
// probability.
func NewUnitRandom() float64 {
	return unitRandGenerator.Float64()
}
