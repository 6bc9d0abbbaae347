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

// linksim is an interactive two-node simulator for the link-layer liveness
// and coordinated-sleep components: a CSL central and a sleepy CSL
// peripheral on a virtual radio medium.
package main

import (
	"context"
	"flag"

	"github.com/openthread/ot-link/cli"
	"github.com/openthread/ot-link/config"
	"github.com/openthread/ot-link/logger"
	"github.com/openthread/ot-link/progctx"
	"github.com/openthread/ot-link/sim"
)

func main() {
	var (
		configFile = flag.String("config", "", "YAML configuration file")
		pcapFile   = flag.String("pcap", "", "write transmitted frames to a PCAP file")
		seed       = flag.Int64("seed", 0, "root PRNG seed, 0 picks a time-based seed")
		logLevel   = flag.String("log", "info", "log level")
	)
	flag.Parse()

	logger.SetLevel(logger.ParseLevel(*logLevel))

	cfg := config.DefaultConfig()
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		logger.FatalIfError(err)
	}

	s, err := sim.NewSimulation(cfg, *seed, *pcapFile)
	logger.FatalIfError(err)

	ctx := progctx.New(context.Background())
	ctx.Defer(s.Close)

	cli.Run(ctx, s)
	ctx.Wait()
}
