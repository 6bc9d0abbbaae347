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

package cli

import (
	"fmt"
	"io"

	"github.com/openthread/ot-link/logger"
	"github.com/openthread/ot-link/sim"
)

// cmdRunner executes parsed CLI commands against the simulation.
type cmdRunner struct {
	sim  *sim.Simulation
	help Help
}

func newCmdRunner(s *sim.Simulation) *cmdRunner {
	return &cmdRunner{
		sim:  s,
		help: newHelp(),
	}
}

// execute runs one command; it returns io.EOF to leave the console.
func (cr *cmdRunner) execute(cmd *Command, output io.Writer) error {
	switch {
	case cmd.Counters != nil:
		_, _ = fmt.Fprintln(output, cr.sim.Counters())

	case cmd.Drop != nil:
		cr.sim.DropNext(cmd.Drop.Count)

	case cmd.Energy != nil:
		_, _ = fmt.Fprintln(output, cr.sim.Energy())

	case cmd.Exit != nil:
		return io.EOF

	case cmd.Go != nil:
		durationUs, err := parseDuration(cmd.Go.Time)
		if err != nil {
			return err
		}
		cr.sim.Go(durationUs)

	case cmd.Help != nil:
		if cmd.Help.HelpTopic == "" {
			_, _ = fmt.Fprint(output, cr.help.outputGeneralHelp())
		} else {
			_, _ = fmt.Fprint(output, cr.help.outputCommandHelp(cmd.Help.HelpTopic))
		}

	case cmd.LogLevel != nil:
		if cmd.LogLevel.Level == "" {
			_, _ = fmt.Fprintf(output, "%d\n", logger.GetLevel())
		} else {
			logger.SetLevel(logger.ParseLevel(cmd.LogLevel.Level))
		}

	case cmd.Queue != nil:
		size := 16
		if cmd.Queue.Size != nil {
			size = *cmd.Queue.Size
		}
		if err := cr.sim.QueueIndirect(cmd.Queue.Count, size); err != nil {
			return err
		}

	case cmd.Status != nil:
		_, _ = fmt.Fprintln(output, cr.sim.Status())

	case cmd.Supervision != nil:
		if cmd.Supervision.Interval != nil {
			cr.sim.SetSupervisionInterval(uint16(cmd.Supervision.Interval.Val))
		} else {
			cr.sim.SetSupervisionTimeout(uint16(cmd.Supervision.Timeout.Val))
		}

	case cmd.Wakeup != nil:
		intervalUs, durationMs := uint32(10000), uint32(500)
		if cmd.Wakeup.IntervalUs != nil {
			intervalUs = uint32(*cmd.Wakeup.IntervalUs)
		}
		if cmd.Wakeup.DurationMs != nil {
			durationMs = uint32(*cmd.Wakeup.DurationMs)
		}
		if err := cr.sim.Wakeup(intervalUs, durationMs); err != nil {
			return err
		}

	default:
		return fmt.Errorf("unknown command")
	}

	return nil
}
