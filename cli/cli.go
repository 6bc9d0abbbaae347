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

// Package cli implements the interactive console of the link simulator. It
// parses and executes CLI commands against the simulation.
package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/pkg/errors"

	"github.com/openthread/ot-link/logger"
	"github.com/openthread/ot-link/progctx"
	"github.com/openthread/ot-link/sim"
)

const (
	prompt = "> " // the default CLI prompt
)

var (
	readlineInstance *readline.Instance
)

// promptRestorer restores the console prompt after log output was written.
type promptRestorer struct{}

func (promptRestorer) OnStdout() {
	if readlineInstance != nil {
		readlineInstance.Refresh()
	}
}

// Run runs the CLI console until exit or EOF.
func Run(ctx *progctx.ProgCtx, s *sim.Simulation) {
	var err error
	defer func() {
		ctx.Cancel(errors.Wrapf(err, "console exit"))
	}()

	ctx.WaitAdd("cli", 1)
	defer ctx.WaitDone("cli")

	err = run(ctx, s)
}

func run(ctx *progctx.ProgCtx, s *sim.Simulation) error {
	cr := newCmdRunner(s)

	stdinFd := int(os.Stdin.Fd())
	if readline.IsTerminal(stdinFd) {
		stdinState, err := readline.GetState(stdinFd)
		if err != nil {
			return err
		}

		defer func() {
			_ = readline.Restore(stdinFd, stdinState)
		}()
	}

	l, err := readline.NewEx(&readline.Config{
		Prompt:          prompt,
		HistoryFile:     "/tmp/ot-link-cmds.tmp",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",

		HistorySearchFold: true,
		FuncFilterInputRune: func(r rune) (rune, bool) {
			switch r {
			// block CtrlZ feature
			case readline.CharCtrlZ:
				return r, false
			}
			return r, true
		},
	})

	if err != nil {
		return err
	}
	defer func() {
		_ = l.Close()
	}()
	readlineInstance = l
	logger.SetStdoutCallback(promptRestorer{})

	for {
		line, err := l.Readline()

		if ctx.Err() != nil {
			// program exited, quit console too
			return nil
		}

		if err == readline.ErrInterrupt {
			if len(line) == 0 {
				return nil
			}
			continue
		} else if err == io.EOF {
			return nil
		} else if err != nil {
			return err
		}

		line = strings.TrimSpace(line)
		if len(line) == 0 {
			continue
		}

		cmd := &Command{}
		if err := parseCmdBytes([]byte(line), cmd); err != nil {
			if _, err := fmt.Fprintf(os.Stdout, "Error: %v\n", err); err != nil {
				return err
			}
			continue
		}

		if err := cr.execute(cmd, os.Stdout); err != nil {
			if err == io.EOF {
				return nil
			}
			if _, err := fmt.Fprintf(os.Stdout, "Error: %v\n", err); err != nil {
				return err
			}
		} else {
			if _, err := fmt.Fprintf(os.Stdout, "Done\n"); err != nil {
				return err
			}
		}

		_ = os.Stdout.Sync()
	}
}
