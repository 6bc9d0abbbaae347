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
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/mitchellh/go-wordwrap"
	"golang.org/x/term"

	"github.com/openthread/ot-link/logger"
)

// Help displays CLI command help to the user, sourced from the embedded
// command reference.
type Help struct {
	termWidth     uint
	commands      map[string]string
	commandsShort map[string]string
}

// Embed the CLI help file as a static resource.
//
//go:embed README.md
var cliHelpFile string

func newHelp() Help {
	h := Help{
		termWidth:     80,
		commands:      make(map[string]string),
		commandsShort: make(map[string]string),
	}
	h.parseHelpFile()
	h.update()
	return h
}

// update takes the current user's terminal size into account.
func (help *Help) update() {
	fdTerm := int(os.Stdout.Fd())
	if term.IsTerminal(fdTerm) {
		width, _, err := term.GetSize(fdTerm)
		logger.PanicIfError(err, "Could not get terminal size.")
		help.termWidth = uint(width)
	}
}

func (help *Help) parseHelpFile() {
	var cmd string

	for _, line := range strings.Split(cliHelpFile, "\n") {
		if strings.HasPrefix(line, "### ") {
			cmd = strings.TrimSpace(line[4:])
			help.commands[cmd] = ""
			continue
		}
		if cmd == "" {
			continue
		}

		help.commands[cmd] += line + "\n"
		if help.commandsShort[cmd] == "" && strings.TrimSpace(line) != "" {
			help.commandsShort[cmd] = strings.TrimSpace(line)
		}
	}
}

// outputGeneralHelp formats short help for all commands.
func (help *Help) outputGeneralHelp() string {
	cmdHelp := ""
	cmds := make([]string, 0, len(help.commandsShort))
	for k := range help.commandsShort {
		cmds = append(cmds, k)
	}
	sort.Strings(cmds)

	for _, c := range cmds {
		cmdHelp += fmt.Sprintf("%-15s %s\n", c, help.commandsShort[c])
	}
	return cmdHelp +
		wordwrap.WrapString("\nFor detailed help per command, use: 'help <command>'\n", help.termWidth)
}

// outputCommandHelp formats help for one specific command.
func (help *Help) outputCommandHelp(command string) string {
	text, ok := help.commands[command]
	if !ok {
		return fmt.Sprintf("Unknown command: %s\n", command)
	}
	return wordwrap.WrapString(strings.TrimSpace(text)+"\n", help.termWidth)
}
