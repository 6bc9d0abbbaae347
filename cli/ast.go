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
	"strconv"
	"strings"

	"github.com/alecthomas/participle"
	"github.com/pkg/errors"
)

// noinspection GoStructTag
type Command struct {
	Counters    *CountersCmd    `  @@` //nolint
	Drop        *DropCmd        `| @@` //nolint
	Energy      *EnergyCmd      `| @@` //nolint
	Exit        *ExitCmd        `| @@` //nolint
	Go          *GoCmd          `| @@` //nolint
	Help        *HelpCmd        `| @@` //nolint
	LogLevel    *LogLevelCmd    `| @@` //nolint
	Queue       *QueueCmd       `| @@` //nolint
	Status      *StatusCmd      `| @@` //nolint
	Supervision *SupervisionCmd `| @@` //nolint
	Wakeup      *WakeupCmd      `| @@` //nolint
}

// noinspection GoStructTag
type CountersCmd struct {
	Cmd struct{} `"counters"` //nolint
}

// noinspection GoStructTag
type DropCmd struct {
	Cmd   struct{} `"drop"` //nolint
	Count int      `@Int`   //nolint
}

// noinspection GoStructTag
type EnergyCmd struct {
	Cmd struct{} `"energy"` //nolint
}

// noinspection GoStructTag
type ExitCmd struct {
	Cmd struct{} `"exit"` //nolint
}

// noinspection GoStructTag
type GoCmd struct {
	Cmd  struct{} `"go"`                                //nolint
	Time string   `@((Int|Float)["h"|"us"|"m"|"ms"|"s"])` //nolint
}

// noinspection GoStructTag
type HelpCmd struct {
	Cmd       struct{} `"help"`       //nolint
	HelpTopic string   `[ (@Ident) ]` //nolint
}

// noinspection GoStructTag
type LogLevelCmd struct {
	Cmd   struct{} `"log"`                                                                  //nolint
	Level string   `[@( "trace"|"debug"|"info"|"note"|"warn"|"error"|"D"|"I"|"N"|"W"|"E" )]` //nolint
}

// noinspection GoStructTag
type QueueCmd struct {
	Cmd   struct{} `"queue"`    //nolint
	Count int      `@Int`       //nolint
	Size  *int     `[ @Int ]`   //nolint
}

// noinspection GoStructTag
type StatusCmd struct {
	Cmd struct{} `"status"` //nolint
}

// noinspection GoStructTag
type SupervisionCmd struct {
	Cmd      struct{}                `"supervision"` //nolint
	Interval *SupervisionIntervalCmd `( @@`          //nolint
	Timeout  *SupervisionTimeoutCmd  `| @@ )`        //nolint
}

// noinspection GoStructTag
type SupervisionIntervalCmd struct {
	Cmd struct{} `"interval"` //nolint
	Val int      `@Int`       //nolint
}

// noinspection GoStructTag
type SupervisionTimeoutCmd struct {
	Cmd struct{} `"timeout"` //nolint
	Val int      `@Int`      //nolint
}

// noinspection GoStructTag
type WakeupCmd struct {
	Cmd        struct{} `"wakeup"`        //nolint
	IntervalUs *int     `[ @Int`          //nolint
	DurationMs *int     `  [ @Int ] ]`    //nolint
}

var (
	commandParser = participle.MustBuild(&Command{})
)

func parseCmdBytes(b []byte, cmd *Command) error {
	return commandParser.ParseBytes(b, cmd)
}

// parseDuration parses a "go" time argument like 100ms, 2s, 1.5m or 3h into
// microseconds.
func parseDuration(s string) (uint64, error) {
	mult := float64(1000000) // bare numbers are seconds
	switch {
	case strings.HasSuffix(s, "us"):
		s, mult = s[:len(s)-2], 1
	case strings.HasSuffix(s, "ms"):
		s, mult = s[:len(s)-2], 1000
	case strings.HasSuffix(s, "s"):
		s = s[:len(s)-1]
	case strings.HasSuffix(s, "m"):
		s, mult = s[:len(s)-1], 60000000
	case strings.HasSuffix(s, "h"):
		s, mult = s[:len(s)-1], 3600000000
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid duration %q", s)
	}
	return uint64(v * mult), nil
}
