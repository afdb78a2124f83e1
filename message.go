/*
   Copyright (c) 2023, btnmasher
   All rights reserved.
   Use of this source code is governed by a BSD-style
   license that can be found in the LICENSE file.
*/

package miniircd

import (
	"bytes"
	"strings"

	"github.com/relaycore/miniircd/shared/itempool"
	"github.com/relaycore/miniircd/shared/pool"
)

// MaxFrameLength is the largest single frame read from a client in one
// receive, matching the 1024-byte recv budget in the protocol
// description. Bulk replies (/list, /names) are chunked to fit it;
// other outgoing frames are sent as-is without a length check.
const MaxFrameLength = 1024

// Wire sentinel replies. These are the literal UTF-8 byte strings a
// client may receive out-of-band of ordinary chat text.
const (
	SentinelNicknameError  = "NICKNAME_ERROR"
	SentinelArgumentError  = "ARGUMENT_ERROR"
	SentinelChannelError   = "CHANNEL_ERROR"
	SentinelChannelKeyErr  = "CHANNEL_KEY_ERROR"
	SentinelUnknownCmdErr  = "UNKNOWN_CMD_ERROR"
	joinPrefix             = "/join "
	defaultChannelName     = "#default"
)

// Command represents one decoded client command line: the first
// whitespace-delimited token and the remaining argv, tokenized by
// plain whitespace splitting. Commands that need POSIX shell-quoting
// are re-tokenized from Raw by the session loop; Args is not updated.
type Command struct {
	Name string   // first token, e.g. "/msg"
	Args []string // remaining tokens, not including Name
	Raw  string   // the frame exactly as received, trimmed
}

// Scrub resets a Command so it can be returned to the pool clean.
func (c *Command) Scrub() {
	c.Name = ""
	c.Args = nil
	c.Raw = ""
}

var cmdPool = itempool.New[*Command](256, func() *Command { return &Command{} })

// bufferPool backs outgoing frame rendering. *bytes.Buffer already
// satisfies pool.Resettable via its own Reset method.
var bufferPool = pool.New[*bytes.Buffer](func() *bytes.Buffer { return new(bytes.Buffer) })

// ParseCommand decodes one received frame into a Command. It does not
// perform the POSIX shell-quoting re-tokenization required for /msg
// and /away — that happens in the session loop (session.go) once the
// command name is known, since only those two commands need it.
func ParseCommand(frame string) *Command {
	raw := strings.TrimSpace(frame)

	cmd := cmdPool.New()
	cmd.Raw = raw

	if raw == "" {
		cmd.Name = "/exit"
		return cmd
	}

	fields := strings.Fields(raw)
	cmd.Name = fields[0]
	if len(fields) > 1 {
		cmd.Args = fields[1:]
	}

	return cmd
}

// RecycleCommand returns a Command to the pool.
func RecycleCommand(cmd *Command) {
	cmdPool.Recycle(cmd)
}

// renderFrame writes s into a pooled buffer and returns its bytes.
// Callers must call releaseFrame once the bytes have been written to
// the socket.
func renderFrame(s string) *bytes.Buffer {
	buf := bufferPool.New()
	buf.WriteString(s)
	return buf
}

func releaseFrame(buf *bytes.Buffer) {
	bufferPool.Recycle(buf)
}
