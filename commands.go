/*
   Copyright (c) 2023, btnmasher
   All rights reserved.
   Use of this source code is governed by a BSD-style
   license that can be found in the LICENSE file.
*/

package miniircd

// Command name tokens recognized by the session loop.
const (
	CmdHelp   = "/help"
	CmdAway   = "/away"
	CmdInvite = "/invite"
	CmdJoin   = "/join"
	CmdList   = "/list"
	CmdMsg    = "/msg"
	CmdNames  = "/names"
	CmdExit   = "/exit"
)

// quotedCommands re-tokenize their argument line with POSIX
// shell-quoting rules rather than plain whitespace splitting.
var quotedCommands = map[string]bool{
	CmdMsg:  true,
	CmdAway: true,
}

// handlerFunc processes one already-tokenized command for caller. It
// returns true if the session should terminate after this call (only
// /exit does this).
type handlerFunc func(reg *Registry, caller *Connection, args []string) bool

var handlers = map[string]handlerFunc{
	CmdHelp:   handleHelp,
	CmdAway:   handleAway,
	CmdInvite: handleInvite,
	CmdJoin:   handleJoin,
	CmdList:   handleList,
	CmdMsg:    handleMsg,
	CmdNames:  handleNames,
	CmdExit:   handleExit,
}
