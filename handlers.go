/*
   Copyright (c) 2023, btnmasher
   All rights reserved.
   Use of this source code is governed by a BSD-style
   license that can be found in the LICENSE file.
*/

package miniircd

import (
	"fmt"
	"strings"

	"github.com/relaycore/miniircd/shared/stringutils"
)

// defaultAwayMessage is used by a bare /away when the caller has no
// away message set yet.
const defaultAwayMessage = "Je suis absent pour le moment."

// helpText is sent verbatim in response to /help.
const helpText = `/away [message]  Announce your absence; a private message sent to you while
                 away is bounced back to the sender instead of delivered.
                 A second /away with no argument clears it.

/help  Show this list of commands.

/invite <nick>  Invite a user to the channel you are currently in.

/join <channel> [key]  Join a channel, optionally protected by a key.
                       The channel is created if it does not exist.

/list  List every channel known to the server.

/msg [channel|nick] message  Send a message to a user or a public channel, whether
                           or not you are a member. A channel with a key cannot
                           be named as the target. The target is optional; it
                           defaults to your current channel.

/names [channel]  List the members of a channel. With no channel, list every
                  registered nickname.

/exit  Disconnect cleanly.`

// normalizeChannelName strips any '#' characters from s and prepends
// exactly one, so "foo", "#foo", and "##foo" all name the same
// channel.
func normalizeChannelName(s string) string {
	return "#" + strings.ReplaceAll(s, "#", "")
}

// argumentError replies ARGUMENT_ERROR to the caller. Argument-count
// violations perform no state change.
func argumentError(caller *Connection) bool {
	_ = caller.Send(SentinelArgumentError)
	return false
}

func handleHelp(_ *Registry, caller *Connection, args []string) bool {
	if len(args) != 0 {
		return argumentError(caller)
	}
	_ = caller.Send(helpText)
	return false
}

func handleList(reg *Registry, caller *Connection, args []string) bool {
	if len(args) != 0 {
		return argumentError(caller)
	}
	for _, frame := range chunkedReply(reg.ChannelNames()) {
		_ = caller.Send(frame)
	}
	return false
}

func handleNames(reg *Registry, caller *Connection, args []string) bool {
	if len(args) > 1 {
		return argumentError(caller)
	}

	if len(args) == 0 {
		for _, frame := range chunkedReply(reg.Nicknames()) {
			_ = caller.Send(frame)
		}
		return false
	}

	name := normalizeChannelName(args[0])
	ch, ok := reg.Channel(name)
	if !ok {
		_ = caller.Send(SentinelChannelError)
		return false
	}

	for _, frame := range chunkedReply(ch.Members()) {
		_ = caller.Send(frame)
	}
	return false
}

func handleAway(_ *Registry, caller *Connection, args []string) bool {
	if len(args) > 1 {
		return argumentError(caller)
	}

	if len(args) == 1 {
		caller.SetAwayMessage(args[0])
		return false
	}

	if caller.AwayMessage() != "" {
		caller.SetAwayMessage("")
	} else {
		caller.SetAwayMessage(defaultAwayMessage)
	}
	return false
}

func handleInvite(reg *Registry, caller *Connection, args []string) bool {
	if len(args) != 1 {
		return argumentError(caller)
	}

	target := args[0]
	chanName := caller.CurrentChannel()

	invite := fmt.Sprintf("<%s> Bonjour <%s> je t'invite à me rejoindre sur le canal %s.", caller.Nickname(), target, chanName)
	if ch, ok := reg.Channel(chanName); ok && ch.Key() != "" {
		invite += fmt.Sprintf("\nMot de passe : [%s].", ch.Key())
	}

	found := false
	reg.WithUser(target, func(peer *Connection) {
		if peer == nil {
			return
		}
		found = true
		_ = peer.Send(invite)
	})

	if !found {
		_ = caller.Send(SentinelNicknameError)
	}
	return false
}

func handleJoin(reg *Registry, caller *Connection, args []string) bool {
	if len(args) != 1 && len(args) != 2 {
		return argumentError(caller)
	}

	name := normalizeChannelName(args[0])
	suppliedKey := ""
	if len(args) == 2 {
		suppliedKey = args[1]
	}

	ch := reg.CreateOrGetChannel(name, suppliedKey)
	if ch.Key() != suppliedKey {
		_ = caller.Send(SentinelChannelKeyErr)
		return false
	}

	ch.Join(caller.Nickname())

	previous := caller.CurrentChannel()
	if previous != name {
		if prevCh, ok := reg.Channel(previous); ok {
			prevCh.Leave(caller.Nickname())
		}
	}

	caller.SetCurrentChannel(name)
	_ = caller.Send(joinPrefix + name)
	return false
}

func handleMsg(reg *Registry, caller *Connection, args []string) bool {
	switch len(args) {
	case 1:
		broadcastToChannel(reg, caller.CurrentChannel(), caller.Nickname(), args[0])
	case 2:
		target, text := args[0], args[1]
		if strings.HasPrefix(target, "#") {
			ch, ok := reg.Channel(target)
			if !ok {
				_ = caller.Send(SentinelChannelError)
				return false
			}
			if ch.Key() != "" {
				_ = caller.Send(SentinelChannelKeyErr)
				return false
			}
			broadcastToChannel(reg, target, caller.Nickname(), text)
			return false
		}

		found := false
		reg.WithUser(target, func(peer *Connection) {
			if peer == nil {
				return
			}
			found = true
			if away := peer.AwayMessage(); away != "" {
				_ = caller.Send(fmt.Sprintf("<%s> %s", target, away))
				return
			}
			_ = peer.Send(fmt.Sprintf("<%s> %s", caller.Nickname(), text))
		})

		if !found {
			_ = caller.Send(SentinelNicknameError)
		}
	default:
		return argumentError(caller)
	}
	return false
}

// broadcastToChannel delivers "chan <sender> text" to a snapshot
// of chan's current members. Each per-recipient send is individually
// guarded by the registry's users-lock and the recipient's own
// send-serializer (via Registry.WithUser), so a member that exits
// mid-broadcast is simply skipped rather than sent to a closed socket.
func broadcastToChannel(reg *Registry, chanName, sender, text string) {
	ch, ok := reg.Channel(chanName)
	if !ok {
		return
	}

	frame := fmt.Sprintf("%s <%s> %s", chanName, sender, text)
	for _, nick := range ch.Members() {
		reg.WithUser(nick, func(peer *Connection) {
			if peer != nil {
				_ = peer.Send(frame)
			}
		})
	}
}

func handleExit(reg *Registry, caller *Connection, _ []string) bool {
	if ch, ok := reg.Channel(caller.CurrentChannel()); ok {
		ch.Leave(caller.Nickname())
	}
	reg.Unregister(caller.Nickname())
	_ = caller.Close()
	return true
}

// chunkedReply joins items with newlines into as few frames as
// possible without exceeding the wire budget, used by /list and
// /names for their bulk replies.
func chunkedReply(items []string) []string {
	return stringutils.ChunkJoinStrings(MaxFrameLength, "\n", items...)
}
