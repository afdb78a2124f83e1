/*
   Copyright (c) 2023, btnmasher
   All rights reserved.
   Use of this source code is governed by a BSD-style
   license that can be found in the LICENSE file.
*/

package miniircd

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// captureConn is a net.Conn that records everything written to it, so
// handler tests can assert on exactly what a caller or peer received.
type captureConn struct {
	net.Conn
	frames []string
}

func (c *captureConn) Write(p []byte) (int, error) {
	c.frames = append(c.frames, string(p))
	return len(p), nil
}
func (c *captureConn) Close() error         { return nil }
func (c *captureConn) RemoteAddr() net.Addr { return testAddr{} }

type testAddr struct{}

func (testAddr) Network() string { return "tcp" }
func (testAddr) String() string  { return "127.0.0.1:0" }

func connectAndRegister(t *testing.T, reg *Registry, nick string) (*Connection, *captureConn) {
	t.Helper()
	cc := &captureConn{}
	conn := NewConnection(cc)
	_, err := reg.Register(nick, conn)
	require.NoError(t, err)
	return conn, cc
}

func TestHandleHelpRejectsArguments(t *testing.T) {
	reg := NewRegistry("#default")
	caller, cc := connectAndRegister(t, reg, "alice")

	done := handleHelp(reg, caller, []string{"unexpected"})
	assert.False(t, done)
	require.Len(t, cc.frames, 1)
	assert.Equal(t, SentinelArgumentError, cc.frames[0])
}

func TestHandleAwayTogglesDefaultMessage(t *testing.T) {
	reg := NewRegistry("#default")
	caller, _ := connectAndRegister(t, reg, "alice")

	handleAway(reg, caller, nil)
	assert.Equal(t, defaultAwayMessage, caller.AwayMessage())

	handleAway(reg, caller, nil)
	assert.Empty(t, caller.AwayMessage())
}

func TestHandleAwaySetsExplicitMessage(t *testing.T) {
	reg := NewRegistry("#default")
	caller, _ := connectAndRegister(t, reg, "alice")

	handleAway(reg, caller, []string{"back in a bit"})
	assert.Equal(t, "back in a bit", caller.AwayMessage())
}

func TestHandleAwayRejectsExtraArguments(t *testing.T) {
	reg := NewRegistry("#default")
	caller, cc := connectAndRegister(t, reg, "alice")

	handleAway(reg, caller, []string{"one", "two"})
	require.Len(t, cc.frames, 1)
	assert.Equal(t, SentinelArgumentError, cc.frames[0])
}

func TestHandleInviteUnknownNickname(t *testing.T) {
	reg := NewRegistry("#default")
	caller, cc := connectAndRegister(t, reg, "alice")

	handleInvite(reg, caller, []string{"ghost"})
	require.Len(t, cc.frames, 1)
	assert.Equal(t, SentinelNicknameError, cc.frames[0])
}

func TestHandleInviteDeliversFrenchInviteText(t *testing.T) {
	reg := NewRegistry("#default")
	caller, _ := connectAndRegister(t, reg, "alice")
	_, targetCC := connectAndRegister(t, reg, "bob")
	caller.SetCurrentChannel("#hideout")

	handleInvite(reg, caller, []string{"bob"})

	require.Len(t, targetCC.frames, 1)
	assert.Contains(t, targetCC.frames[0], "<alice> Bonjour <bob> je t'invite à me rejoindre sur le canal #hideout.")
}

func TestHandleJoinRejectsKeyMismatch(t *testing.T) {
	reg := NewRegistry("#default")
	caller, cc := connectAndRegister(t, reg, "alice")
	reg.CreateOrGetChannel("#locked", "secret")

	handleJoin(reg, caller, []string{"locked", "wrongkey"})

	require.Len(t, cc.frames, 1)
	assert.Equal(t, SentinelChannelKeyErr, cc.frames[0])
}

func TestHandleJoinMovesMembershipBetweenChannels(t *testing.T) {
	reg := NewRegistry("#default")
	caller, cc := connectAndRegister(t, reg, "alice")
	reg.CreateOrGetChannel("#default", "").Join("alice")
	caller.SetCurrentChannel("#default")

	handleJoin(reg, caller, []string{"lounge"})

	lounge, ok := reg.Channel("#lounge")
	require.True(t, ok)
	assert.True(t, lounge.Has("alice"))

	def, _ := reg.Channel("#default")
	assert.False(t, def.Has("alice"))

	require.Len(t, cc.frames, 1)
	assert.Equal(t, joinPrefix+"#lounge", cc.frames[0])
}

func TestHandleMsgDeliversToChannelMembers(t *testing.T) {
	reg := NewRegistry("#default")
	caller, _ := connectAndRegister(t, reg, "alice")
	peer, peerCC := connectAndRegister(t, reg, "bob")

	ch := reg.CreateOrGetChannel("#lobby", "")
	ch.Join("alice")
	ch.Join("bob")
	caller.SetCurrentChannel("#lobby")
	peer.SetCurrentChannel("#lobby")

	handleMsg(reg, caller, []string{"hello everyone"})

	require.Len(t, peerCC.frames, 1)
	assert.Equal(t, "#lobby <alice> hello everyone", peerCC.frames[0])
}

func TestHandleMsgBouncesBackWhenTargetIsAway(t *testing.T) {
	reg := NewRegistry("#default")
	caller, cc := connectAndRegister(t, reg, "alice")
	peer, peerCC := connectAndRegister(t, reg, "bob")
	peer.SetAwayMessage("gone fishing")

	handleMsg(reg, caller, []string{"bob", "you there?"})

	assert.Empty(t, peerCC.frames)
	require.Len(t, cc.frames, 1)
	assert.Equal(t, "<bob> gone fishing", cc.frames[0])
}

func TestHandleMsgUnknownTargetNickname(t *testing.T) {
	reg := NewRegistry("#default")
	caller, cc := connectAndRegister(t, reg, "alice")

	handleMsg(reg, caller, []string{"ghost", "hello?"})

	require.Len(t, cc.frames, 1)
	assert.Equal(t, SentinelNicknameError, cc.frames[0])
}

func TestHandleExitLeavesChannelAndUnregisters(t *testing.T) {
	reg := NewRegistry("#default")
	caller, _ := connectAndRegister(t, reg, "alice")
	ch, _ := reg.Channel("#default")
	ch.Join("alice")
	caller.SetCurrentChannel("#default")

	done := handleExit(reg, caller, nil)

	assert.True(t, done)
	assert.False(t, ch.Has("alice"))
	assert.False(t, reg.Exists("alice"))
}
