/*
   Copyright (c) 2023, btnmasher
   All rights reserved.
   Use of this source code is governed by a BSD-style
   license that can be found in the LICENSE file.
*/

package miniircd

import (
	"bufio"
	"net"
	"sync"
)

// Connection holds the server-side state of one registered client.
//
// The nickname is immutable once registration succeeds, so it needs no
// lock. currentChannel and awayMessage are mutated only by the owning
// session; awayMessage is also read by other sessions under the
// Registry's users-lock (away-message lookup for /msg). That
// cross-goroutine read needs its own synchronization even though only
// one goroutine ever writes the field, so both fields are guarded by
// mu rather than left as bare fields.
//
// sendMu is the send-serializer: every frame written to sock acquires
// it first, so concurrent senders never interleave partial frames.
type Connection struct {
	nickname string

	mu             sync.RWMutex
	currentChannel string
	awayMessage    string

	sock   net.Conn
	writer *bufio.Writer
	sendMu sync.Mutex

	remoteAddr string
}

// NewConnection wraps sock as a not-yet-registered Connection.
func NewConnection(sock net.Conn) *Connection {
	return &Connection{
		sock:       sock,
		writer:     bufio.NewWriter(sock),
		remoteAddr: sock.RemoteAddr().String(),
	}
}

// Nickname returns the connection's registered nickname.
func (c *Connection) Nickname() string {
	return c.nickname
}

// CurrentChannel returns the channel name this connection is
// currently a member of.
func (c *Connection) CurrentChannel() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.currentChannel
}

// SetCurrentChannel updates the channel this connection belongs to.
// Called only by the owning session.
func (c *Connection) SetCurrentChannel(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.currentChannel = name
}

// AwayMessage returns the connection's current away message, or "" if
// the user is present.
func (c *Connection) AwayMessage() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.awayMessage
}

// SetAwayMessage updates the away message. Called only by the owning
// session.
func (c *Connection) SetAwayMessage(msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.awayMessage = msg
}

// RemoteAddr returns the string form of the peer's network address.
func (c *Connection) RemoteAddr() string {
	return c.remoteAddr
}

// Send writes frame to the socket under the send-serializer, so writes
// from concurrent senders (a direct message, a channel broadcast, a
// reply to the connection's own command) never interleave. A failed
// write is returned to the caller, who is expected to swallow it: a
// broken peer socket must not abort whatever handler was trying to
// reach it.
func (c *Connection) Send(frame string) error {
	buf := renderFrame(frame)
	defer releaseFrame(buf)

	c.sendMu.Lock()
	defer c.sendMu.Unlock()

	if _, err := c.writer.Write(buf.Bytes()); err != nil {
		return err
	}
	return c.writer.Flush()
}

// Close closes the underlying socket under the send-serializer, so it
// cannot race an in-flight Send.
func (c *Connection) Close() error {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	return c.sock.Close()
}
