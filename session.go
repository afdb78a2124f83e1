/*
   Copyright (c) 2023, btnmasher
   All rights reserved.
   Use of this source code is governed by a BSD-style
   license that can be found in the LICENSE file.
*/

package miniircd

import (
	"net"
	"strings"

	"github.com/kballard/go-shellquote"
	"github.com/sirupsen/logrus"
)

// frameReader reads one frame per call the way the wire protocol
// defines it: a single recv of up to MaxFrameLength bytes is exactly
// one message, with no length-prefix or newline delimiter layered on
// top. A message spanning more than one TCP segment simply isn't
// reassembled — this mirrors the original server's own `recv(1024)`
// framing rather than papering over it with line-based buffering.
type frameReader struct {
	sock net.Conn
	buf  []byte
}

func newFrameReader(sock net.Conn) *frameReader {
	return &frameReader{sock: sock, buf: make([]byte, MaxFrameLength)}
}

// next blocks until a frame arrives, trimmed of surrounding
// whitespace. A frame of all whitespace (or literally empty) comes
// back as "" with a nil error; ParseCommand turns that into /exit.
func (r *frameReader) next() (frame string, readErr error) {
	n, err := r.sock.Read(r.buf)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(r.buf[:n])), nil
}

// runSession owns one accepted connection end to end: registration,
// the command loop, and teardown. It never returns an error; all
// failure paths end in the connection being closed and removed from
// reg.
func runSession(reg *Registry, sock net.Conn, log *logrus.Entry) {
	conn := NewConnection(sock)
	reader := newFrameReader(sock)

	defer func() {
		if r := recover(); r != nil {
			log.WithField("panic", r).Error("session panicked, forcing disconnect")
			if conn.Nickname() != "" {
				handleExit(reg, conn, nil)
			} else {
				_ = conn.Close()
			}
		}
	}()

	nick, ok := registerSession(reg, conn, reader, log)
	if !ok {
		return
	}
	log = log.WithField("nick", nick)
	log.Info("registered")

	defaultCh, _ := reg.Channel(reg.DefaultChannel())
	defaultCh.Join(nick)
	conn.SetCurrentChannel(reg.DefaultChannel())

	runCommandLoop(reg, conn, reader, log)
}

// registerSession performs the strict one-shot handshake: one frame is
// read and treated as the desired nickname. A duplicate nickname is
// fatal to the handshake — NICKNAME_ERROR is sent and the connection
// is closed immediately, with no retry.
func registerSession(reg *Registry, conn *Connection, reader *frameReader, log *logrus.Entry) (string, bool) {
	nick, err := reader.next()
	if err != nil {
		log.WithError(err).Debug("client disconnected before registering")
		_ = conn.Close()
		return "", false
	}

	if _, err := reg.Register(nick, conn); err != nil {
		log.WithError(err).Debug("registration rejected")
		_ = conn.Send(SentinelNicknameError)
		_ = conn.Close()
		return "", false
	}

	_ = conn.Send(reg.DefaultChannel())
	return nick, true
}

// runCommandLoop reads frames until the client disconnects or sends
// /exit. An unrecognized command or malformed quoting gets a sentinel
// reply and the loop continues with the next frame. Each
// frame is dispatched to its handler under no lock held by the
// session itself — handlers acquire whatever locks their own
// semantics require (Registry's users-lock / channels-lock).
func runCommandLoop(reg *Registry, conn *Connection, reader *frameReader, log *logrus.Entry) {
	for {
		frame, err := reader.next()
		if err != nil {
			log.WithError(err).Debug("session ended by disconnect")
			handleExit(reg, conn, nil)
			return
		}

		cmd := ParseCommand(frame)

		handler, known := handlers[cmd.Name]
		if !known {
			_ = conn.Send(SentinelUnknownCmdErr)
			RecycleCommand(cmd)
			continue
		}

		args := cmd.Args
		if quotedCommands[cmd.Name] {
			rest := strings.TrimSpace(strings.TrimPrefix(cmd.Raw, cmd.Name))
			parsed, err := shellquote.Split(rest)
			if err != nil {
				_ = conn.Send(SentinelArgumentError)
				RecycleCommand(cmd)
				continue
			}
			args = parsed
		}

		log.WithField("cmd", cmd.Name).Debug("dispatching command")
		done := handler(reg, conn, args)
		RecycleCommand(cmd)

		if done {
			log.Debug("session ended by /exit")
			return
		}
	}
}
