/*
   Copyright (c) 2023, btnmasher
   All rights reserved.
   Use of this source code is governed by a BSD-style
   license that can be found in the LICENSE file.
*/

package miniircd

import (
	"context"
	"net"
	"sync"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sourcegraph/conc"
	"golang.org/x/sys/unix"
)

// KeepAliveTimeout is the TCP keep-alive period set on accepted client
// connections. It does not close idle sessions.
const KeepAliveTimeout time.Duration = 2 * time.Minute

// Server holds the listener and shared registry of a running relay.
// There are no client-visible timeouts or heartbeats: a session blocks
// on its next read for as long as the client stays silent.
type Server struct {
	sync.RWMutex

	listenAddr     string
	hostname       string
	defaultChannel string
	log            *logrus.Logger

	registry *Registry
	listener net.Listener
	wg       conc.WaitGroup
}

// NewServer constructs a Server with its registry pre-populated. Use
// the With* options to configure it before calling ListenAndServe.
func NewServer(opts ...Option) *Server {
	server := &Server{
		listenAddr:     ":6667",
		defaultChannel: defaultChannelName,
		log:            logrus.StandardLogger(),
	}

	for _, opt := range opts {
		opt(server)
	}

	server.registry = NewRegistry(server.defaultChannel)
	return server
}

// Registry exposes the server's user/channel registry, mainly for
// tests that need to drive handler logic directly.
func (server *Server) Registry() *Registry {
	return server.registry
}

// Address returns the server's configured listen address.
func (server *Server) Address() string {
	server.RLock()
	defer server.RUnlock()
	return server.listenAddr
}

// Hostname returns the configured hostname, falling back to the
// listener's local address once one is bound.
func (server *Server) Hostname() string {
	server.RLock()
	defer server.RUnlock()
	if server.hostname != "" {
		return server.hostname
	}
	if server.listener != nil {
		return server.listener.Addr().String()
	}
	return ""
}

// reuseAddrListenConfig sets SO_REUSEADDR on the listening socket
// before bind, matching the original's explicit socket option (the
// bare net.Listen default already does this on most platforms, but
// the original set it unconditionally, so this makes the behavior
// unconditional here too rather than relying on a platform default).
var reuseAddrListenConfig = net.ListenConfig{
	Control: func(_, _ string, c syscall.RawConn) error {
		var setErr error
		err := c.Control(func(fd uintptr) {
			setErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1)
		})
		if err != nil {
			return err
		}
		return setErr
	},
}

// ListenAndServe binds the configured address and serves connections
// until Serve returns a non-nil error (including on Shutdown).
func (server *Server) ListenAndServe() error {
	listen, err := reuseAddrListenConfig.Listen(context.Background(), "tcp", server.Address())
	if err != nil {
		return err
	}
	return server.Serve(listen)
}

// Serve accepts connections from listen in a loop, handing each one to
// its own goroutine managed by a conc.WaitGroup so a panicking session
// doesn't take the listener down with it. An accept error that looks
// transient is retried with capped exponential backoff, matching the
// teacher's ListenAndServe loop.
func (server *Server) Serve(listen net.Listener) error {
	server.Lock()
	server.listener = listen
	server.Unlock()

	defer listen.Close()
	defer server.wg.Wait()

	server.log.WithField("addr", listen.Addr()).Info("miniircd: listening")

	var tempDelay time.Duration

	for {
		sock, err := listen.Accept()
		if err != nil {
			if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
				if tempDelay == 0 {
					tempDelay = 5 * time.Millisecond
				} else {
					tempDelay *= 2
				}
				if max := 1 * time.Second; tempDelay > max {
					tempDelay = max
				}
				server.log.WithError(err).Warnf("miniircd: accept error, retrying in %s", tempDelay)
				time.Sleep(tempDelay)
				continue
			}
			return err
		}

		tempDelay = 0
		if tcpConn, ok := sock.(*net.TCPConn); ok {
			tcpConn.SetKeepAlive(true)
			tcpConn.SetKeepAlivePeriod(KeepAliveTimeout)
		}

		entry := server.log.WithField("remote", sock.RemoteAddr().String())
		server.wg.Go(func() {
			runSession(server.registry, sock, entry)
		})
	}
}

// Shutdown closes the listener, causing Serve's Accept loop to return,
// then waits for every in-flight session to finish.
func (server *Server) Shutdown() error {
	server.RLock()
	listen := server.listener
	server.RUnlock()

	if listen == nil {
		return nil
	}
	err := listen.Close()
	server.wg.Wait()
	return err
}
