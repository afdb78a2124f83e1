/*
   Copyright (c) 2023, btnmasher
   All rights reserved.
   Use of this source code is governed by a BSD-style
   license that can be found in the LICENSE file.
*/

package miniircd

import (
	"context"
	"time"

	formatter "github.com/antonfisher/nested-logrus-formatter"
	"github.com/sirupsen/logrus"
)

// Option configures a Server at construction time, mirroring the
// functional-options style the cmd bootstrap uses.
type Option func(*Server)

// WithListenAddr sets the TCP address the server binds in
// ListenAndServe, e.g. ":6667".
func WithListenAddr(addr string) Option {
	return func(server *Server) {
		server.listenAddr = addr
	}
}

// WithHostname sets the hostname reported for the server once bound.
func WithHostname(host string) Option {
	return func(server *Server) {
		server.hostname = host
	}
}

// WithDefaultChannel overrides the channel every newly registered user
// joins automatically.
func WithDefaultChannel(name string) Option {
	return func(server *Server) {
		server.defaultChannel = normalizeChannelName(name)
	}
}

// WithLogger sets the logger the server and every session log through.
func WithLogger(log *logrus.Logger) Option {
	return func(server *Server) {
		server.log = log
	}
}

// WithLogLevel sets the verbosity of server.log. Debug level includes
// per-command dispatch logging (never the message bodies themselves).
func WithLogLevel(level logrus.Level) Option {
	return func(server *Server) {
		server.log.SetLevel(level)
	}
}

// WithDefaultLogFormatter installs the nested-field formatter the rest
// of the ambient stack's log lines are written for.
func WithDefaultLogFormatter() Option {
	return func(server *Server) {
		server.log.SetFormatter(&formatter.Formatter{
			HideKeys:        true,
			TimestampFormat: "15:04:05",
		})
	}
}

// WithGracefulShutdown ties the server's lifetime to ctx: when ctx is
// canceled, Shutdown is called. If it has not returned within timeout,
// a warning is logged; Shutdown itself is not interrupted and keeps
// waiting for the remaining sessions.
func WithGracefulShutdown(ctx context.Context, timeout time.Duration) Option {
	return func(server *Server) {
		go func() {
			<-ctx.Done()
			done := make(chan struct{})
			go func() {
				_ = server.Shutdown()
				close(done)
			}()
			select {
			case <-done:
			case <-time.After(timeout):
				server.log.Warn("miniircd: graceful shutdown timed out")
			}
		}()
	}
}
