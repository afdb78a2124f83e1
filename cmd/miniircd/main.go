/*
   Copyright (c) 2023, btnmasher
   All rights reserved.
   Use of this source code is governed by a BSD-style
   license that can be found in the LICENSE file.
*/

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sourcegraph/conc"

	miniircd "github.com/relaycore/miniircd"
)

func main() {
	listenAddr := flag.String("listen", ":6667", "address to listen on")
	hostname := flag.String("hostname", "", "hostname the server reports for itself, defaults to the bound listen address")
	defaultChannel := flag.String("default-channel", "#default", "channel every new user is joined to automatically")
	debug := flag.Bool("debug", false, "enable debug-level logging, including per-command dispatch")
	shutdownTimeout := flag.Duration("shutdown-timeout", 30*time.Second, "how long to wait for in-flight sessions to end on shutdown before logging a warning; shutdown keeps waiting after that")
	flag.Parse()

	mainContext, shutdown := context.WithCancel(context.Background())
	defer shutdown()

	logger := logrus.New()

	logLevel := logrus.InfoLevel
	if *debug {
		logLevel = logrus.DebugLevel
	}

	server := miniircd.NewServer(
		miniircd.WithListenAddr(*listenAddr),
		miniircd.WithHostname(*hostname),
		miniircd.WithDefaultChannel(*defaultChannel),
		miniircd.WithLogger(logger),
		miniircd.WithLogLevel(logLevel),
		miniircd.WithDefaultLogFormatter(),
		miniircd.WithGracefulShutdown(mainContext, *shutdownTimeout),
	)

	wg := conc.NewWaitGroup()
	defer wg.Wait()

	wg.Go(func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, net.ErrClosed) {
			logger.WithError(err).Fatal("miniircd: server exited")
		}
	})

	log := logger.WithField("component", "main")
	killSignals := make(chan os.Signal, 1)
	signal.Notify(killSignals, syscall.SIGINT, syscall.SIGTERM)

	sig := <-killSignals
	log.Infof("miniircd: initiating shutdown, received signal: %s", sig)
	shutdown()

	fmt.Println("miniircd: stopped")
}
