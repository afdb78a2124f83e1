/*
   Copyright (c) 2023, btnmasher
   All rights reserved.
   Use of this source code is governed by a BSD-style
   license that can be found in the LICENSE file.
*/

// Package miniircd implements a minimal IRC-style chat relay: a
// long-lived TCP server that registers connecting clients under a
// unique nickname and routes text commands between them, either
// point-to-point or by broadcast to a named channel.
//
// The server holds no persistent state. It is a pure in-memory router
// whose only job is concurrency-safe routing: the registry of users
// and channels, the locking discipline that keeps it consistent under
// parallel command execution, and the command semantics implemented by
// the handlers in handlers.go.
package miniircd
