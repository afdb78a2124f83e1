/*
   Copyright (c) 2023, btnmasher
   All rights reserved.
   Use of this source code is governed by a BSD-style
   license that can be found in the LICENSE file.
*/

package miniircd

import (
	"sync"

	"github.com/relaycore/miniircd/shared/concurrentmap"
)

// userRegistry is a map[string]*Connection guarded by an explicit,
// externally-lockable RWMutex. Unlike shared/concurrentmap (whose lock
// is private to each method call), handlers need to hold this lock
// across a lookup *and* the send that follows it, so a peer's /exit
// can't close the socket out from under a send in progress. The
// channels map below is a shared/concurrentmap instead, with creation
// serialized by Registry.channelsLock.
type userRegistry struct {
	sync.RWMutex
	data map[string]*Connection
}

func newUserRegistry() *userRegistry {
	return &userRegistry{data: make(map[string]*Connection)}
}

// get looks up nick without acquiring a lock; callers hold the
// registry's lock for the span of the read (and any subsequent send).
func (r *userRegistry) get(nick string) (*Connection, bool) {
	conn, ok := r.data[nick]
	return conn, ok
}

// Registry is the process-wide, concurrency-safe store of live
// connections and channels. It owns both mappings; callers never
// mutate r.users or r.channels directly.
type Registry struct {
	users *userRegistry

	channels     concurrentmap.ConcurrentMap[string, *Channel]
	channelsLock sync.Mutex

	defaultChannel string
}

// NewRegistry constructs a Registry pre-populated with the default
// channel (public, empty membership).
func NewRegistry(defaultChannel string) *Registry {
	reg := &Registry{
		users:          newUserRegistry(),
		channels:       concurrentmap.New[string, *Channel](),
		defaultChannel: defaultChannel,
	}
	reg.channels.Set(defaultChannel, NewChannel(defaultChannel, ""))
	return reg
}

// DefaultChannel returns the name of the channel every new user joins.
func (reg *Registry) DefaultChannel() string {
	return reg.defaultChannel
}

// Register adds a new Connection under nick. It returns
// ErrDuplicateNickname if nick is already registered; of any number of
// concurrent Register calls racing on the same nickname, exactly one
// succeeds.
func (reg *Registry) Register(nick string, conn *Connection) (*Connection, error) {
	reg.users.Lock()
	defer reg.users.Unlock()

	if _, exists := reg.users.get(nick); exists {
		return nil, ErrDuplicateNickname
	}

	conn.nickname = nick
	reg.users.data[nick] = conn
	return conn, nil
}

// Unregister removes nick from the registry. It is a no-op if nick is
// not present.
func (reg *Registry) Unregister(nick string) {
	reg.users.Lock()
	defer reg.users.Unlock()
	delete(reg.users.data, nick)
}

// Lookup returns the Connection registered under nick, if any. Callers
// that intend to send to the result based on this lookup should use
// WithUser instead, so the lock spans both the lookup and the send.
func (reg *Registry) Lookup(nick string) (*Connection, bool) {
	reg.users.RLock()
	defer reg.users.RUnlock()
	return reg.users.get(nick)
}

// WithUser holds the users-lock for the duration of fn, which is
// invoked with the Connection registered under nick (nil if absent).
// This is the primitive every handler that sends to a looked-up peer
// is built on: it prevents a concurrent /exit from closing the peer's
// socket between the lookup and the send.
func (reg *Registry) WithUser(nick string, fn func(*Connection)) {
	reg.users.RLock()
	defer reg.users.RUnlock()
	conn, _ := reg.users.get(nick)
	fn(conn)
}

// Exists reports whether nick is currently registered.
func (reg *Registry) Exists(nick string) bool {
	reg.users.RLock()
	defer reg.users.RUnlock()
	_, ok := reg.users.get(nick)
	return ok
}

// Nicknames returns a snapshot of every currently registered nickname.
func (reg *Registry) Nicknames() []string {
	reg.users.RLock()
	defer reg.users.RUnlock()
	names := make([]string, 0, len(reg.users.data))
	for nick := range reg.users.data {
		names = append(names, nick)
	}
	return names
}

// UserCount returns the number of currently registered connections.
func (reg *Registry) UserCount() int {
	reg.users.RLock()
	defer reg.users.RUnlock()
	return len(reg.users.data)
}

// Channel returns the channel registered under name, if any.
func (reg *Registry) Channel(name string) (*Channel, bool) {
	return reg.channels.Get(name)
}

// ChannelNames returns a snapshot of every channel name that has ever
// been created. Channels are immortal: this list never shrinks.
func (reg *Registry) ChannelNames() []string {
	return reg.channels.Keys()
}

// CreateOrGetChannel returns the channel named name, creating it with
// proposedKey if it does not yet exist. Creation is serialized by
// channelsLock, guaranteeing at most one Channel is ever created for a
// given name (invariant: create_or_get_channel is observationally
// atomic). If the channel already exists, proposedKey is ignored and
// the existing channel (with its original key) is returned — the
// caller is responsible for comparing keys and rejecting a mismatch.
func (reg *Registry) CreateOrGetChannel(name, proposedKey string) *Channel {
	reg.channelsLock.Lock()
	defer reg.channelsLock.Unlock()

	if ch, ok := reg.channels.Get(name); ok {
		return ch
	}

	ch := NewChannel(name, proposedKey)
	reg.channels.Set(name, ch)
	return ch
}
