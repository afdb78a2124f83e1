/*
   Copyright (c) 2023, btnmasher
   All rights reserved.
   Use of this source code is governed by a BSD-style
   license that can be found in the LICENSE file.
*/

package miniircd

import "github.com/relaycore/miniircd/shared/concurrentmap"

// Channel is a named group of members, optionally guarded by a shared
// key supplied at creation. Name and key are fixed for the lifetime of
// the Channel (invariant 5: a channel's key is never mutated after
// creation), so neither field needs its own lock.
type Channel struct {
	name string
	key  string // empty means public (no key required)

	members concurrentmap.ConcurrentMap[string, struct{}]
}

// NewChannel constructs a Channel with no members.
func NewChannel(name, key string) *Channel {
	return &Channel{
		name:    name,
		key:     key,
		members: concurrentmap.New[string, struct{}](),
	}
}

// Name returns the channel's name, e.g. "#default".
func (c *Channel) Name() string { return c.name }

// Key returns the channel's shared key, or "" if the channel is
// public.
func (c *Channel) Key() string { return c.key }

// Join adds nick to the member set. A no-op if nick is already a
// member, matching the round-trip property that re-joining the
// current channel with the same key does not change membership.
func (c *Channel) Join(nick string) {
	c.members.Set(nick, struct{}{})
}

// Leave removes nick from the member set.
func (c *Channel) Leave(nick string) {
	c.members.Delete(nick)
}

// Has reports whether nick is currently a member.
func (c *Channel) Has(nick string) bool {
	return c.members.Exists(nick)
}

// Members returns a stable snapshot of the current member nicknames.
// Concurrent Join/Leave calls that race this snapshot may be included
// or excluded from the result; both outcomes are legal per the
// broadcast-interleaving rules this type is designed around — the
// snapshot itself, not a held lock, is what callers iterate over.
func (c *Channel) Members() []string {
	return c.members.Keys()
}

// Size returns the current member count.
func (c *Channel) Size() int {
	return c.members.Length()
}
