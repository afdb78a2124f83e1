/*
   Copyright (c) 2023, btnmasher
   All rights reserved.
   Use of this source code is governed by a BSD-style
   license that can be found in the LICENSE file.
*/

package miniircd

// Error is a workaround to allow for immutable error strings
// which satisfy the error interface.
type Error string

func (err Error) Error() string {
	return string(err)
}

func (err Error) String() string {
	return string(err)
}

// Internal error sentinels. These never cross the wire. Of these, only
// ErrDuplicateNickname is returned (by Registry.Register), and the
// session loop answers it with the NICKNAME_ERROR wire sentinel from
// message.go; command handlers send wire sentinels directly.
const (
	ErrMessageTooShort   Error = "did not receive enough data from the client"
	ErrMessageTooLong    Error = "received frame from the client is too long"
	ErrMessagePrefixed   Error = "client frames may not carry a source prefix"
	ErrDuplicateNickname Error = "nickname is already registered"
	ErrUnknownNickname   Error = "no such nickname is registered"
	ErrUnknownChannel    Error = "no such channel exists"
	ErrWrongChannelKey   Error = "channel key does not match"
	ErrBadArguments      Error = "wrong number of arguments or malformed quoting"
	ErrUnknownCommand    Error = "unrecognized command"
)
