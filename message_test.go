/*
   Copyright (c) 2023, btnmasher
   All rights reserved.
   Use of this source code is governed by a BSD-style
   license that can be found in the LICENSE file.
*/

package miniircd

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCommand(t *testing.T) {
	cases := []struct {
		name     string
		frame    string
		wantName string
		wantArgs []string
	}{
		{"bare command", "/list", "/list", nil},
		{"trailing whitespace trimmed", "  /list  ", "/list", nil},
		{"args split on whitespace", "/join #chan key", "/join", []string{"#chan", "key"}},
		{"empty frame becomes exit", "", "/exit", nil},
		{"whitespace-only frame becomes exit", "   ", "/exit", nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cmd := ParseCommand(tc.frame)
			defer RecycleCommand(cmd)

			assert.Equal(t, tc.wantName, cmd.Name)
			assert.Equal(t, tc.wantArgs, cmd.Args)
		})
	}
}

func TestCommandScrubResetsForReuse(t *testing.T) {
	cmd := ParseCommand("/join #chan key")
	cmd.Scrub()

	assert.Empty(t, cmd.Name)
	assert.Nil(t, cmd.Args)
	assert.Empty(t, cmd.Raw)
}

func TestRecycleCommandReturnsScrubbedItem(t *testing.T) {
	cmd := ParseCommand("/msg bob hello there")
	RecycleCommand(cmd)

	assert.Empty(t, cmd.Name)
	assert.Nil(t, cmd.Args)
}
