// Copyright (c) 2025 The Acreage developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package storage provides typed views over the key/value slots an
// account owns in state.State.
package storage

import (
	"github.com/acreage-labs/acreage/acre"
	"github.com/acreage-labs/acreage/state"
)

// Context binds typed storage to one account of a State.
type Context struct {
	address acre.Address
	state   *state.State
}

func NewContext(address acre.Address, state *state.State) *Context {
	return &Context{
		address: address,
		state:   state,
	}
}

func (c *Context) State() *state.State {
	return c.state
}

func (c *Context) Address() acre.Address {
	return c.address
}
