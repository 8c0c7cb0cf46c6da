// Copyright (c) 2025 The Acreage developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package genesis describes the initial engine state: its configuration,
// token balances and farms.
package genesis

import (
	"github.com/acreage-labs/acreage/acre"
	"github.com/acreage-labs/acreage/builtin/farm"
	"github.com/acreage-labs/acreage/state"
)

// Genesis to build the initial state.
type Genesis struct {
	builder *Builder
	id      acre.Bytes32
	name    string
}

// Build applies the genesis to st and returns the bound engine.
func (g *Genesis) Build(st *state.State) (*farm.Engine, error) {
	return g.builder.Build(st)
}

// ID returns the genesis id, which identifies the data it was built into.
func (g *Genesis) ID() acre.Bytes32 {
	return g.id
}

func (g *Genesis) Name() string {
	return g.name
}

func (g *Genesis) LaunchTime() uint64 {
	return g.builder.timestamp
}

func (g *Genesis) EngineConfig() farm.Config {
	return g.builder.config
}

func (g *Genesis) Admin() acre.Address {
	return g.builder.admin
}
