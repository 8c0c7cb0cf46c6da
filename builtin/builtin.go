// Copyright (c) 2025 The Acreage developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package builtin binds the builtin contracts to a State.
package builtin

import (
	"github.com/acreage-labs/acreage/acre"
	"github.com/acreage-labs/acreage/builtin/farm"
	"github.com/acreage-labs/acreage/builtin/registry"
	"github.com/acreage-labs/acreage/builtin/token"
	"github.com/acreage-labs/acreage/state"
)

// Builtin contracts binding.
var (
	Token    = &tokenContract{token.Address}
	Registry = &registryContract{registry.Address}
)

type (
	tokenContract    struct{ Address acre.Address }
	registryContract struct{ Address acre.Address }
)

func (t *tokenContract) WithState(st *state.State) *token.Token {
	return token.New(st)
}

func (r *registryContract) WithState(st *state.State) *registry.Registry {
	return registry.New(st)
}

// Farm returns the engine at cfg.Address, settling through the builtin token
// ledger and voting into the builtin registry.
func Farm(cfg farm.Config, st *state.State) *farm.Engine {
	return farm.New(cfg, st, Token.WithState(st), Registry.WithState(st).Voter(cfg.Address))
}
