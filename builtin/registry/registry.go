// Copyright (c) 2025 The Acreage developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package registry aggregates the vote weight reported by each caller per candidate.
package registry

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/acreage-labs/acreage/acre"
	"github.com/acreage-labs/acreage/builtin/storage"
	"github.com/acreage-labs/acreage/state"
)

var (
	slotWeights = storage.Slot("weights")
	slotTotals  = storage.Slot("totals")
)

// Address is the account the registry stores its tallies under.
var Address = acre.NamedAddress("registry")

type Registry struct {
	weights *storage.Mapping[storage.PairKey, *big.Int]
	totals  *storage.Mapping[acre.Address, *big.Int]
}

func New(st *state.State) *Registry {
	sctx := storage.NewContext(Address, st)
	return &Registry{
		weights: storage.NewMapping[storage.PairKey, *big.Int](sctx, slotWeights),
		totals:  storage.NewMapping[acre.Address, *big.Int](sctx, slotTotals),
	}
}

func get[K storage.Key](m *storage.Mapping[K, *big.Int], key K) (*big.Int, error) {
	v, err := m.Get(key)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return new(big.Int), nil
	}
	return v, nil
}

// Weight returns the weight caller last reported for candidate.
func (r *Registry) Weight(caller, candidate acre.Address) (*big.Int, error) {
	return get(r.weights, storage.Pair(caller, candidate))
}

// Total returns the candidate's weight summed over all callers.
func (r *Registry) Total(candidate acre.Address) (*big.Int, error) {
	return get(r.totals, candidate)
}

// Vote replaces caller's weight for candidate.
func (r *Registry) Vote(caller, candidate acre.Address, weight *big.Int) error {
	if weight == nil || weight.Sign() < 0 {
		return errors.Errorf("invalid weight %v", weight)
	}
	prev, err := r.Weight(caller, candidate)
	if err != nil {
		return err
	}
	total, err := r.Total(candidate)
	if err != nil {
		return err
	}
	total = new(big.Int).Add(total, new(big.Int).Sub(weight, prev))
	if err := r.weights.Set(storage.Pair(caller, candidate), weight); err != nil {
		return err
	}
	return r.totals.Set(candidate, total)
}

// Voter binds the registry to one caller.
func (r *Registry) Voter(caller acre.Address) *Voter {
	return &Voter{registry: r, caller: caller}
}

type Voter struct {
	registry *Registry
	caller   acre.Address
}

func (v *Voter) Vote(candidate acre.Address, weight *big.Int) error {
	return v.registry.Vote(v.caller, candidate, weight)
}
