// Copyright (c) 2025 The Acreage developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package farm implements the yield farming engine: reward accrual per farm,
// position bookkeeping, harvest and withdrawal fees, position transfers and
// stake weighted delegation.
package farm

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/acreage-labs/acreage/acre"
	"github.com/acreage-labs/acreage/builtin/farm/accumulator"
	"github.com/acreage-labs/acreage/builtin/farm/admin"
	"github.com/acreage-labs/acreage/builtin/farm/delegation"
	"github.com/acreage-labs/acreage/builtin/farm/payout"
	"github.com/acreage-labs/acreage/builtin/farm/position"
	"github.com/acreage-labs/acreage/builtin/farm/reverts"
	"github.com/acreage-labs/acreage/builtin/storage"
	"github.com/acreage-labs/acreage/log"
	"github.com/acreage-labs/acreage/state"
)

var logger = log.WithContext("pkg", "farm")

func SetLogger(l log.Logger) {
	logger = l
}

// Variant selects how rewards are funded.
type Variant string

const (
	// VariantQ mints the governance asset as reward.
	VariantQ Variant = "q_farm"
	// VariantT pays a per farm reward asset out of the engine's custody.
	VariantT Variant = "t_farm"
)

func (v Variant) Valid() bool {
	return v == VariantQ || v == VariantT
}

// Config is the static engine configuration.
type Config struct {
	Variant Variant
	// Address is the engine's custody account and storage owner.
	Address acre.Address
	// Rounding applies to harvest and withdrawal fees.
	Rounding acre.Rounding
	// GovernanceAsset is the reward of every q_farm farm.
	GovernanceAsset acre.Asset
}

// DefaultRounding is floor for q_farm and ceil for t_farm.
func (v Variant) DefaultRounding() acre.Rounding {
	if v == VariantT {
		return acre.RoundUp
	}
	return acre.RoundDown
}

// Transferrer moves balances of the token ledger. A transfer from
// acre.MintSource mints.
type Transferrer interface {
	Transfer(asset acre.Asset, from, to acre.Address, amount *big.Int) error
}

// Voter receives the engine's running weight per candidate.
type Voter interface {
	Vote(candidate acre.Address, weight *big.Int) error
}

// Call carries the caller identity and the time of a call. The engine never
// reads the clock itself.
type Call struct {
	Sender acre.Address
	Now    uint64
}

// Engine implements every entrypoint of the farming engine on top of a State.
type Engine struct {
	cfg    Config
	state  *state.State
	tokens Transferrer
	voter  Voter
	policy payout.Policy

	farms      *accumulator.Service
	positions  *position.Service
	delegation *delegation.Service
	admin      *admin.Service
}

// New create a new instance.
func New(cfg Config, st *state.State, tokens Transferrer, voter Voter) *Engine {
	sctx := storage.NewContext(cfg.Address, st)
	return &Engine{
		cfg:    cfg,
		state:  st,
		tokens: tokens,
		voter:  voter,
		policy: payout.Policy{Rounding: cfg.Rounding},

		farms:      accumulator.New(sctx),
		positions:  position.New(sctx),
		delegation: delegation.New(sctx),
		admin:      admin.New(sctx),
	}
}

func (e *Engine) Config() Config {
	return e.cfg
}

// Initialize sets the first admin. It is a no-op once an admin exists.
func (e *Engine) Initialize(adminAddr acre.Address) error {
	current, err := e.admin.Admin()
	if err != nil {
		return err
	}
	if !current.IsZero() {
		return nil
	}
	if adminAddr.IsZero() {
		return errors.WithMessage(reverts.ErrInvalidParams, "zero admin")
	}
	return e.admin.SetAdmin(adminAddr)
}

//
// Getters - no state change
//

func (e *Engine) FarmCount() (uint64, error) {
	return e.farms.Count()
}

func (e *Engine) GetFarm(id uint64) (*accumulator.Farm, error) {
	return e.farms.GetFarm(id)
}

func (e *Engine) GetPosition(farmID uint64, user acre.Address) (*position.Position, error) {
	if _, err := e.farms.GetFarm(farmID); err != nil {
		return nil, err
	}
	return e.positions.GetPosition(farmID, user)
}

// PendingReward previews the reward owed to user at now before fees,
// including reward held back by the timelock.
func (e *Engine) PendingReward(farmID uint64, user acre.Address, now uint64) (*big.Int, error) {
	f, err := e.farms.GetFarm(farmID)
	if err != nil {
		return nil, err
	}
	p, err := e.positions.GetPosition(farmID, user)
	if err != nil {
		return nil, err
	}
	return position.Collect(f.Clone(), p.Clone(), now), nil
}

// BalanceRequest asks for the position balance of Owner in a farm.
type BalanceRequest struct {
	FarmID  uint64
	Owner   acre.Address
	TokenID uint64
}

// BalanceOf returns the staked balance for each request, in order.
func (e *Engine) BalanceOf(requests []BalanceRequest) ([]*big.Int, error) {
	balances := make([]*big.Int, 0, len(requests))
	for _, r := range requests {
		if r.TokenID != acre.PositionTokenID {
			return nil, reverts.ErrWrongAsset
		}
		p, err := e.GetPosition(r.FarmID, r.Owner)
		if err != nil {
			return nil, err
		}
		balances = append(balances, p.Staked)
	}
	return balances, nil
}

func (e *Engine) Admin() (acre.Address, error) {
	return e.admin.Admin()
}

func (e *Engine) PendingAdmin() (acre.Address, error) {
	return e.admin.PendingAdmin()
}

func (e *Engine) Burner() (acre.Address, error) {
	return e.admin.Burner()
}

func (e *Engine) IsOperator(owner, operator acre.Address) (bool, error) {
	return e.admin.IsOperator(owner, operator)
}

// Delegate returns the candidate elected by the pooled weight and the runner-up.
func (e *Engine) Delegate() (current, next acre.Address, err error) {
	return e.delegation.Delegate()
}

func (e *Engine) CandidateWeight(candidate acre.Address) (*big.Int, error) {
	return e.delegation.Weight(candidate)
}

func (e *Engine) IsBanned(candidate acre.Address) (bool, error) {
	return e.delegation.IsBanned(candidate)
}
