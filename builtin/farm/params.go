// Copyright (c) 2025 The Acreage developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package farm

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/acreage-labs/acreage/acre"
	"github.com/acreage-labs/acreage/builtin/farm/reverts"
)

// FarmParams configures a new farm.
//
// RewardPerSecond is in acre.Scale units of the reward asset per second. The
// fee fractions are in acre.Scale units and must lie in [0, 1]. EndTime nil
// means the farm never stops emitting. Reward is ignored by q_farm, which
// always rewards the governance asset.
type FarmParams struct {
	Staked             acre.Asset
	Reward             acre.Asset
	RewardPerSecond    *big.Int
	StartTime          uint64
	EndTime            *uint64
	Timelock           uint64
	HarvestFee         *big.Int
	WithdrawalFee      *big.Int
	BurnRewardFraction *big.Int
}

func (p *FarmParams) Validate() error {
	if p.RewardPerSecond != nil && p.RewardPerSecond.Sign() < 0 {
		return errors.WithMessage(reverts.ErrInvalidParams, "negative reward per second")
	}
	if p.EndTime != nil {
		if *p.EndTime <= p.StartTime {
			return errors.WithMessage(reverts.ErrInvalidParams, "end time not after start time")
		}
		if p.Timelock > *p.EndTime-p.StartTime {
			return errors.WithMessage(reverts.ErrInvalidParams, "timelock longer than farm")
		}
	}
	return validFractions(p.HarvestFee, p.WithdrawalFee, p.BurnRewardFraction)
}

func validFractions(fractions ...*big.Int) error {
	for _, f := range fractions {
		if f != nil && !acre.IsFraction(f) {
			return errors.WithMessagef(reverts.ErrInvalidParams, "fraction %v out of range", f)
		}
	}
	return nil
}

func orZero(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(v)
}

// RateEntry sets a farm's reward per second.
type RateEntry struct {
	FarmID          uint64
	RewardPerSecond *big.Int
}

// FeeEntry replaces a farm's fee fractions.
type FeeEntry struct {
	FarmID             uint64
	HarvestFee         *big.Int
	WithdrawalFee      *big.Int
	BurnRewardFraction *big.Int
}

type PauseEntry struct {
	FarmID uint64
	Paused bool
}

type BanEntry struct {
	Candidate acre.Address
	Banned    bool
}

// OperatorUpdate adds or removes Operator as an operator of Owner's positions.
type OperatorUpdate struct {
	Owner    acre.Address
	Operator acre.Address
	Add      bool
}
