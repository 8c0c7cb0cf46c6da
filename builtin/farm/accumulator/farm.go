// Copyright (c) 2025 The Acreage developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package accumulator

import (
	"math/big"

	"github.com/acreage-labs/acreage/acre"
)

// Farm is the per-farm reward ledger.
//
// RewardPerSecond, AccRewardPerShare, IdleEmission and the fee fractions are
// fixed-point values in acre.Scale units. TotalStaked and FeeReserve are whole
// units of the staked asset.
type Farm struct {
	Staked acre.Asset
	Reward acre.Asset

	RewardPerSecond   *big.Int
	AccRewardPerShare *big.Int
	LastUpdateTime    uint64
	TotalStaked       *big.Int

	StartTime uint64
	EndTime   *uint64 `rlp:"nil"`
	Timelock  uint64

	HarvestFee         *big.Int
	WithdrawalFee      *big.Int
	BurnRewardFraction *big.Int

	Paused bool

	// IdleEmission is emission accrued while nobody was staked.
	IdleEmission *big.Int
	// FeeReserve holds withdrawal fees kept in custody.
	FeeReserve *big.Int
}

func (f *Farm) normalize() {
	for _, v := range []**big.Int{
		&f.RewardPerSecond,
		&f.AccRewardPerShare,
		&f.TotalStaked,
		&f.HarvestFee,
		&f.WithdrawalFee,
		&f.BurnRewardFraction,
		&f.IdleEmission,
		&f.FeeReserve,
	} {
		if *v == nil {
			*v = new(big.Int)
		}
	}
}

// Clone returns a deep copy.
func (f *Farm) Clone() *Farm {
	c := *f
	c.RewardPerSecond = new(big.Int).Set(f.RewardPerSecond)
	c.AccRewardPerShare = new(big.Int).Set(f.AccRewardPerShare)
	c.TotalStaked = new(big.Int).Set(f.TotalStaked)
	c.HarvestFee = new(big.Int).Set(f.HarvestFee)
	c.WithdrawalFee = new(big.Int).Set(f.WithdrawalFee)
	c.BurnRewardFraction = new(big.Int).Set(f.BurnRewardFraction)
	c.IdleEmission = new(big.Int).Set(f.IdleEmission)
	c.FeeReserve = new(big.Int).Set(f.FeeReserve)
	if f.EndTime != nil {
		end := *f.EndTime
		c.EndTime = &end
	}
	return &c
}

// HorizonAt caps now at the end of the emission window.
func (f *Farm) HorizonAt(now uint64) uint64 {
	if f.EndTime != nil && now > *f.EndTime {
		return *f.EndTime
	}
	return now
}

// Finished reports whether the emission window is over at now.
func (f *Farm) Finished(now uint64) bool {
	return f.EndTime != nil && now >= *f.EndTime
}

// Accrue brings AccRewardPerShare up to now and returns the scaled emission
// of the elapsed interval.
//
// A paused farm only advances LastUpdateTime. Emission with nobody staked is
// parked in IdleEmission. The floor division drops at most TotalStaked-1
// scaled units per call.
func (f *Farm) Accrue(now uint64) *big.Int {
	horizon := f.HorizonAt(now)
	if horizon <= f.LastUpdateTime {
		return new(big.Int)
	}
	elapsed := horizon - f.LastUpdateTime
	f.LastUpdateTime = horizon

	if f.Paused || f.RewardPerSecond.Sign() == 0 {
		return new(big.Int)
	}
	emitted := new(big.Int).Mul(new(big.Int).SetUint64(elapsed), f.RewardPerSecond)
	if f.TotalStaked.Sign() == 0 {
		f.IdleEmission.Add(f.IdleEmission, emitted)
		return emitted
	}
	perShare, _ := acre.QuoRem(emitted, f.TotalStaked)
	f.AccRewardPerShare.Add(f.AccRewardPerShare, perShare)
	return emitted
}

// RewardOf is floor(staked * AccRewardPerShare / Scale).
func (f *Farm) RewardOf(staked *big.Int) *big.Int {
	return acre.MulDiv(staked, f.AccRewardPerShare, acre.Scale, acre.RoundDown)
}

// Locked reports whether a stake made at lastStakeTime is still inside the timelock at now.
func (f *Farm) Locked(now, lastStakeTime uint64) bool {
	if f.Timelock == 0 {
		return false
	}
	return now < lastStakeTime || now-lastStakeTime < f.Timelock
}
