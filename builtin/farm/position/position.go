// Copyright (c) 2025 The Acreage developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package position

import (
	"math/big"

	"github.com/acreage-labs/acreage/acre"
	"github.com/acreage-labs/acreage/builtin/farm/accumulator"
)

// Position is a user's stake in one farm. It is kept at zero stake so the
// candidate and referrer survive a full withdrawal.
//
// Earned holds reward settled while the stake was inside the timelock. It is
// paid with the first harvest after the lock, or burnt by a locked withdrawal.
type Position struct {
	Staked        *big.Int
	RewardDebt    *big.Int
	LastStakeTime uint64
	Candidate     acre.Address
	Referrer      acre.Address
	Earned        *big.Int
}

func (p *Position) normalize() {
	if p.Staked == nil {
		p.Staked = new(big.Int)
	}
	if p.RewardDebt == nil {
		p.RewardDebt = new(big.Int)
	}
	if p.Earned == nil {
		p.Earned = new(big.Int)
	}
}

func (p *Position) Clone() *Position {
	c := *p
	c.Staked = new(big.Int).Set(p.Staked)
	c.RewardDebt = new(big.Int).Set(p.RewardDebt)
	c.Earned = new(big.Int).Set(p.Earned)
	return &c
}

// IsEmpty reports whether the position was never touched.
func (p *Position) IsEmpty() bool {
	return p.Staked.Sign() == 0 &&
		p.RewardDebt.Sign() == 0 &&
		p.LastStakeTime == 0 &&
		p.Candidate.IsZero() &&
		p.Referrer.IsZero() &&
		p.Earned.Sign() == 0
}

// Pending is the reward owed at the farm's current accumulator.
func (p *Position) Pending(f *accumulator.Farm) *big.Int {
	pending := new(big.Int).Sub(f.RewardOf(p.Staked), p.RewardDebt)
	if pending.Sign() < 0 {
		return new(big.Int)
	}
	return pending
}

// Settle accrues the farm to now, books the reward owed to p and returns it.
// A second call at the same now returns zero and changes nothing.
func Settle(f *accumulator.Farm, p *Position, now uint64) *big.Int {
	f.Accrue(now)
	pending := p.Pending(f)
	p.SyncDebt(f)
	return pending
}

// Collect settles p at now and returns everything owed to it, including the
// reward held back during the timelock. Earned is cleared.
func Collect(f *accumulator.Farm, p *Position, now uint64) *big.Int {
	owed := Settle(f, p, now)
	owed.Add(owed, p.Earned)
	p.Earned = new(big.Int)
	return owed
}

// SyncDebt marks everything owed so far as paid. It must follow every stake change.
func (p *Position) SyncDebt(f *accumulator.Farm) {
	p.RewardDebt = f.RewardOf(p.Staked)
}
