// Copyright (c) 2025 The Acreage developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package payout splits settled rewards and returned principal into fee and
// net amounts.
package payout

import (
	"math/big"

	"github.com/acreage-labs/acreage/acre"
)

// Policy applies fee fractions with a fixed rounding convention.
type Policy struct {
	Rounding acre.Rounding
}

// Split is the outcome of a harvest. Burn + Payout always equals the settled reward.
type Split struct {
	Burn   *big.Int
	Payout *big.Int
}

// Harvest splits pending into the harvest fee cut and the user payout.
func (p Policy) Harvest(pending, harvestFee *big.Int) Split {
	burn := p.fee(pending, harvestFee)
	return Split{
		Burn:   burn,
		Payout: new(big.Int).Sub(pending, burn),
	}
}

// Forfeit sends the whole reward to the burn cut.
func (p Policy) Forfeit(pending *big.Int) Split {
	return Split{
		Burn:   new(big.Int).Set(pending),
		Payout: new(big.Int),
	}
}

// Withdrawal returns the fee withheld from amount and the net principal.
// No fee is charged outside the timelock.
func (p Policy) Withdrawal(amount, withdrawalFee *big.Int, locked bool) (fee, net *big.Int) {
	if !locked {
		return new(big.Int), new(big.Int).Set(amount)
	}
	fee = p.fee(amount, withdrawalFee)
	return fee, new(big.Int).Sub(amount, fee)
}

// Share splits amount into the fraction share and the remainder.
func (p Policy) Share(amount, fraction *big.Int) (share, rest *big.Int) {
	share = p.fee(amount, fraction)
	return share, new(big.Int).Sub(amount, share)
}

func (p Policy) fee(amount, fraction *big.Int) *big.Int {
	return acre.MulFraction(amount, fraction, p.Rounding)
}
