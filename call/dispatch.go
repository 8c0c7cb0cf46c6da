// Copyright (c) 2025 The Acreage developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package call

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/acreage-labs/acreage/acre"
	"github.com/acreage-labs/acreage/builtin/farm"
)

func invalid(format string, args ...any) error {
	return errors.WithMessagef(ErrInvalidCall, format, args...)
}

func address(field, s string) (acre.Address, error) {
	if s == "" {
		return acre.Address{}, invalid("%s must be set", field)
	}
	addr, err := acre.ResolveAddress(s)
	if err != nil {
		return acre.Address{}, invalid("%s: %v", field, err)
	}
	return addr, nil
}

// receiver resolves s, falling back to the sender.
func (c *Call) receiver(sender acre.Address) (acre.Address, error) {
	if c.Receiver == "" {
		return sender, nil
	}
	return address("receiver", c.Receiver)
}

func amount(field, s string) (*big.Int, error) {
	v, err := acre.ParseAmount(s)
	if err != nil {
		return nil, invalid("%s: %v", field, err)
	}
	return v, nil
}

func fraction(field, s string) (*big.Int, error) {
	if s == "" {
		return nil, nil
	}
	v, err := acre.ParseFraction(s)
	if err != nil {
		return nil, invalid("%s: %v", field, err)
	}
	return v, nil
}

// Dispatch decodes c into engine arguments and invokes the entrypoint.
// Decoding failures wrap ErrInvalidCall; engine failures are returned as is.
func Dispatch(e *farm.Engine, c *Call) (*farm.Receipt, error) {
	sender, err := address("sender", c.Sender)
	if err != nil {
		return nil, err
	}
	fc := farm.Call{Sender: sender, Now: c.Time}

	switch c.Op {
	case OpDeposit:
		amt, err := amount("amount", c.Amount)
		if err != nil {
			return nil, err
		}
		candidate, err := address("candidate", c.Candidate)
		if err != nil {
			return nil, err
		}
		var referrer *acre.Address
		if c.Referrer != "" {
			r, err := address("referrer", c.Referrer)
			if err != nil {
				return nil, err
			}
			referrer = &r
		}
		return e.Deposit(fc, c.FarmID, amt, candidate, referrer)

	case OpWithdraw:
		amt, err := amount("amount", c.Amount)
		if err != nil {
			return nil, err
		}
		to, err := c.receiver(sender)
		if err != nil {
			return nil, err
		}
		return e.Withdraw(fc, c.FarmID, amt, to)

	case OpHarvest:
		to, err := c.receiver(sender)
		if err != nil {
			return nil, err
		}
		return e.Harvest(fc, c.FarmID, to)

	case OpTransfer:
		batches, err := c.transferBatches()
		if err != nil {
			return nil, err
		}
		return e.Transfer(fc, c.FarmID, batches)

	case OpAddNewFarm:
		if c.Farm == nil {
			return nil, invalid("farm must be set")
		}
		params, err := c.Farm.Params()
		if err != nil {
			return nil, invalid("farm: %v", err)
		}
		return e.AddNewFarm(fc, params)

	case OpSetRewardPerSecond:
		entries := make([]farm.RateEntry, 0, len(c.Rates))
		for i, r := range c.Rates {
			rps, err := acre.ParseScaled(r.RewardPerSecond)
			if err != nil {
				return nil, invalid("rates[%d]: %v", i, err)
			}
			entries = append(entries, farm.RateEntry{FarmID: r.FarmID, RewardPerSecond: rps})
		}
		return e.SetRewardPerSecond(fc, entries)

	case OpSetFees:
		entries := make([]farm.FeeEntry, 0, len(c.Fees))
		for i, f := range c.Fees {
			entry := farm.FeeEntry{FarmID: f.FarmID}
			if entry.HarvestFee, err = fraction("harvestFee", f.HarvestFee); err != nil {
				return nil, errors.WithMessagef(err, "fees[%d]", i)
			}
			if entry.WithdrawalFee, err = fraction("withdrawalFee", f.WithdrawalFee); err != nil {
				return nil, errors.WithMessagef(err, "fees[%d]", i)
			}
			if entry.BurnRewardFraction, err = fraction("burnRewardFraction", f.BurnRewardFraction); err != nil {
				return nil, errors.WithMessagef(err, "fees[%d]", i)
			}
			entries = append(entries, entry)
		}
		return e.SetFees(fc, entries)

	case OpPauseFarms:
		entries := make([]farm.PauseEntry, 0, len(c.Pauses))
		for _, p := range c.Pauses {
			entries = append(entries, farm.PauseEntry{FarmID: p.FarmID, Paused: p.Paused})
		}
		return e.PauseFarms(fc, entries)

	case OpBurnFarmRewards:
		return e.BurnFarmRewards(fc, c.FarmID)

	case OpClaimFarmRewards:
		to, err := c.receiver(sender)
		if err != nil {
			return nil, err
		}
		return e.ClaimFarmRewards(fc, c.FarmID, to)

	case OpWithdrawFarmDepo:
		to, err := c.receiver(sender)
		if err != nil {
			return nil, err
		}
		return e.WithdrawFarmDepo(fc, c.FarmID, to)

	case OpSetAdmin:
		addr, err := address("address", c.Address)
		if err != nil {
			return nil, err
		}
		return e.SetAdmin(fc, addr)

	case OpConfirmAdmin:
		return e.ConfirmAdmin(fc)

	case OpSetBurner:
		addr, err := address("address", c.Address)
		if err != nil {
			return nil, err
		}
		return e.SetBurner(fc, addr)

	case OpBanCandidates:
		entries := make([]farm.BanEntry, 0, len(c.Bans))
		for i, b := range c.Bans {
			candidate, err := address("candidate", b.Candidate)
			if err != nil {
				return nil, errors.WithMessagef(err, "bans[%d]", i)
			}
			entries = append(entries, farm.BanEntry{Candidate: candidate, Banned: b.Banned})
		}
		return e.BanCandidates(fc, entries)

	case OpUpdateOperators:
		updates := make([]farm.OperatorUpdate, 0, len(c.Operators))
		for i, u := range c.Operators {
			owner, err := address("owner", u.Owner)
			if err != nil {
				return nil, errors.WithMessagef(err, "operators[%d]", i)
			}
			operator, err := address("operator", u.Operator)
			if err != nil {
				return nil, errors.WithMessagef(err, "operators[%d]", i)
			}
			updates = append(updates, farm.OperatorUpdate{Owner: owner, Operator: operator, Add: u.Add})
		}
		return e.UpdateOperators(fc, updates)
	}
	return nil, invalid("unknown op %q", c.Op)
}

func (c *Call) transferBatches() ([]farm.TransferBatch, error) {
	batches := make([]farm.TransferBatch, 0, len(c.Batches))
	for i, b := range c.Batches {
		from, err := address("from", b.From)
		if err != nil {
			return nil, errors.WithMessagef(err, "batches[%d]", i)
		}
		batch := farm.TransferBatch{From: from, Legs: make([]farm.TransferLeg, 0, len(b.Legs))}
		for j, l := range b.Legs {
			to, err := address("to", l.To)
			if err != nil {
				return nil, errors.WithMessagef(err, "batches[%d].legs[%d]", i, j)
			}
			amt, err := amount("amount", l.Amount)
			if err != nil {
				return nil, errors.WithMessagef(err, "batches[%d].legs[%d]", i, j)
			}
			batch.Legs = append(batch.Legs, farm.TransferLeg{To: to, TokenID: l.TokenID, Amount: amt})
		}
		batches = append(batches, batch)
	}
	return batches, nil
}
