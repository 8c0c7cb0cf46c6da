// Copyright (c) 2025 The Acreage developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package farm

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/acreage-labs/acreage/acre"
	"github.com/acreage-labs/acreage/builtin/farm/accumulator"
	"github.com/acreage-labs/acreage/builtin/farm/reverts"
)

// AddNewFarm creates a farm with the next sequential id. A start time in the
// past is moved up to now, so no emission exists before the farm does. Admin only.
func (e *Engine) AddNewFarm(call Call, params FarmParams) (*Receipt, error) {
	logger.Debug("adding farm", "sender", call.Sender, "staked", params.Staked, "start", params.StartTime)

	receipt, err := e.run("add_new_farm", call, func(t *txn) error {
		if err := e.admin.CheckAdmin(call.Sender); err != nil {
			return err
		}
		params.StartTime = max(params.StartTime, call.Now)
		if err := params.Validate(); err != nil {
			return err
		}
		reward := params.Reward
		if e.cfg.Variant == VariantQ {
			reward = e.cfg.GovernanceAsset
		}
		f := &accumulator.Farm{
			Staked:             params.Staked,
			Reward:             reward,
			RewardPerSecond:    orZero(params.RewardPerSecond),
			AccRewardPerShare:  new(big.Int),
			LastUpdateTime:     params.StartTime,
			TotalStaked:        new(big.Int),
			StartTime:          params.StartTime,
			Timelock:           params.Timelock,
			HarvestFee:         orZero(params.HarvestFee),
			WithdrawalFee:      orZero(params.WithdrawalFee),
			BurnRewardFraction: orZero(params.BurnRewardFraction),
			IdleEmission:       new(big.Int),
			FeeReserve:         new(big.Int),
		}
		if params.EndTime != nil {
			end := *params.EndTime
			f.EndTime = &end
		}
		id, err := e.farms.Add(f)
		if err != nil {
			return err
		}
		t.receipt.NewFarmID = &id
		return nil
	})
	if err != nil {
		return nil, err
	}

	count, err := e.farms.Count()
	if err == nil {
		metricFarms().Set(int64(count))
	}
	logger.Info("added farm", "id", *receipt.NewFarmID)
	return receipt, nil
}

// SetRewardPerSecond changes farm rates. Each farm is accrued at its old rate
// through now first, so elapsed time is never repriced. Admin only.
func (e *Engine) SetRewardPerSecond(call Call, entries []RateEntry) (*Receipt, error) {
	logger.Debug("setting reward per second", "sender", call.Sender, "entries", len(entries))

	receipt, err := e.run("set_reward_per_second", call, func(t *txn) error {
		if err := e.admin.CheckAdmin(call.Sender); err != nil {
			return err
		}
		for _, entry := range entries {
			if entry.RewardPerSecond == nil || entry.RewardPerSecond.Sign() < 0 {
				return errors.WithMessage(reverts.ErrInvalidParams, "negative reward per second")
			}
			f, err := e.farms.GetFarm(entry.FarmID)
			if err != nil {
				return err
			}
			f.Accrue(call.Now)
			if f.Finished(call.Now) {
				return errors.WithMessagef(reverts.ErrFarmFinished, "farm %d", entry.FarmID)
			}
			f.RewardPerSecond = new(big.Int).Set(entry.RewardPerSecond)
			if err := t.save(entry.FarmID, f); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("set reward per second", "entries", len(entries))
	return receipt, nil
}

// SetFees replaces fee fractions, flushing accrual first. Admin only.
func (e *Engine) SetFees(call Call, entries []FeeEntry) (*Receipt, error) {
	logger.Debug("setting fees", "sender", call.Sender, "entries", len(entries))

	receipt, err := e.run("set_fees", call, func(t *txn) error {
		if err := e.admin.CheckAdmin(call.Sender); err != nil {
			return err
		}
		for _, entry := range entries {
			if err := validFractions(entry.HarvestFee, entry.WithdrawalFee, entry.BurnRewardFraction); err != nil {
				return err
			}
			f, err := e.farms.GetFarm(entry.FarmID)
			if err != nil {
				return err
			}
			f.Accrue(call.Now)
			f.HarvestFee = orZero(entry.HarvestFee)
			f.WithdrawalFee = orZero(entry.WithdrawalFee)
			f.BurnRewardFraction = orZero(entry.BurnRewardFraction)
			if err := t.save(entry.FarmID, f); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("set fees", "entries", len(entries))
	return receipt, nil
}

// PauseFarms pauses or resumes farms. A paused farm emits nothing and
// refuses deposits. Admin only.
func (e *Engine) PauseFarms(call Call, entries []PauseEntry) (*Receipt, error) {
	logger.Debug("pausing farms", "sender", call.Sender, "entries", len(entries))

	receipt, err := e.run("pause_farms", call, func(t *txn) error {
		if err := e.admin.CheckAdmin(call.Sender); err != nil {
			return err
		}
		for _, entry := range entries {
			f, err := e.farms.GetFarm(entry.FarmID)
			if err != nil {
				return err
			}
			f.Accrue(call.Now)
			f.Paused = entry.Paused
			if err := t.save(entry.FarmID, f); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("paused farms", "entries", len(entries))
	return receipt, nil
}

// BurnFarmRewards burns the whole units of a farm's idle emission. The
// farm's burn reward fraction of it goes to the caller instead.
func (e *Engine) BurnFarmRewards(call Call, farmID uint64) (*Receipt, error) {
	logger.Debug("burning farm rewards", "farm", farmID, "sender", call.Sender)

	receipt, err := e.run("burn_farm_rewards", call, func(t *txn) error {
		f, err := e.farms.GetFarm(farmID)
		if err != nil {
			return err
		}
		units := t.takeIdle(f)
		if units.Sign() > 0 {
			share, rest := e.policy.Share(units, f.BurnRewardFraction)
			sink, err := t.burnSink()
			if err != nil {
				return err
			}
			source := t.rewardSource()
			if rest.Sign() > 0 {
				t.transfer(KindBurn, farmID, f.Reward, source, sink, rest)
			}
			if share.Sign() > 0 {
				t.transfer(KindReward, farmID, f.Reward, source, call.Sender, share)
			}
		}
		return t.save(farmID, f)
	})
	if err != nil {
		return nil, err
	}

	logger.Info("burnt farm rewards", "farm", farmID)
	return receipt, nil
}

// ClaimFarmRewards pays a farm's idle emission to receiver. Admin only.
func (e *Engine) ClaimFarmRewards(call Call, farmID uint64, receiver acre.Address) (*Receipt, error) {
	if receiver.IsZero() {
		receiver = call.Sender
	}
	logger.Debug("claiming farm rewards", "farm", farmID, "sender", call.Sender, "receiver", receiver)

	receipt, err := e.run("claim_farm_rewards", call, func(t *txn) error {
		if err := e.admin.CheckAdmin(call.Sender); err != nil {
			return err
		}
		f, err := e.farms.GetFarm(farmID)
		if err != nil {
			return err
		}
		if units := t.takeIdle(f); units.Sign() > 0 {
			t.transfer(KindClaim, farmID, f.Reward, t.rewardSource(), receiver, units)
		}
		return t.save(farmID, f)
	})
	if err != nil {
		return nil, err
	}

	logger.Info("claimed farm rewards", "farm", farmID, "receiver", receiver)
	return receipt, nil
}

// takeIdle accrues f and removes the whole units of its idle emission,
// leaving the sub-unit residue in place.
func (t *txn) takeIdle(f *accumulator.Farm) *big.Int {
	f.Accrue(t.call.Now)
	units, residue := acre.Unscale(f.IdleEmission)
	f.IdleEmission = residue
	return units
}

// WithdrawFarmDepo pays out the withdrawal fees kept by a farm. Admin only.
func (e *Engine) WithdrawFarmDepo(call Call, farmID uint64, receiver acre.Address) (*Receipt, error) {
	if receiver.IsZero() {
		receiver = call.Sender
	}
	logger.Debug("withdrawing farm fee reserve", "farm", farmID, "receiver", receiver)

	receipt, err := e.run("withdraw_farm_depo", call, func(t *txn) error {
		if err := e.admin.CheckAdmin(call.Sender); err != nil {
			return err
		}
		f, err := e.farms.GetFarm(farmID)
		if err != nil {
			return err
		}
		if f.FeeReserve.Sign() == 0 {
			return nil
		}
		t.transfer(KindReserve, farmID, f.Staked, e.cfg.Address, receiver, f.FeeReserve)
		f.FeeReserve = new(big.Int)
		return t.save(farmID, f)
	})
	if err != nil {
		return nil, err
	}

	logger.Info("withdrew farm fee reserve", "farm", farmID, "receiver", receiver)
	return receipt, nil
}

// SetAdmin proposes a new admin, who must confirm. Admin only.
func (e *Engine) SetAdmin(call Call, candidate acre.Address) (*Receipt, error) {
	logger.Debug("proposing admin", "sender", call.Sender, "candidate", candidate)

	receipt, err := e.run("set_admin", call, func(t *txn) error {
		if err := e.admin.CheckAdmin(call.Sender); err != nil {
			return err
		}
		if candidate.IsZero() {
			return errors.WithMessage(reverts.ErrInvalidParams, "zero admin")
		}
		return e.admin.Propose(candidate)
	})
	if err != nil {
		return nil, err
	}

	logger.Info("proposed admin", "candidate", candidate)
	return receipt, nil
}

// ConfirmAdmin completes an admin change. Only the pending admin may call it.
func (e *Engine) ConfirmAdmin(call Call) (*Receipt, error) {
	receipt, err := e.run("confirm_admin", call, func(t *txn) error {
		return e.admin.Confirm(call.Sender)
	})
	if err != nil {
		return nil, err
	}

	logger.Info("confirmed admin", "admin", call.Sender)
	return receipt, nil
}

// SetBurner changes the burn sink. Admin only.
func (e *Engine) SetBurner(call Call, burner acre.Address) (*Receipt, error) {
	receipt, err := e.run("set_burner", call, func(t *txn) error {
		if err := e.admin.CheckAdmin(call.Sender); err != nil {
			return err
		}
		if burner.IsZero() {
			return errors.WithMessage(reverts.ErrInvalidParams, "zero burner")
		}
		return e.admin.SetBurner(burner)
	})
	if err != nil {
		return nil, err
	}

	logger.Info("set burner", "burner", burner)
	return receipt, nil
}

// BanCandidates bans or unbans delegation candidates. Admin only.
func (e *Engine) BanCandidates(call Call, entries []BanEntry) (*Receipt, error) {
	receipt, err := e.run("ban_candidates", call, func(t *txn) error {
		if err := e.admin.CheckAdmin(call.Sender); err != nil {
			return err
		}
		for _, entry := range entries {
			if err := e.delegation.SetBanned(entry.Candidate, entry.Banned); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("banned candidates", "entries", len(entries))
	return receipt, nil
}

// UpdateOperators adds or removes operators. Each update must come from its owner.
func (e *Engine) UpdateOperators(call Call, updates []OperatorUpdate) (*Receipt, error) {
	receipt, err := e.run("update_operators", call, func(t *txn) error {
		for _, u := range updates {
			if u.Owner != call.Sender {
				return reverts.ErrNotOwner
			}
			if err := e.admin.SetOperator(u.Owner, u.Operator, u.Add); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("updated operators", "sender", call.Sender, "updates", len(updates))
	return receipt, nil
}
