// Copyright (c) 2025 The Acreage developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package farm

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/acreage-labs/acreage/acre"
	"github.com/acreage-labs/acreage/builtin/farm/accumulator"
	"github.com/acreage-labs/acreage/builtin/farm/payout"
	"github.com/acreage-labs/acreage/builtin/farm/position"
	"github.com/acreage-labs/acreage/builtin/farm/reverts"
)

// harvest settles p against f and pays the reward to receiver, minus the
// harvest fee which goes to the referrer or the burn sink. With forfeit the
// whole reward goes to the burn sink. Inside the timelock the reward is held
// in p.Earned instead of paid. Nothing is issued for a zero reward.
func (t *txn) harvest(farmID uint64, f *accumulator.Farm, p *position.Position, receiver acre.Address, forfeit bool) error {
	if !forfeit && f.Locked(t.call.Now, p.LastStakeTime) {
		p.Earned.Add(p.Earned, position.Settle(f, p, t.call.Now))
		return nil
	}
	pending := position.Collect(f, p, t.call.Now)
	if pending.Sign() == 0 {
		return nil
	}

	var split payout.Split
	if forfeit {
		split = t.engine.policy.Forfeit(pending)
	} else {
		split = t.engine.policy.Harvest(pending, f.HarvestFee)
	}

	source := t.rewardSource()
	if split.Burn.Sign() > 0 {
		if !forfeit && !p.Referrer.IsZero() {
			t.transfer(KindReferral, farmID, f.Reward, source, p.Referrer, split.Burn)
		} else {
			sink, err := t.burnSink()
			if err != nil {
				return err
			}
			t.transfer(KindBurn, farmID, f.Reward, source, sink, split.Burn)
		}
	}
	if split.Payout.Sign() > 0 {
		t.transfer(KindReward, farmID, f.Reward, source, receiver, split.Payout)
	}
	return nil
}

func (t *txn) save(farmID uint64, f *accumulator.Farm) error {
	return t.engine.farms.SetFarm(farmID, f)
}

func validAmount(amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return errors.WithMessage(reverts.ErrInvalidParams, "negative amount")
	}
	return nil
}

// Deposit settles the sender's position, stakes amount and delegates the
// position's weight to candidate. A zero amount only harvests. Switching
// candidate emits a vote event for the old candidate and then the new one.
func (e *Engine) Deposit(
	call Call,
	farmID uint64,
	amount *big.Int,
	candidate acre.Address,
	referrer *acre.Address,
) (*Receipt, error) {
	logger.Debug("depositing", "farm", farmID, "sender", call.Sender, "amount", amount, "candidate", candidate)

	receipt, err := e.run("deposit", call, func(t *txn) error {
		if err := validAmount(amount); err != nil {
			return err
		}
		if candidate.IsZero() {
			return reverts.ErrInvalidCandidate
		}
		banned, err := e.delegation.IsBanned(candidate)
		if err != nil {
			return err
		}
		if banned {
			return reverts.ErrBannedCandidate
		}
		if referrer != nil && *referrer == call.Sender {
			return reverts.ErrSelfReferral
		}

		f, err := e.farms.GetFarm(farmID)
		if err != nil {
			return err
		}
		if f.Paused {
			return reverts.ErrFarmPaused
		}
		p, err := e.positions.GetPosition(farmID, call.Sender)
		if err != nil {
			return err
		}
		if referrer != nil && !referrer.IsZero() && p.Referrer.IsZero() {
			p.Referrer = *referrer
		}

		if err := t.harvest(farmID, f, p, call.Sender, false); err != nil {
			return err
		}

		prevStaked := new(big.Int).Set(p.Staked)
		if amount.Sign() > 0 {
			t.transfer(KindDeposit, farmID, f.Staked, call.Sender, e.cfg.Address, amount)
			p.Staked.Add(p.Staked, amount)
			f.TotalStaked.Add(f.TotalStaked, amount)
			p.LastStakeTime = call.Now
		}
		p.SyncDebt(f)

		if candidate != p.Candidate {
			if err := t.vote(e.delegation.Sub(p.Candidate, prevStaked)); err != nil {
				return err
			}
			if err := t.vote(e.delegation.Add(candidate, p.Staked)); err != nil {
				return err
			}
			p.Candidate = candidate
		} else if err := t.vote(e.delegation.Add(candidate, amount)); err != nil {
			return err
		}

		if err := e.positions.SetPosition(farmID, call.Sender, p); err != nil {
			return err
		}
		return t.save(farmID, f)
	})
	if err != nil {
		return nil, err
	}

	logger.Info("deposited", "farm", farmID, "sender", call.Sender, "amount", amount)
	return receipt, nil
}

// Withdraw settles the sender's position and returns amount of stake to
// receiver. Inside the timelock the reward is burnt and a withdrawal fee is
// kept in the farm's fee reserve. The principal transfer is always issued.
func (e *Engine) Withdraw(call Call, farmID uint64, amount *big.Int, receiver acre.Address) (*Receipt, error) {
	if receiver.IsZero() {
		receiver = call.Sender
	}
	logger.Debug("withdrawing", "farm", farmID, "sender", call.Sender, "amount", amount, "receiver", receiver)

	receipt, err := e.run("withdraw", call, func(t *txn) error {
		if err := validAmount(amount); err != nil {
			return err
		}
		f, err := e.farms.GetFarm(farmID)
		if err != nil {
			return err
		}
		p, err := e.positions.GetPosition(farmID, call.Sender)
		if err != nil {
			return err
		}
		if amount.Cmp(p.Staked) > 0 {
			return reverts.ErrInsufficientStake
		}

		locked := f.Locked(call.Now, p.LastStakeTime)
		if err := t.harvest(farmID, f, p, receiver, locked); err != nil {
			return err
		}

		fee, net := e.policy.Withdrawal(amount, f.WithdrawalFee, locked)
		p.Staked.Sub(p.Staked, amount)
		f.TotalStaked.Sub(f.TotalStaked, amount)
		f.FeeReserve.Add(f.FeeReserve, fee)
		p.SyncDebt(f)

		t.transfer(KindWithdraw, farmID, f.Staked, e.cfg.Address, receiver, net)
		if err := t.vote(e.delegation.Sub(p.Candidate, amount)); err != nil {
			return err
		}

		if err := e.positions.SetPosition(farmID, call.Sender, p); err != nil {
			return err
		}
		return t.save(farmID, f)
	})
	if err != nil {
		return nil, err
	}

	logger.Info("withdrew", "farm", farmID, "sender", call.Sender, "amount", amount)
	return receipt, nil
}

// Harvest pays the sender's settled reward to receiver. Inside the timelock
// the reward is only settled and stays on the position.
func (e *Engine) Harvest(call Call, farmID uint64, receiver acre.Address) (*Receipt, error) {
	if receiver.IsZero() {
		receiver = call.Sender
	}
	logger.Debug("harvesting", "farm", farmID, "sender", call.Sender, "receiver", receiver)

	receipt, err := e.run("harvest", call, func(t *txn) error {
		f, err := e.farms.GetFarm(farmID)
		if err != nil {
			return err
		}
		p, err := e.positions.GetPosition(farmID, call.Sender)
		if err != nil {
			return err
		}
		if err := t.harvest(farmID, f, p, receiver, false); err != nil {
			return err
		}
		if err := e.positions.SetPosition(farmID, call.Sender, p); err != nil {
			return err
		}
		return t.save(farmID, f)
	})
	if err != nil {
		return nil, err
	}

	logger.Info("harvested", "farm", farmID, "sender", call.Sender, "transfers", len(receipt.Transfers))
	return receipt, nil
}

// TransferLeg moves Amount of position from the batch sender to To.
type TransferLeg struct {
	To      acre.Address
	TokenID uint64
	Amount  *big.Int
}

// TransferBatch groups the legs sent by one owner.
type TransferBatch struct {
	From acre.Address
	Legs []TransferLeg
}

// Transfer moves positions between users of one farm. Each leg harvests the
// sender and then the receiver before any stake moves. The farm total is unchanged.
func (e *Engine) Transfer(call Call, farmID uint64, batches []TransferBatch) (*Receipt, error) {
	logger.Debug("transferring", "farm", farmID, "sender", call.Sender, "batches", len(batches))

	receipt, err := e.run("transfer", call, func(t *txn) error {
		f, err := e.farms.GetFarm(farmID)
		if err != nil {
			return err
		}
		for _, batch := range batches {
			if call.Sender != batch.From {
				ok, err := e.admin.IsOperator(batch.From, call.Sender)
				if err != nil {
					return err
				}
				if !ok {
					return reverts.ErrNotOperator
				}
			}
			for _, leg := range batch.Legs {
				if err := t.transferLeg(farmID, f, batch.From, leg); err != nil {
					return err
				}
			}
		}
		return t.save(farmID, f)
	})
	if err != nil {
		return nil, err
	}

	logger.Info("transferred", "farm", farmID, "sender", call.Sender)
	return receipt, nil
}

func (t *txn) transferLeg(farmID uint64, f *accumulator.Farm, from acre.Address, leg TransferLeg) error {
	e := t.engine
	switch {
	case leg.TokenID != acre.PositionTokenID:
		return reverts.ErrWrongAsset
	case leg.To == from:
		return reverts.ErrSelfTransfer
	case leg.To == e.cfg.Address:
		return reverts.ErrForbiddenDestination
	}
	if err := validAmount(leg.Amount); err != nil {
		return err
	}

	sender, err := e.positions.GetPosition(farmID, from)
	if err != nil {
		return err
	}
	if leg.Amount.Cmp(sender.Staked) > 0 {
		return reverts.ErrInsufficientStake
	}
	if f.Locked(t.call.Now, sender.LastStakeTime) {
		return reverts.ErrTimelockNotFinished
	}
	if err := t.harvest(farmID, f, sender, from, false); err != nil {
		return err
	}

	receiver, err := e.positions.GetPosition(farmID, leg.To)
	if err != nil {
		return err
	}
	if err := t.harvest(farmID, f, receiver, leg.To, false); err != nil {
		return err
	}

	sender.Staked.Sub(sender.Staked, leg.Amount)
	receiver.Staked.Add(receiver.Staked, leg.Amount)
	sender.SyncDebt(f)
	receiver.SyncDebt(f)

	if receiver.Candidate.IsZero() {
		receiver.Candidate = sender.Candidate
	}
	if sender.Candidate != receiver.Candidate {
		if err := t.vote(e.delegation.Sub(sender.Candidate, leg.Amount)); err != nil {
			return err
		}
		if err := t.vote(e.delegation.Add(receiver.Candidate, leg.Amount)); err != nil {
			return err
		}
	}

	if err := e.positions.SetPosition(farmID, from, sender); err != nil {
		return err
	}
	return e.positions.SetPosition(farmID, leg.To, receiver)
}
