// Copyright (c) 2025 The Acreage developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package farm

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/acreage-labs/acreage/acre"
	"github.com/acreage-labs/acreage/builtin/farm/delegation"
	"github.com/acreage-labs/acreage/builtin/farm/reverts"
)

// TransferKind says why a transfer was issued.
type TransferKind string

const (
	KindDeposit  TransferKind = "deposit"
	KindWithdraw TransferKind = "withdraw"
	KindReward   TransferKind = "reward"
	KindBurn     TransferKind = "burn"
	KindReferral TransferKind = "referral"
	KindClaim    TransferKind = "claim"
	KindReserve  TransferKind = "reserve"
)

// Transfer is a token movement requested by the engine.
type Transfer struct {
	Kind   TransferKind `json:"kind"`
	FarmID uint64       `json:"farmId"`
	Asset  acre.Asset   `json:"asset"`
	From   acre.Address `json:"from"`
	To     acre.Address `json:"to"`
	Amount *big.Int     `json:"amount"`
}

// Receipt lists the effects of a successful call in the order they were applied.
//
// A vote event carries one candidate's new total weight. Moving weight between
// candidates, on a candidate switch or a transfer between positions delegating
// to different candidates, is reported as a pair: the source candidate first,
// then the destination.
type Receipt struct {
	Transfers []*Transfer             `json:"transfers"`
	Votes     []*delegation.VoteEvent `json:"votes"`
	// NewFarmID is set by AddNewFarm.
	NewFarmID *uint64 `json:"newFarmId,omitempty"`
}

// txn is the in-flight call.
type txn struct {
	engine  *Engine
	call    Call
	receipt *Receipt
	burner  *acre.Address
}

func (t *txn) transfer(kind TransferKind, farmID uint64, asset acre.Asset, from, to acre.Address, amount *big.Int) {
	t.receipt.Transfers = append(t.receipt.Transfers, &Transfer{
		Kind:   kind,
		FarmID: farmID,
		Asset:  asset,
		From:   from,
		To:     to,
		Amount: new(big.Int).Set(amount),
	})
}

func (t *txn) vote(ev *delegation.VoteEvent, err error) error {
	if err != nil {
		return err
	}
	if ev != nil {
		t.receipt.Votes = append(t.receipt.Votes, ev)
	}
	return nil
}

func (t *txn) burnSink() (acre.Address, error) {
	if t.burner == nil {
		b, err := t.engine.admin.Burner()
		if err != nil {
			return acre.Address{}, err
		}
		t.burner = &b
	}
	return *t.burner, nil
}

// rewardSource is where reward transfers are paid from.
func (t *txn) rewardSource() acre.Address {
	if t.engine.cfg.Variant == VariantQ {
		return acre.MintSource
	}
	return t.engine.cfg.Address
}

func (e *Engine) run(op string, call Call, fn func(t *txn) error) (*Receipt, error) {
	checkpoint := e.state.NewCheckpoint()
	t := &txn{engine: e, call: call, receipt: &Receipt{}}

	err := fn(t)
	if err == nil {
		err = e.dispatch(t.receipt)
	}
	if err != nil {
		e.state.RevertTo(checkpoint)
		status := "error"
		if reverts.IsRevertErr(err) {
			status = "reverted"
		}
		metricCalls().AddWithLabel(1, map[string]string{"op": op, "status": status})
		logger.Info(op+" failed", "sender", call.Sender, "error", err)
		return nil, err
	}
	metricCalls().AddWithLabel(1, map[string]string{"op": op, "status": "ok"})
	return t.receipt, nil
}

// dispatch hands the effects to the collaborators. Any failure aborts the call.
func (e *Engine) dispatch(r *Receipt) error {
	for _, tr := range r.Transfers {
		if err := e.tokens.Transfer(tr.Asset, tr.From, tr.To, tr.Amount); err != nil {
			return errors.Wrapf(err, "%s transfer of %v to %v", tr.Kind, tr.Amount, tr.To)
		}
		metricTransfers().AddWithLabel(1, map[string]string{"kind": string(tr.Kind)})
	}
	for _, v := range r.Votes {
		if err := e.voter.Vote(v.Candidate, v.Weight); err != nil {
			return errors.Wrapf(err, "vote for %v", v.Candidate)
		}
		metricVotes().Add(1)
	}
	return nil
}
