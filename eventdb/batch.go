// Copyright (c) 2025 The Acreage developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package eventdb

import (
	"database/sql"
	"math/big"

	"github.com/acreage-labs/acreage/acre"
)

const (
	insertCall     = "INSERT OR REPLACE INTO call(seq, time, sender, op, status, error) VALUES (?, ?, ?, ?, ?, ?)"
	insertTransfer = "INSERT OR REPLACE INTO transfer(seq, transferIndex, time, farmID, kind, assetContract, assetTokenID, sender, recipient, amount) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)"
	insertVote     = "INSERT OR REPLACE INTO vote(seq, voteIndex, time, candidate, weight) VALUES (?, ?, ?, ?, ?)"
)

// Batch collects the rows of one call. Nothing is written before Commit.
type Batch struct {
	db        *EventDB
	call      *Call
	transfers []*Transfer
	votes     []*Vote
}

// Prepare starts the batch of the call numbered seq.
func (db *EventDB) Prepare(seq, time uint64, sender acre.Address, op string) *Batch {
	return &Batch{
		db: db,
		call: &Call{
			Seq:    seq,
			Time:   time,
			Sender: sender,
			Op:     op,
			Status: "ok",
		},
	}
}

// Fail records the call as failed with the given status.
func (b *Batch) Fail(status string, err error) *Batch {
	b.call.Status = status
	b.call.Error = err.Error()
	return b
}

func (b *Batch) Transfer(farmID uint64, kind string, asset acre.Asset, from, to acre.Address, amount *big.Int) *Batch {
	b.transfers = append(b.transfers, &Transfer{
		Seq:    b.call.Seq,
		Index:  uint32(len(b.transfers)),
		Time:   b.call.Time,
		FarmID: farmID,
		Kind:   kind,
		Asset:  asset,
		From:   from,
		To:     to,
		Amount: amount,
	})
	return b
}

func (b *Batch) Vote(candidate acre.Address, weight *big.Int) *Batch {
	b.votes = append(b.votes, &Vote{
		Seq:       b.call.Seq,
		Index:     uint32(len(b.votes)),
		Time:      b.call.Time,
		Candidate: candidate,
		Weight:    weight,
	})
	return b
}

func (b *Batch) execInTx(proc func(*sql.Tx) error) error {
	tx, err := b.db.db.Begin()
	if err != nil {
		return err
	}
	if err := proc(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func (b *Batch) Commit() error {
	// statements are prepared outside the tx, a memory db has one connection
	var stmts [3]*sql.Stmt
	for i, query := range []string{insertCall, insertTransfer, insertVote} {
		stmt, err := b.db.stmtCache.Prepare(query)
		if err != nil {
			return err
		}
		stmts[i] = stmt
	}

	err := b.execInTx(func(tx *sql.Tx) error {
		c := b.call
		if _, err := tx.Stmt(stmts[0]).Exec(c.Seq, c.Time, c.Sender.Bytes(), c.Op, c.Status, c.Error); err != nil {
			return err
		}
		for _, t := range b.transfers {
			if _, err := tx.Stmt(stmts[1]).Exec(
				t.Seq,
				t.Index,
				t.Time,
				t.FarmID,
				t.Kind,
				t.Asset.Contract.Bytes(),
				t.Asset.TokenID,
				t.From.Bytes(),
				t.To.Bytes(),
				t.Amount.Bytes(),
			); err != nil {
				return err
			}
		}
		for _, v := range b.votes {
			if _, err := tx.Stmt(stmts[2]).Exec(v.Seq, v.Index, v.Time, v.Candidate.Bytes(), v.Weight.Bytes()); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	metricRowsWritten().AddWithLabel(1, map[string]string{"table": "call"})
	metricRowsWritten().AddWithLabel(int64(len(b.transfers)), map[string]string{"table": "transfer"})
	metricRowsWritten().AddWithLabel(int64(len(b.votes)), map[string]string{"table": "vote"})
	return nil
}
