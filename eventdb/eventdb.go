// Copyright (c) 2025 The Acreage developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package eventdb keeps a queryable sqlite log of engine calls together with
// the transfers and vote events they issued.
package eventdb

import (
	"context"
	"database/sql"
	"math/big"

	sqlite3 "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"github.com/acreage-labs/acreage/acre"
)

type EventDB struct {
	path          string
	db            *sql.DB
	driverVersion string
	stmtCache     *stmtCache
}

// New create or open the event db at given path.
func New(path string) (eventDB *EventDB, err error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.Wrap(err, "open event db")
	}
	defer func() {
		if eventDB == nil {
			db.Close()
		}
	}()
	// a memory db lives in a single connection
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}
	if _, err := db.Exec(callTableSchema + transferTableSchema + voteTableSchema); err != nil {
		return nil, errors.Wrap(err, "create tables")
	}

	driverVer, _, _ := sqlite3.Version()
	return &EventDB{
		path,
		db,
		driverVer,
		newStmtCache(db),
	}, nil
}

// NewMem create an event db in ram.
func NewMem() (*EventDB, error) {
	return New(":memory:")
}

func (db *EventDB) Close() error {
	db.stmtCache.Clear()
	return db.db.Close()
}

func (db *EventDB) Path() string {
	return db.path
}

func (db *EventDB) DriverVersion() string {
	return db.driverVersion
}

// NewestSeq returns the highest call sequence written, or 0 for an empty db.
func (db *EventDB) NewestSeq() (uint64, error) {
	var seq sql.NullInt64
	if err := db.db.QueryRow("SELECT MAX(seq) FROM call").Scan(&seq); err != nil {
		return 0, err
	}
	if !seq.Valid {
		return 0, nil
	}
	return uint64(seq.Int64), nil
}

func rangeClause(r *Range, stmt string, args []any) (string, []any) {
	if r == nil {
		return stmt, args
	}
	column := "seq"
	if r.Unit == Time {
		column = "time"
	}
	args = append(args, r.From)
	stmt += " AND " + column + " >= ?"
	if r.To >= r.From {
		args = append(args, r.To)
		stmt += " AND " + column + " <= ?"
	}
	return stmt, args
}

func tailClause(order Order, columns []string, options *Options, stmt string, args []any) (string, []any) {
	dir := " ASC"
	if order == DESC {
		dir = " DESC"
	}
	for i, c := range columns {
		if i == 0 {
			stmt += " ORDER BY " + c + dir
		} else {
			stmt += ", " + c + dir
		}
	}
	if options != nil {
		stmt += " LIMIT ?, ?"
		args = append(args, options.Offset, options.Limit)
	}
	return stmt, args
}

func (db *EventDB) FilterCalls(ctx context.Context, filter *CallFilter) ([]*Call, error) {
	if filter == nil {
		filter = &CallFilter{}
	}
	metricsHandleQuery("call", filter.Options, filter.Order)

	var args []any
	stmt := "SELECT seq, time, sender, op, status, error FROM call WHERE 1"
	stmt, args = rangeClause(filter.Range, stmt, args)
	if filter.Sender != nil {
		args = append(args, filter.Sender.Bytes())
		stmt += " AND sender = ?"
	}
	if filter.Op != "" {
		args = append(args, filter.Op)
		stmt += " AND op = ?"
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		stmt += " AND status = ?"
	}
	stmt, args = tailClause(filter.Order, []string{"seq"}, filter.Options, stmt, args)

	rows, err := db.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var calls []*Call
	for rows.Next() {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		var (
			c      Call
			sender []byte
		)
		if err := rows.Scan(&c.Seq, &c.Time, &sender, &c.Op, &c.Status, &c.Error); err != nil {
			return nil, err
		}
		c.Sender = acre.BytesToAddress(sender)
		calls = append(calls, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return calls, nil
}

func (db *EventDB) FilterTransfers(ctx context.Context, filter *TransferFilter) ([]*Transfer, error) {
	if filter == nil {
		filter = &TransferFilter{}
	}
	metricsHandleQuery("transfer", filter.Options, filter.Order)

	var args []any
	stmt := "SELECT seq, transferIndex, time, farmID, kind, assetContract, assetTokenID, sender, recipient, amount FROM transfer WHERE 1"
	stmt, args = rangeClause(filter.Range, stmt, args)
	if filter.Seq != nil {
		args = append(args, *filter.Seq)
		stmt += " AND seq = ?"
	}
	for i, criteria := range filter.CriteriaSet {
		if i == 0 {
			stmt += " AND (( 1"
		} else {
			stmt += " OR ( 1"
		}
		if criteria.FarmID != nil {
			args = append(args, *criteria.FarmID)
			stmt += " AND farmID = ?"
		}
		if criteria.Kind != "" {
			args = append(args, criteria.Kind)
			stmt += " AND kind = ?"
		}
		if criteria.From != nil {
			args = append(args, criteria.From.Bytes())
			stmt += " AND sender = ?"
		}
		if criteria.To != nil {
			args = append(args, criteria.To.Bytes())
			stmt += " AND recipient = ?"
		}
		stmt += " )"
		if i == len(filter.CriteriaSet)-1 {
			stmt += ")"
		}
	}
	stmt, args = tailClause(filter.Order, []string{"seq", "transferIndex"}, filter.Options, stmt, args)

	rows, err := db.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var transfers []*Transfer
	for rows.Next() {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		var (
			tr                      Transfer
			contract, from, to, amt []byte
		)
		if err := rows.Scan(
			&tr.Seq,
			&tr.Index,
			&tr.Time,
			&tr.FarmID,
			&tr.Kind,
			&contract,
			&tr.Asset.TokenID,
			&from,
			&to,
			&amt,
		); err != nil {
			return nil, err
		}
		tr.Asset.Contract = acre.BytesToAddress(contract)
		tr.From = acre.BytesToAddress(from)
		tr.To = acre.BytesToAddress(to)
		tr.Amount = new(big.Int).SetBytes(amt)
		transfers = append(transfers, &tr)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return transfers, nil
}

func (db *EventDB) FilterVotes(ctx context.Context, filter *VoteFilter) ([]*Vote, error) {
	if filter == nil {
		filter = &VoteFilter{}
	}
	metricsHandleQuery("vote", filter.Options, filter.Order)

	var args []any
	stmt := "SELECT seq, voteIndex, time, candidate, weight FROM vote WHERE 1"
	stmt, args = rangeClause(filter.Range, stmt, args)
	if filter.Candidate != nil {
		args = append(args, filter.Candidate.Bytes())
		stmt += " AND candidate = ?"
	}
	stmt, args = tailClause(filter.Order, []string{"seq", "voteIndex"}, filter.Options, stmt, args)

	rows, err := db.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var votes []*Vote
	for rows.Next() {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		var (
			v                 Vote
			candidate, weight []byte
		)
		if err := rows.Scan(&v.Seq, &v.Index, &v.Time, &candidate, &weight); err != nil {
			return nil, err
		}
		v.Candidate = acre.BytesToAddress(candidate)
		v.Weight = new(big.Int).SetBytes(weight)
		votes = append(votes, &v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return votes, nil
}
