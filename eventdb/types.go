// Copyright (c) 2025 The Acreage developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package eventdb

import (
	"math/big"

	"github.com/acreage-labs/acreage/acre"
)

// Call is the outcome of one engine call.
type Call struct {
	Seq    uint64
	Time   uint64
	Sender acre.Address
	Op     string
	Status string
	Error  string
}

// Transfer is a token movement issued by a successful call.
type Transfer struct {
	Seq    uint64
	Index  uint32
	Time   uint64
	FarmID uint64
	Kind   string
	Asset  acre.Asset
	From   acre.Address
	To     acre.Address
	Amount *big.Int
}

// Vote is a delegation weight update issued by a successful call.
type Vote struct {
	Seq       uint64
	Index     uint32
	Time      uint64
	Candidate acre.Address
	Weight    *big.Int
}

type RangeType string

const (
	Seq  RangeType = "seq"
	Time RangeType = "time"
)

type Order string

const (
	ASC  Order = "asc"
	DESC Order = "desc"
)

// Range is inclusive at both ends. A To below From leaves the range open.
type Range struct {
	Unit RangeType
	From uint64
	To   uint64
}

type Options struct {
	Offset uint64
	Limit  uint64
}

type CallFilter struct {
	Sender  *acre.Address
	Op      string
	Status  string
	Range   *Range
	Options *Options
	Order   Order // default asc
}

type TransferCriteria struct {
	FarmID *uint64
	Kind   string
	From   *acre.Address
	To     *acre.Address
}

type TransferFilter struct {
	Seq         *uint64
	CriteriaSet []*TransferCriteria
	Range       *Range
	Options     *Options
	Order       Order // default asc
}

type VoteFilter struct {
	Candidate *acre.Address
	Range     *Range
	Options   *Options
	Order     Order // default asc
}
