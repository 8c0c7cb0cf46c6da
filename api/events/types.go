// Copyright (c) 2025 The Acreage developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package events

import (
	"fmt"
	"math"

	"github.com/pkg/errors"

	"github.com/acreage-labs/acreage/acre"
	"github.com/acreage-labs/acreage/eventdb"
)

type Range struct {
	Unit eventdb.RangeType `json:"unit"`
	From *uint64           `json:"from,omitempty"`
	To   *uint64           `json:"to,omitempty"`
}

func convertRange(r *Range) (*eventdb.Range, error) {
	if r == nil {
		return nil, nil
	}
	if r.Unit != eventdb.Seq && r.Unit != eventdb.Time {
		return nil, fmt.Errorf("range.unit must be %q or %q", eventdb.Seq, eventdb.Time)
	}
	rng := &eventdb.Range{Unit: r.Unit, To: math.MaxInt64}
	if r.From != nil {
		rng.From = *r.From
	}
	if r.To != nil {
		rng.To = min(*r.To, math.MaxInt64)
	}
	if rng.From > rng.To {
		return nil, errors.New("range.to must be greater than or equal to range.from")
	}
	return rng, nil
}

type Options struct {
	Offset uint64  `json:"offset,omitempty"`
	Limit  *uint64 `json:"limit,omitempty"`
}

func (o *Options) Validate(limit uint64) error {
	if o == nil {
		return nil
	}
	if o.Limit != nil && *o.Limit > limit {
		return fmt.Errorf("options.limit exceeds the maximum allowed value of %d", limit)
	}
	if o.Offset > math.MaxInt64 {
		return fmt.Errorf("options.offset exceeds the maximum allowed value of %d", uint64(math.MaxInt64))
	}
	return nil
}

// convert applies the default limit. The default is one over the maximum so
// that an oversized result can be told apart.
func (o *Options) convert(limit uint64) *eventdb.Options {
	opts := &eventdb.Options{Limit: limit + 1}
	if o != nil {
		opts.Offset = o.Offset
		if o.Limit != nil {
			opts.Limit = *o.Limit
		}
	}
	return opts
}

func resolve(s *string, field string) (*acre.Address, error) {
	if s == nil {
		return nil, nil
	}
	addr, err := acre.ResolveAddress(*s)
	if err != nil {
		return nil, errors.WithMessage(err, field)
	}
	return &addr, nil
}

type CallFilter struct {
	Sender  *string       `json:"sender,omitempty"`
	Op      string        `json:"op,omitempty"`
	Status  string        `json:"status,omitempty"`
	Range   *Range        `json:"range,omitempty"`
	Options *Options      `json:"options,omitempty"`
	Order   eventdb.Order `json:"order,omitempty"`
}

type TransferCriteria struct {
	FarmID *uint64 `json:"farmId,omitempty"`
	Kind   string  `json:"kind,omitempty"`
	From   *string `json:"from,omitempty"`
	To     *string `json:"to,omitempty"`
}

type TransferFilter struct {
	Seq         *uint64             `json:"seq,omitempty"`
	CriteriaSet []*TransferCriteria `json:"criteriaSet,omitempty"`
	Range       *Range              `json:"range,omitempty"`
	Options     *Options            `json:"options,omitempty"`
	Order       eventdb.Order       `json:"order,omitempty"`
}

type VoteFilter struct {
	Candidate *string       `json:"candidate,omitempty"`
	Range     *Range        `json:"range,omitempty"`
	Options   *Options      `json:"options,omitempty"`
	Order     eventdb.Order `json:"order,omitempty"`
}

type FilteredCall struct {
	Seq    uint64       `json:"seq"`
	Time   uint64       `json:"time"`
	Sender acre.Address `json:"sender"`
	Op     string       `json:"op"`
	Status string       `json:"status"`
	Error  string       `json:"error,omitempty"`
}

type FilteredTransfer struct {
	Seq    uint64       `json:"seq"`
	Index  uint32       `json:"index"`
	Time   uint64       `json:"time"`
	FarmID uint64       `json:"farmId"`
	Kind   string       `json:"kind"`
	Asset  acre.Asset   `json:"asset"`
	From   acre.Address `json:"from"`
	To     acre.Address `json:"to"`
	Amount string       `json:"amount"`
}

type FilteredVote struct {
	Seq       uint64       `json:"seq"`
	Index     uint32       `json:"index"`
	Time      uint64       `json:"time"`
	Candidate acre.Address `json:"candidate"`
	Weight    string       `json:"weight"`
}
