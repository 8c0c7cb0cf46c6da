// Copyright (c) 2025 The Acreage developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package events

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/acreage-labs/acreage/api/utils"
	"github.com/acreage-labs/acreage/eventdb"
)

type Events struct {
	db    *eventdb.EventDB
	limit uint64
}

func New(db *eventdb.EventDB, logsLimit uint64) *Events {
	return &Events{
		db,
		logsLimit,
	}
}

func (e *Events) tooMany(n int) error {
	if n > int(e.limit) {
		return utils.Forbidden(fmt.Errorf("the number of filtered logs exceeds the maximum allowed value of %d, please use pagination", e.limit))
	}
	return nil
}

func (e *Events) handleFilterCalls(w http.ResponseWriter, req *http.Request) error {
	var filter CallFilter
	if err := utils.ParseJSON(req.Body, &filter); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if err := filter.Options.Validate(e.limit); err != nil {
		return utils.Forbidden(err)
	}
	rng, err := convertRange(filter.Range)
	if err != nil {
		return utils.BadRequest(err)
	}
	sender, err := resolve(filter.Sender, "sender")
	if err != nil {
		return utils.BadRequest(err)
	}

	calls, err := e.db.FilterCalls(req.Context(), &eventdb.CallFilter{
		Sender:  sender,
		Op:      filter.Op,
		Status:  filter.Status,
		Range:   rng,
		Options: filter.Options.convert(e.limit),
		Order:   filter.Order,
	})
	if err != nil {
		return err
	}
	if err := e.tooMany(len(calls)); err != nil {
		return err
	}

	res := make([]*FilteredCall, len(calls))
	for i, c := range calls {
		res[i] = &FilteredCall{c.Seq, c.Time, c.Sender, c.Op, c.Status, c.Error}
	}
	return utils.WriteJSON(w, res)
}

func (e *Events) handleFilterTransfers(w http.ResponseWriter, req *http.Request) error {
	var filter TransferFilter
	if err := utils.ParseJSON(req.Body, &filter); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if err := filter.Options.Validate(e.limit); err != nil {
		return utils.Forbidden(err)
	}
	rng, err := convertRange(filter.Range)
	if err != nil {
		return utils.BadRequest(err)
	}

	criteria := make([]*eventdb.TransferCriteria, 0, len(filter.CriteriaSet))
	for i, c := range filter.CriteriaSet {
		if c == nil {
			return utils.BadRequest(fmt.Errorf("criteriaSet[%d]: null not allowed", i))
		}
		from, err := resolve(c.From, "from")
		if err != nil {
			return utils.BadRequest(errors.WithMessagef(err, "criteriaSet[%d]", i))
		}
		to, err := resolve(c.To, "to")
		if err != nil {
			return utils.BadRequest(errors.WithMessagef(err, "criteriaSet[%d]", i))
		}
		criteria = append(criteria, &eventdb.TransferCriteria{FarmID: c.FarmID, Kind: c.Kind, From: from, To: to})
	}

	transfers, err := e.db.FilterTransfers(req.Context(), &eventdb.TransferFilter{
		Seq:         filter.Seq,
		CriteriaSet: criteria,
		Range:       rng,
		Options:     filter.Options.convert(e.limit),
		Order:       filter.Order,
	})
	if err != nil {
		return err
	}
	if err := e.tooMany(len(transfers)); err != nil {
		return err
	}

	res := make([]*FilteredTransfer, len(transfers))
	for i, t := range transfers {
		res[i] = &FilteredTransfer{
			Seq:    t.Seq,
			Index:  t.Index,
			Time:   t.Time,
			FarmID: t.FarmID,
			Kind:   t.Kind,
			Asset:  t.Asset,
			From:   t.From,
			To:     t.To,
			Amount: t.Amount.String(),
		}
	}
	return utils.WriteJSON(w, res)
}

func (e *Events) handleFilterVotes(w http.ResponseWriter, req *http.Request) error {
	var filter VoteFilter
	if err := utils.ParseJSON(req.Body, &filter); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if err := filter.Options.Validate(e.limit); err != nil {
		return utils.Forbidden(err)
	}
	rng, err := convertRange(filter.Range)
	if err != nil {
		return utils.BadRequest(err)
	}
	candidate, err := resolve(filter.Candidate, "candidate")
	if err != nil {
		return utils.BadRequest(err)
	}

	votes, err := e.db.FilterVotes(req.Context(), &eventdb.VoteFilter{
		Candidate: candidate,
		Range:     rng,
		Options:   filter.Options.convert(e.limit),
		Order:     filter.Order,
	})
	if err != nil {
		return err
	}
	if err := e.tooMany(len(votes)); err != nil {
		return err
	}

	res := make([]*FilteredVote, len(votes))
	for i, v := range votes {
		res[i] = &FilteredVote{v.Seq, v.Index, v.Time, v.Candidate, v.Weight.String()}
	}
	return utils.WriteJSON(w, res)
}

func (e *Events) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/calls").
		Methods(http.MethodPost).
		Name("POST /logs/calls").
		HandlerFunc(utils.WrapHandlerFunc(e.handleFilterCalls))
	sub.Path("/transfers").
		Methods(http.MethodPost).
		Name("POST /logs/transfers").
		HandlerFunc(utils.WrapHandlerFunc(e.handleFilterTransfers))
	sub.Path("/votes").
		Methods(http.MethodPost).
		Name("POST /logs/votes").
		HandlerFunc(utils.WrapHandlerFunc(e.handleFilterVotes))
}
