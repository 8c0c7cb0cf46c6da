// Copyright (c) 2025 The Acreage developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package calls

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/acreage-labs/acreage/api/utils"
	"github.com/acreage-labs/acreage/builtin/farm"
	"github.com/acreage-labs/acreage/builtin/farm/delegation"
	"github.com/acreage-labs/acreage/call"
	"github.com/acreage-labs/acreage/eventdb"
	"github.com/acreage-labs/acreage/runtime"
)

type Calls struct {
	rt *runtime.Runtime
}

func New(rt *runtime.Runtime) *Calls {
	return &Calls{rt}
}

// request is a call whose time may be omitted.
type request struct {
	call.Call
	Time *uint64 `json:"time"`
}

// handleExecute runs a call. Without a time the call runs at the wall clock,
// or at the last call's time if the clock is behind it.
func (c *Calls) handleExecute(w http.ResponseWriter, req *http.Request) error {
	var body request
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if body.Time != nil {
		body.Call.Time = *body.Time
	} else {
		body.Call.Time = max(uint64(time.Now().Unix()), c.rt.Time())
	}

	res, err := c.rt.Execute(&body.Call)
	if err != nil {
		if errors.Is(err, call.ErrInvalidCall) {
			return utils.BadRequest(err)
		}
		return err
	}
	return utils.WriteJSON(w, res)
}

func (c *Calls) handleGetCall(w http.ResponseWriter, req *http.Request) error {
	seq, err := utils.Uint64(req, "seq")
	if err != nil {
		return err
	}
	if res, ok := c.rt.Result(seq); ok {
		return utils.WriteJSON(w, res)
	}
	if seq == 0 || seq > c.rt.Seq() || c.rt.Events() == nil {
		return utils.NotFound(errors.Errorf("call %d not found", seq))
	}
	res, err := loadResult(req.Context(), c.rt.Events(), seq)
	if err != nil {
		return err
	}
	if res == nil {
		return utils.NotFound(errors.Errorf("call %d not found", seq))
	}
	return utils.WriteJSON(w, res)
}

// loadResult rebuilds an evicted result from the event db. The call
// arguments are not stored, only its sender, op and time.
func loadResult(ctx context.Context, db *eventdb.EventDB, seq uint64) (*runtime.Result, error) {
	rng := &eventdb.Range{Unit: eventdb.Seq, From: seq, To: seq}
	calls, err := db.FilterCalls(ctx, &eventdb.CallFilter{Range: rng})
	if err != nil || len(calls) == 0 {
		return nil, err
	}
	row := calls[0]
	res := &runtime.Result{
		Seq: row.Seq,
		Call: &call.Call{
			Op:     call.Op(row.Op),
			Sender: row.Sender.String(),
			Time:   row.Time,
		},
		Status: row.Status,
		Error:  row.Error,
	}
	if !res.OK() {
		return res, nil
	}

	transfers, err := db.FilterTransfers(ctx, &eventdb.TransferFilter{Seq: &seq})
	if err != nil {
		return nil, err
	}
	votes, err := db.FilterVotes(ctx, &eventdb.VoteFilter{Range: rng})
	if err != nil {
		return nil, err
	}
	res.Receipt = &farm.Receipt{}
	for _, t := range transfers {
		res.Receipt.Transfers = append(res.Receipt.Transfers, &farm.Transfer{
			Kind:   farm.TransferKind(t.Kind),
			FarmID: t.FarmID,
			Asset:  t.Asset,
			From:   t.From,
			To:     t.To,
			Amount: t.Amount,
		})
	}
	for _, v := range votes {
		res.Receipt.Votes = append(res.Receipt.Votes, &delegation.VoteEvent{Candidate: v.Candidate, Weight: v.Weight})
	}
	return res, nil
}

func (c *Calls) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodPost).
		Name("POST /calls").
		HandlerFunc(utils.WrapHandlerFunc(c.handleExecute))
	sub.Path("/{seq:[0-9]+}").
		Methods(http.MethodGet).
		Name("GET /calls/{seq}").
		HandlerFunc(utils.WrapHandlerFunc(c.handleGetCall))
}
