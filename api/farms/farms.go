// Copyright (c) 2025 The Acreage developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package farms

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/acreage-labs/acreage/acre"
	"github.com/acreage-labs/acreage/api/utils"
	"github.com/acreage-labs/acreage/builtin/farm"
	"github.com/acreage-labs/acreage/builtin/farm/reverts"
	"github.com/acreage-labs/acreage/runtime"
)

type Farms struct {
	rt *runtime.Runtime
}

func New(rt *runtime.Runtime) *Farms {
	return &Farms{rt}
}

// viewError maps engine errors of read only calls to http errors.
func viewError(err error) error {
	if errors.Is(err, reverts.ErrUnknownFarm) {
		return utils.NotFound(err)
	}
	if reverts.IsRevertErr(err) {
		return utils.BadRequest(err)
	}
	return err
}

func (f *Farms) handleGetEngine(w http.ResponseWriter, _ *http.Request) error {
	gen := f.rt.Genesis()
	cfg := gen.EngineConfig()
	info := &Engine{
		GenesisID:       gen.ID(),
		Name:            gen.Name(),
		Variant:         string(cfg.Variant),
		Rounding:        cfg.Rounding.String(),
		Address:         cfg.Address,
		GovernanceAsset: cfg.GovernanceAsset,
		Seq:             f.rt.Seq(),
		Time:            f.rt.Time(),
	}
	if err := f.rt.View(func(e *farm.Engine) (err error) {
		info.FarmCount, err = e.FarmCount()
		return
	}); err != nil {
		return err
	}
	return utils.WriteJSON(w, info)
}

func (f *Farms) handleGetFarms(w http.ResponseWriter, _ *http.Request) error {
	var list []*Farm
	if err := f.rt.View(func(e *farm.Engine) error {
		count, err := e.FarmCount()
		if err != nil {
			return err
		}
		list = make([]*Farm, 0, count)
		for id := uint64(0); id < count; id++ {
			fm, err := e.GetFarm(id)
			if err != nil {
				return err
			}
			list = append(list, convertFarm(id, fm))
		}
		return nil
	}); err != nil {
		return err
	}
	return utils.WriteJSON(w, list)
}

func (f *Farms) handleGetFarm(w http.ResponseWriter, req *http.Request) error {
	id, err := utils.Uint64(req, "id")
	if err != nil {
		return err
	}
	var res *Farm
	if err := f.rt.View(func(e *farm.Engine) error {
		fm, err := e.GetFarm(id)
		if err != nil {
			return err
		}
		res = convertFarm(id, fm)
		return nil
	}); err != nil {
		return viewError(err)
	}
	return utils.WriteJSON(w, res)
}

// handleGetPosition returns a position and the reward a harvest would settle
// at ?time, which defaults to the time of the last call.
func (f *Farms) handleGetPosition(w http.ResponseWriter, req *http.Request) error {
	id, err := utils.Uint64(req, "id")
	if err != nil {
		return err
	}
	owner, err := utils.Address(req, "owner")
	if err != nil {
		return err
	}
	at, err := utils.QueryUint64(req, "time", f.rt.Time())
	if err != nil {
		return err
	}

	var res *Position
	if err := f.rt.View(func(e *farm.Engine) error {
		p, err := e.GetPosition(id, owner)
		if err != nil {
			return err
		}
		pending, err := e.PendingReward(id, owner, at)
		if err != nil {
			return err
		}
		res = convertPosition(id, owner, p)
		res.Pending = pending.String()
		res.PendingAt = at
		return nil
	}); err != nil {
		return viewError(err)
	}
	return utils.WriteJSON(w, res)
}

func (f *Farms) handleBalanceOf(w http.ResponseWriter, req *http.Request) error {
	var body []BalanceRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	requests := make([]farm.BalanceRequest, 0, len(body))
	for i, r := range body {
		owner, err := acre.ResolveAddress(r.Owner)
		if err != nil {
			return utils.BadRequest(errors.WithMessagef(err, "requests[%d].owner", i))
		}
		requests = append(requests, farm.BalanceRequest{FarmID: r.FarmID, Owner: owner, TokenID: r.TokenID})
	}

	balances := make([]string, 0, len(requests))
	if err := f.rt.View(func(e *farm.Engine) error {
		res, err := e.BalanceOf(requests)
		if err != nil {
			return err
		}
		for _, b := range res {
			balances = append(balances, b.String())
		}
		return nil
	}); err != nil {
		return viewError(err)
	}
	return utils.WriteJSON(w, balances)
}

func (f *Farms) handleGetCandidate(w http.ResponseWriter, req *http.Request) error {
	addr, err := utils.Address(req, "address")
	if err != nil {
		return err
	}
	res := &Candidate{Address: addr}
	if err := f.rt.View(func(e *farm.Engine) error {
		weight, err := e.CandidateWeight(addr)
		if err != nil {
			return err
		}
		res.Weight = weight.String()
		res.Banned, err = e.IsBanned(addr)
		return err
	}); err != nil {
		return err
	}
	return utils.WriteJSON(w, res)
}

func (f *Farms) handleGetDelegate(w http.ResponseWriter, _ *http.Request) error {
	var res Delegate
	if err := f.rt.View(func(e *farm.Engine) (err error) {
		res.Current, res.Next, err = e.Delegate()
		return
	}); err != nil {
		return err
	}
	return utils.WriteJSON(w, &res)
}

func (f *Farms) handleGetAdmin(w http.ResponseWriter, _ *http.Request) error {
	var res Admin
	if err := f.rt.View(func(e *farm.Engine) (err error) {
		if res.Admin, err = e.Admin(); err != nil {
			return
		}
		if res.PendingAdmin, err = e.PendingAdmin(); err != nil {
			return
		}
		res.Burner, err = e.Burner()
		return
	}); err != nil {
		return err
	}
	return utils.WriteJSON(w, &res)
}

func (f *Farms) handleIsOperator(w http.ResponseWriter, req *http.Request) error {
	owner, err := utils.Address(req, "owner")
	if err != nil {
		return err
	}
	operator, err := utils.Address(req, "operator")
	if err != nil {
		return err
	}
	var ok bool
	if err := f.rt.View(func(e *farm.Engine) (err error) {
		ok, err = e.IsOperator(owner, operator)
		return
	}); err != nil {
		return err
	}
	return utils.WriteJSON(w, utils.M{"operator": ok})
}

func (f *Farms) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/engine").
		Methods(http.MethodGet).
		Name("GET /engine").
		HandlerFunc(utils.WrapHandlerFunc(f.handleGetEngine))
	sub.Path("/engine/admin").
		Methods(http.MethodGet).
		Name("GET /engine/admin").
		HandlerFunc(utils.WrapHandlerFunc(f.handleGetAdmin))
	sub.Path("/engine/delegate").
		Methods(http.MethodGet).
		Name("GET /engine/delegate").
		HandlerFunc(utils.WrapHandlerFunc(f.handleGetDelegate))
	sub.Path("/candidates/{address}").
		Methods(http.MethodGet).
		Name("GET /candidates/{address}").
		HandlerFunc(utils.WrapHandlerFunc(f.handleGetCandidate))
	sub.Path("/operators/{owner}/{operator}").
		Methods(http.MethodGet).
		Name("GET /operators/{owner}/{operator}").
		HandlerFunc(utils.WrapHandlerFunc(f.handleIsOperator))
	sub.Path("/farms").
		Methods(http.MethodGet).
		Name("GET /farms").
		HandlerFunc(utils.WrapHandlerFunc(f.handleGetFarms))
	sub.Path("/farms/balances").
		Methods(http.MethodPost).
		Name("POST /farms/balances").
		HandlerFunc(utils.WrapHandlerFunc(f.handleBalanceOf))
	sub.Path("/farms/{id:[0-9]+}").
		Methods(http.MethodGet).
		Name("GET /farms/{id}").
		HandlerFunc(utils.WrapHandlerFunc(f.handleGetFarm))
	sub.Path("/farms/{id:[0-9]+}/positions/{owner}").
		Methods(http.MethodGet).
		Name("GET /farms/{id}/positions/{owner}").
		HandlerFunc(utils.WrapHandlerFunc(f.handleGetPosition))
}
