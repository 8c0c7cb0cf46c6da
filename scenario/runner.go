// Copyright (c) 2025 The Acreage developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package scenario

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/pkg/errors"

	"github.com/acreage-labs/acreage/acre"
	"github.com/acreage-labs/acreage/builtin"
	"github.com/acreage-labs/acreage/genesis"
	"github.com/acreage-labs/acreage/lvldb"
	"github.com/acreage-labs/acreage/runtime"
	"github.com/acreage-labs/acreage/state"
)

// Report is the outcome of a scenario run.
type Report struct {
	Name     string
	Results  []*runtime.Result
	Failures []string

	names names
}

// Passed reports whether every expectation held.
func (r *Report) Passed() bool {
	return len(r.Failures) == 0
}

func (r *Report) failf(format string, args ...any) {
	r.Failures = append(r.Failures, fmt.Sprintf(format, args...))
}

// Trace renders the results, one call per header line followed by its
// transfers and vote events.
func (r *Report) Trace() string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n", r.Name)
	for _, res := range r.Results {
		c := res.Call
		fmt.Fprintf(&b, "#%d t=%d %s %s: %s", res.Seq, c.Time, c.Sender, c.Op, res.Status)
		if res.Error != "" {
			fmt.Fprintf(&b, " (%s)", res.Error)
		}
		b.WriteByte('\n')
		if res.Receipt == nil {
			continue
		}
		if res.Receipt.NewFarmID != nil {
			fmt.Fprintf(&b, "  new farm %d\n", *res.Receipt.NewFarmID)
		}
		for _, tr := range res.Receipt.Transfers {
			fmt.Fprintf(&b, "  %s farm=%d %s %s -> %s %v\n",
				tr.Kind, tr.FarmID, r.names.asset(tr.Asset), r.names.address(tr.From), r.names.address(tr.To), tr.Amount)
		}
		for _, v := range res.Receipt.Votes {
			fmt.Fprintf(&b, "  vote %s %v\n", r.names.address(v.Candidate), v.Weight)
		}
	}
	return b.String()
}

// Run replays s on an in-memory store. Expectation mismatches are collected
// in the report; an error means the scenario itself is malformed.
func Run(s *Scenario) (*Report, error) {
	return RunProgress(s, nil)
}

// RunProgress is Run with a callback invoked after every executed step.
func RunProgress(s *Scenario, progress func(step int)) (*Report, error) {
	cfg := s.genesisConfig()
	gen, err := genesis.NewCustom(cfg)
	if err != nil {
		return nil, errors.WithMessage(err, "genesis")
	}
	db, err := lvldb.NewMem()
	if err != nil {
		return nil, err
	}
	defer db.Close()

	rt, err := runtime.New(db, gen, nil, runtime.Options{ReceiptCacheSize: len(s.Steps) + 1})
	if err != nil {
		return nil, err
	}

	report := &Report{Name: s.Name, names: newNames()}
	report.names.addGenesis(cfg)

	for i := range s.Steps {
		step := &s.Steps[i]
		report.names.addCall(&step.Call)

		res, err := rt.Execute(&step.Call)
		if err != nil {
			return nil, errors.WithMessagef(err, "step %d", i)
		}
		report.Results = append(report.Results, res)

		if step.Expect != "" && step.Expect != res.Status {
			report.failf("step %d: status %s, want %s (%s)", i, res.Status, step.Expect, res.Error)
		}
		if step.Error != "" && step.Error != res.Error {
			report.failf("step %d: error %q, want %q", i, res.Error, step.Error)
		}
		if progress != nil {
			progress(i)
		}
	}

	if err := rt.ViewState(func(st *state.State) error {
		return report.check(s, gen, st)
	}); err != nil {
		return nil, err
	}
	return report, nil
}

func (r *Report) check(s *Scenario, gen *genesis.Genesis, st *state.State) error {
	tokens := builtin.Token.WithState(st)
	engine := builtin.Farm(gen.EngineConfig(), st)

	for _, c := range s.Balances {
		asset, err := c.Asset.Resolve()
		if err != nil {
			return err
		}
		owner, err := acre.ResolveAddress(c.Owner)
		if err != nil {
			return err
		}
		got, err := tokens.BalanceOf(asset, owner)
		if err != nil {
			return err
		}
		r.compare(fmt.Sprintf("balance of %s in %s", c.Owner, r.names.asset(asset)), got, c.Amount)
	}
	for _, c := range s.Positions {
		owner, err := acre.ResolveAddress(c.Owner)
		if err != nil {
			return err
		}
		p, err := engine.GetPosition(c.FarmID, owner)
		if err != nil {
			return err
		}
		r.compare(fmt.Sprintf("stake of %s in farm %d", c.Owner, c.FarmID), p.Staked, c.Staked)
	}
	for _, c := range s.Weights {
		candidate, err := acre.ResolveAddress(c.Candidate)
		if err != nil {
			return err
		}
		got, err := engine.CandidateWeight(candidate)
		if err != nil {
			return err
		}
		r.compare(fmt.Sprintf("weight of %s", c.Candidate), got, c.Weight)
	}
	return nil
}

func (r *Report) compare(what string, got *big.Int, want string) {
	if got.String() != want {
		r.failf("%s: %v, want %s", what, got, want)
	}
}
