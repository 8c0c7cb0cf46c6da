// Copyright (c) 2025 The Acreage developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package scenario

import (
	"strconv"
	"strings"

	"github.com/acreage-labs/acreage/acre"
	"github.com/acreage-labs/acreage/call"
	"github.com/acreage-labs/acreage/genesis"
)

// names maps addresses back to the names a scenario used for them.
type names map[acre.Address]string

func newNames() names {
	return names{
		acre.MintSource:  "mint",
		acre.BurnAddress: "burn",
	}
}

func (n names) add(ss ...string) {
	for _, s := range ss {
		if s == "" || strings.HasPrefix(strings.ToLower(s), "0x") {
			continue
		}
		addr := acre.NamedAddress(s)
		if _, ok := n[addr]; !ok {
			n[addr] = s
		}
	}
}

func (n names) addAsset(a *genesis.Asset) {
	if a != nil {
		n.add(a.Contract)
	}
}

func (n names) addGenesis(g *genesis.CustomGenesis) {
	engine := g.Engine
	if engine == "" {
		engine = "engine"
	}
	n.add(g.Admin, engine, g.Burner)
	n.addAsset(g.GovernanceAsset)
	for _, b := range g.Balances {
		n.add(b.Owner)
		n.addAsset(&b.Asset)
	}
	for i := range g.Farms {
		n.addFarm(&g.Farms[i])
	}
}

func (n names) addFarm(f *genesis.Farm) {
	n.addAsset(&f.Staked)
	n.addAsset(f.Reward)
}

func (n names) addCall(c *call.Call) {
	n.add(c.Sender, c.Candidate, c.Referrer, c.Receiver, c.Address)
	if c.Farm != nil {
		n.addFarm(c.Farm)
	}
	for _, b := range c.Bans {
		n.add(b.Candidate)
	}
	for _, o := range c.Operators {
		n.add(o.Owner, o.Operator)
	}
	for _, b := range c.Batches {
		n.add(b.From)
		for _, l := range b.Legs {
			n.add(l.To)
		}
	}
}

func (n names) address(a acre.Address) string {
	if s, ok := n[a]; ok {
		return s
	}
	return a.String()
}

func (n names) asset(a acre.Asset) string {
	return n.address(a.Contract) + "/" + strconv.FormatUint(a.TokenID, 10)
}
