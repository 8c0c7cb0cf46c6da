// Copyright (c) 2025 The Acreage developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis

import (
	"github.com/acreage-labs/acreage/acre"
)

// DevAccounts returns the funded accounts of the dev genesis.
func DevAccounts() []acre.Address {
	return []acre.Address{
		acre.NamedAddress("alice"),
		acre.NamedAddress("bob"),
		acre.NamedAddress("carol"),
		acre.NamedAddress("dave"),
	}
}

// DevConfig returns the config of the dev genesis: a q_farm engine with one
// lp farm and four funded accounts.
func DevConfig() *CustomGenesis {
	lp := Asset{Contract: "lp-token"}
	balances := make([]Balance, 0, len(DevAccounts()))
	for _, name := range []string{"alice", "bob", "carol", "dave"} {
		balances = append(balances, Balance{Owner: name, Asset: lp, Amount: "1000000"})
	}
	return &CustomGenesis{
		Name:            "devnet",
		Variant:         "q_farm",
		Admin:           "admin",
		Engine:          "engine",
		GovernanceAsset: &Asset{Contract: "gov-token"},
		Balances:        balances,
		Farms: []Farm{{
			Staked:          lp,
			RewardPerSecond: "10",
			Timelock:        100,
			HarvestFee:      "0.005",
			WithdrawalFee:   "0.005",
		}},
	}
}

// NewDevnet create the dev genesis.
func NewDevnet() *Genesis {
	gen, err := NewCustom(DevConfig())
	if err != nil {
		panic(err)
	}
	return gen
}
