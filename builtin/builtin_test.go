// Copyright (c) 2025 The Acreage developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package builtin

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acreage-labs/acreage/acre"
	"github.com/acreage-labs/acreage/builtin/farm"
	"github.com/acreage-labs/acreage/lvldb"
	"github.com/acreage-labs/acreage/state"
)

func TestFarmBinding(t *testing.T) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	defer db.Close()
	st := state.New(db, nil)

	var (
		admin  = acre.NamedAddress("admin")
		user   = acre.NamedAddress("user")
		baker  = acre.NamedAddress("baker")
		engine = acre.NamedAddress("engine")
		lp     = acre.Asset{Contract: acre.NamedAddress("lp")}
	)
	require.NoError(t, Token.WithState(st).Mint(lp, user, big.NewInt(100)))

	e := Farm(farm.Config{
		Variant:         farm.VariantQ,
		Address:         engine,
		Rounding:        farm.VariantQ.DefaultRounding(),
		GovernanceAsset: acre.Asset{Contract: acre.NamedAddress("gov")},
	}, st)
	require.NoError(t, e.Initialize(admin))

	r, err := e.AddNewFarm(farm.Call{Sender: admin}, farm.FarmParams{Staked: lp})
	require.NoError(t, err)
	_, err = e.Deposit(farm.Call{Sender: user, Now: 1}, *r.NewFarmID, big.NewInt(60), baker, nil)
	require.NoError(t, err)

	bal, err := Token.WithState(st).BalanceOf(lp, engine)
	require.NoError(t, err)
	assert.Equal(t, int64(60), bal.Int64())

	weight, err := Registry.WithState(st).Weight(engine, baker)
	require.NoError(t, err)
	assert.Equal(t, int64(60), weight.Int64())
}
