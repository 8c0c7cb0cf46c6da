// Copyright (c) 2025 The Acreage developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package farm

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/stretchr/testify/require"

	"github.com/acreage-labs/acreage/acre"
	"github.com/acreage-labs/acreage/builtin/registry"
	"github.com/acreage-labs/acreage/builtin/token"
	"github.com/acreage-labs/acreage/lvldb"
	"github.com/acreage-labs/acreage/state"
)

var (
	adminAddr  = acre.NamedAddress("admin")
	engineAddr = acre.NamedAddress("engine")
	alice      = acre.NamedAddress("alice")
	bob        = acre.NamedAddress("bob")
	carol      = acre.NamedAddress("carol")
	referrer   = acre.NamedAddress("referrer")
	baker1     = acre.NamedAddress("baker1")
	baker2     = acre.NamedAddress("baker2")
	baker3     = acre.NamedAddress("baker3")

	lpAsset     = acre.Asset{Contract: acre.NamedAddress("lp-token")}
	govAsset    = acre.Asset{Contract: acre.NamedAddress("gov-token")}
	rewardAsset = acre.Asset{Contract: acre.NamedAddress("reward-token"), TokenID: 3}

	users = []acre.Address{alice, bob, carol}
)

type testEnv struct {
	t        *testing.T
	state    *state.State
	engine   *Engine
	tokens   *token.Token
	registry *registry.Registry
}

func newTestEnv(t *testing.T, variant Variant) *testEnv {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	st := state.New(db, nil)
	tokens := token.New(st)
	reg := registry.New(st)
	engine := New(Config{
		Variant:         variant,
		Address:         engineAddr,
		Rounding:        variant.DefaultRounding(),
		GovernanceAsset: govAsset,
	}, st, tokens, reg.Voter(engineAddr))
	require.NoError(t, engine.Initialize(adminAddr))

	for _, u := range users {
		require.NoError(t, tokens.Mint(lpAsset, u, big.NewInt(1_000_000)))
	}
	require.NoError(t, tokens.Mint(rewardAsset, engineAddr, big.NewInt(1_000_000_000)))

	return &testEnv{t: t, state: st, engine: engine, tokens: tokens, registry: reg}
}

func units(n int64) *big.Int {
	return big.NewInt(n)
}

// perSecond is n whole reward units per second.
func perSecond(n int64) *big.Int {
	return acre.ToScaled(big.NewInt(n))
}

func fraction(s string) *big.Int {
	f, err := acre.ParseFraction(s)
	if err != nil {
		panic(err)
	}
	return f
}

func at(sender acre.Address, now uint64) Call {
	return Call{Sender: sender, Now: now}
}

func (e *testEnv) addFarm(params FarmParams) uint64 {
	if params.Staked == (acre.Asset{}) {
		params.Staked = lpAsset
	}
	if params.Reward == (acre.Asset{}) {
		params.Reward = rewardAsset
	}
	r, err := e.engine.AddNewFarm(at(adminAddr, 0), params)
	require.NoError(e.t, err)
	return *r.NewFarmID
}

func (e *testEnv) deposit(farmID uint64, user acre.Address, amount int64, candidate acre.Address, now uint64) *Receipt {
	r, err := e.engine.Deposit(at(user, now), farmID, units(amount), candidate, nil)
	require.NoError(e.t, err)
	return r
}

func (e *testEnv) withdraw(farmID uint64, user acre.Address, amount int64, now uint64) *Receipt {
	r, err := e.engine.Withdraw(at(user, now), farmID, units(amount), user)
	require.NoError(e.t, err)
	return r
}

func (e *testEnv) harvest(farmID uint64, user acre.Address, now uint64) *Receipt {
	r, err := e.engine.Harvest(at(user, now), farmID, user)
	require.NoError(e.t, err)
	return r
}

func (e *testEnv) farm(id uint64) *farmView {
	f, err := e.engine.GetFarm(id)
	require.NoError(e.t, err)
	return &farmView{f.TotalStaked, f.AccRewardPerShare, f.IdleEmission, f.FeeReserve}
}

type farmView struct {
	total, acc, idle, reserve *big.Int
}

func (e *testEnv) staked(farmID uint64, user acre.Address) int64 {
	p, err := e.engine.GetPosition(farmID, user)
	require.NoError(e.t, err)
	return p.Staked.Int64()
}

func (e *testEnv) balance(asset acre.Asset, owner acre.Address) int64 {
	b, err := e.tokens.BalanceOf(asset, owner)
	require.NoError(e.t, err)
	return b.Int64()
}

// encoded snapshots a farm and the positions of all users in it.
func (e *testEnv) encoded(farmID uint64) []byte {
	f, err := e.engine.GetFarm(farmID)
	require.NoError(e.t, err)
	out, err := rlp.EncodeToBytes(f)
	require.NoError(e.t, err)
	for _, u := range users {
		p, err := e.engine.GetPosition(farmID, u)
		require.NoError(e.t, err)
		b, err := rlp.EncodeToBytes(p)
		require.NoError(e.t, err)
		out = append(out, b...)
	}
	return out
}

// transfersOf flattens a receipt into comparable rows.
func transfersOf(r *Receipt) []transferRow {
	rows := make([]transferRow, 0, len(r.Transfers))
	for _, tr := range r.Transfers {
		rows = append(rows, transferRow{tr.Kind, tr.From, tr.To, tr.Amount.Int64()})
	}
	return rows
}

type transferRow struct {
	Kind   TransferKind
	From   acre.Address
	To     acre.Address
	Amount int64
}

func votesOf(r *Receipt) map[acre.Address]int64 {
	out := make(map[acre.Address]int64)
	for _, v := range r.Votes {
		out[v.Candidate] = v.Weight.Int64()
	}
	return out
}
