// Copyright (c) 2025 The Acreage developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package token

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acreage-labs/acreage/acre"
	"github.com/acreage-labs/acreage/lvldb"
	"github.com/acreage-labs/acreage/state"
	"github.com/acreage-labs/acreage/test/datagen"
)

func newToken(t *testing.T) *Token {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return New(state.New(db, nil))
}

func TestMintAndTransfer(t *testing.T) {
	tk := newToken(t)
	asset := acre.Asset{Contract: acre.NamedAddress("lp"), TokenID: 0}
	alice, bob := acre.NamedAddress("alice"), acre.NamedAddress("bob")

	require.NoError(t, tk.Mint(asset, alice, big.NewInt(100)))
	require.NoError(t, tk.Transfer(asset, alice, bob, big.NewInt(40)))
	require.NoError(t, tk.Transfer(asset, alice, bob, big.NewInt(0)))

	bal, err := tk.BalanceOf(asset, alice)
	require.NoError(t, err)
	assert.Equal(t, int64(60), bal.Int64())

	bal, err = tk.BalanceOf(asset, bob)
	require.NoError(t, err)
	assert.Equal(t, int64(40), bal.Int64())

	supply, err := tk.TotalSupply(asset)
	require.NoError(t, err)
	assert.Equal(t, int64(100), supply.Int64())

	other := acre.Asset{Contract: asset.Contract, TokenID: 1}
	bal, err = tk.BalanceOf(other, alice)
	require.NoError(t, err)
	assert.Equal(t, int64(0), bal.Int64())
}

func TestInsufficientBalance(t *testing.T) {
	tk := newToken(t)
	asset := datagen.RandAsset(true)
	alice, bob := datagen.RandAddress(), datagen.RandAddress()

	require.NoError(t, tk.Mint(asset, alice, big.NewInt(10)))
	err := tk.Transfer(asset, alice, bob, big.NewInt(11))
	assert.ErrorIs(t, err, ErrInsufficientBalance)

	assert.Error(t, tk.Transfer(asset, alice, bob, big.NewInt(-1)))
}
