// Copyright (c) 2025 The Acreage developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package token is a multi-asset balance ledger kept in state.
package token

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/acreage-labs/acreage/acre"
	"github.com/acreage-labs/acreage/builtin/storage"
	"github.com/acreage-labs/acreage/log"
	"github.com/acreage-labs/acreage/state"
)

var (
	logger = log.WithContext("pkg", "token")

	slotBalances = storage.Slot("balances")

	ErrInsufficientBalance = errors.New("insufficient balance")
)

// Address is the account the ledger stores its balances under.
var Address = acre.NamedAddress("token")

// Token keeps balances per (asset, owner). Transfers from acre.MintSource mint.
type Token struct {
	sctx     *storage.Context
	balances *storage.Mapping[storage.PairKey, *big.Int]
}

func New(st *state.State) *Token {
	sctx := storage.NewContext(Address, st)
	return &Token{
		sctx:     sctx,
		balances: storage.NewMapping[storage.PairKey, *big.Int](sctx, slotBalances),
	}
}

func (t *Token) supply(asset acre.Asset) *storage.Uint256 {
	return storage.NewUint256(t.sctx, acre.Blake2b(asset.Bytes(), []byte("supply")))
}

func (t *Token) BalanceOf(asset acre.Asset, owner acre.Address) (*big.Int, error) {
	b, err := t.balances.Get(storage.Pair(asset, owner))
	if err != nil {
		return nil, errors.Wrap(err, "failed to get balance")
	}
	if b == nil {
		return new(big.Int), nil
	}
	return b, nil
}

func (t *Token) TotalSupply(asset acre.Asset) (*big.Int, error) {
	return t.supply(asset).Get()
}

// Transfer moves amount of asset. Zero amounts are accepted.
func (t *Token) Transfer(asset acre.Asset, from, to acre.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return errors.Errorf("invalid amount %v", amount)
	}
	if from == acre.MintSource {
		if err := t.supply(asset).Add(amount); err != nil {
			return errors.Wrap(err, "failed to mint")
		}
	} else {
		bal, err := t.BalanceOf(asset, from)
		if err != nil {
			return err
		}
		if bal.Cmp(amount) < 0 {
			return errors.WithMessagef(ErrInsufficientBalance, "%v has %v of %v, needs %v", from, bal, asset, amount)
		}
		if err := t.balances.Set(storage.Pair(asset, from), new(big.Int).Sub(bal, amount)); err != nil {
			return err
		}
	}

	bal, err := t.BalanceOf(asset, to)
	if err != nil {
		return err
	}
	if err := t.balances.Set(storage.Pair(asset, to), new(big.Int).Add(bal, amount)); err != nil {
		return err
	}
	logger.Trace("transfer", "asset", asset, "from", from, "to", to, "amount", amount)
	return nil
}

// Mint credits amount of asset to owner.
func (t *Token) Mint(asset acre.Asset, owner acre.Address, amount *big.Int) error {
	return t.Transfer(asset, acre.MintSource, owner, amount)
}
