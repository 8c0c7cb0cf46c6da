// Copyright (c) 2025 The Acreage developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package storage

import (
	"math/big"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/acreage-labs/acreage/acre"
)

var ErrOverflow = errors.New("uint256 overflow")

// Uint256 is an unsigned 256-bit counter held in a single slot.
type Uint256 struct {
	context *Context
	pos     acre.Bytes32
}

func NewUint256(context *Context, pos acre.Bytes32) *Uint256 {
	return &Uint256{context: context, pos: pos}
}

func (u *Uint256) Get() (*big.Int, error) {
	v, err := u.get()
	if err != nil {
		return nil, err
	}
	return v.ToBig(), nil
}

func (u *Uint256) get() (*uint256.Int, error) {
	storage, err := u.context.state.GetStorage(u.context.address, u.pos)
	if err != nil {
		return nil, err
	}
	return new(uint256.Int).SetBytes32(storage.Bytes()), nil
}

func (u *Uint256) Set(value *big.Int) error {
	v, overflow := uint256.FromBig(value)
	if overflow || value.Sign() < 0 {
		return ErrOverflow
	}
	u.context.state.SetStorage(u.context.address, u.pos, acre.Bytes32(v.Bytes32()))
	return nil
}

func (u *Uint256) Add(delta *big.Int) error {
	return u.apply(delta, func(z, x, y *uint256.Int) bool {
		_, overflow := z.AddOverflow(x, y)
		return overflow
	})
}

func (u *Uint256) Sub(delta *big.Int) error {
	return u.apply(delta, func(z, x, y *uint256.Int) bool {
		_, underflow := z.SubOverflow(x, y)
		return underflow
	})
}

func (u *Uint256) apply(delta *big.Int, op func(z, x, y *uint256.Int) bool) error {
	d, overflow := uint256.FromBig(delta)
	if overflow || delta.Sign() < 0 {
		return ErrOverflow
	}
	cur, err := u.get()
	if err != nil {
		return err
	}
	if op(cur, cur, d) {
		return ErrOverflow
	}
	u.context.state.SetStorage(u.context.address, u.pos, acre.Bytes32(cur.Bytes32()))
	return nil
}
