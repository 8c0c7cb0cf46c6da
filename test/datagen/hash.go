// Copyright (c) 2025 The Acreage developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package datagen

import (
	"crypto/rand"

	"github.com/acreage-labs/acreage/acre"
)

func RandomHash() acre.Bytes32 {
	var b32 acre.Bytes32

	rand.Read(b32[:])
	return b32
}

func RandAddress() acre.Address {
	var addr acre.Address

	rand.Read(addr[:])
	return addr
}

// RandAddresses returns n distinct random addresses.
func RandAddresses(n int) []acre.Address {
	seen := make(map[acre.Address]struct{}, n)
	addrs := make([]acre.Address, 0, n)
	for len(addrs) < n {
		addr := RandAddress()
		if _, ok := seen[addr]; ok {
			continue
		}
		seen[addr] = struct{}{}
		addrs = append(addrs, addr)
	}
	return addrs
}

// RandAsset returns a random asset, fungible unless withTokenID is set.
func RandAsset(withTokenID bool) acre.Asset {
	asset := acre.Asset{Contract: RandAddress()}
	if withTokenID {
		asset.TokenID = uint64(RandIntN(1 << 16))
	}
	return asset
}
