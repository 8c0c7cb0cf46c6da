// Copyright (c) 2025 The Acreage developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package acre

import (
	"encoding/binary"
	"fmt"
)

// PositionTokenID is the token id under which farm positions are transferred.
const PositionTokenID uint64 = 0

// Asset identifies a token held in the token ledger: a token contract and a token id.
type Asset struct {
	Contract Address `json:"contract" yaml:"contract"`
	TokenID  uint64  `json:"tokenId" yaml:"tokenId"`
}

// Bytes returns the storage key form of the asset.
func (a Asset) Bytes() []byte {
	b := make([]byte, AddressLength+8)
	copy(b, a.Contract[:])
	binary.BigEndian.PutUint64(b[AddressLength:], a.TokenID)
	return b
}

func (a Asset) String() string {
	return fmt.Sprintf("%v:%d", a.Contract, a.TokenID)
}
