// Copyright (c) 2025 The Acreage developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package storage

import (
	"encoding/binary"

	"github.com/acreage-labs/acreage/acre"
)

type Key interface {
	Bytes() []byte
}

// Uint64Key is a big endian encoded integer key.
type Uint64Key uint64

func (k Uint64Key) Bytes() []byte {
	return binary.BigEndian.AppendUint64(nil, uint64(k))
}

// PairKey addresses a nested mapping entry, m[a][b].
type PairKey struct {
	A Key
	B Key
}

func Pair(a, b Key) PairKey {
	return PairKey{a, b}
}

func (k PairKey) Bytes() []byte {
	return acre.Blake2b(k.A.Bytes(), k.B.Bytes()).Bytes()
}

// Slot derives a storage position from a human readable name.
func Slot(name string) acre.Bytes32 {
	return acre.BytesToBytes32([]byte(name))
}
