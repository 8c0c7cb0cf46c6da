// Copyright (c) 2025 The Acreage developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package datagen

import (
	"math/big"
	mathrand "math/rand/v2"
)

func RandInt() int {
	return mathrand.Int() //#nosec G404
}

func RandIntN(n int) int {
	return mathrand.N(n) //#nosec G404
}

func RandUint64N(n uint64) uint64 {
	return mathrand.N(n) //#nosec G404
}

// RandAmount returns a random amount in [1, max].
func RandAmount(max int64) *big.Int {
	return big.NewInt(mathrand.Int64N(max) + 1) //#nosec G404
}
