// Copyright (c) 2025 The Acreage developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package acre

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAddress(t *testing.T) {
	addr, err := ParseAddress("0x000000000000000000000000000000000000dead")
	require.NoError(t, err)
	assert.Equal(t, BurnAddress, *addr)

	_, err = ParseAddress("0x1234")
	assert.ErrorContains(t, err, "invalid length")

	_, err = ParseAddress("1x000000000000000000000000000000000000dead")
	assert.ErrorContains(t, err, "invalid prefix")
}

func TestResolveAddress(t *testing.T) {
	alice, err := ResolveAddress("alice")
	require.NoError(t, err)
	assert.Equal(t, NamedAddress("alice"), alice)
	assert.NotEqual(t, NamedAddress("bob"), alice)

	hex, err := ResolveAddress(alice.String())
	require.NoError(t, err)
	assert.Equal(t, alice, hex)

	_, err = ResolveAddress("")
	assert.Error(t, err)
}

func TestAddressJSON(t *testing.T) {
	type wrapper struct {
		Addr Address `json:"addr"`
	}
	in := wrapper{Addr: NamedAddress("carol")}
	data, err := json.Marshal(in)
	require.NoError(t, err)

	var out wrapper
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, in, out)
}

func TestBytes32(t *testing.T) {
	b := Uint64ToBytes32(258)
	assert.Equal(t, byte(1), b[30])
	assert.Equal(t, byte(2), b[31])
	assert.False(t, b.IsZero())

	parsed, err := ParseBytes32(b.String())
	require.NoError(t, err)
	assert.Equal(t, b, parsed)

	assert.Equal(t, Blake2b([]byte("a"), []byte("b")), Blake2b([]byte("ab")))
}
