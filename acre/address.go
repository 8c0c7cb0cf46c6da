// Copyright (c) 2025 The Acreage developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package acre

import (
	"encoding/hex"
	"errors"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

const (
	// AddressLength length of address in bytes.
	AddressLength = common.AddressLength
)

var (
	// BurnAddress is the default sink for burnt rewards.
	BurnAddress = MustParseAddress("0x000000000000000000000000000000000000dead")
	// MintSource is the source address of minted transfers.
	MintSource = Address{}
)

// Address address of account.
type Address common.Address

// String implements the stringer interface
func (a Address) String() string {
	return "0x" + hex.EncodeToString(a[:])
}

// Bytes returns byte slice form of address.
func (a Address) Bytes() []byte {
	return a[:]
}

// IsZero returns if address is all zero bytes.
func (a Address) IsZero() bool {
	return a == Address{}
}

// MarshalText implements encoding.TextMarshaler.
func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Address) UnmarshalText(text []byte) error {
	parsed, err := ParseAddress(string(text))
	if err != nil {
		return err
	}
	*a = *parsed
	return nil
}

// ParseAddress convert string presented address into Address type.
func ParseAddress(s string) (*Address, error) {
	if len(s) == AddressLength*2 {
	} else if len(s) == AddressLength*2+2 {
		if strings.ToLower(s[:2]) != "0x" {
			return nil, errors.New("invalid prefix")
		}
		s = s[2:]
	} else {
		return nil, errors.New("invalid length")
	}

	var addr Address
	_, err := hex.Decode(addr[:], []byte(s))
	if err != nil {
		return nil, err
	}
	return &addr, nil
}

// MustParseAddress convert string presented address into Address type, panic on error.
func MustParseAddress(s string) Address {
	addr, err := ParseAddress(s)
	if err != nil {
		panic(err)
	}
	return *addr
}

// BytesToAddress converts bytes slice into address.
// If b is larger than address length, b will be cropped (from the left).
// If b is smaller than address length, b will be extended (from the left).
func BytesToAddress(b []byte) Address {
	return Address(common.BytesToAddress(b))
}

// NamedAddress derives a deterministic address from a human readable name.
// It's used for well-known contracts and for aliases in scenario files.
func NamedAddress(name string) Address {
	return BytesToAddress(Keccak256([]byte(name)).Bytes()[12:])
}

// ResolveAddress parses s as a hex address when it carries the 0x prefix,
// otherwise treats it as a name for NamedAddress.
func ResolveAddress(s string) (Address, error) {
	if strings.HasPrefix(strings.ToLower(s), "0x") {
		addr, err := ParseAddress(s)
		if err != nil {
			return Address{}, err
		}
		return *addr, nil
	}
	if s == "" {
		return Address{}, errors.New("empty address")
	}
	return NamedAddress(s), nil
}
