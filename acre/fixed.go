// Copyright (c) 2025 The Acreage developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package acre

import (
	"fmt"
	"math/big"
	"strings"
)

var (
	// Scale is the fixed-point unit shared by reward rates, the reward-per-share
	// accumulator and fee fractions.
	Scale = big.NewInt(1e18)

	big0 = big.NewInt(0)
	big1 = big.NewInt(1)
)

// Rounding selects how a fixed-point division treats its remainder.
type Rounding uint8

const (
	// RoundDown truncates towards zero.
	RoundDown Rounding = iota
	// RoundUp rounds any non-zero remainder up.
	RoundUp
)

func (r Rounding) String() string {
	switch r {
	case RoundDown:
		return "floor"
	case RoundUp:
		return "ceil"
	default:
		return fmt.Sprintf("rounding(%d)", uint8(r))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (r Rounding) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *Rounding) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "floor", "down":
		*r = RoundDown
	case "ceil", "up":
		*r = RoundUp
	default:
		return fmt.Errorf("unknown rounding %q", string(text))
	}
	return nil
}

// QuoRem returns floor(x/d) and the discarded residue. d must be positive.
func QuoRem(x, d *big.Int) (*big.Int, *big.Int) {
	return new(big.Int).QuoRem(x, d, new(big.Int))
}

// MulDiv returns x*y/d rounded by r. x and y must be non-negative and d positive.
func MulDiv(x, y, d *big.Int, r Rounding) *big.Int {
	q, rem := QuoRem(new(big.Int).Mul(x, y), d)
	if r == RoundUp && rem.Sign() > 0 {
		q.Add(q, big1)
	}
	return q
}

// MulFraction returns amount scaled by a fraction expressed in Scale units.
func MulFraction(amount, fraction *big.Int, r Rounding) *big.Int {
	if fraction == nil || fraction.Sign() == 0 || amount.Sign() == 0 {
		return new(big.Int)
	}
	return MulDiv(amount, fraction, Scale, r)
}

// Unscale converts a Scale denominated value into whole units, returning the residue.
func Unscale(scaled *big.Int) (units *big.Int, residue *big.Int) {
	return QuoRem(scaled, Scale)
}

// ToScaled multiplies whole units by Scale.
func ToScaled(units *big.Int) *big.Int {
	return new(big.Int).Mul(units, Scale)
}

// ParseScaled parses a non-negative decimal like "2.5" into Scale units.
func ParseScaled(s string) (*big.Int, error) {
	rat, ok := new(big.Rat).SetString(strings.TrimSpace(s))
	if !ok {
		return nil, fmt.Errorf("invalid decimal %q", s)
	}
	if rat.Sign() < 0 {
		return nil, fmt.Errorf("negative decimal %q", s)
	}
	rat.Mul(rat, new(big.Rat).SetInt(Scale))
	if !rat.IsInt() {
		return nil, fmt.Errorf("decimal %q exceeds precision", s)
	}
	return new(big.Int).Set(rat.Num()), nil
}

// ParseFraction parses a decimal in [0, 1] like "0.005" into Scale units.
func ParseFraction(s string) (*big.Int, error) {
	v, err := ParseScaled(s)
	if err != nil {
		return nil, err
	}
	if !IsFraction(v) {
		return nil, fmt.Errorf("fraction %q out of range [0, 1]", s)
	}
	return v, nil
}

// ParseAmount parses a non-negative integer amount of whole units.
func ParseAmount(s string) (*big.Int, error) {
	v, ok := new(big.Int).SetString(strings.TrimSpace(s), 10)
	if !ok {
		return nil, fmt.Errorf("invalid amount %q", s)
	}
	if v.Sign() < 0 {
		return nil, fmt.Errorf("negative amount %q", s)
	}
	return v, nil
}

// IsFraction reports whether v lies in [0, Scale].
func IsFraction(v *big.Int) bool {
	return v != nil && v.Cmp(big0) >= 0 && v.Cmp(Scale) <= 0
}

// FormatScaled renders a non-negative Scale denominated value as a decimal
// without trailing zeros, the inverse of ParseScaled.
func FormatScaled(v *big.Int) string {
	if v == nil {
		return "0"
	}
	units, residue := Unscale(v)
	if residue.Sign() == 0 {
		return units.String()
	}
	frac := residue.String()
	frac = strings.Repeat("0", 18-len(frac)) + frac
	return units.String() + "." + strings.TrimRight(frac, "0")
}
