// Copyright 2026 The go-marketledger Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package util

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

// Decimals is the number of fractional digits of native value and gold.
const Decimals = 18

var (
	ErrNegativeAmount   = errors.New("amount is negative")
	ErrFractionalAmount = errors.New("amount has more than 18 decimals")
)

// Zero returns a fresh zero big integer.
func Zero() *big.Int {
	return new(big.Int)
}

// Copy returns a copy of x, treating nil as zero.
func Copy(x *big.Int) *big.Int {
	if x == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(x)
}

// IsPositive reports whether x is strictly greater than zero.
func IsPositive(x *big.Int) bool {
	return x != nil && x.Sign() > 0
}

// MulDiv computes x * y / z truncating toward zero.
func MulDiv(x, y, z *big.Int) *big.Int {
	p := new(big.Int).Mul(x, y)
	return p.Quo(p, z)
}

// MulUint64 computes x * n.
func MulUint64(x *big.Int, n uint64) *big.Int {
	return new(big.Int).Mul(x, new(big.Int).SetUint64(n))
}

// Exp10 returns 10^n.
func Exp10(n int64) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(n), nil)
}

// ParseUnits parses a decimal string such as "0.00058" into its base
// unit integer with 18 decimals.
func ParseUnits(s string) (*big.Int, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, fmt.Errorf("parse amount %q failed: %v", s, err)
	}
	if d.IsNegative() {
		return nil, ErrNegativeAmount
	}
	shifted := d.Shift(Decimals)
	if !shifted.Equal(shifted.Truncate(0)) {
		return nil, ErrFractionalAmount
	}
	return shifted.BigInt(), nil
}

// FormatUnits renders a base unit integer as a decimal string.
func FormatUnits(x *big.Int) string {
	if x == nil {
		return "0"
	}
	return decimal.NewFromBigInt(x, -Decimals).String()
}
