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

// Package types holds the records the ledger persists. Every record
// is stored RLP encoded, amounts of value are big integers in base
// units with 18 decimals.
package types

import (
	"math/big"
)

// NativeAccount holds the native value an identity has inside the ledger.
type NativeAccount struct {
	AccountID string
	Balance   *big.Int
}

// GoldAccount holds the gold currency balance of an identity.
type GoldAccount struct {
	AccountID string
	Balance   *big.Int
}

// Allowance is the amount of gold Spender may debit from Owner.
type Allowance struct {
	Owner   string
	Spender string
	Amount  *big.Int
}

// Amount is a named singleton value such as a supply, a reserve
// or a fee pool.
type Amount struct {
	Name  string
	Value *big.Int
}

// Counter is a named monotonically increasing number.
type Counter struct {
	Name  string
	Value uint64
}

// PackBalance is the quantity of a pack asset held by Owner.
type PackBalance struct {
	Owner   string
	AssetID uint64
	Amount  uint64
}

// PackInfo carries the total supply and the canonical metadata
// pointer of a pack asset id.
type PackInfo struct {
	AssetID uint64
	Supply  uint64
	URI     string
}

// OperatorApproval records whether Operator may move every asset
// of Owner.
type OperatorApproval struct {
	Owner    string
	Operator string
	Approved bool
}

// Relic is a one-of-a-kind asset. Approved is the single account
// allowed to transfer it besides the owner, empty when unset.
type Relic struct {
	AssetID  uint64
	Owner    string
	URI      string
	Approved string
}

// PackListing is a standing offer to sell Amount units at UnitPrice each.
type PackListing struct {
	Seller    string
	AssetID   uint64
	Amount    uint64
	UnitPrice *big.Int
	Active    bool
}

// RelicListing is a standing offer to sell one relic at Price.
type RelicListing struct {
	AssetID uint64
	Seller  string
	Price   *big.Int
	Active  bool
}

// RoleMembers lists the accounts holding Role.
type RoleMembers struct {
	Role    string
	Members []string
}
