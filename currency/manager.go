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

// Package currency is the gold ledger: a fungible in-ledger currency
// bought with native value at a fixed rate.
package currency

import (
	"fmt"
	"math/big"

	"github.com/ultiledger/go-marketledger/db"
	"github.com/ultiledger/go-marketledger/log"
	"github.com/ultiledger/go-marketledger/types"
	"github.com/ultiledger/go-marketledger/util"
)

const (
	Name     = "EAI Gold"
	Symbol   = "GOLD"
	Decimals = util.Decimals
)

var (
	// Scale is one whole unit of gold in base units.
	Scale = util.Exp10(Decimals)
	// Rate is the native value, in base units, one whole unit of gold costs.
	Rate = big.NewInt(580000000000000)
)

const (
	supplyKey  = "supply"
	reserveKey = "reserve"
)

// UnitsFor converts native value to gold base units, truncating.
func UnitsFor(value *big.Int) *big.Int {
	return util.MulDiv(value, Scale, Rate)
}

// Manager stores gold balances, allowances, the total supply and the
// native reserve backing the supply.
type Manager struct {
	database db.Database
	bucket   string
}

func NewManager(d db.Database) *Manager {
	m := &Manager{database: d, bucket: "GOLD"}
	if err := m.database.NewBucket(m.bucket); err != nil {
		log.Fatalf("create db bucket %s failed: %v", m.bucket, err)
	}
	return m
}

func accountKey(accountID string) []byte {
	return []byte("acc/" + accountID)
}

func allowanceKey(owner, spender string) []byte {
	return types.PairKey("allow", owner, spender)
}

// GetAccount loads the gold account, zero valued if it never held gold.
func (m *Manager) GetAccount(getter db.Getter, accountID string) (*types.GoldAccount, error) {
	if accountID == "" {
		return nil, types.ErrInvalidAccountID
	}
	b, err := getter.Get(m.bucket, accountKey(accountID))
	if err != nil {
		return nil, fmt.Errorf("get gold account %s failed: %v", accountID, err)
	}
	if b == nil {
		return &types.GoldAccount{AccountID: accountID, Balance: util.Zero()}, nil
	}
	acc, err := types.DecodeGoldAccount(b)
	if err != nil {
		return nil, fmt.Errorf("decode gold account %s failed: %v", accountID, err)
	}
	return acc, nil
}

func (m *Manager) SaveAccount(putter db.Putter, acc *types.GoldAccount) error {
	b, err := types.Encode(acc)
	if err != nil {
		return fmt.Errorf("encode gold account failed: %v", err)
	}
	if err := putter.Put(m.bucket, accountKey(acc.AccountID), b); err != nil {
		return fmt.Errorf("save gold account failed: %v", err)
	}
	return nil
}

// BalanceOf returns the gold balance of accountID.
func (m *Manager) BalanceOf(getter db.Getter, accountID string) (*big.Int, error) {
	acc, err := m.GetAccount(getter, accountID)
	if err != nil {
		return nil, err
	}
	return util.Copy(acc.Balance), nil
}

// Credit adds amount to the balance of accountID.
func (m *Manager) Credit(dt db.Tx, accountID string, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return types.ErrInvalidAmount
	}
	acc, err := m.GetAccount(dt, accountID)
	if err != nil {
		return err
	}
	acc.Balance = new(big.Int).Add(acc.Balance, amount)
	return m.SaveAccount(dt, acc)
}

// Debit subtracts amount from the balance of accountID.
func (m *Manager) Debit(dt db.Tx, accountID string, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return types.ErrInvalidAmount
	}
	acc, err := m.GetAccount(dt, accountID)
	if err != nil {
		return err
	}
	if acc.Balance.Cmp(amount) < 0 {
		return fmt.Errorf("gold account %s: %w", accountID, types.ErrInsufficientBalance)
	}
	acc.Balance = new(big.Int).Sub(acc.Balance, amount)
	return m.SaveAccount(dt, acc)
}

// Mint credits freshly created units to accountID and grows the supply.
func (m *Manager) Mint(dt db.Tx, accountID string, units *big.Int) error {
	if err := m.Credit(dt, accountID, units); err != nil {
		return err
	}
	return m.addAmount(dt, supplyKey, units)
}

// Transfer moves amount from one account to another.
func (m *Manager) Transfer(dt db.Tx, from, to string, amount *big.Int) error {
	if to == "" {
		return types.ErrInvalidAccountID
	}
	if err := m.Debit(dt, from, amount); err != nil {
		return err
	}
	return m.Credit(dt, to, amount)
}

// Allowance returns the amount spender may still debit from owner.
func (m *Manager) Allowance(getter db.Getter, owner, spender string) (*big.Int, error) {
	b, err := getter.Get(m.bucket, allowanceKey(owner, spender))
	if err != nil {
		return nil, fmt.Errorf("get allowance failed: %v", err)
	}
	if b == nil {
		return util.Zero(), nil
	}
	a, err := types.DecodeAllowance(b)
	if err != nil {
		return nil, fmt.Errorf("decode allowance failed: %v", err)
	}
	return util.Copy(a.Amount), nil
}

// Approve overwrites the allowance of spender over owner's balance.
func (m *Manager) Approve(dt db.Tx, owner, spender string, amount *big.Int) error {
	if owner == "" || spender == "" {
		return types.ErrInvalidAccountID
	}
	if amount == nil || amount.Sign() < 0 {
		return types.ErrInvalidAmount
	}
	a := &types.Allowance{Owner: owner, Spender: spender, Amount: util.Copy(amount)}
	b, err := types.Encode(a)
	if err != nil {
		return fmt.Errorf("encode allowance failed: %v", err)
	}
	if err := dt.Put(m.bucket, allowanceKey(owner, spender), b); err != nil {
		return fmt.Errorf("save allowance failed: %v", err)
	}
	return nil
}

// TransferFrom spends the allowance of spender to move amount from
// one account to another. The allowance shrinks by exactly amount.
func (m *Manager) TransferFrom(dt db.Tx, spender, from, to string, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return types.ErrInvalidAmount
	}
	allowed, err := m.Allowance(dt, from, spender)
	if err != nil {
		return err
	}
	if allowed.Cmp(amount) < 0 {
		return fmt.Errorf("%s allowed %s of %s, needs %s: %w",
			spender, allowed, from, amount, types.ErrInsufficientAllowance)
	}
	if err := m.Approve(dt, from, spender, new(big.Int).Sub(allowed, amount)); err != nil {
		return err
	}
	return m.Transfer(dt, from, to, amount)
}

// TotalSupply returns the units of gold in existence.
func (m *Manager) TotalSupply(getter db.Getter) (*big.Int, error) {
	return m.getAmount(getter, supplyKey)
}

// Reserve returns the native value held against the supply.
func (m *Manager) Reserve(getter db.Getter) (*big.Int, error) {
	return m.getAmount(getter, reserveKey)
}

// AddReserve grows the native reserve by value.
func (m *Manager) AddReserve(dt db.Tx, value *big.Int) error {
	return m.addAmount(dt, reserveKey, value)
}

// DrainReserve zeroes the reserve, persists the zero and returns what
// it held. Callers pay the returned amount out only afterwards.
func (m *Manager) DrainReserve(dt db.Tx) (*big.Int, error) {
	reserve, err := m.getAmount(dt, reserveKey)
	if err != nil {
		return nil, err
	}
	if reserve.Sign() == 0 {
		return nil, fmt.Errorf("native reserve is empty: %w", types.ErrNothingToWithdraw)
	}
	if err := m.putAmount(dt, reserveKey, util.Zero()); err != nil {
		return nil, err
	}
	return reserve, nil
}

func (m *Manager) getAmount(getter db.Getter, name string) (*big.Int, error) {
	b, err := getter.Get(m.bucket, []byte(name))
	if err != nil {
		return nil, fmt.Errorf("get %s failed: %v", name, err)
	}
	if b == nil {
		return util.Zero(), nil
	}
	a, err := types.DecodeAmount(b)
	if err != nil {
		return nil, fmt.Errorf("decode %s failed: %v", name, err)
	}
	return util.Copy(a.Value), nil
}

func (m *Manager) putAmount(putter db.Putter, name string, v *big.Int) error {
	b, err := types.Encode(&types.Amount{Name: name, Value: v})
	if err != nil {
		return fmt.Errorf("encode %s failed: %v", name, err)
	}
	if err := putter.Put(m.bucket, []byte(name), b); err != nil {
		return fmt.Errorf("save %s failed: %v", name, err)
	}
	return nil
}

func (m *Manager) addAmount(dt db.Tx, name string, delta *big.Int) error {
	v, err := m.getAmount(dt, name)
	if err != nil {
		return err
	}
	return m.putAmount(dt, name, v.Add(v, delta))
}
