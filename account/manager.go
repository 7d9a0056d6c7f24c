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

// Package account keeps the native value every identity holds inside
// the ledger. Native value is what gets attached to conversions and
// native settled purchases, and what withdrawals pay out.
package account

import (
	"fmt"
	"math/big"

	"github.com/ultiledger/go-marketledger/db"
	"github.com/ultiledger/go-marketledger/log"
	"github.com/ultiledger/go-marketledger/types"
	"github.com/ultiledger/go-marketledger/util"
)

// Manager manages the native balances of accounts.
type Manager struct {
	database db.Database
	bucket   string
}

func NewManager(d db.Database) *Manager {
	am := &Manager{
		database: d,
		bucket:   "NATIVE",
	}
	err := am.database.NewBucket(am.bucket)
	if err != nil {
		log.Fatalf("create db bucket %s failed: %v", am.bucket, err)
	}
	return am
}

// Get account information from accountID. An account that never held
// value is returned with a zero balance and is not persisted.
func (am *Manager) GetAccount(getter db.Getter, accountID string) (*types.NativeAccount, error) {
	if accountID == "" {
		return nil, types.ErrInvalidAccountID
	}
	b, err := getter.Get(am.bucket, []byte(accountID))
	if err != nil {
		return nil, fmt.Errorf("get account %s failed: %v", accountID, err)
	}
	if b == nil {
		return &types.NativeAccount{AccountID: accountID, Balance: util.Zero()}, nil
	}
	acc, err := types.DecodeNativeAccount(b)
	if err != nil {
		return nil, fmt.Errorf("account %s decode failed: %v", accountID, err)
	}
	return acc, nil
}

// Update account information
func (am *Manager) SaveAccount(putter db.Putter, acc *types.NativeAccount) error {
	accb, err := types.Encode(acc)
	if err != nil {
		return fmt.Errorf("encode account failed: %v", err)
	}
	err = putter.Put(am.bucket, []byte(acc.AccountID), accb)
	if err != nil {
		return fmt.Errorf("save account in db failed: %v", err)
	}
	return nil
}

// Add balance to account
func (am *Manager) AddBalance(acc *types.NativeAccount, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return types.ErrInvalidAmount
	}
	acc.Balance = new(big.Int).Add(util.Copy(acc.Balance), amount)
	return nil
}

// Subtract balance from account and check balance underflow
func (am *Manager) SubBalance(acc *types.NativeAccount, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return types.ErrInvalidAmount
	}
	if util.Copy(acc.Balance).Cmp(amount) < 0 {
		return fmt.Errorf("account %s: %w", acc.AccountID, types.ErrInsufficientBalance)
	}
	acc.Balance = new(big.Int).Sub(acc.Balance, amount)
	return nil
}

// Credit loads the account, adds amount and saves it back.
func (am *Manager) Credit(dt db.Tx, accountID string, amount *big.Int) error {
	acc, err := am.GetAccount(dt, accountID)
	if err != nil {
		return err
	}
	if err := am.AddBalance(acc, amount); err != nil {
		return err
	}
	return am.SaveAccount(dt, acc)
}

// Debit loads the account, subtracts amount and saves it back.
func (am *Manager) Debit(dt db.Tx, accountID string, amount *big.Int) error {
	acc, err := am.GetAccount(dt, accountID)
	if err != nil {
		return err
	}
	if err := am.SubBalance(acc, amount); err != nil {
		return err
	}
	return am.SaveAccount(dt, acc)
}

// BalanceOf returns the native balance of accountID.
func (am *Manager) BalanceOf(getter db.Getter, accountID string) (*big.Int, error) {
	acc, err := am.GetAccount(getter, accountID)
	if err != nil {
		return nil, err
	}
	return util.Copy(acc.Balance), nil
}
