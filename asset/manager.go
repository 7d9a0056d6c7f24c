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

// Package asset keeps the balances of fungible multi-unit pack assets.
package asset

import (
	"errors"
	"fmt"
	"math"

	lru "github.com/hashicorp/golang-lru"

	"github.com/ultiledger/go-marketledger/db"
	"github.com/ultiledger/go-marketledger/log"
	"github.com/ultiledger/go-marketledger/types"
)

var ErrLengthMismatch = errors.New("owners and asset ids length mismatch")

type Manager struct {
	database db.Database
	bucket   string

	// committed metadata pointers, immutable once set
	uris *lru.Cache
}

func NewManager(d db.Database) *Manager {
	m := &Manager{
		database: d,
		bucket:   "PACK",
	}
	err := m.database.NewBucket(m.bucket)
	if err != nil {
		log.Fatalf("create db bucket %s failed: %v", m.bucket, err)
	}
	cache, err := lru.New(1000)
	if err != nil {
		log.Fatalf("create pack uri LRU cache failed: %v", err)
	}
	m.uris = cache
	return m
}

func balanceKey(owner string, assetID uint64) []byte {
	return []byte(fmt.Sprintf("bal/%s/%020d", owner, assetID))
}

func infoKey(assetID uint64) []byte {
	return []byte(fmt.Sprintf("info/%020d", assetID))
}

func operatorKey(owner, operator string) []byte {
	return types.PairKey("op", owner, operator)
}

// BalanceOf returns the quantity of assetID held by owner.
func (m *Manager) BalanceOf(getter db.Getter, owner string, assetID uint64) (uint64, error) {
	bal, err := m.getBalance(getter, owner, assetID)
	if err != nil {
		return 0, err
	}
	return bal.Amount, nil
}

// BalanceOfBatch returns the balances of each (owners[i], assetIDs[i]) pair.
func (m *Manager) BalanceOfBatch(getter db.Getter, owners []string, assetIDs []uint64) ([]uint64, error) {
	if len(owners) != len(assetIDs) {
		return nil, ErrLengthMismatch
	}
	amounts := make([]uint64, len(owners))
	for i := range owners {
		amount, err := m.BalanceOf(getter, owners[i], assetIDs[i])
		if err != nil {
			return nil, err
		}
		amounts[i] = amount
	}
	return amounts, nil
}

func (m *Manager) getBalance(getter db.Getter, owner string, assetID uint64) (*types.PackBalance, error) {
	if owner == "" {
		return nil, types.ErrInvalidAccountID
	}
	b, err := getter.Get(m.bucket, balanceKey(owner, assetID))
	if err != nil {
		return nil, fmt.Errorf("get pack balance failed: %v", err)
	}
	if b == nil {
		return &types.PackBalance{Owner: owner, AssetID: assetID}, nil
	}
	bal, err := types.DecodePackBalance(b)
	if err != nil {
		return nil, fmt.Errorf("decode pack balance failed: %v", err)
	}
	return bal, nil
}

func (m *Manager) saveBalance(putter db.Putter, bal *types.PackBalance) error {
	b, err := types.Encode(bal)
	if err != nil {
		return fmt.Errorf("encode pack balance failed: %v", err)
	}
	if err := putter.Put(m.bucket, balanceKey(bal.Owner, bal.AssetID), b); err != nil {
		return fmt.Errorf("save pack balance failed: %v", err)
	}
	return nil
}

// Info returns the supply and metadata pointer of assetID. Unminted
// ids report zero supply and an empty pointer.
func (m *Manager) Info(getter db.Getter, assetID uint64) (*types.PackInfo, error) {
	b, err := getter.Get(m.bucket, infoKey(assetID))
	if err != nil {
		return nil, fmt.Errorf("get pack info failed: %v", err)
	}
	if b == nil {
		return &types.PackInfo{AssetID: assetID}, nil
	}
	info, err := types.DecodePackInfo(b)
	if err != nil {
		return nil, fmt.Errorf("decode pack info failed: %v", err)
	}
	return info, nil
}

func (m *Manager) saveInfo(putter db.Putter, info *types.PackInfo) error {
	b, err := types.Encode(info)
	if err != nil {
		return fmt.Errorf("encode pack info failed: %v", err)
	}
	if err := putter.Put(m.bucket, infoKey(info.AssetID), b); err != nil {
		return fmt.Errorf("save pack info failed: %v", err)
	}
	return nil
}

// TotalSupply returns the sum of every balance of assetID.
func (m *Manager) TotalSupply(getter db.Getter, assetID uint64) (uint64, error) {
	info, err := m.Info(getter, assetID)
	if err != nil {
		return 0, err
	}
	return info.Supply, nil
}

// URI returns the committed metadata pointer of assetID.
func (m *Manager) URI(assetID uint64) (string, error) {
	if uri, ok := m.uris.Get(assetID); ok {
		return uri.(string), nil
	}
	info, err := m.Info(m.database, assetID)
	if err != nil {
		return "", err
	}
	if info.URI != "" {
		m.uris.Add(assetID, info.URI)
	}
	return info.URI, nil
}

// Mint creates amount units of assetID for to. The first mint of an id
// fixes its metadata pointer; a different uri given later is ignored.
// Mint returns the pointer in effect after the call.
func (m *Manager) Mint(dt db.Tx, to string, assetID uint64, amount uint64, uri string) (string, error) {
	if amount == 0 {
		return "", types.ErrInvalidAmount
	}
	info, err := m.Info(dt, assetID)
	if err != nil {
		return "", err
	}
	bal, err := m.getBalance(dt, to, assetID)
	if err != nil {
		return "", err
	}
	if info.Supply > math.MaxUint64-amount {
		return "", fmt.Errorf("pack %d supply: %w", assetID, types.ErrBalanceOverflow)
	}
	if info.URI == "" {
		info.URI = uri
	} else if uri != info.URI {
		log.Debugw("ignore pack uri on re-mint", "asset", assetID, "uri", uri, "canonical", info.URI)
	}
	info.Supply += amount
	bal.Amount += amount
	if err := m.saveInfo(dt, info); err != nil {
		return "", err
	}
	if err := m.saveBalance(dt, bal); err != nil {
		return "", err
	}
	return info.URI, nil
}

// Transfer moves amount units of assetID from one holder to another.
func (m *Manager) Transfer(dt db.Tx, from, to string, assetID uint64, amount uint64) error {
	if amount == 0 {
		return types.ErrInvalidAmount
	}
	if to == "" {
		return types.ErrInvalidAccountID
	}
	src, err := m.getBalance(dt, from, assetID)
	if err != nil {
		return err
	}
	if src.Amount < amount {
		return fmt.Errorf("%s holds %d of pack %d, needs %d: %w",
			from, src.Amount, assetID, amount, types.ErrInsufficientBalance)
	}
	src.Amount -= amount
	if err := m.saveBalance(dt, src); err != nil {
		return err
	}
	// re-read so a transfer to self sees the debit
	dst, err := m.getBalance(dt, to, assetID)
	if err != nil {
		return err
	}
	dst.Amount += amount
	return m.saveBalance(dt, dst)
}

// SetApprovalForAll records whether operator may move every pack of owner.
func (m *Manager) SetApprovalForAll(dt db.Tx, owner, operator string, approved bool) error {
	if owner == "" || operator == "" {
		return types.ErrInvalidAccountID
	}
	if owner == operator {
		return fmt.Errorf("approve self as operator: %w", types.ErrInvalidAccountID)
	}
	oa := &types.OperatorApproval{Owner: owner, Operator: operator, Approved: approved}
	b, err := types.Encode(oa)
	if err != nil {
		return fmt.Errorf("encode operator approval failed: %v", err)
	}
	if err := dt.Put(m.bucket, operatorKey(owner, operator), b); err != nil {
		return fmt.Errorf("save operator approval failed: %v", err)
	}
	return nil
}

// IsApprovedForAll reports whether operator may move every pack of owner.
func (m *Manager) IsApprovedForAll(getter db.Getter, owner, operator string) (bool, error) {
	b, err := getter.Get(m.bucket, operatorKey(owner, operator))
	if err != nil {
		return false, fmt.Errorf("get operator approval failed: %v", err)
	}
	if b == nil {
		return false, nil
	}
	oa, err := types.DecodeOperatorApproval(b)
	if err != nil {
		return false, fmt.Errorf("decode operator approval failed: %v", err)
	}
	return oa.Approved, nil
}
