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

// Package relic is the registry of one-of-a-kind assets.
package relic

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru"

	"github.com/ultiledger/go-marketledger/db"
	"github.com/ultiledger/go-marketledger/log"
	"github.com/ultiledger/go-marketledger/types"
)

// FirstID is the id assigned by the first mint.
const FirstID uint64 = 100

const (
	counterKey   = "counter"
	mintedPrefix = "minted/"
)

type Manager struct {
	database db.Database
	bucket   string

	uris *lru.Cache
}

func NewManager(d db.Database) *Manager {
	m := &Manager{
		database: d,
		bucket:   "RELIC",
	}
	err := m.database.NewBucket(m.bucket)
	if err != nil {
		log.Fatalf("create db bucket %s failed: %v", m.bucket, err)
	}
	cache, err := lru.New(1000)
	if err != nil {
		log.Fatalf("create relic uri LRU cache failed: %v", err)
	}
	m.uris = cache
	return m
}

func relicKey(assetID uint64) []byte {
	return []byte(fmt.Sprintf("relic/%020d", assetID))
}

func mintedKey(assetID uint64) []byte {
	return []byte(fmt.Sprintf("%s%020d", mintedPrefix, assetID))
}

func heldKey(owner string) []byte {
	return []byte("held/" + owner)
}

func operatorKey(owner, operator string) []byte {
	return types.PairKey("op", owner, operator)
}

// NextID returns the id the next mint will assign.
func (m *Manager) NextID(getter db.Getter) (uint64, error) {
	c, err := m.getCounter(getter, []byte(counterKey))
	if err != nil {
		return 0, err
	}
	if c.Value == 0 {
		return FirstID, nil
	}
	return c.Value, nil
}

// Mint assigns the next id to a new relic owned by to.
func (m *Manager) Mint(dt db.Tx, to string, uri string) (uint64, error) {
	if to == "" {
		return 0, types.ErrInvalidAccountID
	}
	id, err := m.NextID(dt)
	if err != nil {
		return 0, err
	}
	if err := m.putCounter(dt, []byte(counterKey), &types.Counter{Name: counterKey, Value: id + 1}); err != nil {
		return 0, err
	}
	r := &types.Relic{AssetID: id, Owner: to, URI: uri}
	if err := m.save(dt, r); err != nil {
		return 0, err
	}
	if err := m.putCounter(dt, mintedKey(id), &types.Counter{Name: mintedPrefix, Value: id}); err != nil {
		return 0, err
	}
	if err := m.addHeld(dt, to, 1); err != nil {
		return 0, err
	}
	return id, nil
}

// Get loads relic assetID.
func (m *Manager) Get(getter db.Getter, assetID uint64) (*types.Relic, error) {
	b, err := getter.Get(m.bucket, relicKey(assetID))
	if err != nil {
		return nil, fmt.Errorf("get relic %d failed: %v", assetID, err)
	}
	if b == nil {
		return nil, fmt.Errorf("relic %d: %w", assetID, types.ErrRelicNotExist)
	}
	r, err := types.DecodeRelic(b)
	if err != nil {
		return nil, fmt.Errorf("decode relic %d failed: %v", assetID, err)
	}
	return r, nil
}

func (m *Manager) save(putter db.Putter, r *types.Relic) error {
	b, err := types.Encode(r)
	if err != nil {
		return fmt.Errorf("encode relic failed: %v", err)
	}
	if err := putter.Put(m.bucket, relicKey(r.AssetID), b); err != nil {
		return fmt.Errorf("save relic failed: %v", err)
	}
	return nil
}

func (m *Manager) OwnerOf(getter db.Getter, assetID uint64) (string, error) {
	r, err := m.Get(getter, assetID)
	if err != nil {
		return "", err
	}
	return r.Owner, nil
}

// TokenURI returns the committed metadata pointer of assetID.
func (m *Manager) TokenURI(assetID uint64) (string, error) {
	if uri, ok := m.uris.Get(assetID); ok {
		return uri.(string), nil
	}
	r, err := m.Get(m.database, assetID)
	if err != nil {
		return "", err
	}
	m.uris.Add(assetID, r.URI)
	return r.URI, nil
}

// BalanceOf returns how many relics owner holds.
func (m *Manager) BalanceOf(getter db.Getter, owner string) (uint64, error) {
	if owner == "" {
		return 0, types.ErrInvalidAccountID
	}
	c, err := m.getCounter(getter, heldKey(owner))
	if err != nil {
		return 0, err
	}
	return c.Value, nil
}

// MintedIDs returns every id ever minted in mint order.
func (m *Manager) MintedIDs(getter db.Getter) ([]uint64, error) {
	vals, err := getter.GetAll(m.bucket, []byte(mintedPrefix))
	if err != nil {
		return nil, fmt.Errorf("get minted ids failed: %v", err)
	}
	ids := make([]uint64, 0, len(vals))
	for _, b := range vals {
		c, err := types.DecodeCounter(b)
		if err != nil {
			return nil, fmt.Errorf("decode minted id failed: %v", err)
		}
		ids = append(ids, c.Value)
	}
	return ids, nil
}

// Approve sets the single account allowed to transfer assetID besides
// its owner. An empty spender clears the approval. caller must be the
// owner or one of the owner's operators.
func (m *Manager) Approve(dt db.Tx, caller, spender string, assetID uint64) error {
	r, err := m.Get(dt, assetID)
	if err != nil {
		return err
	}
	if spender == r.Owner {
		return fmt.Errorf("approve current owner of relic %d: %w", assetID, types.ErrInvalidAccountID)
	}
	if caller != r.Owner {
		ok, err := m.IsApprovedForAll(dt, r.Owner, caller)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%s may not approve relic %d: %w", caller, assetID, types.ErrNotOwner)
		}
	}
	r.Approved = spender
	return m.save(dt, r)
}

// GetApproved returns the per-asset approved account, empty if none.
func (m *Manager) GetApproved(getter db.Getter, assetID uint64) (string, error) {
	r, err := m.Get(getter, assetID)
	if err != nil {
		return "", err
	}
	return r.Approved, nil
}

// SetApprovalForAll records whether operator may move every relic of owner.
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

// IsApprovedOrOwner reports whether spender owns assetID, is its
// approved account or is an operator of its owner.
func (m *Manager) IsApprovedOrOwner(getter db.Getter, spender string, assetID uint64) (bool, error) {
	r, err := m.Get(getter, assetID)
	if err != nil {
		return false, err
	}
	if spender == r.Owner || (r.Approved != "" && spender == r.Approved) {
		return true, nil
	}
	return m.IsApprovedForAll(getter, r.Owner, spender)
}

// Transfer reassigns assetID from its owner to another account and
// clears its per-asset approval.
func (m *Manager) Transfer(dt db.Tx, from, to string, assetID uint64) error {
	if to == "" {
		return types.ErrInvalidAccountID
	}
	r, err := m.Get(dt, assetID)
	if err != nil {
		return err
	}
	if r.Owner != from {
		return fmt.Errorf("%s does not own relic %d: %w", from, assetID, types.ErrNotOwner)
	}
	r.Owner = to
	r.Approved = ""
	if err := m.save(dt, r); err != nil {
		return err
	}
	if err := m.addHeld(dt, from, -1); err != nil {
		return err
	}
	return m.addHeld(dt, to, 1)
}

func (m *Manager) addHeld(dt db.Tx, owner string, delta int) error {
	key := heldKey(owner)
	c, err := m.getCounter(dt, key)
	if err != nil {
		return err
	}
	if delta < 0 {
		c.Value--
	} else {
		c.Value++
	}
	c.Name = owner
	return m.putCounter(dt, key, c)
}

func (m *Manager) getCounter(getter db.Getter, key []byte) (*types.Counter, error) {
	b, err := getter.Get(m.bucket, key)
	if err != nil {
		return nil, fmt.Errorf("get counter %s failed: %v", key, err)
	}
	if b == nil {
		return &types.Counter{}, nil
	}
	c, err := types.DecodeCounter(b)
	if err != nil {
		return nil, fmt.Errorf("decode counter %s failed: %v", key, err)
	}
	return c, nil
}

func (m *Manager) putCounter(putter db.Putter, key []byte, c *types.Counter) error {
	b, err := types.Encode(c)
	if err != nil {
		return fmt.Errorf("encode counter failed: %v", err)
	}
	if err := putter.Put(m.bucket, key, b); err != nil {
		return fmt.Errorf("save counter failed: %v", err)
	}
	return nil
}
