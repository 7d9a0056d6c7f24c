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

// Package market runs the listing and fulfillment state machine that
// exchanges packs and relics for value.
//
// A listing moves from absent to active and then to fulfilled or
// cancelled. Every method runs inside the caller's transaction, so a
// failure at any step leaves nothing behind once the caller rolls back.
package market

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/ultiledger/go-marketledger/account"
	"github.com/ultiledger/go-marketledger/asset"
	"github.com/ultiledger/go-marketledger/currency"
	"github.com/ultiledger/go-marketledger/db"
	"github.com/ultiledger/go-marketledger/log"
	"github.com/ultiledger/go-marketledger/relic"
	"github.com/ultiledger/go-marketledger/types"
	"github.com/ultiledger/go-marketledger/util"
)

const (
	FeeBPS         = 250
	BPSDenominator = 10000
)

// Fee returns the cut the market keeps from total, rounded down.
func Fee(total *big.Int) *big.Int {
	return util.MulDiv(total, big.NewInt(FeeBPS), big.NewInt(BPSDenominator))
}

// Settlement is the currency a market takes payment in.
type Settlement string

const (
	SettleNative Settlement = "native"
	SettleGold   Settlement = "gold"
)

var ErrUnknownSettlement = errors.New("unknown settlement mode")

func ParseSettlement(s string) (Settlement, error) {
	switch Settlement(s) {
	case SettleNative, SettleGold:
		return Settlement(s), nil
	}
	return "", fmt.Errorf("%q: %w", s, ErrUnknownSettlement)
}

// Kind tells the two markets apart.
type Kind string

const (
	KindPack  Kind = "packs"
	KindRelic Kind = "relics"
)

// Config names the operator identity each market acts as and the
// currency it settles in.
type Config struct {
	PackMarket      string
	RelicMarket     string
	PackSettlement  Settlement
	RelicSettlement Settlement
}

// PackSale is the outcome of a pack fulfillment.
type PackSale struct {
	Listing *types.PackListing
	Amount  uint64
	Total   *big.Int
	Fee     *big.Int
}

// RelicSale is the outcome of a relic fulfillment.
type RelicSale struct {
	Listing *types.RelicListing
	Fee     *big.Int
}

type Manager struct {
	database db.Database
	bucket   string
	config   Config

	native *account.Manager
	gold   *currency.Manager
	packs  *asset.Manager
	relics *relic.Manager

	packIndex  *Index
	relicIndex *Index
}

func NewManager(d db.Database, cfg Config, native *account.Manager, gold *currency.Manager,
	packs *asset.Manager, relics *relic.Manager) *Manager {
	m := &Manager{
		database: d,
		bucket:   "MARKET",
		config:   cfg,
		native:   native,
		gold:     gold,
		packs:    packs,
		relics:   relics,
	}
	if err := m.database.NewBucket(m.bucket); err != nil {
		log.Fatalf("create db bucket %s failed: %v", m.bucket, err)
	}
	m.packIndex = NewIndex(m.bucket, "pidx")
	m.relicIndex = NewIndex(m.bucket, "ridx")
	return m
}

// Operator returns the identity the market of kind acts as.
func (m *Manager) Operator(kind Kind) string {
	if kind == KindPack {
		return m.config.PackMarket
	}
	return m.config.RelicMarket
}

// SettlementOf returns the currency the market of kind settles in.
func (m *Manager) SettlementOf(kind Kind) Settlement {
	if kind == KindPack {
		return m.config.PackSettlement
	}
	return m.config.RelicSettlement
}

func packKey(seller string, assetID uint64) string {
	return fmt.Sprintf("%020d/%s", assetID, seller)
}

func relicKey(assetID uint64) string {
	return fmt.Sprintf("%020d", assetID)
}

// PackListing returns the listing of assetID by seller, inactive and
// empty when none was ever made.
func (m *Manager) PackListing(getter db.Getter, seller string, assetID uint64) (*types.PackListing, error) {
	return m.getPackListing(getter, packKey(seller, assetID), seller, assetID)
}

func (m *Manager) getPackListing(getter db.Getter, key string, seller string, assetID uint64) (*types.PackListing, error) {
	b, err := getter.Get(m.bucket, []byte("pl/"+key))
	if err != nil {
		return nil, fmt.Errorf("get pack listing failed: %v", err)
	}
	if b == nil {
		return &types.PackListing{Seller: seller, AssetID: assetID, UnitPrice: util.Zero()}, nil
	}
	l, err := types.DecodePackListing(b)
	if err != nil {
		return nil, fmt.Errorf("decode pack listing failed: %v", err)
	}
	return l, nil
}

func (m *Manager) savePackListing(putter db.Putter, l *types.PackListing) error {
	b, err := types.Encode(l)
	if err != nil {
		return fmt.Errorf("encode pack listing failed: %v", err)
	}
	if err := putter.Put(m.bucket, []byte("pl/"+packKey(l.Seller, l.AssetID)), b); err != nil {
		return fmt.Errorf("save pack listing failed: %v", err)
	}
	return nil
}

// RelicListing returns the listing of relic assetID.
func (m *Manager) RelicListing(getter db.Getter, assetID uint64) (*types.RelicListing, error) {
	b, err := getter.Get(m.bucket, []byte("rl/"+relicKey(assetID)))
	if err != nil {
		return nil, fmt.Errorf("get relic listing failed: %v", err)
	}
	if b == nil {
		return &types.RelicListing{AssetID: assetID, Price: util.Zero()}, nil
	}
	l, err := types.DecodeRelicListing(b)
	if err != nil {
		return nil, fmt.Errorf("decode relic listing failed: %v", err)
	}
	return l, nil
}

func (m *Manager) saveRelicListing(putter db.Putter, l *types.RelicListing) error {
	b, err := types.Encode(l)
	if err != nil {
		return fmt.Errorf("encode relic listing failed: %v", err)
	}
	if err := putter.Put(m.bucket, []byte("rl/"+relicKey(l.AssetID)), b); err != nil {
		return fmt.Errorf("save relic listing failed: %v", err)
	}
	return nil
}

// ActivePackListings returns the active pack listings in index order.
func (m *Manager) ActivePackListings(getter db.Getter) ([]*types.PackListing, error) {
	keys, err := m.packIndex.Keys(getter)
	if err != nil {
		return nil, err
	}
	listings := make([]*types.PackListing, 0, len(keys))
	for _, key := range keys {
		l, err := m.getPackListing(getter, key, "", 0)
		if err != nil {
			return nil, err
		}
		listings = append(listings, l)
	}
	return listings, nil
}

// ActiveRelicListings returns the active relic listings in index order.
func (m *Manager) ActiveRelicListings(getter db.Getter) ([]*types.RelicListing, error) {
	keys, err := m.relicIndex.Keys(getter)
	if err != nil {
		return nil, err
	}
	listings := make([]*types.RelicListing, 0, len(keys))
	for _, key := range keys {
		b, err := getter.Get(m.bucket, []byte("rl/"+key))
		if err != nil {
			return nil, fmt.Errorf("get relic listing failed: %v", err)
		}
		l, err := types.DecodeRelicListing(b)
		if err != nil {
			return nil, fmt.Errorf("decode relic listing failed: %v", err)
		}
		listings = append(listings, l)
	}
	return listings, nil
}

// ListPack offers amount units of assetID at unitPrice each. An
// active listing by the same seller is replaced and replaced is true.
// Holdings are checked but not escrowed.
func (m *Manager) ListPack(dt db.Tx, seller string, assetID uint64, amount uint64, unitPrice *big.Int) (l *types.PackListing, replaced bool, err error) {
	if amount == 0 || !util.IsPositive(unitPrice) {
		return nil, false, types.ErrInvalidAmount
	}
	held, err := m.packs.BalanceOf(dt, seller, assetID)
	if err != nil {
		return nil, false, err
	}
	if held < amount {
		return nil, false, fmt.Errorf("%s holds %d of pack %d, lists %d: %w",
			seller, held, assetID, amount, types.ErrInsufficientBalance)
	}
	approved, err := m.packs.IsApprovedForAll(dt, seller, m.config.PackMarket)
	if err != nil {
		return nil, false, err
	}
	if !approved {
		return nil, false, fmt.Errorf("pack market is not an operator of %s: %w", seller, types.ErrNotApproved)
	}

	prev, err := m.PackListing(dt, seller, assetID)
	if err != nil {
		return nil, false, err
	}
	l = &types.PackListing{
		Seller:    seller,
		AssetID:   assetID,
		Amount:    amount,
		UnitPrice: util.Copy(unitPrice),
		Active:    true,
	}
	if err := m.savePackListing(dt, l); err != nil {
		return nil, false, err
	}
	if _, err := m.packIndex.Insert(dt, packKey(seller, assetID)); err != nil {
		return nil, false, err
	}
	return l, prev.Active, nil
}

// CancelPack withdraws the active listing of assetID by seller.
func (m *Manager) CancelPack(dt db.Tx, seller string, assetID uint64) (*types.PackListing, error) {
	l, err := m.PackListing(dt, seller, assetID)
	if err != nil {
		return nil, err
	}
	if !l.Active {
		return nil, fmt.Errorf("pack %d by %s: %w", assetID, seller, types.ErrNoActiveListing)
	}
	if err := m.deactivatePack(dt, l); err != nil {
		return nil, err
	}
	return l, nil
}

func (m *Manager) deactivatePack(dt db.Tx, l *types.PackListing) error {
	l.Active = false
	if err := m.savePackListing(dt, l); err != nil {
		return err
	}
	_, err := m.packIndex.Remove(dt, packKey(l.Seller, l.AssetID))
	return err
}

// FulfillPack buys amount units from the active listing of assetID by
// seller. value is the native value attached by buyer.
func (m *Manager) FulfillPack(dt db.Tx, buyer, seller string, assetID uint64, amount uint64, value *big.Int) (*PackSale, error) {
	l, err := m.PackListing(dt, seller, assetID)
	if err != nil {
		return nil, err
	}
	if !l.Active {
		return nil, fmt.Errorf("pack %d by %s: %w", assetID, seller, types.ErrListingNotActive)
	}
	if amount == 0 || amount > l.Amount {
		return nil, fmt.Errorf("buy %d of %d listed: %w", amount, l.Amount, types.ErrInvalidAmount)
	}
	total := util.MulUint64(l.UnitPrice, amount)
	fee, err := m.settle(dt, KindPack, buyer, seller, total, value)
	if err != nil {
		return nil, err
	}

	approved, err := m.packs.IsApprovedForAll(dt, seller, m.config.PackMarket)
	if err != nil {
		return nil, err
	}
	if !approved {
		return nil, fmt.Errorf("pack market is not an operator of %s: %w", seller, types.ErrNotApproved)
	}
	if err := m.packs.Transfer(dt, seller, buyer, assetID, amount); err != nil {
		return nil, err
	}

	l.Amount -= amount
	if l.Amount == 0 {
		if err := m.deactivatePack(dt, l); err != nil {
			return nil, err
		}
	} else if err := m.savePackListing(dt, l); err != nil {
		return nil, err
	}
	return &PackSale{Listing: l, Amount: amount, Total: total, Fee: fee}, nil
}

// ListRelic offers relic assetID at price. An active listing of the
// same relic is replaced and replaced is true.
func (m *Manager) ListRelic(dt db.Tx, seller string, assetID uint64, price *big.Int) (l *types.RelicListing, replaced bool, err error) {
	if !util.IsPositive(price) {
		return nil, false, types.ErrInvalidAmount
	}
	owner, err := m.relics.OwnerOf(dt, assetID)
	if err != nil {
		return nil, false, err
	}
	if owner != seller {
		return nil, false, fmt.Errorf("%s does not own relic %d: %w", seller, assetID, types.ErrNotOwner)
	}
	approved, err := m.relics.IsApprovedOrOwner(dt, m.config.RelicMarket, assetID)
	if err != nil {
		return nil, false, err
	}
	if !approved {
		return nil, false, fmt.Errorf("relic market may not move relic %d: %w", assetID, types.ErrNotApproved)
	}

	prev, err := m.RelicListing(dt, assetID)
	if err != nil {
		return nil, false, err
	}
	l = &types.RelicListing{AssetID: assetID, Seller: seller, Price: util.Copy(price), Active: true}
	if err := m.saveRelicListing(dt, l); err != nil {
		return nil, false, err
	}
	if _, err := m.relicIndex.Insert(dt, relicKey(assetID)); err != nil {
		return nil, false, err
	}
	return l, prev.Active, nil
}

// CancelRelic withdraws the active listing of relic assetID. caller
// must be both the recorded seller and the current owner.
func (m *Manager) CancelRelic(dt db.Tx, caller string, assetID uint64) (*types.RelicListing, error) {
	l, err := m.RelicListing(dt, assetID)
	if err != nil {
		return nil, err
	}
	if !l.Active {
		return nil, fmt.Errorf("relic %d: %w", assetID, types.ErrNoActiveListing)
	}
	owner, err := m.relics.OwnerOf(dt, assetID)
	if err != nil {
		return nil, err
	}
	if caller != l.Seller || caller != owner {
		return nil, fmt.Errorf("%s may not cancel relic %d: %w", caller, assetID, types.ErrNotOwner)
	}
	if err := m.deactivateRelic(dt, l); err != nil {
		return nil, err
	}
	return l, nil
}

func (m *Manager) deactivateRelic(dt db.Tx, l *types.RelicListing) error {
	l.Active = false
	if err := m.saveRelicListing(dt, l); err != nil {
		return err
	}
	_, err := m.relicIndex.Remove(dt, relicKey(l.AssetID))
	return err
}

// FulfillRelic buys relic assetID from its active listing.
func (m *Manager) FulfillRelic(dt db.Tx, buyer string, assetID uint64, value *big.Int) (*RelicSale, error) {
	l, err := m.RelicListing(dt, assetID)
	if err != nil {
		return nil, err
	}
	if !l.Active {
		return nil, fmt.Errorf("relic %d: %w", assetID, types.ErrListingNotActive)
	}
	if buyer == l.Seller {
		return nil, fmt.Errorf("relic %d: %w", assetID, types.ErrSelfPurchase)
	}
	fee, err := m.settle(dt, KindRelic, buyer, l.Seller, l.Price, value)
	if err != nil {
		return nil, err
	}

	approved, err := m.relics.IsApprovedOrOwner(dt, m.config.RelicMarket, assetID)
	if err != nil {
		return nil, err
	}
	if !approved {
		return nil, fmt.Errorf("relic market may not move relic %d: %w", assetID, types.ErrNotApproved)
	}
	if err := m.relics.Transfer(dt, l.Seller, buyer, assetID); err != nil {
		return nil, err
	}
	if err := m.deactivateRelic(dt, l); err != nil {
		return nil, err
	}
	return &RelicSale{Listing: l, Fee: fee}, nil
}

// settle takes total from buyer through the market, pays seller total
// minus the fee and adds the fee to the market's pool.
func (m *Manager) settle(dt db.Tx, kind Kind, buyer, seller string, total, value *big.Int) (*big.Int, error) {
	operator := m.Operator(kind)
	fee := Fee(total)
	proceeds := new(big.Int).Sub(total, fee)
	value = util.Copy(value)

	switch m.SettlementOf(kind) {
	case SettleNative:
		if value.Cmp(total) != 0 {
			return nil, fmt.Errorf("attached %s, price %s: %w", value, total, types.ErrWrongAmount)
		}
		if err := m.native.Debit(dt, buyer, total); err != nil {
			return nil, err
		}
		if err := m.native.Credit(dt, operator, fee); err != nil {
			return nil, err
		}
		if err := m.native.Credit(dt, seller, proceeds); err != nil {
			return nil, err
		}
	case SettleGold:
		if value.Sign() != 0 {
			return nil, fmt.Errorf("native value attached to a gold sale: %w", types.ErrWrongAmount)
		}
		if err := m.gold.TransferFrom(dt, operator, buyer, operator, total); err != nil {
			return nil, err
		}
		if err := m.gold.Transfer(dt, operator, seller, proceeds); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%s market: %w", kind, ErrUnknownSettlement)
	}

	if err := m.addFee(dt, kind, fee); err != nil {
		return nil, err
	}
	return fee, nil
}

func feeKey(kind Kind) []byte {
	return []byte("fees/" + string(kind))
}

// AccumulatedFees returns the fees of the market of kind not yet
// withdrawn, in its settlement currency.
func (m *Manager) AccumulatedFees(getter db.Getter, kind Kind) (*big.Int, error) {
	b, err := getter.Get(m.bucket, feeKey(kind))
	if err != nil {
		return nil, fmt.Errorf("get %s fees failed: %v", kind, err)
	}
	if b == nil {
		return util.Zero(), nil
	}
	a, err := types.DecodeAmount(b)
	if err != nil {
		return nil, fmt.Errorf("decode %s fees failed: %v", kind, err)
	}
	return util.Copy(a.Value), nil
}

func (m *Manager) putFees(putter db.Putter, kind Kind, v *big.Int) error {
	b, err := types.Encode(&types.Amount{Name: string(kind), Value: v})
	if err != nil {
		return fmt.Errorf("encode %s fees failed: %v", kind, err)
	}
	if err := putter.Put(m.bucket, feeKey(kind), b); err != nil {
		return fmt.Errorf("save %s fees failed: %v", kind, err)
	}
	return nil
}

func (m *Manager) addFee(dt db.Tx, kind Kind, fee *big.Int) error {
	fees, err := m.AccumulatedFees(dt, kind)
	if err != nil {
		return err
	}
	return m.putFees(dt, kind, fees.Add(fees, fee))
}

// WithdrawFees pays every accumulated fee of the market of kind to to.
// The pool is zeroed and saved before the payout.
func (m *Manager) WithdrawFees(dt db.Tx, kind Kind, to string) (*big.Int, error) {
	if to == "" {
		return nil, types.ErrInvalidAccountID
	}
	fees, err := m.AccumulatedFees(dt, kind)
	if err != nil {
		return nil, err
	}
	if fees.Sign() == 0 {
		return nil, fmt.Errorf("%s market: %w", kind, types.ErrNothingToWithdraw)
	}
	if err := m.putFees(dt, kind, util.Zero()); err != nil {
		return nil, err
	}

	operator := m.Operator(kind)
	switch m.SettlementOf(kind) {
	case SettleNative:
		if err := m.native.Debit(dt, operator, fees); err != nil {
			return nil, err
		}
		if err := m.native.Credit(dt, to, fees); err != nil {
			return nil, err
		}
	case SettleGold:
		if err := m.gold.Transfer(dt, operator, to, fees); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%s market: %w", kind, ErrUnknownSettlement)
	}
	return fees, nil
}
