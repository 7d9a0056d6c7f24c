package ledger

import (
	"math/big"

	"github.com/ultiledger/go-marketledger/event"
	"github.com/ultiledger/go-marketledger/market"
	"github.com/ultiledger/go-marketledger/types"
)

// Read views over committed state.

func (l *Ledger) HasRole(role, account string) (bool, error) {
	l.rwm.RLock()
	defer l.rwm.RUnlock()
	return l.env.Roles.HasRole(l.database, role, account)
}

func (l *Ledger) RoleMembers(role string) ([]string, error) {
	l.rwm.RLock()
	defer l.rwm.RUnlock()
	return l.env.Roles.Members(l.database, role)
}

func (l *Ledger) NativeBalance(accountID string) (*big.Int, error) {
	l.rwm.RLock()
	defer l.rwm.RUnlock()
	return l.env.Native.BalanceOf(l.database, accountID)
}

func (l *Ledger) GoldBalance(accountID string) (*big.Int, error) {
	l.rwm.RLock()
	defer l.rwm.RUnlock()
	return l.env.Gold.BalanceOf(l.database, accountID)
}

func (l *Ledger) GoldAllowance(owner, spender string) (*big.Int, error) {
	l.rwm.RLock()
	defer l.rwm.RUnlock()
	return l.env.Gold.Allowance(l.database, owner, spender)
}

func (l *Ledger) GoldSupply() (*big.Int, error) {
	l.rwm.RLock()
	defer l.rwm.RUnlock()
	return l.env.Gold.TotalSupply(l.database)
}

// Reserve returns the native value held against the gold supply.
func (l *Ledger) Reserve() (*big.Int, error) {
	l.rwm.RLock()
	defer l.rwm.RUnlock()
	return l.env.Gold.Reserve(l.database)
}

func (l *Ledger) PackBalance(owner string, assetID uint64) (uint64, error) {
	l.rwm.RLock()
	defer l.rwm.RUnlock()
	return l.env.Packs.BalanceOf(l.database, owner, assetID)
}

func (l *Ledger) PackBalanceBatch(owners []string, assetIDs []uint64) ([]uint64, error) {
	l.rwm.RLock()
	defer l.rwm.RUnlock()
	return l.env.Packs.BalanceOfBatch(l.database, owners, assetIDs)
}

func (l *Ledger) PackSupply(assetID uint64) (uint64, error) {
	l.rwm.RLock()
	defer l.rwm.RUnlock()
	return l.env.Packs.TotalSupply(l.database, assetID)
}

func (l *Ledger) PackURI(assetID uint64) (string, error) {
	l.rwm.RLock()
	defer l.rwm.RUnlock()
	return l.env.Packs.URI(assetID)
}

func (l *Ledger) IsPackApprovedForAll(owner, operator string) (bool, error) {
	l.rwm.RLock()
	defer l.rwm.RUnlock()
	return l.env.Packs.IsApprovedForAll(l.database, owner, operator)
}

func (l *Ledger) Relic(assetID uint64) (*types.Relic, error) {
	l.rwm.RLock()
	defer l.rwm.RUnlock()
	return l.env.Relics.Get(l.database, assetID)
}

func (l *Ledger) RelicOwner(assetID uint64) (string, error) {
	l.rwm.RLock()
	defer l.rwm.RUnlock()
	return l.env.Relics.OwnerOf(l.database, assetID)
}

func (l *Ledger) RelicURI(assetID uint64) (string, error) {
	l.rwm.RLock()
	defer l.rwm.RUnlock()
	return l.env.Relics.TokenURI(assetID)
}

func (l *Ledger) RelicBalance(owner string) (uint64, error) {
	l.rwm.RLock()
	defer l.rwm.RUnlock()
	return l.env.Relics.BalanceOf(l.database, owner)
}

func (l *Ledger) IsRelicApprovedForAll(owner, operator string) (bool, error) {
	l.rwm.RLock()
	defer l.rwm.RUnlock()
	return l.env.Relics.IsApprovedForAll(l.database, owner, operator)
}

func (l *Ledger) MintedRelics() ([]uint64, error) {
	l.rwm.RLock()
	defer l.rwm.RUnlock()
	return l.env.Relics.MintedIDs(l.database)
}

func (l *Ledger) PackListing(seller string, assetID uint64) (*types.PackListing, error) {
	l.rwm.RLock()
	defer l.rwm.RUnlock()
	return l.env.Market.PackListing(l.database, seller, assetID)
}

func (l *Ledger) RelicListing(assetID uint64) (*types.RelicListing, error) {
	l.rwm.RLock()
	defer l.rwm.RUnlock()
	return l.env.Market.RelicListing(l.database, assetID)
}

func (l *Ledger) ActivePackListings() ([]*types.PackListing, error) {
	l.rwm.RLock()
	defer l.rwm.RUnlock()
	return l.env.Market.ActivePackListings(l.database)
}

func (l *Ledger) ActiveRelicListings() ([]*types.RelicListing, error) {
	l.rwm.RLock()
	defer l.rwm.RUnlock()
	return l.env.Market.ActiveRelicListings(l.database)
}

func (l *Ledger) AccumulatedFees(kind market.Kind) (*big.Int, error) {
	l.rwm.RLock()
	defer l.rwm.RUnlock()
	return l.env.Market.AccumulatedFees(l.database, kind)
}

// Events returns up to limit journaled events after sequence from.
func (l *Ledger) Events(from uint64, limit int) ([]*event.Envelope, error) {
	l.rwm.RLock()
	defer l.rwm.RUnlock()
	return l.journal.Since(l.database, from, limit)
}
