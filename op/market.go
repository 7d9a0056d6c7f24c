package op

import (
	"fmt"
	"math/big"

	"github.com/ultiledger/go-marketledger/access"
	"github.com/ultiledger/go-marketledger/db"
	"github.com/ultiledger/go-marketledger/event"
	"github.com/ultiledger/go-marketledger/market"
	"github.com/ultiledger/go-marketledger/types"
	"github.com/ultiledger/go-marketledger/util"
)

type ListPack struct {
	Caller    string   `json:"caller"`
	AssetID   uint64   `json:"asset_id"`
	Amount    uint64   `json:"amount"`
	UnitPrice *big.Int `json:"unit_price"`
}

func (o *ListPack) Type() string   { return "list_pack" }
func (o *ListPack) Sender() string { return o.Caller }

func (o *ListPack) Apply(env *Env, dt db.Tx, em event.Emitter) error {
	l, replaced, err := env.Market.ListPack(dt, o.Caller, o.AssetID, o.Amount, o.UnitPrice)
	if err != nil {
		return err
	}
	return em.Emit(&event.PackListed{
		Seller:    l.Seller,
		AssetID:   l.AssetID,
		Amount:    l.Amount,
		UnitPrice: util.Copy(l.UnitPrice),
		Replaced:  replaced,
	})
}

type CancelPack struct {
	Caller  string `json:"caller"`
	AssetID uint64 `json:"asset_id"`
}

func (o *CancelPack) Type() string   { return "cancel_pack" }
func (o *CancelPack) Sender() string { return o.Caller }

func (o *CancelPack) Apply(env *Env, dt db.Tx, em event.Emitter) error {
	if _, err := env.Market.CancelPack(dt, o.Caller, o.AssetID); err != nil {
		return err
	}
	return em.Emit(&event.PackListingCancelled{Seller: o.Caller, AssetID: o.AssetID})
}

// FulfillPack buys Amount units from the listing of Seller. Value is
// the native value attached, zero when the pack market settles in gold.
type FulfillPack struct {
	Caller  string   `json:"caller"`
	Seller  string   `json:"seller"`
	AssetID uint64   `json:"asset_id"`
	Amount  uint64   `json:"amount"`
	Value   *big.Int `json:"value,omitempty"`
}

func (o *FulfillPack) Type() string   { return "fulfill_pack" }
func (o *FulfillPack) Sender() string { return o.Caller }

func (o *FulfillPack) Apply(env *Env, dt db.Tx, em event.Emitter) error {
	sale, err := env.Market.FulfillPack(dt, o.Caller, o.Seller, o.AssetID, o.Amount, o.Value)
	if err != nil {
		return err
	}
	err = em.Emit(&event.PackTransfer{
		Operator: env.Market.Operator(market.KindPack),
		From:     o.Seller,
		To:       o.Caller,
		AssetID:  o.AssetID,
		Amount:   o.Amount,
	})
	if err != nil {
		return err
	}
	return em.Emit(&event.PackSold{
		Seller:     o.Seller,
		Buyer:      o.Caller,
		AssetID:    o.AssetID,
		Amount:     sale.Amount,
		TotalPrice: sale.Total,
		Fee:        sale.Fee,
		Remaining:  sale.Listing.Amount,
	})
}

type ListRelic struct {
	Caller  string   `json:"caller"`
	AssetID uint64   `json:"asset_id"`
	Price   *big.Int `json:"price"`
}

func (o *ListRelic) Type() string   { return "list_relic" }
func (o *ListRelic) Sender() string { return o.Caller }

func (o *ListRelic) Apply(env *Env, dt db.Tx, em event.Emitter) error {
	l, replaced, err := env.Market.ListRelic(dt, o.Caller, o.AssetID, o.Price)
	if err != nil {
		return err
	}
	return em.Emit(&event.RelicListed{
		Seller:   l.Seller,
		AssetID:  l.AssetID,
		Price:    util.Copy(l.Price),
		Replaced: replaced,
	})
}

type CancelRelic struct {
	Caller  string `json:"caller"`
	AssetID uint64 `json:"asset_id"`
}

func (o *CancelRelic) Type() string   { return "cancel_relic" }
func (o *CancelRelic) Sender() string { return o.Caller }

func (o *CancelRelic) Apply(env *Env, dt db.Tx, em event.Emitter) error {
	l, err := env.Market.CancelRelic(dt, o.Caller, o.AssetID)
	if err != nil {
		return err
	}
	return em.Emit(&event.RelicListingCancelled{Seller: l.Seller, AssetID: l.AssetID})
}

type FulfillRelic struct {
	Caller  string   `json:"caller"`
	AssetID uint64   `json:"asset_id"`
	Value   *big.Int `json:"value,omitempty"`
}

func (o *FulfillRelic) Type() string   { return "fulfill_relic" }
func (o *FulfillRelic) Sender() string { return o.Caller }

func (o *FulfillRelic) Apply(env *Env, dt db.Tx, em event.Emitter) error {
	sale, err := env.Market.FulfillRelic(dt, o.Caller, o.AssetID, o.Value)
	if err != nil {
		return err
	}
	l := sale.Listing
	if err := em.Emit(&event.RelicTransfer{From: l.Seller, To: o.Caller, AssetID: l.AssetID}); err != nil {
		return err
	}
	return em.Emit(&event.RelicSold{
		Seller:  l.Seller,
		Buyer:   o.Caller,
		AssetID: l.AssetID,
		Price:   util.Copy(l.Price),
		Fee:     sale.Fee,
	})
}

// WithdrawFees pays the fees of one market to To. Admin only.
type WithdrawFees struct {
	Caller string      `json:"caller"`
	Market market.Kind `json:"market"`
	To     string      `json:"to"`
}

func (o *WithdrawFees) Type() string   { return "withdraw_fees" }
func (o *WithdrawFees) Sender() string { return o.Caller }

func (o *WithdrawFees) Apply(env *Env, dt db.Tx, em event.Emitter) error {
	if err := env.Roles.RequireRole(dt, access.RoleAdmin, o.Caller); err != nil {
		return err
	}
	if o.Market != market.KindPack && o.Market != market.KindRelic {
		return fmt.Errorf("%q: %w", o.Market, types.ErrUnknownMarket)
	}
	amount, err := env.Market.WithdrawFees(dt, o.Market, o.To)
	if err != nil {
		return err
	}
	return em.Emit(&event.FeesWithdrawn{Market: string(o.Market), To: o.To, Amount: amount})
}
