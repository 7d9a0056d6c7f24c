package op

import (
	"fmt"

	"github.com/ultiledger/go-marketledger/access"
	"github.com/ultiledger/go-marketledger/db"
	"github.com/ultiledger/go-marketledger/event"
	"github.com/ultiledger/go-marketledger/types"
)

// MintPack creates Amount units of pack AssetID for To. Minters only.
type MintPack struct {
	Caller  string `json:"caller"`
	To      string `json:"to"`
	AssetID uint64 `json:"asset_id"`
	Amount  uint64 `json:"amount"`
	URI     string `json:"uri"`
}

func (o *MintPack) Type() string   { return "mint_pack" }
func (o *MintPack) Sender() string { return o.Caller }

func (o *MintPack) Apply(env *Env, dt db.Tx, em event.Emitter) error {
	if err := env.Roles.RequireRole(dt, access.RoleMinter, o.Caller); err != nil {
		return err
	}
	uri, err := env.Packs.Mint(dt, o.To, o.AssetID, o.Amount, o.URI)
	if err != nil {
		return err
	}
	return em.Emit(&event.PackMinted{To: o.To, AssetID: o.AssetID, Amount: o.Amount, URI: uri})
}

type SetPackApprovalForAll struct {
	Caller   string `json:"caller"`
	Operator string `json:"operator"`
	Approved bool   `json:"approved"`
}

func (o *SetPackApprovalForAll) Type() string   { return "set_pack_approval_for_all" }
func (o *SetPackApprovalForAll) Sender() string { return o.Caller }

func (o *SetPackApprovalForAll) Apply(env *Env, dt db.Tx, em event.Emitter) error {
	if err := env.Packs.SetApprovalForAll(dt, o.Caller, o.Operator, o.Approved); err != nil {
		return err
	}
	return em.Emit(&event.ApprovalForAll{
		Registry: "packs",
		Owner:    o.Caller,
		Operator: o.Operator,
		Approved: o.Approved,
	})
}

// TransferPack moves packs of From. Caller must be From or one of
// its operators.
type TransferPack struct {
	Caller  string `json:"caller"`
	From    string `json:"from"`
	To      string `json:"to"`
	AssetID uint64 `json:"asset_id"`
	Amount  uint64 `json:"amount"`
}

func (o *TransferPack) Type() string   { return "transfer_pack" }
func (o *TransferPack) Sender() string { return o.Caller }

func (o *TransferPack) Apply(env *Env, dt db.Tx, em event.Emitter) error {
	if o.Caller != o.From {
		ok, err := env.Packs.IsApprovedForAll(dt, o.From, o.Caller)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%s is not an operator of %s: %w", o.Caller, o.From, types.ErrNotApproved)
		}
	}
	if err := env.Packs.Transfer(dt, o.From, o.To, o.AssetID, o.Amount); err != nil {
		return err
	}
	return em.Emit(&event.PackTransfer{
		Operator: o.Caller,
		From:     o.From,
		To:       o.To,
		AssetID:  o.AssetID,
		Amount:   o.Amount,
	})
}
