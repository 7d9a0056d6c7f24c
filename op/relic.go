package op

import (
	"fmt"

	"github.com/ultiledger/go-marketledger/access"
	"github.com/ultiledger/go-marketledger/db"
	"github.com/ultiledger/go-marketledger/event"
	"github.com/ultiledger/go-marketledger/types"
)

// MintRelic creates the next relic for To. Admin only.
type MintRelic struct {
	Caller string `json:"caller"`
	To     string `json:"to"`
	URI    string `json:"uri"`
}

func (o *MintRelic) Type() string   { return "mint_relic" }
func (o *MintRelic) Sender() string { return o.Caller }

func (o *MintRelic) Apply(env *Env, dt db.Tx, em event.Emitter) error {
	if err := env.Roles.RequireRole(dt, access.RoleAdmin, o.Caller); err != nil {
		return err
	}
	id, err := env.Relics.Mint(dt, o.To, o.URI)
	if err != nil {
		return err
	}
	return em.Emit(&event.RelicMinted{To: o.To, AssetID: id, URI: o.URI})
}

// ApproveRelic lets Spender transfer relic AssetID. An empty Spender
// clears the approval.
type ApproveRelic struct {
	Caller  string `json:"caller"`
	Spender string `json:"spender"`
	AssetID uint64 `json:"asset_id"`
}

func (o *ApproveRelic) Type() string   { return "approve_relic" }
func (o *ApproveRelic) Sender() string { return o.Caller }

func (o *ApproveRelic) Apply(env *Env, dt db.Tx, em event.Emitter) error {
	if err := env.Relics.Approve(dt, o.Caller, o.Spender, o.AssetID); err != nil {
		return err
	}
	owner, err := env.Relics.OwnerOf(dt, o.AssetID)
	if err != nil {
		return err
	}
	return em.Emit(&event.RelicApproval{Owner: owner, Approved: o.Spender, AssetID: o.AssetID})
}

type SetRelicApprovalForAll struct {
	Caller   string `json:"caller"`
	Operator string `json:"operator"`
	Approved bool   `json:"approved"`
}

func (o *SetRelicApprovalForAll) Type() string   { return "set_relic_approval_for_all" }
func (o *SetRelicApprovalForAll) Sender() string { return o.Caller }

func (o *SetRelicApprovalForAll) Apply(env *Env, dt db.Tx, em event.Emitter) error {
	if err := env.Relics.SetApprovalForAll(dt, o.Caller, o.Operator, o.Approved); err != nil {
		return err
	}
	return em.Emit(&event.ApprovalForAll{
		Registry: "relics",
		Owner:    o.Caller,
		Operator: o.Operator,
		Approved: o.Approved,
	})
}

// TransferRelic moves relic AssetID from From. Caller must own it, be
// its approved account or be an operator of the owner.
type TransferRelic struct {
	Caller  string `json:"caller"`
	From    string `json:"from"`
	To      string `json:"to"`
	AssetID uint64 `json:"asset_id"`
}

func (o *TransferRelic) Type() string   { return "transfer_relic" }
func (o *TransferRelic) Sender() string { return o.Caller }

func (o *TransferRelic) Apply(env *Env, dt db.Tx, em event.Emitter) error {
	ok, err := env.Relics.IsApprovedOrOwner(dt, o.Caller, o.AssetID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%s may not move relic %d: %w", o.Caller, o.AssetID, types.ErrNotApproved)
	}
	if err := env.Relics.Transfer(dt, o.From, o.To, o.AssetID); err != nil {
		return err
	}
	return em.Emit(&event.RelicTransfer{From: o.From, To: o.To, AssetID: o.AssetID})
}
