package op

import (
	"math/big"

	"github.com/ultiledger/go-marketledger/access"
	"github.com/ultiledger/go-marketledger/currency"
	"github.com/ultiledger/go-marketledger/db"
	"github.com/ultiledger/go-marketledger/event"
	"github.com/ultiledger/go-marketledger/types"
	"github.com/ultiledger/go-marketledger/util"
)

// FundNative deposits native value from outside the ledger into an
// account. Only admins may fund.
type FundNative struct {
	Caller  string   `json:"caller"`
	Account string   `json:"account"`
	Amount  *big.Int `json:"amount"`
}

func (o *FundNative) Type() string   { return "fund_native" }
func (o *FundNative) Sender() string { return o.Caller }

func (o *FundNative) Apply(env *Env, dt db.Tx, em event.Emitter) error {
	if err := env.Roles.RequireRole(dt, access.RoleAdmin, o.Caller); err != nil {
		return err
	}
	if !util.IsPositive(o.Amount) {
		return types.ErrInvalidAmount
	}
	if err := env.Native.Credit(dt, o.Account, o.Amount); err != nil {
		return err
	}
	return em.Emit(&event.NativeFunded{Account: o.Account, Amount: util.Copy(o.Amount)})
}

// Convert buys gold with Value of the caller's native balance. The
// native value stays in the reserve, including any remainder too small
// to buy a base unit.
type Convert struct {
	Caller string   `json:"caller"`
	Value  *big.Int `json:"value"`
}

func (o *Convert) Type() string   { return "convert" }
func (o *Convert) Sender() string { return o.Caller }

func (o *Convert) Apply(env *Env, dt db.Tx, em event.Emitter) error {
	if !util.IsPositive(o.Value) {
		return types.ErrInvalidAmount
	}
	if err := env.Native.Debit(dt, o.Caller, o.Value); err != nil {
		return err
	}
	units := currency.UnitsFor(o.Value)
	if err := env.Gold.Mint(dt, o.Caller, units); err != nil {
		return err
	}
	if err := env.Gold.AddReserve(dt, o.Value); err != nil {
		return err
	}
	return em.Emit(&event.GoldConverted{Account: o.Caller, Value: util.Copy(o.Value), Units: units})
}

// WithdrawNative pays the whole native reserve to To. Admin only.
type WithdrawNative struct {
	Caller string `json:"caller"`
	To     string `json:"to"`
}

func (o *WithdrawNative) Type() string   { return "withdraw_native" }
func (o *WithdrawNative) Sender() string { return o.Caller }

func (o *WithdrawNative) Apply(env *Env, dt db.Tx, em event.Emitter) error {
	if err := env.Roles.RequireRole(dt, access.RoleAdmin, o.Caller); err != nil {
		return err
	}
	if o.To == "" {
		return types.ErrInvalidAccountID
	}
	// the reserve is zeroed before the payout
	amount, err := env.Gold.DrainReserve(dt)
	if err != nil {
		return err
	}
	if err := env.Native.Credit(dt, o.To, amount); err != nil {
		return err
	}
	return em.Emit(&event.NativeWithdrawn{To: o.To, Amount: amount})
}

type GoldTransfer struct {
	Caller string   `json:"caller"`
	To     string   `json:"to"`
	Amount *big.Int `json:"amount"`
}

func (o *GoldTransfer) Type() string   { return "gold_transfer" }
func (o *GoldTransfer) Sender() string { return o.Caller }

func (o *GoldTransfer) Apply(env *Env, dt db.Tx, em event.Emitter) error {
	if err := env.Gold.Transfer(dt, o.Caller, o.To, o.Amount); err != nil {
		return err
	}
	return em.Emit(&event.GoldTransfer{From: o.Caller, To: o.To, Amount: util.Copy(o.Amount)})
}

// GoldApprove sets, not adds to, the allowance of Spender.
type GoldApprove struct {
	Caller  string   `json:"caller"`
	Spender string   `json:"spender"`
	Amount  *big.Int `json:"amount"`
}

func (o *GoldApprove) Type() string   { return "gold_approve" }
func (o *GoldApprove) Sender() string { return o.Caller }

func (o *GoldApprove) Apply(env *Env, dt db.Tx, em event.Emitter) error {
	if err := env.Gold.Approve(dt, o.Caller, o.Spender, o.Amount); err != nil {
		return err
	}
	return em.Emit(&event.GoldApproval{Owner: o.Caller, Spender: o.Spender, Amount: util.Copy(o.Amount)})
}

// GoldTransferFrom spends the caller's allowance over From.
type GoldTransferFrom struct {
	Caller string   `json:"caller"`
	From   string   `json:"from"`
	To     string   `json:"to"`
	Amount *big.Int `json:"amount"`
}

func (o *GoldTransferFrom) Type() string   { return "gold_transfer_from" }
func (o *GoldTransferFrom) Sender() string { return o.Caller }

func (o *GoldTransferFrom) Apply(env *Env, dt db.Tx, em event.Emitter) error {
	if err := env.Gold.TransferFrom(dt, o.Caller, o.From, o.To, o.Amount); err != nil {
		return err
	}
	return em.Emit(&event.GoldTransfer{From: o.From, To: o.To, Amount: util.Copy(o.Amount)})
}
