package types

import "errors"

// Failures shared by the ledger components. Operations wrap them with
// context, match them with errors.Is.
var (
	ErrUnauthorized          = errors.New("unauthorized")
	ErrInvalidAmount         = errors.New("invalid amount")
	ErrInvalidAccountID      = errors.New("invalid account id")
	ErrInsufficientBalance   = errors.New("insufficient balance")
	ErrInsufficientAllowance = errors.New("insufficient allowance")
	ErrNotApproved           = errors.New("not approved")
	ErrNoActiveListing       = errors.New("no active listing")
	ErrListingNotActive      = errors.New("listing not active")
	ErrNotOwner              = errors.New("not owner")
	ErrSelfPurchase          = errors.New("cannot buy own asset")
	ErrWrongAmount           = errors.New("wrong amount of value attached")
	ErrNothingToWithdraw     = errors.New("nothing to withdraw")
	ErrRelicNotExist         = errors.New("relic not exist")
	ErrBalanceOverflow       = errors.New("balance overflow")
	ErrUnknownRole           = errors.New("unknown role")
	ErrUnknownMarket         = errors.New("unknown market")
)
