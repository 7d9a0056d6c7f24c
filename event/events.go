// Package event defines the records every ledger write emits. Each
// event kind is its own struct with fixed fields, the Type tag is the
// only thing consumers switch on.
package event

import (
	"math/big"
)

// Type identifies the kind of an event.
type Type uint16

const (
	EvRoleGranted Type = iota + 1
	EvRoleRevoked
	EvNativeFunded
	EvGoldConverted
	EvNativeWithdrawn
	EvGoldTransfer
	EvGoldApproval
	EvPackMinted
	EvPackTransfer
	EvApprovalForAll
	EvRelicMinted
	EvRelicTransfer
	EvRelicApproval
	EvPackListed
	EvPackListingCancelled
	EvPackSold
	EvRelicListed
	EvRelicListingCancelled
	EvRelicSold
	EvFeesWithdrawn
)

var typeNames = map[Type]string{
	EvRoleGranted:           "RoleGranted",
	EvRoleRevoked:           "RoleRevoked",
	EvNativeFunded:          "NativeFunded",
	EvGoldConverted:         "GoldConverted",
	EvNativeWithdrawn:       "NativeWithdrawn",
	EvGoldTransfer:          "GoldTransfer",
	EvGoldApproval:          "GoldApproval",
	EvPackMinted:            "PackMinted",
	EvPackTransfer:          "PackTransfer",
	EvApprovalForAll:        "ApprovalForAll",
	EvRelicMinted:           "RelicMinted",
	EvRelicTransfer:         "RelicTransfer",
	EvRelicApproval:         "RelicApproval",
	EvPackListed:            "PackListed",
	EvPackListingCancelled:  "PackListingCancelled",
	EvPackSold:              "PackSold",
	EvRelicListed:           "RelicListed",
	EvRelicListingCancelled: "RelicListingCancelled",
	EvRelicSold:             "RelicSold",
	EvFeesWithdrawn:         "FeesWithdrawn",
}

func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return "Unknown"
}

// Event is implemented by every event payload.
type Event interface {
	GetType() Type
}

type RoleGranted struct {
	Role    string `json:"role"`
	Account string `json:"account"`
	Sender  string `json:"sender"`
}

func (e RoleGranted) GetType() Type { return EvRoleGranted }

type RoleRevoked struct {
	Role    string `json:"role"`
	Account string `json:"account"`
	Sender  string `json:"sender"`
}

func (e RoleRevoked) GetType() Type { return EvRoleRevoked }

// NativeFunded is emitted when native value enters the ledger from
// outside, at genesis or through an admin deposit.
type NativeFunded struct {
	Account string   `json:"account"`
	Amount  *big.Int `json:"amount"`
}

func (e NativeFunded) GetType() Type { return EvNativeFunded }

type GoldConverted struct {
	Account string   `json:"account"`
	Value   *big.Int `json:"value"`
	Units   *big.Int `json:"units"`
}

func (e GoldConverted) GetType() Type { return EvGoldConverted }

type NativeWithdrawn struct {
	To     string   `json:"to"`
	Amount *big.Int `json:"amount"`
}

func (e NativeWithdrawn) GetType() Type { return EvNativeWithdrawn }

type GoldTransfer struct {
	From   string   `json:"from"`
	To     string   `json:"to"`
	Amount *big.Int `json:"amount"`
}

func (e GoldTransfer) GetType() Type { return EvGoldTransfer }

type GoldApproval struct {
	Owner   string   `json:"owner"`
	Spender string   `json:"spender"`
	Amount  *big.Int `json:"amount"`
}

func (e GoldApproval) GetType() Type { return EvGoldApproval }

// PackMinted carries the canonical uri of the asset id, which is the
// first minted one even when the mint call supplied another.
type PackMinted struct {
	To      string `json:"to"`
	AssetID uint64 `json:"asset_id"`
	Amount  uint64 `json:"amount"`
	URI     string `json:"uri"`
}

func (e PackMinted) GetType() Type { return EvPackMinted }

type PackTransfer struct {
	Operator string `json:"operator"`
	From     string `json:"from"`
	To       string `json:"to"`
	AssetID  uint64 `json:"asset_id"`
	Amount   uint64 `json:"amount"`
}

func (e PackTransfer) GetType() Type { return EvPackTransfer }

// ApprovalForAll is shared by the pack ledger and the relic registry,
// Registry tells them apart.
type ApprovalForAll struct {
	Registry string `json:"registry"`
	Owner    string `json:"owner"`
	Operator string `json:"operator"`
	Approved bool   `json:"approved"`
}

func (e ApprovalForAll) GetType() Type { return EvApprovalForAll }

type RelicMinted struct {
	To      string `json:"to"`
	AssetID uint64 `json:"asset_id"`
	URI     string `json:"uri"`
}

func (e RelicMinted) GetType() Type { return EvRelicMinted }

type RelicTransfer struct {
	From    string `json:"from"`
	To      string `json:"to"`
	AssetID uint64 `json:"asset_id"`
}

func (e RelicTransfer) GetType() Type { return EvRelicTransfer }

type RelicApproval struct {
	Owner    string `json:"owner"`
	Approved string `json:"approved"`
	AssetID  uint64 `json:"asset_id"`
}

func (e RelicApproval) GetType() Type { return EvRelicApproval }

type PackListed struct {
	Seller    string   `json:"seller"`
	AssetID   uint64   `json:"asset_id"`
	Amount    uint64   `json:"amount"`
	UnitPrice *big.Int `json:"unit_price"`
	Replaced  bool     `json:"replaced"`
}

func (e PackListed) GetType() Type { return EvPackListed }

type PackListingCancelled struct {
	Seller  string `json:"seller"`
	AssetID uint64 `json:"asset_id"`
}

func (e PackListingCancelled) GetType() Type { return EvPackListingCancelled }

type PackSold struct {
	Seller     string   `json:"seller"`
	Buyer      string   `json:"buyer"`
	AssetID    uint64   `json:"asset_id"`
	Amount     uint64   `json:"amount"`
	TotalPrice *big.Int `json:"total_price"`
	Fee        *big.Int `json:"fee"`
	Remaining  uint64   `json:"remaining"`
}

func (e PackSold) GetType() Type { return EvPackSold }

type RelicListed struct {
	Seller   string   `json:"seller"`
	AssetID  uint64   `json:"asset_id"`
	Price    *big.Int `json:"price"`
	Replaced bool     `json:"replaced"`
}

func (e RelicListed) GetType() Type { return EvRelicListed }

type RelicListingCancelled struct {
	Seller  string `json:"seller"`
	AssetID uint64 `json:"asset_id"`
}

func (e RelicListingCancelled) GetType() Type { return EvRelicListingCancelled }

type RelicSold struct {
	Seller  string   `json:"seller"`
	Buyer   string   `json:"buyer"`
	AssetID uint64   `json:"asset_id"`
	Price   *big.Int `json:"price"`
	Fee     *big.Int `json:"fee"`
}

func (e RelicSold) GetType() Type { return EvRelicSold }

type FeesWithdrawn struct {
	Market string   `json:"market"`
	To     string   `json:"to"`
	Amount *big.Int `json:"amount"`
}

func (e FeesWithdrawn) GetType() Type { return EvFeesWithdrawn }

// New returns an empty payload for the given type, used when decoding
// journaled envelopes.
func New(t Type) (Event, error) {
	switch t {
	case EvRoleGranted:
		return &RoleGranted{}, nil
	case EvRoleRevoked:
		return &RoleRevoked{}, nil
	case EvNativeFunded:
		return &NativeFunded{}, nil
	case EvGoldConverted:
		return &GoldConverted{}, nil
	case EvNativeWithdrawn:
		return &NativeWithdrawn{}, nil
	case EvGoldTransfer:
		return &GoldTransfer{}, nil
	case EvGoldApproval:
		return &GoldApproval{}, nil
	case EvPackMinted:
		return &PackMinted{}, nil
	case EvPackTransfer:
		return &PackTransfer{}, nil
	case EvApprovalForAll:
		return &ApprovalForAll{}, nil
	case EvRelicMinted:
		return &RelicMinted{}, nil
	case EvRelicTransfer:
		return &RelicTransfer{}, nil
	case EvRelicApproval:
		return &RelicApproval{}, nil
	case EvPackListed:
		return &PackListed{}, nil
	case EvPackListingCancelled:
		return &PackListingCancelled{}, nil
	case EvPackSold:
		return &PackSold{}, nil
	case EvRelicListed:
		return &RelicListed{}, nil
	case EvRelicListingCancelled:
		return &RelicListingCancelled{}, nil
	case EvRelicSold:
		return &RelicSold{}, nil
	case EvFeesWithdrawn:
		return &FeesWithdrawn{}, nil
	}
	return nil, ErrUnknownType
}
