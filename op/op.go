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

// Package op holds one struct per public write operation. An operation
// checks authorization first, then drives the managers and emits its
// events, all against one transaction owned by the caller.
package op

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ultiledger/go-marketledger/access"
	"github.com/ultiledger/go-marketledger/account"
	"github.com/ultiledger/go-marketledger/asset"
	"github.com/ultiledger/go-marketledger/currency"
	"github.com/ultiledger/go-marketledger/db"
	"github.com/ultiledger/go-marketledger/event"
	"github.com/ultiledger/go-marketledger/market"
	"github.com/ultiledger/go-marketledger/relic"
)

var (
	ErrUnknownOp = errors.New("unknown operation type")
	ErrNoCaller  = errors.New("operation has no caller")
)

// Env is the ledger state an operation works on.
type Env struct {
	Roles  *access.Manager
	Native *account.Manager
	Gold   *currency.Manager
	Packs  *asset.Manager
	Relics *relic.Manager
	Market *market.Manager
}

// Op represents the interface with which every
// ledger write operation should comply.
type Op interface {
	// Type is the tag the operation is known by on the wire.
	Type() string
	// Sender is the identity invoking the operation.
	Sender() string
	Apply(env *Env, dt db.Tx, em event.Emitter) error
}

var registry = map[string]func() Op{
	"grant_role":                 func() Op { return &GrantRole{} },
	"revoke_role":                func() Op { return &RevokeRole{} },
	"renounce_role":              func() Op { return &RenounceRole{} },
	"fund_native":                func() Op { return &FundNative{} },
	"convert":                    func() Op { return &Convert{} },
	"withdraw_native":            func() Op { return &WithdrawNative{} },
	"gold_transfer":              func() Op { return &GoldTransfer{} },
	"gold_approve":               func() Op { return &GoldApprove{} },
	"gold_transfer_from":         func() Op { return &GoldTransferFrom{} },
	"mint_pack":                  func() Op { return &MintPack{} },
	"set_pack_approval_for_all":  func() Op { return &SetPackApprovalForAll{} },
	"transfer_pack":              func() Op { return &TransferPack{} },
	"mint_relic":                 func() Op { return &MintRelic{} },
	"approve_relic":              func() Op { return &ApproveRelic{} },
	"set_relic_approval_for_all": func() Op { return &SetRelicApprovalForAll{} },
	"transfer_relic":             func() Op { return &TransferRelic{} },
	"list_pack":                  func() Op { return &ListPack{} },
	"cancel_pack":                func() Op { return &CancelPack{} },
	"fulfill_pack":               func() Op { return &FulfillPack{} },
	"list_relic":                 func() Op { return &ListRelic{} },
	"cancel_relic":               func() Op { return &CancelRelic{} },
	"fulfill_relic":              func() Op { return &FulfillRelic{} },
	"withdraw_fees":              func() Op { return &WithdrawFees{} },
}

// Decode builds the operation described by a JSON object whose
// "type" field names the operation.
func Decode(b []byte) (Op, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(b, &head); err != nil {
		return nil, fmt.Errorf("decode operation failed: %v", err)
	}
	ctor, ok := registry[head.Type]
	if !ok {
		return nil, fmt.Errorf("%q: %w", head.Type, ErrUnknownOp)
	}
	o := ctor()
	if err := json.Unmarshal(b, o); err != nil {
		return nil, fmt.Errorf("decode %s failed: %v", head.Type, err)
	}
	if o.Sender() == "" {
		return nil, ErrNoCaller
	}
	return o, nil
}

// Encode renders o as the JSON object Decode accepts.
func Encode(o Op) ([]byte, error) {
	b, err := json.Marshal(o)
	if err != nil {
		return nil, fmt.Errorf("encode %s failed: %v", o.Type(), err)
	}
	fields := make(map[string]json.RawMessage)
	if err := json.Unmarshal(b, &fields); err != nil {
		return nil, fmt.Errorf("encode %s failed: %v", o.Type(), err)
	}
	typ, _ := json.Marshal(o.Type())
	fields["type"] = typ
	return json.Marshal(fields)
}
