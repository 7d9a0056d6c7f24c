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

// Package ledger applies operations one at a time, each in its own
// database transaction, and serves the read views over committed state.
package ledger

import (
	"errors"
	"fmt"
	"math/big"
	"sort"
	"sync"

	"github.com/ultiledger/go-marketledger/access"
	"github.com/ultiledger/go-marketledger/account"
	"github.com/ultiledger/go-marketledger/asset"
	"github.com/ultiledger/go-marketledger/crypto"
	"github.com/ultiledger/go-marketledger/currency"
	"github.com/ultiledger/go-marketledger/db"
	"github.com/ultiledger/go-marketledger/event"
	"github.com/ultiledger/go-marketledger/log"
	"github.com/ultiledger/go-marketledger/market"
	"github.com/ultiledger/go-marketledger/op"
	"github.com/ultiledger/go-marketledger/relic"
	"github.com/ultiledger/go-marketledger/types"
	"github.com/ultiledger/go-marketledger/util"
)

var ErrNoAdmin = errors.New("genesis has no admin")

const (
	ledgerBucket = "LEDGER"
	// written once with the genesis state, never removed
	genesisKey = "genesis"
)

type Config struct {
	NetworkID       string
	PackSettlement  market.Settlement
	RelicSettlement market.Settlement
}

// Genesis is the state seeded into an empty ledger.
type Genesis struct {
	Admin   string
	Minters []string
	// native value allocated to accounts
	Funds map[string]*big.Int
}

type Ledger struct {
	rwm      sync.RWMutex
	database db.Database
	journal  *event.Journal
	env      *op.Env
}

func New(d db.Database, cfg Config) *Ledger {
	if cfg.PackSettlement == "" {
		cfg.PackSettlement = market.SettleNative
	}
	if cfg.RelicSettlement == "" {
		cfg.RelicSettlement = market.SettleGold
	}
	env := &op.Env{
		Roles:  access.NewManager(d),
		Native: account.NewManager(d),
		Gold:   currency.NewManager(d),
		Packs:  asset.NewManager(d),
		Relics: relic.NewManager(d),
	}
	mcfg := market.Config{
		PackMarket:      crypto.DeriveAccountID(cfg.NetworkID, string(market.KindPack)),
		RelicMarket:     crypto.DeriveAccountID(cfg.NetworkID, string(market.KindRelic)),
		PackSettlement:  cfg.PackSettlement,
		RelicSettlement: cfg.RelicSettlement,
	}
	env.Market = market.NewManager(d, mcfg, env.Native, env.Gold, env.Packs, env.Relics)
	if err := d.NewBucket(ledgerBucket); err != nil {
		log.Fatalf("create db bucket %s failed: %v", ledgerBucket, err)
	}
	log.Infow("ledger created",
		"packMarket", mcfg.PackMarket, "packSettlement", mcfg.PackSettlement,
		"relicMarket", mcfg.RelicMarket, "relicSettlement", mcfg.RelicSettlement)
	return &Ledger{
		database: d,
		journal:  event.NewJournal(d),
		env:      env,
	}
}

// Bootstrap seeds the admin, the minters and the native allocations
// into a fresh ledger. A ledger bootstrapped before is left untouched,
// even when it has no admin left.
func (l *Ledger) Bootstrap(g *Genesis) ([]*event.Envelope, error) {
	if g.Admin == "" {
		return nil, ErrNoAdmin
	}
	l.rwm.Lock()
	defer l.rwm.Unlock()

	marker, err := l.database.Get(ledgerBucket, []byte(genesisKey))
	if err != nil {
		return nil, fmt.Errorf("get genesis marker failed: %v", err)
	}
	if marker != nil {
		log.Infow("ledger already bootstrapped", "admin", string(marker))
		return nil, nil
	}

	return l.apply("bootstrap", g.Admin, func(dt db.Tx, em event.Emitter) error {
		if err := dt.Put(ledgerBucket, []byte(genesisKey), []byte(g.Admin)); err != nil {
			return fmt.Errorf("save genesis marker failed: %v", err)
		}
		if _, err := l.env.Roles.Add(dt, access.RoleAdmin, g.Admin); err != nil {
			return err
		}
		if err := em.Emit(&event.RoleGranted{Role: access.RoleAdmin, Account: g.Admin}); err != nil {
			return err
		}
		for _, minter := range g.Minters {
			added, err := l.env.Roles.Add(dt, access.RoleMinter, minter)
			if err != nil {
				return err
			}
			if !added {
				continue
			}
			if err := em.Emit(&event.RoleGranted{Role: access.RoleMinter, Account: minter, Sender: g.Admin}); err != nil {
				return err
			}
		}
		// sorted so the journal is reproducible
		accounts := make([]string, 0, len(g.Funds))
		for acc := range g.Funds {
			accounts = append(accounts, acc)
		}
		sort.Strings(accounts)
		for _, acc := range accounts {
			amount := g.Funds[acc]
			if !util.IsPositive(amount) {
				return fmt.Errorf("genesis funds of %s: %w", acc, types.ErrInvalidAmount)
			}
			if err := l.env.Native.Credit(dt, acc, amount); err != nil {
				return err
			}
			if err := em.Emit(&event.NativeFunded{Account: acc, Amount: util.Copy(amount)}); err != nil {
				return err
			}
		}
		return nil
	})
}

// Apply runs o in a fresh transaction. The transaction commits when o
// succeeds and rolls back otherwise, taking the journaled events with
// it. The committed events are returned.
func (l *Ledger) Apply(o op.Op) ([]*event.Envelope, error) {
	l.rwm.Lock()
	defer l.rwm.Unlock()
	return l.apply(o.Type(), o.Sender(), func(dt db.Tx, em event.Emitter) error {
		return o.Apply(l.env, dt, em)
	})
}

// apply must be called with the write lock held.
func (l *Ledger) apply(name string, caller string, fn func(dt db.Tx, em event.Emitter) error) ([]*event.Envelope, error) {
	dt, err := l.database.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin transaction failed: %v", err)
	}
	rec := event.NewRecorder(l.journal, dt)
	if err := fn(dt, rec); err != nil {
		if rerr := dt.Rollback(); rerr != nil {
			log.Errorw("rollback failed", "op", name, "err", rerr)
		}
		log.Infow("operation rejected", "op", name, "caller", caller, "err", err)
		return nil, err
	}
	if err := dt.Commit(); err != nil {
		return nil, fmt.Errorf("commit %s failed: %v", name, err)
	}
	log.Debugw("operation committed", "op", name, "caller", caller, "events", len(rec.Emitted))
	return rec.Emitted, nil
}

// MarketOperator returns the identity the market of kind acts as.
// Sellers approve it and buyers grant it gold allowances.
func (l *Ledger) MarketOperator(kind market.Kind) string {
	return l.env.Market.Operator(kind)
}

// Settlement returns the currency the market of kind settles in.
func (l *Ledger) Settlement(kind market.Kind) market.Settlement {
	return l.env.Market.SettlementOf(kind)
}
