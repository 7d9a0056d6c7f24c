package node

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/spf13/viper"

	"github.com/ultiledger/go-marketledger/db"
	"github.com/ultiledger/go-marketledger/ledger"
	"github.com/ultiledger/go-marketledger/market"
	"github.com/ultiledger/go-marketledger/util"
)

type Config struct {
	// network ID, seeds the market operator identities
	NetworkID string
	// listen address of the http server
	Addr string
	// database backend
	DBBackend string
	// database file path
	DBPath string
	// log level name
	LogLevel string
	// settlement currency of each market
	PackSettlement  market.Settlement
	RelicSettlement market.Settlement
	// state seeded into an empty ledger
	Genesis *ledger.Genesis
}

func NewConfig(v *viper.Viper) (*Config, error) {
	v.SetDefault("addr", ":8080")
	v.SetDefault("db_backend", "boltdb")
	v.SetDefault("log_level", "info")
	v.SetDefault("pack_settlement", string(market.SettleNative))
	v.SetDefault("relic_settlement", string(market.SettleGold))

	if v.GetString("network_id") == "" {
		return nil, errors.New("network ID is missing")
	}
	if v.GetString("admin") == "" {
		return nil, errors.New("admin account is missing")
	}
	backend := v.GetString("db_backend")
	if !isRegistered(backend) {
		return nil, fmt.Errorf("db backend %q is not supported", backend)
	}
	if backend != "memdb" && v.GetString("db_path") == "" {
		return nil, errors.New("db path is empty")
	}
	packSettlement, err := market.ParseSettlement(v.GetString("pack_settlement"))
	if err != nil {
		return nil, fmt.Errorf("parse pack settlement failed: %v", err)
	}
	relicSettlement, err := market.ParseSettlement(v.GetString("relic_settlement"))
	if err != nil {
		return nil, fmt.Errorf("parse relic settlement failed: %v", err)
	}

	funds, err := parseFunds(v.Get("genesis"))
	if err != nil {
		return nil, fmt.Errorf("parse genesis failed: %v", err)
	}

	c := Config{
		NetworkID:       v.GetString("network_id"),
		Addr:            v.GetString("addr"),
		DBBackend:       backend,
		DBPath:          v.GetString("db_path"),
		LogLevel:        v.GetString("log_level"),
		PackSettlement:  packSettlement,
		RelicSettlement: relicSettlement,
		Genesis: &ledger.Genesis{
			Admin:   v.GetString("admin"),
			Minters: v.GetStringSlice("minters"),
			Funds:   funds,
		},
	}

	return &c, nil
}

func isRegistered(backend string) bool {
	for _, b := range db.Backends() {
		if b == backend {
			return true
		}
	}
	return false
}

// parseFunds reads the genesis allocations, a list of
// {account, amount} entries with amount in whole native units such
// as "1.5". A list keeps account ids intact since viper lowercases
// map keys.
func parseFunds(g interface{}) (map[string]*big.Int, error) {
	funds := make(map[string]*big.Int)
	if g == nil {
		return funds, nil
	}
	entries, ok := g.([]interface{})
	if !ok {
		return nil, errors.New("genesis is not a list")
	}
	for i, e := range entries {
		entry, err := toStringMap(e)
		if err != nil {
			return nil, fmt.Errorf("genesis entry %d: %v", i, err)
		}
		acc, _ := entry["account"].(string)
		if acc == "" {
			return nil, fmt.Errorf("genesis entry %d has no account", i)
		}
		amount, err := util.ParseUnits(fmt.Sprint(entry["amount"]))
		if err != nil {
			return nil, fmt.Errorf("funds of %s: %v", acc, err)
		}
		if !util.IsPositive(amount) {
			return nil, fmt.Errorf("funds of %s must be positive", acc)
		}
		if prev, ok := funds[acc]; ok {
			amount = amount.Add(amount, prev)
		}
		funds[acc] = amount
	}
	return funds, nil
}

func toStringMap(e interface{}) (map[string]interface{}, error) {
	switch m := e.(type) {
	case map[string]interface{}:
		return m, nil
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(m))
		for k, v := range m {
			out[fmt.Sprint(k)] = v
		}
		return out, nil
	}
	return nil, fmt.Errorf("unexpected entry type %T", e)
}
