package node

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "github.com/ultiledger/go-marketledger/db/boltdb"
	_ "github.com/ultiledger/go-marketledger/db/memdb"
	"github.com/ultiledger/go-marketledger/market"
)

func baseViper() *viper.Viper {
	v := viper.New()
	v.Set("network_id", "testnet")
	v.Set("admin", "Admin")
	v.Set("db_backend", "memdb")
	return v
}

func TestNewConfig(t *testing.T) {
	v := baseViper()
	v.Set("minters", []string{"MinterA", "MinterB"})
	v.Set("relic_settlement", "native")
	v.Set("genesis", []interface{}{
		map[string]interface{}{"account": "BuyerX", "amount": "1.5"},
		map[string]interface{}{"account": "SellerY", "amount": 2},
		map[string]interface{}{"account": "BuyerX", "amount": "0.5"},
	})

	c, err := NewConfig(v)
	require.NoError(t, err)
	assert.Equal(t, "testnet", c.NetworkID)
	assert.Equal(t, ":8080", c.Addr)
	assert.Equal(t, "info", c.LogLevel)
	assert.Equal(t, market.SettleNative, c.PackSettlement)
	assert.Equal(t, market.SettleNative, c.RelicSettlement)
	assert.Equal(t, "Admin", c.Genesis.Admin)
	assert.Equal(t, []string{"MinterA", "MinterB"}, c.Genesis.Minters)
	require.Len(t, c.Genesis.Funds, 2)
	assert.Equal(t, "2000000000000000000", c.Genesis.Funds["BuyerX"].String())
	assert.Equal(t, "2000000000000000000", c.Genesis.Funds["SellerY"].String())
}

func TestNewConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		set  func(v *viper.Viper)
	}{
		{"no network id", func(v *viper.Viper) { v.Set("network_id", "") }},
		{"no admin", func(v *viper.Viper) { v.Set("admin", "") }},
		{"unknown backend", func(v *viper.Viper) { v.Set("db_backend", "leveldb") }},
		{"bolt without path", func(v *viper.Viper) { v.Set("db_backend", "boltdb") }},
		{"bad settlement", func(v *viper.Viper) { v.Set("pack_settlement", "silver") }},
		{"genesis not a list", func(v *viper.Viper) { v.Set("genesis", "lots") }},
		{"genesis without account", func(v *viper.Viper) {
			v.Set("genesis", []interface{}{map[string]interface{}{"amount": "1"}})
		}},
		{"genesis zero amount", func(v *viper.Viper) {
			v.Set("genesis", []interface{}{map[string]interface{}{"account": "a", "amount": "0"}})
		}},
		{"genesis bad amount", func(v *viper.Viper) {
			v.Set("genesis", []interface{}{map[string]interface{}{"account": "a", "amount": "one"}})
		}},
	}
	for _, test := range tests {
		v := baseViper()
		test.set(v)
		_, err := NewConfig(v)
		assert.Error(t, err, test.name)
	}
}
