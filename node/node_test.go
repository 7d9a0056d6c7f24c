package node

import (
	"bytes"
	"encoding/json"
	"math/big"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ultiledger/go-marketledger/ledger"
	"github.com/ultiledger/go-marketledger/market"
	"github.com/ultiledger/go-marketledger/op"
	"github.com/ultiledger/go-marketledger/util"
)

func newTestNode(t *testing.T) *Node {
	funds, err := util.ParseUnits("5")
	require.NoError(t, err)
	n, err := NewNode(&Config{
		NetworkID:       "testnet",
		Addr:            "127.0.0.1:0",
		DBBackend:       "memdb",
		LogLevel:        "error",
		PackSettlement:  market.SettleNative,
		RelicSettlement: market.SettleGold,
		Genesis: &ledger.Genesis{
			Admin:   "admin",
			Minters: []string{"minter"},
			Funds:   map[string]*big.Int{"buyer": funds},
		},
	})
	require.NoError(t, err)
	return n
}

func TestNodeSubmit(t *testing.T) {
	n := newTestNode(t)
	require.NoError(t, n.Start())
	defer n.Stop()

	envs, err := n.Submit(&op.MintRelic{Caller: "admin", To: "seller", URI: "ipfs://relic/1"})
	require.NoError(t, err)
	require.Len(t, envs, 1)

	owner, err := n.Ledger().RelicOwner(100)
	require.NoError(t, err)
	assert.Equal(t, "seller", owner)

	_, err = n.Submit(&op.MintRelic{Caller: "buyer", To: "buyer", URI: "ipfs://relic/2"})
	assert.Error(t, err)
}

func TestNodeServesHTTP(t *testing.T) {
	n := newTestNode(t)
	require.NoError(t, n.Start())
	defer n.Stop()

	body := []byte(`{"type":"convert","caller":"buyer","value":580000000000000000}`)
	resp, err := http.Post("http://"+n.Addr()+"/marketledger/ops", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get("http://" + n.Addr() + "/marketledger/accounts/buyer")
	require.NoError(t, err)
	defer resp.Body.Close()
	var acc struct {
		Gold string `json:"gold"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&acc))
	assert.Equal(t, "1000000000000000000000", acc.Gold)
}

func TestNodeStop(t *testing.T) {
	n := newTestNode(t)
	require.NoError(t, n.Start())
	n.Stop()
	// stopping twice is harmless
	n.Stop()

	_, err := n.Submit(&op.MintRelic{Caller: "admin", To: "seller", URI: "ipfs://relic/1"})
	assert.Equal(t, ErrStopped, err)
}
