package api

import (
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ultiledger/go-marketledger/db/memdb"
	"github.com/ultiledger/go-marketledger/ledger"
	"github.com/ultiledger/go-marketledger/util"
)

func newServer(t *testing.T) (*httptest.Server, *ledger.Ledger) {
	l := ledger.New(memdb.New(), ledger.Config{NetworkID: "testnet"})
	funds, err := util.ParseUnits("10")
	require.NoError(t, err)
	_, err = l.Bootstrap(&ledger.Genesis{
		Admin:   "admin",
		Minters: []string{"minter"},
		Funds:   map[string]*big.Int{"buyer": funds},
	})
	require.NoError(t, err)

	srv := httptest.NewServer(NewHandler(l, SubmitFunc(l.Apply)))
	t.Cleanup(srv.Close)
	return srv, l
}

func post(t *testing.T, srv *httptest.Server, body string) *http.Response {
	resp, err := http.Post(srv.URL+"/marketledger/ops", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func get(t *testing.T, srv *httptest.Server, path string, v interface{}) int {
	resp, err := http.Get(srv.URL + "/marketledger" + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	if v != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
	}
	return resp.StatusCode
}

func TestSubmitOp(t *testing.T) {
	srv, l := newServer(t)

	resp := post(t, srv, `{"type":"mint_pack","caller":"minter","to":"seller","asset_id":1,"amount":5,"uri":"ipfs://pack/1"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var out OpResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.Len(t, out.Events, 1)
	assert.Equal(t, "PackMinted", out.Events[0].Name)

	bal, err := l.PackBalance("seller", 1)
	require.NoError(t, err)
	assert.Equal(t, uint64(5), bal)
}

func TestSubmitOpErrors(t *testing.T) {
	srv, _ := newServer(t)

	tests := []struct {
		body   string
		status int
	}{
		{`not json`, http.StatusBadRequest},
		{`{"type":"burn_everything","caller":"admin"}`, http.StatusBadRequest},
		{`{"type":"mint_pack","to":"seller","asset_id":1,"amount":5}`, http.StatusBadRequest},
		{`{"type":"mint_pack","caller":"buyer","to":"seller","asset_id":1,"amount":5}`, http.StatusForbidden},
		{`{"type":"cancel_pack","caller":"seller","asset_id":1}`, http.StatusConflict},
		{`{"type":"gold_transfer","caller":"buyer","to":"seller","amount":1}`, http.StatusConflict},
		{`{"type":"grant_role","caller":"buyer","role":"BURNER","account":"buyer"}`, http.StatusForbidden},
		{`{"type":"grant_role","caller":"admin","role":"BURNER","account":"buyer"}`, http.StatusBadRequest},
		{`{"type":"withdraw_fees","caller":"admin","market":"bogus","to":"admin"}`, http.StatusBadRequest},
	}
	for _, test := range tests {
		resp := post(t, srv, test.body)
		assert.Equal(t, test.status, resp.StatusCode, test.body)

		var e ErrorResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&e))
		assert.NotEmpty(t, e.Error)
	}
}

func TestQueryAccountAndGold(t *testing.T) {
	srv, _ := newServer(t)

	resp := post(t, srv, `{"type":"convert","caller":"buyer","value":580000000000000000}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var acc AccountResponse
	assert.Equal(t, http.StatusOK, get(t, srv, "/accounts/buyer", &acc))
	assert.Equal(t, "9420000000000000000", acc.Native)
	assert.Equal(t, "1000000000000000000000", acc.Gold)

	var gold GoldResponse
	assert.Equal(t, http.StatusOK, get(t, srv, "/gold", &gold))
	assert.Equal(t, "GOLD", gold.Symbol)
	assert.Equal(t, 18, gold.Decimals)
	assert.Equal(t, "1000000000000000000000", gold.Supply)
	assert.Equal(t, "580000000000000000", gold.Reserve)
}

func TestQueryRelics(t *testing.T) {
	srv, _ := newServer(t)

	resp := post(t, srv, `{"type":"mint_relic","caller":"admin","to":"seller","uri":"ipfs://relic/a"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var ids []uint64
	assert.Equal(t, http.StatusOK, get(t, srv, "/relics", &ids))
	assert.Equal(t, []uint64{100}, ids)

	var r RelicResponse
	assert.Equal(t, http.StatusOK, get(t, srv, "/relics/100", &r))
	assert.Equal(t, "seller", r.Owner)
	assert.Equal(t, "ipfs://relic/a", r.URI)

	var e ErrorResponse
	assert.Equal(t, http.StatusNotFound, get(t, srv, "/relics/101", &e))
	assert.Equal(t, http.StatusBadRequest, get(t, srv, "/relics/abc", &e))
}

func TestQueryListingsAndMarket(t *testing.T) {
	srv, l := newServer(t)
	op := l.MarketOperator("packs")

	for _, body := range []string{
		`{"type":"mint_pack","caller":"minter","to":"seller","asset_id":7,"amount":4,"uri":"ipfs://pack/7"}`,
		`{"type":"set_pack_approval_for_all","caller":"seller","operator":"` + op + `","approved":true}`,
		`{"type":"list_pack","caller":"seller","asset_id":7,"amount":4,"unit_price":1000000000000000000}`,
	} {
		resp := post(t, srv, body)
		require.Equal(t, http.StatusOK, resp.StatusCode, body)
	}

	var listings []*PackListingResponse
	assert.Equal(t, http.StatusOK, get(t, srv, "/listings/packs", &listings))
	require.Len(t, listings, 1)
	assert.Equal(t, "1000000000000000000", listings[0].UnitPrice)
	assert.True(t, listings[0].Active)

	resp := post(t, srv, `{"type":"fulfill_pack","caller":"buyer","seller":"seller","asset_id":7,"amount":4,"value":4000000000000000000}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Equal(t, http.StatusOK, get(t, srv, "/listings/packs", &listings))
	assert.Empty(t, listings)

	var m MarketResponse
	assert.Equal(t, http.StatusOK, get(t, srv, "/markets/packs", &m))
	assert.Equal(t, op, m.Operator)
	assert.Equal(t, "native", m.Settlement)
	assert.Equal(t, "100000000000000000", m.Fees)

	var e ErrorResponse
	assert.Equal(t, http.StatusNotFound, get(t, srv, "/markets/bonds", &e))
}

func TestQueryEvents(t *testing.T) {
	srv, _ := newServer(t)

	var all []json.RawMessage
	assert.Equal(t, http.StatusOK, get(t, srv, "/events", &all))
	// admin and minter grants plus one funding
	assert.Len(t, all, 3)

	var some []json.RawMessage
	assert.Equal(t, http.StatusOK, get(t, srv, "/events?from=1&limit=1", &some))
	assert.Len(t, some, 1)
}

func TestSubmitOpTooLarge(t *testing.T) {
	srv, _ := newServer(t)

	uri := strings.Repeat("x", maxOpBytes)
	resp := post(t, srv, `{"type":"mint_pack","caller":"minter","to":"seller","asset_id":1,"amount":5,"uri":"`+uri+`"}`)
	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
}
