package ledger

import (
	"errors"
	"math/big"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ultiledger/go-marketledger/access"
	"github.com/ultiledger/go-marketledger/db/boltdb"
	"github.com/ultiledger/go-marketledger/db/memdb"
	"github.com/ultiledger/go-marketledger/event"
	"github.com/ultiledger/go-marketledger/market"
	"github.com/ultiledger/go-marketledger/op"
	"github.com/ultiledger/go-marketledger/types"
	"github.com/ultiledger/go-marketledger/util"
)

func ether(s string) *big.Int {
	v, err := util.ParseUnits(s)
	if err != nil {
		panic(err)
	}
	return v
}

func newLedger(t *testing.T) *Ledger {
	l := New(memdb.New(), Config{NetworkID: "testnet"})
	_, err := l.Bootstrap(&Genesis{
		Admin:   "admin",
		Minters: []string{"minter"},
		Funds: map[string]*big.Int{
			"buyer":  ether("100"),
			"seller": ether("1"),
		},
	})
	require.NoError(t, err)
	return l
}

func mustApply(t *testing.T, l *Ledger, o op.Op) []*event.Envelope {
	envs, err := l.Apply(o)
	require.NoError(t, err)
	return envs
}

func lastSeq(t *testing.T, l *Ledger) uint64 {
	envs, err := l.Events(0, 0)
	require.NoError(t, err)
	if len(envs) == 0 {
		return 0
	}
	return envs[len(envs)-1].Seq
}

// listPacks mints amount units of asset 1 to seller and lists them all.
func listPacks(t *testing.T, l *Ledger, amount uint64, unitPrice *big.Int) {
	mustApply(t, l, &op.MintPack{Caller: "minter", To: "seller", AssetID: 1, Amount: amount, URI: "ipfs://pack"})
	mustApply(t, l, &op.SetPackApprovalForAll{Caller: "seller", Operator: l.MarketOperator(market.KindPack), Approved: true})
	mustApply(t, l, &op.ListPack{Caller: "seller", AssetID: 1, Amount: amount, UnitPrice: unitPrice})
}

func TestBootstrap(t *testing.T) {
	l := newLedger(t)

	ok, err := l.HasRole(access.RoleAdmin, "admin")
	assert.Nil(t, err)
	assert.True(t, ok)
	minters, _ := l.RoleMembers(access.RoleMinter)
	assert.Equal(t, []string{"minter"}, minters)

	envs, _ := l.Events(0, 0)
	require.Len(t, envs, 4)
	assert.Equal(t, event.EvRoleGranted, envs[0].Type)
	assert.Equal(t, event.EvNativeFunded, envs[2].Type)
	funded, err := envs[2].Decode()
	require.NoError(t, err)
	assert.Equal(t, "buyer", funded.(*event.NativeFunded).Account)

	// a second bootstrap leaves the ledger alone
	envs, err = l.Bootstrap(&Genesis{Admin: "other"})
	assert.Nil(t, err)
	assert.Nil(t, envs)
	ok, _ = l.HasRole(access.RoleAdmin, "other")
	assert.False(t, ok)

	_, err = New(memdb.New(), Config{}).Bootstrap(&Genesis{})
	assert.Equal(t, ErrNoAdmin, err)

	assert.Equal(t, market.SettleNative, l.Settlement(market.KindPack))
	assert.Equal(t, market.SettleGold, l.Settlement(market.KindRelic))
	assert.NotEqual(t, l.MarketOperator(market.KindPack), l.MarketOperator(market.KindRelic))
}

func TestMintGrowsBalanceAndSupply(t *testing.T) {
	l := newLedger(t)
	for i, amount := range []uint64{1, 7, 100} {
		before, _ := l.PackBalance("holder", 5)
		supplyBefore, _ := l.PackSupply(5)
		uri := "ipfs://" + string(rune('a'+i))
		mustApply(t, l, &op.MintPack{Caller: "minter", To: "holder", AssetID: 5, Amount: amount, URI: uri})
		after, _ := l.PackBalance("holder", 5)
		supplyAfter, _ := l.PackSupply(5)
		assert.Equal(t, before+amount, after)
		assert.Equal(t, supplyBefore+amount, supplyAfter)
	}
	uri, err := l.PackURI(5)
	assert.Nil(t, err)
	assert.Equal(t, "ipfs://a", uri)
}

func TestPackSaleScenario(t *testing.T) {
	l := newLedger(t)
	listPacks(t, l, 10, big.NewInt(1))

	buyerNative, _ := l.NativeBalance("buyer")
	envs := mustApply(t, l, &op.FulfillPack{Caller: "buyer", Seller: "seller", AssetID: 1, Amount: 10, Value: big.NewInt(10)})
	require.Len(t, envs, 2)
	assert.Equal(t, event.EvPackTransfer, envs[0].Type)
	assert.Equal(t, event.EvPackSold, envs[1].Type)

	buyerBal, _ := l.PackBalance("buyer", 1)
	sellerBal, _ := l.PackBalance("seller", 1)
	assert.Equal(t, uint64(10), buyerBal)
	assert.Equal(t, uint64(0), sellerBal)

	listing, _ := l.PackListing("seller", 1)
	assert.False(t, listing.Active)
	active, _ := l.ActivePackListings()
	assert.Empty(t, active)

	fees, _ := l.AccumulatedFees(market.KindPack)
	assert.Equal(t, big.NewInt(10*250/10000).String(), fees.String())

	buyerNativeAfter, _ := l.NativeBalance("buyer")
	assert.Equal(t, new(big.Int).Sub(buyerNative, big.NewInt(10)).String(), buyerNativeAfter.String())
}

func TestFeeSplit(t *testing.T) {
	for _, price := range []string{"0.000000000000000039", "0.00000000000000004", "1", "50", "12.3456789"} {
		l := newLedger(t)
		listPacks(t, l, 3, ether(price))
		total := new(big.Int).Mul(ether(price), big.NewInt(2))

		sellerBefore, _ := l.NativeBalance("seller")
		envs := mustApply(t, l, &op.FulfillPack{Caller: "buyer", Seller: "seller", AssetID: 1, Amount: 2, Value: total})
		ev, err := envs[1].Decode()
		require.NoError(t, err)
		sold := ev.(*event.PackSold)

		sellerAfter, _ := l.NativeBalance("seller")
		proceeds := new(big.Int).Sub(sellerAfter, sellerBefore)
		expectedFee := new(big.Int).Quo(new(big.Int).Mul(total, big.NewInt(250)), big.NewInt(10000))

		assert.Equal(t, total.String(), sold.TotalPrice.String())
		assert.Equal(t, expectedFee.String(), sold.Fee.String())
		assert.Equal(t, total.String(), new(big.Int).Add(proceeds, sold.Fee).String())
		assert.Equal(t, uint64(1), sold.Remaining)
	}
}

func TestWrongAmountChangesNothing(t *testing.T) {
	l := newLedger(t)
	listPacks(t, l, 10, big.NewInt(1))
	seq := lastSeq(t, l)

	_, err := l.Apply(&op.FulfillPack{Caller: "buyer", Seller: "seller", AssetID: 1, Amount: 10, Value: big.NewInt(11)})
	assert.True(t, errors.Is(err, types.ErrWrongAmount))

	buyerNative, _ := l.NativeBalance("buyer")
	assert.Equal(t, ether("100").String(), buyerNative.String())
	sellerBal, _ := l.PackBalance("seller", 1)
	assert.Equal(t, uint64(10), sellerBal)
	assert.Equal(t, seq, lastSeq(t, l))
}

func TestFailedTransferRollsBackPayment(t *testing.T) {
	l := newLedger(t)
	listPacks(t, l, 10, ether("1"))

	// the seller moves units away after listing
	mustApply(t, l, &op.TransferPack{Caller: "seller", From: "seller", To: "elsewhere", AssetID: 1, Amount: 5})
	seq := lastSeq(t, l)

	_, err := l.Apply(&op.FulfillPack{Caller: "buyer", Seller: "seller", AssetID: 1, Amount: 10, Value: ether("10")})
	assert.True(t, errors.Is(err, types.ErrInsufficientBalance))

	// payment was taken inside the transaction and rolled back with it
	buyerNative, _ := l.NativeBalance("buyer")
	assert.Equal(t, ether("100").String(), buyerNative.String())
	sellerNative, _ := l.NativeBalance("seller")
	assert.Equal(t, ether("1").String(), sellerNative.String())
	fees, _ := l.AccumulatedFees(market.KindPack)
	assert.Equal(t, "0", fees.String())
	listing, _ := l.PackListing("seller", 1)
	assert.True(t, listing.Active)
	assert.Equal(t, uint64(10), listing.Amount)
	assert.Equal(t, seq, lastSeq(t, l))

	// a smaller purchase still goes through
	mustApply(t, l, &op.FulfillPack{Caller: "buyer", Seller: "seller", AssetID: 1, Amount: 5, Value: ether("5")})
	listing, _ = l.PackListing("seller", 1)
	assert.True(t, listing.Active)
	assert.Equal(t, uint64(5), listing.Amount)
}

func TestCancelThenFulfill(t *testing.T) {
	l := newLedger(t)
	listPacks(t, l, 10, big.NewInt(1))

	mustApply(t, l, &op.CancelPack{Caller: "seller", AssetID: 1})
	_, err := l.Apply(&op.FulfillPack{Caller: "buyer", Seller: "seller", AssetID: 1, Amount: 1, Value: big.NewInt(1)})
	assert.True(t, errors.Is(err, types.ErrListingNotActive))
	_, err = l.Apply(&op.CancelPack{Caller: "seller", AssetID: 1})
	assert.True(t, errors.Is(err, types.ErrNoActiveListing))
}

func TestConvertScenario(t *testing.T) {
	l := newLedger(t)

	envs := mustApply(t, l, &op.Convert{Caller: "buyer", Value: ether("0.00058")})
	require.Len(t, envs, 1)
	gold, _ := l.GoldBalance("buyer")
	assert.Equal(t, ether("1").String(), gold.String())
	reserve, _ := l.Reserve()
	assert.Equal(t, ether("0.00058").String(), reserve.String())
	supply, _ := l.GoldSupply()
	assert.Equal(t, ether("1").String(), supply.String())

	_, err := l.Apply(&op.Convert{Caller: "buyer", Value: big.NewInt(0)})
	assert.True(t, errors.Is(err, types.ErrInvalidAmount))

	// the truncated remainder of the division stays in the reserve
	mustApply(t, l, &op.Convert{Caller: "buyer", Value: big.NewInt(1)})
	gold, _ = l.GoldBalance("buyer")
	assert.Equal(t, new(big.Int).Add(ether("1"), big.NewInt(1724)).String(), gold.String())
	reserve, _ = l.Reserve()
	assert.Equal(t, new(big.Int).Add(ether("0.00058"), big.NewInt(1)).String(), reserve.String())
}

func TestRelicIDsAreSequential(t *testing.T) {
	l := newLedger(t)
	mustApply(t, l, &op.GrantRole{Caller: "admin", Role: access.RoleAdmin, Account: "admin2"})

	callers := []string{"admin", "admin2", "admin", "admin2"}
	for i, caller := range callers {
		envs := mustApply(t, l, &op.MintRelic{Caller: caller, To: "owner", URI: "ipfs://relic"})
		ev, err := envs[0].Decode()
		require.NoError(t, err)
		assert.Equal(t, uint64(100+i), ev.(*event.RelicMinted).AssetID)
	}
	ids, _ := l.MintedRelics()
	assert.Equal(t, []uint64{100, 101, 102, 103}, ids)

	_, err := l.Apply(&op.MintRelic{Caller: "minter", To: "owner"})
	assert.True(t, errors.Is(err, types.ErrUnauthorized))
	held, _ := l.RelicBalance("owner")
	assert.Equal(t, uint64(4), held)
}

func TestRelicCancelScenario(t *testing.T) {
	l := newLedger(t)
	relicMarket := l.MarketOperator(market.KindRelic)
	mustApply(t, l, &op.MintRelic{Caller: "admin", To: "owner", URI: "ipfs://relic"})
	mustApply(t, l, &op.SetRelicApprovalForAll{Caller: "owner", Operator: relicMarket, Approved: true})
	mustApply(t, l, &op.ListRelic{Caller: "owner", AssetID: 100, Price: ether("50")})

	active, _ := l.ActiveRelicListings()
	require.Len(t, active, 1)

	_, err := l.Apply(&op.CancelRelic{Caller: "third", AssetID: 100})
	assert.True(t, errors.Is(err, types.ErrNotOwner))

	mustApply(t, l, &op.CancelRelic{Caller: "owner", AssetID: 100})
	listing, _ := l.RelicListing(100)
	assert.False(t, listing.Active)
	active, _ = l.ActiveRelicListings()
	assert.Empty(t, active)
}

func TestRelicGoldSaleAndFees(t *testing.T) {
	l := newLedger(t)
	relicMarket := l.MarketOperator(market.KindRelic)
	mustApply(t, l, &op.MintRelic{Caller: "admin", To: "owner", URI: "ipfs://relic"})
	mustApply(t, l, &op.ApproveRelic{Caller: "owner", Spender: relicMarket, AssetID: 100})
	mustApply(t, l, &op.ListRelic{Caller: "owner", AssetID: 100, Price: ether("50")})

	_, err := l.Apply(&op.FulfillRelic{Caller: "owner", AssetID: 100})
	assert.True(t, errors.Is(err, types.ErrSelfPurchase))

	// 0.029 native buys exactly 50 gold
	mustApply(t, l, &op.Convert{Caller: "buyer", Value: ether("0.029")})
	_, err = l.Apply(&op.FulfillRelic{Caller: "buyer", AssetID: 100})
	assert.True(t, errors.Is(err, types.ErrInsufficientAllowance))

	mustApply(t, l, &op.GoldApprove{Caller: "buyer", Spender: relicMarket, Amount: ether("50")})
	mustApply(t, l, &op.FulfillRelic{Caller: "buyer", AssetID: 100})

	owner, _ := l.RelicOwner(100)
	assert.Equal(t, "buyer", owner)
	sellerGold, _ := l.GoldBalance("owner")
	assert.Equal(t, ether("48.75").String(), sellerGold.String())
	allowance, _ := l.GoldAllowance("buyer", relicMarket)
	assert.Equal(t, "0", allowance.String())
	relic, _ := l.Relic(100)
	assert.Equal(t, "", relic.Approved)

	envs := mustApply(t, l, &op.WithdrawFees{Caller: "admin", Market: market.KindRelic, To: "treasury"})
	ev, err := envs[0].Decode()
	require.NoError(t, err)
	assert.Equal(t, ether("1.25").String(), ev.(*event.FeesWithdrawn).Amount.String())
	fees, _ := l.AccumulatedFees(market.KindRelic)
	assert.Equal(t, "0", fees.String())

	_, err = l.Apply(&op.WithdrawFees{Caller: "admin", Market: market.KindRelic, To: "treasury"})
	assert.True(t, errors.Is(err, types.ErrNothingToWithdraw))
	treasury, _ := l.GoldBalance("treasury")
	assert.Equal(t, ether("1.25").String(), treasury.String())
}

func TestBoltLedgerSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.db")

	boltDB, err := boltdb.New(path)
	require.NoError(t, err)
	l := New(boltDB, Config{NetworkID: "testnet"})
	_, err = l.Bootstrap(&Genesis{Admin: "admin", Funds: map[string]*big.Int{"buyer": ether("1")}})
	require.NoError(t, err)
	mustApply(t, l, &op.Convert{Caller: "buyer", Value: ether("0.58")})
	_, err = l.Apply(&op.Convert{Caller: "buyer", Value: ether("5")})
	assert.True(t, errors.Is(err, types.ErrInsufficientBalance))
	require.NoError(t, boltDB.Close())

	boltDB, err = boltdb.New(path)
	require.NoError(t, err)
	defer boltDB.Close()
	l = New(boltDB, Config{NetworkID: "testnet"})
	envs, err := l.Bootstrap(&Genesis{Admin: "admin", Funds: map[string]*big.Int{"buyer": ether("1")}})
	assert.Nil(t, err)
	assert.Nil(t, envs)

	gold, _ := l.GoldBalance("buyer")
	assert.Equal(t, ether("1000").String(), gold.String())
	native, _ := l.NativeBalance("buyer")
	assert.Equal(t, ether("0.42").String(), native.String())
	events, _ := l.Events(0, 0)
	assert.Len(t, events, 3)
}

func TestBootstrapRunsOnceWithoutAdmins(t *testing.T) {
	memorydb := memdb.New()
	genesis := &Genesis{Admin: "admin", Funds: map[string]*big.Int{"buyer": ether("100")}}

	l := New(memorydb, Config{NetworkID: "testnet"})
	_, err := l.Bootstrap(genesis)
	require.NoError(t, err)
	mustApply(t, l, &op.RenounceRole{Caller: "admin", Role: access.RoleAdmin})
	admins, _ := l.RoleMembers(access.RoleAdmin)
	require.Empty(t, admins)
	seq := lastSeq(t, l)

	// a restart over the same database must not replay genesis
	l = New(memorydb, Config{NetworkID: "testnet"})
	envs, err := l.Bootstrap(genesis)
	assert.Nil(t, err)
	assert.Nil(t, envs)

	admins, _ = l.RoleMembers(access.RoleAdmin)
	assert.Empty(t, admins)
	native, _ := l.NativeBalance("buyer")
	assert.Equal(t, ether("100").String(), native.String())
	assert.Equal(t, seq, lastSeq(t, l))
}

func TestFailedBootstrapCanRetry(t *testing.T) {
	memorydb := memdb.New()
	l := New(memorydb, Config{NetworkID: "testnet"})

	_, err := l.Bootstrap(&Genesis{Admin: "admin", Funds: map[string]*big.Int{"buyer": big.NewInt(0)}})
	assert.True(t, errors.Is(err, types.ErrInvalidAmount))

	envs, err := l.Bootstrap(&Genesis{Admin: "admin"})
	require.NoError(t, err)
	assert.Len(t, envs, 1)
}
