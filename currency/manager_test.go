package currency

import (
	"errors"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ultiledger/go-marketledger/db/memdb"
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

func TestUnitsFor(t *testing.T) {
	// 0.00058 native buys exactly one whole unit
	assert.Equal(t, 0, UnitsFor(ether("0.00058")).Cmp(Scale))

	// 1 native buys 1e36 / 5.8e14 base units, truncated
	expected := new(big.Int).Quo(new(big.Int).Mul(ether("1"), Scale), Rate)
	assert.Equal(t, expected.String(), UnitsFor(ether("1")).String())
	assert.Equal(t, "1724137931034482758620", UnitsFor(ether("1")).String())

	// 0.58 native buys 1000 units
	assert.Equal(t, 0, UnitsFor(ether("0.58")).Cmp(ether("1000")))
}

func TestTransferAndAllowance(t *testing.T) {
	memorydb := memdb.New()
	m := NewManager(memorydb)

	memorytx, err := memorydb.Begin()
	require.NoError(t, err)

	assert.Nil(t, m.Mint(memorytx, "user1", ether("1000")))

	err = m.Transfer(memorytx, "user1", "user2", ether("100"))
	assert.Nil(t, err)
	bal, _ := m.BalanceOf(memorytx, "user2")
	assert.Equal(t, 0, bal.Cmp(ether("100")))

	err = m.Transfer(memorytx, "user2", "user1", ether("101"))
	assert.True(t, errors.Is(err, types.ErrInsufficientBalance))

	// approve overwrites rather than adds
	assert.Nil(t, m.Approve(memorytx, "user1", "user2", ether("80")))
	assert.Nil(t, m.Approve(memorytx, "user1", "user2", ether("50")))
	allowed, _ := m.Allowance(memorytx, "user1", "user2")
	assert.Equal(t, 0, allowed.Cmp(ether("50")))

	err = m.TransferFrom(memorytx, "user2", "user1", "user2", ether("51"))
	assert.True(t, errors.Is(err, types.ErrInsufficientAllowance))

	err = m.TransferFrom(memorytx, "user2", "user1", "user2", ether("30"))
	assert.Nil(t, err)
	allowed, _ = m.Allowance(memorytx, "user1", "user2")
	assert.Equal(t, 0, allowed.Cmp(ether("20")))
	bal, _ = m.BalanceOf(memorytx, "user2")
	assert.Equal(t, 0, bal.Cmp(ether("130")))

	supply, _ := m.TotalSupply(memorytx)
	assert.Equal(t, 0, supply.Cmp(ether("1000")))
}

func TestDrainReserve(t *testing.T) {
	memorydb := memdb.New()
	m := NewManager(memorydb)

	memorytx, err := memorydb.Begin()
	require.NoError(t, err)

	_, err = m.DrainReserve(memorytx)
	assert.True(t, errors.Is(err, types.ErrNothingToWithdraw))

	assert.Nil(t, m.AddReserve(memorytx, ether("1")))
	assert.Nil(t, m.AddReserve(memorytx, ether("0.5")))

	drained, err := m.DrainReserve(memorytx)
	assert.Nil(t, err)
	assert.Equal(t, 0, drained.Cmp(ether("1.5")))

	reserve, _ := m.Reserve(memorytx)
	assert.Equal(t, 0, reserve.Sign())

	_, err = m.DrainReserve(memorytx)
	assert.True(t, errors.Is(err, types.ErrNothingToWithdraw))
}

func TestAllowanceSeparatorInID(t *testing.T) {
	memorydb := memdb.New()
	m := NewManager(memorydb)

	memorytx, err := memorydb.Begin()
	require.NoError(t, err)

	assert.Nil(t, m.Approve(memorytx, "x", "y/z", ether("5")))
	allowed, _ := m.Allowance(memorytx, "x/y", "z")
	assert.Equal(t, "0", allowed.String())
	allowed, _ = m.Allowance(memorytx, "x", "y/z")
	assert.Equal(t, 0, allowed.Cmp(ether("5")))
}
