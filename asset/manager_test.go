package asset

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ultiledger/go-marketledger/db/memdb"
	"github.com/ultiledger/go-marketledger/types"
)

func TestMint(t *testing.T) {
	memorydb := memdb.New()
	m := NewManager(memorydb)

	memorytx, err := memorydb.Begin()
	require.NoError(t, err)

	_, err = m.Mint(memorytx, "seller", 1, 0, "ipfs://first")
	assert.True(t, errors.Is(err, types.ErrInvalidAmount))

	uri, err := m.Mint(memorytx, "seller", 1, 10, "ipfs://first")
	assert.Nil(t, err)
	assert.Equal(t, "ipfs://first", uri)

	// later pointers never replace the first one
	uri, err = m.Mint(memorytx, "buyer", 1, 5, "ipfs://second")
	assert.Nil(t, err)
	assert.Equal(t, "ipfs://first", uri)

	bal, _ := m.BalanceOf(memorytx, "seller", 1)
	assert.Equal(t, uint64(10), bal)
	supply, _ := m.TotalSupply(memorytx, 1)
	assert.Equal(t, uint64(15), supply)

	amounts, err := m.BalanceOfBatch(memorytx, []string{"seller", "buyer", "nobody"}, []uint64{1, 1, 1})
	assert.Nil(t, err)
	assert.Equal(t, []uint64{10, 5, 0}, amounts)

	_, err = m.BalanceOfBatch(memorytx, []string{"seller"}, nil)
	assert.Equal(t, ErrLengthMismatch, err)

	// uncommitted pointers are invisible through the cached view
	uri, err = m.URI(1)
	assert.Nil(t, err)
	assert.Equal(t, "", uri)

	require.NoError(t, memorytx.Commit())
	uri, err = m.URI(1)
	assert.Nil(t, err)
	assert.Equal(t, "ipfs://first", uri)
}

func TestTransfer(t *testing.T) {
	memorydb := memdb.New()
	m := NewManager(memorydb)

	memorytx, err := memorydb.Begin()
	require.NoError(t, err)

	_, err = m.Mint(memorytx, "seller", 7, 3, "uri")
	require.NoError(t, err)

	err = m.Transfer(memorytx, "seller", "buyer", 7, 4)
	assert.True(t, errors.Is(err, types.ErrInsufficientBalance))

	assert.Nil(t, m.Transfer(memorytx, "seller", "buyer", 7, 2))
	assert.Nil(t, m.Transfer(memorytx, "buyer", "buyer", 7, 2))

	sellerBal, _ := m.BalanceOf(memorytx, "seller", 7)
	buyerBal, _ := m.BalanceOf(memorytx, "buyer", 7)
	assert.Equal(t, uint64(1), sellerBal)
	assert.Equal(t, uint64(2), buyerBal)

	supply, _ := m.TotalSupply(memorytx, 7)
	assert.Equal(t, sellerBal+buyerBal, supply)
}

func TestApprovalForAll(t *testing.T) {
	memorydb := memdb.New()
	m := NewManager(memorydb)

	memorytx, err := memorydb.Begin()
	require.NoError(t, err)

	approved, err := m.IsApprovedForAll(memorytx, "owner", "market")
	assert.Nil(t, err)
	assert.False(t, approved)

	assert.Nil(t, m.SetApprovalForAll(memorytx, "owner", "market", true))
	approved, _ = m.IsApprovedForAll(memorytx, "owner", "market")
	assert.True(t, approved)

	assert.Nil(t, m.SetApprovalForAll(memorytx, "owner", "market", false))
	approved, _ = m.IsApprovedForAll(memorytx, "owner", "market")
	assert.False(t, approved)

	err = m.SetApprovalForAll(memorytx, "owner", "owner", true)
	assert.True(t, errors.Is(err, types.ErrInvalidAccountID))
}

func TestApprovalForAllSeparatorInID(t *testing.T) {
	memorydb := memdb.New()
	m := NewManager(memorydb)

	memorytx, err := memorydb.Begin()
	require.NoError(t, err)

	assert.Nil(t, m.SetApprovalForAll(memorytx, "a", "b/c", true))
	approved, _ := m.IsApprovedForAll(memorytx, "a", "b/c")
	assert.True(t, approved)
	approved, _ = m.IsApprovedForAll(memorytx, "a/b", "c")
	assert.False(t, approved)
}
