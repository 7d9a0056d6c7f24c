package event

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ultiledger/go-marketledger/db/memdb"
)

func TestJournalAppendAndSince(t *testing.T) {
	memorydb := memdb.New()
	j := NewJournal(memorydb)

	memorytx, err := memorydb.Begin()
	require.NoError(t, err)
	rec := NewRecorder(j, memorytx)

	for i := 0; i < 12; i++ {
		err = rec.Emit(PackMinted{To: "seller", AssetID: uint64(i), Amount: 10, URI: "ipfs://pack"})
		assert.Nil(t, err)
	}
	assert.Nil(t, memorytx.Commit())
	assert.Len(t, rec.Emitted, 12)

	envs, err := j.Since(memorydb, 0, 0)
	assert.Nil(t, err)
	require.Len(t, envs, 12)
	for i, env := range envs {
		assert.Equal(t, uint64(i+1), env.Seq)
		assert.Equal(t, "PackMinted", env.Name)
		assert.NotEmpty(t, env.ID)
	}

	envs, err = j.Since(memorydb, 10, 0)
	assert.Nil(t, err)
	require.Len(t, envs, 2)
	assert.Equal(t, uint64(11), envs[0].Seq)

	envs, err = j.Since(memorydb, 0, 3)
	assert.Nil(t, err)
	assert.Len(t, envs, 3)

	// a page starts right after from
	envs, err = j.Since(memorydb, 9, 1)
	assert.Nil(t, err)
	require.Len(t, envs, 1)
	assert.Equal(t, uint64(10), envs[0].Seq)

	envs, err = j.Since(memorydb, 12, 5)
	assert.Nil(t, err)
	assert.Empty(t, envs)

	last, err := j.LastSeq(memorydb)
	assert.Nil(t, err)
	assert.Equal(t, uint64(12), last)
}

func TestJournalRollback(t *testing.T) {
	memorydb := memdb.New()
	j := NewJournal(memorydb)

	memorytx, err := memorydb.Begin()
	require.NoError(t, err)
	_, err = j.Append(memorytx, FeesWithdrawn{Market: "packs", To: "admin", Amount: big.NewInt(7)})
	assert.Nil(t, err)
	assert.Nil(t, memorytx.Rollback())

	envs, err := j.Since(memorydb, 0, 0)
	assert.Nil(t, err)
	assert.Empty(t, envs)
}

func TestEnvelopeDecode(t *testing.T) {
	memorydb := memdb.New()
	j := NewJournal(memorydb)

	memorytx, err := memorydb.Begin()
	require.NoError(t, err)
	env, err := j.Append(memorytx, RelicSold{
		Seller:  "seller",
		Buyer:   "buyer",
		AssetID: 100,
		Price:   big.NewInt(50),
		Fee:     big.NewInt(1),
	})
	require.NoError(t, err)

	ev, err := env.Decode()
	assert.Nil(t, err)
	sold, ok := ev.(*RelicSold)
	require.True(t, ok)
	assert.Equal(t, uint64(100), sold.AssetID)
	assert.Equal(t, "50", sold.Price.String())
	assert.Equal(t, EvRelicSold, sold.GetType())

	env.Type = Type(999)
	_, err = env.Decode()
	assert.Equal(t, ErrUnknownType, err)
	assert.Equal(t, "Unknown", Type(999).String())
}
