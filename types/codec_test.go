package types

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPackListingCodec(t *testing.T) {
	l := &PackListing{
		Seller:    "seller",
		AssetID:   1,
		Amount:    10,
		UnitPrice: big.NewInt(10000000000000000),
		Active:    true,
	}
	b, err := Encode(l)
	assert.Nil(t, err)

	decoded, err := DecodePackListing(b)
	assert.Nil(t, err)
	assert.Equal(t, "seller", decoded.Seller)
	assert.Equal(t, uint64(10), decoded.Amount)
	assert.Equal(t, 0, decoded.UnitPrice.Cmp(l.UnitPrice))
	assert.True(t, decoded.Active)
}

func TestNilAmountDecodesAsZero(t *testing.T) {
	b, err := Encode(&Amount{Name: "fees"})
	assert.Nil(t, err)

	a, err := DecodeAmount(b)
	assert.Nil(t, err)
	assert.NotNil(t, a.Value)
	assert.Equal(t, 0, a.Value.Sign())
}

func TestDecodeEmpty(t *testing.T) {
	_, err := DecodeRelic(nil)
	assert.NotNil(t, err)

	_, err = DecodeRoleMembers([]byte{0x01})
	assert.NotNil(t, err)
}
