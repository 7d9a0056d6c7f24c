package types

import (
	"fmt"

	"github.com/ethereum/go-ethereum/rlp"
)

// Encode record to bytes
func Encode(v interface{}) ([]byte, error) {
	b, err := rlp.EncodeToBytes(v)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func decode(b []byte, v interface{}) error {
	if len(b) == 0 {
		return fmt.Errorf("decode %T from empty bytes", v)
	}
	return rlp.DecodeBytes(b, v)
}

// Decode bytes to native account
func DecodeNativeAccount(b []byte) (*NativeAccount, error) {
	acc := &NativeAccount{}
	if err := decode(b, acc); err != nil {
		return nil, err
	}
	return acc, nil
}

// Decode bytes to gold account
func DecodeGoldAccount(b []byte) (*GoldAccount, error) {
	acc := &GoldAccount{}
	if err := decode(b, acc); err != nil {
		return nil, err
	}
	return acc, nil
}

// Decode bytes to allowance
func DecodeAllowance(b []byte) (*Allowance, error) {
	a := &Allowance{}
	if err := decode(b, a); err != nil {
		return nil, err
	}
	return a, nil
}

// Decode bytes to named amount
func DecodeAmount(b []byte) (*Amount, error) {
	a := &Amount{}
	if err := decode(b, a); err != nil {
		return nil, err
	}
	return a, nil
}

// Decode bytes to counter
func DecodeCounter(b []byte) (*Counter, error) {
	c := &Counter{}
	if err := decode(b, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Decode bytes to pack balance
func DecodePackBalance(b []byte) (*PackBalance, error) {
	pb := &PackBalance{}
	if err := decode(b, pb); err != nil {
		return nil, err
	}
	return pb, nil
}

// Decode bytes to pack info
func DecodePackInfo(b []byte) (*PackInfo, error) {
	info := &PackInfo{}
	if err := decode(b, info); err != nil {
		return nil, err
	}
	return info, nil
}

// Decode bytes to operator approval
func DecodeOperatorApproval(b []byte) (*OperatorApproval, error) {
	oa := &OperatorApproval{}
	if err := decode(b, oa); err != nil {
		return nil, err
	}
	return oa, nil
}

// Decode bytes to relic
func DecodeRelic(b []byte) (*Relic, error) {
	r := &Relic{}
	if err := decode(b, r); err != nil {
		return nil, err
	}
	return r, nil
}

// Decode bytes to pack listing
func DecodePackListing(b []byte) (*PackListing, error) {
	l := &PackListing{}
	if err := decode(b, l); err != nil {
		return nil, err
	}
	return l, nil
}

// Decode bytes to relic listing
func DecodeRelicListing(b []byte) (*RelicListing, error) {
	l := &RelicListing{}
	if err := decode(b, l); err != nil {
		return nil, err
	}
	return l, nil
}

// Decode bytes to role members
func DecodeRoleMembers(b []byte) (*RoleMembers, error) {
	rm := &RoleMembers{}
	if err := decode(b, rm); err != nil {
		return nil, err
	}
	return rm, nil
}
