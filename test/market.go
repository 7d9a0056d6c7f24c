package test

import (
	"math/big"

	"github.com/ultiledger/go-marketledger/client"
	"github.com/ultiledger/go-marketledger/currency"
	"github.com/ultiledger/go-marketledger/market"
	"github.com/ultiledger/go-marketledger/op"
	"github.com/ultiledger/go-marketledger/util"
)

func init() {
	Register(&PackSale{})
	Register(&Conversion{})
}

// PackSale sells two packs from a fresh seller to a fresh buyer.
type PackSale struct{}

func (p *PackSale) Desc() string {
	return "testcase: pack sale"
}

func (p *PackSale) Run(c *client.Client, r Roles) error {
	seller, err := newAccount()
	if err != nil {
		return err
	}
	buyer, err := newAccount()
	if err != nil {
		return err
	}
	m, err := c.QueryMarket("packs")
	if err != nil {
		return err
	}

	price := util.Exp10(17) // 0.1 per pack
	total := util.MulUint64(price, 2)
	// balances are per holder, so a fixed id is fine for a fresh seller
	const assetID = 1

	ops := []op.Op{
		&op.FundNative{Caller: r.Admin, Account: buyer, Amount: util.Exp10(18)},
		&op.MintPack{Caller: r.Minter, To: seller, AssetID: assetID, Amount: 3, URI: "ipfs://smoke"},
		&op.SetPackApprovalForAll{Caller: seller, Operator: m.Operator, Approved: true},
		&op.ListPack{Caller: seller, AssetID: assetID, Amount: 3, UnitPrice: price},
	}
	if m.Settlement == "native" {
		ops = append(ops, &op.FulfillPack{Caller: buyer, Seller: seller, AssetID: assetID, Amount: 2, Value: total})
	} else {
		ops = append(ops,
			&op.Convert{Caller: buyer, Value: util.Exp10(18)},
			&op.GoldApprove{Caller: buyer, Spender: m.Operator, Amount: total},
			&op.FulfillPack{Caller: buyer, Seller: seller, AssetID: assetID, Amount: 2},
		)
	}
	for _, o := range ops {
		if _, err := c.SubmitOp(o); err != nil {
			return err
		}
	}

	acc, err := c.QueryAccount(seller)
	if err != nil {
		return err
	}
	proceeds := new(big.Int).Sub(total, market.Fee(total))
	if m.Settlement == "native" {
		return expect("seller native", proceeds.String(), acc.Native)
	}
	return expect("seller gold", proceeds.String(), acc.Gold)
}

// Conversion turns native value into gold at the fixed rate.
type Conversion struct{}

func (cv *Conversion) Desc() string {
	return "testcase: conversion"
}

func (cv *Conversion) Run(c *client.Client, r Roles) error {
	acc, err := newAccount()
	if err != nil {
		return err
	}
	value, err := util.ParseUnits("0.58")
	if err != nil {
		return err
	}
	if _, err := c.SubmitOp(&op.FundNative{Caller: r.Admin, Account: acc, Amount: value}); err != nil {
		return err
	}
	if _, err := c.SubmitOp(&op.Convert{Caller: acc, Value: value}); err != nil {
		return err
	}
	got, err := c.QueryAccount(acc)
	if err != nil {
		return err
	}
	if err := expect("native", "0", got.Native); err != nil {
		return err
	}
	return expect("gold", currency.UnitsFor(value).String(), got.Gold)
}
