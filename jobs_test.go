package seimart

import (
	"testing"

	"github.com/ethereum/go-ethereum/core/types"
	"github.com/seimart/seimart/schema"
	"github.com/stretchr/testify/assert"
)

func TestVerifyPendingOrders(t *testing.T) {
	w := testWdb(t)
	wallet := testWallet("10.0", t)
	s := &Seimart{wdb: w, wallet: wallet}

	listing := testListing("2.5")
	assert.NoError(t, w.InsertListing(listing))

	buyer := "0x71C7656EC7ab88b098defB751B7401B5f6d8976F"
	req := schema.LedgerRequest{
		ListingId:    listing.ListingId,
		BuyerWallet:  buyer,
		SellerWallet: listing.Seller,
		Amount:       "2.5",
		TxHash:       "0xgood",
	}
	_, _, err := w.CompletePurchase(req, listing, buyer, 0, "")
	assert.NoError(t, err)

	demo := schema.DemoSession("203.0.113.7")
	req.TxHash = "0xdemo"
	req.BuyerWallet = ""
	req.IsDemo = true
	req.DemoId = demo.DemoId
	_, _, err = w.CompletePurchase(req, listing, demo.GranteeKey(), 0, "")
	assert.NoError(t, err)

	// only the wallet order waits for the chain
	waiting, err := w.GetWaitingVerifyOrders(50)
	assert.NoError(t, err)
	assert.Equal(t, 1, len(waiting))

	s.verifyPendingOrders()

	waiting, err = w.GetWaitingVerifyOrders(50)
	assert.NoError(t, err)
	assert.Equal(t, 0, len(waiting))
	order, err := w.GetOrderByTxHash("0xgood")
	assert.NoError(t, err)
	assert.Equal(t, schema.SuccVerify, order.VerifyStatus)
}

func TestVerifyPendingOrdersReverted(t *testing.T) {
	w := testWdb(t)
	wallet := testWallet("10.0", t)
	wallet.receiptStatus = types.ReceiptStatusFailed
	s := &Seimart{wdb: w, wallet: wallet}

	listing := testListing("2.5")
	assert.NoError(t, w.InsertListing(listing))

	buyer := "0x71C7656EC7ab88b098defB751B7401B5f6d8976F"
	req := schema.LedgerRequest{
		ListingId:    listing.ListingId,
		BuyerWallet:  buyer,
		SellerWallet: listing.Seller,
		Amount:       "2.5",
		TxHash:       "0xbad",
	}
	_, _, err := w.CompletePurchase(req, listing, buyer, 0, "")
	assert.NoError(t, err)

	s.verifyPendingOrders()

	order, err := w.GetOrderByTxHash("0xbad")
	assert.NoError(t, err)
	assert.Equal(t, schema.FailedVerify, order.VerifyStatus)

	// flagged orders never re-enter the sweep
	waiting, err := w.GetWaitingVerifyOrders(50)
	assert.NoError(t, err)
	assert.Equal(t, 0, len(waiting))
}

func TestVerifyPendingOrdersNoWallet(t *testing.T) {
	w := testWdb(t)
	s := &Seimart{wdb: w}

	listing := testListing("2.5")
	assert.NoError(t, w.InsertListing(listing))
	req := schema.LedgerRequest{
		ListingId:   listing.ListingId,
		BuyerWallet: "0x71C7656EC7ab88b098defB751B7401B5f6d8976F",
		Amount:      "2.5",
		TxHash:      "0xwait",
	}
	_, _, err := w.CompletePurchase(req, listing, req.BuyerWallet, 0, "")
	assert.NoError(t, err)

	// without a chain client the sweep leaves orders waiting
	s.verifyPendingOrders()
	waiting, err := w.GetWaitingVerifyOrders(50)
	assert.NoError(t, err)
	assert.Equal(t, 1, len(waiting))
}
